package paye

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is wrapped by every InputError
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidTarget is returned by the solver for a non-positive target net
	ErrInvalidTarget = errors.New("target net salary must be positive")
	// ErrNotConverged is returned when the solver exhausts its iteration budget
	ErrNotConverged = errors.New("net-to-gross search did not converge")
	// ErrInvalidRates is returned when a rate table breaks its invariants
	ErrInvalidRates = errors.New("invalid rate table")
)

// InputError reports a rejected input field
type InputError struct {
	Field   string
	Message string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Unwrap lets errors.Is match ErrInvalidInput
func (e *InputError) Unwrap() error {
	return ErrInvalidInput
}

func invalidField(field, format string, args ...any) error {
	return &InputError{Field: field, Message: fmt.Sprintf(format, args...)}
}
