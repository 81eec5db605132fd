package paye

import (
	"fmt"
	"math"
)

// SolveStatus is the outcome of a net-to-gross search
type SolveStatus int

const (
	Unsolved      SolveStatus = iota // Search did not run: invalid elections or a failed payroll run
	Converged                        // Gross reproduces the target within tolerance
	NotConverged                     // Iteration budget exhausted; Gross is the last midpoint
	InvalidTarget                    // Target net was not a positive finite number
)

func (s SolveStatus) String() string {
	switch s {
	case Unsolved:
		return "unsolved"
	case Converged:
		return "converged"
	case NotConverged:
		return "not converged"
	case InvalidTarget:
		return "invalid target"
	default:
		return "unknown"
	}
}

// MarshalText lets the status appear as a string in JSON responses
func (s SolveStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Solution is the result of SolveGrossForNet
type Solution struct {
	Status     SolveStatus `json:"status"`
	TargetNet  float64     `json:"target_net"`
	Gross      float64     `json:"gross_salary"`
	Net        float64     `json:"net_salary"` // net produced by Gross
	Iterations int         `json:"iterations"`
}

// SolverOptions tunes the bisection
type SolverOptions struct {
	MaxIterations int     // rounds before giving up
	Tolerance     float64 // accepted |net - target| in currency units
	UpperMultiple float64 // initial upper bound as a multiple of the target
}

// DefaultSolverOptions are 50 rounds to within 1 shilling, searching up to 3x the target
func DefaultSolverOptions() SolverOptions {
	return SolverOptions{
		MaxIterations: 50,
		Tolerance:     1,
		UpperMultiple: 3,
	}
}

func (o SolverOptions) withDefaults() SolverOptions {
	d := DefaultSolverOptions()
	if o.MaxIterations <= 0 {
		o.MaxIterations = d.MaxIterations
	}
	if o.Tolerance <= 0 {
		o.Tolerance = d.Tolerance
	}
	if o.UpperMultiple <= 1 {
		o.UpperMultiple = d.UpperMultiple
	}
	return o
}

// SolveGrossForNet finds the gross salary whose net equals targetNet under the
// same elections, using the default solver options
func (c *Calculator) SolveGrossForNet(targetNet float64, e Elections) (Solution, error) {
	return c.SolveGrossForNetWithOptions(targetNet, e, DefaultSolverOptions())
}

// SolveGrossForNetWithOptions bisects on gross salary. Net pay is
// non-decreasing in gross (every deduction is a rate below 100% or a capped
// constant), so the search narrows [target, UpperMultiple*target] towards the
// root of net(gross) - target.
//
// The returned error wraps ErrInvalidTarget or ErrNotConverged, matching
// Solution.Status, or is the validation error with Status Unsolved. It is nil
// only when the search converged.
func (c *Calculator) SolveGrossForNetWithOptions(targetNet float64, e Elections, opts SolverOptions) (Solution, error) {
	sol := Solution{TargetNet: targetNet}

	if math.IsNaN(targetNet) || math.IsInf(targetNet, 0) || targetNet <= 0 {
		sol.Status = InvalidTarget
		return sol, fmt.Errorf("%w (got %v)", ErrInvalidTarget, targetNet)
	}
	if err := c.Validate(e); err != nil {
		sol.Status = Unsolved
		return sol, err
	}
	opts = opts.withDefaults()

	low := targetNet
	high := targetNet * opts.UpperMultiple

	for i := 0; i < opts.MaxIterations; i++ {
		mid := (low + high) / 2
		result, err := c.calculate(mid, e)
		if err != nil {
			sol.Status = Unsolved
			return sol, err
		}
		sol.Gross = mid
		sol.Net = result.NetSalary
		sol.Iterations = i + 1

		if math.Abs(result.NetSalary-targetNet) < opts.Tolerance {
			sol.Status = Converged
			return sol, nil
		}

		if result.NetSalary > targetNet {
			high = mid
		} else {
			low = mid
		}
	}

	// Report the midpoint of the final bracket together with its net
	final := (low + high) / 2
	if result, err := c.calculate(final, e); err == nil {
		sol.Gross = final
		sol.Net = result.NetSalary
	}
	sol.Status = NotConverged
	return sol, fmt.Errorf("%w after %d iterations: best gross %.2f gives net %.2f for target %.2f",
		ErrNotConverged, sol.Iterations, sol.Gross, sol.Net, targetNet)
}
