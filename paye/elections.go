package paye

import (
	"errors"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Elections are the employee's deduction and benefit choices for one
// calculation. The zero value means no elections. All money fields are
// monthly KES amounts and must be non-negative.
type Elections struct {
	// Pre-tax, capped
	PensionContribution float64 `yaml:"pension_contribution" json:"pension_contribution" validate:"finite,gte=0"`
	MortgageInterest    float64 `yaml:"mortgage_interest" json:"mortgage_interest" validate:"finite,gte=0"`

	// Post-tax credit: a percentage of premiums, capped
	InsurancePremium float64 `yaml:"insurance_premium" json:"insurance_premium" validate:"finite,gte=0"`
	HasDisability    bool    `yaml:"has_disability" json:"has_disability"`

	// Voluntary post-tax deductions with no tax effect
	LoanRepayment      float64 `yaml:"loan_repayment" json:"loan_repayment" validate:"finite,gte=0"`             // HELB
	CooperativeSavings float64 `yaml:"cooperative_savings" json:"cooperative_savings" validate:"finite,gte=0"` // SACCO
	UnionDues          float64 `yaml:"union_dues" json:"union_dues" validate:"finite,gte=0"`

	// Benefits in kind: taxable, never paid out
	VehicleBenefit VehicleCategory `yaml:"vehicle_benefit" json:"vehicle_benefit"`
	HousingBenefit float64         `yaml:"housing_benefit" json:"housing_benefit" validate:"finite,gte=0"`
	OtherBenefits  float64         `yaml:"other_benefits" json:"other_benefits" validate:"finite,gte=0"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their JSON name so API callers see the key they sent
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
		f := fl.Field().Float()
		return !math.IsNaN(f) && !math.IsInf(f, 0)
	})
	return v
}

// Validate rejects negative or non-finite amounts and vehicle categories the
// calculator's rate table does not know
func (c *Calculator) Validate(e Elections) error {
	if err := validate.Struct(e); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			switch fe.Tag() {
			case "finite":
				return invalidField(fe.Field(), "must be a finite number")
			default:
				return invalidField(fe.Field(), "must not be negative (got %v)", fe.Value())
			}
		}
		return invalidField("elections", "%v", err)
	}

	if e.VehicleBenefit != "" {
		if _, ok := c.rates.VehicleBenefits[e.VehicleBenefit]; !ok {
			return invalidField("vehicle_benefit", "unknown vehicle category %q", string(e.VehicleBenefit))
		}
	}
	return nil
}

func validateAmount(field string, amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return invalidField(field, "must be a finite number")
	}
	if amount < 0 {
		return invalidField(field, "must not be negative (got %.2f)", amount)
	}
	return nil
}
