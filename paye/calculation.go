package paye

import "math"

// Result is the full payroll for one gross salary. It is derived entirely
// from the inputs and holds no reference back to them.
type Result struct {
	GrossSalary   float64  `json:"gross_salary"`
	AdjustedGross float64  `json:"adjusted_gross"`
	Benefits      Benefits `json:"benefits"`

	NSSF        float64 `json:"nssf"`
	SHIF        float64 `json:"shif"`
	HousingLevy float64 `json:"housing_levy"`

	Reliefs       Reliefs `json:"reliefs"`
	TaxableIncome float64 `json:"taxable_income"`
	// Ladder tax after personal/disability relief, before insurance relief
	TaxBeforeInsurance float64 `json:"tax_before_insurance"`
	PAYE               float64 `json:"paye"`

	StatutoryDeductions float64   `json:"statutory_deductions"`
	Voluntary           Voluntary `json:"voluntary"`
	VoluntaryDeductions float64   `json:"voluntary_deductions"`
	TotalDeductions     float64   `json:"total_deductions"`
	NetSalary           float64   `json:"net_salary"`

	// Fractions of cash gross; zero when gross is zero
	EffectiveTaxRate   float64 `json:"effective_tax_rate"`
	TotalDeductionRate float64 `json:"total_deduction_rate"`
	MarginalRate       float64 `json:"marginal_rate"`

	TaxBandBreakdown []BandShare `json:"tax_band_breakdown"`

	Employer          EmployerMatch `json:"employer"`
	TotalEmployerCost float64       `json:"total_employer_cost"`
	EmployerOnCost    float64       `json:"employer_on_cost_rate"`
}

// FullCalculation computes the payroll for grossSalary under the given
// elections. Inputs are validated first; the steps then run in a fixed order:
// benefits, statutory deductions on cash gross, capped reliefs, taxable
// income, PAYE less insurance relief, totals, rates, employer cost.
func (c *Calculator) FullCalculation(grossSalary float64, e Elections) (Result, error) {
	if err := validateAmount("gross_salary", grossSalary); err != nil {
		return Result{}, err
	}
	if err := c.Validate(e); err != nil {
		return Result{}, err
	}
	return c.calculate(grossSalary, e)
}

// calculate assumes validated inputs. The solver and bonus calculator call it
// directly to avoid re-validating the same elections on every evaluation.
func (c *Calculator) calculate(grossSalary float64, e Elections) (Result, error) {
	benefits, err := c.AdjustForBenefits(grossSalary, e.VehicleBenefit, e.HousingBenefit, e.OtherBenefits)
	if err != nil {
		return Result{}, err
	}

	nssf := c.NSSF(grossSalary)
	shif := c.SHIF(grossSalary)
	housingLevy := c.HousingLevy(grossSalary)

	reliefs := c.ApplyReliefs(e)

	taxable := math.Max(0, benefits.AdjustedGross-nssf-reliefs.PreTax())
	taxBeforeInsurance := c.ComputeTax(taxable, e.HasDisability)
	paye := math.Max(0, taxBeforeInsurance-reliefs.Insurance)

	statutory := paye + nssf + shif + housingLevy
	voluntary := voluntaryDeductions(e)
	total := statutory + voluntary.Total

	// Benefits in kind raise the tax base only; they are not paid in cash
	net := grossSalary - total

	employer := c.EmployerMatch(grossSalary)

	return Result{
		GrossSalary:         grossSalary,
		AdjustedGross:       benefits.AdjustedGross,
		Benefits:            benefits,
		NSSF:                nssf,
		SHIF:                shif,
		HousingLevy:         housingLevy,
		Reliefs:             reliefs,
		TaxableIncome:       taxable,
		TaxBeforeInsurance:  taxBeforeInsurance,
		PAYE:                paye,
		StatutoryDeductions: statutory,
		Voluntary:           voluntary,
		VoluntaryDeductions: voluntary.Total,
		TotalDeductions:     total,
		NetSalary:           net,
		EffectiveTaxRate:    ratio(paye, grossSalary),
		TotalDeductionRate:  ratio(total, grossSalary),
		MarginalRate:        c.MarginalRate(taxable),
		TaxBandBreakdown:    c.BandBreakdown(taxable),
		Employer:            employer,
		TotalEmployerCost:   grossSalary + employer.Total(),
		EmployerOnCost:      ratio(employer.Total(), grossSalary),
	}, nil
}

// ratio divides, returning 0 for a zero denominator instead of NaN/Inf
func ratio(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}
