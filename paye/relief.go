package paye

import "math"

// Reliefs are the elected reliefs after their caps
type Reliefs struct {
	// Deducted from taxable income before the ladder
	Pension  float64 `json:"pension_relief"`
	Mortgage float64 `json:"mortgage_relief"`
	// Credited against computed tax after the ladder
	Insurance float64 `json:"insurance_relief"`
}

// PreTax returns the total deducted from taxable income
func (r Reliefs) PreTax() float64 {
	return r.Pension + r.Mortgage
}

// ApplyReliefs caps each elected relief at its statutory ceiling
func (c *Calculator) ApplyReliefs(e Elections) Reliefs {
	return Reliefs{
		Pension:   math.Min(math.Max(0, e.PensionContribution), c.rates.MaxPensionDeduction),
		Mortgage:  math.Min(math.Max(0, e.MortgageInterest), c.rates.MaxMortgageDeduction),
		Insurance: math.Min(math.Max(0, e.InsurancePremium)*c.rates.InsuranceReliefRate, c.rates.MaxInsuranceRelief),
	}
}

// Voluntary is the breakdown of post-tax voluntary deductions
type Voluntary struct {
	LoanRepayment      float64 `json:"loan_repayment"`
	CooperativeSavings float64 `json:"cooperative_savings"`
	UnionDues          float64 `json:"union_dues"`
	Total              float64 `json:"total"`
}

func voluntaryDeductions(e Elections) Voluntary {
	v := Voluntary{
		LoanRepayment:      math.Max(0, e.LoanRepayment),
		CooperativeSavings: math.Max(0, e.CooperativeSavings),
		UnionDues:          math.Max(0, e.UnionDues),
	}
	v.Total = v.LoanRepayment + v.CooperativeSavings + v.UnionDues
	return v
}
