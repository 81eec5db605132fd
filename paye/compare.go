package paye

import "math"

// DefaultComparisonLevels are the gross salaries shown in the comparison table
var DefaultComparisonLevels = []float64{30000, 50000, 75000, 100000, 150000, 200000, 300000, 500000, 800000, 1000000}

// ComparisonRow summarises one salary level
type ComparisonRow struct {
	Gross            float64 `json:"gross"`
	Net              float64 `json:"net"`
	PAYE             float64 `json:"paye"`
	TotalDeductions  float64 `json:"total_deductions"`
	EffectiveTaxRate float64 `json:"effective_tax_rate"`
	MarginalRate     float64 `json:"marginal_rate"`
}

// CompareSalaries runs the payroll at each gross level under the same
// elections. A nil or empty levels slice uses DefaultComparisonLevels.
func (c *Calculator) CompareSalaries(levels []float64, e Elections) ([]ComparisonRow, error) {
	if len(levels) == 0 {
		levels = DefaultComparisonLevels
	}
	if err := c.Validate(e); err != nil {
		return nil, err
	}

	rows := make([]ComparisonRow, 0, len(levels))
	for _, gross := range levels {
		if err := validateAmount("levels", gross); err != nil {
			return nil, err
		}
		r, err := c.calculate(gross, e)
		if err != nil {
			return nil, err
		}
		rows = append(rows, ComparisonRow{
			Gross:            gross,
			Net:              r.NetSalary,
			PAYE:             r.PAYE,
			TotalDeductions:  r.TotalDeductions,
			EffectiveTaxRate: r.EffectiveTaxRate,
			MarginalRate:     r.MarginalRate,
		})
	}
	return rows, nil
}

// Utilisation reports how much of each capped relief a result has used,
// as fractions between 0 and 1
type Utilisation struct {
	Pension   float64 `json:"pension"`
	Mortgage  float64 `json:"mortgage"`
	Insurance float64 `json:"insurance"`
	// Combined relief used over combined caps
	Overall float64 `json:"overall"`
	// Employee NSSF over the maximum contribution
	NSSF float64 `json:"nssf"`
}

// ReliefUtilisation measures a result's reliefs against the calculator's caps
func (c *Calculator) ReliefUtilisation(r Result) Utilisation {
	rt := c.rates
	used := r.Reliefs.Pension + r.Reliefs.Mortgage + r.Reliefs.Insurance
	caps := rt.MaxPensionDeduction + rt.MaxMortgageDeduction + rt.MaxInsuranceRelief
	return Utilisation{
		Pension:   ratio(r.Reliefs.Pension, rt.MaxPensionDeduction),
		Mortgage:  ratio(r.Reliefs.Mortgage, rt.MaxMortgageDeduction),
		Insurance: ratio(r.Reliefs.Insurance, rt.MaxInsuranceRelief),
		Overall:   ratio(used, caps),
		NSSF:      math.Min(1, ratio(r.NSSF, rt.MaxNSSF())),
	}
}
