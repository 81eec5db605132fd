package paye

import "math"

// Statutory contributions are always computed on cash gross, never on the
// benefit-adjusted figure.

// NSSF returns the employee pension contribution: rate on earnings up to the
// upper earnings limit
func (c *Calculator) NSSF(grossSalary float64) float64 {
	pensionable := math.Min(math.Max(0, grossSalary), c.rates.NSSFUpperLimit)
	return pensionable * c.rates.NSSFRate
}

// SHIF returns the health-fund contribution, never below the fixed minimum
func (c *Calculator) SHIF(grossSalary float64) float64 {
	return math.Max(math.Max(0, grossSalary)*c.rates.SHIFRate, c.rates.SHIFMinimum)
}

// HousingLevy returns the uncapped Affordable Housing Levy
func (c *Calculator) HousingLevy(grossSalary float64) float64 {
	return math.Max(0, grossSalary) * c.rates.HousingLevyRate
}

// EmployerMatch is the employer's share of statutory contributions.
// SHIF is not matched.
type EmployerMatch struct {
	NSSF        float64 `json:"employer_nssf"`
	HousingLevy float64 `json:"employer_housing_levy"`
}

// Total returns the combined employer contribution
func (m EmployerMatch) Total() float64 {
	return m.NSSF + m.HousingLevy
}

// EmployerMatch mirrors the employee NSSF and housing levy
func (c *Calculator) EmployerMatch(grossSalary float64) EmployerMatch {
	return EmployerMatch{
		NSSF:        c.NSSF(grossSalary),
		HousingLevy: c.HousingLevy(grossSalary),
	}
}
