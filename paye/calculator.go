package paye

// Calculator evaluates payroll against one rate table. The table is copied on
// construction and never modified, so a Calculator is safe for concurrent use.
type Calculator struct {
	rates RateTable
}

// NewCalculator validates the rate table and returns a calculator bound to a copy of it
func NewCalculator(rates RateTable) (*Calculator, error) {
	rates = normaliseRates(rates)
	if err := rates.Validate(); err != nil {
		return nil, err
	}
	return &Calculator{rates: rates.Clone()}, nil
}

// defaultCalculator backs the package-level functions
var defaultCalculator = &Calculator{rates: DefaultRates()}

// Default returns the calculator for the compiled-in Kenya 2026 table
func Default() *Calculator {
	return defaultCalculator
}

// Rates returns a copy of the calculator's rate table
func (c *Calculator) Rates() RateTable {
	return c.rates.Clone()
}

// FullCalculation runs the payroll for one gross salary using the default rates
func FullCalculation(grossSalary float64, elections Elections) (Result, error) {
	return defaultCalculator.FullCalculation(grossSalary, elections)
}

// SolveGrossForNet finds the gross salary producing targetNet using the default rates
func SolveGrossForNet(targetNet float64, elections Elections) (Solution, error) {
	return defaultCalculator.SolveGrossForNet(targetNet, elections)
}

// BonusImpact computes the marginal tax on a bonus using the default rates
func BonusImpact(baseGross, bonusAmount float64, elections Elections) (Bonus, error) {
	return defaultCalculator.BonusImpact(baseGross, bonusAmount, elections)
}

// BandBreakdown splits taxable income across the default bands
func BandBreakdown(taxableIncome float64) []BandShare {
	return defaultCalculator.BandBreakdown(taxableIncome)
}

// ComputeTax returns relief-adjusted PAYE on taxable income using the default rates
func ComputeTax(taxableIncome float64, hasDisability bool) float64 {
	return defaultCalculator.ComputeTax(taxableIncome, hasDisability)
}
