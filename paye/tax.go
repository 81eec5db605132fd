package paye

import (
	"math"
)

// BandShare is the portion of taxable income that falls in one band
type BandShare struct {
	Band   TaxBand `json:"band"`
	Amount float64 `json:"amount_in_band"`
	Tax    float64 `json:"tax_in_band"`
}

// LadderTax returns the tax owed on taxable income before any relief.
// Negative income is treated as zero.
func (c *Calculator) LadderTax(taxableIncome float64) float64 {
	if taxableIncome <= 0 {
		return 0
	}

	var totalTax float64
	remaining := taxableIncome

	for _, band := range c.rates.Bands {
		if remaining <= 0 {
			break
		}
		// Width is +Inf for the top band, so min() leaves the remainder there
		inBand := math.Min(remaining, band.Width())
		totalTax += inBand * band.Rate
		remaining -= inBand
	}

	return totalTax
}

// Relief returns the fixed monthly relief deducted from ladder tax
func (c *Calculator) Relief(hasDisability bool) float64 {
	relief := c.rates.PersonalRelief
	if hasDisability {
		relief += c.rates.DisabilityRelief
	}
	return relief
}

// ComputeTax returns PAYE on taxable income after personal relief (and
// disability relief when flagged), floored at zero
func (c *Calculator) ComputeTax(taxableIncome float64, hasDisability bool) float64 {
	tax := c.LadderTax(taxableIncome) - c.Relief(hasDisability)
	return math.Max(0, tax)
}

// BandBreakdown reproduces the ladder band by band for display. Every band is
// present, with zero amounts for bands the income does not reach. No relief is
// applied.
func (c *Calculator) BandBreakdown(taxableIncome float64) []BandShare {
	breakdown := make([]BandShare, 0, len(c.rates.Bands))
	remaining := math.Max(0, taxableIncome)

	for _, band := range c.rates.Bands {
		if remaining <= 0 {
			breakdown = append(breakdown, BandShare{Band: band})
			continue
		}
		inBand := math.Min(remaining, band.Width())
		breakdown = append(breakdown, BandShare{
			Band:   band,
			Amount: inBand,
			Tax:    inBand * band.Rate,
		})
		remaining -= inBand
	}

	return breakdown
}

// MarginalRate returns the rate applied to the next shilling of taxable income
func (c *Calculator) MarginalRate(taxableIncome float64) float64 {
	income := math.Max(0, taxableIncome)
	for _, band := range c.rates.Bands {
		if income >= band.Lower && income < band.Upper {
			return band.Rate
		}
	}
	return c.rates.TopRate()
}
