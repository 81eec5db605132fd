// Package paye computes Kenyan monthly payroll: PAYE income tax on a
// progressive band ladder, the statutory NSSF, SHIF and housing-levy
// deductions, capped reliefs, taxable benefits in kind, the net-to-gross
// inverse and the marginal tax on a bonus.
//
// Every function is a pure computation over its inputs. A Calculator holds an
// immutable RateTable and may be shared between goroutines.
package paye

import (
	"encoding/json"
	"fmt"
	"math"
)

// TaxBand is one bracket of the PAYE ladder. The last band of a table has
// Upper set to +Inf.
type TaxBand struct {
	Name  string  `yaml:"name" toml:"name" json:"name"`
	Lower float64 `yaml:"lower" toml:"lower" json:"lower"`
	Upper float64 `yaml:"upper" toml:"upper" json:"upper"`
	Rate  float64 `yaml:"rate" toml:"rate" json:"rate"`
}

// Unbounded reports whether the band has no upper limit
func (b TaxBand) Unbounded() bool {
	return math.IsInf(b.Upper, 1)
}

// Width returns the amount of income the band can hold (+Inf for the top band)
func (b TaxBand) Width() float64 {
	return b.Upper - b.Lower
}

// MarshalJSON renders an unbounded upper limit as null, since JSON has no infinity
func (b TaxBand) MarshalJSON() ([]byte, error) {
	var upper *float64
	if !b.Unbounded() {
		u := b.Upper
		upper = &u
	}
	return json.Marshal(struct {
		Name  string   `json:"name"`
		Lower float64  `json:"lower"`
		Upper *float64 `json:"upper"`
		Rate  float64  `json:"rate"`
	}{b.Name, b.Lower, upper, b.Rate})
}

// VehicleCategory is the engine-capacity tier of an employer-provided car
type VehicleCategory string

const (
	VehicleNone       VehicleCategory = "none"
	VehicleBelow1500  VehicleCategory = "below1500"
	Vehicle1500To2000 VehicleCategory = "1500to2000"
	Vehicle2000To3000 VehicleCategory = "2000to3000"
	VehicleAbove3000  VehicleCategory = "above3000"
)

// VehicleCategories lists the recognised tiers in ascending order
var VehicleCategories = []VehicleCategory{
	VehicleNone, VehicleBelow1500, Vehicle1500To2000, Vehicle2000To3000, VehicleAbove3000,
}

func (v VehicleCategory) String() string {
	switch v {
	case "", VehicleNone:
		return "No company car"
	case VehicleBelow1500:
		return "Below 1500cc"
	case Vehicle1500To2000:
		return "1500cc - 2000cc"
	case Vehicle2000To3000:
		return "2000cc - 3000cc"
	case VehicleAbove3000:
		return "Above 3000cc"
	default:
		return "Unknown"
	}
}

// RateTable holds every statutory constant used by the engine.
// All money values are monthly amounts in KES; rates are fractions (0.06 = 6%).
type RateTable struct {
	Name  string    `yaml:"name" toml:"name" json:"name"`
	Bands []TaxBand `yaml:"tax_bands" toml:"tax_bands" json:"tax_bands"`

	PersonalRelief   float64 `yaml:"personal_relief" toml:"personal_relief" json:"personal_relief"`
	DisabilityRelief float64 `yaml:"disability_relief" toml:"disability_relief" json:"disability_relief"`

	// NSSF Tier I + II: rate applied to pensionable earnings up to the limit
	NSSFRate       float64 `yaml:"nssf_rate" toml:"nssf_rate" json:"nssf_rate"`
	NSSFUpperLimit float64 `yaml:"nssf_upper_limit" toml:"nssf_upper_limit" json:"nssf_upper_limit"`

	SHIFRate    float64 `yaml:"shif_rate" toml:"shif_rate" json:"shif_rate"`
	SHIFMinimum float64 `yaml:"shif_minimum" toml:"shif_minimum" json:"shif_minimum"`

	HousingLevyRate float64 `yaml:"housing_levy_rate" toml:"housing_levy_rate" json:"housing_levy_rate"`

	MaxPensionDeduction  float64 `yaml:"max_pension_deduction" toml:"max_pension_deduction" json:"max_pension_deduction"`
	MaxMortgageDeduction float64 `yaml:"max_mortgage_deduction" toml:"max_mortgage_deduction" json:"max_mortgage_deduction"`
	InsuranceReliefRate  float64 `yaml:"insurance_relief_rate" toml:"insurance_relief_rate" json:"insurance_relief_rate"`
	MaxInsuranceRelief   float64 `yaml:"max_insurance_relief" toml:"max_insurance_relief" json:"max_insurance_relief"`

	// Taxable housing benefit is capped at this fraction of cash gross
	HousingBenefitCapRate float64 `yaml:"housing_benefit_cap_rate" toml:"housing_benefit_cap_rate" json:"housing_benefit_cap_rate"`

	VehicleBenefits map[VehicleCategory]float64 `yaml:"vehicle_benefits" toml:"vehicle_benefits" json:"vehicle_benefits"`
}

// kenya2026 is the reference table. It is never handed out directly.
var kenya2026 = RateTable{
	Name: "Kenya 2026",
	Bands: []TaxBand{
		{Name: "10%", Lower: 0, Upper: 24000, Rate: 0.10},
		{Name: "25%", Lower: 24000, Upper: 32333, Rate: 0.25},
		{Name: "30%", Lower: 32333, Upper: 500000, Rate: 0.30},
		{Name: "32.5%", Lower: 500000, Upper: 800000, Rate: 0.325},
		{Name: "35%", Lower: 800000, Upper: math.Inf(1), Rate: 0.35},
	},
	PersonalRelief:        2400,
	DisabilityRelief:      150000,
	NSSFRate:              0.06,
	NSSFUpperLimit:        72000,
	SHIFRate:              0.0275,
	SHIFMinimum:           300,
	HousingLevyRate:       0.015,
	MaxPensionDeduction:   30000,
	MaxMortgageDeduction:  25000,
	InsuranceReliefRate:   0.15,
	MaxInsuranceRelief:    5000,
	HousingBenefitCapRate: 0.15,
	VehicleBenefits: map[VehicleCategory]float64{
		VehicleNone:       0,
		VehicleBelow1500:  3600,
		Vehicle1500To2000: 4800,
		Vehicle2000To3000: 7200,
		VehicleAbove3000:  12000,
	},
}

// DefaultRates returns a copy of the compiled-in Kenya 2026 rate table
func DefaultRates() RateTable {
	return kenya2026.Clone()
}

// Clone returns a deep copy so callers can modify bands or the vehicle table
// without affecting the original
func (rt RateTable) Clone() RateTable {
	out := rt
	out.Bands = append([]TaxBand(nil), rt.Bands...)
	out.VehicleBenefits = make(map[VehicleCategory]float64, len(rt.VehicleBenefits))
	for k, v := range rt.VehicleBenefits {
		out.VehicleBenefits[k] = v
	}
	return out
}

// TopRate returns the marginal rate of the highest band
func (rt RateTable) TopRate() float64 {
	if len(rt.Bands) == 0 {
		return 0
	}
	return rt.Bands[len(rt.Bands)-1].Rate
}

// MaxNSSF returns the largest possible employee NSSF contribution
func (rt RateTable) MaxNSSF() float64 {
	return rt.NSSFRate * rt.NSSFUpperLimit
}

// Validate checks the structural invariants of the table: contiguous ascending
// bands starting at zero, non-decreasing rates, an unbounded last band and
// non-negative constants.
func (rt RateTable) Validate() error {
	if len(rt.Bands) == 0 {
		return fmt.Errorf("%w: no tax bands", ErrInvalidRates)
	}
	if rt.Bands[0].Lower != 0 {
		return fmt.Errorf("%w: first band must start at 0, got %.2f", ErrInvalidRates, rt.Bands[0].Lower)
	}
	for i, band := range rt.Bands {
		if math.IsNaN(band.Lower) || math.IsNaN(band.Upper) {
			return fmt.Errorf("%w: band %d bounds must be numbers", ErrInvalidRates, i)
		}
		if math.IsNaN(band.Rate) || band.Rate < 0 || band.Rate > 1 {
			return fmt.Errorf("%w: band %d rate %.4f outside 0-1", ErrInvalidRates, i, band.Rate)
		}
		if band.Upper <= band.Lower {
			return fmt.Errorf("%w: band %d upper %.2f not above lower %.2f", ErrInvalidRates, i, band.Upper, band.Lower)
		}
		if i == 0 {
			continue
		}
		prev := rt.Bands[i-1]
		if prev.Upper != band.Lower {
			return fmt.Errorf("%w: band %d starts at %.2f but band %d ends at %.2f",
				ErrInvalidRates, i, band.Lower, i-1, prev.Upper)
		}
		if band.Rate < prev.Rate {
			return fmt.Errorf("%w: band %d rate %.4f below previous %.4f", ErrInvalidRates, i, band.Rate, prev.Rate)
		}
	}
	if !rt.Bands[len(rt.Bands)-1].Unbounded() {
		return fmt.Errorf("%w: last band must be unbounded", ErrInvalidRates)
	}

	constants := []struct {
		name  string
		value float64
	}{
		{"personal_relief", rt.PersonalRelief},
		{"disability_relief", rt.DisabilityRelief},
		{"nssf_rate", rt.NSSFRate},
		{"nssf_upper_limit", rt.NSSFUpperLimit},
		{"shif_rate", rt.SHIFRate},
		{"shif_minimum", rt.SHIFMinimum},
		{"housing_levy_rate", rt.HousingLevyRate},
		{"max_pension_deduction", rt.MaxPensionDeduction},
		{"max_mortgage_deduction", rt.MaxMortgageDeduction},
		{"insurance_relief_rate", rt.InsuranceReliefRate},
		{"max_insurance_relief", rt.MaxInsuranceRelief},
		{"housing_benefit_cap_rate", rt.HousingBenefitCapRate},
	}
	for _, c := range constants {
		if c.value < 0 || math.IsNaN(c.value) || math.IsInf(c.value, 0) {
			return fmt.Errorf("%w: %s must be a non-negative number", ErrInvalidRates, c.name)
		}
	}
	for cat, amount := range rt.VehicleBenefits {
		if amount < 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
			return fmt.Errorf("%w: vehicle benefit %q must be a non-negative number", ErrInvalidRates, cat)
		}
	}
	return nil
}
