package paye

import "math"

// Benefits is the taxable value of non-cash compensation
type Benefits struct {
	Vehicle        float64 `json:"vehicle_benefit"`
	HousingTaxable float64 `json:"housing_benefit_taxable"`
	Other          float64 `json:"other_benefits"`
	Total          float64 `json:"total_benefits"`
	AdjustedGross  float64 `json:"adjusted_gross"`
}

// AdjustForBenefits adds benefits in kind to cash gross for tax purposes.
// The vehicle benefit is a fixed amount per engine tier, the taxable housing
// benefit is capped at a share of cash gross, and other benefits count in full.
func (c *Calculator) AdjustForBenefits(grossSalary float64, vehicle VehicleCategory, housingBenefit, otherBenefits float64) (Benefits, error) {
	if vehicle == "" {
		vehicle = VehicleNone
	}
	vehicleAmount, ok := c.rates.VehicleBenefits[vehicle]
	if !ok {
		return Benefits{}, invalidField("vehicle_benefit", "unknown vehicle category %q", string(vehicle))
	}

	housingTaxable := math.Min(math.Max(0, housingBenefit), c.rates.HousingBenefitCapRate*grossSalary)
	other := math.Max(0, otherBenefits)
	total := vehicleAmount + housingTaxable + other

	return Benefits{
		Vehicle:        vehicleAmount,
		HousingTaxable: housingTaxable,
		Other:          other,
		Total:          total,
		AdjustedGross:  grossSalary + total,
	}, nil
}
