package paye

import (
	"errors"
	"testing"
)

func TestNSSF_CapsAtUpperEarningsLimit(t *testing.T) {
	calc := Default()
	tests := []struct {
		gross    float64
		expected float64
	}{
		{0, 0},
		{10000, 600},
		{72000, 4320},
		{100000, 4320},
		{1000000, 4320}, // 72,000 x 0.06, not 60,000
	}

	for _, tc := range tests {
		assertMoneyEquals(t, tc.expected, calc.NSSF(tc.gross), "NSSF")
	}
}

func TestSHIF_AppliesMinimumFloor(t *testing.T) {
	calc := Default()
	tests := []struct {
		gross    float64
		expected float64
	}{
		{0, 300},
		{1000, 300}, // 27.50 at 2.75% is below the floor
		{10909, 300},
		{20000, 550},
		{100000, 2750},
	}

	for _, tc := range tests {
		assertMoneyEquals(t, tc.expected, calc.SHIF(tc.gross), "SHIF")
	}
}

func TestHousingLevy_Uncapped(t *testing.T) {
	calc := Default()
	assertMoneyEquals(t, 1500, calc.HousingLevy(100000), "housing levy at 100k")
	assertMoneyEquals(t, 15000, calc.HousingLevy(1000000), "housing levy at 1m")
}

func TestEmployerMatch_MirrorsNSSFAndHousingLevy(t *testing.T) {
	match := Default().EmployerMatch(100000)
	assertMoneyEquals(t, 4320, match.NSSF, "employer NSSF")
	assertMoneyEquals(t, 1500, match.HousingLevy, "employer housing levy")
	assertMoneyEquals(t, 5820, match.Total(), "employer total")
}

// =============================================================================
// Benefits in Kind
// =============================================================================

func TestAdjustForBenefits_VehicleTiers(t *testing.T) {
	calc := Default()
	expected := map[VehicleCategory]float64{
		"":                0,
		VehicleNone:       0,
		VehicleBelow1500:  3600,
		Vehicle1500To2000: 4800,
		Vehicle2000To3000: 7200,
		VehicleAbove3000:  12000,
	}

	for category, amount := range expected {
		b, err := calc.AdjustForBenefits(100000, category, 0, 0)
		if err != nil {
			t.Fatalf("category %q: unexpected error %v", category, err)
		}
		assertMoneyEquals(t, amount, b.Vehicle, category.String())
		assertMoneyEquals(t, 100000+amount, b.AdjustedGross, category.String()+" adjusted gross")
	}
}

func TestAdjustForBenefits_HousingCappedAtFifteenPercent(t *testing.T) {
	calc := Default()

	b, _ := calc.AdjustForBenefits(100000, VehicleNone, 20000, 0)
	assertMoneyEquals(t, 15000, b.HousingTaxable, "housing above cap")

	b, _ = calc.AdjustForBenefits(100000, VehicleNone, 8000, 0)
	assertMoneyEquals(t, 8000, b.HousingTaxable, "housing below cap")
}

func TestAdjustForBenefits_OtherBenefitsInFull(t *testing.T) {
	b, _ := Default().AdjustForBenefits(50000, VehicleAbove3000, 10000, 4000)
	// 12000 vehicle + min(10000, 7500) housing + 4000 other
	assertMoneyEquals(t, 23500, b.Total, "total benefits")
	assertMoneyEquals(t, 73500, b.AdjustedGross, "adjusted gross")
}

func TestAdjustForBenefits_UnknownVehicle(t *testing.T) {
	_, err := Default().AdjustForBenefits(50000, "tractor", 0, 0)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

// =============================================================================
// Reliefs
// =============================================================================

func TestApplyReliefs_Caps(t *testing.T) {
	calc := Default()
	tests := []struct {
		name      string
		elections Elections
		pension   float64
		mortgage  float64
		insurance float64
	}{
		{"none", Elections{}, 0, 0, 0},
		{"under caps", Elections{PensionContribution: 10000, MortgageInterest: 5000, InsurancePremium: 10000}, 10000, 5000, 1500},
		{"over caps", Elections{PensionContribution: 40000, MortgageInterest: 30000, InsurancePremium: 50000}, 30000, 25000, 5000},
		{"exactly at caps", Elections{PensionContribution: 30000, MortgageInterest: 25000, InsurancePremium: 33333.34}, 30000, 25000, 5000},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := calc.ApplyReliefs(tc.elections)
			assertMoneyEquals(t, tc.pension, r.Pension, "pension relief")
			assertMoneyEquals(t, tc.mortgage, r.Mortgage, "mortgage relief")
			assertMoneyEquals(t, tc.insurance, r.Insurance, "insurance relief")
		})
	}
}
