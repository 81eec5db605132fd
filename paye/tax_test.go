package paye

import (
	"math"
	"testing"
)

// PAYE ladder validation against the 2026 monthly bands:
// - 0 - 24,000: 10%
// - 24,000 - 32,333: 25%
// - 32,333 - 500,000: 30%
// - 500,000 - 800,000: 32.5%
// - above 800,000: 35%
// Personal relief KES 2,400/month; disability relief KES 150,000/month.

// tolerance for floating point comparisons (KES 0.01)
const moneyTolerance = 0.01

func assertMoneyEquals(t *testing.T, expected, actual float64, description string) {
	t.Helper()
	if math.Abs(expected-actual) > moneyTolerance {
		t.Errorf("%s: expected KES %.2f, got KES %.2f (diff: KES %.2f)",
			description, expected, actual, actual-expected)
	}
}

// =============================================================================
// Ladder Tests (before relief)
// =============================================================================

func TestLadderTax_BandBoundaries(t *testing.T) {
	calc := Default()
	tests := []struct {
		income      float64
		expectedTax float64
		calculation string
	}{
		{0, 0, "nothing to tax"},
		{10000, 1000, "10000 x 0.10"},
		{24000, 2400, "24000 x 0.10"},
		{32333, 4483.25, "2400 + 8333 x 0.25"},
		{95680, 23487.35, "4483.25 + 63347 x 0.30"},
		{500000, 144783.35, "4483.25 + 467667 x 0.30"},
		{800000, 242283.35, "144783.35 + 300000 x 0.325"},
		{1000000, 312283.35, "242283.35 + 200000 x 0.35"},
	}

	for _, tc := range tests {
		t.Run(tc.calculation, func(t *testing.T) {
			assertMoneyEquals(t, tc.expectedTax, calc.LadderTax(tc.income), tc.calculation)
		})
	}
}

func TestLadderTax_NegativeIncomeIsZero(t *testing.T) {
	if tax := Default().LadderTax(-50000); tax != 0 {
		t.Errorf("negative income should have zero tax, got %.2f", tax)
	}
}

// =============================================================================
// Relief Tests
// =============================================================================

func TestComputeTax_PersonalRelief(t *testing.T) {
	tests := []struct {
		income      float64
		expectedTax float64
	}{
		{0, 0},
		{15000, 0},        // 1500 ladder tax, fully covered by relief
		{24000, 0},        // exactly the relief
		{30000, 1500},     // 2400 + 6000 x 0.25 - 2400
		{95680, 21087.35}, // 23487.35 - 2400
	}

	for _, tc := range tests {
		assertMoneyEquals(t, tc.expectedTax, ComputeTax(tc.income, false), "ComputeTax")
	}
}

func TestComputeTax_DisabilityRelief(t *testing.T) {
	// 195,680 taxable: ladder 53,487.35, well under 152,400 of relief
	assertMoneyEquals(t, 0, ComputeTax(195680, true), "mid income with disability relief")

	// 1,000,000 taxable: 312,283.35 - 152,400
	assertMoneyEquals(t, 159883.35, ComputeTax(1000000, true), "top band with disability relief")

	// Without the flag the same income pays the full relief-adjusted amount
	assertMoneyEquals(t, 309883.35, ComputeTax(1000000, false), "top band without disability relief")
}

func TestComputeTax_NeverNegative(t *testing.T) {
	for _, income := range []float64{-1000, 0, 1, 1000, 23999, 24000, 100000} {
		for _, disability := range []bool{false, true} {
			if tax := ComputeTax(income, disability); tax < 0 {
				t.Errorf("ComputeTax(%.0f, %v) = %.2f, want >= 0", income, disability, tax)
			}
		}
	}
}

// =============================================================================
// Band Breakdown Tests
// =============================================================================

func TestBandBreakdown_SumsToTaxableIncome(t *testing.T) {
	for _, income := range []float64{0, 5000, 24000, 32333, 95680, 500000, 799999.5, 1234567.89} {
		breakdown := BandBreakdown(income)
		if len(breakdown) != 5 {
			t.Fatalf("expected 5 bands, got %d", len(breakdown))
		}

		var amount, tax float64
		for _, share := range breakdown {
			amount += share.Amount
			tax += share.Tax
		}
		assertMoneyEquals(t, income, amount, "sum of band amounts")
		assertMoneyEquals(t, Default().LadderTax(income), tax, "sum of band tax")
	}
}

func TestBandBreakdown_UntouchedBandsAreZero(t *testing.T) {
	breakdown := BandBreakdown(95680)

	expected := []float64{24000, 8333, 63347, 0, 0}
	for i, share := range breakdown {
		assertMoneyEquals(t, expected[i], share.Amount, share.Band.Name+" amount")
	}
	if breakdown[3].Tax != 0 || breakdown[4].Tax != 0 {
		t.Errorf("higher bands should carry no tax, got %.2f and %.2f", breakdown[3].Tax, breakdown[4].Tax)
	}
	if !breakdown[4].Band.Unbounded() {
		t.Error("top band should be unbounded")
	}
}

func TestBandBreakdown_NegativeIncome(t *testing.T) {
	for _, share := range BandBreakdown(-100) {
		if share.Amount != 0 || share.Tax != 0 {
			t.Errorf("band %s: expected zero share for negative income, got %+v", share.Band.Name, share)
		}
	}
}

// =============================================================================
// Marginal Rate Tests
// =============================================================================

func TestMarginalRate(t *testing.T) {
	calc := Default()
	tests := []struct {
		income   float64
		expected float64
	}{
		{-10, 0.10},
		{0, 0.10},
		{23999, 0.10},
		{24000, 0.25},
		{32333, 0.30},
		{499999, 0.30},
		{500000, 0.325},
		{800000, 0.35},
		{5000000, 0.35},
	}

	for _, tc := range tests {
		if got := calc.MarginalRate(tc.income); got != tc.expected {
			t.Errorf("MarginalRate(%.0f) = %.3f; want %.3f", tc.income, got, tc.expected)
		}
	}
}
