package main

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"goPayeCalculator/paye"
)

// PayslipLine is one rounded amount on a payslip
type PayslipLine struct {
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
}

// Payslip is a payroll result rounded to whole shillings for printing.
// Net pay is recomputed from the rounded lines, so Gross minus the sum of
// Deductions always equals Net exactly.
type Payslip struct {
	Reference      uuid.UUID `json:"reference"`
	Period         string    `json:"period"`
	PeriodStart    time.Time `json:"period_start"`
	Employer       string    `json:"employer"`
	Employee       string    `json:"employee"`
	EmployeeNumber string    `json:"employee_number"`
	GeneratedAt    time.Time `json:"generated_at"`

	Gross           decimal.Decimal `json:"gross"`
	TaxableBenefits decimal.Decimal `json:"taxable_benefits"`
	TaxableIncome   decimal.Decimal `json:"taxable_income"`

	Deductions      []PayslipLine   `json:"deductions"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	Net             decimal.Decimal `json:"net"`

	EmployerContributions []PayslipLine   `json:"employer_contributions"`
	EmployerCost          decimal.Decimal `json:"employer_cost"`

	// Unrounded figures the payslip was built from
	Result paye.Result `json:"result"`
}

// roundKES rounds half away from zero to whole shillings
func roundKES(amount float64) decimal.Decimal {
	return decimal.NewFromFloat(amount).Round(0)
}

// NewPayslip rounds a payroll result into payslip lines. Voluntary deductions
// appear only when non-zero; statutory lines always appear.
func NewPayslip(info PayslipConfig, period time.Time, r paye.Result) Payslip {
	p := Payslip{
		Reference:      uuid.New(),
		Period:         period.Format("January 2006"),
		PeriodStart:    period,
		Employer:       info.Employer,
		Employee:       info.Employee,
		EmployeeNumber: info.EmployeeNumber,
		GeneratedAt:    time.Now(),

		Gross:           roundKES(r.GrossSalary),
		TaxableBenefits: roundKES(r.Benefits.Total),
		TaxableIncome:   roundKES(r.TaxableIncome),
		Result:          r,
	}

	p.Deductions = []PayslipLine{
		{Label: "PAYE", Amount: roundKES(r.PAYE)},
		{Label: "NSSF", Amount: roundKES(r.NSSF)},
		{Label: "SHIF", Amount: roundKES(r.SHIF)},
		{Label: "Housing Levy", Amount: roundKES(r.HousingLevy)},
	}
	voluntary := []PayslipLine{
		{Label: "HELB Loan", Amount: roundKES(r.Voluntary.LoanRepayment)},
		{Label: "SACCO", Amount: roundKES(r.Voluntary.CooperativeSavings)},
		{Label: "Union Dues", Amount: roundKES(r.Voluntary.UnionDues)},
	}
	for _, line := range voluntary {
		if !line.Amount.IsZero() {
			p.Deductions = append(p.Deductions, line)
		}
	}

	p.TotalDeductions = sumLines(p.Deductions)
	p.Net = p.Gross.Sub(p.TotalDeductions)

	p.EmployerContributions = []PayslipLine{
		{Label: "Employer NSSF", Amount: roundKES(r.Employer.NSSF)},
		{Label: "Employer Housing Levy", Amount: roundKES(r.Employer.HousingLevy)},
	}
	p.EmployerCost = p.Gross.Add(sumLines(p.EmployerContributions))

	return p
}

// Reconciles reports whether gross less deductions equals net
func (p Payslip) Reconciles() bool {
	return p.Gross.Sub(sumLines(p.Deductions)).Equal(p.Net)
}

// Filename is the default PDF name for the payslip
func (p Payslip) Filename() string {
	return "payslip-" + p.PeriodStart.Format("2006-01") + "-" + p.Reference.String()[:8] + ".pdf"
}

func sumLines(lines []PayslipLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Amount)
	}
	return total
}

// parsePeriod accepts "2026-10" or an empty string for the current month
func parsePeriod(value string) (time.Time, error) {
	if value == "" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.Local), nil
	}
	t, err := time.Parse("2006-01", value)
	if err != nil {
		return time.Time{}, errors.Errorf("invalid period %q (use YYYY-MM)", value)
	}
	return t, nil
}
