package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"goPayeCalculator/paye"
)

// Console palette
var (
	colorPrimary = lipgloss.Color("#0E7C3A") // Kenyan green
	colorAccent  = lipgloss.Color("#BB0000") // red
	colorMuted   = lipgloss.Color("#6B7280")
	colorText    = lipgloss.Color("#F8FAFC")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorText).
			Background(colorPrimary).
			Padding(0, 2)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			MarginTop(1)

	labelStyle = lipgloss.NewStyle().Width(34)
	valueStyle = lipgloss.NewStyle().Width(18).Align(lipgloss.Right)

	totalStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(colorMuted)
	errorStyle = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
)

// FormatMoney formats an amount as KES with thousands separators and cents
func FormatMoney(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	// Round before splitting so 999.995 carries into the integer part
	cents := int64(math.Round(amount * 100))
	whole := strconv.FormatInt(cents/100, 10)

	var b strings.Builder
	for i, digit := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}
	return fmt.Sprintf("%sKES %s.%02d", sign, b.String(), cents%100)
}

// FormatMoneyShort formats large amounts as "KES 75k" or "KES 1.2M"
func FormatMoneyShort(amount float64) string {
	if amount >= 1000000 {
		return fmt.Sprintf("KES %.1fM", amount/1000000)
	}
	if amount >= 1000 {
		return fmt.Sprintf("KES %.0fk", amount/1000)
	}
	return fmt.Sprintf("KES %.0f", amount)
}

// formatPercent formats a fraction as a percentage
func formatPercent(rate float64) string {
	return strconv.FormatFloat(rate*100, 'f', 2, 64) + "%"
}

func printRow(w io.Writer, label, value string) {
	fmt.Fprintln(w, "  "+labelStyle.Render(label)+valueStyle.Render(value))
}

func printTotalRow(w io.Writer, label, value string) {
	fmt.Fprintln(w, "  "+totalStyle.Render(labelStyle.Render(label)+valueStyle.Render(value)))
}

// PrintHeader prints the application banner with the active rate table
func PrintHeader(w io.Writer, rates paye.RateTable) {
	fmt.Fprintln(w, titleStyle.Render("KENYA PAYE NET SALARY CALCULATOR"))
	fmt.Fprintln(w, mutedStyle.Render("Rates: "+rates.Name+" (monthly)"))
}

// PrintResult prints the full payroll breakdown for one salary
func PrintResult(w io.Writer, r paye.Result, util paye.Utilisation) {
	fmt.Fprintln(w, sectionStyle.Render("Earnings"))
	printRow(w, "Gross salary", FormatMoney(r.GrossSalary))
	if r.Benefits.Total > 0 {
		printRow(w, "Car benefit", FormatMoney(r.Benefits.Vehicle))
		printRow(w, "Housing benefit (taxable)", FormatMoney(r.Benefits.HousingTaxable))
		printRow(w, "Other benefits", FormatMoney(r.Benefits.Other))
		printRow(w, "Adjusted gross", FormatMoney(r.AdjustedGross))
	}

	fmt.Fprintln(w, sectionStyle.Render("Statutory deductions"))
	printRow(w, "NSSF", FormatMoney(r.NSSF))
	printRow(w, "SHIF", FormatMoney(r.SHIF))
	printRow(w, "Housing levy", FormatMoney(r.HousingLevy))

	fmt.Fprintln(w, sectionStyle.Render("Tax"))
	if r.Reliefs.PreTax() > 0 {
		printRow(w, "Pension relief", FormatMoney(r.Reliefs.Pension))
		printRow(w, "Mortgage interest relief", FormatMoney(r.Reliefs.Mortgage))
	}
	printRow(w, "Taxable income", FormatMoney(r.TaxableIncome))
	if r.Reliefs.Insurance > 0 {
		printRow(w, "Tax before insurance relief", FormatMoney(r.TaxBeforeInsurance))
		printRow(w, "Insurance relief", FormatMoney(r.Reliefs.Insurance))
	}
	printRow(w, "PAYE", FormatMoney(r.PAYE))

	if r.VoluntaryDeductions > 0 {
		fmt.Fprintln(w, sectionStyle.Render("Voluntary deductions"))
		printRow(w, "HELB loan", FormatMoney(r.Voluntary.LoanRepayment))
		printRow(w, "SACCO", FormatMoney(r.Voluntary.CooperativeSavings))
		printRow(w, "Union dues", FormatMoney(r.Voluntary.UnionDues))
	}

	fmt.Fprintln(w, sectionStyle.Render("Summary"))
	printRow(w, "Total deductions", FormatMoney(r.TotalDeductions))
	printTotalRow(w, "Net salary", FormatMoney(r.NetSalary))
	printRow(w, "Effective tax rate", formatPercent(r.EffectiveTaxRate))
	printRow(w, "Total deduction rate", formatPercent(r.TotalDeductionRate))
	printRow(w, "Marginal rate", formatPercent(r.MarginalRate))

	fmt.Fprintln(w, sectionStyle.Render("Employer"))
	printRow(w, "Employer NSSF", FormatMoney(r.Employer.NSSF))
	printRow(w, "Employer housing levy", FormatMoney(r.Employer.HousingLevy))
	printTotalRow(w, "Total employer cost", FormatMoney(r.TotalEmployerCost))
	printRow(w, "On-cost", formatPercent(r.EmployerOnCost))

	fmt.Fprintln(w, sectionStyle.Render("Relief utilisation"))
	printRow(w, "Pension cap used", formatPercent(util.Pension))
	printRow(w, "Mortgage cap used", formatPercent(util.Mortgage))
	printRow(w, "Insurance cap used", formatPercent(util.Insurance))
	printRow(w, "NSSF maximum reached", formatPercent(util.NSSF))
}

// PrintBands prints how taxable income falls across the PAYE bands
func PrintBands(w io.Writer, taxable float64, shares []paye.BandShare) {
	fmt.Fprintln(w, sectionStyle.Render("Tax bands for "+FormatMoney(taxable)))
	fmt.Fprintf(w, "  %-8s %-28s %18s %16s\n", "Rate", "Range", "In band", "Tax")
	fmt.Fprintln(w, "  "+strings.Repeat("─", 73))

	var total float64
	for _, s := range shares {
		upper := "and above"
		if !s.Band.Unbounded() {
			upper = "- " + FormatMoneyShort(s.Band.Upper)
		}
		line := fmt.Sprintf("  %-8s %-28s %18s %16s",
			formatPercent(s.Band.Rate), FormatMoneyShort(s.Band.Lower)+" "+upper,
			FormatMoney(s.Amount), FormatMoney(s.Tax))
		if s.Amount == 0 {
			line = mutedStyle.Render(line)
		}
		fmt.Fprintln(w, line)
		total += s.Tax
	}
	fmt.Fprintln(w, "  "+strings.Repeat("─", 73))
	fmt.Fprintln(w, totalStyle.Render(fmt.Sprintf("  %-56s %16s", "Tax before relief", FormatMoney(total))))
}

// PrintSolution prints a net-to-gross result
func PrintSolution(w io.Writer, sol paye.Solution) {
	fmt.Fprintln(w, sectionStyle.Render("Net to gross"))
	printRow(w, "Target net salary", FormatMoney(sol.TargetNet))
	printTotalRow(w, "Required gross salary", FormatMoney(sol.Gross))
	printRow(w, "Net at that gross", FormatMoney(sol.Net))
	printRow(w, "Iterations", strconv.Itoa(sol.Iterations))
	if sol.Status != paye.Converged {
		fmt.Fprintln(w, "  "+errorStyle.Render("Search "+sol.Status.String()+"; gross shown is the closest found"))
	}
}

// PrintBonus prints the marginal tax on a bonus
func PrintBonus(w io.Writer, b paye.Bonus) {
	fmt.Fprintln(w, sectionStyle.Render("Bonus"))
	printRow(w, "Base gross salary", FormatMoney(b.BaseGross))
	printRow(w, "Bonus", FormatMoney(b.BonusAmount))
	printRow(w, "Additional PAYE", FormatMoney(b.BonusTax))
	printTotalRow(w, "Bonus after tax", FormatMoney(b.NetBonus))
	printRow(w, "Tax rate on bonus", formatPercent(b.BonusRate))
	printRow(w, "Net salary without bonus", FormatMoney(b.Base.NetSalary))
	printRow(w, "Net salary with bonus", FormatMoney(b.WithBonus.NetSalary))
}

// PrintComparison prints the salary comparison table
func PrintComparison(w io.Writer, rows []paye.ComparisonRow) {
	fmt.Fprintln(w, sectionStyle.Render("Salary comparison"))
	fmt.Fprintf(w, "  %18s %18s %18s %10s %9s\n", "Gross", "Net", "PAYE", "Effective", "Marginal")
	fmt.Fprintln(w, "  "+strings.Repeat("─", 77))
	for _, row := range rows {
		fmt.Fprintf(w, "  %18s %18s %18s %10s %9s\n",
			FormatMoney(row.Gross), FormatMoney(row.Net), FormatMoney(row.PAYE),
			formatPercent(row.EffectiveTaxRate), formatPercent(row.MarginalRate))
	}
}

// PrintProjection prints cumulative monthly totals
func PrintProjection(w io.Writer, months []ProjectionMonth) {
	fmt.Fprintln(w, sectionStyle.Render(fmt.Sprintf("%d-month projection", len(months))))
	fmt.Fprintf(w, "  %-9s %18s %18s %18s\n", "Month", "Cumulative gross", "Cumulative net", "Cumulative PAYE")
	fmt.Fprintln(w, "  "+strings.Repeat("─", 66))
	for _, m := range months {
		fmt.Fprintf(w, "  %-9s %18s %18s %18s\n",
			m.Label, FormatMoney(m.CumulativeGross), FormatMoney(m.CumulativeNet), FormatMoney(m.CumulativePAYE))
	}
}

// WriteJSON writes v as indented JSON
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteComparisonCSV writes comparison rows with a header line. Amounts are
// plain numbers with two decimals so spreadsheets can sum them.
func WriteComparisonCSV(w io.Writer, rows []paye.ComparisonRow) error {
	cw := csv.NewWriter(w)
	header := []string{"gross", "net", "paye", "total_deductions", "effective_tax_rate", "marginal_rate"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			strconv.FormatFloat(row.Gross, 'f', 2, 64),
			strconv.FormatFloat(row.Net, 'f', 2, 64),
			strconv.FormatFloat(row.PAYE, 'f', 2, 64),
			strconv.FormatFloat(row.TotalDeductions, 'f', 2, 64),
			strconv.FormatFloat(row.EffectiveTaxRate, 'f', 4, 64),
			strconv.FormatFloat(row.MarginalRate, 'f', 4, 64),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
