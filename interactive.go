package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"

	"goPayeCalculator/paye"
)

// ValidationError reports a form field that could not be parsed
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// Form styles
var (
	formLabelStyle   = lipgloss.NewStyle().Width(26).Foreground(colorMuted)
	formFocusStyle   = lipgloss.NewStyle().Width(26).Foreground(colorPrimary).Bold(true)
	formPanelStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorPrimary).Padding(0, 1).MarginTop(1)
	formHelpStyle    = lipgloss.NewStyle().Foreground(colorMuted).MarginTop(1)
	formNetStyle     = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	formSuccessStyle = lipgloss.NewStyle().Foreground(colorPrimary)
)

// formField is one money input on the form
type formField struct {
	key   string
	label string
	input textinput.Model
}

// interactiveModel is the bubbletea model behind "paye interactive". Every
// change to the form recalculates the payroll.
type interactiveModel struct {
	calc       *paye.Calculator
	config     *Config
	configFile string

	fields       []formField
	vehicleIndex int
	disability   bool
	focus        int

	result *paye.Result
	err    error
	status string
}

// Rows after the money fields
const (
	extraRowVehicle = iota
	extraRowDisability
	extraRowCount
)

func newMoneyInput(placeholder string, value float64) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = 16
	in.Width = 16
	in.Prompt = ""
	if value > 0 {
		in.SetValue(strconv.FormatFloat(value, 'f', -1, 64))
	}
	return in
}

func newInteractiveModel(calc *paye.Calculator, config *Config, configFile string) interactiveModel {
	e := config.Elections
	m := interactiveModel{
		calc:       calc,
		config:     config,
		configFile: configFile,
		fields: []formField{
			{key: "gross_salary", label: "Gross salary", input: newMoneyInput("e.g. 100k", 0)},
			{key: "pension_contribution", label: "Pension contribution", input: newMoneyInput("0", e.PensionContribution)},
			{key: "mortgage_interest", label: "Mortgage interest", input: newMoneyInput("0", e.MortgageInterest)},
			{key: "insurance_premium", label: "Insurance premium", input: newMoneyInput("0", e.InsurancePremium)},
			{key: "housing_benefit", label: "Housing benefit", input: newMoneyInput("0", e.HousingBenefit)},
			{key: "other_benefits", label: "Other benefits", input: newMoneyInput("0", e.OtherBenefits)},
			{key: "loan_repayment", label: "HELB loan", input: newMoneyInput("0", e.LoanRepayment)},
			{key: "cooperative_savings", label: "SACCO savings", input: newMoneyInput("0", e.CooperativeSavings)},
			{key: "union_dues", label: "Union dues", input: newMoneyInput("0", e.UnionDues)},
		},
		disability: e.HasDisability,
	}
	for i, v := range paye.VehicleCategories {
		if v == e.VehicleBenefit {
			m.vehicleIndex = i
		}
	}
	m.fields[0].input.Focus()
	m.recalculate()
	return m
}

// Init implements tea.Model
func (m interactiveModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model
func (m interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit
	case "tab", "down", "enter":
		return m.moveFocus(1), nil
	case "shift+tab", "up":
		return m.moveFocus(-1), nil
	case "ctrl+s":
		return m.save(), nil
	}

	switch m.focus - len(m.fields) {
	case extraRowVehicle:
		switch key.String() {
		case "left", "h":
			m.vehicleIndex = (m.vehicleIndex + len(paye.VehicleCategories) - 1) % len(paye.VehicleCategories)
		case "right", "l", " ":
			m.vehicleIndex = (m.vehicleIndex + 1) % len(paye.VehicleCategories)
		}
		m.recalculate()
		return m, nil
	case extraRowDisability:
		if key.String() == " " || key.String() == "x" {
			m.disability = !m.disability
			m.recalculate()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.fields[m.focus].input, cmd = m.fields[m.focus].input.Update(msg)
	m.recalculate()
	return m, cmd
}

func (m interactiveModel) moveFocus(delta int) interactiveModel {
	rows := len(m.fields) + extraRowCount
	if m.focus < len(m.fields) {
		m.fields[m.focus].input.Blur()
	}
	m.focus = (m.focus + delta + rows) % rows
	if m.focus < len(m.fields) {
		m.fields[m.focus].input.Focus()
	}
	return m
}

// formValues parses the form into a gross salary and elections
func (m interactiveModel) formValues() (float64, paye.Elections, error) {
	values := make(map[string]float64, len(m.fields))
	for _, f := range m.fields {
		raw := strings.TrimSpace(f.input.Value())
		if raw == "" {
			values[f.key] = 0
			continue
		}
		v, err := parseMoney(raw)
		if err != nil {
			return 0, paye.Elections{}, ValidationError{Field: f.label, Message: "enter an amount like 100k or 100000"}
		}
		values[f.key] = v
	}

	e := paye.Elections{
		PensionContribution: values["pension_contribution"],
		MortgageInterest:    values["mortgage_interest"],
		InsurancePremium:    values["insurance_premium"],
		HasDisability:       m.disability,
		LoanRepayment:       values["loan_repayment"],
		CooperativeSavings:  values["cooperative_savings"],
		UnionDues:           values["union_dues"],
		VehicleBenefit:      paye.VehicleCategories[m.vehicleIndex],
		HousingBenefit:      values["housing_benefit"],
		OtherBenefits:       values["other_benefits"],
	}
	return values["gross_salary"], e, nil
}

func (m *interactiveModel) recalculate() {
	m.status = ""
	gross, e, err := m.formValues()
	if err == nil {
		var r paye.Result
		r, err = m.calc.FullCalculation(gross, e)
		if err == nil {
			m.result, m.err = &r, nil
			return
		}
	}
	m.result, m.err = nil, err
}

// save writes the current elections (not the salary) back to the config file
func (m interactiveModel) save() interactiveModel {
	_, e, err := m.formValues()
	if err != nil {
		m.err = err
		return m
	}
	cfg := *m.config
	cfg.Elections = e
	if err := SaveConfig(&cfg, m.configFile); err != nil {
		m.err = errors.Wrapf(err, "save %s", m.configFile)
		return m
	}
	m.config = &cfg
	m.status = "Elections saved to " + m.configFile
	return m
}

// View implements tea.Model
func (m interactiveModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("KENYA PAYE CALCULATOR"))
	b.WriteString("\n\n")

	label := func(row int, text string) string {
		if row == m.focus {
			return formFocusStyle.Render("> " + text)
		}
		return formLabelStyle.Render("  " + text)
	}

	for i, f := range m.fields {
		b.WriteString(label(i, f.label) + f.input.View() + "\n")
	}
	vehicle := paye.VehicleCategories[m.vehicleIndex]
	b.WriteString(label(len(m.fields)+extraRowVehicle, "Company car") + "< " + vehicle.String() + " >\n")
	check := "[ ]"
	if m.disability {
		check = "[x]"
	}
	b.WriteString(label(len(m.fields)+extraRowDisability, "Disability exemption") + check + "\n")

	switch {
	case m.err != nil:
		b.WriteString(formPanelStyle.Render(errorStyle.Render(m.err.Error())))
	case m.result != nil:
		b.WriteString(formPanelStyle.Render(m.summary(*m.result)))
	}
	if m.status != "" {
		b.WriteString("\n" + formSuccessStyle.Render(m.status))
	}

	b.WriteString(formHelpStyle.Render("tab/↓ next • shift+tab/↑ back • ←/→ car • space toggle • ctrl+s save elections • esc quit"))
	b.WriteString("\n")
	return b.String()
}

func (m interactiveModel) summary(r paye.Result) string {
	lines := []string{
		fmt.Sprintf("%-22s %18s", "Taxable income", FormatMoney(r.TaxableIncome)),
		fmt.Sprintf("%-22s %18s", "PAYE", FormatMoney(r.PAYE)),
		fmt.Sprintf("%-22s %18s", "NSSF", FormatMoney(r.NSSF)),
		fmt.Sprintf("%-22s %18s", "SHIF", FormatMoney(r.SHIF)),
		fmt.Sprintf("%-22s %18s", "Housing levy", FormatMoney(r.HousingLevy)),
		fmt.Sprintf("%-22s %18s", "Voluntary deductions", FormatMoney(r.VoluntaryDeductions)),
		formNetStyle.Render(fmt.Sprintf("%-22s %18s", "Net salary", FormatMoney(r.NetSalary))),
		fmt.Sprintf("%-22s %18s", "Effective tax rate", formatPercent(r.EffectiveTaxRate)),
		fmt.Sprintf("%-22s %18s", "Employer cost", FormatMoney(r.TotalEmployerCost)),
	}
	return strings.Join(lines, "\n")
}

// runInteractive runs the terminal form until the user quits
func runInteractive(calc *paye.Calculator, config *Config, configFile string) error {
	p := tea.NewProgram(newInteractiveModel(calc, config, configFile))
	_, err := p.Run()
	return err
}
