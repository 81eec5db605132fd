package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"goPayeCalculator/paye"
)

// cliApp is the state shared by every subcommand once the root has loaded
// configuration
type cliApp struct {
	cfgFile    string
	ratesFile  string
	jsonOutput bool
	logLevel   string

	config *Config
	calc   *paye.Calculator
	log    *zap.Logger
}

func newRootCmd() *cobra.Command {
	app := &cliApp{}

	rootCmd := &cobra.Command{
		Use:   "paye",
		Short: "Kenya PAYE net salary calculator",
		Long: `Calculates Kenyan monthly payroll: PAYE on the progressive tax bands,
NSSF, SHIF and the Affordable Housing Levy, reliefs for pension, mortgage
interest and insurance, and taxable benefits in kind.

Money can be written as 100000, 100,000, 100k or 1.5m.

Examples:
  paye calc 100k                         Net pay for KES 100,000 gross
  paye calc 250k --pension 20k --car above3000
  paye gross 75k                         Gross needed to take home KES 75,000
  paye bonus 300k 100k                   Tax on a KES 100,000 bonus
  paye bands 95680                       Band-by-band tax breakdown
  paye compare                           Net pay across common salaries
  paye payslip 120k --period 2026-10     Write a PDF payslip
  paye serve                             HTTP API and web form
  paye interactive                       Terminal form`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: app.setup,
	}

	rootCmd.PersistentFlags().StringVar(&app.cfgFile, "config", "config.yaml", "Path to YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&app.ratesFile, "rates", "", "Rate table file (.yaml or .toml) overriding the built-in rates")
	rootCmd.PersistentFlags().BoolVar(&app.jsonOutput, "json", false, "Write results as JSON")
	rootCmd.PersistentFlags().StringVar(&app.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(
		newCalcCmd(app),
		newGrossCmd(app),
		newBonusCmd(app),
		newBandsCmd(app),
		newCompareCmd(app),
		newPayslipCmd(app),
		newRatesCmd(app),
		newServeCmd(app),
		newInteractiveCmd(app),
	)
	return rootCmd
}

// Execute runs the CLI
func Execute() error {
	return newRootCmd().Execute()
}

func (app *cliApp) setup(cmd *cobra.Command, args []string) error {
	config, err := LoadConfigOrDefault(app.cfgFile)
	if err != nil {
		return errors.Wrap(err, "load config")
	}
	if app.ratesFile != "" {
		config.RatesFile = app.ratesFile
	}
	if app.logLevel != "" {
		config.Logging.Level = app.logLevel
	}

	logger, err := InitLogger(config.Logging)
	if err != nil {
		return errors.Wrap(err, "init logger")
	}

	calc, err := config.NewCalculator()
	if err != nil {
		return err
	}

	app.config, app.calc, app.log = config, calc, logger
	logger.Debug("Configuration loaded",
		zap.String("command", cmd.Name()),
		zap.String("config", app.cfgFile),
		zap.String("rates", calc.Rates().Name))
	return nil
}

// output writes v as JSON when --json is set, otherwise runs the console printer
func (app *cliApp) output(w io.Writer, v any, print func()) error {
	if app.jsonOutput {
		return WriteJSON(w, v)
	}
	PrintHeader(w, app.calc.Rates())
	print()
	return nil
}

// electionFlags holds election overrides from the command line. Only flags the
// user actually set replace the configured elections.
type electionFlags struct {
	pension    float64
	mortgage   float64
	insurance  float64
	disability bool
	loan       float64
	sacco      float64
	union      float64
	car        string
	housing    float64
	other      float64
}

func addElectionFlags(cmd *cobra.Command) *electionFlags {
	f := &electionFlags{}
	flags := cmd.Flags()
	flags.Var((*moneyFlag)(&f.pension), "pension", "Monthly pension contribution")
	flags.Var((*moneyFlag)(&f.mortgage), "mortgage", "Monthly mortgage interest")
	flags.Var((*moneyFlag)(&f.insurance), "insurance", "Monthly insurance premium")
	flags.BoolVar(&f.disability, "disability", false, "Holds a disability exemption certificate")
	flags.Var((*moneyFlag)(&f.loan), "loan", "Monthly HELB loan repayment")
	flags.Var((*moneyFlag)(&f.sacco), "sacco", "Monthly SACCO savings")
	flags.Var((*moneyFlag)(&f.union), "union", "Monthly union dues")
	flags.StringVar(&f.car, "car", "", "Company car: none, below1500, 1500to2000, 2000to3000, above3000")
	flags.Var((*moneyFlag)(&f.housing), "housing", "Monthly value of employer-provided housing")
	flags.Var((*moneyFlag)(&f.other), "other-benefits", "Other monthly taxable benefits")
	return f
}

// moneyFlag is a float flag that accepts the same forms as parseMoney
type moneyFlag float64

func (m *moneyFlag) String() string {
	return strconv.FormatFloat(float64(*m), 'f', -1, 64)
}

func (m *moneyFlag) Set(value string) error {
	v, err := parseMoney(value)
	if err != nil {
		return err
	}
	*m = moneyFlag(v)
	return nil
}

func (m *moneyFlag) Type() string {
	return "amount"
}

func (f *electionFlags) apply(cmd *cobra.Command, base paye.Elections) paye.Elections {
	flags := cmd.Flags()
	e := base
	if flags.Changed("pension") {
		e.PensionContribution = f.pension
	}
	if flags.Changed("mortgage") {
		e.MortgageInterest = f.mortgage
	}
	if flags.Changed("insurance") {
		e.InsurancePremium = f.insurance
	}
	if flags.Changed("disability") {
		e.HasDisability = f.disability
	}
	if flags.Changed("loan") {
		e.LoanRepayment = f.loan
	}
	if flags.Changed("sacco") {
		e.CooperativeSavings = f.sacco
	}
	if flags.Changed("union") {
		e.UnionDues = f.union
	}
	if flags.Changed("car") {
		e.VehicleBenefit = paye.VehicleCategory(strings.ToLower(f.car))
	}
	if flags.Changed("housing") {
		e.HousingBenefit = f.housing
	}
	if flags.Changed("other-benefits") {
		e.OtherBenefits = f.other
	}
	return e
}

// parseMoney parses money strings like "100k", "1.5m", "100,000" or "KES 100000"
func parseMoney(input string) (float64, error) {
	s := strings.TrimSpace(strings.ToLower(input))
	s = strings.TrimPrefix(s, "kes")
	s = strings.TrimPrefix(s, "ksh")
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")

	multiplier := 1.0
	if strings.HasSuffix(s, "k") {
		multiplier = 1000
		s = strings.TrimSuffix(s, "k")
	} else if strings.HasSuffix(s, "m") {
		multiplier = 1000000
		s = strings.TrimSuffix(s, "m")
	}

	val, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.Errorf("invalid amount %q: enter as '100k', '1.5m' or '100000'", input)
	}
	return val * multiplier, nil
}

func newCalcCmd(app *cliApp) *cobra.Command {
	var months int
	var ef *electionFlags

	cmd := &cobra.Command{
		Use:   "calc <gross>",
		Short: "Net salary and full deduction breakdown for a gross salary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gross, err := parseMoney(args[0])
			if err != nil {
				return err
			}
			elections := ef.apply(cmd, app.config.Elections)

			result, err := app.calc.FullCalculation(gross, elections)
			if err != nil {
				return err
			}
			util := app.calc.ReliefUtilisation(result)
			projection := ProjectMonths(result, time.Now(), months)

			out := cmd.OutOrStdout()
			return app.output(out, CalculateResponse{Result: result, Utilisation: util, Projection: projection}, func() {
				PrintResult(out, result, util)
				if len(projection) > 0 {
					PrintProjection(out, projection)
				}
			})
		},
	}
	ef = addElectionFlags(cmd)
	cmd.Flags().IntVar(&months, "months", 0, "Also show a cumulative projection over this many months")
	return cmd
}

func newGrossCmd(app *cliApp) *cobra.Command {
	var ef *electionFlags

	cmd := &cobra.Command{
		Use:   "gross <target-net>",
		Short: "Gross salary needed to take home a target net salary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := parseMoney(args[0])
			if err != nil {
				return err
			}
			elections := ef.apply(cmd, app.config.Elections)

			sol, solveErr := app.calc.SolveGrossForNet(target, elections)
			if solveErr != nil && !errors.Is(solveErr, paye.ErrNotConverged) {
				return solveErr
			}

			out := cmd.OutOrStdout()
			if err := app.output(out, sol, func() { PrintSolution(out, sol) }); err != nil {
				return err
			}
			// Not converging is still reported as a failure after printing the best guess
			return solveErr
		},
	}
	ef = addElectionFlags(cmd)
	return cmd
}

func newBonusCmd(app *cliApp) *cobra.Command {
	var ef *electionFlags

	cmd := &cobra.Command{
		Use:   "bonus <base-gross> <bonus>",
		Short: "Additional PAYE on a one-off bonus",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := parseMoney(args[0])
			if err != nil {
				return err
			}
			amount, err := parseMoney(args[1])
			if err != nil {
				return err
			}

			bonus, err := app.calc.BonusImpact(base, amount, ef.apply(cmd, app.config.Elections))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			return app.output(out, bonus, func() { PrintBonus(out, bonus) })
		},
	}
	ef = addElectionFlags(cmd)
	return cmd
}

func newBandsCmd(app *cliApp) *cobra.Command {
	return &cobra.Command{
		Use:   "bands <taxable-income>",
		Short: "Split taxable income across the PAYE bands",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taxable, err := parseMoney(args[0])
			if err != nil {
				return err
			}
			if taxable < 0 {
				return &paye.InputError{Field: "taxable", Message: "must not be negative"}
			}

			shares := app.calc.BandBreakdown(taxable)
			resp := BandsResponse{
				TaxableIncome:   taxable,
				Bands:           shares,
				TaxBeforeRelief: app.calc.LadderTax(taxable),
				MarginalRate:    app.calc.MarginalRate(taxable),
			}
			out := cmd.OutOrStdout()
			return app.output(out, resp, func() { PrintBands(out, taxable, shares) })
		},
	}
}

func newCompareCmd(app *cliApp) *cobra.Command {
	var csvFile, htmlFile string
	var ef *electionFlags

	cmd := &cobra.Command{
		Use:   "compare [gross...]",
		Short: "Compare net pay across several gross salaries",
		RunE: func(cmd *cobra.Command, args []string) error {
			levels := app.config.Comparison.GetLevels()
			if len(args) > 0 {
				levels = make([]float64, 0, len(args))
				for _, arg := range args {
					v, err := parseMoney(arg)
					if err != nil {
						return err
					}
					levels = append(levels, v)
				}
			}

			rows, err := app.calc.CompareSalaries(levels, ef.apply(cmd, app.config.Elections))
			if err != nil {
				return err
			}

			if csvFile != "" {
				err := writeReportFile(csvFile, func(w io.Writer) error {
					return WriteComparisonCSV(w, rows)
				})
				if err != nil {
					return err
				}
				app.log.Info("Comparison written", zap.String("file", csvFile), zap.Int("rows", len(rows)))
				return nil
			}
			if htmlFile != "" {
				if err := GenerateComparisonHTML(rows, app.calc.Rates().Name, htmlFile); err != nil {
					return err
				}
				app.log.Info("Comparison report written", zap.String("file", htmlFile), zap.Int("rows", len(rows)))
				return nil
			}

			out := cmd.OutOrStdout()
			return app.output(out, rows, func() { PrintComparison(out, rows) })
		},
	}
	ef = addElectionFlags(cmd)
	cmd.Flags().StringVar(&csvFile, "csv", "", "Write the comparison to a CSV file instead of the console")
	cmd.Flags().StringVar(&htmlFile, "html", "", "Write the comparison to an HTML report instead of the console")
	return cmd
}

func newPayslipCmd(app *cliApp) *cobra.Command {
	var period, outDir, employee, employeeNumber, employer string
	var ef *electionFlags

	cmd := &cobra.Command{
		Use:   "payslip <gross>",
		Short: "Write a PDF payslip rounded to whole shillings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gross, err := parseMoney(args[0])
			if err != nil {
				return err
			}
			start, err := parsePeriod(period)
			if err != nil {
				return err
			}

			result, err := app.calc.FullCalculation(gross, ef.apply(cmd, app.config.Elections))
			if err != nil {
				return err
			}

			info := app.config.Payslip
			if employer != "" {
				info.Employer = employer
			}
			if employee != "" {
				info.Employee = employee
			}
			if employeeNumber != "" {
				info.EmployeeNumber = employeeNumber
			}
			if outDir == "" {
				outDir = info.GetOutputDir()
			}

			payslip := NewPayslip(info, start, result)
			path, err := NewPayslipPDF(payslip).WriteFile(outDir)
			if err != nil {
				return err
			}
			app.log.Info("Payslip written",
				zap.String("file", path),
				zap.String("reference", payslip.Reference.String()))

			out := cmd.OutOrStdout()
			return app.output(out, payslip, func() {
				printRow(out, "Net pay", formatDecimalKES(payslip.Net))
				printRow(out, "Payslip", path)
			})
		},
	}
	ef = addElectionFlags(cmd)
	cmd.Flags().StringVar(&period, "period", "", "Pay period as YYYY-MM (default: current month)")
	cmd.Flags().StringVar(&outDir, "out", "", "Output directory (default: payslip.output_dir)")
	cmd.Flags().StringVar(&employer, "employer", "", "Employer name")
	cmd.Flags().StringVar(&employee, "employee", "", "Employee name")
	cmd.Flags().StringVar(&employeeNumber, "employee-number", "", "Employee number")
	return cmd
}

func newRatesCmd(app *cliApp) *cobra.Command {
	return &cobra.Command{
		Use:   "rates",
		Short: "Print the active rate table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rates := app.calc.Rates()
			out := cmd.OutOrStdout()
			if app.jsonOutput {
				return WriteJSON(out, rates)
			}
			data, err := yaml.Marshal(rates)
			if err != nil {
				return err
			}
			_, err = out.Write(data)
			return err
		},
	}
}

func newServeCmd(app *cliApp) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and web form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				app.config.Server.Addr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			server := NewWebServer(app.config, app.calc, app.log)
			fmt.Fprintf(cmd.OutOrStdout(), "Serving on http://%s\n", app.config.Server.GetAddr())
			return server.Start(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default: server.addr)")
	return cmd
}

func newInteractiveCmd(app *cliApp) *cobra.Command {
	return &cobra.Command{
		Use:   "interactive",
		Short: "Fill in a terminal form and see the payroll update",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractive(app.calc, app.config, app.cfgFile)
		},
	}
}
