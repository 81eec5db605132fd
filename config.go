package main

import (
	_ "embed"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"goPayeCalculator/paye"
)

//go:embed default-config.yaml
var defaultConfigYAML string

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Addr            string   `yaml:"addr" json:"addr"`
	CORSOrigins     []string `yaml:"cors_origins" json:"cors_origins"`
	ShutdownTimeout int      `yaml:"shutdown_timeout" json:"shutdown_timeout"` // seconds
}

// LoggingConfig selects the zap encoder and level
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	JSON  bool   `yaml:"json" json:"json"`
}

// PayslipConfig holds the names printed on generated payslips
type PayslipConfig struct {
	Employer       string `yaml:"employer" json:"employer"`
	Employee       string `yaml:"employee" json:"employee"`
	EmployeeNumber string `yaml:"employee_number" json:"employee_number"`
	OutputDir      string `yaml:"output_dir" json:"output_dir"`
}

// ComparisonConfig configures the salary comparison table and projection
type ComparisonConfig struct {
	Levels           []float64 `yaml:"levels" json:"levels"`
	ProjectionMonths int       `yaml:"projection_months" json:"projection_months"`
}

// Config is the application configuration loaded from config.yaml
type Config struct {
	Server     ServerConfig     `yaml:"server" json:"server"`
	Logging    LoggingConfig    `yaml:"logging" json:"logging"`
	RatesFile  string           `yaml:"rates_file" json:"rates_file"`
	Payslip    PayslipConfig    `yaml:"payslip" json:"payslip"`
	Elections  paye.Elections   `yaml:"elections" json:"elections"`
	Comparison ComparisonConfig `yaml:"comparison" json:"comparison"`
}

// LoadConfig loads configuration from a YAML file. Keys missing from the file
// keep the values from the embedded default configuration.
func LoadConfig(filename string) (*Config, error) {
	config, err := LoadDefaultConfig()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, errors.Wrapf(err, "parse %s", filename)
	}

	return config, nil
}

// LoadConfigOrDefault loads filename when it exists and falls back to the
// embedded defaults otherwise. Environment overrides are applied either way.
func LoadConfigOrDefault(filename string) (*Config, error) {
	config, err := LoadConfig(filename)
	if os.IsNotExist(errors.Cause(err)) {
		config, err = LoadDefaultConfig()
	}
	if err != nil {
		return nil, err
	}

	// A missing .env file is normal
	_ = godotenv.Load()
	config.ApplyEnv(os.Getenv)
	return config, nil
}

// SaveConfig saves configuration to a YAML file
func SaveConfig(config *Config, filename string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return err
	}

	header := []byte(`# Kenya PAYE Calculator Configuration
# Generated by "paye interactive" - feel free to edit manually
#
# Money values are monthly amounts in KES.
# See default-config.yaml for all available options with detailed comments.

`)
	content := append(header, data...)
	return os.WriteFile(filename, content, 0644)
}

// LoadDefaultConfig loads the default configuration from embedded default-config.yaml
func LoadDefaultConfig() (*Config, error) {
	var config Config
	if err := yaml.Unmarshal([]byte(defaultConfigYAML), &config); err != nil {
		return nil, errors.Wrap(err, "parse embedded default config")
	}
	return &config, nil
}

// ApplyEnv overrides config values from PAYE_* environment variables
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv("PAYE_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := getenv("PAYE_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := getenv("PAYE_LOG_JSON"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Logging.JSON = b
		}
	}
	if v := getenv("PAYE_RATES_FILE"); v != "" {
		c.RatesFile = v
	}
	if v := getenv("PAYE_CORS_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.Server.CORSOrigins = origins
	}
}

// GetAddr returns the listen address, defaulting to localhost:8080
func (s *ServerConfig) GetAddr() string {
	if s.Addr == "" {
		return "localhost:8080"
	}
	return s.Addr
}

// GetShutdownTimeout returns the graceful shutdown window (default 10s)
func (s *ServerConfig) GetShutdownTimeout() time.Duration {
	if s.ShutdownTimeout <= 0 {
		return 10 * time.Second
	}
	return time.Duration(s.ShutdownTimeout) * time.Second
}

// GetLevels returns the comparison levels, or the standard ladder if none are set
func (c *ComparisonConfig) GetLevels() []float64 {
	if len(c.Levels) == 0 {
		return paye.DefaultComparisonLevels
	}
	return c.Levels
}

// GetProjectionMonths returns the projection length (default 12)
func (c *ComparisonConfig) GetProjectionMonths() int {
	if c.ProjectionMonths <= 0 {
		return 12
	}
	return c.ProjectionMonths
}

// GetOutputDir returns where payslip PDFs are written (default "payslips")
func (p *PayslipConfig) GetOutputDir() string {
	if p.OutputDir == "" {
		return "payslips"
	}
	return p.OutputDir
}

// NewCalculator builds the calculator for this config: the compiled-in table,
// or the rate file named by rates_file
func (c *Config) NewCalculator() (*paye.Calculator, error) {
	if c.RatesFile == "" {
		return paye.Default(), nil
	}
	rates, err := paye.LoadRates(c.RatesFile)
	if err != nil {
		return nil, errors.Wrapf(err, "load rates from %s", c.RatesFile)
	}
	calc, err := paye.NewCalculator(rates)
	if err != nil {
		return nil, errors.Wrapf(err, "rates from %s", c.RatesFile)
	}
	return calc, nil
}
