package paye

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// LoadRates reads a rate table from a .yaml/.yml or .toml file. Keys missing
// from the file keep their Kenya 2026 values; a tax_bands list in the file
// replaces the default bands entirely. The last band may omit its upper limit.
func LoadRates(path string) (RateTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RateTable{}, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseRatesYAML(data)
	case ".toml":
		return ParseRatesTOML(data)
	default:
		return RateTable{}, fmt.Errorf("%w: unsupported rate file extension %q", ErrInvalidRates, filepath.Ext(path))
	}
}

// ParseRatesYAML decodes a YAML rate table
func ParseRatesYAML(data []byte) (RateTable, error) {
	rt := ratesSeed()
	if err := yaml.Unmarshal([]byte(preprocessPercentages(string(data))), &rt); err != nil {
		return RateTable{}, fmt.Errorf("%w: %v", ErrInvalidRates, err)
	}
	return finishLoadedRates(rt)
}

// ParseRatesTOML decodes a TOML rate table
func ParseRatesTOML(data []byte) (RateTable, error) {
	rt := ratesSeed()
	if _, err := toml.Decode(preprocessPercentages(string(data)), &rt); err != nil {
		return RateTable{}, fmt.Errorf("%w: %v", ErrInvalidRates, err)
	}
	return finishLoadedRates(rt)
}

// ratesSeed starts from the defaults with the collections cleared, so decoded
// lists never merge element-wise with the default bands
func ratesSeed() RateTable {
	rt := DefaultRates()
	rt.Bands = nil
	rt.VehicleBenefits = nil
	return rt
}

func finishLoadedRates(rt RateTable) (RateTable, error) {
	def := DefaultRates()
	if len(rt.Bands) == 0 {
		rt.Bands = def.Bands
	}
	if rt.VehicleBenefits == nil {
		rt.VehicleBenefits = def.VehicleBenefits
	}
	rt = normaliseRates(rt)
	if err := rt.Validate(); err != nil {
		return RateTable{}, err
	}
	return rt, nil
}

// normaliseRates treats a zero upper limit on the last band as unbounded and
// makes sure a "none" vehicle entry exists
func normaliseRates(rt RateTable) RateTable {
	rt = rt.Clone()
	if n := len(rt.Bands); n > 0 && rt.Bands[n-1].Upper == 0 {
		rt.Bands[n-1].Upper = math.Inf(1)
	}
	if _, ok := rt.VehicleBenefits[VehicleNone]; !ok {
		rt.VehicleBenefits[VehicleNone] = 0
	}
	return rt
}

var percentPattern = regexp.MustCompile(`([:=]\s*)(\d+\.?\d*)%`)

// preprocessPercentages converts values like "30%" or "2.75%" into decimals
// so rate files can be written the way rates are quoted
func preprocessPercentages(content string) string {
	return percentPattern.ReplaceAllStringFunc(content, func(match string) string {
		parts := percentPattern.FindStringSubmatch(match)
		if len(parts) < 3 {
			return match
		}
		num, err := strconv.ParseFloat(parts[2], 64)
		if err != nil {
			return match
		}
		return parts[1] + strconv.FormatFloat(num/100.0, 'f', -1, 64)
	})
}
