// Package config loads the pipeline configuration from a TOML file.
//
// Values are layered, lowest precedence first: built-in defaults, the TOML
// file, EDA_* environment variables, then command-line flags. Environment
// keys use a double underscore between section and key, so EDA_PLOTS__DIR
// sets plots.dir.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// DefaultPath is the configuration file used when none is given.
const DefaultPath = "config.toml"

// EnvPrefix marks environment variables that override file values.
const EnvPrefix = "EDA_"

// Config holds all pipeline settings.
type Config struct {
	Data    DataConfig    `koanf:"data"`
	Plots   PlotsConfig   `koanf:"plots"`
	Logging LoggingConfig `koanf:"logging"`
	Metrics MetricsConfig `koanf:"metrics"`
}

// DataConfig locates the input and output tables.
type DataConfig struct {
	RawFile        string `koanf:"raw_file"`
	CleanedFile    string `koanf:"cleaned_file"`
	SampleFile     string `koanf:"sample_file"`
	CleanedParquet string `koanf:"cleaned_parquet"` // optional
	SampleRows     int    `koanf:"sample_rows"`
	SampleSeed     uint64 `koanf:"sample_seed"`
}

// PlotsConfig controls chart rendering.
type PlotsConfig struct {
	Dir               string  `koanf:"dir"`
	ScatterSampleSize int     `koanf:"scatter_sample_size"`
	RouteMinFlights   int     `koanf:"route_min_flights"`
	RouteTopN         int     `koanf:"route_top_n"`
	DelayLower        float64 `koanf:"delay_lower"`
	DelayUpper        float64 `koanf:"delay_upper"`
	SummaryWorkbook   string  `koanf:"summary_workbook"`
	WidthIn           float64 `koanf:"width_in"`
	HeightIn          float64 `koanf:"height_in"`
}

// LoggingConfig selects log verbosity and encoding.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// MetricsConfig names the Prometheus textfile written when profiling.
type MetricsConfig struct {
	Textfile string `koanf:"textfile"`
}

// Defaults returns the built-in values, keyed by dotted path.
func Defaults() map[string]any {
	return map[string]any{
		"data.raw_file":             "data/flight_data_2024.csv",
		"data.cleaned_file":         "data/flight_data_2024_cleaned.csv",
		"data.sample_file":          "data/flight_data_2024_sample.csv",
		"data.cleaned_parquet":      "",
		"data.sample_rows":          5000,
		"data.sample_seed":          42,
		"plots.dir":                 "plots",
		"plots.scatter_sample_size": 20000,
		"plots.route_min_flights":   100,
		"plots.route_top_n":         10,
		"plots.delay_lower":         -60.0,
		"plots.delay_upper":         180.0,
		"plots.summary_workbook":    "summary.xlsx",
		"plots.width_in":            8.0,
		"plots.height_in":           5.0,
		"logging.level":             "info",
		"logging.format":            "text",
		"metrics.textfile":          "metrics.prom",
	}
}

// flagKeys maps command-line flags onto configuration keys.
var flagKeys = map[string]string{
	"log-level": "logging.level",
}

// Load reads the TOML file at path and applies environment and flag
// overrides. flags may be nil. A missing file is an error wrapping
// fs.ErrNotExist.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey turns EDA_PLOTS__ROUTE_TOP_N into plots.route_top_n. Variables
// without a section separator, such as EDA_CONFIG, are ignored.
func envKey(name string) string {
	key := strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
	if !strings.Contains(key, "__") {
		return ""
	}
	return strings.ReplaceAll(key, "__", ".")
}

// Validate reports the first invalid setting, naming its key.
func (c *Config) Validate() error {
	required := []struct{ key, val string }{
		{"data.raw_file", c.Data.RawFile},
		{"data.cleaned_file", c.Data.CleanedFile},
		{"data.sample_file", c.Data.SampleFile},
		{"plots.dir", c.Plots.Dir},
		{"metrics.textfile", c.Metrics.Textfile},
	}
	for _, r := range required {
		if strings.TrimSpace(r.val) == "" {
			return fmt.Errorf("%s is required", r.key)
		}
	}

	switch {
	case c.Plots.DelayLower >= c.Plots.DelayUpper:
		return fmt.Errorf("plots.delay_lower (%g) must be below plots.delay_upper (%g)", c.Plots.DelayLower, c.Plots.DelayUpper)
	case c.Plots.ScatterSampleSize <= 0:
		return errors.New("plots.scatter_sample_size must be positive")
	case c.Plots.RouteTopN <= 0:
		return errors.New("plots.route_top_n must be positive")
	case c.Plots.RouteMinFlights < 0:
		return errors.New("plots.route_min_flights must not be negative")
	case c.Plots.WidthIn <= 0 || c.Plots.HeightIn <= 0:
		return errors.New("plots.width_in and plots.height_in must be positive")
	case c.Data.SampleRows <= 0:
		return errors.New("data.sample_rows must be positive")
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q must be one of debug, info, warn, error", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format %q must be text or json", c.Logging.Format)
	}
	return nil
}

// SummaryWorkbookPath returns where the summary workbook goes, or "" when disabled.
func (c *Config) SummaryWorkbookPath() string {
	if c.Plots.SummaryWorkbook == "" {
		return ""
	}
	return filepath.Join(c.Plots.Dir, c.Plots.SummaryWorkbook)
}

// MetricsTextfilePath returns where the profiling textfile goes.
func (c *Config) MetricsTextfilePath() string {
	return filepath.Join(c.Plots.Dir, c.Metrics.Textfile)
}
