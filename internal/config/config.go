// Package config handles CLI configuration using Viper.
package config

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/felixgeelhaar/forecast/internal/errors"
	"github.com/felixgeelhaar/forecast/internal/log"
)

// EnvPrefix prefixes environment overrides, e.g. FORECAST_SIMULATION_ITERATIONS.
const EnvPrefix = "FORECAST"

// Config holds the CLI configuration.
type Config struct {
	Simulation SimulationConfig `mapstructure:"simulation"`
	Log        LogConfig        `mapstructure:"log"`
	Output     OutputConfig     `mapstructure:"output"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Timezone   string           `mapstructure:"timezone"`
}

// SimulationConfig holds Monte Carlo settings.
type SimulationConfig struct {
	Iterations int    `mapstructure:"iterations"`
	Workers    int    `mapstructure:"workers"`
	Seed       uint64 `mapstructure:"seed"` // 0 picks one per run
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// OutputConfig holds command output settings.
type OutputConfig struct {
	Format  string `mapstructure:"format"` // text, json or yaml
	NoColor bool   `mapstructure:"no_color"`
}

// MetricsConfig holds metrics settings.
type MetricsConfig struct {
	File string `mapstructure:"file"` // Prometheus text dump written on exit
}

// flagKeys maps persistent CLI flags to configuration keys.
var flagKeys = map[string]string{
	"log-level":    "log.level",
	"log-format":   "log.format",
	"output":       "output.format",
	"no-color":     "output.no_color",
	"metrics-file": "metrics.file",
	"timezone":     "timezone",
}

// Load reads configuration from configPath, or ~/.forecast/config.yaml when
// empty, then environment variables, then any changed flags in flags.
func Load(configPath string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".forecast"))
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, errors.Wrap(errors.ErrCodeConfigInvalid, "failed to bind flag "+name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !stderrors.As(err, &notFound) {
			return nil, errors.Wrap(errors.ErrCodeConfigInvalid, "failed to read configuration", err).
				WithSuggestion("Check the YAML syntax of the configuration file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfigInvalid, "failed to decode configuration", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when no file, environment or flag
// sets anything.
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	// defaults always decode
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("simulation.iterations", 1000)
	v.SetDefault("simulation.workers", runtime.NumCPU())
	v.SetDefault("simulation.seed", 0)
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "text")
	v.SetDefault("output.format", "text")
	v.SetDefault("output.no_color", false)
	v.SetDefault("metrics.file", "")
	v.SetDefault("timezone", "Local")
}

// Validate checks value ranges and names.
func (c *Config) Validate() error {
	if c.Simulation.Iterations <= 0 {
		return invalid(fmt.Sprintf("simulation.iterations must be positive, got %d", c.Simulation.Iterations))
	}
	if c.Simulation.Workers < 0 {
		return invalid(fmt.Sprintf("simulation.workers cannot be negative, got %d", c.Simulation.Workers))
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return errors.Wrap(errors.ErrCodeConfigInvalid, "invalid log.level", err)
	}
	if _, err := log.ParseFormat(c.Log.Format); err != nil {
		return errors.Wrap(errors.ErrCodeConfigInvalid, "invalid log.format", err)
	}
	switch c.Output.Format {
	case "text", "json", "yaml":
	default:
		return invalid(fmt.Sprintf("unknown output format: %s", c.Output.Format)).
			WithSuggestion("Use one of: text, json, yaml")
	}
	if _, err := c.Location(); err != nil {
		return errors.Wrap(errors.ErrCodeConfigInvalid, "unknown timezone: "+c.Timezone, err).
			WithSuggestion("Use an IANA name such as Europe/Berlin, or Local or UTC")
	}
	return nil
}

func invalid(message string) *errors.ForecastError {
	return errors.New(errors.ErrCodeConfigInvalid, message)
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	switch c.Timezone {
	case "", "Local":
		return time.Local, nil
	default:
		return time.LoadLocation(c.Timezone)
	}
}
