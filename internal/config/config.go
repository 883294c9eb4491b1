// Package config defines the data structures related to configuration and
// includes functions for loading and validating the config.
package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/simple-finance/pkg/constants"
	"github.com/iwvelando/simple-finance/pkg/tvm"
	"github.com/iwvelando/simple-finance/pkg/validation"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment variable overrides, e.g.
// SIMPLE_FINANCE_SOLVER_TOLERANCE.
const EnvPrefix = "SIMPLE_FINANCE"

// Configuration holds all configuration for simple-finance.
type Configuration struct {
	Logging LoggingConfig `yaml:"logging,omitempty"`
	Output  OutputConfig  `yaml:"output,omitempty"`
	Solver  SolverConfig  `yaml:"solver,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv, json
}

// SolverConfig tunes the iterative interest rate solver.
type SolverConfig struct {
	Tolerance     float64 `yaml:"tolerance,omitempty"`
	MaxIterations int     `yaml:"maxIterations,omitempty"`
	InitialGuess  float64 `yaml:"initialGuess,omitempty"` // percent
}

// DefaultConfiguration returns the configuration used when no file is given.
func DefaultConfiguration() *Configuration {
	return &Configuration{
		Output: OutputConfig{Format: constants.OutputFormatPretty},
		Solver: SolverConfig{
			Tolerance:     constants.DefaultRateTolerance,
			MaxIterations: constants.DefaultRateMaxIterations,
			InitialGuess:  constants.DefaultRateInitialGuess,
		},
	}
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultConfiguration()
	v.SetDefault("logging.level", "")
	v.SetDefault("logging.format", "")
	v.SetDefault("logging.outputFile", "")
	v.SetDefault("output.format", defaults.Output.Format)
	v.SetDefault("solver.tolerance", defaults.Solver.Tolerance)
	v.SetDefault("solver.maxIterations", defaults.Solver.MaxIterations)
	v.SetDefault("solver.initialGuess", defaults.Solver.InitialGuess)
	return v
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}
	return &configuration, nil
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	return decode(v)
}

// LoadConfigurationFromReader loads YAML configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}

	return decode(v)
}

// LoadEnvironment builds a configuration from defaults and environment
// variables only.
func LoadEnvironment() (*Configuration, error) {
	return decode(newViper())
}

// RateOptions converts the solver section into tvm solver options.
func (c *Configuration) RateOptions() tvm.RateOptions {
	return tvm.RateOptions{
		Tolerance:     c.Solver.Tolerance,
		MaxIterations: c.Solver.MaxIterations,
		InitialGuess:  c.Solver.InitialGuess,
	}
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	if err := validation.ValidateLogLevel(c.Logging.Level); err != nil {
		warnings = append(warnings, err.Error())
	}
	if err := validation.ValidateLogFormat(c.Logging.Format); err != nil {
		warnings = append(warnings, err.Error())
	}
	if c.Output.Format != "" {
		if err := validation.ValidateOutputFormat(c.Output.Format); err != nil {
			warnings = append(warnings, err.Error())
		}
	}

	if c.Solver.Tolerance <= 0 {
		warnings = append(warnings, fmt.Sprintf("solver tolerance %g is not positive; using default %g",
			c.Solver.Tolerance, constants.DefaultRateTolerance))
	} else if c.Solver.Tolerance > 1e-4 {
		warnings = append(warnings, fmt.Sprintf("solver tolerance %g is coarse; rates may be off in the second decimal",
			c.Solver.Tolerance))
	}

	if c.Solver.MaxIterations <= 0 {
		warnings = append(warnings, fmt.Sprintf("solver maxIterations %d is not positive; using default %d",
			c.Solver.MaxIterations, constants.DefaultRateMaxIterations))
	}

	minGuess := constants.MinimumRate * constants.PercentageMultiplier
	maxGuess := constants.MaximumRate * constants.PercentageMultiplier
	if c.Solver.InitialGuess < minGuess || c.Solver.InitialGuess > maxGuess {
		warnings = append(warnings, fmt.Sprintf("solver initialGuess %g%% is outside %g%% to %g%% and will be clamped",
			c.Solver.InitialGuess, minGuess, maxGuess))
	}

	return warnings
}
