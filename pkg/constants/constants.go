// Package constants provides shared constants for the simple-finance application.
package constants

// Financial constants
const (
	// PercentageMultiplier converts between percent and fractional rates
	PercentageMultiplier = 100.0

	// DisplayFormat is the verb used to render a calculated value
	DisplayFormat = "%.2f"
)

// Interest rate solver defaults
const (
	// DefaultRateTolerance is the convergence tolerance on the fractional rate
	DefaultRateTolerance = 1e-10

	// DefaultRateMaxIterations caps Newton-Raphson and bisection steps
	DefaultRateMaxIterations = 100

	// DefaultRateInitialGuess is the starting rate in percent
	DefaultRateInitialGuess = 10.0

	// MinimumRate is the lowest fractional rate the solver will consider (-99%)
	MinimumRate = -0.99

	// MaximumRate is the highest fractional rate the solver will consider (1000%)
	MaximumRate = 10.0
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// DefaultEnvFile is loaded by the server when present
	DefaultEnvFile = ".env"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum request body size (16 KB)
	DefaultMaxUploadSizeBytes int64 = 16 * 1024
)
