package server

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/iwvelando/simple-finance/internal/config"
	"github.com/iwvelando/simple-finance/pkg/constants"
	"gopkg.in/yaml.v3"
)

// Config defines runtime parameters for the HTTP server.
type Config struct {
	Address        string               `yaml:"address"`
	MaxBodySize    string               `yaml:"maxBodySize"`
	AllowedOrigins []string             `yaml:"allowedOrigins"`
	Logging        config.LoggingConfig `yaml:"logging"`
	Solver         config.SolverConfig  `yaml:"solver"`
	bodySizeBytes  int64
}

// DefaultConfig returns the server configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Address:       constants.DefaultServerAddress,
		MaxBodySize:   strconv.FormatInt(constants.DefaultMaxUploadSizeBytes, 10),
		Logging:       config.LoggingConfig{},
		Solver:        config.DefaultConfiguration().Solver,
		bodySizeBytes: constants.DefaultMaxUploadSizeBytes,
	}
}

// LoadConfig reads the server configuration from a YAML file. A missing file
// yields the defaults. Unknown keys are rejected.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open server config %s: %w", path, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse server config %s: %w", path, err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, fmt.Errorf("invalid server config %s: %w", path, err)
	}
	return cfg, nil
}

// BodySizeBytes returns the request body limit in bytes.
func (c *Config) BodySizeBytes() int64 {
	return c.bodySizeBytes
}

// SetBodySizeBytes replaces the request body limit. Non-positive sizes are
// ignored.
func (c *Config) SetBodySizeBytes(size int64) {
	if size <= 0 {
		return
	}
	c.bodySizeBytes = size
	c.MaxBodySize = strconv.FormatInt(size, 10)
}

// ApplyEnvironment overrides the file with SIMPLE_FINANCE_ADDRESS,
// SIMPLE_FINANCE_ALLOWED_ORIGINS (comma separated) and
// SIMPLE_FINANCE_MAX_BODY_SIZE when they are set.
func (c *Config) ApplyEnvironment() error {
	if address := envValue("ADDRESS"); address != "" {
		c.Address = address
	}
	if origins := envValue("ALLOWED_ORIGINS"); origins != "" {
		c.AllowedOrigins = c.AllowedOrigins[:0]
		for _, origin := range strings.Split(origins, ",") {
			if trimmed := strings.TrimSpace(origin); trimmed != "" {
				c.AllowedOrigins = append(c.AllowedOrigins, trimmed)
			}
		}
	}
	if size := envValue("MAX_BODY_SIZE"); size != "" {
		bytes, err := ParseSize(size)
		if err != nil {
			return fmt.Errorf("%s_MAX_BODY_SIZE: %w", config.EnvPrefix, err)
		}
		c.SetBodySizeBytes(bytes)
	}
	return nil
}

func envValue(key string) string {
	return strings.TrimSpace(os.Getenv(config.EnvPrefix + "_" + key))
}

func (c *Config) normalize() error {
	if strings.TrimSpace(c.Address) == "" {
		c.Address = constants.DefaultServerAddress
	}

	size, err := ParseSize(c.MaxBodySize)
	if err != nil {
		return fmt.Errorf("maxBodySize: %w", err)
	}
	if size <= 0 {
		size = constants.DefaultMaxUploadSizeBytes
	}
	c.SetBodySizeBytes(size)
	return nil
}

var sizeUnits = map[string]int64{
	"":   1,
	"B":  1,
	"K":  1 << 10,
	"KB": 1 << 10,
	"M":  1 << 20,
	"MB": 1 << 20,
}

// ParseSize converts a byte count with an optional unit ("512", "256K",
// "10MB") into bytes. Blank text means the default limit.
func ParseSize(value string) (int64, error) {
	text := strings.ToUpper(strings.TrimSpace(value))
	if text == "" {
		return constants.DefaultMaxUploadSizeBytes, nil
	}

	split := strings.IndexFunc(text, func(r rune) bool { return !unicode.IsDigit(r) })
	if split < 0 {
		split = len(text)
	}
	digits, unit := text[:split], strings.TrimSpace(text[split:])
	if digits == "" {
		return 0, fmt.Errorf("invalid size %q: missing number", value)
	}

	multiplier, ok := sizeUnits[unit]
	if !ok {
		return 0, fmt.Errorf("invalid size %q: unsupported unit %q", value, unit)
	}

	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", value, err)
	}
	if n > math.MaxInt64/multiplier {
		return 0, fmt.Errorf("invalid size %q: overflows int64", value)
	}
	return n * multiplier, nil
}
