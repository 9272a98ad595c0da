// Package daemon holds the top-level configuration shared by the wardend
// deployment shapes.
package daemon

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/oliverames/warden/internal/helperapi"
	"github.com/oliverames/warden/internal/latency"
	"github.com/oliverames/warden/internal/watchdog"
)

// DefaultLogLevel is the default log level.
const DefaultLogLevel = "info"

// Config is the top-level configuration for wardend. It aggregates all
// subsystem configurations and is populated from a YAML file via
// ParseConfig.
type Config struct {
	// LogLevel is the log level: "debug", "info", "warn", "error".
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	Watchdog watchdog.Config  `yaml:"watchdog"`
	API      helperapi.Config `yaml:"api"`
	Latency  latency.Config   `yaml:"latency"`
}

// ApplyDefaults sets default values for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	c.Watchdog.ApplyDefaults()
	c.API.ApplyDefaults()
	c.Latency.ApplyDefaults()
}

// Validate checks that required fields are set and values are acceptable.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("daemon: config: invalid log level %q", c.LogLevel)
	}
	if err := c.Watchdog.Validate(); err != nil {
		return err
	}
	if err := c.API.Validate(); err != nil {
		return err
	}
	return c.Latency.Validate()
}

// ParseConfig reads, parses, and validates the configuration file at path.
// A missing file yields the defaults so the daemon can run unconfigured.
func ParseConfig(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Defaults only.
	case err != nil:
		return nil, fmt.Errorf("daemon: config: read %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("daemon: config: parse %s: %w", path, err)
		}
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
