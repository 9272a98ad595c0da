package latency

import (
	"errors"
	"time"
)

// Config holds the configuration for the latency monitor.
type Config struct {
	// Targets are the hosts probed for round-trip time. An empty list
	// disables the monitor.
	Targets []string `yaml:"targets"`

	// Interval is the time between probe rounds.
	// Default: 5s
	Interval time.Duration `yaml:"interval"`

	// ProbeTimeout is the per-probe timeout.
	// Default: 1s
	ProbeTimeout time.Duration `yaml:"probe_timeout"`

	// Privileged selects raw ICMP sockets instead of UDP ping. Requires
	// CAP_NET_RAW; the daemon normally runs with it.
	// Default: false
	Privileged bool `yaml:"privileged"`
}

// DefaultInterval is the default time between probe rounds.
const DefaultInterval = 5 * time.Second

// DefaultProbeTimeout is the default per-probe timeout.
const DefaultProbeTimeout = time.Second

// ApplyDefaults sets default values for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Interval == 0 {
		c.Interval = DefaultInterval
	}
	if c.ProbeTimeout == 0 {
		c.ProbeTimeout = DefaultProbeTimeout
	}
}

// Validate checks that values are acceptable.
func (c *Config) Validate() error {
	if c.Interval <= 0 {
		return errors.New("latency: config: Interval must be positive")
	}
	if c.ProbeTimeout <= 0 {
		return errors.New("latency: config: ProbeTimeout must be positive")
	}
	return nil
}
