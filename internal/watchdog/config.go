package watchdog

import (
	"errors"
	"time"
)

// Config holds the configuration for the enforcement engine.
type Config struct {
	// Interface is the name of the interface to monitor and control.
	// Default: p2p0
	Interface string `yaml:"interface"`

	// ForceDownOnStart forces the interface down immediately at startup
	// instead of waiting for the first Disable command. Used by the
	// standalone always-on deployment shape.
	// Default: false (fail open)
	ForceDownOnStart bool `yaml:"force_down_on_start"`

	// RestoreUpOnExit brings the interface back up once during shutdown,
	// regardless of its current state.
	// Default: false
	RestoreUpOnExit bool `yaml:"restore_up_on_exit"`

	// ShutdownTimeout is the maximum time Invalidate waits for the
	// enforcement loop to exit before releasing resources anyway.
	// Default: 5s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DefaultInterface is the default monitored interface.
const DefaultInterface = "p2p0"

// DefaultShutdownTimeout is the default bounded wait for worker exit.
const DefaultShutdownTimeout = 5 * time.Second

// ApplyDefaults sets default values for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Interface == "" {
		c.Interface = DefaultInterface
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = DefaultShutdownTimeout
	}
}

// Validate checks that required fields are set and values are acceptable.
func (c *Config) Validate() error {
	if c.Interface == "" {
		return errors.New("watchdog: config: Interface is required")
	}
	if c.ShutdownTimeout <= 0 {
		return errors.New("watchdog: config: ShutdownTimeout must be positive")
	}
	return nil
}
