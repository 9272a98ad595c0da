package helperapi

import (
	"errors"
	"time"
)

// Config holds the configuration for the local control API server.
type Config struct {
	// SocketPath is the path to the Unix domain socket.
	// Default: /var/run/warden/api.sock
	SocketPath string `yaml:"socket_path"`

	// ShutdownTimeout is the maximum time to wait for a graceful shutdown.
	// Default: 5s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DefaultSocketPath is the default Unix domain socket path.
const DefaultSocketPath = "/var/run/warden/api.sock"

// DefaultShutdownTimeout is the default graceful shutdown timeout.
const DefaultShutdownTimeout = 5 * time.Second

// ApplyDefaults sets default values for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.SocketPath == "" {
		c.SocketPath = DefaultSocketPath
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = DefaultShutdownTimeout
	}
}

// Validate checks that required fields are set and values are acceptable.
func (c *Config) Validate() error {
	if c.SocketPath == "" {
		return errors.New("helperapi: config: SocketPath is required")
	}
	if c.ShutdownTimeout <= 0 {
		return errors.New("helperapi: config: ShutdownTimeout must be positive")
	}
	return nil
}
