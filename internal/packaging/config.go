// Package packaging implements systemd service packaging so wardend can be
// registered as an always-running privileged service.
package packaging

import (
	"errors"
)

// InstallConfig holds the configuration for installing wardend as a
// systemd service.
type InstallConfig struct {
	// BinaryPath is the path to install the wardend binary.
	// Default: /usr/local/bin/wardend
	BinaryPath string

	// ConfigDir is the configuration directory.
	// Default: /etc/warden
	ConfigDir string

	// RunDir is the runtime directory holding the control socket.
	// Default: /var/run/warden
	RunDir string

	// UnitFilePath is the path for the systemd unit file.
	// Default: /etc/systemd/system/wardend.service
	UnitFilePath string

	// ServiceName is the systemd service name.
	// Default: wardend
	ServiceName string

	// Interface is the interface name written into the default config
	// (optional; the daemon default applies when empty).
	Interface string
}

// DefaultBinaryPath is the default path to install the wardend binary.
const DefaultBinaryPath = "/usr/local/bin/wardend"

// DefaultConfigDir is the default configuration directory.
const DefaultConfigDir = "/etc/warden"

// DefaultRunDir is the default runtime directory.
const DefaultRunDir = "/var/run/warden"

// DefaultServiceName is the default systemd service name.
const DefaultServiceName = "wardend"

// DefaultUnitFilePath is the default path for the systemd unit file.
const DefaultUnitFilePath = "/etc/systemd/system/wardend.service"

// ApplyDefaults sets default values for zero-valued fields.
func (c *InstallConfig) ApplyDefaults() {
	if c.BinaryPath == "" {
		c.BinaryPath = DefaultBinaryPath
	}
	if c.ConfigDir == "" {
		c.ConfigDir = DefaultConfigDir
	}
	if c.RunDir == "" {
		c.RunDir = DefaultRunDir
	}
	if c.ServiceName == "" {
		c.ServiceName = DefaultServiceName
	}
	if c.UnitFilePath == "" {
		c.UnitFilePath = DefaultUnitFilePath
	}
}

// Validate checks that required fields are set.
func (c *InstallConfig) Validate() error {
	if c.BinaryPath == "" {
		return errors.New("packaging: config: BinaryPath is required")
	}
	if c.ConfigDir == "" {
		return errors.New("packaging: config: ConfigDir is required")
	}
	if c.RunDir == "" {
		return errors.New("packaging: config: RunDir is required")
	}
	if c.ServiceName == "" {
		return errors.New("packaging: config: ServiceName is required")
	}
	if c.UnitFilePath == "" {
		return errors.New("packaging: config: UnitFilePath is required")
	}
	return nil
}
