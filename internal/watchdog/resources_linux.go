//go:build linux

package watchdog

import (
	"log/slog"

	"github.com/oliverames/warden/internal/ifctl"
	"github.com/oliverames/warden/internal/rtmon"
)

// New acquires the kernel change subscription and the flag control handle,
// then spawns the enforcement loop. If any resource fails to open, every
// resource opened so far is closed before the error is returned; New never
// returns a partially initialized engine.
func New(cfg Config, logger *slog.Logger) (*Engine, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	mon, err := rtmon.Open(cfg.Interface, logger)
	if err != nil {
		return nil, err
	}

	flags, err := ifctl.Open()
	if err != nil {
		mon.Close()
		return nil, err
	}

	e, err := newEngine(cfg, mon, flags, logger)
	if err != nil {
		flags.Close()
		mon.Close()
		return nil, err
	}
	e.snapshot = ifctl.ReadFlags

	e.start()
	return e, nil
}
