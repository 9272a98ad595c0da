// Package watchdog implements the interface-state enforcement engine: a
// single background worker that watches kernel link-state notifications and
// forces the target interface back down whenever blocking is active.
package watchdog

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/oliverames/warden/internal/ifctl"
	"github.com/oliverames/warden/internal/rtmon"
)

// EventSource delivers kernel interface change events for the target
// interface. The read side is owned exclusively by the enforcement loop.
type EventSource interface {
	// FD returns a descriptor that becomes readable when events are queued.
	FD() int

	// TryReadNext returns the next relevant event without blocking; the
	// second return is false when no more data is available.
	TryReadNext() (rtmon.Event, bool, error)

	// Close releases the source. Must not be called while the loop may
	// still be reading.
	Close() error
}

// ErrNotRunning is returned by SetEnabled after the engine has been
// invalidated.
var ErrNotRunning = errors.New("watchdog: engine not running")

// Engine owns the enforcement loop and every kernel-facing resource it
// uses. Construct with New; release with Invalidate.
//
// The desired state lives on the loop goroutine and is mutated only there,
// in response to commands read off the command channel. Callers observe it
// through an atomic mirror the loop maintains.
type Engine struct {
	cfg    Config
	logger *slog.Logger

	events EventSource
	flags  ifctl.Controller
	cmds   *commandChannel

	// snapshot reads interface flags off the loop thread for Status; nil
	// when no side-channel read is available.
	snapshot func(name string) (uint16, error)

	counter InterventionCounter
	enabled atomic.Bool
	running atomic.Bool
	done    chan struct{}
}

// newEngine wires an engine around already-acquired resources. The caller
// remains responsible for closing events and flags if an error is returned.
func newEngine(cfg Config, events EventSource, flags ifctl.Controller, logger *slog.Logger) (*Engine, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	cmds, err := newCommandChannel()
	if err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:    cfg,
		logger: logger.With("component", "watchdog"),
		events: events,
		flags:  flags,
		cmds:   cmds,
		done:   make(chan struct{}),
	}
	e.enabled.Store(!cfg.ForceDownOnStart)
	return e, nil
}

// start spawns the enforcement loop.
func (e *Engine) start() {
	e.running.Store(true)
	go e.run()
}

// SetEnabled posts an Enable or Disable command to the enforcement loop.
// The post returns quickly; the interface write happens on the loop shortly
// after. An error means the command was not delivered and the caller must
// not assume the state changed.
func (e *Engine) SetEnabled(enabled bool) error {
	if !e.running.Load() {
		return ErrNotRunning
	}
	cmd := cmdDisable
	if enabled {
		cmd = cmdEnable
	}
	return e.cmds.post(cmd)
}

// Enabled reports whether the interface is currently allowed to be up.
func (e *Engine) Enabled() bool {
	return e.enabled.Load()
}

// InterventionCount returns how many times the engine has forced the
// interface back down.
func (e *Engine) InterventionCount() int64 {
	return e.counter.Value()
}

// ResetInterventionCount sets the intervention count back to zero.
func (e *Engine) ResetInterventionCount() {
	e.counter.Reset()
}

// Interface returns the name of the monitored interface.
func (e *Engine) Interface() string {
	return e.cfg.Interface
}

// Done is closed when the enforcement loop has exited.
func (e *Engine) Done() <-chan struct{} {
	return e.done
}

// Status returns a human-readable snapshot of the monitored interface and
// the engine's state. Safe to call from any goroutine: the flag read uses a
// short-lived side channel, never the loop's own handle.
func (e *Engine) Status() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "interface %s: ", e.cfg.Interface)
	switch {
	case e.snapshot == nil:
		sb.WriteString("flags unavailable")
	default:
		flags, err := e.snapshot(e.cfg.Interface)
		if err != nil {
			fmt.Fprintf(&sb, "flags unavailable (%v)", err)
		} else {
			fmt.Fprintf(&sb, "flags %s", ifctl.FormatFlags(flags))
		}
	}
	fmt.Fprintf(&sb, "; enabled=%t; interventions=%d", e.Enabled(), e.InterventionCount())
	return sb.String()
}

// Invalidate stops the enforcement loop and releases all resources. It
// waits for loop exit up to the configured shutdown timeout; a loop that
// fails to exit in time is logged and resources are released anyway so the
// process can still exit. Invalidate is idempotent: subsequent calls return
// immediately.
func (e *Engine) Invalidate() {
	if !e.running.CompareAndSwap(true, false) {
		return
	}

	if err := e.cmds.post(cmdQuit); err != nil {
		e.logger.Error("failed to post quit command", "error", err)
	}

	select {
	case <-e.done:
	case <-time.After(e.cfg.ShutdownTimeout):
		e.logger.Error("enforcement loop did not exit within timeout, releasing resources anyway",
			"timeout", e.cfg.ShutdownTimeout,
		)
	}

	e.cmds.close()
	if err := e.events.Close(); err != nil {
		e.logger.Error("failed to close event source", "error", err)
	}
	if err := e.flags.Close(); err != nil {
		e.logger.Error("failed to close flag controller", "error", err)
	}

	e.logger.Info("engine invalidated", "interface", e.cfg.Interface)
}
