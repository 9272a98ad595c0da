package watchdog

import (
	"golang.org/x/sys/unix"

	"github.com/oliverames/warden/internal/ifctl"
	"github.com/oliverames/warden/internal/rtmon"
)

// run is the enforcement loop. It is the sole user of the event source and
// the flag controller for its entire lifetime. It blocks with no timeout in
// the readiness wait, so an idle engine consumes no CPU.
func (e *Engine) run() {
	defer close(e.done)

	desired := true
	if e.cfg.ForceDownOnStart {
		desired = false
		e.enabled.Store(false)
		e.reconcileNow(desired)
	}

	e.logger.Info("enforcement loop started",
		"interface", e.cfg.Interface,
		"force_down_on_start", e.cfg.ForceDownOnStart,
	)

	fds := []unix.PollFd{
		{Fd: int32(e.cmds.readFD()), Events: unix.POLLIN},
		{Fd: int32(e.events.FD()), Events: unix.POLLIN},
	}

	for {
		fds[0].Revents, fds[1].Revents = 0, 0
		if _, err := unix.Poll(fds, -1); err != nil {
			if err == unix.EINTR {
				continue
			}
			e.logger.Error("readiness wait failed, enforcement loop exiting", "error", err)
			return
		}

		if fds[0].Revents&unix.POLLIN != 0 {
			if quit := e.drainCommands(&desired); quit {
				if e.cfg.RestoreUpOnExit {
					e.restoreUp()
				}
				e.logger.Info("enforcement loop exiting", "interface", e.cfg.Interface)
				return
			}
		}

		if fds[1].Revents&unix.POLLIN != 0 {
			e.drainEvents(desired)
		}
	}
}

// drainCommands applies all queued commands in FIFO order. Enable/Disable
// update the desired state and reconcile immediately so a command takes
// effect without waiting for the next kernel event. Returns true once a
// quit command is read.
func (e *Engine) drainCommands(desired *bool) bool {
	for {
		cmd, ok, err := e.cmds.tryReadNext()
		if err != nil {
			e.logger.Error("command channel read failed", "error", err)
			return false
		}
		if !ok {
			return false
		}

		switch cmd {
		case cmdEnable:
			*desired = true
			e.enabled.Store(true)
			e.logger.Info("blocking disabled, interface may come up", "interface", e.cfg.Interface)
			e.reconcileNow(*desired)
		case cmdDisable:
			*desired = false
			e.enabled.Store(false)
			e.logger.Info("blocking enabled, interface will be kept down", "interface", e.cfg.Interface)
			e.reconcileNow(*desired)
		case cmdQuit:
			return true
		default:
			e.logger.Warn("unknown command byte", "command", byte(cmd))
		}
	}
}

// drainEvents empties the event source and reconciles against the most
// recent flags observed in the batch; earlier messages in the same wakeup
// are superseded.
func (e *Engine) drainEvents(desired bool) {
	var last rtmon.Event
	got := false
	for {
		ev, ok, err := e.events.TryReadNext()
		if err != nil {
			e.logger.Warn("event source read failed", "error", err)
			break
		}
		if !ok {
			break
		}
		last, got = ev, true
	}
	if !got {
		return
	}

	if !desired && last.Flags&unix.IFF_UP != 0 {
		e.correct(uint16(last.Flags))
	}
}

// reconcileNow reads the interface's current flags and corrects them if
// blocking is active and the interface is up. Read failures are logged and
// retried on the next natural trigger. The engine never forces the
// interface up here: enabling only permits "up", it does not request it.
func (e *Engine) reconcileNow(desired bool) {
	if desired {
		return
	}
	flags, err := e.flags.ReadFlags(e.cfg.Interface)
	if err != nil {
		e.logger.Warn("flag read failed", "interface", e.cfg.Interface, "error", err)
		return
	}
	if ifctl.IsUp(flags) {
		e.correct(flags)
	}
}

// correct clears the up flag and counts the intervention on success.
func (e *Engine) correct(flags uint16) {
	if err := e.flags.WriteFlags(e.cfg.Interface, flags&^unix.IFF_UP); err != nil {
		e.logger.Warn("failed to force interface down", "interface", e.cfg.Interface, "error", err)
		return
	}
	e.counter.Increment()
	e.logger.Info("interface forced down",
		"interface", e.cfg.Interface,
		"interventions", e.counter.Value(),
	)
}

// restoreUp performs the one unconditional set-up call during shutdown.
// It is exempt from the desired-state check and is not counted as an
// intervention.
func (e *Engine) restoreUp() {
	flags, err := e.flags.ReadFlags(e.cfg.Interface)
	if err != nil {
		e.logger.Warn("restore: flag read failed", "interface", e.cfg.Interface, "error", err)
		flags = 0
	}
	if err := e.flags.WriteFlags(e.cfg.Interface, flags|unix.IFF_UP); err != nil {
		e.logger.Warn("restore: failed to bring interface up", "interface", e.cfg.Interface, "error", err)
		return
	}
	e.logger.Info("interface restored up on exit", "interface", e.cfg.Interface)
}
