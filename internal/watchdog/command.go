package watchdog

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// command is a single-byte control message delivered to the enforcement
// loop. Commands are applied strictly in the order they were posted.
type command byte

const (
	cmdEnable  command = 'e'
	cmdDisable command = 'd'
	cmdQuit    command = 'q'
)

// postAttempts bounds the retries of a post interrupted by a signal.
const postAttempts = 3

// ErrChannelFull is returned when the command channel cannot accept another
// command. Callers must treat this as a failed state change, never as a
// silently dropped one.
var ErrChannelFull = errors.New("watchdog: command channel full")

// commandChannel is a non-blocking pipe carrying commands from any
// goroutine into the enforcement loop. Only the loop reads it.
type commandChannel struct {
	r, w int
}

func newCommandChannel() (*commandChannel, error) {
	var fds [2]int
	if err := unix.Pipe2(fds[:], unix.O_NONBLOCK|unix.O_CLOEXEC); err != nil {
		return nil, fmt.Errorf("watchdog: open command channel: %w", err)
	}
	return &commandChannel{r: fds[0], w: fds[1]}, nil
}

// post enqueues one command. Safe to call from any goroutine. Interrupted
// writes are retried up to postAttempts times; a full pipe surfaces
// ErrChannelFull rather than dropping the command.
func (c *commandChannel) post(cmd command) error {
	buf := [1]byte{byte(cmd)}
	for attempt := 0; attempt < postAttempts; attempt++ {
		n, err := unix.Write(c.w, buf[:])
		switch {
		case err == nil && n == 1:
			return nil
		case err == unix.EINTR:
			continue
		case err == unix.EAGAIN:
			return ErrChannelFull
		default:
			return fmt.Errorf("watchdog: post command: %w", err)
		}
	}
	return fmt.Errorf("watchdog: post command: interrupted %d times", postAttempts)
}

// tryReadNext returns the next queued command without blocking. The second
// return is false when the channel is empty. Only the enforcement loop may
// call this.
func (c *commandChannel) tryReadNext() (command, bool, error) {
	var buf [1]byte
	for {
		n, err := unix.Read(c.r, buf[:])
		switch {
		case err == unix.EINTR:
			continue
		case err == unix.EAGAIN:
			return 0, false, nil
		case err != nil:
			return 0, false, fmt.Errorf("watchdog: read command channel: %w", err)
		case n == 0:
			return 0, false, nil
		}
		return command(buf[0]), true, nil
	}
}

// readFD returns the read-end descriptor for use in a readiness wait.
func (c *commandChannel) readFD() int {
	return c.r
}

// close releases both pipe ends. Must only be called once, after the
// enforcement loop has exited.
func (c *commandChannel) close() {
	unix.Close(c.r)
	unix.Close(c.w)
}
