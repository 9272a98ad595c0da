//go:build linux

package ifctl

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// IoctlController implements Controller over SIOCGIFFLAGS/SIOCSIFFLAGS
// ioctls on a long-lived AF_INET datagram socket.
type IoctlController struct {
	fd int
}

// Open creates the control socket used for flag ioctls.
func Open() (*IoctlController, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_DGRAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("ifctl: open control socket: %w", err)
	}
	return &IoctlController{fd: fd}, nil
}

// ReadFlags returns the current administrative flags of the interface.
func (c *IoctlController) ReadFlags(name string) (uint16, error) {
	ifr, err := unix.NewIfreq(name)
	if err != nil {
		return 0, fmt.Errorf("ifctl: read flags %s: %w", name, err)
	}
	if err := unix.IoctlIfreq(c.fd, unix.SIOCGIFFLAGS, ifr); err != nil {
		return 0, fmt.Errorf("ifctl: read flags %s: %w", name, err)
	}
	return ifr.Uint16(), nil
}

// WriteFlags replaces the administrative flags of the interface.
func (c *IoctlController) WriteFlags(name string, flags uint16) error {
	ifr, err := unix.NewIfreq(name)
	if err != nil {
		return fmt.Errorf("ifctl: write flags %s: %w", name, err)
	}
	ifr.SetUint16(flags)
	if err := unix.IoctlIfreq(c.fd, unix.SIOCSIFFLAGS, ifr); err != nil {
		return fmt.Errorf("ifctl: write flags %s: %w", name, err)
	}
	return nil
}

// Close releases the control socket. Close is not idempotent; callers must
// close exactly once.
func (c *IoctlController) Close() error {
	if err := unix.Close(c.fd); err != nil {
		return fmt.Errorf("ifctl: close control socket: %w", err)
	}
	return nil
}

// ReadFlags reads the administrative flags of the interface using a
// short-lived control socket. Unlike Controller.ReadFlags it is safe to
// call from any goroutine, at the cost of a socket per call; status
// snapshots use it so they never touch the enforcement loop's handle.
func ReadFlags(name string) (uint16, error) {
	c, err := Open()
	if err != nil {
		return 0, err
	}
	defer c.Close()
	return c.ReadFlags(name)
}
