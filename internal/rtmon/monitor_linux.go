//go:build linux

package rtmon

import (
	"fmt"
	"log/slog"

	"golang.org/x/sys/unix"
)

// recvBufSize is the receive buffer for one rtnetlink datagram. Link
// notifications are small; 4 KiB holds a full batch comfortably.
const recvBufSize = 4096

// Monitor is a non-blocking subscription to kernel link-state changes,
// filtered down to a single named interface.
//
// A Monitor's read side is owned by exactly one goroutine: callers wait for
// readiness on FD and then drain with TryReadNext until it reports no data.
type Monitor struct {
	fd     int
	ifname string
	buf    []byte
	p      parser
	logger *slog.Logger
}

// Open subscribes to the kernel's link change notification group.
func Open(ifname string, logger *slog.Logger) (*Monitor, error) {
	fd, err := unix.Socket(unix.AF_NETLINK, unix.SOCK_RAW|unix.SOCK_CLOEXEC|unix.SOCK_NONBLOCK, unix.NETLINK_ROUTE)
	if err != nil {
		return nil, fmt.Errorf("rtmon: open netlink socket: %w", err)
	}

	sa := &unix.SockaddrNetlink{
		Family: unix.AF_NETLINK,
		Groups: unix.RTMGRP_LINK,
	}
	if err := unix.Bind(fd, sa); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("rtmon: bind netlink socket: %w", err)
	}

	return &Monitor{
		fd:     fd,
		ifname: ifname,
		buf:    make([]byte, recvBufSize),
		p:      parser{res: newResolver(ifname, logger), logger: logger},
		logger: logger,
	}, nil
}

// FD returns the socket descriptor for use in a readiness wait.
func (m *Monitor) FD() int {
	return m.fd
}

// TryReadNext returns the next relevant event without blocking. The second
// return is false when no more data is queued. Datagrams that carry no
// relevant message are consumed and skipped.
func (m *Monitor) TryReadNext() (Event, bool, error) {
	for {
		n, _, err := unix.Recvfrom(m.fd, m.buf, 0)
		switch err {
		case nil:
		case unix.EINTR:
			continue
		case unix.EAGAIN:
			return Event{}, false, nil
		default:
			return Event{}, false, fmt.Errorf("rtmon: read netlink socket: %w", err)
		}

		if ev, ok := m.p.parse(m.buf[:n]); ok {
			return ev, true, nil
		}
	}
}

// Close releases the netlink socket. Close must not be called while another
// goroutine may still be reading.
func (m *Monitor) Close() error {
	if err := unix.Close(m.fd); err != nil {
		return fmt.Errorf("rtmon: close netlink socket: %w", err)
	}
	return nil
}
