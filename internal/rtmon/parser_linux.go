//go:build linux

package rtmon

import (
	"encoding/binary"
	"log/slog"

	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"
)

// escalateAfter is the number of consecutive index resolution failures
// after which the failure is logged at warning level instead of debug.
// The target interface may be legitimately absent for short periods, so
// the first failures are not noisy.
const escalateAfter = 10

// lookupIndex resolves an interface name to its kernel index.
func lookupIndex(name string) (int32, error) {
	link, err := netlink.LinkByName(name)
	if err != nil {
		return 0, err
	}
	return int32(link.Attrs().Index), nil
}

// resolver resolves the monitored interface's index by name, tracking
// consecutive failures so repeated absence is logged at escalating severity.
type resolver struct {
	ifname   string
	logger   *slog.Logger
	lookup   func(name string) (int32, error)
	failures int
}

func newResolver(ifname string, logger *slog.Logger) *resolver {
	return &resolver{ifname: ifname, logger: logger, lookup: lookupIndex}
}

// index returns the current kernel index of the target interface. The
// second return is false when the interface is not currently resolvable.
func (r *resolver) index() (int32, bool) {
	idx, err := r.lookup(r.ifname)
	if err != nil {
		r.failures++
		if r.failures >= escalateAfter {
			r.logger.Warn("target interface not resolvable",
				"component", "rtmon",
				"interface", r.ifname,
				"consecutive_failures", r.failures,
				"error", err,
			)
		} else {
			r.logger.Debug("target interface not resolvable",
				"component", "rtmon",
				"interface", r.ifname,
				"error", err,
			)
		}
		return 0, false
	}
	r.failures = 0
	return idx, true
}

// parser extracts relevant link events from raw rtnetlink datagrams.
type parser struct {
	res    *resolver
	logger *slog.Logger
}

// ifInfomsg field offsets within the netlink payload.
const (
	ifiIndexOff = 4
	ifiFlagsOff = 8
)

// nlmsgAlign rounds a message length up to the netlink alignment boundary.
func nlmsgAlign(n uint32) uint32 {
	return (n + unix.NLMSG_ALIGNTO - 1) &^ (unix.NLMSG_ALIGNTO - 1)
}

// parse walks every netlink message in one received datagram and returns
// the flags carried by the last message addressed to the target interface.
// Malformed or truncated messages end the walk without an event; messages
// of other types or for other interfaces are skipped individually.
func (p *parser) parse(buf []byte) (ev Event, ok bool) {
	for len(buf) >= unix.NLMSG_HDRLEN {
		msgLen := binary.NativeEndian.Uint32(buf[0:4])
		msgType := binary.NativeEndian.Uint16(buf[4:6])

		// A self-reported length shorter than the header or longer than
		// the bytes actually received means the stream is inconsistent.
		if msgLen < unix.NLMSG_HDRLEN || msgLen > uint32(len(buf)) {
			p.logger.Debug("inconsistent netlink message length",
				"component", "rtmon",
				"declared", msgLen,
				"available", len(buf),
			)
			return ev, ok
		}

		body := buf[unix.NLMSG_HDRLEN:msgLen]
		buf = buf[min(nlmsgAlign(msgLen), uint32(len(buf))):]

		if msgType != unix.RTM_NEWLINK {
			continue
		}
		if len(body) < unix.SizeofIfInfomsg {
			p.logger.Debug("short ifinfomsg payload",
				"component", "rtmon",
				"length", len(body),
			)
			continue
		}

		index := int32(binary.NativeEndian.Uint32(body[ifiIndexOff : ifiIndexOff+4]))
		flags := binary.NativeEndian.Uint32(body[ifiFlagsOff : ifiFlagsOff+4])

		target, resolved := p.res.index()
		if !resolved || index != target {
			continue
		}

		// Later messages in the same datagram supersede earlier ones.
		ev = Event{Index: index, Flags: flags}
		ok = true
	}
	return ev, ok
}
