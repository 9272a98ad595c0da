// Package ifctl reads and writes the administrative flags of a network
// interface through the kernel's interface control ioctls.
package ifctl

import (
	"strings"

	"golang.org/x/sys/unix"
)

// Controller abstracts administrative flag access for a named interface.
//
// ReadFlags and WriteFlags are blocking, privileged calls. A Controller is
// not safe for concurrent use: callers must confine all calls to a single
// goroutine for the lifetime of the handle.
type Controller interface {
	// ReadFlags returns the current administrative flags of the interface.
	ReadFlags(name string) (uint16, error)

	// WriteFlags replaces the administrative flags of the interface.
	WriteFlags(name string, flags uint16) error

	// Close releases the underlying control handle.
	Close() error
}

// IsUp reports whether the IFF_UP bit is set in flags.
func IsUp(flags uint16) bool {
	return flags&unix.IFF_UP != 0
}

// flagNames maps single-bit administrative flags to their conventional names.
var flagNames = []struct {
	bit  uint16
	name string
}{
	{unix.IFF_UP, "UP"},
	{unix.IFF_BROADCAST, "BROADCAST"},
	{unix.IFF_LOOPBACK, "LOOPBACK"},
	{unix.IFF_POINTOPOINT, "POINTOPOINT"},
	{unix.IFF_RUNNING, "RUNNING"},
	{unix.IFF_NOARP, "NOARP"},
	{unix.IFF_PROMISC, "PROMISC"},
	{unix.IFF_ALLMULTI, "ALLMULTI"},
	{unix.IFF_MULTICAST, "MULTICAST"},
}

// FormatFlags renders flags as a pipe-separated list of flag names,
// e.g. "UP|BROADCAST|RUNNING". Unknown bits are ignored. A zero value
// renders as "0".
func FormatFlags(flags uint16) string {
	var names []string
	for _, fn := range flagNames {
		if flags&fn.bit != 0 {
			names = append(names, fn.name)
		}
	}
	if len(names) == 0 {
		return "0"
	}
	return strings.Join(names, "|")
}
