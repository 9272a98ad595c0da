// Package rtmon delivers kernel link-state change notifications for a
// single named interface over a non-blocking rtnetlink socket.
package rtmon

// Event is one observed state change of the monitored interface.
type Event struct {
	// Index is the kernel interface index the notification referred to.
	Index int32

	// Flags is the interface's administrative flag word after the change.
	Flags uint32
}
