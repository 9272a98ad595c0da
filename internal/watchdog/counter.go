package watchdog

import "sync/atomic"

// InterventionCounter counts successful corrective writes for the lifetime
// of the process. All methods are safe for concurrent use.
type InterventionCounter struct {
	n atomic.Int64
}

// Increment records one corrective write.
func (c *InterventionCounter) Increment() {
	c.n.Add(1)
}

// Value returns the current count.
func (c *InterventionCounter) Value() int64 {
	return c.n.Load()
}

// Reset sets the count back to zero.
func (c *InterventionCounter) Reset() {
	c.n.Store(0)
}
