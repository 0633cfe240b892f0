// ABOUTME: Fixed-capacity ring buffer of log entries in insertion order
// ABOUTME: Pushing beyond capacity evicts the oldest entry

package state

import "github.com/kurek775/saladin/internal/model"

// DefaultLogCapacity is the number of log entries kept when no capacity is configured.
const DefaultLogCapacity = 200

// LogRing is a bounded FIFO of log entries.
type LogRing struct {
	buf   []model.LogEntry
	start int // index of the oldest entry
	n     int
}

// NewLogRing creates a ring holding at most capacity entries.
// A non-positive capacity uses DefaultLogCapacity.
func NewLogRing(capacity int) *LogRing {
	if capacity <= 0 {
		capacity = DefaultLogCapacity
	}
	return &LogRing{buf: make([]model.LogEntry, capacity)}
}

// Push appends an entry, evicting the oldest when full. It reports whether an entry was evicted.
func (r *LogRing) Push(e model.LogEntry) bool {
	if r.n < len(r.buf) {
		r.buf[(r.start+r.n)%len(r.buf)] = e
		r.n++
		return false
	}
	r.buf[r.start] = e
	r.start = (r.start + 1) % len(r.buf)
	return true
}

// Entries returns a copy of the entries, oldest first.
func (r *LogRing) Entries() []model.LogEntry {
	out := make([]model.LogEntry, r.n)
	for i := 0; i < r.n; i++ {
		out[i] = r.buf[(r.start+i)%len(r.buf)]
	}
	return out
}

// Len returns the number of entries held.
func (r *LogRing) Len() int {
	return r.n
}

// Cap returns the ring capacity.
func (r *LogRing) Cap() int {
	return len(r.buf)
}

// Clear drops all entries.
func (r *LogRing) Clear() {
	clear(r.buf)
	r.start = 0
	r.n = 0
}
