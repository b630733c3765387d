// Package agentstate holds the monotonic counters the queue reports to
// the surrounding agent state module. The real collaborator (telemetry
// and logging sinks, §6 of the spec) is external and contract-only; this
// is the minimal concrete body needed so the HTTP control surface has
// something real to serve.
package agentstate

import "sync/atomic"

// Counters tracks accepted/dropped appends and messages freed on Close.
// All fields are updated with sync/atomic so producers and the HTTP
// server can read/write them without taking the queue's lock.
type Counters struct {
	accepted     int64
	dropped      int64
	freedOnClose int64
}

// NewCounters returns a zeroed Counters.
func NewCounters() *Counters {
	return &Counters{}
}

// IncAccepted records one more accepted Append.
func (c *Counters) IncAccepted() { atomic.AddInt64(&c.accepted, 1) }

// IncDropped records one more dropped Append.
func (c *Counters) IncDropped() { atomic.AddInt64(&c.dropped, 1) }

// AddFreedOnClose records n messages discarded by Queue.Close.
func (c *Counters) AddFreedOnClose(n int) { atomic.AddInt64(&c.freedOnClose, int64(n)) }

// Snapshot is a point-in-time copy of the counters, safe to marshal.
type Snapshot struct {
	Accepted     int64 `json:"accepted"`
	Dropped      int64 `json:"dropped"`
	FreedOnClose int64 `json:"freed_on_close"`
}

// Snapshot reads all counters atomically (each field independently; the
// combination is a best-effort point-in-time view, which is all the HTTP
// stats endpoint needs).
func (c *Counters) Snapshot() Snapshot {
	return Snapshot{
		Accepted:     atomic.LoadInt64(&c.accepted),
		Dropped:      atomic.LoadInt64(&c.dropped),
		FreedOnClose: atomic.LoadInt64(&c.freedOnClose),
	}
}
