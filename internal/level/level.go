// Package level implements the four-state level machine that drives the
// anti-flooding buffer's Normal/Warning/Full/Flood escalation and the edge
// notifications owed to the manager on each transition.
package level

import "time"

// State is one of the four buffer fill levels.
type State int

const (
	Normal State = iota
	Warning
	Full
	Flood
)

func (s State) String() string {
	switch s {
	case Normal:
		return "normal"
	case Warning:
		return "warning"
	case Full:
		return "full"
	case Flood:
		return "flood"
	default:
		return "unknown"
	}
}

// Edges is the set of transitions that have occurred since the dispatcher
// last observed them. Edges are level-triggered: re-entering the same
// state without an intervening TakeEdges call does not add a second
// notification.
type Edges struct {
	Warn   bool
	Full   bool
	Flood  bool
	Normal bool
}

// Any reports whether at least one edge is set.
func (e Edges) Any() bool {
	return e.Warn || e.Full || e.Flood || e.Normal
}

// Filler is the subset of ring.Ring that the machine needs to evaluate
// predicates against. Depending on the ring directly (rather than an
// interface with count/capacity getters) would couple level to ring's
// package layout for no benefit, since the machine only ever needs these
// three derived predicates.
type Filler interface {
	IsFull() bool
	IsNormal(level int) bool
	IsWarn(level int) bool
}

// Machine is the level state machine. It is not safe for concurrent use on
// its own; the queue package serializes access with its own lock, exactly
// as it does for the ring.
type Machine struct {
	WarnLevel   int
	NormalLevel int
	Tolerance   time.Duration

	state     State
	fullSince time.Time
	edges     Edges
}

// New creates a Machine starting in Normal with no pending edges.
func New(warnLevel, normalLevel int, tolerance time.Duration) *Machine {
	return &Machine{
		WarnLevel:   warnLevel,
		NormalLevel: normalLevel,
		Tolerance:   tolerance,
		state:       Normal,
	}
}

// State returns the current level.
func (m *Machine) State() State { return m.state }

// TakeEdges atomically reads and clears the pending edge flags.
func (m *Machine) TakeEdges() Edges {
	e := m.edges
	m.edges = Edges{}
	return e
}

// OnAppendEvaluate runs the upward transitions plus the Full->Flood timer
// check, called from Queue.Append after any growth attempt has already
// been applied to capacity. Escalation to Flood is only ever checked here
// — a quiescent full buffer with no further appends never escalates on
// its own (see REDESIGN FLAGS in the expanded spec).
func (m *Machine) OnAppendEvaluate(f Filler, now time.Time) {
	switch m.state {
	case Normal:
		if f.IsFull() {
			m.state = Full
			m.edges.Full = true
			m.fullSince = now
		} else if f.IsWarn(m.WarnLevel) {
			m.state = Warning
			m.edges.Warn = true
		}

	case Warning:
		if f.IsFull() {
			m.state = Full
			m.edges.Full = true
			m.fullSince = now
		} else if f.IsNormal(m.NormalLevel) {
			m.state = Normal
			m.edges.Normal = true
		}

	case Full:
		if f.IsFull() && now.Sub(m.fullSince) >= m.Tolerance {
			m.state = Flood
			m.edges.Flood = true
		} else {
			m.downwardFromFull(f)
		}

	case Flood:
		m.downwardFromFlood(f)
	}
}

// OnPopEvaluate runs the downward transitions only, called from
// Queue.PopBlocking just before a message is removed, so it sees the count
// as it stood before the pop. It never escalates
// to Full or Flood — those only happen on the append path.
func (m *Machine) OnPopEvaluate(f Filler) {
	switch m.state {
	case Normal:
		// nothing to do

	case Warning:
		if f.IsNormal(m.NormalLevel) {
			m.state = Normal
			m.edges.Normal = true
		}

	case Full:
		m.downwardFromFull(f)

	case Flood:
		m.downwardFromFlood(f)
	}
}

// downwardFromFull applies the Full-state downward transitions shared by
// both the append and pop paths: Normal takes precedence over easing back
// to Warning.
func (m *Machine) downwardFromFull(f Filler) {
	if f.IsNormal(m.NormalLevel) {
		m.state = Normal
		m.edges.Normal = true
		m.fullSince = time.Time{}
	} else if !f.IsFull() && !f.IsNormal(m.NormalLevel) {
		m.state = Warning
		m.edges.Warn = true
		m.fullSince = time.Time{}
	}
}

// downwardFromFlood applies the Flood-state downward transitions shared
// by both the append and pop paths.
func (m *Machine) downwardFromFlood(f Filler) {
	if f.IsNormal(m.NormalLevel) {
		m.state = Normal
		m.edges.Normal = true
		m.fullSince = time.Time{}
	} else if !f.IsFull() && !f.IsNormal(m.NormalLevel) {
		m.state = Warning
		m.edges.Warn = true
		m.fullSince = time.Time{}
	}
}

// MarkWarnEdge records the Normal->Warning transition at the moment the
// queue's growth policy detects the buffer has crossed the warn
// threshold, even if the growth that follows relieves enough pressure
// that the next OnAppendEvaluate call would no longer independently
// observe a warn-level fill. Crossing warn level is itself the edge the
// manager needs to hear about, regardless of whether growth later masks
// it. A no-op outside of Normal.
func (m *Machine) MarkWarnEdge() {
	if m.state == Normal {
		m.state = Warning
		m.edges.Warn = true
	}
}

// Reset returns the machine to Normal with no pending edges and no
// recorded fullSince, used by Queue.Close to leave a clean state behind.
func (m *Machine) Reset() {
	m.state = Normal
	m.fullSince = time.Time{}
	m.edges = Edges{}
}
