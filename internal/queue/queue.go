// Package queue binds the ring buffer and the level machine behind a
// mutex and a not-empty condition variable, and owns the dynamic-growth
// policy that lets the ring absorb bursts before it starts dropping.
package queue

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"agentbuffer/internal/agentstate"
	"agentbuffer/internal/config"
	"agentbuffer/internal/level"
	"agentbuffer/internal/ring"
)

// ErrDropped is returned by Append when the buffer is full and cannot
// grow any further. Collectors must treat it as non-fatal.
var ErrDropped = errors.New("queue: dropped, buffer full")

// ErrClosed is returned by Append and PopBlocking once Close has run.
var ErrClosed = errors.New("queue: closed")

// Queue is the thread-safe bounded message buffer described by the spec.
// It owns the Ring, the LevelMachine, the mutex, and the condition
// variable; callers never reach into the Ring or the Machine directly.
type Queue struct {
	mu      sync.Mutex
	notEmpty *sync.Cond

	r        *ring.Ring
	lvl      *level.Machine
	cfg      config.Config
	counters *agentstate.Counters

	closed bool
}

// New allocates the Ring to cfg.Usable+1 slots, validates cfg, and
// returns a ready Queue in the Normal state. counters may be nil, in
// which case accept/drop telemetry is simply not recorded.
func New(cfg config.Config, counters *agentstate.Counters) (*Queue, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Tolerance == 0 {
		log.Printf("queue: tolerance is 0s; buffer escalates to flood on the very next append while full")
	}
	if counters == nil {
		counters = agentstate.NewCounters()
	}

	q := &Queue{
		r:        ring.New(cfg.Usable + 1),
		lvl:      level.New(cfg.WarnLevel, cfg.NormalLevel, cfg.Tolerance),
		cfg:      cfg,
		counters: counters,
	}
	q.notEmpty = sync.NewCond(&q.mu)
	return q, nil
}

// Append copies msg into the ring, growing the ring first if the level
// machine is at or entering Warning and there is growth headroom left.
// Returns ErrDropped if the buffer is (still) full after any growth
// attempt.
func (q *Queue) Append(msg string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrClosed
	}

	q.maybeGrow()

	now := time.Now()
	q.lvl.OnAppendEvaluate(q.r, now)

	if q.r.IsFull() {
		if q.counters != nil {
			q.counters.IncDropped()
		}
		return ErrDropped
	}

	if err := q.r.Push(msg); err != nil {
		// Defensive: the IsFull check above should make this unreachable.
		if q.counters != nil {
			q.counters.IncDropped()
		}
		return ErrDropped
	}

	if q.counters != nil {
		q.counters.IncAccepted()
	}
	q.notEmpty.Signal()
	return nil
}

// maybeGrow implements the dynamic growth policy. It must be called with
// q.mu held. It never shrinks the ring and logs a warning, without
// failing the caller, if a resize attempt fails.
func (q *Queue) maybeGrow() {
	state := q.lvl.State()
	enteringWarning := state == level.Normal && q.r.IsWarn(q.cfg.WarnLevel)
	if state != level.Warning && !enteringWarning {
		return
	}
	if enteringWarning {
		// Crossing warn level is the Normal->Warning edge itself, whether
		// or not the growth below succeeds in relieving it.
		q.lvl.MarkWarnEdge()
	}
	if q.r.Capacity() >= q.cfg.MaxCapacity {
		return
	}

	target := q.r.Capacity() * 2
	if target < q.cfg.MinCapacity {
		target = q.cfg.MinCapacity
	}
	if target > q.cfg.MaxCapacity {
		target = q.cfg.MaxCapacity
	}
	if target <= q.r.Capacity() {
		return
	}

	before := q.r.Capacity()
	if err := q.r.Resize(target); err != nil {
		log.Printf("queue: failed to grow buffer from %d to %d: %v; continuing at reduced capacity", before, target, err)
		return
	}
	log.Printf("queue: grew buffer from %d to %d slots (fill %d%%)", before, target, q.r.FillRatio())
}

// PopBlocking waits for a message to become available, evaluates the
// level machine's downward transitions, and returns the oldest message.
// It returns ctx.Err() if ctx is canceled while waiting, and ErrClosed if
// Close runs while a caller is waiting.
func (q *Queue) PopBlocking(ctx context.Context) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.r.IsEmpty() && !q.closed {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if !q.waitWithContext(ctx) {
			return "", ctx.Err()
		}
	}

	if q.closed && q.r.IsEmpty() {
		return "", ErrClosed
	}

	q.lvl.OnPopEvaluate(q.r)

	msg, err := q.r.Pop()
	if err != nil {
		return "", err
	}
	return msg, nil
}

// waitWithContext blocks on the not-empty condition, but also returns
// (false) promptly if ctx is canceled, by racing a small goroutine that
// broadcasts the condition on cancellation. This is the concrete
// mechanism behind the spec's cancellable PopBlocking extension (see
// REDESIGN FLAGS): sync.Cond has no native context support.
func (q *Queue) waitWithContext(ctx context.Context) bool {
	done := make(chan struct{})
	stop := context.AfterFunc(ctx, func() {
		q.mu.Lock()
		defer q.mu.Unlock()
		q.notEmpty.Broadcast()
		close(done)
	})
	defer stop()

	q.notEmpty.Wait()

	select {
	case <-done:
		return ctx.Err() == nil
	default:
		return true
	}
}

// TakeEdges atomically reads and clears the level machine's pending edge
// flags.
func (q *Queue) TakeEdges() level.Edges {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.lvl.TakeEdges()
}

// Len returns the current message count, or -1 if the queue is closed.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return -1
	}
	return q.r.Count()
}

// IsFullSnapshot reports whether the ring was full at the moment of the
// call.
func (q *Queue) IsFullSnapshot() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.r.IsFull()
}

// IsEmptySnapshot reports whether the ring was empty at the moment of
// the call.
func (q *Queue) IsEmptySnapshot() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.r.IsEmpty()
}

// CapacitySnapshot returns the ring's current allocated capacity.
func (q *Queue) CapacitySnapshot() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.r.Capacity()
}

// StateSnapshot returns the level machine's current state.
func (q *Queue) StateSnapshot() level.State {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.lvl.State()
}

// Close drains and discards any remaining messages, resets the ring and
// level machine, and wakes any blocked PopBlocking callers so the
// dispatcher goroutine can exit. A Queue is not usable after Close; a
// fresh one must be built with New.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	freed := q.r.Drain()
	if q.counters != nil {
		q.counters.AddFreedOnClose(freed)
	}
	q.lvl.Reset()
	q.closed = true
	q.notEmpty.Broadcast()
}
