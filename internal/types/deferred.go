package types

import (
	"errors"
	"fmt"
)

// ErrReentrant is the fault raised by MustForce on a computation that is
// already running.
var ErrReentrant = errors.New("types: deferred type forced while in progress")

// DeferredState is the three-state flag of a deferred computation.
type DeferredState uint8

const (
	DeferredNotStarted DeferredState = iota
	DeferredInProgress
	DeferredDone
)

func (s DeferredState) String() string {
	switch s {
	case DeferredInProgress:
		return "in-progress"
	case DeferredDone:
		return "done"
	default:
		return "not-started"
	}
}

// Deferred is a memoising thunk producing a type. Forcing it while its own
// computation is running does not recurse: it yields the error sentinel and
// fires OnRecursion once.
type Deferred struct {
	Label       string
	compute     func() TypeID
	onRecursion func()
	fallback    TypeID
	state       DeferredState
	value       TypeID
	recursed    bool
}

// NewDeferred wraps compute. fallback is returned to reentrant callers.
func NewDeferred(label string, fallback TypeID, compute func() TypeID) *Deferred {
	return &Deferred{Label: label, compute: compute, fallback: fallback}
}

// OnRecursion registers the hook fired the first time the thunk is re-entered.
func (d *Deferred) OnRecursion(fn func()) *Deferred {
	d.onRecursion = fn
	return d
}

func (d *Deferred) State() DeferredState { return d.state }

// Recursed reports whether a reentrant force was observed.
func (d *Deferred) Recursed() bool { return d.recursed }

// Computed reports whether the value is available without forcing.
func (d *Deferred) Computed() bool { return d.state == DeferredDone }

// Force computes (once) and returns the type.
func (d *Deferred) Force() TypeID {
	switch d.state {
	case DeferredDone:
		return d.value
	case DeferredInProgress:
		if !d.recursed {
			d.recursed = true
			if d.onRecursion != nil {
				d.onRecursion()
			}
		}
		return d.fallback
	}
	d.state = DeferredInProgress
	v := d.compute()
	if !v.IsValid() {
		v = d.fallback
	}
	d.value = v
	d.state = DeferredDone
	d.compute = nil
	return v
}

// MustForce forces the thunk for a caller that can never legitimately
// observe it in progress; reentrancy is a fault.
func (d *Deferred) MustForce() TypeID {
	if d.state == DeferredInProgress {
		panic(fmt.Errorf("%w: %s", ErrReentrant, d.Label))
	}
	return d.Force()
}

// DeferredQueue collects every deferred type created in a unit so that the
// body phase can force the ones nobody asked for.
type DeferredQueue struct {
	items []*Deferred
}

func (q *DeferredQueue) Add(d *Deferred) {
	q.items = append(q.items, d)
}

func (q *DeferredQueue) Len() int { return len(q.items) }

// Drain forces every queued thunk, including ones enqueued while draining,
// and empties the queue. It returns how many thunks were computed by the
// drain itself.
func (q *DeferredQueue) Drain() int {
	computed := 0
	for i := 0; i < len(q.items); i++ {
		d := q.items[i]
		if !d.Computed() {
			d.Force()
			computed++
		}
	}
	q.items = q.items[:0]
	return computed
}
