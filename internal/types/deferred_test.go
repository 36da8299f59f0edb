package types

import (
	"errors"
	"testing"
)

func TestDeferredMemoizes(t *testing.T) {
	in := NewInterner()
	calls := 0
	d := NewDeferred("x", in.Error(), func() TypeID {
		calls++
		return in.Class(ctorInt)
	})
	first := d.Force()
	second := d.Force()
	if first != second || calls != 1 {
		t.Fatalf("expected single computation, calls=%d", calls)
	}
	if d.State() != DeferredDone {
		t.Fatalf("state = %v", d.State())
	}
}

func TestDeferredReentrancyYieldsError(t *testing.T) {
	in := NewInterner()
	recursions := 0
	var d *Deferred
	d = NewDeferred("x", in.Error(), func() TypeID {
		// a self-referential initializer asks for its own type
		return d.Force()
	}).OnRecursion(func() { recursions++ })

	if got := d.Force(); got != in.Error() {
		t.Fatalf("expected error sentinel, got %d", got)
	}
	if recursions != 1 || !d.Recursed() {
		t.Fatalf("expected one recorded recursion, got %d", recursions)
	}
	if d.Force() != in.Error() || recursions != 1 {
		t.Fatalf("forcing a finished thunk must not record recursion again")
	}
}

func TestMustForceFaults(t *testing.T) {
	in := NewInterner()
	var d *Deferred
	d = NewDeferred("y", in.Error(), func() TypeID { return d.MustForce() })
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrReentrant) {
			t.Fatalf("expected ErrReentrant panic, got %v", r)
		}
	}()
	d.Force()
}

func TestQueueDrainsOnce(t *testing.T) {
	in := NewInterner()
	var q DeferredQueue
	calls := 0
	mk := func() *Deferred {
		return NewDeferred("q", in.Error(), func() TypeID { calls++; return in.Class(ctorInt) })
	}
	a, b := mk(), mk()
	q.Add(a)
	q.Add(b)
	a.Force()
	if n := q.Drain(); n != 1 {
		t.Fatalf("Drain computed %d, want 1", n)
	}
	if calls != 2 || q.Len() != 0 {
		t.Fatalf("calls=%d len=%d", calls, q.Len())
	}
}
