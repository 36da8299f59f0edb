package trace

import (
	"sync/atomic"
	"time"
)

var (
	seq   atomic.Uint64
	spans atomic.Uint64
)

// Frame is where an event belongs: its unit, its resolver phase and the
// span enclosing it. Units run concurrently, so the unit is what tells their
// events apart.
type Frame struct {
	Unit   string
	Phase  string
	Parent uint64
}

// Span is an open begin/end pair. A nil or disabled span ignores every call.
type Span struct {
	tracer Tracer
	scope  Scope
	frame  Frame
	id     uint64
	name   string
	start  time.Time
	diags  int
	defers int
	extra  map[string]string
}

// Begin opens a span named name inside f. A unit span starts the frame of
// unit name; a phase span names the phase of its children.
func Begin(t Tracer, scope Scope, f Frame, name string) *Span {
	if !Enabled(t, scope) {
		return nil
	}
	switch scope {
	case ScopeUnit:
		f.Unit = name
	case ScopePhase:
		f.Phase = name
	}
	s := &Span{
		tracer: t,
		scope:  scope,
		frame:  f,
		id:     spans.Add(1),
		name:   name,
		start:  time.Now(),
	}
	s.emit(KindSpanBegin, "", 0)
	return s
}

// Frame is the frame for events nested in s. For a nil span it is the zero
// frame, which is what a disabled tracer expects.
func (s *Span) Frame() Frame {
	if s == nil {
		return Frame{}
	}
	f := s.frame
	f.Parent = s.id
	return f
}

// ID returns the span ID, 0 for a nil span.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}

// Counts records the unit's diagnostic and queued-inference counts for the
// end event.
func (s *Span) Counts(diags, deferred int) *Span {
	if s != nil {
		s.diags, s.defers = diags, deferred
	}
	return s
}

// Set adds a key-value pair to the end event.
func (s *Span) Set(key, value string) *Span {
	if s == nil {
		return nil
	}
	if s.extra == nil {
		s.extra = make(map[string]string)
	}
	s.extra[key] = value
	return s
}

// End closes the span and returns its duration.
func (s *Span) End(detail string) time.Duration {
	if s == nil {
		return 0
	}
	elapsed := time.Since(s.start)
	s.emit(KindSpanEnd, detail, elapsed)
	return elapsed
}

func (s *Span) emit(kind Kind, detail string, elapsed time.Duration) {
	ev := Event{
		Kind:     kind,
		Scope:    s.scope,
		SpanID:   s.id,
		ParentID: s.frame.Parent,
		Unit:     s.frame.Unit,
		Phase:    s.frame.Phase,
		Name:     s.name,
		Detail:   detail,
	}
	if kind == KindSpanEnd {
		ev.Diags, ev.Deferred = s.diags, s.defers
		ev.Elapsed = elapsed
		ev.Extra = s.extra
	}
	stamp(s.tracer, ev)
}

// Point emits an instant event inside f.
func Point(t Tracer, scope Scope, f Frame, name, detail string) {
	if !Enabled(t, scope) {
		return
	}
	stamp(t, Event{
		Kind:     KindPoint,
		Scope:    scope,
		ParentID: f.Parent,
		Unit:     f.Unit,
		Phase:    f.Phase,
		Name:     name,
		Detail:   detail,
	})
}

func stamp(t Tracer, ev Event) {
	ev.Time = time.Now()
	ev.Seq = seq.Add(1)
	t.Emit(ev)
}
