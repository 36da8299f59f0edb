package trace

import "time"

// Kind represents the type of trace event.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint
)

func (k Kind) String() string {
	switch k {
	case KindSpanBegin:
		return "begin"
	case KindSpanEnd:
		return "end"
	case KindPoint:
		return "point"
	default:
		return "unknown"
	}
}

// Scope is the granularity of an event. Coarser scopes have lower values.
type Scope uint8

const (
	ScopeDriver Scope = iota + 1 // the multi-unit driver
	ScopeUnit                    // one compilation unit
	ScopePhase                   // a resolver phase inside a unit
	ScopeNode                    // a single declaration
)

func (s Scope) String() string {
	switch s {
	case ScopeDriver:
		return "driver"
	case ScopeUnit:
		return "unit"
	case ScopePhase:
		return "phase"
	case ScopeNode:
		return "node"
	default:
		return "unknown"
	}
}

// Event is one trace record. Unit and Phase locate it inside the analysis;
// driver events have neither. Diags and Deferred are filled on span ends:
// the diagnostics recorded in the unit so far and the inferences queued.
type Event struct {
	Time     time.Time
	Seq      uint64
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64
	Unit     string
	Phase    string
	Name     string
	Detail   string
	Diags    int
	Deferred int
	Elapsed  time.Duration // span ends only
	Extra    map[string]string
}
