package trace

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Format is the encoding of trace output.
type Format uint8

const (
	FormatAuto Format = iota // chosen from the output path
	FormatText
	FormatNDJSON
)

// ParseFormat converts a format name. The empty string is auto.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return FormatAuto, nil
	case "text":
		return FormatText, nil
	case "ndjson", "json":
		return FormatNDJSON, nil
	default:
		return FormatAuto, fmt.Errorf("invalid trace format: %q (expected: auto|text|ndjson)", s)
	}
}

// FormatEvent renders one event as a newline-terminated line.
func FormatEvent(ev *Event, format Format) []byte {
	if format == FormatNDJSON {
		return eventJSON(ev)
	}
	return eventText(ev)
}

type jsonEvent struct {
	Time     string            `json:"time"`
	Seq      uint64            `json:"seq"`
	Kind     string            `json:"kind"`
	Scope    string            `json:"scope"`
	SpanID   uint64            `json:"span,omitempty"`
	ParentID uint64            `json:"parent,omitempty"`
	Unit     string            `json:"unit,omitempty"`
	Phase    string            `json:"phase,omitempty"`
	Name     string            `json:"name"`
	Detail   string            `json:"detail,omitempty"`
	Diags    int               `json:"diagnostics,omitempty"`
	Deferred int               `json:"deferred,omitempty"`
	Micros   int64             `json:"elapsed_us,omitempty"`
	Extra    map[string]string `json:"extra,omitempty"`
}

func eventJSON(ev *Event) []byte {
	data, err := json.Marshal(jsonEvent{
		Time:     ev.Time.Format(time.RFC3339Nano),
		Seq:      ev.Seq,
		Kind:     ev.Kind.String(),
		Scope:    ev.Scope.String(),
		SpanID:   ev.SpanID,
		ParentID: ev.ParentID,
		Unit:     ev.Unit,
		Phase:    ev.Phase,
		Name:     ev.Name,
		Detail:   ev.Detail,
		Diags:    ev.Diags,
		Deferred: ev.Deferred,
		Micros:   ev.Elapsed.Microseconds(),
		Extra:    ev.Extra,
	})
	if err != nil {
		return nil
	}
	return append(data, '\n')
}

// eventText renders
//
//	15:04:05.000 unit/phase -> name (detail) diags=N deferred=M 1.2ms {k=v}
//
// indenting by scope and leaving out whatever is empty.
func eventText(ev *Event) []byte {
	var sb strings.Builder
	sb.WriteString(ev.Time.Format("15:04:05.000"))
	sb.WriteByte(' ')
	if ev.Scope > ScopeDriver {
		sb.WriteString(strings.Repeat("  ", int(ev.Scope-ScopeDriver)))
	}
	if loc := location(ev); loc != "" {
		sb.WriteString(loc)
		sb.WriteByte(' ')
	}
	switch ev.Kind {
	case KindSpanBegin:
		sb.WriteString("-> ")
	case KindSpanEnd:
		sb.WriteString("<- ")
	default:
		sb.WriteString("* ")
	}
	sb.WriteString(ev.Name)
	if ev.Detail != "" {
		sb.WriteString(" (" + ev.Detail + ")")
	}
	if ev.Kind == KindSpanEnd {
		sb.WriteString(" diags=" + strconv.Itoa(ev.Diags))
		if ev.Deferred > 0 {
			sb.WriteString(" deferred=" + strconv.Itoa(ev.Deferred))
		}
		sb.WriteString(" " + ev.Elapsed.Round(time.Microsecond).String())
	}
	if len(ev.Extra) > 0 {
		keys := make([]string, 0, len(ev.Extra))
		for k := range ev.Extra {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		pairs := make([]string, len(keys))
		for i, k := range keys {
			pairs[i] = k + "=" + ev.Extra[k]
		}
		sb.WriteString(" {" + strings.Join(pairs, ", ") + "}")
	}
	sb.WriteByte('\n')
	return []byte(sb.String())
}

// location is "unit/phase" for events inside a phase and "unit" otherwise.
// A span does not repeat its own name as its location.
func location(ev *Event) string {
	unit, phase := ev.Unit, ev.Phase
	switch ev.Scope {
	case ScopeUnit:
		unit = ""
	case ScopePhase:
		phase = ""
	}
	if unit != "" && phase != "" {
		return unit + "/" + phase
	}
	return unit + phase
}
