package diag

import (
	"strings"

	"lumen/internal/ast"
	"lumen/internal/source"
)

type dedupKey struct {
	code Code
	sev  Severity
	span source.Span
	node ast.NodeRef
	msg  string
	args string
}

// DedupReporter wraps another Reporter and suppresses duplicate diagnostics
// with the same code, severity, primary span, node, message and arguments.
type DedupReporter struct {
	next Reporter
	seen map[dedupKey]struct{}
}

// NewDedupReporter returns a Reporter that filters out duplicates while
// forwarding unique diagnostics to the provided reporter.
func NewDedupReporter(next Reporter) *DedupReporter {
	return &DedupReporter{
		next: next,
		seen: make(map[dedupKey]struct{}),
	}
}

func (r *DedupReporter) Report(d Diagnostic) {
	if r == nil {
		return
	}
	key := dedupKey{
		code: d.Code,
		sev:  d.Severity,
		span: d.Primary,
		node: d.Node,
		msg:  d.Message,
		args: strings.Join(d.Args, "\x00"),
	}
	if _, ok := r.seen[key]; ok {
		return
	}
	r.seen[key] = struct{}{}
	if r.next != nil {
		r.next.Report(d)
	}
}
