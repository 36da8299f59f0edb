package diag

import (
	"lumen/internal/ast"
	"lumen/internal/source"
)

type Note struct {
	Span source.Span
	Msg  string
}

// Diagnostic is a structured fact about a problem in the analysed unit. Args
// carries the rendered context parameters (names, types) in a stable order so
// consumers can match on them without parsing Message.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Node     ast.NodeRef
	Args     []string
	Notes    []Note
}

func (d Diagnostic) WithNote(sp source.Span, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Span: sp, Msg: msg})
	return d
}
