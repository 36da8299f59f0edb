package diag

import (
	"lumen/internal/ast"
	"lumen/internal/source"
)

func New(sev Severity, code Code, primary source.Span, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Primary:  primary,
		Message:  msg,
	}
}

func NewError(code Code, primary source.Span, msg string) Diagnostic {
	return New(SevError, code, primary, msg)
}

// At attaches the offending node.
func (d Diagnostic) At(node ast.NodeRef) Diagnostic {
	d.Node = node
	return d
}

// WithArgs appends context parameters.
func (d Diagnostic) WithArgs(args ...string) Diagnostic {
	d.Args = append(d.Args, args...)
	return d
}
