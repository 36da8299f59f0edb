// Package sema resolves a declaration tree into descriptors, scopes, types
// and per-expression facts recorded in the attribute store.
package sema

import (
	"lumen/internal/ast"
	"lumen/internal/attrs"
	"lumen/internal/diag"
	"lumen/internal/symbols"
	"lumen/internal/trace"
	"lumen/internal/types"
)

// DefaultImports are applied to every file before its own imports.
var DefaultImports = []string{"std.*"}

// Options configure one analysis.
type Options struct {
	// DefaultImports overrides the implicit import list; nil means
	// DefaultImports, an empty non-nil slice disables them.
	DefaultImports []string
	// Typer types expressions in bodies and initializers. Nil selects the
	// built-in typer.
	Typer ExpressionTyper
	// Tracer receives phase spans. Nil takes the tracer of the context.
	Tracer trace.Tracer
	// TraceFrame places the phase spans; the zero frame takes the frame of
	// the context.
	TraceFrame trace.Frame
}

// Result is the resolved program model of one compilation unit.
type Result struct {
	Tree        *ast.Tree
	Table       *symbols.Table
	Types       *types.Interner
	Store       *attrs.Trace
	Builtins    Builtins
	Diagnostics []diag.Diagnostic
}

// HasErrors reports whether any error-severity diagnostic was recorded.
func (r *Result) HasErrors() bool {
	for _, d := range r.Diagnostics {
		if d.Severity >= diag.SevError {
			return true
		}
	}
	return false
}

// TypeOf returns the declared or inferred type of a descriptor. Analysis has
// drained every inference by now, so a pending type still in progress is a
// fault.
func (r *Result) TypeOf(id symbols.SymbolID) types.TypeID {
	sym := r.Table.Symbols.Get(id)
	if sym == nil {
		return types.NoTypeID
	}
	if sym.Pending != nil {
		return sym.Pending.MustForce()
	}
	return sym.Type
}

// Count returns the number of diagnostics with the given code.
func (r *Result) Count(code diag.Code) int {
	n := 0
	for _, d := range r.Diagnostics {
		if d.Code == code {
			n++
		}
	}
	return n
}
