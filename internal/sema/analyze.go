package sema

import (
	"context"
	"fmt"
	"strconv"

	"lumen/internal/ast"
	"lumen/internal/diag"
	"lumen/internal/symbols"
	"lumen/internal/trace"
)

// Analyze resolves one compilation unit: prelude, type hierarchy,
// declarations, overloads and redeclarations, sealing, then bodies. The
// returned Result is complete even when diagnostics were recorded; the error
// is non-nil only when ctx is cancelled between phases.
func Analyze(ctx context.Context, tree *ast.Tree, opts Options) (*Result, error) {
	if opts.Tracer == nil {
		opts.Tracer = trace.FromContext(ctx)
	}
	if opts.TraceFrame == (trace.Frame{}) {
		opts.TraceFrame = trace.FrameOf(ctx)
	}
	r := newResolver(tree, opts)

	var pending []pendingImport
	phases := []struct {
		name string
		run  func() string
	}{
		{"prelude", func() string {
			r.buildPrelude()
			r.defaultScope = r.table.NewScope(symbols.ScopeDefaultImports, r.table.RootScope, r.table.Root)
			return ""
		}},
		{"collect", func() string {
			r.collect()
			return strconv.Itoa(len(r.classes)) + " classes"
		}},
		{"imports", func() string {
			r.applyDefaultImports()
			pending = r.bindImports()
			return ""
		}},
		{"type-constructors", func() string {
			r.createTypeConstructors()
			return ""
		}},
		{"supertypes", func() string {
			r.resolveSupertypes()
			cycles := r.breakCycles(r.topoSort())
			return strconv.Itoa(cycles) + " cycles"
		}},
		{"consistency", func() string {
			r.checkConsistency(r.topoSort())
			r.checkHeaderBounds()
			return ""
		}},
		{"declarations", func() string {
			r.declareMembers()
			r.completeImports(pending)
			return strconv.Itoa(len(r.bodies)) + " bodies"
		}},
		{"overloads", func() string {
			r.checkRedeclarations()
			r.checkOverloads()
			r.table.Seal()
			return ""
		}},
		{"bodies", func() string {
			return strconv.Itoa(r.resolveBodies()) + " deferred"
		}},
	}

	for _, p := range phases {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("analysis cancelled before %s: %w", p.name, err)
		}
		r.phase(p.name, p.run)
	}

	diags := append([]diag.Diagnostic(nil), r.root.Diagnostics()...)
	diag.SortDiagnostics(diags)
	return &Result{
		Tree:        tree,
		Table:       r.table,
		Types:       r.types,
		Store:       r.root,
		Builtins:    r.builtins,
		Diagnostics: diags,
	}, nil
}

func (r *resolver) phase(name string, run func() string) {
	span := trace.Begin(r.tracer, trace.ScopePhase, r.opts.TraceFrame, name)
	r.frame = span.Frame()
	detail := run()
	span.Counts(len(r.root.Diagnostics()), r.queue.Len()).End(detail)
	r.frame = r.opts.TraceFrame
}
