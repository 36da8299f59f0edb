package sema

import (
	"fmt"

	"lumen/internal/ast"
	"lumen/internal/attrs"
	"lumen/internal/bindings"
	"lumen/internal/diag"
	"lumen/internal/source"
	"lumen/internal/symbols"
	"lumen/internal/trace"
	"lumen/internal/types"
)

// resolver carries the state of one compilation unit through every phase.
// store is the store currently written to; it is swapped for a temporary
// overlay while a speculative resolution runs.
type resolver struct {
	tree   *ast.Tree
	table  *symbols.Table
	types  *types.Interner
	root   *attrs.Trace
	store  attrs.Store
	ns     *symbols.NamespaceFactory
	queue  types.DeferredQueue
	typer  ExpressionTyper
	tracer trace.Tracer
	frame  trace.Frame
	opts   Options

	builtins     Builtins
	defaultScope symbols.ScopeID
	initName     source.StringID

	// discovery order of containers and classes
	containers []*container
	classes    []symbols.SymbolID
	classInfo  map[symbols.SymbolID]*classInfo
	files      []*fileInfo

	memberScopes map[types.TypeID]*memberScope
	inconsistent map[symbols.SymbolID]bool
	shapeChecks  []shapeCheck
	bodies       []*body
}

// classInfo links a user class descriptor to its syntax.
type classInfo struct {
	decl      ast.DeclID
	container *container
	// superRefs[i] is the type reference of Supertypes[i]; NoTypeRefID for
	// synthetic supertypes.
	superRefs []ast.TypeRefID
}

func newResolver(tree *ast.Tree, opts Options) *resolver {
	root := attrs.NewTrace()
	bindings.Install(root)
	table := symbols.NewTable(symbols.Hints{}, tree.Strings)
	r := &resolver{
		tree:         tree,
		table:        table,
		types:        types.NewInterner(),
		root:         root,
		store:        root,
		ns:           symbols.NewNamespaceFactory(table),
		typer:        opts.Typer,
		tracer:       opts.Tracer,
		frame:        opts.TraceFrame,
		opts:         opts,
		initName:     tree.Strings.Intern("<init>"),
		classInfo:    make(map[symbols.SymbolID]*classInfo),
		memberScopes: make(map[types.TypeID]*memberScope),
		inconsistent: make(map[symbols.SymbolID]bool),
	}
	if r.typer == nil {
		r.typer = defaultTyper{}
	}
	if r.tracer == nil {
		r.tracer = trace.Nop
	}
	return r
}

func (r *resolver) reporter() diag.Reporter {
	return attrs.Reporter{Store: r.store}
}

func (r *resolver) errorf(code diag.Code, node ast.NodeRef, format string, args ...any) *diag.ReportBuilder {
	return diag.ReportError(r.reporter(), code, r.tree.Span(node), fmt.Sprintf(format, args...)).At(node)
}

func (r *resolver) warnf(code diag.Code, node ast.NodeRef, format string, args ...any) *diag.ReportBuilder {
	return diag.ReportWarning(r.reporter(), code, r.tree.Span(node), fmt.Sprintf(format, args...)).At(node)
}

// speculate runs fn against a temporary store and commits its writes only
// when fn reports success.
func (r *resolver) speculate(name string, fn func() bool) bool {
	tmp := attrs.NewTemporary(r.store, name)
	saved := r.store
	r.store = tmp
	ok := false
	defer func() {
		r.store = saved
		if ok {
			tmp.Commit()
		} else {
			tmp.Discard()
		}
	}()
	ok = fn()
	return ok
}

// withStore runs fn with s as the current store.
func (r *resolver) withStore(s attrs.Store, fn func()) {
	saved := r.store
	r.store = s
	defer func() { r.store = saved }()
	fn()
}

func (r *resolver) sym(id symbols.SymbolID) *symbols.Symbol {
	return r.table.Symbols.Get(id)
}

func (r *resolver) name(id source.StringID) string {
	return r.table.Strings.MustLookup(id)
}

func (r *resolver) format(t types.TypeID) string {
	return r.types.Format(t, r.table.Namer())
}

func (r *resolver) declRef(id symbols.SymbolID) ast.NodeRef {
	if sym := r.sym(id); sym != nil {
		return sym.Decl
	}
	return ast.NodeRef{}
}

func (r *resolver) newSymbol(sym symbols.Symbol) symbols.SymbolID {
	return r.table.NewSymbol(sym)
}

func (r *resolver) edit(id symbols.SymbolID) *symbols.Symbol {
	return r.table.Symbols.Edit(id)
}

func (r *resolver) point(name, detail string) {
	trace.Point(r.tracer, trace.ScopeNode, r.frame, name, detail)
}

func visibilityOf(mods ast.Modifiers) symbols.Visibility {
	switch {
	case mods.Has(ast.ModPrivate):
		return symbols.VisPrivate
	case mods.Has(ast.ModProtected):
		return symbols.VisProtected
	default:
		return symbols.VisPublic
	}
}

func annotationsOf(d *ast.Decl) []source.StringID {
	if len(d.Annotations) == 0 {
		return nil
	}
	return append([]source.StringID(nil), d.Annotations...)
}
