package sema

import (
	"lumen/internal/ast"
	"lumen/internal/attrs"
	"lumen/internal/bindings"
	"lumen/internal/diag"
	"lumen/internal/source"
	"lumen/internal/symbols"
	"lumen/internal/types"
)

// ExpressionTyper computes the types of the expressions in bodies and
// initializers. It is called repeatedly and speculatively: every fact it
// produces must go through the Env so that a discarded trial leaves nothing
// behind.
type ExpressionTyper interface {
	// Type returns the type of expr. expected is the type the context
	// requires, or types.NoTypeID.
	Type(env *Env, expr ast.ExprID, expected types.TypeID) types.TypeID
}

// Env is the context an expression is typed in.
type Env struct {
	r *resolver

	// Scope is the innermost scope names are looked up in.
	Scope symbols.ScopeID
	// Function is the enclosing function or constructor, if any.
	Function symbols.SymbolID
	// Class is the class 'this' refers to, if any.
	Class symbols.SymbolID
}

func (r *resolver) env(scope symbols.ScopeID, fn, cls symbols.SymbolID) *Env {
	return &Env{r: r, Scope: scope, Function: fn, Class: cls}
}

// Nested returns an environment with scope as the innermost scope.
func (e *Env) Nested(scope symbols.ScopeID) *Env {
	return &Env{r: e.r, Scope: scope, Function: e.Function, Class: e.Class}
}

func (e *Env) Tree() *ast.Tree              { return e.r.tree }
func (e *Env) Table() *symbols.Table        { return e.r.table }
func (e *Env) Types() *types.Interner       { return e.r.types }
func (e *Env) Builtins() Builtins           { return e.r.builtins }
func (e *Env) Store() attrs.Store           { return e.r.store }
func (e *Env) Format(t types.TypeID) string { return e.r.format(t) }

// TypeOf types expr through the configured typer. The result is recorded in
// bindings.ExpressionType, so an expression is typed once per store.
func (e *Env) TypeOf(expr ast.ExprID, expected types.TypeID) types.TypeID {
	r := e.r
	if !expr.IsValid() {
		return r.builtins.UnitType
	}
	if t, ok := attrs.Get(r.store, bindings.ExpressionType, expr); ok {
		return t
	}
	t := r.typer.Type(e, expr, expected)
	if !t.IsValid() {
		t = r.types.Error()
	}
	attrs.Set(r.store, bindings.ExpressionType, expr, t)
	return t
}

// Lookup finds the members named name visible from the environment's scope.
// Inside class bodies inherited members are visible as well.
func (e *Env) Lookup(name source.StringID, mask symbols.KindMask) []Member {
	return e.r.lookupLexical(e.Scope, name, mask)
}

// Members lists the members named name of receiver type t.
func (e *Env) Members(t types.TypeID, name source.StringID) []Member {
	return e.r.memberScopeOf(t).lookup(name)
}

// MemberType is the type of mem seen through its receiver.
func (e *Env) MemberType(mem Member) types.TypeID { return e.r.memberType(mem) }

// IsSubtype reports whether a value of type a may be used where b is
// expected.
func (e *Env) IsSubtype(a, b types.TypeID) bool { return e.r.isSubtype(a, b) }

// ResolveType evaluates a written type in the environment's scope.
func (e *Env) ResolveType(ref ast.TypeRefID) types.TypeID {
	return e.r.resolveTypeRef(ref, e.Scope)
}

// Speculate runs fn against a temporary store, keeping its facts only when
// fn returns true.
func (e *Env) Speculate(name string, fn func() bool) bool {
	return e.r.speculate(name, fn)
}

// Errorf reports an error at node into the current store.
func (e *Env) Errorf(code diag.Code, node ast.NodeRef, format string, args ...any) *diag.ReportBuilder {
	return e.r.errorf(code, node, format, args...)
}

// Declare adds a local variable to the environment's scope.
func (e *Env) Declare(sym symbols.Symbol) symbols.SymbolID {
	id := e.r.newSymbol(sym)
	e.r.table.Declare(e.Scope, id)
	return id
}

// lookupLexical walks the scope chain and returns the members of the
// innermost scope that has any match.
func (r *resolver) lookupLexical(scope symbols.ScopeID, name source.StringID, mask symbols.KindMask) []Member {
	for scope.IsValid() {
		if out := r.lookupLevel(scope, name, mask); len(out) > 0 {
			return out
		}
		scope = r.table.Scopes.Get(scope).Parent
	}
	return nil
}

// lookupLevel looks name up in one scope. A class member scope contributes
// the inherited members of its class as well.
func (r *resolver) lookupLevel(scope symbols.ScopeID, name source.StringID, mask symbols.KindMask) []Member {
	var out []Member
	for _, id := range r.table.LookupLocal(scope, name, mask) {
		out = append(out, Member{Symbol: id})
	}
	if s := r.table.Scopes.Get(scope); len(out) == 0 && s.Kind == symbols.ScopeClassMembers {
		for _, mem := range r.memberScopeOf(r.sym(s.Owner).DefaultType).lookup(name) {
			if mask&r.sym(mem.Symbol).Kind.Mask() != 0 {
				out = append(out, mem)
			}
		}
	}
	return out
}

func memberSymbols(mems []Member) []symbols.SymbolID {
	out := make([]symbols.SymbolID, len(mems))
	for i, m := range mems {
		out[i] = m.Symbol
	}
	return out
}
