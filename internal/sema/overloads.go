package sema

import (
	"lumen/internal/diag"
	"lumen/internal/source"
	"lumen/internal/symbols"
	"lumen/internal/types"
)

// overloadScopes lists the scope sets whose members are checked for
// conflicts together: the root scope, every package member scope, and per
// user class its member and static scopes as one set.
func (r *resolver) overloadScopes() [][]symbols.ScopeID {
	var out [][]symbols.ScopeID
	for _, id := range r.table.Scopes.IDs() {
		s := r.table.Scopes.Get(id)
		if s.Kind == symbols.ScopeRoot || s.Kind == symbols.ScopePackage && s.Owner != r.builtins.Std {
			out = append(out, []symbols.ScopeID{id})
		}
	}
	for _, cls := range r.classes {
		cs := r.sym(cls).ClassScopes
		out = append(out, []symbols.ScopeID{cs.Members, cs.Static})
	}
	return out
}

// checkOverloads groups the members of each scope by name and reports
// properties declared twice and callables whose erased parameter lists are
// indistinguishable. Every offending declaration is reported once.
func (r *resolver) checkOverloads() {
	reported := make(map[symbols.SymbolID]bool)
	for _, scopes := range r.overloadScopes() {
		for _, group := range r.groupByName(scopes...) {
			var props, callables []symbols.SymbolID
			for _, id := range group {
				sym := r.sym(id)
				switch {
				case sym.Has(symbols.FlagBuiltin):
				case sym.Kind == symbols.SymbolVariable && !sym.Has(symbols.FlagSynthetic):
					props = append(props, id)
				case sym.IsCallable():
					callables = append(callables, id)
				}
			}
			if len(props) > 1 {
				for _, id := range props {
					r.reportRedeclaration(id, reported)
				}
			}
			for i, a := range callables {
				for _, b := range callables[i+1:] {
					if r.conflicting(a, b) {
						r.reportConflict(a, reported)
						r.reportConflict(b, reported)
					}
				}
			}
		}
	}
}

// groupByName splits the symbols owned by scopes into same-name groups in
// scope order, then declaration order. A symbol is listed once.
func (r *resolver) groupByName(scopes ...symbols.ScopeID) [][]symbols.SymbolID {
	index := make(map[source.StringID]int)
	seen := make(map[symbols.SymbolID]bool)
	var groups [][]symbols.SymbolID
	for _, scope := range scopes {
		for _, id := range r.table.Members(scope) {
			if seen[id] {
				continue
			}
			seen[id] = true
			name := r.sym(id).Name
			i, ok := index[name]
			if !ok {
				i = len(groups)
				index[name] = i
				groups = append(groups, nil)
			}
			groups[i] = append(groups[i], id)
		}
	}
	return groups
}

// conflicting reports whether two callables cannot be told apart by their
// erased parameter types. Parameters of the error type never conflict.
func (r *resolver) conflicting(a, b symbols.SymbolID) bool {
	pa, pb := r.sym(a).Params, r.sym(b).Params
	if len(pa) != len(pb) {
		return false
	}
	for i := range pa {
		ta, tb := r.sym(pa[i]).Type, r.sym(pb[i]).Type
		if r.types.IsError(ta) || r.types.IsError(tb) {
			return false
		}
		if r.erase(ta) != r.erase(tb) {
			return false
		}
	}
	return true
}

func (r *resolver) reportConflict(id symbols.SymbolID, reported map[symbols.SymbolID]bool) {
	if reported[id] {
		return
	}
	reported[id] = true
	sym := r.sym(id)
	name := r.name(sym.Name)
	if sym.Kind == symbols.SymbolConstructor {
		name = r.table.Name(sym.Owner)
	}
	r.errorf(diag.SemaConflictingOverloads, sym.Decl, "conflicting overloads: %s", r.signature(id)).
		WithArgs(name).
		Emit()
}

func (r *resolver) reportRedeclaration(id symbols.SymbolID, reported map[symbols.SymbolID]bool) {
	if reported[id] {
		return
	}
	reported[id] = true
	sym := r.sym(id)
	r.errorf(diag.SemaRedeclaration, sym.Decl, "redeclaration of %s '%s'", sym.Kind, r.name(sym.Name)).
		WithArgs(r.name(sym.Name)).
		Emit()
}

// signature renders a callable as name(T1, T2).
func (r *resolver) signature(id symbols.SymbolID) string {
	sym := r.sym(id)
	name := r.name(sym.Name)
	if sym.Kind == symbols.SymbolConstructor {
		name = r.table.Name(sym.Owner)
	}
	params := make([]types.TypeID, len(sym.Params))
	for i, p := range sym.Params {
		params[i] = r.sym(p).Type
	}
	return r.table.FQName(sym.Owner) + "." + name + "(" + r.formatList(params) + ")"
}
