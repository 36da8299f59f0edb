package sema

import (
	"lumen/internal/source"
	"lumen/internal/symbols"
)

// checkRedeclarations reports classifiers declared twice in one package or
// class, and type parameters or parameters declared twice in one
// declaration.
func (r *resolver) checkRedeclarations() {
	reported := make(map[symbols.SymbolID]bool)
	for _, scopes := range r.overloadScopes() {
		for _, group := range r.groupByName(scopes...) {
			var classes []symbols.SymbolID
			for _, id := range group {
				if sym := r.sym(id); sym.Kind == symbols.SymbolClass && !sym.Has(symbols.FlagBuiltin) {
					classes = append(classes, id)
				}
			}
			if len(classes) > 1 {
				for _, id := range classes {
					r.reportRedeclaration(id, reported)
				}
			}
		}
	}

	for _, id := range r.table.Symbols.IDs() {
		sym := r.sym(id)
		if sym.Has(symbols.FlagBuiltin) {
			continue
		}
		switch sym.Kind {
		case symbols.SymbolClass:
			r.reportDuplicates(sym.TypeParams, reported)
		case symbols.SymbolMethod, symbols.SymbolConstructor:
			r.reportDuplicates(sym.TypeParams, reported)
			r.reportDuplicates(sym.Params, reported)
		}
	}
}

func (r *resolver) reportDuplicates(ids []symbols.SymbolID, reported map[symbols.SymbolID]bool) {
	seen := make(map[source.StringID]symbols.SymbolID, len(ids))
	for _, id := range ids {
		name := r.sym(id).Name
		if first, dup := seen[name]; dup {
			r.reportRedeclaration(first, reported)
			r.reportRedeclaration(id, reported)
			continue
		}
		seen[name] = id
	}
}
