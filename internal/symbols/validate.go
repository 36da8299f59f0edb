package symbols

import (
	"errors"
	"fmt"
)

// Validate walks the arenas checking structural invariants. Returns nil if
// everything is consistent; otherwise aggregates all detected issues.
func (t *Table) Validate() error {
	var errs []error

	for _, scopeID := range t.Scopes.IDs() {
		scope := t.Scopes.Get(scopeID)
		if scope.Kind == ScopeInvalid {
			errs = append(errs, fmt.Errorf("scope %d has invalid kind", scopeID))
		}
		if scope.Parent.IsValid() {
			parent := t.Scopes.Get(scope.Parent)
			if parent == nil || scope.Parent == scopeID {
				errs = append(errs, fmt.Errorf("scope %d has invalid parent %d", scopeID, scope.Parent))
			} else if !containsScope(parent.Children, scopeID) {
				errs = append(errs, fmt.Errorf("scope %d parent %d missing backlink", scopeID, scope.Parent))
			}
		}
		for _, child := range scope.Children {
			c := t.Scopes.Get(child)
			if c == nil || c.Parent != scopeID {
				errs = append(errs, fmt.Errorf("scope %d child %d missing parent backlink", scopeID, child))
			}
		}
		if scope.WriteThrough == scopeID {
			errs = append(errs, fmt.Errorf("scope %d writes through to itself", scopeID))
		}
		indexed := make(map[SymbolID]struct{}, len(scope.Symbols))
		for _, bucket := range scope.NameIndex {
			for _, id := range bucket {
				indexed[id] = struct{}{}
				if t.Symbols.Get(id) == nil {
					errs = append(errs, fmt.Errorf("scope %d indexes unknown symbol %d", scopeID, id))
				}
			}
		}
		for _, id := range scope.Symbols {
			if _, ok := indexed[id]; !ok {
				errs = append(errs, fmt.Errorf("scope %d symbol %d missing from name index", scopeID, id))
			}
			if sym := t.Symbols.Get(id); sym != nil && sym.Scope != scopeID {
				errs = append(errs, fmt.Errorf("symbol %d declared in scope %d but records scope %d", id, scopeID, sym.Scope))
			}
		}
	}

	for _, id := range t.Symbols.IDs() {
		sym := t.Symbols.Get(id)
		if sym.Kind == SymbolInvalid {
			errs = append(errs, fmt.Errorf("symbol %d has invalid kind", id))
		}
		if sym.Owner.IsValid() && t.Symbols.Get(sym.Owner) == nil {
			errs = append(errs, fmt.Errorf("symbol %d has unknown owner %d", id, sym.Owner))
		}
		if sym.Owner == id {
			errs = append(errs, fmt.Errorf("symbol %d owns itself", id))
		}
	}

	return errors.Join(errs...)
}

func containsScope(list []ScopeID, id ScopeID) bool {
	for _, s := range list {
		if s == id {
			return true
		}
	}
	return false
}
