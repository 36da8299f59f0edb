package sema

import (
	"slices"
	"strings"

	"lumen/internal/ast"
	"lumen/internal/attrs"
	"lumen/internal/bindings"
	"lumen/internal/diag"
	"lumen/internal/source"
	"lumen/internal/symbols"
)

// pendingImport is an explicit import whose target set can only be final
// once member headers exist.
type pendingImport struct {
	file  *fileInfo
	id    ast.ImportID
	alias source.StringID
	path  []source.StringID
}

// applyDefaultImports binds the implicit imports into the unit's default
// scope. It runs against a discarded temporary store: a default import that
// does not resolve is silently ignored.
func (r *resolver) applyDefaultImports() {
	list := r.opts.DefaultImports
	if list == nil {
		list = DefaultImports
	}
	r.speculate("default-imports", func() bool {
		for _, raw := range list {
			segs := strings.Split(strings.TrimSuffix(raw, ".*"), ".")
			path := r.table.Strings.InternPath(segs)
			if strings.HasSuffix(raw, ".*") {
				for _, pkg := range r.filterKind(r.resolvePath(r.table.RootScope, path, qualifierMask), symbols.SymbolPackage.Mask()) {
					r.table.AddImportedScope(r.defaultScope, r.sym(pkg).MemberScope)
				}
				continue
			}
			for _, id := range r.importCandidates(r.table.RootScope, path) {
				r.table.Bind(r.defaultScope, path[len(path)-1], id)
			}
		}
		return false
	})
}

// bindImports processes every file's import directives. Star imports are
// final here; explicit imports bind what exists now and are completed by
// completeImports after the declaration phase.
func (r *resolver) bindImports() []pendingImport {
	var pending []pendingImport
	for _, f := range r.files {
		for _, impID := range r.tree.File(f.id).Imports {
			imp := r.tree.Import(impID)
			if imp.All {
				r.bindStarImport(f, impID, imp)
				continue
			}
			if len(imp.Path) < 2 {
				r.errorf(diag.SemaUnresolvedImport, ast.ImportRef(impID), "import of '%s' needs a qualifier", r.pathString(imp.Path)).Emit()
				continue
			}
			alias := imp.Alias
			if alias == source.NoStringID {
				alias = imp.Path[len(imp.Path)-1]
			}
			for _, id := range r.importCandidates(r.table.RootScope, imp.Path) {
				r.table.Bind(f.scope, alias, id)
			}
			pending = append(pending, pendingImport{file: f, id: impID, alias: alias, path: imp.Path})
		}
	}
	return pending
}

func (r *resolver) bindStarImport(f *fileInfo, impID ast.ImportID, imp *ast.Import) {
	node := ast.ImportRef(impID)
	if imp.Alias != source.NoStringID {
		r.errorf(diag.SemaImportAliasOnStar, node, "a star import cannot be renamed").Emit()
	}
	cands := r.preferClass(r.resolvePath(r.table.RootScope, imp.Path, qualifierMask))
	pkgs := r.filterKind(cands, symbols.SymbolPackage.Mask())
	if len(pkgs) == 0 {
		if classes := r.filterKind(cands, symbols.SymbolClass.Mask()); len(classes) > 0 {
			r.errorf(diag.SemaCannotImportFromClass, node, "cannot import all members of class '%s'", r.pathString(imp.Path)).Emit()
			return
		}
		r.errorf(diag.SemaUnresolvedImport, node, "unresolved import '%s.*'", r.pathString(imp.Path)).
			WithArgs(r.pathString(imp.Path)).
			Emit()
		return
	}
	attrs.Set(r.store, bindings.ImportTarget, impID, pkgs)
	for _, pkg := range pkgs {
		target := r.sym(pkg).MemberScope
		if r.starAlreadyVisible(f.scope, target) {
			r.warnf(diag.SemaUselessImport, node, "import '%s.*' is useless", r.pathString(imp.Path)).Emit()
			continue
		}
		r.table.AddImportedScope(f.scope, target)
	}
}

func (r *resolver) starAlreadyVisible(fileScope, target symbols.ScopeID) bool {
	for scope := fileScope; scope.IsValid(); {
		s := r.table.Scopes.Get(scope)
		if s.WriteThrough == target || slices.Contains(s.Imported, target) {
			return true
		}
		scope = s.Parent
	}
	return false
}

// importCandidates resolves the qualifier of path and gathers every
// declaration named by its last segment.
func (r *resolver) importCandidates(scope symbols.ScopeID, path []source.StringID) []symbols.SymbolID {
	if len(path) < 2 {
		return nil
	}
	quals := r.preferClass(r.resolvePath(scope, path[:len(path)-1], qualifierMask))
	return r.lookupIn(quals, path[len(path)-1], symbols.KindMaskAny)
}

// completeImports binds the members declared since bindImports ran and
// reports unresolved and useless imports.
func (r *resolver) completeImports(pending []pendingImport) {
	seen := make(map[*fileInfo]map[source.StringID][]symbols.SymbolID)
	for _, p := range pending {
		node := ast.ImportRef(p.id)
		cands := r.importCandidates(r.table.RootScope, p.path)
		if len(cands) == 0 {
			r.errorf(diag.SemaUnresolvedImport, node, "unresolved import '%s'", r.pathString(p.path)).
				WithArgs(r.pathString(p.path)).
				Emit()
			continue
		}
		for _, id := range cands {
			r.table.Bind(p.file.scope, p.alias, id)
			r.checkVisible(id, p.file.scope, node)
		}
		attrs.Set(r.store, bindings.ImportTarget, p.id, cands)

		prev := seen[p.file]
		if prev == nil {
			prev = make(map[source.StringID][]symbols.SymbolID)
			seen[p.file] = prev
		}
		if sameSet(prev[p.alias], cands) || sameSet(r.reachableWithoutImports(p.file.scope, p.alias), cands) {
			r.warnf(diag.SemaUselessImport, node, "import '%s' is useless: the name is already visible", r.pathString(p.path)).
				WithArgs(r.pathString(p.path)).
				Emit()
		}
		prev[p.alias] = cands
	}
}

// reachableWithoutImports looks name up from a file scope ignoring the
// file's explicit imports.
func (r *resolver) reachableWithoutImports(fileScope symbols.ScopeID, name source.StringID) []symbols.SymbolID {
	s := r.table.Scopes.Get(fileScope)
	if s.WriteThrough.IsValid() {
		if found := r.table.LookupLocal(s.WriteThrough, name, symbols.KindMaskAny); len(found) > 0 {
			return found
		}
	}
	var out []symbols.SymbolID
	for _, imp := range s.Imported {
		for _, id := range r.table.LookupLocal(imp, name, symbols.KindMaskAny) {
			out = appendUnique(out, id)
		}
	}
	if len(out) > 0 {
		return out
	}
	return r.table.Lookup(s.Parent, name, symbols.KindMaskAny)
}

func sameSet(a, b []symbols.SymbolID) bool {
	if len(a) == 0 || len(a) != len(b) {
		return false
	}
	for _, id := range a {
		if !slices.Contains(b, id) {
			return false
		}
	}
	return true
}
