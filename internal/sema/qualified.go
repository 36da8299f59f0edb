package sema

import (
	"strings"

	"lumen/internal/ast"
	"lumen/internal/attrs"
	"lumen/internal/bindings"
	"lumen/internal/diag"
	"lumen/internal/source"
	"lumen/internal/symbols"
	"lumen/internal/types"
)

var (
	qualifierMask  = symbols.MaskOf(symbols.SymbolPackage, symbols.SymbolClass)
	classifierMask = symbols.MaskOf(symbols.SymbolClass, symbols.SymbolTypeParameter)
	typeHeadMask   = classifierMask | symbols.SymbolPackage.Mask()
	valueMask      = symbols.MaskOf(symbols.SymbolVariable, symbols.SymbolParameter)
	callableMask   = symbols.MaskOf(symbols.SymbolMethod, symbols.SymbolConstructor)
)

// qualifierScopes are the scopes a resolved qualifier contributes to the
// next segment of a dotted chain.
func (r *resolver) qualifierScopes(id symbols.SymbolID) []symbols.ScopeID {
	sym := r.sym(id)
	if sym == nil {
		return nil
	}
	switch sym.Kind {
	case symbols.SymbolPackage:
		return []symbols.ScopeID{sym.MemberScope}
	case symbols.SymbolClass:
		return []symbols.ScopeID{sym.ClassScopes.Static}
	default:
		return nil
	}
}

// resolvePath resolves a dotted chain left to right. The first segment is
// looked up through the scope chain with firstMask; every later segment only
// inside the scopes of the previous segment's candidates. Every candidate kind
// of the last segment is returned.
func (r *resolver) resolvePath(scope symbols.ScopeID, path []source.StringID, firstMask symbols.KindMask) []symbols.SymbolID {
	if len(path) == 0 {
		return nil
	}
	if len(path) > 1 {
		firstMask &= qualifierMask
	}
	cands := r.table.Lookup(scope, path[0], firstMask)
	for _, seg := range path[1:] {
		cands = r.lookupIn(cands, seg, symbols.KindMaskAny)
		if len(cands) == 0 {
			return nil
		}
	}
	return cands
}

// lookupIn gathers name from the qualifier scopes of every candidate.
func (r *resolver) lookupIn(quals []symbols.SymbolID, name source.StringID, mask symbols.KindMask) []symbols.SymbolID {
	var out []symbols.SymbolID
	for _, q := range quals {
		for _, s := range r.qualifierScopes(q) {
			for _, id := range r.table.LookupLocal(s, name, mask) {
				out = appendUnique(out, id)
			}
		}
	}
	return out
}

// preferClass resolves the one ambiguity settled silently: exactly one
// package and one class sharing a name denote the class.
func (r *resolver) preferClass(cands []symbols.SymbolID) []symbols.SymbolID {
	if len(cands) != 2 {
		return cands
	}
	a, b := r.sym(cands[0]), r.sym(cands[1])
	switch {
	case a.Kind == symbols.SymbolPackage && b.Kind == symbols.SymbolClass:
		return cands[1:]
	case a.Kind == symbols.SymbolClass && b.Kind == symbols.SymbolPackage:
		return cands[:1]
	}
	return cands
}

func (r *resolver) filterKind(cands []symbols.SymbolID, mask symbols.KindMask) []symbols.SymbolID {
	var out []symbols.SymbolID
	for _, id := range cands {
		if sym := r.sym(id); sym != nil && mask&sym.Kind.Mask() != 0 {
			out = append(out, id)
		}
	}
	return out
}

func (r *resolver) pathString(path []source.StringID) string {
	parts := make([]string, len(path))
	for i, seg := range path {
		parts[i] = r.name(seg)
	}
	return strings.Join(parts, ".")
}

// enclosingClass returns the class whose instance scope contains scope.
func (r *resolver) enclosingClass(scope symbols.ScopeID) symbols.SymbolID {
	for scope.IsValid() {
		s := r.table.Scopes.Get(scope)
		switch s.Kind {
		case symbols.ScopeClassMembers, symbols.ScopeInit, symbols.ScopeTypeParams:
			return s.Owner
		case symbols.ScopeClassStatic, symbols.ScopeFile, symbols.ScopePackage:
			return symbols.NoSymbolID
		}
		scope = s.Parent
	}
	return symbols.NoSymbolID
}

// contextOwners lists the classes and package lexically enclosing scope,
// innermost first.
func (r *resolver) contextOwners(scope symbols.ScopeID) []symbols.SymbolID {
	var out []symbols.SymbolID
	for scope.IsValid() {
		s := r.table.Scopes.Get(scope)
		if sym := r.sym(s.Owner); sym != nil && (sym.Kind == symbols.SymbolClass || sym.Kind == symbols.SymbolPackage) {
			out = appendUnique(out, s.Owner)
		}
		if s.Kind == symbols.ScopeFile && s.WriteThrough.IsValid() {
			out = appendUnique(out, r.table.Scopes.Get(s.WriteThrough).Owner)
		}
		scope = s.Parent
	}
	return out
}

// visible reports whether target may be referenced from scope.
func (r *resolver) visible(target symbols.SymbolID, scope symbols.ScopeID) bool {
	sym := r.sym(target)
	if sym == nil {
		return true
	}
	switch sym.Visibility {
	case symbols.VisPrivate:
		for _, owner := range r.contextOwners(scope) {
			if owner == sym.Owner {
				return true
			}
		}
		return false
	case symbols.VisProtected:
		for _, owner := range r.contextOwners(scope) {
			if owner == sym.Owner || r.isSubclass(owner, sym.Owner) {
				return true
			}
		}
		return false
	default:
		return true
	}
}

func (r *resolver) checkVisible(target symbols.SymbolID, scope symbols.ScopeID, node ast.NodeRef) {
	if r.visible(target, scope) {
		return
	}
	sym := r.sym(target)
	r.errorf(diag.SemaInvisibleMember, node, "cannot access '%s': it is %s in '%s'",
		r.name(sym.Name), sym.Visibility, r.table.FQName(sym.Owner)).
		WithArgs(r.table.FQName(target), sym.Visibility.String()).
		Emit()
}

// resolveTypeRef evaluates a written type in scope. The result is memoised in
// the store, so a type reference is resolved once.
func (r *resolver) resolveTypeRef(id ast.TypeRefID, scope symbols.ScopeID) types.TypeID {
	if !id.IsValid() {
		return types.NoTypeID
	}
	if t, ok := attrs.Get(r.store, bindings.TypeRefType, id); ok {
		return t
	}
	t := r.computeTypeRef(id, scope)
	attrs.Set(r.store, bindings.TypeRefType, id, t)
	return t
}

func (r *resolver) computeTypeRef(id ast.TypeRefID, scope symbols.ScopeID) types.TypeID {
	ref := r.tree.TypeRef(id)
	node := ast.TypeRefRef(id)
	switch ref.Kind {
	case ast.TypeRefSelf:
		cls := r.enclosingClass(scope)
		if !cls.IsValid() {
			r.errorf(diag.SemaSelfTypeNotAllowed, node, "'This' is only allowed inside a class").Emit()
			return r.types.Error()
		}
		return r.types.WithNullable(r.types.Self(cls.Ctor()), ref.Nullable)

	case ast.TypeRefFunction:
		params := make([]types.TypeID, len(ref.Params))
		for i, p := range ref.Params {
			params[i] = r.resolveTypeRef(p, scope)
		}
		result := r.builtins.UnitType
		if ref.Result.IsValid() {
			result = r.resolveTypeRef(ref.Result, scope)
		}
		return r.types.WithNullable(r.types.Function(params, result), ref.Nullable)
	}

	cands := r.preferClass(r.resolvePath(scope, ref.Path, typeHeadMask))
	classifiers := r.filterKind(cands, classifierMask)
	switch {
	case len(classifiers) == 0:
		r.errorf(diag.SemaUnresolvedReference, node, "unresolved type '%s'", r.pathString(ref.Path)).
			WithArgs(r.pathString(ref.Path)).
			Emit()
		return r.types.Error()
	case len(classifiers) > 1:
		attrs.Set(r.store, bindings.AmbiguousTarget, node, classifiers)
		r.errorf(diag.SemaAmbiguousReference, node, "type '%s' is ambiguous", r.pathString(ref.Path)).
			WithArgs(r.symbolNames(classifiers)...).
			Emit()
		return r.types.Error()
	}

	target := classifiers[0]
	attrs.Set(r.store, bindings.TypeRefTarget, id, target)
	sym := r.sym(target)
	args := make([]types.TypeID, len(ref.Args))
	for i, a := range ref.Args {
		args[i] = r.resolveTypeRef(a, scope)
	}

	if sym.Kind == symbols.SymbolTypeParameter {
		if len(args) > 0 {
			r.errorf(diag.SemaWrongTypeArgumentCount, node, "type parameter '%s' takes no type arguments", r.name(sym.Name)).Emit()
			return r.types.Error()
		}
		return r.types.WithNullable(r.types.TypeParam(target.Ctor()), ref.Nullable)
	}

	r.checkVisible(target, scope, node)
	if len(args) != len(sym.TypeParams) {
		r.errorf(diag.SemaWrongTypeArgumentCount, node, "'%s' expects %d type arguments, got %d",
			r.name(sym.Name), len(sym.TypeParams), len(args)).
			WithArgs(r.name(sym.Name)).
			Emit()
		return r.types.Error()
	}
	return r.types.Intern(types.Type{Kind: types.KindClass, Ctor: target.Ctor(), Args: args, Nullable: ref.Nullable})
}

func (r *resolver) symbolNames(ids []symbols.SymbolID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = r.table.FQName(id)
	}
	return out
}

func appendUnique(list []symbols.SymbolID, id symbols.SymbolID) []symbols.SymbolID {
	for _, have := range list {
		if have == id {
			return list
		}
	}
	return append(list, id)
}
