package sema

import (
	"lumen/internal/ast"
	"lumen/internal/attrs"
	"lumen/internal/bindings"
	"lumen/internal/symbols"
	"lumen/internal/types"
)

// createTypeConstructors declares the type parameters of every class and
// fixes its default type. Bounds are resolved in a second sweep so that a
// bound may mention any class regardless of discovery order.
func (r *resolver) createTypeConstructors() {
	for _, cls := range r.classes {
		info := r.classInfo[cls]
		decl := r.tree.Class(info.decl)
		scope := r.sym(cls).ClassScopes.TypeParams
		params := r.declareTypeParams(decl.TypeParams, cls, scope)
		r.table.SetLock(scope, symbols.LockBoth)

		args := make([]types.TypeID, len(params))
		for i, tp := range params {
			args[i] = r.types.TypeParam(tp.Ctor())
		}
		sym := r.edit(cls)
		sym.TypeParams = params
		sym.DefaultType = r.types.Class(cls.Ctor(), args...)
	}

	for _, cls := range r.classes {
		info := r.classInfo[cls]
		r.resolveTypeParamBounds(r.tree.Class(info.decl).TypeParams, r.sym(cls).ClassScopes.TypeParams)
	}

	for _, cls := range r.classes {
		r.typeInstanceValue(cls)
	}
}

// declareTypeParams creates descriptors for tps in scope without resolving
// their bounds.
func (r *resolver) declareTypeParams(tps []ast.TypeParamID, owner symbols.SymbolID, scope symbols.ScopeID) []symbols.SymbolID {
	out := make([]symbols.SymbolID, 0, len(tps))
	for _, tpID := range tps {
		tp := r.tree.TypeParam(tpID)
		id := r.newSymbol(symbols.Symbol{
			Name:         tp.Name,
			Kind:         symbols.SymbolTypeParameter,
			Owner:        owner,
			Span:         tp.Span,
			Decl:         ast.TypeParamRef(tpID),
			Visibility:   symbols.VisLocal,
			Bound:        r.builtins.NullableAny,
			HasCtorShape: tp.HasCtor,
		})
		r.table.Declare(scope, id)
		attrs.Set(r.store, bindings.TypeParamDescriptor, ast.TypeParamRef(tpID), id)
		out = append(out, id)
	}
	return out
}

func (r *resolver) resolveTypeParamBounds(tps []ast.TypeParamID, scope symbols.ScopeID) {
	for _, tpID := range tps {
		tp := r.tree.TypeParam(tpID)
		id, ok := attrs.Get(r.store, bindings.TypeParamDescriptor, ast.TypeParamRef(tpID))
		if !ok {
			continue
		}
		sym := r.edit(id)
		if tp.Bound.IsValid() {
			sym.Bound = r.resolveTypeRef(tp.Bound, scope)
		}
		if tp.HasCtor {
			shape := make([]types.TypeID, len(tp.Ctor))
			for i, ref := range tp.Ctor {
				shape[i] = r.resolveTypeRef(ref, scope)
			}
			sym.CtorShape = shape
		}
	}
}

// typeInstanceValue types the value declared for an object or enum entry.
func (r *resolver) typeInstanceValue(cls symbols.SymbolID) {
	v, ok := attrs.Get(r.store, bindings.ObjectInstance, cls)
	if !ok {
		return
	}
	sym := r.sym(cls)
	t := sym.DefaultType
	if sym.ClassKind == ast.ClassEnumEntry {
		if owner := r.sym(sym.Owner); owner != nil && owner.Kind == symbols.SymbolClass {
			t = owner.DefaultType
		}
	}
	r.edit(v).Type = t
}

// typeParamBound returns the upper bound of a type-parameter type.
func (r *resolver) typeParamBound(t types.TypeID) types.TypeID {
	tp := r.sym(symbols.FromCtor(r.types.Ctor(t)))
	if tp == nil || !tp.Bound.IsValid() {
		return r.builtins.NullableAny
	}
	return tp.Bound
}
