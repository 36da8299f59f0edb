package sema

import (
	"lumen/internal/ast"
	"lumen/internal/diag"
	"lumen/internal/symbols"
	"lumen/internal/types"
)

// resolveSupertypes evaluates every class's supertype list against its
// supertype-resolution scope. Invalid entries are reported and dropped;
// classes left without a supertype get the synthetic root, or their enum
// when they are enum entries.
func (r *resolver) resolveSupertypes() {
	for _, cls := range r.classes {
		info := r.classInfo[cls]
		decl := r.tree.Class(info.decl)
		sym := r.sym(cls)
		scope := sym.ClassScopes.TypeParams

		var supers []types.TypeID
		var refs []ast.TypeRefID
		hasClass := false
		for _, entry := range decl.Supertypes {
			t := r.resolveSupertypeRef(entry.Type, scope)
			if !r.acceptSupertype(cls, entry.Type, t, supers, hasClass) {
				continue
			}
			if !r.sym(symbols.FromCtor(r.types.Ctor(t))).IsTrait() {
				hasClass = true
			}
			supers = append(supers, t)
			refs = append(refs, entry.Type)
		}
		if len(supers) == 0 && cls != r.builtins.Any {
			supers = append(supers, r.defaultSupertype(cls))
			refs = append(refs, ast.NoTypeRefID)
		}
		r.edit(cls).Supertypes = supers
		info.superRefs = refs
	}
}

func (r *resolver) defaultSupertype(cls symbols.SymbolID) types.TypeID {
	sym := r.sym(cls)
	if sym.ClassKind == ast.ClassEnumEntry {
		if owner := r.sym(sym.Owner); owner != nil && owner.Kind == symbols.SymbolClass {
			return owner.DefaultType
		}
	}
	return r.builtins.AnyType
}

func (r *resolver) resolveSupertypeRef(ref ast.TypeRefID, scope symbols.ScopeID) types.TypeID {
	if tr := r.tree.TypeRef(ref); tr != nil && tr.Kind == ast.TypeRefSelf {
		r.errorf(diag.SemaSelfTypeNotAllowed, ast.TypeRefRef(ref), "'This' cannot be used as a supertype").Emit()
		return r.types.Error()
	}
	return r.resolveTypeRef(ref, scope)
}

func (r *resolver) acceptSupertype(cls symbols.SymbolID, ref ast.TypeRefID, t types.TypeID, have []types.TypeID, hasClass bool) bool {
	if r.types.IsError(t) {
		return false
	}
	node := ast.TypeRefRef(ref)
	st := r.types.MustLookup(t)
	if st.Kind != types.KindClass {
		r.errorf(diag.SemaSupertypeNotAClass, node, "'%s' cannot be used as a supertype", r.format(t)).
			WithArgs(r.format(t)).
			Emit()
		return false
	}
	if st.Nullable {
		r.errorf(diag.SemaNullableSupertype, node, "supertype '%s' cannot be nullable", r.format(t)).Emit()
		return false
	}
	target := symbols.FromCtor(st.Ctor)
	tsym := r.sym(target)
	if tsym.Modality == symbols.ModalityFinal && !r.isEnumOf(cls, target) {
		r.errorf(diag.SemaFinalSupertype, node, "'%s' is final and cannot be inherited from", r.name(tsym.Name)).
			WithArgs(r.name(tsym.Name)).
			Emit()
		return false
	}
	for _, prev := range have {
		if r.types.Ctor(prev) == st.Ctor {
			r.errorf(diag.SemaSupertypeAppearsTwice, node, "supertype '%s' appears twice", r.name(tsym.Name)).
				WithArgs(r.name(tsym.Name)).
				Emit()
			return false
		}
	}
	if !tsym.IsTrait() && hasClass {
		r.errorf(diag.SemaManyClassSupertypes, node, "only one class may appear in a supertype list").
			WithArgs(r.name(tsym.Name)).
			Emit()
		return false
	}
	return true
}

// isEnumOf reports whether cls is an entry of enum.
func (r *resolver) isEnumOf(cls, enum symbols.SymbolID) bool {
	sym := r.sym(cls)
	return sym.ClassKind == ast.ClassEnumEntry && sym.Owner == enum && r.sym(enum).ClassKind == ast.ClassEnum
}
