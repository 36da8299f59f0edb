package sema

import (
	"lumen/internal/ast"
	"lumen/internal/attrs"
	"lumen/internal/bindings"
	"lumen/internal/diag"
	"lumen/internal/symbols"
	"lumen/internal/types"
)

// shapeCheck is a constructor-shape requirement waiting for constructor
// signatures to exist.
type shapeCheck struct {
	node  ast.NodeRef
	arg   types.TypeID
	param symbols.SymbolID
	shape []types.TypeID
}

// checkHeaderBounds checks the type arguments written in class headers:
// supertypes, type-parameter bounds and constructor shapes.
func (r *resolver) checkHeaderBounds() {
	for _, cls := range r.classes {
		info := r.classInfo[cls]
		for _, ref := range info.superRefs {
			r.checkTypeRefBounds(ref)
		}
		for _, tpID := range r.tree.Class(info.decl).TypeParams {
			tp := r.tree.TypeParam(tpID)
			r.checkTypeRefBounds(tp.Bound)
			for _, ref := range tp.Ctor {
				r.checkTypeRefBounds(ref)
			}
		}
	}
}

// checkTypeRefBounds checks every argument of a resolved type reference
// against the substituted bound of its parameter. Constructor shapes are
// queued for flushShapeChecks.
func (r *resolver) checkTypeRefBounds(id ast.TypeRefID) {
	if !id.IsValid() {
		return
	}
	ref := r.tree.TypeRef(id)
	for _, p := range ref.Params {
		r.checkTypeRefBounds(p)
	}
	r.checkTypeRefBounds(ref.Result)
	for _, a := range ref.Args {
		r.checkTypeRefBounds(a)
	}

	t, ok := attrs.Get(r.store, bindings.TypeRefType, id)
	if !ok || r.types.IsError(t) || r.types.Kind(t) != types.KindClass {
		return
	}
	cls := r.sym(symbols.FromCtor(r.types.Ctor(t)))
	args := r.types.MustLookup(t).Args
	subst := r.substFor(t)
	for i, tp := range cls.TypeParams {
		if i >= len(args) || i >= len(ref.Args) {
			break
		}
		node := ast.TypeRefRef(ref.Args[i])
		param := r.sym(tp)
		bound := r.types.Substitute(param.Bound, subst)
		if !r.isSubtype(args[i], bound) {
			r.errorf(diag.SemaUpperBoundViolated, node, "type argument '%s' is not within its bound '%s'",
				r.format(args[i]), r.format(bound)).
				WithArgs(r.format(args[i]), r.format(bound)).
				Emit()
		}
		if param.HasCtorShape {
			shape := make([]types.TypeID, len(param.CtorShape))
			for j, s := range param.CtorShape {
				shape[j] = r.types.Substitute(s, subst)
			}
			r.shapeChecks = append(r.shapeChecks, shapeCheck{node: node, arg: args[i], param: tp, shape: shape})
		}
	}
}

// flushShapeChecks verifies the queued constructor-shape requirements.
func (r *resolver) flushShapeChecks() {
	for _, c := range r.shapeChecks {
		if !r.satisfiesShape(c.arg, c.shape) {
			r.errorf(diag.SemaConstructorShapeViolated, c.node, "'%s' has no constructor (%s) required by '%s'",
				r.format(c.arg), r.formatList(c.shape), r.table.Name(c.param)).
				WithArgs(r.format(c.arg), r.table.Name(c.param)).
				Emit()
		}
	}
	r.shapeChecks = nil
}

func (r *resolver) satisfiesShape(arg types.TypeID, shape []types.TypeID) bool {
	if r.types.IsError(arg) {
		return true
	}
	at := r.types.MustLookup(arg)
	switch at.Kind {
	case types.KindTypeParam:
		tp := r.sym(symbols.FromCtor(at.Ctor))
		return tp.HasCtorShape && r.sameTypes(tp.CtorShape, shape)
	case types.KindClass:
		cls := r.sym(symbols.FromCtor(at.Ctor))
		if cls.IsTrait() || cls.Modality == symbols.ModalityAbstract {
			return false
		}
		subst := r.substFor(arg)
		for _, ctor := range r.table.Declared(cls.ClassScopes.Members, r.initName) {
			c := r.sym(ctor)
			if c.Kind != symbols.SymbolConstructor || len(c.Params) != len(shape) {
				continue
			}
			params := make([]types.TypeID, len(c.Params))
			for i, p := range c.Params {
				params[i] = r.types.Substitute(r.sym(p).Type, subst)
			}
			if r.sameTypes(params, shape) {
				return true
			}
		}
	}
	return false
}

func (r *resolver) sameTypes(a, b []types.TypeID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !r.sameType(a[i], b[i]) {
			return false
		}
	}
	return true
}

func (r *resolver) formatList(ts []types.TypeID) string {
	out := ""
	for i, t := range ts {
		if i > 0 {
			out += ", "
		}
		out += r.format(t)
	}
	return out
}
