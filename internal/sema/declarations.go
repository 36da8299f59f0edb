package sema

import (
	"lumen/internal/ast"
	"lumen/internal/attrs"
	"lumen/internal/bindings"
	"lumen/internal/diag"
	"lumen/internal/symbols"
	"lumen/internal/types"
)

type bodyKind uint8

const (
	bodyFunction bodyKind = iota
	bodyProperty
	bodyConstructor
	bodyPrimary
)

// body is a declaration whose expressions are resolved after the scopes are
// sealed. scope is the scope its expressions are resolved in.
type body struct {
	kind  bodyKind
	sym   symbols.SymbolID
	decl  ast.DeclID
	class symbols.SymbolID
	scope symbols.ScopeID
}

// declareMembers resolves the headers of every function, property and
// constructor, container by container in discovery order.
func (r *resolver) declareMembers() {
	for _, c := range r.containers {
		if c.kind == containerClass {
			r.declareClassMembers(c)
			continue
		}
		for _, declID := range c.members {
			switch r.tree.Decl(declID).Kind {
			case ast.DeclFunction:
				r.declareFunction(declID, c.owner, c.scope, c.scope)
			case ast.DeclProperty:
				r.declareProperty(declID, c.owner, c.scope, c.scope)
			}
		}
	}
	r.flushShapeChecks()
}

func (r *resolver) declareClassMembers(c *container) {
	cls := c.owner
	info := r.classInfo[cls]
	decl := r.tree.Class(info.decl)
	sym := r.sym(cls)
	cs := sym.ClassScopes

	var secondary []ast.DeclID
	for _, declID := range c.members {
		if r.tree.Decl(declID).Kind == ast.DeclConstructor {
			secondary = append(secondary, declID)
		}
	}
	if decl.HasPrimary || (len(secondary) == 0 && !sym.IsTrait()) {
		r.declarePrimary(cls, info.decl, decl)
	}

	for _, declID := range c.members {
		d := r.tree.Decl(declID)
		scope := cs.Members
		if d.Mods.Has(ast.ModStatic) {
			scope = cs.Static
		}
		var member symbols.SymbolID
		switch d.Kind {
		case ast.DeclFunction:
			member = r.declareFunction(declID, cls, scope, cs.Members)
		case ast.DeclProperty:
			member = r.declareProperty(declID, cls, scope, cs.Init)
		case ast.DeclConstructor:
			r.declareSecondary(cls, declID)
		}
		if member.IsValid() {
			r.checkAbstract(cls, member)
		}
	}
}

func (r *resolver) memberFlags(mods ast.Modifiers) symbols.SymbolFlags {
	var flags symbols.SymbolFlags
	if mods.Has(ast.ModStatic) {
		flags |= symbols.FlagStatic
	}
	if mods.Has(ast.ModNative) {
		flags |= symbols.FlagNative
	}
	if mods.Has(ast.ModInline) {
		flags |= symbols.FlagInline
	}
	return flags
}

// memberModality derives the modality of a function or property. Members of
// traits without a body are implicitly abstract.
func (r *resolver) memberModality(owner symbols.SymbolID, mods ast.Modifiers, hasBody bool) symbols.Modality {
	switch {
	case mods.Has(ast.ModAbstract):
		return symbols.ModalityAbstract
	case r.sym(owner).IsTrait() && !hasBody && !mods.Has(ast.ModNative):
		return symbols.ModalityAbstract
	case mods.Has(ast.ModOpen), mods.Has(ast.ModOverride) && !mods.Has(ast.ModFinal):
		return symbols.ModalityOpen
	default:
		return symbols.ModalityFinal
	}
}

func (r *resolver) checkAbstract(cls, member symbols.SymbolID) {
	c, m := r.sym(cls), r.sym(member)
	if m.Modality != symbols.ModalityAbstract || c.Modality == symbols.ModalityAbstract {
		return
	}
	r.errorf(diag.SemaAbstractMemberInFinalClass, m.Decl, "abstract member '%s' in non-abstract class '%s'",
		r.name(m.Name), r.name(c.Name)).
		WithArgs(r.name(m.Name), r.name(c.Name)).
		Emit()
}

// declareFunction creates a function descriptor in declScope. Its type
// parameters and parameters live in a function scope whose parent is
// outer.
func (r *resolver) declareFunction(declID ast.DeclID, owner symbols.SymbolID, declScope, outer symbols.ScopeID) symbols.SymbolID {
	d := r.tree.Decl(declID)
	fn := r.tree.Function(declID)
	id := r.newSymbol(symbols.Symbol{
		Name:        d.Name,
		Kind:        symbols.SymbolMethod,
		Owner:       owner,
		Span:        d.Span,
		Decl:        ast.DeclRef(declID),
		Visibility:  visibilityOf(d.Mods),
		Modality:    r.memberModality(owner, d.Mods, fn.Body.IsValid()),
		Flags:       r.memberFlags(d.Mods),
		Annotations: annotationsOf(d),
	})
	scope := r.table.NewScope(symbols.ScopeFunction, outer, id)
	tps := r.declareTypeParams(fn.TypeParams, id, scope)
	r.resolveTypeParamBounds(fn.TypeParams, scope)
	params := r.declareParams(fn.Params, id, scope)

	sym := r.edit(id)
	sym.TypeParams = tps
	sym.Params = params
	switch {
	case fn.Result.IsValid():
		sym.Type = r.resolveTypeRef(fn.Result, scope)
	case !fn.Body.IsValid() || r.tree.Expr(fn.Body).Kind == ast.ExprBlock:
		sym.Type = r.builtins.UnitType
	default:
		env := r.env(scope, id, r.enclosingClass(scope))
		sym.Pending = r.deferType(id, func() types.TypeID {
			return env.TypeOf(fn.Body, types.NoTypeID)
		})
	}

	r.table.Declare(declScope, id)
	attrs.Set(r.store, bindings.FunctionDescriptor, ast.DeclRef(declID), id)
	r.checkSignatureBounds(fn.TypeParams, fn.Params, fn.Result)
	if fn.Body.IsValid() {
		r.bodies = append(r.bodies, &body{kind: bodyFunction, sym: id, decl: declID, class: r.enclosingClass(scope), scope: scope})
	}
	return id
}

// declareProperty creates a property descriptor in declScope; its type and
// initializer are resolved in initScope. An omitted type is inferred from
// the initializer on demand.
func (r *resolver) declareProperty(declID ast.DeclID, owner symbols.SymbolID, declScope, initScope symbols.ScopeID) symbols.SymbolID {
	d := r.tree.Decl(declID)
	prop := r.tree.Property(declID)
	flags := r.memberFlags(d.Mods) | symbols.FlagProperty
	if prop.Mutable {
		flags |= symbols.FlagMutable
	}
	id := r.newSymbol(symbols.Symbol{
		Name:        d.Name,
		Kind:        symbols.SymbolVariable,
		Owner:       owner,
		Span:        d.Span,
		Decl:        ast.DeclRef(declID),
		Visibility:  visibilityOf(d.Mods),
		Modality:    r.memberModality(owner, d.Mods, prop.Init.IsValid()),
		Flags:       flags,
		Annotations: annotationsOf(d),
	})
	sym := r.edit(id)
	switch {
	case prop.Type.IsValid():
		sym.Type = r.resolveTypeRef(prop.Type, initScope)
		r.checkTypeRefBounds(prop.Type)
	case prop.Init.IsValid():
		env := r.env(initScope, symbols.NoSymbolID, r.enclosingClass(initScope))
		sym.Pending = r.deferType(id, func() types.TypeID {
			return env.TypeOf(prop.Init, types.NoTypeID)
		})
	default:
		sym.Type = r.types.Error()
		r.errorf(diag.SemaMissingReturnType, ast.DeclRef(declID), "property '%s' must have a type or an initializer", r.name(d.Name)).
			WithArgs(r.name(d.Name)).
			Emit()
	}

	r.table.Declare(declScope, id)
	attrs.Set(r.store, bindings.PropertyDescriptor, ast.DeclRef(declID), id)
	if prop.Init.IsValid() {
		r.bodies = append(r.bodies, &body{kind: bodyProperty, sym: id, decl: declID, class: r.enclosingClass(initScope), scope: initScope})
	}
	return id
}

// declarePrimary creates the primary constructor. Its parameters go to the
// class's initializer scope; val/var parameters also become properties.
func (r *resolver) declarePrimary(cls symbols.SymbolID, declID ast.DeclID, decl *ast.ClassDecl) {
	c := r.sym(cls)
	cs := c.ClassScopes
	d := r.tree.Decl(declID)
	vis := symbols.VisPublic
	if decl.Kind == ast.ClassObject || decl.Kind == ast.ClassEnum {
		vis = symbols.VisPrivate
	}
	id := r.newSymbol(symbols.Symbol{
		Name:       r.initName,
		Kind:       symbols.SymbolConstructor,
		Owner:      cls,
		Span:       d.Span,
		Visibility: vis,
		Flags:      symbols.FlagPrimary,
		Type:       c.DefaultType,
	})
	if !decl.HasPrimary {
		r.edit(id).Flags |= symbols.FlagSynthetic
	}
	params := r.declareParams(decl.PrimaryParams, id, cs.Init)
	r.edit(id).Params = params
	r.table.Declare(cs.Members, id)
	if decl.HasPrimary {
		r.edit(id).Decl = ast.DeclRef(declID)
		attrs.Set(r.store, bindings.ConstructorDescriptor, ast.DeclRef(declID), id)
	}
	r.checkSignatureBounds(nil, decl.PrimaryParams, ast.NoTypeRefID)

	for i, pid := range decl.PrimaryParams {
		p := r.tree.Param(pid)
		if !p.Property {
			continue
		}
		flags := symbols.FlagProperty
		if p.Mutable {
			flags |= symbols.FlagMutable
		}
		prop := r.newSymbol(symbols.Symbol{
			Name:       p.Name,
			Kind:       symbols.SymbolVariable,
			Owner:      cls,
			Span:       p.Span,
			Decl:       ast.ParamRef(pid),
			Visibility: visibilityOf(p.Mods),
			Flags:      flags,
			Type:       r.sym(params[i]).Type,
		})
		r.table.Declare(cs.Members, prop)
		attrs.Set(r.store, bindings.PropertyDescriptor, ast.ParamRef(pid), prop)
	}
	r.bodies = append(r.bodies, &body{kind: bodyPrimary, sym: id, decl: declID, class: cls, scope: cs.Init})
}

// declareSecondary creates a secondary constructor. Its parameters live in a
// function scope below the class's type parameters, so delegation arguments
// cannot see instance members.
func (r *resolver) declareSecondary(cls symbols.SymbolID, declID ast.DeclID) {
	c := r.sym(cls)
	d := r.tree.Decl(declID)
	ctor := r.tree.Constructor(declID)
	id := r.newSymbol(symbols.Symbol{
		Name:        r.initName,
		Kind:        symbols.SymbolConstructor,
		Owner:       cls,
		Span:        d.Span,
		Decl:        ast.DeclRef(declID),
		Visibility:  visibilityOf(d.Mods),
		Annotations: annotationsOf(d),
		Type:        c.DefaultType,
	})
	scope := r.table.NewScope(symbols.ScopeFunction, c.ClassScopes.TypeParams, id)
	r.edit(id).Params = r.declareParams(ctor.Params, id, scope)
	r.table.Declare(c.ClassScopes.Members, id)
	attrs.Set(r.store, bindings.ConstructorDescriptor, ast.DeclRef(declID), id)
	r.checkSignatureBounds(nil, ctor.Params, ast.NoTypeRefID)
	r.bodies = append(r.bodies, &body{kind: bodyConstructor, sym: id, decl: declID, class: cls, scope: scope})
}

func (r *resolver) declareParams(ids []ast.ParamID, owner symbols.SymbolID, scope symbols.ScopeID) []symbols.SymbolID {
	out := make([]symbols.SymbolID, 0, len(ids))
	for _, pid := range ids {
		p := r.tree.Param(pid)
		t := r.resolveTypeRef(p.Type, scope)
		if !t.IsValid() {
			t = r.types.Error()
		}
		var flags symbols.SymbolFlags
		if p.Default.IsValid() {
			flags |= symbols.FlagHasDefault
		}
		id := r.newSymbol(symbols.Symbol{
			Name:       p.Name,
			Kind:       symbols.SymbolParameter,
			Owner:      owner,
			Span:       p.Span,
			Decl:       ast.ParamRef(pid),
			Visibility: symbols.VisLocal,
			Flags:      flags,
			Type:       t,
		})
		r.table.Declare(scope, id)
		attrs.Set(r.store, bindings.ParamDescriptor, ast.ParamRef(pid), id)
		out = append(out, id)
	}
	return out
}

func (r *resolver) checkSignatureBounds(tps []ast.TypeParamID, params []ast.ParamID, result ast.TypeRefID) {
	for _, tpID := range tps {
		tp := r.tree.TypeParam(tpID)
		r.checkTypeRefBounds(tp.Bound)
		for _, ref := range tp.Ctor {
			r.checkTypeRefBounds(ref)
		}
	}
	for _, pid := range params {
		r.checkTypeRefBounds(r.tree.Param(pid).Type)
	}
	r.checkTypeRefBounds(result)
}

// deferType wraps an inference in a deferred type queued for the final
// drain. The computation always writes to the root store, so forcing it
// during a speculative resolution leaves its facts in place.
func (r *resolver) deferType(id symbols.SymbolID, compute func() types.TypeID) *types.Deferred {
	d := types.NewDeferred(r.table.FQName(id), r.types.Error(), func() types.TypeID {
		var t types.TypeID
		r.withStore(r.root, func() { t = compute() })
		return t
	}).OnRecursion(func() { r.recordRecursion(id) })
	r.queue.Add(d)
	return d
}

func (r *resolver) recordRecursion(id symbols.SymbolID) {
	node := r.declRef(id)
	attrs.Set(r.root, bindings.DeferredRecursion, id, node)
	r.withStore(r.root, func() {
		r.errorf(diag.SemaRecursiveTypeInference, node, "type of '%s' cannot be inferred: it depends on itself",
			r.table.Name(id)).
			WithArgs(r.table.FQName(id)).
			Emit()
	})
}

// typeOfSymbol returns the type of a value or the result type of a
// callable, forcing a pending inference.
func (r *resolver) typeOfSymbol(id symbols.SymbolID) types.TypeID {
	sym := r.sym(id)
	if sym == nil {
		return r.types.Error()
	}
	if sym.Pending != nil {
		return sym.Pending.Force()
	}
	if !sym.Type.IsValid() {
		return r.types.Error()
	}
	return sym.Type
}
