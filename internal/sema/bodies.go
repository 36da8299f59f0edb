package sema

import (
	"lumen/internal/ast"
	"lumen/internal/attrs"
	"lumen/internal/bindings"
	"lumen/internal/diag"
	"lumen/internal/symbols"
	"lumen/internal/types"
)

// resolveBodies types initializers, bodies and default values, checks
// supertype-constructor delegation and finally forces every deferred type
// still pending.
func (r *resolver) resolveBodies() int {
	for _, b := range r.bodies {
		switch b.kind {
		case bodyProperty:
			r.resolveInitializer(b)
		case bodyFunction:
			r.resolveFunctionBody(b)
		case bodyPrimary:
			r.resolveDefaults(b)
		case bodyConstructor:
			r.resolveSecondary(b)
		}
	}
	for _, cls := range r.classes {
		r.checkHeaderDelegation(cls)
	}
	return r.queue.Drain()
}

func (r *resolver) resolveInitializer(b *body) {
	sym := r.sym(b.sym)
	if sym.Pending != nil {
		sym.Pending.Force()
		return
	}
	prop := r.tree.Property(b.decl)
	env := r.env(b.scope, symbols.NoSymbolID, b.class)
	got := env.TypeOf(prop.Init, sym.Type)
	if !r.isSubtype(got, sym.Type) {
		r.reportMismatch(ast.ExprRef(prop.Init), sym.Type, got)
	}
}

func (r *resolver) resolveFunctionBody(b *body) {
	r.resolveDefaults(b)
	sym := r.sym(b.sym)
	fn := r.tree.Function(b.decl)
	if sym.Pending != nil {
		sym.Pending.Force()
		return
	}
	env := r.env(b.scope, b.sym, b.class)
	if r.tree.Expr(fn.Body).Kind == ast.ExprBlock {
		env.TypeOf(fn.Body, types.NoTypeID)
		return
	}
	got := env.TypeOf(fn.Body, sym.Type)
	if !r.isSubtype(got, sym.Type) {
		r.errorf(diag.SemaReturnTypeMismatch, ast.ExprRef(fn.Body), "body of type '%s' does not match the return type '%s'",
			r.format(got), r.format(sym.Type)).
			WithArgs(r.format(sym.Type), r.format(got)).
			Emit()
	}
}

// resolveDefaults types default parameter values against the parameter
// types, in the scope the parameters live in.
func (r *resolver) resolveDefaults(b *body) {
	env := r.env(b.scope, b.sym, b.class)
	for _, p := range r.sym(b.sym).Params {
		param := r.sym(p)
		if !param.Has(symbols.FlagHasDefault) {
			continue
		}
		def := r.tree.Param(ast.ParamID(param.Decl.ID)).Default
		got := env.TypeOf(def, param.Type)
		if !r.isSubtype(got, param.Type) {
			r.reportMismatch(ast.ExprRef(def), param.Type, got)
		}
	}
}

func (r *resolver) resolveSecondary(b *body) {
	r.resolveDefaults(b)
	ctor := r.tree.Constructor(b.decl)
	r.checkSecondaryDelegation(b, ctor)
	if !ctor.Body.IsValid() {
		return
	}
	members := r.sym(b.class).ClassScopes.Members
	scope := r.table.NewScope(symbols.ScopeBlock, members, b.sym)
	r.table.AddImportedScope(scope, b.scope)
	r.env(scope, b.sym, b.class).TypeOf(ctor.Body, types.NoTypeID)
}

// classSupertype returns the non-trait supertype of cls, if any.
func (r *resolver) classSupertype(cls symbols.SymbolID) (types.TypeID, int) {
	for i, s := range r.sym(cls).Supertypes {
		if !r.sym(symbols.FromCtor(r.types.Ctor(s))).IsTrait() {
			return s, i
		}
	}
	return types.NoTypeID, -1
}

func (r *resolver) hasPrimary(cls symbols.SymbolID) bool {
	for _, id := range r.constructorsOf(cls, nil) {
		if r.sym(id.Symbol).Has(symbols.FlagPrimary) {
			return true
		}
	}
	return false
}

// acceptsNoArgs reports whether t's class can be constructed without
// arguments.
func (r *resolver) acceptsNoArgs(t types.TypeID) bool {
	cls := symbols.FromCtor(r.types.Ctor(t))
	for _, mem := range r.constructorsOf(cls, r.substFor(t)) {
		required := false
		for _, p := range r.sym(mem.Symbol).Params {
			if !r.sym(p).Has(symbols.FlagHasDefault) {
				required = true
				break
			}
		}
		if !required {
			return true
		}
	}
	return false
}

// checkHeaderDelegation verifies the constructor calls written in a class
// header against its supertype list.
func (r *resolver) checkHeaderDelegation(cls symbols.SymbolID) {
	info := r.classInfo[cls]
	decl := r.tree.Class(info.decl)
	sym := r.sym(cls)
	primary := r.hasPrimary(cls)
	env := r.env(sym.ClassScopes.Init, symbols.NoSymbolID, cls)

	for _, entry := range decl.Supertypes {
		t, ok := attrs.Get(r.store, bindings.TypeRefType, entry.Type)
		if !ok || r.types.IsError(t) || r.types.Kind(t) != types.KindClass || !r.listsSupertype(cls, entry.Type) {
			continue
		}
		target := r.sym(symbols.FromCtor(r.types.Ctor(t)))
		node := ast.TypeRefRef(entry.Type)
		switch {
		case entry.Call && target.IsTrait():
			r.errorf(diag.SemaTraitHasNoConstructor, node, "trait '%s' has no constructor", r.name(target.Name)).
				WithArgs(r.name(target.Name)).
				Emit()
		case entry.Call && !primary:
			r.errorf(diag.SemaExtraConstructorCall, node, "supertype '%s' cannot be initialized here: '%s' has no primary constructor",
				r.name(target.Name), r.name(sym.Name)).
				WithArgs(r.name(target.Name)).
				Emit()
		case entry.Call:
			r.delegate(env, entry, t)
		case !target.IsTrait() && primary && len(r.constructorsOf(symbols.FromCtor(r.types.Ctor(t)), nil)) > 0:
			r.errorf(diag.SemaSupertypeNotInitialized, node, "supertype '%s' must be initialized", r.name(target.Name)).
				WithArgs(r.name(target.Name)).
				Emit()
		}
	}

	// synthetic supertypes are initialized implicitly with no arguments
	for i, ref := range info.superRefs {
		if ref.IsValid() || !primary {
			continue
		}
		super := sym.Supertypes[i]
		if r.sym(symbols.FromCtor(r.types.Ctor(super))).IsTrait() || r.acceptsNoArgs(super) {
			continue
		}
		r.errorf(diag.SemaSupertypeNotInitialized, r.declRef(cls), "supertype '%s' must be initialized", r.format(super)).
			WithArgs(r.format(super)).
			Emit()
	}
}

// listsSupertype reports whether ref survived into the supertype list.
func (r *resolver) listsSupertype(cls symbols.SymbolID, ref ast.TypeRefID) bool {
	for _, have := range r.classInfo[cls].superRefs {
		if have == ref {
			return true
		}
	}
	return false
}

// checkSecondaryDelegation verifies the supertype-constructor calls of a
// secondary constructor: each names a distinct direct supertype with a
// constructor, and the class supertype is called unless it needs no
// arguments.
func (r *resolver) checkSecondaryDelegation(b *body, ctor *ast.ConstructorDecl) {
	cls := r.sym(b.class)
	env := r.env(b.scope, b.sym, b.class)
	called := make(map[types.CtorRef]bool)

	for _, entry := range ctor.Delegations {
		node := ast.TypeRefRef(entry.Type)
		t := r.resolveTypeRef(entry.Type, b.scope)
		if r.types.IsError(t) || r.types.Kind(t) != types.KindClass {
			continue
		}
		target := r.sym(symbols.FromCtor(r.types.Ctor(t)))
		switch {
		case target.IsTrait():
			r.errorf(diag.SemaTraitHasNoConstructor, node, "trait '%s' has no constructor", r.name(target.Name)).
				WithArgs(r.name(target.Name)).
				Emit()
			continue
		case !r.isDirectSupertype(b.class, r.types.Ctor(t)):
			r.errorf(diag.SemaNotASupertype, node, "'%s' is not a supertype of '%s'", r.name(target.Name), r.name(cls.Name)).
				WithArgs(r.name(target.Name), r.name(cls.Name)).
				Emit()
			continue
		case called[r.types.Ctor(t)]:
			r.errorf(diag.SemaSupertypeInitializedTwice, node, "supertype '%s' is initialized twice", r.name(target.Name)).
				WithArgs(r.name(target.Name)).
				Emit()
			continue
		}
		called[r.types.Ctor(t)] = true
		r.delegate(env, entry, r.declaredSupertype(b.class, r.types.Ctor(t), t))
	}

	if r.hasPrimary(b.class) {
		return
	}
	super, _ := r.classSupertype(b.class)
	if !super.IsValid() || called[r.types.Ctor(super)] || r.acceptsNoArgs(super) {
		return
	}
	r.errorf(diag.SemaMissingConstructorCall, r.declRef(b.sym), "supertype '%s' is not initialized by this constructor", r.format(super)).
		WithArgs(r.format(super)).
		Emit()
}

func (r *resolver) isDirectSupertype(cls symbols.SymbolID, ctor types.CtorRef) bool {
	for _, s := range r.sym(cls).Supertypes {
		if r.types.Ctor(s) == ctor {
			return true
		}
	}
	return false
}

// declaredSupertype prefers the supertype instance from the class header,
// which carries the type arguments, over the written delegation type.
func (r *resolver) declaredSupertype(cls symbols.SymbolID, ctor types.CtorRef, written types.TypeID) types.TypeID {
	for _, s := range r.sym(cls).Supertypes {
		if r.types.Ctor(s) == ctor {
			return s
		}
	}
	return written
}

// delegate resolves a supertype-constructor call and records the chosen
// constructor in bindings.DelegatedCall.
func (r *resolver) delegate(env *Env, entry ast.SuperEntry, super types.TypeID) {
	node := ast.TypeRefRef(entry.Type)
	args := make([]types.TypeID, len(entry.Args))
	for i, a := range entry.Args {
		args[i] = env.TypeOf(a, types.NoTypeID)
	}
	cls := symbols.FromCtor(r.types.Ctor(super))
	subst := r.substFor(super)
	if subst == nil {
		subst = types.Subst{}
	}
	cands := r.constructorsOf(cls, subst)
	site := callSite{
		node:     node,
		receiver: super,
		args:     args,
		record: func(call bindings.Call) {
			attrs.Set(r.store, bindings.DelegatedCall, entry.Type, call.Callee)
		},
	}
	call, ambiguous, status := r.resolveCall(site, cands)
	switch status {
	case callNoCandidate:
		r.errorf(diag.SemaNoApplicableCandidate, node, "no constructor of '%s' accepts (%s)", r.format(super), r.formatList(args)).
			WithArgs(r.symbolNames(memberSymbols(cands))...).
			Emit()
	case callAmbiguous:
		attrs.Set(r.store, bindings.AmbiguousTarget, node, ambiguous)
		r.errorf(diag.SemaAmbiguousReference, node, "constructor call of '%s' is ambiguous", r.format(super)).
			WithArgs(r.symbolNames(ambiguous)...).
			Emit()
	default:
		r.checkVisible(call.Callee, env.Scope, node)
	}
}
