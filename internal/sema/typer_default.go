package sema

import (
	"lumen/internal/ast"
	"lumen/internal/attrs"
	"lumen/internal/bindings"
	"lumen/internal/diag"
	"lumen/internal/source"
	"lumen/internal/symbols"
	"lumen/internal/types"
)

// defaultTyper types the expression forms of the declaration tree. It
// resolves names, member access, calls and operators; it performs no flow
// analysis.
type defaultTyper struct{}

var operatorMethods = map[ast.BinaryOp]string{
	ast.OpAdd:     "plus",
	ast.OpSub:     "minus",
	ast.OpMul:     "times",
	ast.OpDiv:     "div",
	ast.OpLess:    "compareTo",
	ast.OpGreater: "compareTo",
	ast.OpEq:      "equals",
	ast.OpNotEq:   "equals",
}

func (t defaultTyper) Type(env *Env, id ast.ExprID, expected types.TypeID) types.TypeID {
	e := env.r.tree.Expr(id)
	switch e.Kind {
	case ast.ExprLiteral:
		return t.literal(env, e)
	case ast.ExprName:
		return t.name(env, id, e)
	case ast.ExprBackingField:
		return t.backingField(env, id, e)
	case ast.ExprThis:
		return t.this(env, id)
	case ast.ExprMember:
		return t.member(env, id, e)
	case ast.ExprCall:
		return t.call(env, id, e)
	case ast.ExprBinary:
		return t.binary(env, id, e)
	case ast.ExprBlock:
		return t.block(env, e, expected)
	case ast.ExprLocal:
		return t.local(env, id, e)
	case ast.ExprReturn:
		return t.ret(env, id, e)
	default:
		return env.r.types.Error()
	}
}

func (defaultTyper) literal(env *Env, e *ast.Expr) types.TypeID {
	b := env.r.builtins
	switch e.Lit {
	case ast.LitInt:
		return b.IntType
	case ast.LitDouble:
		return b.DoubleType
	case ast.LitString:
		return b.StringType
	case ast.LitChar:
		return b.CharType
	case ast.LitBool:
		return b.BooleanType
	default:
		return b.NullType
	}
}

func (t defaultTyper) name(env *Env, id ast.ExprID, e *ast.Expr) types.TypeID {
	r := env.r
	node := ast.ExprRef(id)
	if vals := env.Lookup(e.Name, valueMask); len(vals) > 0 {
		return t.target(env, id, vals, r.name(e.Name))
	}
	// a lone function name denotes its function type
	if fns := env.Lookup(e.Name, symbols.SymbolMethod.Mask()); len(fns) == 1 && len(r.sym(fns[0].Symbol).TypeParams) == 0 {
		return t.functionValue(env, id, fns[0])
	}
	if tps := r.table.Lookup(env.Scope, e.Name, symbols.SymbolTypeParameter.Mask()); len(tps) > 0 {
		attrs.Set(r.store, bindings.ReferenceTarget, id, tps[0])
		r.errorf(diag.SemaTypeParameterAsValue, node, "type parameter '%s' cannot be used as a value", r.name(e.Name)).
			WithArgs(r.name(e.Name)).
			Emit()
		return r.types.Error()
	}
	return t.unresolved(env, id, r.name(e.Name))
}

func (defaultTyper) unresolved(env *Env, id ast.ExprID, name string) types.TypeID {
	r := env.r
	attrs.Set(r.store, bindings.ReferenceTarget, id, r.table.ErrorSymbol)
	r.errorf(diag.SemaUnresolvedReference, ast.ExprRef(id), "unresolved reference '%s'", name).
		WithArgs(name).
		Emit()
	return r.types.Error()
}

// target records the single value a name denotes, or the ambiguity.
func (t defaultTyper) target(env *Env, id ast.ExprID, vals []Member, name string) types.TypeID {
	r := env.r
	node := ast.ExprRef(id)
	if len(vals) > 1 {
		ids := memberSymbols(vals)
		attrs.Set(r.store, bindings.AmbiguousTarget, node, ids)
		r.errorf(diag.SemaAmbiguousReference, node, "reference '%s' is ambiguous", name).
			WithArgs(r.symbolNames(ids)...).
			Emit()
		return r.types.Error()
	}
	attrs.Set(r.store, bindings.ReferenceTarget, id, vals[0].Symbol)
	r.checkVisible(vals[0].Symbol, env.Scope, node)
	return r.memberType(vals[0])
}

func (defaultTyper) functionValue(env *Env, id ast.ExprID, fn Member) types.TypeID {
	r := env.r
	sym := r.sym(fn.Symbol)
	params := make([]types.TypeID, len(sym.Params))
	for i, p := range sym.Params {
		params[i] = r.types.Substitute(r.sym(p).Type, fn.Subst)
	}
	attrs.Set(r.store, bindings.ReferenceTarget, id, fn.Symbol)
	r.checkVisible(fn.Symbol, env.Scope, ast.ExprRef(id))
	return r.types.Function(params, r.memberType(fn))
}

// backingField resolves $name to the storage of a property declared by the
// enclosing class or package.
func (t defaultTyper) backingField(env *Env, id ast.ExprID, e *ast.Expr) types.TypeID {
	r := env.r
	node := ast.ExprRef(id)
	for _, mem := range env.Lookup(e.Name, symbols.SymbolVariable.Mask()) {
		sym := r.sym(mem.Symbol)
		if !sym.Has(symbols.FlagProperty) || sym.Has(symbols.FlagBuiltin) {
			continue
		}
		for _, owner := range r.contextOwners(env.Scope) {
			if owner == sym.Owner {
				attrs.Set(r.store, bindings.ReferenceTarget, id, mem.Symbol)
				attrs.Set(r.store, bindings.BackingFieldReference, id, mem.Symbol)
				return r.memberType(mem)
			}
		}
	}
	r.errorf(diag.SemaBackingFieldUnavailable, node, "no backing field '$%s' available here", r.name(e.Name)).
		WithArgs(r.name(e.Name)).
		Emit()
	return r.types.Error()
}

func (defaultTyper) this(env *Env, id ast.ExprID) types.TypeID {
	r := env.r
	if !env.Class.IsValid() {
		r.errorf(diag.SemaThisOutsideClass, ast.ExprRef(id), "'this' is not defined in this context").Emit()
		return r.types.Error()
	}
	attrs.Set(r.store, bindings.ReferenceTarget, id, env.Class)
	return r.sym(env.Class).DefaultType
}

// qualifier resolves expr as a package or class reference. A name that
// denotes a value is never a qualifier.
func (t defaultTyper) qualifier(env *Env, id ast.ExprID) []symbols.SymbolID {
	r := env.r
	e := r.tree.Expr(id)
	switch e.Kind {
	case ast.ExprName:
		if len(env.Lookup(e.Name, valueMask)) > 0 {
			return nil
		}
		return r.preferClass(r.table.Lookup(env.Scope, e.Name, qualifierMask))
	case ast.ExprMember:
		quals := t.qualifier(env, e.Receiver)
		if len(quals) == 0 {
			return nil
		}
		return r.preferClass(r.filterKind(r.lookupIn(quals, e.Name, qualifierMask), qualifierMask))
	}
	return nil
}

// receiverMembers gathers the members named name reachable through the
// receiver expression: static members when it is a qualifier, instance
// members of its type otherwise. ok is false when the receiver failed to
// type; that failure is already reported.
func (t defaultTyper) receiverMembers(env *Env, recv ast.ExprID, name source.StringID, mask symbols.KindMask) (mems []Member, recvType types.TypeID, ok bool) {
	r := env.r
	quals := t.qualifier(env, recv)
	if len(quals) > 0 {
		for _, id := range r.lookupIn(quals, name, mask) {
			mems = append(mems, Member{Symbol: id})
		}
		if len(mems) > 0 {
			return mems, types.NoTypeID, true
		}
		typed := env.Speculate("receiver", func() bool {
			recvType = env.TypeOf(recv, types.NoTypeID)
			return !r.types.IsError(recvType)
		})
		if !typed {
			return nil, types.NoTypeID, true
		}
	} else {
		recvType = env.TypeOf(recv, types.NoTypeID)
		if r.types.IsError(recvType) {
			return nil, recvType, false
		}
	}
	for _, mem := range env.Members(recvType, name) {
		if mask&r.sym(mem.Symbol).Kind.Mask() != 0 {
			mems = append(mems, mem)
		}
	}
	return mems, recvType, true
}

func (t defaultTyper) member(env *Env, id ast.ExprID, e *ast.Expr) types.TypeID {
	r := env.r
	vals, _, ok := t.receiverMembers(env, e.Receiver, e.Name, valueMask)
	if !ok {
		return r.types.Error()
	}
	if len(vals) == 0 {
		return t.unresolved(env, id, r.name(e.Name))
	}
	return t.target(env, id, vals, r.name(e.Name))
}

// callables converts lookup results into call candidates: classes
// contribute their constructors, values only when they have a function type.
func (t defaultTyper) callables(env *Env, found []Member) (cands []Member, sawValue bool) {
	r := env.r
	for _, mem := range found {
		sym := r.sym(mem.Symbol)
		switch sym.Kind {
		case symbols.SymbolClass:
			cands = append(cands, r.constructorsOf(mem.Symbol, nil)...)
		case symbols.SymbolMethod, symbols.SymbolConstructor:
			cands = append(cands, mem)
		case symbols.SymbolVariable, symbols.SymbolParameter:
			if r.types.Kind(r.memberType(mem)) == types.KindFunction {
				cands = append(cands, mem)
			} else {
				sawValue = true
			}
		}
	}
	return cands, sawValue
}

var callMask = callableMask | valueMask | symbols.SymbolClass.Mask()

// lexicalCallables returns the candidates of the innermost scope that has a
// callable named name. Scopes holding only plain values are skipped.
func (t defaultTyper) lexicalCallables(env *Env, name source.StringID) (cands []Member, sawValue bool) {
	r := env.r
	for scope := env.Scope; scope.IsValid(); scope = r.table.Scopes.Get(scope).Parent {
		found := r.lookupLevel(scope, name, callMask)
		if len(found) == 0 {
			continue
		}
		c, v := t.callables(env, found)
		sawValue = sawValue || v
		if len(c) > 0 {
			return c, sawValue
		}
	}
	return nil, sawValue
}

func (t defaultTyper) call(env *Env, id ast.ExprID, e *ast.Expr) types.TypeID {
	r := env.r
	node := ast.ExprRef(id)
	callee := r.tree.Expr(e.Callee)

	args := make([]types.TypeID, len(e.Args))
	for i, a := range e.Args {
		args[i] = env.TypeOf(a, types.NoTypeID)
	}
	typeArgs := make([]types.TypeID, len(e.TypeArgs))
	for i, ref := range e.TypeArgs {
		typeArgs[i] = env.ResolveType(ref)
	}

	var (
		cands    []Member
		sawValue bool
		recv     types.TypeID
		name     string
	)
	switch callee.Kind {
	case ast.ExprName:
		name = r.name(callee.Name)
		cands, sawValue = t.lexicalCallables(env, callee.Name)
	case ast.ExprMember:
		name = r.name(callee.Name)
		found, rt, ok := t.receiverMembers(env, callee.Receiver, callee.Name, callMask)
		if !ok {
			return r.types.Error()
		}
		recv = rt
		cands, sawValue = t.callables(env, found)
	default:
		ft := env.TypeOf(e.Callee, types.NoTypeID)
		if r.types.IsError(ft) {
			return ft
		}
		if r.types.Kind(ft) != types.KindFunction {
			r.errorf(diag.SemaNotACallable, node, "expression of type '%s' cannot be invoked", r.format(ft)).Emit()
			return r.types.Error()
		}
		f := r.types.MustLookup(ft)
		if len(f.Params) != len(args) {
			r.errorf(diag.SemaNoApplicableCandidate, node, "expected %d arguments, got %d", len(f.Params), len(args)).Emit()
			return r.types.Error()
		}
		for i, a := range args {
			if !r.isSubtype(a, f.Params[i]) {
				r.errorf(diag.SemaTypeMismatch, ast.ExprRef(e.Args[i]), "expected '%s', got '%s'", r.format(f.Params[i]), r.format(a)).
					WithArgs(r.format(f.Params[i]), r.format(a)).
					Emit()
			}
		}
		return f.Result
	}

	if len(cands) == 0 {
		if sawValue {
			r.errorf(diag.SemaNotACallable, node, "'%s' cannot be invoked", name).WithArgs(name).Emit()
			return r.types.Error()
		}
		return t.unresolved(env, e.Callee, name)
	}

	site := callSite{
		node:     node,
		receiver: recv,
		args:     args,
		typeArgs: typeArgs,
		record: func(call bindings.Call) {
			attrs.Set(r.store, bindings.ResolvedCall, id, call)
			attrs.Set(r.store, bindings.ReferenceTarget, e.Callee, call.Callee)
		},
	}
	call, ambiguous, status := r.resolveCall(site, cands)
	switch status {
	case callAmbiguous:
		attrs.Set(r.store, bindings.AmbiguousTarget, node, ambiguous)
		r.errorf(diag.SemaAmbiguousReference, node, "call to '%s' is ambiguous", name).
			WithArgs(r.symbolNames(ambiguous)...).
			Emit()
		return r.types.Error()
	case callNoCandidate:
		ids := memberSymbols(cands)
		r.errorf(diag.SemaNoApplicableCandidate, node, "none of the %d candidates for '%s' accepts (%s)",
			len(cands), name, r.formatList(args)).
			WithArgs(r.symbolNames(ids)...).
			Emit()
		return r.types.Error()
	}
	r.checkVisible(call.Callee, env.Scope, node)
	return call.Result
}

func (t defaultTyper) binary(env *Env, id ast.ExprID, e *ast.Expr) types.TypeID {
	r := env.r
	node := ast.ExprRef(id)
	left := env.TypeOf(e.Left, types.NoTypeID)
	right := env.TypeOf(e.Right, types.NoTypeID)
	if r.types.IsError(left) || r.types.IsError(right) {
		return r.types.Error()
	}
	isEquality := e.Op == ast.OpEq || e.Op == ast.OpNotEq

	var cands []Member
	for _, mem := range env.Members(left, r.table.Strings.Intern(operatorMethods[e.Op])) {
		if r.sym(mem.Symbol).Kind == symbols.SymbolMethod {
			cands = append(cands, mem)
		}
	}
	site := callSite{
		node:     node,
		receiver: left,
		args:     []types.TypeID{right},
		record: func(call bindings.Call) {
			attrs.Set(r.store, bindings.ResolvedCall, id, call)
		},
	}
	call, _, status := r.resolveCall(site, cands)
	if isEquality {
		return r.builtins.BooleanType
	}
	if status != callResolved {
		r.errorf(diag.SemaNoneApplicableOperator, node, "operator '%s' cannot be applied to '%s' and '%s'",
			e.Op, r.format(left), r.format(right)).
			WithArgs(e.Op.String(), r.format(left), r.format(right)).
			Emit()
		return r.types.Error()
	}
	if e.Op == ast.OpLess || e.Op == ast.OpGreater {
		return r.builtins.BooleanType
	}
	return call.Result
}

func (t defaultTyper) block(env *Env, e *ast.Expr, expected types.TypeID) types.TypeID {
	r := env.r
	inner := env.Nested(r.table.NewScope(symbols.ScopeBlock, env.Scope, env.Function))
	result := r.builtins.UnitType
	for i, item := range e.Items {
		want := types.NoTypeID
		if i == len(e.Items)-1 {
			want = expected
		}
		result = inner.TypeOf(item, want)
	}
	if n := len(e.Items); n > 0 && r.tree.Expr(e.Items[n-1]).Kind == ast.ExprLocal {
		result = r.builtins.UnitType
	}
	return result
}

// local declares a block-local variable once its initializer is typed, so
// the initializer cannot see it.
func (t defaultTyper) local(env *Env, id ast.ExprID, e *ast.Expr) types.TypeID {
	r := env.r
	declared := types.NoTypeID
	if e.Type.IsValid() {
		declared = env.ResolveType(e.Type)
	}
	vt := declared
	if e.Init.IsValid() {
		it := env.TypeOf(e.Init, declared)
		if !declared.IsValid() {
			vt = it
		} else if !r.isSubtype(it, declared) {
			r.reportMismatch(ast.ExprRef(e.Init), declared, it)
		}
	}
	if !vt.IsValid() {
		vt = r.types.Error()
		r.errorf(diag.SemaMissingReturnType, ast.ExprRef(id), "variable '%s' must have a type or an initializer", r.name(e.Name)).
			WithArgs(r.name(e.Name)).
			Emit()
	}
	if s := r.table.Scopes.Get(env.Scope); s == nil || s.Lock == symbols.LockReadOnly {
		env = env.Nested(r.table.NewScope(symbols.ScopeBlock, env.Scope, env.Function))
	}
	var flags symbols.SymbolFlags
	if e.Mutable {
		flags |= symbols.FlagMutable
	}
	sym := env.Declare(symbols.Symbol{
		Name:       e.Name,
		Kind:       symbols.SymbolVariable,
		Owner:      env.Function,
		Span:       e.Span,
		Decl:       ast.ExprRef(id),
		Visibility: symbols.VisLocal,
		Flags:      flags,
		Type:       vt,
	})
	attrs.Set(r.store, bindings.LocalDescriptor, ast.ExprRef(id), sym)
	return r.builtins.UnitType
}

func (t defaultTyper) ret(env *Env, id ast.ExprID, e *ast.Expr) types.TypeID {
	r := env.r
	node := ast.ExprRef(id)
	fn := r.sym(env.Function)
	if fn == nil || !fn.IsCallable() {
		r.errorf(diag.SemaError, node, "'return' is not allowed here").Emit()
		env.TypeOf(e.Operand, types.NoTypeID)
		return r.builtins.NothingType
	}
	want := r.builtins.UnitType
	if fn.Kind == symbols.SymbolMethod {
		if fn.Pending != nil {
			env.TypeOf(e.Operand, types.NoTypeID)
			return r.builtins.NothingType
		}
		want = fn.Type
	}
	got := r.builtins.UnitType
	if e.Operand.IsValid() {
		got = env.TypeOf(e.Operand, want)
	}
	if !r.isSubtype(got, want) {
		r.errorf(diag.SemaReturnTypeMismatch, node, "returned '%s' where '%s' is expected", r.format(got), r.format(want)).
			WithArgs(r.format(want), r.format(got)).
			Emit()
	}
	return r.builtins.NothingType
}

func (r *resolver) reportMismatch(node ast.NodeRef, want, got types.TypeID) {
	r.errorf(diag.SemaTypeMismatch, node, "type mismatch: expected '%s', got '%s'", r.format(want), r.format(got)).
		WithArgs(r.format(want), r.format(got)).
		Emit()
}
