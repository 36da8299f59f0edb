package types

// Substitute replaces type-parameter constructors according to subst. A
// nullable type parameter replaced by T becomes T?.
func (in *Interner) Substitute(id TypeID, subst Subst) TypeID {
	if len(subst) == 0 {
		return id
	}
	t, ok := in.Lookup(id)
	if !ok {
		return id
	}
	switch t.Kind {
	case KindTypeParam:
		repl, ok := subst[t.Ctor]
		if !ok {
			return id
		}
		if t.Nullable {
			return in.WithNullable(repl, true)
		}
		return repl
	case KindClass:
		if len(t.Args) == 0 {
			return id
		}
		args := make([]TypeID, len(t.Args))
		changed := false
		for i, a := range t.Args {
			args[i] = in.Substitute(a, subst)
			changed = changed || args[i] != a
		}
		if !changed {
			return id
		}
		return in.Intern(Type{Kind: KindClass, Ctor: t.Ctor, Nullable: t.Nullable, Args: args})
	case KindFunction:
		params := make([]TypeID, len(t.Params))
		for i, p := range t.Params {
			params[i] = in.Substitute(p, subst)
		}
		return in.Intern(Type{
			Kind:     KindFunction,
			Nullable: t.Nullable,
			Params:   params,
			Result:   in.Substitute(t.Result, subst),
		})
	case KindError, KindSelf:
		return id
	default:
		return id
	}
}

// Mentions reports whether ctor occurs anywhere inside id.
func (in *Interner) Mentions(id TypeID, ctor CtorRef) bool {
	t, ok := in.Lookup(id)
	if !ok {
		return false
	}
	switch t.Kind {
	case KindClass, KindTypeParam, KindSelf:
		if t.Ctor == ctor {
			return true
		}
		for _, a := range t.Args {
			if in.Mentions(a, ctor) {
				return true
			}
		}
	case KindFunction:
		for _, p := range t.Params {
			if in.Mentions(p, ctor) {
				return true
			}
		}
		return in.Mentions(t.Result, ctor)
	}
	return false
}

// Compose returns the substitution equivalent to applying inner and then
// outer: every value of inner is rewritten through outer.
func (in *Interner) Compose(inner, outer Subst) Subst {
	out := make(Subst, len(inner))
	for k, v := range inner {
		out[k] = in.Substitute(v, outer)
	}
	return out
}
