package sema

import (
	"lumen/internal/symbols"
	"lumen/internal/types"
)

// maxSubtypeDepth bounds the walk through type-parameter bounds, which are
// not checked for cycles.
const maxSubtypeDepth = 64

// isSubclass reports whether sub reaches super through its supertype lists.
// Cycles may still be present when it runs, so visited classes are skipped.
func (r *resolver) isSubclass(sub, super symbols.SymbolID) bool {
	if !sub.IsValid() || !super.IsValid() {
		return false
	}
	visited := make(map[symbols.SymbolID]bool)
	var walk func(cls symbols.SymbolID) bool
	walk = func(cls symbols.SymbolID) bool {
		if cls == super {
			return true
		}
		if visited[cls] {
			return false
		}
		visited[cls] = true
		sym := r.sym(cls)
		if sym == nil || sym.Kind != symbols.SymbolClass {
			return false
		}
		for _, s := range sym.Supertypes {
			if walk(symbols.FromCtor(r.types.Ctor(s))) {
				return true
			}
		}
		return false
	}
	return walk(sub)
}

// substFor maps the type parameters of t's class to t's arguments.
func (r *resolver) substFor(t types.TypeID) types.Subst {
	tt, ok := r.types.Lookup(t)
	if !ok || tt.Kind != types.KindClass || len(tt.Args) == 0 {
		return nil
	}
	params := r.sym(symbols.FromCtor(tt.Ctor)).TypeParams
	subst := make(types.Subst, len(params))
	for i, p := range params {
		if i < len(tt.Args) {
			subst[p.Ctor()] = tt.Args[i]
		}
	}
	return subst
}

// asSupertype returns the instance of target that class type t inherits,
// with t's arguments substituted through the path, or NoTypeID.
func (r *resolver) asSupertype(t types.TypeID, target symbols.SymbolID) types.TypeID {
	visited := make(map[symbols.SymbolID]bool)
	var walk func(t types.TypeID) types.TypeID
	walk = func(t types.TypeID) types.TypeID {
		tt, ok := r.types.Lookup(t)
		if !ok || tt.Kind != types.KindClass {
			return types.NoTypeID
		}
		cls := symbols.FromCtor(tt.Ctor)
		if cls == target {
			return r.types.WithNullable(t, false)
		}
		if visited[cls] {
			return types.NoTypeID
		}
		visited[cls] = true
		subst := r.substFor(t)
		for _, s := range r.sym(cls).Supertypes {
			if found := walk(r.types.Substitute(s, subst)); found.IsValid() {
				return found
			}
		}
		return types.NoTypeID
	}
	return walk(t)
}

// selfType replaces a Self type by the default type of its class.
func (r *resolver) selfType(t types.TypeID) types.TypeID {
	tt, ok := r.types.Lookup(t)
	if !ok || tt.Kind != types.KindSelf {
		return t
	}
	return r.types.WithNullable(r.sym(symbols.FromCtor(tt.Ctor)).DefaultType, tt.Nullable)
}

func (r *resolver) isSubtype(a, b types.TypeID) bool {
	return r.subtype(a, b, 0)
}

func (r *resolver) subtype(a, b types.TypeID, depth int) bool {
	if a == b || r.types.IsError(a) || r.types.IsError(b) {
		return true
	}
	if depth > maxSubtypeDepth {
		return false
	}
	a, b = r.selfType(a), r.selfType(b)
	at, bt := r.types.MustLookup(a), r.types.MustLookup(b)
	if b == r.builtins.NullableAny {
		return true
	}
	if at.Nullable && !bt.Nullable {
		return false
	}
	a = r.types.WithNullable(a, false)
	b = r.types.WithNullable(b, false)
	if a == b {
		return true
	}
	if at.Kind == types.KindClass && symbols.FromCtor(at.Ctor) == r.builtins.Nothing {
		return true
	}
	if at.Kind == types.KindTypeParam {
		if bt.Kind == types.KindTypeParam && bt.Ctor == at.Ctor {
			return true
		}
		return r.subtype(r.typeParamBound(a), b, depth+1)
	}

	switch bt.Kind {
	case types.KindFunction:
		if at.Kind != types.KindFunction || len(at.Params) != len(bt.Params) {
			return false
		}
		for i := range at.Params {
			if !r.subtype(bt.Params[i], at.Params[i], depth+1) {
				return false
			}
		}
		return r.subtype(at.Result, bt.Result, depth+1)
	case types.KindClass:
		if at.Kind != types.KindClass {
			return false
		}
		sup := r.asSupertype(a, symbols.FromCtor(bt.Ctor))
		if !sup.IsValid() {
			return false
		}
		st := r.types.MustLookup(sup)
		if len(st.Args) != len(bt.Args) {
			return false
		}
		for i := range st.Args {
			if !r.sameType(st.Args[i], bt.Args[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// sameType is type identity with the error type matching anything.
func (r *resolver) sameType(a, b types.TypeID) bool {
	return a == b || r.types.IsError(a) || r.types.IsError(b)
}

// erasure is the shape a parameter type has for overload conflicts:
// nullability and type arguments are ignored, type parameters erase to the
// constructor of their bound and function types to their arity.
type erasure struct {
	ctor     types.CtorRef
	function bool
	arity    int
}

func (r *resolver) erase(t types.TypeID) erasure {
	for depth := 0; depth <= maxSubtypeDepth; depth++ {
		t = r.selfType(t)
		tt, ok := r.types.Lookup(t)
		if !ok {
			return erasure{}
		}
		switch tt.Kind {
		case types.KindClass:
			return erasure{ctor: tt.Ctor}
		case types.KindFunction:
			return erasure{function: true, arity: len(tt.Params)}
		case types.KindTypeParam:
			t = r.typeParamBound(t)
		default:
			return erasure{}
		}
	}
	return erasure{}
}
