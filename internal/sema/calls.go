package sema

import (
	"slices"

	"lumen/internal/ast"
	"lumen/internal/attrs"
	"lumen/internal/bindings"
	"lumen/internal/symbols"
	"lumen/internal/types"
)

// callSite describes one invocation being resolved.
type callSite struct {
	node     ast.NodeRef
	receiver types.TypeID
	args     []types.TypeID
	typeArgs []types.TypeID
	// record writes the facts of the chosen candidate; it runs inside that
	// candidate's temporary store.
	record func(call bindings.Call)
}

type callStatus uint8

const (
	callResolved callStatus = iota
	callNoCandidate
	callAmbiguous
)

type trial struct {
	mem  Member
	call bindings.Call
	tmp  *attrs.Temporary
}

// resolveCall tries every candidate in its own temporary store and commits
// the single most specific applicable one. On ambiguity the applicable
// candidates are returned.
func (r *resolver) resolveCall(site callSite, cands []Member) (bindings.Call, []symbols.SymbolID, callStatus) {
	var ok []trial
	for _, cand := range cands {
		tmp := attrs.NewTemporary(r.store, "call-candidate")
		var call bindings.Call
		applicable := false
		r.withStore(tmp, func() {
			call, applicable = r.applicable(site, cand)
			if applicable && site.record != nil {
				site.record(call)
			}
		})
		if !applicable {
			tmp.Discard()
			continue
		}
		ok = append(ok, trial{mem: cand, call: call, tmp: tmp})
	}

	switch len(ok) {
	case 0:
		return bindings.Call{}, nil, callNoCandidate
	case 1:
		ok[0].tmp.Commit()
		return ok[0].call, nil, callResolved
	}
	best := r.mostSpecific(ok, len(site.args))
	for i, t := range ok {
		if i != best {
			t.tmp.Discard()
		}
	}
	if best < 0 {
		ids := make([]symbols.SymbolID, len(ok))
		for i, t := range ok {
			ids[i] = t.mem.Symbol
		}
		return bindings.Call{}, ids, callAmbiguous
	}
	ok[best].tmp.Commit()
	return ok[best].call, nil, callResolved
}

// applicable checks arity, infers type arguments and checks every argument
// against its parameter.
func (r *resolver) applicable(site callSite, cand Member) (bindings.Call, bool) {
	sym := r.sym(cand.Symbol)
	var (
		params     []types.TypeID
		result     types.TypeID
		required   int
		typeParams []symbols.SymbolID
	)
	switch sym.Kind {
	case symbols.SymbolMethod, symbols.SymbolConstructor:
		for i, p := range sym.Params {
			params = append(params, r.types.Substitute(r.sym(p).Type, cand.Subst))
			if !r.sym(p).Has(symbols.FlagHasDefault) {
				required = i + 1
			}
		}
		result = r.types.Substitute(r.typeOfSymbol(cand.Symbol), cand.Subst)
		typeParams = sym.TypeParams
		if sym.Kind == symbols.SymbolConstructor && cand.Subst == nil {
			typeParams = r.sym(sym.Owner).TypeParams
		}
	case symbols.SymbolVariable, symbols.SymbolParameter:
		ft, found := r.types.Lookup(r.memberType(cand))
		if !found || ft.Kind != types.KindFunction {
			return bindings.Call{}, false
		}
		params, result, required = slices.Clone(ft.Params), ft.Result, len(ft.Params)
	default:
		return bindings.Call{}, false
	}
	if len(site.args) > len(params) || len(site.args) < required {
		return bindings.Call{}, false
	}

	inferred := make(types.Subst, len(typeParams))
	if len(site.typeArgs) > 0 {
		if len(site.typeArgs) != len(typeParams) {
			return bindings.Call{}, false
		}
		for i, tp := range typeParams {
			inferred[tp.Ctor()] = site.typeArgs[i]
		}
	} else if len(typeParams) > 0 {
		open := make(map[types.CtorRef]bool, len(typeParams))
		for _, tp := range typeParams {
			open[tp.Ctor()] = true
		}
		for i, a := range site.args {
			if !r.infer(params[i], a, open, inferred) {
				return bindings.Call{}, false
			}
		}
		for _, tp := range typeParams {
			if _, bound := inferred[tp.Ctor()]; !bound {
				inferred[tp.Ctor()] = r.types.Substitute(r.sym(tp).Bound, inferred)
			}
		}
	}

	for i := range params {
		params[i] = r.types.Substitute(params[i], inferred)
	}
	for i, a := range site.args {
		if !r.isSubtype(a, params[i]) {
			return bindings.Call{}, false
		}
	}
	for _, tp := range typeParams {
		if !r.isSubtype(inferred[tp.Ctor()], r.types.Substitute(r.sym(tp).Bound, inferred)) {
			return bindings.Call{}, false
		}
	}
	return bindings.Call{
		Callee:   cand.Symbol,
		Receiver: site.receiver,
		Params:   params,
		Result:   r.types.Substitute(result, inferred),
	}, true
}

// infer binds the open type parameters occurring in param to the matching
// parts of arg. A conflicting binding makes the candidate inapplicable.
func (r *resolver) infer(param, arg types.TypeID, open map[types.CtorRef]bool, out types.Subst) bool {
	pt, ok := r.types.Lookup(param)
	if !ok || r.types.IsError(arg) {
		return true
	}
	at, ok := r.types.Lookup(arg)
	if !ok {
		return true
	}
	switch pt.Kind {
	case types.KindTypeParam:
		if !open[pt.Ctor] {
			return true
		}
		if pt.Nullable {
			arg = r.types.WithNullable(arg, false)
		}
		if have, bound := out[pt.Ctor]; bound {
			switch {
			case r.isSubtype(arg, have):
			case r.isSubtype(have, arg):
				out[pt.Ctor] = arg
			default:
				return false
			}
			return true
		}
		out[pt.Ctor] = arg
	case types.KindClass:
		if at.Kind != types.KindClass {
			return true
		}
		sup := r.asSupertype(arg, symbols.FromCtor(pt.Ctor))
		if !sup.IsValid() {
			return true
		}
		st := r.types.MustLookup(sup)
		for i := range pt.Args {
			if i < len(st.Args) && !r.infer(pt.Args[i], st.Args[i], open, out) {
				return false
			}
		}
	case types.KindFunction:
		if at.Kind != types.KindFunction || len(at.Params) != len(pt.Params) {
			return true
		}
		for i := range pt.Params {
			if !r.infer(pt.Params[i], at.Params[i], open, out) {
				return false
			}
		}
		return r.infer(pt.Result, at.Result, open, out)
	}
	return true
}

// mostSpecific returns the index of the trial whose parameters are all
// subtypes of every other trial's parameters, or -1.
func (r *resolver) mostSpecific(trials []trial, n int) int {
	for i := range trials {
		best := true
		for j := range trials {
			if i != j && !r.moreSpecific(trials[i].call, trials[j].call, n) {
				best = false
				break
			}
		}
		if best {
			for j := range trials {
				if i != j && r.moreSpecific(trials[j].call, trials[i].call, n) {
					best = false
					break
				}
			}
		}
		if best {
			return i
		}
	}
	return -1
}

func (r *resolver) moreSpecific(a, b bindings.Call, n int) bool {
	for i := 0; i < n && i < len(a.Params) && i < len(b.Params); i++ {
		if !r.isSubtype(a.Params[i], b.Params[i]) {
			return false
		}
	}
	return true
}

// constructorsOf lists the constructors of cls as call candidates.
func (r *resolver) constructorsOf(cls symbols.SymbolID, subst types.Subst) []Member {
	var out []Member
	for _, id := range r.table.Declared(r.sym(cls).ClassScopes.Members, r.initName) {
		if r.sym(id).Kind == symbols.SymbolConstructor {
			out = append(out, Member{Symbol: id, Subst: subst})
		}
	}
	return out
}
