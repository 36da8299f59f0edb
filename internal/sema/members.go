package sema

import (
	"slices"

	"lumen/internal/source"
	"lumen/internal/symbols"
	"lumen/internal/types"
)

// Member is a declaration reachable through a receiver type, with the
// substitution that maps its owner's type parameters to the receiver's
// arguments.
type Member struct {
	Symbol symbols.SymbolID
	Subst  types.Subst
}

// memberScope is the set of members visible on one receiver type: the class's
// own members plus every inherited member that is not overridden.
type memberScope struct {
	names map[source.StringID][]Member
}

func (m *memberScope) lookup(name source.StringID) []Member {
	if m == nil {
		return nil
	}
	return m.names[name]
}

func (m *memberScope) add(name source.StringID, mem Member) {
	for _, have := range m.names[name] {
		if have.Symbol == mem.Symbol {
			return
		}
	}
	m.names[name] = append(m.names[name], mem)
}

// memberScopeOf builds, once per type, the member scope of t. Type
// parameters use their bound; nullability is ignored.
func (r *resolver) memberScopeOf(t types.TypeID) *memberScope {
	t = r.types.WithNullable(r.selfType(t), false)
	if ms, ok := r.memberScopes[t]; ok {
		return ms
	}
	ms := &memberScope{names: make(map[source.StringID][]Member)}
	r.memberScopes[t] = ms

	tt, ok := r.types.Lookup(t)
	if !ok {
		return ms
	}
	switch tt.Kind {
	case types.KindTypeParam:
		bound := r.memberScopeOf(r.typeParamBound(t))
		for name, mems := range bound.names {
			ms.names[name] = slices.Clone(mems)
		}
	case types.KindClass:
		r.fillMembers(ms, t)
	}
	return ms
}

func (r *resolver) fillMembers(ms *memberScope, t types.TypeID) {
	cls := r.sym(symbols.FromCtor(r.types.Ctor(t)))
	subst := r.substFor(t)
	for _, id := range r.table.Members(cls.ClassScopes.Members) {
		ms.add(r.sym(id).Name, Member{Symbol: id, Subst: subst})
	}
	for _, s := range cls.Supertypes {
		inherited := r.memberScopeOf(r.types.Substitute(s, subst))
		for name, mems := range inherited.names {
			for _, mem := range mems {
				if r.sym(mem.Symbol).Kind == symbols.SymbolConstructor || r.overridden(ms, cls.ClassScopes.Members, name, mem) {
					continue
				}
				ms.add(name, mem)
			}
		}
	}
}

// overridden reports whether an own member of the class shadows mem: a
// property shadows a property, a method one with the same erased parameters.
func (r *resolver) overridden(ms *memberScope, own symbols.ScopeID, name source.StringID, mem Member) bool {
	inherited := r.sym(mem.Symbol)
	for _, have := range ms.names[name] {
		sym := r.sym(have.Symbol)
		if sym.Owner != r.table.Scopes.Get(own).Owner {
			continue
		}
		if sym.Kind != inherited.Kind {
			continue
		}
		if sym.Kind != symbols.SymbolMethod || r.sameErasure(have, mem) {
			return true
		}
	}
	return false
}

func (r *resolver) sameErasure(a, b Member) bool {
	pa, pb := r.sym(a.Symbol).Params, r.sym(b.Symbol).Params
	if len(pa) != len(pb) {
		return false
	}
	for i := range pa {
		ta := r.types.Substitute(r.sym(pa[i]).Type, a.Subst)
		tb := r.types.Substitute(r.sym(pb[i]).Type, b.Subst)
		if r.erase(ta) != r.erase(tb) {
			return false
		}
	}
	return true
}

// memberType is the type of a member seen through its receiver.
func (r *resolver) memberType(mem Member) types.TypeID {
	return r.types.Substitute(r.typeOfSymbol(mem.Symbol), mem.Subst)
}
