package sema

import (
	"strings"

	"lumen/internal/ast"
	"lumen/internal/attrs"
	"lumen/internal/bindings"
	"lumen/internal/diag"
	"lumen/internal/symbols"
	"lumen/internal/types"
)

type visitState uint8

const (
	stateVisiting visitState = iota + 1
	stateDone
)

// superClasses returns the class descriptors cls currently names as
// supertypes, in list order.
func (r *resolver) superClasses(cls symbols.SymbolID) []symbols.SymbolID {
	sym := r.sym(cls)
	out := make([]symbols.SymbolID, 0, len(sym.Supertypes))
	for _, t := range sym.Supertypes {
		if c := r.types.Ctor(t); c != types.NoCtor {
			out = append(out, symbols.FromCtor(c))
		}
	}
	return out
}

// topoSort orders the collected classes so that each follows every class it
// currently claims as a supertype. A class reached twice is skipped.
func (r *resolver) topoSort() []symbols.SymbolID {
	states := make(map[symbols.SymbolID]visitState, len(r.classes))
	order := make([]symbols.SymbolID, 0, len(r.classes))
	var visit func(cls symbols.SymbolID)
	visit = func(cls symbols.SymbolID) {
		if states[cls] != 0 {
			return
		}
		states[cls] = stateVisiting
		for _, s := range r.superClasses(cls) {
			if _, user := r.classInfo[s]; user {
				visit(s)
			}
		}
		states[cls] = stateDone
		order = append(order, cls)
	}
	for _, cls := range r.classes {
		visit(cls)
	}
	return order
}

// breakCycles walks the classes in topological order keeping the current
// path. Reaching a class that is still on the path closes a cycle: it is
// reported once, naming every class on it, and the edge from the immediate
// predecessor into the cycle is removed.
func (r *resolver) breakCycles(order []symbols.SymbolID) int {
	states := make(map[symbols.SymbolID]visitState, len(order))
	var path []symbols.SymbolID
	found := 0

	var visit func(cls symbols.SymbolID)
	visit = func(cls symbols.SymbolID) {
		states[cls] = stateVisiting
		path = append(path, cls)
		for i := 0; i < len(r.sym(cls).Supertypes); i++ {
			next := symbols.FromCtor(r.types.Ctor(r.sym(cls).Supertypes[i]))
			if _, user := r.classInfo[next]; !user {
				continue
			}
			switch states[next] {
			case stateVisiting:
				r.reportCycle(cls, i, cyclePath(path, next))
				r.removeSupertype(cls, i)
				found++
				i--
			case 0:
				visit(next)
			}
		}
		path = path[:len(path)-1]
		states[cls] = stateDone
	}
	for _, cls := range order {
		if states[cls] == 0 {
			visit(cls)
		}
	}
	return found
}

func cyclePath(path []symbols.SymbolID, start symbols.SymbolID) []symbols.SymbolID {
	for i, cls := range path {
		if cls == start {
			return append([]symbols.SymbolID(nil), path[i:]...)
		}
	}
	return nil
}

func (r *resolver) reportCycle(from symbols.SymbolID, edge int, cycle []symbols.SymbolID) {
	names := make([]string, len(cycle))
	for i, cls := range cycle {
		names[i] = r.name(r.sym(cls).Name)
		attrs.Set(r.store, bindings.CyclicInheritance, cls, true)
	}
	node := r.declRef(from)
	if refs := r.classInfo[from].superRefs; edge < len(refs) && refs[edge].IsValid() {
		node = ast.TypeRefRef(refs[edge])
	}
	r.errorf(diag.SemaCyclicInheritance, node, "cyclic inheritance: %s", strings.Join(append(names, names[0]), " -> ")).
		WithArgs(names...).
		Emit()
	r.point("cycle", strings.Join(names, ","))
}

// removeSupertype drops edge i of cls. A class left without supertypes falls
// back to the synthetic root.
func (r *resolver) removeSupertype(cls symbols.SymbolID, i int) {
	info := r.classInfo[cls]
	sym := r.edit(cls)
	sym.Supertypes = append(sym.Supertypes[:i:i], sym.Supertypes[i+1:]...)
	info.superRefs = append(info.superRefs[:i:i], info.superRefs[i+1:]...)
	if len(sym.Supertypes) == 0 {
		sym.Supertypes = append(sym.Supertypes, r.builtins.AnyType)
		info.superRefs = append(info.superRefs, ast.NoTypeRefID)
	}
}
