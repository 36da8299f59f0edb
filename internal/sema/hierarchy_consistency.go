package sema

import (
	"slices"

	"lumen/internal/diag"
	"lumen/internal/symbols"
	"lumen/internal/types"
)

// checkConsistency verifies that every ancestor type parameter receives a
// single argument along all inheritance paths of a class. order lists
// supertypes before subtypes; a class whose direct supertype is already
// inconsistent is not reported again.
func (r *resolver) checkConsistency(order []symbols.SymbolID) {
	for _, cls := range order {
		sym := r.sym(cls)
		args := make(map[types.CtorRef][]types.TypeID)
		var params []types.CtorRef
		visited := make(map[types.TypeID]bool)

		var walk func(t types.TypeID)
		walk = func(t types.TypeID) {
			tt, ok := r.types.Lookup(t)
			if !ok || tt.Kind != types.KindClass || visited[t] {
				return
			}
			visited[t] = true
			super := r.sym(symbols.FromCtor(tt.Ctor))
			for i, tp := range super.TypeParams {
				if i >= len(tt.Args) || r.types.IsError(tt.Args[i]) {
					continue
				}
				seen, known := args[tp.Ctor()]
				if !known {
					params = append(params, tp.Ctor())
				}
				if !slices.Contains(seen, tt.Args[i]) {
					args[tp.Ctor()] = append(seen, tt.Args[i])
				}
			}
			subst := r.substFor(t)
			for _, s := range super.Supertypes {
				walk(r.types.Substitute(s, subst))
			}
		}
		for _, s := range sym.Supertypes {
			walk(s)
		}

		inherited := false
		for _, s := range sym.Supertypes {
			if r.inconsistent[symbols.FromCtor(r.types.Ctor(s))] {
				inherited = true
			}
		}
		for _, p := range params {
			if len(args[p]) < 2 {
				continue
			}
			r.inconsistent[cls] = true
			if inherited {
				continue
			}
			tp := symbols.FromCtor(p)
			names := []string{r.table.Name(tp)}
			for _, a := range args[p] {
				names = append(names, r.format(a))
			}
			r.errorf(diag.SemaInconsistentTypeParameters, r.declRef(cls),
				"type parameter %s of '%s' is inherited with inconsistent values %s",
				names[0], r.table.Name(r.sym(tp).Owner), joinQuoted(names[1:])).
				WithArgs(names...).
				Emit()
		}
	}
}

func joinQuoted(names []string) string {
	out := ""
	for i, n := range names {
		if i > 0 {
			out += ", "
		}
		out += "'" + n + "'"
	}
	return out
}
