package sema

import (
	"slices"
	"testing"

	"lumen/internal/ast"
	"lumen/internal/attrs"
	"lumen/internal/bindings"
	"lumen/internal/diag"
	"lumen/internal/symbols"
)

func TestSupertypeCyclesAreBroken(t *testing.T) {
	res := analyze(t, `
package: p
decls:
  - class: A
    mods: [open]
    supers: ["B()"]
  - class: B
    mods: [open]
    supers: ["C()"]
  - class: C
    mods: [open]
    supers: ["A()"]
  - class: D
    mods: [open]
    supers: ["E()"]
  - class: E
    mods: [open]
    supers: ["D()"]
`)
	expectCount(t, res, diag.SemaCyclicInheritance, 2)

	for _, name := range []string{"A", "B", "C", "D", "E"} {
		cls := symbolOf(t, res, name)
		if cyclic, _ := attrs.Get(res.Store, bindings.CyclicInheritance, cls); !cyclic {
			t.Fatalf("%s is not marked as cyclic", name)
		}
		seen := map[symbols.SymbolID]bool{}
		for cur := cls; cur != res.Builtins.Any; {
			if seen[cur] {
				t.Fatalf("supertype chain of %s still loops", name)
			}
			seen[cur] = true
			supers := res.Table.Symbols.Get(cur).Supertypes
			if len(supers) != 1 {
				t.Fatalf("%s has %d supertypes", res.Table.Name(cur), len(supers))
			}
			cur = symbols.FromCtor(res.Types.Ctor(supers[0]))
		}
	}
}

func TestInconsistentTypeArguments(t *testing.T) {
	res := analyze(t, `
package: p
decls:
  - trait: Box
    type_params: [T]
  - trait: IntBox
    supers: ["Box<Int>"]
  - trait: StrBox
    supers: ["Box<String>"]
  - class: Both
    supers: [IntBox, StrBox]
  - class: Twice
    supers: [IntBox, "Box<Int>"]
`)
	expectCount(t, res, diag.SemaInconsistentTypeParameters, 1)
	for _, d := range res.Diagnostics {
		if d.Code != diag.SemaInconsistentTypeParameters {
			continue
		}
		if !slices.Equal(d.Args, []string{"T", "Int", "String"}) {
			t.Fatalf("args = %v", d.Args)
		}
		both := res.Tree.Decl(findDecl(t, res.Tree, "Both"))
		if d.Primary != both.Span {
			t.Fatalf("diagnostic is not attached to Both")
		}
	}
}

func TestSupertypeListRules(t *testing.T) {
	cases := []struct {
		name   string
		supers string
		code   diag.Code
	}{
		{"final class", `["Closed()"]`, diag.SemaFinalSupertype},
		{"two classes", `["Base()", "Other()"]`, diag.SemaManyClassSupertypes},
		{"repeated trait", `[T, T]`, diag.SemaSupertypeAppearsTwice},
		{"nullable", `["T?"]`, diag.SemaNullableSupertype},
		{"type parameter", `[X]`, diag.SemaSupertypeNotAClass},
		{"unknown", `[Nowhere]`, diag.SemaUnresolvedReference},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := analyze(t, `
package: p
decls:
  - class: Closed
  - class: Base
    mods: [open]
  - class: Other
    mods: [open]
  - trait: T
  - class: Sub
    type_params: [X]
    supers: `+tc.supers+`
`)
			expectCount(t, res, tc.code, 1)
		})
	}
}

func TestUpperBoundsInTypeReferences(t *testing.T) {
	res := analyze(t, `
package: p
decls:
  - class: Holder
    type_params: ["T : Comparable<T>"]
  - val: ok
    type: Holder<Int>
  - val: bad
    type: Holder<Boolean>
  - val: arity
    type: Holder<Int, Int>
`)
	expectCount(t, res, diag.SemaUpperBoundViolated, 1)
	expectCount(t, res, diag.SemaWrongTypeArgumentCount, 1)
}

func TestConstructorShapeConstraint(t *testing.T) {
	res := analyze(t, `
package: p
decls:
  - class: Factory
    type_params: ["T new(Int)"]
  - class: WithInt
    primary: ["x: Int"]
  - class: NoArgs
  - val: good
    type: Factory<WithInt>
  - val: bad
    type: Factory<NoArgs>
`)
	expectCount(t, res, diag.SemaConstructorShapeViolated, 1)
}

func TestSupertypeDelegation(t *testing.T) {
	res := analyze(t, `
package: p
decls:
  - class: Base
    mods: [open]
    primary: ["x: Int"]
  - trait: T
  - class: NeedsInit
    supers: [Base]
  - class: Good
    supers: ["Base(1)", T]
  - class: TraitCall
    supers: ["T()"]
  - class: WrongArgs
    supers: ['Base("s")']
  - class: Secondary
    supers: [Base]
    decls:
      - constructor:
        params: ["y: Int"]
        delegates: ["Base(y)"]
      - constructor:
        params: ["s: String"]
  - class: Extra
    supers: ["Base(1)"]
    decls:
      - constructor:
        params: ["y: Int"]
        delegates: ["Base(2)"]
  - class: Stranger
    decls:
      - constructor:
        delegates: ["Base(1)"]
`)
	expectCount(t, res, diag.SemaSupertypeNotInitialized, 1)
	expectCount(t, res, diag.SemaTraitHasNoConstructor, 1)
	expectCount(t, res, diag.SemaNoApplicableCandidate, 1)
	expectCount(t, res, diag.SemaMissingConstructorCall, 1)
	expectCount(t, res, diag.SemaExtraConstructorCall, 1)
	expectCount(t, res, diag.SemaNotASupertype, 1)

	good := res.Tree.Class(findDecl(t, res.Tree, "Good"))
	ctor, ok := attrs.Get(res.Store, bindings.DelegatedCall, good.Supertypes[0].Type)
	if !ok {
		t.Fatalf("no delegated call recorded for Good")
	}
	sym := res.Table.Symbols.Get(ctor)
	if sym.Kind != symbols.SymbolConstructor || sym.Owner != symbolOf(t, res, "Base") {
		t.Fatalf("delegated call targets %s %s", sym.Kind, res.Table.FQName(ctor))
	}
	if _, ok := attrs.Get(res.Store, bindings.DelegatedCall, good.Supertypes[1].Type); ok {
		t.Fatalf("a trait entry must not record a delegated call")
	}
}

func TestTypeParameterScopes(t *testing.T) {
	res := analyze(t, `
package: p
decls:
  - class: Pair
    type_params: [A, B]
    primary: ["val first: A", "val second: B"]
    decls:
      - fun: swap
        returns: Pair<B, A>
        body: "Pair<B, A>(second, first)"
`)
	expectClean(t, res)
	pair := res.Tree.Class(findDecl(t, res.Tree, "Pair"))
	for _, tp := range pair.TypeParams {
		if _, ok := attrs.Get(res.Store, bindings.Declaration, ast.TypeParamRef(tp)); !ok {
			t.Fatalf("type parameter has no descriptor")
		}
	}
}

func TestEnumEntrySupertypes(t *testing.T) {
	res := analyze(t, `
package: p
decls:
  - enum: Color
    primary: ["val rgb: Int"]
    decls:
      - entry: RED
        supers: ["Color(1)"]
      - entry: BLUE
`)
	expectCount(t, res, diag.SemaFinalSupertype, 0)
	expectCount(t, res, diag.SemaSupertypeNotInitialized, 1)

	color := symbolOf(t, res, "Color")
	for _, name := range []string{"RED", "BLUE"} {
		supers := res.Table.Symbols.Get(symbolOf(t, res, name)).Supertypes
		if len(supers) != 1 || symbols.FromCtor(res.Types.Ctor(supers[0])) != color {
			t.Fatalf("%s supertypes = %v, want [Color]", name, supers)
		}
	}

	blue := symbolOf(t, res, "BLUE")
	for _, d := range res.Diagnostics {
		if d.Code != diag.SemaSupertypeNotInitialized {
			continue
		}
		if got, ok := attrs.Get(res.Store, bindings.Declaration, d.Node); !ok || got != blue {
			t.Fatalf("missing constructor call reported on %v, want BLUE", d.Node)
		}
	}
}
