package sema

import (
	"testing"

	"lumen/internal/attrs"
	"lumen/internal/bindings"
	"lumen/internal/diag"
)

func TestOverloadConflicts(t *testing.T) {
	cases := []struct {
		name   string
		second string
		want   int
	}{
		{"same erased types", `["b: Int"]`, 2},
		{"different types", `["b: String"]`, 0},
		{"different arity", `["a: Int", "b: Int"]`, 0},
		{"nullability is erased", `["b: Int?"]`, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := analyze(t, `
package: p
decls:
  - fun: f
    params: ["a: Int"]
    body: "{ }"
  - fun: f
    params: `+tc.second+`
    body: "{ }"
`)
			expectCount(t, res, diag.SemaConflictingOverloads, tc.want)
		})
	}
}

func TestStaticAndInstanceMembersShareAGroup(t *testing.T) {
	cases := []struct {
		name      string
		members   string
		overloads int
		redecls   int
	}{
		{"static and instance function", `
      - fun: f
        params: ["a: Int"]
        body: "{ }"
      - fun: f
        mods: [static]
        params: ["b: Int"]
        body: "{ }"`, 2, 0},
		{"static function with other parameters", `
      - fun: f
        params: ["a: Int"]
        body: "{ }"
      - fun: f
        mods: [static]
        params: ["b: String"]
        body: "{ }"`, 0, 0},
		{"static and instance property", `
      - val: v
        type: Int
      - val: v
        mods: [static]
        type: Int`, 0, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := analyze(t, `
package: p
decls:
  - class: K
    decls:`+tc.members+"\n")
			expectCount(t, res, diag.SemaConflictingOverloads, tc.overloads)
			expectCount(t, res, diag.SemaRedeclaration, tc.redecls)
		})
	}
}

func TestGenericOverloadErasure(t *testing.T) {
	res := analyze(t, `
package: p
decls:
  - fun: g
    type_params: [T]
    params: ["x: T"]
    body: "{ }"
  - fun: g
    params: ["x: Any?"]
    body: "{ }"
  - fun: h
    type_params: ["T : Int"]
    params: ["x: T"]
    body: "{ }"
  - fun: h
    params: ["x: String"]
    body: "{ }"
`)
	expectCount(t, res, diag.SemaConflictingOverloads, 2)
}

func TestOverloadsInRootPackage(t *testing.T) {
	res := analyze(t, `
decls:
  - fun: f
    params: ["a: Int"]
    body: "{ }"
  - fun: f
    params: ["b: Int"]
    body: "{ }"
`)
	expectCount(t, res, diag.SemaConflictingOverloads, 2)
}

func TestRedeclarations(t *testing.T) {
	res := analyze(t, `
files:
  - path: a.lm
    package: p
    decls:
      - class: Twin
      - val: x
        type: Int
  - path: b.lm
    package: p
    decls:
      - class: Twin
      - val: x
        type: String
      - fun: dup
        type_params: [T, T]
        params: ["a: Int", "a: Int"]
        body: "{ }"
`)
	// two classes, two properties, two type parameters, two parameters
	expectCount(t, res, diag.SemaRedeclaration, 8)
}

func TestMembersMayShareNamesAcrossClasses(t *testing.T) {
	res := analyze(t, `
package: p
decls:
  - class: A
    decls:
      - val: size
        type: Int
      - fun: size
        body: "{ }"
  - class: B
    decls:
      - val: size
        type: Int
`)
	expectClean(t, res)
}

func TestRecursiveInference(t *testing.T) {
	res := analyze(t, `
package: p
decls:
  - val: x
    init: x
  - val: a
    init: b
  - val: b
    init: "a + 1"
  - val: fine
    init: "1 + 2"
`)
	expectCount(t, res, diag.SemaRecursiveTypeInference, 2)

	x := symbolOf(t, res, "x")
	if _, ok := attrs.Get(res.Store, bindings.DeferredRecursion, x); !ok {
		t.Fatalf("x is not marked as recursive")
	}
	if got := typeOf(res, x); !res.Types.IsError(got) {
		t.Fatalf("x resolved to %s, want the error type", res.Types.Format(got, res.Table.Namer()))
	}
	if got := typeOf(res, symbolOf(t, res, "fine")); got != res.Builtins.IntType {
		t.Fatalf("fine resolved to %s, want Int", res.Types.Format(got, res.Table.Namer()))
	}
}

func TestInferredFunctionResult(t *testing.T) {
	res := analyze(t, `
package: p
decls:
  - fun: twice
    params: ["n: Int"]
    body: "n * 2"
  - val: four
    init: twice(2)
`)
	expectClean(t, res)
	if got := typeOf(res, symbolOf(t, res, "four")); got != res.Builtins.IntType {
		t.Fatalf("four resolved to %s, want Int", res.Types.Format(got, res.Table.Namer()))
	}
}

func TestAbstractMemberInFinalClass(t *testing.T) {
	res := analyze(t, `
package: p
decls:
  - class: Concrete
    decls:
      - fun: run
        mods: [abstract]
        returns: Unit
  - class: Shape
    mods: [abstract]
    decls:
      - fun: area
        mods: [abstract]
        returns: Double
`)
	expectCount(t, res, diag.SemaAbstractMemberInFinalClass, 1)
}

func TestPropertyNeedsTypeOrInitializer(t *testing.T) {
	res := analyze(t, `
package: p
decls:
  - var: loose
`)
	expectCount(t, res, diag.SemaMissingReturnType, 1)
}
