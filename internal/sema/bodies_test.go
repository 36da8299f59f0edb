package sema

import (
	"testing"

	"lumen/internal/ast"
	"lumen/internal/attrs"
	"lumen/internal/bindings"
	"lumen/internal/diag"
	"lumen/internal/symbols"
)

func TestBackingFields(t *testing.T) {
	res := analyze(t, `
package: p
decls:
  - class: Counter
    decls:
      - var: count
        type: Int
        init: "0"
      - var: unused
        type: Int
        init: "0"
      - fun: read
        returns: Int
        body: $count
      - fun: other
        returns: Int
        body: $missing
  - fun: outside
    params: ["c: Counter"]
    body: "{ $count }"
`)
	expectCount(t, res, diag.SemaBackingFieldUnavailable, 2)

	count := symbolOf(t, res, "count")
	if needs, _ := attrs.Get(res.Store, bindings.RequiresBackingField, count); !needs {
		t.Fatalf("count does not require a backing field")
	}
	if attrs.Has(res.Store, bindings.RequiresBackingField, symbolOf(t, res, "unused")) {
		t.Fatalf("unused must not require a backing field")
	}
	read := res.Tree.Function(findDecl(t, res.Tree, "read"))
	if target, _ := attrs.Get(res.Store, bindings.BackingFieldReference, read.Body); target != count {
		t.Fatalf("$count refers to %v, want %v", target, count)
	}
}

func TestOverloadResolutionCommitsOneCandidate(t *testing.T) {
	res := analyze(t, `
package: p
decls:
  - fun: pick
    params: ["x: Int"]
    returns: Int
    body: x
  - fun: pick
    params: ["x: String"]
    returns: String
    body: x
  - val: r
    init: pick(1)
`)
	expectClean(t, res)

	init := res.Tree.Property(findDecl(t, res.Tree, "r")).Init
	call, ok := attrs.Get(res.Store, bindings.ResolvedCall, init)
	if !ok {
		t.Fatalf("call was not resolved")
	}
	first := res.Tree.File(res.Tree.FileIDs()[0]).Decls[0]
	want, _ := attrs.Get(res.Store, bindings.FunctionDescriptor, ast.DeclRef(first))
	if call.Callee != want || call.Result != res.Builtins.IntType {
		t.Fatalf("resolved to %s returning %s", res.Table.FQName(call.Callee), res.Types.Format(call.Result, res.Table.Namer()))
	}
	callee := res.Tree.Expr(init).Callee
	if target, _ := attrs.Get(res.Store, bindings.ReferenceTarget, callee); target != want {
		t.Fatalf("callee reference not recorded")
	}
	// the discarded candidate must leave no trace
	if n := len(attrs.Keys(res.Store, bindings.ResolvedCall)); n != 1 {
		t.Fatalf("expected one resolved call, found %d", n)
	}
}

func TestCallResolutionFailures(t *testing.T) {
	res := analyze(t, `
package: p
decls:
  - fun: g
    params: ["a: Int", "b: Any"]
    body: "{ }"
  - fun: g
    params: ["a: Any", "b: Int"]
    body: "{ }"
  - fun: one
    params: ["a: Int"]
    body: "{ }"
  - val: number
    type: Int
    init: "1"
  - val: ambiguous
    init: g(1, 1)
  - val: wrongArgs
    init: one("x")
  - val: notCallable
    init: number(1)
`)
	expectCount(t, res, diag.SemaAmbiguousReference, 1)
	expectCount(t, res, diag.SemaNoApplicableCandidate, 1)
	expectCount(t, res, diag.SemaNotACallable, 1)

	init := res.Tree.Property(findDecl(t, res.Tree, "ambiguous")).Init
	cands, ok := attrs.Get(res.Store, bindings.AmbiguousTarget, ast.ExprRef(init))
	if !ok || len(cands) != 2 {
		t.Fatalf("ambiguous candidates = %v", cands)
	}
	if attrs.Has(res.Store, bindings.ResolvedCall, init) {
		t.Fatalf("an ambiguous call must not record a resolution")
	}
}

func TestMostSpecificCandidateWins(t *testing.T) {
	res := analyze(t, `
package: p
decls:
  - fun: show
    params: ["a: Any"]
    returns: String
    body: '"any"'
  - fun: show
    params: ["a: Int"]
    returns: Int
    body: a
  - val: s
    init: show(1)
`)
	expectClean(t, res)
	if got := typeOf(res, symbolOf(t, res, "s")); got != res.Builtins.IntType {
		t.Fatalf("s resolved to %s, want Int", res.Types.Format(got, res.Table.Namer()))
	}
}

func TestGenericCallInference(t *testing.T) {
	res := analyze(t, `
package: p
decls:
  - fun: id
    type_params: [T]
    params: ["x: T"]
    returns: T
    body: x
  - fun: least
    type_params: ["T : Comparable<T>"]
    params: ["a: T", "b: T"]
    returns: T
    body: a
  - val: s
    init: id("a")
  - val: n
    init: least(1, 2)
  - val: explicit
    init: id<Double>(1.5)
  - val: bad
    init: least(true, false)
`)
	expectCount(t, res, diag.SemaNoApplicableCandidate, 1)

	for name, want := range map[string]string{"s": "String", "n": "Int", "explicit": "Double"} {
		got := typeOf(res, symbolOf(t, res, name))
		if f := res.Types.Format(got, res.Table.Namer()); f != want {
			t.Fatalf("%s resolved to %s, want %s", name, f, want)
		}
	}
}

func TestMemberVisibility(t *testing.T) {
	res := analyze(t, `
package: p
decls:
  - class: Box
    decls:
      - val: secret
        mods: [private]
        type: Int
        init: "1"
      - val: shown
        type: Int
        init: secret
  - fun: peek
    params: ["b: Box"]
    returns: Int
    body: b.secret
  - fun: look
    params: ["b: Box"]
    returns: Int
    body: b.shown
`)
	expectCount(t, res, diag.SemaInvisibleMember, 1)
}

func TestBodyDiagnostics(t *testing.T) {
	cases := []struct {
		name string
		decl string
		code diag.Code
	}{
		{"this outside class", "- val: v\n    init: this", diag.SemaThisOutsideClass},
		{"type parameter as value", "- fun: f\n    type_params: [T]\n    body: \"{ T }\"", diag.SemaTypeParameterAsValue},
		{"return outside function", "- val: v\n    init: \"return 1\"", diag.SemaError},
		{"return type", "- fun: f\n    returns: Int\n    body: \"{ return true }\"", diag.SemaReturnTypeMismatch},
		{"body type", "- fun: f\n    returns: Int\n    body: '\"s\"'", diag.SemaReturnTypeMismatch},
		{"declared property type", "- val: v\n    type: Int\n    init: '\"s\"'", diag.SemaTypeMismatch},
		{"local type", "- fun: f\n    body: '{ val x: Int = \"s\" }'", diag.SemaTypeMismatch},
		{"operator", "- val: v\n    init: \"true + 1\"", diag.SemaNoneApplicableOperator},
		{"unresolved name", "- val: v\n    init: nothing", diag.SemaUnresolvedReference},
		{"local without type", "- fun: f\n    body: \"{ var x }\"", diag.SemaMissingReturnType},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := analyze(t, "package: p\ndecls:\n  "+tc.decl+"\n")
			expectCount(t, res, tc.code, 1)
		})
	}
}

func TestBlockLocals(t *testing.T) {
	res := analyze(t, `
package: p
decls:
  - fun: f
    params: ["n: Int"]
    returns: Int
    body: "{ val a = n * 2; var b: Int = a; b + 1 }"
  - fun: g
    returns: Boolean
    body: "{ val s = \"x\"; s == null }"
`)
	expectClean(t, res)

	block := res.Tree.Expr(res.Tree.Function(findDecl(t, res.Tree, "f")).Body)
	local, ok := attrs.Get(res.Store, bindings.LocalDescriptor, ast.ExprRef(block.Items[0]))
	if !ok {
		t.Fatalf("local a has no descriptor")
	}
	sym := res.Table.Symbols.Get(local)
	if sym.Kind != symbols.SymbolVariable || sym.Type != res.Builtins.IntType || sym.Has(symbols.FlagMutable) {
		t.Fatalf("bad local descriptor %+v", sym)
	}
}

func TestInheritedMembersInClassBodies(t *testing.T) {
	res := analyze(t, `
package: p
decls:
  - class: Base
    mods: [open]
    decls:
      - val: size
        type: Int
        init: "1"
  - class: Derived
    supers: ["Base()"]
    decls:
      - fun: doubled
        returns: Int
        body: "size * 2"
      - fun: viaThis
        returns: Int
        body: this.size
`)
	expectClean(t, res)
}
