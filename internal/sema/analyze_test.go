package sema

import (
	"context"
	"errors"
	"slices"
	"testing"

	"lumen/internal/ast"
	"lumen/internal/attrs"
	"lumen/internal/bindings"
	"lumen/internal/diag"
	"lumen/internal/symbols"
	"lumen/internal/testkit"
	"lumen/internal/trace"
	"lumen/internal/treefile"
	"lumen/internal/types"
)

func analyze(t *testing.T, src string) *Result {
	t.Helper()
	return analyzeWith(t, src, Options{})
}

func analyzeWith(t *testing.T, src string, opts Options) *Result {
	t.Helper()
	tree, _, err := treefile.ParseString(src)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	res, err := Analyze(context.Background(), tree, opts)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	return res
}

func expectCount(t *testing.T, res *Result, code diag.Code, want int) {
	t.Helper()
	if got := res.Count(code); got != want {
		t.Fatalf("%v: got %d diagnostics, want %d; all: %s", code, got, want, dumpDiagnostics(res))
	}
}

func expectClean(t *testing.T, res *Result) {
	t.Helper()
	if res.HasErrors() {
		t.Fatalf("unexpected errors: %s", dumpDiagnostics(res))
	}
}

func dumpDiagnostics(res *Result) string {
	out := ""
	for _, d := range res.Diagnostics {
		out += "\n  " + d.Code.ID() + " " + d.Message
	}
	return out
}

// findDecl returns the first declaration named name, searching nested
// classes and namespaces depth first.
func findDecl(t *testing.T, tree *ast.Tree, name string) ast.DeclID {
	t.Helper()
	var walk func(ids []ast.DeclID) ast.DeclID
	walk = func(ids []ast.DeclID) ast.DeclID {
		for _, id := range ids {
			if tree.Name(tree.Decl(id).Name) == name {
				return id
			}
			var nested []ast.DeclID
			if cls := tree.Class(id); cls != nil {
				nested = cls.Members
			} else if ns := tree.Namespace(id); ns != nil {
				nested = ns.Members
			}
			if found := walk(nested); found.IsValid() {
				return found
			}
		}
		return ast.NoDeclID
	}
	for _, f := range tree.FileIDs() {
		if id := walk(tree.File(f).Decls); id.IsValid() {
			return id
		}
	}
	t.Fatalf("no declaration named %q", name)
	return ast.NoDeclID
}

func symbolOf(t *testing.T, res *Result, name string) symbols.SymbolID {
	t.Helper()
	id := findDecl(t, res.Tree, name)
	sym, ok := attrs.Get(res.Store, bindings.Declaration, ast.DeclRef(id))
	if !ok {
		t.Fatalf("declaration %q has no descriptor", name)
	}
	return sym
}

func typeOf(res *Result, id symbols.SymbolID) types.TypeID {
	return res.TypeOf(id)
}

func TestAnalyzeCleanProgram(t *testing.T) {
	res := analyze(t, `
package: shapes
decls:
  - trait: Shape
    decls:
      - fun: area
        mods: [abstract]
        returns: Double
  - class: Square
    primary: ["val side: Double"]
    supers: [Shape]
    decls:
      - fun: area
        mods: [override]
        returns: Double
        body: "side * side"
  - fun: total
    params: ["a: Shape", "b: Shape"]
    returns: Double
    body: "a.area() + b.area()"
  - val: unit
    init: "Square(1.0)"
`)
	expectClean(t, res)
	if err := testkit.CheckResolution(res.Table, res.Types, res.Store); err != nil {
		t.Fatalf("CheckResolution: %v", err)
	}
	if n := len(attrs.Keys(res.Store, bindings.ResolvedCall)); n < 3 {
		t.Fatalf("expected the calls to be resolved, got %d", n)
	}
	unit := symbolOf(t, res, "unit")
	square := symbolOf(t, res, "Square")
	if got := res.Types.Ctor(typeOf(res, unit)); got != square.Ctor() {
		t.Fatalf("unit has type %s, want Square", res.Types.Format(typeOf(res, unit), res.Table.Namer()))
	}
}

func TestAnalyzeCancelled(t *testing.T) {
	tree, _, err := treefile.ParseString("decls:\n  - class: A\n")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Analyze(ctx, tree, Options{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestAnalyzeTracesPhases(t *testing.T) {
	ring := trace.NewRingTracer(64, trace.LevelPhase)
	analyzeWith(t, "decls:\n  - class: A\n", Options{Tracer: ring})

	var begun []string
	for _, ev := range ring.Snapshot() {
		if ev.Kind == trace.KindSpanBegin {
			begun = append(begun, ev.Name)
		}
	}
	for _, phase := range []string{"prelude", "collect", "supertypes", "declarations", "bodies"} {
		if !slices.Contains(begun, phase) {
			t.Fatalf("phase %q was not traced; got %v", phase, begun)
		}
	}
}

type constantTyper struct {
	calls int
}

func (c *constantTyper) Type(env *Env, _ ast.ExprID, _ types.TypeID) types.TypeID {
	c.calls++
	return env.Builtins().IntType
}

func TestAnalyzeCustomTyper(t *testing.T) {
	typer := &constantTyper{}
	res := analyzeWith(t, `
package: p
decls:
  - val: v
    init: '"text"'
`, Options{Typer: typer})
	expectClean(t, res)
	if typer.calls == 0 {
		t.Fatalf("custom typer was never called")
	}
	if got := typeOf(res, symbolOf(t, res, "v")); got != res.Builtins.IntType {
		t.Fatalf("v has type %s, want Int", res.Types.Format(got, res.Table.Namer()))
	}
}

func TestResultTypeOfReadsDrainedInference(t *testing.T) {
	res := analyze(t, `
package: p
decls:
  - val: v
    init: "1"
`)
	expectClean(t, res)
	id := symbolOf(t, res, "v")
	sym := res.Table.Symbols.Get(id)
	if sym.Pending == nil || !sym.Pending.Computed() {
		t.Fatalf("inferred type of v was not drained by analysis")
	}
	if got := res.TypeOf(id); got != res.Builtins.IntType {
		t.Fatalf("v has type %s, want Int", res.Types.Format(got, res.Table.Namer()))
	}
	if got := res.TypeOf(symbols.SymbolID(1 << 30)); got != types.NoTypeID {
		t.Fatalf("unknown descriptor has type %d", got)
	}
}

func TestAnalyzeWithoutDefaultImports(t *testing.T) {
	res := analyzeWith(t, `
package: p
decls:
  - val: v
    type: Int
`, Options{DefaultImports: []string{}})
	expectCount(t, res, diag.SemaUnresolvedReference, 1)
}
