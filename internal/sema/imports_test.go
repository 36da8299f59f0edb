package sema

import (
	"testing"

	"lumen/internal/ast"
	"lumen/internal/attrs"
	"lumen/internal/bindings"
	"lumen/internal/diag"
	"lumen/internal/symbols"
)

func TestExplicitImports(t *testing.T) {
	res := analyze(t, `
files:
  - path: lib.lm
    package: lib
    decls:
      - class: Tool
  - path: app.lm
    package: app
    imports: [lib.Tool, lib.Missing, "std.*", lib.Tool]
    decls:
      - val: t
        type: Tool
`)
	expectCount(t, res, diag.SemaUnresolvedImport, 1)
	expectCount(t, res, diag.SemaUselessImport, 2)
	expectCount(t, res, diag.SemaUnresolvedReference, 0)

	app := res.Tree.File(res.Tree.FileIDs()[1])
	targets, ok := attrs.Get(res.Store, bindings.ImportTarget, app.Imports[0])
	if !ok || len(targets) != 1 || targets[0] != symbolOf(t, res, "Tool") {
		t.Fatalf("lib.Tool import resolved to %v", targets)
	}
}

func TestImportAliases(t *testing.T) {
	res := analyze(t, `
files:
  - path: lib.lm
    package: lib
    decls:
      - class: Tool
  - path: app.lm
    package: app
    imports: ["lib.Tool as Gadget", "lib.* as L"]
    decls:
      - val: g
        type: Gadget
      - val: t
        type: Tool
`)
	expectCount(t, res, diag.SemaImportAliasOnStar, 1)
	expectCount(t, res, diag.SemaUnresolvedReference, 0)
}

func TestImportFromClass(t *testing.T) {
	res := analyze(t, `
files:
  - path: lib.lm
    package: lib
    decls:
      - class: Outer
        decls:
          - class: Inner
  - path: app.lm
    package: app
    imports: [lib.Outer.Inner, "lib.Outer.*"]
    decls:
      - val: i
        type: Inner
`)
	expectCount(t, res, diag.SemaCannotImportFromClass, 1)
	expectCount(t, res, diag.SemaUnresolvedReference, 0)
}

func TestStarImportAmbiguity(t *testing.T) {
	res := analyze(t, `
files:
  - path: x.lm
    package: x
    decls:
      - class: Thing
  - path: y.lm
    package: y
    decls:
      - class: Thing
  - path: z.lm
    package: z
    imports: ["x.*", "y.*"]
    decls:
      - val: v
        type: Thing
`)
	expectCount(t, res, diag.SemaAmbiguousReference, 1)

	v := res.Tree.Property(findDeclIn(t, res.Tree, 2, "v"))
	cands, ok := attrs.Get(res.Store, bindings.AmbiguousTarget, ast.TypeRefRef(v.Type))
	if !ok || len(cands) != 2 {
		t.Fatalf("ambiguous candidates = %v", cands)
	}
}

func TestOwnPackageShadowsStarImport(t *testing.T) {
	res := analyze(t, `
files:
  - path: x.lm
    package: x
    decls:
      - class: Thing
  - path: z.lm
    package: z
    imports: ["x.*"]
    decls:
      - class: Thing
      - val: v
        type: Thing
`)
	expectClean(t, res)
	v := res.Tree.Property(findDeclIn(t, res.Tree, 1, "v"))
	target, _ := attrs.Get(res.Store, bindings.TypeRefTarget, v.Type)
	if got := res.Table.FQName(target); got != "z.Thing" {
		t.Fatalf("Thing resolved to %s, want z.Thing", got)
	}
}

func TestClassPreferredOverPackage(t *testing.T) {
	res := analyze(t, `
files:
  - path: a.lm
    package: a
    decls:
      - class: Util
  - path: util.lm
    package: a.Util
    decls:
      - class: Helper
  - path: c.lm
    package: c
    decls:
      - val: v
        type: a.Util
`)
	expectClean(t, res)
	v := res.Tree.Property(findDeclIn(t, res.Tree, 2, "v"))
	target, _ := attrs.Get(res.Store, bindings.TypeRefTarget, v.Type)
	if sym := res.Table.Symbols.Get(target); sym == nil || sym.Kind != symbols.SymbolClass {
		t.Fatalf("a.Util did not resolve to the class")
	}
}

func TestQualifiedTypeReference(t *testing.T) {
	res := analyze(t, `
files:
  - path: lib.lm
    package: lib.deep
    decls:
      - class: Tool
  - path: app.lm
    package: app
    decls:
      - val: t
        type: lib.deep.Tool
      - val: u
        type: lib.deep.Nope
`)
	expectCount(t, res, diag.SemaUnresolvedReference, 1)
}

// findDeclIn looks name up among the top-level declarations of the file at
// index i.
func findDeclIn(t *testing.T, tree *ast.Tree, i int, name string) ast.DeclID {
	t.Helper()
	for _, id := range tree.File(tree.FileIDs()[i]).Decls {
		if tree.Name(tree.Decl(id).Name) == name {
			return id
		}
	}
	t.Fatalf("file %d has no declaration %q", i, name)
	return ast.NoDeclID
}
