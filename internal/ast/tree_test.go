package ast

import (
	"testing"

	"lumen/internal/source"
)

func TestBuilderAssemblesClass(t *testing.T) {
	b := NewBuilder(Hints{}, nil)
	file := b.NewFile("a.yaml", source.Span{File: 1, Line: 1}, nil)

	super := b.NamedType(source.Span{}, "std.Any")
	prop := b.NewProperty(Header{Name: b.Intern("x")}, PropertyDecl{Type: b.NamedType(source.Span{}, "Int")})
	cls := b.NewClass(Header{Name: b.Intern("A"), Mods: ModOpen}, ClassDecl{
		Supertypes: []SuperEntry{{Type: super}},
		Members:    []DeclID{prop},
	})
	b.PushDecl(file, cls)

	tree := b.Tree
	if got := tree.File(file).Decls; len(got) != 1 || got[0] != cls {
		t.Fatalf("unexpected file decls %v", got)
	}
	c := tree.Class(cls)
	if c == nil || len(c.Members) != 1 {
		t.Fatalf("class payload not found")
	}
	if tree.Function(cls) != nil {
		t.Fatalf("payload accessor must check the declaration kind")
	}
	ref := tree.TypeRef(c.Supertypes[0].Type)
	if len(ref.Path) != 2 || tree.Name(ref.Path[0]) != "std" || tree.Name(ref.Path[1]) != "Any" {
		t.Fatalf("unexpected supertype path %v", ref.Path)
	}
	if !tree.Decl(cls).Mods.Has(ModOpen) {
		t.Fatalf("modifiers lost")
	}
}

func TestNodeRefSpan(t *testing.T) {
	b := NewBuilder(Hints{}, nil)
	sp := source.Span{File: 2, Line: 4, Col: 3}
	e := b.NewExpr(Expr{Kind: ExprName, Span: sp, Name: b.Intern("x")})
	if got := b.Tree.Span(ExprRef(e)); got != sp {
		t.Fatalf("Span = %v, want %v", got, sp)
	}
	if got := b.Tree.Span(NodeRef{}); got != (source.Span{}) {
		t.Fatalf("expected zero span for empty ref")
	}
}
