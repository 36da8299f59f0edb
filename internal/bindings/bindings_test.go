package bindings

import (
	"testing"

	"lumen/internal/ast"
	"lumen/internal/attrs"
	"lumen/internal/symbols"
	"lumen/internal/types"
)

func TestDeclarationConsultsPerKindSlices(t *testing.T) {
	store := attrs.NewTrace()
	decl := ast.DeclRef(7)
	attrs.Set(store, PropertyDescriptor, decl, symbols.SymbolID(3))

	got, ok := attrs.Get(store, Declaration, decl)
	if !ok || got != 3 {
		t.Fatalf("expected fallback hit, got %d %v", got, ok)
	}
	back, ok := attrs.Get(store, DescriptorDeclaration, symbols.SymbolID(3))
	if !ok || back != decl {
		t.Fatalf("opposite slice not populated: %v %v", back, ok)
	}
}

func TestBackingFieldObserver(t *testing.T) {
	store := attrs.NewTrace()
	Install(store)

	tmp := attrs.NewTemporary(store, "trial")
	attrs.Set(tmp, BackingFieldReference, ast.ExprID(1), symbols.SymbolID(9))
	if attrs.Has(store, RequiresBackingField, symbols.SymbolID(9)) {
		t.Fatalf("observer must not fire before commit")
	}
	tmp.Commit()
	if !attrs.Has(store, RequiresBackingField, symbols.SymbolID(9)) {
		t.Fatalf("expected backing field to be required after commit")
	}
	// a second reference to the same field is a no-op
	attrs.Set(store, BackingFieldReference, ast.ExprID(2), symbols.SymbolID(9))
}

func TestResolvedCallEquality(t *testing.T) {
	store := attrs.NewTrace()
	call := Call{Callee: 4, Params: []types.TypeID{2, 3}, Result: 2}
	attrs.Set(store, ResolvedCall, ast.ExprID(1), call)
	attrs.Set(store, ResolvedCall, ast.ExprID(1), Call{Callee: 4, Params: []types.TypeID{2, 3}, Result: 2})
	if keys := attrs.Keys(store, ResolvedCall); len(keys) != 1 {
		t.Fatalf("unexpected keys %v", keys)
	}
}
