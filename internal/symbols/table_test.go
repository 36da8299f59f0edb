package symbols

import (
	"errors"
	"fmt"
	"testing"

	"lumen/internal/source"
)

func intern(t *Table, names ...string) []source.StringID {
	return t.Strings.InternPath(names)
}

func expectPanic(t *testing.T, target error, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected panic wrapping %v", target)
		}
		err, ok := r.(error)
		if !ok || !errors.Is(err, target) {
			t.Fatalf("expected %v, got %v", target, r)
		}
	}()
	fn()
}

func TestNamespaceEnsureIsIdempotent(t *testing.T) {
	table := NewTable(Hints{}, nil)
	ns := NewNamespaceFactory(table)

	first := ns.Ensure(intern(table, "a", "b", "c"), source.Span{})
	second := ns.Ensure(intern(table, "a", "b", "c"), source.Span{})
	if first != second {
		t.Fatalf("expected identical package, got %d and %d", first, second)
	}
	if ns.Created() != 3 {
		t.Fatalf("expected 3 packages, got %d", ns.Created())
	}
	if got := table.FQName(first); got != "a.b.c" {
		t.Fatalf("unexpected name %q", got)
	}
	if err := table.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestNamespaceEnsureOrderIndependent(t *testing.T) {
	orders := [][][]string{
		{{"a"}, {"a", "b"}, {"a", "b", "c"}},
		{{"a", "b", "c"}, {"a", "b"}, {"a"}},
		{{"a", "b"}, {"a", "b", "c"}, {"a"}},
	}
	for i, order := range orders {
		t.Run(fmt.Sprintf("order%d", i), func(t *testing.T) {
			table := NewTable(Hints{}, nil)
			ns := NewNamespaceFactory(table)
			for _, path := range order {
				ns.Ensure(intern(table, path...), source.Span{})
			}
			if ns.Created() != 3 {
				t.Fatalf("expected 3 packages, got %d", ns.Created())
			}
			a := ns.Lookup(intern(table, "a"))
			ab := ns.Lookup(intern(table, "a", "b"))
			if table.Symbols.Get(ab).Owner != a {
				t.Fatalf("a.b not owned by a")
			}
		})
	}
}

func TestNamespaceLookupMissing(t *testing.T) {
	table := NewTable(Hints{}, nil)
	ns := NewNamespaceFactory(table)
	ns.Ensure(intern(table, "a"), source.Span{})
	if ns.Lookup(intern(table, "a", "x")).IsValid() {
		t.Fatalf("lookup must not create packages")
	}
	if ns.Created() != 1 {
		t.Fatalf("expected 1 package, got %d", ns.Created())
	}
	if ns.Ensure(nil, source.Span{}) != table.Root {
		t.Fatalf("empty path must be the root package")
	}
}

func TestLockLevelsAreEnforced(t *testing.T) {
	table := NewTable(Hints{}, nil)
	scope := table.Scopes.New(ScopeBlock, table.RootScope, table.Root)
	name := table.Strings.Intern("x")
	sym := table.NewSymbol(Symbol{Name: name, Kind: SymbolVariable})

	table.Declare(scope, sym)
	expectPanic(t, ErrScopeNotReadable, func() { table.Lookup(scope, name, KindMaskAny) })

	table.SetLock(scope, LockBoth)
	if got := table.Lookup(scope, name, KindMaskAny); len(got) != 1 || got[0] != sym {
		t.Fatalf("unexpected lookup result %v", got)
	}

	table.SetLock(scope, LockReadOnly)
	other := table.NewSymbol(Symbol{Name: name, Kind: SymbolMethod})
	expectPanic(t, ErrScopeLocked, func() { table.Declare(scope, other) })
	expectPanic(t, ErrLockRegression, func() { table.SetLock(scope, LockBoth) })
}

func TestWriteThroughForwardsDeclarations(t *testing.T) {
	table := NewTable(Hints{}, nil)
	ns := NewNamespaceFactory(table)
	pkg := ns.Ensure(intern(table, "app"), source.Span{})
	pkgScope := table.Symbols.Get(pkg).MemberScope

	file := table.NewScope(ScopeFile, table.RootScope, pkg)
	table.SetWriteThrough(file, pkgScope)

	name := table.Strings.Intern("Main")
	cls := table.NewSymbol(Symbol{Name: name, Kind: SymbolClass, Owner: pkg})
	if got := table.Declare(file, cls); got != pkgScope {
		t.Fatalf("declaration landed in %d, want %d", got, pkgScope)
	}
	if len(table.Declared(file, name)) != 0 {
		t.Fatalf("file scope must stay empty")
	}
	if got := table.LookupLocal(file, name, KindMaskAny); len(got) != 1 || got[0] != cls {
		t.Fatalf("write-through target not consulted: %v", got)
	}
	if err := table.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestLookupOrder(t *testing.T) {
	table := NewTable(Hints{}, nil)
	name := table.Strings.Intern("v")

	outer := table.NewScope(ScopeFunction, table.RootScope, table.Root)
	star := table.NewScope(ScopePackage, NoScopeID, table.Root)
	inner := table.NewScope(ScopeBlock, outer, table.Root)
	table.AddImportedScope(inner, star)

	outerSym := table.NewSymbol(Symbol{Name: name, Kind: SymbolVariable})
	starSym := table.NewSymbol(Symbol{Name: name, Kind: SymbolVariable})
	table.Declare(outer, outerSym)
	table.Declare(star, starSym)

	if got := table.Lookup(inner, name, KindMaskAny); len(got) != 1 || got[0] != starSym {
		t.Fatalf("imported scope should shadow parent, got %v", got)
	}

	own := table.NewSymbol(Symbol{Name: name, Kind: SymbolVariable})
	table.Declare(inner, own)
	if got := table.Lookup(inner, name, KindMaskAny); len(got) != 1 || got[0] != own {
		t.Fatalf("own table should win, got %v", got)
	}
}

func TestLookupGathersEveryKind(t *testing.T) {
	table := NewTable(Hints{}, nil)
	scope := table.NewScope(ScopeClassMembers, table.RootScope, table.Root)
	name := table.Strings.Intern("Item")
	cls := table.NewSymbol(Symbol{Name: name, Kind: SymbolClass})
	fn := table.NewSymbol(Symbol{Name: name, Kind: SymbolMethod})
	table.Declare(scope, cls)
	table.Declare(scope, fn)

	if got := table.Lookup(scope, name, KindMaskAny); len(got) != 2 {
		t.Fatalf("expected both candidates, got %v", got)
	}
	got := table.Lookup(scope, name, MaskOf(SymbolClass, SymbolTypeParameter))
	if len(got) != 1 || got[0] != cls {
		t.Fatalf("mask not applied: %v", got)
	}
}

func TestSealFreezesDescriptors(t *testing.T) {
	table := NewTable(Hints{}, nil)
	sym := table.NewSymbol(Symbol{Name: table.Strings.Intern("x"), Kind: SymbolVariable})
	table.Seal()

	expectPanic(t, ErrFrozen, func() { table.Symbols.Edit(sym) })

	local := table.NewSymbol(Symbol{Name: table.Strings.Intern("y"), Kind: SymbolVariable})
	table.Symbols.Edit(local).Flags |= FlagMutable
	if !table.Symbols.Get(local).Has(FlagMutable) {
		t.Fatalf("symbols created after sealing must stay editable")
	}
}
