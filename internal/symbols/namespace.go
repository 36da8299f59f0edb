package symbols

import "lumen/internal/source"

// NamespaceFactory materialises package descriptors along dotted paths.
type NamespaceFactory struct {
	table   *Table
	created int
}

func NewNamespaceFactory(t *Table) *NamespaceFactory {
	return &NamespaceFactory{table: t}
}

// Ensure returns the package for path, creating each missing segment once.
// An empty path is the root package.
func (f *NamespaceFactory) Ensure(path []source.StringID, span source.Span) SymbolID {
	current := f.table.Root
	for i, seg := range path {
		if next := f.child(current, seg); next.IsValid() {
			current = next
			continue
		}
		current = f.create(current, path[:i+1], span)
	}
	return current
}

// Lookup returns the package for path without creating anything.
func (f *NamespaceFactory) Lookup(path []source.StringID) SymbolID {
	current := f.table.Root
	for _, seg := range path {
		current = f.child(current, seg)
		if !current.IsValid() {
			return NoSymbolID
		}
	}
	return current
}

// Created reports how many package descriptors the factory allocated.
func (f *NamespaceFactory) Created() int { return f.created }

func (f *NamespaceFactory) child(pkg SymbolID, name source.StringID) SymbolID {
	owner := f.table.Symbols.Get(pkg)
	if owner == nil {
		return NoSymbolID
	}
	for _, id := range f.table.Declared(owner.MemberScope, name) {
		if sym := f.table.Symbols.Get(id); sym != nil && sym.Kind == SymbolPackage {
			return id
		}
	}
	return NoSymbolID
}

func (f *NamespaceFactory) create(owner SymbolID, path []source.StringID, span source.Span) SymbolID {
	t := f.table
	id := t.NewSymbol(Symbol{
		Name:  path[len(path)-1],
		Kind:  SymbolPackage,
		Owner: owner,
		Span:  span,
		Path:  append([]source.StringID(nil), path...),
	})
	scope := t.NewScope(ScopePackage, NoScopeID, id)
	t.Symbols.Edit(id).MemberScope = scope
	t.Declare(t.Symbols.Get(owner).MemberScope, id)
	f.created++
	return id
}
