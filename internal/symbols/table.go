package symbols

import (
	"fmt"
	"strings"

	"fortio.org/safecast"

	"lumen/internal/source"
	"lumen/internal/types"
)

// Hints provide optional capacity suggestions for the symbol table arenas.
type Hints struct{ Scopes, Symbols uint }

// Table aggregates the descriptor and scope arenas of one compilation unit.
type Table struct {
	Scopes  *Scopes
	Symbols *Symbols
	Strings *source.Interner

	// Root is the unnamed root package; RootScope holds the top-level
	// packages.
	Root      SymbolID
	RootScope ScopeID
	// ErrorSymbol is the descriptor every failed resolution yields.
	ErrorSymbol SymbolID
}

// NewTable builds a fresh table with optional capacity hints.
// If strings is nil, a fresh interner is allocated.
func NewTable(h Hints, strings *source.Interner) *Table {
	scopeCap, err := safecast.Conv[uint32](h.Scopes)
	if err != nil {
		panic(fmt.Errorf("scope capacity overflow: %w", err))
	}
	symCap, err := safecast.Conv[uint32](h.Symbols)
	if err != nil {
		panic(fmt.Errorf("symbol capacity overflow: %w", err))
	}
	if strings == nil {
		strings = source.NewInterner()
	}
	t := &Table{
		Scopes:  NewScopes(scopeCap),
		Symbols: NewSymbols(symCap),
		Strings: strings,
	}
	t.ErrorSymbol = t.Symbols.New(&Symbol{
		Name:  strings.Intern("<error>"),
		Kind:  SymbolError,
		Flags: FlagSynthetic,
	})
	t.Root = t.Symbols.New(&Symbol{Kind: SymbolPackage, Flags: FlagSynthetic})
	t.RootScope = t.NewScope(ScopeRoot, NoScopeID, t.Root)
	t.Symbols.Edit(t.Root).MemberScope = t.RootScope
	return t
}

// NewSymbol allocates a descriptor.
func (t *Table) NewSymbol(sym Symbol) SymbolID {
	return t.Symbols.New(&sym)
}

// IsError reports whether id is missing or the error descriptor.
func (t *Table) IsError(id SymbolID) bool {
	return !id.IsValid() || id == t.ErrorSymbol
}

// Name returns the identifier of a symbol.
func (t *Table) Name(id SymbolID) string {
	sym := t.Symbols.Get(id)
	if sym == nil {
		return "<none>"
	}
	return t.Strings.MustLookup(sym.Name)
}

// FQName returns the dotted path of a symbol from the root package.
func (t *Table) FQName(id SymbolID) string {
	var parts []string
	for id.IsValid() && id != t.Root {
		sym := t.Symbols.Get(id)
		if sym == nil {
			break
		}
		parts = append(parts, t.Strings.MustLookup(sym.Name))
		id = sym.Owner
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, ".")
}

// Namer renders type constructors by their simple names.
func (t *Table) Namer() types.Namer {
	return func(c types.CtorRef) string {
		return t.Name(FromCtor(c))
	}
}

// Members lists the symbols owned by scope in declaration order.
func (t *Table) Members(scope ScopeID) []SymbolID {
	s := t.Scopes.Get(scope)
	if s == nil {
		return nil
	}
	return s.Symbols
}

// LockAll raises every scope to at least level.
func (t *Table) LockAll(level LockLevel) {
	for _, id := range t.Scopes.IDs() {
		if t.Scopes.Get(id).Lock < level {
			t.SetLock(id, level)
		}
	}
}

// Seal moves every scope to ReadOnly and freezes every existing descriptor.
// Symbols created afterwards (locals in bodies) stay editable.
func (t *Table) Seal() {
	t.LockAll(LockReadOnly)
	for _, id := range t.Symbols.IDs() {
		t.Symbols.Freeze(id)
	}
}
