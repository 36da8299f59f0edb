package symbols

import (
	"errors"
	"fmt"

	"fortio.org/safecast"

	"lumen/internal/source"
)

// ErrFrozen is raised when a frozen descriptor is edited.
var ErrFrozen = errors.New("symbols: descriptor is frozen")

// Scopes stores all allocated scopes in a compact slice-based arena.
type Scopes struct {
	data []Scope
}

// NewScopes creates an arena with optional capacity hint.
func NewScopes(capacity uint32) *Scopes {
	if capacity == 0 {
		capacity = 32
	}
	return &Scopes{
		data: make([]Scope, 1, capacity+1), // index 0 reserved for NoScopeID
	}
}

// New allocates a new scope and returns its ID. New scopes start Unlocked.
func (s *Scopes) New(kind ScopeKind, parent ScopeID, owner SymbolID) ScopeID {
	value, err := safecast.Conv[uint32](len(s.data))
	if err != nil {
		panic(fmt.Errorf("scopes arena overflow: %w", err))
	}
	id := ScopeID(value)
	s.data = append(s.data, Scope{
		Kind:      kind,
		Parent:    parent,
		Owner:     owner,
		NameIndex: make(map[source.StringID][]SymbolID),
	})
	if parent.IsValid() {
		if parentScope := s.Get(parent); parentScope != nil {
			parentScope.Children = append(parentScope.Children, id)
		}
	}
	return id
}

// Get returns the scope pointer or nil if ID is invalid.
func (s *Scopes) Get(id ScopeID) *Scope {
	if !id.IsValid() || int(id) >= len(s.data) {
		return nil
	}
	return &s.data[id]
}

// Len reports total number of scopes excluding the sentinel.
func (s *Scopes) Len() int { return len(s.data) - 1 }

// IDs lists every allocated scope.
func (s *Scopes) IDs() []ScopeID {
	out := make([]ScopeID, 0, len(s.data)-1)
	for i := 1; i < len(s.data); i++ {
		out = append(out, ScopeID(i))
	}
	return out
}

// Symbols stores descriptors in a compact arena.
type Symbols struct {
	data []Symbol
}

// NewSymbols creates a symbol arena with optional capacity hint.
func NewSymbols(capacity uint32) *Symbols {
	if capacity == 0 {
		capacity = 64
	}
	return &Symbols{
		data: make([]Symbol, 1, capacity+1), // index 0 reserved for NoSymbolID
	}
}

// New allocates a symbol in the arena and returns its ID.
func (s *Symbols) New(sym *Symbol) SymbolID {
	if sym == nil {
		panic("symbols.New: nil symbol")
	}
	value, err := safecast.Conv[uint32](len(s.data))
	if err != nil {
		panic(fmt.Errorf("symbols arena overflow: %w", err))
	}
	id := SymbolID(value)
	s.data = append(s.data, *sym)
	return id
}

// Get returns a read-only view of a symbol, or nil for an invalid ID.
// Mutations must go through Edit.
func (s *Symbols) Get(id SymbolID) *Symbol {
	if !id.IsValid() || int(id) >= len(s.data) {
		return nil
	}
	return &s.data[id]
}

// Edit returns a mutable symbol; it faults once the symbol is frozen.
func (s *Symbols) Edit(id SymbolID) *Symbol {
	sym := s.Get(id)
	if sym == nil {
		return nil
	}
	if sym.frozen {
		panic(fmt.Errorf("%w: %d (%s)", ErrFrozen, id, sym.Kind))
	}
	return sym
}

// Len reports number of stored symbols excluding sentinel.
func (s *Symbols) Len() int { return len(s.data) - 1 }

// IDs lists every allocated symbol.
func (s *Symbols) IDs() []SymbolID {
	out := make([]SymbolID, 0, len(s.data)-1)
	for i := 1; i < len(s.data); i++ {
		out = append(out, SymbolID(i))
	}
	return out
}

// Freeze makes one descriptor immutable.
func (s *Symbols) Freeze(id SymbolID) {
	if sym := s.Get(id); sym != nil {
		sym.frozen = true
	}
}
