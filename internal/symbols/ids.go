package symbols

import "lumen/internal/types"

// ScopeID identifies a scope in the table arena.
type ScopeID uint32

const (
	// NoScopeID marks the absence of a scope reference.
	NoScopeID ScopeID = 0
)

// IsValid reports whether the scope ID refers to an allocated scope.
func (id ScopeID) IsValid() bool { return id != NoScopeID }

// SymbolID identifies a descriptor inside the table arena.
type SymbolID uint32

const (
	// NoSymbolID marks the absence of a symbol reference.
	NoSymbolID SymbolID = 0
)

// IsValid reports whether the symbol ID refers to an allocated symbol.
func (id SymbolID) IsValid() bool { return id != NoSymbolID }

// Ctor converts a class or type-parameter handle into a type constructor.
func (id SymbolID) Ctor() types.CtorRef { return types.CtorRef(id) }

// FromCtor converts a type constructor back into its descriptor handle.
func FromCtor(c types.CtorRef) SymbolID { return SymbolID(c) }
