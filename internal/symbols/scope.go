package symbols

import (
	"errors"
	"fmt"

	"lumen/internal/source"
)

var (
	// ErrScopeLocked is raised on a write into a ReadOnly scope.
	ErrScopeLocked = errors.New("symbols: scope is read-only")
	// ErrScopeNotReadable is raised on a lookup through an Unlocked scope.
	ErrScopeNotReadable = errors.New("symbols: scope is not readable yet")
	// ErrLockRegression is raised when a lock level would decrease.
	ErrLockRegression = errors.New("symbols: lock level can only increase")
)

// ScopeKind enumerates supported scope categories.
type ScopeKind uint8

const (
	ScopeInvalid ScopeKind = iota
	ScopeRoot
	ScopePackage
	ScopeFile
	ScopeDefaultImports
	ScopeTypeParams
	ScopeClassMembers
	ScopeClassStatic
	ScopeInit
	ScopeFunction
	ScopeBlock
)

var scopeKindNames = [...]string{
	ScopeInvalid:        "invalid",
	ScopeRoot:           "root",
	ScopePackage:        "package",
	ScopeFile:           "file",
	ScopeDefaultImports: "default-imports",
	ScopeTypeParams:     "type-params",
	ScopeClassMembers:   "class-members",
	ScopeClassStatic:    "class-static",
	ScopeInit:           "initializer",
	ScopeFunction:       "function",
	ScopeBlock:          "block",
}

func (k ScopeKind) String() string {
	if int(k) < len(scopeKindNames) {
		return scopeKindNames[k]
	}
	return "invalid"
}

// LockLevel is the write/read state of a scope. Levels only increase.
type LockLevel uint8

const (
	// LockUnlocked: declarations are being added, lookups fault.
	LockUnlocked LockLevel = iota
	// LockBoth: declarations and lookups are both allowed.
	LockBoth
	// LockReadOnly: lookups only; writes fault.
	LockReadOnly
)

func (l LockLevel) String() string {
	switch l {
	case LockBoth:
		return "both"
	case LockReadOnly:
		return "read-only"
	default:
		return "unlocked"
	}
}

// Scope models a lexical scope with a parent-child hierarchy. NameIndex is a
// multimap: declarations of different kinds may share a name.
type Scope struct {
	Kind         ScopeKind
	Parent       ScopeID
	Owner        SymbolID
	Lock         LockLevel
	WriteThrough ScopeID
	Imported     []ScopeID
	NameIndex    map[source.StringID][]SymbolID
	Symbols      []SymbolID
	Children     []ScopeID
}

// SetLock moves scope to level. Lowering the level faults.
func (t *Table) SetLock(id ScopeID, level LockLevel) {
	scope := t.Scopes.Get(id)
	if scope == nil {
		return
	}
	if level < scope.Lock {
		panic(fmt.Errorf("%w: scope %d (%s) %s -> %s", ErrLockRegression, id, scope.Kind, scope.Lock, level))
	}
	scope.Lock = level
}

// NewScope allocates a scope and unlocks it for reading and writing at once;
// use Scopes.New directly to get an Unlocked scope.
func (t *Table) NewScope(kind ScopeKind, parent ScopeID, owner SymbolID) ScopeID {
	id := t.Scopes.New(kind, parent, owner)
	t.SetLock(id, LockBoth)
	return id
}

// SetWriteThrough makes declarations into scope land in target instead.
func (t *Table) SetWriteThrough(scope, target ScopeID) {
	if s := t.Scopes.Get(scope); s != nil {
		s.WriteThrough = target
	}
}

// AddImportedScope makes every name declared directly in imported visible
// from scope, after its own names.
func (t *Table) AddImportedScope(scope, imported ScopeID) {
	s := t.Scopes.Get(scope)
	if s == nil || !imported.IsValid() {
		return
	}
	t.checkWritable(scope, s)
	for _, existing := range s.Imported {
		if existing == imported {
			return
		}
	}
	s.Imported = append(s.Imported, imported)
}

func (t *Table) checkWritable(id ScopeID, s *Scope) {
	if s.Lock == LockReadOnly {
		panic(fmt.Errorf("%w: scope %d (%s)", ErrScopeLocked, id, s.Kind))
	}
}

func (t *Table) checkReadable(id ScopeID, s *Scope) {
	if s.Lock == LockUnlocked {
		panic(fmt.Errorf("%w: scope %d (%s)", ErrScopeNotReadable, id, s.Kind))
	}
}

// Declare records sym in scope under its own name, forwarding to the
// write-through target when one is set. It returns the scope that received
// the declaration.
func (t *Table) Declare(scopeID ScopeID, symID SymbolID) ScopeID {
	sym := t.Symbols.Get(symID)
	if sym == nil {
		return NoScopeID
	}
	return t.bind(scopeID, sym.Name, symID, true)
}

// Bind records sym under name without taking ownership; imports use it to
// make foreign declarations visible.
func (t *Table) Bind(scopeID ScopeID, name source.StringID, symID SymbolID) {
	t.bind(scopeID, name, symID, false)
}

func (t *Table) bind(scopeID ScopeID, name source.StringID, symID SymbolID, owned bool) ScopeID {
	scope := t.Scopes.Get(scopeID)
	if scope == nil {
		return NoScopeID
	}
	t.checkWritable(scopeID, scope)
	if owned && scope.WriteThrough.IsValid() {
		return t.bind(scope.WriteThrough, name, symID, owned)
	}
	for _, existing := range scope.NameIndex[name] {
		if existing == symID {
			return scopeID
		}
	}
	scope.NameIndex[name] = append(scope.NameIndex[name], symID)
	if owned {
		scope.Symbols = append(scope.Symbols, symID)
		if sym := t.Symbols.Get(symID); sym != nil && !sym.Scope.IsValid() {
			t.Symbols.Edit(symID).Scope = scopeID
		}
	}
	return scopeID
}

// KindMask restricts lookup to specific symbol kinds.
type KindMask uint32

const (
	// KindMaskNone filters out all kinds.
	KindMaskNone KindMask = 0
	// KindMaskAny allows all kinds.
	KindMaskAny KindMask = ^KindMask(0)
)

// Mask converts a symbol kind into a KindMask bit.
func (k SymbolKind) Mask() KindMask {
	return KindMask(1 << uint(k))
}

// MaskOf combines kinds.
func MaskOf(kinds ...SymbolKind) KindMask {
	var m KindMask
	for _, k := range kinds {
		m |= k.Mask()
	}
	return m
}

func matchKind(mask KindMask, kind SymbolKind) bool {
	return mask == KindMaskAny || mask&kind.Mask() != 0
}

// LookupLocal returns the symbols bound to name in scope itself, filtered by
// mask. When the scope's own table has none, its write-through target and then
// its imported scopes are consulted, in that order.
func (t *Table) LookupLocal(scopeID ScopeID, name source.StringID, mask KindMask) []SymbolID {
	scope := t.Scopes.Get(scopeID)
	if scope == nil || mask == KindMaskNone {
		return nil
	}
	t.checkReadable(scopeID, scope)
	if out := t.filter(nil, scope.NameIndex[name], mask); len(out) > 0 {
		return out
	}
	if scope.WriteThrough.IsValid() {
		if target := t.Scopes.Get(scope.WriteThrough); target != nil {
			t.checkReadable(scope.WriteThrough, target)
			if out := t.filter(nil, target.NameIndex[name], mask); len(out) > 0 {
				return out
			}
		}
	}
	var out []SymbolID
	for _, imp := range scope.Imported {
		if other := t.Scopes.Get(imp); other != nil {
			t.checkReadable(imp, other)
			out = t.filter(out, other.NameIndex[name], mask)
		}
	}
	return out
}

// Lookup walks the scope chain and returns the candidates of the innermost
// scope that has any symbol matching mask.
func (t *Table) Lookup(scopeID ScopeID, name source.StringID, mask KindMask) []SymbolID {
	for scopeID.IsValid() {
		if found := t.LookupLocal(scopeID, name, mask); len(found) > 0 {
			return found
		}
		scopeID = t.Scopes.Get(scopeID).Parent
	}
	return nil
}

// Declared returns the symbols owned by scope under name, without lock
// checks. Only the phase that is populating a scope may call it.
func (t *Table) Declared(scopeID ScopeID, name source.StringID) []SymbolID {
	scope := t.Scopes.Get(scopeID)
	if scope == nil {
		return nil
	}
	return scope.NameIndex[name]
}

func (t *Table) filter(out, ids []SymbolID, mask KindMask) []SymbolID {
	for _, id := range ids {
		sym := t.Symbols.Get(id)
		if sym == nil || !matchKind(mask, sym.Kind) {
			continue
		}
		dup := false
		for _, have := range out {
			if have == id {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, id)
		}
	}
	return out
}
