package source

import (
	"fmt"
	"slices"

	"fortio.org/safecast"
	"golang.org/x/text/unicode/norm"
)

type StringID uint32

const NoStringID StringID = 0

// Interner maps identifiers to compact IDs. Identifiers are stored in NFC so
// that visually identical names written with different code point sequences
// bind to the same declaration.
type Interner struct {
	byID  []string
	index map[string]StringID
}

func NewInterner() *Interner {
	return &Interner{
		byID:  []string{""},
		index: map[string]StringID{"": NoStringID},
	}
}

// Intern returns the ID of s, allocating one on first use.
func (i *Interner) Intern(s string) StringID {
	if id, ok := i.index[s]; ok {
		return id
	}
	normalized := norm.NFC.String(s)
	if id, ok := i.index[normalized]; ok {
		i.index[s] = id
		return id
	}
	value, err := safecast.Conv[uint32](len(i.byID))
	if err != nil {
		panic(fmt.Errorf("interner overflow: %w", err))
	}
	id := StringID(value)
	i.byID = append(i.byID, normalized)
	i.index[normalized] = id
	if normalized != s {
		i.index[s] = id
	}
	return id
}

// InternPath interns each segment of a dotted path.
func (i *Interner) InternPath(segments []string) []StringID {
	out := make([]StringID, len(segments))
	for idx, seg := range segments {
		out[idx] = i.Intern(seg)
	}
	return out
}

// Lookup returns the string for id.
func (i *Interner) Lookup(id StringID) (string, bool) {
	if !i.Has(id) {
		return "", false
	}
	return i.byID[id], true
}

// MustLookup panics on unknown IDs.
func (i *Interner) MustLookup(id StringID) string {
	s, ok := i.Lookup(id)
	if !ok {
		panic("invalid string ID")
	}
	return s
}

func (i *Interner) Has(id StringID) bool {
	return int(id) < len(i.byID)
}

// Len counts interned strings including the reserved empty string.
func (i *Interner) Len() int {
	return len(i.byID)
}

func (i *Interner) Snapshot() []string {
	return slices.Clone(i.byID)
}

// JoinPath renders a dotted path.
func (i *Interner) JoinPath(path []StringID) string {
	out := make([]byte, 0, len(path)*8)
	for idx, seg := range path {
		if idx > 0 {
			out = append(out, '.')
		}
		out = append(out, i.MustLookup(seg)...)
	}
	return string(out)
}
