package types

import (
	"fmt"
	"strconv"
	"strings"

	"fortio.org/safecast"
)

// Interner provides stable TypeIDs by hashing structural descriptors.
type Interner struct {
	types []Type
	index map[string]TypeID
	err   TypeID
}

// NewInterner constructs an interner seeded with the error sentinel.
func NewInterner() *Interner {
	in := &Interner{
		types: make([]Type, 1, 64), // index 0 reserved for NoTypeID
		index: make(map[string]TypeID, 64),
	}
	in.err = in.Intern(Type{Kind: KindError})
	return in
}

// Error returns the error-type sentinel used for anything that failed to
// resolve. It is compatible with every other type.
func (in *Interner) Error() TypeID { return in.err }

// IsError reports whether id is the error sentinel or missing.
func (in *Interner) IsError(id TypeID) bool {
	return id == NoTypeID || id == in.err
}

// Intern ensures the provided descriptor has a stable TypeID.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	if t.Kind == KindError {
		t = Type{Kind: KindError}
	}
	key := typeKey(t)
	if id, ok := in.index[key]; ok {
		return id
	}
	n, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	id := TypeID(n)
	t.Args = cloneIDs(t.Args)
	t.Params = cloneIDs(t.Params)
	in.types = append(in.types, t)
	in.index[key] = id
	return id
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id TypeID) Type {
	tt, ok := in.Lookup(id)
	if !ok {
		panic("types: invalid TypeID")
	}
	return tt
}

// Len reports the number of interned types.
func (in *Interner) Len() int { return len(in.types) - 1 }

func (in *Interner) Class(ctor CtorRef, args ...TypeID) TypeID {
	return in.Intern(Type{Kind: KindClass, Ctor: ctor, Args: args})
}

func (in *Interner) TypeParam(ctor CtorRef) TypeID {
	return in.Intern(Type{Kind: KindTypeParam, Ctor: ctor})
}

func (in *Interner) Function(params []TypeID, result TypeID) TypeID {
	return in.Intern(Type{Kind: KindFunction, Params: params, Result: result})
}

func (in *Interner) Self(class CtorRef) TypeID {
	return in.Intern(Type{Kind: KindSelf, Ctor: class})
}

// WithNullable returns id with its nullability flag set to nullable.
func (in *Interner) WithNullable(id TypeID, nullable bool) TypeID {
	t, ok := in.Lookup(id)
	if !ok || t.Kind == KindError || t.Nullable == nullable {
		return id
	}
	t.Nullable = nullable
	return in.Intern(t)
}

// Kind returns the kind of id, KindInvalid when unknown.
func (in *Interner) Kind(id TypeID) Kind {
	t, ok := in.Lookup(id)
	if !ok {
		return KindInvalid
	}
	return t.Kind
}

// Ctor returns the constructor handle of id.
func (in *Interner) Ctor(id TypeID) CtorRef {
	t, ok := in.Lookup(id)
	if !ok {
		return NoCtor
	}
	return t.Ctor
}

func typeKey(t Type) string {
	var sb strings.Builder
	sb.Grow(16 + 4*(len(t.Args)+len(t.Params)))
	sb.WriteString(strconv.Itoa(int(t.Kind)))
	sb.WriteByte(':')
	sb.WriteString(strconv.FormatUint(uint64(t.Ctor), 10))
	if t.Nullable {
		sb.WriteByte('?')
	}
	sb.WriteByte('<')
	for _, a := range t.Args {
		sb.WriteString(strconv.FormatUint(uint64(a), 10))
		sb.WriteByte(',')
	}
	sb.WriteString(">(")
	for _, p := range t.Params {
		sb.WriteString(strconv.FormatUint(uint64(p), 10))
		sb.WriteByte(',')
	}
	sb.WriteString(")")
	sb.WriteString(strconv.FormatUint(uint64(t.Result), 10))
	return sb.String()
}

func cloneIDs(ids []TypeID) []TypeID {
	if len(ids) == 0 {
		return nil
	}
	out := make([]TypeID, len(ids))
	copy(out, ids)
	return out
}
