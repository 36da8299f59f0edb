package types

import "fmt"

// TypeID uniquely identifies a type inside the interner.
type TypeID uint32

// NoTypeID marks the absence of a type (for example an omitted annotation).
const NoTypeID TypeID = 0

func (id TypeID) IsValid() bool { return id != NoTypeID }

// CtorRef is the handle of the declaration that constructs a type: a class
// descriptor for KindClass and KindSelf, a type-parameter descriptor for
// KindTypeParam. The symbols package owns the handle space.
type CtorRef uint32

const NoCtor CtorRef = 0

// Kind enumerates type constructor kinds.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindError
	KindClass
	KindTypeParam
	KindFunction
	KindSelf
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindError:
		return "error"
	case KindClass:
		return "class"
	case KindTypeParam:
		return "type-parameter"
	case KindFunction:
		return "function"
	case KindSelf:
		return "self"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Type is a structural descriptor:
//
//	KindClass      Ctor (class), Args
//	KindTypeParam  Ctor (type parameter)
//	KindFunction   Params, Result
//	KindSelf       Ctor (the enclosing class)
//
// Nullable applies to every kind except KindError.
type Type struct {
	Kind     Kind
	Ctor     CtorRef
	Nullable bool
	Args     []TypeID
	Params   []TypeID
	Result   TypeID
}

// Subst maps type-parameter constructors to replacement types.
type Subst map[CtorRef]TypeID
