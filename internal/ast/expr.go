package ast

import "lumen/internal/source"

type ExprKind uint8

const (
	ExprInvalid ExprKind = iota
	ExprLiteral
	ExprName
	ExprBackingField
	ExprThis
	ExprMember
	ExprCall
	ExprBinary
	ExprBlock
	ExprLocal
	ExprReturn
)

func (k ExprKind) String() string {
	switch k {
	case ExprLiteral:
		return "literal"
	case ExprName:
		return "name"
	case ExprBackingField:
		return "backing-field"
	case ExprThis:
		return "this"
	case ExprMember:
		return "member"
	case ExprCall:
		return "call"
	case ExprBinary:
		return "binary"
	case ExprBlock:
		return "block"
	case ExprLocal:
		return "local"
	case ExprReturn:
		return "return"
	default:
		return "invalid"
	}
}

type LiteralKind uint8

const (
	LitInt LiteralKind = iota
	LitDouble
	LitString
	LitChar
	LitBool
	LitNull
)

type BinaryOp uint8

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpLess
	OpGreater
	OpEq
	OpNotEq
)

func (op BinaryOp) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpLess:
		return "<"
	case OpGreater:
		return ">"
	case OpEq:
		return "=="
	case OpNotEq:
		return "!="
	default:
		return "?"
	}
}

// Expr is a flat expression node. Which fields are meaningful depends on Kind:
//
//	ExprLiteral      Lit, Value
//	ExprName         Name
//	ExprBackingField Name ($name)
//	ExprMember       Receiver, Name
//	ExprCall         Callee, Args, TypeArgs
//	ExprBinary       Op, Left, Right
//	ExprBlock        Items
//	ExprLocal        Name, Type, Init, Mutable
//	ExprReturn       Operand
type Expr struct {
	Kind     ExprKind
	Span     source.Span
	Lit      LiteralKind
	Value    string
	Name     source.StringID
	Receiver ExprID
	Callee   ExprID
	Args     []ExprID
	TypeArgs []TypeRefID
	Op       BinaryOp
	Left     ExprID
	Right    ExprID
	Items    []ExprID
	Type     TypeRefID
	Init     ExprID
	Mutable  bool
	Operand  ExprID
}
