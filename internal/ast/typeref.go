package ast

import "lumen/internal/source"

type TypeRefKind uint8

const (
	TypeRefNamed TypeRefKind = iota
	TypeRefFunction
	TypeRefSelf
)

// TypeRef is a written type: `a.b.C<X, Y>?`, `(A, B) -> R` or `This`.
type TypeRef struct {
	Kind     TypeRefKind
	Span     source.Span
	Path     []source.StringID
	Args     []TypeRefID
	Nullable bool
	Params   []TypeRefID
	Result   TypeRefID
}
