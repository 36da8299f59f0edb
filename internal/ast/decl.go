package ast

import "lumen/internal/source"

type DeclKind uint8

const (
	DeclInvalid DeclKind = iota
	DeclNamespace
	DeclClass
	DeclFunction
	DeclProperty
	DeclConstructor
)

func (k DeclKind) String() string {
	switch k {
	case DeclNamespace:
		return "namespace"
	case DeclClass:
		return "class"
	case DeclFunction:
		return "function"
	case DeclProperty:
		return "property"
	case DeclConstructor:
		return "constructor"
	default:
		return "invalid"
	}
}

// ClassKind refines DeclClass.
type ClassKind uint8

const (
	ClassPlain ClassKind = iota
	ClassTrait
	ClassEnum
	ClassEnumEntry
	ClassObject
)

func (k ClassKind) String() string {
	switch k {
	case ClassTrait:
		return "trait"
	case ClassEnum:
		return "enum"
	case ClassEnumEntry:
		return "enum entry"
	case ClassObject:
		return "object"
	default:
		return "class"
	}
}

// Modifiers are the declaration keywords written in source.
type Modifiers uint16

const (
	ModOpen Modifiers = 1 << iota
	ModAbstract
	ModFinal
	ModPublic
	ModPrivate
	ModProtected
	ModOverride
	ModStatic
	ModNative
	ModInline
)

func (m Modifiers) Has(flag Modifiers) bool { return m&flag != 0 }

// Decl is the common header of every declaration; Payload indexes the
// kind-specific arena.
type Decl struct {
	Kind        DeclKind
	Span        source.Span
	Name        source.StringID
	Mods        Modifiers
	Annotations []source.StringID
	Payload     PayloadID
}

// NamespaceDecl is a `namespace a.b { ... }` block nested in a file.
type NamespaceDecl struct {
	Path    []source.StringID
	Members []DeclID
}

// SuperEntry is one element of a supertype list or of a constructor's
// delegation list. Call is set for `Base(args)` forms.
type SuperEntry struct {
	Span source.Span
	Type TypeRefID
	Call bool
	Args []ExprID
}

type ClassDecl struct {
	Kind          ClassKind
	TypeParams    []TypeParamID
	HasPrimary    bool
	PrimaryParams []ParamID
	Supertypes    []SuperEntry
	Members       []DeclID
}

type FunctionDecl struct {
	TypeParams []TypeParamID
	Params     []ParamID
	Result     TypeRefID
	Body       ExprID
}

type PropertyDecl struct {
	Mutable bool
	Type    TypeRefID
	Init    ExprID
}

// ConstructorDecl is a secondary constructor; Delegations lists the
// supertype constructor calls of its initializer list.
type ConstructorDecl struct {
	Params      []ParamID
	Delegations []SuperEntry
	Body        ExprID
}

// Param is a value parameter. Property marks primary-constructor parameters
// declared with val/var.
type Param struct {
	Span     source.Span
	Name     source.StringID
	Type     TypeRefID
	Default  ExprID
	Property bool
	Mutable  bool
	Mods     Modifiers
}

// TypeParam declares a generic parameter with an optional upper bound and an
// optional required constructor shape (`T : Bound new(Int, String)`).
type TypeParam struct {
	Span    source.Span
	Name    source.StringID
	Bound   TypeRefID
	HasCtor bool
	Ctor    []TypeRefID
}
