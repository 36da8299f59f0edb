package symbols

import (
	"lumen/internal/ast"
	"lumen/internal/source"
	"lumen/internal/types"
)

// SymbolKind classifies the semantic meaning of a descriptor.
type SymbolKind uint8

const (
	SymbolInvalid SymbolKind = iota
	SymbolError
	SymbolPackage
	SymbolClass
	SymbolConstructor
	SymbolMethod
	SymbolVariable
	SymbolTypeParameter
	SymbolParameter
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolError:
		return "error"
	case SymbolPackage:
		return "package"
	case SymbolClass:
		return "class"
	case SymbolConstructor:
		return "constructor"
	case SymbolMethod:
		return "method"
	case SymbolVariable:
		return "variable"
	case SymbolTypeParameter:
		return "type parameter"
	case SymbolParameter:
		return "parameter"
	default:
		return "invalid"
	}
}

// Visibility of a member.
type Visibility uint8

const (
	VisPublic Visibility = iota
	// VisPrivate restricts access to the declaring class or package.
	VisPrivate
	// VisProtected extends private access to subclasses.
	VisProtected
	// VisLocal marks declarations inside bodies.
	VisLocal
)

func (v Visibility) String() string {
	switch v {
	case VisPrivate:
		return "private"
	case VisProtected:
		return "protected"
	case VisLocal:
		return "local"
	default:
		return "public"
	}
}

type Modality uint8

const (
	ModalityFinal Modality = iota
	ModalityOpen
	ModalityAbstract
)

func (m Modality) String() string {
	switch m {
	case ModalityOpen:
		return "open"
	case ModalityAbstract:
		return "abstract"
	default:
		return "final"
	}
}

// SymbolFlags encode misc attributes for quick checks.
type SymbolFlags uint16

const (
	FlagStatic SymbolFlags = 1 << iota
	FlagNative
	FlagMutable
	FlagInline
	FlagObjectInstance
	FlagEnumValue
	FlagPrimary
	FlagHasDefault
	FlagSynthetic
	FlagProperty
	FlagBuiltin
)

// Strings returns a slice of textual flag labels.
func (f SymbolFlags) Strings() []string {
	if f == 0 {
		return nil
	}
	names := [...]string{"static", "native", "mutable", "inline", "object", "enum-value", "primary", "default", "synthetic", "property", "builtin"}
	labels := make([]string, 0, 4)
	for i, name := range names {
		if f&(1<<i) != 0 {
			labels = append(labels, name)
		}
	}
	return labels
}

// ClassScopes are the scopes a class descriptor owns.
//
//	TypeParams  type parameters; the supertype-resolution scope
//	Members     members, parent TypeParams; header and body resolution
//	Static      nested classifiers and enum values, for qualified access
//	Init        primary constructor parameters and properties, parent Members
type ClassScopes struct {
	TypeParams ScopeID
	Members    ScopeID
	Static     ScopeID
	Init       ScopeID
}

// Symbol is the descriptor of one declaration.
type Symbol struct {
	Name        source.StringID
	Kind        SymbolKind
	Owner       SymbolID
	Scope       ScopeID
	Span        source.Span
	Decl        ast.NodeRef
	Visibility  Visibility
	Modality    Modality
	Flags       SymbolFlags
	Annotations []source.StringID

	// packages
	Path        []source.StringID
	MemberScope ScopeID

	// classes
	ClassKind   ast.ClassKind
	TypeParams  []SymbolID
	Supertypes  []types.TypeID
	ClassScopes ClassScopes
	DefaultType types.TypeID

	// methods and constructors
	Params []SymbolID

	// Type is the variable/parameter type, the method return type or the
	// constructed class type. Pending is set while an omitted type is still
	// being inferred.
	Type    types.TypeID
	Pending *types.Deferred

	// type parameters
	Bound        types.TypeID
	HasCtorShape bool
	CtorShape    []types.TypeID

	frozen bool
}

func (s *Symbol) Has(flag SymbolFlags) bool { return s.Flags&flag != 0 }

func (s *Symbol) Frozen() bool { return s.frozen }

// IsClassifier reports whether the symbol can appear in type position.
func (s *Symbol) IsClassifier() bool {
	return s.Kind == SymbolClass || s.Kind == SymbolTypeParameter
}

// IsCallable reports whether the symbol takes part in overload grouping.
func (s *Symbol) IsCallable() bool {
	return s.Kind == SymbolMethod || s.Kind == SymbolConstructor
}

// IsTrait reports whether the class is a trait.
func (s *Symbol) IsTrait() bool {
	return s.Kind == SymbolClass && s.ClassKind == ast.ClassTrait
}
