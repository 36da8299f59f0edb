package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Semantic diagnostics.
	SemaInfo                       Code = 3000
	SemaError                      Code = 3001
	SemaRedeclaration              Code = 3002
	SemaConflictingOverloads       Code = 3003
	SemaUnresolvedReference        Code = 3004
	SemaAmbiguousReference         Code = 3005
	SemaInvisibleMember            Code = 3006
	SemaCyclicInheritance          Code = 3007
	SemaInconsistentTypeParameters Code = 3008
	SemaUpperBoundViolated         Code = 3009
	SemaConstructorShapeViolated   Code = 3010
	SemaWrongTypeArgumentCount     Code = 3011
	SemaSupertypeNotAClass         Code = 3012
	SemaFinalSupertype             Code = 3013
	SemaSupertypeAppearsTwice      Code = 3014
	SemaManyClassSupertypes        Code = 3015
	SemaNullableSupertype          Code = 3016
	SemaSupertypeNotInitialized    Code = 3017
	SemaSupertypeInitializedTwice  Code = 3018
	SemaNotASupertype              Code = 3019
	SemaTraitHasNoConstructor      Code = 3020
	SemaMissingConstructorCall     Code = 3021
	SemaExtraConstructorCall       Code = 3022
	SemaTypeMismatch               Code = 3023
	SemaReturnTypeMismatch         Code = 3024
	SemaRecursiveTypeInference     Code = 3025
	SemaNoApplicableCandidate      Code = 3026
	SemaAbstractMemberInFinalClass Code = 3027
	SemaNotACallable               Code = 3028
	SemaBackingFieldUnavailable    Code = 3029
	SemaThisOutsideClass           Code = 3030
	SemaTypeParameterAsValue       Code = 3031
	SemaSelfTypeNotAllowed         Code = 3032
	SemaNoneApplicableOperator     Code = 3033
	SemaMissingReturnType          Code = 3034
	SemaUnresolvedImport           Code = 3100
	SemaUselessImport              Code = 3101
	SemaCannotImportFromClass      Code = 3102
	SemaImportAliasOnStar          Code = 3103
	IOLoadFileError                Code = 4001
	IOInvalidTree                  Code = 4002
	ProjInvalidConfig              Code = 5001
)

var (
	codeDescription = map[Code]string{
		UnknownCode:                    "Unknown error",
		SemaInfo:                       "Semantic information",
		SemaError:                      "Semantic error",
		SemaRedeclaration:              "Redeclaration",
		SemaConflictingOverloads:       "Conflicting overloads",
		SemaUnresolvedReference:        "Unresolved reference",
		SemaAmbiguousReference:         "Ambiguous reference",
		SemaInvisibleMember:            "Cannot access member: it is not visible here",
		SemaCyclicInheritance:          "Cyclic inheritance hierarchy",
		SemaInconsistentTypeParameters: "Type parameter receives inconsistent values along inheritance paths",
		SemaUpperBoundViolated:         "Type argument is not within its bounds",
		SemaConstructorShapeViolated:   "Type argument lacks the constructor required by its type parameter",
		SemaWrongTypeArgumentCount:     "Wrong number of type arguments",
		SemaSupertypeNotAClass:         "Supertype must be a class or trait",
		SemaFinalSupertype:             "This type is final, so it cannot be inherited from",
		SemaSupertypeAppearsTwice:      "Supertype appears twice",
		SemaManyClassSupertypes:        "Only one class may appear in a supertype list",
		SemaNullableSupertype:          "A supertype cannot be nullable",
		SemaSupertypeNotInitialized:    "This supertype requires a constructor call",
		SemaSupertypeInitializedTwice:  "Supertype is initialized more than once",
		SemaNotASupertype:              "Constructor call targets a type that is not a supertype",
		SemaTraitHasNoConstructor:      "Traits have no constructors",
		SemaMissingConstructorCall:     "Supertype is not initialized in this constructor",
		SemaExtraConstructorCall:       "Constructor initializes a type missing from the supertype list",
		SemaTypeMismatch:               "Type mismatch",
		SemaReturnTypeMismatch:         "Body type does not match the declared return type",
		SemaRecursiveTypeInference:     "Type checking has run into a recursive problem",
		SemaNoApplicableCandidate:      "None of the candidates is applicable",
		SemaAbstractMemberInFinalClass: "Abstract member in a non-abstract class",
		SemaNotACallable:               "Expression cannot be invoked",
		SemaBackingFieldUnavailable:    "No backing field available here",
		SemaThisOutsideClass:           "'this' is not defined in this context",
		SemaTypeParameterAsValue:       "Type parameter cannot be used as a value",
		SemaSelfTypeNotAllowed:         "Self type is not allowed in this position",
		SemaNoneApplicableOperator:     "No operator overload matches the operands",
		SemaMissingReturnType:          "Return type cannot be inferred without a body",
		SemaUnresolvedImport:           "Unresolved import",
		SemaUselessImport:              "Useless import: the name is already visible",
		SemaCannotImportFromClass:      "Cannot import all members of a class",
		SemaImportAliasOnStar:          "Alias is not allowed on a star import",
		IOLoadFileError:                "I/O load file error",
		IOInvalidTree:                  "Malformed declaration tree",
		ProjInvalidConfig:              "Invalid project configuration",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("SEM%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PRJ%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
