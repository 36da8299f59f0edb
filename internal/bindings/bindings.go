// Package bindings declares the attribute-store slices the resolver fills and
// downstream consumers read.
package bindings

import (
	"slices"

	"lumen/internal/ast"
	"lumen/internal/attrs"
	"lumen/internal/symbols"
	"lumen/internal/types"
)

// Call is the outcome of resolving a call site.
type Call struct {
	Callee   symbols.SymbolID
	Receiver types.TypeID
	Params   []types.TypeID
	Result   types.TypeID
}

func (c Call) equal(o Call) bool {
	return c.Callee == o.Callee && c.Receiver == o.Receiver && c.Result == o.Result &&
		slices.Equal(c.Params, o.Params)
}

func newDescriptorSlice(name string) *attrs.Slice[ast.NodeRef, symbols.SymbolID] {
	return attrs.NewSlice[ast.NodeRef, symbols.SymbolID](name, attrs.FirstWriteWins)
}

// Declaration to descriptor, one slice per declaration kind. Declaration
// consults them all.
var (
	NamespaceDescriptor   = newDescriptorSlice("namespace-descriptor")
	ClassDescriptor       = newDescriptorSlice("class-descriptor")
	FunctionDescriptor    = newDescriptorSlice("function-descriptor")
	PropertyDescriptor    = newDescriptorSlice("property-descriptor")
	ConstructorDescriptor = newDescriptorSlice("constructor-descriptor")
	ParamDescriptor       = newDescriptorSlice("parameter-descriptor")
	TypeParamDescriptor   = newDescriptorSlice("type-parameter-descriptor")
	LocalDescriptor       = newDescriptorSlice("local-descriptor")

	Declaration = newDescriptorSlice("declaration-to-descriptor").WithFallback(
		ClassDescriptor,
		FunctionDescriptor,
		PropertyDescriptor,
		ConstructorDescriptor,
		ParamDescriptor,
		TypeParamDescriptor,
		NamespaceDescriptor,
		LocalDescriptor,
	)

	// DescriptorDeclaration is the opposite of the per-kind slices.
	DescriptorDeclaration = attrs.NewSlice[symbols.SymbolID, ast.NodeRef]("descriptor-to-declaration", attrs.FirstWriteWins)
)

var (
	// FilePackage is the package a file contributes to.
	FilePackage = attrs.NewSlice[ast.FileID, symbols.SymbolID]("file-package", attrs.FirstWriteWins)
	// FileScope is the lexical scope of a file's top-level declarations.
	FileScope = attrs.NewSlice[ast.FileID, symbols.ScopeID]("file-scope", attrs.FirstWriteWins)
	// ObjectInstance maps an object or enum-entry class to its value.
	ObjectInstance = attrs.NewSlice[symbols.SymbolID, symbols.SymbolID]("object-instance", attrs.FirstWriteWins)
)

var (
	TypeRefType   = attrs.NewSlice[ast.TypeRefID, types.TypeID]("type-reference-type", attrs.FirstWriteWins)
	TypeRefTarget = attrs.NewSlice[ast.TypeRefID, symbols.SymbolID]("type-reference-target", attrs.FirstWriteWins)

	ReferenceTarget = attrs.NewSlice[ast.ExprID, symbols.SymbolID]("reference-target", attrs.FirstWriteWins)
	ExpressionType  = attrs.NewSlice[ast.ExprID, types.TypeID]("expression-type", attrs.FirstWriteWins)
	ResolvedCall    = attrs.NewSliceFunc[ast.ExprID, Call]("resolved-call", attrs.FirstWriteWins, func(a, b Call) bool {
		return a.equal(b)
	})
	// AmbiguousTarget holds every candidate of a reference that did not
	// resolve to a single descriptor.
	AmbiguousTarget = attrs.NewSliceFunc[ast.NodeRef, []symbols.SymbolID]("ambiguous-target", attrs.FirstWriteWins, slices.Equal)

	ImportTarget = attrs.NewSliceFunc[ast.ImportID, []symbols.SymbolID]("import-target", attrs.FirstWriteWins, slices.Equal)

	// DelegatedCall is the supertype constructor chosen for a delegation
	// entry, keyed by the entry's type reference.
	DelegatedCall = attrs.NewSlice[ast.TypeRefID, symbols.SymbolID]("delegated-call", attrs.FirstWriteWins)
)

var (
	// BackingFieldReference records `$name` references.
	BackingFieldReference = attrs.NewSlice[ast.ExprID, symbols.SymbolID]("backing-field-reference", attrs.FirstWriteWins)
	// RequiresBackingField is derived from BackingFieldReference.
	RequiresBackingField = attrs.NewSlice[symbols.SymbolID, bool]("requires-backing-field", attrs.FirstWriteWins)

	// DeferredRecursion marks descriptors whose omitted type depended on
	// itself.
	DeferredRecursion = attrs.NewSlice[symbols.SymbolID, ast.NodeRef]("deferred-recursion", attrs.FirstWriteWins)
	// CyclicInheritance marks classes found on a supertype cycle.
	CyclicInheritance = attrs.NewSlice[symbols.SymbolID, bool]("cyclic-inheritance", attrs.FirstWriteWins)
)

func init() {
	// Several namespace blocks may open the same package, so
	// NamespaceDescriptor has no opposite.
	for _, s := range []*attrs.Slice[ast.NodeRef, symbols.SymbolID]{
		ClassDescriptor,
		FunctionDescriptor,
		PropertyDescriptor,
		ConstructorDescriptor,
		ParamDescriptor,
		TypeParamDescriptor,
		LocalDescriptor,
	} {
		attrs.Pair(s, DescriptorDeclaration)
	}
}

// Install attaches the derived-fact observers to a root store.
func Install(root *attrs.Trace) {
	attrs.Observe(root, BackingFieldReference, func(store attrs.Store, _ ast.ExprID, sym symbols.SymbolID) {
		attrs.Set(store, RequiresBackingField, sym, true)
	})
}
