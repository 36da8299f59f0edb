// Package testkit holds consistency checks shared by resolver tests and the
// fuzz harnesses.
package testkit

import (
	"errors"
	"fmt"

	"lumen/internal/ast"
	"lumen/internal/attrs"
	"lumen/internal/bindings"
	"lumen/internal/symbols"
	"lumen/internal/types"
)

// CheckResolution verifies the facts a resolver run left in store against
// its symbol table and type interner:
//  1. the table passes its own structural validation
//  2. every reference target names a known symbol
//  3. every resolved call names a callable symbol and interned types
//  4. every ambiguity lists only known symbols
//  5. every declaration descriptor maps back to its declaration
//  6. every expression type is interned
//
// All violations are reported together.
func CheckResolution(table *symbols.Table, in *types.Interner, store attrs.Reader) error {
	if table == nil || in == nil || store == nil {
		return errors.New("nil table, interner or store")
	}
	var errs []error
	if err := table.Validate(); err != nil {
		errs = append(errs, err)
	}
	known := func(id symbols.SymbolID) bool {
		return id.IsValid() && table.Symbols.Get(id) != nil
	}
	interned := func(id types.TypeID) bool {
		if !id.IsValid() {
			return true
		}
		_, ok := in.Lookup(id)
		return ok
	}

	for _, expr := range attrs.Keys(store, bindings.ReferenceTarget) {
		target, _ := attrs.Get(store, bindings.ReferenceTarget, expr)
		if !known(target) {
			errs = append(errs, fmt.Errorf("expression %d refers to unknown symbol %d", expr, target))
		}
	}

	for _, expr := range attrs.Keys(store, bindings.ResolvedCall) {
		call, _ := attrs.Get(store, bindings.ResolvedCall, expr)
		if !known(call.Callee) {
			errs = append(errs, fmt.Errorf("call %d resolved to unknown symbol %d", expr, call.Callee))
			continue
		}
		if sym := table.Symbols.Get(call.Callee); !sym.IsCallable() {
			errs = append(errs, fmt.Errorf("call %d resolved to %s %d, which is not callable", expr, sym.Kind, call.Callee))
		}
		if !interned(call.Receiver) || !interned(call.Result) {
			errs = append(errs, fmt.Errorf("call %d carries an unknown type", expr))
		}
		for _, p := range call.Params {
			if !interned(p) {
				errs = append(errs, fmt.Errorf("call %d has unknown parameter type %d", expr, p))
			}
		}
	}

	for _, node := range attrs.Keys(store, bindings.AmbiguousTarget) {
		cands, _ := attrs.Get(store, bindings.AmbiguousTarget, node)
		for _, c := range cands {
			if !known(c) {
				errs = append(errs, fmt.Errorf("ambiguity at %v lists unknown symbol %d", node, c))
			}
		}
	}

	for _, slice := range []*attrs.Slice[ast.NodeRef, symbols.SymbolID]{
		bindings.ClassDescriptor,
		bindings.FunctionDescriptor,
		bindings.PropertyDescriptor,
		bindings.ConstructorDescriptor,
		bindings.ParamDescriptor,
		bindings.TypeParamDescriptor,
		bindings.LocalDescriptor,
	} {
		for _, node := range attrs.Keys(store, slice) {
			sym, _ := attrs.Get(store, slice, node)
			if !known(sym) {
				errs = append(errs, fmt.Errorf("%s: %v maps to unknown symbol %d", slice.Name(), node, sym))
				continue
			}
			if !attrs.Has(store, bindings.DescriptorDeclaration, sym) {
				errs = append(errs, fmt.Errorf("%s: symbol %d has no declaration", slice.Name(), sym))
			}
		}
	}

	for _, expr := range attrs.Keys(store, bindings.ExpressionType) {
		tid, _ := attrs.Get(store, bindings.ExpressionType, expr)
		if !interned(tid) {
			errs = append(errs, fmt.Errorf("expression %d has unknown type %d", expr, tid))
		}
	}
	return errors.Join(errs...)
}
