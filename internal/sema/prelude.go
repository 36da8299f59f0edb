package sema

import (
	"lumen/internal/ast"
	"lumen/internal/source"
	"lumen/internal/symbols"
	"lumen/internal/types"
)

// Builtins are the classes of the std package every unit starts with.
type Builtins struct {
	Std symbols.SymbolID

	Any, Unit, Nothing, Int, Double, Boolean, Char, String symbols.SymbolID
	Array, Comparable                                      symbols.SymbolID

	AnyType, NullableAny, UnitType, NothingType, NullType  types.TypeID
	IntType, DoubleType, BooleanType, CharType, StringType types.TypeID
}

type preludeBuilder struct {
	r     *resolver
	scope symbols.ScopeID
}

// buildPrelude declares std and its classes. Builtin classes carry no syntax
// and are never revisited by the hierarchy phases.
func (r *resolver) buildPrelude() {
	std := r.ns.Ensure([]source.StringID{r.table.Strings.Intern("std")}, source.Span{})
	p := &preludeBuilder{r: r, scope: r.sym(std).MemberScope}
	b := &r.builtins
	b.Std = std

	b.Any = p.class("Any", symbols.ModalityOpen, ast.ClassPlain)
	b.AnyType = r.sym(b.Any).DefaultType
	b.NullableAny = r.types.WithNullable(b.AnyType, true)

	b.Unit = p.class("Unit", symbols.ModalityFinal, ast.ClassObject)
	b.Nothing = p.class("Nothing", symbols.ModalityFinal, ast.ClassPlain)
	b.Int = p.class("Int", symbols.ModalityFinal, ast.ClassPlain)
	b.Double = p.class("Double", symbols.ModalityFinal, ast.ClassPlain)
	b.Boolean = p.class("Boolean", symbols.ModalityFinal, ast.ClassPlain)
	b.Char = p.class("Char", symbols.ModalityFinal, ast.ClassPlain)
	b.String = p.class("String", symbols.ModalityFinal, ast.ClassPlain)
	b.Comparable = p.class("Comparable", symbols.ModalityAbstract, ast.ClassTrait, "T")
	b.Array = p.class("Array", symbols.ModalityFinal, ast.ClassPlain, "T")

	b.UnitType = r.sym(b.Unit).DefaultType
	b.NothingType = r.sym(b.Nothing).DefaultType
	b.NullType = r.types.WithNullable(b.NothingType, true)
	b.IntType = r.sym(b.Int).DefaultType
	b.DoubleType = r.sym(b.Double).DefaultType
	b.BooleanType = r.sym(b.Boolean).DefaultType
	b.CharType = r.sym(b.Char).DefaultType
	b.StringType = r.sym(b.String).DefaultType

	for _, cls := range []symbols.SymbolID{b.Unit, b.Nothing, b.Double, b.Boolean, b.Char, b.Array, b.Comparable} {
		p.extends(cls, b.AnyType)
	}
	comparable := func(t types.TypeID) types.TypeID {
		return r.types.Class(b.Comparable.Ctor(), t)
	}
	p.extends(b.Int, comparable(b.IntType))
	p.extends(b.String, comparable(b.StringType))
	p.extends(b.Double, comparable(b.DoubleType))
	p.extends(b.Char, comparable(b.CharType))

	p.constructor(b.Any)
	p.method(b.Any, "equals", b.BooleanType, b.NullableAny)
	p.method(b.Any, "hashCode", b.IntType)
	p.method(b.Any, "toString", b.StringType)

	cmpT := r.types.TypeParam(r.sym(b.Comparable).TypeParams[0].Ctor())
	p.method(b.Comparable, "compareTo", b.IntType, cmpT)

	for _, num := range []struct {
		cls symbols.SymbolID
		t   types.TypeID
	}{{b.Int, b.IntType}, {b.Double, b.DoubleType}} {
		for _, op := range []string{"plus", "minus", "times", "div"} {
			p.method(num.cls, op, num.t, num.t)
		}
		p.method(num.cls, "compareTo", b.IntType, num.t)
	}
	p.method(b.Int, "toDouble", b.DoubleType)
	p.method(b.Double, "toInt", b.IntType)
	p.method(b.Char, "compareTo", b.IntType, b.CharType)
	p.method(b.Boolean, "not", b.BooleanType)
	p.method(b.String, "plus", b.StringType, b.NullableAny)
	p.method(b.String, "compareTo", b.IntType, b.StringType)
	p.property(b.String, "length", b.IntType)

	arrT := r.types.TypeParam(r.sym(b.Array).TypeParams[0].Ctor())
	p.property(b.Array, "size", b.IntType)
	p.method(b.Array, "get", arrT, b.IntType)
	p.method(b.Array, "set", b.UnitType, b.IntType, arrT)
}

func (p *preludeBuilder) class(name string, modality symbols.Modality, kind ast.ClassKind, typeParams ...string) symbols.SymbolID {
	r := p.r
	t := r.table
	id := r.newSymbol(symbols.Symbol{
		Name:      t.Strings.Intern(name),
		Kind:      symbols.SymbolClass,
		Owner:     r.builtins.Std,
		Modality:  modality,
		ClassKind: kind,
		Flags:     symbols.FlagBuiltin,
	})
	static := t.NewScope(symbols.ScopeClassStatic, p.scope, id)
	tps := t.NewScope(symbols.ScopeTypeParams, static, id)
	members := t.NewScope(symbols.ScopeClassMembers, tps, id)
	init := t.NewScope(symbols.ScopeInit, members, id)
	sym := r.edit(id)
	sym.ClassScopes = symbols.ClassScopes{TypeParams: tps, Members: members, Static: static, Init: init}

	args := make([]types.TypeID, 0, len(typeParams))
	for _, tpName := range typeParams {
		tp := r.newSymbol(symbols.Symbol{
			Name:  t.Strings.Intern(tpName),
			Kind:  symbols.SymbolTypeParameter,
			Owner: id,
			Flags: symbols.FlagBuiltin,
			Bound: r.builtins.NullableAny,
		})
		t.Declare(tps, tp)
		r.edit(id).TypeParams = append(r.sym(id).TypeParams, tp)
		args = append(args, r.types.TypeParam(tp.Ctor()))
	}
	r.edit(id).DefaultType = r.types.Class(id.Ctor(), args...)
	t.Declare(p.scope, id)
	return id
}

func (p *preludeBuilder) extends(cls symbols.SymbolID, super types.TypeID) {
	sym := p.r.edit(cls)
	sym.Supertypes = append(sym.Supertypes, super)
}

func (p *preludeBuilder) method(cls symbols.SymbolID, name string, result types.TypeID, params ...types.TypeID) symbols.SymbolID {
	r := p.r
	owner := r.sym(cls)
	id := r.newSymbol(symbols.Symbol{
		Name:     r.table.Strings.Intern(name),
		Kind:     symbols.SymbolMethod,
		Owner:    cls,
		Modality: symbols.ModalityOpen,
		Flags:    symbols.FlagBuiltin | symbols.FlagNative,
		Type:     result,
	})
	for i, pt := range params {
		param := r.newSymbol(symbols.Symbol{
			Name:  r.table.Strings.Intern(paramName(i)),
			Kind:  symbols.SymbolParameter,
			Owner: id,
			Flags: symbols.FlagBuiltin,
			Type:  pt,
		})
		r.edit(id).Params = append(r.sym(id).Params, param)
	}
	r.table.Declare(owner.ClassScopes.Members, id)
	return id
}

func (p *preludeBuilder) property(cls symbols.SymbolID, name string, t types.TypeID) {
	r := p.r
	id := r.newSymbol(symbols.Symbol{
		Name:  r.table.Strings.Intern(name),
		Kind:  symbols.SymbolVariable,
		Owner: cls,
		Flags: symbols.FlagBuiltin | symbols.FlagProperty,
		Type:  t,
	})
	r.table.Declare(r.sym(cls).ClassScopes.Members, id)
}

func (p *preludeBuilder) constructor(cls symbols.SymbolID) {
	r := p.r
	id := r.newSymbol(symbols.Symbol{
		Name:  r.initName,
		Kind:  symbols.SymbolConstructor,
		Owner: cls,
		Flags: symbols.FlagBuiltin | symbols.FlagPrimary,
		Type:  r.sym(cls).DefaultType,
	})
	r.table.Declare(r.sym(cls).ClassScopes.Members, id)
}

func paramName(i int) string {
	return string(rune('a' + i))
}
