package treefile

import (
	"fmt"
	"slices"
	"strconv"

	"lumen/internal/ast"
	"lumen/internal/source"
)

var modifierNames = map[string]ast.Modifiers{
	"open":      ast.ModOpen,
	"abstract":  ast.ModAbstract,
	"final":     ast.ModFinal,
	"public":    ast.ModPublic,
	"private":   ast.ModPrivate,
	"protected": ast.ModProtected,
	"override":  ast.ModOverride,
	"static":    ast.ModStatic,
	"native":    ast.ModNative,
	"inline":    ast.ModInline,
}

var binaryOps = map[tokKind]ast.BinaryOp{
	tokEqEq:   ast.OpEq,
	tokBangEq: ast.OpNotEq,
	tokLt:     ast.OpLess,
	tokGt:     ast.OpGreater,
	tokPlus:   ast.OpAdd,
	tokMinus:  ast.OpSub,
	tokStar:   ast.OpMul,
	tokSlash:  ast.OpDiv,
}

// precedence levels, loosest first.
var binaryLevels = [][]tokKind{
	{tokEqEq, tokBangEq},
	{tokLt, tokGt},
	{tokPlus, tokMinus},
	{tokStar, tokSlash},
}

// parser reads one snippet. Every node it creates gets a span on the
// snippet's line, offset by the token's column.
type parser struct {
	b    *ast.Builder
	toks []token
	pos  int
	base source.Span
}

func newParser(b *ast.Builder, file source.FileID, s Scalar) (*parser, error) {
	toks, err := lex(s.Text)
	if err != nil {
		return nil, err
	}
	return &parser{
		b:    b,
		toks: toks,
		base: spanAt(file, s.Line, s.Col),
	}, nil
}

func (p *parser) tok() token { return p.toks[p.pos] }

func (p *parser) at(kind tokKind) bool { return p.tok().kind == kind }

func (p *parser) atWord(word string) bool {
	t := p.tok()
	return t.kind == tokIdent && t.text == word
}

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) accept(kind tokKind) bool {
	if p.at(kind) {
		p.next()
		return true
	}
	return false
}

func (p *parser) expect(kind tokKind) (token, error) {
	if !p.at(kind) {
		return token{}, p.errorf("expected %s, found %s", kind, p.describe())
	}
	return p.next(), nil
}

func (p *parser) ident() (token, error) {
	t, err := p.expect(tokIdent)
	if err != nil {
		return t, err
	}
	if reserved(t.text) {
		return t, fmt.Errorf("column %d: %q is reserved", p.base.Col+uint32(t.off), t.text)
	}
	return t, nil
}

func (p *parser) describe() string {
	t := p.tok()
	if t.kind == tokEOF || t.text == "" {
		return t.kind.String()
	}
	return strconv.Quote(t.text)
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("column %d: %s", p.base.Col+uint32(p.tok().off), fmt.Sprintf(format, args...))
}

func (p *parser) finish() error {
	if !p.at(tokEOF) {
		return p.errorf("unexpected %s", p.describe())
	}
	return nil
}

func (p *parser) span(t token) source.Span {
	sp := p.base
	sp.Col += uint32(t.off)
	return sp
}

func reserved(word string) bool {
	switch word {
	case "val", "var", "this", "return", "true", "false", "null", "This":
		return true
	}
	return false
}

// typeRef parses `a.b.C<X, Y>?`, `(A, B) -> R`, `This` and parenthesised
// types.
func (p *parser) typeRef() (ast.TypeRefID, error) {
	start := p.tok()
	var id ast.TypeRefID
	switch {
	case p.atWord("This"):
		p.next()
		id = p.b.NewTypeRef(ast.TypeRef{Kind: ast.TypeRefSelf, Span: p.span(start)})
	case p.at(tokLParen):
		p.next()
		var params []ast.TypeRefID
		for !p.at(tokRParen) {
			param, err := p.typeRef()
			if err != nil {
				return ast.NoTypeRefID, err
			}
			params = append(params, param)
			if !p.accept(tokComma) {
				break
			}
		}
		if _, err := p.expect(tokRParen); err != nil {
			return ast.NoTypeRefID, err
		}
		if !p.accept(tokArrow) {
			if len(params) != 1 {
				return ast.NoTypeRefID, p.errorf("expected '->' after parameter types")
			}
			id = params[0]
			break
		}
		result, err := p.typeRef()
		if err != nil {
			return ast.NoTypeRefID, err
		}
		id = p.b.NewTypeRef(ast.TypeRef{Kind: ast.TypeRefFunction, Span: p.span(start), Params: params, Result: result})
	default:
		var path []source.StringID
		for {
			seg, err := p.ident()
			if err != nil {
				return ast.NoTypeRefID, err
			}
			path = append(path, p.b.Intern(seg.text))
			if !p.accept(tokDot) {
				break
			}
		}
		var args []ast.TypeRefID
		if p.at(tokLt) {
			var err error
			if args, err = p.typeArgs(); err != nil {
				return ast.NoTypeRefID, err
			}
		}
		id = p.b.NewTypeRef(ast.TypeRef{Kind: ast.TypeRefNamed, Span: p.span(start), Path: path, Args: args})
	}
	if p.accept(tokQuestion) {
		p.b.Tree.TypeRef(id).Nullable = true
	}
	return id, nil
}

func (p *parser) typeArgs() ([]ast.TypeRefID, error) {
	if _, err := p.expect(tokLt); err != nil {
		return nil, err
	}
	var args []ast.TypeRefID
	for {
		arg, err := p.typeRef()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if !p.accept(tokComma) {
			break
		}
	}
	if _, err := p.expect(tokGt); err != nil {
		return nil, err
	}
	return args, nil
}

// typeParam parses `T`, `T : Bound`, `T new(A, B)` or `T : Bound new()`.
func (p *parser) typeParam() (ast.TypeParamID, error) {
	name, err := p.ident()
	if err != nil {
		return ast.NoTypeParamID, err
	}
	tp := ast.TypeParam{Span: p.span(name), Name: p.b.Intern(name.text)}
	if p.accept(tokColon) {
		if tp.Bound, err = p.typeRef(); err != nil {
			return ast.NoTypeParamID, err
		}
	}
	if p.atWord("new") {
		p.next()
		tp.HasCtor = true
		if _, err := p.expect(tokLParen); err != nil {
			return ast.NoTypeParamID, err
		}
		for !p.at(tokRParen) {
			arg, err := p.typeRef()
			if err != nil {
				return ast.NoTypeParamID, err
			}
			tp.Ctor = append(tp.Ctor, arg)
			if !p.accept(tokComma) {
				break
			}
		}
		if _, err := p.expect(tokRParen); err != nil {
			return ast.NoTypeParamID, err
		}
	}
	return p.b.NewTypeParam(tp), p.finish()
}

// param parses `[mods] [val|var] name: Type [= default]`. Property params are
// only accepted when allowProperty is set.
func (p *parser) param(allowProperty bool) (ast.ParamID, error) {
	start := p.tok()
	var mods ast.Modifiers
	for {
		t := p.tok()
		mod, ok := modifierNames[t.text]
		if t.kind != tokIdent || !ok || p.toks[p.pos+1].kind != tokIdent {
			break
		}
		mods |= mod
		p.next()
	}
	prm := ast.Param{Span: p.span(start), Mods: mods}
	if p.atWord("val") || p.atWord("var") {
		if !allowProperty {
			return ast.NoParamID, p.errorf("val/var is only allowed on primary constructor parameters")
		}
		prm.Property = true
		prm.Mutable = p.next().text == "var"
	}
	name, err := p.ident()
	if err != nil {
		return ast.NoParamID, err
	}
	prm.Name = p.b.Intern(name.text)
	if _, err := p.expect(tokColon); err != nil {
		return ast.NoParamID, err
	}
	if prm.Type, err = p.typeRef(); err != nil {
		return ast.NoParamID, err
	}
	if p.accept(tokAssign) {
		if prm.Default, err = p.expr(); err != nil {
			return ast.NoParamID, err
		}
	}
	return p.b.NewParam(prm), p.finish()
}

// superEntry parses `Base<T>` or `Base<T>(args)`.
func (p *parser) superEntry() (ast.SuperEntry, error) {
	start := p.tok()
	typ, err := p.typeRef()
	if err != nil {
		return ast.SuperEntry{}, err
	}
	entry := ast.SuperEntry{Span: p.span(start), Type: typ}
	if p.at(tokLParen) {
		entry.Call = true
		if entry.Args, err = p.args(); err != nil {
			return ast.SuperEntry{}, err
		}
	}
	return entry, p.finish()
}

func (p *parser) args() ([]ast.ExprID, error) {
	if _, err := p.expect(tokLParen); err != nil {
		return nil, err
	}
	var args []ast.ExprID
	for !p.at(tokRParen) {
		arg, err := p.expr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if !p.accept(tokComma) {
			break
		}
	}
	if _, err := p.expect(tokRParen); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *parser) expr() (ast.ExprID, error) {
	switch {
	case p.atWord("val") || p.atWord("var"):
		return p.local()
	case p.atWord("return"):
		start := p.next()
		e := ast.Expr{Kind: ast.ExprReturn, Span: p.span(start)}
		if !p.at(tokEOF) && !p.at(tokSemicolon) && !p.at(tokRBrace) && !p.at(tokRParen) && !p.at(tokComma) {
			var err error
			if e.Operand, err = p.expr(); err != nil {
				return ast.NoExprID, err
			}
		}
		return p.b.NewExpr(e), nil
	}
	return p.binary(0)
}

func (p *parser) local() (ast.ExprID, error) {
	start := p.next()
	name, err := p.ident()
	if err != nil {
		return ast.NoExprID, err
	}
	e := ast.Expr{
		Kind:    ast.ExprLocal,
		Span:    p.span(start),
		Name:    p.b.Intern(name.text),
		Mutable: start.text == "var",
	}
	if p.accept(tokColon) {
		if e.Type, err = p.typeRef(); err != nil {
			return ast.NoExprID, err
		}
	}
	if p.accept(tokAssign) {
		if e.Init, err = p.expr(); err != nil {
			return ast.NoExprID, err
		}
	}
	return p.b.NewExpr(e), nil
}

func (p *parser) binary(level int) (ast.ExprID, error) {
	if level == len(binaryLevels) {
		return p.postfix()
	}
	left, err := p.binary(level + 1)
	if err != nil {
		return ast.NoExprID, err
	}
	for {
		t := p.tok()
		op, ok := binaryOps[t.kind]
		if !ok || !slices.Contains(binaryLevels[level], t.kind) {
			return left, nil
		}
		p.next()
		right, err := p.binary(level + 1)
		if err != nil {
			return ast.NoExprID, err
		}
		left = p.b.NewExpr(ast.Expr{Kind: ast.ExprBinary, Span: p.span(t), Op: op, Left: left, Right: right})
	}
}

func (p *parser) postfix() (ast.ExprID, error) {
	e, err := p.primary()
	if err != nil {
		return ast.NoExprID, err
	}
	for {
		t := p.tok()
		switch t.kind {
		case tokDot:
			p.next()
			name, err := p.ident()
			if err != nil {
				return ast.NoExprID, err
			}
			e = p.b.NewExpr(ast.Expr{Kind: ast.ExprMember, Span: p.span(name), Receiver: e, Name: p.b.Intern(name.text)})
		case tokLParen:
			args, err := p.args()
			if err != nil {
				return ast.NoExprID, err
			}
			e = p.b.NewExpr(ast.Expr{Kind: ast.ExprCall, Span: p.span(t), Callee: e, Args: args})
		case tokLt:
			typeArgs, ok := p.tryCallTypeArgs()
			if !ok {
				return e, nil
			}
			args, err := p.args()
			if err != nil {
				return ast.NoExprID, err
			}
			e = p.b.NewExpr(ast.Expr{Kind: ast.ExprCall, Span: p.span(t), Callee: e, Args: args, TypeArgs: typeArgs})
		default:
			return e, nil
		}
	}
}

// tryCallTypeArgs reads `<T, U>` when it is directly followed by an argument
// list; otherwise it rewinds so `<` is read as a comparison.
func (p *parser) tryCallTypeArgs() ([]ast.TypeRefID, bool) {
	save := p.pos
	args, err := p.typeArgs()
	if err != nil || !p.at(tokLParen) {
		p.pos = save
		return nil, false
	}
	return args, true
}

func (p *parser) primary() (ast.ExprID, error) {
	t := p.tok()
	switch t.kind {
	case tokInt:
		p.next()
		return p.literal(t, ast.LitInt, t.text), nil
	case tokDouble:
		p.next()
		return p.literal(t, ast.LitDouble, t.text), nil
	case tokString:
		p.next()
		value, err := strconv.Unquote(t.text)
		if err != nil {
			return ast.NoExprID, p.errorf("invalid string %s", t.text)
		}
		return p.literal(t, ast.LitString, value), nil
	case tokChar:
		p.next()
		return p.literal(t, ast.LitChar, t.text[1:len(t.text)-1]), nil
	case tokDollar:
		p.next()
		name, err := p.ident()
		if err != nil {
			return ast.NoExprID, err
		}
		return p.b.NewExpr(ast.Expr{Kind: ast.ExprBackingField, Span: p.span(t), Name: p.b.Intern(name.text)}), nil
	case tokLParen:
		p.next()
		e, err := p.expr()
		if err != nil {
			return ast.NoExprID, err
		}
		_, err = p.expect(tokRParen)
		return e, err
	case tokLBrace:
		return p.block()
	case tokIdent:
		switch t.text {
		case "true", "false":
			p.next()
			return p.literal(t, ast.LitBool, t.text), nil
		case "null":
			p.next()
			return p.literal(t, ast.LitNull, t.text), nil
		case "this":
			p.next()
			return p.b.NewExpr(ast.Expr{Kind: ast.ExprThis, Span: p.span(t)}), nil
		}
		name, err := p.ident()
		if err != nil {
			return ast.NoExprID, err
		}
		return p.b.NewExpr(ast.Expr{Kind: ast.ExprName, Span: p.span(name), Name: p.b.Intern(name.text)}), nil
	}
	return ast.NoExprID, p.errorf("expected an expression, found %s", p.describe())
}

func (p *parser) literal(t token, kind ast.LiteralKind, value string) ast.ExprID {
	return p.b.NewExpr(ast.Expr{Kind: ast.ExprLiteral, Span: p.span(t), Lit: kind, Value: value})
}

// block parses `{ item; item }`. Items may be separated by semicolons or
// simply juxtaposed.
func (p *parser) block() (ast.ExprID, error) {
	start, err := p.expect(tokLBrace)
	if err != nil {
		return ast.NoExprID, err
	}
	var items []ast.ExprID
	for {
		for p.accept(tokSemicolon) {
		}
		if p.at(tokRBrace) || p.at(tokEOF) {
			break
		}
		item, err := p.expr()
		if err != nil {
			return ast.NoExprID, err
		}
		items = append(items, item)
	}
	if _, err := p.expect(tokRBrace); err != nil {
		return ast.NoExprID, err
	}
	return p.b.NewExpr(ast.Expr{Kind: ast.ExprBlock, Span: p.span(start), Items: items}), nil
}

// exprSnippet parses a complete expression.
func (p *parser) exprSnippet() (ast.ExprID, error) {
	e, err := p.expr()
	if err != nil {
		return ast.NoExprID, err
	}
	return e, p.finish()
}

// typeSnippet parses a complete type reference.
func (p *parser) typeSnippet() (ast.TypeRefID, error) {
	t, err := p.typeRef()
	if err != nil {
		return ast.NoTypeRefID, err
	}
	return t, p.finish()
}
