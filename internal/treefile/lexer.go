package treefile

import (
	"fmt"
	"strings"
)

type tokKind uint8

const (
	tokEOF tokKind = iota
	tokIdent
	tokInt
	tokDouble
	tokString
	tokChar
	tokLParen
	tokRParen
	tokLBrace
	tokRBrace
	tokLt
	tokGt
	tokComma
	tokDot
	tokColon
	tokSemicolon
	tokQuestion
	tokArrow
	tokAssign
	tokEqEq
	tokBangEq
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokDollar
)

var tokNames = [...]string{
	tokEOF:       "end of text",
	tokIdent:     "identifier",
	tokInt:       "integer",
	tokDouble:    "number",
	tokString:    "string",
	tokChar:      "character",
	tokLParen:    "'('",
	tokRParen:    "')'",
	tokLBrace:    "'{'",
	tokRBrace:    "'}'",
	tokLt:        "'<'",
	tokGt:        "'>'",
	tokComma:     "','",
	tokDot:       "'.'",
	tokColon:     "':'",
	tokSemicolon: "';'",
	tokQuestion:  "'?'",
	tokArrow:     "'->'",
	tokAssign:    "'='",
	tokEqEq:      "'=='",
	tokBangEq:    "'!='",
	tokPlus:      "'+'",
	tokMinus:     "'-'",
	tokStar:      "'*'",
	tokSlash:     "'/'",
	tokDollar:    "'$'",
}

func (k tokKind) String() string {
	if int(k) < len(tokNames) {
		return tokNames[k]
	}
	return "token"
}

// token is one lexeme of an embedded type or expression snippet. Off is the
// byte offset inside the snippet.
type token struct {
	kind tokKind
	text string
	off  int
}

type cursor struct {
	src string
	off int
}

func (c *cursor) eof() bool { return c.off >= len(c.src) }

func (c *cursor) peek() byte {
	if c.eof() {
		return 0
	}
	return c.src[c.off]
}

func (c *cursor) peek2() byte {
	if c.off+1 >= len(c.src) {
		return 0
	}
	return c.src[c.off+1]
}

func (c *cursor) bump() byte {
	if c.eof() {
		return 0
	}
	b := c.src[c.off]
	c.off++
	return b
}

func isIdentStart(b byte) bool {
	return b == '_' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= 0x80
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isIdentContinue(b byte) bool { return isIdentStart(b) || isDigit(b) }

// lex splits a snippet into tokens. The result always ends with tokEOF.
func lex(src string) ([]token, error) {
	c := cursor{src: src}
	var out []token
	for {
		for !c.eof() && strings.IndexByte(" \t\r\n", c.peek()) >= 0 {
			c.bump()
		}
		start := c.off
		if c.eof() {
			return append(out, token{kind: tokEOF, off: start}), nil
		}
		tok, err := scan(&c)
		if err != nil {
			return nil, err
		}
		tok.off = start
		tok.text = src[start:c.off]
		out = append(out, tok)
	}
}

func scan(c *cursor) (token, error) {
	start := c.off
	b := c.peek()
	switch {
	case isIdentStart(b):
		for !c.eof() && isIdentContinue(c.peek()) {
			c.bump()
		}
		return token{kind: tokIdent}, nil
	case isDigit(b):
		kind := tokInt
		for !c.eof() && isDigit(c.peek()) {
			c.bump()
		}
		if c.peek() == '.' && isDigit(c.peek2()) {
			kind = tokDouble
			c.bump()
			for !c.eof() && isDigit(c.peek()) {
				c.bump()
			}
		}
		return token{kind: kind}, nil
	case b == '"' || b == '\'':
		return scanQuoted(c, b)
	}

	c.bump()
	two := func(next byte, long, short tokKind) token {
		if c.peek() == next {
			c.bump()
			return token{kind: long}
		}
		return token{kind: short}
	}
	switch b {
	case '(':
		return token{kind: tokLParen}, nil
	case ')':
		return token{kind: tokRParen}, nil
	case '{':
		return token{kind: tokLBrace}, nil
	case '}':
		return token{kind: tokRBrace}, nil
	case '<':
		return token{kind: tokLt}, nil
	case '>':
		return token{kind: tokGt}, nil
	case ',':
		return token{kind: tokComma}, nil
	case '.':
		return token{kind: tokDot}, nil
	case ':':
		return token{kind: tokColon}, nil
	case ';':
		return token{kind: tokSemicolon}, nil
	case '?':
		return token{kind: tokQuestion}, nil
	case '+':
		return token{kind: tokPlus}, nil
	case '*':
		return token{kind: tokStar}, nil
	case '/':
		return token{kind: tokSlash}, nil
	case '$':
		return token{kind: tokDollar}, nil
	case '-':
		return two('>', tokArrow, tokMinus), nil
	case '=':
		return two('=', tokEqEq, tokAssign), nil
	case '!':
		if c.peek() == '=' {
			c.bump()
			return token{kind: tokBangEq}, nil
		}
	}
	return token{}, fmt.Errorf("unexpected character %q at offset %d", b, start)
}

func scanQuoted(c *cursor, quote byte) (token, error) {
	start := c.off
	c.bump()
	for !c.eof() {
		switch c.bump() {
		case '\\':
			c.bump()
		case quote:
			if quote == '"' {
				return token{kind: tokString}, nil
			}
			return token{kind: tokChar}, nil
		}
	}
	return token{}, fmt.Errorf("unterminated literal at offset %d", start)
}
