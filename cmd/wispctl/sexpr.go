package main

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/wisplang/wisp/syntax/packtest"
)

// This file implements the "tiny s-expression surface syntax" gen-fixture
// compiles into a packed syntax tree, standing in for the real
// tokenizer/lexer this module doesn't implement. It is deliberately
// minimal: just enough surface to fabricate fixtures exercising every
// frame kind by hand, not a real language front end.
//
// Grammar (space-separated top-level forms, each a program statement):
//
//	program  := form*
//	form     := atom | "(" "var" binding+ ")" | "(" expr expr* ")"
//	binding  := "(" symbol expr ")"
//	expr     := atom | "(" expr expr* ")"
//	atom     := integer | "#t" | "#f" | "\"" ... "\"" | symbol
//
// A list whose head is not literally "var" compiles as a call expression
// (callee expr, applied to the remaining elements as arguments).

type sexpr struct {
	atom     string
	isAtom   bool
	isString bool
	items    []sexpr
}

type parser struct {
	src []rune
	pos int
}

func newParser(src string) *parser { return &parser{src: []rune(src)} }

func (p *parser) skipSpace() {
	for p.pos < len(p.src) && unicode.IsSpace(p.src[p.pos]) {
		p.pos++
	}
}

func (p *parser) atEnd() bool {
	p.skipSpace()
	return p.pos >= len(p.src)
}

func (p *parser) parseForm() (sexpr, error) {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return sexpr{}, fmt.Errorf("wispctl: unexpected end of input")
	}
	if p.src[p.pos] == '(' {
		return p.parseList()
	}
	return p.parseAtom()
}

func (p *parser) parseList() (sexpr, error) {
	p.pos++ // consume '('
	var items []sexpr
	for {
		p.skipSpace()
		if p.pos >= len(p.src) {
			return sexpr{}, fmt.Errorf("wispctl: unterminated list")
		}
		if p.src[p.pos] == ')' {
			p.pos++
			return sexpr{items: items}, nil
		}
		item, err := p.parseForm()
		if err != nil {
			return sexpr{}, err
		}
		items = append(items, item)
	}
}

func (p *parser) parseAtom() (sexpr, error) {
	if p.src[p.pos] == '"' {
		return p.parseString()
	}
	start := p.pos
	for p.pos < len(p.src) && !unicode.IsSpace(p.src[p.pos]) && p.src[p.pos] != '(' && p.src[p.pos] != ')' {
		p.pos++
	}
	if p.pos == start {
		return sexpr{}, fmt.Errorf("wispctl: unexpected character %q", p.src[p.pos])
	}
	return sexpr{atom: string(p.src[start:p.pos]), isAtom: true}, nil
}

func (p *parser) parseString() (sexpr, error) {
	p.pos++ // consume opening quote
	start := p.pos
	for p.pos < len(p.src) && p.src[p.pos] != '"' {
		p.pos++
	}
	if p.pos >= len(p.src) {
		return sexpr{}, fmt.Errorf("wispctl: unterminated string literal")
	}
	s := string(p.src[start:p.pos])
	p.pos++ // consume closing quote
	return sexpr{atom: s, isAtom: true, isString: true}, nil
}

// parseProgram parses every top-level form in src.
func parseProgram(src string) ([]sexpr, error) {
	p := newParser(src)
	var forms []sexpr
	for !p.atEnd() {
		f, err := p.parseForm()
		if err != nil {
			return nil, err
		}
		forms = append(forms, f)
	}
	return forms, nil
}

// compiler threads a Builder through compileForm/compileExpr, mirroring
// how function.Function's params slice is built incrementally rather than
// all at once.
type compiler struct {
	b *packtest.Builder
}

func (c *compiler) compileForm(f sexpr) (int, error) {
	if !f.isAtom && len(f.items) > 0 && f.items[0].isAtom && f.items[0].atom == "var" {
		return c.compileVar(f.items[1:])
	}
	return c.compileExpr(f)
}

func (c *compiler) compileVar(bindingForms []sexpr) (int, error) {
	bindings := make([]packtest.Binding, 0, len(bindingForms))
	for _, bf := range bindingForms {
		if bf.isAtom || len(bf.items) != 2 || !bf.items[0].isAtom {
			return 0, fmt.Errorf("wispctl: malformed var binding %v", bf)
		}
		valuePos, err := c.compileExpr(bf.items[1])
		if err != nil {
			return 0, err
		}
		bindings = append(bindings, packtest.Binding{Name: bf.items[0].atom, Value: valuePos})
	}
	return c.b.Var(bindings...), nil
}

func (c *compiler) compileExpr(e sexpr) (int, error) {
	if e.isAtom {
		return c.compileAtom(e)
	}
	if len(e.items) == 0 {
		return 0, fmt.Errorf("wispctl: empty call expression")
	}
	callee, err := c.compileExpr(e.items[0])
	if err != nil {
		return 0, err
	}
	args := make([]int, 0, len(e.items)-1)
	for _, a := range e.items[1:] {
		pos, err := c.compileExpr(a)
		if err != nil {
			return 0, err
		}
		args = append(args, pos)
	}
	return c.b.Call(callee, args...), nil
}

func (c *compiler) compileAtom(e sexpr) (int, error) {
	if e.isString {
		return c.b.String(e.atom), nil
	}
	switch e.atom {
	case "#t":
		return c.b.Boolean(true), nil
	case "#f":
		return c.b.Boolean(false), nil
	case "undefined":
		return c.b.Undefined(), nil
	}
	if v, err := strconv.ParseInt(e.atom, 10, 64); err == nil {
		return c.b.Integer(v), nil
	}
	if !isValidIdentifier(e.atom) {
		return 0, fmt.Errorf("wispctl: invalid identifier %q", e.atom)
	}
	return c.b.Identifier(e.atom), nil
}

func isValidIdentifier(s string) bool {
	return len(s) > 0 && !strings.ContainsAny(s, "()")
}

// compileProgram parses and compiles src into a File-rooted tree.
func compileProgram(src string) (*packtest.Builder, error) {
	forms, err := parseProgram(src)
	if err != nil {
		return nil, err
	}
	b := packtest.NewBuilder()
	c := &compiler{b: b}
	stmts := make([]int, 0, len(forms))
	for _, f := range forms {
		pos, err := c.compileForm(f)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, pos)
	}
	b.File(stmts...)
	return b, nil
}
