package lang

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2021–2024 Janek Kallfass <janek@kallfass.io>

*/

import (
	"fmt"
	"strconv"

	"github.com/kallfass/mex"
)

// The expression grammar, with one level per precedence tier:
//
//	Expr     ::=  Or
//	Or       ::=  And { '||' And }
//	And      ::=  Cmp { '&&' Cmp }
//	Cmp      ::=  Add { ('=='|'!='|'<'|'<='|'>'|'>=') Add }
//	Add      ::=  Mul { ('+'|'-') Mul }
//	Mul      ::=  Unary { ('*'|'/') Unary }
//	Unary    ::=  ('!'|'-') Unary  |  Primary
//	Primary  ::=  number | string | 'true' | 'false'
//	         |    ident [ '(' Args ')' ] [ Lambda ]     // call, trailing lambda
//	         |    '(' Expr ')'
//	         |    Lambda
//	         |    '$'ident | '%'ident                   // template holes
//	Lambda   ::=  '{' [ ident {',' ident} '->' ] [ Expr ] '}'
//	Args     ::=  [ Expr { ',' Expr } ]
//
var binaryPrec = map[string]int{
	"||": 1,
	"&&": 2,
	"==": 3, "!=": 3, "<": 3, "<=": 3, ">": 3, ">=": 3,
	"+": 4, "-": 4,
	"*": 5, "/": 5,
}

// Parse parses a single expression from input and returns its syntax tree.
// sourceID names the input in node locations, typically a file name. Template
// holes are not valid in ordinary source; use ParseTemplate for quasiquoted
// template skeletons.
func Parse(sourceID string, input string) (*mex.Node, error) {
	p, err := newParser(sourceID, input, false)
	if err != nil {
		return nil, err
	}
	return p.parseAll()
}

// ParseTemplate parses quasiquoted template source: the expression language
// plus '$name' (expression-splice) and '%name' (value-splice) holes. Nodes of
// a template skeleton carry no source location; materialized trees are
// synthetic until the expansion driver stamps them with a call-site location.
func ParseTemplate(input string) (*mex.Node, error) {
	p, err := newParser("<template>", input, true)
	if err != nil {
		return nil, err
	}
	return p.parseAll()
}

// --- Parser ------------------------------------------------------------

type parser struct {
	scan       *Scanner
	lookahead  []Token
	allowHoles bool // accept '$name' / '%name' tokens
	synthetic  bool // suppress node locations (template mode)
	err        error
}

func newParser(sourceID string, input string, template bool) (*parser, error) {
	scan, err := NewScanner(sourceID, input)
	if err != nil {
		return nil, err
	}
	p := &parser{scan: scan, allowHoles: template, synthetic: template}
	scan.SetErrorHandler(func(e error) {
		if p.err == nil {
			p.err = e
		}
	})
	return p, nil
}

func (p *parser) parseAll() (*mex.Node, error) {
	n, err := p.expr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(0); tok.Type != EOF {
		return nil, p.unexpected(tok, "end of input")
	}
	if p.err != nil {
		return nil, p.err
	}
	tracer().Debugf("parsed expression %s", n)
	return n, nil
}

// peek returns the i-th token of lookahead without consuming it.
func (p *parser) peek(i int) Token {
	for len(p.lookahead) <= i {
		p.lookahead = append(p.lookahead, p.scan.NextToken())
	}
	return p.lookahead[i]
}

func (p *parser) peekIs(i int, lexeme string) bool {
	return p.peek(i).Type == TokenId(lexeme)
}

func (p *parser) next() Token {
	tok := p.peek(0)
	p.lookahead = p.lookahead[1:]
	return tok
}

// expect consumes the next token, which must have the given lexeme.
func (p *parser) expect(lexeme string) (Token, error) {
	tok := p.next()
	if tok.Type != TokenId(lexeme) {
		return tok, p.unexpected(tok, "'"+lexeme+"'")
	}
	return tok, nil
}

func (p *parser) unexpected(tok Token, wanted string) error {
	if tok.Type == EOF {
		return fmt.Errorf("%s: unexpected end of input, expected %s", tok.Loc, wanted)
	}
	return fmt.Errorf("%s: unexpected token %q, expected %s", tok.Loc, tok.Lexeme, wanted)
}

// at assigns a location, except in template mode.
func (p *parser) at(n *mex.Node, loc mex.Location) *mex.Node {
	if p.synthetic {
		return n
	}
	return n.At(loc)
}

// --- Productions ---------------------------------------------------------

func (p *parser) expr() (*mex.Node, error) {
	return p.binary(1)
}

func (p *parser) binary(minPrec int) (*mex.Node, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek(0)
		prec, isOp := binaryPrec[tok.Lexeme]
		if tok.Type == EOF || !isOp || prec < minPrec {
			return left, nil
		}
		p.next()
		right, err := p.binary(prec + 1) // left-associative
		if err != nil {
			return nil, err
		}
		loc := mex.Locate(left).Extend(tok.Loc).Extend(mex.Locate(right))
		left = p.at(mex.Binary(tok.Lexeme, left, right), loc)
	}
}

func (p *parser) unary() (*mex.Node, error) {
	tok := p.peek(0)
	if tok.Type == TokenId("!") || tok.Type == TokenId("-") {
		p.next()
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		loc := tok.Loc.Extend(mex.Locate(operand))
		return p.at(mex.Unary(tok.Lexeme, operand), loc), nil
	}
	return p.primary()
}

func (p *parser) primary() (*mex.Node, error) {
	tok := p.peek(0)
	switch {
	case tok.Type == Number:
		p.next()
		f, err := strconv.ParseFloat(tok.Lexeme, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: %v", tok.Loc, err)
		}
		return p.at(mex.Lit(f), tok.Loc), nil
	case tok.Type == String:
		p.next()
		lexeme := tok.Lexeme
		if len(lexeme) >= 2 { // trim off "…"
			lexeme = lexeme[1 : len(lexeme)-1]
		}
		return p.at(mex.Lit(lexeme), tok.Loc), nil
	case tok.Type == Boolean:
		p.next()
		return p.at(mex.Lit(tok.Lexeme == "true"), tok.Loc), nil
	case tok.Type == ExprVar:
		p.next()
		if !p.allowHoles {
			return nil, fmt.Errorf("%s: splice hole %q outside of template source", tok.Loc, tok.Lexeme)
		}
		return mex.Hole(mex.ExprHole, tok.Lexeme[1:]), nil
	case tok.Type == ValueVar:
		p.next()
		if !p.allowHoles {
			return nil, fmt.Errorf("%s: splice hole %q outside of template source", tok.Loc, tok.Lexeme)
		}
		return mex.Hole(mex.ValueHole, tok.Lexeme[1:]), nil
	case tok.Type == Ident:
		return p.identOrCall()
	case tok.Type == TokenId("("):
		p.next()
		inner, err := p.expr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(")"); err != nil {
			return nil, err
		}
		return inner, nil
	case tok.Type == TokenId("{"):
		return p.lambda()
	}
	return nil, p.unexpected(tok, "an expression")
}

// identOrCall parses a plain identifier, a call 'f(…)', or calls with a
// trailing lambda argument: 'f(…) { … }' and the shorthand 'f { … }'.
func (p *parser) identOrCall() (*mex.Node, error) {
	tok := p.next() // the identifier
	loc := tok.Loc
	if !p.peekIs(0, "(") && !p.peekIs(0, "{") {
		return p.at(mex.Id(tok.Lexeme), loc), nil
	}
	var args []*mex.Node
	if p.peekIs(0, "(") {
		p.next()
		for !p.peekIs(0, ")") {
			arg, err := p.expr()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.peekIs(0, ",") {
				p.next()
				continue
			}
			break
		}
		closing, err := p.expect(")")
		if err != nil {
			return nil, err
		}
		loc = loc.Extend(closing.Loc)
	}
	if p.peekIs(0, "{") { // trailing lambda becomes the last argument
		lam, err := p.lambda()
		if err != nil {
			return nil, err
		}
		args = append(args, lam)
		loc = loc.Extend(mex.Locate(lam))
	}
	return p.at(mex.Call(tok.Lexeme, args...), loc), nil
}

// lambda parses '{ params -> body }', '{ body }' or '{}'.
func (p *parser) lambda() (*mex.Node, error) {
	open, err := p.expect("{")
	if err != nil {
		return nil, err
	}
	if p.peekIs(0, "}") {
		closing := p.next()
		return p.at(mex.Lambda(nil, nil), open.Loc.Extend(closing.Loc)), nil
	}
	params := p.lambdaParams()
	body, err := p.expr()
	if err != nil {
		return nil, err
	}
	closing, err := p.expect("}")
	if err != nil {
		return nil, err
	}
	return p.at(mex.Lambda(params, body), open.Loc.Extend(closing.Loc)), nil
}

// lambdaParams consumes 'ident {',' ident} "->"' if the lookahead matches,
// and returns the parameter names. Otherwise nothing is consumed and the
// lambda has no declared parameters.
func (p *parser) lambdaParams() []string {
	var params []string
	i := 0
	for {
		if p.peek(i).Type != Ident {
			return nil
		}
		params = append(params, p.peek(i).Lexeme)
		i++
		if p.peekIs(i, ",") {
			i++
			continue
		}
		if p.peekIs(i, "->") {
			for ; i >= 0; i-- { // consume params and the arrow
				p.next()
			}
			return params
		}
		return nil
	}
}
