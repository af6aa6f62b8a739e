// Copyright 2018 The gg Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package parser

import (
	"strings"

	"github.com/scholzdev/ghook/internal/ast"
	"github.com/scholzdev/ghook/internal/diagnostics"
	"github.com/scholzdev/ghook/internal/lexer"
	"github.com/scholzdev/ghook/internal/span"
	"github.com/scholzdev/ghook/internal/token"
)

// Expression precedence, lowest to highest binding, per spec.md §4.2:
//
//	or > and > (== != < <= > >=) > (+ -) > (* / %) > unary > postfix

func (p *parser) parseExpression() (ast.Expr, error) {
	return p.parseOr()
}

func (p *parser) parseOr() (ast.Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.at(token.KwOr) {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Base: base(span.Merge(left.Span(), right.Span())), Left: left, Op: ast.OpOr, Right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (ast.Expr, error) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	for p.at(token.KwAnd) {
		p.advance()
		right, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Base: base(span.Merge(left.Span(), right.Span())), Left: left, Op: ast.OpAnd, Right: right}
	}
	return left, nil
}

var comparisonOps = map[token.Kind]ast.BinaryOp{
	token.EqEq:  ast.OpEq,
	token.NotEq: ast.OpNe,
	token.Lt:    ast.OpLt,
	token.LtEq:  ast.OpLe,
	token.Gt:    ast.OpGt,
	token.GtEq:  ast.OpGe,
}

func (p *parser) parseComparison() (ast.Expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := comparisonOps[p.cur().Kind]
		if !ok {
			return left, nil
		}
		p.advance()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Base: base(span.Merge(left.Span(), right.Span())), Left: left, Op: op, Right: right}
	}
}

func (p *parser) parseAdditive() (ast.Expr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.at(token.Plus) || p.at(token.Minus) {
		op := ast.OpAdd
		if p.cur().Kind == token.Minus {
			op = ast.OpSub
		}
		p.advance()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Base: base(span.Merge(left.Span(), right.Span())), Left: left, Op: op, Right: right}
	}
	return left, nil
}

var multiplicativeOps = map[token.Kind]ast.BinaryOp{
	token.Star:    ast.OpMul,
	token.Slash:   ast.OpDiv,
	token.Percent: ast.OpMod,
}

func (p *parser) parseMultiplicative() (ast.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := multiplicativeOps[p.cur().Kind]
		if !ok {
			return left, nil
		}
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Base: base(span.Merge(left.Span(), right.Span())), Left: left, Op: op, Right: right}
	}
}

func (p *parser) parseUnary() (ast.Expr, error) {
	if p.at(token.KwNot) {
		start := p.cur().Span
		p.advance()
		e, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Base: base(span.Merge(start, e.Span())), Op: ast.OpNot, Expr: e}, nil
	}
	if p.at(token.Minus) {
		start := p.cur().Span
		p.advance()
		e, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Base: base(span.Merge(start, e.Span())), Op: ast.OpNeg, Expr: e}, nil
	}
	return p.parsePostfix()
}

func (p *parser) parsePostfix() (ast.Expr, error) {
	e, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.cur().Kind {
		case token.Dot:
			p.advance()
			// A property or method name may share a keyword's spelling,
			// as in git.commit.message.
			name := p.cur()
			if name.Kind != token.Identifier && token.Keywords[name.Text] != name.Kind {
				return nil, p.unexpectedToken(token.Identifier)
			}
			p.advance()
			if p.at(token.LParen) {
				args, end, err := p.parseArgList()
				if err != nil {
					return nil, err
				}
				e = &ast.MethodCall{Base: base(span.Merge(e.Span(), end)), Receiver: e, Method: name.Text, Args: args}
				continue
			}
			e = &ast.PropertyAccess{Base: base(span.Merge(e.Span(), name.Span)), Receiver: e, Name: name.Text}
		case token.LBracket:
			p.advance()
			idx, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			end, err := p.expect(token.RBracket)
			if err != nil {
				return nil, err
			}
			e = &ast.IndexAccess{Base: base(span.Merge(e.Span(), end.Span)), Receiver: e, Index: idx}
		case token.LParen:
			// A bare call, e.g. `len(x)`: the receiver is the identifier
			// itself and Method is left empty so the evaluator resolves a
			// free function instead of a property lookup (spec.md §4.3).
			if _, ok := e.(*ast.Ident); !ok {
				return e, nil
			}
			args, end, err := p.parseArgList()
			if err != nil {
				return nil, err
			}
			e = &ast.MethodCall{Base: base(span.Merge(e.Span(), end)), Receiver: e, Method: "", Args: args}
		default:
			return e, nil
		}
	}
}

func (p *parser) parseArgList() ([]ast.Expr, span.Span, error) {
	if _, err := p.expect(token.LParen); err != nil {
		return nil, span.Span{}, err
	}
	var args []ast.Expr
	for !p.at(token.RParen) {
		arg, err := p.parseExpression()
		if err != nil {
			return nil, span.Span{}, err
		}
		args = append(args, arg)
		if p.at(token.Comma) {
			p.advance()
			continue
		}
		break
	}
	end, err := p.expect(token.RParen)
	if err != nil {
		return nil, span.Span{}, err
	}
	return args, end.Span, nil
}

func (p *parser) parsePrimary() (ast.Expr, error) {
	t := p.cur()
	switch t.Kind {
	case token.String:
		p.advance()
		return p.parseStringLiteral(t)
	case token.Number:
		p.advance()
		return ast.NewNumberLit(t.Span, t.Num), nil
	case token.KwTrue:
		p.advance()
		return ast.NewBoolLit(t.Span, true), nil
	case token.KwFalse:
		p.advance()
		return ast.NewBoolLit(t.Span, false), nil
	case token.KwNull:
		p.advance()
		return ast.NewNullLit(t.Span), nil
	case token.KwIf:
		return p.parseIfExpr()
	case token.Identifier:
		// One-token lookahead distinguishes `x => expr` closures from a
		// plain identifier reference, per spec.md §4.2's note that the
		// grammar needs no backtracking here.
		if p.pos+1 < len(p.toks) && p.toks[p.pos+1].Kind == token.Arrow {
			p.advance()
			p.advance() // '=>'
			body, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			return &ast.Closure{Base: base(span.Merge(t.Span, body.Span())), Param: t.Text, Body: body}, nil
		}
		p.advance()
		return ast.NewIdent(t.Span, t.Text), nil
	case token.LParen:
		p.advance()
		e, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RParen); err != nil {
			return nil, err
		}
		return e, nil
	case token.LBracket:
		return p.parseArrayLit()
	}
	return nil, p.unexpectedToken(token.Identifier)
}

func (p *parser) parseArrayLit() (ast.Expr, error) {
	start := p.cur().Span
	p.advance() // '['
	var items []ast.Expr
	for !p.at(token.RBracket) {
		item, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		if p.at(token.Comma) {
			p.advance()
			continue
		}
		break
	}
	end, err := p.expect(token.RBracket)
	if err != nil {
		return nil, err
	}
	return &ast.ArrayLit{Base: base(span.Merge(start, end.Span)), Items: items}, nil
}

// parseIfExpr parses the expression-level ternary `if COND then EXPR
// else EXPR`. Statement-level `if` is dispatched separately by
// parseStatement and never reaches here, so there is no ambiguity
// between the two forms (spec.md §4.2).
func (p *parser) parseIfExpr() (ast.Expr, error) {
	start := p.cur().Span
	p.advance() // 'if'
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.KwThen); err != nil {
		return nil, err
	}
	then, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.KwElse); err != nil {
		return nil, err
	}
	els, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &ast.IfExpr{Base: base(span.Merge(start, els.Span())), Cond: cond, Then: then, Else: els}, nil
}

// parseStringLiteral splits a decoded string token's text on `${...}`
// placeholders, re-lexing and re-parsing each one as its own expression,
// per spec.md §4.3. A string with no placeholder parses as a plain
// StringLit.
func (p *parser) parseStringLiteral(t token.Token) (ast.Expr, error) {
	text := t.Text
	if !strings.Contains(text, "${") {
		return ast.NewStringLit(t.Span, text), nil
	}
	var parts []ast.InterpolatedStringPart
	i := 0
	for i < len(text) {
		start := strings.Index(text[i:], "${")
		if start < 0 {
			parts = append(parts, ast.InterpolatedStringPart{Literal: text[i:]})
			break
		}
		start += i
		if start > i {
			parts = append(parts, ast.InterpolatedStringPart{Literal: text[i:start]})
		}
		depth := 1
		j := start + 2
		for j < len(text) && depth > 0 {
			switch text[j] {
			case '{':
				depth++
			case '}':
				depth--
			}
			if depth == 0 {
				break
			}
			j++
		}
		if depth != 0 {
			return nil, diagnostics.New(diagnostics.InvalidSyntax, t.Span, "unterminated ${...} interpolation in string")
		}
		sub := text[start+2 : j]
		expr, err := parseSubExpression(sub, t.Span)
		if err != nil {
			return nil, err
		}
		parts = append(parts, ast.InterpolatedStringPart{Expr: expr})
		i = j + 1
	}
	return &ast.InterpolatedString{Base: base(t.Span), Parts: parts}, nil
}

// parseSubExpression re-lexes and parses the contents of a `${...}`
// placeholder as a standalone expression. GHook has no bare-expression
// statement, so interpolation bodies are parsed directly through the
// expression grammar rather than routed through parseStatement.
func parseSubExpression(src string, enclosing span.Span) (ast.Expr, error) {
	toks, err := lexer.Tokenize(src)
	if err != nil {
		if de, ok := err.(*diagnostics.Error); ok {
			de.Span = enclosing
		}
		return nil, err
	}
	p := &parser{toks: toks}
	e, err := p.parseExpression()
	if err != nil {
		if de, ok := err.(*diagnostics.Error); ok {
			de.Span = enclosing
		}
		return nil, err
	}
	p.skipSeparators()
	if !p.at(token.EOF) {
		return nil, diagnostics.New(diagnostics.InvalidSyntax, enclosing, "unexpected trailing tokens in interpolation")
	}
	return e, nil
}
