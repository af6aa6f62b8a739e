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

// Package parser implements the GHook recursive-descent statement parser
// and Pratt-style expression parser described in spec.md §4.2.
package parser

import (
	"github.com/scholzdev/ghook/internal/ast"
	"github.com/scholzdev/ghook/internal/diagnostics"
	"github.com/scholzdev/ghook/internal/lexer"
	"github.com/scholzdev/ghook/internal/span"
	"github.com/scholzdev/ghook/internal/token"
)

// Parse tokenizes and parses source into a sequence of top-level
// statements.
func Parse(source string) ([]ast.Stmt, error) {
	toks, err := lexer.Tokenize(source)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	return p.parseStatements(token.EOF)
}

type parser struct {
	toks []token.Token
	pos  int
}

func base(sp span.Span) ast.Base { return ast.Base{Sp: sp} }

func (p *parser) cur() token.Token {
	if p.pos >= len(p.toks) {
		return p.toks[len(p.toks)-1] // EOF
	}
	return p.toks[p.pos]
}

func (p *parser) at(kind token.Kind) bool {
	return p.cur().Kind == kind
}

func (p *parser) advance() token.Token {
	t := p.cur()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

// skipSeparators skips Newline and Comment tokens, the statement
// separators spec.md §4.2 says are transparently skipped between
// statements.
func (p *parser) skipSeparators() {
	for p.at(token.Newline) || p.at(token.Comment) {
		p.advance()
	}
}

func (p *parser) expect(kind token.Kind) (token.Token, error) {
	if p.cur().Kind != kind {
		return token.Token{}, p.unexpectedToken(kind)
	}
	return p.advance(), nil
}

func (p *parser) unexpectedToken(expected token.Kind) *diagnostics.Error {
	got := p.cur()
	e := &diagnostics.Error{
		Kind: diagnostics.UnexpectedToken, HasSpan: true,
		Span:    got.Span,
		Message: "expected " + expected.String() + ", found " + got.Kind.String(),
	}
	if got.Kind == token.Identifier {
		if sug, ok := suggestKeyword(got.Text); ok {
			e.Suggestion = "did you mean '" + sug + "'?"
		}
	}
	return e
}

func (p *parser) invalidSyntax(sp span.Span, msg string) *diagnostics.Error {
	return &diagnostics.Error{Kind: diagnostics.InvalidSyntax, HasSpan: true, Span: sp, Message: msg}
}

func (p *parser) statementError() *diagnostics.Error {
	got := p.cur()
	e := &diagnostics.Error{
		Kind: diagnostics.InvalidSyntax, HasSpan: true, Span: got.Span,
		Message: "expected a statement, found " + got.Kind.String(),
	}
	if got.Kind == token.Identifier {
		if sug, ok := suggestKeyword(got.Text); ok {
			e.Suggestion = "did you mean '" + sug + "'?"
		}
	}
	return e
}

// parseStatements parses statements until it sees `until` (RBrace or
// EOF) at the top of the token stream.
func (p *parser) parseStatements(until token.Kind) ([]ast.Stmt, error) {
	var stmts []ast.Stmt
	for {
		p.skipSeparators()
		if p.at(until) {
			return stmts, nil
		}
		if p.at(token.EOF) {
			if until == token.EOF {
				return stmts, nil
			}
			return nil, p.unexpectedToken(until)
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
}

// parseBracedBody expects and consumes `{`, parses statements, and
// expects and consumes the matching `}`.
func (p *parser) parseBracedBody() ([]ast.Stmt, error) {
	if _, err := p.expect(token.LBrace); err != nil {
		return nil, err
	}
	body, err := p.parseStatements(token.RBrace)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RBrace); err != nil {
		return nil, err
	}
	return body, nil
}

func lastSpan(fallback span.Span, stmts []ast.Stmt) span.Span {
	if len(stmts) == 0 {
		return fallback
	}
	return stmts[len(stmts)-1].Span()
}

func (p *parser) parseStatement() (ast.Stmt, error) {
	start := p.cur().Span
	switch p.cur().Kind {
	case token.KwRun:
		p.advance()
		cmd, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		return &ast.Run{Base: base(span.Merge(start, cmd.Span())), Cmd: cmd}, nil
	case token.KwPrint:
		p.advance()
		e, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		return &ast.Print{Base: base(span.Merge(start, e.Span())), Expr: e}, nil
	case token.KwBlock:
		return p.parseBlockOrBlockIf(start)
	case token.KwWarn:
		return p.parseWarnOrWarnIf(start)
	case token.KwAllow:
		p.advance()
		cmd, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		return &ast.Allow{Base: base(span.Merge(start, cmd.Span())), Cmd: cmd}, nil
	case token.KwParallel:
		return p.parseParallel(start)
	case token.KwLet:
		return p.parseLet(start)
	case token.KwForeach:
		return p.parseForEach(start)
	case token.KwIf:
		return p.parseIfStatement(start)
	case token.KwMatch:
		return p.parseMatch(start)
	case token.KwMacro:
		return p.parseMacroDef(start)
	case token.At:
		return p.parseMacroCall(start)
	case token.KwImport:
		return p.parseImport(start)
	case token.KwUse:
		return p.parseUse(start)
	case token.KwGroup:
		return p.parseGroup(start)
	case token.KwTry:
		return p.parseTry(start)
	case token.KwBreak:
		p.advance()
		return ast.NewBreak(start), nil
	case token.KwContinue:
		p.advance()
		return ast.NewContinue(start), nil
	}
	return nil, p.statementError()
}

func (p *parser) parseBlockOrBlockIf(start span.Span) (ast.Stmt, error) {
	p.advance() // 'block'
	if p.at(token.KwIf) {
		return p.parseConditionalAction(start, ast.SeverityBlock)
	}
	msg, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &ast.Block{Base: base(span.Merge(start, msg.Span())), Message: msg}, nil
}

func (p *parser) parseWarnOrWarnIf(start span.Span) (ast.Stmt, error) {
	p.advance() // 'warn'
	if p.at(token.KwIf) {
		return p.parseConditionalAction(start, ast.SeverityWarn)
	}
	msg, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &ast.Warn{Base: base(span.Merge(start, msg.Span())), Message: msg}, nil
}

// parseConditionalAction parses the `if COND [message EXPR]
// [interactive EXPR]` tail shared by `block if` and `warn if`.
func (p *parser) parseConditionalAction(start span.Span, sev ast.ConditionalSeverity) (ast.Stmt, error) {
	p.advance() // 'if'
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	sp := span.Merge(start, cond.Span())
	ca := &ast.ConditionalAction{Base: base(sp), Severity: sev, Cond: cond}
	if p.at(token.KwMessage) {
		p.advance()
		msg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		ca.Message = msg
		ca.Sp = span.Merge(ca.Sp, msg.Span())
	}
	if p.at(token.KwInteractive) {
		p.advance()
		iv, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		ca.Interactive = iv
		ca.Sp = span.Merge(ca.Sp, iv.Span())
	}
	return ca, nil
}

func (p *parser) parseParallel(start span.Span) (ast.Stmt, error) {
	p.advance() // 'parallel'
	if _, err := p.expect(token.LBrace); err != nil {
		return nil, err
	}
	var cmds []ast.Expr
	for {
		p.skipSeparators()
		if p.at(token.RBrace) {
			break
		}
		if !p.at(token.KwRun) {
			return nil, p.invalidSyntax(p.cur().Span, "parallel blocks may only contain 'run' statements")
		}
		p.advance()
		cmd, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		cmds = append(cmds, cmd)
	}
	end, err := p.expect(token.RBrace)
	if err != nil {
		return nil, err
	}
	return &ast.Parallel{Base: base(span.Merge(start, end.Span)), Cmds: cmds}, nil
}

func (p *parser) parseLet(start span.Span) (ast.Stmt, error) {
	p.advance() // 'let'
	name, err := p.expect(token.Identifier)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Eq); err != nil {
		return nil, err
	}
	val, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &ast.Let{Base: base(span.Merge(start, val.Span())), Name: name.Text, Expr: val}, nil
}

func (p *parser) parseForEach(start span.Span) (ast.Stmt, error) {
	p.advance() // 'foreach'
	coll, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	fe := &ast.ForEach{Collection: coll}
	if p.at(token.KwMatching) {
		p.advance()
		pat, err := p.expect(token.String)
		if err != nil {
			return nil, err
		}
		fe.Glob = pat.Text
		fe.HasGlob = true
	}
	if _, err := p.expect(token.LBrace); err != nil {
		return nil, err
	}
	p.skipSeparators()
	v, err := p.expect(token.Identifier)
	if err != nil {
		return nil, err
	}
	fe.Var = v.Text
	if _, err := p.expect(token.KwIn); err != nil {
		return nil, err
	}
	body, err := p.parseStatements(token.RBrace)
	if err != nil {
		return nil, err
	}
	end, err := p.expect(token.RBrace)
	if err != nil {
		return nil, err
	}
	fe.Body = body
	fe.Sp = span.Merge(start, end.Span)
	return fe, nil
}

func (p *parser) parseIfStatement(start span.Span) (ast.Stmt, error) {
	p.advance() // 'if'
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	then, err := p.parseBracedBody()
	if err != nil {
		return nil, err
	}
	stmt := &ast.If{Cond: cond, Then: then}
	end := lastSpan(start, then)
	p.skipSeparators()
	if p.at(token.KwElse) {
		p.advance()
		if p.at(token.KwIf) {
			elseStart := p.cur().Span
			nested, err := p.parseIfStatement(elseStart)
			if err != nil {
				return nil, err
			}
			stmt.Else = []ast.Stmt{nested}
			end = nested.Span()
		} else {
			elseBody, err := p.parseBracedBody()
			if err != nil {
				return nil, err
			}
			stmt.Else = elseBody
			end = lastSpan(end, elseBody)
		}
	}
	stmt.Sp = span.Merge(start, end)
	return stmt, nil
}

func (p *parser) parseMatch(start span.Span) (ast.Stmt, error) {
	p.advance() // 'match'
	subject, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBrace); err != nil {
		return nil, err
	}
	var arms []ast.MatchArm
	for {
		p.skipSeparators()
		if p.at(token.RBrace) {
			break
		}
		pat, err := p.parsePattern()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.ThinArrow); err != nil {
			return nil, err
		}
		var armBody []ast.Stmt
		if p.at(token.LBrace) {
			armBody, err = p.parseBracedBody()
			if err != nil {
				return nil, err
			}
		} else {
			stmt, err := p.parseStatement()
			if err != nil {
				return nil, err
			}
			armBody = []ast.Stmt{stmt}
		}
		arms = append(arms, ast.MatchArm{Pattern: pat, Body: armBody})
	}
	end, err := p.expect(token.RBrace)
	if err != nil {
		return nil, err
	}
	return &ast.Match{Base: base(span.Merge(start, end.Span)), Subject: subject, Arms: arms}, nil
}

func (p *parser) parsePattern() (ast.Pattern, error) {
	if p.at(token.Identifier) && p.cur().Text == "_" {
		sp := p.cur().Span
		p.advance()
		return ast.NewUnderscorePattern(sp), nil
	}
	if p.at(token.String) {
		s := p.advance()
		return &ast.WildcardPattern{Base: base(s.Span), Glob: s.Text}, nil
	}
	e, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &ast.ExprPattern{Base: base(e.Span()), Expr: e}, nil
}

func (p *parser) parseMacroDef(start span.Span) (ast.Stmt, error) {
	p.advance() // 'macro'
	name, err := p.expect(token.Identifier)
	if err != nil {
		return nil, err
	}
	var params []string
	if p.at(token.LParen) {
		p.advance()
		for !p.at(token.RParen) {
			param, err := p.expect(token.Identifier)
			if err != nil {
				return nil, err
			}
			params = append(params, param.Text)
			if p.at(token.Comma) {
				p.advance()
				continue
			}
			break
		}
		if _, err := p.expect(token.RParen); err != nil {
			return nil, err
		}
	}
	body, err := p.parseBracedBody()
	if err != nil {
		return nil, err
	}
	end := lastSpan(start, body)
	return &ast.MacroDef{Base: base(span.Merge(start, end)), Name: name.Text, Params: params, Body: body}, nil
}

func (p *parser) parseMacroCall(start span.Span) (ast.Stmt, error) {
	p.advance() // '@'
	first, err := p.expect(token.Identifier)
	if err != nil {
		return nil, err
	}
	namespace, name := "", first.Text
	if p.at(token.Dot) {
		p.advance()
		n, err := p.expect(token.Identifier)
		if err != nil {
			return nil, err
		}
		namespace, name = first.Text, n.Text
	}
	var args []ast.Expr
	end := first.Span
	if p.at(token.LParen) {
		p.advance()
		for !p.at(token.RParen) {
			arg, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.at(token.Comma) {
				p.advance()
				continue
			}
			break
		}
		rp, err := p.expect(token.RParen)
		if err != nil {
			return nil, err
		}
		end = rp.Span
	}
	return &ast.MacroCall{Base: base(span.Merge(start, end)), Namespace: namespace, Name: name, Args: args}, nil
}

func (p *parser) parseImport(start span.Span) (ast.Stmt, error) {
	p.advance() // 'import'
	pathTok, err := p.expect(token.String)
	if err != nil {
		return nil, err
	}
	stmt := &ast.Import{Base: base(span.Merge(start, pathTok.Span)), Path: pathTok.Text}
	if p.at(token.KwAs) {
		p.advance()
		alias, err := p.expect(token.Identifier)
		if err != nil {
			return nil, err
		}
		stmt.Alias = alias.Text
		stmt.Sp = span.Merge(stmt.Sp, alias.Span)
	}
	return stmt, nil
}

func (p *parser) parseUse(start span.Span) (ast.Stmt, error) {
	p.advance() // 'use'
	pkgTok, err := p.expect(token.String)
	if err != nil {
		return nil, err
	}
	stmt := &ast.Use{Base: base(span.Merge(start, pkgTok.Span)), Package: pkgTok.Text}
	if p.at(token.KwAs) {
		p.advance()
		alias, err := p.expect(token.Identifier)
		if err != nil {
			return nil, err
		}
		stmt.Alias = alias.Text
		stmt.Sp = span.Merge(stmt.Sp, alias.Span)
	}
	return stmt, nil
}

func (p *parser) parseGroup(start span.Span) (ast.Stmt, error) {
	p.advance() // 'group'
	name, err := p.expect(token.Identifier)
	if err != nil {
		return nil, err
	}
	g := &ast.Group{Name: name.Text, Severity: ast.GroupCritical, Enabled: true}
loop:
	for {
		switch p.cur().Kind {
		case token.KwCritical:
			p.advance()
			g.Severity = ast.GroupCritical
		case token.KwWarning:
			p.advance()
			g.Severity = ast.GroupWarning
		case token.KwInfo:
			p.advance()
			g.Severity = ast.GroupInfo
		case token.KwEnabled:
			p.advance()
			g.Enabled = true
		case token.KwDisabled:
			p.advance()
			g.Enabled = false
		default:
			break loop
		}
	}
	body, err := p.parseBracedBody()
	if err != nil {
		return nil, err
	}
	g.Body = body
	g.Sp = span.Merge(start, lastSpan(start, body))
	return g, nil
}

func (p *parser) parseTry(start span.Span) (ast.Stmt, error) {
	p.advance() // 'try'
	body, err := p.parseBracedBody()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.KwCatch); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBrace); err != nil {
		return nil, err
	}
	catchVar := "error"
	p.skipSeparators()
	// `err in` only binds a catch variable when followed by `in`; a bare
	// leading identifier not followed by `in` is instead the first
	// statement of the catch body.
	if p.at(token.Identifier) && p.pos+1 < len(p.toks) && p.toks[p.pos+1].Kind == token.KwIn {
		v := p.advance()
		p.advance() // 'in'
		catchVar = v.Text
	}
	catchBody, err := p.parseStatements(token.RBrace)
	if err != nil {
		return nil, err
	}
	end, err := p.expect(token.RBrace)
	if err != nil {
		return nil, err
	}
	return &ast.Try{Base: base(span.Merge(start, end.Span)), Body: body, CatchVar: catchVar, CatchBody: catchBody}, nil
}
