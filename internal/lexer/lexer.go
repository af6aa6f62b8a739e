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

// Package lexer turns GHook source text into a flat sequence of spanned
// tokens, per spec.md §4.1.
package lexer

import (
	"strconv"
	"strings"

	"github.com/scholzdev/ghook/internal/diagnostics"
	"github.com/scholzdev/ghook/internal/span"
	"github.com/scholzdev/ghook/internal/token"
)

// Tokenize scans src and returns every token through EOF, or the first
// lexical error encountered.
func Tokenize(src string) ([]token.Token, error) {
	l := &lexer{src: src, line: 1, col: 1}
	var toks []token.Token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			return toks, nil
		}
	}
}

type lexer struct {
	src  string
	pos  int // byte offset
	line int
	col  int
}

func (l *lexer) pposition() span.Position {
	return span.Position{Line: l.line, Col: l.col, Byte: l.pos}
}

func (l *lexer) eof() bool {
	return l.pos >= len(l.src)
}

func (l *lexer) peek() byte {
	if l.eof() {
		return 0
	}
	return l.src[l.pos]
}

func (l *lexer) peekAt(offset int) byte {
	if l.pos+offset >= len(l.src) {
		return 0
	}
	return l.src[l.pos+offset]
}

// advance consumes one byte and updates line/col bookkeeping. Callers
// must not use it to skip over multi-byte UTF-8 runes when the byte
// value itself is meaningful (all of GHook's syntax is ASCII).
func (l *lexer) advance() byte {
	c := l.src[l.pos]
	l.pos++
	if c == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return c
}

func (l *lexer) makeTok(kind token.Kind, start span.Position, text string) token.Token {
	return token.Token{Kind: kind, Text: text, Span: span.New(start, l.pposition())}
}

func (l *lexer) next() (token.Token, error) {
	l.skipWhitespaceAndComments0()
	start := l.pposition()
	if l.eof() {
		return l.makeTok(token.EOF, start, ""), nil
	}
	c := l.peek()

	switch {
	case c == '\n':
		l.advance()
		return l.makeTok(token.Newline, start, "\n"), nil
	case c == '#':
		return l.lexLineComment(start)
	case c == '/' && l.peekAt(1) == '/':
		return l.lexLineComment(start)
	case c == '/' && l.peekAt(1) == '*':
		return l.lexBlockComment(start)
	case c == '"':
		return l.lexString(start)
	case isDigit(c):
		return l.lexNumber(start)
	case isIdentStart(c):
		return l.lexIdentifier(start)
	}

	return l.lexOperator(start)
}

// skipWhitespaceAndComments0 only skips spaces, tabs and CR — not
// newlines or comments, both of which are emitted as tokens per spec.md
// §4.1.
func (l *lexer) skipWhitespaceAndComments0() {
	for !l.eof() {
		c := l.peek()
		if c == ' ' || c == '\t' || c == '\r' {
			l.advance()
			continue
		}
		return
	}
}

func (l *lexer) lexLineComment(start span.Position) (token.Token, error) {
	if l.peek() == '#' {
		l.advance()
	} else {
		l.advance()
		l.advance()
	}
	textStart := l.pos
	for !l.eof() && l.peek() != '\n' {
		l.advance()
	}
	return l.makeTok(token.Comment, start, l.src[textStart:l.pos]), nil
}

func (l *lexer) lexBlockComment(start span.Position) (token.Token, error) {
	l.advance() // '/'
	l.advance() // '*'
	textStart := l.pos
	depth := 1
	for {
		if l.eof() {
			return token.Token{}, &diagnostics.Error{
				Kind: diagnostics.UnterminatedComment, HasSpan: true,
				Span:    span.New(start, l.pposition()),
				Message: "unterminated block comment",
			}
		}
		if l.peek() == '/' && l.peekAt(1) == '*' {
			l.advance()
			l.advance()
			depth++
			continue
		}
		if l.peek() == '*' && l.peekAt(1) == '/' {
			text := l.src[textStart:l.pos]
			l.advance()
			l.advance()
			depth--
			if depth == 0 {
				return l.makeTok(token.Comment, start, text), nil
			}
			continue
		}
		l.advance()
	}
}

func (l *lexer) lexString(start span.Position) (token.Token, error) {
	l.advance() // opening quote
	var sb strings.Builder
	for {
		if l.eof() {
			return token.Token{}, &diagnostics.Error{
				Kind: diagnostics.UnterminatedString, HasSpan: true,
				Span:    span.New(start, l.pposition()),
				Message: "unterminated string literal",
			}
		}
		c := l.peek()
		if c == '"' {
			l.advance()
			return l.makeTok(token.String, start, sb.String()), nil
		}
		if c == '\n' {
			return token.Token{}, &diagnostics.Error{
				Kind: diagnostics.UnterminatedString, HasSpan: true,
				Span:    span.New(start, l.pposition()),
				Message: "unterminated string literal",
			}
		}
		if c == '\\' {
			escStart := l.pposition()
			l.advance()
			if l.eof() {
				return token.Token{}, &diagnostics.Error{
					Kind: diagnostics.UnterminatedString, HasSpan: true,
					Span:    span.New(start, l.pposition()),
					Message: "unterminated string literal",
				}
			}
			e := l.advance()
			switch e {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			case '\\':
				sb.WriteByte('\\')
			case '"':
				sb.WriteByte('"')
			case '$':
				// ${...} interpolation markers are kept literal in the
				// returned text; \$ lets a literal '$' precede a brace
				// without being parsed as interpolation.
				sb.WriteByte('$')
			default:
				return token.Token{}, &diagnostics.Error{
					Kind: diagnostics.InvalidEscape, HasSpan: true,
					Span:    span.New(escStart, l.pposition()),
					Message: "invalid escape sequence '\\" + string(e) + "'",
				}
			}
			continue
		}
		sb.WriteByte(c)
		l.advance()
	}
}

func (l *lexer) lexNumber(start span.Position) (token.Token, error) {
	textStart := l.pos
	for !l.eof() && isDigit(l.peek()) {
		l.advance()
	}
	if !l.eof() && l.peek() == '.' && isDigit(l.peekAt(1)) {
		l.advance()
		for !l.eof() && isDigit(l.peek()) {
			l.advance()
		}
	}
	numText := l.src[textStart:l.pos]
	n, err := strconv.ParseFloat(numText, 64)
	if err != nil {
		return token.Token{}, &diagnostics.Error{
			Kind: diagnostics.InvalidNumber, HasSpan: true,
			Span:    span.New(start, l.pposition()),
			Message: "invalid number literal " + strconv.Quote(numText),
		}
	}

	if !l.eof() && isAlpha(l.peek()) {
		suffixStart := l.pos
		for !l.eof() && isAlpha(l.peek()) {
			l.advance()
		}
		suffix := l.src[suffixStart:l.pos]
		mult, ok := sizeSuffixes[suffix]
		if !ok {
			return token.Token{}, &diagnostics.Error{
				Kind: diagnostics.InvalidNumber, HasSpan: true,
				Span:    span.New(start, l.pposition()),
				Message: "invalid number suffix " + strconv.Quote(suffix) + " (want KB, MB, GB or TB)",
			}
		}
		n *= mult
	}

	tok := l.makeTok(token.Number, start, l.src[textStart:l.pos])
	tok.Num = n
	return tok, nil
}

var sizeSuffixes = map[string]float64{
	"KB": 1 << 10,
	"MB": 1 << 20,
	"GB": 1 << 30,
	"TB": 1 << 40,
}

func (l *lexer) lexIdentifier(start span.Position) (token.Token, error) {
	textStart := l.pos
	for !l.eof() && isIdentCont(l.peek()) {
		l.advance()
	}
	text := l.src[textStart:l.pos]
	if kw, ok := token.Keywords[text]; ok {
		return l.makeTok(kw, start, text), nil
	}
	return l.makeTok(token.Identifier, start, text), nil
}

func (l *lexer) lexOperator(start span.Position) (token.Token, error) {
	c := l.advance()
	two := func(next byte, twoKind, oneKind token.Kind) (token.Token, error) {
		if l.peek() == next {
			l.advance()
			return l.makeTok(twoKind, start, l.src[start.Byte:l.pos]), nil
		}
		return l.makeTok(oneKind, start, l.src[start.Byte:l.pos]), nil
	}
	switch c {
	case '=':
		if l.peek() == '>' {
			l.advance()
			return l.makeTok(token.Arrow, start, l.src[start.Byte:l.pos]), nil
		}
		return two('=', token.EqEq, token.Eq)
	case '!':
		if l.peek() == '=' {
			l.advance()
			return l.makeTok(token.NotEq, start, l.src[start.Byte:l.pos]), nil
		}
		return token.Token{}, l.unexpectedChar(c, start)
	case '<':
		return two('=', token.LtEq, token.Lt)
	case '>':
		return two('=', token.GtEq, token.Gt)
	case '-':
		if l.peek() == '>' {
			l.advance()
			return l.makeTok(token.ThinArrow, start, l.src[start.Byte:l.pos]), nil
		}
		return l.makeTok(token.Minus, start, l.src[start.Byte:l.pos]), nil
	case '+':
		return l.makeTok(token.Plus, start, l.src[start.Byte:l.pos]), nil
	case '*':
		return l.makeTok(token.Star, start, l.src[start.Byte:l.pos]), nil
	case '/':
		return l.makeTok(token.Slash, start, l.src[start.Byte:l.pos]), nil
	case '%':
		return l.makeTok(token.Percent, start, l.src[start.Byte:l.pos]), nil
	case '.':
		return l.makeTok(token.Dot, start, l.src[start.Byte:l.pos]), nil
	case ',':
		return l.makeTok(token.Comma, start, l.src[start.Byte:l.pos]), nil
	case ':':
		return l.makeTok(token.Colon, start, l.src[start.Byte:l.pos]), nil
	case '@':
		return l.makeTok(token.At, start, l.src[start.Byte:l.pos]), nil
	case '$':
		return l.makeTok(token.Dollar, start, l.src[start.Byte:l.pos]), nil
	case '(':
		return l.makeTok(token.LParen, start, l.src[start.Byte:l.pos]), nil
	case ')':
		return l.makeTok(token.RParen, start, l.src[start.Byte:l.pos]), nil
	case '{':
		return l.makeTok(token.LBrace, start, l.src[start.Byte:l.pos]), nil
	case '}':
		return l.makeTok(token.RBrace, start, l.src[start.Byte:l.pos]), nil
	case '[':
		return l.makeTok(token.LBracket, start, l.src[start.Byte:l.pos]), nil
	case ']':
		return l.makeTok(token.RBracket, start, l.src[start.Byte:l.pos]), nil
	}
	return token.Token{}, l.unexpectedChar(c, start)
}

func (l *lexer) unexpectedChar(c byte, start span.Position) *diagnostics.Error {
	e := &diagnostics.Error{
		Kind: diagnostics.UnexpectedChar, HasSpan: true,
		Span:    span.New(start, l.pposition()),
		Message: "unexpected character " + strconv.QuoteRune(rune(c)),
	}
	if sug, ok := suggestChar(c); ok {
		e.Suggestion = sug
	}
	return e
}

func suggestChar(c byte) (string, bool) {
	switch c {
	case '&':
		return "use 'and', not '&&'", true
	case '|':
		return "use 'or', not '||'", true
	case ';':
		return "statements are newline-terminated; remove the ';'", true
	}
	return "", false
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
func isAlpha(c byte) bool { return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' }
func isIdentStart(c byte) bool {
	return isAlpha(c) || c == '_'
}
func isIdentCont(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}
