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

// Package diagnostics defines the error kinds produced by the GHook
// lexer, parser and evaluator, and renders them by quoting the offending
// source line the way a compiler would.
package diagnostics

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/scholzdev/ghook/internal/span"
)

// Kind tags the broad category of an Error, matching spec.md §7.
type Kind int

const (
	// Lexical
	UnexpectedChar Kind = iota
	UnterminatedString
	UnterminatedComment
	InvalidNumber
	InvalidEscape
	UnexpectedEOF

	// Syntactic
	UnexpectedToken
	MissingToken
	InvalidSyntax

	// Resolution
	UndefinedVariable
	UndefinedMacro
	MissingProperty

	// Type
	TypeMismatch
	NotIterable
	DivideByZero

	// I/O
	CommandFailed
	CommandTimedOut
	PackageFetchFailed
	ImportNotFound

	// Policy / control-flow
	PolicyBlock
	ControlFlowEscape
)

// Error is the single concrete error type produced by every GHook
// subsystem. Kind is the tag; Span is present whenever the failure can be
// pinned to source text (everything except a handful of I/O failures that
// happen outside of evaluating any one node).
type Error struct {
	Kind       Kind
	Message    string
	Span       span.Span
	HasSpan    bool
	Suggestion string
	Cause      error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds a spanned Error.
func New(kind Kind, sp span.Span, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Span: sp, HasSpan: true}
}

// Newf builds an Error with no span, for failures that can't be pinned to
// a single source location (e.g. a package fetch failing before any
// import statement finished parsing).
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WithSuggestion attaches an actionable suggestion, rendered on its own
// line by Render.
func (e *Error) WithSuggestion(s string) *Error {
	e.Suggestion = s
	return e
}

// WithCause wraps an underlying error (e.g. a command spawn failure).
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// Render quotes the offending line of source with a caret under the
// span, preceded and followed by one line of context, per spec.md §4.9.
// It never panics on non-UTF-8 source: invalid byte sequences are
// replaced with U+FFFD before rendering.
func Render(source string, err error) string {
	de, ok := err.(*Error)
	if !ok || !de.HasSpan {
		return err.Error()
	}
	clean := toValidUTF8(source)
	lines := strings.Split(clean, "\n")
	lineIdx := de.Span.Start.Line - 1
	var b strings.Builder
	fmt.Fprintf(&b, "error: %s\n", de.Message)
	if lineIdx >= 0 && lineIdx < len(lines) {
		if lineIdx > 0 {
			fmt.Fprintf(&b, "  %4d | %s\n", lineIdx, lines[lineIdx-1])
		}
		fmt.Fprintf(&b, "  %4d | %s\n", lineIdx+1, lines[lineIdx])
		col := de.Span.Start.Col
		if col < 1 {
			col = 1
		}
		width := de.Span.End.Col - de.Span.Start.Col
		if width < 1 {
			width = 1
		}
		b.WriteString("       | ")
		b.WriteString(strings.Repeat(" ", col-1))
		b.WriteString(strings.Repeat("^", width))
		b.WriteByte('\n')
		if lineIdx+1 < len(lines) {
			fmt.Fprintf(&b, "  %4d | %s\n", lineIdx+2, lines[lineIdx+1])
		}
	}
	if de.Suggestion != "" {
		fmt.Fprintf(&b, "help: %s\n", de.Suggestion)
	}
	return strings.TrimRight(b.String(), "\n")
}

// toValidUTF8 replaces invalid byte sequences with U+FFFD, the way
// strings.ToValidUTF8 does, without requiring Go 1.24's added-to-strings
// package helper.
func toValidUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			b.WriteRune(utf8.RuneError)
			i++
			continue
		}
		b.WriteRune(r)
		i += size
	}
	return b.String()
}
