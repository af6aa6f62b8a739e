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

// Package token defines the lexical tokens of the GHook language.
package token

import "github.com/scholzdev/ghook/internal/span"

// Kind identifies the lexical category of a Token.
type Kind int

const (
	Invalid Kind = iota
	EOF
	Newline
	Comment

	String
	Number
	Identifier

	// Keywords
	KwRun
	KwPrint
	KwBlock
	KwWarn
	KwAllow
	KwParallel
	KwLet
	KwForeach
	KwIf
	KwElse
	KwMatch
	KwMatching
	KwTry
	KwCatch
	KwBreak
	KwContinue
	KwMacro
	KwImport
	KwUse
	KwGroup
	KwIn
	KwNot
	KwAnd
	KwOr
	KwTrue
	KwFalse
	KwNull
	KwThen
	KwMessage
	KwInteractive
	KwCritical
	KwWarning
	KwInfo
	KwEnabled
	KwDisabled
	KwAs

	// Operators & punctuation
	Eq        // =
	EqEq      // ==
	NotEq     // !=
	Lt        // <
	LtEq      // <=
	Gt        // >
	GtEq      // >=
	Plus      // +
	Minus     // -
	Star      // *
	Slash     // /
	Percent   // %
	Arrow     // =>
	ThinArrow // ->
	Dot       // .
	Comma     // ,
	Colon     // :
	At        // @
	Dollar    // $

	LParen   // (
	RParen   // )
	LBrace   // {
	RBrace   // }
	LBracket // [
	RBracket // ]
)

var names = map[Kind]string{
	Invalid:       "invalid",
	EOF:           "end of file",
	Newline:       "newline",
	Comment:       "comment",
	String:        "string",
	Number:        "number",
	Identifier:    "identifier",
	KwRun:         "run",
	KwPrint:       "print",
	KwBlock:       "block",
	KwWarn:        "warn",
	KwAllow:       "allow",
	KwParallel:    "parallel",
	KwLet:         "let",
	KwForeach:     "foreach",
	KwIf:          "if",
	KwElse:        "else",
	KwMatch:       "match",
	KwMatching:    "matching",
	KwTry:         "try",
	KwCatch:       "catch",
	KwBreak:       "break",
	KwContinue:    "continue",
	KwMacro:       "macro",
	KwImport:      "import",
	KwUse:         "use",
	KwGroup:       "group",
	KwIn:          "in",
	KwNot:         "not",
	KwAnd:         "and",
	KwOr:          "or",
	KwTrue:        "true",
	KwFalse:       "false",
	KwNull:        "null",
	KwThen:        "then",
	KwMessage:     "message",
	KwInteractive: "interactive",
	KwCritical:    "critical",
	KwWarning:     "warning",
	KwInfo:        "info",
	KwEnabled:     "enabled",
	KwDisabled:    "disabled",
	KwAs:          "as",
	Eq:            "=",
	EqEq:          "==",
	NotEq:         "!=",
	Lt:            "<",
	LtEq:          "<=",
	Gt:            ">",
	GtEq:          ">=",
	Plus:          "+",
	Minus:         "-",
	Star:          "*",
	Slash:         "/",
	Percent:       "%",
	Arrow:         "=>",
	ThinArrow:     "->",
	Dot:           ".",
	Comma:         ",",
	Colon:         ":",
	At:            "@",
	Dollar:        "$",
	LParen:        "(",
	RParen:        ")",
	LBrace:        "{",
	RBrace:        "}",
	LBracket:      "[",
	RBracket:      "]",
}

func (k Kind) String() string {
	if s, ok := names[k]; ok {
		return s
	}
	return "unknown token"
}

// Keywords maps the exact spelling of each reserved word to its Kind.
// Lookup is a single map read, as spec.md §4.1 requires ("O(1) hash
// lookup").
var Keywords = map[string]Kind{
	"run":         KwRun,
	"print":       KwPrint,
	"block":       KwBlock,
	"warn":        KwWarn,
	"allow":       KwAllow,
	"parallel":    KwParallel,
	"let":         KwLet,
	"foreach":     KwForeach,
	"if":          KwIf,
	"else":        KwElse,
	"match":       KwMatch,
	"matching":    KwMatching,
	"try":         KwTry,
	"catch":       KwCatch,
	"break":       KwBreak,
	"continue":    KwContinue,
	"macro":       KwMacro,
	"import":      KwImport,
	"use":         KwUse,
	"group":       KwGroup,
	"in":          KwIn,
	"not":         KwNot,
	"and":         KwAnd,
	"or":          KwOr,
	"true":        KwTrue,
	"false":       KwFalse,
	"null":        KwNull,
	"then":        KwThen,
	"message":     KwMessage,
	"interactive": KwInteractive,
	"critical":    KwCritical,
	"warning":     KwWarning,
	"info":        KwInfo,
	"enabled":     KwEnabled,
	"disabled":    KwDisabled,
	"as":          KwAs,
}

// Token is a single lexical unit along with its source span.
type Token struct {
	Kind Kind
	Text string // literal source text, or decoded value for String
	Num  float64
	Span span.Span
}

func (t Token) String() string {
	if t.Text != "" {
		return t.Kind.String() + " " + t.Text
	}
	return t.Kind.String()
}
