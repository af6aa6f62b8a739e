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

// Package span pins tokens and AST nodes to a location in GHook source
// text.
package span

import "fmt"

// Position is a single point in source text.
type Position struct {
	Line int // 1-based
	Col  int // 1-based, counted in bytes within the line
	Byte int // 0-based byte offset from the start of the file
}

// Span is a half-open byte range `[Start.Byte, End.Byte)` in source text,
// along with the line/column of each end. Every token and every AST node
// carries one.
type Span struct {
	Start Position
	End   Position
}

// New builds a Span from two positions. It does not validate that end is
// not before start; callers that can't guarantee ordering should use
// Merge instead.
func New(start, end Position) Span {
	return Span{Start: start, End: end}
}

// Merge returns the smallest Span that covers both a and b.
func Merge(a, b Span) Span {
	s := a
	if b.Start.Byte < s.Start.Byte {
		s.Start = b.Start
	}
	if b.End.Byte > s.End.Byte {
		s.End = b.End
	}
	return s
}

// IsZero reports whether s is the zero Span, i.e. it carries no location
// information. Every node produced by the parser must have a non-zero
// span; a zero span flowing into diagnostics means a bug in the parser.
func (s Span) IsZero() bool {
	return s == Span{}
}

// Len returns the number of bytes the span covers.
func (s Span) Len() int {
	return s.End.Byte - s.Start.Byte
}

func (s Span) String() string {
	if s.Start.Line == s.End.Line {
		return fmt.Sprintf("%d:%d-%d", s.Start.Line, s.Start.Col, s.End.Col)
	}
	return fmt.Sprintf("%d:%d-%d:%d", s.Start.Line, s.Start.Col, s.End.Line, s.End.Col)
}
