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

package lexer

import (
	"testing"

	"github.com/scholzdev/ghook/internal/token"
)

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestTokenizeIdentifiers(t *testing.T) {
	toks, err := Tokenize("abc def")
	if err != nil {
		t.Fatal(err)
	}
	var ids []string
	for _, tok := range toks {
		if tok.Kind == token.Identifier {
			ids = append(ids, tok.Text)
		}
	}
	want := []string{"abc", "def"}
	if len(ids) != len(want) || ids[0] != want[0] || ids[1] != want[1] {
		t.Errorf("identifiers = %v, want %v", ids, want)
	}
}

func TestTokenizeWhitespaceOnlyIsNewlines(t *testing.T) {
	toks, err := Tokenize("\n\n  \n")
	if err != nil {
		t.Fatal(err)
	}
	for _, tok := range toks[:len(toks)-1] {
		if tok.Kind != token.Newline {
			t.Errorf("got %v, want only Newline tokens before EOF", kinds(toks))
			break
		}
	}
	if toks[len(toks)-1].Kind != token.EOF {
		t.Errorf("last token = %v, want EOF", toks[len(toks)-1].Kind)
	}
}

func TestTokenizeKeywords(t *testing.T) {
	toks, err := Tokenize("run block warn foreach")
	if err != nil {
		t.Fatal(err)
	}
	want := []token.Kind{token.KwRun, token.KwBlock, token.KwWarn, token.KwForeach, token.EOF}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("tokens = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestTokenizeSizeSuffixedNumbers(t *testing.T) {
	tests := []struct {
		src  string
		want float64
	}{
		{"1KB", 1024},
		{"2MB", 2 * 1024 * 1024},
		{"1GB", 1 << 30},
		{"1TB", 1 << 40},
		{"1.5KB", 1.5 * 1024},
		{"42", 42},
	}
	for _, tc := range tests {
		toks, err := Tokenize(tc.src)
		if err != nil {
			t.Errorf("Tokenize(%q): %v", tc.src, err)
			continue
		}
		if toks[0].Kind != token.Number {
			t.Errorf("Tokenize(%q)[0].Kind = %v, want Number", tc.src, toks[0].Kind)
			continue
		}
		if toks[0].Num != tc.want {
			t.Errorf("Tokenize(%q) = %v, want %v", tc.src, toks[0].Num, tc.want)
		}
	}
}

func TestTokenizeInvalidNumberSuffix(t *testing.T) {
	if _, err := Tokenize("5XB"); err == nil {
		t.Error("Tokenize(\"5XB\") succeeded, want InvalidNumber error")
	}
}

func TestTokenizeStringEscapes(t *testing.T) {
	toks, err := Tokenize(`"a\nb\tc\\d\"e"`)
	if err != nil {
		t.Fatal(err)
	}
	want := "a\nb\tc\\d\"e"
	if toks[0].Text != want {
		t.Errorf("Text = %q, want %q", toks[0].Text, want)
	}
}

func TestTokenizeInvalidEscape(t *testing.T) {
	if _, err := Tokenize(`"a\qb"`); err == nil {
		t.Error("Tokenize with \\q succeeded, want InvalidEscape error")
	}
}

func TestTokenizeUnterminatedString(t *testing.T) {
	if _, err := Tokenize(`"abc`); err == nil {
		t.Error("Tokenize(unterminated string) succeeded, want error")
	}
}

func TestTokenizeUnterminatedComment(t *testing.T) {
	if _, err := Tokenize("/* abc"); err == nil {
		t.Error("Tokenize(unterminated comment) succeeded, want error")
	}
}

func TestTokenizeNestedBlockComment(t *testing.T) {
	toks, err := Tokenize("/* outer /* inner */ still outer */ x")
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, tok := range toks {
		if tok.Kind == token.Identifier && tok.Text == "x" {
			found = true
		}
	}
	if !found {
		t.Error("identifier after nested block comment not found")
	}
}

func TestTokenizeInterpolationLeftIntact(t *testing.T) {
	toks, err := Tokenize(`"count: ${count}"`)
	if err != nil {
		t.Fatal(err)
	}
	if toks[0].Text != "count: ${count}" {
		t.Errorf("Text = %q, want literal ${count} preserved", toks[0].Text)
	}
}

func TestTokenizeOperatorDisambiguation(t *testing.T) {
	toks, err := Tokenize("= == => != < <= > >= - ->")
	if err != nil {
		t.Fatal(err)
	}
	want := []token.Kind{
		token.Eq, token.EqEq, token.Arrow, token.NotEq,
		token.Lt, token.LtEq, token.Gt, token.GtEq,
		token.Minus, token.ThinArrow, token.EOF,
	}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("tokens = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestTokenizeLineComments(t *testing.T) {
	for _, src := range []string{"# comment\nrun", "// comment\nrun"} {
		toks, err := Tokenize(src)
		if err != nil {
			t.Fatalf("Tokenize(%q): %v", src, err)
		}
		foundComment, foundRun := false, false
		for _, tok := range toks {
			if tok.Kind == token.Comment {
				foundComment = true
			}
			if tok.Kind == token.KwRun {
				foundRun = true
			}
		}
		if !foundComment || !foundRun {
			t.Errorf("Tokenize(%q) = %v, missing comment or run keyword", src, kinds(toks))
		}
	}
}

func TestSpanCoverage(t *testing.T) {
	toks, err := Tokenize("let x = 1\nprint x")
	if err != nil {
		t.Fatal(err)
	}
	for _, tok := range toks {
		if tok.Span.End.Byte < tok.Span.Start.Byte {
			t.Errorf("token %v has end before start: %v", tok, tok.Span)
		}
	}
}
