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

package evaluator

import (
	"context"

	"github.com/scholzdev/ghook/internal/ast"
	"github.com/scholzdev/ghook/internal/value"
)

// execMatch runs the first arm whose pattern matches subject, or does
// nothing if no arm matches, per executor/mod.rs's execute_match.
func (e *Executor) execMatch(ctx context.Context, n *ast.Match) (flow, error) {
	subject, err := e.eval(n.Subject)
	if err != nil {
		return flowNone, err
	}
	for _, arm := range n.Arms {
		matched, err := e.patternMatches(arm.Pattern, subject)
		if err != nil {
			return flowNone, err
		}
		if matched {
			return e.execStmts(ctx, arm.Body)
		}
	}
	return flowNone, nil
}

// patternMatches implements pattern_matches: an expression pattern
// compares by deep equality; a wildcard pattern compares the subject's
// display string against a simple escaped-dot/star-to-dot-star regex
// (not the prefix/suffix/contains matcher ForEach's `matching` clause uses —
// Match arms keep the original's own simpler translation, per spec.md
// §4.4's literal wording for this construct); underscore always matches.
func (e *Executor) patternMatches(p ast.Pattern, subject value.Value) (bool, error) {
	switch pat := p.(type) {
	case *ast.ExprPattern:
		v, err := e.eval(pat.Expr)
		if err != nil {
			return false, err
		}
		return subject.Equal(v), nil
	case *ast.WildcardPattern:
		re, err := compileWildcard(pat.Glob)
		if err != nil {
			return false, err
		}
		return re.MatchString(subject.Display()), nil
	case *ast.UnderscorePattern:
		return true, nil
	}
	return false, nil
}
