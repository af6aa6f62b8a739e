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
	"regexp"
	"strings"

	"github.com/scholzdev/ghook/internal/cache"
)

// compileWildcard translates a Match arm's wildcard pattern into a
// full-string regex the way the original matches a `MatchPattern::Wildcard`:
// escape every literal `.`, then turn each `*` into `.*`, anchored at
// both ends. This is deliberately simpler than globMatcher below; a
// Match wildcard never treats `/` specially.
func compileWildcard(pattern string) (*regexp.Regexp, error) {
	escaped := strings.ReplaceAll(regexp.QuoteMeta(pattern), `\*`, ".*")
	return regexp.Compile("^" + escaped + "$")
}

// globMatcher implements ForEach's `matching "glob"` clause exactly the
// way executor::matches_pattern does: a leading/trailing `*` is plain
// prefix/suffix/contains matching against the full string, with no
// notion of `/` as a path separator. `*` alone matches everything.
//
// Results are fronted by a 128-entry cache (spec.md §9's glob-pattern
// cache), keyed on "pattern\x00name".
type globMatcher struct {
	results *cache.LRU[string, bool]
}

func newGlobMatcher() globMatcher {
	return globMatcher{results: cache.New[string, bool](cache.GlobCacheSize)}
}

func (g globMatcher) Match(pattern, name string) bool {
	key := pattern + "\x00" + name
	v, _ := g.results.GetOrCompute(key, func() (bool, error) {
		return matchesPattern(name, pattern), nil
	})
	return v
}

// matchesPattern is a direct port of executor::matches_pattern: `*`
// matches everything, a pattern wrapped in `*...*` is a Contains check
// on the middle, a leading or trailing (but not both) `*` is a
// suffix/prefix check, and anything else is an exact match.
func matchesPattern(text, pattern string) bool {
	if pattern == "*" {
		return true
	}
	if strings.HasPrefix(pattern, "*") && strings.HasSuffix(pattern, "*") && len(pattern) >= 2 {
		return strings.Contains(text, pattern[1:len(pattern)-1])
	}
	if suffix, ok := strings.CutPrefix(pattern, "*"); ok {
		return strings.HasSuffix(text, suffix)
	}
	if prefix, ok := strings.CutSuffix(pattern, "*"); ok {
		return strings.HasPrefix(text, prefix)
	}
	return text == pattern
}
