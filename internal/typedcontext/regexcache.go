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

package typedcontext

import (
	"regexp"

	"github.com/scholzdev/ghook/internal/cache"
)

// compiledRegexes is the process-wide regex compile cache named in
// spec.md §9 ("regex cache (default 100, overridable by
// GITHOOK_REGEX_CACHE_SIZE)"). StringContext.matches is the one call
// site that compiles a user-supplied pattern, so the cache lives next
// to it rather than behind an extra layer of indirection.
var compiledRegexes = cache.New[string, *regexp.Regexp](cache.RegexCacheSize())

func compileRegex(pattern string) (*regexp.Regexp, error) {
	return compiledRegexes.GetOrCompute(pattern, func() (*regexp.Regexp, error) {
		return regexp.Compile(pattern)
	})
}
