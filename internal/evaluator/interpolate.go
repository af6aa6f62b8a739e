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
	"strings"

	"github.com/scholzdev/ghook/internal/value"
)

// interpolateBraces substitutes bare `{name}` placeholders (not the
// `${expr}` form, which the parser already splits out into real
// sub-expressions ahead of evaluation) against vars, leaving any name
// it doesn't recognize untouched. Grounded on interpolation.rs's
// Executor::interpolate_string, which runs this same bare-name
// substitution over `warn`, `block if`/`warn if` messages and
// `parallel` command strings after they've already been evaluated to a
// plain string.
func interpolateBraces(s string, vars map[string]value.Value) string {
	if !strings.Contains(s, "{") {
		return s
	}
	var b strings.Builder
	i := 0
	for i < len(s) {
		if s[i] != '{' {
			b.WriteByte(s[i])
			i++
			continue
		}
		end := strings.IndexByte(s[i+1:], '}')
		if end < 0 {
			b.WriteString(s[i:])
			break
		}
		name := s[i+1 : i+1+end]
		if v, ok := vars[name]; ok && isBareIdent(name) {
			b.WriteString(v.Display())
		} else {
			b.WriteString(s[i : i+2+end])
		}
		i += 2 + end
	}
	return b.String()
}

func isBareIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (i > 0 && r >= '0' && r <= '9') {
			continue
		}
		return false
	}
	return true
}
