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

import "github.com/scholzdev/ghook/internal/value"

// ArrayContext dispatches Array's non-closure methods (spec.md §4.3:
// "length; methods first, last, is_empty, sum"). The closure methods
// (filter/map/find/any/all, §4.5) require evaluating an AST Closure
// against the enclosing variable scope, so they are handled directly by
// internal/evaluator rather than here.
type ArrayContext struct {
	A value.Array
}

func (a ArrayContext) CallProperty(name string) (value.Value, bool) {
	if name == "length" {
		return value.Num(float64(len(a.A))), true
	}
	return nil, false
}

func (a ArrayContext) CallMethod(name string, args []value.Value) (value.Value, bool, error) {
	switch name {
	case "first":
		return a.A.First(), true, nil
	case "last":
		return a.A.Last(), true, nil
	case "is_empty":
		return value.Bool(a.A.IsEmpty()), true, nil
	case "sum":
		n, err := a.A.Sum()
		if err != nil {
			return nil, true, err
		}
		return n, true, nil
	}
	return nil, false, nil
}
