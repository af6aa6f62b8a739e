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
	"github.com/scholzdev/ghook/internal/ast"
	"github.com/scholzdev/ghook/internal/diagnostics"
	"github.com/scholzdev/ghook/internal/span"
	"github.com/scholzdev/ghook/internal/value"
)

// callClosureMethod evaluates closure.Body once per element of arr with
// closure.Param bound to that element, per spec.md §4.5. The previous
// binding of Param, if any, is restored afterward the same way a
// foreach loop variable is.
func (e *Executor) callClosureMethod(method string, arr value.Array, closure *ast.Closure, sp span.Span) (value.Value, error) {
	old, existed := e.variables[closure.Param]
	defer func() {
		if existed {
			e.variables[closure.Param] = old
		} else {
			delete(e.variables, closure.Param)
		}
	}()

	switch method {
	case "filter":
		out := make(value.Array, 0, len(arr))
		for _, item := range arr {
			e.variables[closure.Param] = item
			v, err := e.eval(closure.Body)
			if err != nil {
				return nil, err
			}
			if v.Truthy() {
				out = append(out, item)
			}
		}
		return out, nil
	case "map":
		out := make(value.Array, len(arr))
		for i, item := range arr {
			e.variables[closure.Param] = item
			v, err := e.eval(closure.Body)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case "find":
		for _, item := range arr {
			e.variables[closure.Param] = item
			v, err := e.eval(closure.Body)
			if err != nil {
				return nil, err
			}
			if v.Truthy() {
				return item, nil
			}
		}
		return value.Null{}, nil
	case "any":
		for _, item := range arr {
			e.variables[closure.Param] = item
			v, err := e.eval(closure.Body)
			if err != nil {
				return nil, err
			}
			if v.Truthy() {
				return value.Bool(true), nil
			}
		}
		return value.Bool(false), nil
	case "all":
		for _, item := range arr {
			e.variables[closure.Param] = item
			v, err := e.eval(closure.Body)
			if err != nil {
				return nil, err
			}
			if !v.Truthy() {
				return value.Bool(false), nil
			}
		}
		return value.Bool(true), nil
	}
	return nil, diagnostics.New(diagnostics.InvalidSyntax, sp, "unknown closure method %q", method)
}
