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
	"github.com/scholzdev/ghook/internal/typedcontext"
	"github.com/scholzdev/ghook/internal/value"
)

// closureMethods is the set of Array methods that take a Closure
// argument instead of evaluated Values, per spec.md §4.5.
var closureMethods = map[string]bool{
	"filter": true,
	"map":    true,
	"find":   true,
	"any":    true,
	"all":    true,
}

// evalMethodCall dispatches a MethodCall node, matching value.rs's
// exact lookup order: a Method of "" is a bare free-function call
// (resolved before the receiver, since the "receiver" is really the
// function name); otherwise the receiver is evaluated, a
// single-Closure-argument call to one of the five closure methods is
// special-cased, and everything else evaluates its arguments eagerly
// before dispatching through call_method.
func (e *Executor) evalMethodCall(n *ast.MethodCall) (value.Value, error) {
	if n.Method == "" {
		ident, ok := n.Receiver.(*ast.Ident)
		if !ok {
			return nil, diagnostics.New(diagnostics.InvalidSyntax, n.Span(), "invalid function call")
		}
		fn, ok := freeFunctions[ident.Name]
		if !ok {
			return nil, diagnostics.New(diagnostics.UndefinedVariable, n.Span(), "undefined function %q", ident.Name)
		}
		args, err := e.evalArgs(n.Args)
		if err != nil {
			return nil, err
		}
		return fn(e, n.Span(), args)
	}

	if closureMethods[n.Method] && len(n.Args) == 1 {
		if closure, ok := n.Args[0].(*ast.Closure); ok {
			recv, err := e.eval(n.Receiver)
			if err != nil {
				return nil, err
			}
			if arr, ok := recv.(value.Array); ok {
				return e.callClosureMethod(n.Method, arr, closure, n.Span())
			}
			return nil, diagnostics.New(diagnostics.TypeMismatch, n.Span(),
				"%s expects an array receiver, got %s", n.Method, value.TypeName(recv))
		}
	}

	recv, err := e.eval(n.Receiver)
	if err != nil {
		return nil, err
	}
	args, err := e.evalArgs(n.Args)
	if err != nil {
		return nil, err
	}
	v, ok, err := e.callMethod(recv, n.Method, args)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, diagnostics.New(diagnostics.MissingProperty, n.Span(),
			"method %q not found on %s", n.Method, value.TypeName(recv))
	}
	return v, nil
}

func (e *Executor) evalArgs(exprs []ast.Expr) ([]value.Value, error) {
	args := make([]value.Value, len(exprs))
	for i, a := range exprs {
		v, err := e.eval(a)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}

// callMethod builds the on-demand typed context for primitive
// receivers and otherwise dispatches through the Object itself. Array's
// zero-argument first()/last() bypass ArrayContext entirely, matching
// value.rs's call_method special case, since they return the element
// itself (or Null on an empty array) rather than routing through a
// context method.
func (e *Executor) callMethod(recv value.Value, name string, args []value.Value) (value.Value, bool, error) {
	switch v := recv.(type) {
	case value.Str:
		return typedcontext.StringContext{S: string(v)}.CallMethod(name, args)
	case value.Num:
		return typedcontext.NumberContext{N: float64(v)}.CallMethod(name, args)
	case value.Array:
		if (name == "first" || name == "last") && len(args) == 0 {
			if name == "first" {
				return v.First(), true, nil
			}
			return v.Last(), true, nil
		}
		return typedcontext.ArrayContext{A: v}.CallMethod(name, args)
	case *value.Object:
		return v.Method(name, args)
	}
	return nil, false, nil
}
