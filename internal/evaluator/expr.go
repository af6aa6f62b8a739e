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

	"github.com/scholzdev/ghook/internal/ast"
	"github.com/scholzdev/ghook/internal/diagnostics"
	"github.com/scholzdev/ghook/internal/typedcontext"
	"github.com/scholzdev/ghook/internal/value"
)

// eval dispatches every expression node, per expressions.rs's
// Evaluator::eval. Binary `and`/`or` deliberately evaluate both sides —
// GHook does not short-circuit, since either side of a boolean
// expression may be a `run`-adjacent side effect a script relies on.
func (e *Executor) eval(expr ast.Expr) (value.Value, error) {
	switch n := expr.(type) {
	case *ast.StringLit:
		return value.Str(n.Value), nil
	case *ast.NumberLit:
		return value.Num(n.Value), nil
	case *ast.BoolLit:
		return value.Bool(n.Value), nil
	case *ast.NullLit:
		return value.Null{}, nil
	case *ast.InterpolatedString:
		return e.evalInterpolated(n)
	case *ast.Ident:
		return e.evalIdent(n)
	case *ast.PropertyAccess:
		return e.evalPropertyAccess(n)
	case *ast.IndexAccess:
		return e.evalIndexAccess(n)
	case *ast.MethodCall:
		return e.evalMethodCall(n)
	case *ast.Binary:
		return e.evalBinary(n)
	case *ast.Unary:
		return e.evalUnary(n)
	case *ast.ArrayLit:
		return e.evalArrayLit(n)
	case *ast.IfExpr:
		return e.evalIfExpr(n)
	case *ast.Closure:
		return nil, diagnostics.New(diagnostics.TypeMismatch, n.Span(),
			"closures may only appear as the sole argument to filter, map, find, any or all")
	}
	return nil, diagnostics.New(diagnostics.InvalidSyntax, expr.Span(), "unhandled expression")
}

func (e *Executor) evalString(expr ast.Expr) (string, error) {
	v, err := e.eval(expr)
	if err != nil {
		return "", err
	}
	s, ok := v.(value.Str)
	if !ok {
		return "", diagnostics.New(diagnostics.TypeMismatch, expr.Span(), "expected a string, got %s", value.TypeName(v))
	}
	return string(s), nil
}

func (e *Executor) evalInterpolated(n *ast.InterpolatedString) (value.Value, error) {
	var b strings.Builder
	for _, part := range n.Parts {
		if part.Expr == nil {
			b.WriteString(part.Literal)
			continue
		}
		v, err := e.eval(part.Expr)
		if err != nil {
			return nil, err
		}
		b.WriteString(v.Display())
	}
	return value.Str(b.String()), nil
}

// evalIdent special-cases the three ambient objects before falling to
// the variable table, matching expressions.rs's identifier lookup.
func (e *Executor) evalIdent(n *ast.Ident) (value.Value, error) {
	switch n.Name {
	case "git", "env", "http":
		if v, ok := e.variables[n.Name]; ok {
			return v, nil
		}
	}
	if v, ok := e.variables[n.Name]; ok {
		return v, nil
	}
	return nil, diagnostics.New(diagnostics.UndefinedVariable, n.Span(), "undefined variable %q", n.Name)
}

func (e *Executor) evalPropertyAccess(n *ast.PropertyAccess) (value.Value, error) {
	recv, err := e.eval(n.Receiver)
	if err != nil {
		return nil, err
	}
	v, ok := e.getProperty(recv, n.Name)
	if !ok {
		return nil, diagnostics.New(diagnostics.MissingProperty, n.Span(),
			"property %q not found on %s", n.Name, value.TypeName(recv))
	}
	return v, nil
}

// getProperty builds the on-demand typed context for primitive
// receivers (String/Number/Array are never pre-wrapped in an Object,
// per value.rs's get_property), and otherwise asks the Object directly.
func (e *Executor) getProperty(recv value.Value, name string) (value.Value, bool) {
	switch v := recv.(type) {
	case value.Str:
		return typedcontext.StringContext{S: string(v)}.CallProperty(name)
	case value.Num:
		return typedcontext.NumberContext{N: float64(v)}.CallProperty(name)
	case value.Array:
		return typedcontext.ArrayContext{A: v}.CallProperty(name)
	case *value.Object:
		return v.Property(name)
	}
	return nil, false
}

func (e *Executor) evalIndexAccess(n *ast.IndexAccess) (value.Value, error) {
	recv, err := e.eval(n.Receiver)
	if err != nil {
		return nil, err
	}
	idx, err := e.eval(n.Index)
	if err != nil {
		return nil, err
	}
	switch r := recv.(type) {
	case *value.Object:
		key, ok := idx.(value.Str)
		if !ok {
			return nil, diagnostics.New(diagnostics.TypeMismatch, n.Span(), "object index must be a string")
		}
		v, ok := r.Properties[string(key)]
		if !ok {
			return nil, diagnostics.New(diagnostics.MissingProperty, n.Span(), "key not found: %s", key)
		}
		return v, nil
	case value.Array:
		i, ok := idx.(value.Num)
		if !ok {
			return nil, diagnostics.New(diagnostics.TypeMismatch, n.Span(), "array index must be a number")
		}
		idxInt := int(i)
		if idxInt < 0 || idxInt >= len(r) {
			return nil, diagnostics.New(diagnostics.TypeMismatch, n.Span(), "index out of bounds: %d", idxInt)
		}
		return r[idxInt], nil
	case value.Str:
		i, ok := idx.(value.Num)
		if !ok {
			return nil, diagnostics.New(diagnostics.TypeMismatch, n.Span(), "string index must be a number")
		}
		runes := []rune(string(r))
		idxInt := int(i)
		if idxInt < 0 || idxInt >= len(runes) {
			return nil, diagnostics.New(diagnostics.TypeMismatch, n.Span(), "index out of bounds: %d", idxInt)
		}
		return value.Str(string(runes[idxInt])), nil
	}
	return nil, diagnostics.New(diagnostics.TypeMismatch, n.Span(), "cannot index into %s", value.TypeName(recv))
}

func (e *Executor) evalArrayLit(n *ast.ArrayLit) (value.Value, error) {
	out := make(value.Array, len(n.Items))
	for i, item := range n.Items {
		v, err := e.eval(item)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (e *Executor) evalIfExpr(n *ast.IfExpr) (value.Value, error) {
	cond, err := e.eval(n.Cond)
	if err != nil {
		return nil, err
	}
	if cond.Truthy() {
		return e.eval(n.Then)
	}
	return e.eval(n.Else)
}

func (e *Executor) evalUnary(n *ast.Unary) (value.Value, error) {
	v, err := e.eval(n.Expr)
	if err != nil {
		return nil, err
	}
	switch n.Op {
	case ast.OpNot:
		return value.Bool(!v.Truthy()), nil
	case ast.OpNeg:
		num, ok := v.(value.Num)
		if !ok {
			return nil, diagnostics.New(diagnostics.TypeMismatch, n.Span(), "unary - expects a number, got %s", value.TypeName(v))
		}
		return -num, nil
	}
	return nil, diagnostics.New(diagnostics.InvalidSyntax, n.Span(), "unknown unary operator")
}

func (e *Executor) evalBinary(n *ast.Binary) (value.Value, error) {
	left, err := e.eval(n.Left)
	if err != nil {
		return nil, err
	}
	right, err := e.eval(n.Right)
	if err != nil {
		return nil, err
	}
	switch n.Op {
	case ast.OpAnd:
		return value.Bool(left.Truthy() && right.Truthy()), nil
	case ast.OpOr:
		return value.Bool(left.Truthy() || right.Truthy()), nil
	case ast.OpEq:
		return value.Bool(left.Equal(right)), nil
	case ast.OpNe:
		return value.Bool(!left.Equal(right)), nil
	case ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe:
		return e.evalOrdering(n, left, right)
	case ast.OpAdd:
		return e.evalAdd(n, left, right)
	case ast.OpSub, ast.OpMul, ast.OpDiv, ast.OpMod:
		return e.evalArith(n, left, right)
	}
	return nil, diagnostics.New(diagnostics.InvalidSyntax, n.Span(), "unknown binary operator")
}

func (e *Executor) evalOrdering(n *ast.Binary, left, right value.Value) (value.Value, error) {
	l, ok1 := value.AsNumber(left)
	r, ok2 := value.AsNumber(right)
	if !ok1 || !ok2 {
		return nil, diagnostics.New(diagnostics.TypeMismatch, n.Span(), "comparison requires numeric or coercible operands")
	}
	switch n.Op {
	case ast.OpLt:
		return value.Bool(l < r), nil
	case ast.OpLe:
		return value.Bool(l <= r), nil
	case ast.OpGt:
		return value.Bool(l > r), nil
	case ast.OpGe:
		return value.Bool(l >= r), nil
	}
	panic("unreachable")
}

// evalAdd handles `+`'s string-concatenation special cases: two
// strings concatenate directly, and a string on either side with any
// other value concatenates via that value's Display(), matching
// expressions.rs's Add arm.
func (e *Executor) evalAdd(n *ast.Binary, left, right value.Value) (value.Value, error) {
	ls, lok := left.(value.Str)
	rs, rok := right.(value.Str)
	switch {
	case lok && rok:
		return value.Str(string(ls) + string(rs)), nil
	case lok:
		return value.Str(string(ls) + right.Display()), nil
	case rok:
		return value.Str(left.Display() + string(rs)), nil
	}
	ln, ok1 := left.(value.Num)
	rn, ok2 := right.(value.Num)
	if !ok1 || !ok2 {
		return nil, diagnostics.New(diagnostics.TypeMismatch, n.Span(), "+ requires numbers or strings, got %s and %s",
			value.TypeName(left), value.TypeName(right))
	}
	return ln + rn, nil
}

func (e *Executor) evalArith(n *ast.Binary, left, right value.Value) (value.Value, error) {
	ln, ok1 := left.(value.Num)
	rn, ok2 := right.(value.Num)
	if !ok1 || !ok2 {
		return nil, diagnostics.New(diagnostics.TypeMismatch, n.Span(), "%s requires number operands, got %s and %s",
			binaryOpName(n.Op), value.TypeName(left), value.TypeName(right))
	}
	switch n.Op {
	case ast.OpSub:
		return ln - rn, nil
	case ast.OpMul:
		return ln * rn, nil
	case ast.OpDiv:
		if rn == 0 {
			return nil, diagnostics.New(diagnostics.DivideByZero, n.Span(), "division by zero")
		}
		return ln / rn, nil
	case ast.OpMod:
		if rn == 0 {
			return nil, diagnostics.New(diagnostics.DivideByZero, n.Span(), "modulo by zero")
		}
		return value.Num(int64(ln) % int64(rn)), nil
	}
	panic("unreachable")
}

func binaryOpName(op ast.BinaryOp) string {
	switch op {
	case ast.OpSub:
		return "-"
	case ast.OpMul:
		return "*"
	case ast.OpDiv:
		return "/"
	case ast.OpMod:
		return "%"
	}
	return "?"
}
