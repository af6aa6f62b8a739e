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

// Package value implements the GHook dynamic value model: strings,
// numbers, booleans, null, arrays and objects, per spec.md §4.3.
package value

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/exp/slices"
)

// Kind tags the dynamic type of a Value.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindBool
	KindNull
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindNull:
		return "null"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	}
	return "unknown"
}

// Epsilon bounds floating-point equality between two Number values.
const Epsilon = 1e-9

// Value is any GHook runtime value.
type Value interface {
	Kind() Kind
	Truthy() bool
	Display() string
	Equal(other Value) bool
}

// Context is the capability a typed Object can carry: a host-defined
// property/method dispatcher consulted before the object's own dynamic
// property map. Implemented by internal/typedcontext; declared here
// instead of there so that package depends on value, not the reverse.
type Context interface {
	// CallProperty returns (value, true) when name is one of the
	// context's properties, or (nil, false) to fall through to the
	// object's dynamic property map.
	CallProperty(name string) (Value, bool)
	// CallMethod returns (value, true, err) when name is one of the
	// context's methods, or (nil, false, nil) to fall through.
	CallMethod(name string, args []Value) (Value, bool, error)
}

// Str is a GHook string value.
type Str string

func (Str) Kind() Kind          { return KindString }
func (s Str) Truthy() bool      { return s != "" }
func (s Str) Display() string   { return string(s) }
func (s Str) Equal(o Value) bool {
	other, ok := o.(Str)
	return ok && s == other
}

// Num is a GHook number value, stored as a float64 per spec.md §3.
type Num float64

func (Num) Kind() Kind     { return KindNumber }
func (n Num) Truthy() bool { return n != 0 }

// Display formats a whole-valued number without a trailing ".0",
// per spec.md §4.3.
func (n Num) Display() string {
	f := float64(n)
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func (n Num) Equal(o Value) bool {
	other, ok := o.(Num)
	if !ok {
		return false
	}
	d := float64(n - other)
	if d < 0 {
		d = -d
	}
	return d < Epsilon
}

// Bool is a GHook boolean value.
type Bool bool

func (Bool) Kind() Kind     { return KindBool }
func (b Bool) Truthy() bool { return bool(b) }
func (b Bool) Display() string {
	if b {
		return "true"
	}
	return "false"
}
func (b Bool) Equal(o Value) bool {
	other, ok := o.(Bool)
	return ok && b == other
}

// Null is the GHook null value; there is exactly one: Null{}.
type Null struct{}

func (Null) Kind() Kind        { return KindNull }
func (Null) Truthy() bool      { return false }
func (Null) Display() string   { return "null" }
func (Null) Equal(o Value) bool {
	_, ok := o.(Null)
	return ok
}

// Array is an ordered, homogeneous-or-not list of Values.
type Array []Value

func (Array) Kind() Kind     { return KindArray }
func (a Array) Truthy() bool { return len(a) > 0 }

func (a Array) Display() string {
	parts := make([]string, len(a))
	for i, v := range a {
		parts[i] = v.Display()
	}
	return strings.Join(parts, ", ")
}

func (a Array) Equal(o Value) bool {
	other, ok := o.(Array)
	if !ok || len(a) != len(other) {
		return false
	}
	for i := range a {
		if !a[i].Equal(other[i]) {
			return false
		}
	}
	return true
}

// Clone returns a shallow copy so callers (e.g. foreach, closures) can
// iterate without aliasing the caller's backing array.
func (a Array) Clone() Array { return slices.Clone(a) }

// First, Last, Sum and IsEmpty implement Array's non-closure methods,
// §4.3's `first, last, is_empty, sum`.
func (a Array) First() Value {
	if len(a) == 0 {
		return Null{}
	}
	return a[0]
}

func (a Array) Last() Value {
	if len(a) == 0 {
		return Null{}
	}
	return a[len(a)-1]
}

func (a Array) IsEmpty() bool { return len(a) == 0 }

// Sum adds every element as a number; a non-numeric element is an
// error, surfaced by the caller (internal/evaluator) as a spanned
// TypeMismatch.
func (a Array) Sum() (Num, error) {
	var total Num
	for _, v := range a {
		n, ok := v.(Num)
		if !ok {
			return 0, fmt.Errorf("sum: element of kind %s is not a number", v.Kind())
		}
		total += n
	}
	return total, nil
}

// Object is a GHook object: a type name, a dynamic property map, and an
// optional typed context consulted first on property/method lookup.
type Object struct {
	TypeName   string
	Properties map[string]Value
	Context    Context // nil when the object carries no typed context
}

func NewObject(typeName string) *Object {
	return &Object{TypeName: typeName, Properties: map[string]Value{}}
}

func (*Object) Kind() Kind   { return KindObject }
func (*Object) Truthy() bool { return true } // spec.md §4.3: objects are always truthy

func (o *Object) Display() string {
	return fmt.Sprintf("<%s>", o.TypeName)
}

func (o *Object) Equal(other Value) bool {
	return o == other // objects compare by identity; no structural Object equality is specified
}

// Property resolves name via the typed context first, then the dynamic
// property map, per spec.md §4.3's lookup order.
func (o *Object) Property(name string) (Value, bool) {
	if o.Context != nil {
		if v, ok := o.Context.CallProperty(name); ok {
			return v, true
		}
	}
	v, ok := o.Properties[name]
	return v, ok
}

// Method resolves name via the typed context; objects with no context
// (or whose context doesn't own the name) have no dynamic methods.
func (o *Object) Method(name string, args []Value) (Value, bool, error) {
	if o.Context == nil {
		return nil, false, nil
	}
	return o.Context.CallMethod(name, args)
}

// AsNumber coerces v for ordering comparisons, per spec.md §4.3
// ("Ordering comparisons coerce both sides through as_number and fail
// the call if coercion fails").
func AsNumber(v Value) (float64, bool) {
	switch n := v.(type) {
	case Num:
		return float64(n), true
	case Str:
		f, err := strconv.ParseFloat(string(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	case Bool:
		if n {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

// TypeName reports the informal type name used in error messages and
// Object's default Display, matching the union's kind names.
func TypeName(v Value) string {
	if obj, ok := v.(*Object); ok {
		return obj.TypeName
	}
	return v.Kind().String()
}
