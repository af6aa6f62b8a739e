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

package value

import "testing"

func TestTruthiness(t *testing.T) {
	falsy := []Value{Bool(false), Null{}, Str(""), Num(0), Array{}}
	for _, v := range falsy {
		if v.Truthy() {
			t.Errorf("%#v.Truthy() = true, want false", v)
		}
	}
	truthy := []Value{Bool(true), Str("x"), Num(1), Num(-1), Array{Num(0)}, NewObject("File")}
	for _, v := range truthy {
		if !v.Truthy() {
			t.Errorf("%#v.Truthy() = false, want true", v)
		}
	}
}

func TestNumberDisplayOmitsTrailingZero(t *testing.T) {
	tests := []struct {
		n    Num
		want string
	}{
		{3, "3"},
		{3.0, "3"},
		{3.5, "3.5"},
		{0, "0"},
		{-4, "-4"},
	}
	for _, tc := range tests {
		if got := tc.n.Display(); got != tc.want {
			t.Errorf("Num(%v).Display() = %q, want %q", float64(tc.n), got, tc.want)
		}
	}
}

func TestArrayDisplayJoinsRecursively(t *testing.T) {
	arr := Array{Num(1), Str("x"), Array{Num(2), Num(3)}}
	want := "1, x, 2, 3"
	if got := arr.Display(); got != want {
		t.Errorf("Array.Display() = %q, want %q", got, want)
	}
}

func TestNumberEqualityWithinEpsilon(t *testing.T) {
	a := Num(1.0000000001)
	b := Num(1.0000000002)
	if !a.Equal(b) {
		t.Error("Num values within epsilon compared unequal")
	}
	if Num(1).Equal(Num(2)) {
		t.Error("distinct numbers compared equal")
	}
}

func TestEqualityIsTypeExact(t *testing.T) {
	if Num(1).Equal(Str("1")) {
		t.Error("Num(1).Equal(Str(\"1\")) = true, want false (type-exact equality)")
	}
	if Bool(true).Equal(Num(1)) {
		t.Error("Bool(true).Equal(Num(1)) = true, want false")
	}
}

func TestArrayDeepEquality(t *testing.T) {
	a := Array{Num(1), Array{Str("x")}}
	b := Array{Num(1), Array{Str("x")}}
	c := Array{Num(1), Array{Str("y")}}
	if !a.Equal(b) {
		t.Error("structurally identical arrays compared unequal")
	}
	if a.Equal(c) {
		t.Error("structurally different arrays compared equal")
	}
}

func TestAsNumberCoercion(t *testing.T) {
	if f, ok := AsNumber(Str("3.5")); !ok || f != 3.5 {
		t.Errorf("AsNumber(Str(3.5)) = (%v, %v), want (3.5, true)", f, ok)
	}
	if _, ok := AsNumber(Str("nope")); ok {
		t.Error("AsNumber(Str(\"nope\")) succeeded, want failure")
	}
	if f, ok := AsNumber(Bool(true)); !ok || f != 1 {
		t.Errorf("AsNumber(Bool(true)) = (%v, %v), want (1, true)", f, ok)
	}
}

func TestObjectPropertyFallsThroughToMap(t *testing.T) {
	obj := NewObject("File")
	obj.Properties["name"] = Str("main.go")
	v, ok := obj.Property("name")
	if !ok || v.(Str) != "main.go" {
		t.Errorf("Property(name) = (%v, %v), want (main.go, true)", v, ok)
	}
	if _, ok := obj.Property("missing"); ok {
		t.Error("Property(missing) found, want not found")
	}
}

type stubContext struct{ val Value }

func (s stubContext) CallProperty(name string) (Value, bool) {
	if name == "special" {
		return s.val, true
	}
	return nil, false
}

func (s stubContext) CallMethod(name string, args []Value) (Value, bool, error) {
	if name == "double" && len(args) == 0 {
		n := float64(s.val.(Num))
		return Num(n * 2), true, nil
	}
	return nil, false, nil
}

func TestObjectContextTakesPriority(t *testing.T) {
	obj := NewObject("Number")
	obj.Properties["special"] = Str("shadowed")
	obj.Context = stubContext{val: Num(21)}
	v, ok := obj.Property("special")
	if !ok || v.(Num) != 21 {
		t.Errorf("Property(special) = (%v, %v), want (21, true) from context", v, ok)
	}
	v, ok, err := obj.Method("double", nil)
	if err != nil || !ok || v.(Num) != 42 {
		t.Errorf("Method(double) = (%v, %v, %v), want (42, true, nil)", v, ok, err)
	}
}
