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
	"errors"
	"strings"

	"github.com/scholzdev/ghook/internal/value"
)

// StringContext dispatches the String variant's properties and methods
// directly over a Go string. Unlike File or Git, String values are not
// wrapped in a value.Object — the evaluator builds a StringContext on
// demand whenever it sees a property or method access on a value.Str
// receiver, per spec.md §4.3.
type StringContext struct {
	S string
}

func (s StringContext) CallProperty(name string) (value.Value, bool) {
	switch name {
	case "length":
		return value.Num(float64(len([]rune(s.S)))), true
	case "upper":
		return value.Str(strings.ToUpper(s.S)), true
	case "lower":
		return value.Str(strings.ToLower(s.S)), true
	}
	return nil, false
}

func (s StringContext) CallMethod(name string, args []value.Value) (value.Value, bool, error) {
	switch name {
	case "reverse":
		r := []rune(s.S)
		for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
			r[i], r[j] = r[j], r[i]
		}
		return value.Str(string(r)), true, nil
	case "len":
		return value.Num(float64(len([]rune(s.S)))), true, nil
	case "is_empty":
		return value.Bool(s.S == ""), true, nil
	case "to_lowercase":
		return value.Str(strings.ToLower(s.S)), true, nil
	case "to_uppercase":
		return value.Str(strings.ToUpper(s.S)), true, nil
	case "trim":
		return value.Str(strings.TrimSpace(s.S)), true, nil
	case "replace":
		from, to, err := twoStringArgs(args)
		if err != nil {
			return nil, true, err
		}
		return value.Str(strings.ReplaceAll(s.S, from, to)), true, nil
	case "contains":
		needle, err := oneStringArg(args)
		if err != nil {
			return nil, true, err
		}
		return value.Bool(strings.Contains(s.S, needle)), true, nil
	case "starts_with":
		needle, err := oneStringArg(args)
		if err != nil {
			return nil, true, err
		}
		return value.Bool(strings.HasPrefix(s.S, needle)), true, nil
	case "ends_with":
		needle, err := oneStringArg(args)
		if err != nil {
			return nil, true, err
		}
		return value.Bool(strings.HasSuffix(s.S, needle)), true, nil
	case "matches":
		pattern, err := oneStringArg(args)
		if err != nil {
			return nil, true, err
		}
		re, err := compileRegex(pattern)
		if err != nil {
			return nil, true, err
		}
		return value.Bool(re.MatchString(s.S)), true, nil
	case "split":
		sep, err := oneStringArg(args)
		if err != nil {
			return nil, true, err
		}
		parts := strings.Split(s.S, sep)
		out := make(value.Array, len(parts))
		for i, p := range parts {
			out[i] = value.Str(p)
		}
		return out, true, nil
	case "lines":
		lines := strings.Split(s.S, "\n")
		out := make(value.Array, len(lines))
		for i, l := range lines {
			out[i] = value.Str(l)
		}
		return out, true, nil
	case "slice":
		return s.slice(args)
	}
	return nil, false, nil
}

// slice implements spec.md §4.3's `slice(start,end)`: negative indices
// count from the end, an empty or inverted range returns "".
func (s StringContext) slice(args []value.Value) (value.Value, bool, error) {
	if len(args) != 2 {
		return nil, true, errors.New("slice expects 2 arguments")
	}
	startF, ok1 := value.AsNumber(args[0])
	endF, ok2 := value.AsNumber(args[1])
	if !ok1 || !ok2 {
		return nil, true, errors.New("slice expects numeric arguments")
	}
	r := []rune(s.S)
	n := len(r)
	start, end := normalizeIndex(int(startF), n), normalizeIndex(int(endF), n)
	if start < 0 {
		start = 0
	}
	if end > n {
		end = n
	}
	if start >= end {
		return value.Str(""), true, nil
	}
	return value.Str(string(r[start:end])), true, nil
}

func normalizeIndex(i, n int) int {
	if i < 0 {
		return n + i
	}
	return i
}

func oneStringArg(args []value.Value) (string, error) {
	if len(args) != 1 {
		return "", errors.New("expects 1 string argument")
	}
	s, ok := args[0].(value.Str)
	if !ok {
		return "", errors.New("expects a string argument")
	}
	return string(s), nil
}

func twoStringArgs(args []value.Value) (string, string, error) {
	if len(args) != 2 {
		return "", "", errors.New("expects 2 string arguments")
	}
	a, ok1 := args[0].(value.Str)
	b, ok2 := args[1].(value.Str)
	if !ok1 || !ok2 {
		return "", "", errors.New("expects string arguments")
	}
	return string(a), string(b), nil
}
