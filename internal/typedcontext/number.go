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
	"math"

	"github.com/scholzdev/ghook/internal/value"
)

// NumberContext dispatches the Number variant's methods, built on demand
// by the evaluator over a value.Num receiver (see StringContext's doc).
type NumberContext struct {
	N float64
}

func (NumberContext) CallProperty(name string) (value.Value, bool) { return nil, false }

func (n NumberContext) CallMethod(name string, args []value.Value) (value.Value, bool, error) {
	switch name {
	case "abs":
		return value.Num(math.Abs(n.N)), true, nil
	case "floor":
		return value.Num(math.Floor(n.N)), true, nil
	case "ceil":
		return value.Num(math.Ceil(n.N)), true, nil
	case "round":
		return value.Num(math.Round(n.N)), true, nil
	case "sqrt":
		return value.Num(math.Sqrt(n.N)), true, nil
	case "sin":
		return value.Num(math.Sin(n.N)), true, nil
	case "cos":
		return value.Num(math.Cos(n.N)), true, nil
	case "tan":
		return value.Num(math.Tan(n.N)), true, nil
	case "percent":
		return value.Num(n.N * 100), true, nil
	case "pow":
		if len(args) != 1 {
			return nil, true, errors.New("pow expects 1 argument")
		}
		exp, ok := value.AsNumber(args[0])
		if !ok {
			return nil, true, errors.New("pow expects a numeric argument")
		}
		return value.Num(math.Pow(n.N, exp)), true, nil
	}
	return nil, false, nil
}
