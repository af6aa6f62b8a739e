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
	"context"

	"github.com/scholzdev/ghook/internal/ast"
	"github.com/scholzdev/ghook/internal/value"
)

// execForEach implements `foreach <collection> [matching "glob"] { x in ... }`,
// grounded on executor/mod.rs's execute_foreach. A collection that is
// neither an Array nor a Git object whose files.all property is an Array
// is silently skipped (Continue), not an error: only the shape check
// fails loudly, via the caller's own property-access errors.
func (e *Executor) execForEach(ctx context.Context, n *ast.ForEach) (flow, error) {
	coll, err := e.eval(n.Collection)
	if err != nil {
		return flowNone, err
	}
	items, ok := asIterable(coll)
	if !ok {
		return flowNone, nil
	}
	if len(items) == 0 {
		e.testsRun++
		return flowNone, nil
	}

	old, existed := e.variables[n.Var]
	defer func() {
		if existed {
			e.variables[n.Var] = old
		} else {
			delete(e.variables, n.Var)
		}
	}()

	for _, item := range items {
		if n.HasGlob {
			name, ok := itemName(item)
			if !ok {
				continue
			}
			if !e.glob.Match(n.Glob, name) {
				continue
			}
		}
		e.variables[n.Var] = item
		f, err := e.execStmts(ctx, n.Body)
		if err != nil {
			return flowNone, err
		}
		switch f {
		case flowBreak:
			return flowNone, nil
		case flowContinueLoop:
			continue
		case flowBlocked:
			return f, nil
		}
	}
	return flowNone, nil
}

// asIterable returns the items a foreach loop walks: an Array directly,
// or a Git object's files.all property when it is itself an Array.
func asIterable(v value.Value) (value.Array, bool) {
	switch x := v.(type) {
	case value.Array:
		return x, true
	case *value.Object:
		if x.TypeName != "Git" {
			return nil, false
		}
		files, ok := x.Property("files")
		if !ok {
			return nil, false
		}
		filesObj, ok := files.(*value.Object)
		if !ok {
			return nil, false
		}
		staged, ok := filesObj.Property("all")
		if !ok {
			return nil, false
		}
		arr, ok := staged.(value.Array)
		return arr, ok
	}
	return nil, false
}

// itemName extracts the name used by a `matching` clause: a bare
// string item is used as-is; an Object item contributes its "name"
// property if that property is itself a string. Anything else is
// silently skipped, matching execute_foreach.
func itemName(v value.Value) (string, bool) {
	switch x := v.(type) {
	case value.Str:
		return string(x), true
	case *value.Object:
		prop, ok := x.Property("name")
		if !ok {
			return "", false
		}
		s, ok := prop.(value.Str)
		return string(s), ok
	}
	return "", false
}
