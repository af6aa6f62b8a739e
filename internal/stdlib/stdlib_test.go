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

package stdlib

import (
	"testing"

	"github.com/scholzdev/ghook/internal/ast"
)

func TestLoadParsesEveryModule(t *testing.T) {
	lib, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v", err)
	}
	mods := lib.Modules()
	if len(mods) != len(moduleNames) {
		t.Fatalf("got %d modules, want %d", len(mods), len(moduleNames))
	}
	for _, name := range moduleNames {
		stmts, ok := mods[name]
		if !ok {
			t.Fatalf("module %q missing from Modules()", name)
		}
		if len(stmts) == 0 {
			t.Fatalf("module %q parsed to zero statements", name)
		}
	}
}

func TestNamesSorted(t *testing.T) {
	lib, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v", err)
	}
	names := lib.Names()
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Fatalf("Names() not sorted: %v", names)
		}
	}
}

// TestNoDuplicateMacroNames guards the invariant the evaluator's
// LoadStdlib enforces at runtime (spec.md §4.8: "duplicate bare names
// across the library must fail at load time"), so a broken stdlib
// module is caught here rather than only when an evaluator is
// constructed.
func TestNoDuplicateMacroNames(t *testing.T) {
	lib, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v", err)
	}
	seen := map[string]string{}
	for module, stmts := range lib.Modules() {
		for _, stmt := range stmts {
			def, ok := stmt.(*ast.MacroDef)
			if !ok {
				continue
			}
			if owner, dup := seen[def.Name]; dup {
				t.Fatalf("macro %q defined in both %q and %q", def.Name, owner, module)
			}
			seen[def.Name] = module
		}
	}
	if len(seen) == 0 {
		t.Fatal("no macros discovered across any stdlib module")
	}
}
