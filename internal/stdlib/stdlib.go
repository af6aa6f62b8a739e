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

// Package stdlib bundles the GHook standard library: a fixed set of
// .ghook module sources, embedded at build time and tokenized/parsed
// once at construction, per spec.md §4.8.
package stdlib

import (
	"embed"
	"fmt"
	"sort"

	"github.com/scholzdev/ghook/internal/ast"
	"github.com/scholzdev/ghook/internal/parser"
)

//go:embed modules/*.ghook
var sources embed.FS

// moduleNames lists the embedded modules in a fixed order so load
// failures are reproducible across runs.
var moduleNames = []string{"common", "commit", "diff", "secrets", "files"}

// Library is the parsed, ready-to-register form of the standard
// library. It implements evaluator.Stdlib without this package
// depending on the evaluator package, keeping the dependency direction
// the same one-way shape as the rest of internal/typedcontext.
type Library struct {
	modules map[string][]ast.Stmt
}

// Load reads, tokenizes, and parses every embedded module. A parse
// error in any module is fatal, matching the original's
// "standard library must load successfully" expectation: a broken
// stdlib module is a build-time bug, not a runtime condition to
// recover from.
func Load() (*Library, error) {
	modules := make(map[string][]ast.Stmt, len(moduleNames))
	for _, name := range moduleNames {
		data, err := sources.ReadFile("modules/" + name + ".ghook")
		if err != nil {
			return nil, fmt.Errorf("stdlib: read module %q: %w", name, err)
		}
		stmts, err := parser.Parse(string(data))
		if err != nil {
			return nil, fmt.Errorf("stdlib: parse module %q: %w", name, err)
		}
		modules[name] = stmts
	}
	return &Library{modules: modules}, nil
}

// Modules returns the parsed statement list for every bundled module,
// satisfying evaluator.Stdlib.
func (l *Library) Modules() map[string][]ast.Stmt {
	return l.modules
}

// Names returns the bundled module names sorted alphabetically, used
// by the façade and CLI to print `ghook list --stdlib`-style output.
func (l *Library) Names() []string {
	names := make([]string, 0, len(l.modules))
	for name := range l.modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
