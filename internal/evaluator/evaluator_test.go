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
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/scholzdev/ghook/internal/ast"
	"github.com/scholzdev/ghook/internal/parser"
	"github.com/scholzdev/ghook/internal/typedcontext"
	"github.com/scholzdev/ghook/internal/value"
)

func mustParse(t *testing.T, src string) []ast.Stmt {
	t.Helper()
	stmts, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q): %v", src, err)
	}
	return stmts
}

func newTestGit(d typedcontext.GitData) value.Value {
	return typedcontext.NewGit(d)
}

func run(t *testing.T, src string, git typedcontext.GitData) (Result, error) {
	t.Helper()
	ex := New(DefaultConfig(), t.TempDir())
	ex.SetVariable("git", newTestGit(git))
	ex.SetVariable("env", typedcontext.NewEnv())
	return ex.Execute(context.Background(), mustParse(t, src))
}

func TestBlockStopsExecution(t *testing.T) {
	res, err := run(t, `
		block "first"
		block "second"
	`, typedcontext.GitData{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !res.Blocked {
		t.Fatalf("want Blocked = true")
	}
	if diff := cmp.Diff([]string{"first"}, res.Blocks); diff != "" {
		t.Fatalf("Blocks mismatch (-want +got):\n%s", diff)
	}
}

func TestWarnDoesNotBlock(t *testing.T) {
	res, err := run(t, `warn "heads up"`, typedcontext.GitData{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Blocked {
		t.Fatalf("want Blocked = false")
	}
	if diff := cmp.Diff([]string{"heads up"}, res.Warnings); diff != "" {
		t.Fatalf("Warnings mismatch (-want +got):\n%s", diff)
	}
}

func TestForEachRestoresPriorBinding(t *testing.T) {
	res, err := run(t, `
		let f = "outer"
		foreach ["a", "b"] {
			f in
			let seen = f
		}
		block f
	`, typedcontext.GitData{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !res.Blocked || len(res.Blocks) != 1 || res.Blocks[0] != "outer" {
		t.Fatalf("got Blocks = %v, want [\"outer\"] (loop var must not leak)", res.Blocks)
	}
}

func TestForEachMatchingGlobFiltersByName(t *testing.T) {
	res, err := run(t, `
		foreach git.files.staged matching "*.env" {
			f in
			block f.name
		}
	`, typedcontext.GitData{
		Files: typedcontext.FilesCollectionData{
			Staged: value.Array{
				typedcontext.NewFile("/repo/a.env", "a.env", noDiff, noContent),
				typedcontext.NewFile("/repo/b.go", "b.go", noDiff, noContent),
			},
		},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if diff := cmp.Diff([]string{"a.env"}, res.Blocks); diff != "" {
		t.Fatalf("Blocks mismatch (-want +got):\n%s", diff)
	}
}

func TestForEachEmptyCollectionStillCountsAsACheck(t *testing.T) {
	res, err := run(t, `foreach [] { f in block "never" }`, typedcontext.GitData{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.TestsRun != 1 {
		t.Fatalf("TestsRun = %d, want 1", res.TestsRun)
	}
	if res.Blocked {
		t.Fatalf("want Blocked = false on empty collection")
	}
}

func TestMacroParamsDoNotLeakOrOverwritePriorBinding(t *testing.T) {
	res, err := run(t, `
		let x = "outer"
		macro set(x) {
			warn x
		}
		@set("inner")
		block x
	`, typedcontext.GitData{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if diff := cmp.Diff([]string{"inner"}, res.Warnings); diff != "" {
		t.Fatalf("Warnings mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"outer"}, res.Blocks); diff != "" {
		t.Fatalf("Blocks mismatch (-want +got):\n%s", diff)
	}
}

func TestStdlibDuplicateBareNameFailsAtLoad(t *testing.T) {
	ex := New(DefaultConfig(), t.TempDir())
	err := ex.LoadStdlib(fakeStdlib{
		"a": mustParse(t, `macro dup() { warn "a" }`),
		"b": mustParse(t, `macro dup() { warn "b" }`),
	})
	if err == nil {
		t.Fatalf("LoadStdlib: want error on duplicate bare macro name, got nil")
	}
}

func TestStdlibMacroCallableByBareName(t *testing.T) {
	ex := New(DefaultConfig(), t.TempDir())
	if err := ex.LoadStdlib(fakeStdlib{
		"greet": mustParse(t, `macro hello() { warn "hi" }`),
	}); err != nil {
		t.Fatalf("LoadStdlib: %v", err)
	}
	ex.SetVariable("git", newTestGit(typedcontext.GitData{}))
	res, err := ex.Execute(context.Background(), mustParse(t, `@hello()`))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if diff := cmp.Diff([]string{"hi"}, res.Warnings); diff != "" {
		t.Fatalf("Warnings mismatch (-want +got):\n%s", diff)
	}
}

func TestImportAliasNamespacesNewMacros(t *testing.T) {
	ex := New(DefaultConfig(), t.TempDir())
	ex.SetImporter(fakeImporter{"lib.ghook": `macro hello() { warn "hi from lib" }`})
	ex.SetVariable("git", newTestGit(typedcontext.GitData{}))
	res, err := ex.Execute(context.Background(), mustParse(t, `
		import "lib.ghook" as lib
		@lib.hello()
	`))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if diff := cmp.Diff([]string{"hi from lib"}, res.Warnings); diff != "" {
		t.Fatalf("Warnings mismatch (-want +got):\n%s", diff)
	}
}

type fakeImporter map[string]string

func (f fakeImporter) Read(path string) (string, error) { return f[path], nil }

func TestAndOrDoNotShortCircuit(t *testing.T) {
	// Both sides must be evaluated even once the result is already
	// decided; an undefined-variable reference on the "skippable" side
	// should still surface as an error.
	_, err := run(t, `
		if false and undefined_var {
			warn "unreachable"
		}
	`, typedcontext.GitData{})
	if err == nil {
		t.Fatalf("want an error evaluating the right-hand side of 'and', got nil")
	}
}

func TestAddStringConcatSpecialCases(t *testing.T) {
	res, err := run(t, `
		block "n=" + 3
		block 3 + "=n"
		block "a" + "b"
	`, typedcontext.GitData{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	want := []string{"n=3", "3=n", "ab"}
	if diff := cmp.Diff(want, res.Blocks); diff != "" {
		t.Fatalf("Blocks mismatch (-want +got):\n%s", diff)
	}
}

func TestIndexVsMethodCallNullVsErrorDivergence(t *testing.T) {
	// Array.first()/last() return Null on an empty array rather than
	// erroring, but an out-of-bounds index access is a hard error.
	res, err := run(t, `
		let empty = []
		block type_of(empty.first())
	`, typedcontext.GitData{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if diff := cmp.Diff([]string{"null"}, res.Blocks); diff != "" {
		t.Fatalf("Blocks mismatch (-want +got):\n%s", diff)
	}

	_, err = run(t, `let empty = [] let x = empty[0]`, typedcontext.GitData{})
	if err == nil {
		t.Fatalf("want an error indexing out of bounds, got nil")
	}
}

func TestForEachMatchingIsSuffixNotPathAware(t *testing.T) {
	res, err := run(t, `
		foreach git.files.staged matching "*.go" {
			f in
			block f.name
		}
	`, typedcontext.GitData{
		Files: typedcontext.FilesCollectionData{
			Staged: value.Array{
				typedcontext.NewFile("/repo/src/a.go", "src/a.go", noDiff, noContent),
				typedcontext.NewFile("/repo/src/sub/b.go", "src/sub/b.go", noDiff, noContent),
				typedcontext.NewFile("/repo/README.md", "README.md", noDiff, noContent),
			},
		},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	// matching has no notion of "/" as a path separator: a leading "*"
	// is a plain suffix check against the whole staged-file name, so it
	// matches every ".go" file regardless of directory depth.
	if diff := cmp.Diff([]string{"src/a.go", "src/sub/b.go"}, res.Blocks); diff != "" {
		t.Fatalf("Blocks mismatch (-want +got):\n%s", diff)
	}
}

func TestParallelStopsAtFirstErrorInListOrder(t *testing.T) {
	res, err := run(t, `
		parallel {
			run "true"
			run "false"
			run "true"
		}
	`, typedcontext.GitData{})
	if err == nil {
		t.Fatalf("want an error from the failing command")
	}
	if res.TestsRun != 0 {
		t.Fatalf("TestsRun = %d, want 0 (a failing batch must not count toward tests_run)", res.TestsRun)
	}
}

func TestParallelCountsAllCommandsWhenAllSucceed(t *testing.T) {
	res, err := run(t, `
		parallel {
			run "true"
			run "true"
			run "true"
		}
	`, typedcontext.GitData{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.TestsRun != 3 {
		t.Fatalf("TestsRun = %d, want 3", res.TestsRun)
	}
}

func TestSecretScanSurfacesBackendFindings(t *testing.T) {
	res, err := run(t, `
		foreach git.secret_scan() {
			finding in
			block "leak in " + finding.file
		}
	`, typedcontext.GitData{
		SecretFindings: []typedcontext.SecretFindingData{
			{File: "config.yaml", Line: 3, Content: "password: hunter2"},
		},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if diff := cmp.Diff([]string{"leak in config.yaml"}, res.Blocks); diff != "" {
		t.Fatalf("Blocks mismatch (-want +got):\n%s", diff)
	}
}

func TestResultStructureMatchesExpected(t *testing.T) {
	res, err := run(t, `
		warn "w1"
		block "b1"
	`, typedcontext.GitData{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	want := Result{
		Blocked:  true,
		Warnings: []string{"w1"},
		Blocks:   []string{"b1"},
		TestsRun: 0,
	}
	if diff := cmp.Diff(want, res, cmpopts.IgnoreFields(Result{}, "Checks")); diff != "" {
		t.Fatalf("Result mismatch (-want +got):\n%s", diff)
	}
}

func noDiff() (string, error)    { return "", nil }
func noContent() (string, error) { return "", nil }

// fakeStdlib lets tests install arbitrary stdlib module bodies without
// going through internal/stdlib's embedded files.
type fakeStdlib map[string][]ast.Stmt

func (f fakeStdlib) Modules() map[string][]ast.Stmt { return f }
