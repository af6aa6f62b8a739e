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

package ghook_test

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/scholzdev/ghook"
)

// newTestRepo initializes a fresh repository in a temp dir, skipping
// the test if git isn't installed, matching
// internal/gitbackend's own git-integration test idiom.
func newTestRepo(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping git integration test in -short mode")
	}
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not found:", err)
	}
	dir := t.TempDir()
	run := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=Test", "GIT_AUTHOR_EMAIL=test@example.com",
			"GIT_COMMITTER_NAME=Test", "GIT_COMMITTER_EMAIL=test@example.com",
		)
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v: %v\n%s", args, err, out)
		}
	}
	run("init", "-b", "main", "-q")
	run("config", "user.name", "Test")
	run("config", "user.email", "test@example.com")
	return dir
}

func writeHook(t *testing.T, dir, body string) {
	t.Helper()
	githookDir := filepath.Join(dir, ".githook")
	if err := os.MkdirAll(githookDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(githookDir, "pre-commit.ghook"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestRunBlocksOnStagedSecret(t *testing.T) {
	dir := newTestRepo(t)
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("password: hunter2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	add := exec.Command("git", "add", "config.yaml")
	add.Dir = dir
	if out, err := add.CombinedOutput(); err != nil {
		t.Fatalf("git add: %v\n%s", err, out)
	}
	writeHook(t, dir, `
		foreach git.secret_scan() {
			finding in
			block "possible secret in " + finding.file
		}
	`)

	outcome, err := ghook.Run(context.Background(), ghook.Options{RepoDir: dir, HookType: "pre-commit"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !outcome.Blocked {
		t.Fatalf("want Blocked = true, got Blocks = %v", outcome.Blocks)
	}
	if outcome.ExitCode() != 1 {
		t.Fatalf("ExitCode() = %d, want 1", outcome.ExitCode())
	}
}

func TestRunAllowsCleanCommit(t *testing.T) {
	dir := newTestRepo(t)
	if err := os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	add := exec.Command("git", "add", "main.go")
	add.Dir = dir
	if out, err := add.CombinedOutput(); err != nil {
		t.Fatalf("git add: %v\n%s", err, out)
	}
	writeHook(t, dir, `warn "reminder: run the linter"`)

	outcome, err := ghook.Run(context.Background(), ghook.Options{RepoDir: dir, HookType: "pre-commit"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if outcome.Blocked {
		t.Fatalf("want Blocked = false, got Blocks = %v", outcome.Blocks)
	}
	if outcome.ExitCode() != 0 {
		t.Fatalf("ExitCode() = %d, want 0", outcome.ExitCode())
	}
	if len(outcome.Warnings) != 1 || outcome.Warnings[0] != "reminder: run the linter" {
		t.Fatalf("Warnings = %v", outcome.Warnings)
	}
}

func TestRunNoHookFileReturnsError(t *testing.T) {
	dir := newTestRepo(t)
	_, err := ghook.Run(context.Background(), ghook.Options{RepoDir: dir, HookType: "pre-commit"})
	if err == nil {
		t.Fatalf("want an error when no .ghook file exists")
	}
}
