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

package resolver

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/scholzdev/ghook/internal/filesystem"
)

func writeLocalPackage(t *testing.T, home string) {
	t.Helper()
	dir := filesystem.Dir(home)
	if err := dir.Apply(
		filesystem.Operation{Op: filesystem.Mkdir, Name: ".githook"},
		filesystem.Operation{Op: filesystem.Mkdir, Name: ".githook/packages"},
		filesystem.Operation{Op: filesystem.Mkdir, Name: ".githook/packages/local"},
		filesystem.Operation{Op: filesystem.Mkdir, Name: ".githook/packages/local/lint"},
		filesystem.Operation{Op: filesystem.Write, Name: ".githook/packages/local/lint/lint.ghook", Content: `macro noop() {}`},
	); err != nil {
		t.Fatal(err)
	}
}

func TestResolveLocal(t *testing.T) {
	home := t.TempDir()
	writeLocalPackage(t, home)
	c := New(Config{HomeDir: home}, nil)
	src, err := c.Resolve(context.Background(), "local", "lint")
	if err != nil {
		t.Fatalf("Resolve() = %v", err)
	}
	if src != `macro noop() {}` {
		t.Fatalf("Resolve() = %q", src)
	}
}

func TestResolveLocalCached(t *testing.T) {
	home := t.TempDir()
	writeLocalPackage(t, home)
	dir := filepath.Join(home, ".githook", "packages", "local", "lint")
	c := New(Config{HomeDir: home}, nil)
	if _, err := c.Resolve(context.Background(), "local", "lint"); err != nil {
		t.Fatal(err)
	}
	if err := os.RemoveAll(dir); err != nil {
		t.Fatal(err)
	}
	src, err := c.Resolve(context.Background(), "local", "lint")
	if err != nil {
		t.Fatalf("Resolve() should hit the in-memory cache after the file was removed, got %v", err)
	}
	if src != `macro noop() {}` {
		t.Fatalf("Resolve() = %q", src)
	}
}

func TestResolveLocalMissing(t *testing.T) {
	c := New(Config{HomeDir: t.TempDir()}, nil)
	if _, err := c.Resolve(context.Background(), "local", "missing"); err == nil {
		t.Fatal("Resolve() on a missing local package should fail")
	}
}

func TestValidateIdentifierRejectsTraversal(t *testing.T) {
	c := New(Config{HomeDir: t.TempDir()}, nil)
	cases := []string{"..", "a/b", `a\b`, "a.b", ""}
	for _, bad := range cases {
		if _, err := c.Resolve(context.Background(), bad, "name"); err == nil {
			t.Errorf("Resolve(namespace=%q, ...) should have failed validation", bad)
		}
		if _, err := c.Resolve(context.Background(), "local", bad); err == nil {
			t.Errorf("Resolve(..., name=%q) should have failed validation", bad)
		}
	}
}

func TestValidateIdentifierRejectsOverlong(t *testing.T) {
	c := New(Config{HomeDir: t.TempDir()}, nil)
	long := make([]byte, 101)
	for i := range long {
		long[i] = 'a'
	}
	if _, err := c.Resolve(context.Background(), string(long), "name"); err == nil {
		t.Fatal("Resolve() should reject a namespace over 100 characters")
	}
}

func TestFetchRemoteRejectsUnsupportedType(t *testing.T) {
	c := New(Config{HomeDir: t.TempDir(), RemoteType: "gitlab"}, nil)
	if _, err := c.Resolve(context.Background(), "acme", "lint"); err == nil {
		t.Fatal("Resolve() should reject a non-github remote type")
	}
}
