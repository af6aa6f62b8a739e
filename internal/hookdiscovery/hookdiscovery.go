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

// Package hookdiscovery locates the .ghook file for a given Git hook
// type, per spec.md §6.2.
package hookdiscovery

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// NotFoundError is returned by Find when no .ghook file exists
// anywhere in the search order.
type NotFoundError struct {
	HookType string
	Dir      string
	Tried    []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("hookdiscovery: no .ghook file for hook %q in %s (tried %s)",
		e.HookType, e.Dir, strings.Join(e.Tried, ", "))
}

// Find locates the .ghook file to run for hookType, rooted at dir
// (normally the repository's top-level working directory). If
// hookType already names a path ending in ".ghook", that path is
// returned directly provided it exists, matching spec.md's "a direct
// *.ghook path is accepted" rule. Otherwise it searches, in order:
//
//  1. <dir>/.githook/<hookType>.ghook
//  2. <dir>/.git/hooks/<hookType>.ghook
//  3. <dir>/<hookType>.ghook
//
// and returns the first that exists.
func Find(dir, hookType string) (string, error) {
	if strings.HasSuffix(hookType, ".ghook") {
		path := hookType
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		if isFile(path) {
			return path, nil
		}
		return "", &NotFoundError{HookType: hookType, Dir: dir, Tried: []string{path}}
	}

	candidates := []string{
		filepath.Join(dir, ".githook", hookType+".ghook"),
		filepath.Join(dir, ".git", "hooks", hookType+".ghook"),
		filepath.Join(dir, hookType+".ghook"),
	}
	for _, c := range candidates {
		if isFile(c) {
			return c, nil
		}
	}
	return "", &NotFoundError{HookType: hookType, Dir: dir, Tried: candidates}
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
