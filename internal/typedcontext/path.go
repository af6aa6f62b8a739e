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

// Package typedcontext implements the closed set of typed contexts a
// value.Object can carry, per spec.md §4.3: File, Path, Git,
// FilesCollection, Branch, Commit, Author, Remote, DiffStats, String,
// Number, Array, HttpResponse and Http. Each is a fixed switch-dispatched
// property/method set, not an open trait-object hierarchy (spec.md §9).
package typedcontext

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/scholzdev/ghook/internal/value"
)

// PathContext exposes path-string accessors without touching the
// filesystem, per spec.md §4.3's Path variant.
type PathContext struct {
	Path string
}

func NewPath(p string) *value.Object {
	obj := value.NewObject("Path")
	obj.Context = PathContext{Path: p}
	return obj
}

func (p PathContext) CallProperty(name string) (value.Value, bool) {
	switch name {
	case "string":
		return value.Str(p.Path), true
	case "basename":
		return value.Str(filepath.Base(p.Path)), true
	case "extension":
		ext := filepath.Ext(p.Path)
		return value.Str(strings.TrimPrefix(ext, ".")), true
	case "parent":
		return value.Str(filepath.Dir(p.Path)), true
	case "filename":
		return value.Str(filepath.Base(p.Path)), true
	}
	return nil, false
}

func (p PathContext) CallMethod(name string, args []value.Value) (value.Value, bool, error) {
	switch name {
	case "join":
		if len(args) != 1 {
			return nil, true, errors.New("join expects 1 argument")
		}
		other, ok := args[0].(value.Str)
		if !ok {
			return nil, true, errors.New("join expects a string argument")
		}
		return value.Str(filepath.Join(p.Path, string(other))), true, nil
	}
	return nil, false, nil
}
