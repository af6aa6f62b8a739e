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
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/scholzdev/ghook/internal/value"
)

// FileContext embeds path accessors plus git-aware diff/content, per
// spec.md §4.3's File variant ("embeds a Path").
//
// DiffFn and ContentFn are injected rather than resolved by stat'ing the
// working tree directly, since a file's diff and staged content come
// from the git backend (internal/gitbackend), which this package does
// not import in order to keep the dependency direction one-way
// (gitbackend depends on nothing here; the evaluator wires the two
// together when it builds File objects).
type FileContext struct {
	AbsPath   string
	RelPath   string // the name as it appears in git (may differ from AbsPath)
	DiffFn    func() (string, error)
	ContentFn func() (string, error)
}

func NewFile(absPath, relPath string, diffFn, contentFn func() (string, error)) *value.Object {
	obj := value.NewObject("File")
	obj.Context = FileContext{AbsPath: absPath, RelPath: relPath, DiffFn: diffFn, ContentFn: contentFn}
	return obj
}

func (f FileContext) path() PathContext { return PathContext{Path: f.RelPath} }

func (f FileContext) CallProperty(name string) (value.Value, bool) {
	switch name {
	case "name", "filename":
		return value.Str(filepath.Base(f.RelPath)), true
	case "basename":
		return value.Str(filepath.Base(f.RelPath)), true
	case "extension":
		return f.path().CallProperty("extension")
	case "dirname":
		return value.Str(filepath.Dir(f.RelPath)), true
	case "diff":
		if f.DiffFn == nil {
			return value.Str(""), true
		}
		d, err := f.DiffFn()
		if err != nil {
			return value.Str(""), true
		}
		return value.Str(d), true
	case "content":
		if f.ContentFn == nil {
			return value.Null{}, true
		}
		c, err := f.ContentFn()
		if err != nil {
			return value.Null{}, true
		}
		return value.Str(c), true
	case "size":
		info, err := os.Stat(f.AbsPath)
		if err != nil {
			return value.Num(0), true
		}
		return value.Num(float64(info.Size())), true
	}
	return nil, false
}

func (f FileContext) CallMethod(name string, args []value.Value) (value.Value, bool, error) {
	switch name {
	case "exists":
		_, err := os.Stat(f.AbsPath)
		return value.Bool(err == nil), true, nil
	case "is_file":
		info, err := os.Stat(f.AbsPath)
		return value.Bool(err == nil && info.Mode().IsRegular()), true, nil
	case "is_dir":
		info, err := os.Stat(f.AbsPath)
		return value.Bool(err == nil && info.IsDir()), true, nil
	case "is_symlink":
		info, err := os.Lstat(f.AbsPath)
		return value.Bool(err == nil && info.Mode()&os.ModeSymlink != 0), true, nil
	case "is_readable":
		return value.Bool(f.checkAccess(os.O_RDONLY)), true, nil
	case "is_executable":
		info, err := os.Stat(f.AbsPath)
		return value.Bool(err == nil && info.Mode()&0o111 != 0), true, nil
	case "is_absolute":
		return value.Bool(filepath.IsAbs(f.RelPath)), true, nil
	case "is_relative":
		return value.Bool(!filepath.IsAbs(f.RelPath)), true, nil
	case "is_hidden":
		return value.Bool(strings.HasPrefix(filepath.Base(f.RelPath), ".")), true, nil
	case "modified_time":
		info, err := os.Stat(f.AbsPath)
		if err != nil {
			return value.Null{}, true, nil
		}
		return value.Str(info.ModTime().UTC().Format(time.RFC3339)), true, nil
	case "created_time":
		// os carries no portable creation time; fall back to mtime, the
		// same approximation the teacher's filesystem helpers use.
		info, err := os.Stat(f.AbsPath)
		if err != nil {
			return value.Null{}, true, nil
		}
		return value.Str(info.ModTime().UTC().Format(time.RFC3339)), true, nil
	case "permissions":
		info, err := os.Stat(f.AbsPath)
		if err != nil {
			return value.Str(""), true, nil
		}
		return value.Str(info.Mode().Perm().String()), true, nil
	case "contains":
		return f.contentMethod(args, strings.Contains)
	case "starts_with":
		return f.contentMethod(args, strings.HasPrefix)
	case "ends_with":
		return f.contentMethod(args, strings.HasSuffix)
	}
	return nil, false, nil
}

func (f FileContext) checkAccess(flag int) bool {
	fh, err := os.OpenFile(f.AbsPath, flag, 0)
	if err != nil {
		return false
	}
	fh.Close()
	return true
}

func (f FileContext) contentMethod(args []value.Value, op func(s, substr string) bool) (value.Value, bool, error) {
	if len(args) != 1 {
		return nil, true, errors.New("expects 1 string argument")
	}
	needle, ok := args[0].(value.Str)
	if !ok {
		return nil, true, errors.New("expects a string argument")
	}
	content := ""
	if f.ContentFn != nil {
		if c, err := f.ContentFn(); err == nil {
			content = c
		}
	}
	return value.Bool(op(content, string(needle))), true, nil
}
