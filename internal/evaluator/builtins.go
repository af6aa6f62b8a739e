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
	"os"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/scholzdev/ghook/internal/diagnostics"
	"github.com/scholzdev/ghook/internal/procexec"
	"github.com/scholzdev/ghook/internal/span"
	"github.com/scholzdev/ghook/internal/typedcontext"
	"github.com/scholzdev/ghook/internal/value"
)

// execBuiltinTimeout is the 30s timeout builtins.rs hardcodes for its
// exec() free function, independent of Config.CommandTimeout (which
// only governs `run` and `parallel`).
const execBuiltinTimeout = 30 * time.Second

// freeFunction is a bare-call builtin: `file(...)`, `glob(...)`, etc.
type freeFunction func(e *Executor, sp span.Span, args []value.Value) (value.Value, error)

// freeFunctions is the free-function registry, grounded on
// builtins.rs's BUILTIN_FUNCTIONS table (file, dir, glob, exec, rm),
// supplemented per spec.md §9 with len and type_of.
var freeFunctions = map[string]freeFunction{
	"file":     builtinFile,
	"dir":      builtinDir,
	"glob":     builtinGlob,
	"exec":     builtinExec,
	"rm":       builtinRm,
	"len":      builtinLen,
	"type_of":  builtinTypeOf,
}

func oneStringBuiltinArg(sp span.Span, name string, args []value.Value) (string, error) {
	if len(args) != 1 {
		return "", diagnostics.New(diagnostics.TypeMismatch, sp, "%s() takes exactly 1 argument", name)
	}
	s, ok := args[0].(value.Str)
	if !ok {
		return "", diagnostics.New(diagnostics.TypeMismatch, sp, "%s() requires a string argument", name)
	}
	return string(s), nil
}

func newFileAt(abs string) *value.Object {
	return typedcontext.NewFile(abs, abs,
		func() (string, error) { return "", nil },
		func() (string, error) {
			data, err := os.ReadFile(abs)
			if err != nil {
				return "", err
			}
			return string(data), nil
		})
}

func builtinFile(e *Executor, sp span.Span, args []value.Value) (value.Value, error) {
	path, err := oneStringBuiltinArg(sp, "file", args)
	if err != nil {
		return nil, err
	}
	return newFileAt(e.resolvePath(path)), nil
}

func builtinDir(e *Executor, sp span.Span, args []value.Value) (value.Value, error) {
	path, err := oneStringBuiltinArg(sp, "dir", args)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(e.resolvePath(path))
	if err != nil {
		return nil, diagnostics.New(diagnostics.CommandFailed, sp, "dir(%q) failed", path).WithCause(err)
	}
	out := make(value.Array, len(entries))
	for i, ent := range entries {
		out[i] = newFileAt(filepath.Join(e.resolvePath(path), ent.Name()))
	}
	return out, nil
}

func builtinGlob(e *Executor, sp span.Span, args []value.Value) (value.Value, error) {
	pattern, err := oneStringBuiltinArg(sp, "glob", args)
	if err != nil {
		return nil, err
	}
	matches, err := doublestar.FilepathGlob(e.resolvePath(pattern))
	if err != nil {
		return value.Array{}, nil
	}
	out := make(value.Array, len(matches))
	for i, m := range matches {
		out[i] = newFileAt(m)
	}
	return out, nil
}

func builtinExec(e *Executor, sp span.Span, args []value.Value) (value.Value, error) {
	cmd, err := oneStringBuiltinArg(sp, "exec", args)
	if err != nil {
		return nil, err
	}
	res, err := procexec.Run(context.Background(), e.dir, execBuiltinTimeout, "sh", "-c", cmd)
	if err != nil {
		return nil, diagnostics.New(diagnostics.CommandFailed, sp, "exec(%q) failed to start", cmd).WithCause(err)
	}
	if res.TimedOut {
		return nil, diagnostics.New(diagnostics.CommandTimedOut, sp, "exec(%q) timed out after %s", cmd, execBuiltinTimeout)
	}
	if res.ExitCode != 0 {
		return nil, diagnostics.New(diagnostics.CommandFailed, sp, "command failed: %s", res.Stderr)
	}
	return value.Str(res.Stdout), nil
}

func builtinRm(e *Executor, sp span.Span, args []value.Value) (value.Value, error) {
	path, err := oneStringBuiltinArg(sp, "rm", args)
	if err != nil {
		return nil, err
	}
	abs := e.resolvePath(path)
	if err := os.Remove(abs); err != nil {
		return nil, diagnostics.New(diagnostics.CommandFailed, sp, "failed to remove file: %s", path).WithCause(err)
	}
	return value.Str(path), nil
}

// builtinLen and builtinTypeOf are supplemented free functions (spec.md
// §9) with no original analogue: the original only exposes `.length`
// and per-kind method surfaces, which GHook keeps, but a bare `len(x)`
// and `type_of(x)` are common enough ergonomics in the rest of the
// corpus's own scripting surfaces to carry forward here too.
func builtinLen(e *Executor, sp span.Span, args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, diagnostics.New(diagnostics.TypeMismatch, sp, "len() takes exactly 1 argument")
	}
	switch v := args[0].(type) {
	case value.Str:
		return value.Num(float64(len([]rune(string(v))))), nil
	case value.Array:
		return value.Num(float64(len(v))), nil
	}
	return nil, diagnostics.New(diagnostics.TypeMismatch, sp, "len() requires a string or array, got %s", value.TypeName(args[0]))
}

func builtinTypeOf(e *Executor, sp span.Span, args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, diagnostics.New(diagnostics.TypeMismatch, sp, "type_of() takes exactly 1 argument")
	}
	return value.Str(value.TypeName(args[0])), nil
}

// resolvePath joins a possibly-relative path argument onto the
// Executor's working directory, the same root `run` commands execute
// from.
func (e *Executor) resolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(e.dir, path)
}
