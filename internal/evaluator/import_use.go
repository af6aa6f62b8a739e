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
	"strings"

	"github.com/scholzdev/ghook/internal/ast"
	"github.com/scholzdev/ghook/internal/diagnostics"
	"github.com/scholzdev/ghook/internal/parser"
)

// execImport resolves Path relative to the hook's .githook directory
// (unless it's already absolute), parses and executes it. Per
// executor/mod.rs's Import handler: an aliased import namespaces every
// macro the imported program newly defines under "alias::name" and
// restores the local macro table to its pre-import contents; an
// unaliased import leaves newly defined macros globally visible.
func (e *Executor) execImport(ctx context.Context, n *ast.Import) (flow, error) {
	if e.importer == nil {
		return flowNone, diagnostics.New(diagnostics.ImportNotFound, n.Span(), "imports are not available in this context")
	}
	src, err := e.importer.Read(n.Path)
	if err != nil {
		return flowNone, diagnostics.New(diagnostics.ImportNotFound, n.Span(), "import not found: %s", n.Path).WithCause(err)
	}
	stmts, perr := parser.Parse(src)
	if perr != nil {
		return flowNone, perr
	}
	return e.runNamespaced(ctx, n.Alias, stmts)
}

// execUse resolves a `use "@namespace/name"` package through the
// wired Resolver, then runs it the same way execImport does.
func (e *Executor) execUse(ctx context.Context, n *ast.Use) (flow, error) {
	if e.resolver == nil {
		return flowNone, diagnostics.New(diagnostics.ImportNotFound, n.Span(), "packages are not available in this context")
	}
	namespace, name, err := splitPackage(n.Package)
	if err != nil {
		return flowNone, diagnostics.New(diagnostics.InvalidSyntax, n.Span(), "%s", err.Error())
	}
	src, err := e.resolver.Resolve(ctx, namespace, name)
	if err != nil {
		return flowNone, diagnostics.New(diagnostics.PackageFetchFailed, n.Span(), "failed to fetch package %s: %s", n.Package, err.Error())
	}
	stmts, perr := parser.Parse(src)
	if perr != nil {
		return flowNone, perr
	}
	alias := n.Alias
	if alias == "" {
		alias = name
	}
	return e.runNamespaced(ctx, alias, stmts)
}

// runNamespaced executes stmts, then either merges newly defined
// macros into the global macro table (alias == "") or moves them under
// "alias::name" in the namespaced table while restoring the local
// table to its pre-run contents.
func (e *Executor) runNamespaced(ctx context.Context, alias string, stmts []ast.Stmt) (flow, error) {
	if alias == "" {
		return e.execStmts(ctx, stmts)
	}
	before := make(map[string]bool, len(e.macros))
	for k := range e.macros {
		before[k] = true
	}
	f, err := e.execStmts(ctx, stmts)
	for name, def := range e.macros {
		if !before[name] {
			e.namespacedMacros[alias+"::"+name] = def
			delete(e.macros, name)
		}
	}
	return f, err
}

// splitPackage validates and splits a `use` target: it must start with
// "@" and contain exactly two "/"-separated non-empty parts, per
// package_resolver.rs's validate_repo_url/validate_package_identifier.
func splitPackage(pkg string) (namespace, name string, err error) {
	if !strings.HasPrefix(pkg, "@") {
		return "", "", diagnostics.Newf(diagnostics.InvalidSyntax, "package name must start with '@': %s", pkg)
	}
	parts := strings.Split(pkg[1:], "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", diagnostics.Newf(diagnostics.InvalidSyntax, "package name must be '@namespace/name': %s", pkg)
	}
	return parts[0], parts[1], nil
}
