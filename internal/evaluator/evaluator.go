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

// Package evaluator tree-walks a parsed GHook program against a git
// context, running its statements and collecting the blocks, warnings
// and check results a hook run reports back to its caller.
package evaluator

import (
	"context"
	"fmt"
	"time"

	"github.com/scholzdev/ghook/internal/ast"
	"github.com/scholzdev/ghook/internal/diagnostics"
	"github.com/scholzdev/ghook/internal/procexec"
	"github.com/scholzdev/ghook/internal/span"
	"github.com/scholzdev/ghook/internal/value"
)

// Config holds the tunables read from .ghrc, per config.rs.
type Config struct {
	CommandTimeout     time.Duration
	HTTPTimeout        time.Duration
	MaxParallelThreads int
	AuthToken          string
	PackageRemoteURL   string
	PackageRemoteType  string
	PackageAccessToken string
}

// DefaultConfig matches config.rs's Config::default().
func DefaultConfig() Config {
	return Config{
		CommandTimeout:     30 * time.Second,
		HTTPTimeout:        30 * time.Second,
		MaxParallelThreads: 0,
		PackageRemoteURL:   "scholzdev/githooks-packages",
		PackageRemoteType:  "github",
	}
}

// CheckStatus tags a Group's outcome.
type CheckStatus int

const (
	Passed CheckStatus = iota
	Skipped
	Failed
)

func (s CheckStatus) String() string {
	switch s {
	case Passed:
		return "passed"
	case Skipped:
		return "skipped"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// CheckResult records one named `group` block's disposition.
type CheckResult struct {
	Name     string
	Status   CheckStatus
	Reason   string
	Severity ast.GroupSeverity
}

// Resolver fetches the source of a `use "@namespace/name"` package.
// internal/resolver.Client implements it; tests substitute a fake.
type Resolver interface {
	Resolve(ctx context.Context, namespace, name string) (string, error)
}

// Stdlib supplies the pre-tokenized bodies of every `std::*` module,
// keyed by bare module name (e.g. "commit"). internal/stdlib.Library
// implements it.
type Stdlib interface {
	Modules() map[string][]ast.Stmt
}

// Importer resolves a script-relative import path to source text,
// rooted at the hook's .githook directory.
type Importer interface {
	Read(path string) (string, error)
}

// Result is everything a run of Execute produced.
type Result struct {
	Blocked   bool
	Warnings  []string
	Blocks    []string
	TestsRun  int
	Checks    []CheckResult
}

// Executor runs one parsed program against a single git context. It is
// not safe for concurrent use; the parallel{} statement's own worker
// pool runs commands, not Executors.
type Executor struct {
	variables        map[string]value.Value
	verbose          bool
	warnings         []string
	blocks           []string
	testsRun         int
	macros           map[string]*ast.MacroDef
	namespacedMacros map[string]*ast.MacroDef
	checkResults     []CheckResult

	config Config
	dir    string // working directory commands run in; also the import base

	resolver Resolver
	importer Importer

	glob globMatcher
}

// New constructs an Executor. dir is both the directory commands run in
// and the base `.githook/` directory relative imports resolve against.
// Callers install the `git` (and any other ambient) bindings with
// SetVariable before running the program.
func New(cfg Config, dir string) *Executor {
	return &Executor{
		variables:        map[string]value.Value{},
		macros:           map[string]*ast.MacroDef{},
		namespacedMacros: map[string]*ast.MacroDef{},
		config:           cfg,
		dir:              dir,
		glob:             newGlobMatcher(),
	}
}

// SetVerbose toggles `allow` statement printing and progress output.
func (e *Executor) SetVerbose(v bool) { e.verbose = v }

// SetResolver wires a package resolver for `use` statements.
func (e *Executor) SetResolver(r Resolver) { e.resolver = r }

// SetImporter wires relative-path resolution for `import` statements.
func (e *Executor) SetImporter(i Importer) { e.importer = i }

// LoadStdlib registers every macro defined by lib's modules, both
// under its bare name and under "std::<module>::<name>", matching
// spec.md §4.8's double registration. A bare name already defined by
// an earlier module (or a duplicate within the same module) is a
// load-time error, not a silent overwrite.
func (e *Executor) LoadStdlib(lib Stdlib) error {
	for module, stmts := range lib.Modules() {
		for _, s := range stmts {
			def, ok := s.(*ast.MacroDef)
			if !ok {
				continue
			}
			if _, exists := e.macros[def.Name]; exists {
				return diagnostics.Newf(diagnostics.InvalidSyntax,
					"stdlib module %q redefines macro %q", module, def.Name)
			}
			e.macros[def.Name] = def
			e.namespacedMacros["std::"+module+"::"+def.Name] = def
		}
	}
	return nil
}

// SetVariable seeds or overwrites a top-level variable, used by the
// façade to install `git`, `env` and any caller-supplied bindings before
// the first statement runs.
func (e *Executor) SetVariable(name string, v value.Value) { e.variables[name] = v }

// flow is the non-local control signal a statement handler can return
// alongside a nil error, mirroring executor/mod.rs's ExecutionResult.
type flow int

const (
	flowNone flow = iota
	flowBreak
	flowContinueLoop
	flowBlocked
)

func (f flow) shouldStop() bool { return f == flowBlocked }

// Execute runs every top-level statement in order and returns the
// accumulated outcome. A Break or Continue escaping every enclosing
// loop is a ControlFlowEscape error, since nothing catches it at the
// top level.
func (e *Executor) Execute(ctx context.Context, stmts []ast.Stmt) (Result, error) {
	f, err := e.execStmts(ctx, stmts)
	if err != nil {
		return e.result(), err
	}
	if f == flowBreak || f == flowContinueLoop {
		return e.result(), diagnostics.Newf(diagnostics.ControlFlowEscape, "break/continue used outside of a loop")
	}
	return e.result(), nil
}

func (e *Executor) result() Result {
	return Result{
		Blocked:  len(e.blocks) > 0,
		Warnings: e.warnings,
		Blocks:   e.blocks,
		TestsRun: e.testsRun,
		Checks:   e.checkResults,
	}
}

// execStmts runs stmts in sequence, stopping as soon as one yields an
// error or a non-normal flow (Blocked, Break or ContinueLoop), per
// execute_statements's "stop on should_stop()/is_break()/is_continue()".
func (e *Executor) execStmts(ctx context.Context, stmts []ast.Stmt) (flow, error) {
	for _, s := range stmts {
		f, err := e.execStmt(ctx, s)
		if err != nil {
			return flowNone, err
		}
		if f != flowNone {
			return f, nil
		}
	}
	return flowNone, nil
}

func (e *Executor) execStmt(ctx context.Context, s ast.Stmt) (flow, error) {
	switch n := s.(type) {
	case *ast.Run:
		return e.execRun(ctx, n)
	case *ast.Print:
		return e.execPrint(n)
	case *ast.Block:
		return e.execBlock(n)
	case *ast.Warn:
		return e.execWarn(n)
	case *ast.Allow:
		return e.execAllow(n)
	case *ast.Parallel:
		return e.execParallel(ctx, n)
	case *ast.Let:
		v, err := e.eval(n.Expr)
		if err != nil {
			return flowNone, err
		}
		e.variables[n.Name] = v
		return flowNone, nil
	case *ast.Break:
		return flowBreak, nil
	case *ast.Continue:
		return flowContinueLoop, nil
	case *ast.ForEach:
		return e.execForEach(ctx, n)
	case *ast.If:
		return e.execIf(ctx, n)
	case *ast.ConditionalAction:
		return e.execConditionalAction(n)
	case *ast.Match:
		return e.execMatch(ctx, n)
	case *ast.MacroDef:
		e.macros[n.Name] = n
		return flowNone, nil
	case *ast.MacroCall:
		return e.execMacroCall(ctx, n)
	case *ast.Import:
		return e.execImport(ctx, n)
	case *ast.Use:
		return e.execUse(ctx, n)
	case *ast.Group:
		return e.execGroup(ctx, n)
	case *ast.Try:
		return e.execTry(ctx, n)
	}
	return flowNone, diagnostics.New(diagnostics.InvalidSyntax, s.Span(), "unhandled statement")
}

func (e *Executor) execRun(ctx context.Context, n *ast.Run) (flow, error) {
	cmd, err := e.evalString(n.Cmd)
	if err != nil {
		return flowNone, err
	}
	if err := e.runCommand(ctx, cmd, n.Span()); err != nil {
		return flowNone, err
	}
	e.testsRun++
	return flowNone, nil
}

// runCommand shells cmd out through `sh -c`, grounded on
// executor/mod.rs's run_command poll-and-kill loop; internal/procexec
// already implements that loop, so it is wired in rather than
// reimplemented here.
func (e *Executor) runCommand(ctx context.Context, cmd string, sp span.Span) error {
	if e.verbose {
		fmt.Printf("> Running: %s\n", cmd)
	}
	res, err := procexec.Run(ctx, e.dir, e.config.CommandTimeout, "sh", "-c", cmd)
	if err != nil {
		return diagnostics.New(diagnostics.CommandFailed, sp, "failed to start command: %s", cmd).WithCause(err)
	}
	if res.TimedOut {
		return diagnostics.New(diagnostics.CommandTimedOut, sp,
			"command timed out after %s: %s", e.config.CommandTimeout, cmd)
	}
	if res.ExitCode != 0 {
		return diagnostics.New(diagnostics.CommandFailed, sp, "command failed: %s\n%s", cmd, res.Stderr)
	}
	if res.Stdout != "" {
		fmt.Print(res.Stdout)
	}
	return nil
}

func (e *Executor) execPrint(n *ast.Print) (flow, error) {
	v, err := e.eval(n.Expr)
	if err != nil {
		return flowNone, err
	}
	fmt.Println(v.Display())
	return flowNone, nil
}

func (e *Executor) execBlock(n *ast.Block) (flow, error) {
	msg, err := e.evalString(n.Message)
	if err != nil {
		return flowNone, err
	}
	e.blocks = append(e.blocks, msg)
	return flowBlocked, nil
}

func (e *Executor) execWarn(n *ast.Warn) (flow, error) {
	msg, err := e.evalString(n.Message)
	if err != nil {
		return flowNone, err
	}
	e.warnings = append(e.warnings, interpolateBraces(msg, e.variables))
	return flowNone, nil
}

func (e *Executor) execAllow(n *ast.Allow) (flow, error) {
	if e.verbose {
		cmd, err := e.evalString(n.Cmd)
		if err == nil {
			fmt.Println("allow:", cmd)
		}
	}
	return flowNone, nil
}

func (e *Executor) execIf(ctx context.Context, n *ast.If) (flow, error) {
	cond, err := e.eval(n.Cond)
	if err != nil {
		return flowNone, err
	}
	if cond.Truthy() {
		return e.execStmts(ctx, n.Then)
	}
	if n.Else != nil {
		return e.execStmts(ctx, n.Else)
	}
	return flowNone, nil
}

func (e *Executor) execConditionalAction(n *ast.ConditionalAction) (flow, error) {
	cond, err := e.eval(n.Cond)
	if err != nil {
		return flowNone, err
	}
	if !cond.Truthy() {
		return flowNone, nil
	}
	def := "Condition failed"
	if n.Severity == ast.SeverityWarn {
		def = "Warning"
	}
	msg := def
	if n.Message != nil {
		msg, err = e.evalString(n.Message)
		if err != nil {
			return flowNone, err
		}
	}
	msg = interpolateBraces(msg, e.variables)
	e.testsRun++
	if n.Severity == ast.SeverityBlock {
		e.blocks = append(e.blocks, msg)
		return flowBlocked, nil
	}
	e.warnings = append(e.warnings, msg)
	return flowNone, nil
}

func (e *Executor) execTry(ctx context.Context, n *ast.Try) (flow, error) {
	f, err := e.execStmts(ctx, n.Body)
	if err == nil {
		return f, nil
	}
	catchVar := n.CatchVar
	if catchVar == "" {
		catchVar = "error"
	}
	e.variables[catchVar] = value.Str(err.Error())
	return e.execStmts(ctx, n.CatchBody)
}

func (e *Executor) execGroup(ctx context.Context, n *ast.Group) (flow, error) {
	if !n.Enabled {
		e.checkResults = append(e.checkResults, CheckResult{Name: n.Name, Status: Skipped, Severity: n.Severity})
		return flowNone, nil
	}
	f, err := e.execStmts(ctx, n.Body)
	if err != nil {
		e.checkResults = append(e.checkResults, CheckResult{Name: n.Name, Status: Failed, Reason: err.Error(), Severity: n.Severity})
		return flowNone, err
	}
	e.checkResults = append(e.checkResults, CheckResult{Name: n.Name, Status: Passed, Severity: n.Severity})
	return f, nil
}

func (e *Executor) execMacroCall(ctx context.Context, n *ast.MacroCall) (flow, error) {
	var def *ast.MacroDef
	if n.Namespace != "" {
		def = e.namespacedMacros[n.Namespace+"::"+n.Name]
	} else {
		def = e.macros[n.Name]
	}
	if def == nil {
		return flowNone, diagnostics.New(diagnostics.UndefinedMacro, n.Span(), "undefined macro %q", n.Name)
	}
	if len(def.Params) != len(n.Args) {
		return flowNone, diagnostics.New(diagnostics.TypeMismatch, n.Span(),
			"macro %q expects %d argument(s), got %d", n.Name, len(def.Params), len(n.Args))
	}
	args := make([]value.Value, len(n.Args))
	for i, a := range n.Args {
		v, err := e.eval(a)
		if err != nil {
			return flowNone, err
		}
		args[i] = v
	}
	saved := make(map[string]value.Value, len(def.Params))
	existed := make(map[string]bool, len(def.Params))
	for i, p := range def.Params {
		if old, ok := e.variables[p]; ok {
			saved[p] = old
			existed[p] = true
		}
		e.variables[p] = args[i]
	}
	f, err := e.execStmts(ctx, def.Body)
	for _, p := range def.Params {
		if existed[p] {
			e.variables[p] = saved[p]
		} else {
			delete(e.variables, p)
		}
	}
	return f, err
}
