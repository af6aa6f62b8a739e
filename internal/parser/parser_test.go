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

package parser

import (
	"testing"

	"github.com/scholzdev/ghook/internal/ast"
)

func mustParse(t *testing.T, src string) []ast.Stmt {
	t.Helper()
	stmts, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q) = %v", src, err)
	}
	return stmts
}

func TestParseLetAndPrint(t *testing.T) {
	stmts := mustParse(t, `let x = 1 + 2
print x`)
	if len(stmts) != 2 {
		t.Fatalf("got %d statements, want 2", len(stmts))
	}
	let, ok := stmts[0].(*ast.Let)
	if !ok {
		t.Fatalf("stmts[0] = %T, want *ast.Let", stmts[0])
	}
	if let.Name != "x" {
		t.Errorf("Let.Name = %q, want x", let.Name)
	}
	bin, ok := let.Expr.(*ast.Binary)
	if !ok || bin.Op != ast.OpAdd {
		t.Errorf("Let.Expr = %#v, want Binary(+)", let.Expr)
	}
	if _, ok := stmts[1].(*ast.Print); !ok {
		t.Errorf("stmts[1] = %T, want *ast.Print", stmts[1])
	}
}

func TestParsePrecedence(t *testing.T) {
	stmts := mustParse(t, `let x = 1 + 2 * 3 == 7 and true`)
	let := stmts[0].(*ast.Let)
	top, ok := let.Expr.(*ast.Binary)
	if !ok || top.Op != ast.OpAnd {
		t.Fatalf("top operator = %#v, want And", let.Expr)
	}
	eq, ok := top.Left.(*ast.Binary)
	if !ok || eq.Op != ast.OpEq {
		t.Fatalf("left of and = %#v, want Eq", top.Left)
	}
	add, ok := eq.Left.(*ast.Binary)
	if !ok || add.Op != ast.OpAdd {
		t.Fatalf("left of eq = %#v, want Add", eq.Left)
	}
	mul, ok := add.Right.(*ast.Binary)
	if !ok || mul.Op != ast.OpMul {
		t.Fatalf("right of add = %#v, want Mul", add.Right)
	}
}

func TestParseBlockIf(t *testing.T) {
	stmts := mustParse(t, `block if size > 10MB message "too big"`)
	ca, ok := stmts[0].(*ast.ConditionalAction)
	if !ok {
		t.Fatalf("stmt = %T, want *ast.ConditionalAction", stmts[0])
	}
	if ca.Severity != ast.SeverityBlock {
		t.Errorf("Severity = %v, want SeverityBlock", ca.Severity)
	}
	if ca.Message == nil {
		t.Error("Message = nil, want set")
	}
}

func TestParseWarnIfNoMessage(t *testing.T) {
	stmts := mustParse(t, `warn if count > 5`)
	ca, ok := stmts[0].(*ast.ConditionalAction)
	if !ok || ca.Severity != ast.SeverityWarn {
		t.Fatalf("stmt = %#v, want warn ConditionalAction", stmts[0])
	}
	if ca.Message != nil {
		t.Error("Message != nil, want unset")
	}
}

func TestParseForEachMatching(t *testing.T) {
	stmts := mustParse(t, `foreach files matching "*.go" {
		f in print f
	}`)
	fe, ok := stmts[0].(*ast.ForEach)
	if !ok {
		t.Fatalf("stmt = %T, want *ast.ForEach", stmts[0])
	}
	if !fe.HasGlob || fe.Glob != "*.go" {
		t.Errorf("Glob = %q HasGlob=%v, want *.go/true", fe.Glob, fe.HasGlob)
	}
	if fe.Var != "f" {
		t.Errorf("Var = %q, want f", fe.Var)
	}
	if len(fe.Body) != 1 {
		t.Fatalf("Body len = %d, want 1", len(fe.Body))
	}
}

func TestParseIfElseIfElse(t *testing.T) {
	stmts := mustParse(t, `if a {
		print 1
	} else if b {
		print 2
	} else {
		print 3
	}`)
	top, ok := stmts[0].(*ast.If)
	if !ok {
		t.Fatalf("stmt = %T, want *ast.If", stmts[0])
	}
	if len(top.Else) != 1 {
		t.Fatalf("Else len = %d, want 1", len(top.Else))
	}
	nested, ok := top.Else[0].(*ast.If)
	if !ok {
		t.Fatalf("Else[0] = %T, want *ast.If", top.Else[0])
	}
	if len(nested.Else) != 1 {
		t.Fatalf("nested Else len = %d, want 1", len(nested.Else))
	}
}

func TestParseIfExpr(t *testing.T) {
	stmts := mustParse(t, `let x = if a then 1 else 2`)
	let := stmts[0].(*ast.Let)
	ie, ok := let.Expr.(*ast.IfExpr)
	if !ok {
		t.Fatalf("Expr = %T, want *ast.IfExpr", let.Expr)
	}
	if _, ok := ie.Cond.(*ast.Ident); !ok {
		t.Errorf("Cond = %#v, want Ident", ie.Cond)
	}
}

func TestParseMatch(t *testing.T) {
	stmts := mustParse(t, `match branch {
		"main" -> block "no direct pushes to main"
		_ -> allow "ok"
	}`)
	m, ok := stmts[0].(*ast.Match)
	if !ok {
		t.Fatalf("stmt = %T, want *ast.Match", stmts[0])
	}
	if len(m.Arms) != 2 {
		t.Fatalf("Arms len = %d, want 2", len(m.Arms))
	}
	if _, ok := m.Arms[0].Pattern.(*ast.WildcardPattern); !ok {
		t.Errorf("Arms[0].Pattern = %T, want *ast.WildcardPattern", m.Arms[0].Pattern)
	}
	if _, ok := m.Arms[1].Pattern.(*ast.UnderscorePattern); !ok {
		t.Errorf("Arms[1].Pattern = %T, want *ast.UnderscorePattern", m.Arms[1].Pattern)
	}
}

func TestParseMacroDefAndCall(t *testing.T) {
	stmts := mustParse(t, `macro checkSize(limit) {
		block if size > limit message "too big"
	}
	@checkSize(10MB)`)
	if len(stmts) != 2 {
		t.Fatalf("got %d statements, want 2", len(stmts))
	}
	def, ok := stmts[0].(*ast.MacroDef)
	if !ok || def.Name != "checkSize" || len(def.Params) != 1 || def.Params[0] != "limit" {
		t.Fatalf("MacroDef = %#v", stmts[0])
	}
	call, ok := stmts[1].(*ast.MacroCall)
	if !ok || call.Name != "checkSize" || len(call.Args) != 1 {
		t.Fatalf("MacroCall = %#v", stmts[1])
	}
}

func TestParseNamespacedMacroCall(t *testing.T) {
	stmts := mustParse(t, `@std.noMerge()`)
	call := stmts[0].(*ast.MacroCall)
	if call.Namespace != "std" || call.Name != "noMerge" {
		t.Errorf("MacroCall = %#v, want std.noMerge", call)
	}
}

func TestParseGroupWithModifiers(t *testing.T) {
	stmts := mustParse(t, `group secrets warning disabled {
		print "checking"
	}`)
	g, ok := stmts[0].(*ast.Group)
	if !ok {
		t.Fatalf("stmt = %T, want *ast.Group", stmts[0])
	}
	if g.Name != "secrets" || g.Severity != ast.GroupWarning || g.Enabled {
		t.Errorf("Group = %#v", g)
	}
}

func TestParseTryCatchWithBinding(t *testing.T) {
	stmts := mustParse(t, `try {
		run "false"
	} catch {
		err in print err
	}`)
	try, ok := stmts[0].(*ast.Try)
	if !ok {
		t.Fatalf("stmt = %T, want *ast.Try", stmts[0])
	}
	if try.CatchVar != "err" {
		t.Errorf("CatchVar = %q, want err", try.CatchVar)
	}
	if len(try.CatchBody) != 1 {
		t.Fatalf("CatchBody len = %d, want 1", len(try.CatchBody))
	}
}

func TestParseTryCatchWithoutBinding(t *testing.T) {
	stmts := mustParse(t, `try {
		run "false"
	} catch {
		print "failed"
	}`)
	try := stmts[0].(*ast.Try)
	if try.CatchVar != "error" {
		t.Errorf("CatchVar = %q, want default 'error'", try.CatchVar)
	}
}

func TestParseParallel(t *testing.T) {
	stmts := mustParse(t, `parallel {
		run "go test ./..."
		run "go vet ./..."
	}`)
	par, ok := stmts[0].(*ast.Parallel)
	if !ok || len(par.Cmds) != 2 {
		t.Fatalf("stmt = %#v, want Parallel with 2 cmds", stmts[0])
	}
}

func TestParseImportAndUse(t *testing.T) {
	stmts := mustParse(t, `import "./policies/common.ghook" as common
use "@org/secrets" as secrets`)
	imp, ok := stmts[0].(*ast.Import)
	if !ok || imp.Path != "./policies/common.ghook" || imp.Alias != "common" {
		t.Fatalf("Import = %#v", stmts[0])
	}
	use, ok := stmts[1].(*ast.Use)
	if !ok || use.Package != "@org/secrets" || use.Alias != "secrets" {
		t.Fatalf("Use = %#v", stmts[1])
	}
}

func TestParseBareFunctionCall(t *testing.T) {
	stmts := mustParse(t, `let n = len(files)`)
	let := stmts[0].(*ast.Let)
	call, ok := let.Expr.(*ast.MethodCall)
	if !ok || call.Method != "" {
		t.Fatalf("Expr = %#v, want bare MethodCall", let.Expr)
	}
	recv, ok := call.Receiver.(*ast.Ident)
	if !ok || recv.Name != "len" {
		t.Errorf("Receiver = %#v, want Ident(len)", call.Receiver)
	}
}

func TestParseChainedPostfix(t *testing.T) {
	stmts := mustParse(t, `let n = files.filter(f => f.size > 1KB).length`)
	let := stmts[0].(*ast.Let)
	prop, ok := let.Expr.(*ast.PropertyAccess)
	if !ok || prop.Name != "length" {
		t.Fatalf("Expr = %#v, want PropertyAccess(length)", let.Expr)
	}
	filterCall, ok := prop.Receiver.(*ast.MethodCall)
	if !ok || filterCall.Method != "filter" {
		t.Fatalf("Receiver = %#v, want MethodCall(filter)", prop.Receiver)
	}
	closure, ok := filterCall.Args[0].(*ast.Closure)
	if !ok || closure.Param != "f" {
		t.Fatalf("Args[0] = %#v, want Closure(f)", filterCall.Args[0])
	}
}

func TestParseIndexAccess(t *testing.T) {
	stmts := mustParse(t, `let first = files[0]`)
	let := stmts[0].(*ast.Let)
	idx, ok := let.Expr.(*ast.IndexAccess)
	if !ok {
		t.Fatalf("Expr = %#v, want *ast.IndexAccess", let.Expr)
	}
	num, ok := idx.Index.(*ast.NumberLit)
	if !ok || num.Value != 0 {
		t.Errorf("Index = %#v, want NumberLit(0)", idx.Index)
	}
}

func TestParseStringInterpolation(t *testing.T) {
	stmts := mustParse(t, `print "Large commit: ${count} files over ${limit}"`)
	pr := stmts[0].(*ast.Print)
	is, ok := pr.Expr.(*ast.InterpolatedString)
	if !ok {
		t.Fatalf("Expr = %T, want *ast.InterpolatedString", pr.Expr)
	}
	if len(is.Parts) != 4 {
		t.Fatalf("Parts len = %d, want 4", len(is.Parts))
	}
	if is.Parts[0].Literal != "Large commit: " {
		t.Errorf("Parts[0] = %#v", is.Parts[0])
	}
	ident, ok := is.Parts[1].Expr.(*ast.Ident)
	if !ok || ident.Name != "count" {
		t.Errorf("Parts[1].Expr = %#v, want Ident(count)", is.Parts[1].Expr)
	}
	ident2, ok := is.Parts[3].Expr.(*ast.Ident)
	if !ok || ident2.Name != "limit" {
		t.Errorf("Parts[3].Expr = %#v, want Ident(limit)", is.Parts[3].Expr)
	}
}

func TestParseBreakContinue(t *testing.T) {
	stmts := mustParse(t, `foreach files {
		f in if f.size > 1MB {
			break
		} else {
			continue
		}
	}`)
	fe := stmts[0].(*ast.ForEach)
	ifStmt := fe.Body[0].(*ast.If)
	if _, ok := ifStmt.Then[0].(*ast.Break); !ok {
		t.Errorf("Then[0] = %T, want *ast.Break", ifStmt.Then[0])
	}
	if _, ok := ifStmt.Else[0].(*ast.Continue); !ok {
		t.Errorf("Else[0] = %T, want *ast.Continue", ifStmt.Else[0])
	}
}

func TestParseArrayLiteral(t *testing.T) {
	stmts := mustParse(t, `let allowed = ["main", "develop"]`)
	let := stmts[0].(*ast.Let)
	arr, ok := let.Expr.(*ast.ArrayLit)
	if !ok || len(arr.Items) != 2 {
		t.Fatalf("Expr = %#v, want 2-item ArrayLit", let.Expr)
	}
}

func TestParseUnexpectedTokenSuggestsKeyword(t *testing.T) {
	_, err := Parse("blokc \"x\"")
	if err == nil {
		t.Fatal("Parse(typo) succeeded, want error")
	}
}

func TestParseMissingBraceIsError(t *testing.T) {
	if _, err := Parse("if a { print 1"); err == nil {
		t.Error("Parse(unterminated block) succeeded, want error")
	}
}
