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
	"fmt"
	"runtime"

	"golang.org/x/sync/semaphore"

	"github.com/scholzdev/ghook/internal/ast"
	"github.com/scholzdev/ghook/internal/diagnostics"
	"github.com/scholzdev/ghook/internal/procexec"
)

// execParallel runs every command concurrently, bounded by
// Config.MaxParallelThreads (0 means one slot per CPU, matching
// rayon's default pool size in run_parallel_command's caller), then
// walks the results in list order the way executor/mod.rs's Parallel
// handler does: print each command's stdout in turn and stop at the
// first error, without counting any command — including ones that
// already finished — toward tests_run.
func (e *Executor) execParallel(ctx context.Context, n *ast.Parallel) (flow, error) {
	cmds := make([]string, len(n.Cmds))
	for i, c := range n.Cmds {
		s, err := e.evalString(c)
		if err != nil {
			return flowNone, err
		}
		cmds[i] = interpolateBraces(s, e.variables)
	}

	limit := e.config.MaxParallelThreads
	if limit <= 0 {
		limit = runtime.NumCPU()
	}
	sem := semaphore.NewWeighted(int64(limit))

	type outcome struct {
		stdout string
		err    error
	}
	results := make([]outcome, len(cmds))
	done := make(chan struct{})
	for i, cmd := range cmds {
		i, cmd := i, cmd
		if e.verbose {
			fmt.Printf("> Running: %s\n", cmd)
		}
		go func() {
			_ = sem.Acquire(ctx, 1)
			defer sem.Release(1)
			res, err := procexec.Run(ctx, e.dir, e.config.CommandTimeout, "sh", "-c", cmd)
			switch {
			case err != nil:
				results[i] = outcome{err: diagnostics.New(diagnostics.CommandFailed, n.Span(), "failed to start command: %s", cmd).WithCause(err)}
			case res.TimedOut:
				results[i] = outcome{err: diagnostics.New(diagnostics.CommandTimedOut, n.Span(), "command timed out after %s: %s", e.config.CommandTimeout, cmd)}
			case res.ExitCode != 0:
				results[i] = outcome{err: diagnostics.New(diagnostics.CommandFailed, n.Span(), "command failed: %s\n%s", cmd, res.Stderr)}
			default:
				results[i] = outcome{stdout: res.Stdout}
			}
			done <- struct{}{}
		}()
	}
	for range cmds {
		<-done
	}

	for _, r := range results {
		if r.err != nil {
			return flowNone, r.err
		}
		if r.stdout != "" {
			fmt.Print(r.stdout)
		}
	}
	e.testsRun += len(cmds)
	return flowNone, nil
}
