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

// ghook runs the .ghook policy script matching a Git hook invocation
// against the repository it is invoked from.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/scholzdev/ghook"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	done := make(chan struct{})
	go func() {
		select {
		case <-sig:
			cancel()
		case <-done:
		}
	}()

	err := run(ctx, os.Args[1:])
	close(done)
	if err != nil {
		fmt.Fprintln(os.Stderr, "ghook:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("ghook", flag.ContinueOnError)
	repoDir := fs.String("C", ".", "run as if started in `dir` instead of the current directory")
	verbose := fs.Bool("v", false, "print allow statements and progress output")
	blobCache := fs.String("cache", "", "path to the resolver's persistent package cache")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: ghook [-C dir] [-v] [-cache path] <hook-type|path.ghook>")
	}

	dir, err := filepath.Abs(*repoDir)
	if err != nil {
		return err
	}

	outcome, err := ghook.Run(ctx, ghook.Options{
		RepoDir:       dir,
		HookType:      fs.Arg(0),
		Verbose:       *verbose,
		BlobCachePath: *blobCache,
	})
	if err != nil {
		return err
	}
	fmt.Fprint(os.Stderr, outcome.Summary())
	if outcome.ExitCode() != 0 {
		os.Exit(outcome.ExitCode())
	}
	return nil
}
