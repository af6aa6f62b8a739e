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

// Package ghook is the public entry point: it wires a parsed .ghook
// program to a real Git repository and runs it, assembling every
// internal package (gitbackend, typedcontext, evaluator, resolver,
// stdlib) the way a hook invocation needs them.
package ghook

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/scholzdev/ghook/internal/blobcache"
	"github.com/scholzdev/ghook/internal/evaluator"
	"github.com/scholzdev/ghook/internal/ghconfig"
	"github.com/scholzdev/ghook/internal/gitbackend"
	"github.com/scholzdev/ghook/internal/hookdiscovery"
	"github.com/scholzdev/ghook/internal/parser"
	"github.com/scholzdev/ghook/internal/resolver"
	"github.com/scholzdev/ghook/internal/stdlib"
	"github.com/scholzdev/ghook/internal/typedcontext"
	"github.com/scholzdev/ghook/internal/value"
)

// Options controls one Run invocation. RepoDir and HookType are
// required; everything else has a sensible zero value.
type Options struct {
	// RepoDir is the Git working tree to evaluate the hook against.
	RepoDir string
	// HookType is a Git hook name ("pre-commit", "commit-msg", ...)
	// or a direct path to a .ghook file, per spec.md §6.2.
	HookType string
	// Verbose toggles `allow` statement printing and progress output.
	Verbose bool
	// BlobCachePath overrides where the resolver's persistent package
	// cache lives. Empty disables cross-run persistence.
	BlobCachePath string
}

// Outcome is the result of one hook run, plus enough Git-run metadata
// to render a human-readable summary.
type Outcome struct {
	evaluator.Result
	HookPath string
}

// ExitCode maps an Outcome onto the process exit code a hook wrapper
// should use: 0 when nothing blocked the commit, 1 when something did.
func (o Outcome) ExitCode() int {
	if o.Blocked {
		return 1
	}
	return 0
}

// Summary renders a one-paragraph human-readable report of the run,
// the kind a hook prints to stderr before exiting.
func (o Outcome) Summary() string {
	var b []byte
	b = append(b, fmt.Sprintf("ghook: %s\n", o.HookPath)...)
	b = append(b, fmt.Sprintf("  %s checked\n", humanize.Comma(int64(o.TestsRun)))...)
	for _, w := range o.Warnings {
		b = append(b, fmt.Sprintf("  warning: %s\n", w)...)
	}
	for _, blk := range o.Blocks {
		b = append(b, fmt.Sprintf("  blocked: %s\n", blk)...)
	}
	if o.Blocked {
		b = append(b, "commit blocked\n"...)
	} else {
		b = append(b, "commit allowed\n"...)
	}
	return string(b)
}

// Run discovers, parses and executes the .ghook file for opts, against
// a real Git repository rooted at opts.RepoDir.
func Run(ctx context.Context, opts Options) (Outcome, error) {
	hookPath, err := hookdiscovery.Find(opts.RepoDir, opts.HookType)
	if err != nil {
		return Outcome{}, err
	}
	source, err := os.ReadFile(hookPath)
	if err != nil {
		return Outcome{}, fmt.Errorf("ghook: read %s: %w", hookPath, err)
	}
	stmts, err := parser.Parse(string(source))
	if err != nil {
		return Outcome{}, fmt.Errorf("ghook: parse %s: %w", hookPath, err)
	}

	cfg, err := ghconfig.Load(opts.RepoDir)
	if err != nil {
		return Outcome{}, err
	}
	httpClient.Timeout = cfg.HTTPTimeout
	httpAuthToken = cfg.AuthToken

	backend, err := gitbackend.NewDefault(ctx, opts.RepoDir)
	if err != nil {
		return Outcome{}, err
	}
	cached := gitbackend.NewCached(backend)

	gitData, err := buildGitData(ctx, cached, opts.RepoDir)
	if err != nil {
		return Outcome{}, fmt.Errorf("ghook: collect git context: %w", err)
	}

	githookDir := filepath.Join(opts.RepoDir, ".githook")
	exec := evaluator.New(cfg, githookDir)
	exec.SetVerbose(opts.Verbose)
	exec.SetVariable("git", typedcontext.NewGit(gitData))
	exec.SetVariable("env", typedcontext.NewEnv())
	exec.SetVariable("http", typedcontext.NewHttp(httpGet, httpPost))

	lib, err := stdlib.Load()
	if err != nil {
		return Outcome{}, err
	}
	if err := exec.LoadStdlib(lib); err != nil {
		return Outcome{}, err
	}

	home, _ := os.UserHomeDir()
	var blobs *blobcache.Cache
	if opts.BlobCachePath != "" {
		blobs, err = blobcache.Open(ctx, opts.BlobCachePath)
		if err != nil {
			return Outcome{}, fmt.Errorf("ghook: open package cache: %w", err)
		}
		defer blobs.Close()
	}
	exec.SetResolver(resolver.New(resolver.Config{
		RemoteRepo:  cfg.PackageRemoteURL,
		RemoteType:  cfg.PackageRemoteType,
		AccessToken: cfg.PackageAccessToken,
		HTTPTimeout: cfg.HTTPTimeout,
		HomeDir:     home,
	}, blobs))
	exec.SetImporter(&fileImporter{baseDir: githookDir})

	result, err := exec.Execute(ctx, stmts)
	if err != nil {
		return Outcome{Result: result, HookPath: hookPath}, err
	}
	return Outcome{Result: result, HookPath: hookPath}, nil
}

// fileImporter resolves `import "path"` statements relative to the
// repository's .githook directory; an absolute path is used as-is.
type fileImporter struct {
	baseDir string
}

func (f *fileImporter) Read(path string) (string, error) {
	full := path
	if !filepath.IsAbs(path) {
		full = filepath.Join(f.baseDir, path)
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return "", fmt.Errorf("import %q: %w", path, err)
	}
	return string(data), nil
}

// httpGet and httpPost back the "http" ambient binding with a real
// transport; they are thin adapters over typedcontext's injected-Fn
// shape rather than typedcontext depending on net/http directly.
func httpGet(url string) (typedcontext.HttpResponseData, error) {
	return doHTTPRequest("GET", url, "")
}

func httpPost(url, body string) (typedcontext.HttpResponseData, error) {
	return doHTTPRequest("POST", url, body)
}

func buildGitData(ctx context.Context, b gitbackend.Backend, repoDir string) (typedcontext.GitData, error) {
	branch, err := b.Branch(ctx)
	if err != nil {
		return typedcontext.GitData{}, err
	}
	author, err := b.Author(ctx)
	if err != nil {
		return typedcontext.GitData{}, err
	}
	remote, err := b.Remote(ctx, "origin")
	if err != nil {
		return typedcontext.GitData{}, err
	}
	stats, err := b.DiffStats(ctx)
	if err != nil {
		return typedcontext.GitData{}, err
	}
	diff, err := b.FullDiff(ctx)
	if err != nil {
		return typedcontext.GitData{}, err
	}
	isMerge, err := b.IsMergeCommit(ctx)
	if err != nil {
		return typedcontext.GitData{}, err
	}
	hasConflicts, err := b.HasConflicts(ctx)
	if err != nil {
		return typedcontext.GitData{}, err
	}

	var commit *typedcontext.CommitData
	if info, err := b.HeadCommit(ctx); err != nil {
		return typedcontext.GitData{}, err
	} else if info != nil {
		commit = &typedcontext.CommitData{
			Hash:      info.Hash,
			Message:   info.Message,
			Author:    typedcontext.AuthorData{Name: info.Author.Name, Email: info.Author.Email},
			Timestamp: info.Timestamp,
		}
	}

	files, err := buildFilesCollection(ctx, b, repoDir)
	if err != nil {
		return typedcontext.GitData{}, err
	}

	findings, err := b.ScanStagedForSecrets(ctx)
	if err != nil {
		return typedcontext.GitData{}, err
	}
	secretFindings := make([]typedcontext.SecretFindingData, len(findings))
	for i, f := range findings {
		secretFindings[i] = typedcontext.SecretFindingData{File: f.File, Line: f.Line, Content: f.Text}
	}

	return typedcontext.GitData{
		Branch:         branch,
		Commit:         commit,
		Author:         typedcontext.AuthorData{Name: author.Name, Email: author.Email},
		Remote:         typedcontext.RemoteData{Name: remote.Name, URL: remote.URL},
		Stats:          typedcontext.DiffStatsData{Additions: stats.Additions, Deletions: stats.Deletions, FilesChanged: stats.FilesChanged},
		Files:          files,
		Diff:           diff,
		IsMergeCommit:  isMerge,
		HasConflicts:   hasConflicts,
		SecretFindings: secretFindings,
	}, nil
}

func buildFilesCollection(ctx context.Context, b gitbackend.Backend, repoDir string) (typedcontext.FilesCollectionData, error) {
	staged, err := b.StagedFiles(ctx)
	if err != nil {
		return typedcontext.FilesCollectionData{}, err
	}
	all, err := b.AllFiles(ctx)
	if err != nil {
		return typedcontext.FilesCollectionData{}, err
	}
	modified, err := b.ModifiedFiles(ctx)
	if err != nil {
		return typedcontext.FilesCollectionData{}, err
	}
	added, err := b.AddedFiles(ctx)
	if err != nil {
		return typedcontext.FilesCollectionData{}, err
	}
	deleted, err := b.DeletedFiles(ctx)
	if err != nil {
		return typedcontext.FilesCollectionData{}, err
	}
	unstaged, err := b.UnstagedFiles(ctx)
	if err != nil {
		return typedcontext.FilesCollectionData{}, err
	}

	return typedcontext.FilesCollectionData{
		Staged:   toFileArray(ctx, b, repoDir, staged),
		All:      toFileArray(ctx, b, repoDir, all),
		Modified: toFileArray(ctx, b, repoDir, modified),
		Added:    toFileArray(ctx, b, repoDir, added),
		Deleted:  toFileArray(ctx, b, repoDir, deleted),
		Unstaged: toFileArray(ctx, b, repoDir, unstaged),
	}, nil
}

func toFileArray(ctx context.Context, b gitbackend.Backend, repoDir string, names []string) value.Array {
	out := make(value.Array, len(names))
	for i, name := range names {
		name := name
		out[i] = typedcontext.NewFile(filepath.Join(repoDir, name), name,
			func() (string, error) { return b.FileDiff(ctx, name) },
			func() (string, error) { return b.StagedContent(ctx, name) },
		)
	}
	return out
}
