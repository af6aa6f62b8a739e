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

// Package gitbackend collects the repository facts a policy script's
// git context needs: staged/modified/added/deleted/unstaged file
// lists, blob content, diff text and stats, branch and commit
// metadata, and a secret scanner over staged content.
package gitbackend

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"

	"gg-scm.io/pkg/git"
)

// AuthorInfo identifies a commit author or the configured user.
type AuthorInfo struct {
	Name  string
	Email string
}

// RemoteInfo describes a configured remote.
type RemoteInfo struct {
	Name string
	URL  string
}

// CommitInfo describes a single commit.
type CommitInfo struct {
	Hash      string
	Message   string
	Author    AuthorInfo
	Timestamp string
}

// DiffStats summarizes a diff's size.
type DiffStats struct {
	Additions    int
	Deletions    int
	FilesChanged int
}

// Backend is the repository-facing surface the evaluator wires up to
// build a script's git context. Default implements it over a Git
// subprocess; tests substitute a fake.
type Backend interface {
	StagedFiles(ctx context.Context) ([]string, error)
	ModifiedFiles(ctx context.Context) ([]string, error)
	AddedFiles(ctx context.Context) ([]string, error)
	DeletedFiles(ctx context.Context) ([]string, error)
	UnstagedFiles(ctx context.Context) ([]string, error)
	AllFiles(ctx context.Context) ([]string, error)

	StagedContent(ctx context.Context, path string) (string, error)
	FileDiff(ctx context.Context, path string) (string, error)
	FullDiff(ctx context.Context) (string, error)
	DiffStats(ctx context.Context) (DiffStats, error)

	Branch(ctx context.Context) (string, error)
	HeadCommit(ctx context.Context) (*CommitInfo, error)
	Author(ctx context.Context) (AuthorInfo, error)
	Remote(ctx context.Context, name string) (RemoteInfo, error)
	IsMergeCommit(ctx context.Context) (bool, error)
	HasConflicts(ctx context.Context) (bool, error)

	ScanStagedForSecrets(ctx context.Context) ([]SecretFinding, error)
}

// Default runs git as a subprocess via gg-scm.io/pkg/git, the same
// client library the gg command line tool is built on.
type Default struct {
	git *git.Git
	dir string
}

// NewDefault creates a Default rooted at dir, locating the git
// executable on PATH.
func NewDefault(ctx context.Context, dir string) (*Default, error) {
	exe, err := exec.LookPath("git")
	if err != nil {
		return nil, fmt.Errorf("gitbackend: %w", err)
	}
	g, err := git.New(exe, dir, &git.Options{})
	if err != nil {
		return nil, fmt.Errorf("gitbackend: %w", err)
	}
	return &Default{git: g, dir: dir}, nil
}

func (d *Default) status(ctx context.Context) ([]git.StatusEntry, error) {
	return d.git.Status(ctx, git.StatusOptions{})
}

func (d *Default) StagedFiles(ctx context.Context) ([]string, error) {
	entries, err := d.status(ctx)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.Code[0] != ' ' && e.Code[0] != '?' {
			out = append(out, string(e.Name))
		}
	}
	return out, nil
}

func (d *Default) ModifiedFiles(ctx context.Context) ([]string, error) {
	entries, err := d.status(ctx)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.Code.IsModified() {
			out = append(out, string(e.Name))
		}
	}
	return out, nil
}

func (d *Default) AddedFiles(ctx context.Context) ([]string, error) {
	entries, err := d.status(ctx)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.Code.IsAdded() {
			out = append(out, string(e.Name))
		}
	}
	return out, nil
}

func (d *Default) DeletedFiles(ctx context.Context) ([]string, error) {
	entries, err := d.status(ctx)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.Code.IsMissing() || e.Code.IsRemoved() {
			out = append(out, string(e.Name))
		}
	}
	return out, nil
}

func (d *Default) UnstagedFiles(ctx context.Context) ([]string, error) {
	entries, err := d.status(ctx)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.Code[1] != ' ' {
			out = append(out, string(e.Name))
		}
	}
	return out, nil
}

func (d *Default) AllFiles(ctx context.Context) ([]string, error) {
	entries, err := d.status(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, string(e.Name))
	}
	return out, nil
}

// StagedContent returns the content of path as it sits in the index,
// i.e. what will actually be committed: Cat with an empty revision
// reads the index stage rather than a committed tree.
func (d *Default) StagedContent(ctx context.Context, path string) (string, error) {
	rc, err := d.git.Cat(ctx, "", git.TopPath(path))
	if err != nil {
		return "", err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (d *Default) FileDiff(ctx context.Context, path string) (string, error) {
	out, err := d.git.RunOneLiner(ctx, 0, "diff", "--cached", "--", path)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (d *Default) FullDiff(ctx context.Context) (string, error) {
	p, err := d.git.Start(ctx, "diff", "--cached")
	if err != nil {
		return "", err
	}
	data, readErr := io.ReadAll(p)
	waitErr := p.Wait()
	if readErr != nil {
		return "", readErr
	}
	if waitErr != nil {
		return "", waitErr
	}
	return string(data), nil
}

// DiffStats reads `git diff --cached --numstat` to total additions,
// deletions and the count of changed files.
func (d *Default) DiffStats(ctx context.Context) (DiffStats, error) {
	p, err := d.git.Start(ctx, "diff", "--cached", "--numstat")
	if err != nil {
		return DiffStats{}, err
	}
	data, readErr := io.ReadAll(p)
	waitErr := p.Wait()
	if readErr != nil {
		return DiffStats{}, readErr
	}
	if waitErr != nil {
		return DiffStats{}, waitErr
	}
	var stats DiffStats
	for _, line := range strings.Split(strings.TrimRight(string(data), "\n"), "\n") {
		if line == "" {
			continue
		}
		fields := strings.SplitN(line, "\t", 3)
		if len(fields) != 3 {
			continue
		}
		stats.FilesChanged++
		if n, err := strconv.Atoi(fields[0]); err == nil {
			stats.Additions += n
		}
		if n, err := strconv.Atoi(fields[1]); err == nil {
			stats.Deletions += n
		}
	}
	return stats, nil
}

func (d *Default) Branch(ctx context.Context) (string, error) {
	head, err := d.git.Head(ctx)
	if err != nil {
		return "", nil // detached or no commits yet: no branch
	}
	if branch := head.Ref.Branch(); branch != "" {
		return branch, nil
	}
	return "", nil
}

// HeadCommit returns nil, not an error, when the repository has no
// commits yet (a fresh repo's first pre-commit run, where there is no
// HEAD to describe).
func (d *Default) HeadCommit(ctx context.Context) (*CommitInfo, error) {
	rev, err := d.git.ParseRev(ctx, "HEAD")
	if err != nil {
		return nil, nil
	}
	info, err := d.git.CommitInfo(ctx, rev.Commit.String())
	if err != nil {
		return nil, err
	}
	return &CommitInfo{
		Hash:      info.Hash.String(),
		Message:   info.Message,
		Author:    AuthorInfo{Name: info.Author.Name, Email: info.Author.Email},
		Timestamp: info.AuthorTime.Format("2006-01-02T15:04:05Z07:00"),
	}, nil
}

func (d *Default) Author(ctx context.Context) (AuthorInfo, error) {
	cfg, err := d.git.ReadConfig(ctx)
	if err != nil {
		return AuthorInfo{}, err
	}
	return AuthorInfo{Name: cfg.Value("user.name"), Email: cfg.Value("user.email")}, nil
}

func (d *Default) Remote(ctx context.Context, name string) (RemoteInfo, error) {
	cfg, err := d.git.ReadConfig(ctx)
	if err != nil {
		return RemoteInfo{}, err
	}
	return RemoteInfo{Name: name, URL: cfg.Value("remote." + name + ".url")}, nil
}

func (d *Default) IsMergeCommit(ctx context.Context) (bool, error) {
	return d.git.Query(ctx, "rev-parse", "--verify", "-q", "MERGE_HEAD")
}

func (d *Default) HasConflicts(ctx context.Context) (bool, error) {
	entries, err := d.status(ctx)
	if err != nil {
		return false, err
	}
	for _, e := range entries {
		if e.Code.IsUnmerged() {
			return true, nil
		}
	}
	return false, nil
}
