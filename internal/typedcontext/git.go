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

import "github.com/scholzdev/ghook/internal/value"

// AuthorData is the plain data backing the Author variant. Typedcontext
// takes plain data structs (not internal/gitbackend types) so that this
// package has no dependency on how the data was collected; the
// evaluator assembles these from internal/gitbackend.
type AuthorData struct {
	Name  string
	Email string
}

// RemoteData backs the Remote variant.
type RemoteData struct {
	Name string
	URL  string
}

// DiffStatsData backs the DiffStats variant.
type DiffStatsData struct {
	Additions    int
	Deletions    int
	FilesChanged int
}

// CommitData backs the Commit variant. A nil *CommitData (see GitData.Commit)
// surfaces as value.Null{} per spec.md §9's open question (c): "git.commit
// is Null in pre-commit context".
type CommitData struct {
	Hash      string
	Message   string
	Author    AuthorData
	Timestamp string
}

// FilesCollectionData backs the FilesCollection variant; each field is
// an Array of File objects built by the caller via NewFile.
type FilesCollectionData struct {
	Staged   value.Array
	All      value.Array
	Modified value.Array
	Added    value.Array
	Deleted  value.Array
	Unstaged value.Array
}

// SecretFindingData backs one entry of git.secret_scan()'s result, per
// spec.md §6.4's "secret scan" backend capability
// ([{file, line, content}]).
type SecretFindingData struct {
	File    string
	Line    int
	Content string
}

// GitData backs the root Git variant.
type GitData struct {
	Branch         string
	Commit         *CommitData
	Author         AuthorData
	Remote         RemoteData
	Stats          DiffStatsData
	Files          FilesCollectionData
	Diff           string
	IsMergeCommit  bool
	HasConflicts   bool
	SecretFindings []SecretFindingData
}

func NewAuthor(d AuthorData) *value.Object {
	obj := value.NewObject("Author")
	obj.Context = authorContext{d}
	return obj
}

func NewRemote(d RemoteData) *value.Object {
	obj := value.NewObject("Remote")
	obj.Context = remoteContext{d}
	return obj
}

func NewDiffStats(d DiffStatsData) *value.Object {
	obj := value.NewObject("DiffStats")
	obj.Context = diffStatsContext{d}
	return obj
}

func NewBranch(name string) *value.Object {
	obj := value.NewObject("Branch")
	obj.Context = branchContext{name}
	return obj
}

func NewCommit(d CommitData) *value.Object {
	obj := value.NewObject("Commit")
	obj.Context = commitContext{d}
	return obj
}

func NewFilesCollection(d FilesCollectionData) *value.Object {
	obj := value.NewObject("FilesCollection")
	obj.Context = filesCollectionContext{d}
	return obj
}

func NewGit(d GitData) *value.Object {
	obj := value.NewObject("Git")
	obj.Context = gitContext{d}
	return obj
}

func NewSecretFinding(d SecretFindingData) *value.Object {
	obj := value.NewObject("SecretFinding")
	obj.Context = secretFindingContext{d}
	return obj
}

type authorContext struct{ d AuthorData }

func (a authorContext) CallProperty(name string) (value.Value, bool) {
	switch name {
	case "name":
		return value.Str(a.d.Name), true
	case "email":
		return value.Str(a.d.Email), true
	}
	return nil, false
}

func (authorContext) CallMethod(string, []value.Value) (value.Value, bool, error) { return nil, false, nil }

type remoteContext struct{ d RemoteData }

func (r remoteContext) CallProperty(name string) (value.Value, bool) {
	switch name {
	case "name":
		return value.Str(r.d.Name), true
	case "url":
		return value.Str(r.d.URL), true
	}
	return nil, false
}

func (remoteContext) CallMethod(string, []value.Value) (value.Value, bool, error) { return nil, false, nil }

type diffStatsContext struct{ d DiffStatsData }

func (s diffStatsContext) CallProperty(name string) (value.Value, bool) {
	switch name {
	case "additions":
		return value.Num(float64(s.d.Additions)), true
	case "deletions":
		return value.Num(float64(s.d.Deletions)), true
	case "files_changed":
		return value.Num(float64(s.d.FilesChanged)), true
	}
	return nil, false
}

func (diffStatsContext) CallMethod(string, []value.Value) (value.Value, bool, error) { return nil, false, nil }

type branchContext struct{ name string }

func (b branchContext) CallProperty(name string) (value.Value, bool) {
	if name == "name" {
		return value.Str(b.name), true
	}
	return nil, false
}

func (branchContext) CallMethod(string, []value.Value) (value.Value, bool, error) { return nil, false, nil }

type commitContext struct{ d CommitData }

func (c commitContext) CallProperty(name string) (value.Value, bool) {
	switch name {
	case "hash":
		return value.Str(c.d.Hash), true
	case "message":
		return value.Str(c.d.Message), true
	case "author":
		return NewAuthor(c.d.Author), true
	case "timestamp":
		return value.Str(c.d.Timestamp), true
	}
	return nil, false
}

func (commitContext) CallMethod(string, []value.Value) (value.Value, bool, error) { return nil, false, nil }

type filesCollectionContext struct{ d FilesCollectionData }

func (f filesCollectionContext) CallProperty(name string) (value.Value, bool) {
	switch name {
	case "staged":
		return f.d.Staged, true
	case "all":
		return f.d.All, true
	case "modified":
		return f.d.Modified, true
	case "added":
		return f.d.Added, true
	case "deleted":
		return f.d.Deleted, true
	case "unstaged":
		return f.d.Unstaged, true
	}
	return nil, false
}

func (filesCollectionContext) CallMethod(string, []value.Value) (value.Value, bool, error) {
	return nil, false, nil
}

type gitContext struct{ d GitData }

func (g gitContext) CallProperty(name string) (value.Value, bool) {
	switch name {
	case "branch":
		return NewBranch(g.d.Branch), true
	case "commit":
		if g.d.Commit == nil {
			return value.Null{}, true
		}
		return NewCommit(*g.d.Commit), true
	case "author":
		return NewAuthor(g.d.Author), true
	case "remote":
		return NewRemote(g.d.Remote), true
	case "stats":
		return NewDiffStats(g.d.Stats), true
	case "files":
		return NewFilesCollection(g.d.Files), true
	case "diff":
		return value.Str(g.d.Diff), true
	case "is_merge_commit":
		return value.Bool(g.d.IsMergeCommit), true
	case "has_conflicts":
		return value.Bool(g.d.HasConflicts), true
	}
	return nil, false
}

func (g gitContext) CallMethod(name string, args []value.Value) (value.Value, bool, error) {
	if name != "secret_scan" {
		return nil, false, nil
	}
	out := make(value.Array, len(g.d.SecretFindings))
	for i, f := range g.d.SecretFindings {
		out[i] = NewSecretFinding(f)
	}
	return out, true, nil
}

type secretFindingContext struct{ d SecretFindingData }

func (s secretFindingContext) CallProperty(name string) (value.Value, bool) {
	switch name {
	case "file":
		return value.Str(s.d.File), true
	case "line":
		return value.Num(float64(s.d.Line)), true
	case "content":
		return value.Str(s.d.Content), true
	}
	return nil, false
}

func (secretFindingContext) CallMethod(string, []value.Value) (value.Value, bool, error) {
	return nil, false, nil
}
