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

package gitbackend

import (
	"context"

	"github.com/scholzdev/ghook/internal/cache"
)

// Cached wraps a Backend with a git-diff LRU and a commit-message LRU.
// Each Cached owns its own pair of caches; nothing is shared between
// Cached values, so the caches last only as long as the wrapper. Repeat
// FullDiff/FileDiff calls are served from the diff cache without
// re-invoking git; HeadCommit still asks the wrapped Backend every time.
type Cached struct {
	Backend
	diffs   *cache.LRU[string, string]
	commits *cache.LRU[string, *CommitInfo]
}

// NewCached wraps b with its own pair of bounded caches.
func NewCached(b Backend) *Cached {
	return &Cached{
		Backend: b,
		diffs:   cache.New[string, string](cache.DiffCacheSize),
		commits: cache.New[string, *CommitInfo](cache.CommitMessageCacheSize),
	}
}

func (c *Cached) FullDiff(ctx context.Context) (string, error) {
	return c.diffs.GetOrCompute("full", func() (string, error) {
		return c.Backend.FullDiff(ctx)
	})
}

func (c *Cached) FileDiff(ctx context.Context, path string) (string, error) {
	return c.diffs.GetOrCompute("file:"+path, func() (string, error) {
		return c.Backend.FileDiff(ctx, path)
	})
}

// HeadCommit calls the wrapped Backend's HeadCommit on every call and
// keys the result by the commit's own hash, returning the first
// *CommitInfo seen for that hash; a nil commit (no HEAD yet) is never
// cached since it becomes stale the moment the first commit lands.
func (c *Cached) HeadCommit(ctx context.Context) (*CommitInfo, error) {
	info, err := c.Backend.HeadCommit(ctx)
	if err != nil || info == nil {
		return info, err
	}
	if cached, ok := c.commits.Get(info.Hash); ok {
		return cached, nil
	}
	c.commits.Add(info.Hash, info)
	return info, nil
}
