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

// Package resolver implements GHook's `use "@namespace/name"` package
// resolution, per spec.md §4.7: `@local/<name>` is read straight off
// disk, every other namespace is fetched over HTTP with conditional-GET
// caching. It implements evaluator.Resolver without importing that
// package, matching the dependency-injection shape the rest of the
// typed-context/evaluator boundary already uses.
package resolver

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/scholzdev/ghook/internal/blobcache"
	"github.com/scholzdev/ghook/internal/cache"
)

// Config carries the package-remote settings the evaluator.Config
// struct already holds; the façade constructs one from its own Config
// when it wires a Client in.
type Config struct {
	RemoteRepo  string // e.g. "scholzdev/githooks-packages"
	RemoteType  string // only "github" is implemented
	AccessToken string
	HTTPTimeout time.Duration
	HomeDir     string // $HOME, for @local/<name>
}

// Client resolves package sources, fronted by an LRU of loaded sources
// (cache.PackageSourceCacheSize entries) that each Client gets from New
// and does not share with other Clients, and
// backed by a persistent blobcache.Cache that survives across hook
// invocations, so a policy importing the same remote package on every
// commit only re-fetches it when the upstream ETag actually changes.
type Client struct {
	cfg     Config
	http    *http.Client
	sources *cache.LRU[string, string]
	blobs   *blobcache.Cache // nil disables cross-run persistence
}

// New constructs a Client. blobs may be nil, in which case conditional
// GET caching is scoped to the in-memory LRU only (every new process
// re-fetches remote packages once).
func New(cfg Config, blobs *blobcache.Cache) *Client {
	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.HTTPTimeout},
		sources: cache.New[string, string](cache.PackageSourceCacheSize),
		blobs:   blobs,
	}
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// validateIdentifier enforces package_resolver.rs's
// validate_package_identifier: charset, length, and no path-traversal
// sequences, checked independently of the regex since "a..b" matches
// the charset but must still be rejected.
func validateIdentifier(kind, s string) error {
	if s == "" || len(s) > 100 || !identifierPattern.MatchString(s) {
		return fmt.Errorf("invalid package %s %q: must match [A-Za-z0-9_-]+ and be at most 100 characters", kind, s)
	}
	return nil
}

// Resolve fetches the source for a namespace/name package, satisfying
// evaluator.Resolver.
func (c *Client) Resolve(ctx context.Context, namespace, name string) (string, error) {
	if err := validateIdentifier("namespace", namespace); err != nil {
		return "", err
	}
	if err := validateIdentifier("name", name); err != nil {
		return "", err
	}
	key := namespace + "::" + name
	if src, ok := c.sources.Get(key); ok {
		return src, nil
	}
	var src string
	var err error
	if namespace == "local" {
		src, err = c.readLocal(name)
	} else {
		src, err = c.fetchRemote(ctx, namespace, name)
	}
	if err != nil {
		return "", err
	}
	c.sources.Add(key, src)
	return src, nil
}

func (c *Client) readLocal(name string) (string, error) {
	path := filepath.Join(c.cfg.HomeDir, ".githook", "packages", "local", name, name+".ghook")
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read local package %q: %w", name, err)
	}
	return string(data), nil
}

// fetchRemote implements spec.md §4.7's cache-freshness contract: the
// last ETag seen for a package is sent back as `If-None-Match`; a 304
// response returns the cached copy unchanged, a 200 response persists
// both the new content and its ETag. The persistent side of that
// contract is blobcache.Cache rather than a loose sibling file, since
// that package exists for exactly this key/ETag/content shape (see
// DESIGN.md); with no blobcache wired in, every fetch is unconditional.
func (c *Client) fetchRemote(ctx context.Context, namespace, name string) (string, error) {
	if c.cfg.RemoteType != "github" {
		return "", fmt.Errorf("unsupported package remote type %q", c.cfg.RemoteType)
	}
	key := namespace + "/" + name

	var cachedEntry blobcache.Entry
	var haveCached bool
	if c.blobs != nil {
		entry, ok, err := c.blobs.Get(ctx, key)
		if err != nil {
			return "", fmt.Errorf("read package cache for %s: %w", key, err)
		}
		cachedEntry, haveCached = entry, ok
	}

	url := fmt.Sprintf("https://raw.githubusercontent.com/%s/refs/heads/main/%s/%s/%s.ghook",
		c.cfg.RemoteRepo, namespace, name, name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request for package %s: %w", key, err)
	}
	if haveCached && cachedEntry.ETag != "" {
		req.Header.Set("If-None-Match", cachedEntry.ETag)
	}
	if c.cfg.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.AccessToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch package %s: %w", key, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNotModified:
		if !haveCached {
			return "", fmt.Errorf("package %s: server reported not-modified but no cached copy exists", key)
		}
		return string(cachedEntry.Content), nil
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", fmt.Errorf("read package %s body: %w", key, err)
		}
		if c.blobs != nil {
			if _, err := c.blobs.Put(ctx, key, resp.Header.Get("ETag"), body); err != nil {
				return "", fmt.Errorf("write package cache for %s: %w", key, err)
			}
		}
		return string(body), nil
	default:
		return "", fmt.Errorf("fetch package %s: unexpected status %s", key, resp.Status)
	}
}
