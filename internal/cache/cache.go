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

// Package cache holds the small set of bounded, process-lifetime LRU
// caches the evaluator and resolver keep warm between hook runs within
// a single process: compiled package sources, compiled regexes,
// compiled globs, and the git-diff / commit-message strings the
// "git" context builds lazily. Every cache here is a thin, named
// wrapper around golang-lru so call sites read as what they cache
// rather than how an LRU works.
package cache

import (
	"os"
	"strconv"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Sizes matching the default budgets. GITHOOK_REGEX_CACHE_SIZE
// overrides RegexCacheSize at process start.
const (
	PackageSourceCacheSize = 50
	DefaultRegexCacheSize  = 100
	GlobCacheSize          = 128
	DiffCacheSize          = 50
	CommitMessageCacheSize = 100
)

// RegexCacheSize returns DefaultRegexCacheSize, or the value of the
// GITHOOK_REGEX_CACHE_SIZE environment variable when it parses as a
// positive integer.
func RegexCacheSize() int {
	v := os.Getenv("GITHOOK_REGEX_CACHE_SIZE")
	if v == "" {
		return DefaultRegexCacheSize
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return DefaultRegexCacheSize
	}
	return n
}

// LRU is a fixed-capacity, goroutine-safe least-recently-used cache.
// The zero value is not usable; construct with New.
type LRU[K comparable, V any] struct {
	mu   sync.Mutex
	inner *lru.Cache[K, V]
}

// New constructs an LRU holding at most size entries. It panics if
// size is not positive, matching the underlying library's contract.
func New[K comparable, V any](size int) *LRU[K, V] {
	c, err := lru.New[K, V](size)
	if err != nil {
		panic("cache: " + err.Error())
	}
	return &LRU[K, V]{inner: c}
}

// Get returns the cached value for key, if present, and reports
// whether it was found.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inner.Get(key)
}

// Add inserts or updates the value cached for key, evicting the
// least-recently-used entry if the cache was already at capacity.
func (c *LRU[K, V]) Add(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inner.Add(key, value)
}

// GetOrCompute returns the cached value for key if present; otherwise
// it calls compute, caches the result (unless compute returns an
// error), and returns it. compute runs outside the cache's lock, so
// two goroutines racing on the same missing key may both compute it;
// the second one to finish wins the cache slot.
func (c *LRU[K, V]) GetOrCompute(key K, compute func() (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	v, err := compute()
	if err != nil {
		var zero V
		return zero, err
	}
	c.Add(key, v)
	return v, nil
}

// Remove evicts key from the cache, if present.
func (c *LRU[K, V]) Remove(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inner.Remove(key)
}

// Len reports the number of entries currently cached.
func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inner.Len()
}
