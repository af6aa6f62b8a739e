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

package cache

import (
	"errors"
	"os"
	"testing"
)

func TestGetMissOnEmptyCache(t *testing.T) {
	c := New[string, int](4)
	if _, ok := c.Get("x"); ok {
		t.Error("Get on empty cache ok = true, want false")
	}
}

func TestAddThenGet(t *testing.T) {
	c := New[string, int](4)
	c.Add("x", 1)
	v, ok := c.Get("x")
	if !ok || v != 1 {
		t.Errorf("Get = %v, %v, want 1, true", v, ok)
	}
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	c := New[string, int](2)
	c.Add("a", 1)
	c.Add("b", 2)
	c.Get("a") // touch a, making b the LRU entry
	c.Add("c", 3)
	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("a should still be cached")
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("c should be cached")
	}
}

func TestGetOrComputeCachesResult(t *testing.T) {
	c := New[string, int](4)
	calls := 0
	compute := func() (int, error) {
		calls++
		return 42, nil
	}
	v, err := c.GetOrCompute("k", compute)
	if err != nil || v != 42 {
		t.Fatalf("GetOrCompute = %v, %v", v, err)
	}
	v, err = c.GetOrCompute("k", compute)
	if err != nil || v != 42 {
		t.Fatalf("GetOrCompute (cached) = %v, %v", v, err)
	}
	if calls != 1 {
		t.Errorf("compute called %d times, want 1", calls)
	}
}

func TestGetOrComputePropagatesError(t *testing.T) {
	c := New[string, int](4)
	wantErr := errors.New("boom")
	_, err := c.GetOrCompute("k", func() (int, error) { return 0, wantErr })
	if err != wantErr {
		t.Fatalf("GetOrCompute err = %v, want %v", err, wantErr)
	}
	if _, ok := c.Get("k"); ok {
		t.Error("failed compute should not populate the cache")
	}
}

func TestRemove(t *testing.T) {
	c := New[string, int](4)
	c.Add("x", 1)
	c.Remove("x")
	if _, ok := c.Get("x"); ok {
		t.Error("Get after Remove ok = true, want false")
	}
}

func TestRegexCacheSizeDefault(t *testing.T) {
	os.Unsetenv("GITHOOK_REGEX_CACHE_SIZE")
	if n := RegexCacheSize(); n != DefaultRegexCacheSize {
		t.Errorf("RegexCacheSize() = %d, want %d", n, DefaultRegexCacheSize)
	}
}

func TestRegexCacheSizeOverride(t *testing.T) {
	t.Setenv("GITHOOK_REGEX_CACHE_SIZE", "7")
	if n := RegexCacheSize(); n != 7 {
		t.Errorf("RegexCacheSize() = %d, want 7", n)
	}
}

func TestRegexCacheSizeIgnoresInvalid(t *testing.T) {
	t.Setenv("GITHOOK_REGEX_CACHE_SIZE", "not-a-number")
	if n := RegexCacheSize(); n != DefaultRegexCacheSize {
		t.Errorf("RegexCacheSize() = %d, want %d", n, DefaultRegexCacheSize)
	}
	t.Setenv("GITHOOK_REGEX_CACHE_SIZE", "-5")
	if n := RegexCacheSize(); n != DefaultRegexCacheSize {
		t.Errorf("RegexCacheSize() = %d, want %d", n, DefaultRegexCacheSize)
	}
}
