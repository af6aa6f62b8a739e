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

package blobcache

import (
	"context"
	"path/filepath"
	"testing"
)

func TestGetMissReportsNotOK(t *testing.T) {
	ctx := context.Background()
	c, err := Open(ctx, filepath.Join(t.TempDir(), "cache.sqlite"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	_, ok, err := c.Get(ctx, "acme/lint-rules")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Error("Get on empty cache ok = true, want false")
	}
}

func TestPutThenGetRoundTrips(t *testing.T) {
	ctx := context.Background()
	c, err := Open(ctx, filepath.Join(t.TempDir(), "cache.sqlite"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	id, err := c.Put(ctx, "acme/lint-rules", `W/"abc123"`, []byte("block if git.files.staged.length > 50"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}

	entry, ok, err := c.Get(ctx, "acme/lint-rules")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatal("Get ok = false after Put")
	}
	if entry.SHA1 != id {
		t.Errorf("entry.SHA1 = %v, want %v", entry.SHA1, id)
	}
	if entry.ETag != `W/"abc123"` {
		t.Errorf("entry.ETag = %q, want %q", entry.ETag, `W/"abc123"`)
	}
	if string(entry.Content) != "block if git.files.staged.length > 50" {
		t.Errorf("entry.Content = %q", entry.Content)
	}
}

func TestPutOverwritesExistingKey(t *testing.T) {
	ctx := context.Background()
	c, err := Open(ctx, filepath.Join(t.TempDir(), "cache.sqlite"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	if _, err := c.Put(ctx, "k", "etag1", []byte("v1")); err != nil {
		t.Fatalf("Put 1: %v", err)
	}
	if _, err := c.Put(ctx, "k", "etag2", []byte("v2")); err != nil {
		t.Fatalf("Put 2: %v", err)
	}
	entry, ok, err := c.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if string(entry.Content) != "v2" || entry.ETag != "etag2" {
		t.Errorf("entry = %+v, want v2/etag2", entry)
	}
}
