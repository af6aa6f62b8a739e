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

// Package blobcache persists fetched package-resolver blobs (remote
// `@namespace/name` source and their ETags) across hook invocations,
// so a policy script that imports the same remote package on every
// commit doesn't re-fetch it every time. It is structured the same way
// the teacher's internal/repocache indexes Git objects: one on-disk
// SQLite database, opened once, migrated by an app-id/user-version
// check.
package blobcache

import (
	"context"
	"crypto/sha1"
	"embed"
	"fmt"
	"time"

	"gg-scm.io/pkg/git/githash"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

//go:embed schema.sql
var sqlFiles embed.FS

const appID int32 = 0x67686b63 // "ghkc"
const currentUserVersion = 1

// Cache represents an open connection to a blob cache database.
type Cache struct {
	conn *sqlite.Conn
}

// Entry is a previously cached fetch result.
type Entry struct {
	SHA1    githash.SHA1
	ETag    string
	Content []byte
}

// Open opens a cache file on disk, creating it if necessary.
func Open(ctx context.Context, path string) (*Cache, error) {
	conn, err := sqlite.OpenConn(path, sqlite.OpenCreate|sqlite.OpenReadWrite)
	if err != nil {
		return nil, fmt.Errorf("open blob cache %s: %w", path, err)
	}
	conn.SetInterrupt(ctx.Done())
	if err := migrate(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("open blob cache %s: %w", path, err)
	}
	conn.SetInterrupt(nil)
	return &Cache{conn: conn}, nil
}

func migrate(conn *sqlite.Conn) (err error) {
	endFn, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return err
	}
	defer endFn(&err)

	gotID, gotVersion, err := readPragmas(conn)
	if err != nil {
		return err
	}
	if gotID != 0 && gotID != appID {
		return fmt.Errorf("database has foreign application_id %#x", gotID)
	}
	if gotVersion != currentUserVersion {
		if err := sqlitex.ExecuteTransient(conn, "DROP TABLE IF EXISTS blobs;", nil); err != nil {
			return err
		}
	}
	if err := sqlitex.ExecuteScriptFS(conn, sqlFiles, "schema.sql", nil); err != nil {
		return err
	}
	if err := sqlitex.ExecuteTransient(conn, fmt.Sprintf("PRAGMA application_id = %d;", appID), nil); err != nil {
		return err
	}
	if err := sqlitex.ExecuteTransient(conn, fmt.Sprintf("PRAGMA user_version = %d;", currentUserVersion), nil); err != nil {
		return err
	}
	return nil
}

func readPragmas(conn *sqlite.Conn) (id int32, version int32, err error) {
	err = sqlitex.ExecuteTransient(conn, "PRAGMA application_id;", &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			id = int32(stmt.GetInt64("application_id"))
			return nil
		},
	})
	if err != nil {
		return 0, 0, err
	}
	err = sqlitex.ExecuteTransient(conn, "PRAGMA user_version;", &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			version = int32(stmt.GetInt64("user_version"))
			return nil
		},
	})
	return id, version, err
}

// Get looks up a previously cached fetch by key (the resolved package
// identifier, e.g. "acme/lint-rules"). ok is false on a cache miss.
func (c *Cache) Get(ctx context.Context, key string) (entry Entry, ok bool, err error) {
	c.conn.SetInterrupt(ctx.Done())
	defer c.conn.SetInterrupt(nil)
	err = sqlitex.ExecuteTransient(c.conn, `SELECT sha1, etag, content FROM blobs WHERE key = :key;`, &sqlitex.ExecOptions{
		Named: map[string]any{":key": key},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			ok = true
			stmt.GetBytes("sha1", entry.SHA1[:])
			entry.ETag = stmt.GetText("etag")
			entry.Content = []byte(stmt.GetText("content"))
			return nil
		},
	})
	if err != nil {
		return Entry{}, false, fmt.Errorf("blobcache: get %s: %w", key, err)
	}
	return entry, ok, nil
}

// Put stores content under key along with the ETag it was fetched
// with (empty if the source gave none), content-addressing it by the
// SHA-1 of the raw content (no Git blob header is hashed).
func (c *Cache) Put(ctx context.Context, key, etag string, content []byte) (githash.SHA1, error) {
	c.conn.SetInterrupt(ctx.Done())
	defer c.conn.SetInterrupt(nil)
	id := githash.SHA1(sha1.Sum(content))
	err := sqlitex.ExecuteTransient(c.conn, `
		INSERT INTO blobs (key, sha1, etag, content, fetched_at)
		VALUES (:key, :sha1, :etag, :content, :fetched_at)
		ON CONFLICT(key) DO UPDATE SET
			sha1 = excluded.sha1,
			etag = excluded.etag,
			content = excluded.content,
			fetched_at = excluded.fetched_at;
	`, &sqlitex.ExecOptions{
		Named: map[string]any{
			":key":        key,
			":sha1":       id[:],
			":etag":       etag,
			":content":    string(content),
			":fetched_at": time.Now().Unix(),
		},
	})
	if err != nil {
		return githash.SHA1{}, fmt.Errorf("blobcache: put %s: %w", key, err)
	}
	return id, nil
}

// Close releases the cache's database connection.
func (c *Cache) Close() error {
	return c.conn.Close()
}
