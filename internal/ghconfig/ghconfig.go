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

// Package ghconfig loads the `.ghrc` TOML files that seed an
// evaluator.Config, per spec.md §4.9 and config.rs: a global `~/.ghrc`
// is read first, then the nearest `.ghrc` or `.githook/.ghrc` found by
// walking up from a starting directory is merged on top of it, field
// by field. Every field is optional; an absent field keeps whatever
// value came before it in the merge.
package ghconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/scholzdev/ghook/internal/evaluator"
)

// file is the TOML-friendly intermediate representation: every field
// is a pointer or has a zero value indistinguishable from "absent",
// so Merge can tell "not set in this file" from "set to the zero
// value".
type file struct {
	CommandTimeout     *int64  `toml:"command_timeout,omitempty"`
	HTTPTimeout        *int64  `toml:"http_timeout,omitempty"`
	MaxParallelThreads *int    `toml:"max_parallel_threads,omitempty"`
	AuthToken          *string `toml:"auth_token,omitempty"`
	PackageRemoteURL   *string `toml:"package_remote_url,omitempty"`
	PackageRemoteType  *string `toml:"package_remote_type,omitempty"`
	PackageAccessToken *string `toml:"package_access_token,omitempty"`
}

func (f file) mergeInto(cfg *evaluator.Config) {
	if f.CommandTimeout != nil {
		cfg.CommandTimeout = time.Duration(*f.CommandTimeout) * time.Second
	}
	if f.HTTPTimeout != nil {
		cfg.HTTPTimeout = time.Duration(*f.HTTPTimeout) * time.Second
	}
	if f.MaxParallelThreads != nil {
		cfg.MaxParallelThreads = *f.MaxParallelThreads
	}
	if f.AuthToken != nil {
		cfg.AuthToken = *f.AuthToken
	}
	if f.PackageRemoteURL != nil {
		cfg.PackageRemoteURL = *f.PackageRemoteURL
	}
	if f.PackageRemoteType != nil {
		cfg.PackageRemoteType = *f.PackageRemoteType
	}
	if f.PackageAccessToken != nil {
		cfg.PackageAccessToken = *f.PackageAccessToken
	}
}

// ParseTOML parses a single .ghrc document and merges it onto cfg.
func ParseTOML(data []byte, cfg *evaluator.Config) error {
	var f file
	if err := toml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("ghconfig: parse config: %w", err)
	}
	f.mergeInto(cfg)
	return nil
}

// Load builds an evaluator.Config starting from evaluator.DefaultConfig,
// merging `~/.ghrc` (if present) and then the nearest ancestor `.ghrc`
// or `.githook/.ghrc` found by walking up from startDir (if present).
// A missing config file at either stage is not an error; a malformed
// one is.
func Load(startDir string) (evaluator.Config, error) {
	cfg := evaluator.DefaultConfig()

	if home, err := os.UserHomeDir(); err == nil {
		if data, err := os.ReadFile(filepath.Join(home, ".ghrc")); err == nil {
			if err := ParseTOML(data, &cfg); err != nil {
				return evaluator.Config{}, fmt.Errorf("ghconfig: global config: %w", err)
			}
		}
	}

	if path := findLocal(startDir); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return evaluator.Config{}, fmt.Errorf("ghconfig: read %s: %w", path, err)
		}
		if err := ParseTOML(data, &cfg); err != nil {
			return evaluator.Config{}, fmt.Errorf("ghconfig: %s: %w", path, err)
		}
	}

	return cfg, nil
}

// findLocal walks up from startDir looking for .ghrc or .githook/.ghrc,
// returning the first match or "" if neither is found all the way to
// the filesystem root.
func findLocal(startDir string) string {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		dir = startDir
	}
	for {
		candidate := filepath.Join(dir, ".ghrc")
		if isFile(candidate) {
			return candidate
		}
		candidate = filepath.Join(dir, ".githook", ".ghrc")
		if isFile(candidate) {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
