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
	"regexp"
	"strings"
)

// SecretFinding is a single line that matched one of secretPatterns.
type SecretFinding struct {
	File string
	Line int
	Text string
}

var secretPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(api[_-]?key|apikey)\s*[:=]\s*['"]?[a-zA-Z0-9]{20,}['"]?`),
	regexp.MustCompile(`AKIA[0-9A-Z]{16}`),
	regexp.MustCompile(`-----BEGIN (RSA |EC )?PRIVATE KEY-----`),
	regexp.MustCompile(`(?i)(password|passwd|pwd)\s*[:=]\s*['"][^'"]{8,}['"]`),
	regexp.MustCompile(`(?i)(token|secret)\s*[:=]\s*['"]?[a-zA-Z0-9]{20,}['"]?`),
	regexp.MustCompile(`(?i)(postgres|mysql|mongodb)://[^:]+:[^@]+@`),
}

// scanContent reports every line of content that matches a secret
// pattern, scanning no more than once per line.
func scanContent(file, content string) []SecretFinding {
	var findings []SecretFinding
	for i, line := range strings.Split(content, "\n") {
		for _, pattern := range secretPatterns {
			if pattern.MatchString(line) {
				findings = append(findings, SecretFinding{File: file, Line: i + 1, Text: line})
				break
			}
		}
	}
	return findings
}

// ScanStagedForSecrets scans every staged file's index content for
// potential secrets (API keys, private keys, passwords, tokens,
// database connection strings).
func (d *Default) ScanStagedForSecrets(ctx context.Context) ([]SecretFinding, error) {
	files, err := d.StagedFiles(ctx)
	if err != nil {
		return nil, err
	}
	var findings []SecretFinding
	for _, f := range files {
		content, err := d.StagedContent(ctx, f)
		if err != nil {
			continue // binary or unreadable blob: not scannable
		}
		findings = append(findings, scanContent(f, content)...)
	}
	return findings, nil
}
