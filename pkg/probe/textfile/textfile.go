// Copyright (c) 2026, Sysdiag Authors.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package textfile

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/eraxe/sysdiag/pkg/defaults"
)

// Read returns the file content with trailing newlines trimmed. Failures
// degrade to explanatory text rather than errors: probes embed whatever
// Read returns directly into report content, so a missing or unreadable
// file still yields a completed module.
func Read(path string, opts ...ReadOption) string {
	var cfg readConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		switch {
		case os.IsNotExist(err):
			return "File not found: " + path
		case os.IsPermission(err):
			return "Permission denied: " + path
		default:
			return fmt.Sprintf("Failed to read file %s: %v", path, err)
		}
	}

	content := strings.TrimRight(string(b), "\n")
	if cfg.keep != nil {
		content = FilterLines(content, cfg.keep)
	}
	if cfg.keepLast > 0 {
		content = TrimLastLines(content, cfg.keepLast)
	}
	return content
}

// ReadOption adjusts how Read post-processes file content.
type ReadOption func(*readConfig)

type readConfig struct {
	keepLast int
	keep     func(string) bool
}

// KeepLast trims the content to its last n lines, prepending the trim
// notice when lines were dropped.
func KeepLast(n int) ReadOption {
	return func(c *readConfig) {
		c.keepLast = n
	}
}

// Filter keeps only lines for which keep returns true.
func Filter(keep func(string) bool) ReadOption {
	return func(c *readConfig) {
		c.keep = keep
	}
}

// TrimLastLines keeps the last n lines of content, prepending the trim
// notice when lines were dropped. Content with n or fewer lines is
// returned unchanged.
func TrimLastLines(content string, n int) string {
	if n <= 0 {
		return content
	}
	lines := strings.Split(content, "\n")
	if len(lines) <= n {
		return content
	}
	notice := fmt.Sprintf(defaults.TrimNotice, n)
	return notice + "\n" + strings.Join(lines[len(lines)-n:], "\n")
}

// FilterLines keeps only the lines of content for which keep returns true.
func FilterLines(content string, keep func(string) bool) string {
	lines := strings.Split(content, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if keep(line) {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

// Exists reports whether path names an existing file or directory.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Parser parses structured text files into maps and line slices. Unlike
// Read it returns hard errors, so callers that need reliable values (the
// system overview, kernel correlation) can distinguish absence from
// malformed content.
type Parser struct {
	maxSize      int
	skipComments bool
	kvDelimiter  string
	vTrimChars   string
}

// Option configures a Parser.
type Option func(*Parser)

// WithMaxSize caps the file size in bytes. Default is 1MB.
func WithMaxSize(size int) Option {
	return func(p *Parser) {
		p.maxSize = size
	}
}

// WithSkipComments controls whether lines starting with "#" are dropped.
// Default is true.
func WithSkipComments(skip bool) Option {
	return func(p *Parser) {
		p.skipComments = skip
	}
}

// WithKVDelimiter sets the key-value delimiter used by Map. Default is "=".
func WithKVDelimiter(delim string) Option {
	return func(p *Parser) {
		p.kvDelimiter = delim
	}
}

// WithVTrimChars sets characters trimmed from values in Map, such as
// quotes around os-release values.
func WithVTrimChars(chars string) Option {
	return func(p *Parser) {
		p.vTrimChars = chars
	}
}

// NewParser creates a parser with the provided options.
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		maxSize:      1 << 20,
		skipComments: true,
		kvDelimiter:  "=",
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Lines reads path and returns its non-empty, non-comment lines. Errors
// on unreadable files, invalid UTF-8, or content above the size cap.
func (p *Parser) Lines(path string) ([]string, error) {
	if path == "" {
		return nil, fmt.Errorf("file path cannot be empty")
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %q: %w", path, err)
	}
	if !utf8.Valid(b) {
		return nil, fmt.Errorf("content of file %q is not valid UTF-8", path)
	}
	if len(b) > p.maxSize {
		return nil, fmt.Errorf("file %q exceeds maximum size of %d bytes", path, p.maxSize)
	}

	parts := strings.Split(string(b), "\n")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		clean := strings.TrimSpace(part)
		if clean == "" {
			continue
		}
		if p.skipComments && strings.HasPrefix(clean, "#") {
			continue
		}
		out = append(out, clean)
	}
	return out, nil
}

// Map reads path and parses each line into a key-value pair split on the
// configured delimiter. Lines without the delimiter are skipped.
func (p *Parser) Map(path string) (map[string]string, error) {
	lines, err := p.Lines(path)
	if err != nil {
		return nil, err
	}

	out := make(map[string]string, len(lines))
	for _, line := range lines {
		kv := strings.SplitN(line, p.kvDelimiter, 2)
		if len(kv) != 2 {
			continue
		}
		key := strings.TrimSpace(kv[0])
		value := strings.TrimSpace(kv[1])
		if p.vTrimChars != "" {
			value = strings.Trim(value, p.vTrimChars)
		}
		out[key] = value
	}
	return out, nil
}
