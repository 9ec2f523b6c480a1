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

// Package sink writes rendered reports to stdout or to a file.
//
// Destination resolution:
//   - empty or "-": stdout
//   - an existing directory: a default filename inside it,
//     sysdiag_<hostname>_<timestamp>.<ext>
//   - anything else: the literal path
//
// Parent directories are never created; a missing parent is an I/O
// failure like any other.
package sink

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/eraxe/sysdiag/pkg/defaults"
	"github.com/eraxe/sysdiag/pkg/errors"
)

// fallbackHostname names report files when the hostname cannot be
// determined.
const fallbackHostname = "unknown-host"

// Writer resolves a destination and writes report bytes to it.
type Writer struct {
	stdout io.Writer
	now    func() time.Time
	host   func() (string, error)
}

// Option is a functional option for configuring Writer instances.
type Option func(*Writer)

// WithStdout overrides the stream used for stdout destinations.
func WithStdout(w io.Writer) Option {
	return func(s *Writer) {
		s.stdout = w
	}
}

// WithClock overrides the time source used in default filenames.
func WithClock(now func() time.Time) Option {
	return func(s *Writer) {
		s.now = now
	}
}

// WithHostname overrides the hostname source used in default filenames.
func WithHostname(fn func() (string, error)) Option {
	return func(s *Writer) {
		s.host = fn
	}
}

// New creates a Writer bound to the real stdout, clock, and hostname
// unless overridden.
func New(opts ...Option) *Writer {
	s := &Writer{
		stdout: os.Stdout,
		now:    time.Now,
		host:   os.Hostname,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Write sends data to the resolved destination and returns the path it
// wrote to, empty for stdout. ext is the extension for default
// filenames, without the leading dot. All failures carry
// ErrCodeIOFailed.
func (s *Writer) Write(data []byte, dest, ext string) (string, error) {
	dest = strings.TrimSpace(dest)
	if dest == "" || dest == "-" {
		if _, err := s.stdout.Write(data); err != nil {
			return "", errors.Wrap(errors.ErrCodeIOFailed, "failed to write report to stdout", err)
		}
		return "", nil
	}

	path := dest
	if info, err := os.Stat(dest); err == nil && info.IsDir() {
		path = filepath.Join(dest, s.defaultFilename(ext))
	}

	if err := os.WriteFile(path, data, defaults.ReportFilePerm); err != nil {
		return "", errors.Wrap(errors.ErrCodeIOFailed,
			fmt.Sprintf("failed to write report to %s", path), err)
	}

	slog.Debug("report written", "path", path, "bytes", len(data))
	return path, nil
}

// defaultFilename builds sysdiag_<hostname>_<timestamp>.<ext>.
func (s *Writer) defaultFilename(ext string) string {
	host, err := s.host()
	if err != nil || host == "" {
		slog.Debug("hostname unavailable for report filename", "error", err)
		host = fallbackHostname
	}
	return fmt.Sprintf("sysdiag_%s_%s.%s", host, s.now().Format(defaults.FilenameTimeLayout), ext)
}
