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

package sink

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eraxe/sysdiag/pkg/errors"
)

func fixedWriter(stdout *bytes.Buffer) *Writer {
	return New(
		WithStdout(stdout),
		WithClock(func() time.Time {
			return time.Date(2026, 8, 28, 10, 30, 0, 0, time.UTC)
		}),
		WithHostname(func() (string, error) { return "testhost", nil }),
	)
}

func TestWriteStdout(t *testing.T) {
	for _, dest := range []string{"", "-", "  "} {
		var out bytes.Buffer
		path, err := fixedWriter(&out).Write([]byte("report body"), dest, "txt")
		require.NoError(t, err)
		assert.Empty(t, path)
		assert.Equal(t, "report body", out.String())
	}
}

func TestWriteDirectoryResolvesDefaultFilename(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer

	path, err := fixedWriter(&out).Write([]byte("report body"), dir, "json")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "sysdiag_testhost_20260828_103000.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "report body", string(data))
	assert.Empty(t, out.String())
}

func TestWriteLiteralPath(t *testing.T) {
	target := filepath.Join(t.TempDir(), "out.html")
	var out bytes.Buffer

	path, err := fixedWriter(&out).Write([]byte("<html>"), target, "html")
	require.NoError(t, err)
	assert.Equal(t, target, path)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "<html>", string(data))
}

func TestWriteMissingParentFails(t *testing.T) {
	target := filepath.Join(t.TempDir(), "no", "such", "dir", "out.txt")
	var out bytes.Buffer

	_, err := fixedWriter(&out).Write([]byte("x"), target, "txt")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeIOFailed))
}

func TestWriteHostnameFallback(t *testing.T) {
	dir := t.TempDir()
	s := New(
		WithClock(func() time.Time {
			return time.Date(2026, 8, 28, 10, 30, 0, 0, time.UTC)
		}),
		WithHostname(func() (string, error) { return "", os.ErrPermission }),
	)

	path, err := s.Write([]byte("x"), dir, "yaml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "sysdiag_unknown-host_20260828_103000.yaml"), path)
}
