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
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRead(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, "one\ntwo\nthree\n")
	assert.Equal(t, "one\ntwo\nthree", Read(path))
}

func TestReadMissingFile(t *testing.T) {
	t.Parallel()

	out := Read("/nonexistent/sysdiag-test-file")
	assert.Equal(t, "File not found: /nonexistent/sysdiag-test-file", out)
}

func TestReadKeepLast(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, "a\nb\nc\nd\n")
	out := Read(path, KeepLast(2))
	assert.Equal(t, "[...showing only last 2 lines...]\nc\nd", out)
}

func TestReadFilter(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, "keep 1\ndrop\nkeep 2\n")
	out := Read(path, Filter(func(line string) bool {
		return strings.HasPrefix(line, "keep")
	}))
	assert.Equal(t, "keep 1\nkeep 2", out)
}

func TestTrimLastLines(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		n       int
		want    string
	}{
		{
			name:    "fewer lines than limit",
			content: "a\nb",
			n:       5,
			want:    "a\nb",
		},
		{
			name:    "zero keeps everything",
			content: "a\nb\nc",
			n:       0,
			want:    "a\nb\nc",
		},
		{
			name:    "trims and marks",
			content: "a\nb\nc",
			n:       1,
			want:    "[...showing only last 1 lines...]\nc",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, TrimLastLines(tc.content, tc.n))
		})
	}
}

func TestParserMap(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, `# os-release
NAME="Ubuntu"
PRETTY_NAME="Ubuntu 24.04.1 LTS"
VERSION_ID="24.04"
`)

	p := NewParser(WithVTrimChars(`"`))
	m, err := p.Map(path)
	require.NoError(t, err)
	assert.Equal(t, "Ubuntu 24.04.1 LTS", m["PRETTY_NAME"])
	assert.Equal(t, "24.04", m["VERSION_ID"])
	assert.NotContains(t, m, "# os-release")
}

func TestParserLinesSkipsCommentsAndBlanks(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, "# comment\n\nvalue one\n  value two  \n")
	p := NewParser()
	lines, err := p.Lines(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"value one", "value two"}, lines)
}

func TestParserRejectsOversizedFile(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, strings.Repeat("x", 64)+"\n")
	p := NewParser(WithMaxSize(16))
	_, err := p.Lines(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maximum size")
}

func TestParserMissingFile(t *testing.T) {
	t.Parallel()

	p := NewParser()
	_, err := p.Lines("/nonexistent/sysdiag-test-file")
	require.Error(t, err)
}
