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

package render

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/eraxe/sysdiag/pkg/errors"
	"github.com/eraxe/sysdiag/pkg/header"
	"github.com/eraxe/sysdiag/pkg/report"
)

func sampleTree() *report.Tree {
	h := header.New(
		header.WithKind(header.KindDiagnosticReport),
		header.WithAPIVersion(header.APIVersionV1),
		header.WithMetadata(header.MetaRunID, "run-1"),
		header.WithMetadata(header.MetaHostname, "testhost"),
		header.WithMetadata(header.MetaCreated, "2026-08-28T10:30:00Z"),
		header.WithMetadata(header.MetaOS, "Debian GNU/Linux 13 (trixie)"),
		header.WithMetadata(header.MetaKernel, "6.12.0-test"),
	)
	return &report.Tree{
		Header: h,
		Categories: []report.Category{
			{
				Name: "storage",
				Modules: []report.ModuleResult{
					{
						ID:     "partition_disk",
						Title:  "Partition & Disk Layout",
						Status: report.StatusCompleted,
						Subsections: []report.Subsection{
							{Key: "disk_usage", Content: "Filesystem Size Used\n/dev/sda1 100G 42G"},
							{Key: "lsblk", Content: "NAME MAJ:MIN SIZE"},
						},
					},
					{
						ID:     "filesystem",
						Title:  "Filesystem Diagnostics",
						Status: report.StatusError,
						Reason: "mount table unreadable",
					},
				},
			},
			{
				Name: "security",
				Modules: []report.ModuleResult{
					{
						ID:     "security_info",
						Title:  "Security Configuration",
						Status: report.StatusSkipped,
						Reason: report.ReasonPrivileges,
					},
				},
			},
		},
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" JSON ")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("pdf")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidInput))
}

func TestSupportedFormats(t *testing.T) {
	assert.ElementsMatch(t, []string{"txt", "json", "html", "yaml"}, SupportedFormats())
	for _, s := range SupportedFormats() {
		assert.False(t, Format(s).IsUnknown())
	}
}

func TestRenderTextLayout(t *testing.T) {
	out, err := Render(sampleTree(), Options{Format: FormatText})
	require.NoError(t, err)
	text := string(out)

	assert.Contains(t, text, "LINUX SYSTEM DIAGNOSTIC REPORT")
	assert.Contains(t, text, "Generated: 2026-08-28 10:30:00")
	assert.Contains(t, text, "Hostname: testhost")
	assert.Contains(t, text, "SYSTEM OVERVIEW")
	assert.Contains(t, text, "OS: Debian GNU/Linux 13 (trixie)")
	assert.Contains(t, text, "STORAGE")
	assert.Contains(t, text, "PARTITION & DISK LAYOUT")
	assert.Contains(t, text, "### 📌 Disk Usage ###")
	assert.Contains(t, text, "ERROR: mount table unreadable")
	assert.Contains(t, text, "SKIPPED: "+report.ReasonPrivileges)

	// Categories and subsections keep declaration order.
	assert.Less(t, strings.Index(text, "STORAGE"), strings.Index(text, "SECURITY"))
	assert.Less(t, strings.Index(text, "### 📌 Disk Usage ###"), strings.Index(text, "### 📌 Lsblk ###"))
}

func TestRenderTextASCIIOnly(t *testing.T) {
	out, err := Render(sampleTree(), Options{Format: FormatText, ASCIIOnly: true})
	require.NoError(t, err)
	text := string(out)

	for _, r := range text {
		assert.Less(t, r, rune(128), "ascii output must not contain %q", r)
	}
	assert.Contains(t, text, strings.Repeat("=", 80))
	assert.Contains(t, text, "### Disk Usage ###")
	assert.Contains(t, text, "+"+strings.Repeat("-", 78)+"+")
}

func TestRenderTextEmptyCompletedModule(t *testing.T) {
	tree := &report.Tree{Categories: []report.Category{{
		Name: "system",
		Modules: []report.ModuleResult{
			{ID: "kernel_logs", Title: "Kernel Logs", Status: report.StatusCompleted},
		},
	}}}

	out, err := Render(tree, Options{Format: FormatText})
	require.NoError(t, err)
	assert.Contains(t, string(out), "No results collected for this module.")
}

func TestRenderHTML(t *testing.T) {
	tree := sampleTree()
	tree.Categories[0].Modules[0].Subsections[0].Content = "size <1G> & growing"

	out, err := Render(tree, Options{Format: FormatHTML})
	require.NoError(t, err)
	page := string(out)

	assert.Contains(t, page, `<details id="partition_disk" open>`)
	assert.Contains(t, page, `<details id="security_info" open>`)
	assert.Contains(t, page, "size &lt;1G&gt; &amp; growing")
	assert.NotContains(t, page, "<1G>")
	assert.Contains(t, page, "<h2>STORAGE</h2>")
	assert.Contains(t, page, "<h3>Disk Usage</h3>")
	assert.Contains(t, page, `<p class="reason">mount table unreadable</p>`)
	assert.Equal(t, strings.Count(page, "<details"), strings.Count(page, "</details>"))
}

func TestRenderJSONRoundTrip(t *testing.T) {
	tree := sampleTree()
	out, err := Render(tree, Options{Format: FormatJSON})
	require.NoError(t, err)

	var got report.Tree
	require.NoError(t, json.Unmarshal(out, &got))
	assert.Equal(t, tree.Categories, got.Categories)
	assert.Equal(t, "run-1", got.Header.Get(header.MetaRunID))

	// Reason appears exactly on non-completed modules.
	assert.NotContains(t, string(out), `"reason": ""`)
	assert.Contains(t, string(out), `"reason": "mount table unreadable"`)
}

func TestRenderYAMLMatchesJSONShape(t *testing.T) {
	tree := sampleTree()

	jsonOut, err := Render(tree, Options{Format: FormatJSON})
	require.NoError(t, err)
	yamlOut, err := Render(tree, Options{Format: FormatYAML})
	require.NoError(t, err)

	var fromJSON, fromYAML report.Tree
	require.NoError(t, json.Unmarshal(jsonOut, &fromJSON))
	require.NoError(t, yaml.Unmarshal(yamlOut, &fromYAML))
	assert.Equal(t, fromJSON.Categories, fromYAML.Categories)
}

func TestRenderContentParity(t *testing.T) {
	tree := sampleTree()
	for _, f := range []Format{FormatText, FormatJSON, FormatYAML} {
		out, err := Render(tree, Options{Format: f})
		require.NoError(t, err)
		for _, m := range tree.Modules() {
			for _, s := range m.Subsections {
				assert.Contains(t, string(out), s.Content,
					"format %s must carry subsection %s/%s", f, m.ID, s.Key)
			}
		}
	}
}

func TestRenderRejectsInvalidUTF8(t *testing.T) {
	tree := sampleTree()
	tree.Categories[0].Modules[0].Subsections[0].Content = "ok\xff\xfebroken"

	for _, f := range []Format{FormatText, FormatJSON, FormatHTML, FormatYAML} {
		_, err := Render(tree, Options{Format: f})
		require.Error(t, err, "format %s", f)
		assert.True(t, errors.HasCode(err, errors.ErrCodeRenderFailed))
	}
}

func TestRenderRejectsInvalidUTF8OutsideSubsections(t *testing.T) {
	// Hostname comes from the live system and category names are echoed
	// by every backend; both get the same encoding gate as content.
	badHost := sampleTree()
	badHost.Header.Metadata[header.MetaHostname] = "host\xffname"
	_, err := Render(badHost, Options{Format: FormatText})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeRenderFailed))

	badCategory := sampleTree()
	badCategory.Categories[0].Name = "stor\xfeage"
	_, err = Render(badCategory, Options{Format: FormatJSON})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeRenderFailed))
}

func TestRenderRejectsNilTreeAndUnknownFormat(t *testing.T) {
	_, err := Render(nil, Options{Format: FormatText})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeRenderFailed))

	_, err = Render(sampleTree(), Options{Format: Format("pdf")})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidInput))
}
