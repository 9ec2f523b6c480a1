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
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/eraxe/sysdiag/pkg/header"
	"github.com/eraxe/sysdiag/pkg/report"
)

// reportWidth is the column width of banner and rule lines.
const reportWidth = 80

// moduleIcons decorates module headings in the text report. Dropped
// entirely in ASCII mode.
var moduleIcons = map[string]string{
	"partition_disk":           "💾",
	"filesystem":               "📁",
	"bootloader":               "🔄",
	"initramfs":                "🧩",
	"kernel_logs":              "📜",
	"hardware_info":            "🖥️",
	"custom_scripts":           "📝",
	"recovery_diagnostics":     "🚑",
	"boot_parameters":          "⚙️",
	"grub_boot_diagnostics":    "🛠️",
	"network_config":           "🌐",
	"security_info":            "🔒",
	"user_account":             "👤",
	"package_management":       "📦",
	"storage_io_performance":   "⚡",
	"system_service_status":    "🚦",
	"virtualization_container": "📦",
	"log_analysis":             "📊",
}

// metaLabels maps header metadata keys to their display labels in the
// system overview prelude.
var metaLabels = map[string]string{
	header.MetaRunID:    "Run ID",
	header.MetaHostname: "Hostname",
	header.MetaCreated:  "Created",
	header.MetaVersion:  "Version",
	header.MetaOS:       "OS",
	header.MetaKernel:   "Kernel",
	header.MetaUptime:   "Uptime",
	header.MetaCPUCount: "CPU Count",
	header.MetaCPUModel: "CPU Model",
	header.MetaMemory:   "Memory",
}

// glyphs holds the decoration characters for one text rendering mode.
type glyphs struct {
	banner     string // banner rule (=)
	rule       string // module rule (-)
	boxTopL    string
	boxTopR    string
	boxBotL    string
	boxBotR    string
	boxH       string
	boxV       string
	titleDecor string // wraps the banner title line
	pin        string // subsection header marker
}

var unicodeGlyphs = glyphs{
	banner:     "═",
	rule:       "─",
	boxTopL:    "┌",
	boxTopR:    "┐",
	boxBotL:    "└",
	boxBotR:    "┘",
	boxH:       "─",
	boxV:       "│",
	titleDecor: "🔍",
	pin:        "📌 ",
}

var asciiGlyphs = glyphs{
	banner:  "=",
	rule:    "-",
	boxTopL: "+",
	boxTopR: "+",
	boxBotL: "+",
	boxBotR: "+",
	boxH:    "-",
	boxV:    "|",
}

// textEmitter renders the console report.
type textEmitter struct {
	buf   strings.Builder
	g     glyphs
	ascii bool
	title cases.Caser
}

func newTextEmitter(asciiOnly bool) *textEmitter {
	g := unicodeGlyphs
	if asciiOnly {
		g = asciiGlyphs
	}
	return &textEmitter{
		g:     g,
		ascii: asciiOnly,
		title: cases.Title(language.English),
	}
}

func (e *textEmitter) line(s string) {
	e.buf.WriteString(s)
	e.buf.WriteByte('\n')
}

func (e *textEmitter) rule(glyph string) {
	e.line(strings.Repeat(glyph, reportWidth))
}

func (e *textEmitter) Begin(t *report.Tree) error {
	title := "LINUX SYSTEM DIAGNOSTIC REPORT"
	if e.g.titleDecor != "" {
		title = fmt.Sprintf("%s %s %s", e.g.titleDecor, title, e.g.titleDecor)
	}

	e.rule(e.g.banner)
	e.line(title)
	if ts := bannerTime(t.Header); ts != "" {
		e.line("Generated: " + ts)
	}
	if host := t.Header.Get(header.MetaHostname); host != "" {
		e.line("Hostname: " + host)
	}
	e.rule(e.g.banner)
	e.line("")

	e.overview(t.Header)
	return nil
}

// overview writes the system summary prelude from header metadata,
// skipping fields already shown in the banner.
func (e *textEmitter) overview(h *header.Header) {
	var lines []string
	for _, key := range header.OrderedKeys() {
		if key == header.MetaHostname || key == header.MetaCreated {
			continue
		}
		if v := h.Get(key); v != "" {
			lines = append(lines, fmt.Sprintf("%s: %s", metaLabels[key], v))
		}
	}
	if len(lines) == 0 {
		return
	}

	e.line("SYSTEM OVERVIEW")
	e.rule(e.g.rule)
	for _, l := range lines {
		e.line(l)
	}
	e.line("")
}

func (e *textEmitter) EmitCategory(c report.Category) error {
	name := strings.ToUpper(c.Name)
	inner := reportWidth - 2
	e.line(e.g.boxTopL + strings.Repeat(e.g.boxH, inner) + e.g.boxTopR)
	e.line(e.g.boxV + pad(" "+name, inner) + e.g.boxV)
	e.line(e.g.boxBotL + strings.Repeat(e.g.boxH, inner) + e.g.boxBotR)
	e.line("")
	return nil
}

func (e *textEmitter) EmitModule(m report.ModuleResult) error {
	heading := strings.ToUpper(m.Title)
	if !e.ascii {
		if icon, ok := moduleIcons[m.ID]; ok {
			heading = icon + " " + heading
		}
	}
	e.line(heading)
	e.rule(e.g.rule)

	switch m.Status {
	case report.StatusError:
		e.line(e.decorated("❌ ", "ERROR: "+m.Reason))
		e.line("")
	case report.StatusSkipped:
		e.line(e.decorated("⏭ ", "SKIPPED: "+m.Reason))
		e.line("")
	default:
		if len(m.Subsections) == 0 {
			e.line("No results collected for this module.")
			e.line("")
		}
	}
	return nil
}

func (e *textEmitter) EmitSubsection(s report.Subsection) error {
	e.line(fmt.Sprintf("### %s%s ###", e.g.pin, e.title.String(strings.ReplaceAll(s.Key, "_", " "))))
	e.line(s.Content)
	e.line("")
	return nil
}

func (e *textEmitter) End() ([]byte, error) {
	return []byte(e.buf.String()), nil
}

// decorated prefixes s with an icon unless rendering ASCII-only.
func (e *textEmitter) decorated(icon, s string) string {
	if e.ascii {
		return s
	}
	return icon + s
}

// pad right-pads s with spaces to width columns.
func pad(s string, width int) string {
	if n := width - utf8.RuneCountInString(s); n > 0 {
		return s + strings.Repeat(" ", n)
	}
	return s
}
