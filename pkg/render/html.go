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
	"html"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/eraxe/sysdiag/pkg/header"
	"github.com/eraxe/sysdiag/pkg/report"
)

const htmlHead = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Linux System Diagnostic Report</title>
<style>
body { font-family: Arial, sans-serif; margin: 20px; }
h1 { color: #2c3e50; }
h2 { color: #3498db; margin-top: 30px; border-bottom: 1px solid #ddd; }
h3 { color: #2980b9; }
pre { background-color: #f5f5f5; padding: 10px; border-radius: 5px; overflow-x: auto; }
details { margin-bottom: 20px; }
summary { font-weight: bold; cursor: pointer; }
.timestamp { color: #7f8c8d; font-style: italic; }
.overview dt { font-weight: bold; float: left; clear: left; width: 8em; }
.reason { color: #c0392b; }
</style>
</head>
<body>
`

// htmlEmitter renders the report as a standalone page. Every module
// becomes a collapsible details element addressable by its module ID;
// all collected content is entity-escaped.
type htmlEmitter struct {
	buf        strings.Builder
	openModule bool
	title      cases.Caser
}

func newHTMLEmitter() *htmlEmitter {
	return &htmlEmitter{title: cases.Title(language.English)}
}

func (e *htmlEmitter) Begin(t *report.Tree) error {
	e.buf.WriteString(htmlHead)
	e.buf.WriteString("<h1>Linux System Diagnostic Report</h1>\n")
	if ts := bannerTime(t.Header); ts != "" {
		fmt.Fprintf(&e.buf, "<div class=\"timestamp\">Generated: %s</div>\n", html.EscapeString(ts))
	}

	var meta strings.Builder
	for _, key := range header.OrderedKeys() {
		if v := t.Header.Get(key); v != "" {
			fmt.Fprintf(&meta, "<dt>%s</dt><dd>%s</dd>\n",
				html.EscapeString(metaLabels[key]), html.EscapeString(v))
		}
	}
	if meta.Len() > 0 {
		e.buf.WriteString("<dl class=\"overview\">\n")
		e.buf.WriteString(meta.String())
		e.buf.WriteString("</dl>\n")
	}
	return nil
}

func (e *htmlEmitter) EmitCategory(c report.Category) error {
	e.closeModule()
	fmt.Fprintf(&e.buf, "<h2>%s</h2>\n", html.EscapeString(strings.ToUpper(c.Name)))
	return nil
}

func (e *htmlEmitter) EmitModule(m report.ModuleResult) error {
	e.closeModule()
	fmt.Fprintf(&e.buf, "<details id=%q open>\n<summary>%s (%s)</summary>\n",
		m.ID, html.EscapeString(m.Title), html.EscapeString(m.Status.String()))
	if m.Reason != "" {
		fmt.Fprintf(&e.buf, "<p class=\"reason\">%s</p>\n", html.EscapeString(m.Reason))
	}
	if m.Status == report.StatusCompleted && len(m.Subsections) == 0 {
		e.buf.WriteString("<p>No results collected for this module.</p>\n")
	}
	e.openModule = true
	return nil
}

func (e *htmlEmitter) EmitSubsection(s report.Subsection) error {
	title := e.title.String(strings.ReplaceAll(s.Key, "_", " "))
	fmt.Fprintf(&e.buf, "<h3>%s</h3>\n<pre>%s</pre>\n",
		html.EscapeString(title), html.EscapeString(s.Content))
	return nil
}

func (e *htmlEmitter) End() ([]byte, error) {
	e.closeModule()
	e.buf.WriteString("</body>\n</html>\n")
	return []byte(e.buf.String()), nil
}

func (e *htmlEmitter) closeModule() {
	if e.openModule {
		e.buf.WriteString("</details>\n")
		e.openModule = false
	}
}
