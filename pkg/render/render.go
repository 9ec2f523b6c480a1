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
	"time"
	"unicode/utf8"

	"github.com/eraxe/sysdiag/pkg/defaults"
	"github.com/eraxe/sysdiag/pkg/errors"
	"github.com/eraxe/sysdiag/pkg/header"
	"github.com/eraxe/sysdiag/pkg/report"
)

// Format represents the report output format type.
type Format string

const (
	// FormatText outputs the console-style plain-text report.
	FormatText Format = "txt"
	// FormatJSON outputs the report as an indented JSON document.
	FormatJSON Format = "json"
	// FormatHTML outputs the report as a standalone HTML page.
	FormatHTML Format = "html"
	// FormatYAML outputs the report as a YAML document.
	FormatYAML Format = "yaml"
)

// IsUnknown reports whether the format is outside the supported set.
func (f Format) IsUnknown() bool {
	switch f {
	case FormatText, FormatJSON, FormatHTML, FormatYAML:
		return false
	default:
		return true
	}
}

// Extension returns the file extension used for default report
// filenames, without the leading dot.
func (f Format) Extension() string {
	return string(f)
}

// SupportedFormats returns a list of all supported output formats.
func SupportedFormats() []string {
	return []string{
		string(FormatText),
		string(FormatJSON),
		string(FormatHTML),
		string(FormatYAML),
	}
}

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f.IsUnknown() {
		return "", errors.New(errors.ErrCodeInvalidInput,
			fmt.Sprintf("unsupported format %q (supported: %s)", s, strings.Join(SupportedFormats(), ", ")))
	}
	return f, nil
}

// Options configures one render pass. The zero value renders text with
// full Unicode decoration.
type Options struct {
	// Format selects the output backend.
	Format Format

	// ASCIIOnly replaces Unicode box-drawing with -, +, | and = and
	// drops module icons. Only the text backend consults it.
	ASCIIOnly bool
}

// Emitter receives the tree in depth-first order and produces one
// output format. Begin is called once before the walk, End once after;
// EmitModule applies to the most recently emitted category, and
// EmitSubsection to the most recently emitted module.
type Emitter interface {
	Begin(t *report.Tree) error
	EmitCategory(c report.Category) error
	EmitModule(m report.ModuleResult) error
	EmitSubsection(s report.Subsection) error
	End() ([]byte, error)
}

// Render produces the report bytes for the given tree and options.
// All failures carry ErrCodeRenderFailed except an unknown format,
// which is an input error.
func Render(tree *report.Tree, opts Options) ([]byte, error) {
	if tree == nil {
		return nil, errors.New(errors.ErrCodeRenderFailed, "no result tree to render")
	}
	if opts.Format == "" {
		opts.Format = FormatText
	}
	if opts.Format.IsUnknown() {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			fmt.Sprintf("unsupported format: %s", opts.Format))
	}
	if err := checkEncoding(tree); err != nil {
		return nil, err
	}

	var em Emitter
	switch opts.Format {
	case FormatText:
		em = newTextEmitter(opts.ASCIIOnly)
	case FormatHTML:
		em = newHTMLEmitter()
	case FormatJSON:
		em = newDocumentEmitter(marshalJSON)
	case FormatYAML:
		em = newDocumentEmitter(marshalYAML)
	}
	return walk(tree, em)
}

// walk drives the emitter over the tree in report order.
func walk(t *report.Tree, em Emitter) ([]byte, error) {
	if err := em.Begin(t); err != nil {
		return nil, err
	}
	for _, c := range t.Categories {
		if err := em.EmitCategory(c); err != nil {
			return nil, err
		}
		for _, m := range c.Modules {
			if err := em.EmitModule(m); err != nil {
				return nil, err
			}
			for _, s := range m.Subsections {
				if err := em.EmitSubsection(s); err != nil {
					return nil, err
				}
			}
		}
	}
	return em.End()
}

// checkEncoding rejects trees carrying invalid UTF-8 anywhere a backend
// would echo it. Probes already sanitize command output, so a hit here
// means corrupted content that no format can represent losslessly.
// Header metadata is read from the live system (hostname, OS release)
// and gets the same gate.
func checkEncoding(t *report.Tree) error {
	if t.Header != nil {
		for key, value := range t.Header.Metadata {
			if !utf8.ValidString(key) || !utf8.ValidString(value) {
				return errors.New(errors.ErrCodeRenderFailed,
					fmt.Sprintf("header metadata %q contains invalid UTF-8", key))
			}
		}
	}
	for _, c := range t.Categories {
		if !utf8.ValidString(c.Name) {
			return errors.New(errors.ErrCodeRenderFailed,
				fmt.Sprintf("category %q contains invalid UTF-8", c.Name))
		}
		for _, m := range c.Modules {
			if !utf8.ValidString(m.Title) || !utf8.ValidString(m.Reason) {
				return encodingError(m.ID, "")
			}
			for _, s := range m.Subsections {
				if !utf8.ValidString(s.Key) || !utf8.ValidString(s.Content) {
					return encodingError(m.ID, s.Key)
				}
			}
		}
	}
	return nil
}

func encodingError(moduleID, key string) error {
	msg := fmt.Sprintf("module %s contains invalid UTF-8", moduleID)
	if key != "" {
		msg = fmt.Sprintf("module %s subsection %s contains invalid UTF-8", moduleID, key)
	}
	return errors.New(errors.ErrCodeRenderFailed, msg)
}

// bannerTime formats the run's creation timestamp for display. The
// header records RFC 3339; anything else is shown verbatim.
func bannerTime(h *header.Header) string {
	created := h.Get(header.MetaCreated)
	if ts, err := time.Parse(time.RFC3339, created); err == nil {
		return ts.Format(defaults.BannerTimeLayout)
	}
	return created
}
