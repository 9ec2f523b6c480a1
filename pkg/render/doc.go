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

// Package render turns a completed result tree into report bytes.
//
// The package supports four output formats:
//   - txt:  human-readable console report with banner, category boxes,
//     and per-module sections
//   - html: standalone page with one collapsible section per module
//   - json: machine-readable document, two-space indent
//   - yaml: the same document shape as JSON
//
// All formats are produced by a single depth-first walk over the tree
// (category, then module, then subsection) driving an Emitter; the
// backends differ only in markup, never in content or order.
//
// Usage:
//
//	data, err := render.Render(tree, render.Options{Format: render.FormatText})
//	if err != nil {
//		log.Fatal(err)
//	}
package render
