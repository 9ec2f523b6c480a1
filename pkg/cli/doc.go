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

// Package cli implements the sysdiag command-line interface.
//
// # Overview
//
// sysdiag runs a set of independent diagnostic modules against the local
// Linux host and renders one static report. Without flags it opens an
// interactive checklist to pick modules and subsections; with -y it runs
// everything immediately.
//
//	sysdiag [-y] [-o PATH] [-f txt|json|html|yaml] [-c] [-a]
//	        [--workers N] [--timeout D] [--config FILE] [--log-level L]
//
// # Flags
//
//	-y, --yes        run all modules without the interactive checklist
//	-o, --output     report destination: "-" or empty for stdout, a
//	                 directory for an auto-named file, or a literal path
//	-f, --format     report format: txt, json, html, yaml (default txt)
//	-c, --check-all  pre-check every row in the interactive checklist
//	-a, --ascii      ASCII-only text output, no icons or box drawing
//	--workers        worker pool size (default: CPU count, capped)
//	--timeout        per-module execution budget (default 2m)
//	--config         config file (default: ~/.sysdiag.yaml)
//	--log-level      logging verbosity: debug, info, warn, error
//
// Configuration precedence: flags over the YAML config file over
// compiled defaults.
//
// # Exit Codes
//
//	0  at least one module completed (a partial report still counts),
//	   or nothing was selected
//	1  every selected module errored or was skipped, or the report
//	   could not be rendered or written
//	2  invalid arguments or selection
//
// Version information is embedded at build time using ldflags:
//
//	go build -ldflags="-X 'github.com/eraxe/sysdiag/pkg/cli.version=1.0.0'"
package cli
