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

// Package report defines the hierarchical result tree produced by the
// runner and consumed by every renderer.
//
// # Structure
//
// A Tree is an ordered sequence of categories, each an ordered sequence of
// module results, each with ordered subsections:
//
//	Tree
//	├── Header (kind, apiVersion, run metadata)
//	└── Categories []
//	    └── Modules []
//	        ├── ID, Title, Status, Reason
//	        └── Subsections [] (Key, Content)
//
// Every ordered level is a slice, never a map, so JSON and YAML output
// preserve registry order on all runtimes.
//
// # Invariants
//
// Module IDs are unique across the tree; every recorded status is
// terminal; a reason accompanies exactly the non-completed statuses;
// content appears only on completed modules. Validate() checks all of
// these. Summarize() aggregates terminal statuses into the run outcome
// that decides the process exit code.
package report
