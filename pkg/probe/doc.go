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

// Package probe defines the contract between the diagnostic modules and
// the runner, and assembles the default catalog.
//
// Each probe reports a static Descriptor (identity, category, declared
// subsections, privilege requirement) and gathers its content in Execute.
// The catalog's order is the canonical report order; the runner restores
// it regardless of execution scheduling.
//
// Probe bodies live in the category subpackages (storage, boot, system,
// network, security) and use the run and textfile helpers so that absent
// tools or unreadable files degrade to explanatory text instead of
// failing the module.
package probe
