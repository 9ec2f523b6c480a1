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

// Package selection resolves external module/subsection choices into a
// validated, immutable selection state.
//
// Two producers feed it: the interactive checklist (explicit per-module
// and per-subsection toggles) and the non-interactive -y flag (everything
// enabled via All). Validation happens here, at resolution time — an
// unknown module ID or an undeclared subsection key is an
// INVALID_SELECTION error immediately, never a silent no-op at run time.
package selection
