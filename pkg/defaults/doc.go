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

// Package defaults provides centralized configuration constants for sysdiag.
//
// This package defines timeout values, concurrency limits, and output
// parameters used across the codebase. Centralizing these values ensures
// consistency and makes tuning easier.
//
// # Timeout Categories
//
// Timeouts are organized by component:
//
//   - Module timeouts: the per-module execution budget enforced by the runner
//   - Command timeouts: for individual probe commands shelled out to the host
//
// # Usage
//
// Import and use constants directly:
//
//	import "github.com/eraxe/sysdiag/pkg/defaults"
//
//	ctx, cancel := context.WithTimeout(ctx, defaults.ModuleTimeout)
//	defer cancel()
//
// # Guidelines
//
// When choosing timeout values:
//
//   - Commands: 30s default, respects parent context deadline
//   - Modules: 120s default, must exceed the worst-case command sequence
//   - Workers: 0 means one worker per available processor, capped
package defaults
