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

// Package run executes the external commands diagnostic probes shell out
// to (lsblk, ip, journalctl, dmesg) with a per-command timeout and a
// spawn rate limiter shared across concurrent workers.
//
// Command failures are report content, not errors: a missing tool, a
// non-zero exit, or a timed-out command each degrade to a one-line
// explanation so the probe still completes with whatever it gathered.
package run
