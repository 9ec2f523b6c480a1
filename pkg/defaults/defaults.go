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

package defaults

import (
	"runtime"
	"time"
)

// Module execution timeouts enforced by the runner.
const (
	// ModuleTimeout is the default per-module execution budget. A module
	// exceeding it is recorded as Error with reason "timed out" and its
	// execution presumed abandoned.
	ModuleTimeout = 120 * time.Second

	// CommandTimeout is the default budget for a single probe command.
	// Probes run several commands per module, so ModuleTimeout must stay
	// comfortably above CommandTimeout.
	CommandTimeout = 30 * time.Second
)

// Command spawn rate limiting shared by all concurrent probes.
const (
	// SpawnRatePerSecond caps how many external commands the probes may
	// start per second across all workers.
	SpawnRatePerSecond = 20

	// SpawnBurst is the burst allowance for the spawn rate limiter.
	SpawnBurst = 40
)

// Worker pool sizing.
const (
	// MaxWorkers caps the worker pool regardless of available processors.
	MaxWorkers = 8
)

// WorkerCount resolves the runner pool size: requested if positive,
// otherwise one worker per available processor, capped at MaxWorkers.
func WorkerCount(requested int) int {
	if requested > 0 {
		return requested
	}
	n := runtime.NumCPU()
	if n < 1 {
		n = 1
	}
	if n > MaxWorkers {
		n = MaxWorkers
	}
	return n
}

// Output parameters.
const (
	// ReportFilePerm is the mode for report files written by the sink.
	ReportFilePerm = 0o644

	// FilenameTimeLayout formats the timestamp embedded in default report
	// filenames (sysdiag_<host>_<timestamp>.<ext>).
	FilenameTimeLayout = "20060102_150405"

	// BannerTimeLayout formats the human-readable generation timestamp in
	// report banners.
	BannerTimeLayout = "2006-01-02 15:04:05"
)

// TrimNotice is the marker inserted when probe output is trimmed to its
// last N lines.
const TrimNotice = "[...showing only last %d lines...]"
