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

package report

// Outcome is the aggregate result of a run.
type Outcome string

const (
	// OutcomeSuccess indicates at least one module completed; a partial
	// report still counts.
	OutcomeSuccess Outcome = "success"

	// OutcomeFailed indicates modules were selected but every one ended
	// Error or Skipped.
	OutcomeFailed Outcome = "failed"

	// OutcomeEmpty indicates nothing was selected and no report was produced.
	OutcomeEmpty Outcome = "empty"
)

// Summary contains aggregate statistics about one run.
type Summary struct {
	Completed int     `json:"completed" yaml:"completed"`
	Errored   int     `json:"errored" yaml:"errored"`
	Skipped   int     `json:"skipped" yaml:"skipped"`
	Total     int     `json:"total" yaml:"total"`
	Outcome   Outcome `json:"outcome" yaml:"outcome"`
}

// Summarize counts terminal statuses across the tree and derives the
// overall outcome.
func Summarize(t *Tree) Summary {
	var s Summary
	for _, m := range t.Modules() {
		s.Total++
		switch m.Status {
		case StatusCompleted:
			s.Completed++
		case StatusError:
			s.Errored++
		case StatusSkipped:
			s.Skipped++
		}
	}

	switch {
	case s.Total == 0:
		s.Outcome = OutcomeEmpty
	case s.Completed > 0:
		s.Outcome = OutcomeSuccess
	default:
		s.Outcome = OutcomeFailed
	}
	return s
}

// ExitCode maps the outcome to the process exit code: 0 when at least one
// module completed (or nothing was selected), 1 when every selected module
// ended Error or Skipped.
func (s Summary) ExitCode() int {
	if s.Outcome == OutcomeFailed {
		return 1
	}
	return 0
}
