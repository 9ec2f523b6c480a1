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

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func treeWithStatuses(statuses ...Status) *Tree {
	cat := Category{Name: "system"}
	for i, st := range statuses {
		m := ModuleResult{
			ID:     string(rune('a' + i)),
			Title:  "Module",
			Status: st,
		}
		if st != StatusCompleted {
			m.Reason = "because"
		}
		cat.Modules = append(cat.Modules, m)
	}
	return &Tree{Categories: []Category{cat}}
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name     string
		statuses []Status
		expected Summary
	}{
		{
			name:     "all completed",
			statuses: []Status{StatusCompleted, StatusCompleted},
			expected: Summary{Completed: 2, Total: 2, Outcome: OutcomeSuccess},
		},
		{
			name:     "partial success",
			statuses: []Status{StatusCompleted, StatusError, StatusSkipped},
			expected: Summary{Completed: 1, Errored: 1, Skipped: 1, Total: 3, Outcome: OutcomeSuccess},
		},
		{
			name:     "all failed",
			statuses: []Status{StatusError, StatusError},
			expected: Summary{Errored: 2, Total: 2, Outcome: OutcomeFailed},
		},
		{
			name:     "all skipped",
			statuses: []Status{StatusSkipped, StatusSkipped},
			expected: Summary{Skipped: 2, Total: 2, Outcome: OutcomeFailed},
		},
		{
			name:     "errors and skips mixed",
			statuses: []Status{StatusError, StatusSkipped},
			expected: Summary{Errored: 1, Skipped: 1, Total: 2, Outcome: OutcomeFailed},
		},
		{
			name:     "empty",
			statuses: nil,
			expected: Summary{Outcome: OutcomeEmpty},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Summarize(treeWithStatuses(tt.statuses...))
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, Summary{Outcome: OutcomeSuccess}.ExitCode())
	assert.Equal(t, 1, Summary{Outcome: OutcomeFailed}.ExitCode())
	assert.Equal(t, 0, Summary{Outcome: OutcomeEmpty}.ExitCode())
}
