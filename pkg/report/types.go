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
	"fmt"

	"github.com/eraxe/sysdiag/pkg/errors"
	"github.com/eraxe/sysdiag/pkg/header"
)

// Status is a module's lifecycle state. Only the three terminal states are
// ever recorded in a tree; Pending and Running exist for the runner's state
// machine: Pending → Running → {Completed | Error | Skipped}, with Skipped
// also reachable directly from Pending (privilege short-circuit, interrupt).
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusError     Status = "error"
	StatusSkipped   Status = "skipped"
)

// IsTerminal reports whether the status is one of the three final states.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusError, StatusSkipped:
		return true
	}
	return false
}

// String returns the status as its JSON wire form.
func (s Status) String() string {
	return string(s)
}

// Fixed reason strings recorded by the runner. Renderers and tests rely on
// these exact values.
const (
	ReasonPrivileges  = "requires elevated privileges"
	ReasonTimedOut    = "timed out"
	ReasonInterrupted = "interrupted"
)

// Subsection is one named unit of collected content within a module.
type Subsection struct {
	Key     string `json:"key" yaml:"key"`
	Content string `json:"content" yaml:"content"`
}

// ModuleResult is the terminal outcome of one module's execution.
// Reason is present iff the status is not completed; Subsections carry
// content only for subsections that were enabled and produced output.
type ModuleResult struct {
	ID          string       `json:"id" yaml:"id"`
	Title       string       `json:"title" yaml:"title"`
	Status      Status       `json:"status" yaml:"status"`
	Reason      string       `json:"reason,omitempty" yaml:"reason,omitempty"`
	Subsections []Subsection `json:"subsections,omitempty" yaml:"subsections,omitempty"`
}

// Category groups module results under one report section.
type Category struct {
	Name    string         `json:"name" yaml:"name"`
	Modules []ModuleResult `json:"modules" yaml:"modules"`
}

// Tree is the hierarchical in-memory representation of one completed run,
// independent of render format. Categories, modules within them, and
// subsections within modules keep registry-declaration order — array
// types at every ordered level, never bare maps. Built once by the
// runner, never mutated after, consumed once by a renderer.
type Tree struct {
	Header     *header.Header `json:"header,omitempty" yaml:"header,omitempty"`
	Categories []Category     `json:"categories" yaml:"categories"`
}

// Modules returns every module result flattened in report order.
func (t *Tree) Modules() []ModuleResult {
	var out []ModuleResult
	for _, c := range t.Categories {
		out = append(out, c.Modules...)
	}
	return out
}

// ModuleCount returns the number of module results in the tree.
func (t *Tree) ModuleCount() int {
	n := 0
	for _, c := range t.Categories {
		n += len(c.Modules)
	}
	return n
}

// Validate checks tree integrity: non-empty category names, globally
// unique module IDs, terminal statuses, a reason exactly when the status
// is not completed, and subsection content only on completed modules.
func (t *Tree) Validate() error {
	seen := make(map[string]struct{})
	for _, c := range t.Categories {
		if c.Name == "" {
			return errors.New(errors.ErrCodeInternal, "result tree has a category with empty name")
		}
		for _, m := range c.Modules {
			if m.ID == "" {
				return errors.New(errors.ErrCodeInternal,
					fmt.Sprintf("category %q has a module with empty id", c.Name))
			}
			if _, dup := seen[m.ID]; dup {
				return errors.New(errors.ErrCodeInternal,
					fmt.Sprintf("module %q appears twice in the result tree", m.ID))
			}
			seen[m.ID] = struct{}{}

			if !m.Status.IsTerminal() {
				return errors.New(errors.ErrCodeInternal,
					fmt.Sprintf("module %q has non-terminal status %q", m.ID, m.Status))
			}
			if m.Status == StatusCompleted && m.Reason != "" {
				return errors.New(errors.ErrCodeInternal,
					fmt.Sprintf("completed module %q must not carry a reason", m.ID))
			}
			if m.Status != StatusCompleted && m.Reason == "" {
				return errors.New(errors.ErrCodeInternal,
					fmt.Sprintf("module %q with status %q must carry a reason", m.ID, m.Status))
			}
			if m.Status != StatusCompleted && len(m.Subsections) > 0 {
				return errors.New(errors.ErrCodeInternal,
					fmt.Sprintf("module %q with status %q must not carry content", m.ID, m.Status))
			}

			subSeen := make(map[string]struct{}, len(m.Subsections))
			for _, s := range m.Subsections {
				if s.Key == "" {
					return errors.New(errors.ErrCodeInternal,
						fmt.Sprintf("module %q has a subsection with empty key", m.ID))
				}
				if _, dup := subSeen[s.Key]; dup {
					return errors.New(errors.ErrCodeInternal,
						fmt.Sprintf("module %q has duplicate subsection %q", m.ID, s.Key))
				}
				subSeen[s.Key] = struct{}{}
			}
		}
	}
	return nil
}
