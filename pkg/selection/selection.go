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

package selection

import (
	"fmt"

	"github.com/eraxe/sysdiag/pkg/errors"
	"github.com/eraxe/sysdiag/pkg/registry"
)

// Picks is the raw, unvalidated selection produced by an external
// collaborator: the interactive checklist or the non-interactive flags.
// Module IDs map to enabled/disabled; Subsections maps module ID to
// per-key toggles. Absent subsection entries default to all declared keys.
type Picks struct {
	Modules     map[string]bool
	Subsections map[string]map[string]bool
}

// State is a validated selection for one invocation: the enabled modules
// in registry order, each with its enabled subsection subset in
// declaration order. Built once per invocation, immutable after.
type State struct {
	modules []string
	subs    map[string][]string
}

// Modules returns the enabled module IDs in registry order.
func (s *State) Modules() []string {
	return append([]string(nil), s.modules...)
}

// Len returns the number of enabled modules.
func (s *State) Len() int {
	return len(s.modules)
}

// Enabled reports whether the module is part of the selection.
func (s *State) Enabled(id string) bool {
	_, ok := s.subs[id]
	return ok
}

// Subsections returns the enabled subsection keys for a module in
// declaration order. Nil for modules outside the selection.
func (s *State) Subsections(id string) []string {
	keys, ok := s.subs[id]
	if !ok {
		return nil
	}
	return append([]string(nil), keys...)
}

// SubsectionEnabled reports whether a subsection key is enabled for a module.
func (s *State) SubsectionEnabled(id, key string) bool {
	for _, k := range s.subs[id] {
		if k == key {
			return true
		}
	}
	return false
}

// All returns the run-everything selection: every registered module with
// every declared subsection enabled. This is the -y path.
func All(reg *registry.Registry) *State {
	s := &State{subs: make(map[string][]string, reg.Len())}
	for _, d := range reg.List() {
		s.modules = append(s.modules, d.ID)
		s.subs[d.ID] = append([]string(nil), d.Subsections...)
	}
	return s
}

// Resolve validates picks against the registry and produces a State.
// Any referenced module ID that is not registered, or any referenced
// subsection key that is not declared by its module, fails fast with an
// INVALID_SELECTION error; nothing is silently ignored.
func Resolve(reg *registry.Registry, picks Picks) (*State, error) {
	for id := range picks.Modules {
		if _, err := reg.Get(id); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidSelection,
				fmt.Sprintf("selection references unknown module %q", id), err)
		}
	}
	for id, keys := range picks.Subsections {
		d, err := reg.Get(id)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidSelection,
				fmt.Sprintf("subsection selection references unknown module %q", id), err)
		}
		for key := range keys {
			if !d.HasSubsection(key) {
				return nil, errors.New(errors.ErrCodeInvalidSelection,
					fmt.Sprintf("module %q does not declare subsection %q", id, key))
			}
		}
	}

	s := &State{subs: make(map[string][]string)}
	for _, d := range reg.List() {
		if !picks.Modules[d.ID] {
			continue
		}
		s.modules = append(s.modules, d.ID)

		toggles, explicit := picks.Subsections[d.ID]
		if !explicit {
			s.subs[d.ID] = append([]string(nil), d.Subsections...)
			continue
		}
		keys := make([]string, 0, len(d.Subsections))
		for _, key := range d.Subsections {
			if toggles[key] {
				keys = append(keys, key)
			}
		}
		s.subs[d.ID] = keys
	}
	return s, nil
}
