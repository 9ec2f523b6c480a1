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

package registry

import (
	"fmt"

	"github.com/eraxe/sysdiag/pkg/errors"
)

// Category classifies a diagnostic module. The set is fixed; Categories()
// returns the canonical report order.
type Category string

const (
	CategoryStorage  Category = "storage"
	CategoryBoot     Category = "boot"
	CategorySystem   Category = "system"
	CategoryNetwork  Category = "network"
	CategorySecurity Category = "security"
)

// Categories returns all valid categories in canonical order.
func Categories() []Category {
	return []Category{
		CategoryStorage,
		CategoryBoot,
		CategorySystem,
		CategoryNetwork,
		CategorySecurity,
	}
}

// IsValid reports whether c is one of the fixed categories.
func (c Category) IsValid() bool {
	switch c {
	case CategoryStorage, CategoryBoot, CategorySystem, CategoryNetwork, CategorySecurity:
		return true
	}
	return false
}

// Descriptor describes one diagnostic module. Immutable after registration:
// the registry hands out copies, never its own slices.
type Descriptor struct {
	// ID uniquely identifies the module across the registry.
	ID string
	// Title is the human-readable module name used in report headings.
	Title string
	// Category groups the module in the rendered report.
	Category Category
	// RequiresRoot marks modules the runner skips without elevated privileges.
	RequiresRoot bool
	// DefaultEnabled seeds the interactive checklist state.
	DefaultEnabled bool
	// Subsections lists the declared subsection keys in display order.
	// Only declared keys may appear in a selection or in module output.
	Subsections []string
}

// Validate checks descriptor integrity: non-empty ID and title, a valid
// category, and unique non-empty subsection keys.
func (d Descriptor) Validate() error {
	if d.ID == "" {
		return errors.New(errors.ErrCodeInvalidInput, "module descriptor has empty id")
	}
	if d.Title == "" {
		return errors.New(errors.ErrCodeInvalidInput, fmt.Sprintf("module %q has empty title", d.ID))
	}
	if !d.Category.IsValid() {
		return errors.New(errors.ErrCodeInvalidInput,
			fmt.Sprintf("module %q has unknown category %q", d.ID, d.Category))
	}
	seen := make(map[string]struct{}, len(d.Subsections))
	for _, key := range d.Subsections {
		if key == "" {
			return errors.New(errors.ErrCodeInvalidInput,
				fmt.Sprintf("module %q declares an empty subsection key", d.ID))
		}
		if _, dup := seen[key]; dup {
			return errors.New(errors.ErrCodeInvalidInput,
				fmt.Sprintf("module %q declares duplicate subsection %q", d.ID, key))
		}
		seen[key] = struct{}{}
	}
	return nil
}

// HasSubsection reports whether key is declared by the descriptor.
func (d Descriptor) HasSubsection(key string) bool {
	for _, k := range d.Subsections {
		if k == key {
			return true
		}
	}
	return false
}

// Capabilities is the per-module capability view exposed by the registry.
type Capabilities struct {
	RequiresRoot   bool
	DefaultEnabled bool
}

// Registry is the static ordered catalog of module descriptors.
// Registration order is the canonical report order and is preserved by
// every downstream component. Built once at process start, read-only after.
type Registry struct {
	descriptors []Descriptor
	index       map[string]int
}

// New builds a registry from descriptors in the given order, validating
// each descriptor and rejecting duplicate module IDs.
func New(descriptors ...Descriptor) (*Registry, error) {
	r := &Registry{
		descriptors: make([]Descriptor, 0, len(descriptors)),
		index:       make(map[string]int, len(descriptors)),
	}
	for _, d := range descriptors {
		if err := d.Validate(); err != nil {
			return nil, err
		}
		if _, dup := r.index[d.ID]; dup {
			return nil, errors.New(errors.ErrCodeInvalidInput,
				fmt.Sprintf("module %q registered twice", d.ID))
		}
		d.Subsections = append([]string(nil), d.Subsections...)
		r.index[d.ID] = len(r.descriptors)
		r.descriptors = append(r.descriptors, d)
	}
	return r, nil
}

// MustNew builds a registry and panics on error. For static catalogs
// validated at development time.
func MustNew(descriptors ...Descriptor) *Registry {
	r, err := New(descriptors...)
	if err != nil {
		panic(fmt.Sprintf("registry.MustNew: %v", err))
	}
	return r
}

// Len returns the number of registered modules.
func (r *Registry) Len() int {
	return len(r.descriptors)
}

// List returns all descriptors in registration order. The returned slice
// is a copy; mutating it does not affect the registry.
func (r *Registry) List() []Descriptor {
	out := make([]Descriptor, len(r.descriptors))
	copy(out, r.descriptors)
	for i := range out {
		out[i].Subsections = append([]string(nil), out[i].Subsections...)
	}
	return out
}

// Get returns the descriptor for id, or a NOT_FOUND error.
func (r *Registry) Get(id string) (Descriptor, error) {
	i, ok := r.index[id]
	if !ok {
		return Descriptor{}, errors.New(errors.ErrCodeNotFound,
			fmt.Sprintf("module %q is not registered", id))
	}
	d := r.descriptors[i]
	d.Subsections = append([]string(nil), d.Subsections...)
	return d, nil
}

// Capabilities returns the capability view for id, or a NOT_FOUND error.
func (r *Registry) Capabilities(id string) (Capabilities, error) {
	i, ok := r.index[id]
	if !ok {
		return Capabilities{}, errors.New(errors.ErrCodeNotFound,
			fmt.Sprintf("module %q is not registered", id))
	}
	d := r.descriptors[i]
	return Capabilities{
		RequiresRoot:   d.RequiresRoot,
		DefaultEnabled: d.DefaultEnabled,
	}, nil
}

// Position returns the registration index of id. The runner uses it to
// address result slots so that report order never depends on scheduling.
func (r *Registry) Position(id string) (int, bool) {
	i, ok := r.index[id]
	return i, ok
}
