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

package runner

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eraxe/sysdiag/pkg/errors"
	"github.com/eraxe/sysdiag/pkg/header"
	"github.com/eraxe/sysdiag/pkg/probe"
	"github.com/eraxe/sysdiag/pkg/registry"
	"github.com/eraxe/sysdiag/pkg/render"
	"github.com/eraxe/sysdiag/pkg/report"
	"github.com/eraxe/sysdiag/pkg/selection"
)

// stubProbe is a scriptable probe for runner tests.
type stubProbe struct {
	descriptor registry.Descriptor
	content    map[string]string
	err        error
	delay      time.Duration
}

func (s *stubProbe) Descriptor() registry.Descriptor { return s.descriptor }

func (s *stubProbe) Execute(ctx context.Context) (map[string]string, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.content, s.err
}

// cancelProbe cancels the run from inside its own execution, landing the
// interrupt while the module is in flight.
type cancelProbe struct {
	*stubProbe
	cancel context.CancelFunc
}

func (c *cancelProbe) Execute(ctx context.Context) (map[string]string, error) {
	c.cancel()
	return c.stubProbe.Execute(ctx)
}

func stub(id string, cat registry.Category, root bool, subs []string, content map[string]string, err error) *stubProbe {
	return &stubProbe{
		descriptor: registry.Descriptor{
			ID:             id,
			Title:          "Title " + id,
			Category:       cat,
			RequiresRoot:   root,
			DefaultEnabled: true,
			Subsections:    subs,
		},
		content: content,
		err:     err,
	}
}

func newRunner(t *testing.T, probes []probe.Probe, elevated bool) *Runner {
	t.Helper()
	reg, err := probe.NewRegistry(probes)
	require.NoError(t, err)
	return &Runner{
		Registry:  reg,
		Probes:    probe.Index(probes),
		Selection: selection.All(reg),
		Privilege: NewPrivilegeContextWithProbe(func() bool { return elevated }),
	}
}

func TestRunAggregatesInRegistryOrder(t *testing.T) {
	t.Parallel()

	// Completion order is scrambled by per-probe delays; report order must
	// still follow registration order.
	probes := make([]probe.Probe, 0, 6)
	for i := range 6 {
		id := fmt.Sprintf("m%d", i)
		p := stub(id, registry.CategorySystem, false, []string{"a"},
			map[string]string{"a": "content " + id}, nil)
		p.delay = time.Duration(5-i) * 10 * time.Millisecond
		probes = append(probes, p)
	}

	r := newRunner(t, probes, false)
	r.Workers = 4

	tree, err := r.Run(context.Background())
	require.NoError(t, err)
	require.NoError(t, tree.Validate())

	modules := tree.Modules()
	require.Len(t, modules, 6)
	for i, m := range modules {
		assert.Equal(t, fmt.Sprintf("m%d", i), m.ID)
		assert.Equal(t, report.StatusCompleted, m.Status)
	}
}

func TestRunGroupsByCategory(t *testing.T) {
	t.Parallel()

	probes := []probe.Probe{
		stub("disks", registry.CategoryStorage, false, []string{"a"}, map[string]string{"a": "x"}, nil),
		stub("grub", registry.CategoryBoot, false, []string{"a"}, map[string]string{"a": "x"}, nil),
		stub("mounts", registry.CategoryStorage, false, []string{"a"}, map[string]string{"a": "x"}, nil),
	}

	tree, err := newRunner(t, probes, false).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, tree.Categories, 2)
	assert.Equal(t, "storage", tree.Categories[0].Name)
	assert.Equal(t, []string{"disks", "mounts"},
		[]string{tree.Categories[0].Modules[0].ID, tree.Categories[0].Modules[1].ID})
	assert.Equal(t, "boot", tree.Categories[1].Name)
}

func TestRunSkipsPrivilegedModulesWithoutRoot(t *testing.T) {
	t.Parallel()

	probed := false
	rooted := stub("rooted", registry.CategorySecurity, true, []string{"a"}, nil, nil)
	rooted.content = map[string]string{"a": "never"}
	plain := stub("plain", registry.CategorySecurity, false, []string{"a"},
		map[string]string{"a": "fine"}, nil)

	r := newRunner(t, []probe.Probe{rooted, plain}, false)
	r.Privilege = NewPrivilegeContextWithProbe(func() bool {
		probed = true
		return false
	})

	tree, err := r.Run(context.Background())
	require.NoError(t, err)
	require.NoError(t, tree.Validate())

	modules := tree.Modules()
	assert.Equal(t, report.StatusSkipped, modules[0].Status)
	assert.Equal(t, report.ReasonPrivileges, modules[0].Reason)
	assert.Empty(t, modules[0].Subsections)
	assert.Equal(t, report.StatusCompleted, modules[1].Status)
	assert.True(t, probed)
}

func TestPrivilegeProbeRunsExactlyOnce(t *testing.T) {
	t.Parallel()

	calls := 0
	probes := make([]probe.Probe, 0, 4)
	for i := range 4 {
		probes = append(probes, stub(fmt.Sprintf("root%d", i), registry.CategorySecurity, true,
			[]string{"a"}, map[string]string{"a": "x"}, nil))
	}

	r := newRunner(t, probes, false)
	r.Privilege = NewPrivilegeContextWithProbe(func() bool {
		calls++
		return true
	})
	r.Workers = 4

	_, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRunIsolatesModuleFailure(t *testing.T) {
	t.Parallel()

	probes := []probe.Probe{
		stub("good", registry.CategoryNetwork, false, []string{"a"},
			map[string]string{"a": "ok"}, nil),
		stub("bad", registry.CategoryNetwork, false, []string{"a"},
			nil, errors.New(errors.ErrCodeModuleFailed, "interface query failed")),
	}

	tree, err := newRunner(t, probes, false).Run(context.Background())
	require.NoError(t, err)
	require.NoError(t, tree.Validate())

	modules := tree.Modules()
	assert.Equal(t, report.StatusCompleted, modules[0].Status)
	assert.Equal(t, report.StatusError, modules[1].Status)
	assert.Contains(t, modules[1].Reason, "interface query failed")
	assert.Empty(t, modules[1].Subsections)
}

func TestRunRecordsTimeout(t *testing.T) {
	t.Parallel()

	slow := stub("slow", registry.CategorySystem, false, []string{"a"},
		map[string]string{"a": "late"}, nil)
	slow.delay = 500 * time.Millisecond

	r := newRunner(t, []probe.Probe{slow}, false)
	r.ModuleTimeout = 20 * time.Millisecond

	tree, err := r.Run(context.Background())
	require.NoError(t, err)
	require.NoError(t, tree.Validate())

	m := tree.Modules()[0]
	assert.Equal(t, report.StatusError, m.Status)
	assert.Equal(t, report.ReasonTimedOut, m.Reason)
}

func TestRunMarksUnscheduledModulesInterrupted(t *testing.T) {
	t.Parallel()

	probes := []probe.Probe{
		stub("first", registry.CategorySystem, false, []string{"a"},
			map[string]string{"a": "x"}, nil),
		stub("second", registry.CategorySystem, false, []string{"a"},
			map[string]string{"a": "y"}, nil),
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tree, err := newRunner(t, probes, false).Run(ctx)
	require.NoError(t, err)
	require.NoError(t, tree.Validate())

	for _, m := range tree.Modules() {
		assert.Equal(t, report.StatusSkipped, m.Status)
		assert.Equal(t, report.ReasonInterrupted, m.Reason)
	}
}

func TestRunInterruptKeepsInFlightModuleResult(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	first := &cancelProbe{
		stubProbe: stub("first", registry.CategorySystem, false, []string{"a"},
			map[string]string{"a": "finished"}, nil),
		cancel: cancel,
	}
	second := stub("second", registry.CategorySystem, false, []string{"a"},
		map[string]string{"a": "never"}, nil)

	r := newRunner(t, []probe.Probe{first, second}, false)
	r.Workers = 1

	tree, err := r.Run(ctx)
	require.NoError(t, err)
	require.NoError(t, tree.Validate())

	// The in-flight module keeps its full result; only the unscheduled
	// one is marked interrupted.
	modules := tree.Modules()
	require.Len(t, modules, 2)
	assert.Equal(t, report.StatusCompleted, modules[0].Status)
	require.Len(t, modules[0].Subsections, 1)
	assert.Equal(t, "finished", modules[0].Subsections[0].Content)
	assert.Equal(t, report.StatusSkipped, modules[1].Status)
	assert.Equal(t, report.ReasonInterrupted, modules[1].Reason)
}

func TestRunInterruptToleratesUnknownSelectionEntry(t *testing.T) {
	t.Parallel()

	known := stub("known", registry.CategorySystem, false, []string{"a"},
		map[string]string{"a": "x"}, nil)
	ghost := stub("ghost", registry.CategorySystem, false, []string{"a"}, nil, nil)

	full, err := probe.NewRegistry([]probe.Probe{known, ghost})
	require.NoError(t, err)
	partial, err := probe.NewRegistry([]probe.Probe{known})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// A selection entry the registry cannot resolve stays confined to its
	// own slot; the rest of the interrupted run is still reported.
	r := &Runner{
		Registry:  partial,
		Probes:    probe.Index([]probe.Probe{known}),
		Selection: selection.All(full),
		Privilege: NewPrivilegeContextWithProbe(func() bool { return false }),
	}
	tree, err := r.Run(ctx)
	require.NoError(t, err)

	modules := tree.Modules()
	require.Len(t, modules, 1)
	assert.Equal(t, "known", modules[0].ID)
	assert.Equal(t, report.StatusSkipped, modules[0].Status)
}

func TestRunProducesIdenticalJSONAcrossRuns(t *testing.T) {
	t.Parallel()

	build := func() *Runner {
		probes := []probe.Probe{
			stub("disks", registry.CategoryStorage, false, []string{"lsblk", "fdisk"},
				map[string]string{"lsblk": "sda 100G", "fdisk": "dos"}, nil),
			stub("grub", registry.CategoryBoot, false, []string{"cfg"},
				nil, errors.New(errors.ErrCodeModuleFailed, "grub.cfg unreadable")),
		}
		r := newRunner(t, probes, false)
		r.Workers = 2
		r.Header = header.New(
			header.WithKind(header.KindDiagnosticReport),
			header.WithAPIVersion(header.APIVersionV1),
			header.WithMetadata(header.MetaRunID, "run-fixed"),
			header.WithMetadata(header.MetaHostname, "host-fixed"),
		)
		return r
	}

	var out []string
	for range 2 {
		tree, err := build().Run(context.Background())
		require.NoError(t, err)
		data, err := render.Render(tree, render.Options{Format: render.FormatJSON})
		require.NoError(t, err)
		out = append(out, string(data))
	}
	assert.Equal(t, out[0], out[1])
}

func TestRunFiltersContentToEnabledSubsections(t *testing.T) {
	t.Parallel()

	p := stub("multi", registry.CategoryStorage, false,
		[]string{"first", "second", "third"},
		map[string]string{"first": "1", "second": "2", "third": "3"}, nil)

	reg, err := probe.NewRegistry([]probe.Probe{p})
	require.NoError(t, err)
	sel, err := selection.Resolve(reg, selection.Picks{
		Modules: map[string]bool{"multi": true},
		Subsections: map[string]map[string]bool{
			"multi": {"third": true, "first": true},
		},
	})
	require.NoError(t, err)

	r := &Runner{
		Registry:  reg,
		Probes:    probe.Index([]probe.Probe{p}),
		Selection: sel,
		Privilege: NewPrivilegeContextWithProbe(func() bool { return false }),
	}

	tree, err := r.Run(context.Background())
	require.NoError(t, err)

	m := tree.Modules()[0]
	require.Len(t, m.Subsections, 2)
	// Declaration order, not selection order.
	assert.Equal(t, "first", m.Subsections[0].Key)
	assert.Equal(t, "third", m.Subsections[1].Key)
}

func TestRunDropsEmptySubsectionContent(t *testing.T) {
	t.Parallel()

	p := stub("sparse", registry.CategoryBoot, false, []string{"a", "b"},
		map[string]string{"a": "has content", "b": ""}, nil)

	tree, err := newRunner(t, []probe.Probe{p}, false).Run(context.Background())
	require.NoError(t, err)

	m := tree.Modules()[0]
	require.Len(t, m.Subsections, 1)
	assert.Equal(t, "a", m.Subsections[0].Key)
}
