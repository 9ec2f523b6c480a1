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
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/eraxe/sysdiag/pkg/defaults"
	"github.com/eraxe/sysdiag/pkg/errors"
	"github.com/eraxe/sysdiag/pkg/header"
	"github.com/eraxe/sysdiag/pkg/probe"
	"github.com/eraxe/sysdiag/pkg/registry"
	"github.com/eraxe/sysdiag/pkg/report"
	"github.com/eraxe/sysdiag/pkg/selection"
)

// Runner executes a selection of diagnostic modules and assembles the
// result tree. Module failures are isolated: one module's outcome never
// affects another's.
type Runner struct {
	Registry  *registry.Registry
	Probes    map[string]probe.Probe
	Selection *selection.State
	Header    *header.Header

	// Workers is the pool size; zero resolves via defaults.WorkerCount.
	Workers int

	// ModuleTimeout is the per-module execution budget; zero uses
	// defaults.ModuleTimeout.
	ModuleTimeout time.Duration

	// Privilege is the shared effective-root answer; nil creates the
	// real euid probe.
	Privilege *PrivilegeContext
}

// Run executes the selected modules and returns the ordered result tree.
// Cancellation of ctx requests a graceful stop: modules already executing
// finish or time out, modules not yet scheduled are recorded as Skipped
// with reason "interrupted", and the partial tree is still returned.
func (r *Runner) Run(ctx context.Context) (*report.Tree, error) {
	if r.Registry == nil || r.Selection == nil {
		return nil, errors.New(errors.ErrCodeInternal, "runner requires a registry and a selection")
	}

	priv := r.Privilege
	if priv == nil {
		priv = NewPrivilegeContext()
	}
	timeout := r.ModuleTimeout
	if timeout <= 0 {
		timeout = defaults.ModuleTimeout
	}
	workers := defaults.WorkerCount(r.Workers)

	ids := r.Selection.Modules()
	slog.Info("running diagnostic modules",
		"modules", len(ids), "workers", workers, "timeout", timeout)

	// One slot per selected module, indexed by selection position (which
	// follows registry order). Workers write disjoint slots, so no lock.
	slots := make([]report.ModuleResult, len(ids))

	g := new(errgroup.Group)
	g.SetLimit(workers)
	for i, id := range ids {
		g.Go(func() error {
			if ctx.Err() != nil {
				result := report.ModuleResult{
					ID:     id,
					Status: report.StatusSkipped,
					Reason: report.ReasonInterrupted,
				}
				// A lookup failure stays in its own slot, same as runModule.
				if d, err := r.Registry.Get(id); err != nil {
					result.Status = report.StatusError
					result.Reason = err.Error()
				} else {
					result.Title = d.Title
				}
				slots[i] = result
				moduleOutcomes.WithLabelValues(id, result.Status.String()).Inc()
				return nil
			}
			slots[i] = r.runModule(ctx, id, priv, timeout)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return r.assemble(slots), nil
}

// runModule takes one module through Pending → Running → terminal.
func (r *Runner) runModule(ctx context.Context, id string, priv *PrivilegeContext, timeout time.Duration) report.ModuleResult {
	d, err := r.Registry.Get(id)
	if err != nil {
		return report.ModuleResult{
			ID:     id,
			Status: report.StatusError,
			Reason: err.Error(),
		}
	}
	result := report.ModuleResult{ID: d.ID, Title: d.Title}

	if d.RequiresRoot && !priv.Elevated() {
		slog.Debug("skipping module", "module", id, "reason", report.ReasonPrivileges)
		result.Status = report.StatusSkipped
		result.Reason = report.ReasonPrivileges
		moduleOutcomes.WithLabelValues(id, result.Status.String()).Inc()
		return result
	}

	p, ok := r.Probes[id]
	if !ok {
		result.Status = report.StatusError
		result.Reason = fmt.Sprintf("no probe registered for module %q", id)
		moduleOutcomes.WithLabelValues(id, result.Status.String()).Inc()
		return result
	}

	modulesInFlight.Inc()
	defer modulesInFlight.Dec()
	start := time.Now()

	content, err := r.execute(ctx, p, timeout)
	moduleDuration.WithLabelValues(id).Observe(time.Since(start).Seconds())

	switch {
	case errors.HasCode(err, errors.ErrCodeTimeout):
		slog.Warn("module timed out", "module", id, "timeout", timeout)
		result.Status = report.StatusError
		result.Reason = report.ReasonTimedOut
	case err != nil:
		slog.Warn("module failed", "module", id, "error", err)
		result.Status = report.StatusError
		result.Reason = err.Error()
	default:
		result.Status = report.StatusCompleted
		result.Subsections = r.filterContent(id, content)
	}
	moduleOutcomes.WithLabelValues(id, result.Status.String()).Inc()
	return result
}

// execute invokes the probe under the module time budget. An interrupt of
// the run does not cancel an in-flight probe; only the budget does. On
// budget exhaustion the probe goroutine is abandoned, not killed.
func (r *Runner) execute(ctx context.Context, p probe.Probe, timeout time.Duration) (map[string]string, error) {
	execCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	type outcome struct {
		content map[string]string
		err     error
	}
	done := make(chan outcome, 1)
	go func() {
		content, err := p.Execute(execCtx)
		done <- outcome{content, err}
	}()

	select {
	case out := <-done:
		return out.content, out.err
	case <-execCtx.Done():
		return nil, errors.New(errors.ErrCodeTimeout, report.ReasonTimedOut)
	}
}

// filterContent keeps only the enabled subsections that produced output,
// in declaration order.
func (r *Runner) filterContent(id string, content map[string]string) []report.Subsection {
	var subs []report.Subsection
	for _, key := range r.Selection.Subsections(id) {
		text, ok := content[key]
		if !ok || text == "" {
			continue
		}
		subs = append(subs, report.Subsection{Key: key, Content: text})
	}
	return subs
}

// assemble groups the slot array into categories, keeping slot order
// within each.
func (r *Runner) assemble(slots []report.ModuleResult) *report.Tree {
	tree := &report.Tree{Header: r.Header}

	index := make(map[registry.Category]int)
	for _, result := range slots {
		d, err := r.Registry.Get(result.ID)
		if err != nil {
			continue
		}
		pos, ok := index[d.Category]
		if !ok {
			pos = len(tree.Categories)
			index[d.Category] = pos
			tree.Categories = append(tree.Categories, report.Category{Name: string(d.Category)})
		}
		tree.Categories[pos].Modules = append(tree.Categories[pos].Modules, result)
	}
	return tree
}
