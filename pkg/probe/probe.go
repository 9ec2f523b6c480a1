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

package probe

import (
	"context"
	"time"

	"github.com/eraxe/sysdiag/pkg/probe/boot"
	"github.com/eraxe/sysdiag/pkg/probe/network"
	"github.com/eraxe/sysdiag/pkg/probe/run"
	"github.com/eraxe/sysdiag/pkg/probe/security"
	"github.com/eraxe/sysdiag/pkg/probe/storage"
	"github.com/eraxe/sysdiag/pkg/probe/system"
	"github.com/eraxe/sysdiag/pkg/registry"
)

// Probe is the contract every diagnostic module implements. Descriptor
// is static and safe to call without executing anything; Execute gathers
// content for the declared subsections and either returns the full map
// or an error the runner records as the module's failure reason.
//
// Probes are independent variant types in a flat ordered table; there is
// no shared base state.
type Probe interface {
	Descriptor() registry.Descriptor
	Execute(ctx context.Context) (map[string]string, error)
}

// Options configure the default catalog.
type Options struct {
	// CommandTimeout overrides the per-command budget of the shared
	// command runner. Zero keeps the default.
	CommandTimeout time.Duration
}

// Option is a functional option for Catalog.
type Option func(*Options)

// WithCommandTimeout sets the per-command execution budget for every
// probe in the catalog.
func WithCommandTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.CommandTimeout = d
	}
}

// Catalog returns the full diagnostic probe set in registration order.
// The order is the canonical report order. All probes share one command
// runner so the spawn rate limit applies across concurrent workers.
func Catalog(opts ...Option) []Probe {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}

	var runnerOpts []run.Option
	if o.CommandTimeout > 0 {
		runnerOpts = append(runnerOpts, run.WithTimeout(o.CommandTimeout))
	}
	r := run.New(runnerOpts...)

	return []Probe{
		// Storage
		storage.NewPartitionDisk(r),
		storage.NewFilesystem(r),
		storage.NewIOPerformance(r),

		// Boot
		boot.NewBootloader(r),
		boot.NewInitramfs(r),
		boot.NewParameters(r),
		boot.NewGrubDiagnostics(r),

		// System
		system.NewKernelLogs(r),
		system.NewHardwareInfo(r),
		system.NewCustomScripts(r),
		system.NewRecoveryDiagnostics(r),
		system.NewServiceStatus(r),
		system.NewVirtualization(r),
		system.NewLogAnalysis(r),
		system.NewPackageManagement(r),

		// Network
		network.NewConfig(r),

		// Security
		security.NewInfo(r),
		security.NewUserAccount(r),
	}
}

// NewRegistry builds the module registry from a probe set, preserving
// probe order as registration order.
func NewRegistry(probes []Probe) (*registry.Registry, error) {
	descriptors := make([]registry.Descriptor, 0, len(probes))
	for _, p := range probes {
		descriptors = append(descriptors, p.Descriptor())
	}
	return registry.New(descriptors...)
}

// Index maps probes by module ID for runner lookup.
func Index(probes []Probe) map[string]Probe {
	out := make(map[string]Probe, len(probes))
	for _, p := range probes {
		out[p.Descriptor().ID] = p
	}
	return out
}
