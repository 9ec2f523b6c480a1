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
	"sync"

	"golang.org/x/sys/unix"
)

// PrivilegeContext answers "is this process effectively root" exactly once
// per run. The probe is evaluated lazily on first use and the result is
// shared read-only by all workers afterwards.
type PrivilegeContext struct {
	once     sync.Once
	elevated bool
	probe    func() bool
}

// NewPrivilegeContext creates a context using the real euid probe.
func NewPrivilegeContext() *PrivilegeContext {
	return &PrivilegeContext{probe: func() bool { return unix.Geteuid() == 0 }}
}

// NewPrivilegeContextWithProbe creates a context with an injected probe.
// Tests use this to pin the privilege answer.
func NewPrivilegeContextWithProbe(probe func() bool) *PrivilegeContext {
	return &PrivilegeContext{probe: probe}
}

// Elevated reports whether the process runs with effective root. The first
// caller pays for the probe; every later call reads the cached answer.
func (p *PrivilegeContext) Elevated() bool {
	p.once.Do(func() {
		p.elevated = p.probe()
	})
	return p.elevated
}
