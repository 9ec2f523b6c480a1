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

package system

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/eraxe/sysdiag/pkg/probe/run"
	"github.com/eraxe/sysdiag/pkg/probe/textfile"
	"github.com/eraxe/sysdiag/pkg/registry"
)

var bootLogPaths = []string{
	"/var/log/boot.log",
	"/var/log/dmesg",
	"/var/log/syslog",
}

// KernelLogs surfaces errors and warnings from the kernel ring buffer, the
// current boot journal, and on-disk boot logs.
type KernelLogs struct {
	run *run.Runner
}

// NewKernelLogs creates the kernel log probe.
func NewKernelLogs(r *run.Runner) *KernelLogs {
	return &KernelLogs{run: r}
}

// Descriptor implements the probe contract.
func (p *KernelLogs) Descriptor() registry.Descriptor {
	return registry.Descriptor{
		ID:             "kernel_logs",
		Title:          "Kernel Boot & System Logs",
		Category:       registry.CategorySystem,
		DefaultEnabled: false,
		Subsections: []string{
			"dmesg",
			"journalctl",
			"boot_log",
		},
	}
}

// Execute gathers the kernel log subsections.
func (p *KernelLogs) Execute(ctx context.Context) (map[string]string, error) {
	slog.Debug("collecting kernel and boot logs")
	out := make(map[string]string, 3)

	out["dmesg"] = p.run.CommandKeepLast(ctx, 20,
		"dmesg", "--level=err,warn,emerg,alert,crit")
	out["journalctl"] = p.run.CommandKeepLast(ctx, 20,
		"journalctl", "-b", "-p", "err..emerg")
	out["boot_log"] = bootLogFindings()

	return out, nil
}

func bootLogFindings() string {
	severe := func(line string) bool {
		lower := strings.ToLower(line)
		return strings.Contains(lower, "error") ||
			strings.Contains(lower, "warning") ||
			strings.Contains(lower, "fail") ||
			strings.Contains(lower, "critical")
	}

	var findings []string
	for _, path := range bootLogPaths {
		if !textfile.Exists(path) {
			continue
		}
		content := textfile.Read(path, textfile.Filter(severe), textfile.KeepLast(20))
		findings = append(findings, fmt.Sprintf("%s:\n%s", filepath.Base(path), content))
	}
	if len(findings) == 0 {
		return "No boot log files found"
	}
	return strings.Join(findings, "\n\n")
}
