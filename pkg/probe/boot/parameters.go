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

package boot

import (
	"context"
	"log/slog"
	"strings"

	"github.com/eraxe/sysdiag/pkg/probe/run"
	"github.com/eraxe/sysdiag/pkg/probe/textfile"
	"github.com/eraxe/sysdiag/pkg/registry"
)

// Parameters reports the live kernel command line and the GRUB_CMDLINE
// settings configured for the next boot.
type Parameters struct {
	run *run.Runner
}

// NewParameters creates the boot parameters probe.
func NewParameters(r *run.Runner) *Parameters {
	return &Parameters{run: r}
}

// Descriptor implements the probe contract.
func (p *Parameters) Descriptor() registry.Descriptor {
	return registry.Descriptor{
		ID:             "boot_parameters",
		Title:          "Boot Parameters & GRUB Command-Line Options",
		Category:       registry.CategoryBoot,
		DefaultEnabled: false,
		Subsections:    []string{"kernel_cmdline", "grub_entries"},
	}
}

// Execute gathers the boot parameter subsections.
func (p *Parameters) Execute(ctx context.Context) (map[string]string, error) {
	slog.Debug("collecting boot parameters")
	out := make(map[string]string, 2)

	out["kernel_cmdline"] = "Current Kernel Command Line:\n" + textfile.Read("/proc/cmdline")

	entries := textfile.Read("/etc/default/grub", textfile.Filter(func(line string) bool {
		return strings.Contains(line, "GRUB_CMDLINE_LINUX") &&
			!strings.HasPrefix(strings.TrimSpace(line), "#")
	}))
	if strings.TrimSpace(entries) == "" || strings.HasPrefix(entries, "File not found") {
		out["grub_entries"] = "No custom GRUB command line parameters found"
	} else {
		out["grub_entries"] = "GRUB Command Line Parameters:\n" + entries
	}

	return out, nil
}
