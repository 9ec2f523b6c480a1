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

// grubConfigPaths are the grub.cfg locations tried in order; distros
// disagree on where it lives.
var grubConfigPaths = []string{
	"/boot/grub/grub.cfg",
	"/boot/grub2/grub.cfg",
	"/boot/efi/EFI/grub/grub.cfg",
}

// Bootloader reports /boot contents, the GRUB menu entries, and the GRUB
// defaults file.
type Bootloader struct {
	run *run.Runner
}

// NewBootloader creates the bootloader configuration probe.
func NewBootloader(r *run.Runner) *Bootloader {
	return &Bootloader{run: r}
}

// Descriptor implements the probe contract.
func (p *Bootloader) Descriptor() registry.Descriptor {
	return registry.Descriptor{
		ID:             "bootloader",
		Title:          "/boot & Boot Loader Configurations",
		Category:       registry.CategoryBoot,
		DefaultEnabled: false,
		Subsections:    []string{"boot_contents", "grub_config", "grub_defaults"},
	}
}

// Execute gathers the bootloader subsections.
func (p *Bootloader) Execute(ctx context.Context) (map[string]string, error) {
	slog.Debug("collecting bootloader configuration")
	out := make(map[string]string, 3)

	out["boot_contents"] = p.run.CommandFiltered(ctx, func(line string) bool {
		return strings.Contains(line, "vmlinuz") ||
			strings.Contains(line, "config") ||
			strings.Contains(line, "initramfs") ||
			strings.Contains(line, "initrd")
	}, "ls", "-la", "/boot")

	out["grub_config"] = grubMenuEntries()

	if textfile.Exists("/etc/default/grub") {
		out["grub_defaults"] = textfile.Read("/etc/default/grub")
	} else {
		out["grub_defaults"] = "GRUB defaults file not found at /etc/default/grub"
	}

	return out, nil
}

// grubMenuEntries extracts the menuentry blocks from the first grub.cfg
// found, balancing braces so nested submenu bodies stay intact.
func grubMenuEntries() string {
	for _, path := range grubConfigPaths {
		if !textfile.Exists(path) {
			continue
		}
		content := textfile.Read(path)

		var entries []string
		var current []string
		inEntry := false
		depth := 0

		for _, line := range strings.Split(content, "\n") {
			if !inEntry && strings.HasPrefix(strings.TrimSpace(line), "menuentry ") {
				inEntry = true
				depth = strings.Count(line, "{") - strings.Count(line, "}")
				current = []string{line}
				continue
			}
			if inEntry {
				current = append(current, line)
				depth += strings.Count(line, "{") - strings.Count(line, "}")
				if depth <= 0 {
					inEntry = false
					entries = append(entries, strings.Join(current, "\n"))
					current = nil
				}
			}
		}

		if len(entries) == 0 {
			return "Failed to extract menu entries from " + path
		}
		return strings.Join(entries, "\n\n")
	}
	return "GRUB configuration file not found"
}
