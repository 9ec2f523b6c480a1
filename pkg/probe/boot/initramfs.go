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
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/eraxe/sysdiag/pkg/kernel"
	"github.com/eraxe/sysdiag/pkg/probe/run"
	"github.com/eraxe/sysdiag/pkg/probe/textfile"
	"github.com/eraxe/sysdiag/pkg/registry"
)

// Initramfs reports dracut configuration and correlates the boot images
// under /boot with the running kernel release.
type Initramfs struct {
	run *run.Runner
}

// NewInitramfs creates the initramfs and dracut probe.
func NewInitramfs(r *run.Runner) *Initramfs {
	return &Initramfs{run: r}
}

// Descriptor implements the probe contract.
func (p *Initramfs) Descriptor() registry.Descriptor {
	return registry.Descriptor{
		ID:             "initramfs",
		Title:          "initramfs & Dracut Configuration",
		Category:       registry.CategoryBoot,
		DefaultEnabled: false,
		Subsections:    []string{"dracut_conf", "dracut_confdir", "initramfs_info"},
	}
}

// Execute gathers the initramfs subsections.
func (p *Initramfs) Execute(ctx context.Context) (map[string]string, error) {
	slog.Debug("collecting initramfs and dracut configuration")
	out := make(map[string]string, 3)

	if textfile.Exists("/etc/dracut.conf") {
		out["dracut_conf"] = textfile.Read("/etc/dracut.conf", textfile.Filter(nonComment))
	} else {
		out["dracut_conf"] = "Dracut configuration file not found at /etc/dracut.conf"
	}

	out["dracut_confdir"] = dracutConfDir()
	out["initramfs_info"] = p.initramfsInfo(ctx)

	return out, nil
}

func nonComment(line string) bool {
	trimmed := strings.TrimSpace(line)
	return trimmed != "" && !strings.HasPrefix(trimmed, "#")
}

// dracutConfDir concatenates the .conf drop-ins under /etc/dracut.conf.d.
func dracutConfDir() string {
	const dir = "/etc/dracut.conf.d"
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "Dracut configuration directory not found at /etc/dracut.conf.d/"
	}

	var parts []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".conf") {
			continue
		}
		content := textfile.Read(filepath.Join(dir, entry.Name()), textfile.Filter(nonComment))
		if content != "" {
			parts = append(parts, fmt.Sprintf("=== %s ===\n%s", entry.Name(), content))
		}
	}

	if len(parts) == 0 {
		return "No configuration files found in /etc/dracut.conf.d/"
	}
	return strings.Join(parts, "\n\n")
}

// initramfsInfo checks whether a boot image exists for the running
// kernel and lists the available dracut modules.
func (p *Initramfs) initramfsInfo(ctx context.Context) string {
	release := strings.TrimSpace(p.run.Command(ctx, "uname", "-r"))
	status := imageStatus(release)
	modules := p.run.Command(ctx, "dracut", "--list-modules")
	return fmt.Sprintf("%s\n\nDracut Modules:\n%s", status, modules)
}

// imageStatus matches /boot images against the running kernel release,
// tolerating the initramfs/initrd naming split across distros.
func imageStatus(release string) string {
	running, err := kernel.ParseRelease(release)
	if err != nil {
		return fmt.Sprintf("Unable to parse running kernel release %q: %v", release, err)
	}

	candidates := []string{
		fmt.Sprintf("/boot/initramfs-%s.img", release),
		fmt.Sprintf("/boot/initrd-%s.img", release),
		fmt.Sprintf("/boot/initrd.img-%s", release),
	}
	for _, path := range candidates {
		if textfile.Exists(path) {
			return fmt.Sprintf("initramfs exists for current kernel (%s)", release)
		}
	}

	// No exact match; report which kernels do have images.
	entries, err := os.ReadDir("/boot")
	if err != nil {
		return fmt.Sprintf("No initramfs/initrd found for current kernel (%s)", release)
	}
	var others []string
	for _, entry := range entries {
		if r, ok := kernel.FromBootImage(entry.Name()); ok && r.Compare(running) != 0 {
			others = append(others, r.String())
		}
	}
	if len(others) > 0 {
		return fmt.Sprintf("No initramfs/initrd found for current kernel (%s); images exist for: %s",
			release, strings.Join(others, ", "))
	}
	return fmt.Sprintf("No initramfs/initrd found for current kernel (%s)", release)
}
