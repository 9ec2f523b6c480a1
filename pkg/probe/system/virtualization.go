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
	"strings"

	"github.com/distribution/reference"

	"github.com/eraxe/sysdiag/pkg/probe/run"
	"github.com/eraxe/sysdiag/pkg/registry"
)

// Virtualization detects whether the host is a guest or a hypervisor and
// inventories whichever container runtime is present (Docker, Podman, or
// LXC).
type Virtualization struct {
	run *run.Runner
}

// NewVirtualization creates the virtualization and container probe.
func NewVirtualization(r *run.Runner) *Virtualization {
	return &Virtualization{run: r}
}

// Descriptor implements the probe contract.
func (p *Virtualization) Descriptor() registry.Descriptor {
	return registry.Descriptor{
		ID:             "virtualization_container",
		Title:          "Virtualization & Container Status",
		Category:       registry.CategorySystem,
		DefaultEnabled: false,
		Subsections: []string{
			"vm_status",
			"container_status",
		},
	}
}

// Execute gathers the virtualization subsections.
func (p *Virtualization) Execute(ctx context.Context) (map[string]string, error) {
	slog.Debug("collecting virtualization and container status")
	out := make(map[string]string, 2)

	out["vm_status"] = p.vmStatus(ctx)
	out["container_status"] = p.containerStatus(ctx)

	return out, nil
}

func (p *Virtualization) vmStatus(ctx context.Context) string {
	virtType := strings.TrimSpace(p.run.Command(ctx, "systemd-detect-virt"))

	var info string
	if strings.Contains(virtType, "none") {
		kvmModules := p.run.CommandFiltered(ctx, func(line string) bool {
			return strings.Contains(line, "kvm")
		}, "lsmod")
		virshList := p.run.Command(ctx, "virsh", "list", "--all")
		info = fmt.Sprintf("This appears to be a physical host.\n\nKVM Modules:\n%s\n\nLibvirt VMs:\n%s",
			kvmModules, virshList)
	} else {
		info = fmt.Sprintf("This is a virtual machine. Virtualization type: %s", virtType)
		info += fmt.Sprintf("\n\nGuest Agents:\nQEMU Guest Agent: %s\nVMware Tools: %s",
			agentState(p.run.Command(ctx, "pgrep", "qemu-ga")),
			agentState(p.run.Command(ctx, "pgrep", "vmtoolsd")))
	}

	resources := p.run.Command(ctx, "free", "-h") + "\n\n" + p.run.Command(ctx, "lscpu")
	network := p.run.Command(ctx, "ip", "addr")

	return fmt.Sprintf("VM Status:\n%s\n\nVM Resources:\n%s\n\nVM Networking:\n%s",
		info, resources, network)
}

func agentState(pgrepOut string) string {
	trimmed := strings.TrimSpace(pgrepOut)
	if trimmed == "" || strings.Contains(trimmed, "Error") ||
		strings.Contains(trimmed, "Failed to run command") {
		return "Not running"
	}
	return "Running"
}

func (p *Virtualization) containerStatus(ctx context.Context) string {
	var (
		runtime   string
		list      string
		errors    string
		resources string
		images    string
	)

	switch {
	case p.run.Available("docker"):
		runtime = "Docker"
		list = p.run.Command(ctx, "docker", "ps", "-a")
		errors = p.run.ShellKeepLast(ctx, 20,
			"journalctl --no-pager | grep -i docker | grep -iE 'error|fail|exit'")
		resources = p.run.Command(ctx, "docker", "stats", "--no-stream", "--all")
		images = imageProvenance(p.run.Command(ctx, "docker", "ps", "-a", "--format", "{{.Image}}"))
	case p.run.Available("podman"):
		runtime = "Podman"
		list = p.run.Command(ctx, "podman", "ps", "-a")
		errors = p.run.ShellKeepLast(ctx, 20,
			"journalctl --no-pager | grep -i podman | grep -iE 'error|fail|exit'")
		resources = p.run.Command(ctx, "podman", "stats", "--no-stream", "--all")
		images = imageProvenance(p.run.Command(ctx, "podman", "ps", "-a", "--format", "{{.Image}}"))
	case p.run.Available("lxc-ls"):
		runtime = "LXC"
		list = p.run.Command(ctx, "lxc-ls", "--fancy")
		errors = p.run.ShellKeepLast(ctx, 20,
			"journalctl --no-pager | grep -i lxc | grep -iE 'error|fail|exit'")
		resources = "Resource statistics not available for LXC containers through standard commands"
		images = "Image provenance not available for LXC containers"
	default:
		runtime = "None detected"
		list = "No container system detected"
		errors = "N/A"
		resources = "N/A"
		images = "N/A"
	}

	return fmt.Sprintf("Container System: %s\n\nContainer List:\n%s\n\nContainer Errors:\n%s\n\nContainer Resources:\n%s\n\nImage Provenance:\n%s",
		runtime, list, errors, resources, images)
}

// imageProvenance normalizes the image references in use and reports the
// registry each resolves to, flagging references that do not parse.
func imageProvenance(refs string) string {
	trimmed := strings.TrimSpace(refs)
	if trimmed == "" || strings.Contains(trimmed, "Error") ||
		strings.Contains(trimmed, "Failed to run command") {
		return "No container images in use"
	}

	seen := make(map[string]bool)
	var b strings.Builder
	for _, raw := range strings.Split(trimmed, "\n") {
		raw = strings.TrimSpace(raw)
		if raw == "" || seen[raw] {
			continue
		}
		seen[raw] = true

		named, err := reference.ParseNormalizedNamed(raw)
		if err != nil {
			fmt.Fprintf(&b, "%s: invalid reference (%v)\n", raw, err)
			continue
		}
		fmt.Fprintf(&b, "%s: registry %s, repository %s\n",
			raw, reference.Domain(named), reference.Path(named))
	}
	return strings.TrimRight(b.String(), "\n")
}
