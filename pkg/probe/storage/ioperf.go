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

package storage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/eraxe/sysdiag/pkg/probe/run"
	"github.com/eraxe/sysdiag/pkg/probe/textfile"
	"github.com/eraxe/sysdiag/pkg/registry"
)

var storageErrorTerms = []string{"ata", "scsi", "nvme", "mmc", "ahci", "sata", "raid"}

var failureTerms = []string{"error", "fail", "fault", "timeout", "reset"}

// IOPerformance reports storage throughput, utilization, scheduler
// configuration, and storage subsystem errors from the kernel logs.
type IOPerformance struct {
	run *run.Runner
}

// NewIOPerformance creates the storage I/O performance probe.
func NewIOPerformance(r *run.Runner) *IOPerformance {
	return &IOPerformance{run: r}
}

// Descriptor implements the probe contract.
func (p *IOPerformance) Descriptor() registry.Descriptor {
	return registry.Descriptor{
		ID:             "storage_io_performance",
		Title:          "Storage I/O Performance",
		Category:       registry.CategoryStorage,
		DefaultEnabled: false,
		Subsections: []string{
			"disk_performance",
			"storage_utilization",
			"io_scheduler",
			"storage_subsystem_errors",
		},
	}
}

// Execute gathers the storage I/O performance subsections.
func (p *IOPerformance) Execute(ctx context.Context) (map[string]string, error) {
	slog.Debug("collecting storage I/O performance")
	out := make(map[string]string, 4)

	// Memory-only dd keeps the throughput test non-destructive.
	ioTest := p.run.Command(ctx, "dd", "if=/dev/zero", "of=/dev/null", "bs=1M", "count=1000")
	diskStats := textfile.Read("/proc/diskstats")
	iostat := p.run.Command(ctx, "iostat", "-dx", "1", "3")
	out["disk_performance"] = fmt.Sprintf(
		"Basic I/O Test (memory only, for safety):\n%s\n\nDisk Queue Statistics:\n%s\n\nI/O Statistics:\n%s",
		ioTest, diskStats, iostat)

	usage := p.run.Command(ctx, "df", "-h")
	nearFull := p.run.CommandFiltered(ctx, func(line string) bool {
		return strings.Contains(line, "100%") ||
			(strings.Contains(line, "9%") && strings.HasPrefix(line, "/"))
	}, "df", "-h")
	inodes := p.run.Command(ctx, "df", "-i")
	out["storage_utilization"] = fmt.Sprintf(
		"Disk Space Usage:\n%s\n\nNear-Full Filesystems:\n%s\n\nInode Utilization:\n%s",
		usage, nearFull, inodes)

	out["io_scheduler"] = p.schedulerSettings(ctx)

	controllerErrors := p.run.CommandKeepLast(ctx, 20, "sh", "-c",
		"dmesg | grep -iE '"+strings.Join(storageErrorTerms, "|")+"' | grep -iE '"+strings.Join(failureTerms, "|")+"'")
	journalErrors := p.run.CommandKeepLast(ctx, 20, "sh", "-c",
		"journalctl --no-pager | grep -iE 'ata|scsi|nvme|mmc|ahci|sata|raid|disk|block' | grep -iE 'error|fail|fault|timeout|reset'")
	smart := p.run.Command(ctx, "smartctl", "-l", "error", "/dev/sda")
	if strings.Contains(smart, "Failed to run command") || strings.Contains(smart, "Error") {
		smart = "SMART tools not available or device doesn't support SMART"
	}
	out["storage_subsystem_errors"] = fmt.Sprintf(
		"Disk Controller Errors:\n%s\n\nStorage Error Logs:\n%s\n\nSMART Errors:\n%s",
		controllerErrors, journalErrors, smart)

	return out, nil
}

// schedulerSettings walks the block devices and reports each one's I/O
// scheduler, read-ahead, and queue depth from sysfs.
func (p *IOPerformance) schedulerSettings(ctx context.Context) string {
	var b strings.Builder
	b.WriteString("I/O Scheduler Settings:\n")

	devices := p.run.Command(ctx, "lsblk", "-d", "-n", "-o", "NAME")
	for _, device := range strings.Split(devices, "\n") {
		device = strings.TrimSpace(device)
		if device == "" || strings.Contains(device, " ") {
			continue
		}
		scheduler := textfile.Read(fmt.Sprintf("/sys/block/%s/queue/scheduler", device))
		readAhead := textfile.Read(fmt.Sprintf("/sys/block/%s/queue/read_ahead_kb", device))
		nrRequests := textfile.Read(fmt.Sprintf("/sys/block/%s/queue/nr_requests", device))

		fmt.Fprintf(&b, "\nDevice: %s\n", device)
		fmt.Fprintf(&b, "  Scheduler: %s\n", scheduler)
		fmt.Fprintf(&b, "  Read-ahead: %s KB\n", readAhead)
		fmt.Fprintf(&b, "  Max requests: %s\n", nrRequests)
	}

	saturation := p.run.Command(ctx, "iostat", "-dx", "1", "2")
	b.WriteString("\nDevice Saturation:\n")
	b.WriteString(saturation)
	return b.String()
}
