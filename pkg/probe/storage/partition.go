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

// PartitionDisk reports partition and disk layout: block devices, raw
// partition tables, filesystem UUIDs, LVM volumes, and software RAID
// state. Requires root for fdisk, blkid, and the LVM summaries.
type PartitionDisk struct {
	run *run.Runner
}

// NewPartitionDisk creates the partition and disk layout probe.
func NewPartitionDisk(r *run.Runner) *PartitionDisk {
	return &PartitionDisk{run: r}
}

// Descriptor implements the probe contract.
func (p *PartitionDisk) Descriptor() registry.Descriptor {
	return registry.Descriptor{
		ID:             "partition_disk",
		Title:          "Partition & Disk Layout",
		Category:       registry.CategoryStorage,
		RequiresRoot:   true,
		DefaultEnabled: false,
		Subsections:    []string{"lsblk", "fdisk", "blkid", "lvm", "raid"},
	}
}

// Execute gathers the partition and disk layout subsections.
func (p *PartitionDisk) Execute(ctx context.Context) (map[string]string, error) {
	slog.Debug("collecting partition and disk layout")
	out := make(map[string]string, 5)

	out["lsblk"] = p.run.Command(ctx, "lsblk", "-o", "NAME,SIZE,FSTYPE,TYPE,MOUNTPOINT")

	out["fdisk"] = p.run.CommandFiltered(ctx, func(line string) bool {
		return strings.Contains(line, "Disk /dev") ||
			strings.Contains(line, "Device") ||
			strings.Contains(line, "/dev/")
	}, "fdisk", "-l")

	out["blkid"] = p.run.Command(ctx, "blkid")

	vgs := p.run.Command(ctx, "vgs")
	lvs := p.run.Command(ctx, "lvs")
	pvs := p.run.Command(ctx, "pvs")
	out["lvm"] = fmt.Sprintf("VG Summary:\n%s\n\nLV Summary:\n%s\n\nPV Summary:\n%s", vgs, lvs, pvs)

	if textfile.Exists("/proc/mdstat") {
		out["raid"] = textfile.Read("/proc/mdstat")
	} else {
		out["raid"] = "No RAID detected (mdstat not available)"
	}

	return out, nil
}
