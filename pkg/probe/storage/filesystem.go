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

// Filesystem reports the filesystem table, live mounts, and UUID
// discrepancies between /etc/fstab and the devices the system sees.
type Filesystem struct {
	run *run.Runner
}

// NewFilesystem creates the filesystem table probe.
func NewFilesystem(r *run.Runner) *Filesystem {
	return &Filesystem{run: r}
}

// Descriptor implements the probe contract.
func (p *Filesystem) Descriptor() registry.Descriptor {
	return registry.Descriptor{
		ID:             "filesystem",
		Title:          "Filesystem Table & Mount Points",
		Category:       registry.CategoryStorage,
		DefaultEnabled: false,
		Subsections:    []string{"fstab", "mounts", "discrepancies"},
	}
}

// Execute gathers the filesystem subsections.
func (p *Filesystem) Execute(ctx context.Context) (map[string]string, error) {
	slog.Debug("collecting filesystem table and mounts")
	out := make(map[string]string, 3)

	fstab := textfile.Read("/etc/fstab")
	out["fstab"] = fstab

	mount := p.run.Command(ctx, "mount")
	findmnt := p.run.Command(ctx, "findmnt")
	out["mounts"] = fmt.Sprintf("Mount Output:\n%s\n\nFindmnt Output:\n%s", mount, findmnt)

	blkid := p.run.Command(ctx, "blkid")
	out["discrepancies"] = fstabDiscrepancies(fstab, blkid)

	return out, nil
}

// fstabDiscrepancies lists fstab UUID references that do not correspond
// to any device reported by blkid.
func fstabDiscrepancies(fstab, blkid string) string {
	known := make(map[string]struct{})
	for _, line := range strings.Split(blkid, "\n") {
		for _, field := range strings.Fields(line) {
			if uuid, ok := strings.CutPrefix(field, "UUID="); ok {
				known[strings.Trim(uuid, `"`)] = struct{}{}
			}
		}
	}

	var missing []string
	for _, line := range strings.Split(fstab, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		fields := strings.Fields(trimmed)
		for _, field := range fields {
			uuid, ok := strings.CutPrefix(field, "UUID=")
			if !ok {
				continue
			}
			uuid = strings.Trim(uuid, `"`)
			if _, found := known[uuid]; !found {
				mountPoint := "unknown"
				if len(fields) > 1 {
					mountPoint = fields[1]
				}
				missing = append(missing,
					fmt.Sprintf("UUID %s in fstab (mount: %s) not found in system devices.", uuid, mountPoint))
			}
		}
	}

	if len(missing) == 0 {
		return "No UUID discrepancies found."
	}
	return strings.Join(missing, "\n")
}
