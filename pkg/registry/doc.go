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

// Package registry provides the static ordered catalog of diagnostic
// module descriptors.
//
// # Overview
//
// The registry is built once at process start from the probe catalog and
// is read-only thereafter. Registration order is the canonical report
// order: the runner, the result tree, and every renderer preserve it, so
// the final report layout never depends on execution scheduling.
//
// # Usage
//
//	reg, err := registry.New(
//	    registry.Descriptor{
//	        ID:          "partition_disk",
//	        Title:       "Partition & Disk Layout",
//	        Category:    registry.CategoryStorage,
//	        RequiresRoot: true,
//	        Subsections: []string{"lsblk", "fdisk", "blkid", "lvm", "raid"},
//	    },
//	    // ...
//	)
//	if err != nil {
//	    return err
//	}
//
//	for _, d := range reg.List() {
//	    fmt.Println(d.ID, d.Title)
//	}
//
// Get returns a NOT_FOUND structured error for unknown IDs; Capabilities
// exposes the privilege requirement and default checklist state without
// handing out the full descriptor.
package registry
