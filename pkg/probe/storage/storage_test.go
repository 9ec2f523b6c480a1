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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eraxe/sysdiag/pkg/probe/run"
	"github.com/eraxe/sysdiag/pkg/registry"
)

func TestDescriptors(t *testing.T) {
	t.Parallel()

	r := run.New()

	tests := []struct {
		name         string
		descriptor   registry.Descriptor
		id           string
		requiresRoot bool
		subsections  int
	}{
		{"partition disk", NewPartitionDisk(r).Descriptor(), "partition_disk", true, 5},
		{"filesystem", NewFilesystem(r).Descriptor(), "filesystem", false, 3},
		{"io performance", NewIOPerformance(r).Descriptor(), "storage_io_performance", false, 4},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.NoError(t, tc.descriptor.Validate())
			assert.Equal(t, tc.id, tc.descriptor.ID)
			assert.Equal(t, registry.CategoryStorage, tc.descriptor.Category)
			assert.Equal(t, tc.requiresRoot, tc.descriptor.RequiresRoot)
			assert.Len(t, tc.descriptor.Subsections, tc.subsections)
		})
	}
}

func TestFstabDiscrepancies(t *testing.T) {
	t.Parallel()

	blkid := `/dev/sda1: UUID="aaaa-1111" TYPE="ext4"
/dev/sda2: UUID="bbbb-2222" TYPE="swap"`

	t.Run("all UUIDs present", func(t *testing.T) {
		t.Parallel()
		fstab := "UUID=aaaa-1111 / ext4 defaults 0 1\nUUID=bbbb-2222 none swap sw 0 0"
		assert.Equal(t, "No UUID discrepancies found.", fstabDiscrepancies(fstab, blkid))
	})

	t.Run("missing UUID flagged with mount point", func(t *testing.T) {
		t.Parallel()
		fstab := "UUID=cccc-3333 /data ext4 defaults 0 2"
		out := fstabDiscrepancies(fstab, blkid)
		assert.Contains(t, out, "cccc-3333")
		assert.Contains(t, out, "/data")
	})

	t.Run("comments ignored", func(t *testing.T) {
		t.Parallel()
		fstab := "# UUID=dddd-4444 /old ext4 defaults 0 2"
		assert.Equal(t, "No UUID discrepancies found.", fstabDiscrepancies(fstab, blkid))
	})
}

func TestFilesystemExecuteProducesDeclaredKeysOnly(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping probe execution against the live system")
	}

	p := NewFilesystem(run.New())
	out, err := p.Execute(context.Background())
	require.NoError(t, err)

	d := p.Descriptor()
	for key := range out {
		assert.True(t, d.HasSubsection(key), "undeclared subsection %q", key)
	}
}
