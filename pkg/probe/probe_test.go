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

package probe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eraxe/sysdiag/pkg/registry"
)

// canonicalOrder is the fixed report order of the full catalog.
var canonicalOrder = []string{
	"partition_disk",
	"filesystem",
	"storage_io_performance",
	"bootloader",
	"initramfs",
	"boot_parameters",
	"grub_boot_diagnostics",
	"kernel_logs",
	"hardware_info",
	"custom_scripts",
	"recovery_diagnostics",
	"system_service_status",
	"virtualization_container",
	"log_analysis",
	"package_management",
	"network_config",
	"security_info",
	"user_account",
}

func TestCatalogOrderAndIDs(t *testing.T) {
	probes := Catalog()
	require.Len(t, probes, len(canonicalOrder))

	for i, p := range probes {
		assert.Equal(t, canonicalOrder[i], p.Descriptor().ID)
	}
}

func TestCatalogDescriptorsAreValid(t *testing.T) {
	for _, p := range Catalog() {
		d := p.Descriptor()
		assert.NoError(t, d.Validate(), "module %s", d.ID)
		assert.False(t, d.DefaultEnabled, "module %s starts unchecked", d.ID)
		assert.NotEmpty(t, d.Subsections, "module %s", d.ID)
	}
}

func TestNewRegistryFromCatalog(t *testing.T) {
	probes := Catalog(WithCommandTimeout(5 * time.Second))
	reg, err := NewRegistry(probes)
	require.NoError(t, err)
	assert.Equal(t, len(probes), reg.Len())

	// Every registered module resolves to a probe.
	idx := Index(probes)
	for _, d := range reg.List() {
		_, ok := idx[d.ID]
		assert.True(t, ok, "module %s has no probe", d.ID)
	}
}

func TestCatalogCoversAllCategories(t *testing.T) {
	seen := make(map[registry.Category]bool)
	for _, p := range Catalog() {
		seen[p.Descriptor().Category] = true
	}
	for _, c := range registry.Categories() {
		assert.True(t, seen[c], "category %s has no modules", c)
	}
}
