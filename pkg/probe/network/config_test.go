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

package network

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eraxe/sysdiag/pkg/probe/run"
	"github.com/eraxe/sysdiag/pkg/registry"
)

func TestDescriptor(t *testing.T) {
	t.Parallel()

	d := NewConfig(run.New()).Descriptor()
	require.NoError(t, d.Validate())
	assert.Equal(t, "network_config", d.ID)
	assert.Equal(t, registry.CategoryNetwork, d.Category)
	assert.False(t, d.RequiresRoot)
	assert.Equal(t, []string{"interface_status", "routing_info", "dns_config", "network_services"},
		d.Subsections)
}

func TestInterfaceNames(t *testing.T) {
	t.Parallel()

	ipAddr := `1: lo: <LOOPBACK,UP,LOWER_UP> mtu 65536
    inet 127.0.0.1/8 scope host lo
2: eth0: <BROADCAST,MULTICAST,UP,LOWER_UP> mtu 1500
    inet 10.0.0.2/24 scope global eth0
3: veth1@if2: <BROADCAST,MULTICAST> mtu 1500`

	assert.Equal(t, []string{"eth0", "veth1"}, interfaceNames(ipAddr))
}

func TestInterfaceNamesEmptyInput(t *testing.T) {
	t.Parallel()

	assert.Empty(t, interfaceNames(""))
	assert.Empty(t, interfaceNames("Error: ip not found"))
}

func TestExecuteProducesDeclaredKeysOnly(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping probe execution against the live system")
	}

	p := NewConfig(run.New())
	out, err := p.Execute(context.Background())
	require.NoError(t, err)

	d := p.Descriptor()
	require.Len(t, out, len(d.Subsections))
	for key := range out {
		assert.True(t, d.HasSubsection(key), "undeclared subsection %q", key)
	}
}
