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

package checklist

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eraxe/sysdiag/pkg/registry"
	"github.com/eraxe/sysdiag/pkg/selection"
)

func testRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg, err := registry.New(
		registry.Descriptor{
			ID:             "partition_disk",
			Title:          "Partition & Disk Layout",
			Category:       registry.CategoryStorage,
			RequiresRoot:   true,
			DefaultEnabled: true,
			Subsections:    []string{"lsblk", "fdisk"},
		},
		registry.Descriptor{
			ID:          "network_config",
			Title:       "Network Configuration",
			Category:    registry.CategoryNetwork,
			Subsections: []string{"interface_status"},
		},
	)
	require.NoError(t, err)
	return reg
}

func keyPress(m Model, k string) Model {
	var msg tea.KeyMsg
	switch k {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case " ":
		msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestNewSeedsDefaults(t *testing.T) {
	m := New(testRegistry(t), false)

	picks, confirmed := m.Result()
	assert.False(t, confirmed)
	assert.True(t, picks.Modules["partition_disk"])
	assert.False(t, picks.Modules["network_config"])
	assert.True(t, picks.Subsections["partition_disk"]["lsblk"])
	assert.True(t, picks.Subsections["partition_disk"]["fdisk"])
	assert.True(t, picks.Subsections["network_config"]["interface_status"])
}

func TestPreCheckAllOverridesDefaults(t *testing.T) {
	plain, _ := New(testRegistry(t), false).Result()
	all, _ := New(testRegistry(t), true).Result()

	assert.False(t, plain.Modules["network_config"])
	assert.True(t, all.Modules["network_config"])
	assert.NotEqual(t, plain.Modules, all.Modules)
}

func TestCursorSkipsCategoryHeaders(t *testing.T) {
	m := New(testRegistry(t), false)
	assert.Equal(t, rowModule, m.rows[m.cursor].kind)

	// Walk down past the last storage subsection; the network category
	// header must be skipped.
	for range 3 {
		m = keyPress(m, "j")
	}
	assert.Equal(t, rowModule, m.rows[m.cursor].kind)
	assert.Equal(t, "network_config", m.rows[m.cursor].moduleID)
}

func TestToggleModuleAndSubsection(t *testing.T) {
	m := New(testRegistry(t), false)

	m = keyPress(m, " ")
	picks, _ := m.Result()
	assert.False(t, picks.Modules["partition_disk"])

	m = keyPress(m, "j") // lsblk row
	m = keyPress(m, " ")
	picks, _ = m.Result()
	assert.False(t, picks.Subsections["partition_disk"]["lsblk"])
	assert.True(t, picks.Subsections["partition_disk"]["fdisk"])
}

func TestToggleAllFlipsEverything(t *testing.T) {
	m := New(testRegistry(t), true)

	// Everything starts checked, so "a" unchecks it all.
	m = keyPress(m, "a")
	picks, _ := m.Result()
	assert.False(t, picks.Modules["partition_disk"])
	assert.False(t, picks.Subsections["network_config"]["interface_status"])

	m = keyPress(m, "a")
	picks, _ = m.Result()
	assert.True(t, picks.Modules["partition_disk"])
	assert.True(t, picks.Subsections["network_config"]["interface_status"])
}

func TestConfirmAndCancel(t *testing.T) {
	m := keyPress(New(testRegistry(t), false), "enter")
	_, confirmed := m.Result()
	assert.True(t, confirmed)

	m = keyPress(New(testRegistry(t), false), "esc")
	_, confirmed = m.Result()
	assert.False(t, confirmed)
	assert.True(t, m.canceled)
}

func TestResultResolvesAgainstRegistry(t *testing.T) {
	reg := testRegistry(t)
	m := New(reg, false)
	m = keyPress(m, "j") // lsblk
	m = keyPress(m, " ") // disable it
	m = keyPress(m, "j") // fdisk
	m = keyPress(m, "j") // network_config
	m = keyPress(m, " ") // enable it
	m = keyPress(m, "enter")

	picks, confirmed := m.Result()
	require.True(t, confirmed)

	state, err := selection.Resolve(reg, picks)
	require.NoError(t, err)
	assert.Equal(t, []string{"partition_disk", "network_config"}, state.Modules())
	assert.Equal(t, []string{"fdisk"}, state.Subsections("partition_disk"))
}
