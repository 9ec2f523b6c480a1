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

// Package checklist implements the interactive module selection screen.
//
// Modules are listed grouped by category with their subsections indented
// beneath them. Space toggles the row under the cursor, "a" toggles
// everything at once, enter confirms the selection, and q or escape
// cancels the run. The result is a selection.Picks for
// selection.Resolve to validate.
package checklist

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/eraxe/sysdiag/pkg/registry"
	"github.com/eraxe/sysdiag/pkg/selection"
)

// rowKind discriminates the three row types in the list.
type rowKind int

const (
	rowCategory rowKind = iota
	rowModule
	rowSubsection
)

// row is one rendered line. Category rows are headers the cursor
// skips over; module and subsection rows are toggleable.
type row struct {
	kind     rowKind
	label    string
	moduleID string
	subKey   string
	root     bool
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	categoryStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	cursorStyle   = lipgloss.NewStyle().Reverse(true)
	checkedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// Model is the bubbletea model for the checklist.
type Model struct {
	rows   []row
	cursor int
	offset int
	height int

	modules map[string]bool
	subs    map[string]map[string]bool

	confirmed bool
	canceled  bool

	keys KeyMap
	help help.Model
}

// New builds the checklist from the registry. When preCheckAll is set
// every row starts checked; otherwise each module starts at its
// DefaultEnabled capability, with all subsections checked.
func New(reg *registry.Registry, preCheckAll bool) Model {
	m := Model{
		modules: make(map[string]bool),
		subs:    make(map[string]map[string]bool),
		keys:    DefaultKeyMap,
		help:    help.New(),
		height:  24,
	}

	lastCategory := ""
	for _, d := range reg.List() {
		if c := string(d.Category); c != lastCategory {
			m.rows = append(m.rows, row{kind: rowCategory, label: strings.ToUpper(c)})
			lastCategory = c
		}
		m.rows = append(m.rows, row{
			kind:     rowModule,
			label:    d.Title,
			moduleID: d.ID,
			root:     d.RequiresRoot,
		})
		m.modules[d.ID] = preCheckAll || d.DefaultEnabled
		m.subs[d.ID] = make(map[string]bool, len(d.Subsections))
		for _, key := range d.Subsections {
			m.rows = append(m.rows, row{
				kind:     rowSubsection,
				label:    displayKey(key),
				moduleID: d.ID,
				subKey:   key,
			})
			m.subs[d.ID][key] = true
		}
	}
	m.cursor = m.firstSelectable()
	return m
}

// Result returns the collected picks and whether the user confirmed.
func (m Model) Result() (selection.Picks, bool) {
	return selection.Picks{Modules: m.modules, Subsections: m.subs}, m.confirmed
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		m.height = msg.Height
		m.scrollIntoView()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Up):
			m.move(-1)
		case key.Matches(msg, m.keys.Down):
			m.move(1)
		case key.Matches(msg, m.keys.Toggle):
			m.toggle()
		case key.Matches(msg, m.keys.All):
			m.toggleAll()
		case key.Matches(msg, m.keys.Confirm):
			m.confirmed = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Cancel):
			m.canceled = true
			return m, tea.Quit
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Linux System Diagnostic Tool — select modules to run"))
	b.WriteString("\n\n")

	visible := m.visibleRows()
	end := min(m.offset+visible, len(m.rows))
	for i := m.offset; i < end; i++ {
		b.WriteString(m.renderRow(i))
		b.WriteByte('\n')
	}

	b.WriteByte('\n')
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) renderRow(i int) string {
	r := m.rows[i]
	if r.kind == rowCategory {
		return categoryStyle.Render(r.label)
	}

	checked := false
	indent := "  "
	switch r.kind {
	case rowModule:
		checked = m.modules[r.moduleID]
	case rowSubsection:
		checked = m.subs[r.moduleID][r.subKey]
		indent = "      "
	}

	box := "[ ]"
	style := dimStyle
	if checked {
		box = "[x]"
		style = checkedStyle
	}

	line := indent + style.Render(box) + " " + r.label
	if r.root {
		line += dimStyle.Render(" (requires root)")
	}
	if i == m.cursor {
		return cursorStyle.Render(line)
	}
	return line
}

// move advances the cursor past category headers in the given direction.
func (m *Model) move(delta int) {
	for i := m.cursor + delta; i >= 0 && i < len(m.rows); i += delta {
		if m.rows[i].kind != rowCategory {
			m.cursor = i
			break
		}
	}
	m.scrollIntoView()
}

func (m *Model) toggle() {
	r := m.rows[m.cursor]
	switch r.kind {
	case rowModule:
		m.modules[r.moduleID] = !m.modules[r.moduleID]
	case rowSubsection:
		m.subs[r.moduleID][r.subKey] = !m.subs[r.moduleID][r.subKey]
	}
}

// toggleAll checks every row, or unchecks every row when everything is
// already checked.
func (m *Model) toggleAll() {
	target := false
	for _, enabled := range m.modules {
		if !enabled {
			target = true
			break
		}
	}
	if !target {
		for _, keys := range m.subs {
			for _, enabled := range keys {
				if !enabled {
					target = true
					break
				}
			}
		}
	}

	for id := range m.modules {
		m.modules[id] = target
	}
	for _, keys := range m.subs {
		for key := range keys {
			keys[key] = target
		}
	}
}

func (m *Model) firstSelectable() int {
	for i, r := range m.rows {
		if r.kind != rowCategory {
			return i
		}
	}
	return 0
}

// visibleRows is the list viewport height: total height minus the
// title block and help bar.
func (m Model) visibleRows() int {
	v := m.height - 4
	if v < 1 {
		v = 1
	}
	return v
}

func (m *Model) scrollIntoView() {
	visible := m.visibleRows()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+visible {
		m.offset = m.cursor - visible + 1
	}
}

// displayKey formats a subsection key for listing.
func displayKey(key string) string {
	return strings.ReplaceAll(key, "_", " ")
}

// Run presents the checklist on the terminal and blocks until the user
// confirms or cancels. The returned bool is false when the user
// canceled.
func Run(reg *registry.Registry, preCheckAll bool) (selection.Picks, bool, error) {
	p := tea.NewProgram(New(reg, preCheckAll), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return selection.Picks{}, false, err
	}
	picks, confirmed := final.(Model).Result()
	return picks, confirmed, nil
}
