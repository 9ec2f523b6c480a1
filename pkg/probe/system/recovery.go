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

	"github.com/coreos/go-systemd/v22/dbus"

	"github.com/eraxe/sysdiag/pkg/probe/run"
	"github.com/eraxe/sysdiag/pkg/registry"
)

// RecoveryDiagnostics checks for traces of emergency or rescue boots and
// for units systemd has given up on. Requires root for the private systemd
// bus connection.
type RecoveryDiagnostics struct {
	run *run.Runner
}

// NewRecoveryDiagnostics creates the recovery and emergency probe.
func NewRecoveryDiagnostics(r *run.Runner) *RecoveryDiagnostics {
	return &RecoveryDiagnostics{run: r}
}

// Descriptor implements the probe contract.
func (p *RecoveryDiagnostics) Descriptor() registry.Descriptor {
	return registry.Descriptor{
		ID:             "recovery_diagnostics",
		Title:          "Recovery & Emergency Diagnostics",
		Category:       registry.CategorySystem,
		RequiresRoot:   true,
		DefaultEnabled: false,
		Subsections: []string{
			"rescue_log",
			"emergency_status",
			"systemd_errors",
		},
	}
}

// Execute gathers the recovery subsections.
func (p *RecoveryDiagnostics) Execute(ctx context.Context) (map[string]string, error) {
	slog.Debug("collecting recovery and emergency diagnostics")
	out := make(map[string]string, 3)

	rescue := p.run.CommandKeepLast(ctx, 20,
		"journalctl", "-b", "-o", "short", "-u", "emergency.service", "-u", "rescue.service")
	if strings.Contains(rescue, "No entries") {
		rescue = "No emergency or rescue mode logs found"
	}
	out["rescue_log"] = rescue

	out["emergency_status"] = "Failed Units:\n" + p.failedUnits(ctx)
	out["systemd_errors"] = p.run.CommandKeepLast(ctx, 20,
		"journalctl", "-p", "err..emerg", "-u", "systemd")

	return out, nil
}

// failedUnits asks systemd over the bus; when the connection is refused it
// degrades to the systemctl CLI so the subsection still reports something.
func (p *RecoveryDiagnostics) failedUnits(ctx context.Context) string {
	conn, err := dbus.NewSystemdConnectionContext(ctx)
	if err != nil {
		slog.Debug("systemd bus connection failed, falling back to systemctl", "error", err)
		return p.run.Command(ctx, "systemctl", "--failed")
	}
	defer conn.Close()

	units, err := conn.ListUnitsFilteredContext(ctx, []string{"failed"})
	if err != nil {
		return p.run.Command(ctx, "systemctl", "--failed")
	}
	return formatUnits(units)
}

func formatUnits(units []dbus.UnitStatus) string {
	if len(units) == 0 {
		return "0 loaded units listed."
	}
	var b strings.Builder
	for _, u := range units {
		fmt.Fprintf(&b, "%s %s %s %s %s\n",
			u.Name, u.LoadState, u.ActiveState, u.SubState, u.Description)
	}
	return strings.TrimRight(b.String(), "\n")
}
