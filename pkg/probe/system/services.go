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

// ServiceStatus reports failed systemd units with their detail, critical
// service log extracts, and the active target topology.
type ServiceStatus struct {
	run *run.Runner
}

// NewServiceStatus creates the systemd service status probe.
func NewServiceStatus(r *run.Runner) *ServiceStatus {
	return &ServiceStatus{run: r}
}

// Descriptor implements the probe contract.
func (p *ServiceStatus) Descriptor() registry.Descriptor {
	return registry.Descriptor{
		ID:             "system_service_status",
		Title:          "System Service Status",
		Category:       registry.CategorySystem,
		DefaultEnabled: false,
		Subsections: []string{
			"systemd_unit_status",
			"service_logs",
			"system_targets",
		},
	}
}

// Execute gathers the service status subsections.
func (p *ServiceStatus) Execute(ctx context.Context) (map[string]string, error) {
	slog.Debug("collecting systemd service status")
	out := make(map[string]string, 3)

	out["systemd_unit_status"] = p.unitStatus(ctx)
	out["service_logs"] = p.serviceLogs(ctx)
	out["system_targets"] = p.systemTargets(ctx)

	return out, nil
}

func (p *ServiceStatus) unitStatus(ctx context.Context) string {
	failed, names := p.failedUnits(ctx)

	problematic := "No failed services found"
	if len(names) > 0 {
		var details []string
		for _, name := range names {
			status := p.run.Command(ctx, "systemctl", "status", name)
			details = append(details, fmt.Sprintf("=== %s ===\n%s", name, status))
		}
		problematic = strings.Join(details, "\n\n")
	}

	deps := p.run.CommandFiltered(ctx, func(line string) bool {
		return strings.Contains(line, "●")
	}, "systemctl", "list-dependencies", "multi-user.target")

	return fmt.Sprintf("Failed Units:\n%s\n\nProblematic Services:\n%s\n\nService Dependencies:\n%s",
		failed, problematic, deps)
}

// failedUnits returns the formatted failed-unit table and the unit names,
// preferring the systemd bus and falling back to systemctl parsing.
func (p *ServiceStatus) failedUnits(ctx context.Context) (string, []string) {
	if conn, err := dbus.NewWithContext(ctx); err == nil {
		defer conn.Close()
		units, err := conn.ListUnitsFilteredContext(ctx, []string{"failed"})
		if err == nil {
			names := make([]string, 0, len(units))
			for _, u := range units {
				names = append(names, u.Name)
			}
			return formatUnits(units), names
		}
	} else {
		slog.Debug("systemd bus unavailable, parsing systemctl output", "error", err)
	}

	table := p.run.Command(ctx, "systemctl", "--failed")
	var names []string
	if !strings.Contains(table, "0 loaded units listed") {
		for _, line := range strings.Split(table, "\n") {
			if strings.Contains(line, "UNIT") || strings.Contains(line, "LOAD") ||
				strings.Contains(line, "●") || strings.TrimSpace(line) == "" {
				continue
			}
			fields := strings.Fields(line)
			if len(fields) > 0 && strings.Contains(fields[0], ".") {
				names = append(names, fields[0])
			}
		}
	}
	return table, names
}

func (p *ServiceStatus) serviceLogs(ctx context.Context) string {
	critical := p.run.CommandKeepLast(ctx, 30,
		"journalctl", "-p", "err..emerg", "--since", "today")

	startup := p.run.ShellKeepLast(ctx, 20,
		"journalctl -b -p info..err -u systemd | grep -E 'Starting|Started|Failed'")

	resources := p.run.CommandKeepLast(ctx, 20, "systemd-cgtop", "-n", "1")

	return fmt.Sprintf("Critical Service Errors:\n%s\n\nService Startup Sequences:\n%s\n\nService Resource Usage:\n%s",
		critical, startup, resources)
}

func (p *ServiceStatus) systemTargets(ctx context.Context) string {
	active := p.run.Command(ctx, "systemctl", "list-units", "--type=target")
	defaultTarget := p.run.Command(ctx, "systemctl", "get-default")
	deps := p.run.Command(ctx, "systemctl", "list-dependencies", "default.target")

	return fmt.Sprintf("Active Targets:\n%s\n\nDefault Target:\n%s\n\nTarget Dependencies:\n%s",
		active, defaultTarget, deps)
}
