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

package security

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/eraxe/sysdiag/pkg/probe/run"
	"github.com/eraxe/sysdiag/pkg/probe/textfile"
	"github.com/eraxe/sysdiag/pkg/registry"
)

var authLogPaths = []string{
	"/var/log/auth.log",
	"/var/log/secure",
}

// Info reports the firewall posture, mandatory access control state,
// pending security updates, and authentication log extracts. Requires
// root to read firewall rulesets and audit logs.
type Info struct {
	run *run.Runner
}

// NewInfo creates the security information probe.
func NewInfo(r *run.Runner) *Info {
	return &Info{run: r}
}

// Descriptor implements the probe contract.
func (p *Info) Descriptor() registry.Descriptor {
	return registry.Descriptor{
		ID:             "security_info",
		Title:          "Security Information",
		Category:       registry.CategorySecurity,
		RequiresRoot:   true,
		DefaultEnabled: false,
		Subsections: []string{
			"firewall_status",
			"selinux_apparmor",
			"security_updates",
			"auth_logs",
		},
	}
}

// Execute gathers the security subsections.
func (p *Info) Execute(ctx context.Context) (map[string]string, error) {
	slog.Debug("collecting security information")
	out := make(map[string]string, 4)

	out["firewall_status"] = p.firewallStatus(ctx)
	out["selinux_apparmor"] = p.mandatoryAccessControl(ctx)
	out["security_updates"] = p.securityUpdates(ctx)
	out["auth_logs"] = authLogs()

	return out, nil
}

func (p *Info) firewallStatus(ctx context.Context) string {
	iptables := p.run.Command(ctx, "iptables", "-L", "-n", "-v")
	firewalld := p.run.Command(ctx, "firewall-cmd", "--list-all")
	ufw := p.run.Command(ctx, "ufw", "status", "verbose")
	nftables := p.run.Command(ctx, "nft", "list", "ruleset")

	return fmt.Sprintf("Active Firewall: %s\n\niptables Rules:\n%s\n\nfirewalld Configuration:\n%s\n\nUFW Status:\n%s\n\nnftables Ruleset:\n%s",
		activeFirewall(iptables, firewalld, ufw, nftables),
		iptables, firewalld, ufw, nftables)
}

// activeFirewall decides which firewall actually governs the host:
// iptables only counts when some chain diverges from a bare ACCEPT policy.
func activeFirewall(iptables, firewalld, ufw, nftables string) string {
	usable := func(out string) bool {
		return strings.TrimSpace(out) != "" &&
			!strings.Contains(out, "Error") &&
			!strings.Contains(out, "Failed to run command")
	}

	defaultChains := iptables != "" &&
		strings.Contains(iptables, "Chain INPUT (policy ACCEPT)") &&
		strings.Contains(iptables, "Chain FORWARD (policy ACCEPT)") &&
		strings.Contains(iptables, "Chain OUTPUT (policy ACCEPT)")

	switch {
	case usable(iptables) && !defaultChains:
		return "iptables"
	case usable(firewalld) && !strings.Contains(firewalld, "not running"):
		return "firewalld"
	case usable(ufw) && strings.Contains(ufw, "Status: active"):
		return "ufw"
	case usable(nftables):
		return "nftables"
	default:
		return "Unknown/None"
	}
}

func (p *Info) mandatoryAccessControl(ctx context.Context) string {
	selinux := strings.TrimSpace(p.run.Command(ctx, "getenforce"))
	if strings.Contains(selinux, "Error") || strings.Contains(selinux, "Failed to run command") {
		selinux = textfile.Read("/sys/fs/selinux/enforce")
		if strings.HasPrefix(selinux, "File not found") {
			selinux = "SELinux not installed/enabled"
		}
	}

	selinuxDenials := "N/A"
	if selinux != "SELinux not installed/enabled" {
		selinuxDenials = p.run.CommandKeepLast(ctx, 20, "ausearch", "-m", "avc", "-ts", "today")
		if strings.Contains(selinuxDenials, "Error") ||
			strings.Contains(selinuxDenials, "Failed to run command") {
			selinuxDenials = p.run.ShellKeepLast(ctx, 20, "grep denied /var/log/audit/audit.log")
		}
	}

	apparmor := p.run.Command(ctx, "aa-status")
	if strings.Contains(apparmor, "Error") || strings.Contains(apparmor, "Failed to run command") {
		apparmor = textfile.Read("/sys/kernel/security/apparmor/profiles")
		if strings.HasPrefix(apparmor, "File not found") {
			apparmor = "AppArmor not installed/enabled"
		}
	}

	apparmorDenials := "N/A"
	if apparmor != "AppArmor not installed/enabled" {
		apparmorDenials = p.run.ShellKeepLast(ctx, 20,
			`grep 'apparmor="DENIED"' /var/log/syslog`)
		if strings.Contains(apparmorDenials, "Error") || strings.TrimSpace(apparmorDenials) == "" {
			apparmorDenials = p.run.ShellKeepLast(ctx, 20,
				`grep 'apparmor="DENIED"' /var/log/kern.log`)
		}
	}

	return fmt.Sprintf("SELinux Status:\n%s\n\nSELinux Denials:\n%s\n\nAppArmor Status:\n%s\n\nAppArmor Denials:\n%s",
		selinux, selinuxDenials, apparmor, apparmorDenials)
}

func (p *Info) securityUpdates(ctx context.Context) string {
	aptUpdates := p.run.CommandFiltered(ctx, func(line string) bool {
		return strings.Contains(strings.ToLower(line), "security")
	}, "apt", "list", "--upgradable")

	yumUpdates := p.run.Command(ctx, "yum", "list", "updates", "--security")

	lastUpdate := "Unknown"
	switch {
	case textfile.Exists("/var/log/apt/history.log"):
		history := textfile.Read("/var/log/apt/history.log", textfile.Filter(func(line string) bool {
			return strings.Contains(line, "Start-Date:") || strings.Contains(line, "Upgrade:")
		}))
		if strings.TrimSpace(history) != "" {
			lastUpdate = "Debian/Ubuntu: Last APT actions:\n" + history
		}
	case textfile.Exists("/var/log/yum.log"):
		history := textfile.Read("/var/log/yum.log", textfile.KeepLast(20))
		if strings.TrimSpace(history) != "" {
			lastUpdate = "Red Hat/CentOS: Last YUM actions:\n" + history
		}
	}

	return fmt.Sprintf("Available Security Updates (APT):\n%s\n\nAvailable Security Updates (YUM):\n%s\n\nLast Update Information:\n%s",
		aptUpdates, yumUpdates, lastUpdate)
}

func authLogs() string {
	failedLogins := firstAuthExtract(func(line string) bool {
		return strings.Contains(line, "Failed password") ||
			strings.Contains(line, "authentication failure") ||
			strings.Contains(line, "Invalid user")
	}, "No auth logs found")

	sudoUsage := firstAuthExtract(func(line string) bool {
		return strings.Contains(line, "sudo:")
	}, "No sudo logs found")

	unusual := firstAuthExtract(func(line string) bool {
		lower := strings.ToLower(line)
		flagged := strings.Contains(lower, "unrecognized") ||
			strings.Contains(lower, "invalid") ||
			strings.Contains(lower, "unauthorized") ||
			strings.Contains(lower, "not allowed")
		return flagged &&
			!strings.Contains(line, "Failed password") &&
			!strings.Contains(line, "authentication failure")
	}, "No unusual access patterns found")

	return fmt.Sprintf("Failed Login Attempts:\n%s\n\nSudo Usage:\n%s\n\nUnusual Access Patterns:\n%s",
		failedLogins, sudoUsage, unusual)
}

// firstAuthExtract returns the matching lines from the first auth log that
// yields any, or fallback when none do.
func firstAuthExtract(keep func(string) bool, fallback string) string {
	for _, path := range authLogPaths {
		if !textfile.Exists(path) {
			continue
		}
		content := textfile.Read(path, textfile.Filter(keep), textfile.KeepLast(20))
		if strings.TrimSpace(content) != "" {
			return content
		}
	}
	return fallback
}
