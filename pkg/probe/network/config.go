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
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/eraxe/sysdiag/pkg/probe/run"
	"github.com/eraxe/sysdiag/pkg/probe/textfile"
	"github.com/eraxe/sysdiag/pkg/registry"
)

var interfacePattern = regexp.MustCompile(`^\d+:\s+([^:@]+)`)

// Config reports interface state, routing, DNS configuration, and the
// network-facing services of the host.
type Config struct {
	run *run.Runner
}

// NewConfig creates the network configuration probe.
func NewConfig(r *run.Runner) *Config {
	return &Config{run: r}
}

// Descriptor implements the probe contract.
func (p *Config) Descriptor() registry.Descriptor {
	return registry.Descriptor{
		ID:             "network_config",
		Title:          "Network Configuration",
		Category:       registry.CategoryNetwork,
		DefaultEnabled: false,
		Subsections: []string{
			"interface_status",
			"routing_info",
			"dns_config",
			"network_services",
		},
	}
}

// Execute gathers the network subsections.
func (p *Config) Execute(ctx context.Context) (map[string]string, error) {
	slog.Debug("collecting network configuration")
	out := make(map[string]string, 4)

	out["interface_status"] = p.interfaceStatus(ctx)
	out["routing_info"] = p.routingInfo(ctx)
	out["dns_config"] = p.dnsConfig(ctx)
	out["network_services"] = p.networkServices(ctx)

	return out, nil
}

func (p *Config) interfaceStatus(ctx context.Context) string {
	ipAddr := p.run.Command(ctx, "ip", "addr")
	ipStats := p.run.Command(ctx, "ip", "-s", "link")

	var links []string
	for _, iface := range interfaceNames(ipAddr) {
		ethtool := p.run.Command(ctx, "ethtool", iface)
		if strings.Contains(ethtool, "Error") || strings.Contains(ethtool, "Failed to run command") {
			continue
		}
		links = append(links, fmt.Sprintf("=== Interface %s ===\n%s", iface, ethtool))
	}

	return fmt.Sprintf("Network Interfaces:\n%s\n\nInterface Statistics:\n%s\n\nLink Status and Speed:\n%s",
		ipAddr, ipStats, strings.Join(links, "\n"))
}

// interfaceNames extracts non-loopback interface names from ip addr output.
func interfaceNames(ipAddr string) []string {
	var names []string
	for _, line := range strings.Split(ipAddr, "\n") {
		match := interfacePattern.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		name := strings.TrimSpace(match[1])
		if name != "lo" {
			names = append(names, name)
		}
	}
	return names
}

func (p *Config) routingInfo(ctx context.Context) string {
	table := p.run.Command(ctx, "ip", "route")
	gateway := p.run.Command(ctx, "ip", "route", "show", "default")
	all := p.run.Command(ctx, "ip", "route", "show", "table", "all")

	return fmt.Sprintf("Routing Table:\n%s\n\nDefault Gateway:\n%s\n\nAll Routing Tables:\n%s",
		table, gateway, all)
}

func (p *Config) dnsConfig(ctx context.Context) string {
	resolvConf := textfile.Read("/etc/resolv.conf")
	resolved := p.run.Command(ctx, "resolvectl", "status")
	if strings.Contains(resolved, "Failed to run command") {
		resolved = p.run.Command(ctx, "systemd-resolve", "--status")
	}

	dnsTest := p.run.Command(ctx, "dig", "google.com", "+short")
	if strings.Contains(dnsTest, "Error") || strings.Contains(dnsTest, "Failed to run command") {
		dnsTest = p.run.Command(ctx, "nslookup", "google.com")
	}

	hosts := textfile.Read("/etc/hosts")

	return fmt.Sprintf("Resolver Configuration:\n%s\n\nSystemd-resolved Status:\n%s\n\nDNS Resolution Test:\n%s\n\nHosts File:\n%s",
		resolvConf, resolved, dnsTest, hosts)
}

func (p *Config) networkServices(ctx context.Context) string {
	listening := p.run.Command(ctx, "ss", "-tuln")

	services := p.run.CommandFiltered(ctx, func(line string) bool {
		lower := strings.ToLower(line)
		for _, term := range []string{"network", "firewall", "ssh", "http", "ftp", "dns", "dhcp", "proxy"} {
			if strings.Contains(lower, term) {
				return true
			}
		}
		return false
	}, "systemctl", "list-units", "--type=service", "--state=active")

	established := p.run.Command(ctx, "ss", "-tu", "state", "established")

	return fmt.Sprintf("Listening Ports:\n%s\n\nActive Network Services:\n%s\n\nActive Connections:\n%s",
		listening, services, established)
}
