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
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/eraxe/sysdiag/pkg/probe/run"
	"github.com/eraxe/sysdiag/pkg/probe/textfile"
	"github.com/eraxe/sysdiag/pkg/registry"
)

var errorMessagePattern = regexp.MustCompile(`(?i)error:?\s*([^:]+)`)

// LogAnalysis consolidates recent critical errors across the journal,
// verifies log rotation hygiene, and scans for recurring failures and
// resource exhaustion.
type LogAnalysis struct {
	run *run.Runner
}

// NewLogAnalysis creates the log analysis probe.
func NewLogAnalysis(r *run.Runner) *LogAnalysis {
	return &LogAnalysis{run: r}
}

// Descriptor implements the probe contract.
func (p *LogAnalysis) Descriptor() registry.Descriptor {
	return registry.Descriptor{
		ID:             "log_analysis",
		Title:          "Log Analysis & Monitoring",
		Category:       registry.CategorySystem,
		DefaultEnabled: false,
		Subsections: []string{
			"consolidated_errors",
			"log_rotation",
			"system_monitoring",
		},
	}
}

// Execute gathers the log analysis subsections.
func (p *LogAnalysis) Execute(ctx context.Context) (map[string]string, error) {
	slog.Debug("collecting log analysis")
	out := make(map[string]string, 3)

	out["consolidated_errors"] = p.consolidatedErrors(ctx)
	out["log_rotation"] = p.logRotation(ctx)
	out["system_monitoring"] = p.systemMonitoring(ctx)

	return out, nil
}

func (p *LogAnalysis) consolidatedErrors(ctx context.Context) string {
	critical := p.run.CommandKeepLast(ctx, 30,
		"journalctl", "-p", "err..emerg", "--since", "yesterday")

	correlated := p.run.ShellKeepLast(ctx, 20,
		"journalctl -p notice..emerg --since yesterday | grep -iE 'start|stop|restart|reload|shutdown|boot' | grep -iE 'network|firewall|service|daemon|system'")

	return fmt.Sprintf("Critical Errors (last 24h):\n%s\n\n%s\nPotentially Correlated Events:\n%s",
		critical, errorPatternSummary(critical), correlated)
}

// errorPatternSummary ranks the distinct error message prefixes found in
// the journal extract.
func errorPatternSummary(journal string) string {
	counts := make(map[string]int)
	for _, line := range strings.Split(journal, "\n") {
		match := errorMessagePattern.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		counts[strings.TrimSpace(match[1])]++
	}

	type pattern struct {
		message string
		count   int
	}
	ranked := make([]pattern, 0, len(counts))
	for message, count := range counts {
		ranked = append(ranked, pattern{message, count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].message < ranked[j].message
	})

	var b strings.Builder
	b.WriteString("Common Error Patterns:\n")
	for i, pat := range ranked {
		if i == 10 {
			break
		}
		fmt.Fprintf(&b, "%s: %d occurrences\n", pat.message, pat.count)
	}
	return b.String()
}

func (p *LogAnalysis) logRotation(ctx context.Context) string {
	nonComment := func(line string) bool {
		return !strings.HasPrefix(line, "#") && strings.TrimSpace(line) != ""
	}

	config := "Log Rotation Configuration:\n\n/etc/logrotate.conf:\n" +
		textfile.Read("/etc/logrotate.conf", textfile.Filter(nonComment)) + "\n"

	if entries, err := os.ReadDir("/etc/logrotate.d"); err == nil {
		shown := 0
		for _, entry := range entries {
			if shown == 5 {
				break
			}
			if entry.IsDir() {
				continue
			}
			path := filepath.Join("/etc/logrotate.d", entry.Name())
			config += fmt.Sprintf("\n%s:\n%s", path, textfile.Read(path, textfile.Filter(nonComment)))
			shown++
		}
	}

	bigLogs := p.run.Command(ctx, "find", "/var/log", "-type", "f", "-size", "+100M",
		"-exec", "ls", "-lh", "{}", ";")
	logSpace := p.run.Command(ctx, "du", "-sh", "/var/log")
	journalSize := p.run.Command(ctx, "journalctl", "--disk-usage")

	return fmt.Sprintf("%s\n\nOversized Logs (>100MB):\n%s\n\nLog Directory Size:\n%s\n\nJournal Size:\n%s",
		config, bigLogs, logSpace, journalSize)
}

func (p *LogAnalysis) systemMonitoring(ctx context.Context) string {
	uptime := p.run.Command(ctx, "uptime")
	reboots := p.run.CommandKeepLast(ctx, 10, "last", "reboot")

	recurring := p.run.ShellKeepLast(ctx, 20,
		"journalctl --since '1 week ago' | grep -iE 'error|fail|critical' | grep -iE 'crash|killed|terminated|core dumped|segfault'")

	exhaustion := p.run.ShellKeepLast(ctx, 20,
		"journalctl --since '1 week ago' | grep -iE 'out of memory|no space|disk full|cannot allocate|too many open files'")

	return fmt.Sprintf("System Uptime:\n%s\n\nReboot History:\n%s\n\nRecurring Critical Issues:\n%s\n\nResource Exhaustion Events:\n%s",
		uptime, reboots, recurring, exhaustion)
}
