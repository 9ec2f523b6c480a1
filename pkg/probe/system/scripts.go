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
	"strings"

	"github.com/eraxe/sysdiag/pkg/probe/run"
	"github.com/eraxe/sysdiag/pkg/probe/textfile"
	"github.com/eraxe/sysdiag/pkg/registry"
)

var rcLocations = []string{
	"/etc/rc.local",
	"/etc/rc.d/",
	"/etc/init.d/",
	"/etc/systemd/system/",
}

// CustomScripts inventories locally-added startup scripts, system-wide
// environment settings, and crontabs.
type CustomScripts struct {
	run *run.Runner
}

// NewCustomScripts creates the custom scripts and environment probe.
func NewCustomScripts(r *run.Runner) *CustomScripts {
	return &CustomScripts{run: r}
}

// Descriptor implements the probe contract.
func (p *CustomScripts) Descriptor() registry.Descriptor {
	return registry.Descriptor{
		ID:             "custom_scripts",
		Title:          "Custom Scripts & Environmental Variables",
		Category:       registry.CategorySystem,
		DefaultEnabled: false,
		Subsections: []string{
			"rc_scripts",
			"env_vars",
			"crontabs",
		},
	}
}

// Execute gathers the custom scripts subsections.
func (p *CustomScripts) Execute(ctx context.Context) (map[string]string, error) {
	slog.Debug("collecting custom scripts and environment settings")
	out := make(map[string]string, 3)

	out["rc_scripts"] = rcScripts()
	out["env_vars"] = p.envVars(ctx)
	out["crontabs"] = fmt.Sprintf("System Crontab:\n%s\n\nUser Crontabs:\n%s",
		textfile.Read("/etc/crontab"),
		p.run.Command(ctx, "ls", "-la", "/var/spool/cron/"))

	return out, nil
}

func rcScripts() string {
	var findings []string

	for _, location := range rcLocations {
		info, err := os.Stat(location)
		if err != nil {
			continue
		}

		if !info.IsDir() {
			content := textfile.Read(location, textfile.KeepLast(20))
			findings = append(findings, fmt.Sprintf("Content of %s:\n%s", location, content))
			continue
		}

		entries, err := os.ReadDir(location)
		if err != nil {
			findings = append(findings, fmt.Sprintf("Error listing %s: %v", location, err))
			continue
		}

		var custom []string
		for _, entry := range entries {
			name := entry.Name()
			if strings.HasPrefix(name, "README") || strings.HasPrefix(name, ".") {
				continue
			}
			switch name {
			case "multi-user.target", "default.target", "sysinit.target":
				continue
			}
			custom = append(custom, name)
		}
		if len(custom) == 0 {
			continue
		}

		findings = append(findings,
			fmt.Sprintf("Custom files in %s:\n%s", location, strings.Join(custom, "\n")))

		sampled := 0
		for _, name := range custom {
			if sampled == 5 {
				break
			}
			path := filepath.Join(location, name)
			fi, err := os.Stat(path)
			if err != nil || fi.IsDir() {
				continue
			}
			findings = append(findings,
				fmt.Sprintf("Sample from %s:\n%s\n", path, textfile.Read(path, textfile.KeepLast(10))))
			sampled++
		}
	}

	if len(findings) == 0 {
		return "No custom startup scripts found"
	}
	return strings.Join(findings, "\n\n")
}

func (p *CustomScripts) envVars(ctx context.Context) string {
	assignment := func(line string) bool {
		trimmed := strings.TrimSpace(line)
		return !strings.HasPrefix(trimmed, "#") && strings.Contains(line, "=")
	}

	var findings []string

	for _, location := range []string{"/etc/environment", "/etc/profile"} {
		if !textfile.Exists(location) {
			continue
		}
		content := textfile.Read(location, textfile.Filter(assignment))
		if strings.TrimSpace(content) != "" {
			findings = append(findings,
				fmt.Sprintf("Environment settings in %s:\n%s", location, content))
		}
	}

	if entries, err := os.ReadDir("/etc/profile.d"); err == nil {
		var contents []string
		for _, entry := range entries {
			if !strings.HasSuffix(entry.Name(), ".sh") {
				continue
			}
			path := filepath.Join("/etc/profile.d", entry.Name())
			content := textfile.Read(path, textfile.Filter(assignment))
			if strings.TrimSpace(content) != "" {
				contents = append(contents, fmt.Sprintf("=== %s ===\n%s", entry.Name(), content))
			}
		}
		if len(contents) > 0 {
			findings = append(findings,
				"Environment files in /etc/profile.d/:\n"+strings.Join(contents, "\n"))
		}
	}

	current := p.run.CommandFiltered(ctx, func(line string) bool {
		for _, v := range []string{"PATH", "LD_LIBRARY", "HOME", "USER", "SHELL", "TERM"} {
			if strings.Contains(line, v) {
				return true
			}
		}
		return false
	}, "env")
	findings = append(findings, "Current environment variables:\n"+current)

	return strings.Join(findings, "\n\n")
}
