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

// packageManager identifies the host's package tooling family.
type packageManager string

const (
	pmAPT     packageManager = "apt"
	pmDNF     packageManager = "dnf"
	pmYum     packageManager = "yum"
	pmPacman  packageManager = "pacman"
	pmUnknown packageManager = "unknown"
)

const pmUnknownMessage = "Unable to determine package manager type"

// detectPackageManager probes the filesystem the same way across distros:
// dpkg implies the apt family, rpm implies dnf or yum, pacman is Arch.
func detectPackageManager() packageManager {
	exists := func(names ...string) bool {
		for _, n := range names {
			if textfile.Exists(n) {
				return true
			}
		}
		return false
	}

	switch {
	case exists("/usr/bin/dpkg", "/bin/dpkg"):
		return pmAPT
	case exists("/usr/bin/rpm", "/bin/rpm"):
		if exists("/usr/bin/dnf", "/bin/dnf") {
			return pmDNF
		}
		return pmYum
	case exists("/usr/bin/pacman", "/bin/pacman"):
		return pmPacman
	default:
		return pmUnknown
	}
}

// PackageManagement audits the installed package base, dependency and
// integrity state, transaction history, and repository health for whichever
// package manager the host runs.
type PackageManagement struct {
	run *run.Runner

	// detect is swappable for tests.
	detect func() packageManager
}

// NewPackageManagement creates the package management probe.
func NewPackageManagement(r *run.Runner) *PackageManagement {
	return &PackageManagement{run: r, detect: detectPackageManager}
}

// Descriptor implements the probe contract.
func (p *PackageManagement) Descriptor() registry.Descriptor {
	return registry.Descriptor{
		ID:             "package_management",
		Title:          "Package Management",
		Category:       registry.CategorySystem,
		DefaultEnabled: false,
		Subsections: []string{
			"package_status",
			"package_dependencies",
			"package_history",
			"repository_health",
		},
	}
}

// Execute gathers the package management subsections.
func (p *PackageManagement) Execute(ctx context.Context) (map[string]string, error) {
	pm := p.detect()
	slog.Debug("collecting package management diagnostics", "manager", string(pm))

	out := make(map[string]string, 4)
	out["package_status"] = p.status(ctx, pm)
	out["package_dependencies"] = p.dependencies(ctx, pm)
	out["package_history"] = p.history(pm)
	out["repository_health"] = p.repositoryHealth(ctx, pm)
	return out, nil
}

func (p *PackageManagement) status(ctx context.Context, pm packageManager) string {
	var installed, pending, repos string

	switch pm {
	case pmAPT:
		installed = p.run.ShellKeepLast(ctx, 20,
			`dpkg-query -W -f='${Status} ${Package} ${Version}\n' | grep 'install ok installed'`)
		pending = p.run.CommandKeepLast(ctx, 20, "apt", "list", "--upgradable")
		repos = textfile.Read("/etc/apt/sources.list", textfile.Filter(nonCommentLine))
		repos += repoDropIns("/etc/apt/sources.list.d", ".list")
	case pmDNF, pmYum:
		installed = p.run.CommandKeepLast(ctx, 20, string(pm), "list", "installed")
		pending = p.run.CommandKeepLast(ctx, 20, string(pm), "check-update")
		repos = p.run.Command(ctx, string(pm), "repolist", "-v")
		repos += repoDropIns("/etc/yum.repos.d", ".repo")
	case pmPacman:
		installed = p.run.CommandKeepLast(ctx, 20, "pacman", "-Q")
		pending = p.run.CommandKeepLast(ctx, 20, "pacman", "-Qu")
		repos = textfile.Read("/etc/pacman.conf", textfile.Filter(nonCommentLine))
		repos += repoDropIns("/etc/pacman.d", "")
	default:
		installed, pending, repos = pmUnknownMessage, pmUnknownMessage, pmUnknownMessage
	}

	return fmt.Sprintf("Package Manager: %s\n\nInstalled Packages (sample):\n%s\n\nPending Updates:\n%s\n\nRepository Configuration:\n%s",
		pm, installed, pending, repos)
}

func (p *PackageManagement) dependencies(ctx context.Context, pm packageManager) string {
	var deps, integrity, orphans string

	switch pm {
	case pmAPT:
		deps = orDefault(p.run.Command(ctx, "apt", "check"), "No broken dependencies found")
		integrity = p.run.Command(ctx, "debsums", "-s")
		if strings.Contains(integrity, "Failed to run command") {
			integrity = "debsums not installed"
		} else if strings.TrimSpace(integrity) == "" {
			integrity = "No package integrity issues found"
		}
		orphans = orDefault(p.run.CommandFiltered(ctx, func(line string) bool {
			return strings.Contains(line, "would be removed") ||
				strings.Contains(line, "The following packages will be REMOVED")
		}, "apt-get", "autoremove", "--dry-run"), "No orphaned packages found")
	case pmDNF, pmYum:
		deps = orDefault(p.run.Command(ctx, string(pm), "check"), "No broken dependencies found")
		integrity = orDefault(p.run.CommandKeepLast(ctx, 20, string(pm), "verify"),
			"No package integrity issues found")
		orphans = orDefault(p.run.CommandFiltered(ctx, func(line string) bool {
			return strings.Contains(line, "will be removed") || strings.Contains(line, "Removing:")
		}, string(pm), "autoremove", "--dry-run"), "No orphaned packages found")
	case pmPacman:
		deps = orDefault(p.run.Command(ctx, "pacman", "-Dk"), "No broken dependencies found")
		integrity = orDefault(p.run.CommandFiltered(ctx, func(line string) bool {
			return !strings.Contains(line, "0 missing") && strings.TrimSpace(line) != ""
		}, "pacman", "-Qk"), "No package integrity issues found")
		orphans = orDefault(p.run.CommandKeepLast(ctx, 20, "pacman", "-Qtd"),
			"No orphaned packages found")
	default:
		deps, integrity, orphans = pmUnknownMessage, pmUnknownMessage, pmUnknownMessage
	}

	return fmt.Sprintf("Dependency Check:\n%s\n\nPackage Integrity:\n%s\n\nOrphaned Packages:\n%s",
		deps, integrity, orphans)
}

func (p *PackageManagement) history(pm packageManager) string {
	var installs, upgrades, failures string

	switch pm {
	case pmAPT:
		installs = historyExtract("/var/log/apt/history.log", "Install:", "APT history log not found")
		upgrades = historyExtract("/var/log/apt/history.log", "Upgrade:", "APT history log not found")
		failures = historyExtract("/var/log/apt/term.log", "rror", "APT term log not found")
	case pmDNF, pmYum:
		log := firstExisting("/var/log/yum.log", "/var/log/dnf.log")
		missing := fmt.Sprintf("%s log not found", pm)
		installs = historyExtract(log, "Installed", missing)
		upgrades = historyExtract(log, "Upgraded", missing)
		failures = historyExtract(log, "rror", missing)
	case pmPacman:
		installs = historyExtract("/var/log/pacman.log", "installed", "Pacman log not found")
		upgrades = historyExtract("/var/log/pacman.log", "upgraded", "Pacman log not found")
		failures = historyExtract("/var/log/pacman.log", "error", "Pacman log not found")
	default:
		installs, upgrades, failures = pmUnknownMessage, pmUnknownMessage, pmUnknownMessage
	}

	return fmt.Sprintf("Recently Installed Packages:\n%s\n\nUpgrade History:\n%s\n\nFailed Installations:\n%s",
		installs, upgrades, failures)
}

func (p *PackageManagement) repositoryHealth(ctx context.Context, pm packageManager) string {
	var access, keys, test string

	switch pm {
	case pmAPT:
		access = p.run.CommandFiltered(ctx, func(line string) bool {
			return strings.Contains(line, "Ign:") ||
				strings.Contains(line, "Hit:") ||
				strings.Contains(line, "Err:")
		}, "apt-get", "update", "--dry-run")
		keys = p.run.CommandFiltered(ctx, func(line string) bool {
			return strings.Contains(line, "/") ||
				strings.Contains(line, "pub") ||
				strings.Contains(line, "uid")
		}, "apt-key", "list")
		test = p.run.Command(ctx, "apt-cache", "policy", "apt")
	case pmDNF, pmYum:
		access = p.run.Command(ctx, string(pm), "repolist")
		keys = p.run.Command(ctx, "rpm", "-qa", "gpg-pubkey*")
		test = p.run.Command(ctx, string(pm), "info", string(pm))
	case pmPacman:
		access = p.run.Command(ctx, "pacman", "-Sy", "--dry-run")
		keys = p.run.Command(ctx, "pacman-key", "--list-keys")
		test = p.run.Command(ctx, "pacman", "-Si", "pacman")
	default:
		access, keys, test = pmUnknownMessage, pmUnknownMessage, pmUnknownMessage
	}

	return fmt.Sprintf("Repository Access Check:\n%s\n\nRepository Signing Keys:\n%s\n\nPackage Manager Functionality Test:\n%s",
		access, keys, test)
}

func nonCommentLine(line string) bool {
	return !strings.HasPrefix(line, "#") && strings.TrimSpace(line) != ""
}

// orDefault substitutes fallback for blank command output.
func orDefault(out, fallback string) string {
	if strings.TrimSpace(out) == "" {
		return fallback
	}
	return out
}

// repoDropIns concatenates the matching drop-in files under dir. An empty
// suffix matches every file.
func repoDropIns(dir, suffix string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}

	out := fmt.Sprintf("\n\n%s contents:\n", dir)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), suffix) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		out += fmt.Sprintf("\n--- %s ---\n%s",
			entry.Name(), textfile.Read(path, textfile.Filter(nonCommentLine)))
	}
	return out
}

// historyExtract pulls the lines mentioning marker out of the named log.
func historyExtract(path, marker, missing string) string {
	if path == "" || !textfile.Exists(path) {
		return missing
	}
	return textfile.Read(path, textfile.Filter(func(line string) bool {
		return strings.Contains(line, marker)
	}), textfile.KeepLast(20))
}

func firstExisting(paths ...string) string {
	for _, path := range paths {
		if textfile.Exists(path) {
			return path
		}
	}
	return ""
}
