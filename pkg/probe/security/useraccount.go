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

// UserAccount reports user and group listings, login history, privilege
// configuration, and per-user resource limits.
type UserAccount struct {
	run *run.Runner
}

// NewUserAccount creates the user account probe.
func NewUserAccount(r *run.Runner) *UserAccount {
	return &UserAccount{run: r}
}

// Descriptor implements the probe contract.
func (p *UserAccount) Descriptor() registry.Descriptor {
	return registry.Descriptor{
		ID:             "user_account",
		Title:          "User Account Information",
		Category:       registry.CategorySecurity,
		DefaultEnabled: false,
		Subsections: []string{
			"user_listing",
			"login_history",
			"privilege_config",
			"resource_limits",
		},
	}
}

// Execute gathers the user account subsections.
func (p *UserAccount) Execute(ctx context.Context) (map[string]string, error) {
	slog.Debug("collecting user account information")
	out := make(map[string]string, 4)

	out["user_listing"] = userListing()
	out["login_history"] = p.loginHistory(ctx)
	out["privilege_config"] = p.privilegeConfig(ctx)
	out["resource_limits"] = p.resourceLimits(ctx)

	return out, nil
}

func userListing() string {
	users := textfile.Read("/etc/passwd", textfile.Filter(func(line string) bool {
		return !strings.HasPrefix(line, "#") &&
			!strings.Contains(line, "/nologin") &&
			!strings.Contains(line, "/false")
	}))

	groups := textfile.Read("/etc/group", textfile.Filter(func(line string) bool {
		return !strings.HasPrefix(line, "#")
	}))

	adminGroups := textfile.Read("/etc/group", textfile.Filter(func(line string) bool {
		return strings.Contains(line, "sudo") ||
			strings.Contains(line, "wheel") ||
			strings.Contains(line, "admin")
	}))

	aging := textfile.Read("/etc/login.defs", textfile.Filter(func(line string) bool {
		return strings.HasPrefix(line, "PASS_")
	}))

	return fmt.Sprintf("User Accounts:\n%s\n\nGroup Memberships:\n%s\n\nAdministrative Groups:\n%s\n\nPassword Aging Policies:\n%s",
		users, groups, adminGroups, aging)
}

func (p *UserAccount) loginHistory(ctx context.Context) string {
	recent := p.run.Command(ctx, "last", "-n", "20")

	failed := p.run.Command(ctx, "lastb", "-n", "20")
	if strings.Contains(failed, "Error") || strings.Contains(failed, "Failed to run command") {
		failed = firstAuthExtract(func(line string) bool {
			return strings.Contains(line, "Failed password")
		}, "No failed login records found")
	}

	current := p.run.Command(ctx, "who")

	return fmt.Sprintf("Recent Logins:\n%s\n\nFailed Login Attempts:\n%s\n\nCurrently Logged In Users:\n%s",
		recent, failed, current)
}

func (p *UserAccount) privilegeConfig(ctx context.Context) string {
	sudoConfig := textfile.Read("/etc/sudoers", textfile.Filter(func(line string) bool {
		return !strings.HasPrefix(line, "#") && strings.TrimSpace(line) != ""
	}))
	if strings.HasPrefix(sudoConfig, "File not found") ||
		strings.HasPrefix(sudoConfig, "Permission denied") {
		sudoConfig = "Unable to view sudoers file directly"
		if textfile.Exists("/etc/sudoers.d") {
			listing := p.run.Command(ctx, "ls", "-la", "/etc/sudoers.d")
			sudoConfig += fmt.Sprintf("\n\nSudoers.d directory contents:\n%s", listing)
		}
	}

	suid := p.run.CommandKeepLast(ctx, 20, "find", "/",
		"-path", "/proc", "-prune", "-o", "-type", "f", "-perm", "-4000", "-ls")
	sgid := p.run.CommandKeepLast(ctx, 20, "find", "/",
		"-path", "/proc", "-prune", "-o", "-type", "f", "-perm", "-2000", "-ls")

	nonComment := func(line string) bool {
		return !strings.HasPrefix(line, "#") && strings.TrimSpace(line) != ""
	}
	pam := textfile.Read("/etc/pam.d/common-auth", textfile.Filter(nonComment))
	if strings.HasPrefix(pam, "File not found") {
		pam = textfile.Read("/etc/pam.d/system-auth", textfile.Filter(nonComment))
	}

	return fmt.Sprintf("Sudo Configuration:\n%s\n\nSUID Binaries (first 20):\n%s\n\nSGID Binaries (first 20):\n%s\n\nPAM Authentication Configuration:\n%s",
		sudoConfig, suid, sgid, pam)
}

func (p *UserAccount) resourceLimits(ctx context.Context) string {
	// ulimit is a shell builtin.
	ulimit := p.run.Shell(ctx, "ulimit -a")
	userSlice := p.run.Command(ctx, "systemctl", "show", "user.slice")
	usage := p.run.CommandKeepLast(ctx, 20, "ps", "-e",
		"-o", "user,pcpu,pmem,vsz,time,comm", "--sort", "-pcpu")

	return fmt.Sprintf("Ulimit Settings:\n%s\n\nSystemd User Slice Configuration:\n%s\n\nResource Usage by Process/User:\n%s",
		ulimit, userSlice, usage)
}
