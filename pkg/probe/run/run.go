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

package run

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/eraxe/sysdiag/pkg/defaults"
	"github.com/eraxe/sysdiag/pkg/probe/textfile"
)

// Runner executes external probe commands with a per-command timeout and a
// shared spawn rate limiter. One Runner is shared by all probes of a run,
// so concurrent workers cannot stampede the host with process spawns.
//
// Command-level failures are report content, not errors: a failing or
// missing tool degrades to explanatory text so a module can still complete
// with whatever it gathered.
type Runner struct {
	timeout time.Duration
	limiter *rate.Limiter
}

// Option is a functional option for configuring a Runner.
type Option func(*Runner)

// WithTimeout sets the per-command execution budget.
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithLimiter replaces the spawn rate limiter. Pass nil to disable limiting.
func WithLimiter(l *rate.Limiter) Option {
	return func(r *Runner) {
		r.limiter = l
	}
}

// New creates a Runner with the default command timeout and spawn limiter.
func New(opts ...Option) *Runner {
	r := &Runner{
		timeout: defaults.CommandTimeout,
		limiter: rate.NewLimiter(rate.Limit(defaults.SpawnRatePerSecond), defaults.SpawnBurst),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Command runs name with args and returns its stdout. On a non-zero exit
// the stderr is returned prefixed with "Error:"; a missing binary or spawn
// failure returns a "Failed to run command" line; exceeding the command
// timeout returns a "Command timed out" line.
func (r *Runner) Command(ctx context.Context, name string, args ...string) string {
	out, _ := r.execute(ctx, name, args...)
	return out
}

// CommandKeepLast runs the command and trims successful output to its last
// n lines, prepending the trim notice.
func (r *Runner) CommandKeepLast(ctx context.Context, n int, name string, args ...string) string {
	out, ok := r.execute(ctx, name, args...)
	if !ok {
		return out
	}
	return textfile.TrimLastLines(out, n)
}

// CommandFiltered runs the command and keeps only the successful output
// lines for which keep returns true.
func (r *Runner) CommandFiltered(ctx context.Context, keep func(string) bool, name string, args ...string) string {
	out, ok := r.execute(ctx, name, args...)
	if !ok {
		return out
	}
	return textfile.FilterLines(out, keep)
}

// Shell runs a pipeline through "sh -c". Reserved for probes that need
// composition (grep chains over journals); simple invocations use Command.
func (r *Runner) Shell(ctx context.Context, script string) string {
	return r.Command(ctx, "sh", "-c", script)
}

// ShellKeepLast runs a pipeline through "sh -c" and trims successful
// output to its last n lines.
func (r *Runner) ShellKeepLast(ctx context.Context, n int, script string) string {
	return r.CommandKeepLast(ctx, n, "sh", "-c", script)
}

// Available reports whether the named tool resolves on PATH.
func (r *Runner) Available(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

func (r *Runner) execute(ctx context.Context, name string, args ...string) (string, bool) {
	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return fmt.Sprintf("Failed to run command %s: %v", name, err), false
		}
	}

	cctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(cctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if cctx.Err() == context.DeadlineExceeded {
		return fmt.Sprintf("Command timed out after %s", r.timeout), false
	}
	if err != nil {
		if stderr.Len() > 0 {
			return "Error: " + strings.TrimSpace(stderr.String()), false
		}
		return fmt.Sprintf("Failed to run command %s: %v", name, err), false
	}
	return strings.TrimRight(stdout.String(), "\n"), true
}
