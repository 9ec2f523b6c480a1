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

package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/eraxe/sysdiag/pkg/checklist"
	"github.com/eraxe/sysdiag/pkg/config"
	"github.com/eraxe/sysdiag/pkg/defaults"
	"github.com/eraxe/sysdiag/pkg/errors"
	"github.com/eraxe/sysdiag/pkg/header"
	"github.com/eraxe/sysdiag/pkg/logging"
	"github.com/eraxe/sysdiag/pkg/overview"
	"github.com/eraxe/sysdiag/pkg/probe"
	"github.com/eraxe/sysdiag/pkg/render"
	"github.com/eraxe/sysdiag/pkg/report"
	"github.com/eraxe/sysdiag/pkg/runner"
	"github.com/eraxe/sysdiag/pkg/selection"
	"github.com/eraxe/sysdiag/pkg/sink"
)

const (
	name           = "sysdiag"
	versionDefault = "dev"
)

var (
	// overridden during build with ldflags
	version = versionDefault
	commit  = "unknown"
	date    = "unknown"
)

// Version returns the full build identity string.
func Version() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)
}

// New builds the root command.
func New() *cli.Command {
	return &cli.Command{
		Name:                  name,
		Usage:                 "Linux host diagnostic report generator",
		Version:               Version(),
		EnableShellCompletion: true,
		Description: `Runs independent diagnostic modules (storage, boot, system, network,
security) against the local host and renders one static report.

Without flags an interactive checklist selects modules and subsections;
-y skips it and runs everything. Some modules require root and are
skipped otherwise.

# Examples

Run everything, text report to stdout:
  sysdiag -y

JSON report into a directory (auto-named file):
  sysdiag -y -f json -o /var/log/reports

Interactive selection, ASCII-only output:
  sysdiag -a -o report.txt`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   "run all modules without the interactive checklist",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "report destination: empty or \"-\" for stdout, a directory, or a file path",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "report format: txt, json, html, yaml",
			},
			&cli.BoolFlag{
				Name:    "check-all",
				Aliases: []string{"c"},
				Usage:   "pre-check every row in the interactive checklist",
			},
			&cli.BoolFlag{
				Name:    "ascii",
				Aliases: []string{"a"},
				Usage:   "ASCII-only text output, no icons or box drawing",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "module worker pool size (0 = one per CPU, capped)",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "per-module execution budget",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: fmt.Sprintf("config file (default is $HOME/%s)", config.DefaultFileName),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "log level (debug, info, warn, error)",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: run,
	}
}

// settings is the merged invocation configuration: flags over the
// config file over compiled defaults.
type settings struct {
	output    string
	format    render.Format
	asciiOnly bool
	workers   int
	timeout   time.Duration
	logLevel  string
}

func resolveSettings(cmd *cli.Command) (*settings, error) {
	var cfg *config.Config
	var err error
	if path := cmd.String("config"); path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadDefault()
	}
	if err != nil {
		return nil, err
	}

	s := &settings{
		output:    cfg.Output,
		asciiOnly: cfg.ASCIIOnly,
		workers:   cfg.Workers,
		timeout:   time.Duration(cfg.Timeout),
		logLevel:  cfg.LogLevel,
	}
	if s.logLevel == "" {
		s.logLevel = "info"
	}
	if s.timeout <= 0 {
		s.timeout = defaults.ModuleTimeout
	}

	if cmd.IsSet("output") {
		s.output = cmd.String("output")
	}
	if cmd.IsSet("ascii") {
		s.asciiOnly = cmd.Bool("ascii")
	}
	if cmd.IsSet("workers") {
		s.workers = int(cmd.Int("workers"))
	}
	if cmd.IsSet("timeout") {
		s.timeout = cmd.Duration("timeout")
	}
	if cmd.IsSet("log-level") {
		s.logLevel = cmd.String("log-level")
	}

	formatName := cfg.Format
	if cmd.IsSet("format") {
		formatName = cmd.String("format")
	}
	if formatName == "" {
		formatName = string(render.FormatText)
	}
	s.format, err = render.ParseFormat(formatName)
	if err != nil {
		return nil, err
	}

	if s.workers < 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "workers must not be negative")
	}
	return s, nil
}

// run is the root action: resolve settings, select modules, execute,
// render, write.
func run(ctx context.Context, cmd *cli.Command) error {
	s, err := resolveSettings(cmd)
	if err != nil {
		return err
	}

	logging.SetDefaultStructuredLoggerWithLevel(name, version, s.logLevel)
	slog.Debug("starting",
		"name", name,
		"version", version,
		"commit", commit,
		"date", date,
		"format", s.format,
		"workers", s.workers)

	probes := probe.Catalog()
	reg, err := probe.NewRegistry(probes)
	if err != nil {
		return err
	}

	var state *selection.State
	switch {
	case cmd.Bool("yes"):
		state = selection.All(reg)
	default:
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return errors.New(errors.ErrCodeInvalidInput,
				"interactive selection requires a terminal; use -y to run all modules")
		}
		picks, confirmed, err := checklist.Run(reg, cmd.Bool("check-all"))
		if err != nil {
			return errors.Wrap(errors.ErrCodeInternal, "interactive checklist failed", err)
		}
		if !confirmed {
			slog.Info("selection canceled, no report generated")
			return nil
		}
		state, err = selection.Resolve(reg, picks)
		if err != nil {
			return err
		}
	}

	if state.Len() == 0 {
		slog.Info("nothing selected, no report generated")
		return nil
	}

	ov := overview.Collect()
	hdr := header.NewReportHeader(version, ov.HeaderOptions()...)

	r := &runner.Runner{
		Registry:      reg,
		Probes:        probe.Index(probes),
		Selection:     state,
		Header:        hdr,
		Workers:       s.workers,
		ModuleTimeout: s.timeout,
	}
	tree, err := r.Run(ctx)
	if err != nil {
		return err
	}

	data, err := render.Render(tree, render.Options{
		Format:    s.format,
		ASCIIOnly: s.asciiOnly,
	})
	if err != nil {
		return err
	}

	path, err := sink.New().Write(data, s.output, s.format.Extension())
	if err != nil {
		return err
	}
	if path != "" {
		slog.Info("report written", "path", path)
	}

	summary := report.Summarize(tree)
	slog.Info("run finished",
		"completed", summary.Completed,
		"errored", summary.Errored,
		"skipped", summary.Skipped,
		"outcome", summary.Outcome)
	if summary.ExitCode() != 0 {
		return errors.New(errors.ErrCodeModuleFailed,
			"every selected module ended in error or was skipped")
	}
	return nil
}

// Execute runs the root command and maps errors to process exit codes.
// SIGINT/SIGTERM cancel the context for a graceful stop: in-flight
// modules finish or time out and the partial report is still rendered.
func Execute() int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nReceived interrupt signal, shutting down gracefully...")
		cancel()
	}()

	err := New().Run(ctx, os.Args)
	if err == nil {
		return 0
	}

	fmt.Fprintln(os.Stderr, err)
	var structured *errors.StructuredError
	switch {
	case errors.HasCode(err, errors.ErrCodeInvalidSelection),
		errors.HasCode(err, errors.ErrCodeInvalidInput):
		return 2
	case stderrors.As(err, &structured):
		return 1
	default:
		// Flag parsing failures surface as plain errors.
		return 2
	}
}
