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

// Package config loads the optional YAML configuration file.
//
// Configuration precedence is flags over file over compiled defaults;
// this package only supplies the middle layer. An explicitly named file
// must exist; the auto-discovered default (~/.sysdiag.yaml) is optional.
package config

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/eraxe/sysdiag/pkg/errors"
)

// DefaultFileName is the config file discovered in the home directory.
const DefaultFileName = ".sysdiag.yaml"

// Duration accepts "90s"-style values, which yaml.v3 does not decode
// into time.Duration on its own.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Config holds the file-configurable settings. Zero values mean
// "not set" and defer to flags or compiled defaults.
type Config struct {
	// Output is the report destination path.
	Output string `yaml:"output"`

	// Format is the report format (txt, json, html, yaml).
	Format string `yaml:"format"`

	// ASCIIOnly disables Unicode decoration in text reports.
	ASCIIOnly bool `yaml:"ascii_only"`

	// Workers is the module worker pool size.
	Workers int `yaml:"workers"`

	// Timeout is the per-module execution budget.
	Timeout Duration `yaml:"timeout"`

	// LogLevel sets the slog level (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`
}

// Load reads and parses the named config file. Unknown keys are
// rejected so typos surface instead of silently falling back to
// defaults.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput,
			fmt.Sprintf("cannot read config file %s", path), err)
	}
	defer f.Close()

	var cfg Config
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		// A present but empty file is an empty config, not a parse error.
		if stderrors.Is(err, io.EOF) {
			return &Config{}, nil
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput,
			fmt.Sprintf("cannot parse config file %s", path), err)
	}
	return &cfg, nil
}

// LoadDefault loads ~/.sysdiag.yaml when present. A missing file or an
// undeterminable home directory yields an empty config, not an error;
// a present but malformed file still fails.
func LoadDefault() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return &Config{}, nil
	}
	path := filepath.Join(home, DefaultFileName)
	if _, err := os.Stat(path); err != nil {
		return &Config{}, nil
	}
	return Load(path)
}
