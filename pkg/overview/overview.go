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

// Package overview collects the basic host facts shown in the report
// header: hostname, OS, kernel, uptime, CPU, and memory. Collection is
// best effort; unavailable fields stay empty and are dropped from the
// envelope.
package overview

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/eraxe/sysdiag/pkg/header"
	"github.com/eraxe/sysdiag/pkg/probe/textfile"
)

// Overview is a snapshot of host identity and capacity.
type Overview struct {
	Hostname string
	OS       string
	Kernel   string
	Uptime   string
	CPUCount int
	CPUModel string
	Memory   string
}

// Collect gathers the overview from the kernel and procfs.
func Collect() Overview {
	var o Overview

	if name, err := os.Hostname(); err == nil {
		o.Hostname = name
	}
	o.OS = osPrettyName()
	o.Kernel = kernelRelease()
	o.Uptime = uptime()
	o.CPUCount, o.CPUModel = cpuInfo()
	o.Memory = memoryTotal()

	return o
}

// HeaderOptions maps the overview onto report metadata options. Empty
// fields produce no metadata entries.
func (o Overview) HeaderOptions() []header.Option {
	cpuCount := ""
	if o.CPUCount > 0 {
		cpuCount = strconv.Itoa(o.CPUCount)
	}
	return []header.Option{
		header.WithMetadata(header.MetaHostname, o.Hostname),
		header.WithMetadata(header.MetaOS, o.OS),
		header.WithMetadata(header.MetaKernel, o.Kernel),
		header.WithMetadata(header.MetaUptime, o.Uptime),
		header.WithMetadata(header.MetaCPUCount, cpuCount),
		header.WithMetadata(header.MetaCPUModel, o.CPUModel),
		header.WithMetadata(header.MetaMemory, o.Memory),
	}
}

func osPrettyName() string {
	parser := textfile.NewParser(
		textfile.WithSkipComments(true),
		textfile.WithKVDelimiter("="),
		textfile.WithVTrimChars(`"`),
	)
	fields, err := parser.Map("/etc/os-release")
	if err != nil {
		slog.Debug("reading os-release failed", "error", err)
		return ""
	}
	return fields["PRETTY_NAME"]
}

func kernelRelease() string {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		slog.Debug("uname failed", "error", err)
		return ""
	}
	return unix.ByteSliceToString(uts.Release[:])
}

func uptime() string {
	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		slog.Debug("sysinfo failed", "error", err)
		return ""
	}

	secs := int64(info.Uptime)
	days := secs / 86400
	hours := secs % 86400 / 3600
	minutes := secs % 3600 / 60
	return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, secs%60)
}

func cpuInfo() (int, string) {
	parser := textfile.NewParser(textfile.WithKVDelimiter(":"))
	lines, err := parser.Lines("/proc/cpuinfo")
	if err != nil {
		slog.Debug("reading cpuinfo failed", "error", err)
		return 0, ""
	}

	count := 0
	model := ""
	for _, line := range lines {
		if strings.HasPrefix(line, "processor") {
			count++
		}
		if model == "" && strings.HasPrefix(line, "model name") {
			if _, value, ok := strings.Cut(line, ":"); ok {
				model = strings.TrimSpace(value)
			}
		}
	}
	return count, model
}

func memoryTotal() string {
	parser := textfile.NewParser(textfile.WithKVDelimiter(":"))
	fields, err := parser.Map("/proc/meminfo")
	if err != nil {
		slog.Debug("reading meminfo failed", "error", err)
		return ""
	}

	total, ok := fields["MemTotal"]
	if !ok {
		return ""
	}
	parts := strings.Fields(total)
	if len(parts) == 0 {
		return ""
	}
	kb, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%.2f GB", float64(kb)/1024/1024)
}
