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
	"strings"

	"github.com/eraxe/sysdiag/pkg/probe/run"
	"github.com/eraxe/sysdiag/pkg/probe/textfile"
	"github.com/eraxe/sysdiag/pkg/registry"
)

// HardwareInfo reports PCI/USB inventory, driver state, CPU and memory
// diagnostics, and peripheral health.
type HardwareInfo struct {
	run *run.Runner
}

// NewHardwareInfo creates the hardware and driver probe.
func NewHardwareInfo(r *run.Runner) *HardwareInfo {
	return &HardwareInfo{run: r}
}

// Descriptor implements the probe contract.
func (p *HardwareInfo) Descriptor() registry.Descriptor {
	return registry.Descriptor{
		ID:             "hardware_info",
		Title:          "Hardware & Driver Information",
		Category:       registry.CategorySystem,
		DefaultEnabled: false,
		Subsections: []string{
			"lspci",
			"lsusb",
			"drivers",
			"cpu_info",
			"memory_diagnostics",
			"cpu_status",
			"pci_usb_issues",
			"peripheral_status",
		},
	}
}

// Execute gathers the hardware subsections.
func (p *HardwareInfo) Execute(ctx context.Context) (map[string]string, error) {
	slog.Debug("collecting hardware and driver information")
	out := make(map[string]string, 8)

	out["lspci"] = p.run.Command(ctx, "lspci", "-k")
	out["lsusb"] = p.run.Command(ctx, "lsusb")
	out["drivers"] = p.drivers(ctx)
	out["cpu_info"] = textfile.Read("/proc/cpuinfo", textfile.Filter(func(line string) bool {
		return strings.HasPrefix(line, "model name") ||
			strings.HasPrefix(line, "cpu MHz") ||
			strings.HasPrefix(line, "processor")
	}))
	out["memory_diagnostics"] = p.memoryDiagnostics(ctx)
	out["cpu_status"] = p.cpuStatus(ctx)
	out["pci_usb_issues"] = p.pciUSBIssues(ctx)
	out["peripheral_status"] = p.peripheralStatus(ctx)

	return out, nil
}

func (p *HardwareInfo) drivers(ctx context.Context) string {
	loaded := p.run.CommandFiltered(ctx, func(line string) bool {
		return !strings.HasPrefix(line, "Module") && strings.TrimSpace(line) != ""
	}, "lsmod")

	messages := p.run.ShellKeepLast(ctx, 20,
		"dmesg | grep -iE 'driver|firmware|module' | grep -iE 'error|fail|warn'")

	return fmt.Sprintf("Loaded Modules:\n%s\n\nDriver Messages:\n%s", loaded, messages)
}

func (p *HardwareInfo) memoryDiagnostics(ctx context.Context) string {
	errors := p.run.ShellKeepLast(ctx, 20,
		"dmesg | grep -iE 'memory|ram|mem|oom|out of memory' | grep -iE 'error|fail|warn|crit|alert'")
	memInfo := textfile.Read("/proc/meminfo")
	swapInfo := p.run.Command(ctx, "swapon", "--show")
	vmstat := p.run.Command(ctx, "vmstat")

	return fmt.Sprintf("Memory Error Messages:\n%s\n\nMemory Info:\n%s\n\nSwap Info:\n%s\n\nVMStat:\n%s",
		errors, memInfo, swapInfo, vmstat)
}

func (p *HardwareInfo) cpuStatus(ctx context.Context) string {
	// The glob only expands through a shell.
	freq := p.run.Shell(ctx, "cat /sys/devices/system/cpu/cpu*/cpufreq/scaling_cur_freq")
	thermal := p.run.Shell(ctx, "cat /sys/class/thermal/thermal_zone*/temp")
	loadavg := textfile.Read("/proc/loadavg")
	top := p.run.CommandFiltered(ctx, func(line string) bool {
		return strings.Contains(line, "Cpu(s)") || strings.Contains(line, "top -")
	}, "top", "-bn1")

	return fmt.Sprintf("CPU Frequency:\n%s\n\nThermal Status:\n%s\n\nLoad Average:\n%s\n\nCPU Utilization:\n%s",
		freq, thermal, loadavg, top)
}

func (p *HardwareInfo) pciUSBIssues(ctx context.Context) string {
	conflicts := p.run.ShellKeepLast(ctx, 20,
		"dmesg | grep -iE 'pci|usb' | grep -iE 'conflict|error|fail|warn'")
	interrupts := textfile.Read("/proc/interrupts")
	missingFirmware := p.run.ShellKeepLast(ctx, 10,
		"dmesg | grep -i firmware | grep -iE 'missing|not found|fail|error'")

	return fmt.Sprintf("PCI/USB Conflicts:\n%s\n\nInterrupts:\n%s\n\nMissing Firmware:\n%s",
		conflicts, interrupts, missingFirmware)
}

func (p *HardwareInfo) peripheralStatus(ctx context.Context) string {
	inputDevices := p.run.Command(ctx, "ls", "-la", "/dev/input")

	smart := p.run.Command(ctx, "smartctl", "--scan")
	if !strings.Contains(smart, "Error") && !strings.Contains(smart, "Failed to run command") {
		data := p.run.Command(ctx, "smartctl", "-a", "/dev/sda")
		smart += fmt.Sprintf("\n\nSMART Data for /dev/sda:\n%s", data)
	}

	sensors := p.run.Command(ctx, "sensors")

	return fmt.Sprintf("Input Devices:\n%s\n\nStorage SMART Status:\n%s\n\nHardware Sensors:\n%s",
		inputDevices, smart, sensors)
}
