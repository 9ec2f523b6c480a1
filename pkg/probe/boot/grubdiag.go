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

package boot

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/eraxe/sysdiag/pkg/probe/run"
	"github.com/eraxe/sysdiag/pkg/probe/textfile"
	"github.com/eraxe/sysdiag/pkg/registry"
)

const efiFirmwarePath = "/sys/firmware/efi"

var insmodPattern = regexp.MustCompile(`insmod\s+(\w+)`)

// GrubDiagnostics digs below the regular bootloader report: EFI system
// partition state, boot-sequence errors, the bootloader chain, partition
// table integrity, GRUB module usage, initramfs content, boot partition
// health, GRUB error logs, raw boot-sector verification, and boot timing.
// Requires root for the raw device reads and privileged tooling.
type GrubDiagnostics struct {
	run *run.Runner
}

// NewGrubDiagnostics creates the advanced GRUB/boot diagnostics probe.
func NewGrubDiagnostics(r *run.Runner) *GrubDiagnostics {
	return &GrubDiagnostics{run: r}
}

// Descriptor implements the probe contract.
func (p *GrubDiagnostics) Descriptor() registry.Descriptor {
	return registry.Descriptor{
		ID:             "grub_boot_diagnostics",
		Title:          "GRUB/Boot Partition Advanced Diagnostics",
		Category:       registry.CategoryBoot,
		RequiresRoot:   true,
		DefaultEnabled: false,
		Subsections: []string{
			"efi_system_partition",
			"boot_sequence_errors",
			"bootloader_chain",
			"partition_table_validation",
			"grub_module_analysis",
			"initramfs_content",
			"boot_partition_health",
			"grub_error_logs",
			"bootloader_verification",
			"boot_timing_analysis",
		},
	}
}

// Execute gathers the advanced boot diagnostics subsections.
func (p *GrubDiagnostics) Execute(ctx context.Context) (map[string]string, error) {
	slog.Debug("collecting advanced GRUB/boot diagnostics")
	out := make(map[string]string, 10)

	out["efi_system_partition"] = p.efiSystemPartition(ctx)
	out["boot_sequence_errors"] = p.bootSequenceErrors(ctx)
	out["bootloader_chain"] = p.bootloaderChain(ctx)
	out["partition_table_validation"] = p.partitionTableValidation(ctx)
	out["grub_module_analysis"] = p.grubModuleAnalysis(ctx)
	out["initramfs_content"] = p.initramfsContent(ctx)
	out["boot_partition_health"] = p.bootPartitionHealth(ctx)
	out["grub_error_logs"] = p.grubErrorLogs(ctx)
	out["bootloader_verification"] = p.bootloaderVerification(ctx)
	out["boot_timing_analysis"] = p.bootTimingAnalysis(ctx)

	return out, nil
}

func (p *GrubDiagnostics) efiSystemPartition(ctx context.Context) string {
	if !textfile.Exists(efiFirmwarePath) {
		return "Boot Mode: Legacy BIOS\n\nEFI Boot Entries:\nNot in UEFI mode\n\nEFI System Partition Content:\nNot in UEFI mode"
	}

	entries := p.run.Command(ctx, "efibootmgr", "-v")

	espMount := p.run.CommandFiltered(ctx, func(line string) bool {
		return strings.Contains(line, "/boot/efi") || strings.Contains(line, "/efi")
	}, "findmnt", "-t", "vfat", "-o", "TARGET")

	var content string
	if strings.TrimSpace(espMount) == "" || strings.Contains(espMount, "Error") {
		blkid := p.run.CommandFiltered(ctx, func(line string) bool {
			return strings.Contains(line, `PARTLABEL="EFI System Partition"`)
		}, "blkid")
		content = "ESP not mounted, blkid shows: " + blkid
	} else {
		lines := strings.Split(strings.TrimSpace(espMount), "\n")
		espPath := lines[len(lines)-1]
		content = p.run.Command(ctx, "ls", "-la", espPath)
		binaries := p.run.Command(ctx, "find", espPath, "-name", "*.efi", "-o", "-name", "*.EFI")
		if strings.TrimSpace(binaries) != "" {
			content += "\n\nEFI Binaries Found:\n" + binaries
		}
	}

	return fmt.Sprintf("Boot Mode: UEFI\n\nEFI Boot Entries:\n%s\n\nEFI System Partition Content:\n%s",
		entries, content)
}

func (p *GrubDiagnostics) bootSequenceErrors(ctx context.Context) string {
	firmware := p.run.ShellKeepLast(ctx, 20,
		"dmesg | grep -iE 'firmware|acpi|efi|uefi|bios|pci|smbios|dmi' | grep -iE 'error|fail|warn|critical|alert'")
	failures := p.run.ShellKeepLast(ctx, 20,
		"journalctl -b -p err..emerg --no-pager | grep -iE 'boot|init|start|mount|systemd'")
	return fmt.Sprintf("Early Boot Firmware/ACPI/EFI Errors:\n%s\n\nCritical Boot Failures:\n%s",
		firmware, failures)
}

func (p *GrubDiagnostics) bootloaderChain(ctx context.Context) string {
	osProber := p.run.Command(ctx, "os-prober")

	bootOrder := "Not available in BIOS mode"
	secureBoot := "Not available in BIOS mode"
	if textfile.Exists(efiFirmwarePath) {
		bootOrder = p.run.Command(ctx, "efibootmgr")
		secureBoot = p.run.Command(ctx, "mokutil", "--sb-state")
		if strings.Contains(secureBoot, "Failed to run command") || strings.Contains(secureBoot, "Error") {
			secureBoot = textfile.Read("/sys/kernel/security/securelevel")
		}
	}

	return fmt.Sprintf("Detected Operating Systems (os-prober):\n%s\n\nBoot Order:\n%s\n\nSecure Boot Status:\n%s",
		osProber, bootOrder, secureBoot)
}

func (p *GrubDiagnostics) partitionTableValidation(ctx context.Context) string {
	gdisk := p.run.CommandFiltered(ctx, func(line string) bool {
		lower := strings.ToLower(line)
		return strings.Contains(lower, "corrupt") ||
			strings.Contains(lower, "error") ||
			strings.Contains(lower, "problem") ||
			strings.Contains(lower, "warning") ||
			strings.Contains(line, "Partition table scan") ||
			strings.Contains(line, "MBR") ||
			strings.Contains(line, "GPT")
	}, "gdisk", "-l", "/dev/sda")

	fdisk := p.run.CommandFiltered(ctx, func(line string) bool {
		lower := strings.ToLower(line)
		return strings.Contains(lower, "gpt") ||
			strings.Contains(lower, "mbr") ||
			strings.Contains(lower, "dos") ||
			strings.Contains(lower, "hybrid")
	}, "fdisk", "-l", "/dev/sda")

	parted := p.run.CommandFiltered(ctx, func(line string) bool {
		return strings.Contains(strings.ToLower(line), "aligned")
	}, "parted", "/dev/sda", "align-check", "opt", "1")

	return fmt.Sprintf("Partition Table Integrity Check:\n%s\n\nPartition Table Type Information:\n%s\n\nPartition Alignment Check:\n%s",
		gdisk, fdisk, parted)
}

func (p *GrubDiagnostics) grubModuleAnalysis(ctx context.Context) string {
	available := "Not available"
	for _, dir := range []string{
		"/boot/grub/i386-pc",
		"/boot/grub/x86_64-efi",
		"/boot/grub2/i386-pc",
		"/boot/grub2/x86_64-efi",
	} {
		if !textfile.Exists(dir) {
			continue
		}
		modules := p.run.CommandFiltered(ctx, func(line string) bool {
			return strings.HasSuffix(line, ".mod")
		}, "ls", dir)
		if strings.TrimSpace(modules) != "" && !strings.Contains(modules, "Error") {
			available = fmt.Sprintf("GRUB modules in %s:\n%s", dir, modules)
			break
		}
	}

	insmod := textfile.Read("/boot/grub/grub.cfg", textfile.Filter(func(line string) bool {
		return strings.Contains(line, "insmod")
	}))
	if strings.HasPrefix(insmod, "File not found") {
		insmod = textfile.Read("/boot/grub2/grub.cfg", textfile.Filter(func(line string) bool {
			return strings.Contains(line, "insmod")
		}))
	}

	return fmt.Sprintf("Available GRUB Modules:\n%s\n\n%s\nInsmod Commands in GRUB Config:\n%s",
		available, insmodFrequency(insmod), insmod)
}

// insmodFrequency ranks the modules named by insmod directives.
func insmodFrequency(config string) string {
	counts := make(map[string]int)
	for _, match := range insmodPattern.FindAllStringSubmatch(config, -1) {
		counts[match[1]]++
	}

	type moduleCount struct {
		name  string
		count int
	}
	ranked := make([]moduleCount, 0, len(counts))
	for name, count := range counts {
		ranked = append(ranked, moduleCount{name, count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].name < ranked[j].name
	})

	var b strings.Builder
	b.WriteString("Most frequently loaded modules:\n")
	for i, mc := range ranked {
		if i == 10 {
			break
		}
		fmt.Fprintf(&b, "%s: %d times\n", mc.name, mc.count)
	}
	return b.String()
}

func (p *GrubDiagnostics) initramfsContent(ctx context.Context) string {
	release := strings.TrimSpace(p.run.Command(ctx, "uname", "-r"))

	var image string
	for _, path := range []string{
		fmt.Sprintf("/boot/initramfs-%s.img", release),
		fmt.Sprintf("/boot/initrd-%s.img", release),
		fmt.Sprintf("/boot/initrd.img-%s", release),
	} {
		if textfile.Exists(path) {
			image = path
			break
		}
	}
	if image == "" {
		return fmt.Sprintf("No initramfs file found for kernel version %s", release)
	}

	storageDrivers := p.run.CommandFiltered(ctx, func(line string) bool {
		return strings.Contains(line, "/drivers/ata") ||
			strings.Contains(line, "/drivers/block") ||
			strings.Contains(line, "/drivers/nvme") ||
			strings.Contains(line, "/drivers/scsi")
	}, "lsinitramfs", image)

	fsModules := p.run.CommandFiltered(ctx, func(line string) bool {
		return strings.Contains(line, "/fs/")
	}, "lsinitramfs", image)

	return fmt.Sprintf("Initramfs File: %s\n\nStorage Drivers in Initramfs:\n%s\n\nFilesystem Modules in Initramfs:\n%s",
		image, storageDrivers, fsModules)
}

func (p *GrubDiagnostics) bootPartitionHealth(ctx context.Context) string {
	partition := strings.TrimSpace(p.run.Command(ctx, "findmnt", "/boot", "-o", "SOURCE", "-n"))
	if partition == "" || strings.Contains(partition, "Error") {
		partition = strings.TrimSpace(p.run.Command(ctx, "findmnt", "/", "-o", "SOURCE", "-n"))
	}
	partition = strings.NewReplacer("[", "", "]", "").Replace(partition)

	var fsck string
	if strings.HasPrefix(partition, "/dev/mapper/") {
		fsck = fmt.Sprintf("Boot partition is on LVM (%s). Skipping fsck for safety.", partition)
	} else {
		// -n keeps the check read-only.
		fsck = p.run.Command(ctx, "fsck", "-n", partition)
	}

	smart := p.run.CommandFiltered(ctx, func(line string) bool {
		return strings.Contains(line, "SMART overall-health") ||
			strings.Contains(line, "SMART Health Status") ||
			strings.Contains(line, "Reallocated_Sector") ||
			strings.Contains(line, "Current_Pending_Sector") ||
			strings.Contains(line, "Offline_Uncorrectable") ||
			strings.Contains(line, "Error")
	}, "smartctl", "-a", baseDevice(partition))

	return fmt.Sprintf("Boot Partition: %s\n\nFilesystem Check Results:\n%s\n\nDisk Health (SMART):\n%s",
		partition, fsck, smart)
}

// baseDevice strips the partition suffix: /dev/sda1 → /dev/sda,
// /dev/nvme0n1p2 → /dev/nvme0n1.
func baseDevice(partition string) string {
	name := strings.TrimPrefix(partition, "/dev/")
	if strings.HasPrefix(name, "nvme") || strings.HasPrefix(name, "mmcblk") {
		if idx := strings.LastIndex(name, "p"); idx > 0 {
			return "/dev/" + name[:idx]
		}
		return partition
	}
	trimmed := strings.TrimRight(name, "0123456789")
	if trimmed == "" {
		return partition
	}
	return "/dev/" + trimmed
}

func (p *GrubDiagnostics) grubErrorLogs(ctx context.Context) string {
	journal := p.run.ShellKeepLast(ctx, 20,
		"journalctl --no-pager | grep -i grub | grep -iE 'error|fail|warn|fatal'")

	installLog := "Not found"
	if textfile.Exists("/var/log/grub-install.log") {
		installLog = textfile.Read("/var/log/grub-install.log", textfile.Filter(func(line string) bool {
			lower := strings.ToLower(line)
			return strings.Contains(lower, "error") ||
				strings.Contains(lower, "fail") ||
				strings.Contains(lower, "warn") ||
				strings.Contains(lower, "fatal")
		}))
	}

	bootLog := "Not found"
	if textfile.Exists("/var/log/boot.log") {
		bootLog = textfile.Read("/var/log/boot.log", textfile.Filter(func(line string) bool {
			return strings.Contains(strings.ToLower(line), "grub")
		}))
	}

	return fmt.Sprintf("GRUB Error Messages in Journal:\n%s\n\nGRUB Installation Log Issues:\n%s\n\nGRUB Messages in Boot Log:\n%s",
		journal, installLog, bootLog)
}

func (p *GrubDiagnostics) bootloaderVerification(ctx context.Context) string {
	mbr := p.run.Shell(ctx, "dd if=/dev/sda bs=512 count=1 status=none | hexdump -C | head -n 3")

	var files []string
	for _, dir := range []string{"/boot/grub", "/boot/grub2", "/boot/efi/EFI"} {
		if !textfile.Exists(dir) {
			continue
		}
		files = append(files, "Bootloader directory found: "+dir)
		files = append(files, p.run.Command(ctx, "ls", "-la", dir))
	}

	var signatures []string
	disks := p.run.Command(ctx, "lsblk", "-d", "-n", "-o", "NAME", "-p")
	for _, disk := range strings.Split(disks, "\n") {
		disk = strings.TrimSpace(disk)
		if !strings.HasPrefix(disk, "/dev/") {
			continue
		}
		sig := p.run.Shell(ctx,
			fmt.Sprintf("dd if=%s bs=512 count=1 status=none | strings | grep -i grub", disk))
		signatures = append(signatures, fmt.Sprintf("Boot signature check for %s:\n%s", disk, sig))
	}

	return fmt.Sprintf("MBR Check:\n%s\n\nBootloader Files:\n%s\n\nBoot Entries on Disks:\n%s",
		mbr, strings.Join(files, "\n"), strings.Join(signatures, "\n"))
}

func (p *GrubDiagnostics) bootTimingAnalysis(ctx context.Context) string {
	summary := p.run.Command(ctx, "systemd-analyze")
	blame := p.run.Shell(ctx, "systemd-analyze blame | head -n 10")
	critical := p.run.Command(ctx, "systemd-analyze", "critical-chain")
	return fmt.Sprintf("Boot Timing Summary:\n%s\n\nSlowest Boot Components:\n%s\n\nBoot Critical Chain:\n%s",
		summary, blame, critical)
}
