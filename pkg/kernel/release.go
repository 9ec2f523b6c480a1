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

package kernel

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Error types for kernel release parsing failures
var (
	ErrEmptyRelease      = errors.New("kernel release string is empty")
	ErrTooManyComponents = errors.New("kernel release has more than 3 numeric components")
	ErrNonNumeric        = errors.New("kernel release component is not numeric")
	ErrNegativeComponent = errors.New("kernel release component cannot be negative")
)

// Release represents a parsed kernel release as reported by uname -r.
// The numeric triple covers the upstream kernel version; everything after
// it (distribution build number, flavor, architecture) is preserved in
// Extras. Examples:
//
//	6.8.0-41-generic          → {6, 8, 0, "-41-generic"}
//	5.14.0-362.8.1.el9_3.x86_64 → {5, 14, 0, "-362.8.1.el9_3.x86_64"}
//	6.1.55                    → {6, 1, 55, ""}
type Release struct {
	Major  int    `json:"major"`
	Minor  int    `json:"minor"`
	Patch  int    `json:"patch"`
	Extras string `json:"extras,omitempty"`
}

// String returns the full release string including extras, matching the
// uname -r form the release was parsed from.
func (r Release) String() string {
	return fmt.Sprintf("%d.%d.%d%s", r.Major, r.Minor, r.Patch, r.Extras)
}

// Upstream returns only the numeric triple, without distribution extras.
func (r Release) Upstream() string {
	return fmt.Sprintf("%d.%d.%d", r.Major, r.Minor, r.Patch)
}

// Compare returns -1, 0, or 1 ordering r against other by the numeric
// triple. Extras are compared lexically only when the triples are equal,
// which keeps distribution build ordering stable for sorted listings.
func (r Release) Compare(other Release) int {
	if c := compareInt(r.Major, other.Major); c != 0 {
		return c
	}
	if c := compareInt(r.Minor, other.Minor); c != 0 {
		return c
	}
	if c := compareInt(r.Patch, other.Patch); c != 0 {
		return c
	}
	return strings.Compare(r.Extras, other.Extras)
}

// EqualsOrNewer returns true if r is the same release as other or a newer one.
func (r Release) EqualsOrNewer(other Release) bool {
	return r.Compare(other) >= 0
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// ParseRelease parses a kernel release string into a Release.
// Supported forms: "6.8.0-41-generic", "5.14.0-362.8.1.el9_3.x86_64",
// "6.1", "6". Anything after the first '-' following a digit becomes
// Extras. Returns an error for empty strings, non-numeric components,
// or more than three numeric components.
func ParseRelease(s string) (Release, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Release{}, ErrEmptyRelease
	}

	var r Release

	// Split off extras at the first dash that follows a digit. Kernel
	// releases never place a dash inside the numeric triple.
	mainPart := s
	for i, ch := range s {
		if ch == '-' && i > 0 {
			prev := s[i-1]
			if prev >= '0' && prev <= '9' {
				mainPart = s[:i]
				r.Extras = s[i:]
				break
			}
		}
	}

	parts := strings.Split(mainPart, ".")
	if len(parts) > 3 {
		return Release{}, ErrTooManyComponents
	}

	for i, part := range parts {
		if part == "" {
			return Release{}, fmt.Errorf("%w: empty component", ErrNonNumeric)
		}
		num, err := strconv.Atoi(part)
		if err != nil {
			return Release{}, fmt.Errorf("%w: %q", ErrNonNumeric, part)
		}
		if num < 0 {
			return Release{}, fmt.Errorf("%w: %d", ErrNegativeComponent, num)
		}

		switch i {
		case 0:
			r.Major = num
		case 1:
			r.Minor = num
		case 2:
			r.Patch = num
		}
	}

	return r, nil
}

// MustParseRelease parses a kernel release string and panics if parsing
// fails. Only use this for hardcoded strings or in tests; for uname output
// or filenames always use ParseRelease and handle errors explicitly.
func MustParseRelease(s string) Release {
	r, err := ParseRelease(s)
	if err != nil {
		panic(fmt.Sprintf("MustParseRelease: %v", err))
	}
	return r
}

// Boot image prefixes recognized by FromBootImage.
var bootImagePrefixes = []string{
	"vmlinuz-",
	"vmlinux-",
	"initrd.img-",
	"initrd-",
	"initramfs-",
	"System.map-",
	"config-",
}

// FromBootImage extracts the kernel release embedded in a /boot image
// filename such as "vmlinuz-6.8.0-41-generic" or
// "initramfs-5.14.0-362.8.1.el9_3.x86_64.img". Returns false when the
// filename carries no recognizable release.
func FromBootImage(filename string) (Release, bool) {
	base := filename
	if i := strings.LastIndexByte(base, '/'); i >= 0 {
		base = base[i+1:]
	}

	for _, prefix := range bootImagePrefixes {
		if !strings.HasPrefix(base, prefix) {
			continue
		}
		rel := strings.TrimPrefix(base, prefix)
		rel = strings.TrimSuffix(rel, ".img")
		r, err := ParseRelease(rel)
		if err != nil {
			return Release{}, false
		}
		return r, true
	}
	return Release{}, false
}

// IsValid reports whether the release carries a plausible version triple.
func (r Release) IsValid() bool {
	return r.Major >= 0 && r.Minor >= 0 && r.Patch >= 0 &&
		(r.Major > 0 || r.Minor > 0 || r.Patch > 0 || r.Extras != "")
}
