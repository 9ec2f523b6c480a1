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

package header

import (
	"time"

	"github.com/google/uuid"
)

// Kind represents the type of sysdiag resource.
type Kind string

// Valid Kind constants.
const (
	KindDiagnosticReport Kind = "DiagnosticReport"
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	return string(k)
}

// IsValid checks if the Kind is one of the recognized kinds.
func (k *Kind) IsValid() bool {
	switch *k {
	case KindDiagnosticReport:
		return true
	default:
		return false
	}
}

// APIVersionV1 is the current report schema version.
const APIVersionV1 = "v1"

// Canonical metadata keys. Renderers display them in the order returned
// by OrderedKeys, so text output stays deterministic despite the map.
const (
	MetaRunID    = "runId"
	MetaHostname = "hostname"
	MetaCreated  = "created"
	MetaVersion  = "version"
	MetaOS       = "os"
	MetaKernel   = "kernel"
	MetaUptime   = "uptime"
	MetaCPUCount = "cpuCount"
	MetaCPUModel = "cpuModel"
	MetaMemory   = "memory"
)

// OrderedKeys returns the canonical display order for report metadata.
func OrderedKeys() []string {
	return []string{
		MetaRunID,
		MetaHostname,
		MetaCreated,
		MetaVersion,
		MetaOS,
		MetaKernel,
		MetaUptime,
		MetaCPUCount,
		MetaCPUModel,
		MetaMemory,
	}
}

// Header contains metadata and versioning information for sysdiag reports.
// It follows Kubernetes-style resource conventions with Kind, APIVersion,
// and Metadata fields.
type Header struct {
	// Kind is the type of the report object.
	Kind Kind `json:"kind,omitempty" yaml:"kind,omitempty"`

	// APIVersion is the schema version of the report object.
	APIVersion string `json:"apiVersion,omitempty" yaml:"apiVersion,omitempty"`

	// Metadata contains key-value pairs describing the run.
	Metadata map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Option is a functional option for configuring Header instances.
type Option func(*Header)

// WithMetadata returns an Option that adds a metadata key-value pair to the
// Header. Empty values are dropped so that reports never carry blank fields.
func WithMetadata(key, value string) Option {
	return func(h *Header) {
		if value == "" {
			return
		}
		if h.Metadata == nil {
			h.Metadata = make(map[string]string)
		}
		h.Metadata[key] = value
	}
}

// WithKind returns an Option that sets the Kind field of the Header.
func WithKind(kind Kind) Option {
	return func(h *Header) {
		h.Kind = kind
	}
}

// WithAPIVersion returns an Option that sets the APIVersion field of the Header.
func WithAPIVersion(version string) Option {
	return func(h *Header) {
		h.APIVersion = version
	}
}

// New creates a new Header instance with the provided functional options.
// The Metadata map is initialized automatically.
func New(opts ...Option) *Header {
	h := &Header{
		Metadata: make(map[string]string),
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// NewReportHeader builds the standard report envelope: DiagnosticReport
// kind, the v1 schema, a fresh run ID, and the creation timestamp in
// RFC 3339 form.
func NewReportHeader(toolVersion string, opts ...Option) *Header {
	base := []Option{
		WithKind(KindDiagnosticReport),
		WithAPIVersion(APIVersionV1),
		WithMetadata(MetaRunID, uuid.NewString()),
		WithMetadata(MetaCreated, time.Now().UTC().Format(time.RFC3339)),
		WithMetadata(MetaVersion, toolVersion),
	}
	return New(append(base, opts...)...)
}

// Get returns the metadata value for key, empty when absent.
func (h *Header) Get(key string) string {
	if h == nil || h.Metadata == nil {
		return ""
	}
	return h.Metadata[key]
}
