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
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithOptions(t *testing.T) {
	h := New(
		WithKind(KindDiagnosticReport),
		WithAPIVersion(APIVersionV1),
		WithMetadata(MetaHostname, "testhost"),
	)

	assert.Equal(t, KindDiagnosticReport, h.Kind)
	assert.Equal(t, "v1", h.APIVersion)
	assert.Equal(t, "testhost", h.Get(MetaHostname))
}

func TestWithMetadataDropsEmptyValues(t *testing.T) {
	h := New(WithMetadata(MetaOS, ""))
	_, present := h.Metadata[MetaOS]
	assert.False(t, present)
}

func TestNewReportHeader(t *testing.T) {
	h := NewReportHeader("v1.2.3", WithMetadata(MetaHostname, "host-1"))

	assert.Equal(t, KindDiagnosticReport, h.Kind)
	assert.Equal(t, APIVersionV1, h.APIVersion)
	assert.Equal(t, "v1.2.3", h.Get(MetaVersion))
	assert.Equal(t, "host-1", h.Get(MetaHostname))

	_, err := uuid.Parse(h.Get(MetaRunID))
	require.NoError(t, err, "runId must be a valid uuid")

	created, err := time.Parse(time.RFC3339, h.Get(MetaCreated))
	require.NoError(t, err, "created must be RFC 3339")
	assert.WithinDuration(t, time.Now().UTC(), created, time.Minute)
}

func TestKindIsValid(t *testing.T) {
	k := KindDiagnosticReport
	assert.True(t, k.IsValid())
	assert.Equal(t, "DiagnosticReport", k.String())

	bad := Kind("Snapshot")
	assert.False(t, bad.IsValid())
}

func TestOrderedKeysCoverCanonicalSet(t *testing.T) {
	keys := OrderedKeys()
	require.NotEmpty(t, keys)
	assert.Equal(t, MetaRunID, keys[0])

	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		assert.False(t, seen[k], "duplicate key %q", k)
		seen[k] = true
	}
}

func TestGetOnNil(t *testing.T) {
	var h *Header
	assert.Equal(t, "", h.Get(MetaHostname))
}
