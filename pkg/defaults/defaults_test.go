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

package defaults

import (
	"testing"
	"time"
)

func TestTimeoutConstants(t *testing.T) {
	tests := []struct {
		name     string
		timeout  time.Duration
		minValue time.Duration
		maxValue time.Duration
	}{
		{"ModuleTimeout", ModuleTimeout, 30 * time.Second, 10 * time.Minute},
		{"CommandTimeout", CommandTimeout, 5 * time.Second, 60 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.timeout < tt.minValue {
				t.Errorf("%s (%v) is below minimum expected value (%v)", tt.name, tt.timeout, tt.minValue)
			}
			if tt.timeout > tt.maxValue {
				t.Errorf("%s (%v) is above maximum expected value (%v)", tt.name, tt.timeout, tt.maxValue)
			}
		})
	}

	if ModuleTimeout <= CommandTimeout {
		t.Errorf("ModuleTimeout (%v) must exceed CommandTimeout (%v)", ModuleTimeout, CommandTimeout)
	}
}

func TestWorkerCount(t *testing.T) {
	tests := []struct {
		name      string
		requested int
	}{
		{"explicit", 3},
		{"zero resolves", 0},
		{"negative resolves", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WorkerCount(tt.requested)
			if got < 1 {
				t.Errorf("WorkerCount(%d) = %d, want >= 1", tt.requested, got)
			}
			if tt.requested > 0 && got != tt.requested {
				t.Errorf("WorkerCount(%d) = %d, want %d", tt.requested, got, tt.requested)
			}
			if tt.requested <= 0 && got > MaxWorkers {
				t.Errorf("WorkerCount(%d) = %d, want <= %d", tt.requested, got, MaxWorkers)
			}
		})
	}
}
