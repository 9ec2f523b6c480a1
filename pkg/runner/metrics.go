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

package runner

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Module execution metrics
	moduleDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sysdiag_module_duration_seconds",
			Help:    "Diagnostic module execution time in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"module"},
	)

	moduleOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sysdiag_module_outcomes_total",
			Help: "Terminal module statuses per run",
		},
		[]string{"module", "status"},
	)

	modulesInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sysdiag_modules_in_flight",
			Help: "Current number of modules executing",
		},
	)
)
