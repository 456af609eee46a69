// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
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

package orchestrator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hostdiag_run_duration_seconds",
			Help:    "Time taken to complete a diagnostic run",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
		},
	)

	runTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hostdiag_runs_total",
			Help: "Total number of diagnostic runs",
		},
	)

	probeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hostdiag_probe_duration_seconds",
			Help:    "Time taken by individual probes",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 180},
		},
		[]string{"category"},
	)

	probeResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hostdiag_probe_results_total",
			Help: "Probe outcomes by category and status",
		},
		[]string{"category", "status"}, // ok, degraded, unavailable, failed
	)
)
