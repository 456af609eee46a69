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

// Package orchestrator runs the enabled diagnostic probes concurrently and
// assembles their results into a report.
//
// Each probe runs in its own goroutine under a per-probe timeout. A probe
// that outlives its timeout is abandoned and recorded as failed with message
// "timeout"; when the caller cancels the run, every unfinished probe is
// recorded as "cancelled" and Run returns without waiting for it. A panic
// inside a probe is recovered into a failed result. Results are slotted by
// category, so completion order never affects the report.
//
// Usage:
//
//	cfg, err := config.New(config.WithProbes(probe.System, probe.Storage))
//	if err != nil {
//		return err
//	}
//	rep, err := orchestrator.New().Run(ctx, cfg, progress.Log{})
//
// Metrics are registered with the default Prometheus registry:
//   - hostdiag_run_duration_seconds
//   - hostdiag_probe_duration_seconds{category}
//   - hostdiag_probe_results_total{category,status}
package orchestrator
