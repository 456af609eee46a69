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

// Package probe defines the closed set of diagnostic categories and the
// contract every probe implements.
//
// A Probe collects one category of host health data and always returns a
// Result. Failures are expressed through the Result status, never through
// panics or returned errors:
//
//	ok          data collected
//	degraded    some data collected, some missing or malformed
//	unavailable a required external tool is absent, or the probe was not requested
//	failed      the probe could not produce data (tool error, OS error, timeout)
//
// Results are values. Helpers return copies, so a Result handed to the
// orchestrator is never mutated afterwards.
//
//	func (p *Probe) Collect(ctx context.Context, tools toolbox.Inventory) probe.Result {
//	    if !tools.Lookup(toolbox.Smartctl).Available {
//	        return probe.Unavailable(probe.Storage, "smartctl not found in tools directory")
//	    }
//	    ...
//	    return probe.OK(probe.Storage, payload).WithInvocations(invs...)
//	}
//
// Payloads are probe-specific structs with JSON tags; they are serialized
// as-is into the report.
package probe
