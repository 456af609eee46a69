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

// Package collector builds the diagnostic probes.
//
// # Factory Pattern
//
// The Factory interface has one constructor per probe category so callers
// and tests can substitute individual probes:
//
//	type Factory interface {
//	    CreateSystemProbe() probe.Probe
//	    CreateStorageProbe() probe.Probe
//	    CreateDriverProbe() probe.Probe
//	    CreateThermalProbe() probe.Probe
//	    CreateNetworkProbe() probe.Probe
//	    CreateEventLogProbe() probe.Probe
//	}
//
// ForCategory maps a probe.Category onto the matching constructor and is the
// only place the category set is switched on.
//
// The DefaultFactory wires production dependencies. Tool-backed probes share
// one subprocess runner:
//
//	factory := collector.NewDefaultFactory(
//	    collector.WithDNSHost("example.com"),
//	    collector.WithMaxEventLogEntries(10),
//	)
//	p, err := collector.ForCategory(factory, probe.Storage)
//
// Tests inject a scripted runner:
//
//	factory := collector.NewDefaultFactory(collector.WithRunner(runner.NewFake()))
//
// # Subpackages
//
// file: procfs/sysfs text parsing used by the Linux probes.
package collector
