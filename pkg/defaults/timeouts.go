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

package defaults

import "time"

// Probe timeouts enforced by the orchestrator.
const (
	// ProbeTimeout is the default per-probe timeout.
	ProbeTimeout = 60 * time.Second

	// StorageProbeTimeout is the default timeout for the storage probe,
	// which reads SMART data from up to four drives at a time.
	StorageProbeTimeout = 3 * time.Minute

	// CancelGracePeriod is the longest a run may take to return after its
	// context is cancelled. The orchestrator abandons unfinished probes at
	// once, so this is the bound its tests hold it to.
	CancelGracePeriod = 2 * time.Second
)

// Tool timeouts for single subprocess invocations inside a probe.
const (
	// SmartctlScanTimeout bounds `smartctl --scan-open`.
	SmartctlScanTimeout = 25 * time.Second

	// SmartctlDeviceTimeout bounds `smartctl -a <device>` for one drive.
	SmartctlDeviceTimeout = 60 * time.Second

	// HWMonitorTimeout bounds a hardware monitor sensor dump.
	HWMonitorTimeout = 30 * time.Second

	// EventLogQueryTimeout bounds journal or Windows event log queries.
	EventLogQueryTimeout = 25 * time.Second

	// DriverQueryTimeout bounds the Windows driver enumeration query.
	DriverQueryTimeout = 30 * time.Second
)

// Network probe timeouts.
const (
	// NetworkDialTimeout bounds one TCP reachability attempt.
	NetworkDialTimeout = 3 * time.Second

	// DNSLookupTimeout bounds the DNS resolution check.
	DNSLookupTimeout = 8 * time.Second
)

// Server timeouts for HTTP server configuration.
const (
	// ServerReadTimeout is the maximum duration for reading request headers.
	ServerReadTimeout = 10 * time.Second

	// ServerReadHeaderTimeout prevents slow header attacks.
	ServerReadHeaderTimeout = 5 * time.Second

	// ServerWriteTimeout is the maximum duration for writing a response.
	// A report request runs the full probe set, so this exceeds StorageProbeTimeout.
	ServerWriteTimeout = 4 * time.Minute

	// ServerIdleTimeout is the maximum duration to wait for the next request.
	ServerIdleTimeout = 5 * time.Minute

	// ServerShutdownTimeout is the maximum duration for graceful shutdown.
	ServerShutdownTimeout = 30 * time.Second
)

// Destination timeouts.
const (
	// ConfigMapWriteTimeout is the timeout for writing to ConfigMaps.
	ConfigMapWriteTimeout = 30 * time.Second

	// OCIPushTimeout is the timeout for pushing a bundle to a registry.
	OCIPushTimeout = 2 * time.Minute
)

// Collection limits.
const (
	// MaxEventLogEntries is the default number of event log entries collected.
	MaxEventLogEntries = 5

	// OutdatedDriverAge is the driver age after which a driver is flagged outdated.
	OutdatedDriverAge = 2 * 365 * 24 * time.Hour

	// NetworkDNSHost is the default host resolved by the network probe.
	NetworkDNSHost = "google.com"

	// NetworkReachabilityTarget is the default TCP target of the network probe.
	NetworkReachabilityTarget = "1.1.1.1:443"

	// NetworkReachabilityAttempts is the number of TCP dials used for latency.
	NetworkReachabilityAttempts = 3
)
