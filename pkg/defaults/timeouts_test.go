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
		// Probe timeouts
		{"ProbeTimeout", ProbeTimeout, 10 * time.Second, 5 * time.Minute},
		{"StorageProbeTimeout", StorageProbeTimeout, time.Minute, 10 * time.Minute},
		{"CancelGracePeriod", CancelGracePeriod, 100 * time.Millisecond, 10 * time.Second},

		// Tool timeouts
		{"SmartctlScanTimeout", SmartctlScanTimeout, 5 * time.Second, time.Minute},
		{"SmartctlDeviceTimeout", SmartctlDeviceTimeout, 10 * time.Second, 2 * time.Minute},
		{"HWMonitorTimeout", HWMonitorTimeout, 5 * time.Second, time.Minute},
		{"EventLogQueryTimeout", EventLogQueryTimeout, 5 * time.Second, time.Minute},

		// Server timeouts
		{"ServerReadTimeout", ServerReadTimeout, 5 * time.Second, 30 * time.Second},
		{"ServerShutdownTimeout", ServerShutdownTimeout, 10 * time.Second, 60 * time.Second},
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
}

func TestToolTimeoutsFitInProbeTimeouts(t *testing.T) {
	// A single tool call must finish before the probe that wraps it times out
	for name, tool := range map[string]time.Duration{
		"HWMonitorTimeout":     HWMonitorTimeout,
		"EventLogQueryTimeout": EventLogQueryTimeout,
		"DriverQueryTimeout":   DriverQueryTimeout,
	} {
		if tool >= ProbeTimeout {
			t.Errorf("%s (%v) should be less than ProbeTimeout (%v)", name, tool, ProbeTimeout)
		}
	}

	if SmartctlScanTimeout+SmartctlDeviceTimeout >= StorageProbeTimeout {
		t.Errorf("scan plus one device read (%v) should fit in StorageProbeTimeout (%v)",
			SmartctlScanTimeout+SmartctlDeviceTimeout, StorageProbeTimeout)
	}
}

func TestServerTimeoutRelationships(t *testing.T) {
	if ServerReadTimeout > ServerWriteTimeout {
		t.Errorf("ServerReadTimeout (%v) should not exceed ServerWriteTimeout (%v)",
			ServerReadTimeout, ServerWriteTimeout)
	}

	// A report request must be able to outlast the slowest probe
	if ServerWriteTimeout <= StorageProbeTimeout {
		t.Errorf("ServerWriteTimeout (%v) should exceed StorageProbeTimeout (%v)",
			ServerWriteTimeout, StorageProbeTimeout)
	}

	if ServerIdleTimeout < ServerWriteTimeout {
		t.Errorf("ServerIdleTimeout (%v) should be at least ServerWriteTimeout (%v)",
			ServerIdleTimeout, ServerWriteTimeout)
	}
}
