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

package driver

import (
	"context"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"github.com/NVIDIA/hostdiag/pkg/collector/file"
	"github.com/NVIDIA/hostdiag/pkg/defaults"
	"github.com/NVIDIA/hostdiag/pkg/probe"
	"github.com/NVIDIA/hostdiag/pkg/runner"
	"github.com/NVIDIA/hostdiag/pkg/toolbox"
)

// Payload is the driver probe payload.
type Payload struct {
	Platform          string          `json:"platform"`
	Modules           []Module        `json:"modules,omitempty"`
	PCIDevicesScanned int             `json:"pciDevicesScanned,omitempty"`
	UnboundPCIDevices []PCIDevice     `json:"unboundPciDevices,omitempty"`
	DriversScanned    int             `json:"driversScanned,omitempty"`
	ProblemDevices    []ProblemDevice `json:"problemDevices,omitempty"`
}

// Module is a loaded Linux kernel module.
type Module struct {
	Name      string   `json:"name"`
	SizeBytes uint64   `json:"sizeBytes"`
	RefCount  int      `json:"refCount"`
	UsedBy    []string `json:"usedBy,omitempty"`
	State     string   `json:"state,omitempty"`
}

// PCIDevice is a PCI function as seen in sysfs.
type PCIDevice struct {
	Address string `json:"address"`
	Vendor  string `json:"vendor,omitempty"`
	Device  string `json:"device,omitempty"`
	Class   string `json:"class,omitempty"`
}

// ProblemDevice is a Windows device reporting a problem code.
type ProblemDevice struct {
	Name          string `json:"name"`
	DeviceID      string `json:"deviceId"`
	ProblemCode   int    `json:"problemCode"`
	Manufacturer  string `json:"manufacturer,omitempty"`
	DriverVersion string `json:"driverVersion,omitempty"`
	DriverDate    string `json:"driverDate,omitempty"`
	Outdated      bool   `json:"outdated"`
}

// Option configures the Probe.
type Option func(*Probe)

// WithRoot reads procfs and sysfs from root.
func WithRoot(root string) Option {
	return func(p *Probe) {
		p.parser = file.NewParser(file.WithRoot(root))
	}
}

// WithGOOS selects the platform implementation.
func WithGOOS(goos string) Option {
	return func(p *Probe) {
		p.goos = goos
	}
}

// WithClock sets the time source used for driver age.
func WithClock(now func() time.Time) Option {
	return func(p *Probe) {
		p.now = now
	}
}

// WithTimeout bounds each OS query subprocess.
func WithTimeout(d time.Duration) Option {
	return func(p *Probe) {
		p.timeout = d
	}
}

// Probe collects driver state.
type Probe struct {
	runner  runner.Runner
	parser  *file.Parser
	goos    string
	now     func() time.Time
	timeout time.Duration
}

// New creates a driver probe. The runner is used on Windows only.
func New(r runner.Runner, opts ...Option) *Probe {
	p := &Probe{
		runner:  r,
		parser:  file.NewParser(),
		goos:    runtime.GOOS,
		now:     time.Now,
		timeout: defaults.DriverQueryTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Category implements probe.Probe.
func (p *Probe) Category() probe.Category {
	return probe.Drivers
}

// Collect gathers driver state for the current platform.
func (p *Probe) Collect(ctx context.Context, _ toolbox.Inventory) probe.Result {
	slog.Debug("collecting driver state", slog.String("platform", p.goos))

	if err := ctx.Err(); err != nil {
		return probe.Interrupted(probe.Drivers, err)
	}

	switch p.goos {
	case "linux":
		return p.collectLinux(ctx)
	case "windows":
		return p.collectWindows(ctx)
	default:
		return probe.Unavailable(probe.Drivers, "driver enumeration is not supported on "+p.goos)
	}
}

func result(payload Payload, problems []string) probe.Result {
	if len(problems) > 0 {
		return probe.Degraded(probe.Drivers, payload, strings.Join(problems, "; "))
	}
	return probe.OK(probe.Drivers, payload)
}
