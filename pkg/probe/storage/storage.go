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

package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/NVIDIA/hostdiag/pkg/defaults"
	cnserrors "github.com/NVIDIA/hostdiag/pkg/errors"
	"github.com/NVIDIA/hostdiag/pkg/probe"
	"github.com/NVIDIA/hostdiag/pkg/runner"
	"github.com/NVIDIA/hostdiag/pkg/toolbox"
)

// maxParallelDevices bounds concurrent smartctl processes.
const maxParallelDevices = 4

// Payload is the storage probe payload.
type Payload struct {
	Drives []Drive `json:"drives"`
	Note   string  `json:"note,omitempty"`
}

// Drive is the SMART summary of one device.
type Drive struct {
	Device        string   `json:"device"`
	Type          string   `json:"type,omitempty"`
	Model         string   `json:"model,omitempty"`
	Serial        string   `json:"serial,omitempty"`
	CapacityBytes uint64   `json:"capacityBytes,omitempty"`
	Health        string   `json:"health,omitempty"`
	TemperatureC  *float64 `json:"temperatureC,omitempty"`
	NVMe          *NVMe    `json:"nvme,omitempty"`
	ExitCode      int      `json:"exitCode"`
	StatusFlags   []string `json:"statusFlags,omitempty"`
	Error         string   `json:"error,omitempty"`
}

// NVMe holds NVMe-specific wear indicators.
type NVMe struct {
	PercentageUsed   *int   `json:"percentageUsed,omitempty"`
	DataUnitsWritten uint64 `json:"dataUnitsWritten,omitempty"`
	DataWritten      string `json:"dataWritten,omitempty"`
}

// Option configures the Probe.
type Option func(*Probe)

// WithScanTimeout bounds the device discovery call.
func WithScanTimeout(d time.Duration) Option {
	return func(p *Probe) {
		p.scanTimeout = d
	}
}

// WithDeviceTimeout bounds each per-device call.
func WithDeviceTimeout(d time.Duration) Option {
	return func(p *Probe) {
		p.deviceTimeout = d
	}
}

// Probe reads SMART data via smartctl.
type Probe struct {
	runner        runner.Runner
	scanTimeout   time.Duration
	deviceTimeout time.Duration
}

// New creates a storage probe that runs smartctl through r.
func New(r runner.Runner, opts ...Option) *Probe {
	p := &Probe{
		runner:        r,
		scanTimeout:   defaults.SmartctlScanTimeout,
		deviceTimeout: defaults.SmartctlDeviceTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Category implements probe.Probe.
func (p *Probe) Category() probe.Category {
	return probe.Storage
}

// Collect discovers drives and reads their SMART data.
func (p *Probe) Collect(ctx context.Context, tools toolbox.Inventory) probe.Result {
	tool := tools.Lookup(toolbox.Smartctl)
	if !tool.Available {
		return probe.Unavailable(probe.Storage, "smartctl not found in tools directory")
	}

	slog.Debug("scanning storage devices", slog.String("smartctl", tool.Path))

	scanCtx, cancel := context.WithTimeout(ctx, p.scanTimeout)
	scan := p.runner.Run(scanCtx, tool.Path, "--scan-open")
	cancel()

	if err := ctx.Err(); err != nil {
		return probe.Interrupted(probe.Storage, err).WithInvocations(scan)
	}
	if !scan.Succeeded() {
		return failedInvocation("smartctl scan failed", scan)
	}

	devices := parseScan(scan.Stdout)
	if len(devices) == 0 {
		return probe.OK(probe.Storage, Payload{
			Drives: []Drive{},
			Note:   "no drives discovered by smartctl",
		}).WithInvocations(scan)
	}

	drives := make([]Drive, len(devices))
	invs := make([]runner.Invocation, len(devices))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelDevices)
	for i, dev := range devices {
		g.Go(func() error {
			drives[i], invs[i] = p.readDevice(gctx, tool.Path, dev)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return probe.Interrupted(probe.Storage, err).WithInvocations(scan).WithInvocations(invs...)
	}

	parsed := 0
	var problems []string
	for _, d := range drives {
		if d.Error == "" {
			parsed++
			continue
		}
		problems = append(problems, fmt.Sprintf("%s: %s", d.Device, d.Error))
	}

	return probe.Partial(probe.Storage, Payload{Drives: drives}, parsed, len(drives), problems).
		WithInvocations(scan).
		WithInvocations(invs...)
}

func (p *Probe) readDevice(ctx context.Context, smartctl string, dev device) (Drive, runner.Invocation) {
	devCtx, cancel := context.WithTimeout(ctx, p.deviceTimeout)
	defer cancel()

	args := []string{"-a", dev.path}
	if dev.kind != "" {
		args = append(args, "-d", dev.kind)
	}
	inv := p.runner.Run(devCtx, smartctl, args...)

	drive := Drive{Device: dev.path, Type: dev.kind, ExitCode: inv.ExitCode}
	if inv.Err != nil {
		drive.Error = inv.Err.Error()
		return drive, inv
	}
	if inv.ExitCode >= 0 && inv.ExitCode&exitMaskFatal != 0 {
		drive.Error = inv.Summary()
		return drive, inv
	}

	drive.StatusFlags = statusFlags(inv.ExitCode)
	if !parseDevice(inv.Stdout, &drive) {
		drive.Error = "no SMART fields recognized in smartctl output"
	}
	return drive, inv
}

func failedInvocation(prefix string, inv runner.Invocation) probe.Result {
	code := cnserrors.ErrCodeToolExecution
	if inv.Err != nil {
		code = cnserrors.CodeOf(inv.Err)
	}
	return probe.Failed(probe.Storage, code, prefix+": "+inv.Summary()).WithInvocations(inv)
}
