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

package system

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/NVIDIA/hostdiag/pkg/collector/file"
	"github.com/NVIDIA/hostdiag/pkg/probe"
	"github.com/NVIDIA/hostdiag/pkg/toolbox"
)

// Info is the system probe payload.
type Info struct {
	Hostname         string   `json:"hostname"`
	OS               string   `json:"os"`
	Platform         string   `json:"platform"`
	Arch             string   `json:"arch"`
	Kernel           string   `json:"kernel,omitempty"`
	CPU              CPU      `json:"cpu"`
	MemoryTotalBytes uint64   `json:"memoryTotalBytes,omitempty"`
	BootTime         string   `json:"bootTime,omitempty"`
	Elevated         bool     `json:"elevated"`
	Volumes          []Volume `json:"volumes"`
	Notes            []string `json:"notes,omitempty"`
}

// CPU describes the processor.
type CPU struct {
	Model         string `json:"model,omitempty"`
	PhysicalCores int    `json:"physicalCores,omitempty"`
	LogicalCores  int    `json:"logicalCores"`
}

// Volume is a mounted filesystem.
type Volume struct {
	Mount       string  `json:"mount"`
	Device      string  `json:"device,omitempty"`
	FSType      string  `json:"fsType,omitempty"`
	TotalBytes  uint64  `json:"totalBytes"`
	FreeBytes   uint64  `json:"freeBytes"`
	UsedPercent float64 `json:"usedPercent"`
}

// Identity is the host header of a report.
type Identity struct {
	Hostname string `json:"hostname"`
	OS       string `json:"os"`
	Platform string `json:"platform"`
	Arch     string `json:"arch"`
	Elevated bool   `json:"elevated"`
}

// Option configures the Probe.
type Option func(*Probe)

// WithRoot reads procfs and /etc from root instead of the host root.
func WithRoot(root string) Option {
	return func(p *Probe) {
		p.parser = file.NewParser(file.WithRoot(root), file.WithMaxSize(4<<20))
	}
}

// WithHostname overrides the hostname lookup.
func WithHostname(fn func() (string, error)) Option {
	return func(p *Probe) {
		p.hostname = fn
	}
}

// Probe collects system information.
type Probe struct {
	parser   *file.Parser
	hostname func() (string, error)
}

// New creates a system probe.
func New(opts ...Option) *Probe {
	p := &Probe{
		parser:   file.NewParser(file.WithMaxSize(4 << 20)),
		hostname: os.Hostname,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Category implements probe.Probe.
func (p *Probe) Category() probe.Category {
	return probe.System
}

// Collect gathers host identity, CPU, memory and volume data.
func (p *Probe) Collect(ctx context.Context, _ toolbox.Inventory) probe.Result {
	slog.Debug("collecting system information")

	if err := ctx.Err(); err != nil {
		return probe.Interrupted(probe.System, err)
	}

	info := Info{
		OS:       runtime.GOOS,
		Arch:     runtime.GOARCH,
		Platform: platformName(p.parser),
		Elevated: isElevated(),
		CPU:      CPU{LogicalCores: runtime.NumCPU()},
		Volumes:  []Volume{},
	}

	host, err := p.hostname()
	if err != nil {
		slog.Warn("hostname lookup failed", slog.String("error", err.Error()))
		info.Notes = append(info.Notes, "hostname: "+err.Error())
	}
	info.Hostname = host

	info.Notes = append(info.Notes, collectPlatform(ctx, p.parser, &info)...)

	if info.Hostname == "" {
		return probe.Degraded(probe.System, info, "host identity could not be read")
	}
	return probe.OK(probe.System, info)
}

// Identify returns the host identity for the report header.
func Identify() Identity {
	return identify(file.NewParser(), os.Hostname)
}

func identify(parser *file.Parser, hostname func() (string, error)) Identity {
	host, err := hostname()
	if err != nil {
		slog.Debug("hostname lookup failed", slog.String("error", err.Error()))
	}
	return Identity{
		Hostname: host,
		OS:       runtime.GOOS,
		Platform: platformName(parser),
		Arch:     runtime.GOARCH,
		Elevated: isElevated(),
	}
}

func usedPercent(total, free uint64) float64 {
	if total == 0 || free > total {
		return 0
	}
	pct := float64(total-free) / float64(total) * 100
	return float64(int64(pct*10+0.5)) / 10
}

func formatBootTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
