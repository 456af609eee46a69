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

package eventlog

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/coreos/go-systemd/v22/dbus"

	"github.com/NVIDIA/hostdiag/pkg/defaults"
	"github.com/NVIDIA/hostdiag/pkg/probe"
	"github.com/NVIDIA/hostdiag/pkg/runner"
	"github.com/NVIDIA/hostdiag/pkg/toolbox"
)

// Payload is the eventlog probe payload.
type Payload struct {
	Platform     string   `json:"platform"`
	Sources      []string `json:"sources"`
	KernelErrors []Entry  `json:"kernelErrors,omitempty"`
	FailedUnits  []Unit   `json:"failedUnits,omitempty"`
	Bugchecks    []Event  `json:"bugchecks,omitempty"`
}

// Entry is one journal record.
type Entry struct {
	Time       string `json:"time,omitempty"`
	Priority   int    `json:"priority"`
	Identifier string `json:"identifier,omitempty"`
	Message    string `json:"message"`
}

// Unit is a failed systemd unit.
type Unit struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	LoadState   string `json:"loadState"`
	ActiveState string `json:"activeState"`
	SubState    string `json:"subState"`
}

// Event is a Windows event log record.
type Event struct {
	Time     string `json:"time,omitempty"`
	Provider string `json:"provider,omitempty"`
	ID       int    `json:"id"`
	Level    string `json:"level,omitempty"`
	Message  string `json:"message"`
}

// UnitLister lists systemd units by state.
type UnitLister interface {
	ListUnitsFilteredContext(ctx context.Context, states []string) ([]dbus.UnitStatus, error)
	Close()
}

// ConnectFunc opens a systemd connection.
type ConnectFunc func(ctx context.Context) (UnitLister, error)

// Option configures the Probe.
type Option func(*Probe)

// WithMaxEntries limits the number of records read per source.
func WithMaxEntries(n int) Option {
	return func(p *Probe) {
		if n > 0 {
			p.maxEntries = n
		}
	}
}

// WithSystemd replaces the systemd connection factory.
func WithSystemd(connect ConnectFunc) Option {
	return func(p *Probe) {
		p.connect = connect
	}
}

// WithGOOS selects the platform implementation.
func WithGOOS(goos string) Option {
	return func(p *Probe) {
		p.goos = goos
	}
}

// WithTimeout bounds each source query.
func WithTimeout(d time.Duration) Option {
	return func(p *Probe) {
		p.timeout = d
	}
}

// Probe collects event log entries.
type Probe struct {
	runner     runner.Runner
	connect    ConnectFunc
	maxEntries int
	goos       string
	timeout    time.Duration
}

// New creates an eventlog probe that runs OS queries through r.
func New(r runner.Runner, opts ...Option) *Probe {
	p := &Probe{
		runner:     r,
		connect:    connectSystemd,
		maxEntries: defaults.MaxEventLogEntries,
		goos:       runtime.GOOS,
		timeout:    defaults.EventLogQueryTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Category implements probe.Probe.
func (p *Probe) Category() probe.Category {
	return probe.EventLog
}

// Collect reads recent error events for the current platform.
func (p *Probe) Collect(ctx context.Context, _ toolbox.Inventory) probe.Result {
	slog.Debug("collecting event log entries", slog.String("platform", p.goos), slog.Int("max", p.maxEntries))

	if err := ctx.Err(); err != nil {
		return probe.Interrupted(probe.EventLog, err)
	}

	switch p.goos {
	case "linux":
		return p.collectLinux(ctx)
	case "windows":
		return p.collectWindows(ctx)
	default:
		return probe.Unavailable(probe.EventLog, "event log collection is not supported on "+p.goos)
	}
}

func connectSystemd(ctx context.Context) (UnitLister, error) {
	conn, err := dbus.NewSystemdConnectionContext(ctx)
	if err != nil {
		return nil, err
	}
	return conn, nil
}
