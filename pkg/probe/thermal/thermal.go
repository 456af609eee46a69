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

package thermal

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/NVIDIA/hostdiag/pkg/defaults"
	cnserrors "github.com/NVIDIA/hostdiag/pkg/errors"
	"github.com/NVIDIA/hostdiag/pkg/probe"
	"github.com/NVIDIA/hostdiag/pkg/runner"
	"github.com/NVIDIA/hostdiag/pkg/toolbox"
)

const (
	SourceLibreHardwareMonitor = "LibreHardwareMonitorCLI"
	SourceLMSensors            = "lm-sensors"
)

// Payload is the thermal probe payload.
type Payload struct {
	Source   string    `json:"source"`
	Readings []Reading `json:"readings"`
	Dropped  int       `json:"dropped"`
	Note     string    `json:"note,omitempty"`
}

// Reading is one temperature sensor.
type Reading struct {
	Name     string  `json:"name"`
	Hardware string  `json:"hardware,omitempty"`
	ValueC   float64 `json:"valueC"`
}

// Option configures the Probe.
type Option func(*Probe)

// WithTimeout bounds the tool invocation.
func WithTimeout(d time.Duration) Option {
	return func(p *Probe) {
		p.timeout = d
	}
}

// Probe reads sensors through the hardware monitor tool.
type Probe struct {
	runner  runner.Runner
	timeout time.Duration
}

// New creates a thermal probe that runs the tool through r.
func New(r runner.Runner, opts ...Option) *Probe {
	p := &Probe{runner: r, timeout: defaults.HWMonitorTimeout}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Category implements probe.Probe.
func (p *Probe) Category() probe.Category {
	return probe.Thermal
}

// Collect runs the hardware monitor and parses its temperature sensors.
func (p *Probe) Collect(ctx context.Context, tools toolbox.Inventory) probe.Result {
	tool := tools.Lookup(toolbox.HWMonitor)
	if !tool.Available {
		return probe.Unavailable(probe.Thermal, "hardware monitor not found in tools directory")
	}

	source, args := dialect(tool.Path)
	slog.Debug("reading temperature sensors", slog.String("tool", tool.Path), slog.String("source", source))

	runCtx, cancel := context.WithTimeout(ctx, p.timeout)
	inv := p.runner.Run(runCtx, tool.Path, args...)
	cancel()

	if err := ctx.Err(); err != nil {
		return probe.Interrupted(probe.Thermal, err).WithInvocations(inv)
	}
	if !inv.Succeeded() {
		code := cnserrors.ErrCodeToolExecution
		if inv.Err != nil {
			code = cnserrors.CodeOf(inv.Err)
		}
		return probe.Failed(probe.Thermal, code, "hardware monitor failed: "+inv.Summary()).WithInvocations(inv)
	}

	var (
		readings []Reading
		dropped  []string
		err      error
	)
	switch source {
	case SourceLibreHardwareMonitor:
		readings, dropped, err = parseLHM([]byte(inv.Stdout))
	default:
		readings, dropped, err = parseSensors([]byte(inv.Stdout))
	}
	if err != nil {
		return probe.Failed(probe.Thermal, cnserrors.ErrCodeParse,
			fmt.Sprintf("unparseable %s output: %v", source, err)).WithInvocations(inv)
	}

	payload := Payload{Source: source, Readings: readings, Dropped: len(dropped)}
	if payload.Readings == nil {
		payload.Readings = []Reading{}
	}
	if len(readings) == 0 && len(dropped) == 0 {
		payload.Note = "no temperature sensors reported"
	}

	var problems []string
	if len(dropped) > 0 {
		problems = append(problems, fmt.Sprintf("dropped %d non-numeric readings: %s",
			len(dropped), strings.Join(dropped, ", ")))
	}
	return probe.Partial(probe.Thermal, payload, len(readings), len(readings)+len(dropped), problems).
		WithInvocations(inv)
}

func dialect(path string) (string, []string) {
	name := path[strings.LastIndexAny(path, `/\`)+1:]
	if strings.HasPrefix(strings.ToLower(name), "librehardwaremonitor") {
		return SourceLibreHardwareMonitor, []string{"--json"}
	}
	return SourceLMSensors, []string{"-j"}
}
