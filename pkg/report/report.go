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

package report

import (
	"fmt"
	"maps"
	"time"

	cnserrors "github.com/NVIDIA/hostdiag/pkg/errors"
	"github.com/NVIDIA/hostdiag/pkg/probe"
	"github.com/NVIDIA/hostdiag/pkg/probe/system"
	"github.com/NVIDIA/hostdiag/pkg/toolbox"
	"github.com/NVIDIA/hostdiag/pkg/version"
)

// SchemaVersion is the version of the Report document layout.
const SchemaVersion = "1.0"

// Report is the assembled outcome of one diagnostic run. It is immutable
// once returned by Aggregate.
type Report struct {
	SchemaVersion string                   `json:"schemaVersion" yaml:"schemaVersion"`
	GeneratedAt   time.Time                `json:"generatedAt" yaml:"generatedAt"`
	Host          system.Identity          `json:"host" yaml:"host"`
	Run           Run                      `json:"run" yaml:"run"`
	Tools         map[string]Tool          `json:"tools" yaml:"tools"`
	Probes        map[probe.Category]Entry `json:"probes" yaml:"probes"`

	logs map[probe.Category]string
}

// Run describes the run that produced the report.
type Run struct {
	ID         string    `json:"id" yaml:"id"`
	Version    string    `json:"version" yaml:"version"`
	StartedAt  time.Time `json:"startedAt" yaml:"startedAt"`
	DurationMs int64     `json:"durationMs" yaml:"durationMs"`

	// Probes lists the requested categories in the order the run declared them.
	Probes []probe.Category `json:"probes,omitempty" yaml:"probes,omitempty"`
}

// Tool is the availability of one external tool.
type Tool struct {
	Available bool   `json:"available" yaml:"available"`
	Path      string `json:"path,omitempty" yaml:"path,omitempty"`
}

// Entry is the outcome of one probe category.
type Entry struct {
	Status     probe.Status `json:"status" yaml:"status"`
	Payload    any          `json:"payload" yaml:"payload"`
	Message    *string      `json:"message" yaml:"message"`
	Code       string       `json:"code,omitempty" yaml:"code,omitempty"`
	DurationMs int64        `json:"durationMs" yaml:"durationMs"`
}

// MessageText returns the message or "" when there is none.
func (e Entry) MessageText() string {
	if e.Message == nil {
		return ""
	}
	return *e.Message
}

// Meta is the run-level information supplied by the orchestrator.
type Meta struct {
	GeneratedAt time.Time
	Host        system.Identity
	RunID       string
	Version     string
	StartedAt   time.Time
	Duration    time.Duration
	Tools       toolbox.Inventory
}

// Aggregate assembles a Report from probe results. Categories without a
// result are recorded as not requested. A duplicate or unknown category is an
// internal error.
func Aggregate(meta Meta, results []probe.Result) (*Report, error) {
	generated := meta.GeneratedAt
	if generated.IsZero() {
		generated = time.Now()
	}

	r := &Report{
		SchemaVersion: SchemaVersion,
		GeneratedAt:   generated.UTC().Truncate(time.Second),
		Host:          meta.Host,
		Run: Run{
			ID:         meta.RunID,
			Version:    meta.Version,
			StartedAt:  meta.StartedAt.UTC(),
			DurationMs: meta.Duration.Milliseconds(),
		},
		Tools:  make(map[string]Tool, len(toolbox.Tools)),
		Probes: make(map[probe.Category]Entry, len(probe.Categories)),
		logs:   make(map[probe.Category]string),
	}

	for _, a := range meta.Tools.Summary() {
		r.Tools[a.Tool.String()] = Tool{Available: a.Available, Path: a.Path}
	}

	for _, res := range results {
		if !res.Category.IsValid() {
			return nil, cnserrors.New(cnserrors.ErrCodeInternal,
				fmt.Sprintf("result for unknown category %q", res.Category))
		}
		if _, dup := r.Probes[res.Category]; dup {
			return nil, cnserrors.New(cnserrors.ErrCodeInternal,
				fmt.Sprintf("duplicate result for category %q", res.Category))
		}
		r.Probes[res.Category] = entryFrom(res)
		r.Run.Probes = append(r.Run.Probes, res.Category)
		if log := res.RawLog(); log != "" {
			r.logs[res.Category] = log
		}
	}

	for _, c := range probe.Categories {
		if _, ok := r.Probes[c]; !ok {
			r.Probes[c] = entryFrom(probe.NotRequested(c))
		}
	}

	if err := r.Validate(); err != nil {
		return nil, cnserrors.Wrap(cnserrors.ErrCodeInternal, "assembled report is invalid", err)
	}
	return r, nil
}

func entryFrom(res probe.Result) Entry {
	e := Entry{
		Status:     res.Status,
		Payload:    res.Payload,
		Code:       string(res.Code),
		DurationMs: res.Duration.Milliseconds(),
	}
	if res.Message != "" {
		msg := res.Message
		e.Message = &msg
	}
	return e
}

var schema = version.MustParseVersion(SchemaVersion)

// Validate checks that the schema version is readable, that every category
// is present exactly once with a known status and that the run's probe list
// names each category at most once. Documents from an older minor
// schema version are accepted.
func (r *Report) Validate() error {
	doc, err := version.ParseVersion(r.SchemaVersion)
	if err != nil {
		return cnserrors.Wrap(cnserrors.ErrCodeInvalidRequest,
			fmt.Sprintf("invalid schema version %q", r.SchemaVersion), err)
	}
	if !version.Readable(schema, doc) {
		return cnserrors.New(cnserrors.ErrCodeInvalidRequest,
			fmt.Sprintf("unsupported schema version %q", r.SchemaVersion))
	}
	if len(r.Probes) != len(probe.Categories) {
		return cnserrors.New(cnserrors.ErrCodeInvalidRequest,
			fmt.Sprintf("report has %d probe entries, want %d", len(r.Probes), len(probe.Categories)))
	}
	for _, c := range probe.Categories {
		e, ok := r.Probes[c]
		if !ok {
			return cnserrors.New(cnserrors.ErrCodeInvalidRequest, fmt.Sprintf("missing probe entry %q", c))
		}
		if !e.Status.IsValid() {
			return cnserrors.New(cnserrors.ErrCodeInvalidRequest,
				fmt.Sprintf("probe %q has invalid status %q", c, e.Status))
		}
	}
	seen := make(map[probe.Category]bool, len(r.Run.Probes))
	for _, c := range r.Run.Probes {
		if !c.IsValid() || seen[c] {
			return cnserrors.New(cnserrors.ErrCodeInvalidRequest,
				fmt.Sprintf("run lists unknown or repeated probe %q", c))
		}
		seen[c] = true
	}
	return nil
}

// Entry returns the entry for c.
func (r *Report) Entry(c probe.Category) Entry {
	return r.Probes[c]
}

// Log returns the raw tool log for c, or "".
func (r *Report) Log(c probe.Category) string {
	return r.logs[c]
}

// Logs returns a copy of the raw tool logs keyed by category.
func (r *Report) Logs() map[probe.Category]string {
	return maps.Clone(r.logs)
}

// Order returns every category for presentation: the requested ones in
// declared order, then the rest in canonical order.
func (r *Report) Order() []probe.Category {
	out := make([]probe.Category, 0, len(probe.Categories))
	seen := make(map[probe.Category]bool, len(probe.Categories))
	for _, c := range r.Run.Probes {
		if c.IsValid() && !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	for _, c := range probe.Categories {
		if !seen[c] {
			out = append(out, c)
		}
	}
	return out
}

// Counts tallies entries by status.
func (r *Report) Counts() map[probe.Status]int {
	out := make(map[probe.Status]int, 4)
	for _, e := range r.Probes {
		out[e.Status]++
	}
	return out
}
