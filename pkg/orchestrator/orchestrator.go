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

package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/NVIDIA/hostdiag/pkg/collector"
	"github.com/NVIDIA/hostdiag/pkg/config"
	cnserrors "github.com/NVIDIA/hostdiag/pkg/errors"
	"github.com/NVIDIA/hostdiag/pkg/probe"
	"github.com/NVIDIA/hostdiag/pkg/probe/system"
	"github.com/NVIDIA/hostdiag/pkg/progress"
	"github.com/NVIDIA/hostdiag/pkg/report"
)

// Orchestrator runs probes and aggregates their results.
type Orchestrator struct {
	// Factory builds the probes. If nil, a default factory is derived from
	// the run configuration.
	Factory collector.Factory

	// Identify returns the host identity for the report header.
	Identify func() system.Identity

	// Now is the clock used for run timestamps.
	Now func() time.Time

	// NewID generates run identifiers.
	NewID func() string
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithFactory sets the probe factory.
func WithFactory(f collector.Factory) Option {
	return func(o *Orchestrator) {
		o.Factory = f
	}
}

// WithIdentify overrides host identification.
func WithIdentify(fn func() system.Identity) Option {
	return func(o *Orchestrator) {
		if fn != nil {
			o.Identify = fn
		}
	}
}

// WithClock overrides the clock.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.Now = now
		}
	}
}

// WithIDGenerator overrides run id generation.
func WithIDGenerator(fn func() string) Option {
	return func(o *Orchestrator) {
		if fn != nil {
			o.NewID = fn
		}
	}
}

// New creates an Orchestrator.
func New(opts ...Option) *Orchestrator {
	o := &Orchestrator{
		Identify: system.Identify,
		Now:      time.Now,
		NewID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run executes every probe enabled in cfg and returns the assembled report.
// It fails only for an invalid configuration; probe failures are recorded in
// the report.
func (o *Orchestrator) Run(ctx context.Context, cfg *config.RunConfig, sink progress.Sink) (*report.Report, error) {
	if cfg == nil {
		return nil, cnserrors.New(cnserrors.ErrCodeInvalidRequest, "run configuration is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if sink == nil {
		sink = progress.Nop{}
	}

	factory := o.Factory
	if factory == nil {
		factory = collector.NewDefaultFactory(
			collector.WithDNSHost(cfg.DNSHost()),
			collector.WithReachabilityTarget(cfg.ReachabilityTarget()),
			collector.WithMaxEventLogEntries(cfg.MaxEventLogEntries()),
		)
	}

	runID := o.NewID()
	started := o.Now()
	categories := cfg.Probes()

	slog.Debug("starting diagnostic run",
		slog.String("id", runID),
		slog.Any("probes", categories),
		slog.Duration("maxTimeout", cfg.MaxTimeout()))

	runTotal.Inc()
	defer func() {
		runDuration.Observe(time.Since(started).Seconds())
	}()

	// Each slot is written by exactly one goroutine.
	results := make([]probe.Result, len(categories))

	var g errgroup.Group
	for i, cat := range categories {
		g.Go(func() error {
			results[i] = o.supervise(ctx, cfg, factory, cat, sink)
			return nil
		})
	}

	identity := make(chan system.Identity, 1)
	go func() {
		identity <- o.Identify()
	}()

	_ = g.Wait()

	var host system.Identity
	select {
	case host = <-identity:
	default:
		select {
		case host = <-identity:
		case <-ctx.Done():
			slog.Warn("host identification abandoned", slog.String("error", ctx.Err().Error()))
		}
	}

	rep, err := report.Aggregate(report.Meta{
		GeneratedAt: o.Now(),
		Host:        host,
		RunID:       runID,
		Version:     cfg.Version(),
		StartedAt:   started,
		Duration:    o.Now().Sub(started),
		Tools:       cfg.Tools(),
	}, results)
	if err != nil {
		return nil, err
	}

	slog.Debug("diagnostic run complete",
		slog.String("id", runID),
		slog.Int64("durationMs", rep.Run.DurationMs))

	return rep, nil
}

// supervise runs one probe under its timeout and always returns a result for
// cat. The probe goroutine is abandoned when the timeout or the caller's
// context ends first; its subprocesses are killed through the same context.
func (o *Orchestrator) supervise(ctx context.Context, cfg *config.RunConfig, factory collector.Factory,
	cat probe.Category, sink progress.Sink) probe.Result {

	start := time.Now()
	sink.Emit(progress.Started(cat))

	res := o.collect(ctx, cfg, factory, cat)
	res.Category = cat
	if !res.Status.IsValid() {
		res = probe.Failed(cat, cnserrors.ErrCodeInternal, fmt.Sprintf("probe returned invalid status %q", res.Status))
	}
	elapsed := time.Since(start)
	res = res.WithDuration(elapsed)

	probeDuration.WithLabelValues(cat.String()).Observe(elapsed.Seconds())
	probeResults.WithLabelValues(cat.String(), string(res.Status)).Inc()

	sink.Emit(progress.Finished(res, elapsed))
	return res
}

func (o *Orchestrator) collect(ctx context.Context, cfg *config.RunConfig, factory collector.Factory,
	cat probe.Category) probe.Result {

	p, err := collector.ForCategory(factory, cat)
	if err != nil {
		return probe.FailedFromError(cat, err)
	}
	if p == nil {
		return probe.Failed(cat, cnserrors.ErrCodeInternal, "no probe available")
	}

	pctx, cancel := context.WithTimeout(ctx, cfg.TimeoutFor(cat))
	defer cancel()

	done := make(chan probe.Result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("probe panicked",
					slog.String("category", cat.String()),
					slog.Any("panic", r),
					slog.String("stack", string(debug.Stack())))
				done <- probe.Failed(cat, cnserrors.ErrCodeInternal, fmt.Sprintf("probe panicked: %v", r))
			}
		}()
		done <- p.Collect(pctx, cfg.Tools())
	}()

	select {
	case res := <-done:
		return res
	case <-pctx.Done():
		slog.Warn("probe abandoned",
			slog.String("category", cat.String()),
			slog.String("reason", pctx.Err().Error()))
		return probe.Interrupted(cat, pctx.Err())
	}
}
