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
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/hostdiag/pkg/collector"
	"github.com/NVIDIA/hostdiag/pkg/config"
	"github.com/NVIDIA/hostdiag/pkg/defaults"
	cnserrors "github.com/NVIDIA/hostdiag/pkg/errors"
	"github.com/NVIDIA/hostdiag/pkg/probe"
	"github.com/NVIDIA/hostdiag/pkg/probe/system"
	"github.com/NVIDIA/hostdiag/pkg/progress"
	"github.com/NVIDIA/hostdiag/pkg/runner"
	"github.com/NVIDIA/hostdiag/pkg/toolbox"
)

type stubProbe struct {
	cat     probe.Category
	collect func(ctx context.Context, tools toolbox.Inventory) probe.Result
}

func (s stubProbe) Category() probe.Category { return s.cat }

func (s stubProbe) Collect(ctx context.Context, tools toolbox.Inventory) probe.Result {
	if s.collect == nil {
		return probe.OK(s.cat, map[string]string{"probe": s.cat.String()})
	}
	return s.collect(ctx, tools)
}

type stubFactory map[probe.Category]func(ctx context.Context, tools toolbox.Inventory) probe.Result

func (f stubFactory) get(c probe.Category) probe.Probe { return stubProbe{cat: c, collect: f[c]} }

func (f stubFactory) CreateSystemProbe() probe.Probe   { return f.get(probe.System) }
func (f stubFactory) CreateStorageProbe() probe.Probe  { return f.get(probe.Storage) }
func (f stubFactory) CreateDriverProbe() probe.Probe   { return f.get(probe.Drivers) }
func (f stubFactory) CreateThermalProbe() probe.Probe  { return f.get(probe.Thermal) }
func (f stubFactory) CreateNetworkProbe() probe.Probe  { return f.get(probe.Network) }
func (f stubFactory) CreateEventLogProbe() probe.Probe { return f.get(probe.EventLog) }

// hostFactory is the production factory with a fixed hostname for the system probe.
type hostFactory struct {
	*collector.DefaultFactory
}

func (hostFactory) CreateSystemProbe() probe.Probe {
	return system.New(system.WithHostname(func() (string, error) { return "bench-01", nil }))
}

func blockUntilDone(ctx context.Context, _ toolbox.Inventory) probe.Result {
	<-ctx.Done()
	return probe.Interrupted(probe.Storage, ctx.Err())
}

func newOrchestrator(f collector.Factory) *Orchestrator {
	return New(
		WithFactory(f),
		WithIdentify(func() system.Identity { return system.Identity{Hostname: "bench-01", OS: "linux"} }),
	)
}

func mustConfig(t *testing.T, opts ...config.Option) *config.RunConfig {
	t.Helper()
	cfg, err := config.New(append([]config.Option{config.WithInventory(toolbox.Inventory{})}, opts...)...)
	require.NoError(t, err)
	return cfg
}

func TestRun_EveryCategoryPresent(t *testing.T) {
	cfg := mustConfig(t, config.WithProbes(probe.Thermal, probe.Network))

	rep, err := newOrchestrator(stubFactory{}).Run(context.Background(), cfg, nil)
	require.NoError(t, err)
	require.Len(t, rep.Probes, len(probe.Categories))

	assert.Equal(t, probe.StatusOK, rep.Entry(probe.Thermal).Status)
	assert.Equal(t, probe.StatusOK, rep.Entry(probe.Network).Status)
	for _, c := range []probe.Category{probe.System, probe.Storage, probe.Drivers, probe.EventLog} {
		assert.Equal(t, probe.StatusUnavailable, rep.Entry(c).Status, c)
		assert.Equal(t, "not requested", rep.Entry(c).MessageText(), c)
	}
	assert.Equal(t, "bench-01", rep.Host.Hostname)
}

func TestRun_SystemOnlyWithoutTools(t *testing.T) {
	cfg := mustConfig(t, config.WithProbes(probe.System))
	f := hostFactory{collector.NewDefaultFactory(collector.WithRunner(runner.NewFake()))}

	rep, err := newOrchestrator(f).Run(context.Background(), cfg, nil)
	require.NoError(t, err)

	assert.Equal(t, probe.StatusOK, rep.Entry(probe.System).Status)
	assert.Equal(t, probe.StatusUnavailable, rep.Entry(probe.Storage).Status)
	assert.Equal(t, probe.StatusUnavailable, rep.Entry(probe.Thermal).Status)
	assert.False(t, rep.Tools["smartctl"].Available)
	assert.False(t, rep.Tools["hwmon"].Available)
}

func TestRun_AbsentToolOnlyAffectsItsProbe(t *testing.T) {
	cfg := mustConfig(t, config.WithProbes(probe.System, probe.Storage, probe.Thermal))
	fake := runner.NewFake()
	f := hostFactory{collector.NewDefaultFactory(collector.WithRunner(fake))}

	rep, err := newOrchestrator(f).Run(context.Background(), cfg, nil)
	require.NoError(t, err)

	assert.Equal(t, probe.StatusOK, rep.Entry(probe.System).Status)
	for _, c := range []probe.Category{probe.Storage, probe.Thermal} {
		e := rep.Entry(c)
		assert.Equal(t, probe.StatusUnavailable, e.Status, c)
		assert.Equal(t, string(cnserrors.ErrCodeToolUnavailable), e.Code, c)
	}
	assert.Empty(t, fake.Calls())
}

func TestRun_TimeoutsRunInParallel(t *testing.T) {
	const timeout = 200 * time.Millisecond
	cfg := mustConfig(t,
		config.WithProbes(probe.Storage, probe.Thermal, probe.EventLog),
		config.WithTimeout(timeout),
		config.WithProbeTimeout(probe.Storage, timeout),
	)

	release := make(chan struct{})
	defer close(release)
	ignoresContext := func(context.Context, toolbox.Inventory) probe.Result {
		<-release
		return probe.OK(probe.Thermal, nil)
	}

	f := stubFactory{
		probe.Storage:  blockUntilDone,
		probe.Thermal:  ignoresContext,
		probe.EventLog: ignoresContext,
	}

	start := time.Now()
	rep, err := newOrchestrator(f).Run(context.Background(), cfg, nil)
	elapsed := time.Since(start)
	require.NoError(t, err)

	assert.Less(t, elapsed, 2*timeout, "probes should time out concurrently")
	for _, c := range []probe.Category{probe.Storage, probe.Thermal, probe.EventLog} {
		e := rep.Entry(c)
		assert.Equal(t, probe.StatusFailed, e.Status, c)
		assert.Equal(t, "timeout", e.MessageText(), c)
		assert.Equal(t, string(cnserrors.ErrCodeTimeout), e.Code, c)
		assert.GreaterOrEqual(t, e.DurationMs, int64(150), c)
	}
}

func TestRun_Cancellation(t *testing.T) {
	cfg := mustConfig(t, config.WithTimeout(time.Minute))

	release := make(chan struct{})
	defer close(release)
	f := stubFactory{
		probe.System: func(context.Context, toolbox.Inventory) probe.Result {
			return probe.OK(probe.System, nil)
		},
		probe.Storage: blockUntilDone,
		probe.Thermal: func(context.Context, toolbox.Inventory) probe.Result {
			<-release
			return probe.OK(probe.Thermal, nil)
		},
		probe.Drivers:  blockUntilDone,
		probe.Network:  blockUntilDone,
		probe.EventLog: blockUntilDone,
	}

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	start := time.Now()
	rep, err := newOrchestrator(f).Run(ctx, cfg, nil)
	require.NoError(t, err)
	assert.Less(t, time.Since(start), defaults.CancelGracePeriod)

	require.Len(t, rep.Probes, len(probe.Categories))
	assert.Equal(t, probe.StatusOK, rep.Entry(probe.System).Status)
	for _, c := range []probe.Category{probe.Storage, probe.Thermal, probe.Drivers, probe.Network, probe.EventLog} {
		e := rep.Entry(c)
		assert.Equal(t, probe.StatusFailed, e.Status, c)
		assert.Equal(t, "cancelled", e.MessageText(), c)
		assert.Equal(t, string(cnserrors.ErrCodeCancelled), e.Code, c)
	}
}

func TestRun_RecoversPanic(t *testing.T) {
	cfg := mustConfig(t, config.WithProbes(probe.System, probe.Drivers))
	f := stubFactory{
		probe.Drivers: func(context.Context, toolbox.Inventory) probe.Result {
			panic("nil map")
		},
	}

	rep, err := newOrchestrator(f).Run(context.Background(), cfg, nil)
	require.NoError(t, err)

	e := rep.Entry(probe.Drivers)
	assert.Equal(t, probe.StatusFailed, e.Status)
	assert.Contains(t, e.MessageText(), "nil map")
	assert.Equal(t, string(cnserrors.ErrCodeInternal), e.Code)
	assert.Equal(t, probe.StatusOK, rep.Entry(probe.System).Status)
}

func TestRun_InvalidStatus(t *testing.T) {
	cfg := mustConfig(t, config.WithProbes(probe.Network))
	f := stubFactory{
		probe.Network: func(context.Context, toolbox.Inventory) probe.Result {
			return probe.Result{Category: probe.Network, Status: "great"}
		},
	}

	rep, err := newOrchestrator(f).Run(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, probe.StatusFailed, rep.Entry(probe.Network).Status)
}

func TestRun_StampsDurationAndCategory(t *testing.T) {
	cfg := mustConfig(t, config.WithProbes(probe.Thermal))
	f := stubFactory{
		probe.Thermal: func(context.Context, toolbox.Inventory) probe.Result {
			time.Sleep(30 * time.Millisecond)
			return probe.OK(probe.System, nil).WithDuration(time.Hour)
		},
	}

	rep, err := newOrchestrator(f).Run(context.Background(), cfg, nil)
	require.NoError(t, err)

	e := rep.Entry(probe.Thermal)
	assert.Equal(t, probe.StatusOK, e.Status)
	assert.GreaterOrEqual(t, e.DurationMs, int64(30))
	assert.Less(t, e.DurationMs, int64(time.Hour/time.Millisecond))
	assert.Equal(t, "not requested", rep.Entry(probe.System).MessageText())
}

func TestRun_Progress(t *testing.T) {
	cfg := mustConfig(t, config.WithProbes(probe.System, probe.Network))
	f := stubFactory{
		probe.Network: func(context.Context, toolbox.Inventory) probe.Result {
			return probe.Failed(probe.Network, cnserrors.ErrCodeOSQuery, "no interfaces")
		},
	}

	var mu sync.Mutex
	events := map[probe.Category][]progress.Kind{}
	sink := progress.NewFunc(func(e progress.Event) {
		mu.Lock()
		defer mu.Unlock()
		events[e.Category] = append(events[e.Category], e.Kind)
	})

	_, err := newOrchestrator(f).Run(context.Background(), cfg, sink)
	require.NoError(t, err)

	assert.Equal(t, []progress.Kind{progress.KindStarted, progress.KindFinished}, events[probe.System])
	assert.Equal(t, []progress.Kind{progress.KindStarted, progress.KindError}, events[probe.Network])
	assert.NotContains(t, events, probe.Storage)
}

func TestRun_Metadata(t *testing.T) {
	now := time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC)
	cfg := mustConfig(t, config.WithProbes(probe.System), config.WithVersion("2.1.0"))

	o := New(
		WithFactory(stubFactory{}),
		WithIdentify(func() system.Identity { return system.Identity{Hostname: "h"} }),
		WithClock(func() time.Time { return now }),
		WithIDGenerator(func() string { return "run-1" }),
	)
	rep, err := o.Run(context.Background(), cfg, progress.Nop{})
	require.NoError(t, err)

	assert.Equal(t, "run-1", rep.Run.ID)
	assert.Equal(t, "2.1.0", rep.Run.Version)
	assert.Equal(t, now, rep.Run.StartedAt)
	assert.Equal(t, now, rep.GeneratedAt)
}

func TestRun_DefaultID(t *testing.T) {
	cfg := mustConfig(t, config.WithProbes(probe.System))
	rep, err := newOrchestrator(stubFactory{}).Run(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Len(t, rep.Run.ID, 36)
}

func TestRun_NilConfig(t *testing.T) {
	_, err := New().Run(context.Background(), nil, nil)
	require.Error(t, err)
	assert.True(t, cnserrors.IsCode(err, cnserrors.ErrCodeInvalidRequest))
}
