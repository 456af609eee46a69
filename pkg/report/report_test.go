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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cnserrors "github.com/NVIDIA/hostdiag/pkg/errors"
	"github.com/NVIDIA/hostdiag/pkg/probe"
	"github.com/NVIDIA/hostdiag/pkg/probe/system"
	"github.com/NVIDIA/hostdiag/pkg/runner"
	"github.com/NVIDIA/hostdiag/pkg/toolbox"
)

func testMeta() Meta {
	return Meta{
		GeneratedAt: time.Date(2026, 3, 4, 5, 6, 7, 890, time.UTC),
		Host:        system.Identity{Hostname: "bench-01", OS: "linux", Platform: "Ubuntu 24.04", Arch: "amd64"},
		RunID:       "7b0c7c1e-1a7e-4c62-9d0f-3c1c1b7a5e10",
		Version:     "1.0.0",
		StartedAt:   time.Date(2026, 3, 4, 5, 6, 5, 0, time.UTC),
		Duration:    2500 * time.Millisecond,
		Tools: toolbox.NewInventory(
			toolbox.Availability{Tool: toolbox.Smartctl, Available: true, Path: "/kit/smartctl"},
		),
	}
}

func TestAggregate_FillsEveryCategory(t *testing.T) {
	tests := []struct {
		name    string
		results []probe.Result
	}{
		{"none", nil},
		{"system only", []probe.Result{probe.OK(probe.System, map[string]string{"hostname": "bench-01"})}},
		{"all", func() []probe.Result {
			var rs []probe.Result
			for _, c := range probe.Categories {
				rs = append(rs, probe.OK(c, nil))
			}
			return rs
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Aggregate(testMeta(), tt.results)
			require.NoError(t, err)
			require.Len(t, r.Probes, len(probe.Categories))
			for _, c := range probe.Categories {
				assert.True(t, r.Entry(c).Status.IsValid(), c)
			}
		})
	}
}

func TestAggregate_NotRequested(t *testing.T) {
	r, err := Aggregate(testMeta(), []probe.Result{probe.OK(probe.System, "x")})
	require.NoError(t, err)

	e := r.Entry(probe.Storage)
	assert.Equal(t, probe.StatusUnavailable, e.Status)
	assert.Equal(t, "not requested", e.MessageText())
	assert.Nil(t, e.Payload)
	assert.Empty(t, e.Code)

	sys := r.Entry(probe.System)
	assert.Equal(t, probe.StatusOK, sys.Status)
	assert.Nil(t, sys.Message)
}

func TestAggregate_Metadata(t *testing.T) {
	r, err := Aggregate(testMeta(), nil)
	require.NoError(t, err)

	assert.Equal(t, SchemaVersion, r.SchemaVersion)
	assert.Equal(t, time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC), r.GeneratedAt)
	assert.Equal(t, "bench-01", r.Host.Hostname)
	assert.Equal(t, int64(2500), r.Run.DurationMs)
	assert.Equal(t, "1.0.0", r.Run.Version)
	assert.Equal(t, Tool{Available: true, Path: "/kit/smartctl"}, r.Tools["smartctl"])
	assert.Equal(t, Tool{}, r.Tools["hwmon"])
	assert.Len(t, r.Tools, len(toolbox.Tools))
}

func TestAggregate_Logs(t *testing.T) {
	inv := runner.Invocation{Command: "smartctl", Args: []string{"--scan-open"}, Stdout: "/dev/sda -d sat\n"}
	res := probe.OK(probe.Storage, nil).WithInvocations(inv).WithDuration(1500 * time.Millisecond)

	r, err := Aggregate(testMeta(), []probe.Result{res, probe.OK(probe.System, nil)})
	require.NoError(t, err)

	assert.Contains(t, r.Log(probe.Storage), "$ smartctl --scan-open")
	assert.Empty(t, r.Log(probe.System))
	assert.Len(t, r.Logs(), 1)
	assert.Equal(t, int64(1500), r.Entry(probe.Storage).DurationMs)
}

func TestAggregate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		results []probe.Result
	}{
		{"duplicate", []probe.Result{probe.OK(probe.System, nil), probe.OK(probe.System, nil)}},
		{"unknown category", []probe.Result{probe.OK(probe.Category("gpu"), nil)}},
		{"bad status", []probe.Result{{Category: probe.Thermal, Status: "meh"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Aggregate(testMeta(), tt.results)
			require.Error(t, err)
			assert.True(t, cnserrors.IsCode(err, cnserrors.ErrCodeInternal))
		})
	}
}

func TestValidate(t *testing.T) {
	r, err := Aggregate(testMeta(), nil)
	require.NoError(t, err)
	require.NoError(t, r.Validate())

	delete(r.Probes, probe.Network)
	assert.Error(t, r.Validate())

	r2, err := Aggregate(testMeta(), nil)
	require.NoError(t, err)
	r2.SchemaVersion = "0.9"
	assert.Error(t, r2.Validate())
}

func TestValidateSchemaVersion(t *testing.T) {
	tests := []struct {
		version string
		wantErr bool
	}{
		{"1.0", false},
		{"1", false},
		{"v1.0", false},
		{"1.1", true},
		{"2.0", true},
		{"0.9", true},
		{"", true},
		{"one", true},
	}
	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			r, err := Aggregate(testMeta(), nil)
			require.NoError(t, err)
			r.SchemaVersion = tt.version
			err = r.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, cnserrors.IsCode(err, cnserrors.ErrCodeInvalidRequest))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestOrder(t *testing.T) {
	r, err := Aggregate(testMeta(), []probe.Result{
		probe.OK(probe.Network, nil),
		probe.OK(probe.System, nil),
	})
	require.NoError(t, err)

	assert.Equal(t, []probe.Category{probe.Network, probe.System}, r.Run.Probes)
	assert.Equal(t, []probe.Category{
		probe.Network, probe.System, probe.Storage, probe.Drivers, probe.Thermal, probe.EventLog,
	}, r.Order())

	empty, err := Aggregate(testMeta(), nil)
	require.NoError(t, err)
	assert.Nil(t, empty.Run.Probes)
	assert.Equal(t, probe.Categories, empty.Order())

	r.Run.Probes = append(r.Run.Probes, probe.Network)
	assert.True(t, cnserrors.IsCode(r.Validate(), cnserrors.ErrCodeInvalidRequest))
}

func TestCounts(t *testing.T) {
	r, err := Aggregate(testMeta(), []probe.Result{
		probe.OK(probe.System, nil),
		probe.Failed(probe.Network, cnserrors.ErrCodeOSQuery, "boom"),
	})
	require.NoError(t, err)

	c := r.Counts()
	assert.Equal(t, 1, c[probe.StatusOK])
	assert.Equal(t, 1, c[probe.StatusFailed])
	assert.Equal(t, 4, c[probe.StatusUnavailable])
}
