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

package collector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cnserrors "github.com/NVIDIA/hostdiag/pkg/errors"
	"github.com/NVIDIA/hostdiag/pkg/probe"
	"github.com/NVIDIA/hostdiag/pkg/probe/storage"
	"github.com/NVIDIA/hostdiag/pkg/probe/system"
	"github.com/NVIDIA/hostdiag/pkg/runner"
)

func TestNewDefaultFactory(t *testing.T) {
	f := NewDefaultFactory()
	assert.NotNil(t, f.Runner)
	assert.Equal(t, "google.com", f.DNSHost)
	assert.Equal(t, "1.1.1.1:443", f.ReachabilityTarget)
	assert.Equal(t, 5, f.MaxEventLogEntries)
}

func TestNewDefaultFactory_Options(t *testing.T) {
	fake := runner.NewFake()
	f := NewDefaultFactory(
		WithRunner(fake),
		WithDNSHost("example.com"),
		WithReachabilityTarget("8.8.8.8:53"),
		WithMaxEventLogEntries(10),
	)
	assert.Same(t, fake, f.Runner)
	assert.Equal(t, "example.com", f.DNSHost)
	assert.Equal(t, "8.8.8.8:53", f.ReachabilityTarget)
	assert.Equal(t, 10, f.MaxEventLogEntries)

	f = NewDefaultFactory(WithDNSHost(""), WithReachabilityTarget(""), WithMaxEventLogEntries(0))
	assert.Equal(t, "google.com", f.DNSHost)
	assert.Equal(t, 5, f.MaxEventLogEntries)
}

func TestForCategory(t *testing.T) {
	f := NewDefaultFactory(WithRunner(runner.NewFake()))

	for _, c := range probe.Categories {
		t.Run(string(c), func(t *testing.T) {
			p, err := ForCategory(f, c)
			require.NoError(t, err)
			require.NotNil(t, p)
			assert.Equal(t, c, p.Category())
		})
	}

	_, err := ForCategory(f, probe.Category("gpu"))
	require.Error(t, err)
	assert.True(t, cnserrors.IsCode(err, cnserrors.ErrCodeInvalidRequest))
}

func TestDefaultFactory_ConcreteTypes(t *testing.T) {
	f := NewDefaultFactory()

	_, ok := f.CreateSystemProbe().(*system.Probe)
	assert.True(t, ok)
	_, ok = f.CreateStorageProbe().(*storage.Probe)
	assert.True(t, ok)
}
