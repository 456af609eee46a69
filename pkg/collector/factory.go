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
	"fmt"

	"github.com/NVIDIA/hostdiag/pkg/defaults"
	cnserrors "github.com/NVIDIA/hostdiag/pkg/errors"
	"github.com/NVIDIA/hostdiag/pkg/probe"
	"github.com/NVIDIA/hostdiag/pkg/probe/driver"
	"github.com/NVIDIA/hostdiag/pkg/probe/eventlog"
	"github.com/NVIDIA/hostdiag/pkg/probe/network"
	"github.com/NVIDIA/hostdiag/pkg/probe/storage"
	"github.com/NVIDIA/hostdiag/pkg/probe/system"
	"github.com/NVIDIA/hostdiag/pkg/probe/thermal"
	"github.com/NVIDIA/hostdiag/pkg/runner"
)

// Factory creates one probe per category.
type Factory interface {
	CreateSystemProbe() probe.Probe
	CreateStorageProbe() probe.Probe
	CreateDriverProbe() probe.Probe
	CreateThermalProbe() probe.Probe
	CreateNetworkProbe() probe.Probe
	CreateEventLogProbe() probe.Probe
}

// ForCategory returns the probe the factory builds for c.
func ForCategory(f Factory, c probe.Category) (probe.Probe, error) {
	switch c {
	case probe.System:
		return f.CreateSystemProbe(), nil
	case probe.Storage:
		return f.CreateStorageProbe(), nil
	case probe.Drivers:
		return f.CreateDriverProbe(), nil
	case probe.Thermal:
		return f.CreateThermalProbe(), nil
	case probe.Network:
		return f.CreateNetworkProbe(), nil
	case probe.EventLog:
		return f.CreateEventLogProbe(), nil
	default:
		return nil, cnserrors.New(cnserrors.ErrCodeInvalidRequest, fmt.Sprintf("no probe for category %q", c))
	}
}

// Option configures a DefaultFactory.
type Option func(*DefaultFactory)

// WithRunner sets the subprocess runner shared by tool-backed probes.
func WithRunner(r runner.Runner) Option {
	return func(f *DefaultFactory) {
		f.Runner = r
	}
}

// WithDNSHost sets the host resolved by the network probe.
func WithDNSHost(host string) Option {
	return func(f *DefaultFactory) {
		if host != "" {
			f.DNSHost = host
		}
	}
}

// WithReachabilityTarget sets the host:port dialed by the network probe.
func WithReachabilityTarget(target string) Option {
	return func(f *DefaultFactory) {
		if target != "" {
			f.ReachabilityTarget = target
		}
	}
}

// WithMaxEventLogEntries limits entries read by the eventlog probe.
func WithMaxEventLogEntries(n int) Option {
	return func(f *DefaultFactory) {
		if n > 0 {
			f.MaxEventLogEntries = n
		}
	}
}

// DefaultFactory creates probes with production dependencies.
type DefaultFactory struct {
	Runner             runner.Runner
	DNSHost            string
	ReachabilityTarget string
	MaxEventLogEntries int
}

// NewDefaultFactory creates a factory with default settings.
func NewDefaultFactory(opts ...Option) *DefaultFactory {
	f := &DefaultFactory{
		Runner:             runner.NewExec(),
		DNSHost:            defaults.NetworkDNSHost,
		ReachabilityTarget: defaults.NetworkReachabilityTarget,
		MaxEventLogEntries: defaults.MaxEventLogEntries,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateSystemProbe creates the system information probe.
func (f *DefaultFactory) CreateSystemProbe() probe.Probe {
	return system.New()
}

// CreateStorageProbe creates the SMART storage probe.
func (f *DefaultFactory) CreateStorageProbe() probe.Probe {
	return storage.New(f.Runner)
}

// CreateDriverProbe creates the driver probe.
func (f *DefaultFactory) CreateDriverProbe() probe.Probe {
	return driver.New(f.Runner)
}

// CreateThermalProbe creates the temperature probe.
func (f *DefaultFactory) CreateThermalProbe() probe.Probe {
	return thermal.New(f.Runner)
}

// CreateNetworkProbe creates the network probe.
func (f *DefaultFactory) CreateNetworkProbe() probe.Probe {
	return network.New(
		network.WithDNSHost(f.DNSHost),
		network.WithTarget(f.ReachabilityTarget),
	)
}

// CreateEventLogProbe creates the event log probe.
func (f *DefaultFactory) CreateEventLogProbe() probe.Probe {
	return eventlog.New(f.Runner, eventlog.WithMaxEntries(f.MaxEventLogEntries))
}
