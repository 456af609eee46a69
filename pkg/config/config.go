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

package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/NVIDIA/hostdiag/pkg/defaults"
	cnserrors "github.com/NVIDIA/hostdiag/pkg/errors"
	"github.com/NVIDIA/hostdiag/pkg/probe"
	"github.com/NVIDIA/hostdiag/pkg/toolbox"
)

// EnvTimeout overrides the default per-probe timeout.
const EnvTimeout = "HOSTDIAG_TIMEOUT"

// maxTimeout caps any per-probe timeout.
const maxTimeout = time.Hour

// RunConfig is the configuration of one diagnostic run.
type RunConfig struct {
	probes         []probe.Category
	timeout        time.Duration
	timeouts       map[probe.Category]time.Duration
	toolsDir       string
	tools          toolbox.Inventory
	toolsResolved  bool
	verbose        bool
	version        string
	dnsHost        string
	target         string
	maxEventLogLen int
}

// Option configures a RunConfig.
type Option func(*RunConfig) error

// WithProbes sets the enabled categories in report order. Duplicates keep
// their first position.
func WithProbes(categories ...probe.Category) Option {
	return func(c *RunConfig) error {
		c.probes = nil
		seen := make(map[probe.Category]bool, len(categories))
		for _, cat := range categories {
			if !cat.IsValid() {
				return cnserrors.New(cnserrors.ErrCodeInvalidRequest, fmt.Sprintf("unknown probe category %q", cat))
			}
			if seen[cat] {
				continue
			}
			seen[cat] = true
			c.probes = append(c.probes, cat)
		}
		return nil
	}
}

// WithProbeList parses a comma-separated category list. Empty keeps the default.
func WithProbeList(list string) Option {
	return func(c *RunConfig) error {
		if strings.TrimSpace(list) == "" {
			return nil
		}
		cats, err := probe.ParseCategories(list)
		if err != nil {
			return err
		}
		return WithProbes(cats...)(c)
	}
}

// WithTimeout sets the default per-probe timeout. Zero keeps the default.
func WithTimeout(d time.Duration) Option {
	return func(c *RunConfig) error {
		if d != 0 {
			c.timeout = d
		}
		return nil
	}
}

// WithProbeTimeout overrides the timeout of one category.
func WithProbeTimeout(cat probe.Category, d time.Duration) Option {
	return func(c *RunConfig) error {
		if !cat.IsValid() {
			return cnserrors.New(cnserrors.ErrCodeInvalidRequest, fmt.Sprintf("unknown probe category %q", cat))
		}
		c.timeouts[cat] = d
		return nil
	}
}

// WithToolsDir sets the directory searched for external tools.
func WithToolsDir(dir string) Option {
	return func(c *RunConfig) error {
		if dir != "" {
			c.toolsDir = dir
		}
		return nil
	}
}

// WithInventory uses a pre-resolved tool inventory instead of searching the tools directory.
func WithInventory(inv toolbox.Inventory) Option {
	return func(c *RunConfig) error {
		c.tools = inv
		c.toolsResolved = true
		return nil
	}
}

// WithVerbose enables verbose progress output.
func WithVerbose(v bool) Option {
	return func(c *RunConfig) error {
		c.verbose = v
		return nil
	}
}

// WithVersion records the application version in the report.
func WithVersion(v string) Option {
	return func(c *RunConfig) error {
		if v != "" {
			c.version = v
		}
		return nil
	}
}

// WithDNSHost sets the host resolved by the network probe.
func WithDNSHost(host string) Option {
	return func(c *RunConfig) error {
		if host != "" {
			c.dnsHost = host
		}
		return nil
	}
}

// WithReachabilityTarget sets the host:port dialed by the network probe.
func WithReachabilityTarget(target string) Option {
	return func(c *RunConfig) error {
		if target != "" {
			c.target = target
		}
		return nil
	}
}

// WithMaxEventLogEntries limits event log records per source.
func WithMaxEventLogEntries(n int) Option {
	return func(c *RunConfig) error {
		if n != 0 {
			c.maxEventLogLen = n
		}
		return nil
	}
}

// New builds, validates and freezes a RunConfig.
func New(opts ...Option) (*RunConfig, error) {
	c := &RunConfig{
		probes:  append([]probe.Category(nil), probe.Categories...),
		timeout: defaults.ProbeTimeout,
		timeouts: map[probe.Category]time.Duration{
			probe.Storage: defaults.StorageProbeTimeout,
		},
		version:        "dev",
		dnsHost:        defaults.NetworkDNSHost,
		target:         defaults.NetworkReachabilityTarget,
		maxEventLogLen: defaults.MaxEventLogEntries,
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	if !c.toolsResolved {
		if c.toolsDir == "" {
			c.toolsDir = toolbox.DefaultDir()
		}
		c.tools = toolbox.NewLocator(c.toolsDir).Resolve()
		c.toolsResolved = true
	}

	slog.Debug("run configuration ready",
		slog.Any("probes", c.probes),
		slog.Duration("timeout", c.timeout),
		slog.String("toolsDir", c.toolsDir))

	return c, nil
}

// Validate checks the configuration for consistency.
func (c *RunConfig) Validate() error {
	if len(c.probes) == 0 {
		return cnserrors.New(cnserrors.ErrCodeInvalidRequest, "at least one probe must be enabled")
	}
	if err := validTimeout("timeout", c.timeout); err != nil {
		return err
	}
	for cat, d := range c.timeouts {
		if err := validTimeout(cat.String()+" timeout", d); err != nil {
			return err
		}
	}
	if c.maxEventLogLen < 1 || c.maxEventLogLen > 1000 {
		return cnserrors.New(cnserrors.ErrCodeInvalidRequest,
			fmt.Sprintf("maxEventLogEntries must be between 1 and 1000, got %d", c.maxEventLogLen))
	}
	return nil
}

func validTimeout(name string, d time.Duration) error {
	if d <= 0 || d > maxTimeout {
		return cnserrors.New(cnserrors.ErrCodeInvalidRequest,
			fmt.Sprintf("%s must be between 0 and %s, got %s", name, maxTimeout, d))
	}
	return nil
}

// Probes returns the enabled categories in report order.
func (c *RunConfig) Probes() []probe.Category {
	return append([]probe.Category(nil), c.probes...)
}

// Enabled reports whether cat is part of this run.
func (c *RunConfig) Enabled(cat probe.Category) bool {
	for _, p := range c.probes {
		if p == cat {
			return true
		}
	}
	return false
}

// Timeout returns the default per-probe timeout.
func (c *RunConfig) Timeout() time.Duration {
	return c.timeout
}

// TimeoutFor returns the timeout applied to cat.
func (c *RunConfig) TimeoutFor(cat probe.Category) time.Duration {
	if d, ok := c.timeouts[cat]; ok {
		return d
	}
	return c.timeout
}

// MaxTimeout returns the largest timeout of the enabled probes.
func (c *RunConfig) MaxTimeout() time.Duration {
	var m time.Duration
	for _, p := range c.probes {
		m = max(m, c.TimeoutFor(p))
	}
	return m
}

// ToolsDir returns the tools directory.
func (c *RunConfig) ToolsDir() string { return c.toolsDir }

// Tools returns the resolved tool inventory.
func (c *RunConfig) Tools() toolbox.Inventory { return c.tools }

// Verbose reports whether verbose output was requested.
func (c *RunConfig) Verbose() bool { return c.verbose }

// Version returns the application version.
func (c *RunConfig) Version() string { return c.version }

// DNSHost returns the host resolved by the network probe.
func (c *RunConfig) DNSHost() string { return c.dnsHost }

// ReachabilityTarget returns the host:port dialed by the network probe.
func (c *RunConfig) ReachabilityTarget() string { return c.target }

// MaxEventLogEntries returns the event log record limit.
func (c *RunConfig) MaxEventLogEntries() int { return c.maxEventLogLen }

// File is the YAML representation of a RunConfig.
type File struct {
	Probes             []string          `yaml:"probes,omitempty"`
	Timeout            string            `yaml:"timeout,omitempty"`
	Timeouts           map[string]string `yaml:"timeouts,omitempty"`
	ToolsDir           string            `yaml:"toolsDir,omitempty"`
	Verbose            bool              `yaml:"verbose,omitempty"`
	MaxEventLogEntries int               `yaml:"maxEventLogEntries,omitempty"`
	Network            struct {
		DNSHost string `yaml:"dnsHost,omitempty"`
		Target  string `yaml:"target,omitempty"`
	} `yaml:"network,omitempty"`
}

// LoadFile reads a YAML configuration file and returns it as options.
func LoadFile(path string) ([]Option, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, cnserrors.Wrap(cnserrors.ErrCodeInvalidRequest, fmt.Sprintf("failed to read config %q", path), err)
	}
	return Parse(b)
}

// Parse decodes YAML configuration into options.
func Parse(data []byte) ([]Option, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, cnserrors.Wrap(cnserrors.ErrCodeInvalidRequest, "invalid config", err)
	}

	var opts []Option
	if len(f.Probes) > 0 {
		opts = append(opts, WithProbeList(strings.Join(f.Probes, ",")))
	}
	if f.Timeout != "" {
		d, err := time.ParseDuration(f.Timeout)
		if err != nil {
			return nil, cnserrors.Wrap(cnserrors.ErrCodeInvalidRequest, "invalid timeout", err)
		}
		opts = append(opts, WithTimeout(d))
	}
	for name, raw := range f.Timeouts {
		cat, err := probe.ParseCategory(name)
		if err != nil {
			return nil, err
		}
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, cnserrors.Wrap(cnserrors.ErrCodeInvalidRequest, fmt.Sprintf("invalid %s timeout", name), err)
		}
		opts = append(opts, WithProbeTimeout(cat, d))
	}
	opts = append(opts,
		WithToolsDir(f.ToolsDir),
		WithVerbose(f.Verbose),
		WithMaxEventLogEntries(f.MaxEventLogEntries),
		WithDNSHost(f.Network.DNSHost),
		WithReachabilityTarget(f.Network.Target),
	)
	return opts, nil
}

// FromEnv returns options derived from the environment.
func FromEnv() []Option {
	var opts []Option
	if v := os.Getenv(EnvTimeout); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			opts = append(opts, WithTimeout(d))
		} else {
			slog.Warn("ignoring invalid timeout from environment",
				slog.String("var", EnvTimeout), slog.String("value", v))
		}
	}
	if v := os.Getenv(toolbox.EnvToolsDir); v != "" {
		opts = append(opts, WithToolsDir(v))
	}
	return opts
}
