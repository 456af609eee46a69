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

package network

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/NVIDIA/hostdiag/pkg/collector/file"
	"github.com/NVIDIA/hostdiag/pkg/defaults"
	cnserrors "github.com/NVIDIA/hostdiag/pkg/errors"
	"github.com/NVIDIA/hostdiag/pkg/probe"
	"github.com/NVIDIA/hostdiag/pkg/toolbox"
)

var filePathRoute = "/proc/net/route"

// rtfGateway is RTF_GATEWAY from linux/route.h.
const rtfGateway = 0x2

// Payload is the network probe payload.
type Payload struct {
	Interfaces   []Interface  `json:"interfaces"`
	Gateway      string       `json:"gateway,omitempty"`
	DNS          DNSCheck     `json:"dns"`
	Reachability Reachability `json:"reachability"`
}

// Interface is one network interface.
type Interface struct {
	Name         string   `json:"name"`
	Index        int      `json:"index"`
	MTU          int      `json:"mtu"`
	Up           bool     `json:"up"`
	Loopback     bool     `json:"loopback"`
	HardwareAddr string   `json:"hardwareAddr,omitempty"`
	Addresses    []string `json:"addresses"`
}

// DNSCheck is the outcome of resolving a host name.
type DNSCheck struct {
	Host      string   `json:"host"`
	OK        bool     `json:"ok"`
	Addresses []string `json:"addresses,omitempty"`
	LatencyMs float64  `json:"latencyMs"`
	Error     string   `json:"error,omitempty"`
}

// Reachability is the outcome of TCP connects to a target.
type Reachability struct {
	Target    string  `json:"target"`
	OK        bool    `json:"ok"`
	Attempts  int     `json:"attempts"`
	Successes int     `json:"successes"`
	LatencyMs float64 `json:"latencyMs"`
	Error     string  `json:"error,omitempty"`
}

// Resolver resolves host names.
type Resolver interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
}

// DialFunc opens a connection.
type DialFunc func(ctx context.Context, network, address string) (net.Conn, error)

// Option configures the Probe.
type Option func(*Probe)

// WithDNSHost sets the host name resolved by the DNS check.
func WithDNSHost(host string) Option {
	return func(p *Probe) {
		p.dnsHost = host
	}
}

// WithTarget sets the host:port of the reachability check.
func WithTarget(target string) Option {
	return func(p *Probe) {
		p.target = target
	}
}

// WithAttempts sets the number of reachability connects.
func WithAttempts(n int) Option {
	return func(p *Probe) {
		if n > 0 {
			p.attempts = n
		}
	}
}

// WithResolver replaces the DNS resolver.
func WithResolver(r Resolver) Option {
	return func(p *Probe) {
		p.resolver = r
	}
}

// WithDialer replaces the TCP dialer.
func WithDialer(d DialFunc) Option {
	return func(p *Probe) {
		p.dial = d
	}
}

// WithInterfaces replaces interface enumeration.
func WithInterfaces(list func() ([]net.Interface, error), addrs func(net.Interface) ([]net.Addr, error)) Option {
	return func(p *Probe) {
		p.interfaces = list
		p.addrs = addrs
	}
}

// WithRoot reads /proc/net/route from root.
func WithRoot(root string) Option {
	return func(p *Probe) {
		p.parser = file.NewParser(file.WithRoot(root))
	}
}

// WithGOOS selects the platform used for gateway discovery.
func WithGOOS(goos string) Option {
	return func(p *Probe) {
		p.goos = goos
	}
}

// Probe collects network state.
type Probe struct {
	dnsHost    string
	target     string
	attempts   int
	resolver   Resolver
	dial       DialFunc
	interfaces func() ([]net.Interface, error)
	addrs      func(net.Interface) ([]net.Addr, error)
	parser     *file.Parser
	goos       string
}

// New creates a network probe.
func New(opts ...Option) *Probe {
	d := &net.Dialer{Timeout: defaults.NetworkDialTimeout}
	p := &Probe{
		dnsHost:    defaults.NetworkDNSHost,
		target:     defaults.NetworkReachabilityTarget,
		attempts:   defaults.NetworkReachabilityAttempts,
		resolver:   net.DefaultResolver,
		dial:       d.DialContext,
		interfaces: net.Interfaces,
		addrs:      func(i net.Interface) ([]net.Addr, error) { return i.Addrs() },
		parser:     file.NewParser(),
		goos:       runtime.GOOS,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Category implements probe.Probe.
func (p *Probe) Category() probe.Category {
	return probe.Network
}

// Collect enumerates interfaces and runs the connectivity checks.
func (p *Probe) Collect(ctx context.Context, _ toolbox.Inventory) probe.Result {
	slog.Debug("collecting network state")

	ifaces, err := p.interfaces()
	if err != nil {
		return probe.FailedFromError(probe.Network,
			cnserrors.Wrap(cnserrors.ErrCodeOSQuery, "failed to enumerate interfaces", err))
	}

	payload := Payload{Interfaces: make([]Interface, 0, len(ifaces))}
	var problems []string

	for _, ifc := range ifaces {
		entry := Interface{
			Name:         ifc.Name,
			Index:        ifc.Index,
			MTU:          ifc.MTU,
			Up:           ifc.Flags&net.FlagUp != 0,
			Loopback:     ifc.Flags&net.FlagLoopback != 0,
			HardwareAddr: ifc.HardwareAddr.String(),
			Addresses:    []string{},
		}
		addrs, err := p.addrs(ifc)
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", ifc.Name, err))
		}
		for _, a := range addrs {
			entry.Addresses = append(entry.Addresses, a.String())
		}
		payload.Interfaces = append(payload.Interfaces, entry)
	}

	if p.goos == "linux" {
		gw, err := p.defaultGateway()
		if err != nil {
			slog.Debug("default gateway lookup failed", slog.String("error", err.Error()))
		}
		payload.Gateway = gw
	}

	payload.DNS = p.checkDNS(ctx)
	payload.Reachability = p.checkReachability(ctx)

	if err := ctx.Err(); err != nil {
		return probe.Interrupted(probe.Network, err)
	}

	if len(problems) > 0 {
		return probe.Degraded(probe.Network, payload, strings.Join(problems, "; "))
	}
	return probe.OK(probe.Network, payload)
}

func (p *Probe) checkDNS(ctx context.Context) DNSCheck {
	check := DNSCheck{Host: p.dnsHost}

	lctx, cancel := context.WithTimeout(ctx, defaults.DNSLookupTimeout)
	defer cancel()

	start := time.Now()
	addrs, err := p.resolver.LookupHost(lctx, p.dnsHost)
	check.LatencyMs = millis(time.Since(start))
	if err != nil {
		check.Error = err.Error()
		return check
	}
	check.OK = len(addrs) > 0
	check.Addresses = addrs
	return check
}

func (p *Probe) checkReachability(ctx context.Context) Reachability {
	r := Reachability{Target: p.target, Attempts: p.attempts}

	var total time.Duration
	for i := 0; i < p.attempts; i++ {
		if ctx.Err() != nil {
			break
		}
		start := time.Now()
		conn, err := p.dial(ctx, "tcp", p.target)
		elapsed := time.Since(start)
		if err != nil {
			r.Error = err.Error()
			continue
		}
		_ = conn.Close()
		r.Successes++
		total += elapsed
	}

	if r.Successes > 0 {
		r.OK = true
		r.Error = ""
		r.LatencyMs = millis(total / time.Duration(r.Successes))
	}
	return r
}

// defaultGateway reads the IPv4 default route from /proc/net/route:
//
//	Iface  Destination  Gateway   Flags  RefCnt  Use  Metric  Mask
//	eth0   00000000     0102A8C0  0003   0       0    100     00000000
func (p *Probe) defaultGateway() (string, error) {
	rows, err := p.parser.GetFields(filePathRoute)
	if err != nil {
		return "", err
	}
	for _, f := range rows {
		if len(f) < 4 || f[1] != "00000000" {
			continue
		}
		flags, err := strconv.ParseUint(f[3], 16, 32)
		if err != nil || flags&rtfGateway == 0 {
			continue
		}
		ip, err := hexIPv4(f[2])
		if err != nil {
			return "", err
		}
		return ip, nil
	}
	return "", nil
}

func hexIPv4(s string) (string, error) {
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != 4 {
		return "", fmt.Errorf("invalid route gateway %q", s)
	}
	v := binary.LittleEndian.Uint32(b)
	ip := make(net.IP, 4)
	binary.BigEndian.PutUint32(ip, v)
	return ip.String(), nil
}

func millis(d time.Duration) float64 {
	return float64(d.Microseconds()/100) / 10
}
