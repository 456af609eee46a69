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

package driver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"strconv"
	"strings"

	cnserrors "github.com/NVIDIA/hostdiag/pkg/errors"
	"github.com/NVIDIA/hostdiag/pkg/probe"
)

var (
	filePathModules = "/proc/modules"
	dirPathPCI      = "/sys/bus/pci/devices"
)

func (p *Probe) collectLinux(ctx context.Context) probe.Result {
	rows, err := p.parser.GetFields(filePathModules)
	if err != nil {
		return probe.FailedFromError(probe.Drivers,
			cnserrors.Wrap(cnserrors.ErrCodeOSQuery, "failed to read kernel modules", err))
	}

	payload := Payload{Platform: "linux", Modules: []Module{}}
	var problems []string

	for i, f := range rows {
		m, err := parseModule(f)
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s line %d: %v", filePathModules, i+1, err))
			continue
		}
		payload.Modules = append(payload.Modules, m)
	}

	if err := ctx.Err(); err != nil {
		return probe.Interrupted(probe.Drivers, err)
	}

	devices, err := p.parser.ListDir(dirPathPCI)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// no PCI bus exposed (containers, some VMs)
	case err != nil:
		problems = append(problems, err.Error())
	default:
		payload.PCIDevicesScanned = len(devices)
		unbound, devProblems := p.unboundPCIDevices(devices)
		payload.UnboundPCIDevices = unbound
		problems = append(problems, devProblems...)
	}

	return result(payload, problems)
}

// parseModule reads one /proc/modules row:
//
//	nvidia 56823808 3 nvidia_modeset,nvidia_uvm, Live 0xffffffffc0000000 (POE)
func parseModule(f []string) (Module, error) {
	if len(f) < 3 {
		return Module{}, fmt.Errorf("expected at least 3 fields, got %d", len(f))
	}

	size, err := strconv.ParseUint(f[1], 10, 64)
	if err != nil {
		return Module{}, fmt.Errorf("invalid size %q", f[1])
	}
	refs, err := strconv.Atoi(f[2])
	if err != nil {
		return Module{}, fmt.Errorf("invalid refcount %q", f[2])
	}

	m := Module{Name: f[0], SizeBytes: size, RefCount: refs}
	if len(f) > 3 && f[3] != "-" {
		for _, u := range strings.Split(f[3], ",") {
			if u != "" {
				m.UsedBy = append(m.UsedBy, u)
			}
		}
	}
	if len(f) > 4 {
		m.State = f[4]
	}
	return m, nil
}

func (p *Probe) unboundPCIDevices(addrs []string) ([]PCIDevice, []string) {
	var unbound []PCIDevice
	var problems []string

	for _, addr := range addrs {
		base := path.Join(dirPathPCI, addr)

		drv, err := p.parser.ReadLink(path.Join(base, "driver"))
		if err != nil {
			problems = append(problems, err.Error())
			continue
		}
		if drv != "" {
			continue
		}

		dev := PCIDevice{Address: addr}
		for _, a := range []struct {
			name string
			dst  *string
		}{
			{"vendor", &dev.Vendor},
			{"device", &dev.Device},
			{"class", &dev.Class},
		} {
			v, err := p.parser.GetValue(path.Join(base, a.name))
			if err != nil {
				problems = append(problems, err.Error())
				continue
			}
			*a.dst = v
		}
		unbound = append(unbound, dev)
	}

	return unbound, problems
}
