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
	"fmt"
	"strings"

	"github.com/NVIDIA/hostdiag/pkg/defaults"
	"github.com/NVIDIA/hostdiag/pkg/probe"
	"github.com/NVIDIA/hostdiag/pkg/probe/internal/powershell"
	"github.com/NVIDIA/hostdiag/pkg/runner"
)

const (
	// ProblemDeviceQuery lists devices with a non-zero Configuration Manager error code.
	ProblemDeviceQuery = `Get-CimInstance Win32_PnPEntity -Filter "ConfigManagerErrorCode<>0" | ` +
		`Select-Object Name,DeviceID,ConfigManagerErrorCode | ConvertTo-Json -Compress`
	// SignedDriverQuery lists installed device drivers.
	SignedDriverQuery = `Get-CimInstance Win32_PnPSignedDriver | ` +
		`Select-Object DeviceName,DeviceID,Manufacturer,DriverVersion,DriverDate | ConvertTo-Json -Compress`
)

type cimEntity struct {
	Name                   string `json:"Name"`
	DeviceID               string `json:"DeviceID"`
	ConfigManagerErrorCode int    `json:"ConfigManagerErrorCode"`
}

type cimDriver struct {
	DeviceName    string `json:"DeviceName"`
	DeviceID      string `json:"DeviceID"`
	Manufacturer  string `json:"Manufacturer"`
	DriverVersion string `json:"DriverVersion"`
	DriverDate    any    `json:"DriverDate"`
}

func (p *Probe) collectWindows(ctx context.Context) probe.Result {
	entities, entInv, err := powershell.Query[cimEntity](ctx, p.runner, p.timeout, ProblemDeviceQuery)
	if err != nil {
		return p.queryFailure(ctx, err).WithInvocations(entInv)
	}

	drivers, drvInv, drvErr := powershell.Query[cimDriver](ctx, p.runner, p.timeout, SignedDriverQuery)
	invs := []runner.Invocation{entInv, drvInv}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return probe.Interrupted(probe.Drivers, ctxErr).WithInvocations(invs...)
	}

	var problems []string
	if drvErr != nil {
		problems = append(problems, "driver details unavailable: "+drvErr.Error())
	}

	byID := make(map[string]cimDriver, len(drivers))
	for _, d := range drivers {
		byID[strings.ToUpper(d.DeviceID)] = d
	}

	cutoff := p.now().Add(-defaults.OutdatedDriverAge)
	payload := Payload{
		Platform:       "windows",
		DriversScanned: len(drivers),
		ProblemDevices: []ProblemDevice{},
	}
	for _, e := range entities {
		dev := ProblemDevice{Name: e.Name, DeviceID: e.DeviceID, ProblemCode: e.ConfigManagerErrorCode}
		if d, ok := byID[strings.ToUpper(e.DeviceID)]; ok {
			dev.Manufacturer = d.Manufacturer
			dev.DriverVersion = d.DriverVersion
			if date, ok := powershell.ParseDate(d.DriverDate); ok {
				dev.DriverDate = date.Format("2006-01-02")
				dev.Outdated = date.Before(cutoff)
			} else if d.DriverDate != nil {
				problems = append(problems, fmt.Sprintf("%s: unrecognized driver date %v", e.Name, d.DriverDate))
			}
		}
		payload.ProblemDevices = append(payload.ProblemDevices, dev)
	}

	return result(payload, problems).WithInvocations(invs...)
}

func (p *Probe) queryFailure(ctx context.Context, err error) probe.Result {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return probe.Interrupted(probe.Drivers, ctxErr)
	}
	return probe.FailedFromError(probe.Drivers, err)
}

