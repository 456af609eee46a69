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

package storage

import (
	"strconv"
	"strings"
)

// smartctl exit status bits.
const (
	exitMaskFatal = 0b11
)

var exitFlagNames = []struct {
	bit  int
	name string
}{
	{2, "smart-command-failed"},
	{3, "disk-failing"},
	{4, "prefail-threshold-exceeded"},
	{5, "usage-threshold-exceeded"},
	{6, "error-log-entries"},
	{7, "self-test-errors"},
}

type device struct {
	path string
	kind string
}

// parseScan reads "smartctl --scan-open" output:
//
//	/dev/sda -d sat # /dev/sda [SAT], ATA device
//	/dev/nvme0 -d nvme # /dev/nvme0, NVMe device
func parseScan(out string) []device {
	var devices []device
	seen := make(map[string]bool)
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if i := strings.Index(line, "#"); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 || seen[fields[0]] {
			continue
		}
		d := device{path: fields[0]}
		for i := 1; i+1 < len(fields); i++ {
			if fields[i] == "-d" {
				d.kind = fields[i+1]
				break
			}
		}
		seen[d.path] = true
		devices = append(devices, d)
	}
	return devices
}

func statusFlags(exitCode int) []string {
	if exitCode <= 0 {
		return nil
	}
	var flags []string
	for _, f := range exitFlagNames {
		if exitCode&(1<<f.bit) != 0 {
			flags = append(flags, f.name)
		}
	}
	return flags
}

// parseDevice fills d from "smartctl -a" output and reports whether any
// known field was found.
func parseDevice(out string, d *Drive) bool {
	found := false
	for _, raw := range strings.Split(out, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if fields := strings.Fields(line); len(fields) >= 10 && fields[1] == "Temperature_Celsius" {
			if v, err := strconv.ParseFloat(fields[9], 64); err == nil {
				d.TemperatureC = &v
				found = true
			}
			continue
		}

		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case "Device Model", "Model Number", "Product":
			if d.Model == "" {
				d.Model = value
				found = true
			}
		case "Serial Number", "Serial number":
			d.Serial = value
			found = true
		case "User Capacity", "Total NVM Capacity", "Namespace 1 Size/Capacity":
			if d.CapacityBytes == 0 {
				d.CapacityBytes = parseBytes(value)
			}
		case "SMART overall-health self-assessment test result", "SMART Health Status":
			d.Health = value
			found = true
		case "Temperature", "Current Drive Temperature":
			if v, ok := parseTemperature(value); ok {
				d.TemperatureC = &v
				found = true
			}
		case "Percentage Used":
			if n, err := strconv.Atoi(strings.TrimSuffix(value, "%")); err == nil {
				nvme(d).PercentageUsed = &n
				found = true
			}
		case "Data Units Written":
			units, human := parseDataUnits(value)
			nvme(d).DataUnitsWritten = units
			nvme(d).DataWritten = human
			found = true
		}
	}
	return found
}

func nvme(d *Drive) *NVMe {
	if d.NVMe == nil {
		d.NVMe = &NVMe{}
	}
	return d.NVMe
}

// parseBytes extracts "500,107,862,016 bytes [500 GB]" → 500107862016.
func parseBytes(s string) uint64 {
	head, _, _ := strings.Cut(s, " ")
	n, err := strconv.ParseUint(strings.ReplaceAll(head, ",", ""), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// parseDataUnits extracts "12,345,678 [6.32 TB]" → 12345678, "6.32 TB".
func parseDataUnits(s string) (uint64, string) {
	head, rest, _ := strings.Cut(s, "[")
	n, err := strconv.ParseUint(strings.ReplaceAll(strings.TrimSpace(head), ",", ""), 10, 64)
	if err != nil {
		n = 0
	}
	return n, strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(rest), "]"))
}

// parseTemperature reads "35 Celsius" or "35 C".
func parseTemperature(s string) (float64, bool) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(fields[0], 64)
	return v, err == nil
}
