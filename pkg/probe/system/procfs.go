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

package system

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/NVIDIA/hostdiag/pkg/collector/file"
)

var (
	filePathCPUInfo   = "/proc/cpuinfo"
	filePathMemInfo   = "/proc/meminfo"
	filePathStat      = "/proc/stat"
	filePathMounts    = "/proc/mounts"
	filePathOSRelease = "/etc/os-release"
)

// Pseudo and image filesystems that are not user volumes.
var skipFSTypes = map[string]bool{
	"squashfs": true,
	"overlay":  true,
	"tmpfs":    true,
	"devtmpfs": true,
}

type mount struct {
	device string
	point  string
	fsType string
}

// readCPU returns the CPU model and physical core count from /proc/cpuinfo.
func readCPU(p *file.Parser) (string, int, error) {
	lines, err := p.GetLines(filePathCPUInfo)
	if err != nil {
		return "", 0, err
	}

	var model string
	coresPerSocket := 0
	sockets := make(map[string]bool)
	for _, line := range lines {
		k, v, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		k = strings.TrimSpace(k)
		v = strings.TrimSpace(v)
		switch k {
		case "model name", "Model", "cpu model":
			if model == "" {
				model = v
			}
		case "physical id":
			sockets[v] = true
		case "cpu cores":
			if n, err := strconv.Atoi(v); err == nil {
				coresPerSocket = n
			}
		}
	}

	physical := 0
	if coresPerSocket > 0 {
		physical = coresPerSocket * max(len(sockets), 1)
	}
	return model, physical, nil
}

// readMemTotal returns MemTotal from /proc/meminfo in bytes.
func readMemTotal(p *file.Parser) (uint64, error) {
	m, err := file.NewParser(file.WithRoot(p.Root()), file.WithKVDelimiter(":")).GetMap(filePathMemInfo)
	if err != nil {
		return 0, err
	}

	raw, ok := m["MemTotal"]
	if !ok {
		return 0, fmt.Errorf("MemTotal not found in %s", filePathMemInfo)
	}
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return 0, fmt.Errorf("empty MemTotal in %s", filePathMemInfo)
	}
	kb, err := strconv.ParseUint(fields[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid MemTotal %q: %w", raw, err)
	}
	return kb * 1024, nil
}

// readBootTime returns the btime entry of /proc/stat.
func readBootTime(p *file.Parser) (time.Time, error) {
	rows, err := p.GetFields(filePathStat)
	if err != nil {
		return time.Time{}, err
	}
	for _, f := range rows {
		if len(f) == 2 && f[0] == "btime" {
			sec, err := strconv.ParseInt(f[1], 10, 64)
			if err != nil {
				return time.Time{}, fmt.Errorf("invalid btime %q: %w", f[1], err)
			}
			return time.Unix(sec, 0), nil
		}
	}
	return time.Time{}, fmt.Errorf("btime not found in %s", filePathStat)
}

// readMounts returns block-device backed mounts from /proc/mounts.
func readMounts(p *file.Parser) ([]mount, error) {
	rows, err := p.GetFields(filePathMounts)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var out []mount
	for _, f := range rows {
		if len(f) < 3 {
			continue
		}
		m := mount{device: f[0], point: unescapeMount(f[1]), fsType: f[2]}
		if !strings.HasPrefix(m.device, "/dev/") || skipFSTypes[m.fsType] || seen[m.point] {
			continue
		}
		seen[m.point] = true
		out = append(out, m)
	}
	return out, nil
}

// unescapeMount decodes the octal escapes used in /proc/mounts.
func unescapeMount(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	r := strings.NewReplacer(`\040`, " ", `\011`, "\t", `\012`, "\n", `\134`, `\`)
	return r.Replace(s)
}

// readOSRelease returns PRETTY_NAME (or NAME VERSION_ID) from /etc/os-release.
func readOSRelease(p *file.Parser) (string, error) {
	m, err := file.NewParser(file.WithRoot(p.Root()), file.WithVTrimChars(`"'`)).GetMap(filePathOSRelease)
	if err != nil {
		return "", err
	}
	if v := m["PRETTY_NAME"]; v != "" {
		return v, nil
	}
	return strings.TrimSpace(m["NAME"] + " " + m["VERSION_ID"]), nil
}
