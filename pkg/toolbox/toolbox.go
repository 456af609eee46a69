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

package toolbox

import (
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
)

// EnvToolsDir overrides the default tools directory.
const EnvToolsDir = "HOSTDIAG_TOOLS"

// Tool identifies an optional external helper.
type Tool string

const (
	// Smartctl reads storage SMART data (smartmontools).
	Smartctl Tool = "smartctl"
	// HWMonitor dumps hardware sensor readings: LibreHardwareMonitorCLI on
	// Windows, lm-sensors elsewhere.
	HWMonitor Tool = "hwmon"
)

// Tools lists every tool the probes know how to use.
var Tools = []Tool{Smartctl, HWMonitor}

// String returns the tool identifier.
func (t Tool) String() string {
	return string(t)
}

// Availability is the outcome of locating a tool.
type Availability struct {
	Tool      Tool   `json:"-" yaml:"tool"`
	Available bool   `json:"available" yaml:"available"`
	Path      string `json:"path,omitempty" yaml:"path,omitempty"`
}

// Candidates returns the executable file names accepted for a tool on the given OS.
func Candidates(tool Tool, goos string) []string {
	switch tool {
	case Smartctl:
		if goos == "windows" {
			return []string{"smartctl.exe"}
		}
		return []string{"smartctl"}
	case HWMonitor:
		if goos == "windows" {
			return []string{"LibreHardwareMonitorCLI.exe"}
		}
		return []string{"sensors"}
	default:
		return nil
	}
}

// DefaultDir returns $HOSTDIAG_TOOLS or, when unset, the tools directory
// next to the running executable.
func DefaultDir() string {
	if dir := os.Getenv(EnvToolsDir); dir != "" {
		return dir
	}
	exe, err := os.Executable()
	if err != nil {
		slog.Debug("cannot resolve executable path", slog.String("error", err.Error()))
		return "tools"
	}
	return filepath.Join(filepath.Dir(exe), "tools")
}

// Locator finds tools inside one directory.
type Locator struct {
	dir  string
	goos string
}

// NewLocator creates a Locator for the given directory and the current OS.
func NewLocator(dir string) *Locator {
	return &Locator{dir: dir, goos: runtime.GOOS}
}

// NewLocatorForOS creates a Locator that resolves names as they would be on goos.
func NewLocatorForOS(dir, goos string) *Locator {
	return &Locator{dir: dir, goos: goos}
}

// Dir returns the searched directory.
func (l *Locator) Dir() string {
	return l.dir
}

// Locate checks whether the tool exists in the configured directory.
func (l *Locator) Locate(tool Tool) Availability {
	res := Availability{Tool: tool}
	if l.dir == "" {
		return res
	}

	for _, name := range Candidates(tool, l.goos) {
		path := filepath.Join(l.dir, name)
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		if l.goos != "windows" && info.Mode().Perm()&0o111 == 0 {
			slog.Debug("tool present but not executable", slog.String("path", path))
			continue
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			abs = path
		}
		res.Available = true
		res.Path = abs
		return res
	}

	return res
}

// Resolve locates every given tool (all known tools when none are given)
// and returns an immutable Inventory.
func (l *Locator) Resolve(tools ...Tool) Inventory {
	if len(tools) == 0 {
		tools = Tools
	}
	entries := make(map[Tool]Availability, len(tools))
	for _, t := range tools {
		a := l.Locate(t)
		slog.Debug("resolved tool",
			slog.String("tool", t.String()),
			slog.Bool("available", a.Available),
			slog.String("path", a.Path))
		entries[t] = a
	}
	return Inventory{entries: entries}
}

// Inventory is the resolved availability of a set of tools.
// The zero value reports every tool as unavailable.
type Inventory struct {
	entries map[Tool]Availability
}

// NewInventory builds an Inventory from explicit entries.
func NewInventory(entries ...Availability) Inventory {
	m := make(map[Tool]Availability, len(entries))
	for _, e := range entries {
		m[e.Tool] = e
	}
	return Inventory{entries: m}
}

// Lookup returns the availability of a tool.
func (i Inventory) Lookup(tool Tool) Availability {
	if a, ok := i.entries[tool]; ok {
		return a
	}
	return Availability{Tool: tool}
}

// Summary returns every known tool sorted by name, including tools that were
// never resolved.
func (i Inventory) Summary() []Availability {
	seen := make(map[Tool]bool, len(Tools)+len(i.entries))
	out := make([]Availability, 0, len(Tools)+len(i.entries))
	for _, t := range Tools {
		seen[t] = true
		out = append(out, i.Lookup(t))
	}
	for t, a := range i.entries {
		if !seen[t] {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Tool < out[b].Tool })
	return out
}
