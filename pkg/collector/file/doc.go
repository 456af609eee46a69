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

// Package file reads and splits the small text files exposed by procfs and
// sysfs.
//
// A Parser is configured once with functional options and then used to read
// files as lines, key/value maps, whitespace-separated field rows, or single
// trimmed values.
//
//	p := file.NewParser(file.WithKVDelimiter(":"))
//	info, err := p.GetMap("/proc/meminfo")
//
//	rows, err := file.NewParser().GetFields("/proc/modules")
//	for _, f := range rows {
//	    fmt.Println(f[0]) // module name
//	}
//
// # Alternate Roots
//
// WithRoot prefixes every absolute path with another directory. Probes use
// the host root ("/") in production and a fixture tree in tests:
//
//	p := file.NewParser(file.WithRoot(t.TempDir()))
//	lines, err := p.GetLines("/proc/modules") // reads <tmp>/proc/modules
//
// # Error Handling
//
// Errors wrap the underlying os error with %w so callers can test for
// os.ErrNotExist or os.ErrPermission:
//
//	_, err := p.GetLines("/sys/bus/pci/devices")
//	if errors.Is(err, os.ErrPermission) { ... }
//
// Parsers hold no mutable state after construction and are safe for
// concurrent use.
package file
