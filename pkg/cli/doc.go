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

// Package cli implements the hostdiag command-line interface.
//
// # Commands
//
// run - Run diagnostics (default):
//
//	hostdiag run [--probes system,storage] [--timeout 30s] [--tools-dir ./tools]
//
// Runs the enabled probes concurrently and prints the report as pretty JSON
// on stdout. A line per finished probe is written to stderr unless --quiet is
// given; --verbose (or verbose: true in --config) adds a line per started
// probe. The report can also be saved:
//
//	hostdiag --save-json report.json --save-html report.html --zip bundle.zip
//	hostdiag --output cm://diagnostics/bench-01
//
// bundle - Write every artifact and checksums to a directory or registry:
//
//	hostdiag bundle --output-dir ./out
//	hostdiag bundle --output-dir oci://ghcr.io/acme/hostdiag:bench-01
//
// verify - Check a bundle directory against its checksums:
//
//	hostdiag verify ./out
//
// tools - Show which external tools were found:
//
//	hostdiag tools --format table
//
// # Environment Variables
//
//	LOG_LEVEL          Set logging verbosity (debug, info, warn, error)
//	HOSTDIAG_TOOLS     Tools directory (default: tools/ next to the executable)
//	HOSTDIAG_TIMEOUT   Default per-probe timeout
//
// A .env file next to the executable or in the working directory is loaded
// before flags are parsed; variables already set in the environment win.
//
// # Exit Codes
//
//	0  Report produced, whatever the probe outcomes
//	1  Invalid configuration or failure writing an export
//
// Version information is embedded at build time using ldflags:
//
//	go build -ldflags="-X 'github.com/NVIDIA/hostdiag/pkg/cli.version=1.0.0'"
package cli
