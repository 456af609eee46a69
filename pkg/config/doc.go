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

// Package config defines RunConfig, the immutable configuration of one
// diagnostic run.
//
// A RunConfig is built once by the caller with functional options, optionally
// seeded from a YAML file and the environment, validated, and then only read:
//
//	cfg, err := config.New(
//	    config.WithProbes(probe.System, probe.Storage),
//	    config.WithTimeout(30*time.Second),
//	    config.WithToolsDir("/media/kit/tools"),
//	)
//
// New resolves tool availability exactly once and stores the resulting
// toolbox.Inventory, so every probe of the run sees the same answer.
// Accessors return copies.
//
// # File Format
//
//	probes: [system, storage, thermal]
//	timeout: 45s
//	timeouts:
//	  storage: 3m
//	toolsDir: /media/kit/tools
//	verbose: true
//	maxEventLogEntries: 10
//	network:
//	  dnsHost: example.com
//	  target: 9.9.9.9:443
//
// # Environment
//
//	HOSTDIAG_TOOLS    tools directory (see package toolbox)
//	HOSTDIAG_TIMEOUT  default per-probe timeout (Go duration)
package config
