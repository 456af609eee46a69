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

// Package defaults provides centralized configuration constants for hostdiag.
//
// This package defines timeout values, collection limits, and other configuration
// defaults used across the codebase. Centralizing these values ensures consistency
// and makes tuning easier.
//
// # Timeout Categories
//
// Timeouts are organized by component:
//
//   - Probe timeouts: upper bound for a whole probe, enforced by the orchestrator
//   - Tool timeouts: upper bound for a single external tool invocation
//   - Server timeouts: For HTTP server configuration
//   - Destination timeouts: ConfigMap writes and OCI pushes
//
// # Usage
//
// Import and use constants directly:
//
//	import "github.com/NVIDIA/hostdiag/pkg/defaults"
//
//	ctx, cancel := context.WithTimeout(ctx, defaults.SmartctlScanTimeout)
//	defer cancel()
//
// # Timeout Guidelines
//
//   - A tool timeout must be shorter than the probe timeout that contains it
//   - The storage probe gets a longer budget since it reads every drive in turn
//   - Server shutdown: 30s for graceful shutdown
package defaults
