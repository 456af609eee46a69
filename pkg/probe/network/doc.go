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

// Package network reports interface state and basic connectivity.
//
// The probe enumerates interfaces with net.Interfaces, reads the default
// IPv4 gateway from /proc/net/route on Linux, resolves a configurable host
// and measures TCP connect latency to a configurable target.
//
// Check outcomes (DNS failure, unreachable target) are recorded in the
// payload and do not change the probe status. Interface enumeration errors
// fail the probe; per-interface address errors degrade it.
package network
