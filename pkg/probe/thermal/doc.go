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

// Package thermal collects temperature readings from the hardware monitor
// tool in the tools directory.
//
// Two tool dialects are understood, selected by the resolved executable name:
//
//	LibreHardwareMonitorCLI.exe --json   Sensors[] entries with Type "Temperature"
//	sensors -j                           lm-sensors chips, tempN_input per feature
//
// Readings that are not numeric are dropped and counted; any drop makes the
// result degraded. Output that is not valid JSON fails the probe with
// PARSE_ERROR.
package thermal
