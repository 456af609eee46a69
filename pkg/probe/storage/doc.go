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

// Package storage collects per-drive SMART health using smartctl from the
// tools directory.
//
// Drives are discovered with "smartctl --scan-open" and read with
// "smartctl -a <device>". smartctl encodes its exit status as a bit mask:
// bits 0 and 1 mean the command or device could not be used, the remaining
// bits flag SMART conditions while the output is still complete. The probe
// treats the first group as an unreadable drive and records the second
// group as status flags on a parsed drive.
//
// Status rules:
//
//	smartctl missing        unavailable
//	scan failed or timed out failed
//	no drives found         ok, empty drive list with a note
//	all drives parsed       ok
//	some drives parsed      degraded, partial drive list
//	no drive parsed         failed (PARSE_ERROR)
package storage
