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

// Package system collects host identity and resource inventory.
//
// The probe needs no external tool. On Linux it reads /proc and
// /etc/os-release through the file parser, the kernel release through
// uname(2) and volume usage through statfs(2). On Windows it uses the
// version, registry and disk APIs from golang.org/x/sys/windows.
//
// The probe reports ok unless the host identity itself (hostname) cannot be
// read. Secondary data that cannot be read is listed in Info.Notes.
//
// Identify returns the subset used in the report header, including whether
// the process runs elevated.
package system
