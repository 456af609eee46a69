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

// Package eventlog collects recent error events from the host logs.
//
// On Linux two sources are read: kernel entries of priority "err" or worse
// from journalctl, and failed units from systemd over D-Bus. One failing
// source degrades the probe; both failing fail it. On Windows the probe
// reads recent bugcheck events (System log, event id 1001) through
// Get-WinEvent.
package eventlog
