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

// Package toolbox resolves the optional helper executables that some probes
// depend on.
//
// Tools are looked up only in a single configured directory. The system PATH
// is never searched, so a portable kit behaves the same on every host it is
// plugged into. Absence of a tool is reported as Available=false, never as an
// error.
//
//	loc := toolbox.NewLocator(toolbox.DefaultDir())
//	inv := loc.Resolve(toolbox.Smartctl, toolbox.HWMonitor)
//	if a := inv.Lookup(toolbox.Smartctl); a.Available {
//	    fmt.Println("smartctl at", a.Path)
//	}
//
// An Inventory is resolved once per run and stored in the run configuration,
// so every probe sees the same answer.
package toolbox
