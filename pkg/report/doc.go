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

// Package report defines the diagnostic Report document and assembles it from
// probe results.
//
// A Report always carries exactly one Entry per probe category, whatever
// subset of probes was enabled for the run:
//
//	{
//	  "schemaVersion": "1.0",
//	  "generatedAt": "...",
//	  "host":   {"hostname": ..., "os": ..., "platform": ..., "arch": ..., "elevated": ...},
//	  "run":    {"id": ..., "version": ..., "startedAt": ..., "durationMs": ...},
//	  "tools":  {"smartctl": {"available": ..., "path": ...}, "hwmon": {...}},
//	  "probes": {"system": {"status": ..., "payload": ..., "message": ..., "durationMs": ...}, ...}
//	}
//
// Raw tool logs ride along on the Report for bundling but are never part of
// the serialized document.
package report
