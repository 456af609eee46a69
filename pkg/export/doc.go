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

// Package export renders a report into its distributable forms.
//
// JSON is the canonical form: object keys are sorted at every level and
// numbers keep their original text, so exporting a parsed export yields the
// same bytes. HTML is a self-contained page for humans. ZIP bundles both
// together with the raw log of every probe that ran an external tool:
//
//	report.json
//	report.html
//	logs/<category>.log
//
// ZIP entries are stamped with the report's generation time so the same
// report always produces the same archive.
package export
