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

package export

import (
	"github.com/NVIDIA/hostdiag/pkg/report"
)

// Artifact file names.
const (
	JSONFileName = "report.json"
	HTMLFileName = "report.html"
	ZIPFileName  = "bundle.zip"
	LogDir       = "logs"
)

// Media types of the artifacts.
const (
	MediaTypeJSON = "application/json"
	MediaTypeHTML = "text/html; charset=utf-8"
	MediaTypeZIP  = "application/zip"
)

// Artifact is one rendered export.
type Artifact struct {
	Name      string
	MediaType string
	Data      []byte
}

// Bundle renders the report in every format: pretty JSON, HTML, and the ZIP
// archive with raw logs.
func Bundle(r *report.Report) ([]Artifact, error) {
	j, err := JSON(r, Options{Pretty: true})
	if err != nil {
		return nil, err
	}
	h, err := HTML(r)
	if err != nil {
		return nil, err
	}
	z, err := ZIP(r, r.Logs())
	if err != nil {
		return nil, err
	}
	return []Artifact{
		{Name: JSONFileName, MediaType: MediaTypeJSON, Data: j},
		{Name: HTMLFileName, MediaType: MediaTypeHTML, Data: h},
		{Name: ZIPFileName, MediaType: MediaTypeZIP, Data: z},
	}, nil
}
