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
	"bytes"
	"fmt"
	"path"

	"github.com/klauspost/compress/zip"

	cnserrors "github.com/NVIDIA/hostdiag/pkg/errors"
	"github.com/NVIDIA/hostdiag/pkg/probe"
	"github.com/NVIDIA/hostdiag/pkg/report"
)

// LogName returns the archive path of a category's raw log.
func LogName(c probe.Category) string {
	return path.Join(LogDir, c.String()+".log")
}

// ZIP packs the pretty JSON report, the HTML report and one log file per
// category with a non-empty raw log. Entries appear in that order, logs in
// the report's presentation order.
func ZIP(r *report.Report, logs map[probe.Category]string) ([]byte, error) {
	if r == nil {
		return nil, cnserrors.New(cnserrors.ErrCodeInvalidRequest, "report is required")
	}

	j, err := JSON(r, Options{Pretty: true})
	if err != nil {
		return nil, err
	}
	h, err := HTML(r)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	modified := r.GeneratedAt.UTC()

	write := func(name string, data []byte) error {
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     name,
			Method:   zip.Deflate,
			Modified: modified,
		})
		if err != nil {
			return cnserrors.Wrap(cnserrors.ErrCodeIO, fmt.Sprintf("failed to create %s", name), err)
		}
		if _, err := w.Write(data); err != nil {
			return cnserrors.Wrap(cnserrors.ErrCodeIO, fmt.Sprintf("failed to write %s", name), err)
		}
		return nil
	}

	if err := write(JSONFileName, j); err != nil {
		return nil, err
	}
	if err := write(HTMLFileName, h); err != nil {
		return nil, err
	}
	for _, c := range r.Order() {
		if logs[c] == "" {
			continue
		}
		if err := write(LogName(c), []byte(logs[c])); err != nil {
			return nil, err
		}
	}

	if err := zw.Close(); err != nil {
		return nil, cnserrors.Wrap(cnserrors.ErrCodeIO, "failed to finalize archive", err)
	}
	return buf.Bytes(), nil
}
