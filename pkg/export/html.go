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
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"sort"
	"strconv"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	cnserrors "github.com/NVIDIA/hostdiag/pkg/errors"
	"github.com/NVIDIA/hostdiag/pkg/probe"
	"github.com/NVIDIA/hostdiag/pkg/report"
)

//go:embed templates/report.html.tmpl
var templateFS embed.FS

var reportTemplate = template.Must(template.ParseFS(templateFS, "templates/report.html.tmpl"))

type htmlPage struct {
	Title       string
	GeneratedAt string
	Meta        []row
	Tools       []toolRow
	Sections    []section
}

type row struct {
	Path  string
	Value string
}

type toolRow struct {
	Name      string
	Available bool
	Path      string
}

type section struct {
	ID       string
	Title    string
	Status   probe.Status
	Message  string
	Code     string
	Duration string
	Rows     []row
}

// HTML renders the report as a standalone page. Nothing is recomputed; every
// value shown comes from the report as is.
func HTML(r *report.Report) ([]byte, error) {
	if r == nil {
		return nil, cnserrors.New(cnserrors.ErrCodeInvalidRequest, "report is required")
	}

	title := cases.Title(language.English)
	page := htmlPage{
		Title:       "Host diagnostics: " + r.Host.Hostname,
		GeneratedAt: r.GeneratedAt.UTC().Format(time.RFC3339),
		Meta: []row{
			{"Hostname", r.Host.Hostname},
			{"OS", r.Host.OS},
			{"Platform", r.Host.Platform},
			{"Architecture", r.Host.Arch},
			{"Elevated", strconv.FormatBool(r.Host.Elevated)},
			{"Run ID", r.Run.ID},
			{"Version", r.Run.Version},
			{"Started", r.Run.StartedAt.UTC().Format(time.RFC3339)},
			{"Duration", formatMs(r.Run.DurationMs)},
			{"Schema", r.SchemaVersion},
		},
	}

	names := make([]string, 0, len(r.Tools))
	for n := range r.Tools {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		t := r.Tools[n]
		page.Tools = append(page.Tools, toolRow{Name: n, Available: t.Available, Path: t.Path})
	}

	for _, c := range r.Order() {
		e := r.Entry(c)
		rows, err := flatten(e.Payload)
		if err != nil {
			return nil, cnserrors.Wrap(cnserrors.ErrCodeInternal, fmt.Sprintf("failed to flatten %s payload", c), err)
		}
		page.Sections = append(page.Sections, section{
			ID:       c.String(),
			Title:    title.String(c.String()),
			Status:   e.Status,
			Message:  e.MessageText(),
			Code:     e.Code,
			Duration: formatMs(e.DurationMs),
			Rows:     rows,
		})
	}

	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, page); err != nil {
		return nil, cnserrors.Wrap(cnserrors.ErrCodeInternal, "failed to render report", err)
	}
	return buf.Bytes(), nil
}

func formatMs(ms int64) string {
	return (time.Duration(ms) * time.Millisecond).String()
}

// flatten turns a payload into path/value rows, walking objects in sorted key
// order and arrays by index.
func flatten(payload any) ([]row, error) {
	if payload == nil {
		return nil, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	v, err := decodeGeneric(raw)
	if err != nil {
		return nil, err
	}
	var rows []row
	walk("", v, &rows)
	return rows, nil
}

func walk(path string, v any, rows *[]row) {
	switch t := v.(type) {
	case map[string]any:
		if len(t) == 0 {
			*rows = append(*rows, row{label(path), "{}"})
			return
		}
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			next := k
			if path != "" {
				next = path + "." + k
			}
			walk(next, t[k], rows)
		}
	case []any:
		if len(t) == 0 {
			*rows = append(*rows, row{label(path), "[]"})
			return
		}
		for i, item := range t {
			walk(fmt.Sprintf("%s[%d]", path, i), item, rows)
		}
	case nil:
		*rows = append(*rows, row{label(path), "null"})
	case json.Number:
		*rows = append(*rows, row{label(path), t.String()})
	case string:
		*rows = append(*rows, row{label(path), t})
	default:
		*rows = append(*rows, row{label(path), fmt.Sprint(t)})
	}
}

func label(path string) string {
	if path == "" {
		return "value"
	}
	return path
}
