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

// Package powershell holds helpers shared by probes that query Windows
// through PowerShell and ConvertTo-Json.
package powershell

import (
	"bytes"
	"context"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"time"

	cnserrors "github.com/NVIDIA/hostdiag/pkg/errors"
	"github.com/NVIDIA/hostdiag/pkg/runner"
)

// Command is the shell executable.
const Command = "powershell"

var baseArgs = []string{"-NoLogo", "-NoProfile", "-NonInteractive", "-Command"}

// Args returns the argument list that runs script.
func Args(script string) []string {
	return append(append([]string(nil), baseArgs...), script)
}

// CommandLine returns the full command line for script, as recorded in an
// invocation.
func CommandLine(script string) string {
	return Command + " " + strings.Join(Args(script), " ")
}

// Query runs script and decodes its JSON output into a list of T.
func Query[T any](ctx context.Context, r runner.Runner, timeout time.Duration, script string) ([]T, runner.Invocation, error) {
	qctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	inv := r.Run(qctx, Command, Args(script)...)
	if inv.Err != nil {
		return nil, inv, inv.Err
	}
	if inv.ExitCode != 0 {
		return nil, inv, cnserrors.New(cnserrors.ErrCodeOSQuery, "query failed: "+inv.Summary())
	}

	items, err := DecodeList[T]([]byte(inv.Stdout))
	if err != nil {
		return nil, inv, cnserrors.Wrap(cnserrors.ErrCodeParse, "malformed query output", err)
	}
	return items, inv, nil
}

// DecodeList accepts ConvertTo-Json output, which is empty for no rows, an
// object for a single row and an array otherwise.
func DecodeList[T any](data []byte) ([]T, error) {
	data = bytes.TrimSpace(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf")))
	if len(data) == 0 {
		return nil, nil
	}
	if data[0] == '{' {
		var one T
		if err := json.Unmarshal(data, &one); err != nil {
			return nil, err
		}
		return []T{one}, nil
	}
	var many []T
	if err := json.Unmarshal(data, &many); err != nil {
		return nil, err
	}
	return many, nil
}

var (
	msDatePattern = regexp.MustCompile(`^/Date\((-?\d+)([+-]\d{4})?\)/$`)
	dateLayouts   = []string{time.RFC3339, "2006-01-02T15:04:05"}
)

// ParseDate reads the encodings PowerShell produces for DateTime values:
// "/Date(ms)/" (Windows PowerShell 5.1), ISO-8601 (PowerShell 7), a WMI DMTF
// string, or an object carrying "value" or "DateTime".
func ParseDate(v any) (time.Time, bool) {
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		if m := msDatePattern.FindStringSubmatch(s); m != nil {
			ms, err := strconv.ParseInt(m[1], 10, 64)
			if err != nil {
				return time.Time{}, false
			}
			return time.UnixMilli(ms).UTC(), true
		}
		for _, layout := range dateLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return ts.UTC(), true
			}
		}
		if len(s) >= 14 {
			if ts, err := time.Parse("20060102150405", s[:14]); err == nil {
				return ts.UTC(), true
			}
		}
	case map[string]any:
		if dt, ok := t["value"]; ok {
			return ParseDate(dt)
		}
		if dt, ok := t["DateTime"]; ok {
			return ParseDate(dt)
		}
	}
	return time.Time{}, false
}
