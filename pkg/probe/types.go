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

package probe

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	cnserrors "github.com/NVIDIA/hostdiag/pkg/errors"
	"github.com/NVIDIA/hostdiag/pkg/runner"
	"github.com/NVIDIA/hostdiag/pkg/toolbox"
)

// Category identifies one section of the report.
type Category string

const (
	System   Category = "system"
	Storage  Category = "storage"
	Drivers  Category = "drivers"
	Thermal  Category = "thermal"
	Network  Category = "network"
	EventLog Category = "eventlog"
)

// Categories is the fixed, ordered set of report sections.
var Categories = []Category{System, Storage, Drivers, Thermal, Network, EventLog}

// String returns the category key.
func (c Category) String() string {
	return string(c)
}

// IsValid reports whether c is one of the known categories.
func (c Category) IsValid() bool {
	for _, k := range Categories {
		if k == c {
			return true
		}
	}
	return false
}

// ParseCategory converts a string (case-insensitive) into a Category.
// "driver" is accepted as an alias for "drivers".
func ParseCategory(s string) (Category, error) {
	v := Category(strings.ToLower(strings.TrimSpace(s)))
	if v == "driver" {
		v = Drivers
	}
	if !v.IsValid() {
		return "", cnserrors.New(cnserrors.ErrCodeInvalidRequest,
			fmt.Sprintf("unknown probe category %q", s))
	}
	return v, nil
}

// ParseCategories parses a comma-separated list, dropping duplicates while
// keeping the first occurrence order.
func ParseCategories(s string) ([]Category, error) {
	var out []Category
	seen := make(map[Category]bool)
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		c, err := ParseCategory(part)
		if err != nil {
			return nil, err
		}
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out, nil
}

// Status is the outcome class of a probe.
type Status string

const (
	StatusOK          Status = "ok"
	StatusDegraded    Status = "degraded"
	StatusUnavailable Status = "unavailable"
	StatusFailed      Status = "failed"
)

// IsValid reports whether s is one of the four statuses.
func (s Status) IsValid() bool {
	switch s {
	case StatusOK, StatusDegraded, StatusUnavailable, StatusFailed:
		return true
	default:
		return false
	}
}

// Probe collects one category of data.
type Probe interface {
	Category() Category
	Collect(ctx context.Context, tools toolbox.Inventory) Result
}

// Result is the immutable outcome of one probe run.
type Result struct {
	Category    Category
	Status      Status
	Payload     any
	Message     string
	Code        cnserrors.ErrorCode
	Duration    time.Duration
	Invocations []runner.Invocation
}

// OK returns a successful result.
func OK(c Category, payload any) Result {
	return Result{Category: c, Status: StatusOK, Payload: payload}
}

// Degraded returns a partial result carrying whatever payload was collected.
func Degraded(c Category, payload any, message string) Result {
	return Result{Category: c, Status: StatusDegraded, Payload: payload, Message: message}
}

// Unavailable returns a result for a probe that could not run.
func Unavailable(c Category, message string) Result {
	return Result{
		Category: c,
		Status:   StatusUnavailable,
		Message:  message,
		Code:     cnserrors.ErrCodeToolUnavailable,
	}
}

// NotRequested is the placeholder for a category disabled in the run config.
func NotRequested(c Category) Result {
	return Result{Category: c, Status: StatusUnavailable, Message: "not requested"}
}

// Failed returns a failed result with the given error code.
func Failed(c Category, code cnserrors.ErrorCode, message string) Result {
	return Result{Category: c, Status: StatusFailed, Message: message, Code: code}
}

// FailedFromError returns a failed result whose code is taken from err.
func FailedFromError(c Category, err error) Result {
	return Failed(c, cnserrors.CodeOf(err), err.Error())
}

// Interrupted returns the failed result for a probe whose context ended:
// "timeout" when the deadline passed, "cancelled" otherwise.
func Interrupted(c Category, ctxErr error) Result {
	if errors.Is(ctxErr, context.DeadlineExceeded) {
		return Failed(c, cnserrors.ErrCodeTimeout, "timeout")
	}
	return Failed(c, cnserrors.ErrCodeCancelled, "cancelled")
}

// WithInvocations returns a copy of r with invs appended.
func (r Result) WithInvocations(invs ...runner.Invocation) Result {
	all := make([]runner.Invocation, 0, len(r.Invocations)+len(invs))
	all = append(all, r.Invocations...)
	all = append(all, invs...)
	r.Invocations = all
	return r
}

// WithDuration returns a copy of r with the elapsed time set.
func (r Result) WithDuration(d time.Duration) Result {
	r.Duration = d
	return r
}

// WithCode returns a copy of r with the error code set.
func (r Result) WithCode(code cnserrors.ErrorCode) Result {
	r.Code = code
	return r
}

// RawLog renders every external invocation verbatim, or "" when the probe
// ran no external command.
func (r Result) RawLog() string {
	if len(r.Invocations) == 0 {
		return ""
	}
	return runner.Logs(r.Invocations)
}

// Partial classifies a collection where parsed out of total items succeeded:
// all → ok, some → degraded, none → failed with PARSE_ERROR.
func Partial(c Category, payload any, parsed, total int, problems []string) Result {
	switch {
	case parsed == total && len(problems) == 0:
		return OK(c, payload)
	case parsed > 0:
		return Degraded(c, payload, strings.Join(problems, "; "))
	default:
		msg := strings.Join(problems, "; ")
		if msg == "" {
			msg = "no usable data"
		}
		return Result{
			Category: c,
			Status:   StatusFailed,
			Payload:  payload,
			Message:  msg,
			Code:     cnserrors.ErrCodeParse,
		}
	}
}
