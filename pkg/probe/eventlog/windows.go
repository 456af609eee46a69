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

package eventlog

import (
	"context"
	"fmt"
	"time"

	"github.com/NVIDIA/hostdiag/pkg/probe"
	"github.com/NVIDIA/hostdiag/pkg/probe/internal/powershell"
)

const sourceWindowsSystem = "System"

// BugcheckQuery returns the script reading the n most recent bugcheck events.
func BugcheckQuery(n int) string {
	return fmt.Sprintf("Get-WinEvent -FilterHashtable @{LogName='System'; Id=1001} -MaxEvents %d "+
		"-ErrorAction SilentlyContinue | "+
		"Select-Object TimeCreated,ProviderName,Id,LevelDisplayName,Message | ConvertTo-Json -Compress", n)
}

type winEvent struct {
	TimeCreated      any    `json:"TimeCreated"`
	ProviderName     string `json:"ProviderName"`
	ID               int    `json:"Id"`
	LevelDisplayName string `json:"LevelDisplayName"`
	Message          string `json:"Message"`
}

func (p *Probe) collectWindows(ctx context.Context) probe.Result {
	records, inv, err := powershell.Query[winEvent](ctx, p.runner, p.timeout, BugcheckQuery(p.maxEntries))
	if ctxErr := ctx.Err(); ctxErr != nil {
		return probe.Interrupted(probe.EventLog, ctxErr).WithInvocations(inv)
	}
	if err != nil {
		return probe.FailedFromError(probe.EventLog, err).WithInvocations(inv)
	}

	payload := Payload{
		Platform:  "windows",
		Sources:   []string{sourceWindowsSystem},
		Bugchecks: make([]Event, 0, len(records)),
	}
	for _, r := range records {
		ev := Event{Provider: r.ProviderName, ID: r.ID, Level: r.LevelDisplayName, Message: r.Message}
		if ts, ok := powershell.ParseDate(r.TimeCreated); ok {
			ev.Time = ts.Format(time.RFC3339)
		}
		payload.Bugchecks = append(payload.Bugchecks, ev)
	}
	return probe.OK(probe.EventLog, payload).WithInvocations(inv)
}
