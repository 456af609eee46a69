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
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	cnserrors "github.com/NVIDIA/hostdiag/pkg/errors"
	"github.com/NVIDIA/hostdiag/pkg/probe"
	"github.com/NVIDIA/hostdiag/pkg/runner"
)

const (
	sourceJournal = "journal"
	sourceSystemd = "systemd"
)

// Journalctl is the journal query command.
const Journalctl = "journalctl"

// JournalArgs returns the journalctl arguments reading n kernel error entries.
func JournalArgs(n int) []string {
	return []string{"-k", "-p", "err", "-n", strconv.Itoa(n), "-o", "json", "--no-pager"}
}

type journalRecord struct {
	Realtime   string          `json:"__REALTIME_TIMESTAMP"`
	Priority   string          `json:"PRIORITY"`
	Identifier string          `json:"SYSLOG_IDENTIFIER"`
	Message    json.RawMessage `json:"MESSAGE"`
}

func (p *Probe) collectLinux(ctx context.Context) probe.Result {
	payload := Payload{Platform: "linux", Sources: []string{}}
	var problems []string
	failures := 0

	entries, bad, inv, err := p.kernelErrors(ctx)
	if err != nil {
		failures++
		problems = append(problems, "journal: "+err.Error())
	} else {
		payload.Sources = append(payload.Sources, sourceJournal)
		payload.KernelErrors = entries
		if bad > 0 {
			problems = append(problems, fmt.Sprintf("journal: %d malformed records", bad))
		}
	}

	units, err := p.failedUnits(ctx)
	if err != nil {
		failures++
		problems = append(problems, "systemd: "+err.Error())
	} else {
		payload.Sources = append(payload.Sources, sourceSystemd)
		payload.FailedUnits = units
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return probe.Interrupted(probe.EventLog, ctxErr).WithInvocations(inv)
	}

	msg := strings.Join(problems, "; ")
	switch {
	case len(problems) == 0:
		return probe.OK(probe.EventLog, payload).WithInvocations(inv)
	case failures < 2:
		return probe.Degraded(probe.EventLog, payload, msg).WithInvocations(inv)
	default:
		return probe.Failed(probe.EventLog, cnserrors.ErrCodeOSQuery, msg).WithInvocations(inv)
	}
}

func (p *Probe) kernelErrors(ctx context.Context) ([]Entry, int, runner.Invocation, error) {
	qctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	inv := p.runner.Run(qctx, Journalctl, JournalArgs(p.maxEntries)...)
	if inv.Err != nil {
		return nil, 0, inv, inv.Err
	}
	if inv.ExitCode != 0 {
		return nil, 0, inv, cnserrors.New(cnserrors.ErrCodeOSQuery, inv.Summary())
	}

	entries, bad, err := parseJournal(inv.Stdout)
	return entries, bad, inv, err
}

// parseJournal reads "journalctl -o json" output, one object per line, and
// returns the entries with the count of malformed lines. If no line parses
// the output is rejected.
func parseJournal(out string) ([]Entry, int, error) {
	entries := []Entry{}
	bad := 0
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "{") {
			continue
		}
		var rec journalRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			bad++
			continue
		}
		entries = append(entries, rec.entry())
	}
	if bad > 0 && len(entries) == 0 {
		return nil, bad, cnserrors.New(cnserrors.ErrCodeParse, fmt.Sprintf("%d malformed journal records", bad))
	}
	return entries, bad, nil
}

func (r journalRecord) entry() Entry {
	e := Entry{Identifier: r.Identifier, Message: journalMessage(r.Message)}
	if n, err := strconv.Atoi(r.Priority); err == nil {
		e.Priority = n
	}
	if us, err := strconv.ParseInt(r.Realtime, 10, 64); err == nil {
		e.Time = time.UnixMicro(us).UTC().Format(time.RFC3339)
	}
	return e
}

// journalMessage decodes MESSAGE, which journald emits as a byte array when
// the text is not valid UTF-8.
func journalMessage(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var ints []int
	if err := json.Unmarshal(raw, &ints); err == nil {
		b := make([]byte, 0, len(ints))
		for _, v := range ints {
			b = append(b, byte(v))
		}
		return strings.ToValidUTF8(string(b), "�")
	}
	return ""
}

func (p *Probe) failedUnits(ctx context.Context) ([]Unit, error) {
	qctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	conn, err := p.connect(qctx)
	if err != nil {
		return nil, cnserrors.Wrap(cnserrors.ErrCodeOSQuery, "failed to connect to systemd", err)
	}
	defer conn.Close()

	statuses, err := conn.ListUnitsFilteredContext(qctx, []string{"failed"})
	if err != nil {
		return nil, cnserrors.Wrap(cnserrors.ErrCodeOSQuery, "failed to list units", err)
	}

	units := make([]Unit, 0, len(statuses))
	for _, s := range statuses {
		units = append(units, Unit{
			Name:        s.Name,
			Description: s.Description,
			LoadState:   s.LoadState,
			ActiveState: s.ActiveState,
			SubState:    s.SubState,
		})
	}
	sort.Slice(units, func(i, j int) bool { return units[i].Name < units[j].Name })
	return units, nil
}
