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
	"errors"
	"testing"

	"github.com/coreos/go-systemd/v22/dbus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cnserrors "github.com/NVIDIA/hostdiag/pkg/errors"
	"github.com/NVIDIA/hostdiag/pkg/probe"
	"github.com/NVIDIA/hostdiag/pkg/probe/internal/powershell"
	"github.com/NVIDIA/hostdiag/pkg/runner"
	"github.com/NVIDIA/hostdiag/pkg/toolbox"
)

const journalOutput = `{"__REALTIME_TIMESTAMP":"1700000000000000","PRIORITY":"3","SYSLOG_IDENTIFIER":"kernel","MESSAGE":"nvme nvme0: I/O 12 QID 3 timeout, aborting"}
{"__REALTIME_TIMESTAMP":"1700000060000000","PRIORITY":"2","SYSLOG_IDENTIFIER":"kernel","MESSAGE":[65,66,67]}
`

type fakeSystemd struct {
	units  []dbus.UnitStatus
	err    error
	closed bool
}

func (f *fakeSystemd) ListUnitsFilteredContext(_ context.Context, states []string) ([]dbus.UnitStatus, error) {
	if len(states) != 1 || states[0] != "failed" {
		return nil, errors.New("unexpected filter")
	}
	return f.units, f.err
}

func (f *fakeSystemd) Close() { f.closed = true }

func systemd(f *fakeSystemd) Option {
	return WithSystemd(func(context.Context) (UnitLister, error) { return f, nil })
}

func journalKey(n int) string {
	return runner.Invocation{Command: Journalctl, Args: JournalArgs(n)}.CommandLine()
}

func TestCollectLinux(t *testing.T) {
	f := runner.NewFake().On(journalKey(5), runner.Response{Stdout: journalOutput})
	sd := &fakeSystemd{units: []dbus.UnitStatus{
		{Name: "nvidia-persistenced.service", Description: "NVIDIA Persistence Daemon", LoadState: "loaded", ActiveState: "failed", SubState: "failed"},
		{Name: "apt-daily.service", LoadState: "loaded", ActiveState: "failed", SubState: "failed"},
	}}

	p := New(f, WithGOOS("linux"), systemd(sd))
	assert.Equal(t, probe.EventLog, p.Category())

	res := p.Collect(context.Background(), toolbox.Inventory{})
	require.Equal(t, probe.StatusOK, res.Status, res.Message)
	assert.True(t, sd.closed)
	assert.Len(t, res.Invocations, 1)

	payload := res.Payload.(Payload)
	assert.Equal(t, []string{"journal", "systemd"}, payload.Sources)
	require.Len(t, payload.KernelErrors, 2)
	assert.Equal(t, Entry{
		Time:       "2023-11-14T22:13:20Z",
		Priority:   3,
		Identifier: "kernel",
		Message:    "nvme nvme0: I/O 12 QID 3 timeout, aborting",
	}, payload.KernelErrors[0])
	assert.Equal(t, "ABC", payload.KernelErrors[1].Message)

	require.Len(t, payload.FailedUnits, 2)
	assert.Equal(t, "apt-daily.service", payload.FailedUnits[0].Name)
	assert.Equal(t, "NVIDIA Persistence Daemon", payload.FailedUnits[1].Description)
}

func TestCollectLinux_OneSourceFails(t *testing.T) {
	f := runner.NewFake().On(journalKey(5), runner.Response{Stdout: journalOutput})
	p := New(f, WithGOOS("linux"), WithSystemd(func(context.Context) (UnitLister, error) {
		return nil, errors.New("no system bus")
	}))

	res := p.Collect(context.Background(), toolbox.Inventory{})
	assert.Equal(t, probe.StatusDegraded, res.Status)
	assert.Contains(t, res.Message, "no system bus")
	assert.Equal(t, []string{"journal"}, res.Payload.(Payload).Sources)
}

func TestCollectLinux_BothSourcesFail(t *testing.T) {
	f := runner.NewFake().On(journalKey(5), runner.Response{Stderr: "No journal files were found.", ExitCode: 1})
	p := New(f, WithGOOS("linux"), systemd(&fakeSystemd{err: errors.New("access denied")}))

	res := p.Collect(context.Background(), toolbox.Inventory{})
	assert.Equal(t, probe.StatusFailed, res.Status)
	assert.Equal(t, cnserrors.ErrCodeOSQuery, res.Code)
	assert.Contains(t, res.Message, "journal:")
	assert.Contains(t, res.Message, "systemd:")
}

func TestCollectLinux_MaxEntries(t *testing.T) {
	f := runner.NewFake().On(journalKey(20), runner.Response{Stdout: ""})
	res := New(f, WithGOOS("linux"), WithMaxEntries(20), systemd(&fakeSystemd{})).
		Collect(context.Background(), toolbox.Inventory{})
	assert.Equal(t, probe.StatusOK, res.Status)
	assert.Equal(t, []string{journalKey(20)}, f.Calls())
}

func TestParseJournal(t *testing.T) {
	entries, bad, err := parseJournal("-- No entries --\n")
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Zero(t, bad)

	entries, bad, err = parseJournal("{bad\n" + journalOutput)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.Equal(t, 1, bad)

	_, bad, err = parseJournal("{bad\n{worse\n")
	assert.True(t, cnserrors.IsCode(err, cnserrors.ErrCodeParse))
	assert.Equal(t, 2, bad)
}

func TestCollectLinux_MalformedJournalRecords(t *testing.T) {
	f := runner.NewFake().On(journalKey(5), runner.Response{Stdout: "{bad record\n" + journalOutput})
	res := New(f, WithGOOS("linux"), systemd(&fakeSystemd{})).
		Collect(context.Background(), toolbox.Inventory{})

	require.Equal(t, probe.StatusDegraded, res.Status)
	assert.Equal(t, "journal: 1 malformed records", res.Message)
	payload := res.Payload.(Payload)
	assert.Equal(t, []string{"journal", "systemd"}, payload.Sources)
	assert.Len(t, payload.KernelErrors, 2)
}

func TestJournalMessage(t *testing.T) {
	assert.Equal(t, "hi", journalMessage(json.RawMessage(`"hi"`)))
	assert.Equal(t, "AB", journalMessage(json.RawMessage(`[65,66]`)))
	assert.Empty(t, journalMessage(json.RawMessage(`{}`)))
}

func TestCollectWindows(t *testing.T) {
	f := runner.NewFake().On(powershell.CommandLine(BugcheckQuery(5)), runner.Response{
		Stdout: `{"TimeCreated":"\/Date(1700000000000)\/","ProviderName":"Microsoft-Windows-WER-SystemErrorReporting","Id":1001,"LevelDisplayName":"Error","Message":"The computer has rebooted from a bugcheck."}`,
	})

	res := New(f, WithGOOS("windows")).Collect(context.Background(), toolbox.Inventory{})
	require.Equal(t, probe.StatusOK, res.Status, res.Message)

	payload := res.Payload.(Payload)
	require.Len(t, payload.Bugchecks, 1)
	assert.Equal(t, Event{
		Time:     "2023-11-14T22:13:20Z",
		Provider: "Microsoft-Windows-WER-SystemErrorReporting",
		ID:       1001,
		Level:    "Error",
		Message:  "The computer has rebooted from a bugcheck.",
	}, payload.Bugchecks[0])
}

func TestCollectWindows_NoEvents(t *testing.T) {
	f := runner.NewFake().On(powershell.CommandLine(BugcheckQuery(5)), runner.Response{})

	res := New(f, WithGOOS("windows")).Collect(context.Background(), toolbox.Inventory{})
	assert.Equal(t, probe.StatusOK, res.Status)
	assert.Empty(t, res.Payload.(Payload).Bugchecks)
}

func TestCollectWindows_Fails(t *testing.T) {
	f := runner.NewFake().On(powershell.CommandLine(BugcheckQuery(5)), runner.Response{ExitCode: 1, Stderr: "denied"})

	res := New(f, WithGOOS("windows")).Collect(context.Background(), toolbox.Inventory{})
	assert.Equal(t, probe.StatusFailed, res.Status)
	assert.Equal(t, cnserrors.ErrCodeOSQuery, res.Code)
}

func TestCollect_Unsupported(t *testing.T) {
	res := New(nil, WithGOOS("plan9")).Collect(context.Background(), toolbox.Inventory{})
	assert.Equal(t, probe.StatusUnavailable, res.Status)
}

func TestCollect_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := New(nil).Collect(ctx, toolbox.Inventory{})
	assert.Equal(t, "cancelled", res.Message)
}
