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

package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/NVIDIA/hostdiag/pkg/probe"
	"github.com/NVIDIA/hostdiag/pkg/progress"
	"github.com/NVIDIA/hostdiag/pkg/report"
)

// styles renders statuses for one output. Colors are dropped when the output
// is not a terminal.
type styles struct {
	ok    lipgloss.Style
	warn  lipgloss.Style
	fail  lipgloss.Style
	muted lipgloss.Style
	title lipgloss.Style
}

func newStyles(out io.Writer) styles {
	r := lipgloss.NewRenderer(out)
	return styles{
		ok:    r.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
		warn:  r.NewStyle().Foreground(lipgloss.Color("3")).Bold(true),
		fail:  r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		muted: r.NewStyle().Faint(true),
		title: r.NewStyle().Bold(true),
	}
}

func (s styles) status(st probe.Status) string {
	switch st {
	case probe.StatusOK:
		return s.ok.Render(string(st))
	case probe.StatusDegraded:
		return s.warn.Render(string(st))
	case probe.StatusFailed:
		return s.fail.Render(string(st))
	default:
		return s.muted.Render(string(st))
	}
}

// terminalSink prints one line per finished probe. Verbose sinks also print
// a line when a probe starts.
type terminalSink struct {
	mu      sync.Mutex
	out     io.Writer
	styles  styles
	verbose bool
}

func newTerminalSink(out io.Writer, verbose bool) *terminalSink {
	return &terminalSink{out: out, styles: newStyles(out), verbose: verbose}
}

func (t *terminalSink) Emit(e progress.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if e.Kind == progress.KindStarted {
		if t.verbose {
			fmt.Fprintf(t.out, "  %-9s %s\n", e.Category, t.styles.muted.Render("running"))
		}
		return
	}

	line := fmt.Sprintf("  %-9s %s %s", e.Category, t.styles.status(e.Status),
		t.styles.muted.Render(e.Elapsed.Round(time.Millisecond).String()))
	if e.Message != "" {
		line += " " + e.Message
	}
	fmt.Fprintln(t.out, line)
}

var summaryOrder = []probe.Status{
	probe.StatusOK,
	probe.StatusDegraded,
	probe.StatusUnavailable,
	probe.StatusFailed,
}

// printSummary writes a one-line outcome of the run.
func printSummary(out io.Writer, rep *report.Report) {
	s := newStyles(out)
	counts := rep.Counts()

	parts := make([]string, 0, len(summaryOrder))
	for _, st := range summaryOrder {
		parts = append(parts, fmt.Sprintf("%d %s", counts[st], s.status(st)))
	}

	host := rep.Host.Hostname
	if host == "" {
		host = "host"
	}
	fmt.Fprintf(out, "%s: %s %s\n",
		s.title.Render(host),
		strings.Join(parts, ", "),
		s.muted.Render(fmt.Sprintf("(%s)", time.Duration(rep.Run.DurationMs)*time.Millisecond)))
}
