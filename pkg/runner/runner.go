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

package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	utilexec "k8s.io/utils/exec"

	cnserrors "github.com/NVIDIA/hostdiag/pkg/errors"
)

// Runner runs one external command to completion.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) Invocation
}

// Invocation captures one external tool call.
type Invocation struct {
	Command  string
	Args     []string
	Stdout   string
	Stderr   string
	ExitCode int
	Err      error
	Duration time.Duration
}

// Succeeded reports whether the process ran and exited with status 0.
func (i Invocation) Succeeded() bool {
	return i.Err == nil && i.ExitCode == 0
}

// CommandLine returns the command and arguments joined by spaces.
func (i Invocation) CommandLine() string {
	if len(i.Args) == 0 {
		return i.Command
	}
	return i.Command + " " + strings.Join(i.Args, " ")
}

// Summary is a one-line description of a failed invocation suitable for a
// probe message.
func (i Invocation) Summary() string {
	if i.Err != nil {
		return fmt.Sprintf("%s: %v", i.CommandLine(), i.Err)
	}
	stderr := strings.TrimSpace(i.Stderr)
	if stderr == "" {
		return fmt.Sprintf("%s: exit code %d", i.CommandLine(), i.ExitCode)
	}
	return fmt.Sprintf("%s: exit code %d: %s", i.CommandLine(), i.ExitCode, stderr)
}

// Log renders the invocation verbatim for bundling.
func (i Invocation) Log() string {
	var b strings.Builder
	fmt.Fprintf(&b, "$ %s\n", i.CommandLine())
	fmt.Fprintf(&b, "# exit=%d duration=%s", i.ExitCode, i.Duration.Round(time.Millisecond))
	if i.Err != nil {
		fmt.Fprintf(&b, " error=%q", i.Err.Error())
	}
	b.WriteString("\n")
	if i.Stdout != "" {
		b.WriteString(i.Stdout)
		if !strings.HasSuffix(i.Stdout, "\n") {
			b.WriteString("\n")
		}
	}
	if i.Stderr != "" {
		b.WriteString("# stderr\n")
		b.WriteString(i.Stderr)
		if !strings.HasSuffix(i.Stderr, "\n") {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// Logs concatenates the logs of several invocations.
func Logs(invs []Invocation) string {
	parts := make([]string, 0, len(invs))
	for _, inv := range invs {
		parts = append(parts, inv.Log())
	}
	return strings.Join(parts, "\n")
}

// Exec runs commands on the host.
type Exec struct {
	exec utilexec.Interface
}

// NewExec returns a Runner backed by the host process table.
func NewExec() *Exec {
	return &Exec{exec: utilexec.New()}
}

// NewExecWith returns a Runner using the given exec implementation.
func NewExecWith(e utilexec.Interface) *Exec {
	return &Exec{exec: e}
}

// Run executes name with args until it exits or ctx ends.
func (e *Exec) Run(ctx context.Context, name string, args ...string) Invocation {
	inv := Invocation{Command: name, Args: append([]string(nil), args...)}

	var stdout, stderr bytes.Buffer
	cmd := e.exec.CommandContext(ctx, name, args...)
	cmd.SetStdout(&stdout)
	cmd.SetStderr(&stderr)

	start := time.Now()
	err := cmd.Run()
	inv.Duration = time.Since(start)
	inv.Stdout = stdout.String()
	inv.Stderr = stderr.String()

	if err != nil {
		inv.ExitCode, inv.Err = classify(ctx, name, err)
	}

	slog.Debug("tool invocation finished",
		slog.String("command", inv.CommandLine()),
		slog.Int("exit", inv.ExitCode),
		slog.Duration("duration", inv.Duration))

	return inv
}

func classify(ctx context.Context, name string, err error) (int, error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		code := cnserrors.ErrCodeTimeout
		if errors.Is(ctxErr, context.Canceled) {
			code = cnserrors.ErrCodeCancelled
		}
		return -1, cnserrors.Wrap(code, "process terminated", ctxErr)
	}

	var exitErr utilexec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitStatus(), nil
	}

	if errors.Is(err, utilexec.ErrExecutableNotFound) {
		return -1, cnserrors.Wrap(cnserrors.ErrCodeToolUnavailable,
			fmt.Sprintf("executable %q not found", name), err)
	}

	return -1, cnserrors.Wrap(cnserrors.ErrCodeToolExecution,
		fmt.Sprintf("failed to run %q", name), err)
}
