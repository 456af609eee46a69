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
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/hostdiag/pkg/config"
	"github.com/NVIDIA/hostdiag/pkg/logging"
	"github.com/NVIDIA/hostdiag/pkg/oci"
	"github.com/NVIDIA/hostdiag/pkg/orchestrator"
	"github.com/NVIDIA/hostdiag/pkg/progress"
	"github.com/NVIDIA/hostdiag/pkg/report"
	"github.com/NVIDIA/hostdiag/pkg/serializer"
)

const (
	name           = "hostdiag"
	versionDefault = "dev"
)

var (
	// overridden during build with ldflags
	version = versionDefault
	commit  = "unknown"
	date    = "unknown"
)

// Runner executes one diagnostic run.
type Runner interface {
	Run(ctx context.Context, cfg *config.RunConfig, sink progress.Sink) (*report.Report, error)
}

// app carries the collaborators shared by all commands.
type app struct {
	runner      Runner
	stdout      io.Writer
	stderr      io.Writer
	runOptions  []config.Option
	destination func(uri string) (serializer.Destination, error)
	push        func(ctx context.Context, opts oci.PushOptions) (*oci.PushResult, error)
	envFiles    []string
}

func newApp() *app {
	return &app{
		runner:      orchestrator.New(),
		stdout:      os.Stdout,
		stderr:      os.Stderr,
		destination: serializer.NewDestination,
		push:        oci.Push,
	}
}

// Execute runs the CLI with the process arguments and exits non-zero on error.
func Execute() {
	loaded := loadDotEnv(dotEnvCandidates()...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := newApp()
	a.envFiles = loaded

	if err := newRootCmd(a).Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:                  name,
		Usage:                 "Collect host diagnostics into a portable report",
		Version:               fmt.Sprintf("%s (commit: %s, date: %s)", version, commit, date),
		EnableShellCompletion: true,
		DefaultCommand:        "run",
		Writer:                a.stdout,
		ErrWriter:             a.stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "log level (debug, info, warn, error)",
				Sources: cli.EnvVars(logging.EnvLogLevel),
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			logging.SetDefaultStructuredLoggerWithLevel(name, version, cmd.String("log-level"))
			slog.Debug("starting",
				"name", name,
				"version", version,
				"commit", commit,
				"date", date)
			for _, p := range a.envFiles {
				slog.Debug("loaded environment file", "path", p)
			}
			return ctx, nil
		},
		Commands: []*cli.Command{
			a.runCmd(),
			a.bundleCmd(),
			a.verifyCmd(),
			a.toolsCmd(),
		},
	}
}
