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
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/hostdiag/pkg/export"
	"github.com/NVIDIA/hostdiag/pkg/progress"
	"github.com/NVIDIA/hostdiag/pkg/report"
	"github.com/NVIDIA/hostdiag/pkg/serializer"
)

func (a *app) runCmd() *cli.Command {
	flags := append(runFlags(),
		&cli.BoolFlag{
			Name:  "json",
			Usage: "print the JSON report to stdout even when saving files",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "indent JSON output",
		},
		&cli.StringFlag{
			Name:  "save-json",
			Usage: "write the JSON report to `FILE`",
		},
		&cli.StringFlag{
			Name:  "save-html",
			Usage: "write the HTML report to `FILE`",
		},
		&cli.StringFlag{
			Name:  "zip",
			Usage: "write the ZIP bundle (report and raw tool logs) to `FILE`",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "send the JSON report to a destination: file path, - for stdout, or cm://namespace/name",
		},
	)

	return &cli.Command{
		Name:  "run",
		Usage: "Run host diagnostics and print or save the report",
		Description: `Runs the enabled probes concurrently, each under its own timeout, and
assembles a report with one entry for each of: system, storage, drivers,
thermal, network and eventlog. Probes that are not enabled are reported as
unavailable. Probe failures never fail the command.

With no save flags the report is printed to stdout as indented JSON.`,
		Flags:  flags,
		Action: a.runAction,
	}
}

func (a *app) runAction(ctx context.Context, cmd *cli.Command) error {
	rep, err := a.collect(ctx, cmd)
	if err != nil {
		return err
	}
	return a.exportReport(ctx, cmd, rep)
}

// collect runs the diagnostics with progress on stderr.
func (a *app) collect(ctx context.Context, cmd *cli.Command) (*report.Report, error) {
	cfg, err := a.runConfig(cmd)
	if err != nil {
		return nil, err
	}

	quiet := cmd.Bool("quiet")
	var sink progress.Sink = progress.Nop{}
	if !quiet {
		sink = newTerminalSink(a.stderr, cfg.Verbose())
	}

	rep, err := a.runner.Run(ctx, cfg, sink)
	if err != nil {
		return nil, err
	}

	if !quiet {
		printSummary(a.stderr, rep)
	}
	return rep, nil
}

func (a *app) exportReport(ctx context.Context, cmd *cli.Command, rep *report.Report) error {
	pretty := cmd.Bool("pretty")
	saved := 0

	if path := cmd.String("save-json"); path != "" {
		data, err := export.JSON(rep, export.Options{Pretty: pretty})
		if err != nil {
			return err
		}
		if err := serializer.WriteFile(path, data); err != nil {
			return err
		}
		slog.Info("report saved", "format", "json", "path", path)
		saved++
	}

	if path := cmd.String("save-html"); path != "" {
		data, err := export.HTML(rep)
		if err != nil {
			return err
		}
		if err := serializer.WriteFile(path, data); err != nil {
			return err
		}
		slog.Info("report saved", "format", "html", "path", path)
		saved++
	}

	if path := cmd.String("zip"); path != "" {
		data, err := export.ZIP(rep, rep.Logs())
		if err != nil {
			return err
		}
		if err := serializer.WriteFile(path, data); err != nil {
			return err
		}
		slog.Info("report saved", "format", "zip", "path", path)
		saved++
	}

	if uri := cmd.String("output"); uri != "" {
		if err := a.sendReport(ctx, uri, rep, pretty); err != nil {
			return err
		}
		saved++
	}

	if !cmd.Bool("json") && saved > 0 {
		return nil
	}

	// Compact only when --json accompanies a saved export without --pretty.
	data, err := export.JSON(rep, export.Options{Pretty: pretty || saved == 0})
	if err != nil {
		return err
	}
	return serializer.NewStreamDestination(a.stdout).Put(ctx, export.Artifact{
		Name:      export.JSONFileName,
		MediaType: export.MediaTypeJSON,
		Data:      data,
	})
}

// sendReport writes the report to a destination URI. A ConfigMap receives the
// JSON and HTML renderings; other destinations receive the JSON.
func (a *app) sendReport(ctx context.Context, uri string, rep *report.Report, pretty bool) error {
	dest, err := a.destination(uri)
	if err != nil {
		return err
	}
	if c, ok := dest.(serializer.Closer); ok {
		defer func() {
			if cerr := c.Close(); cerr != nil {
				slog.Warn("failed to close destination", "uri", uri, "error", cerr)
			}
		}()
	}

	data, err := export.JSON(rep, export.Options{Pretty: pretty})
	if err != nil {
		return err
	}
	jsonArtifact := export.Artifact{Name: export.JSONFileName, MediaType: export.MediaTypeJSON, Data: data}

	if cm, ok := dest.(*serializer.ConfigMapWriter); ok {
		html, err := export.HTML(rep)
		if err != nil {
			return err
		}
		if err := cm.PutAll(ctx, jsonArtifact,
			export.Artifact{Name: export.HTMLFileName, MediaType: export.MediaTypeHTML, Data: html}); err != nil {
			return err
		}
	} else if err := dest.Put(ctx, jsonArtifact); err != nil {
		return err
	}

	slog.Info("report sent", "destination", uri)
	return nil
}
