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
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/hostdiag/pkg/config"
	"github.com/NVIDIA/hostdiag/pkg/probe"
	"github.com/NVIDIA/hostdiag/pkg/serializer"
)

func categoryNames() string {
	names := make([]string, 0, len(probe.Categories))
	for _, c := range probe.Categories {
		names = append(names, c.String())
	}
	return strings.Join(names, ",")
}

// runFlags are shared by every command that performs a diagnostic run.
func runFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "probes",
			Aliases: []string{"p"},
			Usage:   fmt.Sprintf("comma-separated probes to run (%s)", categoryNames()),
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "per-probe timeout (storage keeps its longer default unless set in --config)",
		},
		&cli.StringFlag{
			Name:  "tools-dir",
			Usage: "directory holding optional external tools (default: $HOSTDIAG_TOOLS or tools/ next to the executable)",
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "YAML run configuration file",
		},
		&cli.BoolFlag{
			Name:    "quiet",
			Aliases: []string{"q"},
			Usage:   "suppress progress output on stderr",
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "also report each probe as it starts",
		},
	}
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"t"},
		Value:   string(serializer.FormatTable),
		Usage:   fmt.Sprintf("output format (%s)", strings.Join(serializer.SupportedFormats(), ", ")),
	}
}

// parseOutputFormat validates the --format flag.
func parseOutputFormat(cmd *cli.Command) (serializer.Format, error) {
	f := serializer.Format(strings.ToLower(cmd.String("format")))
	if f.IsUnknown() {
		return "", fmt.Errorf("unknown output format: %q (supported: %s)",
			cmd.String("format"), strings.Join(serializer.SupportedFormats(), ", "))
	}
	return f, nil
}

// runConfig builds the run configuration from, in increasing precedence,
// defaults, the environment, the --config file and flags.
func (a *app) runConfig(cmd *cli.Command) (*config.RunConfig, error) {
	opts := config.FromEnv()

	if path := cmd.String("config"); path != "" {
		fileOpts, err := config.LoadFile(path)
		if err != nil {
			return nil, err
		}
		opts = append(opts, fileOpts...)
	}

	if cmd.IsSet("probes") {
		opts = append(opts, config.WithProbeList(cmd.String("probes")))
	}
	if cmd.IsSet("timeout") {
		opts = append(opts, config.WithTimeout(cmd.Duration("timeout")))
	}
	if cmd.IsSet("tools-dir") {
		opts = append(opts, config.WithToolsDir(cmd.String("tools-dir")))
	}
	if cmd.IsSet("verbose") {
		opts = append(opts, config.WithVerbose(cmd.Bool("verbose")))
	}

	opts = append(opts, config.WithVersion(version))
	opts = append(opts, a.runOptions...)

	return config.New(opts...)
}
