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

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/hostdiag/pkg/config"
	"github.com/NVIDIA/hostdiag/pkg/report"
	"github.com/NVIDIA/hostdiag/pkg/serializer"
)

// toolsView is the output of the tools command.
type toolsView struct {
	Dir   string                 `json:"dir"`
	Tools map[string]report.Tool `json:"tools"`
}

func newToolsView(cfg *config.RunConfig) toolsView {
	v := toolsView{Dir: cfg.ToolsDir(), Tools: make(map[string]report.Tool)}
	for _, a := range cfg.Tools().Summary() {
		v.Tools[a.Tool.String()] = report.Tool{Available: a.Available, Path: a.Path}
	}
	return v
}

func (a *app) toolsCmd() *cli.Command {
	return &cli.Command{
		Name:  "tools",
		Usage: "Show which optional external tools are available",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "tools-dir",
				Usage: "directory holding optional external tools",
			},
			formatFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			format, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}

			opts := config.FromEnv()
			if cmd.IsSet("tools-dir") {
				opts = append(opts, config.WithToolsDir(cmd.String("tools-dir")))
			}
			cfg, err := config.New(append(opts, a.runOptions...)...)
			if err != nil {
				return err
			}

			return serializer.NewWriter(format, a.stdout).Serialize(ctx, newToolsView(cfg))
		},
	}
}
