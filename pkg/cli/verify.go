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
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/hostdiag/pkg/checksum"
	cnserrors "github.com/NVIDIA/hostdiag/pkg/errors"
	"github.com/NVIDIA/hostdiag/pkg/export"
)

func (a *app) verifyCmd() *cli.Command {
	return &cli.Command{
		Name:      "verify",
		Usage:     "Verify a bundle directory against its checksums",
		ArgsUsage: "DIR",
		Action: func(_ context.Context, cmd *cli.Command) error {
			dir := cmd.Args().First()
			if dir == "" {
				return cnserrors.New(cnserrors.ErrCodeInvalidRequest, "bundle directory is required")
			}
			return a.verifyBundle(dir)
		},
	}
}

// verifyBundle checks file digests, then that the JSON report parses and
// validates.
func (a *app) verifyBundle(dir string) error {
	if err := checksum.Verify(dir); err != nil {
		return err
	}

	data, err := os.ReadFile(filepath.Join(dir, export.JSONFileName))
	if err != nil {
		return cnserrors.Wrap(cnserrors.ErrCodeIO, "failed to read report", err)
	}
	rep, err := export.ParseJSON(data)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, "bundle %s verified: run %s on %s at %s\n",
		dir, rep.Run.ID, rep.Host.Hostname, rep.GeneratedAt.Format("2006-01-02T15:04:05Z07:00"))
	return nil
}
