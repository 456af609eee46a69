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
	"log/slog"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/hostdiag/pkg/checksum"
	cnserrors "github.com/NVIDIA/hostdiag/pkg/errors"
	"github.com/NVIDIA/hostdiag/pkg/export"
	"github.com/NVIDIA/hostdiag/pkg/oci"
	"github.com/NVIDIA/hostdiag/pkg/report"
	"github.com/NVIDIA/hostdiag/pkg/serializer"
)

// Annotations added to pushed bundles.
const (
	annotationRunID = "com.nvidia.hostdiag.run-id"
	annotationHost  = "com.nvidia.hostdiag.host"
)

// bundleCmdOptions holds parsed options for the bundle command.
type bundleCmdOptions struct {
	target      *oci.Reference
	plainHTTP   bool
	insecureTLS bool
}

// parseBundleCmdOptions parses and validates command options.
func parseBundleCmdOptions(cmd *cli.Command) (*bundleCmdOptions, error) {
	out := cmd.String("output-dir")
	if out == "" {
		return nil, cnserrors.New(cnserrors.ErrCodeInvalidRequest, "--output-dir is required")
	}

	ref, err := oci.ParseOutputTarget(out)
	if err != nil {
		return nil, err
	}

	opts := &bundleCmdOptions{
		target:      ref,
		plainHTTP:   cmd.Bool("plain-http"),
		insecureTLS: cmd.Bool("insecure-tls"),
	}
	if !ref.IsOCI && (opts.plainHTTP || opts.insecureTLS) {
		return nil, cnserrors.New(cnserrors.ErrCodeInvalidRequest,
			"--plain-http and --insecure-tls require an oci:// output")
	}
	return opts, nil
}

func (a *app) bundleCmd() *cli.Command {
	flags := append(runFlags(),
		&cli.StringFlag{
			Name:    "output-dir",
			Aliases: []string{"o"},
			Usage:   "bundle destination: a directory or oci://registry/repository[:tag]",
		},
		&cli.BoolFlag{
			Name:  "plain-http",
			Usage: "use HTTP instead of HTTPS for the registry",
		},
		&cli.BoolFlag{
			Name:  "insecure-tls",
			Usage: "skip registry TLS certificate verification",
		},
	)

	return &cli.Command{
		Name:  "bundle",
		Usage: "Run diagnostics and write every export with checksums",
		Description: `Runs the diagnostics and writes report.json, report.html, bundle.zip and
checksums.txt into the output directory.

When the output is an oci:// reference the files are staged in a temporary
directory and pushed to the registry as a single OCI artifact. Without a tag
the tag is derived from the host name and report time.

# Examples

  hostdiag bundle --output-dir ./diag
  hostdiag bundle --output-dir oci://ghcr.io/acme/hostdiag:bench-01`,
		Flags: flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			opts, err := parseBundleCmdOptions(cmd)
			if err != nil {
				return err
			}

			rep, err := a.collect(ctx, cmd)
			if err != nil {
				return err
			}

			dir := opts.target.LocalPath
			if opts.target.IsOCI {
				dir, err = os.MkdirTemp("", "hostdiag-bundle-*")
				if err != nil {
					return cnserrors.Wrap(cnserrors.ErrCodeIO, "failed to create staging directory", err)
				}
				defer func() {
					if rerr := os.RemoveAll(dir); rerr != nil {
						slog.Warn("failed to remove staging directory", "path", dir, "error", rerr)
					}
				}()
			}

			if err := writeBundle(ctx, dir, rep); err != nil {
				return err
			}

			if !opts.target.IsOCI {
				fmt.Fprintf(a.stdout, "bundle written to %s\n", dir)
				return nil
			}

			ref := opts.target
			if ref.Tag == "" {
				ref = ref.WithTag(defaultTag(rep))
			}

			res, err := a.push(ctx, oci.PushOptions{
				SourceDir:   dir,
				Reference:   ref,
				PlainHTTP:   opts.plainHTTP,
				InsecureTLS: opts.insecureTLS,
				Created:     rep.GeneratedAt.Format(time.RFC3339),
				Annotations: map[string]string{
					annotationRunID: rep.Run.ID,
					annotationHost:  rep.Host.Hostname,
				},
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(a.stdout, "bundle pushed to %s@%s\n", res.Reference, res.Digest)
			return nil
		},
	}
}

// writeBundle renders every artifact into dir and records their checksums.
func writeBundle(ctx context.Context, dir string, rep *report.Report) error {
	artifacts, err := export.Bundle(rep)
	if err != nil {
		return err
	}
	paths, err := serializer.WriteDir(ctx, dir, artifacts)
	if err != nil {
		return err
	}
	return checksum.GenerateChecksums(ctx, dir, paths)
}

// defaultTag derives a registry tag from the host name and report time.
func defaultTag(rep *report.Report) string {
	return oci.SanitizeTag(rep.Host.Hostname + "-" + rep.GeneratedAt.UTC().Format("20060102T150405Z"))
}
