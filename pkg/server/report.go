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

package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/NVIDIA/hostdiag/pkg/config"
	cnserrors "github.com/NVIDIA/hostdiag/pkg/errors"
	"github.com/NVIDIA/hostdiag/pkg/export"
	"github.com/NVIDIA/hostdiag/pkg/progress"
	"github.com/NVIDIA/hostdiag/pkg/report"
	"github.com/NVIDIA/hostdiag/pkg/serializer"
)

// Report formats served by /v1/report.
const (
	FormatJSON = "json"
	FormatHTML = "html"
	FormatZIP  = "zip"
)

// Runner executes one diagnostic run.
type Runner interface {
	Run(ctx context.Context, cfg *config.RunConfig, sink progress.Sink) (*report.Report, error)
}

// handleReport handles GET /v1/report
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteError(w, r, http.StatusMethodNotAllowed, cnserrors.ErrCodeMethodNotAllowed,
			"method not allowed", false, map[string]any{"allowed": http.MethodGet})
		return
	}

	q := r.URL.Query()
	format := strings.ToLower(strings.TrimSpace(q.Get("format")))
	if format == "" {
		format = FormatJSON
	}
	if format != FormatJSON && format != FormatHTML && format != FormatZIP {
		WriteError(w, r, http.StatusBadRequest, cnserrors.ErrCodeInvalidRequest,
			fmt.Sprintf("unsupported format %q", format), false,
			map[string]any{"supported": []string{FormatJSON, FormatHTML, FormatZIP}})
		return
	}

	opts := append([]config.Option{
		config.WithToolsDir(s.config.ToolsDir),
		config.WithTimeout(s.config.ProbeTimeout),
		config.WithVersion(s.config.Version),
	}, s.runOptions...)
	opts = append(opts, config.WithProbeList(q.Get("probes")))

	cfg, err := config.New(opts...)
	if err != nil {
		WriteErrorFromErr(w, r, err, "invalid run configuration", nil)
		return
	}

	if !s.running.CompareAndSwap(false, true) {
		busyRejects.Inc()
		w.Header().Set("Retry-After", "30")
		WriteError(w, r, http.StatusTooManyRequests, cnserrors.ErrCodeRateLimitExceeded,
			"a diagnostic run is already in progress", true, nil)
		return
	}
	defer s.running.Store(false)

	rep, err := s.runner.Run(r.Context(), cfg, progress.Log{Logger: slog.Default().With("requestID", RequestID(r))})
	if err != nil {
		WriteErrorFromErr(w, r, err, "diagnostic run failed", nil)
		return
	}

	artifact, err := render(rep, format)
	if err != nil {
		WriteErrorFromErr(w, r, err, "failed to render report", map[string]any{"format": format})
		return
	}

	slog.Debug("report served",
		"requestID", RequestID(r),
		"run", rep.Run.ID,
		"format", format,
		"bytes", len(artifact.Data))

	serializer.RespondArtifact(w, artifact)
}

func render(rep *report.Report, format string) (export.Artifact, error) {
	switch format {
	case FormatHTML:
		data, err := export.HTML(rep)
		return export.Artifact{Name: export.HTMLFileName, MediaType: export.MediaTypeHTML, Data: data}, err
	case FormatZIP:
		data, err := export.ZIP(rep, rep.Logs())
		return export.Artifact{Name: export.ZIPFileName, MediaType: export.MediaTypeZIP, Data: data}, err
	default:
		data, err := export.JSON(rep, export.Options{Pretty: true})
		return export.Artifact{Name: export.JSONFileName, MediaType: export.MediaTypeJSON, Data: data}, err
	}
}
