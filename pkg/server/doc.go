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

// Package server implements hostdiagd, the HTTP daemon that runs host
// diagnostics on request and returns the report.
//
// # Endpoints
//
//	GET /              service name, version and routes
//	GET /health        liveness
//	GET /ready         readiness
//	GET /metrics       Prometheus metrics
//	GET /v1/report     run diagnostics and return the report
//
// The report endpoint accepts two query parameters:
//
//   - probes: comma-separated categories (default: all)
//   - format: json (default), html or zip
//
// Only one diagnostic run is in flight at a time; concurrent requests are
// rejected with 429 and a Retry-After header.
//
// # Middleware
//
// API routes pass through observation (metrics and a debug access line),
// version negotiation, request id, panic recovery and rate limiting, in that
// order. A rate-limited request gets 429 with Retry-After set to the wait
// for the next token.
//
// # Usage
//
//	if err := server.Run(ctx, server.WithName("hostdiagd"), server.WithVersion(version)); err != nil {
//	    return err
//	}
//
// The listening port comes from PORT (default 8080) and the shutdown grace
// period from SHUTDOWN_TIMEOUT_SECONDS.
package server
