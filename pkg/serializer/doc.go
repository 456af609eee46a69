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

// Package serializer writes rendered reports and structured values to their
// destinations.
//
// Two kinds of output are supported:
//
//   - Writer encodes a Go value as JSON, YAML or a flattened FIELD/VALUE
//     table. The CLI uses it for tool listings and run summaries.
//   - Destination stores an already rendered export.Artifact. A destination
//     is selected from a URI:
//
//	""  or "-"            standard output
//	cm://namespace/name   Kubernetes ConfigMap (server-side apply)
//	anything else         file path
//
// Example:
//
//	dst, err := serializer.NewDestination("cm://diag/bench-01")
//	if err != nil {
//		return err
//	}
//	defer dst.Close()
//	err = dst.Put(ctx, artifact)
//
// HTTP handlers use RespondJSON and RespondArtifact, which buffer the body so
// an encoding error never produces a partial response.
package serializer
