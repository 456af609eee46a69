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

// Package oci publishes report bundle directories as OCI artifacts.
//
// A bundle target is either a local directory or an oci:// reference:
//
//	ref, err := oci.ParseOutputTarget("oci://ghcr.io/acme/diag:bench-01")
//
// Push packs the directory as one reproducible gzip tar layer under an OCI
// 1.1 manifest with artifact type ArtifactType and copies it to the registry
// using ORAS. Registry credentials come from the Docker credential store
// (~/.docker/config.json and its helpers).
package oci
