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

package oci

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	ociv1 "github.com/opencontainers/image-spec/specs-go/v1"
	oras "oras.land/oras-go/v2"
	"oras.land/oras-go/v2/content/file"
	"oras.land/oras-go/v2/registry/remote"
	"oras.land/oras-go/v2/registry/remote/auth"
	"oras.land/oras-go/v2/registry/remote/credentials"

	"github.com/NVIDIA/hostdiag/pkg/defaults"
	cnserrors "github.com/NVIDIA/hostdiag/pkg/errors"
)

// ArtifactType is the artifact type of pushed report bundles.
const ArtifactType = "application/vnd.nvidia.hostdiag.bundle.v1"

// PushOptions configures Push.
type PushOptions struct {
	// SourceDir is the bundle directory to push.
	SourceDir string
	// Reference is the registry target. Its Tag must be set.
	Reference *Reference
	// PlainHTTP uses HTTP instead of HTTPS.
	PlainHTTP bool
	// InsecureTLS skips TLS certificate verification.
	InsecureTLS bool
	// Created is the RFC3339 creation annotation. A fixed value makes the
	// manifest reproducible.
	Created string
	// Annotations are added to the manifest.
	Annotations map[string]string
	// Target overrides the remote repository, mainly for tests.
	Target oras.Target
}

// PushResult describes a pushed artifact.
type PushResult struct {
	Digest    string
	Reference string
}

// Push packs SourceDir and copies it to the target.
func Push(ctx context.Context, opts PushOptions) (*PushResult, error) {
	ref := opts.Reference
	if ref == nil || !ref.IsOCI {
		return nil, cnserrors.New(cnserrors.ErrCodeInvalidRequest, "OCI reference is required")
	}
	if ref.Tag == "" {
		return nil, cnserrors.New(cnserrors.ErrCodeInvalidRequest, "tag is required to push OCI artifact")
	}

	info, err := os.Stat(opts.SourceDir)
	if err != nil || !info.IsDir() {
		return nil, cnserrors.Wrap(cnserrors.ErrCodeInvalidRequest,
			fmt.Sprintf("source %q is not a directory", opts.SourceDir), err)
	}

	absDir, err := filepath.Abs(opts.SourceDir)
	if err != nil {
		return nil, cnserrors.Wrap(cnserrors.ErrCodeInternal, "failed to resolve source directory", err)
	}

	pushCtx, cancel := context.WithTimeout(ctx, defaults.OCIPushTimeout)
	defer cancel()

	fs, err := file.New(absDir)
	if err != nil {
		return nil, cnserrors.Wrap(cnserrors.ErrCodeIO, "failed to create file store", err)
	}
	defer func() { _ = fs.Close() }()
	fs.TarReproducible = true

	layer, err := fs.Add(pushCtx, filepath.Base(absDir), ociv1.MediaTypeImageLayerGzip, absDir)
	if err != nil {
		return nil, cnserrors.Wrap(cnserrors.ErrCodeIO, "failed to add bundle directory", err)
	}

	annotations := map[string]string{
		ociv1.AnnotationTitle:  "hostdiag report bundle",
		ociv1.AnnotationVendor: "NVIDIA",
	}
	for k, v := range opts.Annotations {
		annotations[k] = v
	}
	if opts.Created != "" {
		annotations[ociv1.AnnotationCreated] = opts.Created
	}

	manifest, err := oras.PackManifest(pushCtx, fs, oras.PackManifestVersion1_1, ArtifactType, oras.PackManifestOptions{
		Layers:              []ociv1.Descriptor{layer},
		ManifestAnnotations: annotations,
	})
	if err != nil {
		return nil, cnserrors.Wrap(cnserrors.ErrCodeInternal, "failed to pack manifest", err)
	}
	if err := fs.Tag(pushCtx, manifest, ref.Tag); err != nil {
		return nil, cnserrors.Wrap(cnserrors.ErrCodeInternal, "failed to tag manifest", err)
	}

	dst := opts.Target
	if dst == nil {
		repo, err := remote.NewRepository(fmt.Sprintf("%s/%s", stripProtocol(ref.Registry), ref.Repository))
		if err != nil {
			return nil, cnserrors.Wrap(cnserrors.ErrCodeInvalidRequest, "failed to initialize remote repository", err)
		}
		repo.PlainHTTP = opts.PlainHTTP
		repo.Client = createAuthClient(opts.PlainHTTP, opts.InsecureTLS)
		dst = repo
	}

	slog.Info("pushing report bundle",
		"reference", ref.ImageReference(),
		"artifactType", ArtifactType)

	desc, err := oras.Copy(pushCtx, fs, ref.Tag, dst, ref.Tag, oras.DefaultCopyOptions)
	if err != nil {
		return nil, cnserrors.Wrap(cnserrors.ErrCodeUnavailable, "failed to push artifact to registry", err)
	}

	return &PushResult{
		Digest:    desc.Digest.String(),
		Reference: ref.ImageReference(),
	}, nil
}

func stripProtocol(registry string) string {
	registry = strings.TrimPrefix(registry, "https://")
	return strings.TrimPrefix(registry, "http://")
}

// createAuthClient builds a registry client backed by Docker credentials.
func createAuthClient(plainHTTP, insecureTLS bool) *auth.Client {
	credStore, err := credentials.NewStoreFromDocker(credentials.StoreOptions{})
	if err != nil {
		slog.Debug("docker credential store unavailable", "error", err)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if !plainHTTP && insecureTLS {
		if transport.TLSClientConfig == nil {
			transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
		} else {
			transport.TLSClientConfig.InsecureSkipVerify = true //nolint:gosec
		}
	}

	c := &auth.Client{
		Client: &http.Client{Transport: transport},
		Cache:  auth.NewCache(),
	}
	if credStore != nil {
		c.Credential = credentials.Credential(credStore)
	}
	return c
}
