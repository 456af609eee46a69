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
	"fmt"
	"regexp"
	"strings"

	"github.com/distribution/reference"

	cnserrors "github.com/NVIDIA/hostdiag/pkg/errors"
)

// URIScheme prefixes registry targets.
const URIScheme = "oci://"

var repositoryPattern = regexp.MustCompile(`^[a-z0-9]+(?:[._-][a-z0-9]+)*(?:/[a-z0-9]+(?:[._-][a-z0-9]+)*)*$`)

// Reference is a parsed output target: an OCI registry reference or a local
// directory.
type Reference struct {
	IsOCI      bool
	Registry   string
	Repository string
	// Tag is empty when the URI had none; callers apply a default.
	Tag       string
	LocalPath string
}

// ParseOutputTarget parses oci://registry/repository[:tag] or a local path.
func ParseOutputTarget(target string) (*Reference, error) {
	if !strings.HasPrefix(target, URIScheme) {
		return &Reference{LocalPath: target}, nil
	}

	ref, err := reference.ParseNormalizedNamed(strings.TrimPrefix(target, URIScheme))
	if err != nil {
		return nil, cnserrors.Wrap(cnserrors.ErrCodeInvalidRequest, "invalid OCI reference", err)
	}
	if _, digested := ref.(reference.Digested); digested {
		return nil, cnserrors.New(cnserrors.ErrCodeInvalidRequest, "OCI output reference cannot contain a digest")
	}

	out := &Reference{
		IsOCI:      true,
		Registry:   reference.Domain(ref),
		Repository: reference.Path(ref),
	}
	if tagged, ok := ref.(reference.Tagged); ok {
		out.Tag = tagged.Tag()
	}
	if err := ValidateRegistryReference(out.Registry, out.Repository); err != nil {
		return nil, err
	}
	return out, nil
}

// ValidateRegistryReference checks the registry host and repository path.
func ValidateRegistryReference(registry, repository string) error {
	if strings.TrimSpace(registry) == "" {
		return cnserrors.New(cnserrors.ErrCodeInvalidRequest, "registry is required")
	}
	if strings.Contains(registry, "://") {
		return cnserrors.New(cnserrors.ErrCodeInvalidRequest,
			fmt.Sprintf("registry %q must not include a scheme", registry))
	}
	if !repositoryPattern.MatchString(repository) {
		return cnserrors.New(cnserrors.ErrCodeInvalidRequest,
			fmt.Sprintf("invalid repository %q", repository))
	}
	return nil
}

// String returns the target in its input form.
func (r *Reference) String() string {
	if !r.IsOCI {
		return r.LocalPath
	}
	return URIScheme + r.ImageReference()
}

// ImageReference returns registry/repository[:tag], or "" for local targets.
func (r *Reference) ImageReference() string {
	if !r.IsOCI {
		return ""
	}
	if r.Tag == "" {
		return fmt.Sprintf("%s/%s", r.Registry, r.Repository)
	}
	return fmt.Sprintf("%s/%s:%s", r.Registry, r.Repository, r.Tag)
}

// WithTag returns a copy with tag set. Local targets are returned unchanged.
func (r *Reference) WithTag(tag string) *Reference {
	if !r.IsOCI {
		return r
	}
	c := *r
	c.Tag = tag
	return &c
}

var tagPattern = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// SanitizeTag turns an arbitrary string such as a hostname into a valid tag.
func SanitizeTag(s string) string {
	t := tagPattern.ReplaceAllString(s, "-")
	t = strings.TrimLeft(t, ".-")
	if len(t) > 128 {
		t = t[:128]
	}
	if t == "" {
		return "latest"
	}
	return t
}
