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

package serializer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	cnserrors "github.com/NVIDIA/hostdiag/pkg/errors"
	"github.com/NVIDIA/hostdiag/pkg/export"
)

// StdoutURI selects standard output as a destination.
const StdoutURI = "-"

// NewDestination selects a destination from a URI. See the package
// documentation for the accepted forms.
func NewDestination(uri string) (Destination, error) {
	trimmed := strings.TrimSpace(uri)
	switch {
	case trimmed == "" || trimmed == StdoutURI:
		return NewStreamDestination(os.Stdout), nil
	case strings.HasPrefix(trimmed, ConfigMapURIScheme):
		namespace, name, err := parseConfigMapURI(trimmed)
		if err != nil {
			return nil, err
		}
		return NewConfigMapWriter(namespace, name), nil
	default:
		return NewFileDestination(trimmed), nil
	}
}

// StreamDestination writes artifact bytes to a stream.
type StreamDestination struct {
	out io.Writer
}

// NewStreamDestination writes to out.
func NewStreamDestination(out io.Writer) *StreamDestination {
	return &StreamDestination{out: out}
}

// Put writes the artifact data verbatim.
func (d *StreamDestination) Put(ctx context.Context, a export.Artifact) error {
	if err := ctx.Err(); err != nil {
		return cnserrors.Wrap(cnserrors.ErrCodeCancelled, "write cancelled", err)
	}
	if _, err := d.out.Write(a.Data); err != nil {
		return cnserrors.Wrap(cnserrors.ErrCodeIO, fmt.Sprintf("failed to write %s", a.Name), err)
	}
	return nil
}

// FileDestination writes every artifact to one file path.
type FileDestination struct {
	path string
}

// NewFileDestination writes to path.
func NewFileDestination(path string) *FileDestination {
	return &FileDestination{path: path}
}

// Path returns the target file.
func (d *FileDestination) Path() string { return d.path }

// Put replaces the file with the artifact data.
func (d *FileDestination) Put(ctx context.Context, a export.Artifact) error {
	if err := ctx.Err(); err != nil {
		return cnserrors.Wrap(cnserrors.ErrCodeCancelled, "write cancelled", err)
	}
	return WriteFile(d.path, a.Data)
}

// WriteDir writes each artifact under dir by name and returns the written
// paths in artifact order.
func WriteDir(ctx context.Context, dir string, artifacts []export.Artifact) ([]string, error) {
	paths := make([]string, 0, len(artifacts))
	for _, a := range artifacts {
		if err := ctx.Err(); err != nil {
			return nil, cnserrors.Wrap(cnserrors.ErrCodeCancelled, "write cancelled", err)
		}
		if a.Name == "" || filepath.Base(a.Name) != a.Name {
			return nil, cnserrors.New(cnserrors.ErrCodeInvalidRequest, fmt.Sprintf("invalid artifact name %q", a.Name))
		}
		p := filepath.Join(dir, a.Name)
		if err := WriteFile(p, a.Data); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}
