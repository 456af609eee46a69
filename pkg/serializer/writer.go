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
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	cnserrors "github.com/NVIDIA/hostdiag/pkg/errors"
)

// Format is an output encoding.
type Format string

const (
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatTable Format = "table"
)

const defaultValueKey = "value"

// IsUnknown reports whether f is not a supported format.
func (f Format) IsUnknown() bool {
	switch f {
	case FormatJSON, FormatYAML, FormatTable:
		return false
	default:
		return true
	}
}

// SupportedFormats lists the accepted format names.
func SupportedFormats() []string {
	return []string{string(FormatJSON), string(FormatYAML), string(FormatTable)}
}

// Writer encodes values in one format to an io.Writer.
type Writer struct {
	format Format
	output io.Writer
	closer io.Closer
}

// NewWriter creates a Writer. A nil output means stdout; an unknown format
// falls back to JSON.
func NewWriter(format Format, output io.Writer) *Writer {
	if output == nil {
		output = os.Stdout
	}
	if format.IsUnknown() {
		slog.Warn("unknown format, defaulting to JSON", "format", format)
		format = FormatJSON
	}
	return &Writer{format: format, output: output}
}

// NewStdoutWriter creates a Writer on stdout.
func NewStdoutWriter(format Format) *Writer {
	return NewWriter(format, os.Stdout)
}

// NewFileWriter creates a Writer that owns a newly created file. Close it when done.
func NewFileWriter(format Format, path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, cnserrors.Wrap(cnserrors.ErrCodeIO, fmt.Sprintf("failed to create %s", path), err)
	}
	w := NewWriter(format, f)
	w.closer = f
	return w, nil
}

// Close releases the underlying file, if any. It is safe to call repeatedly.
func (w *Writer) Close() error {
	if w.closer == nil {
		return nil
	}
	err := w.closer.Close()
	w.closer = nil
	return err
}

// Serialize writes v in the configured format.
func (w *Writer) Serialize(_ context.Context, v any) error {
	var (
		content []byte
		err     error
	)
	switch w.format {
	case FormatJSON:
		content, err = serializeJSON(v)
	case FormatYAML:
		content, err = serializeYAML(v)
	case FormatTable:
		content, err = serializeTable(v)
	default:
		return cnserrors.New(cnserrors.ErrCodeInvalidRequest, fmt.Sprintf("unsupported format: %s", w.format))
	}
	if err != nil {
		return err
	}
	if _, err := w.output.Write(content); err != nil {
		return cnserrors.Wrap(cnserrors.ErrCodeIO, "failed to write output", err)
	}
	return nil
}

func serializeJSON(v any) ([]byte, error) {
	content, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, cnserrors.Wrap(cnserrors.ErrCodeInternal, "failed to serialize to JSON", err)
	}
	return append(content, '\n'), nil
}

func serializeYAML(v any) ([]byte, error) {
	// Round trip through JSON so yaml keys follow the json tags.
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, cnserrors.Wrap(cnserrors.ErrCodeInternal, "failed to serialize to YAML", err)
	}
	var generic any
	if err := yaml.Unmarshal(raw, &generic); err != nil {
		return nil, cnserrors.Wrap(cnserrors.ErrCodeInternal, "failed to serialize to YAML", err)
	}
	var sb strings.Builder
	enc := yaml.NewEncoder(&sb)
	enc.SetIndent(2)
	if err := enc.Encode(generic); err != nil {
		return nil, cnserrors.Wrap(cnserrors.ErrCodeInternal, "failed to serialize to YAML", err)
	}
	if err := enc.Close(); err != nil {
		return nil, cnserrors.Wrap(cnserrors.ErrCodeInternal, "failed to serialize to YAML", err)
	}
	return []byte(sb.String()), nil
}

func serializeTable(v any) ([]byte, error) {
	flat := make(map[string]any)
	flattenValue(flat, reflect.ValueOf(v), "")
	if len(flat) == 0 {
		return []byte("<empty>\n"), nil
	}

	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FIELD\tVALUE")
	fmt.Fprintln(tw, "-----\t-----")
	for _, key := range keys {
		fmt.Fprintf(tw, "%s\t%v\n", key, flat[key])
	}
	if err := tw.Flush(); err != nil {
		return nil, cnserrors.Wrap(cnserrors.ErrCodeInternal, "failed to flush table", err)
	}
	return []byte(sb.String()), nil
}

// flattenValue collects leaf values keyed by dotted path. Struct fields use
// their json name and skip fields tagged "-".
func flattenValue(out map[string]any, val reflect.Value, prefix string) {
	if !val.IsValid() {
		return
	}

	for val.Kind() == reflect.Pointer || val.Kind() == reflect.Interface {
		if val.IsNil() {
			if prefix != "" {
				out[prefix] = nil
			}
			return
		}
		val = val.Elem()
	}

	//nolint:exhaustive // common kinds are handled explicitly, the rest are leaves
	switch val.Kind() {
	case reflect.Struct:
		typ := val.Type()
		for i := 0; i < val.NumField(); i++ {
			field := typ.Field(i)
			if !field.IsExported() {
				continue
			}
			name := field.Name
			if tag, _, _ := strings.Cut(field.Tag.Get("json"), ","); tag == "-" {
				continue
			} else if tag != "" {
				name = tag
			}
			flattenValue(out, val.Field(i), joinKey(prefix, name))
		}
	case reflect.Map:
		for _, mapKey := range val.MapKeys() {
			key := joinKey(prefix, fmt.Sprintf("%v", mapKey.Interface()))
			flattenValue(out, val.MapIndex(mapKey), key)
		}
	case reflect.Slice, reflect.Array:
		for i := 0; i < val.Len(); i++ {
			flattenValue(out, val.Index(i), fmt.Sprintf("%s[%d]", prefix, i))
		}
	default:
		if prefix == "" {
			prefix = defaultValueKey
		}
		out[prefix] = val.Interface()
	}
}

func joinKey(prefix, suffix string) string {
	if prefix == "" {
		return suffix
	}
	if suffix == "" {
		return prefix
	}
	return prefix + "." + suffix
}

// WriteFile writes data to path through a temporary file in the same
// directory, creating parent directories as needed.
func WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return cnserrors.Wrap(cnserrors.ErrCodeIO, fmt.Sprintf("failed to create %s", dir), err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return cnserrors.Wrap(cnserrors.ErrCodeIO, fmt.Sprintf("failed to create temp file in %s", dir), err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return cnserrors.Wrap(cnserrors.ErrCodeIO, fmt.Sprintf("failed to write %s", path), err)
	}
	if err := tmp.Close(); err != nil {
		return cnserrors.Wrap(cnserrors.ErrCodeIO, fmt.Sprintf("failed to write %s", path), err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return cnserrors.Wrap(cnserrors.ErrCodeIO, fmt.Sprintf("failed to chmod %s", path), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return cnserrors.Wrap(cnserrors.ErrCodeIO, fmt.Sprintf("failed to write %s", path), err)
	}
	return nil
}
