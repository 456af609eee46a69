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
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"

	cnserrors "github.com/NVIDIA/hostdiag/pkg/errors"
	"github.com/NVIDIA/hostdiag/pkg/export"
)

type toolRow struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
	Path      string `json:"path,omitempty"`
	Secret    string `json:"-"`
}

func TestWriter_Formats(t *testing.T) {
	rows := []toolRow{{Name: "smartctl", Available: true, Path: "/kit/smartctl", Secret: "x"}}

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewWriter(FormatJSON, &buf).Serialize(context.Background(), rows))
		var got []map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, "smartctl", got[0]["name"])
		assert.NotContains(t, buf.String(), "Secret")
	})

	t.Run("yaml uses json names", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewWriter(FormatYAML, &buf).Serialize(context.Background(), rows))
		var got []map[string]any
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, true, got[0]["available"])
		assert.Contains(t, buf.String(), "path: /kit/smartctl")
	})

	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewWriter(FormatTable, &buf).Serialize(context.Background(), rows))
		out := buf.String()
		assert.Contains(t, out, "FIELD")
		assert.Contains(t, out, "[0].name")
		assert.Contains(t, out, "smartctl")
		assert.NotContains(t, out, "Secret")
	})

	t.Run("empty table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewWriter(FormatTable, &buf).Serialize(context.Background(), map[string]string{}))
		assert.Equal(t, "<empty>\n", buf.String())
	})

	t.Run("unknown format falls back to json", func(t *testing.T) {
		w := NewWriter(Format("xml"), &bytes.Buffer{})
		assert.Equal(t, FormatJSON, w.format)
	})
}

func TestFormat_IsUnknown(t *testing.T) {
	for _, f := range SupportedFormats() {
		assert.False(t, Format(f).IsUnknown(), f)
	}
	assert.True(t, Format("csv").IsUnknown())
}

func TestNewFileWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tools.json")
	w, err := NewFileWriter(FormatJSON, path)
	require.NoError(t, err)
	require.NoError(t, w.Serialize(context.Background(), map[string]int{"a": 1}))
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(b))

	_, err = NewFileWriter(FormatJSON, filepath.Join(t.TempDir(), "missing", "dir", "x.json"))
	assert.True(t, cnserrors.IsCode(err, cnserrors.ErrCodeIO))
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "report.json")
	require.NoError(t, WriteFile(path, []byte("one")))
	require.NoError(t, WriteFile(path, []byte("two")))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "two", string(b))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files are cleaned up")
}

func TestNewDestination(t *testing.T) {
	tests := []struct {
		uri     string
		want    any
		wantErr bool
	}{
		{uri: "", want: &StreamDestination{}},
		{uri: "-", want: &StreamDestination{}},
		{uri: "cm://diag/bench", want: &ConfigMapWriter{}},
		{uri: "cm://diag", wantErr: true},
		{uri: "/tmp/report.json", want: &FileDestination{}},
	}
	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			d, err := NewDestination(tt.uri)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, cnserrors.IsCode(err, cnserrors.ErrCodeInvalidRequest))
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, d)
		})
	}
}

func TestStreamDestination(t *testing.T) {
	var buf bytes.Buffer
	d := NewStreamDestination(&buf)
	require.NoError(t, d.Put(context.Background(), export.Artifact{Name: "report.json", Data: []byte("{}\n")}))
	assert.Equal(t, "{}\n", buf.String())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := d.Put(ctx, export.Artifact{Name: "report.json"})
	assert.True(t, cnserrors.IsCode(err, cnserrors.ErrCodeCancelled))
}

func TestFileDestination(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.html")
	d := NewFileDestination(path)
	assert.Equal(t, path, d.Path())
	require.NoError(t, d.Put(context.Background(), export.Artifact{Name: "report.html", Data: []byte("<html>")}))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "<html>", string(b))
}

func TestWriteDir(t *testing.T) {
	dir := t.TempDir()
	paths, err := WriteDir(context.Background(), dir, []export.Artifact{
		{Name: "report.json", Data: []byte("{}")},
		{Name: "bundle.zip", Data: []byte{0x50, 0x4b}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "report.json"), filepath.Join(dir, "bundle.zip")}, paths)

	_, err = WriteDir(context.Background(), dir, []export.Artifact{{Name: "../escape"}})
	assert.True(t, cnserrors.IsCode(err, cnserrors.ErrCodeInvalidRequest))
}

func TestParseConfigMapURI(t *testing.T) {
	tests := []struct {
		name          string
		uri           string
		wantNamespace string
		wantName      string
		wantErr       bool
	}{
		{name: "valid URI", uri: "cm://diag/bench-01", wantNamespace: "diag", wantName: "bench-01"},
		{name: "valid URI with spaces", uri: "cm://diag / bench-01 ", wantNamespace: "diag", wantName: "bench-01"},
		{name: "missing scheme", uri: "diag/bench-01", wantErr: true},
		{name: "wrong scheme", uri: "http://diag/bench-01", wantErr: true},
		{name: "missing name", uri: "cm://diag/", wantErr: true},
		{name: "missing namespace", uri: "cm:///bench-01", wantErr: true},
		{name: "missing separator", uri: "cm://diag", wantErr: true},
		{name: "empty URI", uri: "", wantErr: true},
		{name: "only scheme", uri: "cm://", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ns, name, err := parseConfigMapURI(tt.uri)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantNamespace, ns)
			assert.Equal(t, tt.wantName, name)
		})
	}
}

func TestConfigMapWriter_PutAll(t *testing.T) {
	cs := fake.NewClientset()
	w := NewConfigMapWriter("diag", "bench-01", WithKubeClient(cs))

	err := w.PutAll(context.Background(),
		export.Artifact{Name: "report.json", Data: []byte(`{"schemaVersion":"1.0"}`)},
		export.Artifact{Name: "bundle.zip", Data: []byte{0x50, 0x4b, 0x03, 0x04, 0xff, 0xfe}},
	)
	require.NoError(t, err)

	cm, err := cs.CoreV1().ConfigMaps("diag").Get(context.Background(), "bench-01", metav1.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, `{"schemaVersion":"1.0"}`, cm.Data["report.json"])
	assert.Equal(t, []byte{0x50, 0x4b, 0x03, 0x04, 0xff, 0xfe}, cm.BinaryData["bundle.zip"])
	assert.Equal(t, "hostdiag", cm.Labels["app.kubernetes.io/name"])
	assert.NoError(t, w.Close())
}

func TestRespondJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondJSON(rec, http.StatusAccepted, map[string]string{"status": "ok"})
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	RespondJSON(rec, http.StatusOK, map[string]any{"bad": make(chan int)})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRespondArtifact(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondArtifact(rec, export.Artifact{Name: "bundle.zip", MediaType: export.MediaTypeZIP, Data: []byte("PK")})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, export.MediaTypeZIP, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "bundle.zip")
	assert.Equal(t, "PK", rec.Body.String())

	rec = httptest.NewRecorder()
	RespondArtifact(rec, export.Artifact{Name: "report.html", MediaType: export.MediaTypeHTML, Data: []byte("<html>")})
	assert.Empty(t, rec.Header().Get("Content-Disposition"))
}
