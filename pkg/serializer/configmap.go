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
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	accorev1 "k8s.io/client-go/applyconfigurations/core/v1"

	"github.com/NVIDIA/hostdiag/pkg/defaults"
	cnserrors "github.com/NVIDIA/hostdiag/pkg/errors"
	"github.com/NVIDIA/hostdiag/pkg/export"
	"github.com/NVIDIA/hostdiag/pkg/k8s/client"
)

// ConfigMapURIScheme prefixes ConfigMap destinations: cm://namespace/name.
const ConfigMapURIScheme = "cm://"

// FieldManager owns the fields written by server-side apply.
const FieldManager = "hostdiag"

// ConfigMapWriter stores artifacts in a Kubernetes ConfigMap, creating or
// updating it with server-side apply. Text artifacts go to data, anything else
// to binaryData, keyed by artifact name.
type ConfigMapWriter struct {
	namespace string
	name      string
	client    client.Interface
	now       func() time.Time
}

// ConfigMapOption configures a ConfigMapWriter.
type ConfigMapOption func(*ConfigMapWriter)

// WithKubeClient uses c instead of the shared client.
func WithKubeClient(c client.Interface) ConfigMapOption {
	return func(w *ConfigMapWriter) {
		w.client = c
	}
}

// NewConfigMapWriter writes to namespace/name.
func NewConfigMapWriter(namespace, name string, opts ...ConfigMapOption) *ConfigMapWriter {
	w := &ConfigMapWriter{namespace: namespace, name: name, now: time.Now}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Put applies a single artifact.
func (w *ConfigMapWriter) Put(ctx context.Context, a export.Artifact) error {
	return w.PutAll(ctx, a)
}

// PutAll applies all artifacts in one request. Keys written by an earlier
// apply and absent now are removed.
func (w *ConfigMapWriter) PutAll(ctx context.Context, artifacts ...export.Artifact) error {
	writeCtx, cancel := context.WithTimeout(ctx, defaults.ConfigMapWriteTimeout)
	defer cancel()

	cs := w.client
	if cs == nil {
		c, cfg, err := client.GetKubeClient()
		if err != nil {
			return cnserrors.Wrap(cnserrors.ErrCodeUnavailable, "failed to get kubernetes client", err)
		}
		slog.Info("configmap operation",
			"namespace", w.namespace,
			"name", w.name,
			"auth_method", client.AuthMethod(cfg))
		cs = c
	}

	data := map[string]string{}
	binary := map[string][]byte{}
	for _, a := range artifacts {
		if utf8.Valid(a.Data) {
			data[a.Name] = string(a.Data)
		} else {
			binary[a.Name] = a.Data
		}
	}

	cm := accorev1.ConfigMap(w.name, w.namespace).
		WithLabels(map[string]string{
			"app.kubernetes.io/name":      "hostdiag",
			"app.kubernetes.io/component": "report",
		}).
		WithAnnotations(map[string]string{
			"hostdiag.nvidia.com/updated": w.now().UTC().Format(time.RFC3339),
		})
	if len(data) > 0 {
		cm = cm.WithData(data)
	}
	if len(binary) > 0 {
		cm = cm.WithBinaryData(binary)
	}

	slog.Debug("applying ConfigMap",
		"namespace", w.namespace,
		"name", w.name,
		"keys", len(artifacts))

	if _, err := cs.CoreV1().ConfigMaps(w.namespace).Apply(writeCtx, cm, metav1.ApplyOptions{
		FieldManager: FieldManager,
		Force:        true,
	}); err != nil {
		return cnserrors.WrapWithContext(cnserrors.ErrCodeIO, "failed to apply ConfigMap", err,
			map[string]any{"namespace": w.namespace, "name": w.name})
	}
	return nil
}

// Close is a no-op.
func (w *ConfigMapWriter) Close() error {
	return nil
}

// parseConfigMapURI splits cm://namespace/name.
func parseConfigMapURI(uri string) (namespace, name string, err error) {
	if !strings.HasPrefix(uri, ConfigMapURIScheme) {
		return "", "", cnserrors.New(cnserrors.ErrCodeInvalidRequest,
			fmt.Sprintf("invalid ConfigMap URI: must start with %s", ConfigMapURIScheme))
	}

	parts := strings.SplitN(strings.TrimPrefix(uri, ConfigMapURIScheme), "/", 2)
	if len(parts) != 2 {
		return "", "", cnserrors.New(cnserrors.ErrCodeInvalidRequest,
			fmt.Sprintf("invalid ConfigMap URI format: expected %snamespace/name, got %s", ConfigMapURIScheme, uri))
	}

	namespace = strings.TrimSpace(parts[0])
	name = strings.TrimSpace(parts[1])
	if namespace == "" {
		return "", "", cnserrors.New(cnserrors.ErrCodeInvalidRequest, "invalid ConfigMap URI: namespace cannot be empty")
	}
	if name == "" {
		return "", "", cnserrors.New(cnserrors.ErrCodeInvalidRequest, "invalid ConfigMap URI: name cannot be empty")
	}
	return namespace, name, nil
}
