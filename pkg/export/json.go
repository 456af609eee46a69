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

package export

import (
	"bytes"
	"encoding/json"

	cnserrors "github.com/NVIDIA/hostdiag/pkg/errors"
	"github.com/NVIDIA/hostdiag/pkg/report"
)

// Options controls JSON rendering.
type Options struct {
	// Pretty indents the output by two spaces.
	Pretty bool
}

// JSON renders the canonical JSON form of the report.
func JSON(r *report.Report, opts Options) ([]byte, error) {
	if r == nil {
		return nil, cnserrors.New(cnserrors.ErrCodeInvalidRequest, "report is required")
	}

	raw, err := json.Marshal(r)
	if err != nil {
		return nil, cnserrors.Wrap(cnserrors.ErrCodeInternal, "failed to encode report", err)
	}
	return canonical(raw, opts.Pretty)
}

// canonical re-encodes a JSON document through a generic value so object
// keys come out sorted and numbers keep their text.
func canonical(raw []byte, pretty bool) ([]byte, error) {
	v, err := decodeGeneric(raw)
	if err != nil {
		return nil, cnserrors.Wrap(cnserrors.ErrCodeInternal, "failed to normalize report", err)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return nil, cnserrors.Wrap(cnserrors.ErrCodeInternal, "failed to encode report", err)
	}
	return buf.Bytes(), nil
}

func decodeGeneric(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// ParseJSON reads a report previously rendered by JSON. Payloads come back
// as generic values. Raw logs are not part of the document and are empty.
func ParseJSON(data []byte) (*report.Report, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var r report.Report
	if err := dec.Decode(&r); err != nil {
		return nil, cnserrors.Wrap(cnserrors.ErrCodeParse, "failed to parse report", err)
	}
	if err := r.Validate(); err != nil {
		return nil, cnserrors.Wrap(cnserrors.ErrCodeParse, "invalid report", err)
	}
	return &r, nil
}
