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

package thermal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var sensorsInputKey = regexp.MustCompile(`^temp\d+_input$`)

type lhmDocument struct {
	Sensors []struct {
		Name     string `json:"Name"`
		Type     string `json:"Type"`
		Value    any    `json:"Value"`
		Hardware string `json:"Hardware"`
	} `json:"Sensors"`
}

// parseLHM reads LibreHardwareMonitorCLI --json output. It returns the
// readings, the names of dropped readings, and an error only when the
// document itself cannot be decoded.
func parseLHM(data []byte) ([]Reading, []string, error) {
	var doc lhmDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, nil, err
	}

	var readings []Reading
	var dropped []string
	for _, s := range doc.Sensors {
		if s.Type != "Temperature" {
			continue
		}
		v, ok := numeric(s.Value)
		if !ok {
			dropped = append(dropped, s.Name)
			continue
		}
		readings = append(readings, Reading{Name: s.Name, Hardware: s.Hardware, ValueC: v})
	}
	return readings, dropped, nil
}

// parseSensors reads lm-sensors "sensors -j" output:
//
//	{"coretemp-isa-0000": {"Adapter": "ISA adapter",
//	  "Core 0": {"temp2_input": 40.0, "temp2_max": 80.0}}}
func parseSensors(data []byte) ([]Reading, []string, error) {
	var chips map[string]map[string]json.RawMessage
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&chips); err != nil {
		return nil, nil, err
	}
	if chips == nil {
		return nil, nil, fmt.Errorf("empty document")
	}

	var readings []Reading
	var dropped []string
	for _, chip := range sortedKeys(chips) {
		features := chips[chip]
		for _, feature := range sortedKeys(features) {
			var values map[string]any
			if err := json.Unmarshal(features[feature], &values); err != nil {
				// scalar entries such as "Adapter"
				continue
			}
			for _, key := range sortedKeys(values) {
				if !sensorsInputKey.MatchString(key) {
					continue
				}
				if v, ok := numeric(values[key]); ok {
					readings = append(readings, Reading{Name: feature, Hardware: chip, ValueC: v})
				} else {
					dropped = append(dropped, chip+"/"+feature)
				}
			}
		}
	}
	return readings, dropped, nil
}

func numeric(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case string:
		s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(t), "°C"))
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
