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

package cli

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// dotEnvName is the environment file looked up at startup.
const dotEnvName = ".env"

// dotEnvCandidates returns the .env next to the executable, then the one in
// the working directory.
func dotEnvCandidates() []string {
	var out []string
	if exe, err := os.Executable(); err == nil {
		out = append(out, filepath.Join(filepath.Dir(exe), dotEnvName))
	}
	return append(out, dotEnvName)
}

// loadDotEnv loads every existing file in order and returns the loaded
// paths. Variables already present in the environment are never replaced, so
// the first file to define a variable wins.
func loadDotEnv(paths ...string) []string {
	seen := make(map[string]bool, len(paths))
	var loaded []string
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil || seen[abs] {
			continue
		}
		seen[abs] = true
		if info, err := os.Stat(abs); err != nil || !info.Mode().IsRegular() {
			continue
		}
		if err := godotenv.Load(abs); err != nil {
			continue
		}
		loaded = append(loaded, abs)
	}
	return loaded
}
