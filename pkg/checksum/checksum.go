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

package checksum

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	cnserrors "github.com/NVIDIA/hostdiag/pkg/errors"
)

// ChecksumFileName is the manifest name inside a bundle directory.
const ChecksumFileName = "checksums.txt"

// Sum returns the hex SHA256 of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// GenerateChecksums writes the manifest for files into bundleDir. Paths are
// recorded relative to bundleDir.
func GenerateChecksums(ctx context.Context, bundleDir string, files []string) error {
	if err := ctx.Err(); err != nil {
		return cnserrors.Wrap(cnserrors.ErrCodeCancelled, "checksum generation cancelled", err)
	}

	lines := make([]string, 0, len(files))
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return cnserrors.Wrap(cnserrors.ErrCodeIO, fmt.Sprintf("failed to read %s for checksum", file), err)
		}
		rel, err := filepath.Rel(bundleDir, file)
		if err != nil {
			rel = file
		}
		lines = append(lines, fmt.Sprintf("%s  %s", Sum(data), filepath.ToSlash(rel)))
	}

	path := GetChecksumFilePath(bundleDir)
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600); err != nil {
		return cnserrors.Wrap(cnserrors.ErrCodeIO, "failed to write checksums", err)
	}

	slog.Debug("checksums generated", "file_count", len(lines), "path", path)
	return nil
}

// GetChecksumFilePath returns the manifest path in bundleDir.
func GetChecksumFilePath(bundleDir string) string {
	return filepath.Join(bundleDir, ChecksumFileName)
}

// Verify checks every file listed in the bundleDir manifest.
func Verify(bundleDir string) error {
	manifest, err := os.ReadFile(GetChecksumFilePath(bundleDir))
	if err != nil {
		return cnserrors.Wrap(cnserrors.ErrCodeIO, "failed to read checksums", err)
	}

	sc := bufio.NewScanner(bytes.NewReader(manifest))
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		want, rel, ok := strings.Cut(line, "  ")
		if !ok || len(want) != sha256.Size*2 {
			return cnserrors.New(cnserrors.ErrCodeParse, fmt.Sprintf("malformed checksum line %d", n))
		}
		data, err := os.ReadFile(filepath.Join(bundleDir, filepath.FromSlash(rel)))
		if err != nil {
			return cnserrors.Wrap(cnserrors.ErrCodeIO, fmt.Sprintf("failed to read %s", rel), err)
		}
		if got := Sum(data); got != want {
			return cnserrors.NewWithContext(cnserrors.ErrCodeInvalidRequest, fmt.Sprintf("checksum mismatch for %s", rel),
				map[string]any{"want": want, "got": got})
		}
	}
	if err := sc.Err(); err != nil {
		return cnserrors.Wrap(cnserrors.ErrCodeIO, "failed to scan checksums", err)
	}
	return nil
}
