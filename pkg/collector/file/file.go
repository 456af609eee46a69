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

package file

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"
)

// Option configures a Parser.
type Option func(*Parser)

// Parser parses procfs-style text files with customizable settings.
type Parser struct {
	root            string
	delimiter       string
	maxSize         int
	skipComments    bool
	kvDelimiter     string
	vDefault        string
	vTrimChars      string
	skipEmptyValues bool
}

// WithRoot sets the directory every path is resolved against.
// Default is "/" (the host root).
func WithRoot(root string) Option {
	return func(p *Parser) {
		p.root = root
	}
}

// WithDelimiter sets the delimiter used to split entries in the file.
// Default is newline ("\n").
func WithDelimiter(delim string) Option {
	return func(p *Parser) {
		p.delimiter = delim
	}
}

// WithMaxSize sets the maximum size (in bytes) of the file to be parsed.
// Default is 1MB.
func WithMaxSize(size int) Option {
	return func(p *Parser) {
		p.maxSize = size
	}
}

// WithSkipComments sets whether to skip lines starting with '#'.
// Default is true.
func WithSkipComments(skip bool) Option {
	return func(p *Parser) {
		p.skipComments = skip
	}
}

// WithKVDelimiter sets the key-value delimiter used in GetMap.
// Default is "=".
func WithKVDelimiter(kvDelim string) Option {
	return func(p *Parser) {
		p.kvDelimiter = kvDelim
	}
}

// WithVDefault sets the value used when a line has no delimiter.
func WithVDefault(vDefault string) Option {
	return func(p *Parser) {
		p.vDefault = vDefault
	}
}

// WithVTrimChars sets characters to trim from values in GetMap.
func WithVTrimChars(trimChars string) Option {
	return func(p *Parser) {
		p.vTrimChars = trimChars
	}
}

// WithSkipEmptyValues drops map entries whose value is empty.
func WithSkipEmptyValues(skip bool) Option {
	return func(p *Parser) {
		p.skipEmptyValues = skip
	}
}

// NewParser creates a new file parser with the provided options.
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		root:         "/",
		delimiter:    "\n",
		maxSize:      1 << 20,
		skipComments: true,
		kvDelimiter:  "=",
	}

	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Root returns the configured root directory.
func (p *Parser) Root() string {
	return p.root
}

// Path resolves path against the parser root.
func (p *Parser) Path(path string) string {
	if p.root == "" || p.root == "/" {
		return path
	}
	return filepath.Join(p.root, path)
}

// Read returns the raw content of the file after size and UTF-8 checks.
func (p *Parser) Read(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("file path cannot be empty")
	}

	full := p.Path(path)
	b, err := os.ReadFile(full)
	if err != nil {
		return "", fmt.Errorf("failed to read file %q: %w", full, err)
	}

	if len(b) > p.maxSize {
		return "", fmt.Errorf("file %q exceeds maximum size of %d bytes", full, p.maxSize)
	}

	if !utf8.Valid(b) {
		return "", fmt.Errorf("content of file %q is not valid UTF-8", full)
	}

	return string(b), nil
}

// GetValue reads a single-value file (typical for sysfs attributes) and
// returns its trimmed content.
func (p *Parser) GetValue(path string) (string, error) {
	s, err := p.Read(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(s), nil
}

// GetLines reads the file and splits its content by the configured
// delimiter, dropping empty entries and, if enabled, comment lines.
func (p *Parser) GetLines(path string) ([]string, error) {
	s, err := p.Read(path)
	if err != nil {
		return nil, err
	}

	parts := strings.Split(s, p.delimiter)
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		clean := strings.TrimSpace(part)
		if clean == "" {
			continue
		}
		if p.skipComments && strings.HasPrefix(clean, "#") {
			continue
		}
		result = append(result, clean)
	}

	return result, nil
}

// GetFields reads the file and splits every line on whitespace.
func (p *Parser) GetFields(path string) ([][]string, error) {
	lines, err := p.GetLines(path)
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(lines))
	for _, line := range lines {
		rows = append(rows, strings.Fields(line))
	}
	return rows, nil
}

// GetMap reads the file and splits each line into a key/value pair on the
// configured delimiter. Lines without the delimiter get the default value.
func (p *Parser) GetMap(path string) (map[string]string, error) {
	lines, err := p.GetLines(path)
	if err != nil {
		return nil, err
	}

	result := make(map[string]string, len(lines))
	for _, line := range lines {
		kv := strings.SplitN(line, p.kvDelimiter, 2)
		key := strings.TrimSpace(kv[0])

		if len(kv) != 2 {
			if p.skipEmptyValues && p.vDefault == "" {
				continue
			}
			slog.Debug("line without value, using default",
				slog.String("key", key),
				slog.String("path", path))
			result[key] = p.vDefault
			continue
		}

		value := strings.TrimSpace(kv[1])
		if p.vTrimChars != "" {
			value = strings.Trim(value, p.vTrimChars)
		}
		if p.skipEmptyValues && value == "" {
			continue
		}
		result[key] = value
	}

	return result, nil
}

// ListDir returns the sorted entry names of a directory.
func (p *Parser) ListDir(path string) ([]string, error) {
	full := p.Path(path)
	entries, err := os.ReadDir(full)
	if err != nil {
		return nil, fmt.Errorf("failed to list directory %q: %w", full, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// ReadLink returns the base name of a symlink target, or "" when path is
// not a link. Used for sysfs driver bindings.
func (p *Parser) ReadLink(path string) (string, error) {
	target, err := os.Readlink(p.Path(path))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read link %q: %w", p.Path(path), err)
	}
	return filepath.Base(target), nil
}
