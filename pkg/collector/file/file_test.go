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
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFixture(t *testing.T, root, path, content string) {
	t.Helper()
	full := filepath.Join(root, path)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o600))
}

func TestNewParser(t *testing.T) {
	tests := []struct {
		name     string
		opts     []Option
		validate func(*testing.T, *Parser)
	}{
		{
			name: "defaults",
			validate: func(t *testing.T, p *Parser) {
				assert.Equal(t, "/", p.root)
				assert.Equal(t, "\n", p.delimiter)
				assert.Equal(t, 1<<20, p.maxSize)
				assert.True(t, p.skipComments)
				assert.Equal(t, "=", p.kvDelimiter)
			},
		},
		{
			name: "all options",
			opts: []Option{
				WithRoot("/tmp/fake"),
				WithDelimiter(";"),
				WithMaxSize(64),
				WithSkipComments(false),
				WithKVDelimiter(":"),
				WithVDefault("n/a"),
				WithVTrimChars(`"`),
				WithSkipEmptyValues(true),
			},
			validate: func(t *testing.T, p *Parser) {
				assert.Equal(t, "/tmp/fake", p.Root())
				assert.Equal(t, ";", p.delimiter)
				assert.Equal(t, 64, p.maxSize)
				assert.False(t, p.skipComments)
				assert.Equal(t, ":", p.kvDelimiter)
				assert.Equal(t, "n/a", p.vDefault)
				assert.Equal(t, `"`, p.vTrimChars)
				assert.True(t, p.skipEmptyValues)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.validate(t, NewParser(tt.opts...))
		})
	}
}

func TestParser_Path(t *testing.T) {
	assert.Equal(t, "/proc/modules", NewParser().Path("/proc/modules"))
	assert.Equal(t, filepath.Join("/fixture", "proc/modules"), NewParser(WithRoot("/fixture")).Path("/proc/modules"))
}

func TestParser_GetLines(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "/etc/sample", "# comment\nfirst\n\n  second  \n")

	lines, err := NewParser(WithRoot(root)).GetLines("/etc/sample")
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, lines)

	lines, err = NewParser(WithRoot(root), WithSkipComments(false)).GetLines("/etc/sample")
	require.NoError(t, err)
	assert.Equal(t, []string{"# comment", "first", "second"}, lines)
}

func TestParser_GetFields(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "/proc/modules",
		"nvidia 56823808 0 - Live 0x0000000000000000 (POE)\nloop 32768 2 - Live 0x0000000000000000\n")

	rows, err := NewParser(WithRoot(root)).GetFields("/proc/modules")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "nvidia", rows[0][0])
	assert.Equal(t, "56823808", rows[0][1])
	assert.Equal(t, "Live", rows[1][4])
}

func TestParser_GetMap(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "/proc/meminfo", "MemTotal:       16314488 kB\nMemFree:         1234 kB\nflag\nEmpty:\n")

	m, err := NewParser(WithRoot(root), WithKVDelimiter(":")).GetMap("/proc/meminfo")
	require.NoError(t, err)
	assert.Equal(t, "16314488 kB", m["MemTotal"])
	assert.Equal(t, "", m["flag"])
	assert.Contains(t, m, "Empty")

	m, err = NewParser(WithRoot(root), WithKVDelimiter(":"), WithSkipEmptyValues(true)).GetMap("/proc/meminfo")
	require.NoError(t, err)
	assert.NotContains(t, m, "flag")
	assert.NotContains(t, m, "Empty")
}

func TestParser_GetMap_Trim(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "/etc/os-release", "ID=\"ubuntu\"\nVERSION_ID=\"24.04\"\n")

	m, err := NewParser(WithRoot(root), WithVTrimChars(`"`)).GetMap("/etc/os-release")
	require.NoError(t, err)
	assert.Equal(t, "ubuntu", m["ID"])
	assert.Equal(t, "24.04", m["VERSION_ID"])
}

func TestParser_GetValue(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "/sys/bus/pci/devices/0000:00:02.0/vendor", "0x8086\n")

	v, err := NewParser(WithRoot(root)).GetValue("/sys/bus/pci/devices/0000:00:02.0/vendor")
	require.NoError(t, err)
	assert.Equal(t, "0x8086", v)
}

func TestParser_Errors(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "/big", strings.Repeat("a", 32))
	writeFixture(t, root, "/binary", string([]byte{0xff, 0xfe, 0xfd}))

	p := NewParser(WithRoot(root), WithMaxSize(16))

	_, err := p.GetLines("")
	assert.Error(t, err)

	_, err = p.GetLines("/missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = p.GetLines("/big")
	assert.ErrorContains(t, err, "exceeds maximum size")

	_, err = p.GetLines("/binary")
	assert.ErrorContains(t, err, "not valid UTF-8")
}

func TestParser_ListDirAndReadLink(t *testing.T) {
	root := t.TempDir()
	base := "/sys/bus/pci/devices"
	writeFixture(t, root, base+"/0000:01:00.0/vendor", "0x10de")
	writeFixture(t, root, base+"/0000:00:02.0/vendor", "0x8086")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "/sys/bus/pci/drivers/i915"), 0o755))
	require.NoError(t, os.Symlink(
		filepath.Join(root, "/sys/bus/pci/drivers/i915"),
		filepath.Join(root, base, "0000:00:02.0", "driver")))

	p := NewParser(WithRoot(root))

	names, err := p.ListDir(base)
	require.NoError(t, err)
	assert.Equal(t, []string{"0000:00:02.0", "0000:01:00.0"}, names)

	drv, err := p.ReadLink(base + "/0000:00:02.0/driver")
	require.NoError(t, err)
	assert.Equal(t, "i915", drv)

	drv, err = p.ReadLink(base + "/0000:01:00.0/driver")
	require.NoError(t, err)
	assert.Empty(t, drv)

	_, err = p.ListDir("/nope")
	assert.ErrorIs(t, err, os.ErrNotExist)
}
