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

//go:build linux

package system

import (
	"context"
	"log/slog"
	"os"

	"golang.org/x/sys/unix"

	"github.com/NVIDIA/hostdiag/pkg/collector/file"
)

func platformName(p *file.Parser) string {
	name, err := readOSRelease(p)
	if err != nil || name == "" {
		return "linux"
	}
	return name
}

func isElevated() bool {
	return os.Geteuid() == 0
}

func kernelRelease() (string, error) {
	var u unix.Utsname
	if err := unix.Uname(&u); err != nil {
		return "", err
	}
	return unix.ByteSliceToString(u.Release[:]), nil
}

func diskUsage(path string) (total, free uint64, err error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return 0, 0, err
	}
	bsize := uint64(st.Bsize) //nolint:gosec // block size is never negative
	return st.Blocks * bsize, st.Bfree * bsize, nil
}

func collectPlatform(ctx context.Context, p *file.Parser, info *Info) []string {
	var notes []string

	if k, err := kernelRelease(); err != nil {
		notes = append(notes, "kernel: "+err.Error())
	} else {
		info.Kernel = k
	}

	if model, physical, err := readCPU(p); err != nil {
		notes = append(notes, "cpu: "+err.Error())
	} else {
		info.CPU.Model = model
		info.CPU.PhysicalCores = physical
	}

	if mem, err := readMemTotal(p); err != nil {
		notes = append(notes, "memory: "+err.Error())
	} else {
		info.MemoryTotalBytes = mem
	}

	if bt, err := readBootTime(p); err != nil {
		notes = append(notes, "boot time: "+err.Error())
	} else {
		info.BootTime = formatBootTime(bt)
	}

	mounts, err := readMounts(p)
	if err != nil {
		notes = append(notes, "volumes: "+err.Error())
		return notes
	}

	for _, m := range mounts {
		if ctx.Err() != nil {
			notes = append(notes, "volumes: "+ctx.Err().Error())
			break
		}
		total, free, err := diskUsage(p.Path(m.point))
		if err != nil {
			slog.Debug("statfs failed", slog.String("mount", m.point), slog.String("error", err.Error()))
			notes = append(notes, "statfs "+m.point+": "+err.Error())
			continue
		}
		info.Volumes = append(info.Volumes, Volume{
			Mount:       m.point,
			Device:      m.device,
			FSType:      m.fsType,
			TotalBytes:  total,
			FreeBytes:   free,
			UsedPercent: usedPercent(total, free),
		})
	}

	return notes
}
