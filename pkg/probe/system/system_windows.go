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

//go:build windows

package system

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"

	"github.com/NVIDIA/hostdiag/pkg/collector/file"
)

const regKeyCPU = `HARDWARE\DESCRIPTION\System\CentralProcessor\0`

func platformName(_ *file.Parser) string {
	v := windows.RtlGetVersion()
	return fmt.Sprintf("Windows %d.%d build %d", v.MajorVersion, v.MinorVersion, v.BuildNumber)
}

func isElevated() bool {
	return windows.GetCurrentProcessToken().IsElevated()
}

func cpuModel() (string, error) {
	k, err := registry.OpenKey(registry.LOCAL_MACHINE, regKeyCPU, registry.QUERY_VALUE)
	if err != nil {
		return "", err
	}
	defer k.Close()

	v, _, err := k.GetStringValue("ProcessorNameString")
	return v, err
}

func collectPlatform(ctx context.Context, _ *file.Parser, info *Info) []string {
	var notes []string

	v := windows.RtlGetVersion()
	info.Kernel = fmt.Sprintf("%d.%d.%d", v.MajorVersion, v.MinorVersion, v.BuildNumber)

	if model, err := cpuModel(); err != nil {
		notes = append(notes, "cpu: "+err.Error())
	} else {
		info.CPU.Model = model
	}

	drives, err := windows.GetLogicalDrives()
	if err != nil {
		notes = append(notes, "volumes: "+err.Error())
		return notes
	}

	for i := 0; i < 26; i++ {
		if drives&(1<<uint(i)) == 0 {
			continue
		}
		if ctx.Err() != nil {
			notes = append(notes, "volumes: "+ctx.Err().Error())
			break
		}
		root := string(rune('A'+i)) + `:\`
		ptr, err := windows.UTF16PtrFromString(root)
		if err != nil {
			continue
		}
		if windows.GetDriveType(ptr) != windows.DRIVE_FIXED {
			continue
		}

		var avail, total, free uint64
		if err := windows.GetDiskFreeSpaceEx(ptr, &avail, &total, &free); err != nil {
			slog.Debug("disk query failed", slog.String("drive", root), slog.String("error", err.Error()))
			notes = append(notes, "drive "+root+": "+err.Error())
			continue
		}
		info.Volumes = append(info.Volumes, Volume{
			Mount:       root,
			TotalBytes:  total,
			FreeBytes:   free,
			UsedPercent: usedPercent(total, free),
		})
	}

	return notes
}
