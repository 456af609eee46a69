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

//go:build !linux && !windows

package system

import (
	"context"
	"os"
	"runtime"

	"github.com/NVIDIA/hostdiag/pkg/collector/file"
)

func platformName(_ *file.Parser) string {
	return runtime.GOOS
}

func isElevated() bool {
	return os.Geteuid() == 0
}

func collectPlatform(_ context.Context, _ *file.Parser, _ *Info) []string {
	return []string{"kernel, cpu, memory and volume details are collected on linux and windows only"}
}
