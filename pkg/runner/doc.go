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

// Package runner executes external diagnostic tools and captures their output.
//
// Every invocation produces an Invocation record: command, arguments, exit
// code, stdout, stderr and elapsed time. Non-zero exit codes are data, not
// errors. Invocation.Err is set only when the process could not be started
// or was terminated because its context ended.
//
// Processes are started bound to the caller's context, so a probe timeout or
// run cancellation kills the child process.
//
//	r := runner.NewExec()
//	inv := r.Run(ctx, "/opt/tools/smartctl", "--scan-open")
//	if inv.Err != nil || inv.ExitCode != 0 {
//	    fmt.Println(inv.Log())
//	}
//
// Fake is a scripted Runner for tests.
package runner
