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

package runner

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	cnserrors "github.com/NVIDIA/hostdiag/pkg/errors"
)

// Response is the scripted outcome of a fake invocation.
type Response struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Err      error
	// Delay blocks the call until it elapses or the context ends.
	Delay time.Duration
}

// Fake is a scripted Runner. Responses are keyed by the full command line
// ("cmd arg1 arg2"). Unscripted commands behave like a missing executable.
// Safe for concurrent use.
type Fake struct {
	mu        sync.Mutex
	responses map[string]Response
	calls     []string
}

// NewFake returns an empty scripted runner.
func NewFake() *Fake {
	return &Fake{responses: make(map[string]Response)}
}

// On scripts the response for a command line and returns the fake for chaining.
func (f *Fake) On(commandLine string, resp Response) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[commandLine] = resp
	return f
}

// Calls returns the command lines seen so far in call order.
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// Run returns the scripted response for name and args.
func (f *Fake) Run(ctx context.Context, name string, args ...string) Invocation {
	inv := Invocation{Command: name, Args: append([]string(nil), args...)}
	key := inv.CommandLine()

	f.mu.Lock()
	f.calls = append(f.calls, key)
	resp, ok := f.responses[key]
	f.mu.Unlock()

	start := time.Now()

	if !ok {
		inv.ExitCode = -1
		inv.Err = cnserrors.New(cnserrors.ErrCodeToolUnavailable,
			fmt.Sprintf("executable %q not found", strings.TrimSpace(name)))
		inv.Duration = time.Since(start)
		return inv
	}

	if resp.Delay > 0 {
		timer := time.NewTimer(resp.Delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			inv.ExitCode, inv.Err = classify(ctx, name, ctx.Err())
			inv.Duration = time.Since(start)
			return inv
		}
	}

	inv.Stdout = resp.Stdout
	inv.Stderr = resp.Stderr
	inv.ExitCode = resp.ExitCode
	inv.Err = resp.Err
	inv.Duration = time.Since(start)
	return inv
}
