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

// Package progress delivers probe lifecycle events from the orchestrator to
// whoever is watching a run.
//
// Every Sink is safe for concurrent use. Events from different probes arrive
// in no particular order; consumers key on Event.Category.
//
//	ch := progress.NewChannel(16)
//	go func() {
//		for ev := range ch.Events() {
//			fmt.Println(ev)
//		}
//	}()
//	rep, err := orch.Run(ctx, cfg, ch)
//	ch.Close()
package progress
