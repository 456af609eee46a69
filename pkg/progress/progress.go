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

package progress

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/NVIDIA/hostdiag/pkg/probe"
)

// Kind identifies a lifecycle transition.
type Kind string

const (
	KindStarted  Kind = "started"
	KindFinished Kind = "finished"
	KindError    Kind = "error"
)

// Event is one probe lifecycle notification.
type Event struct {
	Kind     Kind           `json:"kind"`
	Category probe.Category `json:"category"`
	Status   probe.Status   `json:"status,omitempty"`
	Message  string         `json:"message,omitempty"`
	Elapsed  time.Duration  `json:"elapsed"`
	Time     time.Time      `json:"time"`
}

func (e Event) String() string {
	switch e.Kind {
	case KindStarted:
		return fmt.Sprintf("%s: started", e.Category)
	case KindError:
		return fmt.Sprintf("%s: error after %s: %s", e.Category, e.Elapsed.Round(time.Millisecond), e.Message)
	default:
		if e.Message != "" {
			return fmt.Sprintf("%s: %s in %s (%s)", e.Category, e.Status, e.Elapsed.Round(time.Millisecond), e.Message)
		}
		return fmt.Sprintf("%s: %s in %s", e.Category, e.Status, e.Elapsed.Round(time.Millisecond))
	}
}

// Started builds a started event.
func Started(c probe.Category) Event {
	return Event{Kind: KindStarted, Category: c, Time: time.Now()}
}

// Finished builds the terminal event for r. Failed results are reported as
// KindError so watchers can highlight them.
func Finished(r probe.Result, elapsed time.Duration) Event {
	kind := KindFinished
	if r.Status == probe.StatusFailed {
		kind = KindError
	}
	return Event{
		Kind:     kind,
		Category: r.Category,
		Status:   r.Status,
		Message:  r.Message,
		Elapsed:  elapsed,
		Time:     time.Now(),
	}
}

// Sink receives events. Implementations must be safe for concurrent use and
// must not block the caller for long.
type Sink interface {
	Emit(Event)
}

// Nop discards every event.
type Nop struct{}

func (Nop) Emit(Event) {}

// Func adapts a callback into a Sink. Calls are serialized.
type Func struct {
	mu sync.Mutex
	fn func(Event)
}

// NewFunc wraps fn.
func NewFunc(fn func(Event)) *Func {
	return &Func{fn: fn}
}

func (f *Func) Emit(e Event) {
	if f == nil || f.fn == nil {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fn(e)
}

// Log writes events to a structured logger.
type Log struct {
	Logger *slog.Logger
}

func (l Log) Emit(e Event) {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	attrs := []any{
		slog.String("category", e.Category.String()),
		slog.String("kind", string(e.Kind)),
	}
	if e.Kind != KindStarted {
		attrs = append(attrs,
			slog.String("status", string(e.Status)),
			slog.Duration("elapsed", e.Elapsed))
	}
	if e.Message != "" {
		attrs = append(attrs, slog.String("message", e.Message))
	}
	if e.Kind == KindError {
		logger.Warn("probe failed", attrs...)
		return
	}
	logger.Info("probe "+string(e.Kind), attrs...)
}

// Multi fans each event out to every sink in order.
type Multi []Sink

func (m Multi) Emit(e Event) {
	for _, s := range m {
		if s != nil {
			s.Emit(e)
		}
	}
}

// Channel is a buffered message-passing Sink. When the buffer is full events
// are dropped rather than stalling a probe. Emit after Close is a no-op.
type Channel struct {
	mu      sync.RWMutex
	ch      chan Event
	closed  bool
	dropped atomic.Int64
}

// NewChannel creates a Channel with the given buffer size.
func NewChannel(size int) *Channel {
	if size < 0 {
		size = 0
	}
	return &Channel{ch: make(chan Event, size)}
}

// Events returns the receive side. It is closed by Close.
func (c *Channel) Events() <-chan Event {
	return c.ch
}

func (c *Channel) Emit(e Event) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return
	}
	select {
	case c.ch <- e:
	default:
		c.dropped.Add(1)
	}
}

// Dropped returns the number of events discarded because the buffer was full.
func (c *Channel) Dropped() int {
	return int(c.dropped.Load())
}

// Close closes the event channel. It is safe to call more than once.
func (c *Channel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.ch)
}
