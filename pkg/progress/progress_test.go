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
	"bytes"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cnserrors "github.com/NVIDIA/hostdiag/pkg/errors"
	"github.com/NVIDIA/hostdiag/pkg/probe"
)

func TestFinished(t *testing.T) {
	ok := Finished(probe.OK(probe.System, nil), time.Second)
	assert.Equal(t, KindFinished, ok.Kind)
	assert.Equal(t, probe.StatusOK, ok.Status)
	assert.Equal(t, "system: ok in 1s", ok.String())

	failed := Finished(probe.Failed(probe.Storage, cnserrors.ErrCodeTimeout, "timeout"), 2*time.Second)
	assert.Equal(t, KindError, failed.Kind)
	assert.Equal(t, "storage: error after 2s: timeout", failed.String())

	assert.Equal(t, "thermal: started", Started(probe.Thermal).String())
}

func TestChannel(t *testing.T) {
	ch := NewChannel(2)
	ch.Emit(Started(probe.System))
	ch.Emit(Started(probe.Storage))
	ch.Emit(Started(probe.Network))
	assert.Equal(t, 1, ch.Dropped())

	ch.Close()
	ch.Close()
	ch.Emit(Started(probe.Thermal))

	var got []probe.Category
	for e := range ch.Events() {
		got = append(got, e.Category)
	}
	assert.Equal(t, []probe.Category{probe.System, probe.Storage}, got)
}

func TestChannel_Concurrent(t *testing.T) {
	ch := NewChannel(100)
	var wg sync.WaitGroup
	for _, c := range probe.Categories {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ch.Emit(Started(c))
		}()
	}
	wg.Wait()
	ch.Close()

	n := 0
	for range ch.Events() {
		n++
	}
	assert.Equal(t, len(probe.Categories), n)
}

func TestFunc_Serialized(t *testing.T) {
	var events []Event
	sink := NewFunc(func(e Event) { events = append(events, e) })

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sink.Emit(Started(probe.System))
		}()
	}
	wg.Wait()
	assert.Len(t, events, 50)

	var nilFunc *Func
	assert.NotPanics(t, func() { nilFunc.Emit(Started(probe.System)) })
}

func TestMulti(t *testing.T) {
	var a, b int
	m := Multi{NewFunc(func(Event) { a++ }), nil, NewFunc(func(Event) { b++ }), Nop{}}
	m.Emit(Started(probe.Drivers))
	assert.Equal(t, 1, a)
	assert.Equal(t, 1, b)
}

func TestLog(t *testing.T) {
	var buf bytes.Buffer
	sink := Log{Logger: slog.New(slog.NewTextHandler(&buf, nil))}

	sink.Emit(Started(probe.Network))
	sink.Emit(Finished(probe.Failed(probe.Network, cnserrors.ErrCodeOSQuery, "no interfaces"), time.Millisecond))

	out := buf.String()
	require.Contains(t, out, "probe started")
	assert.Contains(t, out, "category=network")
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "no interfaces")
}
