/*
 * Copyright 2026 Joshua Jones <joshua.jones.software@gmail.com>
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *      www.apache.org
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package chip8

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// assemble packs instruction words into a big-endian program image.
func assemble(words ...uint16) []byte {
	b := make([]byte, 0, len(words)*2)
	for _, w := range words {
		b = append(b, byte(w>>8), byte(w))
	}
	return b
}

func newTestProcessor(t *testing.T, words ...uint16) *Processor {
	t.Helper()

	p := NewProcessor(discard)
	p.Seed(1, 2)
	require.NoError(t, p.LoadBytes(assemble(words...)))
	return p
}

// step fetches and executes the next instruction, failing the test on error.
func step(t *testing.T, p *Processor) Signal {
	t.Helper()

	_, op, err := p.Fetch()
	require.NoError(t, err)
	sig, err := p.Execute(op)
	require.NoError(t, err)
	return sig
}

// fakeClock advances by a fixed step every time it is read.
type fakeClock struct {
	now  time.Time
	step time.Duration
}

func newFakeClock(step time.Duration) *fakeClock {
	return &fakeClock{now: time.Unix(0, 0), step: step}
}

func (c *fakeClock) Now() time.Time {
	now := c.now
	c.now = c.now.Add(c.step)
	return now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

// fakeHost records everything the machine asks of it.
type fakeHost struct {
	frames  []Framebuffer
	pressed [KeyCount]bool
	events  []Event
	starts  int
	stops   int
}

func (h *fakeHost) Present(fb Framebuffer) {
	h.frames = append(h.frames, fb)
}

func (h *fakeHost) StartTone() {
	h.starts++
}

func (h *fakeHost) StopTone() {
	h.stops++
}

func (h *fakeHost) Pressed(key uint8) bool {
	return h.pressed[key&0xF]
}

func (h *fakeHost) Poll() (Event, bool) {
	if len(h.events) == 0 {
		return Event{}, false
	}
	ev := h.events[0]
	h.events = h.events[1:]
	return ev, true
}

func (h *fakeHost) push(events ...Event) {
	h.events = append(h.events, events...)
}

func newTestMachine(t *testing.T, clock *fakeClock, words ...uint16) (*Machine, *fakeHost) {
	t.Helper()

	host := &fakeHost{}
	m := NewMachine(newTestProcessor(t, words...), host,
		WithClock(clock.Now),
		WithClockRate(0),
		WithLogger(discard),
	)
	return m, host
}
