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
	"context"
	"log/slog"
	"time"
)

// ClockRate is the default pause between instruction cycles (700hz).
const ClockRate time.Duration = time.Second / 700

// pollInterval paces the loops that only wait on the host.
const pollInterval = time.Millisecond

type EventKind uint8

const (
	KeyDown EventKind = iota + 1
	KeyUp
	Quit
	Confirm
)

// Event is a host input event. Key is a logical keypad index 0x0-0xF and is
// only meaningful for KeyDown and KeyUp.
type Event struct {
	Kind EventKind
	Key  uint8
}

// Display presents a copy of the framebuffer.
type Display interface {
	Present(fb Framebuffer)
}

// Speaker starts and stops the tone tied to the sound timer.
type Speaker interface {
	StartTone()
	StopTone()
}

// Input reports keypad state in logical key indices.
type Input interface {
	// Pressed reports whether the key is currently held down.
	Pressed(key uint8) bool
	// Poll returns the next pending event without blocking.
	Poll() (Event, bool)
}

// Host is everything the execution loop needs from the outside world.
type Host interface {
	Display
	Speaker
	Input
}

type Mode uint8

const (
	Running Mode = iota
	AwaitingKey
	Halted
)

func (m Mode) String() string {
	switch m {
	case Running:
		return "running"
	case AwaitingKey:
		return "awaiting key"
	case Halted:
		return "halted"
	}
	return "unknown"
}

type Option func(*Machine)

// WithClock replaces the wall clock used for timer decay.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) {
		m.now = now
	}
}

// WithClockRate sets the pause between cycles of Run. Zero runs unpaced.
func WithClockRate(d time.Duration) Option {
	return func(m *Machine) {
		m.rate = d
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(m *Machine) {
		m.log = logger
	}
}

// Machine is the execution loop. It owns the processor for the duration of
// a run and is the only thing that talks to the host.
type Machine struct {
	cpu    *Processor
	host   Host
	mode   Mode
	target uint8
	toning bool
	quit   bool

	// pending is the last key that went down in the events drained at the
	// top of the current cycle.
	pending    uint8
	hasPending bool

	now  func() time.Time
	rate time.Duration
	log  *slog.Logger
}

func NewMachine(cpu *Processor, host Host, opts ...Option) *Machine {
	m := &Machine{
		cpu:  cpu,
		host: host,
		now:  time.Now,
		rate: ClockRate,
		log:  slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}

	// Timers set before the machine was built decay from here.
	start := m.now()
	cpu.StartTimer(TimerDelay, start)
	cpu.StartTimer(TimerSound, start)
	return m
}

func (m *Machine) Mode() Mode {
	return m.mode
}

// QuitByHost reports whether the machine halted because the host asked it to.
func (m *Machine) QuitByHost() bool {
	return m.quit
}

func (m *Machine) Processor() *Processor {
	return m.cpu
}

// Run cycles until the program halts, the host asks to quit or ctx is done.
// Cancellation is cooperative: it is noticed between instructions.
func (m *Machine) Run(ctx context.Context) error {
	var tick <-chan time.Time
	if m.rate > 0 {
		ticker := time.NewTicker(m.rate)
		defer ticker.Stop()
		tick = ticker.C
	}

	for m.mode != Halted {
		if err := m.Step(ctx); err != nil {
			return err
		}

		if tick != nil {
			select {
			case <-ctx.Done():
			case <-tick:
			}
		}
	}
	return nil
}

// Step runs one cycle: quit handling, one instruction (or one look at the
// keypad while awaiting a key), then timer decay. A cancelled ctx halts the
// machine like a quit request.
func (m *Machine) Step(ctx context.Context) error {
	if m.mode == Halted {
		return nil
	}

	if ctx.Err() != nil {
		m.halt("cancelled")
		return nil
	}

	switch m.mode {
	case Running:
		if m.quitRequested() {
			m.quit = true
			m.halt("quit")
			break
		}
		if err := m.execute(); err != nil {
			m.halt("fault")
			return err
		}
	case AwaitingKey:
		m.awaitKey()
	}

	m.updateTimers()
	return nil
}

// Finish drains the sound timer in real time and then waits for the host to
// confirm or quit. It is meant for interactive front-ends after Run returns.
func (m *Machine) Finish(ctx context.Context) error {
	for m.cpu.SoundTimer() > 0 {
		if m.cpu.UpdateTimers(m.now()) {
			break
		}
		if err := sleep(ctx, pollInterval); err != nil {
			m.stopTone()
			return err
		}
	}
	m.stopTone()

	m.log.Info("execution finished, press space to leave")

	for {
		for ev, ok := m.host.Poll(); ok; ev, ok = m.host.Poll() {
			if ev.Kind == Confirm || ev.Kind == Quit {
				return nil
			}
		}
		if err := sleep(ctx, pollInterval); err != nil {
			return err
		}
	}
}

func (m *Machine) execute() error {
	addr, op, err := m.cpu.Fetch()
	if err != nil {
		return &ExecutionError{Addr: addr, Err: err}
	}

	sig, err := m.cpu.Execute(op)
	if err != nil {
		return &ExecutionError{Addr: addr, Op: op, Fetched: true, Err: err}
	}

	switch sig.Kind {
	case Halt:
		m.log.Debug("jump to self", "addr", addr)
		m.halt("finished")
	case Render:
		m.host.Present(m.cpu.Display())
	case TimerStarted:
		m.cpu.StartTimer(sig.Timer, m.now())
		if sig.Timer == TimerSound {
			if m.cpu.SoundTimer() > 0 {
				m.startTone()
			} else {
				m.stopTone()
			}
		}
	case AwaitKey:
		if m.hasPending {
			m.cpu.SetRegister(sig.Register, m.pending)
			break
		}
		m.mode = AwaitingKey
		m.target = sig.Register
	case SkipIfPressed:
		if m.host.Pressed(sig.Key) {
			m.cpu.Skip()
		}
	case SkipIfNotPressed:
		if !m.host.Pressed(sig.Key) {
			m.cpu.Skip()
		}
	}
	return nil
}

// awaitKey consumes pending events until a key goes down.
func (m *Machine) awaitKey() {
	for ev, ok := m.host.Poll(); ok; ev, ok = m.host.Poll() {
		switch ev.Kind {
		case Quit:
			m.quit = true
			m.halt("quit")
			return
		case KeyDown:
			m.cpu.SetRegister(m.target, ev.Key&0xF)
			m.mode = Running
			return
		}
	}
}

// quitRequested drains pending events looking for a quit. The last key to go
// down is kept for an Fx0A in this cycle; held state for the skip
// instructions comes from the host.
func (m *Machine) quitRequested() bool {
	m.hasPending = false
	for ev, ok := m.host.Poll(); ok; ev, ok = m.host.Poll() {
		switch ev.Kind {
		case Quit:
			return true
		case KeyDown:
			m.pending = ev.Key & 0xF
			m.hasPending = true
		}
	}
	return false
}

func (m *Machine) updateTimers() {
	if m.cpu.UpdateTimers(m.now()) {
		m.stopTone()
	}
}

func (m *Machine) startTone() {
	m.toning = true
	m.host.StartTone()
}

func (m *Machine) stopTone() {
	if !m.toning {
		return
	}
	m.toning = false
	m.host.StopTone()
}

func (m *Machine) halt(reason string) {
	m.mode = Halted
	m.log.Info("machine halted", "reason", reason, "pc", m.cpu.ProgramCounter())
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
