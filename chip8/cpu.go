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
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"time"
)

const (
	MemorySize          int    = 4096
	RegisterCount       int    = 16
	StackSize           int    = 16
	KeyCount            int    = 16
	FontStartAddress    uint16 = 0x50
	FontGlyphSize       uint16 = 5
	ProgramStartAddress uint16 = 0x200
	LastAddress         uint16 = 0xFFF
	FlagRegister        uint8  = 0xF

	// MaxProgramSize is the room between the program start and the top of memory.
	MaxProgramSize int = MemorySize - int(ProgramStartAddress)
)

var fontSet = []byte{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

// Processor is the complete machine state: memory, registers, call stack,
// timers and framebuffer. It is owned by a single goroutine for the whole run.
type Processor struct {
	memory  [MemorySize]byte
	v       [RegisterCount]byte
	display Framebuffer
	stack   [StackSize]uint16
	sp      uint8
	pc      uint16
	i       uint16
	delay   Timer
	sound   Timer

	rng *rand.Rand
	log *slog.Logger
}

// NewProcessor returns a reset processor with the font glyphs in place.
// A nil logger falls back to slog.Default.
func NewProcessor(logger *slog.Logger) *Processor {
	p := &Processor{log: logger}
	p.Reset()
	return p
}

// Reset clears all state and reloads the font glyphs. The random source and
// logger survive a reset.
func (p *Processor) Reset() {
	rng, log := p.rng, p.log
	*p = Processor{rng: rng, log: log}

	if p.rng == nil {
		p.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if p.log == nil {
		p.log = slog.Default()
	}

	copy(p.memory[FontStartAddress:], fontSet)
	p.pc = ProgramStartAddress
}

// Seed replaces the random source used by Cxkk with a deterministic one.
func (p *Processor) Seed(seed1, seed2 uint64) {
	p.rng = rand.New(rand.NewPCG(seed1, seed2))
}

// Load copies a raw program image from r into memory at the program start
// address and points the program counter at it.
func (p *Processor) Load(r io.Reader) error {
	b, err := io.ReadAll(io.LimitReader(r, int64(MaxProgramSize)+1))
	if err != nil {
		return fmt.Errorf("reading program: %w", err)
	}
	return p.LoadBytes(b)
}

// LoadBytes is Load for a program already in memory.
func (p *Processor) LoadBytes(b []byte) error {
	if len(b) > MaxProgramSize {
		return fmt.Errorf("%d bytes, limit is %d: %w", len(b), MaxProgramSize, ErrProgramTooLarge)
	}
	copy(p.memory[ProgramStartAddress:], b)
	p.pc = ProgramStartAddress
	return nil
}

func (p *Processor) Write(loc uint16, data []byte) error {
	if int(loc)+len(data) > MemorySize {
		return fmt.Errorf("write of %d bytes at %#04x: %w", len(data), loc, ErrMemoryBounds)
	}
	copy(p.memory[loc:], data)
	return nil
}

func (p *Processor) Read(loc uint16, data []byte) error {
	if int(loc)+len(data) > MemorySize {
		return fmt.Errorf("read of %d bytes at %#04x: %w", len(data), loc, ErrMemoryBounds)
	}
	copy(data, p.memory[loc:])
	return nil
}

// OpcodeAt decodes the big-endian instruction word stored at offset.
func (p *Processor) OpcodeAt(offset uint16) (Opcode, error) {
	if offset > LastAddress-1 {
		return 0, fmt.Errorf("fetch at %#04x: %w", offset, ErrProgramCounter)
	}

	// opcode is a 16bit value, comprised of two contiguous 8bit values
	// in memory, starting at the program counter
	high := uint16(p.memory[offset])
	low := uint16(p.memory[offset+1])
	return Opcode((high << 8) | low), nil
}

// Fetch reads the instruction at the program counter and advances the
// program counter past it. It returns the address the instruction came from.
func (p *Processor) Fetch() (uint16, Opcode, error) {
	addr := p.pc
	op, err := p.OpcodeAt(addr)
	if err != nil {
		return addr, 0, err
	}
	p.pc += 2
	return addr, op, nil
}

// Skip advances the program counter over the next instruction.
func (p *Processor) Skip() {
	p.pc += 2
}

// StartTimer anchors the decay reference of a timer that was just set.
func (p *Processor) StartTimer(id TimerID, now time.Time) {
	switch id {
	case TimerDelay:
		p.delay.Set(p.delay.Value(), now)
	case TimerSound:
		p.sound.Set(p.sound.Value(), now)
	}
}

// UpdateTimers decays both timers from elapsed time and reports whether the
// sound timer reached zero during this update.
func (p *Processor) UpdateTimers(now time.Time) (soundExpired bool) {
	p.delay.Update(now)
	return p.sound.Update(now)
}

func (p *Processor) SetRegister(x uint8, value uint8) {
	p.v[x&0xF] = value
}

func (p *Processor) Register(x uint8) uint8 {
	return p.v[x&0xF]
}

func (p *Processor) Registers() [RegisterCount]byte {
	return p.v
}

func (p *Processor) Index() uint16 {
	return p.i
}

func (p *Processor) ProgramCounter() uint16 {
	return p.pc
}

func (p *Processor) StackDepth() int {
	return int(p.sp)
}

func (p *Processor) Stack() [StackSize]uint16 {
	return p.stack
}

func (p *Processor) DelayTimer() uint8 {
	return p.delay.Value()
}

func (p *Processor) SoundTimer() uint8 {
	return p.sound.Value()
}

// Memory returns a copy of the address space.
func (p *Processor) Memory() [MemorySize]byte {
	return p.memory
}

// Display returns a copy of the framebuffer.
func (p *Processor) Display() Framebuffer {
	return p.display
}
