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
	"bytes"
	"errors"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResetLoadsFont(t *testing.T) {
	p := NewProcessor(discard)

	mem := p.Memory()
	assert.Equal(t, fontSet, mem[FontStartAddress:int(FontStartAddress)+len(fontSet)])
	assert.Equal(t, []byte{0xF0, 0x90, 0x90, 0x90, 0xF0}, mem[0x50:0x55], "glyph 0")
	assert.Equal(t, []byte{0xF0, 0x80, 0xF0, 0x80, 0x80}, mem[0x9B:0xA0], "glyph F")
	assert.Equal(t, ProgramStartAddress, p.ProgramCounter())
}

func TestLoad(t *testing.T) {
	p := NewProcessor(discard)
	rom := []byte{0x6A, 0x02, 0xFA, 0x15}

	require.NoError(t, p.Load(bytes.NewReader(rom)))

	mem := p.Memory()
	assert.Equal(t, rom, mem[0x200:0x204])
	assert.Equal(t, ProgramStartAddress, p.ProgramCounter())
}

func TestLoadLargestProgram(t *testing.T) {
	p := NewProcessor(discard)
	rom := bytes.Repeat([]byte{0x12}, MaxProgramSize)

	require.NoError(t, p.Load(bytes.NewReader(rom)))

	mem := p.Memory()
	assert.Equal(t, byte(0x12), mem[LastAddress])
}

func TestLoadTooLarge(t *testing.T) {
	p := NewProcessor(discard)
	rom := make([]byte, MaxProgramSize+1)

	err := p.Load(bytes.NewReader(rom))
	assert.ErrorIs(t, err, ErrProgramTooLarge)
}

func TestLoadReadFailure(t *testing.T) {
	p := NewProcessor(discard)
	boom := errors.New("boom")

	err := p.Load(iotest.ErrReader(boom))
	assert.ErrorIs(t, err, boom)
}

func TestMemoryBounds(t *testing.T) {
	p := NewProcessor(discard)

	assert.NoError(t, p.Write(0xFFF, []byte{1}))
	assert.ErrorIs(t, p.Write(0xFFF, []byte{1, 2}), ErrMemoryBounds)

	buf := make([]byte, 2)
	assert.NoError(t, p.Read(0xFFE, buf))
	assert.ErrorIs(t, p.Read(0xFFF, buf), ErrMemoryBounds)
}

func TestFetch(t *testing.T) {
	p := newTestProcessor(t, 0xABCD)

	addr, op, err := p.Fetch()
	require.NoError(t, err)
	assert.Equal(t, ProgramStartAddress, addr)
	assert.Equal(t, Opcode(0xABCD), op)
	assert.Equal(t, ProgramStartAddress+2, p.ProgramCounter())

	_, err = p.OpcodeAt(0xFFE)
	assert.NoError(t, err)
	_, err = p.OpcodeAt(0xFFF)
	assert.ErrorIs(t, err, ErrProgramCounter)
}

func TestResetKeepsRandomSource(t *testing.T) {
	a := newTestProcessor(t)
	b := newTestProcessor(t)

	a.Reset()
	require.NoError(t, a.LoadBytes(assemble(0xC1FF)))
	require.NoError(t, b.LoadBytes(assemble(0xC1FF)))
	step(t, a)
	step(t, b)

	assert.Equal(t, b.Register(1), a.Register(1))
}
