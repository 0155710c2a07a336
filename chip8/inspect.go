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
	"fmt"
	"io"
	"strings"
)

// Trace describes one instruction: where it lives, what it is, and the mode
// the machine was left in.
type Trace struct {
	Addr uint16
	Op   Opcode
	Mode Mode
}

func (t Trace) String() string {
	return fmt.Sprintf("[%#04x] %s  %-16s (%s)", t.Addr, t.Op, Disassemble(t.Op), t.Mode)
}

// Inspector drives a Machine one instruction at a time. It goes through
// Machine.Step so single stepping behaves exactly like free running.
type Inspector struct {
	m *Machine
}

func NewInspector(m *Machine) *Inspector {
	return &Inspector{m: m}
}

func (in *Inspector) Machine() *Machine {
	return in.m
}

// Current describes the instruction at the program counter without running it.
func (in *Inspector) Current() (Trace, error) {
	pc := in.m.cpu.ProgramCounter()
	op, err := in.m.cpu.OpcodeAt(pc)
	if err != nil {
		return Trace{Addr: pc, Mode: in.m.mode}, err
	}
	return Trace{Addr: pc, Op: op, Mode: in.m.mode}, nil
}

// Step executes exactly one instruction. If it waits for a key, Step blocks
// polling the host until a key arrives, the host quits or ctx is done.
func (in *Inspector) Step(ctx context.Context) (Trace, error) {
	t, err := in.Current()
	if err != nil {
		return t, err
	}
	if in.m.mode == Halted {
		return t, ErrHalted
	}

	for {
		if err := in.m.Step(ctx); err != nil {
			t.Mode = in.m.mode
			return t, err
		}
		if err := ctx.Err(); err != nil {
			t.Mode = in.m.mode
			return t, err
		}
		if in.m.mode != AwaitingKey {
			break
		}
		if err := sleep(ctx, pollInterval); err != nil {
			t.Mode = in.m.mode
			return t, err
		}
	}

	t.Mode = in.m.mode
	return t, nil
}

// DumpMemory writes count bytes starting at addr, sixteen to a row.
func (in *Inspector) DumpMemory(w io.Writer, addr uint16, count int) error {
	mem := in.m.cpu.Memory()

	end := int(addr) + count
	if end > MemorySize {
		end = MemorySize
	}

	var sb strings.Builder
	for a := int(addr); a < end; a++ {
		if a == int(addr) || (a-int(addr))%16 == 0 {
			if a != int(addr) {
				sb.WriteByte('\n')
			}
			fmt.Fprintf(&sb, "[%#04x]", a)
		}
		fmt.Fprintf(&sb, " %02x", mem[a])
	}
	sb.WriteByte('\n')

	_, err := io.WriteString(w, sb.String())
	return err
}

// DumpRegisters writes V0-VF, I, the timers, PC, SP and the stack.
func (in *Inspector) DumpRegisters(w io.Writer) error {
	cpu := in.m.cpu

	var sb strings.Builder
	for i, v := range cpu.Registers() {
		fmt.Fprintf(&sb, "V%X: %#02x", i, v)
		if i%8 == 7 {
			sb.WriteByte('\n')
		} else {
			sb.WriteByte('\t')
		}
	}

	fmt.Fprintf(&sb, "I: %#04x\tDT: %d\tST: %d\n", cpu.Index(), cpu.DelayTimer(), cpu.SoundTimer())
	fmt.Fprintf(&sb, "PC: %#04x\tSP: %d\n", cpu.ProgramCounter(), cpu.StackDepth())

	sb.WriteString("stack:")
	for _, ret := range cpu.Stack() {
		fmt.Fprintf(&sb, " %#04x", ret)
	}
	sb.WriteByte('\n')

	_, err := io.WriteString(w, sb.String())
	return err
}
