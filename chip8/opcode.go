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
)

// Opcode is a 16bit instruction word. The first nibble selects the
// operation kind, the rest are operands.
type Opcode uint16

// First nibble of the opcode is the operation kind.
func (o Opcode) kind() uint8 { return uint8(o >> 12) }

// Second nibble of the opcode is the X register location.
func (o Opcode) x() uint8 { return uint8(o>>8) & 0xF }

// Third nibble of the opcode is the Y register location.
func (o Opcode) y() uint8 { return uint8(o>>4) & 0xF }

// Fourth nibble of the opcode is the N value.
func (o Opcode) n() uint8 { return uint8(o) & 0xF }

// Third and fourth nibbles of the opcode combine into the NN value.
func (o Opcode) nn() uint8 { return uint8(o) }

// Second, third, and fourth nibbles of the opcode combine into the NNN value.
func (o Opcode) nnn() uint16 { return uint16(o) & 0x0FFF }

func (o Opcode) String() string {
	return fmt.Sprintf("%04X", uint16(o))
}

// Execute applies op to the processor state. The program counter must
// already point past op. Host interaction is never performed here; it is
// requested through the returned Signal. Unknown words are logged and
// treated as no-ops.
func (p *Processor) Execute(op Opcode) (Signal, error) {
	switch op.kind() {
	case 0x0:
		switch op {
		case 0x00E0:
			p.clearScreen()
			return render, nil
		case 0x00EE:
			return proceed, p.returnFromSubroutine()
		}
	case 0x1:
		return p.jumpToLocation(op.nnn()), nil
	case 0x2:
		return proceed, p.callSubroutine(op.nnn())
	case 0x3:
		p.stepIfXEqualsNN(op.x(), op.nn())
		return proceed, nil
	case 0x4:
		p.stepIfXNotEqualsNN(op.x(), op.nn())
		return proceed, nil
	case 0x5:
		p.stepIfXEqualsY(op.x(), op.y())
		return proceed, nil
	case 0x6:
		p.v[op.x()] = op.nn()
		return proceed, nil
	case 0x7:
		p.v[op.x()] += op.nn()
		return proceed, nil
	case 0x8:
		if p.arithmetic(op.x(), op.y(), op.n()) {
			return proceed, nil
		}
	case 0x9:
		p.stepIfXNotEqualsY(op.x(), op.y())
		return proceed, nil
	case 0xA:
		p.i = op.nnn()
		return proceed, nil
	case 0xB:
		p.pc = op.nnn() + uint16(p.v[0x0])
		return proceed, nil
	case 0xC:
		p.v[op.x()] = byte(p.rng.Uint32N(256)) & op.nn()
		return proceed, nil
	case 0xD:
		return render, p.drawSprite(op.x(), op.y(), op.n())
	case 0xE:
		key := p.v[op.x()] & 0x0F
		switch op.nn() {
		case 0x9E:
			return Signal{Kind: SkipIfPressed, Key: key}, nil
		case 0xA1:
			return Signal{Kind: SkipIfNotPressed, Key: key}, nil
		}
	case 0xF:
		if sig, ok, err := p.misc(op.x(), op.nn()); ok {
			return sig, err
		}
	}

	p.log.Warn("unknown instruction",
		"addr", fmt.Sprintf("%#04x", p.pc-2),
		"opcode", op.String(),
		"asm", Disassemble(op),
	)
	return proceed, nil
}

func (p *Processor) clearScreen() {
	p.display.Clear()
}

func (p *Processor) callSubroutine(nnn uint16) error {
	if int(p.sp) >= len(p.stack) {
		return ErrStackOverflow
	}
	p.stack[p.sp] = p.pc
	p.sp++
	p.pc = nnn
	return nil
}

func (p *Processor) returnFromSubroutine() error {
	if p.sp == 0 {
		return ErrStackUnderflow
	}
	p.sp--
	p.pc = p.stack[p.sp]
	return nil
}

// jumpToLocation halts on a jump to itself, the usual way a program ends.
func (p *Processor) jumpToLocation(nnn uint16) Signal {
	self := p.pc - 2
	p.pc = nnn
	if nnn == self {
		return halt
	}
	return proceed
}

func (p *Processor) stepIfXEqualsNN(x, nn uint8) {
	if p.v[x] == nn {
		p.pc += 2
	}
}

func (p *Processor) stepIfXNotEqualsNN(x, nn uint8) {
	if p.v[x] != nn {
		p.pc += 2
	}
}

func (p *Processor) stepIfXEqualsY(x, y uint8) {
	if p.v[x] == p.v[y] {
		p.pc += 2
	}
}

func (p *Processor) stepIfXNotEqualsY(x, y uint8) {
	if p.v[x] != p.v[y] {
		p.pc += 2
	}
}

// arithmetic executes the 8xyN family. The flag is always written after the
// result so VF holds the flag when x is F.
func (p *Processor) arithmetic(x, y, n uint8) bool {
	vx, vy := p.v[x], p.v[y]

	var flag byte
	switch n {
	case 0x0:
		p.v[x] = vy
		return true
	case 0x1:
		p.v[x] = vx | vy
		return true
	case 0x2:
		p.v[x] = vx & vy
		return true
	case 0x3:
		p.v[x] = vx ^ vy
		return true
	case 0x4:
		sum := uint16(vx) + uint16(vy)
		p.v[x] = byte(sum)
		flag = byte(sum >> 8)
	case 0x5:
		p.v[x] = vx - vy
		flag = boolByte(vx > vy)
	case 0x6:
		p.v[x] = vx >> 1
		flag = vx & 0x1
	case 0x7:
		p.v[x] = vy - vx
		flag = boolByte(vy > vx)
	case 0xE:
		p.v[x] = vx << 1
		flag = vx >> 7
	default:
		return false
	}

	p.v[FlagRegister] = flag
	return true
}

func (p *Processor) drawSprite(x, y, n uint8) error {
	end := int(p.i) + int(n)
	if end > MemorySize {
		return fmt.Errorf("sprite of %d bytes at %#04x: %w", n, p.i, ErrMemoryBounds)
	}

	collision := p.display.Draw(p.v[x], p.v[y], p.memory[p.i:end])
	p.v[FlagRegister] = boolByte(collision)
	return nil
}

// misc executes the Fxkk family. ok is false for an unknown kk.
func (p *Processor) misc(x, kk uint8) (sig Signal, ok bool, err error) {
	switch kk {
	case 0x07:
		p.v[x] = p.delay.Value()
	case 0x0A:
		return Signal{Kind: AwaitKey, Register: x}, true, nil
	case 0x15:
		p.delay.value = p.v[x]
		return Signal{Kind: TimerStarted, Timer: TimerDelay}, true, nil
	case 0x18:
		p.sound.value = p.v[x]
		return Signal{Kind: TimerStarted, Timer: TimerSound}, true, nil
	case 0x1E:
		sum := uint32(p.i) + uint32(p.v[x])
		if sum > uint32(LastAddress) {
			return proceed, true, fmt.Errorf("index %#04x + %#02x: %w", p.i, p.v[x], ErrMemoryBounds)
		}
		p.i = uint16(sum)
	case 0x29:
		digit := uint16(p.v[x] & 0x0F)
		p.i = FontStartAddress + digit*FontGlyphSize
	case 0x33:
		digits := bcd(p.v[x])
		err = p.Write(p.i, digits[:])
	case 0x55:
		err = p.Write(p.i, p.v[:int(x)+1])
	case 0x65:
		err = p.Read(p.i, p.v[:int(x)+1])
	default:
		return proceed, false, nil
	}
	return proceed, true, err
}

// bcd splits v into hundreds, tens and ones using double dabble: shift the
// bits in one at a time, adding 3 to any decimal nibble of 5 or more first so
// the shift carries into the next nibble.
func bcd(v byte) [3]byte {
	var acc uint32
	val := uint32(v)

	for i := range 8 {
		for shift := 0; shift < 12; shift += 4 {
			if (acc>>shift)&0xF >= 5 {
				acc += 3 << shift
			}
		}
		acc = (acc << 1) | ((val >> (7 - i)) & 1)
	}

	return [3]byte{byte(acc>>8) & 0xF, byte(acc>>4) & 0xF, byte(acc) & 0xF}
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
