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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisassemble(t *testing.T) {
	tests := map[uint16]string{
		0x00E0: "CLS",
		0x00EE: "RET",
		0x1234: "JP $234",
		0x2345: "CALL $345",
		0x3A42: "SE VA, $42",
		0x4A42: "SNE VA, $42",
		0x5AB0: "SE VA, VB",
		0x6A02: "LD VA, $02",
		0x7A01: "ADD VA, $01",
		0x8AB0: "LD VA, VB",
		0x8AB4: "ADD VA, VB",
		0x8AB6: "SHR VA",
		0x8AB7: "SUBN VA, VB",
		0x8ABE: "SHL VA",
		0x9AB0: "SNE VA, VB",
		0xA050: "LD I, $050",
		0xB200: "JP V0, $200",
		0xC1FF: "RND V1, $FF",
		0xD125: "DRW V1, V2, $5",
		0xE39E: "SKP V3",
		0xE3A1: "SKNP V3",
		0xF307: "LD V3, DT",
		0xF30A: "LD V3, K",
		0xF315: "LD DT, V3",
		0xF318: "LD ST, V3",
		0xF31E: "ADD I, V3",
		0xF329: "LD F, V3",
		0xF333: "LD B, V3",
		0xF355: "LD [I], V3",
		0xF365: "LD V3, [I]",
		0x0123: "DW $0123",
		0x8AB9: "DW $8AB9",
		0xFFFF: "DW $FFFF",
	}

	for op, want := range tests {
		assert.Equal(t, want, Disassemble(Opcode(op)), "%04X", op)
	}
}
