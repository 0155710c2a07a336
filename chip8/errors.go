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
	"errors"
	"fmt"
)

var (
	ErrStackOverflow   = errors.New("stack overflow")
	ErrStackUnderflow  = errors.New("stack underflow")
	ErrMemoryBounds    = errors.New("memory access out of range")
	ErrProgramCounter  = errors.New("program counter out of range")
	ErrProgramTooLarge = errors.New("program does not fit in memory")
	ErrHalted          = errors.New("machine halted")
)

// ExecutionError is a fatal fault raised while running the instruction at Addr.
// Op is only meaningful when Fetched is set; a failed fetch has no opcode.
type ExecutionError struct {
	Addr    uint16
	Op      Opcode
	Fetched bool
	Err     error
}

func (e *ExecutionError) Error() string {
	if !e.Fetched {
		return fmt.Sprintf("fetching at %#04x: %v", e.Addr, e.Err)
	}
	return fmt.Sprintf("executing %s at %#04x: %v", e.Op, e.Addr, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}
