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

import "strings"

const (
	Width  int = 64
	Height int = 32
	Area   int = Width * Height
)

// Framebuffer is the 64x32 monochrome display, indexed [row][column]. It is a
// value type: hosts are handed copies and never share the interpreter's.
type Framebuffer [Height][Width]bool

func (f *Framebuffer) Clear() {
	*f = Framebuffer{}
}

// Pixel reports whether the pixel at column x, row y is lit. Coordinates wrap.
func (f *Framebuffer) Pixel(x, y int) bool {
	return f[wrap(y, Height)][wrap(x, Width)]
}

// Draw XORs an 8 pixel wide sprite onto the display with its top left corner
// at (x, y), wrapping at the edges. It reports whether any lit pixel was
// turned off.
func (f *Framebuffer) Draw(x, y uint8, sprite []byte) bool {
	var collision bool

	for row, bits := range sprite {
		py := (int(y) + row) % Height
		for col := range 8 {
			if bits&(0x80>>col) == 0 {
				continue
			}
			px := (int(x) + col) % Width
			if f[py][px] {
				collision = true
			}
			f[py][px] = !f[py][px]
		}
	}

	return collision
}

// Lit counts the pixels that are on.
func (f *Framebuffer) Lit() int {
	var n int
	for _, row := range f {
		for _, on := range row {
			if on {
				n++
			}
		}
	}
	return n
}

func (f *Framebuffer) String() string {
	var sb strings.Builder
	sb.Grow(Area + Height)
	for _, row := range f {
		for _, on := range row {
			if on {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func wrap(v, n int) int {
	v %= n
	if v < 0 {
		v += n
	}
	return v
}
