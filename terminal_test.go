package emul8

import (
	"bufio"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emul8/chip8"
)

func TestRenderHalfBlocks(t *testing.T) {
	var fb chip8.Framebuffer
	fb.Draw(0, 0, []byte{0x80, 0x80}) // both halves of column 0
	fb.Draw(1, 0, []byte{0x80})       // top half of column 1
	fb.Draw(2, 1, []byte{0x80})       // bottom half of column 2

	out := RenderHalfBlocks(&fb)
	lines := strings.Split(out, "\r\n")

	require.Len(t, lines, chip8.Height/2+1)
	assert.Equal(t, "", lines[len(lines)-1])
	assert.True(t, strings.HasPrefix(lines[0], "█▀▄ "))
	assert.Equal(t, strings.Repeat(" ", chip8.Width), lines[1])
	for _, line := range lines[:len(lines)-1] {
		assert.Equal(t, chip8.Width, len([]rune(line)))
	}
}

func newTestTerminal(out *strings.Builder) *Terminal {
	return &Terminal{
		keypad: newKeypad(),
		out:    bufio.NewWriter(out),
		keys:   NewKeymap(nil),
		log:    discardLogger(),
	}
}

func TestTerminalKeys(t *testing.T) {
	term := newTestTerminal(&strings.Builder{})
	now := time.Now()

	term.handle('w', now)
	assert.True(t, term.Pressed(0x5))

	ev, ok := term.Poll()
	require.True(t, ok)
	assert.Equal(t, chip8.Event{Kind: chip8.KeyDown, Key: 0x5}, ev)

	// still inside the hold window
	term.expire(now.Add(KeyHold / 2))
	assert.True(t, term.Pressed(0x5))

	term.expire(now.Add(KeyHold))
	assert.False(t, term.Pressed(0x5))

	ev, ok = term.Poll()
	require.True(t, ok)
	assert.Equal(t, chip8.Event{Kind: chip8.KeyUp, Key: 0x5}, ev)
}

func TestTerminalControlKeys(t *testing.T) {
	term := newTestTerminal(&strings.Builder{})
	now := time.Now()

	term.handle('p', now) // unmapped
	term.handle(' ', now)
	term.handle(0x1b, now)
	term.handle(0x03, now)

	kinds := []chip8.EventKind{}
	for {
		ev, ok := term.Poll()
		if !ok {
			break
		}
		kinds = append(kinds, ev.Kind)
	}

	assert.Equal(t, []chip8.EventKind{chip8.Confirm, chip8.Quit, chip8.Quit}, kinds)
}

func TestTerminalPresent(t *testing.T) {
	var out strings.Builder
	term := newTestTerminal(&out)

	var fb chip8.Framebuffer
	fb.Draw(0, 0, []byte{0x80})
	term.Present(fb)

	assert.True(t, strings.HasPrefix(out.String(), "\x1b[H▀"))

	term.StartTone()
	assert.True(t, strings.HasSuffix(out.String(), "\a"))
}
