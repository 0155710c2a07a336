package emul8

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"emul8/chip8"
)

// KeyHold is how long a key byte read from the terminal counts as held.
// Terminals report presses only, so releases are synthesized.
const KeyHold = 150 * time.Millisecond

const (
	keyEscape byte = 0x1b
	keyCtrlC  byte = 0x03
	keySpace  byte = ' '
)

// Terminal is the headless front-end. It draws the framebuffer with
// half-block characters and reads keys from a raw-mode tty.
type Terminal struct {
	*keypad

	in   *os.File
	out  *bufio.Writer
	keys Keymap
	log  *slog.Logger

	mu   sync.Mutex
	held [chip8.KeyCount]time.Time

	restore func() error
}

// NewTerminal puts in into raw mode. Close restores it.
func NewTerminal(in *os.File, out io.Writer, keys Keymap, logger *slog.Logger) (*Terminal, error) {
	if logger == nil {
		logger = slog.Default()
	}

	restore, err := makeRaw(int(in.Fd()))
	if err != nil {
		return nil, fmt.Errorf("entering raw mode: %w", err)
	}

	t := &Terminal{
		keypad:  newKeypad(),
		in:      in,
		out:     bufio.NewWriter(out),
		keys:    keys,
		log:     logger,
		restore: restore,
	}

	// clear screen, hide cursor
	t.out.WriteString("\x1b[2J\x1b[?25l")
	t.out.Flush()

	return t, nil
}

// Listen reads keys until ctx is done.
func (t *Terminal) Listen(ctx context.Context) error {
	buf := make([]byte, 16)

	for ctx.Err() == nil {
		// a read that times out with no bytes comes back as io.EOF
		n, err := t.in.Read(buf)
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("reading keys: %w", err)
		}

		now := time.Now()
		for _, b := range buf[:n] {
			t.handle(b, now)
		}
		t.expire(now)
	}

	return nil
}

func (t *Terminal) handle(b byte, now time.Time) {
	switch b {
	case keyEscape, keyCtrlC:
		t.send(chip8.Event{Kind: chip8.Quit})
		return
	case keySpace:
		t.send(chip8.Event{Kind: chip8.Confirm})
		return
	}

	key, ok := t.keys.Lookup(string(rune(b)))
	if !ok {
		return
	}

	t.mu.Lock()
	t.held[key] = now
	t.mu.Unlock()

	t.press(key)
}

// expire releases keys whose hold window has passed.
func (t *Terminal) expire(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for key, at := range t.held {
		if at.IsZero() || now.Sub(at) < KeyHold {
			continue
		}
		t.held[key] = time.Time{}
		t.release(uint8(key))
	}
}

func (t *Terminal) Present(fb chip8.Framebuffer) {
	t.out.WriteString("\x1b[H")
	t.out.WriteString(RenderHalfBlocks(&fb))
	if err := t.out.Flush(); err != nil {
		t.log.Debug("drawing frame", "error", err)
	}
}

func (t *Terminal) StartTone() {
	t.out.WriteByte('\a')
	t.out.Flush()
}

func (t *Terminal) StopTone() {}

// Close shows the cursor again and restores the terminal mode.
func (t *Terminal) Close() error {
	t.out.WriteString("\x1b[?25h\r\n")
	t.out.Flush()
	return t.restore()
}

// RenderHalfBlocks draws two framebuffer rows per text line.
func RenderHalfBlocks(fb *chip8.Framebuffer) string {
	var sb strings.Builder
	sb.Grow(chip8.Area * 2)

	for y := 0; y < chip8.Height; y += 2 {
		for x := range chip8.Width {
			top, bottom := fb[y][x], fb[y+1][x]
			switch {
			case top && bottom:
				sb.WriteRune('█')
			case top:
				sb.WriteRune('▀')
			case bottom:
				sb.WriteRune('▄')
			default:
				sb.WriteByte(' ')
			}
		}
		sb.WriteString("\r\n")
	}

	return sb.String()
}
