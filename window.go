package emul8

import (
	"context"
	"errors"
	"image"
	"image/color"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"

	"emul8/chip8"
)

var (
	pixelOn  = color.White
	pixelOff = color.Black
)

// Window is the desktop front-end. Present, StartTone and StopTone may be
// called from any goroutine; ShowAndRun must be called from main.
type Window struct {
	*keypad

	ctx    context.Context
	keys   Keymap
	app    fyne.App
	win    fyne.Window
	buffer *image.RGBA
	image  *canvas.Image
	beep   *Beep
	log    *slog.Logger

	closed    atomic.Bool
	closeOnce sync.Once
}

// NewWindow builds the window. beep may be nil to run silently.
func NewWindow(ctx context.Context, title string, scale int, keys Keymap, beep *Beep, logger *slog.Logger) (*Window, error) {
	if logger == nil {
		logger = slog.Default()
	}

	w := &Window{
		keypad: newKeypad(),
		ctx:    ctx,
		keys:   keys,
		beep:   beep,
		log:    logger,
	}

	w.app = app.New()
	w.win = w.app.NewWindow(title)

	w.buffer = image.NewRGBA(image.Rect(0, 0, chip8.Width, chip8.Height))
	paint(w.buffer, &chip8.Framebuffer{})

	w.image = canvas.NewImageFromImage(w.buffer)
	w.image.FillMode = canvas.ImageFillStretch
	w.image.ScaleMode = canvas.ImageScalePixels

	canv, ok := w.win.Canvas().(desktop.Canvas)
	if !ok {
		return nil, errors.New("window frontend needs a desktop driver")
	}
	canv.SetOnKeyDown(w.onKeyDown)
	canv.SetOnKeyUp(w.onKeyUp)

	w.win.SetOnClosed(func() {
		w.closed.Store(true)
		w.send(chip8.Event{Kind: chip8.Quit})
	})

	w.win.SetContent(w.image)
	w.win.Resize(fyne.NewSize(float32(chip8.Width*scale), float32(chip8.Height*scale)))

	return w, nil
}

func (w *Window) onKeyDown(k *fyne.KeyEvent) {
	switch strings.ToUpper(string(k.Name)) {
	case KeyQuit:
		w.send(chip8.Event{Kind: chip8.Quit})
		return
	case KeyConfirm:
		w.send(chip8.Event{Kind: chip8.Confirm})
		return
	}

	if key, ok := w.keys.Lookup(string(k.Name)); ok {
		w.press(key)
	}
}

func (w *Window) onKeyUp(k *fyne.KeyEvent) {
	if key, ok := w.keys.Lookup(string(k.Name)); ok {
		w.release(key)
	}
}

// Present does nothing once the window has been closed.
func (w *Window) Present(fb chip8.Framebuffer) {
	if w.closed.Load() {
		return
	}
	fyne.Do(func() {
		paint(w.buffer, &fb)
		w.image.Refresh()
	})
}

func (w *Window) StartTone() {
	if w.beep == nil {
		return
	}
	if err := w.beep.Start(w.ctx); err != nil {
		w.log.Warn("starting tone", "error", err)
	}
}

func (w *Window) StopTone() {
	if w.beep == nil {
		return
	}
	w.beep.Stop()
}

// ShowAndRun shows the window and runs the event loop until Close is called
// or the user closes the window.
func (w *Window) ShowAndRun() {
	w.win.ShowAndRun()
}

// Close tears the window down. It is safe to call more than once and from
// any goroutine.
func (w *Window) Close() {
	w.closeOnce.Do(func() {
		w.StopTone()
		if !w.closed.Swap(true) {
			fyne.Do(w.app.Quit)
		}
	})
}

// paint copies the framebuffer into the back buffer.
func paint(dst *image.RGBA, fb *chip8.Framebuffer) {
	for y := range chip8.Height {
		for x := range chip8.Width {
			c := pixelOff
			if fb[y][x] {
				c = pixelOn
			}
			dst.Set(x, y, c)
		}
	}
}
