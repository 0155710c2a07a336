package emul8

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/go-audio/audio"
	"github.com/go-audio/generator"
	"github.com/gordonklaus/portaudio"
)

const (
	bufferSize int     = 512
	note       float64 = 440.0
	amplitude  float64 = 0.25
)

var (
	format = audio.FormatMono44100
)

// Beep plays a sine tone on the default output device while it is started.
type Beep struct {
	wg      sync.WaitGroup
	beeping atomic.Bool
	log     *slog.Logger
}

func NewBeep(logger *slog.Logger) *Beep {
	if logger == nil {
		logger = slog.Default()
	}
	return &Beep{log: logger}
}

// Start begins playback. Calling Start while the tone is playing does nothing.
func (b *Beep) Start(ctx context.Context) error {
	if !b.beeping.CompareAndSwap(false, true) {
		return nil
	}

	if err := portaudio.Initialize(); err != nil {
		b.beeping.Store(false)
		return fmt.Errorf("initializing audio: %w", err)
	}

	buffer := &audio.FloatBuffer{
		Data:   make([]float64, bufferSize),
		Format: format,
	}

	osc := generator.NewOsc(generator.WaveSine, note, buffer.Format.SampleRate)
	osc.Amplitude = amplitude

	out := make([]float32, bufferSize)

	stream, err := portaudio.OpenDefaultStream(0, format.NumChannels, float64(format.SampleRate), len(out), &out)
	if err != nil {
		_ = portaudio.Terminate()
		b.beeping.Store(false)
		return fmt.Errorf("opening audio stream: %w", err)
	}

	if err := stream.Start(); err != nil {
		_ = stream.Close()
		_ = portaudio.Terminate()
		b.beeping.Store(false)
		return fmt.Errorf("starting audio stream: %w", err)
	}

	b.wg.Go(func() {
		defer func() {
			_ = stream.Stop()
			_ = stream.Close()
			_ = portaudio.Terminate()
		}()

		for b.beeping.Load() && ctx.Err() == nil {
			if err := osc.Fill(buffer); err != nil {
				b.log.Warn("filling tone buffer", "error", err)
				b.beeping.Store(false)
				return
			}

			f64Tof32(out, buffer.Data)

			if err := stream.Write(); err != nil {
				b.log.Warn("writing to audio stream", "error", err)
				b.beeping.Store(false)
				return
			}
		}
	})

	return nil
}

// Stop ends playback and waits for the output stream to close.
func (b *Beep) Stop() {
	b.beeping.Store(false)
	b.wg.Wait()
}

func (b *Beep) Playing() bool {
	return b.beeping.Load()
}

func f64Tof32(dst []float32, src []float64) {
	for i := range src {
		dst[i] = float32(src[i])
	}
}
