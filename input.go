package emul8

import (
	"sync/atomic"

	"emul8/chip8"
)

const eventBacklog = 64

// keypad is the input half shared by the front-ends. Host callbacks write to
// it from their own goroutines; the execution loop reads it.
type keypad struct {
	state  [chip8.KeyCount]atomic.Bool
	events chan chip8.Event
}

func newKeypad() *keypad {
	return &keypad{events: make(chan chip8.Event, eventBacklog)}
}

func (k *keypad) press(key uint8) {
	if !k.state[key&0xF].Swap(true) {
		k.send(chip8.Event{Kind: chip8.KeyDown, Key: key & 0xF})
	}
}

func (k *keypad) release(key uint8) {
	if k.state[key&0xF].Swap(false) {
		k.send(chip8.Event{Kind: chip8.KeyUp, Key: key & 0xF})
	}
}

// send queues an event without blocking. When the backlog is full the oldest
// event is dropped.
func (k *keypad) send(ev chip8.Event) {
	for {
		select {
		case k.events <- ev:
			return
		default:
		}

		select {
		case <-k.events:
		default:
		}
	}
}

func (k *keypad) Pressed(key uint8) bool {
	return k.state[key&0xF].Load()
}

func (k *keypad) Poll() (chip8.Event, bool) {
	select {
	case ev := <-k.events:
		return ev, true
	default:
		return chip8.Event{}, false
	}
}
