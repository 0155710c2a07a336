package emul8

import (
	"maps"
	"strings"
)

// Host key names understood by both front-ends. Letters and digits are named
// by their upper-case character.
const (
	KeyQuit    = "ESCAPE"
	KeyConfirm = "SPACE"
)

var defaultKeys = map[string]uint8{
	"1": 0x1, "2": 0x2, "3": 0x3, "4": 0xC,
	"Q": 0x4, "W": 0x5, "E": 0x6, "R": 0xD,
	"A": 0x7, "S": 0x8, "D": 0x9, "F": 0xE,
	"Z": 0xA, "X": 0x0, "C": 0xB, "V": 0xF,
}

// Keymap translates host key names into logical keypad indices.
type Keymap map[string]uint8

// NewKeymap returns the default layout with overrides applied on top. An
// override that takes over a keypad index unbinds the default key for it.
func NewKeymap(overrides map[string]uint8) Keymap {
	k := Keymap(maps.Clone(defaultKeys))

	for name, key := range overrides {
		name = strings.ToUpper(name)
		for prev, bound := range k {
			if bound == key && prev != name {
				delete(k, prev)
			}
		}
		k[name] = key
	}

	return k
}

func (k Keymap) Lookup(name string) (uint8, bool) {
	key, ok := k[strings.ToUpper(name)]
	return key, ok
}
