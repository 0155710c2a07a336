package emul8

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	FrontendWindow   = "window"
	FrontendTerminal = "terminal"

	EnvDebug    = "CHIP8_DEBUG"
	EnvFrontend = "CHIP8_FRONTEND"
)

var (
	ErrNoROM         = errors.New("no program file given")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Config holds everything the command needs to start a run. It is filled
// from defaults, then a TOML file, then the environment, then flags.
type Config struct {
	ROM       string           `toml:"rom"`
	Debug     bool             `toml:"debug"`
	Frontend  string           `toml:"frontend"`
	Scale     int              `toml:"scale"`
	ClockRate int              `toml:"clock_rate"`
	Keys      map[string]uint8 `toml:"keys"`
	Sound     bool             `toml:"sound"`
	Confirm   bool             `toml:"confirm"`
}

func DefaultConfig() Config {
	return Config{
		Frontend:  FrontendWindow,
		Scale:     10,
		ClockRate: 700,
		Sound:     true,
		Confirm:   true,
	}
}

// LoadFile overlays the settings found in the TOML file at path. Keys the
// file does not mention keep their current value.
func (c *Config) LoadFile(path string) error {
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		names := make([]string, len(undecoded))
		for i, key := range undecoded {
			names[i] = key.String()
		}
		return fmt.Errorf("config %s: unknown keys %s: %w", path, strings.Join(names, ", "), ErrInvalidConfig)
	}
	return nil
}

// ApplyEnv overlays settings from the environment. lookup is usually
// os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if s, ok := lookup(EnvDebug); ok && s != "" {
		debug, err := strconv.ParseBool(s)
		if err != nil {
			return fmt.Errorf("%s=%q: %w", EnvDebug, s, ErrInvalidConfig)
		}
		c.Debug = debug
	}
	if s, ok := lookup(EnvFrontend); ok && s != "" {
		c.Frontend = strings.ToLower(s)
	}
	return nil
}

func (c *Config) Validate() error {
	if c.ROM == "" {
		return ErrNoROM
	}

	switch c.Frontend {
	case FrontendWindow, FrontendTerminal:
	default:
		return fmt.Errorf("frontend %q: %w", c.Frontend, ErrInvalidConfig)
	}

	if c.Scale <= 0 {
		return fmt.Errorf("scale %d: %w", c.Scale, ErrInvalidConfig)
	}
	if c.ClockRate <= 0 {
		return fmt.Errorf("clock rate %d: %w", c.ClockRate, ErrInvalidConfig)
	}

	for name, key := range c.Keys {
		if key > 0xF {
			return fmt.Errorf("key %q bound to %#x: %w", name, key, ErrInvalidConfig)
		}
	}

	// the inspect shell owns stdin, so it cannot share it with the terminal keypad
	if c.Debug && c.Frontend == FrontendTerminal {
		return fmt.Errorf("debug mode needs the window frontend: %w", ErrInvalidConfig)
	}

	return nil
}

// Interval is the pause between instruction cycles for the configured rate.
func (c *Config) Interval() time.Duration {
	if c.ClockRate <= 0 {
		return 0
	}
	return time.Second / time.Duration(c.ClockRate)
}
