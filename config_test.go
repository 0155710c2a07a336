package emul8

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chip8.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func env(vars map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, FrontendWindow, cfg.Frontend)
	assert.Equal(t, 10, cfg.Scale)
	assert.Equal(t, time.Second/700, cfg.Interval())
	assert.True(t, cfg.Sound)
	assert.True(t, cfg.Confirm)
	assert.False(t, cfg.Debug)
}

func TestConfigLoadFile(t *testing.T) {
	path := writeConfig(t, `
rom = "pong.ch8"
scale = 12
clock_rate = 500

[keys]
"P" = 0x1
`)

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFile(path))

	assert.Equal(t, "pong.ch8", cfg.ROM)
	assert.Equal(t, 12, cfg.Scale)
	assert.Equal(t, 500, cfg.ClockRate)
	assert.Equal(t, map[string]uint8{"P": 1}, cfg.Keys)
	// untouched by the file
	assert.Equal(t, FrontendWindow, cfg.Frontend)
	assert.True(t, cfg.Sound)
}

func TestConfigLoadFileUnknownKey(t *testing.T) {
	path := writeConfig(t, `colour = "green"`)

	cfg := DefaultConfig()
	err := cfg.LoadFile(path)
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "colour")
}

func TestConfigLoadFileMissing(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.LoadFile(filepath.Join(t.TempDir(), "nope.toml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestConfigApplyEnv(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.ApplyEnv(env(map[string]string{
		EnvDebug:    "1",
		EnvFrontend: "Terminal",
	})))
	assert.True(t, cfg.Debug)
	assert.Equal(t, FrontendTerminal, cfg.Frontend)

	cfg = DefaultConfig()
	require.NoError(t, cfg.ApplyEnv(env(map[string]string{EnvDebug: ""})))
	assert.False(t, cfg.Debug)

	err := cfg.ApplyEnv(env(map[string]string{EnvDebug: "sometimes"}))
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestConfigPrecedence(t *testing.T) {
	path := writeConfig(t, `
frontend = "terminal"
debug = false
`)

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFile(path))
	assert.Equal(t, FrontendTerminal, cfg.Frontend)

	require.NoError(t, cfg.ApplyEnv(env(map[string]string{EnvFrontend: "window"})))
	assert.Equal(t, FrontendWindow, cfg.Frontend)
}

func TestConfigValidate(t *testing.T) {
	valid := func() Config {
		cfg := DefaultConfig()
		cfg.ROM = "test.ch8"
		return cfg
	}

	tests := []struct {
		name   string
		modify func(*Config)
		err    error
	}{
		{"valid", func(*Config) {}, nil},
		{"no rom", func(c *Config) { c.ROM = "" }, ErrNoROM},
		{"unknown frontend", func(c *Config) { c.Frontend = "vga" }, ErrInvalidConfig},
		{"zero scale", func(c *Config) { c.Scale = 0 }, ErrInvalidConfig},
		{"negative clock", func(c *Config) { c.ClockRate = -1 }, ErrInvalidConfig},
		{"key out of range", func(c *Config) { c.Keys = map[string]uint8{"P": 0x10} }, ErrInvalidConfig},
		{"debug on terminal", func(c *Config) {
			c.Debug = true
			c.Frontend = FrontendTerminal
		}, ErrInvalidConfig},
		{"debug on window", func(c *Config) { c.Debug = true }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.modify(&cfg)
			err := cfg.Validate()
			if tt.err == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.err)
			}
		})
	}
}
