package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/retroenv/retrogolib/buildinfo"

	"emul8"
	"emul8/chip8"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

const usage = "usage: chip8 [options] <program file>"

type optionFlags struct {
	config  string
	verbose bool
	version bool

	debug     bool
	frontend  string
	scale     int
	clockRate int
	mute      bool
	noConfirm bool
}

func readArguments(args []string) (optionFlags, *flag.FlagSet, error) {
	flags := flag.NewFlagSet("chip8", flag.ContinueOnError)
	options := optionFlags{}

	flags.StringVar(&options.config, "config", "", "path of a TOML configuration file")
	flags.BoolVar(&options.verbose, "v", false, "log debug messages")
	flags.BoolVar(&options.version, "version", false, "print the version and exit")
	flags.BoolVar(&options.debug, "debug", false, "step through the program in an inspect shell")
	flags.StringVar(&options.frontend, "frontend", emul8.FrontendWindow, "where to run the program: window or terminal")
	flags.IntVar(&options.scale, "scale", 10, "window pixels per display pixel")
	flags.IntVar(&options.clockRate, "rate", 700, "instructions per second")
	flags.BoolVar(&options.mute, "mute", false, "do not play the tone")
	flags.BoolVar(&options.noConfirm, "noconfirm", false, "exit as soon as the program halts")

	flags.Usage = func() {
		fmt.Fprintf(flags.Output(), "%s\n\n", usage)
		flags.PrintDefaults()
	}

	err := flags.Parse(args)
	return options, flags, err
}

// loadConfig layers defaults, the config file, the environment and the flags
// that were set explicitly, in that order.
func loadConfig(options optionFlags, flags *flag.FlagSet, lookup func(string) (string, bool)) (emul8.Config, error) {
	cfg := emul8.DefaultConfig()

	if options.config != "" {
		if err := cfg.LoadFile(options.config); err != nil {
			return cfg, err
		}
	}

	if err := cfg.ApplyEnv(lookup); err != nil {
		return cfg, err
	}

	flags.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "debug":
			cfg.Debug = options.debug
		case "frontend":
			cfg.Frontend = options.frontend
		case "scale":
			cfg.Scale = options.scale
		case "rate":
			cfg.ClockRate = options.clockRate
		case "mute":
			cfg.Sound = !options.mute
		case "noconfirm":
			cfg.Confirm = !options.noConfirm
		}
	})

	if flags.NArg() > 0 {
		cfg.ROM = flags.Arg(0)
	}

	return cfg, cfg.Validate()
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func loadProgram(path string, logger *slog.Logger) (*chip8.Processor, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	cpu := chip8.NewProcessor(logger)
	if err := cpu.Load(file); err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return cpu, nil
}

// runMachine runs the program to its end and, if asked to, keeps the last
// frame up until the user confirms. Quitting skips the confirmation.
func runMachine(ctx context.Context, m *chip8.Machine, confirm bool) error {
	if err := m.Run(ctx); err != nil {
		return err
	}
	if confirm && !m.QuitByHost() && ctx.Err() == nil {
		if err := m.Finish(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
	}
	return nil
}

func runWindow(ctx context.Context, cfg emul8.Config, cpu *chip8.Processor, logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var beep *emul8.Beep
	if cfg.Sound {
		beep = emul8.NewBeep(logger)
	}

	title := fmt.Sprintf("CHIP-8 - %s", filepath.Base(cfg.ROM))
	w, err := emul8.NewWindow(ctx, title, cfg.Scale, emul8.NewKeymap(cfg.Keys), beep, logger)
	if err != nil {
		return err
	}

	m := chip8.NewMachine(cpu, w, chip8.WithClockRate(cfg.Interval()), chip8.WithLogger(logger))

	var (
		wg     sync.WaitGroup
		runErr error
	)
	wg.Go(func() {
		defer w.Close()
		if cfg.Debug {
			runErr = debugREPL(ctx, chip8.NewInspector(m), os.Stdin, os.Stdout)
			return
		}
		runErr = runMachine(ctx, m, cfg.Confirm)
	})

	// fyne owns the main goroutine until the window goes away
	w.ShowAndRun()
	cancel()
	wg.Wait()

	return runErr
}

func runTerminal(ctx context.Context, cfg emul8.Config, cpu *chip8.Processor, logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	t, err := emul8.NewTerminal(os.Stdin, os.Stdout, emul8.NewKeymap(cfg.Keys), logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := t.Close(); err != nil {
			logger.Warn("restoring terminal", "error", err)
		}
	}()

	var wg sync.WaitGroup
	wg.Go(func() {
		if err := t.Listen(ctx); err != nil {
			logger.Error("keyboard", "error", err)
			cancel()
		}
	})
	defer func() {
		cancel()
		wg.Wait()
	}()

	m := chip8.NewMachine(cpu, t, chip8.WithClockRate(cfg.Interval()), chip8.WithLogger(logger))
	return runMachine(ctx, m, cfg.Confirm)
}

// logFault reports a fatal program error. A failed fetch has no opcode.
func logFault(logger *slog.Logger, execErr *chip8.ExecutionError) {
	attrs := []any{"addr", fmt.Sprintf("%#04x", execErr.Addr)}
	if execErr.Fetched {
		attrs = append(attrs, "opcode", execErr.Op.String(), "asm", chip8.Disassemble(execErr.Op))
	}
	attrs = append(attrs, "error", execErr.Err)
	logger.Error("program fault", attrs...)
}

func chip8main() int {
	options, flags, err := readArguments(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}

	if options.version {
		fmt.Printf("chip8 version: %s\n", buildinfo.Version(version, commit, date))
		return 0
	}

	logger := newLogger(options.verbose)
	slog.SetDefault(logger)

	cfg, err := loadConfig(options, flags, os.LookupEnv)
	if err != nil {
		if errors.Is(err, emul8.ErrNoROM) {
			flags.Usage()
			return 1
		}
		logger.Error("configuration", "error", err)
		return 1
	}

	cpu, err := loadProgram(cfg.ROM, logger)
	if err != nil {
		logger.Error("startup", "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Debug("starting", "rom", cfg.ROM, "frontend", cfg.Frontend, "rate", cfg.ClockRate, "debug", cfg.Debug)

	switch cfg.Frontend {
	case emul8.FrontendTerminal:
		err = runTerminal(ctx, cfg, cpu, logger)
	default:
		err = runWindow(ctx, cfg, cpu, logger)
	}

	if err != nil {
		var execErr *chip8.ExecutionError
		if errors.As(err, &execErr) {
			logFault(logger, execErr)
		} else {
			logger.Error("run failed", "error", err)
		}
		return 1
	}

	return 0
}

func main() {
	os.Exit(chip8main())
}
