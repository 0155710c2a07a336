package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"emul8/chip8"
)

const debugHelp = `s, step [#]           run the next # instructions (default 1)
m, mem [0x###] [#]    dump # bytes of memory from an address (default PC, 16)
r, reg                show registers, timers and the stack
i, ins                show the instruction at PC
d, display            draw the framebuffer
c, continue           run until the program halts
q, quit               leave the shell
h, help               show this text
an empty line repeats the last command`

// readLines delivers input lines until r is exhausted or ctx is done.
func readLines(ctx context.Context, r io.Reader) <-chan string {
	lines := make(chan string)

	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	return lines
}

func debugStep(ctx context.Context, in *chip8.Inspector, w io.Writer, args []string) error {
	const usage = "step [#]"

	count := 1
	if len(args) > 1 {
		fmt.Fprintln(w, usage)
		return nil
	}
	if len(args) == 1 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			fmt.Fprintln(w, usage)
			return nil
		}
		count = n
	}

	for range count {
		t, err := in.Step(ctx)
		if errors.Is(err, chip8.ErrHalted) {
			fmt.Fprintln(w, "program halted")
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(w, t)
		if t.Mode == chip8.Halted {
			fmt.Fprintln(w, "program halted")
			return nil
		}
	}

	return nil
}

func debugMemory(in *chip8.Inspector, w io.Writer, args []string) {
	const usage = "memory [0x###] [#]"

	if len(args) > 2 {
		fmt.Fprintln(w, usage)
		return
	}

	addr := in.Machine().Processor().ProgramCounter()
	count := 16

	if len(args) > 0 {
		value, err := strconv.ParseUint(args[0], 0, 16)
		if err != nil || value > uint64(chip8.LastAddress) {
			fmt.Fprintf(w, "invalid address '%s'\n", args[0])
			return
		}
		addr = uint16(value)
	}

	if len(args) > 1 {
		value, err := strconv.Atoi(args[1])
		if err != nil || value < 1 {
			fmt.Fprintf(w, "invalid count '%s'\n", args[1])
			return
		}
		count = value
	}

	if err := in.DumpMemory(w, addr, count); err != nil {
		fmt.Fprintln(w, err)
	}
}

func debugInstruction(in *chip8.Inspector, w io.Writer) {
	t, err := in.Current()
	if err != nil {
		fmt.Fprintln(w, err)
		return
	}
	fmt.Fprintln(w, t)
}

// debugREPL drives the machine one command at a time. It returns when the
// user quits, the input ends or ctx is done, and on a program fault.
func debugREPL(ctx context.Context, in *chip8.Inspector, r io.Reader, w io.Writer) error {
	var lastcmd []string

	lines := readLines(ctx, r)

	for {
		fmt.Fprint(w, "(dbg) ")

		var (
			line string
			ok   bool
		)
		select {
		case <-ctx.Done():
			fmt.Fprintln(w)
			return nil
		case line, ok = <-lines:
		}
		if !ok {
			fmt.Fprintln(w)
			return nil
		}

		args := strings.Fields(line)

		if len(args) == 0 {
			if len(lastcmd) == 0 {
				continue
			}
			args = lastcmd
		} else {
			lastcmd = args
		}

		cmd := args[0]
		args = args[1:]

		switch cmd {
		case "s", "step", "n", "next":
			if err := debugStep(ctx, in, w, args); err != nil {
				if ctx.Err() != nil {
					fmt.Fprintln(w)
					return nil
				}
				return err
			}

		case "m", "mem", "memory":
			debugMemory(in, w, args)

		case "r", "reg", "registers":
			if err := in.DumpRegisters(w); err != nil {
				return err
			}

		case "i", "ins", "instruction":
			debugInstruction(in, w)

		case "d", "display":
			fb := in.Machine().Processor().Display()
			fmt.Fprint(w, fb.String())

		case "c", "continue":
			if err := in.Machine().Run(ctx); err != nil {
				return err
			}
			if ctx.Err() != nil {
				fmt.Fprintln(w)
				return nil
			}
			fmt.Fprintln(w, "program halted")

		case "q", "quit", "exit":
			return nil

		case "h", "help":
			fmt.Fprintln(w, debugHelp)

		default:
			fmt.Fprintf(w, "error: '%s' is not a valid command\n", cmd)
		}
	}
}
