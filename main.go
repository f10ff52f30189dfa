package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dkasak/invaders8080/cpu"
	"github.com/dkasak/invaders8080/machine"
	"github.com/dkasak/invaders8080/memory"
	"github.com/dkasak/invaders8080/platform"
)

// frameInterval paces the renderer at the host display rate (~60 Hz).
const frameInterval = time.Second / 60

func main() {
	var debug bool
	var run bool
	var scale int

	root := &cobra.Command{
		Use:   "invaders8080 <rom-path>",
		Short: "Intel 8080 / Space Invaders cabinet emulator",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rom, err := loadROM(args[0])
			if err != nil {
				return err
			}

			m := machine.New(memory.New(rom))

			if debug {
				return runDebug(m)
			}
			return runGraphical(m, scale)
		},
	}

	root.Flags().BoolVarP(&debug, "debug", "d", false, "single-step debug console")
	root.Flags().BoolVarP(&run, "run", "r", true, "run without stepping (default)")
	root.Flags().IntVar(&scale, "scale", 3, "integer window scale factor")
	root.MarkFlagsMutuallyExclusive("debug", "run")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadROM reads path and validates it is at least a full ROM bank (8 KiB);
// anything beyond that is accepted but ignored past the bank boundary.
func loadROM(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading ROM: %w", err)
	}
	if len(data) < memory.RomSize {
		return nil, fmt.Errorf("ROM %s is %d bytes, need at least %d", path, len(data), memory.RomSize)
	}
	return data, nil
}

// runGraphical drives the cabinet at full speed behind an SDL2 window: the
// machine runs on its own goroutine while this one owns the window, pumps
// events and presents frames, per the cabinet's two-thread model.
func runGraphical(m *machine.Machine, scale int) error {
	win, err := platform.New(scale)
	if err != nil {
		return fmt.Errorf("opening window: %w", err)
	}
	defer win.Close()

	quit := make(chan struct{})
	go m.Run(quit)

	buf := make([]byte, memory.VideoSize)
	for {
		deadline := time.Now().Add(frameInterval)

		if platform.PollEvents(m.Keys) {
			close(quit)
			return nil
		}
		m.Snapshot(buf)
		win.Draw(buf)

		if d := time.Until(deadline); d > 0 {
			time.Sleep(d)
		}
	}
}

// runDebug is the single-step console: reads a newline from stdin between
// instructions, printing the processor state and the instruction about to
// execute, the aux debugger plugged into a REPL.
func runDebug(m *machine.Machine) error {
	reader := bufio.NewReader(os.Stdin)
	for {
		mem := make([]byte, memory.Size)
		for i := range mem {
			mem[i] = m.CPU.Mem.Read(uint16(i))
		}
		inst := cpu.Disassemble(mem, m.CPU.PC)
		fmt.Printf("%s\n%04X: %s\n> ", m.CPU.String(), inst.Address, inst.Mnemonic)

		if _, err := reader.ReadString('\n'); err != nil {
			return nil
		}
		m.Step()
	}
}

func init() {
	log.SetFlags(0)
}
