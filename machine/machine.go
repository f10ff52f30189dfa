// Package machine composes the Intel 8080 processor with the Space
// Invaders cabinet's peripherals: the shift-register I/O port pair, the
// input latch, the mid/end-of-frame interrupt schedule, and the video
// snapshot the renderer reads. It owns the pacing loop that runs the
// processor at the cabinet's target clock rate.
package machine

import (
	"sync"
	"time"

	"github.com/dkasak/invaders8080/cpu"
	"github.com/dkasak/invaders8080/memory"
)

// CPUHz is the 8080's clock rate inside the cabinet.
const CPUHz = 2_000_000

// cyclesPerHalfFrame is the VBLANK countdown: CPU_HZ/60 (~33,333) cycles
// make up one half-frame tick, alternating mid-screen and end-of-screen
// interrupts, for 60 interrupts (30 full frames) per simulated second.
const cyclesPerHalfFrame = CPUHz / 60

// Key identifies one of the cabinet's six inputs.
type Key int

const (
	KeyCredit Key = iota
	Key2PStart
	Key1PStart
	KeyShoot
	KeyLeft
	KeyRight
)

// keyBit is the IP[1] bit a Key toggles, per the cabinet's input latch
// layout.
var keyBit = map[Key]byte{
	KeyCredit:  0x01,
	Key2PStart: 0x02,
	Key1PStart: 0x04,
	KeyShoot:   0x10,
	KeyLeft:    0x20,
	KeyRight:   0x40,
}

// KeyEvent is a single press/release transition, published by the platform
// layer onto the machine's keyboard channel. Pressed is true on key-down,
// false on key-up; auto-repeat key-downs are the platform layer's job to
// filter out before they reach here.
type KeyEvent struct {
	Key     Key
	Pressed bool
}

// Machine is the cabinet: an 8080 Processor plus its input/output port
// arrays, the video snapshot shared with the renderer, and the keyboard
// channel fed by the platform layer.
type Machine struct {
	CPU *cpu.Processor

	ip [8]byte // input ports
	op [8]byte // output ports

	Keys chan KeyEvent

	videoMu  sync.Mutex
	video    [memory.VideoSize]byte
	vblank   int  // cycles until the next half-frame boundary
	halfTick bool // toggles each elapsed half-frame: false=mid-screen next, true=end-of-screen next
}

// New builds a Machine around mem, with interrupts disabled and all ports
// zeroed, matching the cabinet's power-on state.
func New(mem *memory.Memory) *Machine {
	return &Machine{
		CPU:    cpu.New(mem),
		Keys:   make(chan KeyEvent, 16),
		vblank: cyclesPerHalfFrame,
	}
}

// Step runs exactly one instruction and advances the frame schedule,
// returning the cycle cost.
func (m *Machine) Step() int {
	cycles := m.stepInstruction()
	m.tickInterrupts(cycles)
	return cycles
}

// stepInstruction fetches and runs one instruction, intercepting IN/OUT
// before the processor ever sees them. The processor itself never touches a
// port; a halted processor stays frozen even if the byte at the stalled PC
// happens to alias an IN/OUT opcode.
func (m *Machine) stepInstruction() int {
	if m.CPU.Halted {
		return m.CPU.Execute()
	}
	opcode := m.CPU.Mem.Read(m.CPU.PC)
	switch opcode {
	case 0xDB: // IN port
		port := m.CPU.Mem.Read(m.CPU.PC + 1)
		m.CPU.A = m.input(port)
		m.CPU.PC += 2
		return 10
	case 0xD3: // OUT port
		port := m.CPU.Mem.Read(m.CPU.PC + 1)
		m.output(port, m.CPU.A)
		m.CPU.PC += 2
		return 10
	default:
		return m.CPU.Execute()
	}
}

// input reads a cabinet I/O port.
func (m *Machine) input(port byte) byte {
	switch port {
	case 1:
		return m.ip[1]
	case 3:
		v := (uint16(m.op[4])<<8 | uint16(m.ip[3])) >> (8 - m.op[2])
		return byte(v)
	default:
		return m.CPU.A
	}
}

// output writes a cabinet I/O port.
func (m *Machine) output(port, v byte) {
	switch port {
	case 2:
		m.op[2] = v & 0x7
	case 4:
		m.ip[3] = m.op[4]
		m.op[4] = v
	default:
		// all other ports discard writes
	}
}

// HandleKey applies a KeyEvent to the input latch IP[1].
func (m *Machine) HandleKey(ev KeyEvent) {
	bit := keyBit[ev.Key]
	if ev.Pressed {
		m.ip[1] |= bit
	} else {
		m.ip[1] &^= bit
	}
}

// drainKeys applies every pending keyboard event without blocking, per the
// single-producer/single-consumer channel contract.
func (m *Machine) drainKeys() {
	for {
		select {
		case ev, ok := <-m.Keys:
			if !ok {
				return
			}
			m.HandleKey(ev)
		default:
			return
		}
	}
}

// Snapshot copies the current video buffer into dst (len >= memory.VideoSize)
// under a blocking lock, for the renderer to read. The lock is released
// before dst is used by the caller for drawing.
func (m *Machine) Snapshot(dst []byte) {
	m.videoMu.Lock()
	copy(dst, m.video[:])
	m.videoMu.Unlock()
}

// snapshotFromMemory copies the live video region into the shared buffer,
// skipping the update entirely if the renderer currently holds the lock —
// the next half-frame will simply carry a frame's worth of staleness.
func (m *Machine) snapshotFromMemory() {
	if !m.videoMu.TryLock() {
		return
	}
	defer m.videoMu.Unlock()
	m.CPU.Mem.SnapshotVideo(m.video[:])
}

// tickInterrupts advances the VBLANK countdown by cycles elapsed and fires
// the mid/end-of-screen interrupts as the countdown crosses zero, per the
// cabinet's two-phase frame schedule: odd half-frames are RST 1, even
// half-frames are RST 2 plus a video snapshot. It reports whether a
// half-frame boundary was crossed, so Run knows when to pace itself.
func (m *Machine) tickInterrupts(elapsed int) bool {
	m.vblank -= elapsed
	crossed := false
	for m.vblank <= 0 {
		m.vblank += cyclesPerHalfFrame
		crossed = true
		if !m.halfTick {
			m.CPU.Interrupt(1)
		} else {
			m.CPU.Interrupt(2)
			m.snapshotFromMemory()
		}
		m.halfTick = !m.halfTick
	}
	return crossed
}

// Run executes the processor at CPUHz, sleeping to a wall-clock deadline
// recomputed once per half-frame rather than once per instruction, draining
// the keyboard channel and firing interrupts on schedule. It blocks until
// quit is closed.
func (m *Machine) Run(quit <-chan struct{}) {
	halfFrameDuration := time.Second * cyclesPerHalfFrame / CPUHz
	deadline := time.Now().Add(halfFrameDuration)

	for {
		select {
		case <-quit:
			return
		default:
		}

		m.drainKeys()
		cycles := m.stepInstruction()
		if m.tickInterrupts(cycles) {
			if d := time.Until(deadline); d > 0 {
				time.Sleep(d)
			}
			deadline = time.Now().Add(halfFrameDuration)
		}
	}
}
