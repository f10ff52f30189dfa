// Package cpu implements the Intel 8080 instruction decoder/executor used by
// the Space Invaders cabinet: the full 256-opcode dispatch table, the
// register/flag/stack model, and interrupt injection. I/O ports are
// deliberately absent here — IN/OUT are intercepted by the machine package
// before Execute is ever called, since the cabinet's peripherals sit on the
// I/O port space.
package cpu

import (
	"fmt"

	"github.com/dkasak/invaders8080/memory"
)

// Register selector values, as encoded in the d/s fields of an opcode.
const (
	regB = iota
	regC
	regD
	regE
	regH
	regL
	regM // mem[HL]
	regA
)

// Register-pair selector values, as encoded in the rp field of an opcode.
const (
	pairBC = iota
	pairDE
	pairHL
	pairSP // or PSW, context-dependent
)

// Processor is the 8080 register file, flags, stack pointer, program
// counter and interrupt-enable latch, wired to a shared Memory.
type Processor struct {
	A, B, C, D, E, H, L byte
	SP, PC              uint16
	Flags               Flags
	IE                  bool
	Halted              bool
	InstructionCount    uint64

	Mem *memory.Memory
}

// New returns a Processor reset to the cabinet's power-on state: all
// registers and flags cleared, PC=0, SP=0, interrupts disabled.
func New(mem *memory.Memory) *Processor {
	return &Processor{Mem: mem}
}

// opcodeTable maps every one of the 256 opcode bytes to a handler that
// advances PC past the instruction (or to a jump target) and returns the
// instruction's cycle cost. Built once in init.
var opcodeTable [256]func(p *Processor) int

// Execute fetches, decodes and runs one instruction, returning the number
// of clock cycles it consumed. When halted it returns the fixed HLT cost
// without touching memory or PC; Interrupt is the only way out.
func (p *Processor) Execute() int {
	p.InstructionCount++
	if p.Halted {
		return 7
	}
	opcode := p.Mem.Read(p.PC)
	return opcodeTable[opcode](p)
}

// Interrupt implements RST-style interrupt acceptance: if IE is set, push PC,
// jump to 8*n, clear IE and resume fetch (clearing any halt). A disabled
// interrupt is a no-op, including while halted — the cabinet then stays
// visually frozen, which is correct.
func (p *Processor) Interrupt(n int) {
	if !p.IE {
		return
	}
	p.push16(p.PC)
	p.PC = uint16(8 * n)
	p.IE = false
	p.Halted = false
}

// String renders a register/flag/stack dump for the debug console, in the
// spirit of the original processor's print().
func (p *Processor) String() string {
	return fmt.Sprintf(
		"PC:%04X A:%02X BC:%02X%02X DE:%02X%02X HL:%02X%02X SP:%04X "+
			"S:%v Z:%v AC:%v P:%v CY:%v IE:%v IC:%d",
		p.PC, p.A, p.B, p.C, p.D, p.E, p.H, p.L, p.SP,
		p.Flags.S, p.Flags.Z, p.Flags.AC, p.Flags.P, p.Flags.CY, p.IE, p.InstructionCount,
	)
}

// --- register / pair access -------------------------------------------------

func (p *Processor) hl() uint16 {
	return uint16(p.H)<<8 | uint16(p.L)
}

func (p *Processor) getReg(sel byte) byte {
	switch sel & 0x7 {
	case regB:
		return p.B
	case regC:
		return p.C
	case regD:
		return p.D
	case regE:
		return p.E
	case regH:
		return p.H
	case regL:
		return p.L
	case regM:
		return p.Mem.Read(p.hl())
	default:
		return p.A
	}
}

func (p *Processor) setReg(sel byte, v byte) {
	switch sel & 0x7 {
	case regB:
		p.B = v
	case regC:
		p.C = v
	case regD:
		p.D = v
	case regE:
		p.E = v
	case regH:
		p.H = v
	case regL:
		p.L = v
	case regM:
		p.Mem.Write(p.hl(), v)
	default:
		p.A = v
	}
}

func (p *Processor) getPair(rp byte) uint16 {
	switch rp & 0x3 {
	case pairBC:
		return uint16(p.B)<<8 | uint16(p.C)
	case pairDE:
		return uint16(p.D)<<8 | uint16(p.E)
	case pairHL:
		return p.hl()
	default:
		return p.SP
	}
}

func (p *Processor) setPair(rp byte, v uint16) {
	switch rp & 0x3 {
	case pairBC:
		p.B, p.C = byte(v>>8), byte(v)
	case pairDE:
		p.D, p.E = byte(v>>8), byte(v)
	case pairHL:
		p.H, p.L = byte(v>>8), byte(v)
	default:
		p.SP = v
	}
}

func (p *Processor) getPairPSW(rp byte) uint16 {
	if rp&0x3 == pairSP {
		return uint16(p.A)<<8 | uint16(p.Flags.pack())
	}
	return p.getPair(rp)
}

func (p *Processor) setPairPSW(rp byte, v uint16) {
	if rp&0x3 == pairSP {
		p.A = byte(v >> 8)
		p.Flags.unpack(byte(v))
		return
	}
	p.setPair(rp, v)
}

// condition selectors, as encoded in the d field of a conditional
// jump/call/return opcode: NZ Z NC C PO PE P M.
func (p *Processor) testCond(d byte) bool {
	switch d & 0x7 {
	case 0:
		return !p.Flags.Z
	case 1:
		return p.Flags.Z
	case 2:
		return !p.Flags.CY
	case 3:
		return p.Flags.CY
	case 4:
		return !p.Flags.P
	case 5:
		return p.Flags.P
	case 6:
		return !p.Flags.S
	default:
		return p.Flags.S
	}
}

// --- stack -------------------------------------------------------------

func (p *Processor) push16(v uint16) {
	p.Mem.Write(p.SP-1, byte(v>>8))
	p.Mem.Write(p.SP-2, byte(v))
	p.SP -= 2
}

func (p *Processor) pop16() uint16 {
	lo := p.Mem.Read(p.SP)
	hi := p.Mem.Read(p.SP + 1)
	p.SP += 2
	return uint16(hi)<<8 | uint16(lo)
}

// --- ALU -----------------------------------------------------------------

func (p *Processor) add(v byte, carryIn bool) {
	sum := uint16(p.A) + uint16(v)
	if carryIn && p.Flags.CY {
		sum++
	}
	p.Flags.CY = sum > 0xFF
	p.A = byte(sum)
	p.Flags.setSZP(p.A)
}

// sub computes CY from the pre-subtraction A, per the cabinet's carry rule:
// the borrow flag reflects the unsigned comparison before A is overwritten.
func (p *Processor) sub(v byte, borrowIn bool) {
	subtrahend := v
	if borrowIn && p.Flags.CY {
		subtrahend++
	}
	cy := p.A < subtrahend
	p.A = p.A - subtrahend
	p.Flags.setSZP(p.A)
	p.Flags.CY = cy
}

func (p *Processor) and(v byte) {
	p.A &= v
	p.Flags.CY = false
	p.Flags.setSZP(p.A)
}

func (p *Processor) or(v byte) {
	p.A |= v
	p.Flags.CY = false
	p.Flags.setSZP(p.A)
}

func (p *Processor) xor(v byte) {
	p.A ^= v
	p.Flags.CY = false
	p.Flags.setSZP(p.A)
}

// cmp leaves A unchanged; only flags are set, with the same carry rule as sub.
func (p *Processor) cmp(v byte) {
	cy := p.A < v
	p.Flags.setSZP(p.A - v)
	p.Flags.CY = cy
}

func (p *Processor) dad(rp byte) {
	sum := uint32(p.hl()) + uint32(p.getPair(rp))
	p.Flags.CY = sum > 0xFFFF
	p.setPair(pairHL, uint16(sum))
}

func (p *Processor) rlc() {
	bit7 := p.A >> 7
	p.A = p.A<<1 | bit7
	p.Flags.CY = bit7 == 1
}

func (p *Processor) rrc() {
	bit0 := p.A & 0x1
	p.A = p.A>>1 | bit0<<7
	p.Flags.CY = bit0 == 1
}

func (p *Processor) ral() {
	bit7 := p.A >> 7
	var carryIn byte
	if p.Flags.CY {
		carryIn = 1
	}
	p.A = p.A<<1 | carryIn
	p.Flags.CY = bit7 == 1
}

func (p *Processor) rar() {
	bit0 := p.A & 0x1
	var carryIn byte
	if p.Flags.CY {
		carryIn = 1
	}
	p.A = carryIn<<7 | p.A>>1
	p.Flags.CY = bit0 == 1
}
