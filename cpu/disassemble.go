package cpu

import (
	"fmt"

	"github.com/dkasak/invaders8080/memory"
)

// regNames and pairNames mirror the register/pair selector encodings used
// by the decoder, for mnemonic formatting only.
var regNames = [8]string{"B", "C", "D", "E", "H", "L", "M", "A"}
var pairNames = [4]string{"B", "D", "H", "SP"}
var pairNamesPSW = [4]string{"B", "D", "H", "PSW"}
var condNames = [8]string{"NZ", "Z", "NC", "C", "PO", "PE", "P", "M"}

// Instruction is the pure-function output of Disassemble: an opcode byte
// plus 0-2 immediate bytes formatted into a mnemonic, with its length and
// cycle cost. It carries no reference to a live Processor or Memory.
type Instruction struct {
	Address  uint16
	Length   int
	Cycles   int
	Mnemonic string
	// Immediate holds the 0, 1 or 2 immediate bytes following the opcode.
	// Mnemonic does not include them (it shows at most a "#" placeholder),
	// so tooling that wants the raw operand reads it from here.
	Immediate []byte
}

// Disassemble formats the instruction at addr within mem; bytes past the end
// of mem read as 0. It never mutates mem and never touches the caller's
// Processor: purely a function of bytes in, a formatted record out.
func Disassemble(mem []byte, addr uint16) Instruction {
	read := func(off int) byte {
		idx := int(addr) + off
		if idx < 0 || idx >= len(mem) {
			return 0
		}
		return mem[idx]
	}

	opcode := read(0)
	d := (opcode >> 3) & 0x7
	s := opcode & 0x7
	rp := (opcode >> 4) & 0x3

	// Run the same dispatch table the executor uses to source the cycle
	// count, so the two never drift apart.
	cycles := opcodeCycles(opcode)

	mnemonic, length := disassembleMnemonic(opcode, d, s, rp)

	inst := Instruction{Address: addr, Length: length, Cycles: cycles, Mnemonic: mnemonic}
	if length > 1 {
		inst.Immediate = []byte{read(1)}
	}
	if length > 2 {
		inst.Immediate = []byte{read(1), read(2)}
	}
	return inst
}

// opcodeCycles reports the cycle cost opcode would take against a freshly
// reset Processor (all registers and flags zero), without needing a live one
// of the caller's own. For conditional branches the reported cost follows
// from how the zero-value condition codes evaluate, not a fixed taken or
// not-taken guarantee; Mem is a throwaway zeroed bank so any memory-touching
// opcode in the dispatch table reads/writes safely without affecting the
// caller's own memory.
func opcodeCycles(opcode byte) int {
	p := &Processor{Mem: memory.New(nil)}
	return opcodeTable[opcode](p)
}

// disassembleMnemonic formats opcode into a mnemonic and reports its byte
// length. It dispatches on the coarse bits-7-6 group first (data transfer,
// MOV block, ALU block, stack/branch/IO block) so the register/pair/
// condition sub-fields are only ever interpreted within the quadrant that
// defines them — a flat bitmask-per-instruction-family approach aliases
// across quadrants (e.g. the INR mask also matches CNZ's low bits).
func disassembleMnemonic(opcode, d, s, rp byte) (string, int) {
	switch opcode >> 6 {
	case 0b00:
		return disassembleGroup0(opcode, d, rp)
	case 0b01:
		if opcode == 0x76 {
			return "HLT", 1
		}
		return fmt.Sprintf("MOV %s,%s", regNames[d], regNames[s]), 1
	case 0b10:
		name := [8]string{"ADD", "ADC", "SUB", "SBB", "ANA", "XRA", "ORA", "CMP"}[(opcode>>3)&0x7]
		return fmt.Sprintf("%s %s", name, regNames[s]), 1
	default:
		return disassembleGroup3(opcode, d, rp)
	}
}

// disassembleGroup0 covers opcodes with bits 7-6 == 00: NOP family,
// register-pair loads/arithmetic, STAX/LDAX, INR/DCR/MVI, rotates and the
// handful of 16-bit memory/accumulator instructions.
func disassembleGroup0(opcode, d, rp byte) (string, int) {
	switch opcode & 0x7 {
	case 0x0:
		return "NOP", 1
	case 0x1:
		if opcode&0x8 == 0 {
			return fmt.Sprintf("LXI %s,#", pairNames[rp]), 3
		}
		return fmt.Sprintf("DAD %s", pairNames[rp]), 1
	case 0x2:
		switch opcode >> 3 {
		case 0b000:
			return "STAX B", 1
		case 0b010:
			return "STAX D", 1
		case 0b001:
			return "LDAX B", 1
		case 0b011:
			return "LDAX D", 1
		case 0b100:
			return "SHLD", 3
		case 0b101:
			return "LHLD", 3
		case 0b110:
			return "STA", 3
		default:
			return "LDA", 3
		}
	case 0x3:
		if opcode&0x8 == 0 {
			return fmt.Sprintf("INX %s", pairNames[rp]), 1
		}
		return fmt.Sprintf("DCX %s", pairNames[rp]), 1
	case 0x4:
		return fmt.Sprintf("INR %s", regNames[d]), 1
	case 0x5:
		return fmt.Sprintf("DCR %s", regNames[d]), 1
	case 0x6:
		return fmt.Sprintf("MVI %s,#", regNames[d]), 2
	default:
		switch opcode >> 3 {
		case 0b000:
			return "RLC", 1
		case 0b001:
			return "RRC", 1
		case 0b010:
			return "RAL", 1
		case 0b011:
			return "RAR", 1
		case 0b100:
			return "DAA", 1
		case 0b101:
			return "CMA", 1
		case 0b110:
			return "STC", 1
		default:
			return "CMC", 1
		}
	}
}

// disassembleGroup3 covers opcodes with bits 7-6 == 11: conditional
// returns/jumps/calls, PUSH/POP, RST, immediate ALU ops and the remaining
// control/IO instructions.
func disassembleGroup3(opcode, d, rp byte) (string, int) {
	switch opcode & 0x7 {
	case 0x0:
		return fmt.Sprintf("R%s", condNames[d]), 1
	case 0x1:
		switch (opcode >> 3) & 0x7 {
		case 0b001:
			return "RET", 1
		case 0b011:
			return "RET", 1 // undocumented alias of RET
		case 0b101:
			return "PCHL", 1
		case 0b111:
			return "SPHL", 1
		default:
			return fmt.Sprintf("POP %s", pairNamesPSW[rp]), 1
		}
	case 0x2:
		return fmt.Sprintf("J%s", condNames[d]), 3
	case 0x3:
		switch (opcode >> 3) & 0x7 {
		case 0b000:
			return "JMP", 3
		case 0b001:
			return "JMP", 3 // undocumented alias of JMP
		case 0b010:
			return "OUT #", 2
		case 0b011:
			return "IN #", 2
		case 0b100:
			return "XTHL", 1
		case 0b101:
			return "XCHG", 1
		case 0b110:
			return "DI", 1
		default:
			return "EI", 1
		}
	case 0x4:
		return fmt.Sprintf("C%s", condNames[d]), 3
	case 0x5:
		switch (opcode >> 3) & 0x7 {
		case 0b001:
			return "CALL", 3
		case 0b011, 0b101, 0b111:
			return "CALL", 3 // undocumented aliases of CALL
		default:
			return fmt.Sprintf("PUSH %s", pairNamesPSW[rp]), 1
		}
	case 0x6:
		name := [8]string{"ADI", "ACI", "SUI", "SBI", "ANI", "XRI", "ORI", "CPI"}[d]
		return fmt.Sprintf("%s #", name), 2
	default:
		return fmt.Sprintf("RST %d", d), 1
	}
}
