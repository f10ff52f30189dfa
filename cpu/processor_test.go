package cpu_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dkasak/invaders8080/cpu"
	"github.com/dkasak/invaders8080/memory"
)

func newProc(rom []byte) *cpu.Processor {
	return cpu.New(memory.New(rom))
}

func TestAddWraps(t *testing.T) {
	rom := []byte{0x80} // ADD B
	p := newProc(rom)
	p.A = 0xC8
	p.B = 0x58
	p.Execute()

	require.Equal(t, byte(0x20), p.A)
	require.True(t, p.Flags.CY)
	require.False(t, p.Flags.Z)
	require.False(t, p.Flags.S)
	require.False(t, p.Flags.P)
}

func TestSubBorrow(t *testing.T) {
	rom := []byte{0x90} // SUB B
	p := newProc(rom)
	p.A = 0x14
	p.B = 0x58
	p.Execute()

	require.Equal(t, byte(0xBC), p.A)
	require.True(t, p.Flags.CY)
	require.True(t, p.Flags.S)
	require.False(t, p.Flags.Z)
}

func TestCmpLeavesAUnchanged(t *testing.T) {
	rom := []byte{0xB8} // CMP B
	p := newProc(rom)
	p.A = 0x05
	p.B = 0x05
	p.Execute()

	require.Equal(t, byte(0x05), p.A)
	require.True(t, p.Flags.Z)
	require.False(t, p.Flags.CY)
}

func TestRlcRotatesThroughCarry(t *testing.T) {
	rom := []byte{0x07} // RLC
	p := newProc(rom)
	p.A = 0x80
	p.Execute()

	require.Equal(t, byte(0x01), p.A)
	require.True(t, p.Flags.CY)
}

func TestRrcRotatesThroughCarry(t *testing.T) {
	rom := []byte{0x0F} // RRC
	p := newProc(rom)
	p.A = 0x01
	p.Execute()

	require.Equal(t, byte(0x80), p.A)
	require.True(t, p.Flags.CY)
}

func TestRalUsesOldCarry(t *testing.T) {
	rom := []byte{0x17} // RAL
	p := newProc(rom)
	p.A = 0x80
	p.Flags.CY = true
	p.Execute()

	require.Equal(t, byte(0x01), p.A)
	require.True(t, p.Flags.CY)
}

func TestRalRarRoundTrip(t *testing.T) {
	rom := []byte{0x17, 0x1F} // RAL; RAR
	p := newProc(rom)
	p.A = 0x80

	p.Execute()
	require.Equal(t, byte(0x00), p.A)
	require.True(t, p.Flags.CY)

	p.Execute()
	require.Equal(t, byte(0x80), p.A)
	require.False(t, p.Flags.CY)
}

func TestInxDcxDoNotTouchFlags(t *testing.T) {
	rom := []byte{0x03, 0x0B} // INX B; DCX B
	p := newProc(rom)
	p.Flags.Z = true
	p.B, p.C = 0x00, 0xFF
	p.Execute()

	require.Equal(t, byte(0x01), p.B)
	require.Equal(t, byte(0x00), p.C)
	require.True(t, p.Flags.Z)

	p.Execute()
	require.Equal(t, byte(0x00), p.B)
	require.Equal(t, byte(0xFF), p.C)
	require.True(t, p.Flags.Z)
}

func TestInxDcxRoundTrip(t *testing.T) {
	rom := []byte{0x13, 0x1B} // INX D; DCX D
	p := newProc(rom)
	p.D, p.E = 0xFF, 0xFF
	p.Flags.CY = true
	p.Execute()
	p.Execute()

	require.Equal(t, byte(0xFF), p.D)
	require.Equal(t, byte(0xFF), p.E)
	require.True(t, p.Flags.CY)
}

func TestDadOnlyChangesCarry(t *testing.T) {
	rom := []byte{0x09} // DAD B
	p := newProc(rom)
	p.H, p.L = 0xFF, 0xFF
	p.B, p.C = 0x00, 0x01
	p.Flags.Z = true
	p.Execute()

	require.Equal(t, byte(0x00), p.H)
	require.Equal(t, byte(0x00), p.L)
	require.True(t, p.Flags.CY)
	require.True(t, p.Flags.Z)
}

func TestAluFlagsFollowResult(t *testing.T) {
	// Z, S and P are pure functions of the result byte; exercise ADD B over
	// a spread sample of the operand space to pin that down.
	rom := []byte{0x80} // ADD B
	for a := 0; a < 256; a += 7 {
		for b := 0; b < 256; b += 11 {
			p := newProc(rom)
			p.A = byte(a)
			p.B = byte(b)
			p.Execute()

			result := p.A
			require.Equal(t, byte(a+b), result)
			require.Equal(t, result == 0, p.Flags.Z)
			require.Equal(t, result&0x80 != 0, p.Flags.S)
			require.Equal(t, popcount(result)%2 == 0, p.Flags.P)
			require.Equal(t, a+b > 0xFF, p.Flags.CY)
		}
	}
}

func popcount(b byte) int {
	n := 0
	for ; b != 0; b >>= 1 {
		n += int(b & 1)
	}
	return n
}

func TestCmpMatchesSuiFlags(t *testing.T) {
	for _, operand := range []byte{0x00, 0x01, 0x57, 0x58, 0x59, 0x80, 0xFF} {
		cmpROM := []byte{0xFE, operand} // CPI operand
		suiROM := []byte{0xD6, operand} // SUI operand

		pc := newProc(cmpROM)
		ps := newProc(suiROM)
		pc.A, ps.A = 0x58, 0x58
		pc.Execute()
		ps.Execute()

		require.Equal(t, ps.Flags, pc.Flags, "operand 0x%02X", operand)
		require.Equal(t, byte(0x58), pc.A, "CMP must preserve A")
	}
}

func TestPushPopPairRoundTrip(t *testing.T) {
	rom := []byte{0xC5, 0xC1} // PUSH B; POP B
	p := newProc(rom)
	p.SP = 0x2400
	p.B, p.C = 0x12, 0x34
	p.Execute()

	p.B, p.C = 0, 0
	p.Execute()

	require.Equal(t, byte(0x12), p.B)
	require.Equal(t, byte(0x34), p.C)
	require.Equal(t, uint16(0x2400), p.SP)
}

func TestPushPopPSWRoundTrip(t *testing.T) {
	rom := []byte{0xF5, 0xF1} // PUSH PSW; POP PSW
	p := newProc(rom)
	p.SP = 0x2400
	p.A = 0xA5
	p.Flags.S, p.Flags.Z, p.Flags.AC, p.Flags.P, p.Flags.CY = true, false, true, true, false
	p.Execute()

	p.A = 0
	p.Flags = cpu.Flags{}
	p.Execute()

	require.Equal(t, byte(0xA5), p.A)
	require.Equal(t, cpu.Flags{S: true, Z: false, AC: true, P: true, CY: false}, p.Flags)
}

func TestCallRetRestoresPC(t *testing.T) {
	rom := make([]byte, 0x10)
	rom[0] = 0xCD // CALL 0x0008
	rom[1] = 0x08
	rom[2] = 0x00
	rom[8] = 0xC9 // RET
	p := newProc(rom)
	p.SP = 0x2400
	p.Execute() // CALL
	require.Equal(t, uint16(0x0008), p.PC)
	p.Execute() // RET
	require.Equal(t, uint16(0x0003), p.PC)
}

func TestInterruptPushesPCAndJumps(t *testing.T) {
	p := newProc(nil)
	p.IE = true
	p.PC = 0x1234
	p.SP = 0x2400

	p.Interrupt(2)

	require.Equal(t, byte(0x34), p.Mem.Read(0x23FE))
	require.Equal(t, byte(0x12), p.Mem.Read(0x23FF))
	require.Equal(t, uint16(0x23FE), p.SP)
	require.Equal(t, uint16(0x0010), p.PC)
	require.False(t, p.IE)

	p.Interrupt(1) // IE now false: no-op
	require.Equal(t, uint16(0x0010), p.PC)
}

func TestHaltStallsUntilInterrupt(t *testing.T) {
	rom := []byte{0x76} // HLT
	p := newProc(rom)
	p.Execute()
	require.True(t, p.Halted)

	cycles := p.Execute()
	require.Equal(t, 7, cycles)
	require.True(t, p.Halted)

	p.IE = true
	p.Interrupt(1)
	require.False(t, p.Halted)
}

func TestDecoderIsTotal(t *testing.T) {
	for op := 0; op < 256; op++ {
		rom := make([]byte, 4)
		rom[0] = byte(op)
		p := newProc(rom)
		p.SP = 0x2400
		cycles := p.Execute()
		require.Greater(t, cycles, 0, "opcode 0x%02X returned non-positive cycles", op)
	}
}

func TestUndocumentedAliases(t *testing.T) {
	cases := []struct {
		opcode byte
		want   string
	}{
		{0x08, "NOP"}, {0x10, "NOP"}, {0x18, "NOP"}, {0x20, "NOP"},
		{0x28, "NOP"}, {0x30, "NOP"}, {0x38, "NOP"},
	}
	for _, c := range cases {
		rom := []byte{c.opcode}
		p := newProc(rom)
		p.Execute()
		require.Equal(t, uint16(1), p.PC, "opcode 0x%02X should act as NOP", c.opcode)
	}

	// 0xCB aliases JMP, 0xD9 aliases RET, 0xDD/0xED/0xFD alias CALL.
	rom := []byte{0xCB, 0x00, 0x10}
	p := newProc(rom)
	p.Execute()
	require.Equal(t, uint16(0x1000), p.PC)
}
