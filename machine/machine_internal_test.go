package machine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dkasak/invaders8080/memory"
)

// TestInterruptScheduleFiresThirtyTimesPerMillionCycles checks the frame
// schedule directly against tickInterrupts: over any 1,000,000-cycle window,
// exactly 30 interrupts are injected (60 per simulated second), alternating
// RST 1 (mid-screen) and RST 2 (end-of-screen).
func TestInterruptScheduleFiresThirtyTimesPerMillionCycles(t *testing.T) {
	m := New(memory.New(nil))

	var rst1, rst2 int
	const step = 4 // one NOP's worth of cycles per iteration
	for total := 0; total < 1_000_000; total += step {
		m.CPU.IE = true // keep interrupts enabled regardless of ROM behaviour
		if m.tickInterrupts(step) {
			switch m.CPU.PC {
			case 0x0008:
				rst1++
			case 0x0010:
				rst2++
			default:
				t.Fatalf("interrupt jumped to unexpected vector 0x%04X", m.CPU.PC)
			}
		}
	}

	require.Equal(t, 15, rst1)
	require.Equal(t, 15, rst2)
	require.Equal(t, 30, rst1+rst2)
}
