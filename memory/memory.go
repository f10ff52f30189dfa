// Package memory implements the cabinet's 16 KiB flat address space: an
// immutable 8 KiB ROM bank followed by 8 KiB of RAM, the tail of which is
// also the video buffer the machine snapshots for the renderer.
package memory

const (
	// RomSize is the size of the ROM bank at the bottom of the address space.
	RomSize = 0x2000
	// RamSize is the size of the RAM bank, including the video region.
	RamSize = 0x2000
	// Size is the full addressable range; reads above this return 0.
	Size = RomSize + RamSize

	// VideoStart is the address where the video region begins within RAM.
	VideoStart = 0x2400
	// VideoSize is the number of video bytes (224 columns x 32 bytes per column).
	VideoSize = 0x1C00
)

// Memory is the cabinet's address space: ROM at 0x0000-0x1FFF, RAM at
// 0x2000-0x3FFF, everything else unmapped.
type Memory struct {
	rom [RomSize]byte
	ram [RamSize]byte
}

// New builds a Memory with rom copied into the ROM bank. If rom is shorter
// than RomSize the remainder stays zeroed; if longer, the tail is ignored.
func New(rom []byte) *Memory {
	m := &Memory{}
	copy(m.rom[:], rom)
	return m
}

// Read returns the byte at addr. Addresses at or above Size read as 0.
func (m *Memory) Read(addr uint16) byte {
	switch {
	case addr < RomSize:
		return m.rom[addr]
	case addr < Size:
		return m.ram[addr-RomSize]
	default:
		return 0
	}
}

// Read16 returns the little-endian 16-bit value at addr, addr+1.
func (m *Memory) Read16(addr uint16) uint16 {
	lo := m.Read(addr)
	hi := m.Read(addr + 1)
	return uint16(hi)<<8 | uint16(lo)
}

// Write stores db at addr. Writes below RomSize (ROM) and at/above Size are
// silently discarded; the instruction stream cannot self-modify.
func (m *Memory) Write(addr uint16, db byte) {
	if addr >= RomSize && addr < Size {
		m.ram[addr-RomSize] = db
	}
}

// SnapshotVideo copies the video region into dst. dst must be at least
// VideoSize bytes; only the first VideoSize bytes are written.
func (m *Memory) SnapshotVideo(dst []byte) {
	start := VideoStart - RomSize
	copy(dst, m.ram[start:start+VideoSize])
}
