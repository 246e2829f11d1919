package pcg815

import "fmt"

// PortDirection describes which bus operations a port record participates in.
type PortDirection int

const (
	PortRead PortDirection = iota
	PortWrite
	PortReadWrite
)

// MemoryRegion is one tile of the 16-bit address space.
type MemoryRegion struct {
	Name     string
	Start    uint16
	End      uint16 // inclusive
	Writable bool
}

// PortSpec is one entry of the static I/O port table. Evidence names the
// behavior paragraph the record is grounded on; the validator rejects any
// record that omits it.
type PortSpec struct {
	Port        byte
	Name        string
	Direction   PortDirection
	Behavior    string
	DefaultRead byte
	Evidence    string
}

// unknownPortRead is the value returned for any port not present in
// portTable, and the read value most port records that have no defined
// content default to.
const unknownPortRead byte = 0x78

// displayStartLineAddr is the work-area byte whose low 5 bits hold the
// vertical-scroll display start line.
const displayStartLineAddr uint16 = 0x790D

var memoryRegions = []MemoryRegion{
	{Name: "ram", Start: 0x0000, End: 0x7FFF, Writable: true},
	{Name: "system-rom", Start: 0x8000, End: 0xBFFF, Writable: false},
	{Name: "banked-rom", Start: 0xC000, End: 0xFFFF, Writable: false},
}

var portRecords = []PortSpec{
	{Port: 0x10, Name: "kbd-row", Direction: PortRead, Behavior: "keyboard", DefaultRead: unknownPortRead, Evidence: "4.2 keyboard: reading 0x10 ORs row_state"},
	{Port: 0x11, Name: "kbd-strobe-lo", Direction: PortReadWrite, Behavior: "keyboard", DefaultRead: 0, Evidence: "4.2 keyboard: writing 0x11/0x12 updates strobe halves"},
	{Port: 0x12, Name: "kbd-strobe-hi", Direction: PortReadWrite, Behavior: "keyboard", DefaultRead: 0, Evidence: "4.2 keyboard + 4.6 ASCII FIFO drained by reads of port 0x12"},
	{Port: 0x13, Name: "kbd-shift", Direction: PortRead, Behavior: "keyboard", DefaultRead: 0, Evidence: "4.2 keyboard: reading 0x13 returns shift bit"},

	{Port: 0x14, Name: "timer", Direction: PortReadWrite, Behavior: "system", DefaultRead: 0, Evidence: "4.2 system: 0x14 read=timer, write clears"},
	{Port: 0x15, Name: "xin-enable", Direction: PortReadWrite, Behavior: "system", DefaultRead: 0, Evidence: "4.2 system: 0x15 bit7 = Xin enable"},
	{Port: 0x16, Name: "irq-type", Direction: PortReadWrite, Behavior: "system", DefaultRead: 0, Evidence: "4.2 system: 0x16 interrupt-type, write-1-to-clear"},
	{Port: 0x17, Name: "irq-mask", Direction: PortReadWrite, Behavior: "system", DefaultRead: 0, Evidence: "4.2 system: 0x17 interrupt mask"},
	{Port: 0x18, Name: "pin11-out", Direction: PortReadWrite, Behavior: "system", DefaultRead: 0, Evidence: "4.2 system: 0x18 pin-11 output bits mask 0xC3"},
	{Port: 0x1A, Name: "sys-ctrl-1a", Direction: PortReadWrite, Behavior: "system", DefaultRead: unknownPortRead, Evidence: "4.2 system: 0x1A/0x1C/0x1E accept bits"},
	{Port: 0x1C, Name: "sys-ctrl-1c", Direction: PortReadWrite, Behavior: "system", DefaultRead: unknownPortRead, Evidence: "4.2 system: 0x1A/0x1C/0x1E accept bits"},
	{Port: 0x1D, Name: "sys-ctrl-1d", Direction: PortReadWrite, Behavior: "system", DefaultRead: 0, Evidence: "4.2 system: 0x1D reads 0"},
	{Port: 0x1E, Name: "sys-ctrl-1e", Direction: PortReadWrite, Behavior: "system", DefaultRead: unknownPortRead, Evidence: "4.2 system: 0x1A/0x1C/0x1E accept bits"},
	{Port: 0x1F, Name: "pin11-in", Direction: PortRead, Behavior: "system", DefaultRead: 0, Evidence: "4.2 system: 0x1F composes pin-11 input bits via Xin gate"},

	{Port: 0x19, Name: "rom-bank", Direction: PortReadWrite, Behavior: "bank", DefaultRead: 0, Evidence: "4.2 bank: 0x19 packs ex_rom_bank/rom_bank"},
	{Port: 0x1B, Name: "ram-bank", Direction: PortReadWrite, Behavior: "bank", DefaultRead: 0, Evidence: "4.2 bank: 0x1B latches RAM-bank bit"},

	{Port: 0x50, Name: "lcd-dual-cmd", Direction: PortWrite, Behavior: "lcd-dual", DefaultRead: unknownPortRead, Evidence: "4.3 dual-write broadcasts cmd to both panels"},
	{Port: 0x51, Name: "lcd-dual-status", Direction: PortRead, Behavior: "lcd-dual", DefaultRead: 0, Evidence: "4.3 status reads on 0x51/0x55/0x59 return 0"},
	{Port: 0x52, Name: "lcd-dual-data", Direction: PortWrite, Behavior: "lcd-dual", DefaultRead: unknownPortRead, Evidence: "4.3 dual-write broadcasts data to both panels, S2"},

	{Port: 0x54, Name: "lcd-secondary-cmd", Direction: PortWrite, Behavior: "lcd-secondary", DefaultRead: unknownPortRead, Evidence: "4.3 secondary (0x54/0x56/0x57)"},
	{Port: 0x55, Name: "lcd-secondary-status", Direction: PortRead, Behavior: "lcd-secondary", DefaultRead: 0, Evidence: "4.3 status reads on 0x51/0x55/0x59 return 0"},
	{Port: 0x56, Name: "lcd-secondary-data-write", Direction: PortWrite, Behavior: "lcd-secondary", DefaultRead: unknownPortRead, Evidence: "4.3 secondary (0x54/0x56/0x57)"},
	{Port: 0x57, Name: "lcd-secondary-data-read", Direction: PortRead, Behavior: "lcd-secondary", DefaultRead: 0, Evidence: "S2: in8(0x57) dummy-first then last dual-written byte"},

	{Port: 0x58, Name: "lcd-primary-cmd", Direction: PortWrite, Behavior: "lcd-primary", DefaultRead: unknownPortRead, Evidence: "4.3 primary (0x58 cmd, 0x5A data, 0x5B read), S1"},
	{Port: 0x59, Name: "lcd-primary-status", Direction: PortRead, Behavior: "lcd-primary", DefaultRead: 0, Evidence: "4.3 status reads on 0x51/0x55/0x59 return 0"},
	{Port: 0x5A, Name: "lcd-primary-data-write", Direction: PortWrite, Behavior: "lcd-primary", DefaultRead: unknownPortRead, Evidence: "S1: out8(0x5A, 0x41)"},
	{Port: 0x5B, Name: "lcd-primary-data-read", Direction: PortRead, Behavior: "lcd-primary", DefaultRead: 0, Evidence: "S2: in8(0x5B) dummy-first then dual-written byte"},
}

var portTable map[byte]PortSpec

func init() {
	if err := validateHardwareMap(); err != nil {
		panic(fmt.Sprintf("pcg815: invalid hardware map: %v", err))
	}
	portTable = make(map[byte]PortSpec, len(portRecords))
	for _, p := range portRecords {
		portTable[p.Port] = p
	}
}

// validateHardwareMap checks the invariants spec.md §4.1 requires of the
// static region and port tables: regions tile the full address space with
// no gap or overlap, no port number repeats, every record carries its
// grounding evidence, and the display-start-line work address falls
// inside a writable region.
func validateHardwareMap() error {
	if len(memoryRegions) == 0 {
		return fmt.Errorf("no memory regions declared")
	}
	var cursor uint32
	for i, r := range memoryRegions {
		if r.Start > r.End {
			return fmt.Errorf("region %q: start 0x%04X > end 0x%04X", r.Name, r.Start, r.End)
		}
		if uint32(r.Start) != cursor {
			return fmt.Errorf("region %q: expected start 0x%04X, got 0x%04X (gap or overlap)", r.Name, cursor, r.Start)
		}
		cursor = uint32(r.End) + 1
		_ = i
	}
	if cursor != 0x10000 {
		return fmt.Errorf("regions cover up to 0x%04X, expected 0x10000", cursor)
	}

	seen := make(map[byte]string, len(portRecords))
	for _, p := range portRecords {
		if p.Evidence == "" {
			return fmt.Errorf("port 0x%02X (%s): missing evidence", p.Port, p.Name)
		}
		if prior, dup := seen[p.Port]; dup {
			return fmt.Errorf("port 0x%02X declared twice: %q and %q", p.Port, prior, p.Name)
		}
		seen[p.Port] = p.Name
	}

	if !addressInWritableRegion(displayStartLineAddr) {
		return fmt.Errorf("work-area address 0x%04X does not lie inside a writable region", displayStartLineAddr)
	}
	return nil
}

func addressInWritableRegion(addr uint16) bool {
	for _, r := range memoryRegions {
		if addr >= r.Start && addr <= r.End {
			return r.Writable
		}
	}
	return false
}

func regionFor(addr uint16) MemoryRegion {
	for _, r := range memoryRegions {
		if addr >= r.Start && addr <= r.End {
			return r
		}
	}
	// unreachable: validateHardwareMap guarantees full coverage.
	return MemoryRegion{}
}
