package pcg815

import "github.com/sirupsen/logrus"

// bus implements the CPU-facing memory/IO dispatch of spec.md §4.2: region
// decode over the three static memory regions, bank switching for the
// banked ROM window, and port dispatch driven by hardware_map.go's static
// table. It satisfies the pcg815.Bus interface the CPU core calls during
// Step/RunCycles.
type bus struct {
	ram        [0x8000]byte
	systemROM  [0x4000]byte
	bankedROM  [][0x4000]byte // indexed by rom_bank (0-15); an unpopulated bank reads as zeros
	exBankedROM [][0x4000]byte // ex_rom_bank (0-7) selects a higher bank group

	romBank   byte // low 4 bits of port 0x19
	exRomBank byte // bits 4-6 of port 0x19
	ramBank   byte // bit 2 of port 0x1B

	timer     byte
	xinEnable bool
	irqType   byte
	irqMask   byte
	pin11Out  byte
	pin11InHook func() byte

	kb  *keyboard
	lcd *lcdController

	elapsedTStates uint64

	log *logrus.Logger
}

func newBus(log *logrus.Logger) *bus {
	if log == nil {
		log = logrus.New()
		log.SetOutput(discardWriter{})
	}
	b := &bus{log: log, pin11InHook: func() byte { return 0 }}
	b.lcd = newLCDController(b)
	return b
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

// displayStartLine / setDisplayStartLine implement the workArea interface
// lcd.go needs to reach the dual-homed 0x790D byte.
func (b *bus) displayStartLine() byte     { return b.ram[displayStartLineAddr] }
func (b *bus) setDisplayStartLine(v byte) { b.ram[displayStartLineAddr] = v }

// Read implements pcg815.Bus.
func (b *bus) Read(addr uint16) byte {
	r := regionFor(addr)
	switch r.Name {
	case "ram":
		return b.ram[addr]
	case "system-rom":
		return b.systemROM[addr-r.Start]
	case "banked-rom":
		bank := b.activeBankedROM()
		return bank[addr-r.Start]
	}
	return 0
}

// Write implements pcg815.Bus. Writes outside RAM are silently dropped.
func (b *bus) Write(addr uint16, value byte) {
	r := regionFor(addr)
	if !r.Writable {
		return
	}
	b.ram[addr] = value
	if addr == displayStartLineAddr {
		b.lcd.dirty = true
	}
}

func (b *bus) activeBankedROM() [0x4000]byte {
	if int(b.exRomBank) < len(b.exBankedROM) && b.exRomBank != 0 {
		return b.exBankedROM[b.exRomBank]
	}
	if int(b.romBank) < len(b.bankedROM) {
		return b.bankedROM[b.romBank]
	}
	return [0x4000]byte{}
}

// In implements pcg815.Bus: port I/O dispatch per hardware_map.go's table.
func (b *bus) In(port uint16) byte {
	p := byte(port)
	switch p {
	case 0x10:
		return b.kb.readRowPort()
	case 0x11, 0x12:
		if p == 0x12 {
			if v := b.kb.readFIFO(); v != 0 {
				return v
			}
		}
		return 0
	case 0x13:
		return b.kb.readShiftPort()
	case 0x14:
		return b.timer
	case 0x15:
		if b.xinEnable {
			return 0x80
		}
		return 0
	case 0x16:
		return b.irqType
	case 0x17:
		return b.irqMask
	case 0x18:
		return b.pin11Out
	case 0x1A, 0x1C, 0x1E:
		return unknownPortRead
	case 0x1D:
		return 0
	case 0x1F:
		return b.readPin11Composed()
	case 0x19:
		return b.exRomBank<<4 | b.romBank
	case 0x1B:
		return b.ramBank << 2
	case 0x50, 0x52, 0x54, 0x56, 0x58, 0x5A:
		return unknownPortRead
	case 0x51, 0x55, 0x59:
		return 0
	case 0x57:
		return b.lcd.readData(lcdSecondaryGroup)
	case 0x5B:
		return b.lcd.readData(lcdPrimaryGroup)
	}
	spec, ok := portTable[p]
	if !ok {
		return unknownPortRead
	}
	return spec.DefaultRead
}

// readPin11Composed implements Open Question 2's decision (SPEC_FULL.md §6):
// a pure function of current 0x15 state and the input hook, recomputed on
// every read with no latching.
func (b *bus) readPin11Composed() byte {
	if !b.xinEnable {
		return 0
	}
	return b.pin11InHook()
}

// Out implements pcg815.Bus: port I/O dispatch per hardware_map.go's table.
func (b *bus) Out(port uint16, value byte) {
	p := byte(port)
	switch p {
	case 0x11:
		b.kb.strobe = (b.kb.strobe &^ 0x00FF) | uint16(value)
		if value&0x10 != 0 {
			b.irqType |= 0x10
		}
	case 0x12:
		b.kb.strobe = (b.kb.strobe &^ 0xFF00) | uint16(value)<<8
	case 0x14:
		b.timer = 0
	case 0x15:
		b.xinEnable = value&0x80 != 0
	case 0x16:
		b.irqType &^= value
	case 0x17:
		b.irqMask = value
	case 0x18:
		b.pin11Out = value & 0xC3
	case 0x1A, 0x1C, 0x1D, 0x1E:
		// accepted, no further behavior specified
	case 0x19:
		b.exRomBank = (value >> 4) & 0x07
		b.romBank = value & 0x0F
	case 0x1B:
		b.ramBank = (value >> 2) & 0x01
	case 0x50:
		b.lcd.writeCommand(lcdDualGroup, value)
	case 0x52:
		b.lcd.writeData(lcdDualGroup, value)
	case 0x54:
		b.lcd.writeCommand(lcdSecondaryGroup, value)
	case 0x56:
		b.lcd.writeData(lcdSecondaryGroup, value)
	case 0x58:
		b.lcd.writeCommand(lcdPrimaryGroup, value)
	case 0x5A:
		b.lcd.writeData(lcdPrimaryGroup, value)
	}
}

// Tick implements pcg815.Bus: the elapsed-T-states counter spec.md §4.2/§4.7
// requires for snapshot's timestamp_t_states.
func (b *bus) Tick(cycles int) {
	b.elapsedTStates += uint64(cycles)
}
