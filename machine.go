package pcg815

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// MachineOptions configures NewMachine: an optional firmware image seeding
// the ROM windows, the CPU's unsupported-opcode fault policy, and an
// optional logger (a discard logger is used when nil, per SPEC_FULL.md §2).
type MachineOptions struct {
	ROM              []byte
	StrictCPUOpcodes bool
	Logger           *logrus.Logger
}

// Machine ties the CPU, bus, LCD, keyboard, and BASIC runtime together and
// drives the step loop of spec.md §4.7. It implements basicAdapter itself
// so the runtime never holds a reference back to the machine, only to this
// interface — the cyclic-reference resolution spec.md §9 calls for.
type Machine struct {
	bus   *bus
	cpu   *CPU
	basic *basicRuntime
	log   *logrus.Logger

	lastFault string
}

// NewMachine constructs a machine with RAM, ROM (seeded from opts.ROM or
// left zeroed), VRAM, keyboard, FIFO, kana composer, bank registers, LCD
// state machines, the CPU wired to the bus, and the BASIC runtime wired to
// this machine as its adapter.
func NewMachine(opts MachineOptions) *Machine {
	b := newBus(opts.Logger)
	seedROM(b, opts.ROM)
	m := &Machine{bus: b, log: b.log}
	m.basic = newBasicRuntime(m)
	b.kb = newKeyboard(m.basic)
	m.cpu = NewCPU(b)
	m.cpu.StrictOpcodes = opts.StrictCPUOpcodes
	m.log.WithFields(logrus.Fields{
		"rom_bytes":      len(opts.ROM),
		"strict_opcodes": opts.StrictCPUOpcodes,
	}).Info("machine constructed")
	return m
}

// seedROM splits a firmware image into the system ROM window (the first
// 0x4000 bytes) and successive 0x4000-byte banked-ROM windows (up to 16
// directly selectable by port 0x19's low nibble, then up to 7 more
// selected by ex-bank field values 1-7), per spec.md §3's memory map. A
// short or absent image leaves the remainder zero-filled.
func seedROM(b *bus, rom []byte) {
	b.bankedROM = nil
	b.exBankedROM = nil
	if len(rom) > 0x4000 {
		copy(b.systemROM[:], rom[:0x4000])
	} else {
		copy(b.systemROM[:], rom)
	}
	var rest []byte
	if len(rom) > 0x4000 {
		rest = rom[0x4000:]
	}
	for len(rest) > 0 && len(b.bankedROM) < 16 {
		var bank [0x4000]byte
		n := copy(bank[:], rest)
		b.bankedROM = append(b.bankedROM, bank)
		rest = rest[n:]
	}
	if len(rest) > 0 {
		// Ex-bank field value 0 selects the directly addressed banks, so
		// slot 0 of the ex group is a placeholder that is never read.
		b.exBankedROM = [][0x4000]byte{{}}
	}
	for len(rest) > 0 && len(b.exBankedROM) < 8 {
		var bank [0x4000]byte
		n := copy(bank[:], rest)
		b.exBankedROM = append(b.exBankedROM, bank)
		rest = rest[n:]
	}
	if len(b.bankedROM) == 0 {
		b.bankedROM = [][0x4000]byte{{}}
	}
}

// basicAdapter implementation — the callback surface the BASIC runtime
// uses to affect the outside world without holding a back-reference.

func (m *Machine) clearLCD()                    { m.bus.lcd.clear() }
func (m *Machine) setTextCursor(col, row int)   { m.bus.lcd.setTextCursor(col, row) }
func (m *Machine) setDisplayStartLine(v byte)   { m.bus.setDisplayStartLine(v); m.bus.lcd.dirty = true }
func (m *Machine) getDisplayStartLine() byte    { return m.bus.displayStartLine() }
func (m *Machine) in8(port byte) byte           { return m.bus.In(uint16(port)) }
func (m *Machine) out8(port byte, v byte)       { m.bus.Out(uint16(port), v) }
func (m *Machine) peek8(addr uint16) byte       { return m.bus.Read(addr) }
func (m *Machine) poke8(addr uint16, v byte)    { m.bus.Write(addr, v) }

func (m *Machine) readKeyMatrix(row int) byte {
	if row < 0 || row > 7 {
		return 0xFF
	}
	return m.bus.kb.rowState[row]
}

// sleepMs is a no-op in the default wiring: spec.md §5 says nothing inside
// the core blocks, so WAIT/BEEP never stall the host.
func (m *Machine) sleepMs(n int) {}

func (m *Machine) warnf(format string, args ...any) { m.log.Warnf(format, args...) }

// Reset implements spec.md §4.7/§3: a cold reset re-seeds RAM to zero (the
// ROM windows are immutable and need no re-seeding); either way VRAM,
// queues, the key matrix, and the CPU reset.
func (m *Machine) Reset(cold bool) {
	if cold {
		for i := range m.bus.ram {
			m.bus.ram[i] = 0
		}
	}
	m.bus.lcd.clear()
	m.bus.kb = newKeyboard(m.basic)
	m.bus.romBank = 0
	m.bus.exRomBank = 0
	m.bus.ramBank = 0
	m.bus.timer = 0
	m.bus.xinEnable = false
	m.bus.irqType = 0
	m.bus.irqMask = 0
	m.bus.pin11Out = 0
	m.bus.elapsedTStates = 0
	m.lastFault = ""
	m.cpu.Reset()
}

// Tick runs the five-step sequence of spec.md §4.7: advance the CPU,
// pump the BASIC runtime, drain its output queue into the LCD, and clear
// the ASCII FIFO if the run-state transitioned across the tick.
func (m *Machine) Tick(n int) {
	wasRunning := m.basic.isProgramRunning()
	m.cpu.RunCycles(n)
	if m.cpu.Fault != "" && m.cpu.Fault != m.lastFault {
		m.log.WithField("fault", m.cpu.Fault).Warn("cpu halted on unsupported opcode")
	}
	m.lastFault = m.cpu.Fault
	m.basic.pump()
	for {
		c := m.basic.popOutputChar()
		if c == 0 {
			break
		}
		m.bus.lcd.writeData(lcdPrimaryGroup, c)
	}
	if m.basic.isProgramRunning() != wasRunning {
		m.bus.kb.clearFIFO()
	}
}

func (m *Machine) SetKeyState(code string, pressed bool) { m.bus.kb.setKeyState(code, pressed) }
func (m *Machine) SetKanaMode(on bool)                    { m.bus.kb.kanaMode = on }
func (m *Machine) GetKanaMode() bool                      { return m.bus.kb.kanaMode }

func (m *Machine) GetFrameBuffer() [graphicsWidth * graphicsHeight]byte { return m.bus.lcd.render() }
func (m *Machine) GetTextLines() [lcdRows]string                       { return m.bus.lcd.textLines() }

// CPUState is a read-only snapshot of the CPU's architectural registers
// for spec.md §6's get_cpu_state() operation.
type CPUState struct {
	A, F, B, C, D, E, H, L          byte
	A2, F2, B2, C2, D2, E2, H2, L2 byte
	IX, IY, SP, PC                  uint16
	I, R, IM                        byte
	IFF1, IFF2                      bool
	Halted                          bool
	TStates                         uint64
	Fault                           string
}

func (m *Machine) GetCPUState() CPUState {
	c := m.cpu
	return CPUState{
		A: c.A, F: c.F, B: c.B, C: c.C, D: c.D, E: c.E, H: c.H, L: c.L,
		A2: c.A2, F2: c.F2, B2: c.B2, C2: c.C2, D2: c.D2, E2: c.E2, H2: c.H2, L2: c.L2,
		IX: c.IX, IY: c.IY, SP: c.SP, PC: c.PC,
		I: c.I, R: c.R, IM: c.IM,
		IFF1: c.IFF1, IFF2: c.IFF2,
		Halted:  c.Halted,
		TStates: m.bus.elapsedTStates,
		Fault:   c.Fault,
	}
}

func (m *Machine) Read8(addr uint16) byte     { return m.bus.Read(addr) }
func (m *Machine) Write8(addr uint16, v byte) { m.bus.Write(addr, v) }
func (m *Machine) In8(port uint16) byte       { return m.bus.In(port) }
func (m *Machine) Out8(port uint16, v byte)   { m.bus.Out(port, v) }

// LoadProgram copies bytes into RAM starting at origin, which must lie
// entirely within the RAM window (spec.md §6).
func (m *Machine) LoadProgram(bytes []byte, origin uint16) error {
	if int(origin)+len(bytes) > 0x8000 {
		return fmt.Errorf("load_program: program (origin 0x%04X, %d bytes) extends past the RAM window", origin, len(bytes))
	}
	for i, b := range bytes {
		m.bus.ram[int(origin)+i] = b
	}
	return nil
}

// SetProgramCounter implements spec.md §6/§7: addr must lie in RAM, or the
// call is a fatal error to the caller (the same failure semantics as
// LoadProgram, since both place execution state outside the window the
// emulator actually backs with memory).
func (m *Machine) SetProgramCounter(addr uint16) error {
	if addr > 0x7FFF {
		return fmt.Errorf("set_program_counter: address 0x%04X outside RAM window", addr)
	}
	m.cpu.PC = addr
	return nil
}

func (m *Machine) SetStackPointer(addr uint16) error {
	if addr > 0x7FFF {
		return fmt.Errorf("set_stack_pointer: address 0x%04X outside RAM window", addr)
	}
	m.cpu.SP = addr
	return nil
}

// RAMRange answers spec.md §6's get_ram_range().
type RAMRange struct{ Start, End uint16 }

func (m *Machine) GetRAMRange() RAMRange { return RAMRange{Start: 0x0000, End: 0x7FFF} }

func (m *Machine) IsRuntimeProgramRunning() bool { return m.basic.isProgramRunning() }

func (m *Machine) ExecuteLine(text string) { m.basic.executeLine(text) }
func (m *Machine) PopOutputChar() byte     { return m.basic.popOutputChar() }
