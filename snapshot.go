package pcg815

import (
	"bytes"
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

const snapshotVersion = 1

// SnapshotCPU is the CPU-register slice of a snapshot.
type SnapshotCPU struct {
	A, F, B, C, D, E, H, L          byte
	A2, F2, B2, C2, D2, E2, H2, L2 byte
	IX, IY, SP, PC                  uint16
	I, R, IM                        byte
	IFF1, IFF2                      bool
	Halted                          bool
	Fault                           string
}

// SnapshotVRAM is the LCD's text/icon/cursor state, per spec.md §6's
// `vram: {text[96], icons[32], cursor}`.
type SnapshotVRAM struct {
	Text   [lcdTextCells]byte
	Icons  [32]byte
	Cursor int
}

// SnapshotIO is the keyboard/bank/composer state named by spec.md §6's
// `io: {selected_key_row, keyboard_rows[8], ascii_queue[], kana_mode,
// kana_compose_buffer, rom_bank_select, expansion_control, runtime}`.
type SnapshotIO struct {
	Strobe            uint16
	KeyboardRows      [8]byte
	AsciiQueue        []byte
	KanaMode          bool
	KanaComposeBuffer string
	RomBankSelect     byte
	ExRomBankSelect   byte
	ExpansionControl  byte
	Runtime           SnapshotRuntime
}

// SnapshotRuntime is the BASIC runtime's full state (spec.md §3): program
// store, variables, arrays, control stacks, DATA cursor, I/O buffers, and
// run/error state.
type SnapshotRuntime struct {
	Program    map[int]string
	Vars       map[string]basicValue
	Arrays     map[string][]basicValue
	ArrayDims  map[string][]int
	ForStack   []forFrame
	GosubStack []int
	DataValues []basicValue
	DataPtr    int
	Output     []byte
	InputLine  []byte
	PC         int
	Running    bool
	ErrCode    string
}

// SnapshotV1 is the complete machine snapshot of spec.md §3/§6.
type SnapshotV1 struct {
	Version          int
	CPU              SnapshotCPU
	RAM              [0x8000]byte
	VRAM             SnapshotVRAM
	IO               SnapshotIO
	TimestampTStates uint64
}

// CreateSnapshot implements spec.md §6's create_snapshot().
func (m *Machine) CreateSnapshot() SnapshotV1 {
	c := m.cpu
	kb := m.bus.kb
	lcd := m.bus.lcd
	s := SnapshotV1{
		Version: snapshotVersion,
		CPU: SnapshotCPU{
			A: c.A, F: c.F, B: c.B, C: c.C, D: c.D, E: c.E, H: c.H, L: c.L,
			A2: c.A2, F2: c.F2, B2: c.B2, C2: c.C2, D2: c.D2, E2: c.E2, H2: c.H2, L2: c.L2,
			IX: c.IX, IY: c.IY, SP: c.SP, PC: c.PC,
			I: c.I, R: c.R, IM: c.IM,
			IFF1: c.IFF1, IFF2: c.IFF2,
			Halted: c.Halted,
			Fault:  c.Fault,
		},
		RAM: m.bus.ram,
		VRAM: SnapshotVRAM{
			Text:   lcd.text,
			Icons:  lcd.icons,
			Cursor: lcd.textCursor,
		},
		IO: SnapshotIO{
			Strobe:            kb.strobe,
			KeyboardRows:      kb.rowState,
			AsciiQueue:        append([]byte(nil), kb.fifo...),
			KanaMode:          kb.kanaMode,
			KanaComposeBuffer: kb.composer.buf,
			RomBankSelect:     m.bus.romBank,
			ExRomBankSelect:   m.bus.exRomBank,
			ExpansionControl:  m.bus.ramBank,
			Runtime:           snapshotRuntimeOf(m.basic),
		},
		TimestampTStates: m.bus.elapsedTStates,
	}
	return s
}

func snapshotRuntimeOf(rt *basicRuntime) SnapshotRuntime {
	program := make(map[int]string, len(rt.program))
	for k, v := range rt.program {
		program[k] = v
	}
	vars := make(map[string]basicValue, len(rt.vars))
	for k, v := range rt.vars {
		vars[k] = v
	}
	arrays := make(map[string][]basicValue, len(rt.arrays))
	for k, v := range rt.arrays {
		arrays[k] = append([]basicValue(nil), v...)
	}
	dims := make(map[string][]int, len(rt.arrayDims))
	for k, v := range rt.arrayDims {
		dims[k] = append([]int(nil), v...)
	}
	return SnapshotRuntime{
		Program:    program,
		Vars:       vars,
		Arrays:     arrays,
		ArrayDims:  dims,
		ForStack:   append([]forFrame(nil), rt.forStack...),
		GosubStack: append([]int(nil), rt.gosubStack...),
		DataValues: append([]basicValue(nil), rt.dataValues...),
		DataPtr:    rt.dataPtr,
		Output:     append([]byte(nil), rt.output...),
		InputLine:  append([]byte(nil), rt.inputLine...),
		PC:         rt.pc,
		Running:    rt.running,
		ErrCode:    rt.errCode,
	}
}

// LoadSnapshot implements spec.md §6's load_snapshot(s); a version mismatch
// is the "fatal error to caller" spec.md §4.7's failure semantics require.
func (m *Machine) LoadSnapshot(s SnapshotV1) error {
	if s.Version != snapshotVersion {
		m.log.WithFields(logrus.Fields{"got": s.Version, "want": snapshotVersion}).Warn("load_snapshot: version mismatch")
		return fmt.Errorf("load_snapshot: unsupported version %d (want %d)", s.Version, snapshotVersion)
	}

	c := m.cpu
	c.A, c.F, c.B, c.C, c.D, c.E, c.H, c.L = s.CPU.A, s.CPU.F, s.CPU.B, s.CPU.C, s.CPU.D, s.CPU.E, s.CPU.H, s.CPU.L
	c.A2, c.F2, c.B2, c.C2, c.D2, c.E2, c.H2, c.L2 = s.CPU.A2, s.CPU.F2, s.CPU.B2, s.CPU.C2, s.CPU.D2, s.CPU.E2, s.CPU.H2, s.CPU.L2
	c.IX, c.IY, c.SP, c.PC = s.CPU.IX, s.CPU.IY, s.CPU.SP, s.CPU.PC
	c.I, c.R, c.IM = s.CPU.I, s.CPU.R, s.CPU.IM
	c.IFF1, c.IFF2 = s.CPU.IFF1, s.CPU.IFF2
	c.Halted = s.CPU.Halted
	c.Fault = s.CPU.Fault

	m.bus.ram = s.RAM
	m.bus.lcd.text = s.VRAM.Text
	m.bus.lcd.icons = s.VRAM.Icons
	m.bus.lcd.textCursor = s.VRAM.Cursor
	m.bus.lcd.dirty = true

	kb := m.bus.kb
	kb.strobe = s.IO.Strobe
	kb.rowState = s.IO.KeyboardRows
	kb.fifo = append([]byte(nil), s.IO.AsciiQueue...)
	kb.kanaMode = s.IO.KanaMode
	kb.composer.buf = s.IO.KanaComposeBuffer
	m.bus.romBank = s.IO.RomBankSelect
	m.bus.exRomBank = s.IO.ExRomBankSelect
	m.bus.ramBank = s.IO.ExpansionControl
	m.bus.elapsedTStates = s.TimestampTStates

	loadSnapshotRuntime(m.basic, s.IO.Runtime)
	return nil
}

func loadSnapshotRuntime(rt *basicRuntime, s SnapshotRuntime) {
	rt.program = make(map[int]string, len(s.Program))
	for k, v := range s.Program {
		rt.program[k] = v
	}
	rt.vars = make(map[string]basicValue, len(s.Vars))
	for k, v := range s.Vars {
		rt.vars[k] = v
	}
	rt.arrays = make(map[string][]basicValue, len(s.Arrays))
	for k, v := range s.Arrays {
		rt.arrays[k] = append([]basicValue(nil), v...)
	}
	rt.arrayDims = make(map[string][]int, len(s.ArrayDims))
	for k, v := range s.ArrayDims {
		rt.arrayDims[k] = append([]int(nil), v...)
	}
	rt.forStack = append([]forFrame(nil), s.ForStack...)
	rt.gosubStack = append([]int(nil), s.GosubStack...)
	rt.dataValues = append([]basicValue(nil), s.DataValues...)
	rt.dataPtr = s.DataPtr
	rt.output = append([]byte(nil), s.Output...)
	rt.inputLine = append([]byte(nil), s.InputLine...)
	rt.pc = s.PC
	rt.running = s.Running
	rt.errCode = s.ErrCode
	rt.buildOrder()
}

// EncodeSnapshot gzip-wraps a gob-encoded snapshot for on-disk persistence,
// the same "binary body swaddled in gzip" shape the teacher's machine
// snapshot used (debug_snapshot.go's SaveSnapshotToFile), adapted here to
// gob because SnapshotV1's maps and slices would bloat a hand-rolled framing
// without adding fidelity over Go's own binary encoder.
func EncodeSnapshot(s SnapshotV1) ([]byte, error) {
	var raw bytes.Buffer
	if err := gob.NewEncoder(&raw).Encode(s); err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	var out bytes.Buffer
	gz := gzip.NewWriter(&out)
	if _, err := gz.Write(raw.Bytes()); err != nil {
		return nil, fmt.Errorf("compressing snapshot: %w", err)
	}
	if err := gz.Close(); err != nil {
		return nil, fmt.Errorf("closing snapshot gzip stream: %w", err)
	}
	return out.Bytes(), nil
}

// DecodeSnapshot reverses EncodeSnapshot.
func DecodeSnapshot(data []byte) (SnapshotV1, error) {
	var s SnapshotV1
	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return s, fmt.Errorf("opening snapshot gzip stream: %w", err)
	}
	defer gz.Close()
	raw, err := io.ReadAll(gz)
	if err != nil {
		return s, fmt.Errorf("decompressing snapshot: %w", err)
	}
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&s); err != nil {
		return s, fmt.Errorf("decoding snapshot: %w", err)
	}
	if s.Version != snapshotVersion {
		return s, fmt.Errorf("load_snapshot: unsupported version %d (want %d)", s.Version, snapshotVersion)
	}
	return s, nil
}
