package pcg815

import "testing"

func newBusTestRig() *bus {
	b := newBus(nil)
	b.kb = newKeyboard(nil)
	return b
}

func TestBusRAMReadWrite(t *testing.T) {
	b := newBusTestRig()
	b.Write(0x1000, 0x42)
	if v := b.Read(0x1000); v != 0x42 {
		t.Fatalf("Read(0x1000) = 0x%02X, want 0x42", v)
	}
}

func TestBusWriteOutsideRAMIsDropped(t *testing.T) {
	b := newBusTestRig()
	b.systemROM[0] = 0x99
	b.Write(0x8000, 0x11)
	if v := b.Read(0x8000); v != 0x99 {
		t.Fatalf("ROM write should be a no-op, got 0x%02X, want 0x99 (unchanged)", v)
	}
}

func TestBusBankedROMSelection(t *testing.T) {
	b := newBusTestRig()
	bank0 := [0x4000]byte{}
	bank1 := [0x4000]byte{}
	bank0[0] = 0xAA
	bank1[0] = 0xBB
	b.bankedROM = [][0x4000]byte{bank0, bank1}
	b.Out(0x19, 0x01) // select bank 1
	if v := b.Read(0xC000); v != 0xBB {
		t.Fatalf("Read(0xC000) after selecting bank 1 = 0x%02X, want 0xBB", v)
	}
	b.Out(0x19, 0x00)
	if v := b.Read(0xC000); v != 0xAA {
		t.Fatalf("Read(0xC000) after selecting bank 0 = 0x%02X, want 0xAA", v)
	}
}

func TestBusPin11ComposedReadGatedByXin(t *testing.T) {
	b := newBusTestRig()
	b.pin11InHook = func() byte { return 0x42 }
	if v := b.In(0x1F); v != 0 {
		t.Fatalf("In(0x1F) with Xin disabled = 0x%02X, want 0", v)
	}
	b.Out(0x15, 0x80)
	if v := b.In(0x1F); v != 0x42 {
		t.Fatalf("In(0x1F) with Xin enabled = 0x%02X, want 0x42", v)
	}
}

func TestBusUnknownPortReadsDefault(t *testing.T) {
	b := newBusTestRig()
	if v := b.In(0xFE); v != unknownPortRead {
		t.Fatalf("In(0xFE) = 0x%02X, want 0x%02X (unknown-port default)", v, unknownPortRead)
	}
}

func TestBusLCDPrimaryDataPortDrivesTextLayer(t *testing.T) {
	b := newBusTestRig()
	b.Out(0x5A, 'H')
	if b.lcd.text[0] != 'H' {
		t.Fatalf("writing 0x5A should drive the LCD text layer, text[0] = 0x%02X", b.lcd.text[0])
	}
}

func TestBusTickAccumulatesTStates(t *testing.T) {
	b := newBusTestRig()
	b.Tick(10)
	b.Tick(5)
	if b.elapsedTStates != 15 {
		t.Fatalf("elapsedTStates = %d, want 15", b.elapsedTStates)
	}
}

func TestBusDisplayStartLineDualHomed(t *testing.T) {
	b := newBusTestRig()
	b.Write(displayStartLineAddr, 0x07)
	if b.displayStartLine() != 0x07 {
		t.Fatalf("displayStartLine() = 0x%02X, want 0x07", b.displayStartLine())
	}
	b.setDisplayStartLine(0x0A)
	if b.Read(displayStartLineAddr) != 0x0A {
		t.Fatalf("Read(displayStartLineAddr) = 0x%02X, want 0x0A", b.Read(displayStartLineAddr))
	}
}
