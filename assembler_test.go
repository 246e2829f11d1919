package pcg815

import "testing"

func TestAssembleSimpleProgram(t *testing.T) {
	src := `
	ORG 0x1000
start:
	LD A, 0x41
	OUT (0x5A), A
	HALT
`
	res := Assemble(src, AssembleOptions{Filename: "t.asm"})
	if !res.OK {
		t.Fatalf("Assemble() not OK, diagnostics: %+v", res.Diagnostics)
	}
	if res.Origin != 0x1000 {
		t.Fatalf("Origin = 0x%04X, want 0x1000", res.Origin)
	}
	if len(res.Binary) == 0 {
		t.Fatalf("expected non-empty binary")
	}
	if _, ok := res.Symbols["START"]; !ok {
		t.Fatalf("expected symbol %q in symbol table (uppercased)", "START")
	}
}

func TestAssembleEntryDirective(t *testing.T) {
	src := `
	ORG 0x2000
	ENTRY 0x2010
	NOP
`
	res := Assemble(src, AssembleOptions{})
	if !res.OK {
		t.Fatalf("Assemble() not OK: %+v", res.Diagnostics)
	}
	if res.Entry != 0x2010 {
		t.Fatalf("Entry = 0x%04X, want 0x2010", res.Entry)
	}
}

func TestAssembleEquConstant(t *testing.T) {
	src := `
	ORG 0x0000
PORT_LCD: EQU 0x5A
	LD A, 0x01
	OUT (PORT_LCD), A
`
	res := Assemble(src, AssembleOptions{})
	if !res.OK {
		t.Fatalf("Assemble() not OK: %+v", res.Diagnostics)
	}
	if v, ok := res.Symbols["PORT_LCD"]; !ok || v != 0x5A {
		t.Fatalf("PORT_LCD = %v, %v; want 0x5A, true", v, ok)
	}
}

func TestAssembleUnknownMnemonicIsDiagnostic(t *testing.T) {
	src := `
	ORG 0x0000
	BOGUSOP A, B
`
	res := Assemble(src, AssembleOptions{})
	if res.OK {
		t.Fatalf("Assemble() OK, want a diagnostic for an unknown mnemonic")
	}
	if len(res.Diagnostics) == 0 {
		t.Fatalf("expected at least one diagnostic")
	}
}

func TestAssembleDBEmitsBytes(t *testing.T) {
	src := `
	ORG 0x0000
	DB 1, 2, 3
`
	res := Assemble(src, AssembleOptions{})
	if !res.OK {
		t.Fatalf("Assemble() not OK: %+v", res.Diagnostics)
	}
	want := []byte{1, 2, 3}
	if len(res.Binary) != len(want) {
		t.Fatalf("Binary = %v, want %v", res.Binary, want)
	}
	for i, b := range want {
		if res.Binary[i] != b {
			t.Fatalf("Binary[%d] = %d, want %d", i, res.Binary[i], b)
		}
	}
}

func TestAssembleOneOperandADDIsDiagnostic(t *testing.T) {
	src := `
	ORG 0x0000
	ADD 5
`
	res := Assemble(src, AssembleOptions{})
	if res.OK {
		t.Fatalf("Assemble() OK, want a diagnostic: one-operand ADD is rejected")
	}
}

func TestAssembleOneOperandSUBIsAccepted(t *testing.T) {
	src := `
	ORG 0x0000
	SUB 5
`
	res := Assemble(src, AssembleOptions{})
	if !res.OK {
		t.Fatalf("Assemble() not OK: %+v", res.Diagnostics)
	}
}

func TestAssembleNeverPanicsOnGarbage(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("Assemble() panicked: %v", r)
		}
	}()
	res := Assemble("\x00\x01 $$$ ((( LD LD LD", AssembleOptions{})
	_ = res
}
