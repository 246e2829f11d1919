package pcg815

import "strings"

// isIndexedParen reports whether a paren-stripped operand body names an
// indexed form ("IX+5", "IY-3", bare "IX"/"IY"), so the 16-bit (nn) forms
// of LD don't misparse "(IX+d)" as a direct address.
func isIndexedParen(inner string) bool {
	up := strings.ToUpper(strings.TrimSpace(inner))
	return strings.HasPrefix(up, "IX") || strings.HasPrefix(up, "IY")
}

func indexPrefixFor(reg string) byte {
	if strings.ToUpper(reg) == "IY" {
		return asmPrefixFD
	}
	return asmPrefixDD
}

// asmLD covers the LD forms spec.md's firmware and test programs use: 8-bit
// register/immediate/(HL)/(IX+d)/(IY+d) moves, the (BC)/(DE)/(nn) forms of
// LD A,/LD ,A, 16-bit immediate and (nn) loads for BC/DE/HL/SP/IX/IY, LD
// SP,HL/IX/IY, and LD A,I / LD A,R / LD I,A / LD R,A.
func (a *assembler) asmLD(ops []string, file string, lineNo int) {
	if len(ops) != 2 {
		a.errorAt(file, lineNo, 1, "LD requires two operands")
		return
	}
	dst := strings.TrimSpace(ops[0])
	src := strings.TrimSpace(ops[1])
	dstUp := strings.ToUpper(dst)
	srcUp := strings.ToUpper(src)

	switch {
	case dstUp == "A" && srcUp == "I":
		a.emitByte(0xED)
		a.emitByte(0x57)
		return
	case dstUp == "A" && srcUp == "R":
		a.emitByte(0xED)
		a.emitByte(0x5F)
		return
	case dstUp == "I" && srcUp == "A":
		a.emitByte(0xED)
		a.emitByte(0x47)
		return
	case dstUp == "R" && srcUp == "A":
		a.emitByte(0xED)
		a.emitByte(0x4F)
		return
	}

	if dstUp == "SP" {
		switch srcUp {
		case "HL":
			a.emitByte(0xF9)
			return
		case "IX":
			a.emitByte(asmPrefixDD)
			a.emitByte(0xF9)
			return
		case "IY":
			a.emitByte(asmPrefixFD)
			a.emitByte(0xF9)
			return
		}
	}

	if prefix, disp, ok := indexedOperand(dst); ok {
		if srcCode, ok2 := reg8Codes[srcUp]; ok2 {
			a.emitByte(prefix)
			a.emitByte(0x70 | srcCode)
			a.emitExprByte(disp, file, lineNo, -128, 127)
			return
		}
		a.emitByte(prefix)
		a.emitByte(0x36)
		a.emitExprByte(disp, file, lineNo, -128, 127)
		a.emitExprByte(src, file, lineNo, -128, 255)
		return
	}
	if prefix, disp, ok := indexedOperand(src); ok {
		if dstCode, ok2 := reg8Codes[dstUp]; ok2 {
			a.emitByte(prefix)
			a.emitByte(0x46 | dstCode<<3)
			a.emitExprByte(disp, file, lineNo, -128, 127)
			return
		}
		a.errorAt(file, lineNo, 1, "LD: unsupported destination %q for indexed source", dst)
		return
	}

	if dstUp == "A" {
		if inner, ok := parenInner(src); ok {
			switch strings.ToUpper(inner) {
			case "BC":
				a.emitByte(0x0A)
				return
			case "DE":
				a.emitByte(0x1A)
				return
			case "HL":
				a.emitByte(0x7E)
				return
			default:
				a.emitByte(0x3A)
				a.emitExprWord(inner, file, lineNo)
				return
			}
		}
	}
	if inner, ok := parenInner(dst); ok && srcUp == "A" {
		switch strings.ToUpper(inner) {
		case "BC":
			a.emitByte(0x02)
			return
		case "DE":
			a.emitByte(0x12)
			return
		case "HL":
			a.emitByte(0x77)
			return
		default:
			a.emitByte(0x32)
			a.emitExprWord(inner, file, lineNo)
			return
		}
	}

	if dstUp == "HL" {
		if inner, ok := parenInner(src); ok {
			a.emitByte(0x2A)
			a.emitExprWord(inner, file, lineNo)
			return
		}
	}
	if inner, ok := parenInner(dst); ok && srcUp == "HL" {
		a.emitByte(0x22)
		a.emitExprWord(inner, file, lineNo)
		return
	}

	if dstUp == "BC" || dstUp == "DE" || dstUp == "SP" {
		if inner, ok := parenInner(src); ok {
			a.emitByte(0xED)
			a.emitByte(0x4B | reg16Codes[dstUp]<<4)
			a.emitExprWord(inner, file, lineNo)
			return
		}
	}
	if inner, ok := parenInner(dst); ok {
		if code, ok2 := reg16Codes[srcUp]; ok2 && (srcUp == "BC" || srcUp == "DE" || srcUp == "SP") {
			a.emitByte(0xED)
			a.emitByte(0x43 | code<<4)
			a.emitExprWord(inner, file, lineNo)
			return
		}
	}

	if dstUp == "IX" || dstUp == "IY" {
		if inner, ok := parenInner(src); ok {
			a.emitByte(indexPrefixFor(dstUp))
			a.emitByte(0x2A)
			a.emitExprWord(inner, file, lineNo)
			return
		}
	}
	if inner, ok := parenInner(dst); ok {
		if srcUp == "IX" || srcUp == "IY" {
			a.emitByte(indexPrefixFor(srcUp))
			a.emitByte(0x22)
			a.emitExprWord(inner, file, lineNo)
			return
		}
	}

	if code, ok := reg16Codes[dstUp]; ok && !isParenOperand(src) {
		a.emitByte(0x01 | code<<4)
		a.emitExprWord(src, file, lineNo)
		return
	}
	if (dstUp == "IX" || dstUp == "IY") && !isParenOperand(src) {
		a.emitByte(indexPrefixFor(dstUp))
		a.emitByte(0x21)
		a.emitExprWord(src, file, lineNo)
		return
	}

	if dstUp == "(HL)" {
		if srcCode, ok := reg8Codes[srcUp]; ok {
			a.emitByte(0x70 | srcCode)
			return
		}
		a.emitByte(0x36)
		a.emitExprByte(src, file, lineNo, -128, 255)
		return
	}
	if srcUp == "(HL)" {
		if dstCode, ok := reg8Codes[dstUp]; ok {
			a.emitByte(0x46 | dstCode<<3)
			return
		}
	}

	if dstCode, ok := reg8Codes[dstUp]; ok {
		if srcCode, ok2 := reg8Codes[srcUp]; ok2 {
			a.emitByte(0x40 | dstCode<<3 | srcCode)
			return
		}
		a.emitByte(0x06 | dstCode<<3)
		a.emitExprByte(src, file, lineNo, -128, 255)
		return
	}

	a.errorAt(file, lineNo, 1, "LD: unsupported operand pair %s,%s", dst, src)
}

func isParenOperand(s string) bool {
	_, ok := parenInner(s)
	return ok
}

var aluBase = map[string]byte{"ADD": 0x80, "ADC": 0x88, "SUB": 0x90, "SBC": 0x98, "AND": 0xA0, "XOR": 0xA8, "OR": 0xB0, "CP": 0xB8}
var aluImm = map[string]byte{"ADD": 0xC6, "ADC": 0xCE, "SUB": 0xD6, "SBC": 0xDE, "AND": 0xE6, "XOR": 0xEE, "OR": 0xF6, "CP": 0xFE}

// asmALU covers ADD/ADC/SUB/SBC/AND/XOR/OR/CP: the 8-bit accumulator forms
// (with or without the explicit "A," destination), and the 16-bit
// ADD/ADC/SBC HL,rr and ADD IX/IY,rr forms.
func (a *assembler) asmALU(mnem string, ops []string, file string, lineNo int) {
	if len(ops) == 2 {
		dstUp := strings.ToUpper(strings.TrimSpace(ops[0]))
		srcUp := strings.ToUpper(strings.TrimSpace(ops[1]))

		if dstUp == "HL" {
			if code, ok := reg16Codes[srcUp]; ok {
				switch mnem {
				case "ADD":
					a.emitByte(0x09 | code<<4)
					return
				case "ADC":
					a.emitByte(0xED)
					a.emitByte(0x4A | code<<4)
					return
				case "SBC":
					a.emitByte(0xED)
					a.emitByte(0x42 | code<<4)
					return
				}
			}
		}
		if mnem == "ADD" && (dstUp == "IX" || dstUp == "IY") {
			ppCodes := map[string]byte{"BC": 0, "DE": 1, dstUp: 2, "SP": 3}
			if code, ok := ppCodes[srcUp]; ok {
				a.emitByte(indexPrefixFor(dstUp))
				a.emitByte(0x09 | code<<4)
				return
			}
			a.errorAt(file, lineNo, 1, "ADD %s,%s: bad operand", ops[0], ops[1])
			return
		}
		if dstUp != "A" {
			a.errorAt(file, lineNo, 1, "%s: bad destination %q", mnem, ops[0])
			return
		}
		a.aluRHS(mnem, ops[1], file, lineNo)
		return
	}
	if len(ops) == 1 {
		switch mnem {
		case "ADD", "ADC", "SBC":
			a.errorAt(file, lineNo, 1, "%s: one-operand form is not valid, write %s A,<src>", mnem, mnem)
			return
		}
		a.aluRHS(mnem, ops[0], file, lineNo)
		return
	}
	a.errorAt(file, lineNo, 1, "%s: bad operand count", mnem)
}

func (a *assembler) aluRHS(mnem, rhs, file string, lineNo int) {
	rhs = strings.TrimSpace(rhs)
	up := strings.ToUpper(rhs)
	if code, ok := reg8Codes[up]; ok {
		a.emitByte(aluBase[mnem] | code)
		return
	}
	if up == "(HL)" {
		a.emitByte(aluBase[mnem] | 6)
		return
	}
	if prefix, disp, ok := indexedOperand(rhs); ok {
		a.emitByte(prefix)
		a.emitByte(aluBase[mnem] | 6)
		a.emitExprByte(disp, file, lineNo, -128, 127)
		return
	}
	a.emitByte(aluImm[mnem])
	a.emitExprByte(rhs, file, lineNo, -128, 255)
}

var shiftOpSelect = map[string]byte{"RLC": 0, "RRC": 1, "RL": 2, "RR": 3, "SLA": 4, "SRA": 5, "SRL": 7}

// asmShift covers the CB-prefixed rotate/shift group on a plain register or
// (HL); rotate/shift directly on (IX+d)/(IY+d) is not supported (see
// DESIGN.md).
func (a *assembler) asmShift(mnem string, ops []string, file string, lineNo int) {
	if len(ops) != 1 {
		a.errorAt(file, lineNo, 1, "%s requires one operand", mnem)
		return
	}
	op := strings.TrimSpace(ops[0])
	up := strings.ToUpper(op)
	sel := shiftOpSelect[mnem]
	if code, ok := reg8Codes[up]; ok {
		a.emitByte(0xCB)
		a.emitByte(sel<<3 | code)
		return
	}
	if up == "(HL)" {
		a.emitByte(0xCB)
		a.emitByte(sel<<3 | 6)
		return
	}
	if _, _, ok := indexedOperand(op); ok {
		a.errorAt(file, lineNo, 1, "%s on (IX+d)/(IY+d) is not supported", mnem)
		return
	}
	a.errorAt(file, lineNo, 1, "%s: bad operand %q", mnem, op)
}

var bitOpBase = map[string]byte{"BIT": 0x40, "RES": 0x80, "SET": 0xC0}

// asmBitOp covers BIT/RES/SET n,r and BIT/RES/SET n,(HL).
func (a *assembler) asmBitOp(mnem string, ops []string, file string, lineNo int) {
	if len(ops) != 2 {
		a.errorAt(file, lineNo, 1, "%s requires two operands", mnem)
		return
	}
	if a.forSize {
		a.emitByte(0xCB)
		a.emitByte(0)
		return
	}
	bitVal, ok := a.eval(ops[0], file, lineNo, 1)
	if !ok {
		a.emitByte(0xCB)
		a.emitByte(0)
		return
	}
	if bitVal < 0 || bitVal > 7 {
		a.errorAt(file, lineNo, 1, "%s: bit number %d out of range [0,7]", mnem, bitVal)
		bitVal = 0
	}
	opnd := strings.TrimSpace(ops[1])
	up := strings.ToUpper(opnd)
	base := bitOpBase[mnem]
	if code, ok := reg8Codes[up]; ok {
		a.emitByte(0xCB)
		a.emitByte(base | byte(bitVal)<<3 | code)
		return
	}
	if up == "(HL)" {
		a.emitByte(0xCB)
		a.emitByte(base | byte(bitVal)<<3 | 6)
		return
	}
	a.errorAt(file, lineNo, 1, "%s: unsupported operand %q", mnem, ops[1])
}
