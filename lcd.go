package pcg815

const (
	lcdCols      = 24
	lcdRows      = 4
	lcdTextCells = lcdCols * lcdRows

	graphicsWidth  = 144
	graphicsHeight = 32

	lcdPanelCols = 128
	lcdPanelRows = 8
)

// workArea is the sliver of the bus's RAM the LCD command decoder needs to
// touch directly: the display-start-line byte at 0x790D is dual-homed,
// reachable both by a CPU memory write and by LCD command 0xC0 (spec.md
// §4.2/§4.3). An interface keeps the LCD controller from holding a back
// reference to the whole bus, mirroring how the BASIC adapter contract
// (basic.go) avoids a cyclic reference to the machine.
type workArea interface {
	displayStartLine() byte
	setDisplayStartLine(v byte)
}

// lcdPanel is one physical panel's raw VRAM mirror and cursor.
type lcdPanel struct {
	x, y byte
	vram [lcdPanelCols * lcdPanelRows]byte
}

func (p *lcdPanel) cellIndex() int { return int(p.y)*lcdPanelCols + int(p.x) }

func (p *lcdPanel) advanceX() { p.x = (p.x + 1) & 0x7F }

// lcdController implements the LCD command/data state machine of spec.md
// §4.3: two raw-VRAM panels, a 24x4 text layer, a 144x32 graphics overlay,
// and the lazily-synthesized framebuffer.
type lcdController struct {
	work workArea

	primary, secondary lcdPanel

	// dummyArmed is a single flag shared by both panels' data-read ports:
	// the first read after any command write returns 0; the next read at
	// either panel returns the latched value. See DESIGN.md for the
	// cross-panel trace (scenario S2) that pins this down as one shared
	// flag rather than one per panel.
	dummyArmed bool

	text        [lcdTextCells]byte
	textCursor  int
	icons       [32]byte // status-indicator VRAM; no port drives it (spec.md §3), carried for snapshot fidelity
	graphics    [graphicsWidth * graphicsHeight]byte
	framebuffer [graphicsWidth * graphicsHeight]byte
	dirty       bool
}

func newLCDController(work workArea) *lcdController {
	l := &lcdController{work: work}
	l.clear()
	return l
}

func (l *lcdController) clear() {
	l.primary = lcdPanel{}
	l.secondary = lcdPanel{}
	for i := range l.text {
		l.text[i] = 0x20
	}
	l.textCursor = 0
	for i := range l.icons {
		l.icons[i] = 0
	}
	for i := range l.graphics {
		l.graphics[i] = 0
	}
	l.dummyArmed = true
	l.dirty = true
}

type lcdGroup int

const (
	lcdPrimaryGroup lcdGroup = iota
	lcdSecondaryGroup
	lcdDualGroup
)

func (l *lcdController) panelsFor(g lcdGroup) []*lcdPanel {
	switch g {
	case lcdPrimaryGroup:
		return []*lcdPanel{&l.primary}
	case lcdSecondaryGroup:
		return []*lcdPanel{&l.secondary}
	default:
		return []*lcdPanel{&l.primary, &l.secondary}
	}
}

// writeCommand dispatches a command byte per spec.md §4.3: the high 2 bits
// select the operation, with the all-zero byte vs. byte 0x01 distinguishing
// no-op from clear within the "00" group.
func (l *lcdController) writeCommand(g lcdGroup, cmd byte) {
	l.dummyArmed = true
	switch cmd & 0xC0 {
	case 0x00:
		if cmd == 0x01 {
			l.clear()
		}
	case 0x40:
		for _, p := range l.panelsFor(g) {
			p.x = cmd & 0x3F
		}
	case 0x80:
		for _, p := range l.panelsFor(g) {
			p.y = cmd & 0x07
		}
	case 0xC0:
		// Low 6 bits of the command carry the new display start line; only
		// the low 5 bits are retained, matching the work byte's width.
		cur := l.work.displayStartLine()
		next := (cur &^ 0x1F) | (cmd & 0x1F)
		l.work.setDisplayStartLine(next)
		l.dirty = true
	}
}

// writeData writes a data byte to the raw VRAM of every panel in g,
// auto-incrementing each panel's X, and additionally drives the text
// layer when g is primary or dual (spec.md §4.3).
func (l *lcdController) writeData(g lcdGroup, value byte) {
	for _, p := range l.panelsFor(g) {
		p.vram[p.cellIndex()] = value
		p.advanceX()
	}
	if g == lcdPrimaryGroup || g == lcdDualGroup {
		l.writeTextChar(value)
	}
}

// setTextCursor positions the text cursor at (col, row), clamped to the
// visible grid; used by BASIC's LOCATE statement (basic.go).
func (l *lcdController) setTextCursor(col, row int) {
	if col < 0 {
		col = 0
	}
	if col >= lcdCols {
		col = lcdCols - 1
	}
	if row < 0 {
		row = 0
	}
	if row >= lcdRows {
		row = lcdRows - 1
	}
	l.textCursor = row*lcdCols + col
}

func (l *lcdController) writeTextChar(code byte) {
	switch code {
	case 0x0D:
		l.textCursor = (l.textCursor / lcdCols) * lcdCols
	case 0x0A:
		row := l.textCursor / lcdCols
		if row == lcdRows-1 {
			l.scrollUp()
			l.textCursor = (lcdRows - 1) * lcdCols
		} else {
			l.textCursor = (row + 1) * lcdCols
		}
	case 0x08:
		if l.textCursor > 0 {
			l.textCursor--
		}
		l.text[l.textCursor] = 0x20
	default:
		if _, ok := glyphTable[code]; ok {
			l.text[l.textCursor] = code
		} else {
			l.text[l.textCursor] = 0x20
		}
		l.textCursor++
		if l.textCursor >= lcdTextCells {
			l.scrollUp()
			l.textCursor = (lcdRows - 1) * lcdCols
		}
	}
	l.dirty = true
}

func (l *lcdController) scrollUp() {
	copy(l.text[0:(lcdRows-1)*lcdCols], l.text[lcdCols:lcdRows*lcdCols])
	for i := (lcdRows - 1) * lcdCols; i < lcdRows*lcdCols; i++ {
		l.text[i] = 0x20
	}
	l.dirty = true
}

// readData implements the dummy-first-read protocol: the first read after
// any command returns 0; the next read at either panel's port returns the
// raw VRAM byte at its current (X, Y) and advances X.
func (l *lcdController) readData(g lcdGroup) byte {
	p := l.panelsFor(g)[0]
	if l.dummyArmed {
		l.dummyArmed = false
		return 0
	}
	v := p.vram[p.cellIndex()]
	p.advanceX()
	return v
}

// plotGraphics sets or clears a single 1bpp pixel on the overlay plane;
// used by BASIC's LOCATE/graphics hooks (see basic.go's adapter) and by
// tests exercising invariant 5 of spec.md §8.
func (l *lcdController) plotGraphics(x, y int, lit bool) {
	if x < 0 || x >= graphicsWidth || y < 0 || y >= graphicsHeight {
		return
	}
	idx := y*graphicsWidth + x
	if lit {
		l.graphics[idx] = 1
	} else {
		l.graphics[idx] = 0
	}
	l.dirty = true
}

// render synthesizes the framebuffer iff dirty, applies the vertical
// scroll implied by the current display-start-line, and returns a fresh
// copy (callers must not alias the controller's internal buffer).
func (l *lcdController) render() [graphicsWidth * graphicsHeight]byte {
	if l.dirty {
		l.rebuild()
		l.dirty = false
	}
	start := int(l.work.displayStartLine() & 0x1F)
	if start == 0 {
		return l.framebuffer
	}
	var out [graphicsWidth * graphicsHeight]byte
	for y := 0; y < graphicsHeight; y++ {
		srcY := (y + start) % graphicsHeight
		copy(out[y*graphicsWidth:(y+1)*graphicsWidth], l.framebuffer[srcY*graphicsWidth:(srcY+1)*graphicsWidth])
	}
	return out
}

func (l *lcdController) rebuild() {
	for i := range l.framebuffer {
		l.framebuffer[i] = 0
	}
	for row := 0; row < lcdRows; row++ {
		for col := 0; col < lcdCols; col++ {
			g := lookupGlyph(l.text[row*lcdCols+col])
			baseX := col * 6
			baseY := row * 8
			for gy := 0; gy < glyphHeight; gy++ {
				bits := g[gy]
				for gx := 0; gx < glyphWidth; gx++ {
					if bits&(1<<(glyphWidth-1-gx)) != 0 {
						l.framebuffer[(baseY+gy)*graphicsWidth+(baseX+gx)] = 1
					}
				}
			}
		}
	}
	for i := range l.graphics {
		if l.graphics[i] != 0 {
			l.framebuffer[i] = 1
		}
	}
}

// textLines returns the 4 rows of the text layer as fixed-width strings,
// matching the machine's get_text_lines() operation (spec.md §6).
func (l *lcdController) textLines() [lcdRows]string {
	var out [lcdRows]string
	for row := 0; row < lcdRows; row++ {
		b := make([]byte, lcdCols)
		copy(b, l.text[row*lcdCols:(row+1)*lcdCols])
		out[row] = string(b)
	}
	return out
}
