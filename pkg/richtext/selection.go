package richtext

// Position is a logical cursor position: a block id, a line within the block
// (list item index; always 0 for other kinds) and a rune offset within that line.
//
// The zero Position addresses the end of the document.
type Position struct {
	Node   NodeID `json:"node"`
	Line   int    `json:"line"`
	Offset int    `json:"offset"`
}

func (p Position) IsEnd() bool { return p.Node == 0 }

// Selection is an anchor/focus pair. Anchor may come after Focus.
type Selection struct {
	Anchor Position `json:"anchor"`
	Focus  Position `json:"focus"`
}

// Caret returns a collapsed selection at p.
func Caret(p Position) Selection {
	return Selection{Anchor: p, Focus: p}
}

func (s Selection) Collapsed() bool { return s.Anchor == s.Focus }

// resolve validates p against d and clamps its line and offset.
// It reports false when the referenced block no longer exists.
func (d *Document) resolve(p Position) (Position, bool) {
	if p.IsEnd() {
		return Position{}, true
	}
	b, _ := d.find(p.Node)
	if b == nil {
		return Position{}, false
	}
	line := clamp(p.Line, 0, b.lineCount()-1)
	return Position{Node: p.Node, Line: line, Offset: clamp(p.Offset, 0, b.lineLen(line))}, true
}

func (d *Document) resolveSelection(s Selection) (Selection, bool) {
	a, ok := d.resolve(s.Anchor)
	if !ok {
		return Selection{}, false
	}
	f, ok := d.resolve(s.Focus)
	if !ok {
		return Selection{}, false
	}
	return Selection{Anchor: a, Focus: f}, true
}

// index returns the block index of p; the end position sorts after every block.
func (d *Document) index(p Position) int {
	if p.IsEnd() {
		return len(d.blocks)
	}
	_, i := d.find(p.Node)
	return i
}

func (d *Document) comparePos(a, b Position) int {
	ia, ib := d.index(a), d.index(b)
	switch {
	case ia != ib:
		return cmpInt(ia, ib)
	case a.Line != b.Line:
		return cmpInt(a.Line, b.Line)
	default:
		return cmpInt(a.Offset, b.Offset)
	}
}

// ordered returns the selection endpoints in document order.
func (d *Document) ordered(s Selection) (Position, Position) {
	if d.comparePos(s.Anchor, s.Focus) <= 0 {
		return s.Anchor, s.Focus
	}
	return s.Focus, s.Anchor
}

// endPosition is the last place text can be typed: the end of the last text
// block, or the end-of-document position when the document has none.
func (d *Document) endPosition() Position {
	for i := len(d.blocks) - 1; i >= 0; i-- {
		b := d.blocks[i]
		if b.isText() {
			last := len(b.Lines) - 1
			return Position{Node: b.ID, Line: last, Offset: b.lineLen(last)}
		}
	}
	return Position{}
}

// Capture returns the current selection, or false when the document region has none.
func (e *Editor) Capture() (Selection, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.capture()
}

func (e *Editor) capture() (Selection, bool) {
	if e.sel == nil {
		return Selection{}, false
	}
	return *e.sel, true
}

// Restore re-applies a captured selection. It silently does nothing when the
// selection references a block that no longer exists.
func (e *Editor) Restore(s Selection) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.restore(s, true)
}

func (e *Editor) restore(s Selection, ok bool) {
	if !ok || e.closed {
		return
	}
	if r, valid := e.doc.resolveSelection(s); valid {
		e.sel = &r
	}
}

// Select sets the user selection. It reports false, leaving the selection
// unchanged, when an endpoint references a missing block.
func (e *Editor) Select(s Selection) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return false
	}
	r, ok := e.doc.resolveSelection(s)
	if !ok {
		return false
	}
	if e.sel == nil || *e.sel != r {
		e.pending = 0
	}
	e.sel = &r
	e.focused = true
	return true
}

// ClearSelection removes the selection, as when the document region loses focus.
func (e *Editor) ClearSelection() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sel = nil
	e.pending = 0
	e.focused = false
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
