package richtext

import "unicode/utf8"

// Event is the user action that triggered an editor operation.
type Event interface {
	PreventDefault()
}

// Action is an Event that records whether its default action was suppressed.
type Action struct {
	prevented bool
}

func (a *Action) PreventDefault() { a.prevented = true }

func (a *Action) DefaultPrevented() bool { return a.prevented }

func preventDefault(ev Event) {
	if ev != nil {
		ev.PreventDefault()
	}
}

// ClipboardData carries the flavors offered by a paste.
type ClipboardData struct {
	Text string
	HTML string
}

// PlainText returns the text/plain flavor, falling back to the tag-stripped
// text/html flavor. Markup never survives.
func (c ClipboardData) PlainText() string {
	if c.Text != "" {
		return c.Text
	}
	if c.HTML != "" {
		return StripTags(c.HTML)
	}
	return ""
}

// InsertText types text at the selection, replacing any selected range.
func (e *Editor) InsertText(text string) {
	e.mutate(func() bool { return e.insertText(text) })
}

// Paste suppresses the default paste and inserts only plain text at the cursor.
func (e *Editor) Paste(ev Event, data ClipboardData) {
	preventDefault(ev)
	text := data.PlainText()
	e.mutate(func() bool { return e.insertText(text) })
}

// DeleteBackward removes the selected range, or the character before the caret.
func (e *Editor) DeleteBackward() {
	e.mutate(func() bool {
		if e.sel == nil {
			return false
		}
		start, end := e.doc.ordered(*e.sel)
		var pos Position
		var changed bool
		if start != end {
			pos, changed = e.doc.deleteRange(start, end), true
		} else {
			pos, changed = e.doc.deleteBackward(start)
		}
		if !changed {
			return false
		}
		e.rehighlightAt(pos)
		c := Caret(pos)
		e.sel = &c
		e.pending = 0
		return true
	})
}

func (e *Editor) insertText(text string) bool {
	if text == "" {
		return false
	}
	e.focus()
	if e.sel == nil {
		return false
	}
	start, end := e.doc.ordered(*e.sel)
	if start != end {
		start = e.doc.deleteRange(start, end)
	}
	marks := e.doc.marksAt(start) ^ e.pending
	pos := e.doc.insertText(start, text, marks)
	e.rehighlightAt(pos)
	c := Caret(pos)
	e.sel = &c
	e.pending = 0
	return true
}

func (e *Editor) rehighlightAt(p Position) {
	if b, _ := e.doc.find(p.Node); b != nil && b.Kind == KindCode {
		e.highlight(b)
	}
}

func (d *Document) marksAt(p Position) MarkSet {
	b, _ := d.find(p.Node)
	if b == nil || !b.isText() {
		return 0
	}
	return b.Lines[p.Line].marksAt(p.Offset)
}

func (d *Document) insertText(p Position, text string, marks MarkSet) Position {
	n := utf8.RuneCountInString(text)
	b, i := d.find(p.Node)
	switch {
	case b == nil:
		np := &Block{Kind: KindParagraph, Tag: "p", Lines: []Line{{{Text: text, Marks: marks}}}}
		d.insertAt(len(d.blocks), np)
		return Position{Node: np.ID, Offset: n}
	case b.isText():
		b.Lines[p.Line] = b.Lines[p.Line].insert(p.Offset, text, marks)
		return Position{Node: b.ID, Line: p.Line, Offset: p.Offset + n}
	case b.Kind == KindCode:
		runes := []rune(b.Code)
		b.Code = string(runes[:p.Offset]) + text + string(runes[p.Offset:])
		b.Highlighted = ""
		return Position{Node: b.ID, Offset: p.Offset + n}
	default:
		np := &Block{Kind: KindParagraph, Tag: "p", Lines: []Line{{{Text: text, Marks: marks}}}}
		d.insertAt(i+1, np)
		return Position{Node: np.ID, Offset: n}
	}
}

// deleteRange removes [start,end) and returns the collapsed position.
// Atomic blocks strictly inside the range are removed; atomic endpoints are kept.
func (d *Document) deleteRange(start, end Position) Position {
	if start.IsEnd() || d.comparePos(start, end) >= 0 {
		return start
	}
	si, ei := d.index(start), d.index(end)
	sb := d.blocks[si]

	if si == ei {
		switch {
		case sb.isText() && start.Line == end.Line:
			sb.Lines[start.Line] = sb.Lines[start.Line].remove(start.Offset, end.Offset)
		case sb.isText():
			head, _ := sb.Lines[start.Line].splitAt(start.Offset)
			_, tail := sb.Lines[end.Line].splitAt(end.Offset)
			lines := append(sb.Lines[:start.Line:start.Line], append(head, tail...).normalize())
			sb.Lines = append(lines, sb.Lines[end.Line+1:]...)
		case sb.Kind == KindCode:
			runes := []rune(sb.Code)
			sb.Code = string(runes[:start.Offset]) + string(runes[end.Offset:])
			sb.Highlighted = ""
		}
		return start
	}

	switch {
	case sb.isText():
		head, _ := sb.Lines[start.Line].splitAt(start.Offset)
		sb.Lines = append(sb.Lines[:start.Line:start.Line], head.normalize())
	case sb.Kind == KindCode:
		sb.Code = string([]rune(sb.Code)[:start.Offset])
		sb.Highlighted = ""
	}

	stop := ei
	if ei < len(d.blocks) {
		eb := d.blocks[ei]
		switch {
		case eb.isText():
			_, tail := eb.Lines[end.Line].splitAt(end.Offset)
			rest := eb.Lines[end.Line+1:]
			if sb.isText() {
				last := len(sb.Lines) - 1
				sb.Lines[last] = append(sb.Lines[last], tail...).normalize()
				eb.Lines = append([]Line(nil), rest...)
			} else {
				eb.Lines = append([]Line{tail.normalize()}, rest...)
			}
			if len(eb.Lines) == 0 {
				stop = ei + 1
			}
		case eb.Kind == KindCode:
			eb.Code = string([]rune(eb.Code)[end.Offset:])
			eb.Highlighted = ""
		}
	}
	d.blocks = append(d.blocks[:si+1], d.blocks[stop:]...)
	return start
}

// deleteBackward removes the character before a caret, merging into the
// previous block at the start of a line. It reports whether anything changed.
func (d *Document) deleteBackward(p Position) (Position, bool) {
	if p.IsEnd() {
		if n := len(d.blocks); n > 0 && !d.blocks[n-1].isText() && d.blocks[n-1].Kind != KindCode {
			d.removeAt(n - 1)
			return d.endPosition(), true
		}
		return p, false
	}
	b, i := d.find(p.Node)
	if p.Offset > 0 {
		prev := Position{Node: p.Node, Line: p.Line, Offset: p.Offset - 1}
		return d.deleteRange(prev, p), true
	}
	if b.Kind == KindList && p.Line > 0 {
		prevLine := b.Lines[p.Line-1]
		off := prevLine.Len()
		b.Lines[p.Line-1] = append(prevLine.clone(), b.Lines[p.Line]...).normalize()
		b.Lines = append(b.Lines[:p.Line], b.Lines[p.Line+1:]...)
		return Position{Node: b.ID, Line: p.Line - 1, Offset: off}, true
	}
	if i == 0 || !b.isText() {
		return p, false
	}
	prev := d.blocks[i-1]
	switch {
	case prev.isText():
		last := len(prev.Lines) - 1
		off := prev.Lines[last].Len()
		prev.Lines[last] = append(prev.Lines[last].clone(), b.Lines[0]...).normalize()
		b.Lines = b.Lines[1:]
		if len(b.Lines) == 0 {
			d.removeAt(i)
		}
		return Position{Node: prev.ID, Line: last, Offset: off}, true
	case prev.Kind == KindCode:
		return p, false
	default:
		d.removeAt(i - 1)
		if i >= 2 && isLoose(d.blocks[i-2]) && isLoose(b) {
			// Two loose paragraphs serialize as one text run, so keep them as one block.
			before := d.blocks[i-2]
			off := before.Lines[0].Len()
			before.Lines[0] = append(before.Lines[0].clone(), b.Lines[0]...).normalize()
			d.removeAt(i - 1)
			return Position{Node: before.ID, Offset: off}, true
		}
		return p, true
	}
}

func isLoose(b *Block) bool {
	return b.Kind == KindParagraph && b.Tag == "" && len(b.Lines) == 1
}
