package richtext

import (
	"errors"
	"fmt"
)

var ErrUnknownCommand = errors.New("unknown editor command")

// Command is a discrete toolbar action.
type Command uint8

const (
	CommandBold Command = iota + 1
	CommandItalic
	CommandUnorderedList
	CommandCodeBlock
)

var commandNames = map[string]Command{
	"bold":                CommandBold,
	"italic":              CommandItalic,
	"insertUnorderedList": CommandUnorderedList,
	"codeBlock":           CommandCodeBlock,
}

func (c Command) String() string {
	for name, cmd := range commandNames {
		if cmd == c {
			return name
		}
	}
	return fmt.Sprintf("Command(%d)", uint8(c))
}

// ParseCommand maps a toolbar action name to its command.
func ParseCommand(name string) (Command, error) {
	if c, ok := commandNames[name]; ok {
		return c, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCommand, name)
}

// toggleRecord remembers the state before the last toggle so that repeating
// the same toggle on an unchanged selection restores it exactly.
type toggleRecord struct {
	cmd       Command
	version   uint64
	before    *Document
	selBefore *Selection
	selAfter  *Selection
}

// Exec runs a toolbar command: it suppresses the event's default action,
// focuses the document region and applies the command at the selection.
func (e *Editor) Exec(ev Event, cmd Command) error {
	preventDefault(ev)
	switch cmd {
	case CommandBold:
		e.runToggle(cmd, func() { e.toggleMark(MarkBold) })
	case CommandItalic:
		e.runToggle(cmd, func() { e.toggleMark(MarkItalic) })
	case CommandUnorderedList:
		e.runToggle(cmd, func() { e.preserving(e.doc.toggleList(e.selectionOrCaret())) })
	case CommandCodeBlock:
		e.insertCodeBlock(e.lang)
	default:
		return fmt.Errorf("%w: %d", ErrUnknownCommand, cmd)
	}
	return nil
}

// ExecName runs the command registered under name.
func (e *Editor) ExecName(ev Event, name string) error {
	cmd, err := ParseCommand(name)
	if err != nil {
		preventDefault(ev)
		return err
	}
	return e.Exec(ev, cmd)
}

func (e *Editor) ToggleBold(ev Event) { _ = e.Exec(ev, CommandBold) }

func (e *Editor) ToggleItalic(ev Event) { _ = e.Exec(ev, CommandItalic) }

func (e *Editor) ToggleUnorderedList(ev Event) { _ = e.Exec(ev, CommandUnorderedList) }

// InsertCodeBlock appends a highlighted code block holding a placeholder.
func (e *Editor) InsertCodeBlock(ev Event) { _ = e.Exec(ev, CommandCodeBlock) }

// InsertCodeBlockLang is InsertCodeBlock with an explicit language tag.
func (e *Editor) InsertCodeBlockLang(ev Event, lang string) {
	preventDefault(ev)
	if lang == "" {
		lang = e.lang
	}
	e.insertCodeBlock(lang)
}

// runToggle applies a reversible formatting command. Repeating the same command
// with no mutation or selection change in between restores the prior state.
func (e *Editor) runToggle(cmd Command, apply func()) {
	e.mutate(func() bool {
		e.focus()
		if e.sel == nil {
			return false
		}
		if r := e.toggle; r != nil && r.cmd == cmd && r.version == e.version && sameSelection(e.sel, r.selAfter) {
			e.doc = r.before
			e.sel = r.selBefore
			e.toggle = nil
			return true
		}

		if (cmd == CommandBold || cmd == CommandItalic) && e.sel.Collapsed() {
			mark := MarkBold
			if cmd == CommandItalic {
				mark = MarkItalic
			}
			e.pending ^= mark
			return false
		}

		before := e.doc.Clone()
		selBefore := *e.sel
		apply()
		if e.doc.Serialize() == before.Serialize() {
			return false
		}
		rec := &toggleRecord{cmd: cmd, version: e.version + 1, before: before, selBefore: &selBefore}
		if e.sel != nil {
			after := *e.sel
			rec.selAfter = &after
		}
		e.toggle = rec
		return true
	})
}

func sameSelection(a, b *Selection) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func (e *Editor) selectionOrCaret() Selection {
	if e.sel == nil {
		return Caret(e.doc.endPosition())
	}
	return *e.sel
}

// toggleMark removes mark from the selected text when every selected character
// carries it, and adds it otherwise. Offsets do not move, so the selection is kept.
func (e *Editor) toggleMark(mark MarkSet) {
	e.preserving(func() func(Position) Position {
		start, end := e.doc.ordered(*e.sel)
		spans := e.doc.textSpans(start, end)
		all := true
		for _, s := range spans {
			if !s.block.Lines[s.line].allHave(s.from, s.to, mark) {
				all = false
				break
			}
		}
		for _, s := range spans {
			s.block.Lines[s.line] = s.block.Lines[s.line].setMark(s.from, s.to, mark, !all)
		}
		return nil
	})
}

type textSpan struct {
	block    *Block
	line     int
	from, to int
}

// textSpans lists the non-empty pieces of text lines covered by [start,end).
func (d *Document) textSpans(start, end Position) []textSpan {
	si, ei := d.index(start), d.index(end)
	var spans []textSpan
	for i := si; i <= ei && i < len(d.blocks); i++ {
		b := d.blocks[i]
		if !b.isText() {
			continue
		}
		for l := range b.Lines {
			from, to := 0, b.Lines[l].Len()
			if i == si {
				if l < start.Line {
					continue
				}
				if l == start.Line {
					from = start.Offset
				}
			}
			if i == ei {
				if l > end.Line {
					continue
				}
				if l == end.Line {
					to = end.Offset
				}
			}
			if from < to {
				spans = append(spans, textSpan{block: b, line: l, from: from, to: to})
			}
		}
	}
	return spans
}

// toggleList converts the text blocks touched by sel into an unordered list,
// or back into paragraphs when they all are lists already. The returned remap
// translates positions inside rewritten blocks.
func (d *Document) toggleList(sel Selection) func() func(Position) Position {
	return func() func(Position) Position {
		start, end := d.ordered(sel)
		si, ei := d.index(start), d.index(end)
		if ei >= len(d.blocks) {
			ei = len(d.blocks) - 1
		}

		var touched []int
		allLists := true
		for i := si; i <= ei && i >= 0; i++ {
			if d.blocks[i].isText() {
				touched = append(touched, i)
				allLists = allLists && d.blocks[i].Kind == KindList
			}
		}

		if len(touched) == 0 {
			at := len(d.blocks)
			if si < len(d.blocks) {
				at = si + 1
			}
			d.insertAt(at, &Block{Kind: KindList, Lines: []Line{nil}})
			return nil
		}
		if allLists {
			return d.unlist(touched)
		}
		return d.list(touched)
	}
}

func (d *Document) unlist(indices []int) func(Position) Position {
	moved := map[NodeID][]NodeID{}
	for k := len(indices) - 1; k >= 0; k-- {
		i := indices[k]
		lb := d.blocks[i]
		ids := make([]NodeID, len(lb.Lines))
		d.removeAt(i)
		for j := len(lb.Lines) - 1; j >= 0; j-- {
			p := &Block{Kind: KindParagraph, Tag: "p", Lines: []Line{lb.Lines[j]}}
			if j == 0 {
				p.ID = lb.ID
			}
			d.insertAt(i, p)
			ids[j] = p.ID
		}
		moved[lb.ID] = ids
	}
	return func(p Position) Position {
		if ids, ok := moved[p.Node]; ok && p.Line < len(ids) {
			return Position{Node: ids[p.Line], Offset: p.Offset}
		}
		return p
	}
}

// list merges each contiguous run of touched text blocks into one list that
// keeps the id of the run's first block.
func (d *Document) list(indices []int) func(Position) Position {
	type target struct {
		node NodeID
		base int
	}
	moved := map[NodeID]target{}

	var runs [][]int
	for _, i := range indices {
		if n := len(runs); n > 0 && runs[n-1][len(runs[n-1])-1] == i-1 {
			runs[n-1] = append(runs[n-1], i)
			continue
		}
		runs = append(runs, []int{i})
	}

	for r := len(runs) - 1; r >= 0; r-- {
		run := runs[r]
		first := d.blocks[run[0]]
		list := &Block{ID: first.ID, Kind: KindList}
		for _, i := range run {
			b := d.blocks[i]
			moved[b.ID] = target{node: first.ID, base: len(list.Lines)}
			list.Lines = append(list.Lines, b.Lines...)
		}
		for k := len(run) - 1; k >= 0; k-- {
			d.removeAt(run[k])
		}
		d.insertAt(run[0], list)
	}
	return func(p Position) Position {
		if t, ok := moved[p.Node]; ok {
			return Position{Node: t.node, Line: t.base + p.Line, Offset: p.Offset}
		}
		return p
	}
}

func (e *Editor) insertCodeBlock(lang string) {
	e.mutate(func() bool {
		e.focus()
		e.preserving(func() func(Position) Position {
			b := &Block{Kind: KindCode, Language: lang, Code: CodePlaceholder}
			e.doc.insertAt(len(e.doc.blocks), b)
			e.highlight(b)
			return nil
		})
		return true
	})
}
