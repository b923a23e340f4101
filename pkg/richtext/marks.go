package richtext

import (
	"strings"
	"unicode/utf8"
)

// MarkSet is a bitmask of character-level formatting marks.
type MarkSet uint8

const (
	MarkBold MarkSet = 1 << iota
	MarkItalic
)

func (m MarkSet) Has(mark MarkSet) bool { return m&mark == mark }

func (m MarkSet) With(mark MarkSet, on bool) MarkSet {
	if on {
		return m | mark
	}
	return m &^ mark
}

// Run is a span of text sharing one MarkSet. A '\n' inside Text is a hard line break.
type Run struct {
	Text  string
	Marks MarkSet
}

// Line is an ordered sequence of runs: the text content of a paragraph or of one list item.
type Line []Run

// Len returns the rune length of the line.
func (l Line) Len() int {
	n := 0
	for _, r := range l {
		n += utf8.RuneCountInString(r.Text)
	}
	return n
}

func (l Line) Text() string {
	var sb strings.Builder
	for _, r := range l {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

func (l Line) clone() Line {
	if l == nil {
		return nil
	}
	return append(Line(nil), l...)
}

// normalize drops empty runs and merges neighbours with equal marks.
func (l Line) normalize() Line {
	out := make(Line, 0, len(l))
	for _, r := range l {
		if r.Text == "" {
			continue
		}
		if n := len(out); n > 0 && out[n-1].Marks == r.Marks {
			out[n-1].Text += r.Text
			continue
		}
		out = append(out, r)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// splitAt cuts the line at rune offset off.
func (l Line) splitAt(off int) (Line, Line) {
	if off <= 0 {
		return nil, l.clone()
	}
	var left, right Line
	pos := 0
	for _, r := range l {
		n := utf8.RuneCountInString(r.Text)
		switch {
		case pos+n <= off:
			left = append(left, r)
		case pos >= off:
			right = append(right, r)
		default:
			runes := []rune(r.Text)
			cut := off - pos
			left = append(left, Run{Text: string(runes[:cut]), Marks: r.Marks})
			right = append(right, Run{Text: string(runes[cut:]), Marks: r.Marks})
		}
		pos += n
	}
	return left, right
}

// cut splits the line into [0,from), [from,to) and [to,len).
func (l Line) cut(from, to int) (Line, Line, Line) {
	head, rest := l.splitAt(from)
	mid, tail := rest.splitAt(to - from)
	return head, mid, tail
}

func (l Line) insert(off int, text string, marks MarkSet) Line {
	head, tail := l.splitAt(off)
	out := append(head, Run{Text: text, Marks: marks})
	return append(out, tail...).normalize()
}

func (l Line) remove(from, to int) Line {
	if from >= to {
		return l
	}
	head, _, tail := l.cut(from, to)
	return append(head, tail...).normalize()
}

// marksAt returns the marks a character typed at off would inherit:
// those of the rune before off, or of the first rune when off is 0.
func (l Line) marksAt(off int) MarkSet {
	pos := 0
	for i, r := range l {
		n := utf8.RuneCountInString(r.Text)
		if off <= pos+n && (off > pos || i == 0) {
			return r.Marks
		}
		pos += n
	}
	if len(l) > 0 {
		return l[len(l)-1].Marks
	}
	return 0
}

// allHave reports whether every rune in [from,to) carries mark. Empty ranges report true.
func (l Line) allHave(from, to int, mark MarkSet) bool {
	_, mid, _ := l.cut(from, to)
	for _, r := range mid {
		if r.Text != "" && !r.Marks.Has(mark) {
			return false
		}
	}
	return true
}

func (l Line) setMark(from, to int, mark MarkSet, on bool) Line {
	if from >= to {
		return l
	}
	head, mid, tail := l.cut(from, to)
	for i := range mid {
		mid[i].Marks = mid[i].Marks.With(mark, on)
	}
	out := append(head, mid...)
	return append(out, tail...).normalize()
}

func (l Line) equal(o Line) bool {
	a, b := l.normalize(), o.normalize()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
