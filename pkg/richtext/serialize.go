package richtext

import (
	"html"
	"strings"
)

// Serialize projects the document back to markup.
func (d *Document) Serialize() string {
	var sb strings.Builder
	for _, b := range d.blocks {
		writeBlock(&sb, b)
	}
	return sb.String()
}

func renderBlock(b *Block) string {
	var sb strings.Builder
	writeBlock(&sb, b)
	return sb.String()
}

func writeBlock(sb *strings.Builder, b *Block) {
	switch b.Kind {
	case KindParagraph:
		var line Line
		if len(b.Lines) > 0 {
			line = b.Lines[0]
		}
		if b.Tag == "" {
			writeLine(sb, line)
			return
		}
		sb.WriteString("<" + b.Tag + ">")
		writeLine(sb, line)
		sb.WriteString("</" + b.Tag + ">")
	case KindList:
		sb.WriteString("<ul>")
		for _, l := range b.Lines {
			sb.WriteString("<li>")
			writeLine(sb, l)
			sb.WriteString("</li>")
		}
		sb.WriteString("</ul>")
	case KindImage:
		sb.WriteString(`<img src="` + html.EscapeString(b.Src) + `"`)
		if b.Alt != "" {
			sb.WriteString(` alt="` + html.EscapeString(b.Alt) + `"`)
		}
		sb.WriteString(">")
	case KindCode:
		sb.WriteString("<pre><code")
		if b.Language != "" {
			sb.WriteString(` class="language-` + html.EscapeString(b.Language) + `"`)
		}
		if b.Highlighted != "" {
			sb.WriteString(` data-highlighted="yes">`)
			sb.WriteString(b.Highlighted)
		} else {
			sb.WriteString(">")
			sb.WriteString(html.EscapeString(b.Code))
		}
		sb.WriteString("</code></pre>")
	case KindRaw:
		sb.WriteString(b.Raw)
	}
}

func writeLine(sb *strings.Builder, l Line) {
	for _, r := range l {
		if r.Marks.Has(MarkBold) {
			sb.WriteString("<b>")
		}
		if r.Marks.Has(MarkItalic) {
			sb.WriteString("<i>")
		}
		parts := strings.Split(r.Text, "\n")
		for i, p := range parts {
			if i > 0 {
				sb.WriteString("<br>")
			}
			sb.WriteString(html.EscapeString(p))
		}
		if r.Marks.Has(MarkItalic) {
			sb.WriteString("</i>")
		}
		if r.Marks.Has(MarkBold) {
			sb.WriteString("</b>")
		}
	}
}

// PlainText returns the readable text of the document, one block per line.
func (d *Document) PlainText() string {
	var parts []string
	for _, b := range d.blocks {
		switch b.Kind {
		case KindParagraph, KindList:
			for _, l := range b.Lines {
				parts = append(parts, l.Text())
			}
		case KindCode:
			parts = append(parts, b.Code)
		case KindRaw:
			parts = append(parts, StripTags(b.Raw))
		}
	}
	return strings.Join(parts, "\n")
}
