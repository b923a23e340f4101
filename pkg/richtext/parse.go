package richtext

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Parse builds a document from serialized markup.
//
// Markup the editor cannot edit structurally (headings, links, tables, nested blocks)
// is kept as raw blocks and serialized back verbatim.
func Parse(markup string) (*Document, error) {
	d := NewDocument()
	if strings.TrimSpace(markup) == "" {
		return d, nil
	}

	container := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(markup), container)
	if err != nil {
		return nil, fmt.Errorf("parse document markup: %w", err)
	}

	var inline []*html.Node
	flush := func() {
		if len(inline) == 0 {
			return
		}
		group := inline
		inline = nil
		if isBlankGroup(group) {
			return
		}
		if line, ok := parseInline(group, 0); ok {
			d.blocks = append(d.blocks, &Block{ID: d.newID(), Kind: KindParagraph, Lines: []Line{line}})
			return
		}
		d.blocks = append(d.blocks, &Block{ID: d.newID(), Kind: KindRaw, Raw: renderNodes(group)})
	}

	for _, n := range nodes {
		if isInlineNode(n) {
			inline = append(inline, n)
			continue
		}
		flush()
		if b := parseBlock(n); b != nil {
			b.ID = d.newID()
			d.blocks = append(d.blocks, b)
		}
	}
	flush()
	return d, nil
}

func isInlineNode(n *html.Node) bool {
	switch n.Type {
	case html.TextNode:
		return true
	case html.ElementNode:
		switch n.DataAtom {
		case atom.B, atom.Strong, atom.I, atom.Em, atom.Br, atom.Span, atom.A, atom.U, atom.S,
			atom.Code, atom.Sub, atom.Sup, atom.Mark, atom.Small, atom.Font:
			return true
		}
	}
	return false
}

func isBlankGroup(nodes []*html.Node) bool {
	for _, n := range nodes {
		if n.Type != html.TextNode || strings.TrimSpace(n.Data) != "" {
			return false
		}
	}
	return true
}

func parseBlock(n *html.Node) *Block {
	switch n.Type {
	case html.CommentNode:
		return &Block{Kind: KindRaw, Raw: renderNodes([]*html.Node{n})}
	case html.ElementNode:
	default:
		return nil
	}

	switch n.DataAtom {
	case atom.P, atom.Div:
		if line, ok := parseInline(children(n), 0); ok {
			return &Block{Kind: KindParagraph, Tag: n.Data, Lines: []Line{line}}
		}
	case atom.Ul:
		if lines, ok := parseListItems(n); ok {
			return &Block{Kind: KindList, Lines: lines}
		}
	case atom.Img:
		return &Block{Kind: KindImage, Src: attr(n, "src"), Alt: attr(n, "alt")}
	case atom.Pre:
		return parseCode(n)
	}
	return &Block{Kind: KindRaw, Raw: renderNodes([]*html.Node{n})}
}

func parseListItems(ul *html.Node) ([]Line, bool) {
	lines := []Line{}
	for c := ul.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode && strings.TrimSpace(c.Data) == "" {
			continue
		}
		if c.Type != html.ElementNode || c.DataAtom != atom.Li {
			return nil, false
		}
		line, ok := parseInline(children(c), 0)
		if !ok {
			return nil, false
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		lines = append(lines, nil)
	}
	return lines, true
}

// parseInline flattens formatting elements into runs. It fails on any element the
// mark model cannot represent so the caller can keep the markup raw.
func parseInline(nodes []*html.Node, marks MarkSet) (Line, bool) {
	var line Line
	for _, n := range nodes {
		switch n.Type {
		case html.TextNode:
			line = append(line, Run{Text: collapseSpace(n.Data), Marks: marks})
		case html.ElementNode:
			var inner MarkSet
			switch n.DataAtom {
			case atom.B, atom.Strong:
				inner = marks | MarkBold
			case atom.I, atom.Em:
				inner = marks | MarkItalic
			case atom.Br:
				line = append(line, Run{Text: "\n", Marks: marks})
				continue
			case atom.Span:
				if len(n.Attr) > 0 {
					return nil, false
				}
				inner = marks
			default:
				return nil, false
			}
			sub, ok := parseInline(children(n), inner)
			if !ok {
				return nil, false
			}
			line = append(line, sub...)
		default:
			return nil, false
		}
	}
	return line.normalize(), true
}

// collapseSpace folds every whitespace run holding a line break or tab into a
// single space, the way the run renders. A '\n' in a Run is reserved for <br>.
func collapseSpace(s string) string {
	if !strings.ContainsAny(s, "\n\r\t\f") {
		return s
	}
	var sb strings.Builder
	var ws []rune
	flushSpace := func() {
		if len(ws) == 0 {
			return
		}
		if strings.ContainsAny(string(ws), "\n\r\t\f") {
			sb.WriteByte(' ')
		} else {
			sb.WriteString(string(ws))
		}
		ws = ws[:0]
	}
	for _, r := range s {
		switch r {
		case ' ', '\n', '\r', '\t', '\f':
			ws = append(ws, r)
			continue
		}
		flushSpace()
		sb.WriteRune(r)
	}
	flushSpace()
	return sb.String()
}

func parseCode(pre *html.Node) *Block {
	b := &Block{Kind: KindCode}
	src := pre
	var elems []*html.Node
	for c := pre.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			elems = append(elems, c)
		}
	}
	if len(elems) == 1 && elems[0].DataAtom == atom.Code {
		src = elems[0]
		b.Language = languageFromClass(attr(src, "class"))
	}

	b.Code = textContent(src)
	highlighted := attr(src, "data-highlighted") != ""
	for c := src.FirstChild; c != nil && !highlighted; c = c.NextSibling {
		highlighted = c.Type == html.ElementNode
	}
	if highlighted {
		b.Highlighted = renderNodes(children(src))
	}
	return b
}

func languageFromClass(class string) string {
	for _, f := range strings.Fields(class) {
		if l, ok := strings.CutPrefix(f, "language-"); ok {
			return l
		}
		if l, ok := strings.CutPrefix(f, "lang-"); ok {
			return l
		}
	}
	return ""
}

func children(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			return
		}
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Br:
				sb.WriteByte('\n')
				return
			case atom.Script, atom.Style:
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func renderNodes(nodes []*html.Node) string {
	var sb strings.Builder
	for _, n := range nodes {
		_ = html.Render(&sb, n)
	}
	return sb.String()
}

// StripTags returns the text content of a markup fragment with every tag removed.
func StripTags(markup string) string {
	container := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(markup), container)
	if err != nil {
		return ""
	}
	var sb strings.Builder
	for _, n := range nodes {
		sb.WriteString(textContent(n))
	}
	return sb.String()
}
