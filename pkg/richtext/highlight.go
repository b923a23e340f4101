package richtext

import (
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"go.uber.org/zap"
)

// Highlighter renders the source of a code block as highlighting markup.
// The result must be the escaped source interleaved with markup only, so that
// its text content equals source.
type Highlighter interface {
	Highlight(lang, source string) (string, error)
}

// ChromaHighlighter highlights with chroma, emitting CSS classes rather than inline styles.
type ChromaHighlighter struct {
	style     *chroma.Style
	formatter *chromahtml.Formatter
}

// NewChromaHighlighter builds a highlighter for the named chroma style; an
// unknown or empty name selects the fallback style.
func NewChromaHighlighter(style string) *ChromaHighlighter {
	s := styles.Get(style)
	if s == nil {
		s = styles.Fallback
	}
	return &ChromaHighlighter{
		style:     s,
		formatter: chromahtml.New(chromahtml.WithClasses(true), chromahtml.PreventSurroundingPre(true)),
	}
}

func (h *ChromaHighlighter) Highlight(lang, source string) (string, error) {
	lexer := lexers.Get(lang)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	it, err := lexer.Tokenise(nil, source)
	if err != nil {
		return "", fmt.Errorf("tokenise %s: %w", lang, err)
	}
	tokens := it.Tokens()
	// Lexers may append a newline the source does not have.
	if !strings.HasSuffix(source, "\n") && len(tokens) > 0 {
		last := &tokens[len(tokens)-1]
		last.Value = strings.TrimSuffix(last.Value, "\n")
		if last.Value == "" {
			tokens = tokens[:len(tokens)-1]
		}
	}

	var sb strings.Builder
	if err := h.formatter.Format(&sb, h.style, chroma.Literator(tokens...)); err != nil {
		return "", fmt.Errorf("format %s: %w", lang, err)
	}
	return sb.String(), nil
}

// WriteCSS writes the stylesheet matching the classes emitted by Highlight.
func (h *ChromaHighlighter) WriteCSS(w io.Writer) error {
	return h.formatter.WriteCSS(w, h.style)
}

// highlight re-renders b from its plain source. A failing highlighter leaves
// the block unhighlighted.
func (e *Editor) highlight(b *Block) {
	if b.Kind != KindCode || e.hl == nil {
		return
	}
	out, err := e.hl.Highlight(b.Language, b.Code)
	if err != nil {
		e.log.Warn("highlight failed", zap.Uint64("node", uint64(b.ID)), zap.String("language", b.Language), zap.Error(err))
		b.Highlighted = ""
		return
	}
	b.Highlighted = out
}

// HighlightBlock highlights the code block id. A missing or non-code block,
// or a closed editor, is a no-op. Highlighting is a rendering step and does not emit.
func (e *Editor) HighlightBlock(id NodeID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return false
	}
	b, _ := e.doc.find(id)
	if b == nil || b.Kind != KindCode {
		return false
	}
	return e.rehighlight(b)
}

// HighlightAll highlights every code block, as after an external load.
// It reports whether the rendered markup changed.
func (e *Editor) HighlightAll() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return false
	}
	changed := false
	for _, b := range e.doc.blocks {
		if b.Kind == KindCode && e.rehighlight(b) {
			changed = true
		}
	}
	return changed
}

func (e *Editor) rehighlight(b *Block) bool {
	before := b.Highlighted
	e.highlight(b)
	if b.Highlighted == before {
		return false
	}
	e.version++
	e.toggle = nil
	return true
}

// HighlightMarkup parses markup, highlights every code block with h and
// serializes the result. Running it on its own output returns the same markup.
func HighlightMarkup(markup string, h Highlighter) (string, error) {
	doc, err := Parse(markup)
	if err != nil {
		return "", err
	}
	for _, b := range doc.blocks {
		if b.Kind != KindCode {
			continue
		}
		out, err := h.Highlight(b.Language, b.Code)
		if err != nil {
			return "", fmt.Errorf("highlight block %d: %w", b.ID, err)
		}
		b.Highlighted = out
	}
	return doc.Serialize(), nil
}
