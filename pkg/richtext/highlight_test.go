package richtext

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChromaHighlighter(t *testing.T) {
	h := NewChromaHighlighter("github")

	tests := []struct {
		name   string
		lang   string
		source string
	}{
		{name: "javascript placeholder", lang: "javascript", source: CodePlaceholder},
		{name: "go", lang: "go", source: "x := 1\nfmt.Println(x)"},
		{name: "trailing newline kept", lang: "python", source: "print('hi')\n"},
		{name: "unknown language", lang: "no-such-language", source: "a < b"},
		{name: "empty language", lang: "", source: "plain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := h.Highlight(tt.lang, tt.source)
			require.NoError(t, err)
			assert.Equal(t, tt.source, StripTags(out))
			assert.NotContains(t, out, "style=")
			assert.NotContains(t, out, "<pre")
		})
	}
}

func TestChromaHighlighterWriteCSS(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, NewChromaHighlighter("").WriteCSS(&sb))
	assert.NotEmpty(t, sb.String())
}

func TestHighlightMarkupIsIdempotent(t *testing.T) {
	h := NewChromaHighlighter("")
	input := `<p>Example</p><pre><code class="language-go">func main() {}</code></pre>`

	once, err := HighlightMarkup(input, h)
	require.NoError(t, err)
	assert.Contains(t, once, `data-highlighted="yes"`)
	assert.True(t, strings.HasPrefix(once, "<p>Example</p>"))

	twice, err := HighlightMarkup(once, h)
	require.NoError(t, err)
	assert.Equal(t, once, twice)

	doc, err := Parse(twice)
	require.NoError(t, err)
	blocks := doc.Blocks()
	require.Len(t, blocks, 2)
	assert.Equal(t, "func main() {}", blocks[1].Code)
}

func TestEditorWithChromaKeepsSource(t *testing.T) {
	e := New("")
	e.InsertCodeBlock(nil)
	e.HighlightAll()

	doc, err := Parse(e.Value())
	require.NoError(t, err)
	blocks := doc.Blocks()
	require.Len(t, blocks, 1)
	assert.Equal(t, CodePlaceholder, blocks[0].Code)
	assert.Equal(t, "javascript", blocks[0].Language)
}
