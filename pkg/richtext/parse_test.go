package richtext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSerializeRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{name: "paragraph with bold", input: "<p>hello <b>world</b></p>", want: "<p>hello <b>world</b></p>"},
		{name: "strong and em normalize", input: "<p><strong>a</strong><em>b</em></p>", want: "<p><b>a</b><i>b</i></p>"},
		{name: "nested marks", input: "<p><b><i>x</i></b></p>", want: "<p><b><i>x</i></b></p>"},
		{name: "line break", input: "<p>a<br>b</p>", want: "<p>a<br>b</p>"},
		{name: "loose text", input: "plain text", want: "plain text"},
		{name: "div keeps tag", input: "<div>block</div>", want: "<div>block</div>"},
		{name: "unordered list", input: "<ul><li>one</li><li>two</li></ul>", want: "<ul><li>one</li><li>two</li></ul>"},
		{name: "image", input: `<img src="data:image/png;base64,AAAA">`, want: `<img src="data:image/png;base64,AAAA">`},
		{name: "image with alt", input: `<img src="a.png" alt="diagram">`, want: `<img src="a.png" alt="diagram">`},
		{name: "code block", input: `<pre><code class="language-go">x := 1</code></pre>`, want: `<pre><code class="language-go">x := 1</code></pre>`},
		{name: "escaped text", input: "<p>a &lt; b &amp;&amp; c</p>", want: "<p>a &lt; b &amp;&amp; c</p>"},
		{name: "heading kept raw", input: "<h1>Title</h1>", want: "<h1>Title</h1>"},
		{name: "link kept raw", input: `<p>see <a href="/x">here</a></p>`, want: `<p>see <a href="/x">here</a></p>`},
		{name: "whitespace between blocks dropped", input: "<p>a</p>\n<p>b</p>", want: "<p>a</p><p>b</p>"},
		{name: "source newline folds to space", input: "<p>line one\nline two</p>", want: "<p>line one line two</p>"},
		{name: "tab and indentation fold", input: "<p>a\t\tb\n    c</p>", want: "<p>a b c</p>"},
		{name: "plain spaces kept", input: "<p>a  b</p>", want: "<p>a  b</p>"},
		{name: "break beside source newline", input: "<p>a<br>\nb</p>", want: "<p>a<br> b</p>"},
		{
			name:  "indented markup",
			input: "<ul>\n  <li>a</li>\n  <li>b</li>\n</ul>\n<p>\n  x <b>y</b>\n</p>",
			want:  "<ul><li>a</li><li>b</li></ul><p> x <b>y</b> </p>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, doc.Serialize())

			again, err := Parse(doc.Serialize())
			require.NoError(t, err)
			assert.Equal(t, doc.Serialize(), again.Serialize())
		})
	}
}

func TestParseBlockKinds(t *testing.T) {
	doc, err := Parse(`<p>intro</p><ul><li>a</li></ul><img src="x.png"><pre><code class="lang-python">pass</code></pre><table></table>`)
	require.NoError(t, err)

	blocks := doc.Blocks()
	require.Len(t, blocks, 5)

	kinds := make([]BlockKind, len(blocks))
	for i, b := range blocks {
		kinds[i] = b.Kind
	}
	assert.Equal(t, []BlockKind{KindParagraph, KindList, KindImage, KindCode, KindRaw}, kinds)
	assert.Equal(t, "python", blocks[3].Language)
	assert.Equal(t, "pass", blocks[3].Code)

	seen := map[NodeID]bool{}
	for _, b := range blocks {
		assert.NotZero(t, b.ID)
		assert.False(t, seen[b.ID], "duplicate id %d", b.ID)
		seen[b.ID] = true
	}
}

func TestParseFlattensHighlightedCode(t *testing.T) {
	doc, err := Parse(`<pre><code class="language-js" data-highlighted="yes"><span class="kd">let</span> x <span class="o">=</span> 1</code></pre>`)
	require.NoError(t, err)

	blocks := doc.Blocks()
	require.Len(t, blocks, 1)
	assert.Equal(t, "let x = 1", blocks[0].Code)
	assert.Equal(t, "js", blocks[0].Language)
	assert.NotEmpty(t, blocks[0].Highlighted)
}

func TestStripTags(t *testing.T) {
	assert.Equal(t, "bold", StripTags("<b>bold</b>"))
	assert.Equal(t, "a < b", StripTags("<p>a &lt; b</p>"))
	assert.Equal(t, "", StripTags(""))
	assert.Equal(t, "bold", StripTags("<b>bold</b><script>alert(1)</script><style>p{color:red}</style>"))
}

func TestOutline(t *testing.T) {
	doc, err := Parse(`<p>hello</p><ul><li>a</li><li>bc</li></ul><pre><code class="language-go">fmt</code></pre>`)
	require.NoError(t, err)

	outline := doc.Outline()
	require.Len(t, outline, 3)
	assert.Equal(t, "paragraph", outline[0].Kind)
	assert.Equal(t, 5, outline[0].Chars)
	assert.Equal(t, 2, outline[1].Items)
	assert.Equal(t, 3, outline[1].Chars)
	assert.Equal(t, "go", outline[2].Language)
}

func TestLineMarks(t *testing.T) {
	line := Line{{Text: "hello world"}}

	bolded := line.setMark(0, 5, MarkBold, true)
	assert.Equal(t, Line{{Text: "hello", Marks: MarkBold}, {Text: " world"}}, bolded)
	assert.True(t, bolded.allHave(0, 5, MarkBold))
	assert.False(t, bolded.allHave(0, 6, MarkBold))

	cleared := bolded.setMark(0, 5, MarkBold, false)
	assert.True(t, cleared.equal(line))

	assert.Equal(t, "hello", line.remove(5, 11).Text())
	assert.Equal(t, "hello, world", line.insert(5, ",", 0).Text())
	assert.Equal(t, MarkBold, bolded.marksAt(3))
	assert.Equal(t, MarkSet(0), bolded.marksAt(7))
}
