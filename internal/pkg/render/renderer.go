package render

import (
	"regexp"

	"lms-be/pkg/richtext"

	"github.com/microcosm-cc/bluemonday"
)

var (
	classPattern       = regexp.MustCompile(`^[a-zA-Z0-9_\- ]+$`)
	highlightedPattern = regexp.MustCompile(`^yes$`)
)

// Renderer prepares stored lesson markup for learners: code blocks are
// highlighted when the consumer has not done so yet and the result is
// sanitized against a UGC policy that keeps highlighter classes and
// embedded data: images.
type Renderer struct {
	highlighter richtext.Highlighter
	policy      *bluemonday.Policy
}

func NewRenderer(h richtext.Highlighter) *Renderer {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Matching(classPattern).OnElements("span", "code", "pre")
	p.AllowAttrs("data-highlighted").Matching(highlightedPattern).OnElements("code")
	p.AllowDataURIImages()
	return &Renderer{highlighter: h, policy: p}
}

// Render never fails: markup that cannot be highlighted is sanitized as is.
func (r *Renderer) Render(markup string) string {
	if r.highlighter != nil {
		if out, err := richtext.HighlightMarkup(markup, r.highlighter); err == nil {
			markup = out
		}
	}
	return r.policy.Sanitize(markup)
}

// Sanitize applies only the display policy.
func (r *Renderer) Sanitize(markup string) string {
	return r.policy.Sanitize(markup)
}
