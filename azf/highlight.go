package azf

import (
	"bytes"
	"html"
	"strings"

	"github.com/alecthomas/chroma/v2"
	hlhtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// DefaultCodeStyle is the chroma style used when none is configured.
const DefaultCodeStyle = "swapoff"

// Highlighter turns source code into HTML.
// An unrecognized language must produce a plain preformatted block, not an error.
type Highlighter interface {
	Highlight(lang, code string) (string, error)
}

// HighlighterFunc adapts a function to the Highlighter interface.
type HighlighterFunc func(lang, code string) (string, error)

func (f HighlighterFunc) Highlight(lang, code string) (string, error) {
	return f(lang, code)
}

// PlainHighlighter never highlights: every language gets a plain preformatted block.
var PlainHighlighter = HighlighterFunc(func(lang, code string) (string, error) {
	return Preformatted(code), nil
})

// Preformatted escapes code and wraps it in a <pre> element.
func Preformatted(code string) string {
	return "<pre>" + html.EscapeString(code) + "</pre>"
}

// ChromaHighlighter highlights code with chroma, using inline styles.
type ChromaHighlighter struct {
	style *chroma.Style
}

// NewChromaHighlighter returns a highlighter using the named chroma style.
// Unknown style names fall back to the chroma default.
func NewChromaHighlighter(styleName string) *ChromaHighlighter {
	return &ChromaHighlighter{style: styles.Get(styleName)}
}

// Highlight selects the lexer by name, alias or file extension.
func (h *ChromaHighlighter) Highlight(lang, code string) (string, error) {

	lang = strings.TrimSpace(lang)
	if len(lang) == 0 {
		return Preformatted(code), nil
	}

	// Determine lexer
	l := lexers.Get(lang)
	if l == nil {
		return Preformatted(code), nil
	}
	l = chroma.Coalesce(l)

	// The formatter writes only the highlighted spans, we provide the wrapper
	f := hlhtml.New(hlhtml.Standalone(false), hlhtml.PreventSurroundingPre(true))

	it, err := l.Tokenise(nil, code)
	if err != nil {
		return "", err
	}

	var br ByteRenderer
	br.Render(`<div class="highlight"><pre>`)
	rb := &bytes.Buffer{}
	if err := f.Format(rb, h.style, it); err != nil {
		return "", err
	}
	br.Render(rb.Bytes(), "</pre></div>")

	return br.String(), nil
}
