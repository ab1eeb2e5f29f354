package azf

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmparser "github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// newMarkdownEngine builds a converter with GFM extensions, passing raw HTML through
// like the rest of the markup does. An engine is built per conversion, so renders
// never share one.
func newMarkdownEngine() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify, extension.TaskList),
		goldmark.WithParserOptions(gmparser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
}

// ConvertMarkdown renders Markdown source into HTML.
func ConvertMarkdown(source string) (string, error) {
	var buf bytes.Buffer
	if err := newMarkdownEngine().Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("markdown: %w", err)
	}
	return buf.String(), nil
}

// renderMarkdown handles markdown{text}. Markdown is sensitive to line breaks and
// indentation, so the text is captured in verbatim mode.
func renderMarkdown(s *State, cmd Command) error {
	if err := need(cmd, 1); err != nil {
		return err
	}

	source, err := s.Verbatim(cmd.Arg(0))
	if err != nil {
		return err
	}

	out, err := ConvertMarkdown(source)
	if err != nil {
		return err
	}

	s.Write(out)
	return nil
}
