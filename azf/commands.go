package azf

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
)

// headings maps the section commands to their heading element.
var headings = []struct {
	name string
	tag  string
}{
	{"section", "h2"},
	{"subsection", "h3"},
	{"subsubsection", "h4"},
	{"subsubsubsection", "h5"},
	{"subsubsubsubsection", "h6"},
}

// DefaultRegistry returns a new registry holding every built-in command.
// Each call returns a fresh registry, so callers may extend it freely.
func DefaultRegistry() *Registry {
	reg := NewRegistry()

	reg.Register("title", Block(renderTitle))
	for _, h := range headings {
		reg.Register(h.name, Block(renderHeading(h.tag)))
	}
	reg.Register("list", Block(renderList))
	reg.Register("item", Inline(renderItem))
	reg.Register("href", Inline(renderHref))
	reg.Register("image", Inline(renderImage))
	reg.Register("code", Inline(renderCode))
	reg.Register("include", Inline(renderInclude))
	reg.Register("require", Block(renderRequire))
	reg.Register("context", Inline(renderContext))
	reg.Register("highlight", Block(renderHighlight))

	reg.Register("diagram", Block(renderDiagram))
	reg.Register("markdown", Block(renderMarkdown))

	return reg
}

// need checks that cmd was written with at least n argument groups.
func need(cmd Command, n int) error {
	if len(cmd.Arguments) < n {
		return &ArgumentError{Command: cmd.Name, Want: n, Got: len(cmd.Arguments)}
	}
	return nil
}

// flattenAll flattens the first n arguments of cmd.
func flattenAll(s *State, cmd Command, n int) ([]string, error) {
	out := make([]string, n)
	for i := 0; i < n; i++ {
		v, err := s.Flatten(cmd.Arg(i))
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// optional flattens the argument at index i, returning "" if it was not written.
func optional(s *State, cmd Command, i int) (string, error) {
	if i >= len(cmd.Arguments) {
		return "", nil
	}
	return s.Flatten(cmd.Arg(i))
}

func renderTitle(s *State, cmd Command) error {
	if err := need(cmd, 1); err != nil {
		return err
	}

	title, err := s.Flatten(cmd.Arg(0))
	if err != nil {
		return err
	}
	s.Bind("title", title)

	s.Write("<h1>", title, "</h1>")
	return nil
}

func renderHeading(tag string) HandlerFunc {
	return func(s *State, cmd Command) error {
		if err := need(cmd, 1); err != nil {
			return err
		}
		s.Write("<", tag, ">")
		if err := s.RenderInline(cmd.Arg(0)); err != nil {
			return err
		}
		s.Write("</", tag, ">")
		return nil
	}
}

func renderList(s *State, cmd Command) error {
	if err := need(cmd, 1); err != nil {
		return err
	}

	s.ResetSpace()
	s.Write("<ol>")
	if err := s.RenderInline(cmd.Arg(0)); err != nil {
		return err
	}
	s.Write("</ol>")
	return nil
}

func renderItem(s *State, cmd Command) error {
	if err := need(cmd, 1); err != nil {
		return err
	}

	s.Write("<li>")
	if err := s.RenderInline(cmd.Arg(0)); err != nil {
		return err
	}
	s.Write("</li>")
	return nil
}

func renderHref(s *State, cmd Command) error {
	if err := need(cmd, 2); err != nil {
		return err
	}

	args, err := flattenAll(s, cmd, 2)
	if err != nil {
		return err
	}
	url, text := args[0], args[1]

	class, err := optional(s, cmd, 2)
	if err != nil {
		return err
	}

	// The url may name a context key instead of being a literal
	if target, ok := s.Lookup(url); ok {
		url = target
	}

	if len(class) > 0 {
		s.Write(`<a href="`, url, `" class="`, class, `">`, text, "</a>")
	} else {
		s.Write(`<a href="`, url, `">`, text, "</a>")
	}
	return nil
}

func renderImage(s *State, cmd Command) error {
	if err := need(cmd, 2); err != nil {
		return err
	}

	args, err := flattenAll(s, cmd, 2)
	if err != nil {
		return err
	}

	s.Write(`<img src="`, args[0], `" title="`, args[1], `" />`)
	return nil
}

func renderCode(s *State, cmd Command) error {
	if err := need(cmd, 1); err != nil {
		return err
	}

	class, err := optional(s, cmd, 1)
	if err != nil {
		return err
	}

	text, err := s.Flatten(cmd.Arg(0))
	if err != nil {
		return err
	}

	if len(class) > 0 {
		s.Write(`<code class="`, class, `">`, html.EscapeString(text), "</code>")
	} else {
		s.Write("<code>", text, "</code>")
	}
	return nil
}

// readRelative reads name relative to the base path of the render.
// No sanitization is done: callers needing a sandbox validate paths themselves.
func readRelative(s *State, name string) (fullPath string, content []byte, err error) {
	fullPath = filepath.Join(s.BasePath(), name)
	s.Logger().Debugw("reading file", "name", name, "path", fullPath)

	content, err = os.ReadFile(fullPath)
	if err != nil {
		return fullPath, nil, err
	}
	return fullPath, content, nil
}

func renderInclude(s *State, cmd Command) error {
	if err := need(cmd, 1); err != nil {
		return err
	}

	name, err := s.Flatten(cmd.Arg(0))
	if err != nil {
		return err
	}

	_, content, err := readRelative(s, name)
	if err != nil {
		return err
	}

	// The language is the file extension without the dot
	lang := strings.TrimPrefix(filepath.Ext(name), ".")

	code, err := s.Highlight(lang, string(content))
	if err != nil {
		return fmt.Errorf("highlighting %s: %w", name, err)
	}

	s.Write(`<div class="include">`, code, "</div>")
	return nil
}

func renderRequire(s *State, cmd Command) error {
	if err := need(cmd, 1); err != nil {
		return err
	}

	name, err := s.Flatten(cmd.Arg(0))
	if err != nil {
		return err
	}

	if s.depth >= maxRequireDepth {
		return fmt.Errorf("require %s: more than %d nested documents", name, maxRequireDepth)
	}

	fullPath, content, err := readRelative(s, name)
	if err != nil {
		return err
	}

	// The required document gets a copy of the context and its own directory as base path.
	// Its bindings are discarded.
	sub, err := s.r.renderSource(string(content), s.context, filepath.Dir(fullPath), s.depth+1)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	s.Write(sub.Body)
	return nil
}

func renderContext(s *State, cmd Command) error {
	if err := need(cmd, 1); err != nil {
		return err
	}

	key, err := s.Flatten(cmd.Arg(0))
	if err != nil {
		return err
	}

	value, ok := s.Lookup(key)
	if !ok {
		return fmt.Errorf("%w: %q", ErrMissingContextKey, key)
	}

	s.Write(value)
	return nil
}

func renderHighlight(s *State, cmd Command) error {
	if err := need(cmd, 2); err != nil {
		return err
	}

	lang, err := s.Flatten(cmd.Arg(0))
	if err != nil {
		return err
	}

	code, err := s.Verbatim(cmd.Arg(1))
	if err != nil {
		return err
	}

	s.Logger().Debugw("highlight", "lang", lang, "bytes", len(code))

	result, err := s.Highlight(lang, code)
	if err != nil {
		return err
	}

	s.Write(result)
	return nil
}
