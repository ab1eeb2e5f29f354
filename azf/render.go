package azf

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"
)

// A Mode is the layout mode of the renderer.
type Mode uint32

const (
	// ModeNone is the initial mode, outside any paragraph.
	ModeNone Mode = iota
	// ModeParagraph is inside an automatic <p> element.
	ModeParagraph
	// ModeInline renders into the current flow with spaces kept as written.
	ModeInline
	// ModeVerbatim keeps every space and line break.
	ModeVerbatim
)

// String returns a string representation of the Mode.
func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "None"
	case ModeParagraph:
		return "Paragraph"
	case ModeInline:
		return "Inline"
	case ModeVerbatim:
		return "Verbatim"
	}
	return "Invalid(" + strconv.Itoa(int(m)) + ")"
}

// maxRequireDepth bounds chains of require, which would otherwise recurse forever on a cycle.
const maxRequireDepth = 64

// Renderer turns token trees into HTML.
// A Renderer only holds configuration and can be shared: every call builds its own State.
type Renderer struct {
	registry    *Registry
	highlighter Highlighter
	marker      rune
	normalize   bool
	log         *zap.SugaredLogger
}

// An Option configures a Renderer.
type Option func(*Renderer)

// WithRegistry sets the command registry. The default is DefaultRegistry().
func WithRegistry(reg *Registry) Option {
	return func(r *Renderer) { r.registry = reg }
}

// WithHighlighter sets the syntax highlighter used by include and highlight.
func WithHighlighter(h Highlighter) Option {
	return func(r *Renderer) { r.highlighter = h }
}

// WithMarker sets the character introducing commands when parsing sources.
func WithMarker(marker rune) Option {
	return func(r *Renderer) { r.marker = marker }
}

// WithNormalize makes the renderer apply Unicode NFC normalization to sources before parsing.
func WithNormalize(normalize bool) Option {
	return func(r *Renderer) { r.normalize = normalize }
}

// WithLogger sets the logger for debug traces.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(r *Renderer) { r.log = log }
}

// NewRenderer creates a Renderer with the default commands and highlighter.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{
		registry:    DefaultRegistry(),
		highlighter: NewChromaHighlighter(DefaultCodeStyle),
		marker:      DefaultMarker,
		log:         zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Marker returns the command marker used by the renderer.
func (r *Renderer) Marker() rune {
	return r.marker
}

// Registry returns the command registry used by the renderer.
func (r *Renderer) Registry() *Registry {
	return r.registry
}

// Output is the result of rendering a document: the HTML body and the final context,
// including every binding made by the document.
type Output struct {
	Body    string
	Context map[string]string
}

// Title returns the title bound by the document, if any.
func (o *Output) Title() string {
	return o.Context["title"]
}

// Map returns the final context with the body under the "body" key.
func (o *Output) Map() map[string]string {
	m := make(map[string]string, len(o.Context)+1)
	for k, v := range o.Context {
		m[k] = v
	}
	m["body"] = o.Body
	return m
}

// Render renders src with a renderer built for this call.
func Render(src string, context map[string]string, basePath string) (*Output, error) {
	return NewRenderer().RenderString(src, context, basePath)
}

// RenderString parses src and renders it.
func (r *Renderer) RenderString(src string, context map[string]string, basePath string) (*Output, error) {
	return r.renderSource(src, context, basePath, 0)
}

// Render renders a token tree against a copy of context.
// basePath is the directory used to resolve files named by include and require.
func (r *Renderer) Render(tokens []Token, context map[string]string, basePath string) (*Output, error) {
	return r.render(tokens, context, basePath, 0)
}

func (r *Renderer) renderSource(src string, context map[string]string, basePath string, depth int) (*Output, error) {
	if r.normalize {
		src = norm.NFC.String(src)
	}
	tokens, err := Parse(src, r.marker)
	if err != nil {
		return nil, err
	}
	return r.render(tokens, context, basePath, depth)
}

func (r *Renderer) render(tokens []Token, context map[string]string, basePath string, depth int) (*Output, error) {
	s := &State{
		r:        r,
		out:      &ByteRenderer{},
		context:  copyContext(context),
		basePath: basePath,
		depth:    depth,
	}

	if err := s.render(tokens); err != nil {
		return nil, err
	}

	return &Output{
		Body:    s.out.String(),
		Context: s.context,
	}, nil
}

func copyContext(context map[string]string) map[string]string {
	c := make(map[string]string, len(context))
	for k, v := range context {
		c[k] = v
	}
	return c
}

// State is the mutable state of one render invocation. It is handed to command
// handlers and must not be retained after they return.
type State struct {
	r        *Renderer
	mode     Mode
	pending  int
	out      *ByteRenderer
	context  map[string]string
	basePath string
	depth    int
}

// render walks tokens once, then flushes as if one more line break was seen
// so that an open paragraph is closed.
func (s *State) render(tokens []Token) error {
	breaks := 0

	for _, tok := range tokens {
		switch t := tok.(type) {
		case Command:
			breaks = 0
			if err := s.dispatch(t); err != nil {
				return err
			}

		case Text:
			breaks = 0
			s.emitText(t.Value)

		case LineBreak:
			switch {
			case s.mode == ModeVerbatim:
				s.emitBreak()
			case breaks == 1:
				// A paragraph break does not repeat
				s.emitBreak()
			default:
				breaks++
				s.emitSpace()
			}

		default:
			return fmt.Errorf("unexpected token %T", tok)
		}
	}

	// A verbatim capture keeps the line breaks of the source and nothing more
	if s.mode != ModeVerbatim {
		s.emitBreak()
	}
	return nil
}

func (s *State) dispatch(cmd Command) error {
	h := s.r.registry.Lookup(cmd.Name)
	s.r.log.Debugw("dispatch", "command", cmd.Name, "args", len(cmd.Arguments), "mode", s.mode, "block", h.Block())

	if h.Block() {
		// Whitespace next to a block element is not significant
		s.pending = 0
		defer s.push(ModeInline)()
	}

	if err := h.Render(s, cmd); err != nil {
		var unknown *UnknownCommandError
		if errors.As(err, &unknown) && unknown.Name == cmd.Name {
			return err
		}
		return &CommandError{Name: cmd.Name, Err: err}
	}
	return nil
}

// push switches to mode and returns the function restoring the previous one.
// Callers defer it so the mode is restored on every exit path.
func (s *State) push(mode Mode) (pop func()) {
	previous := s.mode
	s.mode = mode
	return func() {
		s.mode = previous
	}
}

// emitBreak handles a newline: it closes an open paragraph, or is kept as is in verbatim mode.
func (s *State) emitBreak() {
	s.pending = 0
	switch s.mode {
	case ModeParagraph:
		s.out.Render("</p>")
		s.mode = ModeNone
	case ModeVerbatim:
		s.out.Render(newline)
	}
}

// emitSpace collapses runs of spaces, except in inline and verbatim modes where they are kept.
func (s *State) emitSpace() {
	switch s.mode {
	case ModeInline, ModeVerbatim:
		s.out.Render(byte(' '))
	default:
		s.pending = 1
	}
}

func (s *State) emitText(value string) {
	if s.mode == ModeVerbatim {
		s.out.Render(value)
		return
	}

	for len(value) > 0 {
		i := strings.IndexByte(value, ' ')
		if i == 0 {
			s.emitSpace()
			value = value[1:]
			continue
		}
		if i < 0 {
			i = len(value)
		}
		s.emitContent(value[:i])
		value = value[i:]
	}
}

// emitContent writes non-blank content, opening a paragraph if needed.
func (s *State) emitContent(value string) {
	s.flushSpace()
	if s.mode == ModeNone {
		s.out.Render("<p>")
		s.mode = ModeParagraph
	}
	s.out.Render(value)
}

func (s *State) flushSpace() {
	if s.pending == 1 && (s.mode == ModeParagraph || s.mode == ModeInline) {
		s.out.Render(byte(' '))
	}
	s.pending = 0
}

// capture renders tokens in mode into a separate buffer and returns its content.
// The previous mode, buffer and pending space are restored even on failure.
func (s *State) capture(mode Mode, tokens []Token) (string, error) {
	buf := &ByteRenderer{}
	previousOut, previousPending := s.out, s.pending
	s.out, s.pending = buf, 0
	pop := s.push(mode)
	defer func() {
		pop()
		s.out, s.pending = previousOut, previousPending
	}()

	if err := s.render(tokens); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Write appends raw output for a command. A pending collapsed space is written first,
// but no paragraph is opened.
func (s *State) Write(elems ...any) {
	s.flushSpace()
	s.out.Render(elems...)
}

// Flatten renders tokens in an inline frame and returns the result as a string.
func (s *State) Flatten(tokens []Token) (string, error) {
	return s.capture(ModeInline, tokens)
}

// Verbatim renders tokens keeping every space and line break, and returns the result.
func (s *State) Verbatim(tokens []Token) (string, error) {
	return s.capture(ModeVerbatim, tokens)
}

// RenderInline renders tokens in an inline frame directly into the output.
func (s *State) RenderInline(tokens []Token) error {
	defer s.push(ModeInline)()
	return s.render(tokens)
}

// ResetSpace forgets a pending collapsed space.
func (s *State) ResetSpace() {
	s.pending = 0
}

// Mode returns the current mode.
func (s *State) Mode() Mode {
	return s.mode
}

// Lookup returns the value bound to key in the context.
func (s *State) Lookup(key string) (string, bool) {
	v, ok := s.context[key]
	return v, ok
}

// Bind sets key to value in the context.
func (s *State) Bind(key, value string) {
	s.r.log.Debugw("bind", "key", key, "value", value)
	s.context[key] = value
}

// BasePath returns the directory used to resolve relative file names.
func (s *State) BasePath() string {
	return s.basePath
}

// Highlight passes code to the syntax highlighter of the renderer.
func (s *State) Highlight(lang, code string) (string, error) {
	return s.r.highlighter.Highlight(lang, code)
}

// Logger returns the logger of the renderer.
func (s *State) Logger() *zap.SugaredLogger {
	return s.r.log
}
