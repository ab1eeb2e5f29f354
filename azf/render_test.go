package azf

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "Empty",
			src:  "",
			want: "",
		},
		{
			name: "Single line",
			src:  "héllo there what happened to you lately?",
			want: "<p>héllo there what happened to you lately?</p>",
		},
		{
			name: "Two lines",
			src:  "héllo there what happened to you lately? I know\nyou have been up to something, don't you?",
			want: "<p>héllo there what happened to you lately? I know you have been up to something, don't you?</p>",
		},
		{
			name: "Two paragraphs with final newline",
			src: `héllo there what happened to you lately? I know
you have been up to something, don't you?

You don't want to tell me? So do I! You won't hear
a thing from me.
`,
			want: "<p>héllo there what happened to you lately? I know you have been up to something, don't you?</p>" +
				"<p>You don't want to tell me? So do I! You won't hear a thing from me.</p>",
		},
		{
			name: "Dashes over several paragraphs",
			src:  "- héllo there what happened to you lately?\n\n- So much :)\n\n- Good to see you",
			want: "<p>- héllo there what happened to you lately?</p><p>- So much :)</p><p>- Good to see you</p>",
		},
		{
			name: "Title",
			src:  "ⵣtitle{Become rich, successul & respected}",
			want: "<h1>Become rich, successul & respected</h1>",
		},
		{
			name: "Section",
			src:  "ⵣsection{Introduction}",
			want: "<h2>Introduction</h2>",
		},
		{
			name: "Deepest section",
			src:  "ⵣsubsubsubsubsection{Notes}",
			want: "<h6>Notes</h6>",
		},
		{
			name: "List",
			src: `
ⵣlist{
  ⵣitem{eggs}
  ⵣitem{apple}
  ⵣitem{lettuce}
  ⵣitem{what else ?}
}
`,
			want: "<ol>   <li>eggs</li>   <li>apple</li>   <li>lettuce</li>   <li>what else ?</li> </ol>",
		},
		{
			name: "Nested list",
			src: "\nⵣlist{\n  ⵣitem{vegatables \n    ⵣlist{\n      ⵣitem{tomato}\n      ⵣitem{lettuce}\n" +
				"      ⵣitem{beans}\n  }}\n  ⵣitem{meats}\n}\n",
			want: "<ol>   <li>vegatables      <ol>       <li>tomato</li>       <li>lettuce</li>       <li>beans</li>   </ol></li>   <li>meats</li> </ol>",
		},
		{
			name: "Href",
			src:  "ⵣhref{http://URL}{TEXT}",
			want: `<a href="http://URL">TEXT</a>`,
		},
		{
			name: "Href with class",
			src:  "ⵣhref{http://URL}{TEXT}{CSS CLASS}",
			want: `<a href="http://URL" class="CSS CLASS">TEXT</a>`,
		},
		{
			name: "Href with empty class",
			src:  "ⵣhref{http://URL}{TEXT}{}",
			want: `<a href="http://URL">TEXT</a>`,
		},
		{
			name: "Image",
			src:  "ⵣimage{http://URL}{TEXT}",
			want: `<img src="http://URL" title="TEXT" />`,
		},
		{
			name: "Inline command inside a paragraph",
			src:  "see ⵣcode{x} now",
			want: "<p>see <code>x</code> now</p>",
		},
		{
			name: "Code is raw without class",
			src:  "ⵣcode{<b>}",
			want: "<code><b></code>",
		},
		{
			name: "Code is escaped with class",
			src:  "ⵣcode{<b> & co}{go}",
			want: `<code class="go">&lt;b&gt; &amp; co</code>`,
		},
		{
			name: "Spaces collapse",
			src:  "a    b  \n   c",
			want: "<p>a b c</p>",
		},
		{
			name: "Space next to a block is dropped",
			src:  "a ⵣsection{S}",
			want: "<p>a<h2>S</h2></p>",
		},
		{
			name: "Text is not escaped",
			src:  "<em>a & b</em>",
			want: "<p><em>a & b</em></p>",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Render(tt.src, nil, "")
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.Body)
		})
	}
}

// Any run of two or more newlines separates paragraphs exactly like two.
func TestRenderParagraphBreakIdempotent(t *testing.T) {
	want, err := Render("a\n\nb", nil, "")
	require.NoError(t, err)
	assert.Equal(t, "<p>a</p><p>b</p>", want.Body)

	for _, n := range []int{3, 4, 7} {
		got, err := Render("a"+strings.Repeat("\n", n)+"b", nil, "")
		require.NoError(t, err)
		assert.Equal(t, want.Body, got.Body, "%d newlines", n)
	}
}

func TestRenderTitleBinding(t *testing.T) {
	out, err := Render("ⵣtitle{Become rich, successul & respected}", map[string]string{"lang": "en"}, "")
	require.NoError(t, err)

	assert.Equal(t, "Become rich, successul & respected", out.Title())
	assert.Equal(t, map[string]string{
		"lang":  "en",
		"title": "Become rich, successul & respected",
		"body":  "<h1>Become rich, successul & respected</h1>",
	}, out.Map())
}

func TestRenderContextIsCopied(t *testing.T) {
	ctx := map[string]string{"title": "before"}
	out, err := Render("ⵣtitle{after}", ctx, "")
	require.NoError(t, err)

	assert.Equal(t, "after", out.Title())
	assert.Equal(t, "before", ctx["title"])
}

func TestRenderContext(t *testing.T) {
	ctx := map[string]string{"name": "amz", "home": "http://example.org"}

	out, err := Render("hi ⵣcontext{name}, ⵣhref{home}{home}", ctx, "")
	require.NoError(t, err)
	assert.Equal(t, `<p>hi amz, <a href="http://example.org">home</a></p>`, out.Body)
}

func TestRenderErrors(t *testing.T) {
	t.Run("Unknown command", func(t *testing.T) {
		_, err := Render("text ⵣnope{x}", nil, "")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrUnknownCommand))

		var unknown *UnknownCommandError
		require.True(t, errors.As(err, &unknown))
		assert.Equal(t, "nope", unknown.Name)
	})

	t.Run("Nested unknown command", func(t *testing.T) {
		_, err := Render("ⵣlist{ⵣitem{ⵣnope}}", nil, "")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrUnknownCommand))
		assert.Equal(t, `list: item: unknown command: "nope"`, err.Error())
	})

	t.Run("Missing context key", func(t *testing.T) {
		_, err := Render("ⵣcontext{missing}", nil, "")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrMissingContextKey))

		var cmdErr *CommandError
		require.True(t, errors.As(err, &cmdErr))
		assert.Equal(t, "context", cmdErr.Name)
	})

	t.Run("Missing argument", func(t *testing.T) {
		_, err := Render("ⵣhref{http://URL}", nil, "")
		var argErr *ArgumentError
		require.True(t, errors.As(err, &argErr))
		assert.Equal(t, ArgumentError{Command: "href", Want: 2, Got: 1}, *argErr)
	})
}

// modeReportingRegistry adds commands that swallow the failure of their argument and
// then report the mode they are in.
func modeReportingRegistry() *Registry {
	reg := DefaultRegistry()
	reg.Register("fail", Block(func(s *State, cmd Command) error {
		return errors.New("boom")
	}))
	reg.Register("inline", Inline(func(s *State, cmd Command) error {
		_ = s.RenderInline(cmd.Arg(0))
		s.Write("[", s.Mode(), "]")
		return nil
	}))
	reg.Register("verbatim", Inline(func(s *State, cmd Command) error {
		_, _ = s.Verbatim(cmd.Arg(0))
		s.Write("[", s.Mode(), "]")
		return nil
	}))
	return reg
}

func TestRenderModeRestoredOnFailure(t *testing.T) {
	r := NewRenderer(WithRegistry(modeReportingRegistry()))

	out, err := r.RenderString("text ⵣinline{ⵣfail}", nil, "")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(out.Body, "[Paragraph]</p>"), out.Body)

	out, err = r.RenderString("text ⵣverbatim{a\nⵣfail}", nil, "")
	require.NoError(t, err)
	assert.Equal(t, "<p>text [Paragraph]</p>", out.Body)
}

func TestRenderFailureIsWhole(t *testing.T) {
	r := NewRenderer(WithRegistry(modeReportingRegistry()))
	out, err := r.RenderString("a\n\nb ⵣfail\n\nc", nil, "")
	assert.Error(t, err)
	assert.Nil(t, out)
}

func TestRenderHighlight(t *testing.T) {
	var gotLang, gotCode string
	fake := HighlighterFunc(func(lang, code string) (string, error) {
		gotLang, gotCode = lang, code
		return "<pre>highlighted</pre>", nil
	})
	r := NewRenderer(WithHighlighter(fake))

	out, err := r.RenderString("ⵣhighlight{go}{func f() {\n  return  1\n}}\n", nil, "")
	require.NoError(t, err)

	assert.Equal(t, "go", gotLang)
	assert.Equal(t, "func f() {\n  return  1\n}", gotCode)
	assert.Equal(t, "<pre>highlighted</pre>", out.Body)
}

func TestRenderVerbatimKeepsSource(t *testing.T) {
	r := NewRenderer(WithHighlighter(PlainHighlighter))

	tests := []struct {
		name string
		src  string
		want string
	}{
		{"No trailing break", "ⵣhighlight{nope}{a  b\nc}", "<pre>a  b\nc</pre>"},
		{"Trailing break", "ⵣhighlight{nope}{a\n}", "<pre>a\n</pre>"},
		{"Blank lines", "ⵣhighlight{nope}{\n\nx\n\n}", "<pre>\n\nx\n\n</pre>"},
		{"Empty", "ⵣhighlight{nope}{}", "<pre></pre>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := r.RenderString(tt.src, nil, "")
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.Body)
		})
	}
}

func TestRenderNormalize(t *testing.T) {
	// Decomposed accents
	src := "e\u0301te\u0301"

	out, err := NewRenderer(WithNormalize(true)).RenderString(src, nil, "")
	require.NoError(t, err)
	assert.Equal(t, "<p>\u00e9t\u00e9</p>", out.Body)

	out, err = NewRenderer().RenderString(src, nil, "")
	require.NoError(t, err)
	assert.Equal(t, "<p>"+src+"</p>", out.Body)
}

func TestRenderMarker(t *testing.T) {
	r := NewRenderer(WithMarker('@'))
	assert.Equal(t, '@', r.Marker())

	out, err := r.RenderString("@section{S} ⵣ", nil, "")
	require.NoError(t, err)
	assert.Equal(t, "<h2>S</h2><p>ⵣ</p>", out.Body)
}

func TestRenderTokens(t *testing.T) {
	tokens := seq(txt("a"), eol, eol, cmd("section", seq(txt("S"))))
	out, err := NewRenderer().Render(tokens, nil, "")
	require.NoError(t, err)
	assert.Equal(t, "<p>a</p><h2>S</h2>", out.Body)
}

func TestRenderConcurrent(t *testing.T) {
	r := NewRenderer()
	src := "ⵣtitle{T}\n\nsome ⵣcode{x} text\n"

	var wg sync.WaitGroup
	bodies := make([]string, 16)
	for i := range bodies {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out, err := r.RenderString(src, map[string]string{"i": "x"}, "")
			if err == nil {
				bodies[i] = out.Body
			}
		}(i)
	}
	wg.Wait()

	for _, b := range bodies {
		assert.Equal(t, "<h1>T</h1><p>some <code>x</code> text</p>", b)
	}
}

// findAll returns the elements of type a under n, in document order.
func findAll(n *html.Node, a atom.Atom) []*html.Node {
	var found []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == a {
			found = append(found, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return found
}

func TestRenderStructure(t *testing.T) {
	src := `ⵣtitle{Groceries}

Buy these:

ⵣlist{
  ⵣitem{vegetables ⵣlist{ⵣitem{tomato} ⵣitem{beans}}}
  ⵣitem{meats}
}

See ⵣhref{http://example.org}{the shop}.
`
	out, err := Render(src, nil, "")
	require.NoError(t, err)

	doc, err := html.Parse(strings.NewReader(out.Body))
	require.NoError(t, err)

	assert.Len(t, findAll(doc, atom.H1), 1)
	assert.Len(t, findAll(doc, atom.P), 2)

	lists := findAll(doc, atom.Ol)
	require.Len(t, lists, 2)
	assert.Len(t, findAll(lists[0], atom.Li), 4)
	assert.Len(t, findAll(lists[1], atom.Li), 2)

	// The inner list lives in the first item of the outer one
	assert.Equal(t, atom.Li, lists[1].Parent.DataAtom)

	links := findAll(doc, atom.A)
	require.Len(t, links, 1)
	assert.Equal(t, atom.P, links[0].Parent.DataAtom)
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "None", ModeNone.String())
	assert.Equal(t, "Verbatim", ModeVerbatim.String())
	assert.Equal(t, "Invalid(9)", Mode(9).String())
}
