package azf

import (
	"context"
	"fmt"

	"oss.terrastruct.com/d2/d2graph"
	"oss.terrastruct.com/d2/d2layouts/d2dagrelayout"
	"oss.terrastruct.com/d2/d2lib"
	"oss.terrastruct.com/d2/d2renderers/d2svg"
	"oss.terrastruct.com/d2/d2themes/d2themescatalog"
	"oss.terrastruct.com/d2/lib/textmeasure"
)

// CompileDiagram compiles a D2 description into an SVG image.
func CompileDiagram(ctx context.Context, source string) ([]byte, error) {
	ruler, err := textmeasure.NewRuler()
	if err != nil {
		return nil, fmt.Errorf("creating text ruler: %w", err)
	}

	defaultLayout := func(ctx context.Context, g *d2graph.Graph) error {
		return d2dagrelayout.Layout(ctx, g, nil)
	}
	diagram, _, err := d2lib.Compile(ctx, source, &d2lib.CompileOptions{
		Layout: defaultLayout,
		Ruler:  ruler,
	})
	if err != nil {
		return nil, fmt.Errorf("compiling diagram: %w", err)
	}

	svg, err := d2svg.Render(diagram, &d2svg.RenderOpts{
		Pad:     d2svg.DEFAULT_PADDING,
		ThemeID: d2themescatalog.NeutralDefault.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("rendering diagram: %w", err)
	}
	return svg, nil
}

// renderDiagram handles diagram{source}{caption}, the caption being optional.
// The source keeps its exact layout, so it is captured in verbatim mode.
func renderDiagram(s *State, cmd Command) error {
	if err := need(cmd, 1); err != nil {
		return err
	}

	source, err := s.Verbatim(cmd.Arg(0))
	if err != nil {
		return err
	}

	caption, err := optional(s, cmd, 1)
	if err != nil {
		return err
	}

	svg, err := CompileDiagram(context.Background(), source)
	if err != nil {
		return err
	}

	s.Write(`<figure class="diagram">`, svg)
	if len(caption) > 0 {
		s.Write("<figcaption>", caption, "</figcaption>")
	}
	s.Write("</figure>")
	return nil
}
