package azf

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileDiagram(t *testing.T) {
	if testing.Short() {
		t.Skip("diagram layout is slow")
	}

	svg, err := CompileDiagram(context.Background(), "parser -> renderer: tokens\n")
	require.NoError(t, err)
	assert.Contains(t, string(svg), "<svg")
	assert.Contains(t, string(svg), "renderer")
}

func TestCompileDiagramError(t *testing.T) {
	_, err := CompileDiagram(context.Background(), "a -> {")
	assert.Error(t, err)
}

func TestDiagramCommand(t *testing.T) {
	if testing.Short() {
		t.Skip("diagram layout is slow")
	}

	out, err := Render("ⵣdiagram{a -> b}{Flow}", nil, "")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out.Body, `<figure class="diagram">`), out.Body)
	assert.True(t, strings.HasSuffix(out.Body, "<figcaption>Flow</figcaption></figure>"))
}
