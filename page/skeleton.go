package page

import (
	"github.com/amirouche/azoufzouf/sliceedit"
)

const (
	titlePlaceholder   = "{#title}"
	contentPlaceholder = "HERE_GOES_THE_CONTENT"
)

// skeleton is the page used when no template is configured.
var skeleton = []byte(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{#title}</title>
</head>
<body>
HERE_GOES_THE_CONTENT
</body>
</html>
`)

// Skeleton returns a minimal HTML page holding ctx["body"], titled with ctx["title"].
func Skeleton(ctx map[string]string) string {
	return string(sliceedit.Substitute(skeleton,
		titlePlaceholder, ctx["title"],
		contentPlaceholder, ctx["body"],
	))
}
