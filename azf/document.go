package azf

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v2"
)

// yamlFrontMatter is the only front matter format recognized. The library default
// set would also take a first line holding a single "{" as JSON front matter.
var yamlFrontMatter = frontmatter.NewFormat("---", "---", yaml.Unmarshal)

// Document is a markup file split into its front matter and its source.
type Document struct {
	// Path is the name of the file the document was read from
	Path string

	// Source is the markup following the front matter
	Source string

	// Meta holds the front matter. Nested keys are joined with dots.
	Meta map[string]string
}

// ParseDocument splits src into an optional YAML front matter block, delimited by
// "---" lines, and the markup source.
// fileName is for error messages only. An empty src is an empty document.
func ParseDocument(fileName string, src []byte) (*Document, error) {
	if len(src) == 0 {
		return &Document{Path: fileName, Meta: map[string]string{}}, nil
	}

	var meta map[string]any
	body, err := frontmatter.Parse(bytes.NewReader(src), &meta, yamlFrontMatter)
	if err != nil {
		return nil, fmt.Errorf("%s: front matter: %w", fileName, err)
	}

	doc := &Document{
		Path:   fileName,
		Source: string(body),
		Meta:   make(map[string]string),
	}
	flattenMeta(doc.Meta, "", meta)

	return doc, nil
}

// LoadDocument reads and splits the named file.
func LoadDocument(fileName string) (*Document, error) {
	src, err := os.ReadFile(fileName)
	if err != nil {
		return nil, err
	}
	return ParseDocument(fileName, src)
}

// flattenMeta stores YAML values as strings, nested mappings under dotted keys
// and sequences joined with commas.
func flattenMeta(dst map[string]string, prefix string, value any) {
	switch v := value.(type) {
	case nil:
		if len(prefix) > 0 {
			dst[prefix] = ""
		}
	case map[string]any:
		for k, sub := range v {
			flattenMeta(dst, joinKey(prefix, k), sub)
		}
	case map[any]any:
		for k, sub := range v {
			flattenMeta(dst, joinKey(prefix, fmt.Sprint(k)), sub)
		}
	case []any:
		items := make([]string, 0, len(v))
		for _, item := range v {
			items = append(items, fmt.Sprint(item))
		}
		dst[prefix] = strings.Join(items, ", ")
	default:
		dst[prefix] = fmt.Sprint(v)
	}
}

func joinKey(prefix, key string) string {
	if len(prefix) == 0 {
		return key
	}
	return prefix + "." + key
}

// MetaKeys returns the front matter keys, sorted.
func (doc *Document) MetaKeys() []string {
	keys := make([]string, 0, len(doc.Meta))
	for k := range doc.Meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// RenderDocument renders doc with the directory of its file as base path.
// The context is seeded with context first and then with the front matter.
func (r *Renderer) RenderDocument(doc *Document, context map[string]string) (*Output, error) {
	seed := copyContext(context)
	for k, v := range doc.Meta {
		seed[k] = v
	}

	r.log.Debugw("rendering document", "file", doc.Path, "meta", doc.MetaKeys())

	out, err := r.renderSource(doc.Source, seed, filepath.Dir(doc.Path), 0)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", doc.Path, err)
	}
	return out, nil
}

// RenderFile loads the named file and renders it.
func (r *Renderer) RenderFile(fileName string, context map[string]string) (*Output, error) {
	doc, err := LoadDocument(fileName)
	if err != nil {
		return nil, err
	}
	return r.RenderDocument(doc, context)
}
