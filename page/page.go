// Package page wraps a rendered body into a complete HTML page, either with a
// pongo2 template or with a built-in skeleton.
package page

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/amirouche/azoufzouf/azf"
	"github.com/flosch/pongo2/v6"
	"go.uber.org/zap"
)

// ErrTemplateNotFound is returned when no search path holds the requested template.
var ErrTemplateNotFound = errors.New("template not found")

// reIdentifier matches the context keys accepted by pongo2.
var reIdentifier = regexp.MustCompile("^[a-zA-Z0-9_]+$")

// Templates renders pages with pongo2 templates looked up in SearchPaths, in order.
// With no search paths the template name is resolved against the working directory.
type Templates struct {
	SearchPaths []string
	Log         *zap.SugaredLogger
}

func (t *Templates) logger() *zap.SugaredLogger {
	if t.Log == nil {
		return zap.NewNop().Sugar()
	}
	return t.Log
}

// set builds a template set with a loader for every existing search path.
// A new set is built on each call, so edited templates are picked up in watch mode.
func (t *Templates) set() (*pongo2.TemplateSet, error) {
	var loaders []pongo2.TemplateLoader

	for _, dir := range t.SearchPaths {
		loader, err := pongo2.NewLocalFileSystemLoader(dir)
		if err != nil {
			if os.IsNotExist(err) {
				t.logger().Debugw("skipping template directory", "dir", dir)
				continue
			}
			return nil, fmt.Errorf("template directory %s: %w", dir, err)
		}
		loaders = append(loaders, loader)
	}

	if len(loaders) == 0 {
		loader, err := pongo2.NewLocalFileSystemLoader("")
		if err != nil {
			return nil, err
		}
		loaders = append(loaders, loader)
	}

	return pongo2.NewSet("azf", loaders...), nil
}

// Render executes the named template with ctx.
// The "body" entry is passed as a safe value: it is HTML already and is not escaped again.
func (t *Templates) Render(templateName string, ctx map[string]string) (string, error) {
	set, err := t.set()
	if err != nil {
		return "", err
	}

	tpl, err := set.FromFile(templateName)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrTemplateNotFound, templateName, err)
	}

	t.logger().Debugw("executing template", "name", templateName, "keys", len(ctx))

	out, err := tpl.Execute(templateContext(ctx))
	if err != nil {
		return "", fmt.Errorf("template %s: %w", templateName, err)
	}
	return out, nil
}

// templateContext converts a flat context into a pongo2 one.
// Dotted keys become nested maps, so "author.name" is reachable as {{ author.name }}.
// Keys pongo2 cannot address are dropped.
func templateContext(ctx map[string]string) pongo2.Context {
	pc := pongo2.Context{}

	// Sorted so that a scalar always wins over a nested map of the same name
	keys := make([]string, 0, len(ctx))
	for k := range ctx {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := ctx[key]
		if key == "body" {
			pc[key] = pongo2.AsSafeValue(value)
			continue
		}

		parts := strings.Split(key, ".")
		valid := true
		for _, p := range parts {
			if !reIdentifier.MatchString(p) {
				valid = false
				break
			}
		}
		if !valid {
			continue
		}

		node := map[string]any(pc)
		for _, p := range parts[:len(parts)-1] {
			next, ok := node[p].(map[string]any)
			if !ok {
				if _, taken := node[p]; taken {
					node = nil
					break
				}
				next = map[string]any{}
				node[p] = next
			}
			node = next
		}
		if node == nil {
			continue
		}
		if _, taken := node[parts[len(parts)-1]].(map[string]any); taken {
			continue
		}
		node[parts[len(parts)-1]] = value
	}

	return pc
}

// Compose builds the final page for out: with the named template if templateName
// is not empty, with the built-in skeleton otherwise.
func Compose(t *Templates, templateName string, out *azf.Output) (string, error) {
	if len(templateName) == 0 {
		return Skeleton(out.Map()), nil
	}
	return t.Render(templateName, out.Map())
}
