package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/amirouche/azoufzouf/azf"
	"github.com/hesusruiz/vcutils/yaml"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

// defaultConfigName is looked up next to the input file when --config is not given.
const defaultConfigName = "azf.yaml"

// Config holds the settings of one run, from the config file and the command line.
type Config struct {
	Marker     rune
	Template   string
	Templates  []string
	CodeStyle  string
	Normalize  bool
	Standalone bool

	// Context seeds the render context
	Context map[string]string
}

func defaultConfig() *Config {
	return &Config{
		Marker:    azf.DefaultMarker,
		CodeStyle: azf.DefaultCodeStyle,
		Context:   map[string]string{},
	}
}

// parseMarker accepts a string holding exactly one character.
func parseMarker(s string) (rune, error) {
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("marker must be a single character, got %q", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	if r == '{' || r == '}' || r == '\n' {
		return 0, fmt.Errorf("marker %q is reserved", s)
	}
	return r, nil
}

// applyYAML overrides cfg with the keys present in the config file data.
func (cfg *Config) applyYAML(data *yaml.YAML) error {
	marker, err := parseMarker(data.String("marker", string(cfg.Marker)))
	if err != nil {
		return err
	}
	cfg.Marker = marker

	cfg.Template = data.String("template", cfg.Template)
	cfg.CodeStyle = data.String("codeStyle", cfg.CodeStyle)
	cfg.Normalize = data.Bool("normalize")
	cfg.Standalone = data.Bool("standalone")

	if dirs := data.String("templates", ""); len(dirs) > 0 {
		cfg.Templates = append(cfg.Templates, filepath.SplitList(dirs)...)
	}
	return nil
}

// parseSettings converts KEY=VALUE pairs into context entries.
func parseSettings(settings []string) (map[string]string, error) {
	ctx := make(map[string]string, len(settings))
	for _, s := range settings {
		key, value, found := strings.Cut(s, "=")
		key = strings.TrimSpace(key)
		if !found || len(key) == 0 {
			return nil, fmt.Errorf("invalid setting %q, expected KEY=VALUE", s)
		}
		ctx[key] = value
	}
	return ctx, nil
}

// loadConfig builds the configuration for inputFileName.
// An explicit --config file must exist; the default one is optional.
func loadConfig(c *cli.Context, inputFileName string, log *zap.SugaredLogger) (*Config, error) {
	cfg := defaultConfig()

	configFileName := c.String("config")
	explicit := len(configFileName) > 0
	if !explicit {
		configFileName = filepath.Join(filepath.Dir(inputFileName), defaultConfigName)
	}

	if _, err := os.Stat(configFileName); err == nil || explicit {
		data, err := yaml.ParseYamlFile(configFileName)
		if err != nil {
			return nil, fmt.Errorf("reading config %s: %w", configFileName, err)
		}
		if err := cfg.applyYAML(data); err != nil {
			return nil, fmt.Errorf("config %s: %w", configFileName, err)
		}
		log.Debugw("config loaded", "file", configFileName)

		// Relative template directories are relative to the config file
		for i, dir := range cfg.Templates {
			if !filepath.IsAbs(dir) {
				cfg.Templates[i] = filepath.Join(filepath.Dir(configFileName), dir)
			}
		}
	} else {
		log.Debugw("no config file", "file", configFileName)
	}

	// The command line has the last word
	if c.IsSet("marker") {
		marker, err := parseMarker(c.String("marker"))
		if err != nil {
			return nil, err
		}
		cfg.Marker = marker
	}
	if c.IsSet("template") {
		cfg.Template = c.String("template")
	}
	if c.IsSet("standalone") {
		cfg.Standalone = c.Bool("standalone")
	}
	if c.IsSet("style") {
		cfg.CodeStyle = c.String("style")
	}

	settings, err := parseSettings(c.StringSlice("set"))
	if err != nil {
		return nil, err
	}
	for k, v := range settings {
		cfg.Context[k] = v
	}

	// The directory of the input is always searched last for templates
	cfg.Templates = append(cfg.Templates, filepath.Dir(inputFileName))

	return cfg, nil
}

// NewRenderer builds the renderer described by cfg.
func (cfg *Config) NewRenderer(log *zap.SugaredLogger) *azf.Renderer {
	return azf.NewRenderer(
		azf.WithMarker(cfg.Marker),
		azf.WithHighlighter(azf.NewChromaHighlighter(cfg.CodeStyle)),
		azf.WithNormalize(cfg.Normalize),
		azf.WithLogger(log),
	)
}
