package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/amirouche/azoufzouf/azf"
	"github.com/amirouche/azoufzouf/page"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

// defaultInputFileName is processed when no input file is given.
const defaultInputFileName = "index.azf"

// newLogger sets up the logging system.
func newLogger(debug bool) (*zap.SugaredLogger, error) {
	var z *zap.Logger
	var err error

	if debug {
		z, err = zap.NewDevelopment()
	} else {
		z, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	return z.Sugar(), nil
}

// outputName returns inputFileName with its extension replaced by .html.
func outputName(inputFileName string) string {
	ext := filepath.Ext(inputFileName)
	if len(ext) == 0 {
		return inputFileName + ".html"
	}
	return strings.TrimSuffix(inputFileName, ext) + ".html"
}

// build renders the input file and returns the final HTML.
func build(inputFileName string, cfg *Config, log *zap.SugaredLogger) (string, error) {
	r := cfg.NewRenderer(log)

	out, err := r.RenderFile(inputFileName, cfg.Context)
	if err != nil {
		return "", err
	}

	if len(cfg.Template) == 0 && !cfg.Standalone {
		return out.Body, nil
	}

	templates := &page.Templates{SearchPaths: cfg.Templates, Log: log}
	return page.Compose(templates, cfg.Template, out)
}

// process is the main entry point of the program
func process(c *cli.Context) error {

	// Get the input file name
	inputFileName := defaultInputFileName
	if c.Args().Present() {
		inputFileName = c.Args().First()
	} else {
		fmt.Fprintf(c.App.ErrWriter, "no input file provided, using \"%v\"\n", inputFileName)
	}

	// Output file name command line parameter
	outputFileName := c.String("output")
	if len(outputFileName) == 0 {
		outputFileName = outputName(inputFileName)
	}

	dryrun := c.Bool("dryrun")

	log, err := newLogger(c.Bool("debug"))
	if err != nil {
		return err
	}
	defer log.Sync()

	// The configuration is read on every run, so watch mode picks up its changes
	run := func() error {
		cfg, err := loadConfig(c, inputFileName, log)
		if err != nil {
			return err
		}

		html, err := build(inputFileName, cfg, log)
		if err != nil {
			return err
		}

		// Do nothing if flag dryrun was specified
		if dryrun {
			return nil
		}
		return os.WriteFile(outputFileName, []byte(html), 0664)
	}

	if !dryrun {
		log.Infow("processing", "input", inputFileName, "output", outputFileName)
	} else {
		log.Infow("dry run: processing without writing output", "input", inputFileName)
	}

	// This is useful for development.
	// If the user specified to watch, loop processing the input file when modified
	if c.Bool("watch") {
		ctx, stop := signal.NotifyContext(c.Context, os.Interrupt)
		defer stop()

		watched := []string{inputFileName, filepath.Join(filepath.Dir(inputFileName), defaultConfigName)}
		if configFileName := c.String("config"); len(configFileName) > 0 {
			watched = append(watched, configFileName)
		}
		return processWatch(ctx, watched, watchInterval, run, log)
	}

	return run()
}

func newApp() *cli.App {
	return &cli.App{
		Name:      "azf",
		Version:   "v0.1.0",
		Compiled:  time.Now(),
		Usage:     "process an azoufzouf document and produce HTML",
		UsageText: "azf [options] [INPUT_FILE] (default input file is " + defaultInputFileName + ")",
		Action:    process,
		ArgsUsage: "[INPUT_FILE]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "write html to `FILE` (default is input file name with extension .html)",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "read configuration from `FILE` (default is " + defaultConfigName + " next to the input)",
			},
			&cli.StringFlag{
				Name:    "template",
				Aliases: []string{"t"},
				Usage:   "wrap the body with the pongo2 template `NAME`",
			},
			&cli.StringFlag{
				Name:    "marker",
				Aliases: []string{"m"},
				Usage:   "use `CHAR` to introduce commands",
				Value:   string(azf.DefaultMarker),
			},
			&cli.StringFlag{
				Name:  "style",
				Usage: "highlight code with the chroma style `NAME`",
				Value: azf.DefaultCodeStyle,
			},
			&cli.BoolFlag{
				Name:    "standalone",
				Aliases: []string{"s"},
				Usage:   "produce a complete HTML page when no template is given",
			},
			&cli.StringSliceFlag{
				Name:  "set",
				Usage: "bind `KEY=VALUE` in the render context (repeatable)",
			},
			&cli.BoolFlag{
				Name:    "dryrun",
				Aliases: []string{"n"},
				Usage:   "do not generate output file, just process input file",
			},
			&cli.BoolFlag{
				Name:    "debug",
				Aliases: []string{"d"},
				Usage:   "run in debug mode",
			},
			&cli.BoolFlag{
				Name:    "watch",
				Aliases: []string{"w"},
				Usage:   "watch the file for changes",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "dung",
				Usage:     "write the token stream of a document as JSON",
				ArgsUsage: "INPUT [OUTPUT]",
				Action:    dung,
			},
			{
				Name:   "commands",
				Usage:  "list the available commands",
				Action: listCommands,
			},
		},
	}
}

func main() {

	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "azf:", err)
		os.Exit(1)
	}

}
