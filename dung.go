package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/amirouche/azoufzouf/azf"
	"github.com/urfave/cli/v2"
)

// dung writes the token stream of a document as JSON, to a file or to the standard output.
func dung(c *cli.Context) error {
	if !c.Args().Present() {
		return errors.New("dung: missing INPUT")
	}
	inputFileName := c.Args().Get(0)
	outputFileName := c.Args().Get(1)

	log, err := newLogger(c.Bool("debug"))
	if err != nil {
		return err
	}
	defer log.Sync()

	cfg, err := loadConfig(c, inputFileName, log)
	if err != nil {
		return err
	}

	doc, err := azf.LoadDocument(inputFileName)
	if err != nil {
		return err
	}

	tokens, err := azf.Parse(doc.Source, cfg.Marker)
	if err != nil {
		return fmt.Errorf("%s: %w", inputFileName, err)
	}

	out, err := azf.MarshalTokens(tokens)
	if err != nil {
		return err
	}

	if len(outputFileName) == 0 {
		_, err = fmt.Fprintln(c.App.Writer, string(out))
		return err
	}
	return os.WriteFile(outputFileName, out, 0664)
}

// listCommands prints the registered commands and whether they are block or inline.
func listCommands(c *cli.Context) error {
	reg := azf.DefaultRegistry()

	var br azf.ByteRenderer
	for _, name := range reg.Names() {
		kind := "inline"
		if reg.Lookup(name).Block() {
			kind = "block"
		}
		br.Renderln(fmt.Sprintf("%-22s %s", name, kind))
	}

	_, err := c.App.Writer.Write(br.Bytes())
	return err
}
