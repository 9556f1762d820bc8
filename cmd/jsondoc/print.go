package main

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"
)

// printCommand loads the layered sources and prints the result.
type printCommand struct {
	cli     *cli
	sources *[]string
}

func (cmd *printCommand) run(_ *kingpin.ParseContext) error {
	doc, err := cmd.cli.loader().Load(context.Background(), *cmd.sources...)
	if err != nil {
		return err
	}
	defer doc.Close()

	out, err := doc.Print()
	if err != nil {
		return fmt.Errorf("failed to print document: %w", err)
	}
	_, err = fmt.Fprintf(cmd.cli.stdout, "%s\n", out)
	return err
}

func addPrintCommand(app *kingpin.Application, c *cli) {
	cmd := &printCommand{cli: c}
	printCmd := app.Command("print", "Merge the sources in order and print the result as compact JSON.").Action(cmd.run)
	cmd.sources = printCmd.Arg("source", "Files or http(s) URLs, base first.").Required().Strings()
}
