package main

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"
	"github.com/dustin/go-humanize"

	"github.com/freekieb7/jsondoc/json"
)

// mergeCommand merges overlays into a base and writes the result.
type mergeCommand struct {
	cli      *cli
	base     *string
	overlays *[]string
	output   *string
	maxSize  *string
}

func (cmd *mergeCommand) run(_ *kingpin.ParseContext) error {
	limit, err := humanize.ParseBytes(*cmd.maxSize)
	if err != nil {
		return fmt.Errorf("invalid --max-size: %w", err)
	}

	sources := append([]string{*cmd.base}, *cmd.overlays...)
	doc, err := cmd.cli.loader().Load(context.Background(), sources...)
	if err != nil {
		return err
	}
	defer doc.Close()

	out, err := json.PrintWith(doc.Root(), json.PrintOptions{MaxSize: int(limit)})
	if err != nil {
		return fmt.Errorf("failed to print merged document: %w", err)
	}

	if *cmd.output == "" {
		_, err = fmt.Fprintf(cmd.cli.stdout, "%s\n", out)
		return err
	}

	if err := cmd.cli.fs.WriteFile(*cmd.output, out); err != nil {
		return fmt.Errorf("failed to write %s: %w", *cmd.output, err)
	}
	fmt.Fprintf(cmd.cli.stderr, "wrote %s (%s)\n", *cmd.output, humanize.Bytes(uint64(len(out))))
	return nil
}

func addMergeCommand(app *kingpin.Application, c *cli) {
	cmd := &mergeCommand{cli: c}
	merge := app.Command("merge", "Merge overlays into a base document, later overlays win.").Action(cmd.run)
	cmd.output = merge.Flag("output", "Write the result to this file instead of stdout.").Short('o').String()
	cmd.maxSize = merge.Flag("max-size", "Largest output accepted, 0 for no limit.").Default("0").String()
	cmd.base = merge.Arg("base", "Base document.").Required().String()
	cmd.overlays = merge.Arg("overlay", "Overlay documents, applied in order.").Required().Strings()
}
