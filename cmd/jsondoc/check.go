package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alecthomas/kingpin/v2"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/freekieb7/jsondoc/json"
)

// checkCommand validates each source on its own.
type checkCommand struct {
	cli     *cli
	sources *[]string
}

func (cmd *checkCommand) run(_ *kingpin.ParseContext) error {
	failed := 0
	for _, source := range *cmd.sources {
		if !cmd.check(source) {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d sources failed", failed, len(*cmd.sources))
	}
	return nil
}

func (cmd *checkCommand) check(source string) bool {
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	out := cmd.cli.stdout

	ctx := context.Background()
	loader := cmd.cli.loader()

	doc, err := loader.LoadSource(ctx, source)
	if err != nil {
		red.Fprintf(out, "FAIL %s\n", source)
		fmt.Fprintf(out, "\t%v\n", err)

		var perr *json.ParseError
		if errors.As(err, &perr) {
			// offsets point into the expanded text, not the raw file
			if data, readErr := loader.Text(ctx, source); readErr == nil {
				line, col, text := locate(data, perr.Offset)
				fmt.Fprintf(out, "\tline %d, column %d:\n\t%s\n\t%s", line, col, text, strings.Repeat(" ", col-1))
				red.Fprintln(out, "^")
			}
		}
		return false
	}
	defer doc.Close()

	compact, err := doc.Print()
	if err != nil {
		red.Fprintf(out, "FAIL %s\n\t%v\n", source, err)
		return false
	}

	green.Fprintf(out, "ok   %s", source)
	fmt.Fprintf(out, " (%d members, %s compact)\n", doc.Root().Len(), humanize.Bytes(uint64(len(compact))))
	return true
}

// locate turns a byte offset into a 1-based line and column and returns the
// text of that line. Tabs are replaced so the caret lines up.
func locate(data []byte, offset int) (line, col int, text string) {
	offset = min(max(offset, 0), len(data))

	start := 0
	line = 1
	for i := 0; i < offset; i++ {
		if data[i] == '\n' {
			line++
			start = i + 1
		}
	}

	end := start
	for end < len(data) && data[end] != '\n' {
		end++
	}

	text = strings.ReplaceAll(string(data[start:end]), "\t", " ")
	return line, offset - start + 1, strings.TrimRight(text, "\r")
}

func addCheckCommand(app *kingpin.Application, c *cli) {
	cmd := &checkCommand{cli: c}
	check := app.Command("check", "Parse each source and report where it is malformed.").Action(cmd.run)
	cmd.sources = check.Arg("source", "Files or http(s) URLs to check.").Required().Strings()
}
