package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/fatih/color"

	"github.com/freekieb7/jsondoc/config"
	"github.com/freekieb7/jsondoc/json"
)

// watchCommand prints the merged sources again whenever a file changes.
type watchCommand struct {
	cli      *cli
	sources  *[]string
	debounce *time.Duration
	poll     *time.Duration
}

func (cmd *watchCommand) run(_ *kingpin.ParseContext) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	watcher := config.NewWatcher(cmd.cli.loader(), *cmd.sources, cmd.report)
	watcher.SetDebounce(*cmd.debounce)
	watcher.SetPollInterval(*cmd.poll)
	return watcher.Run(ctx)
}

func (cmd *watchCommand) report(doc *json.Document, err error) {
	faint := color.New(color.Faint)
	faint.Fprintf(cmd.cli.stdout, "# %s\n", time.Now().Format(time.TimeOnly))

	if err != nil {
		color.New(color.FgRed).Fprintf(cmd.cli.stdout, "%v\n", err)
		return
	}
	defer doc.Close()

	out, err := doc.Print()
	if err != nil {
		color.New(color.FgRed).Fprintf(cmd.cli.stdout, "%v\n", err)
		return
	}
	fmt.Fprintf(cmd.cli.stdout, "%s\n", out)
}

func addWatchCommand(app *kingpin.Application, c *cli) {
	cmd := &watchCommand{cli: c}
	watch := app.Command("watch", "Print the merged sources and again on every change until interrupted.").Action(cmd.run)
	cmd.debounce = watch.Flag("debounce", "Quiet period before reloading.").Default(config.DefaultDebounce.String()).Duration()
	cmd.poll = watch.Flag("poll", "Reload http(s) sources at this interval, 0 to load them only with file changes.").Default("0s").Duration()
	cmd.sources = watch.Arg("source", "Files or http(s) URLs, base first.").Required().Strings()
}
