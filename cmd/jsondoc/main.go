package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/fatih/color"

	"github.com/freekieb7/jsondoc/config"
	"github.com/freekieb7/jsondoc/filesystem"
	"github.com/freekieb7/jsondoc/json"
	"github.com/freekieb7/jsondoc/telemetry"
)

// cli holds the global flags and the state shared by every command.
type cli struct {
	expandEnv    bool
	maxDepth     int
	otlpEndpoint string
	otlpInsecure bool
	serviceName  string

	fs       filesystem.Filesystem
	stdout   io.Writer
	stderr   io.Writer
	shutdown telemetry.ShutdownFunc
}

func main() {
	c := &cli{
		fs:     filesystem.NewLocalFileSystem(),
		stdout: os.Stdout,
		stderr: os.Stderr,
	}

	app := kingpin.New("jsondoc", "Load, check, merge and print layered JSON configuration documents.")
	c.register(app)

	_, err := app.Parse(os.Args[1:])
	if c.shutdown != nil {
		if shutdownErr := c.shutdown(context.Background()); shutdownErr != nil {
			fmt.Fprintf(c.stderr, "telemetry shutdown: %v\n", shutdownErr)
		}
	}
	if err != nil {
		exitWithErr(err)
	}
}

func (c *cli) register(app *kingpin.Application) {
	app.Flag("expand-env", "Expand ${VAR} references in sources before parsing.").BoolVar(&c.expandEnv)
	app.Flag("max-depth", "Maximum nesting depth accepted by the parser.").Default("1000").IntVar(&c.maxDepth)
	app.Flag("otlp-endpoint", "OTLP gRPC collector endpoint; telemetry is off when empty.").Envar("JSONDOC_OTLP_ENDPOINT").StringVar(&c.otlpEndpoint)
	app.Flag("otlp-insecure", "Connect to the collector without TLS.").Envar("JSONDOC_OTLP_INSECURE").BoolVar(&c.otlpInsecure)
	app.Flag("service-name", "Service name reported to the collector.").Default(telemetry.DefaultServiceName).StringVar(&c.serviceName)

	app.PreAction(func(_ *kingpin.ParseContext) error {
		shutdown, err := telemetry.Setup(context.Background(), telemetry.Config{
			ServiceName: c.serviceName,
			Endpoint:    c.otlpEndpoint,
			Insecure:    c.otlpInsecure,
		})
		if err != nil {
			return fmt.Errorf("failed to set up telemetry: %w", err)
		}
		c.shutdown = shutdown
		return nil
	})

	addPrintCommand(app, c)
	addCheckCommand(app, c)
	addMergeCommand(app, c)
	addWatchCommand(app, c)
}

func (c *cli) loader() *config.Loader {
	return config.NewLoader(config.Options{
		Filesystem:   c.fs,
		ExpandEnv:    c.expandEnv,
		ParseOptions: json.ParseOptions{MaxDepth: c.maxDepth},
	})
}

func exitWithErr(err error) {
	red := color.New(color.FgRed)
	red.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
