// Package config loads layered JSON configuration documents.
//
// A load takes an ordered list of sources. Each source is a local file path
// or an http(s) URL holding a JSON object, or a YAML mapping when the path
// ends in .yaml or .yml. The first source is the base document and every
// following source is merged over it, so later layers win on conflicting
// top level keys.
package config

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/drone/envsubst"
	"github.com/pkg/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/freekieb7/jsondoc/filesystem"
	"github.com/freekieb7/jsondoc/json"
	"github.com/freekieb7/jsondoc/telemetry"
)

const name = "github.com/freekieb7/jsondoc/config"

const (
	DefaultMaxSourceSize = 16 << 20
	DefaultHTTPTimeout   = 30 * time.Second
)

var (
	ErrNoSources      = errors.New("config: no sources")
	ErrSourceTooLarge = errors.New("config: source exceeds size limit")
	ErrHTTPStatus     = errors.New("config: unexpected http status")
	ErrNotWatchable   = errors.New("config: file sources can only be watched on the local filesystem")
)

var (
	tracer = otel.Tracer(name)
	meter  = otel.Meter(name)

	sourcesLoaded metric.Int64Counter
	sourcesFailed metric.Int64Counter
	sourceSize    metric.Int64Histogram
)

func init() {
	var err error
	sourcesLoaded, err = meter.Int64Counter("jsondoc.sources.loaded",
		metric.WithDescription("The number of configuration sources loaded"),
		metric.WithUnit("{source}"))
	if err != nil {
		panic(err)
	}

	sourcesFailed, err = meter.Int64Counter("jsondoc.sources.failed",
		metric.WithDescription("The number of configuration sources that failed to load"),
		metric.WithUnit("{source}"))
	if err != nil {
		panic(err)
	}

	sourceSize, err = meter.Int64Histogram("jsondoc.source.size",
		metric.WithDescription("The size of loaded configuration sources"),
		metric.WithUnit("By"))
	if err != nil {
		panic(err)
	}
}

type Options struct {
	Filesystem filesystem.Filesystem
	HTTPClient *http.Client
	Logger     *slog.Logger

	// ExpandEnv replaces ${VAR} references in source text before parsing.
	ExpandEnv bool
	// LookupEnv resolves variables for ExpandEnv. Defaults to os.Getenv.
	LookupEnv func(string) string

	ParseOptions json.ParseOptions
	// MaxSourceSize bounds the byte size of a single source.
	MaxSourceSize int64
}

func defaultOptions() Options {
	return Options{
		Filesystem: filesystem.NewLocalFileSystem(),
		HTTPClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   DefaultHTTPTimeout,
		},
		Logger:        telemetry.Logger(name),
		LookupEnv:     os.Getenv,
		MaxSourceSize: DefaultMaxSourceSize,
	}
}

type Loader struct {
	opts Options
}

// NewLoader returns a loader. Unset options take their defaults.
func NewLoader(opts Options) *Loader {
	if err := mergo.Merge(&opts, defaultOptions(), mergo.WithoutDereference); err != nil {
		// only reachable on a programming error in the options type
		panic(err)
	}
	return &Loader{opts: opts}
}

// Load reads every source and merges them in order into the first one. The
// caller owns the returned document.
func (l *Loader) Load(ctx context.Context, sources ...string) (*json.Document, error) {
	if len(sources) == 0 {
		return nil, ErrNoSources
	}

	base, err := l.LoadSource(ctx, sources[0])
	if err != nil {
		return nil, err
	}

	for _, source := range sources[1:] {
		overlay, err := l.LoadSource(ctx, source)
		if err != nil {
			base.Close()
			return nil, err
		}

		err = json.Merge(base.Root(), overlay.Root())
		overlay.Close()
		if err != nil {
			base.Close()
			return nil, errors.Wrapf(err, "config: merge %s", source)
		}
		l.opts.Logger.DebugContext(ctx, "merged configuration layer", "source", source)
	}

	l.opts.Logger.InfoContext(ctx, "configuration loaded", "sources", len(sources), "members", base.Root().Len())
	return base, nil
}

// LoadSource reads a single source into its own document.
func (l *Loader) LoadSource(ctx context.Context, source string) (*json.Document, error) {
	ctx, span := tracer.Start(ctx, "config.load_source",
		trace.WithAttributes(attribute.String("config.source", source)))
	defer span.End()

	doc, size, err := l.loadSource(ctx, source)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		sourcesFailed.Add(ctx, 1, metric.WithAttributes(attribute.String("config.kind", sourceKind(source))))
		l.opts.Logger.ErrorContext(ctx, "failed to load configuration source", "source", source, "error", err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("config.bytes", size))
	sourcesLoaded.Add(ctx, 1, metric.WithAttributes(attribute.String("config.kind", sourceKind(source))))
	sourceSize.Record(ctx, int64(size))
	l.opts.Logger.InfoContext(ctx, "loaded configuration source", "source", source, "bytes", size)
	return doc, nil
}

// Text returns the source text exactly as it is handed to the parser, with
// variables expanded when ExpandEnv is set. Parse error offsets refer to it.
func (l *Loader) Text(ctx context.Context, source string) ([]byte, error) {
	data, err := l.read(ctx, source)
	if err != nil {
		return nil, errors.Wrapf(err, "config: read %s", source)
	}

	if l.opts.ExpandEnv {
		expanded, err := envsubst.Eval(string(data), l.opts.LookupEnv)
		if err != nil {
			return nil, errors.Wrapf(err, "config: expand %s", source)
		}
		data = []byte(expanded)
	}
	return data, nil
}

func (l *Loader) loadSource(ctx context.Context, source string) (*json.Document, int, error) {
	data, err := l.Text(ctx, source)
	if err != nil {
		return nil, 0, err
	}

	doc := json.NewDocument(l.opts.ParseOptions)
	if isYAML(source) {
		root, err := FromYAML(data)
		if err != nil {
			return nil, 0, errors.Wrapf(err, "config: decode %s", source)
		}
		if !root.IsObject() {
			root.Release()
			return nil, 0, errors.Wrapf(json.ErrTopLevelType, "config: decode %s", source)
		}
		if err := doc.SetRoot(root); err != nil {
			root.Release()
			return nil, 0, errors.Wrapf(err, "config: decode %s", source)
		}
		return doc, len(data), nil
	}

	if err := doc.Parse(data); err != nil {
		return nil, 0, errors.Wrapf(err, "config: parse %s", source)
	}
	return doc, len(data), nil
}

func (l *Loader) read(ctx context.Context, source string) ([]byte, error) {
	if isURL(source) {
		return l.fetch(ctx, source)
	}

	size, err := l.opts.Filesystem.FileSize(source)
	if err != nil {
		return nil, err
	}
	if size > l.opts.MaxSourceSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrSourceTooLarge, size)
	}
	return l.opts.Filesystem.ReadFile(source)
}

func (l *Loader) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json, application/yaml")

	res, err := l.opts.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := res.Body.Close(); closeErr != nil {
			l.opts.Logger.ErrorContext(ctx, "closing response body error", "error", closeErr)
		}
	}()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s", ErrHTTPStatus, res.Status)
	}

	data, err := io.ReadAll(io.LimitReader(res.Body, l.opts.MaxSourceSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > l.opts.MaxSourceSize {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrSourceTooLarge, l.opts.MaxSourceSize)
	}
	return data, nil
}

func isURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

func isYAML(source string) bool {
	if isURL(source) {
		if i := strings.IndexAny(source, "?#"); i >= 0 {
			source = source[:i]
		}
	}
	switch strings.ToLower(filepath.Ext(source)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func sourceKind(source string) string {
	if isURL(source) {
		return "http"
	}
	return "file"
}
