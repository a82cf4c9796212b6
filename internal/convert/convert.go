// Package convert runs whole conversions: a model stream or cache in,
// a Turtle document and a run report out.
package convert

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/roach88/ifc2lbd/internal/model"
	"github.com/roach88/ifc2lbd/internal/report"
	"github.com/roach88/ifc2lbd/internal/schema"
	"github.com/roach88/ifc2lbd/internal/serializer"
	"github.com/roach88/ifc2lbd/internal/store"
	"github.com/roach88/ifc2lbd/internal/turtle"
)

// ConfigurationError reports an invalid run setup caught before any
// model data is converted.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration: " + e.Reason
}

// Options select input, output, and strategy for one run.
type Options struct {
	// Input is the model stream path, or "-" for stdin.
	Input string
	// Output is the Turtle document path, or "-" for stdout.
	Output string
	// Schema overrides the stream's own schema header.
	Schema string
	// Converter names the registry entry. Empty selects the default.
	Converter string
	// Floats overrides the converter's float style: "", "scientific",
	// or "plain".
	Floats string
	// FlushEvery is the entity count buffered between writer flushes.
	// Zero means the writer default.
	FlushEvery int
	// MapFile overrides the embedded collection map for the schema.
	MapFile string
	// Namespaces overrides the schema-derived prefix table.
	Namespaces *turtle.Namespaces
	// Now supplies the header timestamp and timing clock; nil means
	// time.Now.
	Now func() time.Time
	// Logger receives progress and skip lines. Nil discards.
	Logger *slog.Logger
}

// plan is a validated run setup.
type plan struct {
	name   string
	conv   Converter
	now    func() time.Time
	logger *slog.Logger
}

func prepare(opts Options) (plan, error) {
	p := plan{now: opts.Now, logger: opts.Logger}
	if p.now == nil {
		p.now = time.Now
	}
	if p.logger == nil {
		p.logger = slog.New(slog.DiscardHandler)
	}

	name, conv, err := DefaultRegistry().Lookup(opts.Converter)
	if err != nil {
		return p, err
	}
	p.name, p.conv = name, conv

	if opts.FlushEvery < 0 {
		return p, &ConfigurationError{Reason: fmt.Sprintf("flush threshold must not be negative, got %d", opts.FlushEvery)}
	}
	switch opts.Floats {
	case "", "scientific", "plain":
	default:
		return p, &ConfigurationError{Reason: fmt.Sprintf("unknown float style %q", opts.Floats)}
	}

	return p, nil
}

// Run converts one model stream into a Turtle document and reports
// counts and timings.
func Run(opts Options) (*report.Report, error) {
	p, err := prepare(opts)
	if err != nil {
		return nil, err
	}

	start := p.now()

	in, closeIn, err := openInput(opts.Input)
	if err != nil {
		return nil, err
	}
	defer closeIn()

	return execute(p, opts, model.NewStreamSource(in, opts.Schema), opts.Input, start)
}

// RunCached converts from a populated model cache instead of a stream.
func RunCached(ctx context.Context, cachePath string, opts Options) (*report.Report, error) {
	p, err := prepare(opts)
	if err != nil {
		return nil, err
	}

	start := p.now()

	cache, err := store.Open(cachePath)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	defer cache.Close()

	src, err := cache.Iterate(ctx)
	if err != nil {
		return nil, err
	}
	var source model.Source = src
	if opts.Schema != "" {
		source = overrideSchema{Source: src, schema: opts.Schema}
	}

	return execute(p, opts, source, cachePath, start)
}

// execute drives the serializer over an opened source.
func execute(p plan, opts Options, src model.Source, input string, start time.Time) (*report.Report, error) {
	reg, err := loadRegistry(src.Schema(), opts.MapFile)
	if err != nil {
		return nil, err
	}
	loadMS := p.now().Sub(start).Milliseconds()

	sopts := serializer.Options{
		FlushThreshold: opts.FlushEvery,
		Namespaces:     opts.Namespaces,
		Now:            opts.Now,
		Logger:         opts.Logger,
	}
	p.conv.Configure(&sopts)
	switch opts.Floats {
	case "scientific":
		sopts.Floats = turtle.ScientificFloats
	case "plain":
		sopts.Floats = turtle.PlainFloats
	}
	// A headerless stream converted through a map file still needs a
	// namespace table; derive it from the map's own schema id.
	if sopts.Namespaces == nil && src.Schema() == "" {
		ns := turtle.Default(reg.Schema())
		sopts.Namespaces = &ns
	}

	ser := serializer.New(reg, sopts)

	writeStart := p.now()
	m, err := writeDocument(opts.Output, p.logger, func(w io.Writer) (serializer.Metrics, error) {
		return ser.Run(src, w)
	})
	if err != nil {
		return nil, err
	}
	end := p.now()

	schemaID := src.Schema()
	if schemaID == "" {
		schemaID = reg.Schema()
	}

	p.logger.Info("conversion complete",
		"converter", p.name,
		"entities", m.Entities,
		"triples", m.Triples,
		"skipped", m.Skipped)

	return &report.Report{
		Input:     input,
		Output:    opts.Output,
		Converter: p.name,
		Schema:    schemaID,
		Entities:  m.Entities,
		Skipped:   m.Skipped,
		Triples:   m.Triples,
		Flushes:   m.Flushes,
		LoadMS:    loadMS,
		WriteMS:   end.Sub(writeStart).Milliseconds(),
		TotalMS:   end.Sub(start).Milliseconds(),
	}, nil
}

// loadRegistry resolves the collection map. An explicit map file wins
// over the embedded per-schema tables.
func loadRegistry(schemaID, mapFile string) (*schema.Registry, error) {
	if mapFile != "" {
		data, err := os.ReadFile(mapFile)
		if err != nil {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("map file: %v", err)}
		}
		reg, err := schema.New(data)
		if err != nil {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("map file %s: %v", mapFile, err)}
		}
		return reg, nil
	}
	if schemaID == "" {
		return nil, &ConfigurationError{Reason: "schema id missing: stream has no header and no override was given"}
	}
	reg, err := schema.Load(schemaID)
	if err != nil {
		return nil, &ConfigurationError{Reason: err.Error()}
	}
	return reg, nil
}

func openInput(path string) (io.Reader, func() error, error) {
	if path == "-" {
		return os.Stdin, func() error { return nil }, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open input: %w", err)
	}
	return f, f.Close, nil
}

// writeDocument streams the emitted document into the destination.
// Regular files are written to a sibling temp file and renamed into
// place on success, so a failed run never replaces an existing
// document; the partial temp file is left for inspection.
func writeDocument(path string, logger *slog.Logger, emit func(io.Writer) (serializer.Metrics, error)) (serializer.Metrics, error) {
	if path == "-" {
		return emit(os.Stdout)
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return serializer.Metrics{}, fmt.Errorf("create output: %w", err)
	}

	m, err := emit(f)
	if err != nil {
		f.Close()
		logger.Warn("conversion failed, partial output left", "path", tmp)
		return m, err
	}
	if err := f.Close(); err != nil {
		return m, fmt.Errorf("close output: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return m, fmt.Errorf("finalize output: %w", err)
	}
	return m, nil
}

// overrideSchema wraps a source, replacing its schema id.
type overrideSchema struct {
	model.Source
	schema string
}

func (s overrideSchema) Schema() string { return s.schema }
