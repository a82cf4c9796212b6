package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/ifc2lbd/internal/config"
	"github.com/roach88/ifc2lbd/internal/convert"
	"github.com/roach88/ifc2lbd/internal/report"
)

// ConvertOptions holds flags for the convert command.
type ConvertOptions struct {
	*RootOptions
	Schema     string
	Converter  string
	Floats     string
	FlushEvery int
	MapFile    string
	FromCache  string
	Benchmark  bool
	Config     string
}

// NewConvertCommand creates the convert command.
func NewConvertCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ConvertOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "convert <input> <output>",
		Short: "Convert a model stream to a Turtle document",
		Long: `Convert one engineering model stream to an RDF Turtle document.

The input is newline-delimited JSON records, "-" for stdin. The output
document is written to a sibling temp file and renamed into place, "-"
for stdout. A schema header line in the stream selects the embedded
collection map; --schema overrides the header and --map replaces the
embedded map entirely.

With --from-cache the stream argument is dropped and entities come from
a previously built model cache instead:

  ifc2lbd convert model.jsonl model.ttl
  ifc2lbd convert --converter mini-plain --flush-every 50000 model.jsonl model.ttl
  ifc2lbd convert --from-cache model.db model.ttl`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Schema, "schema", "", "schema version override (IFC2X3, IFC4, IFC4X3_ADD2)")
	cmd.Flags().StringVar(&opts.Converter, "converter", "", "converter name (default "+convert.DefaultConverter+")")
	cmd.Flags().StringVar(&opts.Floats, "floats", "", "float literal style (scientific|plain)")
	cmd.Flags().IntVar(&opts.FlushEvery, "flush-every", 0, "entities buffered between output flushes")
	cmd.Flags().StringVar(&opts.MapFile, "map", "", "collection map JSON replacing the embedded tables")
	cmd.Flags().StringVar(&opts.FromCache, "from-cache", "", "read entities from a model cache instead of a stream")
	cmd.Flags().BoolVar(&opts.Benchmark, "benchmark", false, "emit the canonical run report")
	cmd.Flags().StringVar(&opts.Config, "config", "", "YAML config file")

	return cmd
}

func runConvert(opts *ConvertOptions, args []string, cmd *cobra.Command) error {
	formatter := opts.RootOptions.formatter(cmd)

	cfg, err := resolveConvertConfig(opts, cmd)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeConfig, "invalid configuration", err)
	}

	input, output, err := convertPaths(opts, args)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeConfig, "invalid arguments", err)
	}

	copts := convert.Options{
		Input:      input,
		Output:     output,
		Schema:     cfg.Schema,
		Converter:  cfg.Converter,
		Floats:     cfg.Floats,
		FlushEvery: cfg.FlushEvery,
		MapFile:    opts.MapFile,
		Namespaces: cfg.BuildNamespaces(cfg.Schema),
		Logger:     opts.RootOptions.Logger(),
	}

	var rep *report.Report
	if opts.FromCache != "" {
		rep, err = convert.RunCached(cmd.Context(), opts.FromCache, copts)
	} else {
		rep, err = convert.Run(copts)
	}
	if err != nil {
		var cerr *convert.ConfigurationError
		if errors.As(err, &cerr) {
			return formatter.fail(ExitCommandError, ErrCodeConfig, cerr.Reason, nil)
		}
		return formatter.fail(ExitFailure, ErrCodeConvert, "conversion failed", err)
	}

	return outputConvertReport(formatter, rep, opts.Benchmark, output == "-")
}

// resolveConvertConfig layers the three setting sources: built-in
// defaults, then the config file, then explicitly set flags.
func resolveConvertConfig(opts *ConvertOptions, cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if opts.Config != "" {
		var err error
		cfg, err = config.Load(opts.Config)
		if err != nil {
			return cfg, err
		}
	}
	if cmd.Flags().Changed("schema") {
		cfg.Schema = opts.Schema
	}
	if cmd.Flags().Changed("converter") {
		cfg.Converter = opts.Converter
	}
	if cmd.Flags().Changed("floats") {
		cfg.Floats = opts.Floats
	}
	if cmd.Flags().Changed("flush-every") {
		cfg.FlushEvery = opts.FlushEvery
	}
	return cfg, nil
}

// convertPaths resolves the positional arguments. A cache-fed run takes
// only the output path.
func convertPaths(opts *ConvertOptions, args []string) (input, output string, err error) {
	if opts.FromCache != "" {
		if len(args) != 1 {
			return "", "", fmt.Errorf("--from-cache takes one argument (the output path), got %d", len(args))
		}
		return "", args[0], nil
	}
	if len(args) != 2 {
		return "", "", fmt.Errorf("expected <input> <output>, got %d arguments", len(args))
	}
	return args[0], args[1], nil
}

// outputConvertReport emits the run summary. The canonical report bytes
// go wherever the document is not: stdout normally, stderr when the
// document itself streams to stdout.
func outputConvertReport(formatter *OutputFormatter, rep *report.Report, benchmark, docOnStdout bool) error {
	if benchmark {
		data, err := rep.MarshalCanonical()
		if err != nil {
			return formatter.fail(ExitFailure, ErrCodeGeneric, "encode report", err)
		}
		w := formatter.Writer
		if docOnStdout {
			w = formatter.GetErrWriter()
		}
		fmt.Fprintln(w, string(data))
		return nil
	}

	if formatter.Format == "json" {
		data, err := rep.MarshalCanonical()
		if err != nil {
			return formatter.fail(ExitFailure, ErrCodeGeneric, "encode report", err)
		}
		return formatter.Success(json.RawMessage(data))
	}

	fmt.Fprintf(formatter.Writer, "converted %s -> %s\n", rep.Input, rep.Output)
	fmt.Fprintf(formatter.Writer, "  converter: %s  schema: %s\n", rep.Converter, rep.Schema)
	fmt.Fprintf(formatter.Writer, "  entities: %d  skipped: %d  triples: %d  flushes: %d\n",
		rep.Entities, rep.Skipped, rep.Triples, rep.Flushes)
	fmt.Fprintf(formatter.Writer, "  load: %d ms  write: %d ms  total: %d ms\n",
		rep.LoadMS, rep.WriteMS, rep.TotalMS)
	return nil
}
