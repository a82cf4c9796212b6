package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/ifc2lbd/internal/model"
	"github.com/roach88/ifc2lbd/internal/store"
)

// CacheOptions holds flags for the cache command.
type CacheOptions struct {
	*RootOptions
	Database string
}

// cacheSummary is the import outcome reported to the user.
type cacheSummary struct {
	Imported int64  `json:"imported"`
	Skipped  int64  `json:"skipped"`
	Entities int64  `json:"entities"`
	Schema   string `json:"schema,omitempty"`
}

// NewCacheCommand creates the cache command.
func NewCacheCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CacheOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "cache <input>",
		Short: "Bulk-import a model stream into a cache",
		Long: `Bulk-import a model stream into a SQLite model cache.

The cache replays entities in id order for repeated conversions without
re-reading the stream. Imports are idempotent: an id already cached
keeps its first record.

Example:
  ifc2lbd cache --db model.db model.jsonl
  cat model.jsonl | ifc2lbd cache --db model.db -`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCache(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to the cache database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runCache(opts *CacheOptions, input string, cmd *cobra.Command) error {
	formatter := opts.RootOptions.formatter(cmd)
	logger := opts.RootOptions.Logger()

	in, closeIn, err := openStream(input, cmd)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeInput, "open input", err)
	}
	defer closeIn()

	cache, err := store.Open(opts.Database)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeInput, "open cache", err)
	}
	defer func() {
		if closeErr := cache.Close(); closeErr != nil {
			logger.Error("closing cache", "error", closeErr)
		}
	}()

	ctx := cmd.Context()
	res, err := cache.Import(ctx, model.NewStreamSource(in, ""))
	if err != nil {
		return formatter.fail(ExitFailure, ErrCodeConvert, "import failed", err)
	}

	stats, err := cache.Stats(ctx)
	if err != nil {
		return formatter.fail(ExitFailure, ErrCodeGeneric, "read cache stats", err)
	}
	logger.Info("import complete",
		"imported", res.Imported,
		"skipped", res.Skipped,
		"entities", stats.Entities)

	return outputCacheSummary(formatter, cacheSummary{
		Imported: res.Imported,
		Skipped:  res.Skipped,
		Entities: stats.Entities,
		Schema:   stats.Schema,
	})
}

// openStream opens an input path, mapping "-" onto the command's stdin.
func openStream(path string, cmd *cobra.Command) (io.Reader, func() error, error) {
	if path == "-" {
		return cmd.InOrStdin(), func() error { return nil }, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func outputCacheSummary(formatter *OutputFormatter, s cacheSummary) error {
	if formatter.Format == "json" {
		return formatter.Success(s)
	}

	fmt.Fprintf(formatter.Writer, "imported %d entities (%d skipped)\n", s.Imported, s.Skipped)
	fmt.Fprintf(formatter.Writer, "cache now holds %d entities", s.Entities)
	if s.Schema != "" {
		fmt.Fprintf(formatter.Writer, ", schema %s", s.Schema)
	}
	fmt.Fprintln(formatter.Writer)
	return nil
}
