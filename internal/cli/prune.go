package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/ifc2lbd/internal/geometry"
	"github.com/roach88/ifc2lbd/internal/model"
	"github.com/roach88/ifc2lbd/internal/schema"
	"github.com/roach88/ifc2lbd/internal/turtle"
)

// PruneOptions holds flags for the prune command.
type PruneOptions struct {
	*RootOptions
	Schema string
	Out    string
}

// pruneSummary is the cleanup outcome reported to the user.
type pruneSummary struct {
	Entities   int                     `json:"entities"`
	Candidates int                     `json:"candidates"`
	Obsolete   int                     `json:"obsolete"`
	Retained   int                     `json:"retained"`
	Removed    int                     `json:"removed_triples"`
	Anomalies  []geometry.CycleAnomaly `json:"anomalies,omitempty"`
}

// NewPruneCommand creates the prune command.
func NewPruneCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PruneOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "prune <model.jsonl> <geometry.ttl>",
		Short: "Drop obsolete geometry entities from a Turtle document",
		Long: `Drop serialized geometry entities whose shapes live in a side channel.

The model stream is indexed by reference structure, the geometry
candidates are classified against the schema's type hierarchy, and the
obsolete subjects' blocks are removed from the Turtle document. Without
--out the document is rewritten in place. Dependency cycles are
reported, never fatal.

Example:
  ifc2lbd prune model.jsonl model.ttl
  ifc2lbd prune --schema IFC4 --out cleaned.ttl model.jsonl model.ttl`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrune(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Schema, "schema", "", "schema version override (IFC2X3, IFC4, IFC4X3_ADD2)")
	cmd.Flags().StringVar(&opts.Out, "out", "", `output path, "-" for stdout (default: rewrite in place)`)

	return cmd
}

func runPrune(opts *PruneOptions, modelPath, docPath string, cmd *cobra.Command) error {
	formatter := opts.RootOptions.formatter(cmd)
	logger := opts.RootOptions.Logger()

	in, closeIn, err := openStream(modelPath, cmd)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeInput, "open model stream", err)
	}
	defer closeIn()

	src := model.NewStreamSource(in, opts.Schema)
	schemaID := src.Schema()
	if schemaID == "" {
		return formatter.fail(ExitCommandError, ErrCodeConfig,
			"schema id missing: stream has no header and no --schema was given", nil)
	}
	reg, err := schema.Load(schemaID)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeConfig, "load schema", err)
	}

	idx := geometry.NewModelIndex()
	for {
		e, err := src.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			var malformed *model.MalformedEntryError
			if errors.As(err, &malformed) {
				logger.Debug("dropped malformed stream entry",
					"line", malformed.Line, "err", malformed.Err)
				continue
			}
			return formatter.fail(ExitFailure, ErrCodeInput, "read model stream", err)
		}
		idx.Add(e)
	}
	formatter.VerboseLog("indexed %d entities", idx.Len())

	res := geometry.NewResolver(idx, reg, logger).Resolve()

	data, err := os.ReadFile(docPath)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeInput, "read geometry document", err)
	}
	doc, err := turtle.Parse(data)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeParse, "parse geometry document", err)
	}

	// Machine documents declare the instance prefix themselves; fall
	// back to the conversion table when one does not.
	ns := doc.Namespaces()
	if ns.URI("inst") == "" {
		ns = turtle.Default(schemaID)
	}
	removed := geometry.Prune(doc.Graph, ns, res.Obsolete)

	out := opts.Out
	if out == "" {
		out = docPath
	}
	if err := writePruned(out, doc, cmd); err != nil {
		return formatter.fail(ExitFailure, ErrCodeWrite, "write pruned document", err)
	}
	logger.Info("prune complete",
		"obsolete", len(res.Obsolete),
		"retained", len(res.Retained),
		"removed_triples", removed,
		"cycles", len(res.Anomalies))

	return outputPruneSummary(formatter, pruneSummary{
		Entities:   idx.Len(),
		Candidates: res.Candidates,
		Obsolete:   len(res.Obsolete),
		Retained:   len(res.Retained),
		Removed:    removed,
		Anomalies:  res.Anomalies,
	}, out == "-")
}

// writePruned emits the cleaned document, through a sibling temp file
// when the target is a regular path.
func writePruned(out string, doc *turtle.Document, cmd *cobra.Command) error {
	if out == "-" {
		return turtle.WriteDocument(cmd.OutOrStdout(), doc)
	}
	tmp := out + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := turtle.WriteDocument(f, doc); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, out)
}

func outputPruneSummary(formatter *OutputFormatter, s pruneSummary, docOnStdout bool) error {
	if formatter.Format == "json" {
		return formatter.Success(s)
	}

	w := formatter.Writer
	if docOnStdout {
		w = formatter.GetErrWriter()
	}
	fmt.Fprintf(w, "pruned %d of %d candidate entities (%d retained)\n", s.Obsolete, s.Candidates, s.Retained)
	fmt.Fprintf(w, "removed %d triples\n", s.Removed)
	if len(s.Anomalies) > 0 {
		fmt.Fprintf(w, "dependency cycles: %d\n", len(s.Anomalies))
	}
	return nil
}
