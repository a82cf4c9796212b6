package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/ifc2lbd/internal/schema"
)

// SchemaOptions holds flags for the schema command.
type SchemaOptions struct {
	*RootOptions
	Schema string
}

// attributeRow is one collection attribute in inspection output.
type attributeRow struct {
	Attribute string `json:"attribute"`
	Kind      string `json:"kind"`
}

// schemaSummary is the inspection payload for one entity type.
type schemaSummary struct {
	Schema     string         `json:"schema"`
	Type       string         `json:"type"`
	Attributes []attributeRow `json:"attributes"`
}

// NewSchemaCommand creates the schema command.
func NewSchemaCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SchemaOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "schema <entityType>",
		Short: "Inspect a type's collection attributes",
		Long: `Print the flattened collection attributes of one entity type.

The listing covers the type's own aggregate attributes plus everything
inherited through its supertype chain, as declared by the embedded
collection map for the schema version.

Example:
  ifc2lbd schema IfcWallType
  ifc2lbd schema --schema IFC2X3 IfcShapeRepresentation`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchema(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Schema, "schema", "IFC4", "schema version (IFC2X3, IFC4, IFC4X3_ADD2)")

	return cmd
}

func runSchema(opts *SchemaOptions, entityType string, cmd *cobra.Command) error {
	formatter := opts.RootOptions.formatter(cmd)

	reg, err := schema.Load(opts.Schema)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeConfig, "load schema", err)
	}

	rows := make([]attributeRow, 0)
	for _, ak := range reg.Collections(entityType) {
		rows = append(rows, attributeRow{Attribute: ak.Attribute, Kind: ak.Kind.String()})
	}

	return outputSchemaSummary(formatter, schemaSummary{
		Schema:     reg.Schema(),
		Type:       entityType,
		Attributes: rows,
	})
}

func outputSchemaSummary(formatter *OutputFormatter, s schemaSummary) error {
	if formatter.Format == "json" {
		return formatter.Success(s)
	}

	if len(s.Attributes) == 0 {
		fmt.Fprintf(formatter.Writer, "%s (%s): no collection attributes\n", s.Type, s.Schema)
		return nil
	}
	fmt.Fprintf(formatter.Writer, "%s (%s):\n", s.Type, s.Schema)
	for _, row := range s.Attributes {
		fmt.Fprintf(formatter.Writer, "  %s\t%s\n", row.Attribute, row.Kind)
	}
	return nil
}
