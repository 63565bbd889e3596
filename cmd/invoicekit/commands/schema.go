package commands

import (
	"github.com/spf13/cobra"

	"github.com/jmylchreest/invoicekit/internal/output"
	"github.com/jmylchreest/invoicekit/pkg/invoice"
	"github.com/jmylchreest/invoicekit/pkg/schema"
)

func newSchemaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of parse output",
		Long: `Print the JSON Schema describing one record written by the parse
command (without --include-metadata).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			formatStr, _ := cmd.Flags().GetString("format")
			format, err := output.ParseFormat(formatStr)
			if err != nil {
				return err
			}

			s, err := schema.New[invoice.OrderDetail](
				schema.WithDescription("Order details extracted from a saved order page"))
			if err != nil {
				return err
			}

			w, err := output.NewWriter(cmd.OutOrStdout(), format)
			if err != nil {
				return err
			}
			if err := w.Write(s.ToJSONSchema()); err != nil {
				return err
			}
			return w.Close()
		},
	}
	cmd.Flags().String("format", string(output.FormatJSON), "output format: json, yaml")
	return cmd
}
