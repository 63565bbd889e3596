package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/invoicekit/internal/output"
	"github.com/jmylchreest/invoicekit/internal/version"
)

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				w, err := output.NewWriter(cmd.OutOrStdout(), output.FormatJSON)
				if err != nil {
					return err
				}
				if err := w.Write(version.Get()); err != nil {
					return err
				}
				return w.Close()
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version.Full("invoicekit"))
			return err
		},
	}
	cmd.Flags().Bool("json", false, "print version information as JSON")
	return cmd
}
