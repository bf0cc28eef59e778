package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Simplici0/scanquote/internal/cpqimport"
	"github.com/Simplici0/scanquote/internal/quote"
)

func newExportDefaultCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export-default",
		Short: "Print the default configuration as a CPQ export",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := cpqimport.Export(quote.NewConfiguration())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if _, err := w.Write(out); err != nil {
				return err
			}
			_, err = w.Write([]byte("\n"))
			return err
		},
	}
}
