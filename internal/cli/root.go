// Package cli implements the bills command-line interface.
package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCmd builds the bills root command.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "bills",
		Short:         "Utility-bill batch extraction",
		Long:          "Processes uploaded utility-bill documents: OCR, structured extraction, anomaly checks, and an emailed report.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(newServeCmd())
	root.AddCommand(newRunCmd())
	return root
}
