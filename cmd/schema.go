package cmd

import (
	"encoding/json"

	"emo-pages-backend/internal/handlers"

	"github.com/spf13/cobra"
)

// NewSchemaCommand creates the schema command
func NewSchemaCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "schema",
		Short:        "Print the page type registry as JSON",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(handlers.BuildSchema())
		},
	}
}
