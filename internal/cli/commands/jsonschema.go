package commands

import (
	"github.com/spf13/cobra"

	"github.com/reoring/contracts/internal/cli/config"
)

// NewJSONSchemaCommand creates the jsonschema command.
func NewJSONSchemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "jsonschema",
		Short: "Print the JSON Schema accepted by a contract",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			c, err := openContract(config.FromContext(ctx), config.GetLogger(ctx))
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), c.JSONSchema())
		},
	}
}
