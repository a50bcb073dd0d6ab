package commands

import (
	"github.com/spf13/cobra"

	"github.com/reoring/contracts/internal/cli/config"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file...]",
		Short: "Load documents through a contract",
		Long: `Load each document through the selected contract and print the
normalized result, or the aggregated errors when the document is rejected.

Documents are JSON or YAML; "-" or no argument reads standard input.
The exit status is 1 when any document fails validation.`,
		Example: `  contracts validate -s schema.yaml -c User user.json
  cat users.yaml | contracts validate -s schema.yaml -c User --many -o table`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := openContract(config.FromContext(ctx), config.GetLogger(ctx))
			if err != nil {
				return err
			}
			return process(cmd, args, func(data any) (any, error) {
				loaded, err := c.Load(data)
				if err != nil {
					return nil, err
				}
				// render through dump so dates, UUIDs and renamed keys print
				// in their external form
				return c.Dump(loaded)
			})
		},
	}
}
