package commands

import (
	"github.com/spf13/cobra"

	"github.com/reoring/contracts/internal/cli/config"
)

// NewDumpCommand creates the dump command.
func NewDumpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dump [file...]",
		Short: "Serialize documents through a contract without validating",
		Long: `Dump each document through the selected contract. Dump applies each
field's serialization (dump_to keys, date and UUID formats, defaults for
absent values) but performs no validation.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := openContract(config.FromContext(ctx), config.GetLogger(ctx))
			if err != nil {
				return err
			}
			return process(cmd, args, c.Dump)
		},
	}
}
