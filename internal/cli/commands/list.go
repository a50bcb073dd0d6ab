package commands

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/reoring/contracts"
	"github.com/reoring/contracts/internal/cli/config"
)

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the contracts declared by the schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.FromContext(cmd.Context())
			reg, err := openSchema(cfg)
			if err != nil {
				return err
			}
			if cfg.Output == config.OutputJSON {
				out := make(map[string][]string, len(reg.Names()))
				for _, name := range reg.Names() {
					def, _ := reg.Definition(name)
					out[name] = def.FieldNames()
				}
				return writeJSON(cmd.OutOrStdout(), out)
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Contract", "Fields", "Required"})
			for _, name := range reg.Names() {
				def, _ := reg.Definition(name)
				t.AppendRow(table.Row{name, strings.Join(def.FieldNames(), ", "), strings.Join(required(def), ", ")})
			}
			t.Render()
			return nil
		},
	}
}

func required(def *contracts.Definition) []string {
	var out []string
	for _, name := range def.FieldNames() {
		if f, ok := def.Field(name); ok && f.IsRequired() && !f.IsDumpOnly() {
			out = append(out, name)
		}
	}
	return out
}
