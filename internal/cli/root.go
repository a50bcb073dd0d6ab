// Package cli provides the command-line interface for contracts.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/reoring/contracts/internal/cli/commands"
	"github.com/reoring/contracts/internal/cli/config"
)

// Version is set at build time.
var Version = "0.1.0"

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "contracts",
		Short: "Validate and serialize documents with declarative contracts",
		Long: `contracts loads JSON and YAML documents through contracts declared in a
schema file, reporting every problem at once with field-level attribution.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}
			cfg, err := config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}
			logger := cfg.NewLogger(cmd.ErrOrStderr())
			if cfg.ConfigFile != "" {
				logger.Debug("using config file", "path", cfg.ConfigFile)
			}

			ctx := config.WithConfig(cmd.Context(), cfg)
			ctx = config.WithLogger(ctx, logger)
			cmd.SetContext(ctx)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: ./contracts.yaml)")
	pf.StringP("schema", "s", "", "Schema file declaring the contracts")
	pf.StringP("contract", "c", "", "Contract to apply")
	pf.StringP("format", "f", "", "Input format (auto|json|yaml)")
	pf.StringP("output", "o", "", "Output format (text|table|json)")
	pf.Bool("partial", false, "Do not report missing required fields")
	pf.Bool("many", false, "Treat each document as a list of objects")
	pf.Int("max-depth", 0, "Maximum nesting depth of input documents (0 = unlimited)")
	pf.String("duplicate-keys", "", "Duplicate object keys: error|ignore")
	pf.String("log-level", "", "Log level (debug|info|warn|error)")
	pf.String("log-format", "", "Log format (text|json)")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"text", "table", "json"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"auto", "json", "yaml"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(commands.NewDumpCommand())
	rootCmd.AddCommand(commands.NewJSONSchemaCommand())
	rootCmd.AddCommand(commands.NewListCommand())
	rootCmd.AddCommand(commands.NewVersionCommand(Version))

	return rootCmd
}

// Execute runs the root command. A rejected input has already been reported
// on stdout, so only other errors are printed.
func Execute() error {
	err := NewRootCmd().Execute()
	if err != nil && !errors.Is(err, commands.ErrInvalidInput) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return err
}
