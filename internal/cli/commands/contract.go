// Package commands implements the contracts subcommands.
package commands

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/reoring/contracts"
	"github.com/reoring/contracts/internal/cli/config"
	"github.com/reoring/contracts/schema"
	"github.com/reoring/contracts/source"
)

// openSchema parses the configured schema file.
func openSchema(cfg *config.Config) (*schema.Registry, error) {
	if cfg.Schema == "" {
		return nil, errors.New("no schema file: set --schema, CONTRACTS_SCHEMA or schema in contracts.yaml")
	}
	return schema.ParseFile(cfg.Schema)
}

// openContract builds the configured contract with the load settings.
func openContract(cfg *config.Config, logger *slog.Logger) (*contracts.Contract, error) {
	reg, err := openSchema(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Contract == "" {
		return nil, fmt.Errorf("no contract selected (schema declares %v)", reg.Names())
	}
	c, err := reg.Contract(cfg.Contract,
		contracts.WithMany(cfg.Many),
		contracts.WithPartial(cfg.Partial),
		contracts.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	logger.Debug("contract ready", "schema", cfg.Schema, "contract", cfg.Contract, "many", cfg.Many, "partial", cfg.Partial)
	return c, nil
}

// readInput decodes one input document. "-" is the command's stdin.
func readInput(cmd *cobra.Command, file string, opts source.Options) (any, error) {
	if file == "-" {
		return source.Decode(cmd.InOrStdin(), opts)
	}
	return source.ReadFile(file, opts)
}

func inputs(args []string) []string {
	if len(args) == 0 {
		return []string{"-"}
	}
	return args
}

// process runs fn over every input and renders the results. It returns
// ErrInvalidInput when any input was rejected.
func process(cmd *cobra.Command, args []string, fn func(data any) (any, error)) error {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)
	logger := config.GetLogger(ctx)

	var results []result
	failed := 0
	for _, file := range inputs(args) {
		data, err := readInput(cmd, file, cfg.SourceOptions())
		if err == nil {
			var out any
			if out, err = fn(data); err == nil {
				results = append(results, result{File: file, Valid: true, Data: out})
				continue
			}
		}
		r, err := classify(file, err)
		if err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}
		logger.Info("input rejected", "file", file, "issues", len(r.issues))
		results = append(results, r)
		failed++
	}
	if err := render(cmd.OutOrStdout(), cfg.Output, results); err != nil {
		return err
	}
	if failed > 0 {
		return ErrInvalidInput
	}
	return nil
}
