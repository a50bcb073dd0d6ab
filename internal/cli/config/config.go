// Package config loads CLI configuration from defaults, a contracts.yaml
// file, CONTRACTS_* environment variables and command-line flags, in
// increasing order of precedence.
package config

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/reoring/contracts/internal/engine"
	"github.com/reoring/contracts/source"
)

// Default configuration values.
const (
	DefaultConfigFile    = "contracts.yaml"
	DefaultFormat        = "auto"
	DefaultOutput        = "text"
	DefaultDuplicateKeys = "error"
	DefaultLogLevel      = "warn"
	DefaultLogFormat     = "text"
	EnvPrefix            = "CONTRACTS_"
)

// Output modes.
const (
	OutputText  = "text"
	OutputTable = "table"
	OutputJSON  = "json"
)

// Config holds the resolved CLI settings.
type Config struct {
	Schema        string `koanf:"schema"`
	Contract      string `koanf:"contract"`
	Format        string `koanf:"format"`
	Output        string `koanf:"output"`
	Partial       bool   `koanf:"partial"`
	Many          bool   `koanf:"many"`
	MaxDepth      int    `koanf:"max_depth"`
	DuplicateKeys string `koanf:"duplicate_keys"`
	LogLevel      string `koanf:"log_level"`
	LogFormat     string `koanf:"log_format"`

	// ConfigFile is the file that was read, if any.
	ConfigFile string `koanf:"-"`
}

// Load resolves configuration. cfgFile may be empty, in which case
// contracts.yaml in the working directory is used when present.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"format":         DefaultFormat,
		"output":         DefaultOutput,
		"partial":        false,
		"many":           false,
		"max_depth":      0,
		"duplicate_keys": DefaultDuplicateKeys,
		"log_level":      DefaultLogLevel,
		"log_format":     DefaultLogFormat,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	if cfgFile == "" {
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			cfgFile = DefaultConfigFile
		}
	}
	if cfgFile != "" {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", cfgFile, err)
		}
	}

	// 3. Environment: CONTRACTS_MAX_DEPTH -> max_depth
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags that were set explicitly
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed || f.Name == "config" {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.ConfigFile = cfgFile
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	if _, err := source.ParseFormat(c.Format); err != nil {
		return err
	}
	switch c.Output {
	case OutputText, OutputTable, OutputJSON:
	default:
		return fmt.Errorf("unknown output %q (want text, table or json)", c.Output)
	}
	if _, ok := engine.ParseDuplicatePolicy(c.DuplicateKeys); !ok {
		return fmt.Errorf("unknown duplicate_keys %q (want error or ignore)", c.DuplicateKeys)
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("max_depth must not be negative, got %d", c.MaxDepth)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log_format %q (want text or json)", c.LogFormat)
	}
	return nil
}

// SourceOptions converts the decoding settings.
func (c *Config) SourceOptions() source.Options {
	format, _ := source.ParseFormat(c.Format)
	policy, _ := engine.ParseDuplicatePolicy(c.DuplicateKeys)
	return source.Options{
		Format:             format,
		MaxDepth:           c.MaxDepth,
		AllowDuplicateKeys: policy == engine.DupIgnore,
	}
}

// NewLogger builds the slog logger described by the configuration.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, _ := parseLevel(c.LogLevel)
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("unknown log_level %q", s)
	}
	return l, nil
}

type (
	configKey struct{}
	loggerKey struct{}
)

// WithConfig stores cfg in ctx.
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext retrieves the configuration, or defaults when none is stored.
func FromContext(ctx context.Context) *Config {
	if c, ok := ctx.Value(configKey{}).(*Config); ok {
		return c
	}
	return &Config{
		Format:        DefaultFormat,
		Output:        DefaultOutput,
		DuplicateKeys: DefaultDuplicateKeys,
		LogLevel:      DefaultLogLevel,
		LogFormat:     DefaultLogFormat,
	}
}

// WithLogger stores l in ctx.
func WithLogger(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// GetLogger retrieves the logger from ctx.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.DiscardHandler)
}
