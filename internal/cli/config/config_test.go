package config

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/contracts/source"
)

func newFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("schema", "", "")
	fs.String("output", "", "")
	fs.Int("max-depth", 0, "")
	fs.String("duplicate-keys", "", "")
	fs.Bool("many", false, "")
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultFormat, cfg.Format)
	assert.Equal(t, DefaultOutput, cfg.Output)
	assert.Equal(t, DefaultDuplicateKeys, cfg.DuplicateKeys)
	assert.Equal(t, 0, cfg.MaxDepth)
	assert.Empty(t, cfg.ConfigFile)
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultConfigFile), []byte(`
schema: from-file.yaml
output: table
max_depth: 4
many: true
`), 0o600))

	t.Setenv("CONTRACTS_OUTPUT", "json")
	t.Setenv("CONTRACTS_MAX_DEPTH", "8")

	fs := newFlags()
	require.NoError(t, fs.Parse([]string{"--max-depth", "16", "--duplicate-keys", "ignore"}))

	cfg, err := Load("", fs)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfigFile, cfg.ConfigFile)
	assert.Equal(t, "from-file.yaml", cfg.Schema) // file
	assert.True(t, cfg.Many)                      // file, flag unset
	assert.Equal(t, "json", cfg.Output)           // env over file
	assert.Equal(t, 16, cfg.MaxDepth)             // flag over env
	assert.Equal(t, "ignore", cfg.DuplicateKeys)  // flag

	opts := cfg.SourceOptions()
	assert.Equal(t, source.FormatAuto, opts.Format)
	assert.Equal(t, 16, opts.MaxDepth)
	assert.True(t, opts.AllowDuplicateKeys)
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	base := func() Config {
		return Config{Format: "auto", Output: "text", DuplicateKeys: "error", LogLevel: "info", LogFormat: "text"}
	}
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "bad output", mutate: func(c *Config) { c.Output = "xml" }, wantErr: true},
		{name: "bad format", mutate: func(c *Config) { c.Format = "toml" }, wantErr: true},
		{name: "bad duplicate policy", mutate: func(c *Config) { c.DuplicateKeys = "warn" }, wantErr: true},
		{name: "negative depth", mutate: func(c *Config) { c.MaxDepth = -1 }, wantErr: true},
		{name: "bad level", mutate: func(c *Config) { c.LogLevel = "loud" }, wantErr: true},
		{name: "bad log format", mutate: func(c *Config) { c.LogFormat = "xml" }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := &Config{LogLevel: "debug", LogFormat: "json"}
	cfg.NewLogger(&buf).Debug("hello", "k", 1)
	assert.Contains(t, buf.String(), `"msg":"hello"`)

	buf.Reset()
	cfg = &Config{LogLevel: "warn", LogFormat: "text"}
	cfg.NewLogger(&buf).Info("quiet")
	assert.Empty(t, buf.String())
}

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, DefaultOutput, FromContext(ctx).Output)
	assert.NotNil(t, GetLogger(ctx))

	cfg := &Config{Output: "json"}
	ctx = WithConfig(ctx, cfg)
	assert.Same(t, cfg, FromContext(ctx))
}
