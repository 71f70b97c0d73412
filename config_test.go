package analogy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/google/go-cmp/cmp"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigWithViper_Defaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	cfg, err := LoadConfigWithViper(v)
	require.NoError(t, err)
	if diff := cmp.Diff(DefaultConfig(), cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "analogy.toml")
	content := `
pointers = "linear"
homogeneity = "classic"
ignore_unknowns = true
workers = 0
max_pointer_bits = 256
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, LinearPointers, cfg.Pointers)
	assert.Equal(t, HomogeneityClassic, cfg.Homogeneity)
	assert.Equal(t, MissingVariable, cfg.MissingData)
	assert.True(t, cfg.IgnoreUnknowns)
	assert.Equal(t, 1, cfg.Workers, "workers are clamped to one")
	assert.Equal(t, 256, cfg.MaxPointerBits)
	assert.Equal(t, DefaultMissingMarker, cfg.MissingMarker)
}

func TestLoadConfig_Environment(t *testing.T) {
	t.Setenv("ANALOGY_HOMOGENEITY", "classic")
	t.Setenv("ANALOGY_MISSING_DATA", "mismatch")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, HomogeneityClassic, cfg.Homogeneity)
	assert.Equal(t, MissingMismatch, cfg.MissingData)
	assert.Equal(t, QuadraticPointers, cfg.Pointers)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "pointers", mutate: func(c *Config) { c.Pointers = "cubic" }},
		{name: "homogeneity", mutate: func(c *Config) { c.Homogeneity = "loose" }},
		{name: "missing data", mutate: func(c *Config) { c.MissingData = "maybe" }},
		{name: "negative bits", mutate: func(c *Config) { c.MaxPointerBits = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			assert.True(t, errors.Is(err, ErrInvalidConfig), "got %v", err)
		})
	}

	t.Run("fills blanks", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Workers = -3
		cfg.MissingMarker = ""
		require.NoError(t, cfg.Validate())
		assert.Equal(t, 1, cfg.Workers)
		assert.Equal(t, DefaultMissingMarker, cfg.MissingMarker)
	})
}
