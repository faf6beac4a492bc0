package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/assetpack/pkg/config"
)

func TestConfigClone(t *testing.T) {
	t.Run("nil config returns nil", func(t *testing.T) {
		var c *config.Config
		assert.Nil(t, c.Clone())
	})

	t.Run("deep copies slices", func(t *testing.T) {
		original := config.NewConfig()
		original.Ignore = []string{"vendor/**"}
		original.DryRun = true

		clone := original.Clone()
		require.NotNil(t, clone)
		assert.NotSame(t, original, clone)
		assert.Equal(t, original, clone)

		clone.Extensions[0] = ".mjs"
		clone.Ignore[0] = "dist/**"
		assert.Equal(t, ".js", original.Extensions[0])
		assert.Equal(t, "vendor/**", original.Ignore[0])
		assert.True(t, clone.DryRun)
	})
}

func TestFromYAML(t *testing.T) {
	data := []byte(`
root: static
output: internal/static/static.go
extensions: [.js, .mjs]
encoding: zstd
func_name: Asset
`)

	cfg, err := config.FromYAML(data)
	require.NoError(t, err)

	assert.Equal(t, "static", cfg.Root)
	assert.Equal(t, "internal/static/static.go", cfg.Output)
	assert.Equal(t, []string{".js", ".mjs"}, cfg.Extensions)
	assert.Equal(t, config.EncodingZstd, cfg.Encoding)
	assert.Equal(t, "Asset", cfg.FuncName)
}

func TestFromYAML_Invalid(t *testing.T) {
	tests := map[string]string{
		"malformed":    "extensions: {not: a list",
		"unknown key":  "roots: web\n",
		"cli-only key": "dry_run: true\n",
	}

	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := config.FromYAML([]byte(data))
			require.Error(t, err)
		})
	}
}

func TestFromYAML_Empty(t *testing.T) {
	cfg, err := config.FromYAML([]byte("# comments only\n"))
	require.NoError(t, err)
	assert.Equal(t, &config.Config{}, cfg)
}

func TestToYAMLRoundTrip(t *testing.T) {
	original := config.NewConfig()
	original.Ignore = []string{"**/*.map"}

	data, err := original.ToYAMLWithHeader(config.DefaultTemplateHeader())
	require.NoError(t, err)
	assert.Contains(t, string(data), "# assetpack configuration")
	assert.NotContains(t, string(data), "dry_run")

	parsed, err := config.FromYAML(data)
	require.NoError(t, err)
	assert.Equal(t, original.Root, parsed.Root)
	assert.Equal(t, original.Extensions, parsed.Extensions)
	assert.Equal(t, original.Ignore, parsed.Ignore)
	assert.Equal(t, original.Encoding, parsed.Encoding)
}

func TestGenerateTemplate(t *testing.T) {
	t.Run("yaml parses back to defaults", func(t *testing.T) {
		data, err := config.GenerateTemplate(config.TemplateOptions{Format: "yaml"})
		require.NoError(t, err)

		cfg, err := config.FromYAML(data)
		require.NoError(t, err)
		defaults := config.NewConfig()
		assert.Equal(t, defaults.Root, cfg.Root)
		assert.Equal(t, defaults.Output, cfg.Output)
		assert.Equal(t, defaults.Extensions, cfg.Extensions)
		assert.Equal(t, defaults.Encoding, cfg.Encoding)
		assert.Equal(t, defaults.FuncName, cfg.FuncName)
	})

	t.Run("json", func(t *testing.T) {
		data, err := config.GenerateTemplate(config.TemplateOptions{Format: "json"})
		require.NoError(t, err)
		assert.Contains(t, string(data), `"encoding": "quoted"`)
		assert.Contains(t, string(data), `"root": "web"`)
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := config.GenerateTemplate(config.TemplateOptions{Format: "toml"})
		require.Error(t, err)
	})
}
