package config

import (
	"encoding/json"
	"fmt"
)

// TemplateOptions controls configuration template generation.
type TemplateOptions struct {
	// Format is the output format: "yaml" or "json".
	Format string
}

// GenerateTemplate creates a configuration file template populated with defaults.
func GenerateTemplate(opts TemplateOptions) ([]byte, error) {
	switch opts.Format {
	case "", "yaml":
		return []byte(DefaultTemplateHeader() + "\n" + yamlTemplate), nil
	case "json":
		return jsonTemplate()
	default:
		return nil, fmt.Errorf("invalid template format %q: must be yaml or json", opts.Format)
	}
}

const yamlTemplate = `
# Directory containing the assets to bundle
root: web

# Generated Go file
output: web/web.go

# Package clause of the generated file (default: output directory name)
# package: web

# File-name suffixes to bundle (case-sensitive)
extensions:
  - .js
  - .html
  - .css

# Buffer literal encoding: quoted, base64, or zstd
encoding: quoted

# Name of the generated lookup function
func_name: GetContent

# Root-relative glob patterns to skip
# ignore:
#   - "vendor/**"
#   - "**/*.test.js"
`

// jsonTemplate renders the defaults as an indented JSON document.
func jsonTemplate() ([]byte, error) {
	cfg := NewConfig()
	cfg.Ignore = []string{}

	out, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal JSON: %w", err)
	}
	return append(out, '\n'), nil
}

// DefaultTemplateHeader returns the default header for generated configs.
func DefaultTemplateHeader() string {
	return `# assetpack configuration
# See: https://github.com/yaklabco/assetpack`
}
