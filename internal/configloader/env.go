package configloader

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/yaklabco/assetpack/pkg/config"
)

// envVarPrefix is the prefix for all assetpack environment variables.
const envVarPrefix = "ASSETPACK_"

type envFieldType int

const (
	envTypeString envFieldType = iota
	envTypeBool
	envTypeSlice
)

type envMapping struct {
	field       string
	typ         envFieldType
	description string
}

// envMappings maps environment variable names (without prefix) to config fields.
//
//nolint:gochecknoglobals // Read-only lookup table.
var envMappings = map[string]envMapping{
	"ROOT":       {field: "root", typ: envTypeString, description: "Asset directory to scan"},
	"OUTPUT":     {field: "output", typ: envTypeString, description: "Path of the generated Go file"},
	"PACKAGE":    {field: "package", typ: envTypeString, description: "Package name of the generated file"},
	"ENCODING":   {field: "encoding", typ: envTypeString, description: "Buffer encoding: quoted, base64, or zstd"},
	"FUNC_NAME":  {field: "func_name", typ: envTypeString, description: "Name of the generated lookup function"},
	"FORMAT":     {field: "format", typ: envTypeString, description: "Report format: text or json"},
	"EXTENSIONS": {field: "extensions", typ: envTypeSlice, description: "Comma-separated list of bundled suffixes"},
	"IGNORE":     {field: "ignore", typ: envTypeSlice, description: "Comma-separated list of ignore patterns"},
	"DRY_RUN":    {field: "dry_run", typ: envTypeBool, description: "Generate without writing: true or false"},
}

// LoadFromEnv applies environment variable overrides to the configuration.
// Environment variables are prefixed with ASSETPACK_ (e.g., ASSETPACK_ROOT).
func LoadFromEnv(cfg *config.Config) error {
	if cfg == nil {
		return nil
	}

	for envSuffix, mapping := range envMappings {
		envVar := envVarPrefix + envSuffix
		value := os.Getenv(envVar)
		if value == "" {
			continue
		}

		if err := applyEnvValue(cfg, mapping, value, envVar); err != nil {
			return err
		}
	}

	return nil
}

func applyEnvValue(cfg *config.Config, mapping envMapping, value, envVar string) error {
	switch mapping.typ {
	case envTypeString:
		return setStringField(cfg, mapping.field, value)
	case envTypeBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: invalid boolean for %s: %q (expected true/false/1/0)", ErrInvalidConfig, envVar, value)
		}
		return setBoolField(cfg, mapping.field, b)
	case envTypeSlice:
		return setSliceField(cfg, mapping.field, parseSliceValue(value))
	default:
		return fmt.Errorf("unknown field type for %s", envVar)
	}
}

// parseSliceValue parses a comma-separated string into a slice.
// Each element is trimmed of whitespace.
func parseSliceValue(value string) []string {
	if value == "" {
		return nil
	}

	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func setStringField(cfg *config.Config, field, value string) error {
	switch field {
	case "root":
		cfg.Root = value
	case "output":
		cfg.Output = value
	case "package":
		cfg.Package = value
	case "encoding":
		cfg.Encoding = config.Encoding(value)
	case "func_name":
		cfg.FuncName = value
	case "format":
		cfg.Format = config.OutputFormat(value)
	default:
		return fmt.Errorf("unknown string field: %s", field)
	}
	return nil
}

func setBoolField(cfg *config.Config, field string, value bool) error {
	switch field {
	case "dry_run":
		cfg.DryRun = value
	default:
		return fmt.Errorf("unknown boolean field: %s", field)
	}
	return nil
}

func setSliceField(cfg *config.Config, field string, value []string) error {
	switch field {
	case "extensions":
		cfg.Extensions = value
	case "ignore":
		cfg.Ignore = value
	default:
		return fmt.Errorf("unknown slice field: %s", field)
	}
	return nil
}

// GetEnvVarName returns the full environment variable name for a config field.
func GetEnvVarName(field string) string {
	for suffix, mapping := range envMappings {
		if mapping.field == field {
			return envVarPrefix + suffix
		}
	}
	return ""
}

// ListEnvVars returns all supported environment variables with their
// descriptions, sorted by name.
func ListEnvVars() [][2]string {
	vars := make([][2]string, 0, len(envMappings))
	for suffix, mapping := range envMappings {
		vars = append(vars, [2]string{envVarPrefix + suffix, mapping.description})
	}
	sort.Slice(vars, func(i, j int) bool { return vars[i][0] < vars[j][0] })
	return vars
}
