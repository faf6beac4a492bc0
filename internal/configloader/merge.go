package configloader

import (
	"slices"

	"github.com/yaklabco/assetpack/pkg/config"
)

// merge combines two configurations, with override taking precedence over base.
// The merge follows these rules:
//   - Scalar values: override overwrites base if override is non-zero
//   - Slices: override replaces base entirely if override is non-nil
//   - Nil/unset values in override do not override values in base
func merge(base, override *config.Config) *config.Config {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	result := base.Clone()

	if override.Root != "" {
		result.Root = override.Root
	}
	if override.Output != "" {
		result.Output = override.Output
	}
	if override.Package != "" {
		result.Package = override.Package
	}
	if override.Encoding != "" {
		result.Encoding = override.Encoding
	}
	if override.FuncName != "" {
		result.FuncName = override.FuncName
	}
	if override.Format != "" {
		result.Format = override.Format
	}

	// false is the zero value, so a file cannot unset a dry run requested
	// by a lower layer.
	if override.DryRun {
		result.DryRun = true
	}

	if override.Extensions != nil {
		result.Extensions = slices.Clone(override.Extensions)
	}
	if override.Ignore != nil {
		result.Ignore = slices.Clone(override.Ignore)
	}

	return result
}

// MergeAll merges multiple configurations in order, with later configs taking precedence.
func MergeAll(configs ...*config.Config) *config.Config {
	if len(configs) == 0 {
		return nil
	}

	result := configs[0]
	for i := 1; i < len(configs); i++ {
		result = merge(result, configs[i])
	}
	return result
}
