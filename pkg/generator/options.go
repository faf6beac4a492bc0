// Package generator runs the collect, pack, emit and write stages that turn
// an asset directory into a generated Go file.
package generator

import (
	"github.com/yaklabco/assetpack/pkg/collect"
	"github.com/yaklabco/assetpack/pkg/config"
	"github.com/yaklabco/assetpack/pkg/emit"
)

// Options controls a single generation run.
type Options struct {
	// Root is the asset directory to scan.
	Root string

	// Output is the path of the generated Go file.
	Output string

	// Package is the package clause of the generated file.
	// If empty, it is derived from the output directory name.
	Package string

	// FuncName names the generated lookup function.
	FuncName string

	// Encoding selects the buffer literal encoding.
	Encoding config.Encoding

	// Extensions is the set of bundled file-name suffixes.
	Extensions []string

	// Ignore holds root-relative glob patterns to skip.
	Ignore []string

	// DryRun generates in memory without writing Output.
	DryRun bool
}

// OptionsFromConfig builds Options from a resolved configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	return Options{
		Root:       cfg.Root,
		Output:     cfg.Output,
		Package:    cfg.PackageName(),
		FuncName:   cfg.FuncName,
		Encoding:   cfg.Encoding,
		Extensions: cfg.Extensions,
		Ignore:     cfg.Ignore,
		DryRun:     cfg.DryRun,
	}
}

func (o Options) collectOptions() collect.Options {
	opts := collect.Options{
		Root:       o.Root,
		Extensions: o.Extensions,
		Ignore:     o.Ignore,
	}
	if o.Output != "" {
		opts.Skip = []string{o.Output}
	}
	return opts
}

func (o Options) emitOptions() emit.Options {
	pkg := o.Package
	if pkg == "" {
		pkg = config.DerivePackageName(o.Output)
	}
	return emit.Options{
		Package:  pkg,
		FuncName: o.FuncName,
		Encoding: o.Encoding,
	}
}
