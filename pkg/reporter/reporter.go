// Package reporter renders generate, list and verify results as styled
// text or JSON.
package reporter

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/yaklabco/assetpack/pkg/generator"
)

// Reporter formats and writes command results.
type Reporter interface {
	// Generate reports the outcome of a generation run.
	Generate(ctx context.Context, result *generator.Result) error

	// List reports the assets a run would bundle.
	List(ctx context.Context, result *generator.Result) error

	// Verify reports whether the generated file is current.
	Verify(ctx context.Context, result *generator.VerifyResult) error
}

// Compile-time interface checks.
var (
	_ Reporter = (*TextReporter)(nil)
	_ Reporter = (*JSONReporter)(nil)
)

// New creates a Reporter for the specified options.
func New(opts Options) (Reporter, error) {
	if opts.Writer == nil {
		opts.Writer = DefaultOptions().Writer
	}

	format := opts.Format
	if format == "" {
		format = FormatText
	}

	switch format {
	case FormatJSON:
		return NewJSONReporter(opts), nil
	case FormatText:
		return NewTextReporter(opts), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// displayPath makes path relative to workingDir when possible.
func displayPath(path, workingDir string) string {
	if workingDir == "" || path == "" {
		return path
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(workingDir, abs)
	if err != nil || filepath.IsAbs(rel) || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}
