package generator

import (
	"time"

	"github.com/yaklabco/assetpack/pkg/config"
	"github.com/yaklabco/assetpack/pkg/pack"
)

// AssetOutcome describes one bundled asset.
type AssetOutcome struct {
	// Path is the lookup key.
	Path string

	// FilePath is the file the content was read from.
	FilePath string

	// Range is the asset's position in the packed buffer.
	Range pack.Range

	// Content is the raw asset content.
	Content []byte
}

// Size returns the number of bytes bundled for the asset.
func (a AssetOutcome) Size() int {
	return a.Range.Len()
}

// Stats captures aggregate information about a run.
type Stats struct {
	// Assets is the number of bundled assets.
	Assets int

	// Bytes is the size of the packed buffer.
	Bytes int

	// SourceBytes is the size of the generated Go file.
	SourceBytes int

	// Elapsed is the wall time of the run.
	Elapsed time.Duration
}

// Result is the outcome of Generator.Run.
type Result struct {
	// Output is the path of the generated file.
	Output string

	// Package is the package clause that was emitted.
	Package string

	// Encoding is the buffer encoding that was emitted.
	Encoding config.Encoding

	// Assets lists the bundled assets sorted by path.
	Assets []AssetOutcome

	// Source is the generated Go source.
	Source []byte

	// Written reports whether Output was created or replaced.
	Written bool

	// DryRun reports whether writing was skipped on request.
	DryRun bool

	// Stats contains aggregate statistics for the run.
	Stats Stats
}

// Unchanged reports whether the output already held the generated source.
func (r *Result) Unchanged() bool {
	if r == nil {
		return false
	}
	return !r.DryRun && !r.Written
}

// VerifyResult is the outcome of Generator.Verify.
type VerifyResult struct {
	// Output is the path of the checked file.
	Output string

	// UpToDate reports whether Output matches freshly generated source byte
	// for byte.
	UpToDate bool

	// Missing reports whether Output does not exist.
	Missing bool

	// Added lists paths present in the tree but not in Output.
	Added []string

	// Removed lists paths present in Output but no longer in the tree.
	Removed []string

	// Changed lists paths whose content differs.
	Changed []string

	// Unparsable is set when Output exists but could not be parsed as a
	// generated file; the per-path lists are then empty.
	Unparsable error

	// Stats contains aggregate statistics for the fresh generation.
	Stats Stats
}

// Stale reports whether Output needs to be regenerated.
func (v *VerifyResult) Stale() bool {
	return v != nil && !v.UpToDate
}
