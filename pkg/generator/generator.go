package generator

import (
	"bytes"
	"context"
	"errors"
	"os"
	"time"

	"github.com/yaklabco/assetpack/internal/logging"
	"github.com/yaklabco/assetpack/pkg/collect"
	"github.com/yaklabco/assetpack/pkg/config"
	"github.com/yaklabco/assetpack/pkg/emit"
	"github.com/yaklabco/assetpack/pkg/fsutil"
	"github.com/yaklabco/assetpack/pkg/pack"
)

// WriteFunc persists content at path and reports whether the file changed.
type WriteFunc func(ctx context.Context, path string, content []byte, mode os.FileMode) (bool, error)

// Generator orchestrates a generation run. Runs are sequential; a Generator
// may be reused but not shared between goroutines.
type Generator struct {
	// WriteFile persists generated source.
	// Defaults to fsutil.WriteAtomicIfChanged.
	WriteFile WriteFunc

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// New creates a Generator that writes atomically and only on change.
func New() *Generator {
	return &Generator{
		WriteFile: fsutil.WriteAtomicIfChanged,
		Now:       time.Now,
	}
}

// Run collects, packs and emits the assets under opts.Root and writes the
// result to opts.Output. The output is only replaced when its content
// changes, and a failed run leaves the previous file in place.
func (g *Generator) Run(ctx context.Context, opts Options) (*Result, error) {
	start := g.now()
	ctx = logging.WithFields(ctx,
		logging.FieldRoot, opts.Root,
		logging.FieldOutput, opts.Output,
	)
	logger := logging.FromContext(ctx)

	result, _, err := g.build(ctx, opts)
	if err != nil {
		logger.Debug("generation failed", logging.FieldError, err)
		return nil, err
	}

	if opts.DryRun {
		result.DryRun = true
		result.Stats.Elapsed = g.since(start)
		logger.Debug("dry run: output not written",
			logging.FieldAssets, result.Stats.Assets,
			logging.FieldBytes, result.Stats.Bytes,
		)
		return result, nil
	}

	if opts.Output == "" {
		return nil, stageError(StageWrite, "", ErrNoOutput)
	}

	write := g.WriteFile
	if write == nil {
		write = fsutil.WriteAtomicIfChanged
	}

	written, err := write(ctx, opts.Output, result.Source, fsutil.DefaultFileMode)
	if err != nil {
		return nil, stageError(StageWrite, opts.Output, err)
	}

	result.Written = written
	result.Stats.Elapsed = g.since(start)

	logger.Debug("generation complete",
		logging.FieldAssets, result.Stats.Assets,
		logging.FieldBytes, result.Stats.Bytes,
		logging.FieldWritten, written,
		logging.FieldElapsed, result.Stats.Elapsed,
	)

	return result, nil
}

// Verify regenerates in memory and compares the result with opts.Output.
// A stale or missing output is reported in the VerifyResult, not as an error.
func (g *Generator) Verify(ctx context.Context, opts Options) (*VerifyResult, error) {
	start := g.now()

	if opts.Output == "" {
		return nil, stageError(StageVerify, "", ErrNoOutput)
	}

	result, fresh, err := g.build(ctx, opts)
	if err != nil {
		return nil, err
	}

	verify := &VerifyResult{
		Output: opts.Output,
		Stats:  result.Stats,
	}

	existing, _, err := fsutil.ReadFile(ctx, opts.Output)
	switch {
	case errors.Is(err, fsutil.ErrNotFound):
		verify.Missing = true
		verify.Added = fresh.Paths()
	case err != nil:
		return nil, stageError(StageVerify, opts.Output, err)
	case bytes.Equal(existing, result.Source):
		verify.UpToDate = true
	default:
		previous, _, parseErr := emit.Parse(existing)
		if parseErr != nil {
			verify.Unparsable = parseErr
			break
		}
		verify.Added, verify.Removed, verify.Changed = Diff(previous, fresh)
	}

	verify.Stats.Elapsed = g.since(start)

	logging.FromContext(ctx).Debug("verify complete",
		logging.FieldOutput, opts.Output,
		logging.FieldUpToDate, verify.UpToDate,
		logging.FieldElapsed, verify.Stats.Elapsed,
	)

	return verify, nil
}

// build runs the in-memory stages and returns the generated source together
// with the bundle it was rendered from.
func (g *Generator) build(ctx context.Context, opts Options) (*Result, *pack.Bundle, error) {
	emitOpts := opts.emitOptions()
	if err := emitOpts.Validate(); err != nil {
		return nil, nil, stageError(StageEmit, opts.Output, err)
	}

	assets, err := collect.Collect(ctx, opts.collectOptions())
	if err != nil {
		return nil, nil, stageError(StageCollect, opts.Root, err)
	}

	bundle, err := pack.Pack(assets)
	if err != nil {
		return nil, nil, stageError(StagePack, opts.Root, err)
	}

	source, err := emit.Generate(bundle, emitOpts)
	if err != nil {
		return nil, nil, stageError(StageEmit, opts.Output, err)
	}

	result := &Result{
		Output:   opts.Output,
		Package:  emitOpts.Package,
		Encoding: emitOpts.Encoding,
		Assets:   make([]AssetOutcome, 0, len(assets)),
		Source:   source,
		Stats: Stats{
			Assets:      bundle.Len(),
			Bytes:       bundle.Size(),
			SourceBytes: len(source),
		},
	}
	if result.Encoding == "" {
		result.Encoding = config.EncodingQuoted
	}

	for _, asset := range assets {
		result.Assets = append(result.Assets, AssetOutcome{
			Path:     asset.Path,
			FilePath: asset.FilePath,
			Range:    bundle.Index[asset.Path],
			Content:  asset.Content,
		})
	}

	return result, bundle, nil
}

func (g *Generator) now() time.Time {
	if g.Now == nil {
		return time.Now()
	}
	return g.Now()
}

func (g *Generator) since(start time.Time) time.Duration {
	return g.now().Sub(start)
}
