package generator_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/assetpack/pkg/collect"
	"github.com/yaklabco/assetpack/pkg/config"
	"github.com/yaklabco/assetpack/pkg/emit"
	"github.com/yaklabco/assetpack/pkg/fsutil"
	"github.com/yaklabco/assetpack/pkg/generator"
	"github.com/yaklabco/assetpack/pkg/pack"
)

// setupTree creates a web/ directory with the given files and returns the
// project directory and the options to generate web/web.go.
func setupTree(t *testing.T, files map[string]string) (string, generator.Options) {
	t.Helper()

	dir := t.TempDir()
	root := filepath.Join(dir, "web")
	require.NoError(t, os.MkdirAll(root, 0755))

	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}

	return dir, generator.Options{
		Root:   root,
		Output: filepath.Join(root, "web.go"),
	}
}

func TestGenerator_Run_Scenario(t *testing.T) {
	t.Parallel()

	_, opts := setupTree(t, map[string]string{
		"index.html":   "<html></html>",
		"css/app.css":  "body{}",
		"img/logo.png": "\x89PNG",
	})

	result, err := generator.New().Run(context.Background(), opts)
	require.NoError(t, err)

	assert.True(t, result.Written)
	assert.Equal(t, "web", result.Package)
	assert.Equal(t, config.EncodingQuoted, result.Encoding)
	assert.Equal(t, 2, result.Stats.Assets)
	assert.Equal(t, 19, result.Stats.Bytes)
	require.Len(t, result.Assets, 2)
	assert.Equal(t, "/css/app.css", result.Assets[0].Path)
	assert.Equal(t, pack.Range{Start: 0, End: 6}, result.Assets[0].Range)
	assert.Equal(t, "/index.html", result.Assets[1].Path)
	assert.Equal(t, 13, result.Assets[1].Size())

	written, err := os.ReadFile(opts.Output)
	require.NoError(t, err)
	assert.Equal(t, result.Source, written)

	bundle, header, err := emit.Parse(written)
	require.NoError(t, err)
	assert.Equal(t, "web", header.Package)
	assert.Equal(t, config.DefaultFuncName, header.FuncName)
	assert.Equal(t, []string{"/css/app.css", "/index.html"}, bundle.Paths())

	_, err = bundle.Lookup("/img/logo.png")
	require.ErrorIs(t, err, pack.ErrNotFound)
}

func TestGenerator_Run_Idempotent(t *testing.T) {
	t.Parallel()

	_, opts := setupTree(t, map[string]string{
		"a.js":      "a",
		"b/c.css":   "c",
		"d.html":    "d",
		"e/f/g.js":  "g",
		"e/f/h.css": "h",
	})

	gen := generator.New()
	first, err := gen.Run(context.Background(), opts)
	require.NoError(t, err)
	assert.True(t, first.Written)

	info, err := os.Stat(opts.Output)
	require.NoError(t, err)

	second, err := gen.Run(context.Background(), opts)
	require.NoError(t, err)
	assert.False(t, second.Written)
	assert.True(t, second.Unchanged())
	assert.Equal(t, string(first.Source), string(second.Source))

	again, err := os.Stat(opts.Output)
	require.NoError(t, err)
	assert.Equal(t, info.ModTime(), again.ModTime(), "unchanged output is not rewritten")
}

func TestGenerator_Run_ExcludesOwnOutput(t *testing.T) {
	t.Parallel()

	_, opts := setupTree(t, map[string]string{"app.js": "app"})
	opts.Output = filepath.Join(opts.Root, "bundle.js")

	gen := generator.New()
	_, err := gen.Run(context.Background(), opts)
	require.NoError(t, err)

	result, err := gen.Run(context.Background(), opts)
	require.NoError(t, err)

	require.Len(t, result.Assets, 1)
	assert.Equal(t, "/app.js", result.Assets[0].Path)
	assert.False(t, result.Written)
}

func TestGenerator_Run_DryRun(t *testing.T) {
	t.Parallel()

	_, opts := setupTree(t, map[string]string{"app.js": "app"})
	opts.DryRun = true

	result, err := generator.New().Run(context.Background(), opts)
	require.NoError(t, err)

	assert.True(t, result.DryRun)
	assert.False(t, result.Written)
	assert.False(t, result.Unchanged())
	assert.NotEmpty(t, result.Source)
	assert.NoFileExists(t, opts.Output)
}

func TestGenerator_Run_Options(t *testing.T) {
	t.Parallel()

	_, opts := setupTree(t, map[string]string{
		"app.js":        "app",
		"app.mjs":       "module",
		"vendor/lib.js": "lib",
	})
	opts.Package = "static"
	opts.FuncName = "Asset"
	opts.Encoding = config.EncodingZstd
	opts.Extensions = []string{".js", ".mjs"}
	opts.Ignore = []string{"vendor/**"}

	result, err := generator.New().Run(context.Background(), opts)
	require.NoError(t, err)

	bundle, header, err := emit.Parse(result.Source)
	require.NoError(t, err)
	assert.Equal(t, "static", header.Package)
	assert.Equal(t, "Asset", header.FuncName)
	assert.Equal(t, config.EncodingZstd, header.Encoding)
	assert.Equal(t, []string{"/app.js", "/app.mjs"}, bundle.Paths())
}

func TestGenerator_Run_Errors(t *testing.T) {
	t.Parallel()

	t.Run("missing root", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()

		_, err := generator.New().Run(context.Background(), generator.Options{
			Root:   filepath.Join(dir, "missing"),
			Output: filepath.Join(dir, "out.go"),
		})

		var genErr *generator.GenerationError
		require.ErrorAs(t, err, &genErr)
		assert.Equal(t, generator.StageCollect, genErr.Stage)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("invalid package", func(t *testing.T) {
		t.Parallel()
		_, opts := setupTree(t, map[string]string{"app.js": "app"})
		opts.Package = "not-valid"

		_, err := generator.New().Run(context.Background(), opts)

		var genErr *generator.GenerationError
		require.ErrorAs(t, err, &genErr)
		assert.Equal(t, generator.StageEmit, genErr.Stage)
		assert.ErrorIs(t, err, emit.ErrInvalidIdentifier)
	})

	t.Run("no output", func(t *testing.T) {
		t.Parallel()
		_, opts := setupTree(t, map[string]string{"app.js": "app"})
		opts.Output = ""
		opts.Package = "web"

		_, err := generator.New().Run(context.Background(), opts)
		require.ErrorIs(t, err, generator.ErrNoOutput)
	})
}

func TestGenerator_Run_WriteFailureKeepsOutput(t *testing.T) {
	t.Parallel()

	_, opts := setupTree(t, map[string]string{"app.js": "first"})

	gen := generator.New()
	_, err := gen.Run(context.Background(), opts)
	require.NoError(t, err)
	before, err := os.ReadFile(opts.Output)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(opts.Root, "app.js"), []byte("second"), 0644))

	diskFull := errors.New("no space left on device")
	gen.WriteFile = func(context.Context, string, []byte, os.FileMode) (bool, error) {
		return false, diskFull
	}

	_, err = gen.Run(context.Background(), opts)
	var genErr *generator.GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, generator.StageWrite, genErr.Stage)
	assert.Equal(t, opts.Output, genErr.Path)
	require.ErrorIs(t, err, diskFull)

	after, err := os.ReadFile(opts.Output)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestGenerator_Run_UnreadableAssetKeepsOutput(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" || os.Getuid() == 0 {
		t.Skip("permission bits are not enforced for this user")
	}

	_, opts := setupTree(t, map[string]string{"app.js": "app", "lib.js": "lib"})

	gen := generator.New()
	_, err := gen.Run(context.Background(), opts)
	require.NoError(t, err)
	before, err := os.ReadFile(opts.Output)
	require.NoError(t, err)

	locked := filepath.Join(opts.Root, "lib.js")
	require.NoError(t, os.Chmod(locked, 0))
	t.Cleanup(func() { _ = os.Chmod(locked, 0644) })

	_, err = gen.Run(context.Background(), opts)
	require.ErrorIs(t, err, fsutil.ErrPermissionDenied)

	after, err := os.ReadFile(opts.Output)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestGenerator_Run_Elapsed(t *testing.T) {
	t.Parallel()

	_, opts := setupTree(t, map[string]string{"app.js": "app"})

	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	gen := generator.New()
	gen.Now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	result, err := gen.Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, time.Second, result.Stats.Elapsed)
}

func TestGenerator_Verify(t *testing.T) {
	t.Parallel()

	t.Run("up to date", func(t *testing.T) {
		t.Parallel()
		_, opts := setupTree(t, map[string]string{"app.js": "app"})

		gen := generator.New()
		_, err := gen.Run(context.Background(), opts)
		require.NoError(t, err)

		result, err := gen.Verify(context.Background(), opts)
		require.NoError(t, err)
		assert.True(t, result.UpToDate)
		assert.False(t, result.Stale())
	})

	t.Run("missing output", func(t *testing.T) {
		t.Parallel()
		_, opts := setupTree(t, map[string]string{"app.js": "app"})

		result, err := generator.New().Verify(context.Background(), opts)
		require.NoError(t, err)
		assert.True(t, result.Missing)
		assert.True(t, result.Stale())
		assert.Equal(t, []string{"/app.js"}, result.Added)
		assert.NoFileExists(t, opts.Output)
	})

	t.Run("stale output", func(t *testing.T) {
		t.Parallel()
		_, opts := setupTree(t, map[string]string{
			"keep.js":   "same",
			"change.js": "before",
			"drop.css":  "gone soon",
		})

		gen := generator.New()
		_, err := gen.Run(context.Background(), opts)
		require.NoError(t, err)

		require.NoError(t, os.WriteFile(filepath.Join(opts.Root, "change.js"), []byte("after"), 0644))
		require.NoError(t, os.Remove(filepath.Join(opts.Root, "drop.css")))
		require.NoError(t, os.WriteFile(filepath.Join(opts.Root, "new.html"), []byte("<p>"), 0644))

		result, err := gen.Verify(context.Background(), opts)
		require.NoError(t, err)
		assert.True(t, result.Stale())
		assert.Equal(t, []string{"/new.html"}, result.Added)
		assert.Equal(t, []string{"/drop.css"}, result.Removed)
		assert.Equal(t, []string{"/change.js"}, result.Changed)
	})

	t.Run("hand edited output", func(t *testing.T) {
		t.Parallel()
		_, opts := setupTree(t, map[string]string{"app.js": "app"})
		require.NoError(t, os.WriteFile(opts.Output, []byte("package web\n"), 0644))

		result, err := generator.New().Verify(context.Background(), opts)
		require.NoError(t, err)
		assert.True(t, result.Stale())
		require.ErrorIs(t, result.Unparsable, emit.ErrNotGenerated)
	})

	t.Run("no output configured", func(t *testing.T) {
		t.Parallel()
		_, opts := setupTree(t, map[string]string{"app.js": "app"})
		opts.Output = ""

		_, err := generator.New().Verify(context.Background(), opts)
		var genErr *generator.GenerationError
		require.ErrorAs(t, err, &genErr)
		assert.Equal(t, generator.StageVerify, genErr.Stage)
	})
}

func TestGenerationError(t *testing.T) {
	t.Parallel()

	inner := errors.New("boom")
	err := &generator.GenerationError{Stage: generator.StagePack, Path: "web", Err: inner}
	assert.Equal(t, "pack web: boom", err.Error())
	assert.ErrorIs(t, err, inner)

	noPath := &generator.GenerationError{Stage: generator.StageWrite, Err: inner}
	assert.Equal(t, "write: boom", noPath.Error())
}

func TestDiff(t *testing.T) {
	t.Parallel()

	pk := func(pairs ...string) *pack.Bundle {
		var assets []collect.Asset
		for i := 0; i+1 < len(pairs); i += 2 {
			assets = append(assets, collect.Asset{Path: pairs[i], Content: []byte(pairs[i+1])})
		}
		b, err := pack.Pack(assets)
		require.NoError(t, err)
		return b
	}

	added, removed, changed := generator.Diff(
		pk("/a.js", "1", "/b.js", "2", "/c.js", "3"),
		pk("/a.js", "1", "/b.js", "two", "/d.js", "4"),
	)
	assert.Equal(t, []string{"/d.js"}, added)
	assert.Equal(t, []string{"/c.js"}, removed)
	assert.Equal(t, []string{"/b.js"}, changed)
}

func TestOptionsFromConfig(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	cfg.Output = filepath.Join("static", "files", "bundle.go")
	cfg.DryRun = true

	opts := generator.OptionsFromConfig(cfg)
	assert.Equal(t, config.DefaultRoot, opts.Root)
	assert.Equal(t, "files", opts.Package)
	assert.Equal(t, config.DefaultFuncName, opts.FuncName)
	assert.True(t, opts.DryRun)
	assert.True(t, strings.HasSuffix(opts.Output, "bundle.go"))
}
