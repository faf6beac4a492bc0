package fsutil_test

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/assetpack/pkg/fsutil"
)

// entries lists the names in dir.
func entries(t *testing.T, dir string) []string {
	t.Helper()
	list, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(list))
	for _, e := range list {
		names = append(names, e.Name())
	}
	return names
}

func TestWriteAtomic(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("creates output and missing directories", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "internal", "web", "web.go")
		require.NoError(t, fsutil.WriteAtomic(ctx, path, []byte("package web\n"), 0))

		got, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "package web\n", string(got))

		if runtime.GOOS != "windows" {
			info, err := os.Stat(path)
			require.NoError(t, err)
			assert.Equal(t, fsutil.DefaultFileMode, info.Mode().Perm())
		}
	})

	t.Run("replaces existing file", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "web.go")
		require.NoError(t, os.WriteFile(path, []byte("old"), 0644))

		require.NoError(t, fsutil.WriteAtomic(ctx, path, []byte("new"), 0644))

		got, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "new", string(got))
		assert.Equal(t, []string{"web.go"}, entries(t, dir), "no temp files left behind")
	})

	t.Run("applies requested mode", func(t *testing.T) {
		t.Parallel()
		if runtime.GOOS == "windows" {
			t.Skip("permission bits are not meaningful on windows")
		}

		path := filepath.Join(t.TempDir(), "web.go")
		require.NoError(t, fsutil.WriteAtomic(ctx, path, []byte("x"), 0600))

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	})

	t.Run("writes empty content", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "empty.go")
		require.NoError(t, fsutil.WriteAtomic(ctx, path, nil, 0))

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Zero(t, info.Size())
	})

	t.Run("cancelled context writes nothing", func(t *testing.T) {
		t.Parallel()

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		dir := t.TempDir()
		err := fsutil.WriteAtomic(cancelled, filepath.Join(dir, "web.go"), []byte("x"), 0)
		require.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, entries(t, dir))
	})

	t.Run("failed rename keeps target and removes temp file", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		target := filepath.Join(dir, "web.go")
		require.NoError(t, os.Mkdir(target, 0755))
		require.NoError(t, os.WriteFile(filepath.Join(target, "keep"), []byte("k"), 0644))

		err := fsutil.WriteAtomic(ctx, target, []byte("x"), 0)
		require.Error(t, err)

		assert.Equal(t, []string{"web.go"}, entries(t, dir))
		assert.FileExists(t, filepath.Join(target, "keep"))
	})

	t.Run("temp files never end in .go", func(t *testing.T) {
		t.Parallel()
		if runtime.GOOS == "windows" || os.Getuid() == 0 {
			t.Skip("requires an unwritable directory")
		}

		// CreateTemp reports the pattern it tried in its error.
		dir := t.TempDir()
		require.NoError(t, os.Chmod(dir, 0555))
		t.Cleanup(func() { _ = os.Chmod(dir, 0755) })

		err := fsutil.WriteAtomic(ctx, filepath.Join(dir, "web.go"), []byte("x"), 0)
		require.ErrorIs(t, err, fsutil.ErrPermissionDenied)
		assert.Contains(t, err.Error(), ".web.go.tmp.")
	})
}

func TestWriteAtomicIfChanged(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("writes new file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "web.go")
		written, err := fsutil.WriteAtomicIfChanged(ctx, path, []byte("a"), 0)
		require.NoError(t, err)
		assert.True(t, written)
		assert.FileExists(t, path)
	})

	t.Run("skips identical content", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "web.go")
		require.NoError(t, os.WriteFile(path, []byte("same"), 0644))
		past := time.Now().Add(-time.Hour).Truncate(time.Second)
		require.NoError(t, os.Chtimes(path, past, past))

		written, err := fsutil.WriteAtomicIfChanged(ctx, path, []byte("same"), 0)
		require.NoError(t, err)
		assert.False(t, written)

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.True(t, info.ModTime().Equal(past), "unchanged file must not be touched")
	})

	t.Run("rewrites changed content and keeps mode", func(t *testing.T) {
		t.Parallel()
		if runtime.GOOS == "windows" {
			t.Skip("permission bits are not meaningful on windows")
		}

		path := filepath.Join(t.TempDir(), "web.go")
		require.NoError(t, os.WriteFile(path, []byte("old"), 0600))
		require.NoError(t, os.Chmod(path, 0600))

		written, err := fsutil.WriteAtomicIfChanged(ctx, path, []byte("new"), 0644)
		require.NoError(t, err)
		assert.True(t, written)

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	})

	t.Run("directory target", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		written, err := fsutil.WriteAtomicIfChanged(ctx, dir, []byte("x"), 0)
		require.ErrorIs(t, err, fsutil.ErrIsDirectory)
		assert.False(t, written)
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := fsutil.WriteAtomicIfChanged(cancelled, filepath.Join(t.TempDir(), "web.go"), []byte("x"), 0)
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestIsTempFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	target := filepath.Join(dir, "web.go")

	// The name CreateTemp picks during a real write.
	tmp, err := os.CreateTemp(dir, ".web.go.tmp.*")
	require.NoError(t, err)
	require.NoError(t, tmp.Close())

	tests := []struct {
		name string
		path string
		want bool
	}{
		{"temp file", tmp.Name(), true},
		{"target itself", target, false},
		{"other target's temp", filepath.Join(dir, ".app.go.tmp.123"), false},
		{"other directory", filepath.Join(dir, "sub", ".web.go.tmp.123"), false},
		{"similar name", filepath.Join(dir, ".web.go.tmpfile"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, fsutil.IsTempFile(tt.path, target))
		})
	}
}
