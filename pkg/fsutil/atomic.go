package fsutil

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultFileMode is the permission mode for newly created output files.
const DefaultFileMode os.FileMode = 0644

// DefaultDirMode is the permission mode for directories created on demand.
const DefaultDirMode os.FileMode = 0755

// tempPattern names temp files next to the target. The name must not end in
// .go, or a concurrent go build in the same directory would compile it.
const tempPattern = ".%s.tmp.*"

// IsTempFile reports whether name is a temp file that WriteAtomic creates
// while replacing target.
func IsTempFile(name, target string) bool {
	if filepath.Dir(name) != filepath.Dir(target) {
		return false
	}
	prefix := strings.TrimSuffix(fmt.Sprintf(tempPattern, filepath.Base(target)), "*")
	return strings.HasPrefix(filepath.Base(name), prefix)
}

// WriteAtomic replaces path with content. The content is written to a temp
// file in the target directory, synced and renamed over path, so readers
// see either the old file or the new one. Missing parent directories are
// created. A zero mode means DefaultFileMode.
//
// On error the temp file is removed and an existing file at path is left
// untouched.
func WriteAtomic(ctx context.Context, path string, content []byte, mode os.FileMode) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	if mode == 0 {
		mode = DefaultFileMode
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, DefaultDirMode); err != nil {
		return classify(dir, "create directory", err)
	}

	tmp, err := os.CreateTemp(dir, fmt.Sprintf(tempPattern, filepath.Base(path)))
	if err != nil {
		return classify(dir, "create temp file", err)
	}
	tmpPath := tmp.Name()

	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return classify(path, "replace", err)
	}

	committed = true
	return nil
}

// WriteAtomicIfChanged writes content to path with WriteAtomic unless path
// already holds exactly content. It reports whether the file was written.
//
// When path exists, its permission bits are kept and mode is ignored, so a
// regenerated file does not change mode under version control.
func WriteAtomicIfChanged(ctx context.Context, path string, content []byte, mode os.FileMode) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("write %s: %w", path, err)
	}

	info, err := os.Stat(path)
	switch {
	case os.IsNotExist(err):
		// First write.
	case err != nil:
		return false, classify(path, "stat", err)
	case info.IsDir():
		return false, fmt.Errorf("%w: %s", ErrIsDirectory, path)
	default:
		existing, err := os.ReadFile(path)
		if err != nil {
			return false, classify(path, "read", err)
		}
		if bytes.Equal(existing, content) {
			return false, nil
		}
		mode = info.Mode().Perm()
	}

	if err := WriteAtomic(ctx, path, content, mode); err != nil {
		return false, err
	}
	return true, nil
}
