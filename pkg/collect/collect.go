package collect

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/yaklabco/assetpack/internal/logging"
	"github.com/yaklabco/assetpack/pkg/fsutil"
	"github.com/yaklabco/assetpack/pkg/langdetect"
)

// ErrRootNotDirectory is returned when Options.Root is not a directory.
var ErrRootNotDirectory = errors.New("asset root is not a directory")

// Collect walks opts.Root and reads every regular file whose name ends with
// one of the recognized extensions. Assets are returned sorted by Path.
//
// Any walk or read failure aborts the collection: a partial asset list would
// produce a bundle with silent gaps.
func Collect(ctx context.Context, opts Options) ([]Asset, error) {
	if opts.Root == "" {
		return nil, fmt.Errorf("%w: empty path", ErrRootNotDirectory)
	}

	root := filepath.Clean(opts.Root)
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrRootNotDirectory, root)
	}

	skip, err := absSet(opts.Skip)
	if err != nil {
		return nil, err
	}

	extensions := opts.effectiveExtensions()
	logger := logging.FromContext(ctx)

	var assets []Asset

	err = filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if walkErr != nil {
			return walkErr
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return fmt.Errorf("relative path for %s: %w", path, relErr)
		}

		if entry.IsDir() {
			if path != root && matchesAny(opts.Ignore, rel) {
				logger.Debug("skipping ignored directory", logging.FieldPath, rel)
				return filepath.SkipDir
			}
			return nil
		}

		// Symlinks, sockets and devices are never bundled.
		if !entry.Type().IsRegular() {
			return nil
		}

		if !hasExtension(entry.Name(), extensions) {
			return nil
		}

		if matchesAny(opts.Ignore, rel) {
			logger.Debug("skipping ignored file", logging.FieldPath, rel)
			return nil
		}

		if len(skip) > 0 {
			if abs, absErr := filepath.Abs(path); absErr == nil {
				if _, ok := skip[abs]; ok {
					return nil
				}
			}
		}

		content, fileInfo, readErr := fsutil.ReadFile(ctx, path)
		if readErr != nil {
			return readErr
		}

		asset := Asset{
			Path:     KeyFor(rel),
			FilePath: path,
			Content:  content,
			Mode:     fileInfo.Mode,
			ModTime:  fileInfo.ModTime,
		}

		if langdetect.IsBinary(content) {
			logger.Warn("bundling binary content", logging.FieldPath, asset.Path, logging.FieldSize, len(content))
		}
		logger.Debug("collected asset", logging.FieldPath, asset.Path, logging.FieldSize, len(content))

		assets = append(assets, asset)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	sort.Slice(assets, func(i, j int) bool {
		return assets[i].Path < assets[j].Path
	})

	return assets, nil
}

// KeyFor converts a root-relative filesystem path into a lookup key:
// forward slashes with a single leading "/".
func KeyFor(rel string) string {
	return "/" + strings.TrimPrefix(filepath.ToSlash(filepath.Clean(rel)), "/")
}

// hasExtension reports whether name ends with one of the extensions.
func hasExtension(name string, extensions []string) bool {
	for _, ext := range extensions {
		if ext != "" && strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

func absSet(paths []string) (map[string]struct{}, error) {
	set := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("resolve skip path %s: %w", p, err)
		}
		set[abs] = struct{}{}
	}
	return set, nil
}
