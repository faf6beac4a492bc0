// Package watch regenerates the asset bundle whenever the asset tree changes.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/yaklabco/assetpack/internal/logging"
	"github.com/yaklabco/assetpack/pkg/collect"
	"github.com/yaklabco/assetpack/pkg/fsutil"
	"github.com/yaklabco/assetpack/pkg/generator"
)

// DefaultDebounce is the quiet period after the last change before a rebuild.
const DefaultDebounce = 200 * time.Millisecond

// Builder runs one full generation. *generator.Generator implements it.
type Builder interface {
	Run(ctx context.Context, opts generator.Options) (*generator.Result, error)
}

// Options configures a Watcher.
type Options struct {
	// Generate is passed unchanged to every build.
	Generate generator.Options

	// Debounce is the quiet period before a rebuild. Zero means DefaultDebounce.
	Debounce time.Duration

	// OnBuild is called after every build, including the initial one.
	// A failed build is reported here and does not stop the watcher.
	OnBuild func(result *generator.Result, err error)
}

// Watcher rebuilds the bundle on file system changes under the asset root.
type Watcher struct {
	builder Builder
	opts    Options
	fsw     *fsnotify.Watcher
	root    string
	output  string
}

// New creates a Watcher for opts.Generate.Root.
func New(builder Builder, opts Options) (*Watcher, error) {
	if builder == nil {
		return nil, errors.New("watch: nil builder")
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}

	root, err := filepath.Abs(opts.Generate.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}

	var output string
	if opts.Generate.Output != "" {
		output, err = filepath.Abs(opts.Generate.Output)
		if err != nil {
			return nil, fmt.Errorf("resolve output: %w", err)
		}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}

	return &Watcher{
		builder: builder,
		opts:    opts,
		fsw:     fsw,
		root:    root,
		output:  output,
	}, nil
}

// Run performs an initial build, then rebuilds after each burst of changes
// until ctx is cancelled. Every rebuild is a full rebuild.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	logger := logging.FromContext(ctx)

	if err := w.addTree(w.root); err != nil {
		return err
	}

	w.build(ctx)

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			logger.Debug("watcher stopped")
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.handle(event) {
				continue
			}
			logger.Debug("change detected", logging.FieldPath, event.Name, "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(w.opts.Debounce)
			} else {
				timer.Reset(w.opts.Debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			w.build(ctx)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", logging.FieldError, err)
		}
	}
}

// handle updates the watch list for event and reports whether it should
// trigger a rebuild.
func (w *Watcher) handle(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	if w.output != "" && (event.Name == w.output || fsutil.IsTempFile(event.Name, w.output)) {
		return false
	}

	rel, err := filepath.Rel(w.root, event.Name)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false
	}
	rel = filepath.ToSlash(rel)
	if w.ignored(rel) {
		return false
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				logging.Default().Warn("watch new directory", logging.FieldPath, event.Name, logging.FieldError, err)
			}
			return true
		}
	}

	// A removed or renamed entry may have been a directory full of assets.
	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		return true
	}

	return w.bundled(rel)
}

// addTree watches dir and every directory below it that is not ignored.
func (w *Watcher) addTree(dir string) error {
	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !entry.IsDir() {
			return nil
		}
		if path != w.root {
			rel, err := filepath.Rel(w.root, path)
			if err == nil && w.ignored(filepath.ToSlash(rel)) {
				return filepath.SkipDir
			}
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("watch tree %s: %w", dir, err)
	}
	return nil
}

func (w *Watcher) ignored(rel string) bool {
	for _, pattern := range w.opts.Generate.Ignore {
		if collect.Match(pattern, rel) {
			return true
		}
	}
	return false
}

func (w *Watcher) bundled(rel string) bool {
	extensions := w.opts.Generate.Extensions
	if len(extensions) == 0 {
		extensions = collect.DefaultExtensions()
	}
	for _, ext := range extensions {
		if strings.HasSuffix(rel, ext) {
			return true
		}
	}
	return false
}

func (w *Watcher) build(ctx context.Context) {
	result, err := w.builder.Run(ctx, w.opts.Generate)
	if err != nil && ctx.Err() != nil {
		return
	}
	if w.opts.OnBuild != nil {
		w.opts.OnBuild(result, err)
	}
}
