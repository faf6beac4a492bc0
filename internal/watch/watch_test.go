package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/assetpack/pkg/generator"
)

const waitTimeout = 5 * time.Second

type countingBuilder struct {
	calls atomic.Int32
	err   error
}

func (b *countingBuilder) Run(_ context.Context, opts generator.Options) (*generator.Result, error) {
	b.calls.Add(1)
	if b.err != nil {
		return nil, b.err
	}
	return &generator.Result{Output: opts.Output}, nil
}

// startWatcher runs a Watcher in the background and returns a channel that
// receives one value per completed build.
func startWatcher(t *testing.T, builder Builder, opts generator.Options) (<-chan error, context.CancelFunc, <-chan error) {
	t.Helper()

	builds := make(chan error, 16)
	w, err := New(builder, Options{
		Generate: opts,
		Debounce: 20 * time.Millisecond,
		OnBuild: func(_ *generator.Result, err error) {
			builds <- err
		},
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(cancel)

	return builds, cancel, done
}

func waitBuild(t *testing.T, builds <-chan error) error {
	t.Helper()
	select {
	case err := <-builds:
		return err
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for build")
		return nil
	}
}

func TestWatcher_RebuildsOnChange(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "index.html"), []byte("<p>"), 0o644))

	builder := &countingBuilder{}
	builds, _, _ := startWatcher(t, builder, generator.Options{
		Root:   root,
		Output: filepath.Join(root, "web.go"),
	})

	require.NoError(t, waitBuild(t, builds), "initial build")

	require.NoError(t, os.WriteFile(filepath.Join(root, "app.js"), []byte("x"), 0o644))
	require.NoError(t, waitBuild(t, builds), "rebuild after change")

	assert.GreaterOrEqual(t, builder.calls.Load(), int32(2))
}

func TestWatcher_WatchesNewDirectories(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	builds, _, _ := startWatcher(t, &countingBuilder{}, generator.Options{Root: root})
	require.NoError(t, waitBuild(t, builds))

	sub := filepath.Join(root, "css")
	require.NoError(t, os.Mkdir(sub, 0o755))
	require.NoError(t, waitBuild(t, builds), "rebuild after mkdir")

	// Give the watch on the new directory time to settle before writing into it.
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(sub, "app.css"), []byte("a{}"), 0o644))
	require.NoError(t, waitBuild(t, builds), "rebuild after write in new directory")
}

func TestWatcher_ReportsBuildErrors(t *testing.T) {
	t.Parallel()

	errBoom := errors.New("boom")
	builds, _, _ := startWatcher(t, &countingBuilder{err: errBoom}, generator.Options{Root: t.TempDir()})

	assert.ErrorIs(t, waitBuild(t, builds), errBoom)
}

func TestWatcher_StopsOnCancel(t *testing.T) {
	t.Parallel()

	builds, cancel, done := startWatcher(t, &countingBuilder{}, generator.Options{Root: t.TempDir()})
	require.NoError(t, waitBuild(t, builds))

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(waitTimeout):
		t.Fatal("watcher did not stop after cancel")
	}
}

func TestWatcher_MissingRoot(t *testing.T) {
	t.Parallel()

	w, err := New(&countingBuilder{}, Options{
		Generate: generator.Options{Root: filepath.Join(t.TempDir(), "missing")},
	})
	require.NoError(t, err)

	err = w.Run(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestNew_NilBuilder(t *testing.T) {
	t.Parallel()

	_, err := New(nil, Options{})
	assert.Error(t, err)
}

func TestWatcher_Handle(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	w, err := New(&countingBuilder{}, Options{
		Generate: generator.Options{
			Root:   root,
			Output: filepath.Join(root, "web.go"),
			Ignore: []string{"*.map", "vendor/**"},
		},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.fsw.Close() })

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"write asset", fsnotify.Event{Name: filepath.Join(root, "app.js"), Op: fsnotify.Write}, true},
		{"nested asset", fsnotify.Event{Name: filepath.Join(root, "css", "site.css"), Op: fsnotify.Create}, true},
		{"other extension", fsnotify.Event{Name: filepath.Join(root, "notes.txt"), Op: fsnotify.Write}, false},
		{"chmod only", fsnotify.Event{Name: filepath.Join(root, "app.js"), Op: fsnotify.Chmod}, false},
		{"own output", fsnotify.Event{Name: filepath.Join(root, "web.go"), Op: fsnotify.Write}, false},
		{"ignored file", fsnotify.Event{Name: filepath.Join(root, "app.js.map"), Op: fsnotify.Write}, false},
		{"ignored dir", fsnotify.Event{Name: filepath.Join(root, "vendor", "lib.js"), Op: fsnotify.Write}, false},
		{"removal", fsnotify.Event{Name: filepath.Join(root, "old"), Op: fsnotify.Remove}, true},
		{"name starting with dots", fsnotify.Event{Name: filepath.Join(root, "..vendor.js"), Op: fsnotify.Write}, true},
		{"output temp file", fsnotify.Event{Name: filepath.Join(root, ".web.go.tmp.1234"), Op: fsnotify.Rename}, false},
		{"output temp file created", fsnotify.Event{Name: filepath.Join(root, ".web.go.tmp.1234"), Op: fsnotify.Create}, false},
		{"outside root", fsnotify.Event{Name: filepath.Join(filepath.Dir(root), "x.js"), Op: fsnotify.Write}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, w.handle(tt.event))
		})
	}
}
