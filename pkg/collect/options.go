// Package collect discovers asset files under a root directory and reads them.
package collect

import (
	"os"
	"time"
)

// Options controls asset discovery.
type Options struct {
	// Root is the directory to scan. It is required.
	Root string

	// Extensions is the set of recognized file-name suffixes, including the
	// leading dot. Matching is a case-sensitive suffix comparison.
	// Defaults to DefaultExtensions() when empty.
	Extensions []string

	// Ignore holds root-relative glob patterns. A matching directory is
	// pruned; a matching file is skipped.
	Ignore []string

	// Skip lists file paths that are never collected, regardless of their
	// extension. The generator uses it to exclude its own output.
	Skip []string
}

// Asset is a discovered file and its content.
type Asset struct {
	// Path is the lookup key: a forward-slash path relative to the root,
	// always starting with "/" (e.g. "/js/app.js").
	Path string

	// FilePath is the filesystem path the content was read from.
	FilePath string

	// Content holds the raw file bytes.
	Content []byte

	// Mode is the file's permission and mode bits.
	Mode os.FileMode

	// ModTime is the file's modification time.
	ModTime time.Time
}

// Size returns the content length in bytes.
func (a Asset) Size() int {
	return len(a.Content)
}

// DefaultExtensions returns the default recognized asset suffixes.
func DefaultExtensions() []string {
	return []string{".js", ".html", ".css"}
}

func (o Options) effectiveExtensions() []string {
	if len(o.Extensions) == 0 {
		return DefaultExtensions()
	}
	return o.Extensions
}
