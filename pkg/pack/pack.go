// Package pack concatenates asset contents into a single buffer and records
// the byte range each asset occupies.
package pack

import (
	"errors"
	"fmt"
	"slices"

	"github.com/yaklabco/assetpack/pkg/collect"
)

var (
	// ErrNotFound is returned by Lookup for a path that is not in the index.
	ErrNotFound = errors.New("not found")

	// ErrDuplicatePath is returned by Pack when two assets share a path.
	ErrDuplicatePath = errors.New("duplicate asset path")

	// ErrInvalidRange is returned by Validate when an index entry is out of
	// bounds or overlaps another entry.
	ErrInvalidRange = errors.New("invalid range")
)

// Range is a half-open byte interval [Start, End) into Bundle.Data.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of bytes covered by the range.
func (r Range) Len() int {
	return r.End - r.Start
}

// Bundle is the packed buffer together with its index.
type Bundle struct {
	// Data holds every asset's bytes back to back, in packing order.
	Data []byte

	// Index maps asset paths to their range in Data.
	Index map[string]Range
}

// New returns an empty bundle.
func New() *Bundle {
	return &Bundle{Index: make(map[string]Range)}
}

// Pack folds assets into a bundle in the order given.
func Pack(assets []collect.Asset) (*Bundle, error) {
	total := 0
	for _, asset := range assets {
		total += len(asset.Content)
	}

	bundle := &Bundle{
		Data:  make([]byte, 0, total),
		Index: make(map[string]Range, len(assets)),
	}

	for _, asset := range assets {
		if err := bundle.Add(asset.Path, asset.Content); err != nil {
			return nil, err
		}
	}

	return bundle, nil
}

// Add appends content to the buffer and indexes it under path.
func (b *Bundle) Add(path string, content []byte) error {
	if _, exists := b.Index[path]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicatePath, path)
	}
	if b.Index == nil {
		b.Index = make(map[string]Range)
	}

	start := len(b.Data)
	b.Data = append(b.Data, content...)
	b.Index[path] = Range{Start: start, End: len(b.Data)}
	return nil
}

// Lookup returns the bytes stored for path. The returned slice shares the
// bundle's buffer and has its capacity clipped to the asset.
func (b *Bundle) Lookup(path string) ([]byte, error) {
	r, ok := b.Index[path]
	if !ok {
		return nil, ErrNotFound
	}
	return b.Data[r.Start:r.End:r.End], nil
}

// Paths returns the indexed paths in sorted order.
func (b *Bundle) Paths() []string {
	paths := make([]string, 0, len(b.Index))
	for path := range b.Index {
		paths = append(paths, path)
	}
	slices.Sort(paths)
	return paths
}

// Len returns the number of indexed assets.
func (b *Bundle) Len() int {
	return len(b.Index)
}

// Size returns the length of the packed buffer.
func (b *Bundle) Size() int {
	return len(b.Data)
}

// Validate checks that every range lies within Data and that no two ranges
// overlap.
func (b *Bundle) Validate() error {
	type entry struct {
		path string
		r    Range
	}

	entries := make([]entry, 0, len(b.Index))
	for path, r := range b.Index {
		if r.Start < 0 || r.Start > r.End || r.End > len(b.Data) {
			return fmt.Errorf("%w: %s [%d, %d) outside buffer of %d bytes",
				ErrInvalidRange, path, r.Start, r.End, len(b.Data))
		}
		entries = append(entries, entry{path: path, r: r})
	}

	slices.SortFunc(entries, func(x, y entry) int {
		if x.r.Start != y.r.Start {
			return x.r.Start - y.r.Start
		}
		return x.r.End - y.r.End
	})

	for i := 1; i < len(entries); i++ {
		prev, cur := entries[i-1], entries[i]
		if cur.r.Start < prev.r.End {
			return fmt.Errorf("%w: %s overlaps %s", ErrInvalidRange, cur.path, prev.path)
		}
	}

	return nil
}
