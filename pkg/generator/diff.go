package generator

import (
	"bytes"

	"github.com/yaklabco/assetpack/pkg/pack"
)

// Diff compares two bundles by path. The returned slices are sorted.
func Diff(previous, current *pack.Bundle) (added, removed, changed []string) {
	for _, path := range current.Paths() {
		before, err := previous.Lookup(path)
		if err != nil {
			added = append(added, path)
			continue
		}
		after, _ := current.Lookup(path)
		if !bytes.Equal(before, after) {
			changed = append(changed, path)
		}
	}

	for _, path := range previous.Paths() {
		if _, err := current.Lookup(path); err != nil {
			removed = append(removed, path)
		}
	}

	return added, removed, changed
}
