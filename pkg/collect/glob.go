package collect

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// Match reports whether the root-relative name matches pattern.
//
// Patterns use path.Match syntax per segment, plus "**" which matches zero
// or more whole segments. A pattern without a slash also matches against
// the base name anywhere in the tree, so "*.map" skips every source map.
func Match(pattern, name string) bool {
	pattern = strings.Trim(filepath.ToSlash(pattern), "/")
	name = strings.Trim(filepath.ToSlash(name), "/")

	if pattern == "" {
		return false
	}

	if !strings.Contains(pattern, "/") && pattern != "**" {
		if ok, err := path.Match(pattern, path.Base(name)); err == nil && ok {
			return true
		}
	}

	return matchSegments(strings.Split(pattern, "/"), strings.Split(name, "/"))
}

func matchSegments(pattern, segments []string) bool {
	for len(pattern) > 0 {
		if pattern[0] == "**" {
			rest := pattern[1:]
			if len(rest) == 0 {
				return true
			}
			for i := range len(segments) + 1 {
				if matchSegments(rest, segments[i:]) {
					return true
				}
			}
			return false
		}

		if len(segments) == 0 {
			return false
		}
		ok, err := path.Match(pattern[0], segments[0])
		if err != nil || !ok {
			return false
		}
		pattern, segments = pattern[1:], segments[1:]
	}
	return len(segments) == 0
}

// ValidatePattern returns an error if pattern is malformed.
func ValidatePattern(pattern string) error {
	if strings.TrimSpace(pattern) == "" {
		return errors.New("empty pattern")
	}
	for _, segment := range strings.Split(filepath.ToSlash(pattern), "/") {
		if segment == "**" {
			continue
		}
		if _, err := path.Match(segment, ""); err != nil {
			return fmt.Errorf("invalid glob %q: %w", pattern, err)
		}
	}
	return nil
}

func matchesAny(patterns []string, name string) bool {
	for _, pattern := range patterns {
		if Match(pattern, name) {
			return true
		}
	}
	return false
}
