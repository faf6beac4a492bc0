package config

import "fmt"

// OutputFormat specifies how command results are reported.
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// ParseOutputFormat parses a format string, returning an error for unknown formats.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch s {
	case "text", "":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown format %q; valid formats: text, json", s)
	}
}

// IsValid returns true if the format is a known valid format.
func (f OutputFormat) IsValid() bool {
	return f == FormatText || f == FormatJSON
}
