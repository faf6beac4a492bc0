// Package config defines core configuration types for assetpack.
// These types are pure data structures; loading and merging live in internal/configloader.
package config

import (
	"go/token"
	"path/filepath"
	"strings"
	"unicode"
)

// Encoding selects how the packed buffer is written into generated source.
type Encoding string

const (
	// EncodingQuoted writes the buffer as a Go interpreted string literal.
	// Every byte that is not printable UTF-8 is escaped, so no content can
	// terminate the literal early.
	EncodingQuoted Encoding = "quoted"

	// EncodingBase64 writes the buffer as standard base64, decoded at init.
	EncodingBase64 Encoding = "base64"

	// EncodingZstd writes the buffer zstd-compressed and base64 encoded,
	// decoded at init.
	EncodingZstd Encoding = "zstd"
)

// Encodings returns all supported encodings in display order.
func Encodings() []Encoding {
	return []Encoding{EncodingQuoted, EncodingBase64, EncodingZstd}
}

// IsValid returns true if the encoding is known.
func (e Encoding) IsValid() bool {
	switch e {
	case EncodingQuoted, EncodingBase64, EncodingZstd:
		return true
	default:
		return false
	}
}

// Defaults mirror the conventional web/ layout: assets live in web/ and the
// generated accessor is written next to them as package web.
const (
	DefaultRoot     = "web"
	DefaultOutput   = "web/web.go"
	DefaultFuncName = "GetContent"

	// fallbackPackage is used when no valid package name can be derived.
	fallbackPackage = "assets"
)

// DefaultExtensions returns the recognized asset suffixes.
func DefaultExtensions() []string {
	return []string{".js", ".html", ".css"}
}

// Config is the root configuration structure for assetpack.
type Config struct {
	// Root is the asset directory to scan.
	Root string `yaml:"root,omitempty" json:"root,omitempty"`

	// Output is the path of the generated Go file.
	Output string `yaml:"output,omitempty" json:"output,omitempty"`

	// Package is the package clause of the generated file.
	// Empty means derive it from the output directory name.
	Package string `yaml:"package,omitempty" json:"package,omitempty"`

	// Extensions lists the file-name suffixes that are bundled.
	// Matching is a case-sensitive suffix comparison.
	Extensions []string `yaml:"extensions,omitempty" json:"extensions,omitempty"`

	// Ignore contains root-relative glob patterns for files and directories to skip.
	Ignore []string `yaml:"ignore,omitempty" json:"ignore,omitempty"`

	// Encoding selects the buffer literal encoding.
	Encoding Encoding `yaml:"encoding,omitempty" json:"encoding,omitempty"`

	// FuncName is the name of the generated lookup function.
	FuncName string `yaml:"func_name,omitempty" json:"func_name,omitempty"`

	// CLI-level options (not persisted to config files).

	// DryRun generates in memory without writing the output file.
	DryRun bool `yaml:"-" json:"-"`

	// Format specifies the report output format.
	Format OutputFormat `yaml:"-" json:"-"`
}

// NewConfig returns a Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Root:       DefaultRoot,
		Output:     DefaultOutput,
		Extensions: DefaultExtensions(),
		Encoding:   EncodingQuoted,
		FuncName:   DefaultFuncName,
		Format:     FormatText,
	}
}

// PackageName returns the configured package name, or one derived from the
// directory that will contain the output file.
func (c *Config) PackageName() string {
	if c.Package != "" {
		return c.Package
	}
	return DerivePackageName(c.Output)
}

// DerivePackageName builds a Go package name from the directory of outputPath.
// Characters that cannot appear in an identifier are dropped; if no importable
// package name remains, "assets" is returned.
func DerivePackageName(outputPath string) string {
	dir := filepath.Dir(outputPath)
	if dir == "." {
		if abs, err := filepath.Abs(dir); err == nil {
			dir = abs
		}
	}
	dir = filepath.Base(dir)

	name := strings.Map(func(r rune) rune {
		switch {
		case r == '-' || r == '.':
			return '_'
		case r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r):
			return unicode.ToLower(r)
		default:
			return -1
		}
	}, dir)

	if !token.IsIdentifier(name) || token.IsKeyword(name) || name == "main" || name == "_" {
		return fallbackPackage
	}
	return name
}
