// Package emit renders a packed bundle as Go source and parses such source
// back into a bundle.
package emit

import (
	"errors"
	"fmt"
	"go/token"
	"slices"

	"github.com/yaklabco/assetpack/pkg/config"
)

// HeaderLine is the first line of every generated file. It follows the
// convention recognized by go vet, linters and code review tools.
const HeaderLine = "// Code generated by assetpack. DO NOT EDIT."

// Identifiers declared by every generated file.
const (
	dataVar     = "assetData"
	rangeType   = "assetRange"
	indexVar    = "assetIndex"
	notFoundVar = "ErrNotFound"
	pathsFunc   = "AssetPaths"
	decodeFunc  = "mustDecodeAssets"
)

const zstdImport = "github.com/klauspost/compress/zstd"

// ErrInvalidIdentifier is returned for a package or function name that
// cannot be used in the generated file.
var ErrInvalidIdentifier = errors.New("invalid identifier")

// Options controls the generated file.
type Options struct {
	// Package is the package clause. Required.
	Package string

	// FuncName names the lookup function. Defaults to config.DefaultFuncName.
	FuncName string

	// Encoding selects how the buffer literal is written.
	// Defaults to config.EncodingQuoted.
	Encoding config.Encoding
}

// Header describes the generated file as recovered by Parse.
type Header struct {
	Package  string
	FuncName string
	Encoding config.Encoding
}

func (o Options) withDefaults() Options {
	if o.FuncName == "" {
		o.FuncName = config.DefaultFuncName
	}
	if o.Encoding == "" {
		o.Encoding = config.EncodingQuoted
	}
	return o
}

// Validate checks that the options produce a compilable file.
func (o Options) Validate() error {
	o = o.withDefaults()

	if err := ValidatePackageName(o.Package); err != nil {
		return err
	}
	if err := ValidateFuncName(o.FuncName); err != nil {
		return err
	}
	if !o.Encoding.IsValid() {
		return fmt.Errorf("unknown encoding %q (valid: %v)", o.Encoding, config.Encodings())
	}
	return nil
}

// ValidatePackageName reports whether name can appear in the package clause
// of the generated file. The generated file has no main function, so
// package main is rejected.
func ValidatePackageName(name string) error {
	if !isIdentifier(name) || name == "_" {
		return fmt.Errorf("%w: package %q", ErrInvalidIdentifier, name)
	}
	if name == "main" {
		return fmt.Errorf("%w: package %q cannot be imported", ErrInvalidIdentifier, name)
	}
	return nil
}

// ValidateFuncName reports whether name can be used for the lookup function
// without clashing with the other generated declarations.
func ValidateFuncName(name string) error {
	if !isIdentifier(name) || name == "_" || name == "init" || name == "main" {
		return fmt.Errorf("%w: function %q", ErrInvalidIdentifier, name)
	}
	if slices.Contains(reservedNames(), name) {
		return fmt.Errorf("%w: function %q is already declared by the generated file", ErrInvalidIdentifier, name)
	}
	return nil
}

func reservedNames() []string {
	return []string{dataVar, rangeType, indexVar, notFoundVar, pathsFunc, decodeFunc, "errors", "base64", "zstd"}
}

func isIdentifier(name string) bool {
	return token.IsIdentifier(name) && !token.IsKeyword(name)
}
