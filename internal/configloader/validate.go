package configloader

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/yaklabco/assetpack/pkg/collect"
	"github.com/yaklabco/assetpack/pkg/config"
	"github.com/yaklabco/assetpack/pkg/emit"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	// Field is the name of the invalid field (e.g., "encoding", "ignore[2]").
	Field string

	// Value is the invalid value.
	Value any

	// Message describes the validation error.
	Message string

	// FilePath is the config file containing the error (if known).
	FilePath string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var parts []string
	if e.FilePath != "" {
		parts = append(parts, e.FilePath)
	}
	if e.Field != "" {
		parts = append(parts, e.Field)
	}
	parts = append(parts, e.Message)
	return strings.Join(parts, ": ")
}

// Unwrap lets errors.Is(err, ErrInvalidConfig) match validation failures.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidConfig
}

// ValidationResult contains all validation findings.
type ValidationResult struct {
	// Errors are validation failures that prevent loading.
	Errors []ValidationError

	// Warnings are non-fatal issues.
	Warnings []ValidationError
}

// Valid returns true if there are no errors.
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// HasWarnings returns true if there are any warnings.
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// AllMessages returns all error and warning messages combined.
func (r *ValidationResult) AllMessages() []string {
	messages := make([]string, 0, len(r.Errors)+len(r.Warnings))
	for _, e := range r.Errors {
		messages = append(messages, "error: "+e.Error())
	}
	for _, w := range r.Warnings {
		messages = append(messages, "warning: "+w.Error())
	}
	return messages
}

func (r *ValidationResult) addError(field string, value any, format string, args ...any) {
	r.Errors = append(r.Errors, ValidationError{Field: field, Value: value, Message: fmt.Sprintf(format, args...)})
}

func (r *ValidationResult) addWarning(field string, value any, format string, args ...any) {
	r.Warnings = append(r.Warnings, ValidationError{Field: field, Value: value, Message: fmt.Sprintf(format, args...)})
}

// Validate checks a fully resolved configuration for errors and warnings.
func Validate(cfg *config.Config) *ValidationResult {
	if cfg == nil {
		return &ValidationResult{}
	}

	result := validateFields(cfg)

	if cfg.Root == "" {
		result.addError("root", cfg.Root, "root must not be empty")
	}
	if cfg.Output == "" {
		result.addError("output", cfg.Output, "output must not be empty")
	}
	if len(cfg.Extensions) == 0 {
		result.addError("extensions", cfg.Extensions, "at least one extension is required")
	}

	if cfg.Package == "" && cfg.Output != "" {
		derived := cfg.PackageName()
		dirName := filepath.Base(filepath.Dir(cfg.Output))
		if derived != strings.ToLower(dirName) {
			result.addWarning("package", derived,
				"package name %q derived from directory %q; set package to silence this", derived, dirName)
		}
	}

	return result
}

// validateFields checks only the fields that are set, so it also applies to
// a single config file.
func validateFields(cfg *config.Config) *ValidationResult {
	result := &ValidationResult{}

	if cfg.Encoding != "" && !cfg.Encoding.IsValid() {
		result.addError("encoding", cfg.Encoding,
			"invalid encoding %q; must be one of: %s", cfg.Encoding, joinEncodings())
	}

	if cfg.Format != "" && !cfg.Format.IsValid() {
		result.addError("format", cfg.Format, "invalid format %q; must be one of: text, json", cfg.Format)
	}

	if cfg.Package != "" {
		if err := emit.ValidatePackageName(cfg.Package); err != nil {
			result.addError("package", cfg.Package, "%v", err)
		}
	}

	if cfg.FuncName != "" {
		if err := emit.ValidateFuncName(cfg.FuncName); err != nil {
			result.addError("func_name", cfg.FuncName, "%v", err)
		}
	}

	for i, ext := range cfg.Extensions {
		switch {
		case !strings.HasPrefix(ext, ".") || len(ext) < 2:
			result.addError(fmt.Sprintf("extensions[%d]", i), ext, "extension %q must start with a dot", ext)
		case strings.ContainsAny(ext, `/\`):
			result.addError(fmt.Sprintf("extensions[%d]", i), ext, "extension %q must not contain a path separator", ext)
		}
	}

	for i, pattern := range cfg.Ignore {
		if err := collect.ValidatePattern(pattern); err != nil {
			result.addError(fmt.Sprintf("ignore[%d]", i), pattern, "invalid glob pattern: %v", err)
		}
	}

	if cfg.Output != "" && filepath.Ext(cfg.Output) != ".go" {
		result.addWarning("output", cfg.Output, "output %q does not end in .go", cfg.Output)
	}

	return result
}

// ValidateWithFile validates the fields set in a single config file and
// includes the file path in errors.
func ValidateWithFile(cfg *config.Config, filePath string) *ValidationResult {
	if cfg == nil {
		return &ValidationResult{}
	}

	result := validateFields(cfg)
	for i := range result.Errors {
		result.Errors[i].FilePath = filePath
	}
	for i := range result.Warnings {
		result.Warnings[i].FilePath = filePath
	}
	return result
}

func joinEncodings() string {
	names := make([]string, 0, len(config.Encodings()))
	for _, e := range config.Encodings() {
		names = append(names, string(e))
	}
	return strings.Join(names, ", ")
}
