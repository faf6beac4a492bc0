// Package logging provides a structured logging wrapper around charmbracelet/log.
package logging

// Field name constants for structured logging.
const (
	// Common fields.
	FieldError      = "error"
	FieldPath       = "path"
	FieldPaths      = "paths"
	FieldWorkingDir = "working_dir"

	// Generation fields.
	FieldRoot       = "root"
	FieldOutput     = "output"
	FieldPackage    = "package"
	FieldEncoding   = "encoding"
	FieldExtensions = "extensions"
	FieldDryRun     = "dry_run"
	FieldStage      = "stage"

	// Statistics fields.
	FieldAssets   = "assets"
	FieldBytes    = "bytes"
	FieldWritten  = "written"
	FieldUpToDate = "up_to_date"
	FieldSize     = "size"
	FieldLanguage = "language"
	FieldElapsed  = "elapsed"

	// Version fields.
	FieldVersion = "version"
	FieldCommit  = "commit"
	FieldBuilt   = "built"
)
