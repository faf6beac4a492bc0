package reporter

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"

	"github.com/yaklabco/assetpack/pkg/generator"
	"github.com/yaklabco/assetpack/pkg/langdetect"
)

// jsonVersion is the schema version of the JSON output.
const jsonVersion = "1"

// JSONAsset describes one bundled asset.
type JSONAsset struct {
	Path     string `json:"path"`
	File     string `json:"file,omitempty"`
	Size     int    `json:"size"`
	Start    int    `json:"start"`
	End      int    `json:"end"`
	Language string `json:"language,omitempty"`
	MIMEType string `json:"mimeType,omitempty"`
	Binary   bool   `json:"binary,omitempty"`
	Vendored bool   `json:"vendored,omitempty"`
}

// JSONSummary contains aggregate statistics.
type JSONSummary struct {
	Assets      int   `json:"assets"`
	Bytes       int   `json:"bytes"`
	SourceBytes int   `json:"sourceBytes"`
	ElapsedMS   int64 `json:"elapsedMs"`
}

// JSONGenerate is the output of the generate and list commands.
type JSONGenerate struct {
	Version  string      `json:"version"`
	Output   string      `json:"output"`
	Package  string      `json:"package"`
	Encoding string      `json:"encoding"`
	Written  bool        `json:"written"`
	DryRun   bool        `json:"dryRun,omitempty"`
	Assets   []JSONAsset `json:"assets"`
	Summary  JSONSummary `json:"summary"`
}

// JSONVerify is the output of the verify command.
type JSONVerify struct {
	Version  string   `json:"version"`
	Output   string   `json:"output"`
	UpToDate bool     `json:"upToDate"`
	Missing  bool     `json:"missing,omitempty"`
	Added    []string `json:"added"`
	Removed  []string `json:"removed"`
	Changed  []string `json:"changed"`
	Error    string   `json:"error,omitempty"`
}

// JSONReporter formats results as JSON.
type JSONReporter struct {
	opts Options
	bw   *bufio.Writer
}

// NewJSONReporter creates a new JSON reporter.
func NewJSONReporter(opts Options) *JSONReporter {
	return &JSONReporter{
		opts: opts,
		bw:   bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Generate implements Reporter.
func (r *JSONReporter) Generate(_ context.Context, result *generator.Result) error {
	return r.encode(r.buildGenerate(result, false))
}

// List implements Reporter. Assets carry language and MIME details.
func (r *JSONReporter) List(_ context.Context, result *generator.Result) error {
	return r.encode(r.buildGenerate(result, true))
}

// Verify implements Reporter.
func (r *JSONReporter) Verify(_ context.Context, result *generator.VerifyResult) error {
	output := &JSONVerify{
		Version: jsonVersion,
		Added:   []string{},
		Removed: []string{},
		Changed: []string{},
	}
	if result != nil {
		output.Output = displayPath(result.Output, r.opts.WorkingDir)
		output.UpToDate = result.UpToDate
		output.Missing = result.Missing
		output.Added = append(output.Added, result.Added...)
		output.Removed = append(output.Removed, result.Removed...)
		output.Changed = append(output.Changed, result.Changed...)
		if result.Unparsable != nil {
			output.Error = result.Unparsable.Error()
		}
	}
	return r.encode(output)
}

func (r *JSONReporter) buildGenerate(result *generator.Result, detailed bool) *JSONGenerate {
	output := &JSONGenerate{
		Version: jsonVersion,
		Assets:  make([]JSONAsset, 0),
	}
	if result == nil {
		return output
	}

	output.Output = displayPath(result.Output, r.opts.WorkingDir)
	output.Package = result.Package
	output.Encoding = string(result.Encoding)
	output.Written = result.Written
	output.DryRun = result.DryRun
	output.Summary = JSONSummary{
		Assets:      result.Stats.Assets,
		Bytes:       result.Stats.Bytes,
		SourceBytes: result.Stats.SourceBytes,
		ElapsedMS:   result.Stats.Elapsed.Milliseconds(),
	}

	for _, asset := range result.Assets {
		entry := JSONAsset{
			Path:  asset.Path,
			Size:  asset.Size(),
			Start: asset.Range.Start,
			End:   asset.Range.End,
		}
		if detailed {
			info := langdetect.Inspect(asset.Path, asset.Content)
			entry.File = displayPath(asset.FilePath, r.opts.WorkingDir)
			entry.Language = info.Language
			entry.MIMEType = info.MIMEType
			entry.Binary = info.Binary
			entry.Vendored = info.Vendored
		}
		output.Assets = append(output.Assets, entry)
	}

	return output
}

func (r *JSONReporter) encode(v any) (err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil && flushErr != nil {
			err = fmt.Errorf("flush output: %w", flushErr)
		}
	}()

	encoder := json.NewEncoder(r.bw)
	if !r.opts.Compact {
		encoder.SetIndent("", "  ")
	}
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	return nil
}
