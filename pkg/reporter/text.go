package reporter

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"golang.org/x/term"

	"github.com/yaklabco/assetpack/internal/ui/pretty"
	"github.com/yaklabco/assetpack/pkg/generator"
	"github.com/yaklabco/assetpack/pkg/langdetect"
)

// defaultTermWidth is used when terminal width cannot be determined.
const defaultTermWidth = 100

// TextReporter formats results as styled terminal output.
type TextReporter struct {
	opts      Options
	styles    *pretty.Styles
	formatter *pretty.TableFormatter
	bw        *bufio.Writer
}

// NewTextReporter creates a new text reporter.
func NewTextReporter(opts Options) *TextReporter {
	colorEnabled := pretty.IsColorEnabled(opts.Color, opts.Writer)
	styles := pretty.NewStyles(colorEnabled)
	return &TextReporter{
		opts:      opts,
		styles:    styles,
		formatter: pretty.NewTableFormatter(styles, getTerminalWidth(opts.Writer)),
		bw:        bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Generate implements Reporter.
func (r *TextReporter) Generate(_ context.Context, result *generator.Result) (err error) {
	defer r.flush(&err)

	if result == nil {
		return nil
	}

	shown := *result
	shown.Output = displayPath(result.Output, r.opts.WorkingDir)

	fmt.Fprint(r.bw, r.styles.FormatGenerateOneLine(&shown))
	if r.opts.ShowSummary {
		fmt.Fprint(r.bw, r.styles.FormatSummary(&shown))
	}
	return nil
}

// List implements Reporter.
func (r *TextReporter) List(_ context.Context, result *generator.Result) (err error) {
	defer r.flush(&err)

	if result == nil || len(result.Assets) == 0 {
		fmt.Fprintln(r.bw, r.styles.Warning.Render("No assets found."))
		return nil
	}

	rows := make([]pretty.AssetRow, 0, len(result.Assets))
	for _, asset := range result.Assets {
		info := langdetect.Inspect(asset.Path, asset.Content)
		rows = append(rows, pretty.AssetRow{
			Path:     asset.Path,
			Size:     asset.Size(),
			Start:    asset.Range.Start,
			End:      asset.Range.End,
			Language: info.Language,
			Flags:    flags(info),
		})
	}

	fmt.Fprint(r.bw, r.formatter.FormatAssets(rows))
	fmt.Fprintln(r.bw, r.styles.Dim.Render(fmt.Sprintf("%d assets, %s packed",
		result.Stats.Assets, pretty.FormatBytes(result.Stats.Bytes))))
	return nil
}

// Verify implements Reporter.
func (r *TextReporter) Verify(_ context.Context, result *generator.VerifyResult) (err error) {
	defer r.flush(&err)

	if result == nil {
		return nil
	}

	shown := *result
	shown.Output = displayPath(result.Output, r.opts.WorkingDir)
	fmt.Fprint(r.bw, r.styles.FormatVerify(&shown))
	return nil
}

func (r *TextReporter) flush(err *error) {
	if flushErr := r.bw.Flush(); *err == nil && flushErr != nil {
		*err = fmt.Errorf("flush output: %w", flushErr)
	}
}

func flags(info langdetect.Info) []string {
	var out []string
	if info.Binary {
		out = append(out, "binary")
	}
	if info.Vendored {
		out = append(out, "vendored")
	}
	if info.Generated {
		out = append(out, "generated")
	}
	return out
}

// getTerminalWidth attempts to get the terminal width from the writer.
func getTerminalWidth(writer io.Writer) int {
	if f, ok := writer.(interface{ Fd() uintptr }); ok {
		width, _, err := term.GetSize(int(f.Fd()))
		if err == nil && width > 0 {
			return width
		}
	}
	return defaultTermWidth
}
