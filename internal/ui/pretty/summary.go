package pretty

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/yaklabco/assetpack/pkg/generator"
)

const (
	summaryDividerWidth = 40
	wordAsset           = "asset"
	wordAssets          = "assets"
)

// FormatBytes renders n as a short human-readable size.
// Example: 512 -> "512 B", 2048 -> "2.0 KiB".
func FormatBytes(n int) string {
	const unit = 1024
	if n < unit {
		return strconv.Itoa(n) + " B"
	}
	div, exp := unit, 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func pluralAssets(n int) string {
	if n == 1 {
		return wordAsset
	}
	return wordAssets
}

// FormatGenerateOneLine formats a generation result as a single line.
// Example: "Bundled 12 assets (48.2 KiB) into web/web.go".
func (s *Styles) FormatGenerateOneLine(result *generator.Result) string {
	if result == nil {
		return ""
	}

	stats := result.Stats
	counts := fmt.Sprintf("%d %s (%s)", stats.Assets, pluralAssets(stats.Assets), FormatBytes(stats.Bytes))

	var msg string
	switch {
	case result.DryRun:
		msg = s.Info.Render("Dry run:") + " would bundle " + counts + " into " + s.Path.Render(result.Output)
	case result.Written:
		msg = s.Success.Render("Bundled") + " " + counts + " into " + s.Path.Render(result.Output)
	default:
		msg = s.Success.Render("Up to date:") + " " + s.Path.Render(result.Output) + s.Dim.Render(" ("+counts+")")
	}

	if stats.Elapsed > 0 {
		msg += s.Dim.Render(" in " + stats.Elapsed.Round(time.Millisecond).String())
	}
	return msg + "\n"
}

// FormatVerify formats a verification result as a block listing the paths
// that would change.
func (s *Styles) FormatVerify(result *generator.VerifyResult) string {
	if result == nil {
		return ""
	}

	var builder strings.Builder

	switch {
	case result.UpToDate:
		builder.WriteString(s.Success.Render("Up to date: "))
		builder.WriteString(s.Path.Render(result.Output))
		builder.WriteString("\n")
		return builder.String()
	case result.Missing:
		builder.WriteString(s.Failure.Render("Missing: "))
	default:
		builder.WriteString(s.Failure.Render("Stale: "))
	}
	builder.WriteString(s.Path.Render(result.Output))
	builder.WriteString("\n")

	for _, path := range result.Added {
		builder.WriteString("  " + s.Added.Render("+ "+path) + "\n")
	}
	for _, path := range result.Removed {
		builder.WriteString("  " + s.Removed.Render("- "+path) + "\n")
	}
	for _, path := range result.Changed {
		builder.WriteString("  " + s.Changed.Render("~ "+path) + "\n")
	}

	if result.Unparsable != nil {
		builder.WriteString("  " + s.Warning.Render("not a generated file: ") + s.Dim.Render(result.Unparsable.Error()) + "\n")
	}

	builder.WriteString(s.Dim.Render("Run assetpack generate to update it.") + "\n")
	return builder.String()
}

// FormatSummary formats generation statistics as a summary block.
func (s *Styles) FormatSummary(result *generator.Result) string {
	if result == nil {
		return ""
	}

	stats := result.Stats
	var builder strings.Builder

	builder.WriteString("\n")
	builder.WriteString(s.SummaryTitle.Render("Summary"))
	builder.WriteString("\n")
	builder.WriteString(strings.Repeat("-", summaryDividerWidth))
	builder.WriteString("\n")

	builder.WriteString("  Output:            " + s.Path.Render(result.Output) + "\n")
	builder.WriteString("  Package:           " + s.SummaryValue.Render(result.Package) + "\n")
	builder.WriteString("  Encoding:          " + s.SummaryValue.Render(string(result.Encoding)) + "\n")
	builder.WriteString("  Assets:            " + s.SummaryValue.Render(strconv.Itoa(stats.Assets)) + "\n")
	builder.WriteString("  Packed size:       " + s.Size.Render(FormatBytes(stats.Bytes)) + "\n")
	builder.WriteString("  Source size:       " + s.Size.Render(FormatBytes(stats.SourceBytes)) + "\n")

	return builder.String()
}
