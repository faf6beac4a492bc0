package pretty

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Table layout constants.
const (
	tablePadding     = 2
	minPathWidth     = 16
	sizeColumnWidth  = 10
	rangeColumnWidth = 17
	minLangWidth     = 8
	maxLangWidth     = 12
	defaultTermWidth = 100
	ellipsis         = "…"
	separatorRune    = "-"
)

// AssetRow is a single row of the asset table.
type AssetRow struct {
	Path     string
	Size     int
	Start    int
	End      int
	Language string
	Flags    []string
}

// TableFormatter renders asset rows as an aligned table sized to the
// terminal width.
type TableFormatter struct {
	styles    *Styles
	termWidth int
}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter(styles *Styles, termWidth int) *TableFormatter {
	if termWidth <= 0 {
		termWidth = defaultTermWidth
	}
	return &TableFormatter{styles: styles, termWidth: termWidth}
}

type columnWidths struct {
	path, size, rng, lang int
}

// FormatAssets renders rows with PATH, SIZE, RANGE and LANG columns. Paths
// longer than the available width are truncated from the left so the file
// name stays visible.
func (t *TableFormatter) FormatAssets(rows []AssetRow) string {
	if len(rows) == 0 {
		return ""
	}

	widths := t.calculateWidths(rows)

	var builder strings.Builder
	builder.WriteString(t.formatHeader(widths))
	builder.WriteString("\n")
	builder.WriteString(t.styles.TableSeparator.Render(strings.Repeat(separatorRune, t.totalWidth(widths))))
	builder.WriteString("\n")

	for _, row := range rows {
		builder.WriteString(t.formatRow(row, widths))
		builder.WriteString("\n")
	}

	return builder.String()
}

func (t *TableFormatter) calculateWidths(rows []AssetRow) columnWidths {
	widths := columnWidths{
		size: sizeColumnWidth,
		rng:  rangeColumnWidth,
		lang: minLangWidth,
	}

	longestPath := len("PATH")
	for _, row := range rows {
		longestPath = max(longestPath, lipgloss.Width(row.Path))
		widths.lang = max(widths.lang, min(lipgloss.Width(row.Language), maxLangWidth))
	}

	available := t.termWidth - widths.size - widths.rng - widths.lang - 3*tablePadding
	widths.path = max(minPathWidth, min(longestPath, available))
	return widths
}

func (t *TableFormatter) totalWidth(w columnWidths) int {
	return w.path + w.size + w.rng + w.lang + 3*tablePadding
}

func (t *TableFormatter) formatHeader(w columnWidths) string {
	gap := strings.Repeat(" ", tablePadding)
	return t.styles.TableHeader.Render(padRight("PATH", w.path)) + gap +
		t.styles.TableHeader.Render(padLeft("SIZE", w.size)) + gap +
		t.styles.TableHeader.Render(padRight("RANGE", w.rng)) + gap +
		t.styles.TableHeader.Render(padRight("LANG", w.lang))
}

func (t *TableFormatter) formatRow(row AssetRow, w columnWidths) string {
	gap := strings.Repeat(" ", tablePadding)

	line := t.styles.Path.Render(padRight(truncateLeft(row.Path, w.path), w.path)) + gap +
		t.styles.Size.Render(padLeft(FormatBytes(row.Size), w.size)) + gap +
		t.styles.Dim.Render(padRight(fmt.Sprintf("[%d, %d)", row.Start, row.End), w.rng)) + gap +
		t.styles.Language.Render(padRight(truncateRight(row.Language, w.lang), w.lang))

	if len(row.Flags) > 0 {
		line += gap + t.styles.Flag.Render(strings.Join(row.Flags, ","))
	}
	return strings.TrimRight(line, " ")
}

func padRight(s string, width int) string {
	if gap := width - lipgloss.Width(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

func padLeft(s string, width int) string {
	if gap := width - lipgloss.Width(s); gap > 0 {
		return strings.Repeat(" ", gap) + s
	}
	return s
}

func truncateLeft(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width || width <= 1 {
		return s
	}
	return ellipsis + string(runes[len(runes)-width+1:])
}

func truncateRight(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width || width <= 1 {
		return s
	}
	return string(runes[:width-1]) + ellipsis
}
