package pretty_test

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/assetpack/internal/ui/pretty"
)

func TestTableFormatter_FormatAssets(t *testing.T) {
	formatter := pretty.NewTableFormatter(pretty.NewStyles(false), 100)

	out := formatter.FormatAssets([]pretty.AssetRow{
		{Path: "/css/app.css", Size: 6, Start: 0, End: 6, Language: "css"},
		{Path: "/index.html", Size: 13, Start: 6, End: 19, Language: "html", Flags: []string{"vendored"}},
	})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "PATH"))
	assert.Contains(t, lines[0], "SIZE")
	assert.Contains(t, lines[0], "RANGE")
	assert.Contains(t, lines[0], "LANG")
	assert.True(t, strings.HasPrefix(lines[1], "---"))
	assert.Contains(t, lines[2], "/css/app.css")
	assert.Contains(t, lines[2], "[0, 6)")
	assert.Contains(t, lines[3], "[6, 19)")
	assert.Contains(t, lines[3], "vendored")
}

func TestTableFormatter_TruncatesLongPaths(t *testing.T) {
	formatter := pretty.NewTableFormatter(pretty.NewStyles(false), 60)

	long := "/" + strings.Repeat("deeply/nested/", 10) + "app.js"
	out := formatter.FormatAssets([]pretty.AssetRow{{Path: long, Size: 1, End: 1, Language: "javascript"}})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[2], "…")
	assert.Contains(t, lines[2], "app.js")
	assert.LessOrEqual(t, lipgloss.Width(lines[1]), 60)
}

func TestTableFormatter_Empty(t *testing.T) {
	formatter := pretty.NewTableFormatter(pretty.NewStyles(false), 0)
	assert.Empty(t, formatter.FormatAssets(nil))
}
