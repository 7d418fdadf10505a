package components

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/piggymobile/piggy/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	// Force TrueColor output so ANSI codes are generated in tests
	lipgloss.SetColorProfile(termenv.TrueColor)
}

func TestLayoutRowSumsToTotal(t *testing.T) {
	widths := LayoutRow(100, 3)
	assert.Equal(t, []int{34, 33, 33}, widths)
	assert.Nil(t, LayoutRow(100, 0))
}

func TestCardRowMatchesTallestCard(t *testing.T) {
	theme.SetActive("flexoki-dark")

	shortCard := ContentCard("Short", "Content", 22)
	tallCard := ContentCard("Tall", "Line 1\nLine 2\nLine 3\nLine 4\nLine 5", 22)

	tallLines := len(strings.Split(tallCard, "\n"))
	require.Less(t, len(strings.Split(shortCard, "\n")), tallLines)

	joined := CardRow([]string{tallCard, shortCard})
	assert.Len(t, strings.Split(joined, "\n"), tallLines)
	assert.Equal(t, 44, lipgloss.Width(joined))
}

func TestMetricCardRowWidth(t *testing.T) {
	row := MetricCardRow([]Metric{
		{Label: "Income", Value: "Q7,000.00"},
		{Label: "Spent", Value: "Q170.00", Note: "3 expenses", Color: theme.Active.Red},
	}, 60)

	assert.Equal(t, 60, lipgloss.Width(row))
	assert.Contains(t, row, "Q7,000.00")
	assert.Contains(t, row, "3 expenses")
}

func TestColorForSpend(t *testing.T) {
	th := theme.Active
	assert.Equal(t, th.Green, ColorForSpend(10))
	assert.Equal(t, th.Yellow, ColorForSpend(50))
	assert.Equal(t, th.Orange, ColorForSpend(80))
	assert.Equal(t, th.Orange, ColorForSpend(100))
	assert.Equal(t, th.Red, ColorForSpend(100.5))
}

func TestSpendBarPrintsUnclampedPercent(t *testing.T) {
	bar := SpendBar("Spent", 135.2, 6, 20)
	assert.Contains(t, bar, "135.2%")
	assert.Contains(t, bar, "Spent")
}

func TestSparklineHandlesNegatives(t *testing.T) {
	plain := stripANSI(Sparkline([]float64{-10, 0, 10}, theme.Active.Accent))

	require.Equal(t, 3, utf8.RuneCountInString(plain))
	runes := []rune(plain)
	assert.Equal(t, '▁', runes[0])
	assert.Equal(t, '█', runes[2])
	assert.Empty(t, Sparkline(nil, theme.Active.Accent))
}

func TestHBarChartScalesToPeak(t *testing.T) {
	out := stripANSI(HBarChart([]Bar{
		{Label: "Food", Value: 200, Text: "Q200.00"},
		{Label: "Transport", Value: 100, Text: "Q100.00"},
	}, theme.Active.Accent, 40))

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	food := strings.Count(lines[0], "█")
	transport := strings.Count(lines[1], "█")
	assert.Equal(t, food/2, transport)
	assert.Equal(t, lipgloss.Width(lines[0]), lipgloss.Width(lines[1]))
}

func TestTabIdxByKey(t *testing.T) {
	assert.Equal(t, 0, TabIdxByKey('s'))
	assert.Equal(t, 3, TabIdxByKey('v'))
	assert.Equal(t, -1, TabIdxByKey('z'))
}

func TestTabVisualWidthMatchesRender(t *testing.T) {
	for active := range Tabs {
		want := 0
		for i, tab := range Tabs {
			want += TabVisualWidth(tab, i == active)
		}
		want += len(Tabs) - 1

		bar := RenderTabBar(active, want)
		assert.NotContains(t, bar, "\n", "active=%d", active)
		assert.Equal(t, want, lipgloss.Width(bar), "active=%d", active)
	}
}

func TestStatusBarShowsUserAndAge(t *testing.T) {
	bar := stripANSI(RenderStatusBar(100, "ana@example.com", "12:00", false))
	assert.Contains(t, bar, "ana@example.com · updated 12:00")
	assert.Equal(t, 100, lipgloss.Width(bar))

	bar = stripANSI(RenderStatusBar(100, "", "12:00", true))
	assert.Contains(t, bar, "refreshing")
	assert.NotContains(t, bar, "updated")
}

func stripANSI(s string) string {
	var b strings.Builder
	inEsc := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEsc = true
		case inEsc && (r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'):
			inEsc = false
		case !inEsc:
			b.WriteRune(r)
		}
	}
	return b.String()
}
