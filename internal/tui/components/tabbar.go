package components

import (
	"strings"

	"github.com/piggymobile/piggy/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Tab represents a single tab in the tab bar.
type Tab struct {
	Name   string
	Key    rune
	KeyPos int // position of the shortcut letter in the name (-1 if not in name)
}

// Tabs defines all available tabs.
var Tabs = []Tab{
	{Name: "Status", Key: 's', KeyPos: 0},
	{Name: "Expenses", Key: 'e', KeyPos: 0},
	{Name: "History", Key: 'h', KeyPos: 0},
	{Name: "Savings", Key: 'v', KeyPos: 2},
	{Name: "Tips", Key: 't', KeyPos: 0},
}

const tabPadding = 1

// TabVisualWidth returns the rendered width of a tab, for mouse hit tests.
func TabVisualWidth(tab Tab, active bool) int {
	w := lipgloss.Width(tab.Name) + 2*tabPadding
	if !active {
		w += 2 // brackets around the shortcut key
		if tab.KeyPos < 0 {
			w++ // key appended after the name
		}
	}
	return w
}

// RenderTabBar renders the tab bar with the given active index.
func RenderTabBar(activeIdx int, width int) string {
	t := theme.Active

	activeStyle := lipgloss.NewStyle().
		Foreground(t.Accent).
		Background(t.SurfaceHover).
		Bold(true).
		Padding(0, tabPadding)

	inactiveStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	keyStyle := lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	dimKeyStyle := lipgloss.NewStyle().Foreground(t.TextDim)
	pad := strings.Repeat(" ", tabPadding)

	parts := make([]string, 0, len(Tabs))
	for i, tab := range Tabs {
		if i == activeIdx {
			parts = append(parts, activeStyle.Render(tab.Name))
			continue
		}

		var rendered string
		if tab.KeyPos >= 0 && tab.KeyPos < len(tab.Name) {
			rendered = inactiveStyle.Render(tab.Name[:tab.KeyPos]) +
				dimKeyStyle.Render("[") + keyStyle.Render(string(tab.Name[tab.KeyPos])) + dimKeyStyle.Render("]") +
				inactiveStyle.Render(tab.Name[tab.KeyPos+1:])
		} else {
			rendered = inactiveStyle.Render(tab.Name) +
				dimKeyStyle.Render("[") + keyStyle.Render(string(tab.Key)) + dimKeyStyle.Render("]")
		}
		parts = append(parts, pad+rendered+pad)
	}

	row := strings.Join(parts, " ")
	return lipgloss.NewStyle().Width(width).Render(row)
}

// TabIdxByKey returns the tab index for a given key press, or -1.
func TabIdxByKey(key rune) int {
	for i, tab := range Tabs {
		if tab.Key == key {
			return i
		}
	}
	return -1
}
