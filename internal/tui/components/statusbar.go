package components

import (
	"strings"

	"github.com/piggymobile/piggy/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// RenderStatusBar renders the bottom status bar: key hints on the left,
// user and data age on the right.
func RenderStatusBar(width int, user, dataAge string, refreshing bool) string {
	t := theme.Active

	style := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface).
		Width(width)

	left := " [a]dd expense  [b]udget  [r]efresh  [?]help  [q]uit"
	var right []string
	if user != "" {
		right = append(right, user)
	}
	switch {
	case refreshing:
		right = append(right, "refreshing…")
	case dataAge != "":
		right = append(right, "updated "+dataAge)
	}
	rightStr := strings.Join(right, " · ") + " "

	padding := max(width-lipgloss.Width(left)-lipgloss.Width(rightStr), 0)
	return style.Render(left + strings.Repeat(" ", padding) + rightStr)
}
