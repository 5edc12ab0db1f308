package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	ColorInk       = lipgloss.Color("#E8E1D3")
	ColorDim       = lipgloss.Color("#6E6A8F")
	ColorAccent    = lipgloss.Color("#C9A66B")
	ColorAccentAlt = lipgloss.Color("#8E8FA8")
	ColorSuccess   = lipgloss.Color("#A3BE8C")
	ColorWarn      = lipgloss.Color("#D98E73")
)

// RenderSwatches draws one colored block per hex color followed by the
// hex codes, e.g. for listing palette presets.
func RenderSwatches(name string, hexes []string) string {
	var blocks strings.Builder
	for _, h := range hexes {
		blocks.WriteString(lipgloss.NewStyle().Background(lipgloss.Color(h)).Render("    "))
	}
	return swatchNameStyle.Render(padRight(name, 10)) + " " + blocks.String() + "  " +
		dimStyle.Render(strings.Join(hexes, ","))
}

var swatchNameStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
