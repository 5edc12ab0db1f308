package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type SummaryRow struct {
	Label string
	Value string
}

func RenderSummary(rows []SummaryRow) string {
	labelWidth := 0
	valueWidth := 0
	for _, row := range rows {
		if len(row.Label) > labelWidth {
			labelWidth = len(row.Label)
		}
		if len(row.Value) > valueWidth {
			valueWidth = len(row.Value)
		}
	}

	hline := strings.Repeat("-", labelWidth+valueWidth+3)
	lines := []string{hline}

	for _, row := range rows {
		label := padRight(row.Label, labelWidth)
		value := padRight(row.Value, valueWidth)
		line := fmt.Sprintf("%s | %s", labelStyle.Render(label), valueStyle.Render(value))
		lines = append(lines, line)
	}

	lines = append(lines, hline)
	return strings.Join(lines, "\n")
}

// FailureRow is one failed file in the batch report.
type FailureRow struct {
	Path    string
	Kind    string
	Message string
}

// RenderFailures lists failed files, one per line, with their error kind.
func RenderFailures(rows []FailureRow) string {
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, fmt.Sprintf("%s %s %s %s",
			failBulletStyle.Render("x"),
			failPathStyle.Render(row.Path),
			failKindStyle.Render("["+row.Kind+"]"),
			dimStyle.Render(row.Message)))
	}
	return strings.Join(lines, "\n")
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

var (
	valueStyle      = lipgloss.NewStyle().Foreground(ColorInk).Bold(true)
	failBulletStyle = lipgloss.NewStyle().Foreground(ColorWarn)
	failPathStyle   = lipgloss.NewStyle().Bold(true)
	failKindStyle   = lipgloss.NewStyle().Foreground(ColorWarn)
)
