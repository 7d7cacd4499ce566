package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// RenderTable renders rows under headers in a rounded, primary-colored table.
// An empty row set renders a single muted line instead.
func RenderTable(headers []string, rows [][]string, empty string) string {
	if len(rows) == 0 {
		return dimStyle.Render("  " + empty)
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(AccentColor)).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headingStyle
			}
			return cellStyle
		}).
		Headers(headers...).
		Rows(rows...)

	return t.Render()
}

// PowerMarker returns a colored on/off glyph.
func PowerMarker(on bool) string {
	if on {
		return lipgloss.NewStyle().Foreground(OKColor).Bold(true).Render("● on")
	}
	return dimStyle.Render("○ off")
}
