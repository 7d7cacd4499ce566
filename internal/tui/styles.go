package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/lightbridge/internal/version"
)

var (
	accent = lipgloss.Color("#7D56F4")
	green  = lipgloss.Color("#43BF6D")
	amber  = lipgloss.Color("#FFA500")
	red    = lipgloss.Color("#FF5555")
	white  = lipgloss.Color("#FFFFFF")
	grey   = lipgloss.Color("#626262")
)

const (
	minWidth  = 72
	maxWidth  = 120
	minHeight = 10
	gutter    = 10 // outer frame, panel margin and card border
)

var (
	titleStyle    = lipgloss.NewStyle().Foreground(accent).Bold(true).Padding(1, 0).MarginBottom(1)
	subtitleStyle = lipgloss.NewStyle().Foreground(grey).Italic(true)
	selectedStyle = lipgloss.NewStyle().Foreground(green).Bold(true)
	warnStyle     = lipgloss.NewStyle().Foreground(amber).Bold(true)
	spinnerStyle  = lipgloss.NewStyle().Foreground(accent)
	labelStyle    = lipgloss.NewStyle().Foreground(grey).Width(12)
	valueStyle    = lipgloss.NewStyle().Foreground(white).Bold(true)
	onStyle       = selectedStyle
	offStyle      = lipgloss.NewStyle().Foreground(grey)
	noticeStyle   = lipgloss.NewStyle().Foreground(green)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 2).
			MarginLeft(2)

	helpStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(accent).
			Padding(1, 3)

	errorStyle = panelStyle.
			Foreground(red).
			Bold(true).
			BorderForeground(red).
			MarginLeft(0)
)

func renderTitle(s string) string    { return titleStyle.Render(s) }
func renderSubtitle(s string) string { return subtitleStyle.Render(s) }
func renderError(s string) string    { return errorStyle.Render("✗ " + s) }

// renderFrame draws a full-screen page: a branding bar, the screen's
// content, and its key help in the footer.
func renderFrame(content, footer string, width, height int) string {
	width = max(width, minWidth)
	height = max(height, minHeight)
	inner := width - 4

	bar := lipgloss.NewStyle().Width(inner).Padding(0, 1).BorderForeground(accent)
	brand := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Foreground(white).Bold(true).Render("LIGHTBRIDGE "+version.Version),
		"  ",
		lipgloss.NewStyle().Foreground(grey).Render("Govee LAN dashboard"),
	)

	page := lipgloss.JoinVertical(lipgloss.Left,
		bar.BorderStyle(lipgloss.Border{Bottom: "─"}).Render(brand),
		lipgloss.NewStyle().Width(inner).Render(content),
		bar.BorderStyle(lipgloss.Border{Top: "─"}).Foreground(grey).Render(footer),
	)

	return lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(accent).
		Width(width - 2).
		Height(height - 2).
		Render(page)
}

// renderOverlay centers content over a shaded background.
func renderOverlay(content string, width, height int) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content,
		lipgloss.WithWhitespaceChars("░"),
		lipgloss.WithWhitespaceForeground(lipgloss.Color("240")))
}

// cardWidth fits a light card or panel inside the frame.
func cardWidth(width int) int {
	return min(max(width, minWidth), maxWidth) - gutter
}
