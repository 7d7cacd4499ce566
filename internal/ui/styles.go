package ui

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Palette
var (
	AccentColor = lipgloss.Color("#7D56F4")
	OKColor     = lipgloss.Color("#43BF6D")
	FailColor   = lipgloss.Color("#FF5555")
	WarnColor   = lipgloss.Color("#FFA500")
	DimColor    = lipgloss.Color("#626262")
	FgColor     = lipgloss.Color("#FFFFFF")
)

const (
	MinTerminalWidth = 60
	MaxContentWidth  = 100
)

var (
	fgStyle      = lipgloss.NewStyle().Foreground(FgColor)
	dimStyle     = lipgloss.NewStyle().Foreground(DimColor)
	boldFg       = fgStyle.Bold(true)
	boldDim      = dimStyle.Bold(true)
	keyStyle     = dimStyle.Width(15)
	spinnerStyle = lipgloss.NewStyle().Foreground(AccentColor)
	cellStyle    = fgStyle.Padding(0, 1)
	headingStyle = lipgloss.NewStyle().Foreground(AccentColor).Bold(true).Padding(0, 1)
)

// Kind selects the color, marker and label of a framed box.
type Kind int

const (
	KindSuccess Kind = iota
	KindFailure
	KindWarning
)

type kindStyle struct {
	color  lipgloss.Color
	marker string
	label  string
}

var kinds = map[Kind]kindStyle{
	KindSuccess: {OKColor, "✓", "SUCCESS"},
	KindFailure: {FailColor, "✗", "FAILED"},
	KindWarning: {WarnColor, "⚠", "WARNING"},
}

// banner is the "✓  SUCCESS  ─  title" line that opens a result box.
func (k Kind) banner(title string) string {
	ks := kinds[k]
	return lipgloss.NewStyle().Foreground(ks.color).Bold(true).
		Render("   " + ks.marker + "  " + ks.label + "  ─  " + title)
}

// frame is the double-bordered box around a result of kind k.
func (k Kind) frame(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(kinds[k].color).
		Width(width-2).
		Padding(0, 2)
}

func roundedBox(color lipgloss.Color, width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Width(width)
}

// GetTerminalWidth returns the stdout width clamped to the supported range.
func GetTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return MinTerminalWidth
	}
	return min(clampWidth(width), MaxContentWidth)
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

func divider(width int) string {
	return spinnerStyle.Render(strings.Repeat("─", max(width, 0)))
}

func clampWidth(width int) int {
	return max(width, MinTerminalWidth)
}
