package ui

import (
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Header is the box printed before a command runs: what is being done, the
// equivalent command line, and the effective parameters.
type Header struct {
	Title   string
	Command string
	Params  map[string]string
	Width   int
}

func NewHeader(title, command string, params map[string]string) *Header {
	return &Header{Title: title, Command: command, Params: params, Width: GetTerminalWidth()}
}

func (h *Header) SetWidth(width int) *Header {
	h.Width = width
	return h
}

func (h *Header) Render() string {
	width := clampWidth(h.Width)
	indent := lipgloss.NewStyle().PaddingLeft(2)

	sections := []string{
		indent.Inherit(boldFg).Render(strings.ToUpper(h.Title)),
		indent.Inherit(dimStyle).Render(h.Command),
	}
	if len(h.Params) > 0 {
		sections = append(sections, divider(max(width-6, 10)), h.renderParams())
	}

	return roundedBox(AccentColor, width-2).Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (h *Header) String() string { return h.Render() }

// renderParams aligns values in a column after the longest key.
func (h *Header) renderParams() string {
	keys := sortedKeys(h.Params)
	pad := 0
	for _, k := range keys {
		pad = max(pad, lipgloss.Width(k))
	}

	lines := make([]string, len(keys))
	for i, k := range keys {
		label := dimStyle.PaddingLeft(2).Width(pad + 4).Render(k + ":")
		lines[i] = label + fgStyle.Render(h.Params[k])
	}
	return strings.Join(lines, "\n")
}

func sortedKeys(m map[string]string) []string {
	return slices.Sorted(maps.Keys(m))
}
