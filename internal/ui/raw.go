package ui

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RenderRawBox renders a titled box around a raw payload. JSON payloads are
// indented; anything else is shown as-is.
func RenderRawBox(title string, payload []byte, width int) string {
	width = clampWidth(width)

	content := string(payload)
	var indented bytes.Buffer
	if err := json.Indent(&indented, payload, "", "  "); err == nil {
		content = indented.String()
	}

	return roundedBox(DimColor, width-4).Padding(0, 1).Render(lipgloss.JoinVertical(lipgloss.Left,
		boldDim.Render(title),
		fgStyle.Render(strings.TrimRight(content, "\n")),
	))
}
