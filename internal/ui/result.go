package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Result is a framed outcome box printed when a command finishes.
type Result struct {
	Kind    Kind
	Title   string
	Details map[string]string
	Err     error    // failures only
	Hints   []string // failures only, shown under "Troubleshooting:"
	Width   int
}

// NewSuccessResult describes a completed command and what it produced.
func NewSuccessResult(title string, details map[string]string) *Result {
	return &Result{Kind: KindSuccess, Title: title, Details: details, Width: GetTerminalWidth()}
}

// NewFailureResult describes a failed command with optional hints.
func NewFailureResult(title string, err error, hints []string) *Result {
	return &Result{Kind: KindFailure, Title: title, Err: err, Hints: hints, Width: GetTerminalWidth()}
}

// NewWarningResult describes a command that finished without the expected outcome.
func NewWarningResult(title string, details map[string]string) *Result {
	return &Result{Kind: KindWarning, Title: title, Details: details, Width: GetTerminalWidth()}
}

func (r *Result) SetWidth(width int) *Result {
	r.Width = width
	return r
}

func (r *Result) Render() string {
	width := clampWidth(r.Width)
	body := []string{"", r.Kind.banner(r.Title), ""}

	for _, key := range sortedKeys(r.Details) {
		body = append(body, keyStyle.Render("   "+key+":")+" "+fgStyle.Render(r.Details[key]))
	}
	if len(r.Details) > 0 {
		body = append(body, "")
	}

	if r.Err != nil {
		body = append(body, lipgloss.NewStyle().Foreground(FailColor).Render("   Error: "+r.Err.Error()), "")
	}
	if len(r.Hints) > 0 {
		body = append(body, renderHints(r.Hints, width), "")
	}

	return r.Kind.frame(width).Render(strings.Join(body, "\n"))
}

func (r *Result) String() string { return r.Render() }

func renderHints(hints []string, width int) string {
	lines := make([]string, 0, len(hints)+2)
	lines = append(lines, boldDim.Render("Troubleshooting:"), "")
	for _, h := range hints {
		lines = append(lines, dimStyle.Render("  • "+h))
	}
	return roundedBox(DimColor, max(width-12, 40)).
		Padding(0, 1).
		MarginLeft(3).
		Render(strings.Join(lines, "\n"))
}
