package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Confirm shows warnings in a warning box and asks prompt. Only "y" or
// "yes" (any case) confirms.
func Confirm(in io.Reader, out io.Writer, title string, warnings []string, prompt string) bool {
	body := []string{"", KindWarning.banner(title), ""}
	for _, w := range warnings {
		body = append(body, fgStyle.Render("   • "+w))
	}
	body = append(body, "")

	_, _ = fmt.Fprintf(out, "%s\n\n", KindWarning.frame(GetTerminalWidth()).Render(strings.Join(body, "\n")))
	_, _ = fmt.Fprint(out, lipgloss.NewStyle().Foreground(WarnColor).Bold(true).Render(prompt+" [y/N]: "))

	answer, err := bufio.NewReader(in).ReadString('\n')
	_, _ = fmt.Fprintln(out)
	if err != nil && answer == "" {
		return false
	}

	if a := strings.ToLower(strings.TrimSpace(answer)); a == "y" || a == "yes" {
		return true
	}
	_, _ = fmt.Fprintln(out, dimStyle.Render("  Operation cancelled."))
	return false
}
