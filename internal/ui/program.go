package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Printer writes rendered boxes and tables to one output, at one width.
// CLI commands print through a Printer rather than fmt so that tests can
// capture the output.
type Printer struct {
	out   io.Writer
	width int
}

// NewPrinter returns a Printer on w (stdout when nil) sized to the terminal.
func NewPrinter(w io.Writer) *Printer {
	if w == nil {
		w = os.Stdout
	}
	return &Printer{out: w, width: GetTerminalWidth()}
}

func (p *Printer) SetWidth(width int) *Printer {
	p.width = width
	return p
}

func (p *Printer) line(s string) { _, _ = fmt.Fprintln(p.out, s) }

func (p *Printer) Newline() { p.line("") }

func (p *Printer) PrintHeader(title, command string, params map[string]string) {
	p.line(NewHeader(title, command, params).SetWidth(p.width).Render())
	p.Newline()
}

func (p *Printer) PrintSuccess(title string, details map[string]string) {
	p.line(NewSuccessResult(title, details).SetWidth(p.width).Render())
}

func (p *Printer) PrintError(title string, err error, hints []string) {
	p.line(NewFailureResult(title, err, hints).SetWidth(p.width).Render())
}

func (p *Printer) PrintWarning(title string, details map[string]string) {
	p.line(NewWarningResult(title, details).SetWidth(p.width).Render())
}

// PrintTable prints rows, or the empty message when there are none.
func (p *Printer) PrintTable(headers []string, rows [][]string, empty string) {
	p.line(RenderTable(headers, rows, empty))
}

func (p *Printer) PrintRaw(title string, payload []byte) {
	p.line(RenderRawBox(title, payload, p.width))
}

// PrintJSON writes v as indented JSON for --format json.
func (p *Printer) PrintJSON(v any) error {
	enc := json.NewEncoder(p.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
