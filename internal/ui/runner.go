package ui

import (
	"context"
	"io"
	"os"
	"time"
)

// RunnerConfig holds configuration for a CLI command execution
type RunnerConfig struct {
	Title   string               // Command title (e.g., "Device Discovery")
	Command string               // Full command (e.g., "lightbridge discover")
	Params  map[string]string    // Parameters to display in header
	Label   string               // Wait label (e.g., "Listening for devices")
	Window  time.Duration        // Collection window; zero shows the spinner only
	Verbose bool                 // Whether to show raw payloads
	Output  io.Writer            // Output writer (default: os.Stdout)
	Hints   func(error) []string // Troubleshooting tips for a failure
}

// Runner orchestrates the UI for a CLI command execution.
// It manages the header → wait → result flow.
type Runner struct {
	config    RunnerConfig
	printer   *Printer
	startTime time.Time
}

// NewRunner creates a new runner for a command
func NewRunner(config RunnerConfig) *Runner {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	if config.Label == "" {
		config.Label = config.Title
	}
	return &Runner{
		config:  config,
		printer: NewPrinter(config.Output),
	}
}

// Printer returns the runner's printer for command-specific output
func (r *Runner) Printer() *Printer {
	return r.printer
}

// Run prints the header, runs the operation under the wait indicator and
// prints a failure box if it fails. The caller renders successful results.
func (r *Runner) Run(ctx context.Context, op Operation) (any, error) {
	r.startTime = time.Now()

	r.printer.PrintHeader(r.config.Title, r.config.Command, r.config.Params)

	result, err := RunWithSpinner(ctx, r.config.Output, r.config.Label, r.config.Window, op)
	if err != nil {
		r.printFailure(err)
	}
	return result, err
}

// Elapsed returns the time since Run started
func (r *Runner) Elapsed() time.Duration {
	return time.Since(r.startTime).Round(time.Millisecond)
}

// Success prints a success box with the elapsed duration added to details
func (r *Runner) Success(title string, details map[string]string) {
	if details == nil {
		details = make(map[string]string)
	}
	details["Duration"] = r.Elapsed().String()

	r.printer.Newline()
	r.printer.PrintSuccess(title, details)
}

// Raw prints a raw payload box in verbose mode
func (r *Runner) Raw(title string, payload []byte) {
	if !r.config.Verbose || len(payload) == 0 {
		return
	}
	r.printer.Newline()
	r.printer.PrintRaw(title, payload)
}

// printFailure prints a failure result with troubleshooting
func (r *Runner) printFailure(err error) {
	var tips []string
	if r.config.Hints != nil {
		tips = r.config.Hints(err)
	}
	if !r.config.Verbose {
		tips = append(tips, "Run with --verbose or --log-level debug for details")
	}

	r.printer.Newline()
	r.printer.PrintError(r.config.Title+" failed", err, tips)
}
