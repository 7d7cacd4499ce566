// Package ui provides terminal UI components for the lightbridge CLIs.
//
// This package uses Bubble Tea, Bubbles and Lipgloss to render polished
// terminal output. Components follow a "run once and exit" pattern: they
// render output compellingly but don't require user interaction.
//
// # Architecture
//
// The UI package provides these component types:
//
//   - Header: Command banner showing operation name and parameters
//   - WaitModel: Spinner plus an elapsed-window bar while a request runs
//   - Result: Success/failure/warning boxes with styled information
//   - Table: Device and advertisement listings
//   - Raw box: Indented JSON payloads for verbose mode
//
// These components are orchestrated by the Runner, which manages the
// header → wait → result flow for a command.
//
// Example:
//
//	runner := ui.NewRunner(ui.RunnerConfig{
//	    Title:   "Device Discovery",
//	    Command: "lightbridge discover",
//	    Params:  map[string]string{"Window": "3s"},
//	    Window:  3 * time.Second,
//	    Hints:   hints,
//	})
//
//	result, err := runner.Run(ctx, func(ctx context.Context) (any, error) {
//	    return registry.Invoke(ctx, "govee_discover", nil)
//	})
//
// # Logging Integration
//
// This package expects logging to be controlled via the LIGHTBRIDGE_LOG_LEVEL
// environment variable. When unset or empty, zap logging is silent, allowing
// the curated UI output to be displayed cleanly.
//
// # Non-interactive Output
//
// When stdout is not a terminal the wait indicator is skipped entirely, and
// commands run with --format json bypass this package's boxes.
package ui
