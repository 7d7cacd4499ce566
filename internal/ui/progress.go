package ui

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/lightbridge/internal/logging"
)

// Operation is work run while the wait indicator is shown.
type Operation func(ctx context.Context) (any, error)

// windowTick drives the elapsed-window bar.
const windowTick = 100 * time.Millisecond

type tickMsg time.Time

type doneMsg struct {
	result any
	err    error
}

// WaitModel shows a spinner and, for operations with a known collection
// window (discovery, radio scans), a bar filling over that window.
type WaitModel struct {
	Label   string
	Window  time.Duration
	spinner spinner.Model
	bar     progress.Model
	started time.Time
	now     time.Time
	done    bool
}

// NewWaitModel creates a wait indicator. A zero window shows the spinner only.
func NewWaitModel(label string, window time.Duration) WaitModel {
	barWidth := GetTerminalWidth() - lipgloss.Width(label) - 16
	if barWidth < 20 {
		barWidth = 20
	}
	if barWidth > 40 {
		barWidth = 40
	}
	now := time.Now()
	return WaitModel{
		Label:   label,
		Window:  window,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(spinnerStyle)),
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(barWidth), progress.WithoutPercentage()),
		started: now,
		now:     now,
	}
}

func tick() tea.Cmd {
	return tea.Tick(windowTick, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Init implements tea.Model
func (m WaitModel) Init() tea.Cmd {
	if m.Window > 0 {
		return tea.Batch(m.spinner.Tick, tick())
	}
	return m.spinner.Tick
}

// Update implements tea.Model
func (m WaitModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case tickMsg:
		m.now = time.Time(msg)
		if m.done {
			return m, nil
		}
		return m, tick()
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// Fraction returns how much of the window has elapsed, in [0, 1].
func (m WaitModel) Fraction() float64 {
	if m.Window <= 0 {
		return 0
	}
	f := float64(m.now.Sub(m.started)) / float64(m.Window)
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// View implements tea.Model
func (m WaitModel) View() string {
	if m.done {
		return ""
	}
	line := fmt.Sprintf("  %s %s", m.spinner.View(), fgStyle.Render(m.Label))
	if m.Window > 0 {
		line += "  " + m.bar.ViewAs(m.Fraction())
	}
	return line + "\n"
}

// RunWithSpinner runs op while showing a wait indicator on w. When w is not
// a terminal the operation runs without any indicator.
func RunWithSpinner(ctx context.Context, w io.Writer, label string, window time.Duration, op Operation) (any, error) {
	if !IsTerminal(w) {
		return op(ctx)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(NewWaitModel(label, window), tea.WithOutput(w), tea.WithInput(nil))

	results := make(chan doneMsg, 1)
	go func() {
		result, err := op(ctx)
		msg := doneMsg{result: result, err: err}
		results <- msg
		p.Send(msg)
	}()

	if _, err := p.Run(); err != nil {
		// Interrupted or failed to render: stop the operation and report its outcome.
		logging.Debug("wait indicator stopped: " + err.Error())
		cancel()
	}

	res := <-results
	return res.result, res.err
}
