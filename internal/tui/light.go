package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/lightbridge/internal/bridge"
	"github.com/muurk/lightbridge/internal/protocol"
)

// Brightness step for +/- and the default assumed before any status arrives
const (
	brightnessStep    = 10
	defaultBrightness = 50
)

// refreshDelay gives a light time to apply a command before re-reading it
var refreshDelay = 750 * time.Millisecond

type statusMsg struct {
	status *bridge.StatusResponse
	err    error
}

type refreshMsg struct{}

// actionDoneMsg reports a fire-and-forget command. apply updates the shown
// state once the command is sent.
type actionDoneMsg struct {
	notice string
	apply  func(*bridge.StatusResponse)
	err    error
}

type inputMode int

const (
	inputNone inputMode = iota
	inputColor
	inputKelvin
)

// LightModel is the control screen for one light
type LightModel struct {
	ctx  context.Context
	ctrl Controller

	Light   Light
	Status  *bridge.StatusResponse
	Loading bool
	Busy    bool
	Err     error
	Notice  string

	Mode     inputMode
	Input    textinput.Model
	InputErr string

	Width         int
	Height        int
	Spinner       spinner.Model
	BrightnessBar progress.Model
	Help          help.Model
	keys          lightKeys
	ShowHelp      bool
	back          bool
}

// NewLightModel creates the control screen; Init reads the light's state.
func NewLightModel(ctx context.Context, ctrl Controller, light Light) LightModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	input := textinput.New()
	input.CharLimit = 16
	input.Width = 20

	bar := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	bar.Width = 30

	return LightModel{
		ctx:           ctx,
		ctrl:          ctrl,
		Light:         light,
		Loading:       true,
		Input:         input,
		Spinner:       s,
		BrightnessBar: bar,
		Help:          help.New(),
		keys:          newLightKeys(),
	}
}

// Init reads the light's state
func (m LightModel) Init() tea.Cmd {
	return tea.Batch(m.fetchStatus(), m.Spinner.Tick)
}

// Update handles messages and updates the model
func (m LightModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.ShowHelp {
			m.ShowHelp = false
			return m, nil
		}
		if m.Mode != inputNone {
			return m.updateInput(msg)
		}
		return m.updateNormalMode(msg)

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		return m, nil

	case statusMsg:
		m.Loading = false
		if msg.err != nil {
			m.Err = msg.err
			return m, nil
		}
		m.Err = nil
		m.Status = msg.status
		return m, nil

	case refreshMsg:
		m.Loading = true
		return m, tea.Batch(m.fetchStatus(), m.Spinner.Tick)

	case actionDoneMsg:
		m.Busy = false
		if msg.err != nil {
			m.Err = msg.err
			m.Notice = ""
			return m, nil
		}
		m.Err = nil
		m.Notice = msg.notice
		if msg.apply != nil {
			if m.Status == nil {
				m.Status = &bridge.StatusResponse{Brightness: defaultBrightness}
			}
			next := *m.Status
			msg.apply(&next)
			m.Status = &next
		}
		return m, tea.Tick(refreshDelay, func(time.Time) tea.Msg { return refreshMsg{} })

	case spinner.TickMsg:
		if !m.Loading && !m.Busy {
			return m, nil
		}
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// updateNormalMode handles control keys
func (m LightModel) updateNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		m.back = true
		return m, nil

	case key.Matches(msg, m.keys.help):
		m.ShowHelp = true
		return m, nil

	case key.Matches(msg, m.keys.refresh):
		m.Loading = true
		return m, tea.Batch(m.fetchStatus(), m.Spinner.Tick)

	case key.Matches(msg, m.keys.power):
		on := !m.isOn()
		return m.act(func(ctx context.Context) error {
			return m.ctrl.Turn(ctx, m.Light.Host, m.Light.Port, on)
		}, "Turned "+onOff(on), func(s *bridge.StatusResponse) { s.On = on })

	case key.Matches(msg, m.keys.brighter):
		return m.stepBrightness(brightnessStep)

	case key.Matches(msg, m.keys.dimmer):
		return m.stepBrightness(-brightnessStep)

	case key.Matches(msg, m.keys.color):
		return m.startInput(inputColor, "#ff8800 or 255,136,0"), textinput.Blink

	case key.Matches(msg, m.keys.white):
		return m.startInput(inputKelvin, "2000-9000"), textinput.Blink
	}
	return m, nil
}

func (m LightModel) stepBrightness(delta int) (tea.Model, tea.Cmd) {
	value := m.brightness() + delta
	if value < 1 {
		value = 1
	}
	if value > 100 {
		value = 100
	}
	return m.act(func(ctx context.Context) error {
		return m.ctrl.Brightness(ctx, m.Light.Host, m.Light.Port, value)
	}, fmt.Sprintf("Brightness %d%%", value), func(s *bridge.StatusResponse) { s.Brightness = value })
}

func (m LightModel) startInput(mode inputMode, placeholder string) LightModel {
	m.Mode = mode
	m.InputErr = ""
	m.Input.Placeholder = placeholder
	m.Input.SetValue("")
	m.Input.Focus()
	return m
}

// updateInput handles the color and white temperature prompts
func (m LightModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.cancel):
		m.Mode = inputNone
		m.Input.Blur()
		return m, nil

	case key.Matches(msg, m.keys.send):
		value := strings.TrimSpace(m.Input.Value())
		switch m.Mode {
		case inputColor:
			rgb, err := protocol.ParseRGB(value)
			if err != nil {
				m.InputErr = err.Error()
				return m, nil
			}
			m.Mode = inputNone
			m.Input.Blur()
			return m.act(func(ctx context.Context) error {
				return m.ctrl.Color(ctx, m.Light.Host, m.Light.Port, rgb, 0)
			}, "Color "+rgb.Hex(), func(s *bridge.StatusResponse) {
				c := rgb
				s.Color = &c
				s.ColorTemKelvin = nil
			})

		case inputKelvin:
			kelvin, err := strconv.Atoi(strings.TrimSuffix(strings.ToUpper(value), "K"))
			if err != nil || kelvin < 2000 || kelvin > 9000 {
				m.InputErr = "color temperature must be 2000-9000"
				return m, nil
			}
			m.Mode = inputNone
			m.Input.Blur()
			return m.act(func(ctx context.Context) error {
				return m.ctrl.Color(ctx, m.Light.Host, m.Light.Port, protocol.RGB{}, kelvin)
			}, fmt.Sprintf("White %dK", kelvin), func(s *bridge.StatusResponse) {
				k := kelvin
				s.ColorTemKelvin = &k
			})
		}
	}

	var cmd tea.Cmd
	m.Input, cmd = m.Input.Update(msg)
	return m, cmd
}

// act runs a command in the background; one command is in flight at a time
func (m LightModel) act(run func(ctx context.Context) error, notice string, apply func(*bridge.StatusResponse)) (tea.Model, tea.Cmd) {
	if m.Busy {
		return m, nil
	}
	m.Busy = true
	m.Notice = ""
	ctx := m.ctx
	return m, tea.Batch(func() tea.Msg {
		if err := run(ctx); err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{notice: notice, apply: apply}
	}, m.Spinner.Tick)
}

func (m LightModel) fetchStatus() tea.Cmd {
	ctx, ctrl, light := m.ctx, m.ctrl, m.Light
	return func() tea.Msg {
		status, err := ctrl.Status(ctx, light.Host, light.Port)
		return statusMsg{status: status, err: err}
	}
}

func (m LightModel) isOn() bool {
	return m.Status != nil && m.Status.On
}

func (m LightModel) brightness() int {
	if m.Status == nil {
		return defaultBrightness
	}
	return m.Status.Brightness
}

// IsBackRequested reports whether the user asked to leave the screen
func (m LightModel) IsBackRequested() bool {
	return m.back
}

// View renders the light screen
func (m LightModel) View() string {
	if m.ShowHelp {
		return renderOverlay(m.renderHelp(), m.Width, m.Height)
	}

	var helpText string
	if m.Mode != inputNone {
		helpText = m.Help.View(m.keys.prompt())
	} else {
		helpText = m.Help.View(m.keys.controls())
	}
	return renderFrame(m.renderContent(), helpText, m.Width, m.Height)
}

func (m LightModel) renderContent() string {
	var b strings.Builder
	b.WriteString(renderTitle("  " + m.Light.Name()))
	b.WriteString("\n")
	b.WriteString(panelStyle.Width(cardWidth(m.Width)).Render(m.renderState()))
	b.WriteString("\n\n")

	switch {
	case m.Mode != inputNone:
		label := "Color:"
		if m.Mode == inputKelvin {
			label = "White (K):"
		}
		b.WriteString("  " + label + " " + m.Input.View() + "\n")
		if m.InputErr != "" {
			b.WriteString("  " + warnStyle.Render(m.InputErr) + "\n")
		}
	case m.Busy:
		b.WriteString("  " + m.Spinner.View() + " Sending...\n")
	case m.Loading:
		b.WriteString("  " + m.Spinner.View() + " Reading state...\n")
	case m.Notice != "":
		b.WriteString("  " + noticeStyle.Render("✓ Sent: "+m.Notice) + "\n")
	}

	if m.Err != nil {
		b.WriteString("\n")
		b.WriteString(renderError(m.Err.Error()))
		b.WriteString("\n")
		if hint := bridge.GetTroubleshootingHint(m.Err); hint != "" {
			b.WriteString(hint)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m LightModel) renderState() string {
	row := func(label, value string) string {
		return labelStyle.Render(label) + value + "\n"
	}

	var b strings.Builder
	b.WriteString(row("Address", address(m.Light)))
	b.WriteString(row("Model", orUnknown(m.Light.Model)))
	b.WriteString(row("Device ID", orUnknown(m.Light.DeviceID)))
	b.WriteString("\n")

	if m.Status == nil {
		b.WriteString(row("State", offStyle.Render("unknown")))
		return strings.TrimSuffix(b.String(), "\n")
	}

	power := offStyle.Render("○ off")
	if m.Status.On {
		power = onStyle.Render("● on")
	}
	b.WriteString(row("Power", power))
	b.WriteString(row("Brightness",
		m.BrightnessBar.ViewAs(float64(m.Status.Brightness)/100)+valueStyle.Render(fmt.Sprintf(" %d%%", m.Status.Brightness))))

	switch {
	case m.Status.ColorTemKelvin != nil && *m.Status.ColorTemKelvin > 0:
		b.WriteString(row("White", valueStyle.Render(fmt.Sprintf("%dK", *m.Status.ColorTemKelvin))))
	case m.Status.Color != nil:
		hex := m.Status.Color.Hex()
		swatch := lipgloss.NewStyle().Background(lipgloss.Color(hex)).Render("    ")
		b.WriteString(row("Color", swatch+" "+valueStyle.Render(hex)))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func (m LightModel) renderHelp() string {
	var b strings.Builder
	b.WriteString(renderTitle("Light controls"))
	b.WriteString("\n")
	for _, group := range m.keys.controls() {
		for _, k := range group {
			h := k.Help()
			b.WriteString(fmt.Sprintf("  %-8s %s\n", h.Key, h.Desc))
		}
	}
	b.WriteString("\n")
	b.WriteString(renderSubtitle("Commands are fire-and-forget; the state is re-read after each one."))
	b.WriteString("\n\n")
	b.WriteString(renderSubtitle("Press any key to close"))
	return helpStyle.Render(b.String())
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}
