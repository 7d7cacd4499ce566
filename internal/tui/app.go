package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

// Screen represents the current active screen in the application
type Screen string

const (
	ScreenDiscovery Screen = "discovery"
	ScreenLight     Screen = "light"
)

// Options configure the dashboard.
type Options struct {
	// Window is how long each discovery scan listens. Zero means 3s.
	Window time.Duration
	// Nickname maps a device ID to a remembered name, if any.
	Nickname func(deviceID string) string
	// Light, when set, opens its control screen directly.
	Light *Light
}

func (o Options) window() time.Duration {
	if o.Window <= 0 {
		return 3 * time.Second
	}
	return o.Window
}

// AppModel is the top-level coordinator model that manages screen transitions
type AppModel struct {
	ctx  context.Context
	ctrl Controller
	opts Options

	CurrentScreen Screen

	DiscoveryModel DiscoveryModel
	LightModel     LightModel

	Width  int
	Height int
}

// NewAppModel creates the dashboard, starting at discovery unless
// opts.Light names a light.
func NewAppModel(ctx context.Context, ctrl Controller, opts Options) AppModel {
	m := AppModel{ctx: ctx, ctrl: ctrl, opts: opts}
	if opts.Light != nil {
		m.CurrentScreen = ScreenLight
		m.LightModel = NewLightModel(ctx, ctrl, *opts.Light)
	} else {
		m.CurrentScreen = ScreenDiscovery
		m.DiscoveryModel = NewDiscoveryModel(ctx, ctrl, opts)
	}
	return m
}

// Init initializes the application
func (m AppModel) Init() tea.Cmd {
	switch m.CurrentScreen {
	case ScreenDiscovery:
		return m.DiscoveryModel.Init()
	case ScreenLight:
		return m.LightModel.Init()
	}
	return nil
}

// Update handles global keys and routes everything else to the active screen
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		d, _ := m.DiscoveryModel.Update(msg)
		m.DiscoveryModel = d.(DiscoveryModel)
		l, _ := m.LightModel.Update(msg)
		m.LightModel = l.(LightModel)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}

	return m.updateCurrentScreen(msg)
}

func (m AppModel) updateCurrentScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.CurrentScreen {
	case ScreenDiscovery:
		// Quit from the list, but not while typing an address or filter
		if keyMsg, ok := msg.(tea.KeyMsg); ok && m.canQuitDiscovery() {
			if keyMsg.String() == "q" || (keyMsg.String() == "esc" && !m.DiscoveryModel.LightList.IsFiltered()) {
				return m, tea.Quit
			}
		}

		updated, c := m.DiscoveryModel.Update(msg)
		m.DiscoveryModel = updated.(DiscoveryModel)
		cmd = c

		if light := m.DiscoveryModel.SelectedLight(); light != nil {
			m.DiscoveryModel.Selected = false
			return m.openLight(*light)
		}

	case ScreenLight:
		updated, c := m.LightModel.Update(msg)
		m.LightModel = updated.(LightModel)
		cmd = c

		if m.LightModel.IsBackRequested() {
			return m.goBack()
		}
	}

	return m, cmd
}

func (m AppModel) canQuitDiscovery() bool {
	d := m.DiscoveryModel
	return !d.ManualMode && d.LightList.FilterState() != list.Filtering
}

func (m AppModel) openLight(light Light) (tea.Model, tea.Cmd) {
	m.CurrentScreen = ScreenLight
	m.LightModel = NewLightModel(m.ctx, m.ctrl, light)
	m.LightModel.Width = m.Width
	m.LightModel.Height = m.Height
	return m, m.LightModel.Init()
}

// goBack returns from a light to discovery, keeping the previous results
func (m AppModel) goBack() (tea.Model, tea.Cmd) {
	m.CurrentScreen = ScreenDiscovery
	m.LightModel = LightModel{}
	if m.DiscoveryModel.ctrl == nil {
		// Started on a light; no list yet
		m.DiscoveryModel = NewDiscoveryModel(m.ctx, m.ctrl, m.opts)
		if m.Width > 0 {
			d, _ := m.DiscoveryModel.Update(tea.WindowSizeMsg{Width: m.Width, Height: m.Height})
			m.DiscoveryModel = d.(DiscoveryModel)
		}
		return m, m.DiscoveryModel.Init()
	}
	return m, nil
}

// View renders the current screen
func (m AppModel) View() string {
	switch m.CurrentScreen {
	case ScreenDiscovery:
		return m.DiscoveryModel.View()
	case ScreenLight:
		return m.LightModel.View()
	}
	return ""
}

// Run starts the dashboard full-screen and blocks until the user quits or
// ctx is cancelled.
func Run(ctx context.Context, ctrl Controller, opts Options) error {
	p := tea.NewProgram(
		NewAppModel(ctx, ctrl, opts),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
