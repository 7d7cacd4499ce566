package tui

import (
	"context"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/lightbridge/internal/bridge"
)

// Light is a light the dashboard can control.
type Light struct {
	Host     string
	Port     int // 0 selects the bridge's control port
	Model    string
	DeviceID string
	Nickname string
}

// Name returns the nickname, falling back to model and address.
func (l Light) Name() string {
	if l.Nickname != "" {
		return l.Nickname
	}
	if l.Model != "" {
		return l.Model + " @ " + l.Host
	}
	return l.Host
}

type scanCompleteMsg struct {
	scan    int
	devices []bridge.DiscoveredDevice
	err     error
}

// lightItem wraps a Light for use with bubbles/list
type lightItem struct {
	light Light
}

func (i lightItem) FilterValue() string {
	return strings.Join([]string{i.light.Nickname, i.light.Model, i.light.Host, i.light.DeviceID}, " ")
}

func (i lightItem) Title() string { return i.light.Name() }

func (i lightItem) Description() string {
	return fmt.Sprintf("%s • %s", i.light.Host, orUnknown(i.light.DeviceID))
}

// lightDelegate renders each light as a small card
type lightDelegate struct {
	width int
}

func (d lightDelegate) Height() int { return 6 }

func (d lightDelegate) Spacing() int { return 0 }

func (d lightDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d lightDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	li, ok := item.(lightItem)
	if !ok {
		return
	}
	light := li.light
	selected := index == m.Index()

	var content strings.Builder
	if selected {
		content.WriteString(selectedStyle.Render("→ " + light.Name()))
	} else {
		content.WriteString("  " + light.Name())
	}
	content.WriteString("\n")
	content.WriteString(fmt.Sprintf("  Address:   %s\n", address(light)))
	content.WriteString(fmt.Sprintf("  Model:     %s\n", orUnknown(light.Model)))
	content.WriteString(fmt.Sprintf("  Device ID: %s", orUnknown(light.DeviceID)))

	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(0, 1).
		MarginLeft(2).
		Width(cardWidth(d.width))
	if selected {
		card = card.BorderForeground(green)
	}

	fmt.Fprint(w, card.Render(content.String()))
}

// DiscoveryModel is the light discovery screen
type DiscoveryModel struct {
	ctx      context.Context
	ctrl     Controller
	window   time.Duration
	nickname func(deviceID string) string
	scan     int

	Scanning  bool
	LightList list.Model
	Selected  bool
	Err       error

	ManualMode bool
	HostInput  textinput.Model
	InputErr   string

	Width         int
	Height        int
	Spinner       spinner.Model
	ProgressBar   progress.Model
	ScanStartTime time.Time
	Help          help.Model
	keys          discoveryKeys
}

// NewDiscoveryModel creates the discovery screen. The first scan starts
// from Init.
func NewDiscoveryModel(ctx context.Context, ctrl Controller, opts Options) DiscoveryModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	hostInput := textinput.New()
	hostInput.Placeholder = "192.168.1.42"
	hostInput.CharLimit = 64
	hostInput.Width = 30

	bar := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	bar.Width = 40

	lightList := list.New([]list.Item{}, lightDelegate{width: minWidth}, 0, 0)
	lightList.Title = "Lights"
	lightList.SetShowStatusBar(false)
	lightList.SetShowHelp(false)
	lightList.SetFilteringEnabled(true)
	lightList.Styles.Title = titleStyle

	return DiscoveryModel{
		ctx:           ctx,
		ctrl:          ctrl,
		window:        opts.window(),
		nickname:      opts.Nickname,
		scan:          1,
		Scanning:      true,
		ScanStartTime: time.Now(),
		LightList:     lightList,
		HostInput:     hostInput,
		Spinner:       s,
		ProgressBar:   bar,
		Help:          help.New(),
		keys:          newDiscoveryKeys(),
	}
}

// Init starts the first scan
func (m DiscoveryModel) Init() tea.Cmd {
	return tea.Batch(m.scanLights(), m.Spinner.Tick)
}

// Update handles messages and updates the model
func (m DiscoveryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.ManualMode {
			return m.updateManualMode(msg)
		}
		if m.Scanning {
			if key.Matches(msg, m.keys.manual) {
				return m.enterManualMode(), textinput.Blink
			}
			return m, nil
		}
		return m.updateNormalMode(msg)

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.LightList.SetDelegate(lightDelegate{width: msg.Width})
		m.LightList.SetWidth(msg.Width - 4)
		m.LightList.SetHeight(msg.Height - 8)
		return m, nil

	case scanCompleteMsg:
		if msg.scan != m.scan {
			return m, nil
		}
		m.Scanning = false
		m.Err = msg.err
		items := m.manualItems()
		for _, d := range msg.devices {
			items = append(items, lightItem{light: m.lightFrom(d)})
		}
		cmd = m.LightList.SetItems(items)
		return m, cmd

	case spinner.TickMsg:
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd
	}

	if !m.ManualMode && !m.Scanning {
		m.LightList, cmd = m.LightList.Update(msg)
	}
	return m, cmd
}

// updateNormalMode handles keyboard input on the light list
func (m DiscoveryModel) updateNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// While filtering, every key belongs to the list
	if m.LightList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.LightList, cmd = m.LightList.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.enter):
		if m.LightList.SelectedItem() != nil {
			m.Selected = true
		}
		return m, nil

	case key.Matches(msg, m.keys.rescan):
		m.Err = nil
		m.Scanning = true
		m.ScanStartTime = time.Now()
		m.scan++
		return m, tea.Batch(m.scanLights(), m.Spinner.Tick)

	case key.Matches(msg, m.keys.manual):
		return m.enterManualMode(), textinput.Blink
	}

	var cmd tea.Cmd
	m.LightList, cmd = m.LightList.Update(msg)
	return m, cmd
}

func (m DiscoveryModel) enterManualMode() DiscoveryModel {
	m.ManualMode = true
	m.InputErr = ""
	m.HostInput.SetValue("")
	m.HostInput.Focus()
	return m
}

// updateManualMode handles keyboard input in manual address entry mode
func (m DiscoveryModel) updateManualMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch {
	case key.Matches(msg, m.keys.cancel):
		m.ManualMode = false
		m.HostInput.Blur()
		return m, nil

	case key.Matches(msg, m.keys.confirm):
		light, err := parseManualLight(m.HostInput.Value())
		if err != nil {
			m.InputErr = err.Error()
			return m, nil
		}
		items := append([]list.Item{lightItem{light: light}}, m.LightList.Items()...)
		cmd = m.LightList.SetItems(items)
		m.LightList.Select(0)
		m.ManualMode = false
		m.HostInput.Blur()
		return m, cmd
	}

	m.HostInput, cmd = m.HostInput.Update(msg)
	return m, cmd
}

// parseManualLight accepts host or host:port.
func parseManualLight(value string) (Light, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Light{}, fmt.Errorf("enter an IP address or hostname")
	}
	if host, port, err := net.SplitHostPort(value); err == nil {
		p, perr := net.LookupPort("udp", port)
		if perr != nil || p == 0 {
			return Light{}, fmt.Errorf("invalid port %q", port)
		}
		return Light{Host: host, Port: p, Model: "manual"}, nil
	}
	if strings.ContainsAny(value, " /") {
		return Light{}, fmt.Errorf("invalid address %q", value)
	}
	return Light{Host: value, Model: "manual"}, nil
}

// manualItems keeps entered addresses across rescans
func (m DiscoveryModel) manualItems() []list.Item {
	var items []list.Item
	for _, it := range m.LightList.Items() {
		if li, ok := it.(lightItem); ok && li.light.Model == "manual" {
			items = append(items, it)
		}
	}
	return items
}

func (m DiscoveryModel) lightFrom(d bridge.DiscoveredDevice) Light {
	l := Light{Host: d.IP, Port: d.Port, Model: d.Model, DeviceID: d.DeviceID}
	if m.nickname != nil && d.DeviceID != "" {
		l.Nickname = m.nickname(d.DeviceID)
	}
	return l
}

// scanLights runs the current scan; results from superseded scans are dropped
func (m DiscoveryModel) scanLights() tea.Cmd {
	scan := m.scan
	ctx, ctrl, window := m.ctx, m.ctrl, m.window
	return func() tea.Msg {
		devices, err := ctrl.Discover(ctx, window)
		return scanCompleteMsg{scan: scan, devices: devices, err: err}
	}
}

// View renders the discovery screen
func (m DiscoveryModel) View() string {
	width := m.Width
	if width == 0 {
		width = minWidth
	}

	var content, helpText string
	switch {
	case m.ManualMode:
		content = m.renderManualEntry()
		helpText = m.Help.View(m.keys.entry())
	case m.Scanning:
		content = m.renderScanning(width)
		helpText = m.Help.View(m.keys.scanning())
	default:
		content = m.renderResults()
		helpText = m.Help.View(m.keys.browsing())
	}

	return renderFrame(content, helpText, m.Width, m.Height)
}

func (m DiscoveryModel) renderScanning(width int) string {
	elapsed := time.Since(m.ScanStartTime)
	fraction := 1.0
	if m.window > 0 {
		fraction = min(1, float64(elapsed)/float64(m.window))
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		"",
		titleStyle.Render(m.Spinner.View()+" SEARCHING FOR LIGHTS"),
		subtitleStyle.Render("Listening for Govee lights with LAN Control enabled..."),
		"",
		m.ProgressBar.ViewAs(fraction),
		"",
		subtitleStyle.Render(fmt.Sprintf("%.1fs / %s", elapsed.Seconds(), m.window)),
		"",
	)
	return lipgloss.Place(width, 0, lipgloss.Center, lipgloss.Top, content)
}

func (m DiscoveryModel) renderResults() string {
	var b strings.Builder
	b.WriteString("\n")

	if m.Err != nil {
		b.WriteString(renderError(fmt.Sprintf("Scan failed: %v", m.Err)))
		b.WriteString("\n\n")
		b.WriteString(bridge.GetTroubleshootingHint(m.Err))
		b.WriteString("\n")
	}

	if len(m.LightList.Items()) == 0 {
		if m.Err == nil {
			b.WriteString("  ")
			b.WriteString(warnStyle.Render("⚠ No lights answered"))
			b.WriteString("\n\n")
			b.WriteString("  Troubleshooting:\n")
			b.WriteString("    • Enable \"LAN Control\" for the light in the Govee Home app\n")
			b.WriteString("    • Make sure this computer is on the same network as the light\n")
			b.WriteString("    • Press 'r' to rescan or 'm' to enter an address\n")
		}
		return b.String()
	}

	b.WriteString(m.LightList.View())
	return b.String()
}

func (m DiscoveryModel) renderManualEntry() string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(renderSubtitle("  Enter a light's address (host or host:port)"))
	b.WriteString("\n\n")
	b.WriteString("  Address: ")
	b.WriteString(m.HostInput.View())
	b.WriteString("\n")
	if m.InputErr != "" {
		b.WriteString("\n  ")
		b.WriteString(warnStyle.Render(m.InputErr))
		b.WriteString("\n")
	}
	return b.String()
}

// SelectedLight returns the chosen light, if any
func (m DiscoveryModel) SelectedLight() *Light {
	if !m.Selected {
		return nil
	}
	if it, ok := m.LightList.SelectedItem().(lightItem); ok {
		l := it.light
		return &l
	}
	return nil
}

func address(l Light) string {
	if l.Port == 0 {
		return l.Host
	}
	return net.JoinHostPort(l.Host, fmt.Sprint(l.Port))
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
