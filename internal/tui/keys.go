package tui

import (
	"slices"

	"github.com/charmbracelet/bubbles/key"
)

// keyGroups is a help.KeyMap over fixed groups of bindings. The short view
// lists every group on one line.
type keyGroups [][]key.Binding

func (g keyGroups) ShortHelp() []key.Binding  { return slices.Concat(g...) }
func (g keyGroups) FullHelp() [][]key.Binding { return g }

func bind(help, desc string, keys ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(help, desc))
}

// discoveryKeys covers the three discovery modes: browsing results, waiting
// for a scan, and typing an address.
type discoveryKeys struct {
	up, down, enter, rescan, manual, quit key.Binding
	confirm, cancel                       key.Binding
}

func newDiscoveryKeys() discoveryKeys {
	return discoveryKeys{
		up:      bind("↑/k", "move up", "up", "k"),
		down:    bind("↓/j", "move down", "down", "j"),
		enter:   bind("enter", "control", "enter"),
		rescan:  bind("r", "rescan", "r"),
		manual:  bind("m", "enter address", "m"),
		quit:    bind("q", "quit", "q", "esc"),
		confirm: bind("enter", "confirm", "enter"),
		cancel:  bind("esc", "cancel", "esc"),
	}
}

func (k discoveryKeys) browsing() keyGroups {
	return keyGroups{{k.up, k.down, k.enter}, {k.rescan, k.manual, k.quit}}
}

func (k discoveryKeys) scanning() keyGroups { return keyGroups{{k.manual, k.quit}} }
func (k discoveryKeys) entry() keyGroups    { return keyGroups{{k.confirm, k.cancel}} }

// lightKeys are the light screen bindings plus its value prompt.
type lightKeys struct {
	power, brighter, dimmer, color, white, refresh, help, back key.Binding
	send, cancel                                               key.Binding
}

func newLightKeys() lightKeys {
	return lightKeys{
		power:    bind("space", "power", " ", "p"),
		brighter: bind("+/→", "brighter", "+", "=", "right", "l"),
		dimmer:   bind("-/←", "dimmer", "-", "left", "h"),
		color:    bind("c", "color", "c"),
		white:    bind("w", "white temp", "w"),
		refresh:  bind("r", "refresh", "r"),
		help:     bind("?", "help", "?"),
		back:     bind("esc", "back", "esc", "b"),
		send:     bind("enter", "send", "enter"),
		cancel:   bind("esc", "cancel", "esc"),
	}
}

func (k lightKeys) controls() keyGroups {
	return keyGroups{
		{k.power, k.brighter, k.dimmer},
		{k.color, k.white, k.refresh},
		{k.help, k.back},
	}
}

func (k lightKeys) prompt() keyGroups { return keyGroups{{k.send, k.cancel}} }
