package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

// keyMap defines global key bindings used across the TUI.
type keyMap struct {
	Quit     key.Binding
	Help     key.Binding
	Next     key.Binding
	Prev     key.Binding
	Activate key.Binding
	Close    key.Binding
	Grow     key.Binding
	Shrink   key.Binding
	Prefer   key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Next: key.NewBinding(
			key.WithKeys("tab", "right", "l", "down", "j"),
			key.WithHelp("tab/→", "next trigger"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab", "left", "h", "up", "k"),
			key.WithHelp("shift+tab/←", "previous trigger"),
		),
		Activate: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "toggle popover"),
		),
		Close: key.NewBinding(
			key.WithKeys("esc", "x"),
			key.WithHelp("esc", "close"),
		),
		Grow: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "more content"),
		),
		Shrink: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "less content"),
		),
		Prefer: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "cycle preferred side"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Activate, k.Close, k.Grow, k.Shrink, k.Prefer, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev, k.Activate, k.Close},
		{k.Grow, k.Shrink, k.Prefer},
		{k.Help, k.Quit},
	}
}
