package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up      key.Binding
	down    key.Binding
	toggle  key.Binding
	add     key.Binding
	del     key.Binding
	submit  key.Binding
	back    key.Binding
	next    key.Binding
	prev    key.Binding
	refresh key.Binding
	quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		toggle:  key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle")),
		add:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		del:     key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		submit:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
		back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		next:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next view")),
		prev:    key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous view")),
		refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.next, k.refresh, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.toggle},
		{k.add, k.del, k.submit, k.back},
		{k.next, k.prev, k.refresh, k.quit},
	}
}
