package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up       key.Binding
	down     key.Binding
	enter    key.Binding
	back     key.Binding
	next     key.Binding
	prev     key.Binding
	nextPage key.Binding
	prevPage key.Binding
	refresh  key.Binding
	accept   key.Binding
	remove   key.Binding
	buy      key.Binding
	comment  key.Binding
	edit     key.Binding
	tab      key.Binding
	submit   key.Binding
	yes      key.Binding
	no       key.Binding
	home     key.Binding
	quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		next:     key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
		prev:     key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "previous field")),
		nextPage: key.NewBinding(key.WithKeys("right", "l", "n"), key.WithHelp("→/n", "next page")),
		prevPage: key.NewBinding(key.WithKeys("left", "h", "p"), key.WithHelp("←/p", "previous page")),
		refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		accept:   key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "accept")),
		remove:   key.NewBinding(key.WithKeys("d", "x"), key.WithHelp("d", "delete")),
		buy:      key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "buy ticket")),
		comment:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "comment")),
		edit:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		tab:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch section")),
		submit:   key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "submit")),
		yes:      key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "yes")),
		no:       key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "no")),
		home:     key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "home")),
		quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.home, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter, k.back},
		{k.nextPage, k.prevPage, k.refresh},
		{k.accept, k.remove, k.buy, k.comment, k.edit},
		{k.home, k.quit},
	}
}
