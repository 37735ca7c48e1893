package tui

import "github.com/charmbracelet/bubbles/key"

type pane int

const (
	paneLog pane = iota
	paneInput
)

type keyMap struct {
	Quit   key.Binding
	Focus  key.Binding
	Submit key.Binding
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:   key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("ctrl+c", "quit")),
		Focus:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch pane")),
		Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
		Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "scroll up")),
		Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "scroll down")),
		Top:    key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("home", "top")),
		Bottom: key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("end", "bottom")),
	}
}

// forPane enables the scroll keys only while the log holds focus, so
// typing j or k into the input does not move the log.
func (k keyMap) forPane(p pane) keyMap {
	scroll := p == paneLog
	k.Up.SetEnabled(scroll)
	k.Down.SetEnabled(scroll)
	k.Top.SetEnabled(scroll)
	k.Bottom.SetEnabled(scroll)
	k.Submit.SetEnabled(!scroll)
	return k
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Up, k.Down, k.Top, k.Bottom, k.Focus, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
