package screens

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Details key.Binding
	Back    key.Binding
	Pause   key.Binding
	Restart key.Binding
	More    key.Binding
	Less    key.Binding
	Reset   key.Binding
	Export  key.Binding
	Help    key.Binding
	Quit    key.Binding
}

var keys = keyMap{
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Details: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "chapters")),
	Back:    key.NewBinding(key.WithKeys("esc", "backspace"), key.WithHelp("esc", "back")),
	Pause:   key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pause/resume")),
	Restart: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "restart")),
	More:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "more workers")),
	Less:    key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "fewer workers")),
	Reset:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "retry failed")),
	Export:  key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export EPub")),
	Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Pause, k.Restart, k.More, k.Less, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Details, k.Back},
		{k.Pause, k.Restart, k.More, k.Less},
		{k.Reset, k.Export, k.Help, k.Quit},
	}
}
