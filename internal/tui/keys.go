package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Toggle    key.Binding
	Delete    key.Binding
	Undo      key.Binding
	Add       key.Binding
	Edit      key.Binding
	More      key.Binding
	Less      key.Binding
	MoveUp    key.Binding
	MoveDown  key.Binding
	Translate key.Binding
	Quit      key.Binding
}

var keys = keyMap{
	Toggle:    key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "bought")),
	Delete:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
	Undo:      key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "undo")),
	Add:       key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
	Edit:      key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
	More:      key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "qty up")),
	Less:      key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "qty down")),
	MoveUp:    key.NewBinding(key.WithKeys("K", "shift+up"), key.WithHelp("K", "move up")),
	MoveDown:  key.NewBinding(key.WithKeys("J", "shift+down"), key.WithHelp("J", "move down")),
	Translate: key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "translate")),
	Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

func (k keyMap) short() []key.Binding {
	return []key.Binding{k.Toggle, k.Add, k.Edit, k.Delete, k.Undo}
}

func (k keyMap) full() []key.Binding {
	return []key.Binding{
		k.Toggle, k.Add, k.Edit, k.Delete, k.Undo,
		k.More, k.Less, k.MoveUp, k.MoveDown, k.Translate,
	}
}
