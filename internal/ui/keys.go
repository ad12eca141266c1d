package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"todo/internal/config"
)

type KeyMap struct {
	Quit        key.Binding
	Back        key.Binding
	Up          key.Binding
	Down        key.Binding
	Add         key.Binding
	Delete      key.Binding
	Toggle      key.Binding
	Confirm     key.Binding
	Cancel      key.Binding
	SwitchField key.Binding
	Yes         key.Binding
	No          key.Binding
}

func NewKeyMap(k config.Keymap) KeyMap {
	return KeyMap{
		Quit:        binding(k.Quit, "quit"),
		Back:        binding(k.Back, "back"),
		Up:          binding(k.Up, "up"),
		Down:        binding(k.Down, "down"),
		Add:         binding(k.Add, "add"),
		Delete:      binding(k.Delete, "delete"),
		Toggle:      binding(k.Toggle, "toggle done"),
		Confirm:     binding(k.Confirm, "select"),
		Cancel:      binding(k.Cancel, "cancel"),
		SwitchField: binding(k.SwitchField, "next field"),
		Yes:         binding(k.Yes, "yes"),
		No:          binding(k.No, "no"),
	}
}

func binding(keys []string, desc string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(helpLabel(keys), desc))
}

func helpLabel(keys []string) string {
	labels := make([]string, 0, len(keys))
	for _, k := range keys {
		switch k {
		case " ":
			labels = append(labels, "space")
		case "up":
			labels = append(labels, "↑")
		case "down":
			labels = append(labels, "↓")
		default:
			labels = append(labels, k)
		}
	}
	return strings.Join(labels, "/")
}

// withHelp returns a copy of b with a different description.
func withHelp(b key.Binding, desc string) key.Binding {
	b.SetHelp(b.Help().Key, desc)
	return b
}
