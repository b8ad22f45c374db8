package types

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keybindings of the merge controller.
// It lives in pkg/types so the model, panels and views share one copy.
type KeyMap struct {
	// Controller level
	Exit       key.Binding
	Back       key.Binding // Previous panel, or exit from the source path
	NextPanel  key.Binding
	PrevPanel  key.Binding
	Confirm    key.Binding
	Reload     key.Binding
	Merge      key.Binding
	ClearInput key.Binding

	// Panel level
	Up     key.Binding
	Down   key.Binding
	Left   key.Binding
	Right  key.Binding
	Toggle key.Binding
	Top    key.Binding
	Bottom key.Binding
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Exit:       key.NewBinding(key.WithKeys("f10", "ctrl+c"), key.WithHelp("F10", "exit")),
		Back:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		NextPanel:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next panel")),
		PrevPanel:  key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev panel")),
		Confirm:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "next")),
		Reload:     key.NewBinding(key.WithKeys("f1"), key.WithHelp("F1", "reload")),
		Merge:      key.NewBinding(key.WithKeys("f2"), key.WithHelp("F2", "merge")),
		ClearInput: key.NewBinding(key.WithKeys("f3"), key.WithHelp("F3", "clear")),
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:       key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev")),
		Right:      key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next")),
		Toggle:     key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle")),
		Top:        key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "top")),
		Bottom:     key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "bottom")),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Reload, k.Merge, k.NextPanel, k.Back, k.Exit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Reload, k.Merge, k.ClearInput, k.Exit},
		{k.NextPanel, k.PrevPanel, k.Confirm, k.Back},
		{k.Up, k.Down, k.Left, k.Right, k.Toggle, k.Top, k.Bottom},
	}
}
