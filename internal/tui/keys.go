package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the grid key bindings.
type KeyMap struct {
	Up    key.Binding
	Down  key.Binding
	Left  key.Binding
	Right key.Binding

	ExtendUp    key.Binding
	ExtendDown  key.Binding
	ExtendLeft  key.Binding
	ExtendRight key.Binding

	Edit       key.Binding
	Clear      key.Binding
	Commit     key.Binding
	Cancel     key.Binding
	Next       key.Binding
	Prev       key.Binding
	FillRange  key.Binding
	Copy       key.Binding
	Batch      key.Binding
	BatchSave  key.Binding
	BatchDrop  key.Binding
	SwitchMode key.Binding
	Save       key.Binding
	Help       key.Binding
	Quit       key.Binding
	ForceQuit  key.Binding
}

// DefaultKeyMap returns the default grid bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:    key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "up")),
		Down:  key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "down")),
		Left:  key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "left")),
		Right: key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "right")),

		ExtendUp:    key.NewBinding(key.WithKeys("shift+up"), key.WithHelp("shift+↑", "extend selection up")),
		ExtendDown:  key.NewBinding(key.WithKeys("shift+down"), key.WithHelp("shift+↓", "extend selection down")),
		ExtendLeft:  key.NewBinding(key.WithKeys("shift+left"), key.WithHelp("shift+←", "extend selection left")),
		ExtendRight: key.NewBinding(key.WithKeys("shift+right"), key.WithHelp("shift+→", "extend selection right")),

		Edit:       key.NewBinding(key.WithKeys("enter", "f2"), key.WithHelp("enter/f2", "edit")),
		Clear:      key.NewBinding(key.WithKeys("backspace", "delete"), key.WithHelp("del", "clear and edit")),
		Commit:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "commit")),
		Cancel:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Next:       key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next cell")),
		Prev:       key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous cell")),
		FillRange:  key.NewBinding(key.WithKeys("alt+enter"), key.WithHelp("alt+enter", "fill selection")),
		Copy:       key.NewBinding(key.WithKeys("ctrl+y"), key.WithHelp("ctrl+y", "copy cell")),
		Batch:      key.NewBinding(key.WithKeys("ctrl+b"), key.WithHelp("ctrl+b", "toggle batch")),
		BatchSave:  key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "commit batch")),
		BatchDrop:  key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("ctrl+x", "discard batch")),
		SwitchMode: key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "switch mode")),
		Save:       key.NewBinding(key.WithKeys("ctrl+w"), key.WithHelp("ctrl+w", "write file")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:       key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		ForceQuit:  key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Edit, k.Next, k.Batch, k.Save, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right, k.ExtendUp, k.ExtendDown, k.ExtendLeft, k.ExtendRight},
		{k.Edit, k.Clear, k.Commit, k.Cancel, k.Next, k.Prev, k.FillRange, k.Copy},
		{k.Batch, k.BatchSave, k.BatchDrop, k.SwitchMode, k.Save, k.Help, k.Quit},
	}
}

// editingKeys is the help shown while an editor is open.
type editingKeys struct{ KeyMap }

func (k editingKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Commit, k.Cancel, k.Next, k.Prev, k.FillRange}
}

func (k editingKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// HelpSection is a titled group of bindings.
type HelpSection struct {
	Title    string
	Bindings []key.Binding
}

// Sections groups the bindings for the key reference.
func (k KeyMap) Sections() []HelpSection {
	full := k.FullHelp()
	return []HelpSection{
		{Title: "Navigation", Bindings: full[0]},
		{Title: "Editing", Bindings: full[1]},
		{Title: "Session", Bindings: full[2]},
	}
}
