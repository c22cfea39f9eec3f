package tui

import (
	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
)

// keyMap represents key map data used by this package.
type keyMap struct {
	quit       key.Binding
	switchView key.Binding
	toggleHelp key.Binding
	cancel     key.Binding

	openPicker  key.Binding
	typePath    key.Binding
	destination key.Binding
	submit      key.Binding
	clearFile   key.Binding
	copySummary key.Binding

	reload      key.Binding
	moveLeft    key.Binding
	moveRight   key.Binding
	moveUp      key.Binding
	moveDown    key.Binding
	advanceTask key.Binding
	regressTask key.Binding
	deleteTask  key.Binding

	confirmYes    key.Binding
	confirmNo     key.Binding
	confirmSwitch key.Binding
	confirmApply  key.Binding
}

// newKeyMap constructs key map.
func newKeyMap() keyMap {
	return keyMap{
		quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		switchView: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "upload/board")),
		toggleHelp: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		cancel:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),

		openPicker:  key.NewBinding(key.WithKeys("o", "f"), key.WithHelp("o", "browse files")),
		typePath:    key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "type path")),
		destination: key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "toggle destination")),
		submit:      key.NewBinding(key.WithKeys("enter", "s"), key.WithHelp("enter", "upload")),
		clearFile:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "clear file")),
		copySummary: key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy summary")),

		reload:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		moveLeft:    key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "column left")),
		moveRight:   key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "column right")),
		moveUp:      key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "task up")),
		moveDown:    key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "task down")),
		advanceTask: key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "advance")),
		regressTask: key.NewBinding(key.WithKeys("["), key.WithHelp("[", "move back")),
		deleteTask:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),

		confirmYes:    key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "confirm")),
		confirmNo:     key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n/esc", "cancel")),
		confirmSwitch: key.NewBinding(key.WithKeys("h", "l", "left", "right"), key.WithHelp("h/l", "switch")),
		confirmApply:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "apply")),
	}
}

// viewKeys adapts one view's bindings to help.KeyMap.
type viewKeys struct {
	short []key.Binding
	full  [][]key.Binding
}

// ShortHelp returns the single-line help bindings.
func (v viewKeys) ShortHelp() []key.Binding {
	return v.short
}

// FullHelp returns the grouped help bindings.
func (v viewKeys) FullHelp() [][]key.Binding {
	return v.full
}

var _ help.KeyMap = viewKeys{}

// uploadHelp returns the upload view bindings.
func (k keyMap) uploadHelp() viewKeys {
	return viewKeys{
		short: []key.Binding{k.openPicker, k.typePath, k.destination, k.submit, k.switchView, k.quit},
		full: [][]key.Binding{
			{k.openPicker, k.typePath, k.clearFile, k.destination, k.submit},
			{k.copySummary, k.switchView, k.toggleHelp, k.quit},
		},
	}
}

// boardHelp returns the board view bindings.
func (k keyMap) boardHelp() viewKeys {
	return viewKeys{
		short: []key.Binding{k.regressTask, k.advanceTask, k.deleteTask, k.reload, k.switchView, k.quit},
		full: [][]key.Binding{
			{k.moveLeft, k.moveRight, k.moveUp, k.moveDown},
			{k.regressTask, k.advanceTask, k.deleteTask, k.reload},
			{k.switchView, k.toggleHelp, k.quit},
		},
	}
}

// confirmHelp returns the confirm modal bindings.
func (k keyMap) confirmHelp() viewKeys {
	return viewKeys{
		short: []key.Binding{k.confirmYes, k.confirmNo, k.confirmSwitch, k.confirmApply},
		full:  [][]key.Binding{{k.confirmYes, k.confirmNo, k.confirmSwitch, k.confirmApply}},
	}
}
