package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tatianab/falliant/internal/engine"
)

// keyMap holds the in-game bindings. It satisfies help.KeyMap.
type keyMap struct {
	Left      key.Binding
	Right     key.Binding
	SoftDrop  key.Binding
	RotateCW  key.Binding
	RotateCCW key.Binding
	HardDrop  key.Binding
	Hold      key.Binding
	Pause     key.Binding
	Quit      key.Binding
}

var gameKeys = keyMap{
	Left: key.NewBinding(
		key.WithKeys("left", "a"),
		key.WithHelp("←/a", "left"),
	),
	Right: key.NewBinding(
		key.WithKeys("right", "d"),
		key.WithHelp("→/d", "right"),
	),
	SoftDrop: key.NewBinding(
		key.WithKeys("down", "s"),
		key.WithHelp("↓/s", "soft drop"),
	),
	RotateCW: key.NewBinding(
		key.WithKeys("up", "w", "x"),
		key.WithHelp("↑/w/x", "rotate"),
	),
	RotateCCW: key.NewBinding(
		key.WithKeys("z"),
		key.WithHelp("z", "rotate ccw"),
	),
	HardDrop: key.NewBinding(
		key.WithKeys(" "),
		key.WithHelp("space", "drop"),
	),
	Hold: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "hold"),
	),
	Pause: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "pause"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q"),
		key.WithHelp("q", "quit"),
	),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Left, k.Right, k.RotateCW, k.HardDrop, k.Hold, k.Pause, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right, k.SoftDrop, k.HardDrop},
		{k.RotateCW, k.RotateCCW, k.Hold},
		{k.Pause, k.Quit},
	}
}

// input maps a key press to an engine input. Quit is not an engine input
// here: it opens the confirm dialog first.
func (k keyMap) input(msg tea.KeyMsg) (engine.Input, bool) {
	switch {
	case key.Matches(msg, k.Left):
		return engine.MoveLeft, true
	case key.Matches(msg, k.Right):
		return engine.MoveRight, true
	case key.Matches(msg, k.SoftDrop):
		return engine.SoftDrop, true
	case key.Matches(msg, k.RotateCW):
		return engine.RotateCW, true
	case key.Matches(msg, k.RotateCCW):
		return engine.RotateCCW, true
	case key.Matches(msg, k.HardDrop):
		return engine.HardDrop, true
	case key.Matches(msg, k.Hold):
		return engine.Hold, true
	case key.Matches(msg, k.Pause):
		return engine.Pause, true
	}
	return 0, false
}

// navMap holds the menu and dialog bindings.
type navMap struct {
	Up        key.Binding
	Down      key.Binding
	Left      key.Binding
	Right     key.Binding
	Select    key.Binding
	Back      key.Binding
	Yes       key.Binding
	No        key.Binding
	ForceQuit key.Binding
}

var navKeys = navMap{
	Up:        key.NewBinding(key.WithKeys("up", "k", "w"), key.WithHelp("↑", "up")),
	Down:      key.NewBinding(key.WithKeys("down", "j", "s"), key.WithHelp("↓", "down")),
	Left:      key.NewBinding(key.WithKeys("left", "h", "a"), key.WithHelp("←", "-1")),
	Right:     key.NewBinding(key.WithKeys("right", "l", "d"), key.WithHelp("→", "+1")),
	Select:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
	Back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Yes:       key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "yes")),
	No:        key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "no")),
	ForceQuit: key.NewBinding(key.WithKeys("ctrl+c")),
}
