package app

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/san-kum/chronogrid/internal/bus"
	"github.com/san-kum/chronogrid/internal/layout"
)

// KeyMap is the shortcut table.
type KeyMap struct {
	Theme  key.Binding
	Audio  key.Binding
	Today  key.Binding
	Random key.Binding
	Chrono key.Binding
	Jump   key.Binding
	Up     key.Binding
	Down   key.Binding
	PageUp key.Binding
	PageDn key.Binding
	Help   key.Binding
	Quit   key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Theme: key.NewBinding(
			key.WithKeys("ctrl+.", "t"),
			key.WithHelp("ctrl+.", "toggle theme"),
		),
		Audio: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "toggle audio"),
		),
		Today: key.NewBinding(
			key.WithKeys("home"),
			key.WithHelp("home", "jump to today"),
		),
		Random: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "randomized layout"),
		),
		Chrono: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "chronological layout"),
		),
		Jump: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "quantum jump"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "scroll down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "previous year"),
		),
		PageDn: key.NewBinding(
			key.WithKeys("pgdown", " "),
			key.WithHelp("pgdn", "next year"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c", "esc"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp and FullHelp make KeyMap a help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Today, k.Jump, k.Random, k.Chrono, k.Audio, k.Help, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Today, k.Jump, k.Up, k.Down, k.PageUp, k.PageDn},
		{k.Random, k.Chrono, k.Theme, k.Audio},
		{k.Help, k.Quit},
	}
}

// Shortcuts lists the bindings in the order they are documented.
func (k KeyMap) Shortcuts() []key.Binding {
	return []key.Binding{k.Theme, k.Audio, k.Today, k.Random, k.Chrono, k.Jump, k.Up, k.Down, k.PageUp, k.PageDn, k.Help, k.Quit}
}

// Keystroke adapts a key name to key.Matches.
type Keystroke string

func (k Keystroke) String() string { return string(k) }

// HandleKey runs the shortcut bound to name and reports whether one
// matched. Quit and Help belong to the frontend and are not handled here.
func (a *App) HandleKey(name string) bool {
	if !a.boot.done {
		return false
	}
	k := Keystroke(name)
	switch {
	case key.Matches(k, a.keys.Theme):
		a.Effects.ToggleTheme()
	case key.Matches(k, a.keys.Audio):
		bus.Emit(a.Bus, bus.AudioToggleMaster, struct{}{})
	case key.Matches(k, a.keys.Today):
		a.Nav.JumpToToday(false)
	case key.Matches(k, a.keys.Random):
		a.Nav.SetMode(layout.Randomized)
	case key.Matches(k, a.keys.Chrono):
		a.Nav.SetMode(layout.Chronological)
	case key.Matches(k, a.keys.Jump):
		a.Nav.JumpToRandom()
	case key.Matches(k, a.keys.Up):
		a.ScrollStep(-1)
	case key.Matches(k, a.keys.Down):
		a.ScrollStep(1)
	case key.Matches(k, a.keys.PageUp):
		a.Scroll(-a.Viewport.Height())
	case key.Matches(k, a.keys.PageDn):
		a.Scroll(a.Viewport.Height())
	default:
		return false
	}
	return true
}
