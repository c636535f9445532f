package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	allow key.Binding
	deny  key.Binding
	left  key.Binding
	right key.Binding
	enter key.Binding
	quit  key.Binding
}

var keys = keyMap{
	allow: key.NewBinding(key.WithKeys("y", "a")),
	deny:  key.NewBinding(key.WithKeys("n", "d")),
	left:  key.NewBinding(key.WithKeys("left", "h", "shift+tab")),
	right: key.NewBinding(key.WithKeys("right", "l", "tab")),
	enter: key.NewBinding(key.WithKeys("enter")),
	quit:  key.NewBinding(key.WithKeys("esc", "q", "ctrl+c")),
}
