package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	nextTab    key.Binding
	prevTab    key.Binding
	tab1       key.Binding
	tab2       key.Binding
	tab3       key.Binding
	tab4       key.Binding
	up         key.Binding
	down       key.Binding
	enter      key.Binding
	back       key.Binding
	playPause  key.Binding
	stop       key.Binding
	next       key.Binding
	previous   key.Binding
	random     key.Binding
	repeat     key.Binding
	volumeUp   key.Binding
	volumeDown key.Binding
	seekFwd    key.Binding
	seekBack   key.Binding
	reload     key.Binding
	quit       key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		nextTab:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		prevTab:    key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev tab")),
		tab1:       key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "player")),
		tab2:       key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "playlist")),
		tab3:       key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "browser")),
		tab4:       key.NewBinding(key.WithKeys("4"), key.WithHelp("4", "events")),
		up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "play/open")),
		back:       key.NewBinding(key.WithKeys("esc", "backspace"), key.WithHelp("esc", "up a folder")),
		playPause:  key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play/pause")),
		stop:       key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "stop")),
		next:       key.NewBinding(key.WithKeys("n", ">"), key.WithHelp("n", "next")),
		previous:   key.NewBinding(key.WithKeys("p", "<"), key.WithHelp("p", "previous")),
		random:     key.NewBinding(key.WithKeys("z"), key.WithHelp("z", "random")),
		repeat:     key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "repeat")),
		volumeUp:   key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "volume up")),
		volumeDown: key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "volume down")),
		seekFwd:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "seek +10s")),
		seekBack:   key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "seek -10s")),
		reload:     key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "reload")),
		quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.nextTab, k.playPause, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.nextTab, k.prevTab, k.tab1, k.tab2, k.tab3, k.tab4},
		{k.playPause, k.stop, k.next, k.previous, k.random, k.repeat},
		{k.volumeUp, k.volumeDown, k.seekFwd, k.seekBack},
		{k.up, k.down, k.enter, k.back, k.reload, k.quit},
	}
}

// transportKeys is the help line shown on every tab.
func (k keyMap) transportKeys() []key.Binding {
	return []key.Binding{k.playPause, k.stop, k.next, k.previous, k.volumeUp, k.volumeDown, k.quit}
}
