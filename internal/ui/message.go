package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/homepanel/internal/channel"
	"github.com/desertthunder/homepanel/internal/models"
	"github.com/desertthunder/homepanel/internal/player"
	"github.com/desertthunder/homepanel/internal/services"
	"github.com/desertthunder/homepanel/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgPlayerChanged MsgKind = iota
	MsgConnection
	MsgEvent
	MsgPanelLoaded
	MsgListing
	MsgActionDone
	MsgClockTick
)

// PlayerChangedMsg is the constructor for [MsgPlayerChanged]. Send it from the controller's OnChange callback.
func PlayerChangedMsg(v player.View) Msg {
	return Msg{kind: MsgPlayerChanged, data: v}
}

// ConnectionMsg is the constructor for [MsgConnection]. Send it from the channel's OnState callback.
func ConnectionMsg(s channel.State) Msg {
	return Msg{kind: MsgConnection, data: s}
}

// EventMsg is the constructor for [MsgEvent]. Send it from a catch-all dispatcher handler.
func EventMsg(ev *models.Event, at time.Time) Msg {
	return Msg{kind: MsgEvent, data: eventItem{event: ev, at: at}}
}

type panelLoaded struct {
	data *tasks.PanelData
	err  error
}

// panelLoadedMsg is the constructor for [MsgPanelLoaded]
func panelLoadedMsg(data *tasks.PanelData, err error) Msg {
	return Msg{kind: MsgPanelLoaded, data: panelLoaded{data, err}}
}

type listingResult struct {
	uri     string
	listing *services.Listing
	err     error
}

// listingMsg is the constructor for [MsgListing]
func listingMsg(uri string, listing *services.Listing, err error) Msg {
	return Msg{kind: MsgListing, data: listingResult{uri, listing, err}}
}

type actionResult struct {
	action string
	err    error
}

// actionDoneMsg is the constructor for [MsgActionDone]
func actionDoneMsg(action string, err error) Msg {
	return Msg{kind: MsgActionDone, data: actionResult{action, err}}
}

// clockTickMsg is the constructor for [MsgClockTick]
func clockTickMsg(t time.Time) Msg {
	return Msg{kind: MsgClockTick, data: t}
}
