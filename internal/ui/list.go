package ui

import (
	"fmt"
	"path"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/homepanel/internal/formatter"
	"github.com/desertthunder/homepanel/internal/models"
	"github.com/desertthunder/homepanel/internal/services"
)

var (
	_ list.Item = queueItem{}
	_ list.Item = browserItem{}
	_ list.Item = eventItem{}
)

// queueItem wraps a queued [models.Track] to implement [list.Item].
type queueItem struct {
	track   models.Track
	current bool
}

func (i queueItem) FilterValue() string { return i.track.DisplayTitle() }
func (i queueItem) Title() string {
	if i.current {
		return "▶ " + i.track.DisplayTitle()
	}
	return i.track.DisplayTitle()
}
func (i queueItem) Description() string {
	desc := formatter.Duration(int(i.track.Time))
	if i.track.Artist != "" {
		desc = fmt.Sprintf("%s • %s", i.track.Artist, desc)
	}
	if i.track.Album != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.track.Album)
	}
	return desc
}

// browserItem wraps a library entry to implement [list.Item].
type browserItem struct {
	kind  models.BrowserItemKind
	name  string
	title string
}

func (i browserItem) FilterValue() string { return i.name }
func (i browserItem) Title() string {
	switch i.kind {
	case models.DirectoryItem:
		return "📁 " + path.Base(i.name)
	case models.PlaylistItem:
		return "☰ " + i.name
	default:
		if i.title != "" {
			return "♪ " + i.title
		}
		return "♪ " + path.Base(i.name)
	}
}
func (i browserItem) Description() string { return i.kind.String() }

// listingItems flattens a listing into directories, then playlists, then files.
func listingItems(l *services.Listing) []list.Item {
	if l == nil {
		return nil
	}

	items := make([]list.Item, 0, len(l.Directories)+len(l.Playlists)+len(l.Files))
	for _, d := range l.Directories {
		items = append(items, browserItem{kind: models.DirectoryItem, name: d})
	}
	for _, p := range l.Playlists {
		items = append(items, browserItem{kind: models.PlaylistItem, name: p})
	}
	for _, f := range l.Files {
		items = append(items, browserItem{kind: models.FileItem, name: f.File, title: f.Title})
	}
	return items
}

// eventItem wraps a received [models.Event] to implement [list.Item].
type eventItem struct {
	event *models.Event
	at    time.Time
}

func (i eventItem) FilterValue() string { return i.event.Class() }
func (i eventItem) Title() string       { return i.event.Class() }
func (i eventItem) Description() string {
	desc := i.at.Format("15:04:05")
	if i.event.Origin != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.event.Origin)
	}
	return desc
}
