package services

import (
	"context"
	"fmt"
	"slices"
	"sort"

	"github.com/desertthunder/homepanel/internal/models"
	"github.com/desertthunder/homepanel/internal/shared"
)

const defaultMusicPlugin = "music.mpd"

// TransportActions are the argument-less player actions that reply with the new status.
var TransportActions = []string{"play", "pause", "stop", "next", "previous", "random", "repeat"}

// MusicService wraps the music plugin's actions.
type MusicService struct {
	backend Backend
	plugin  string
}

// NewMusicService creates a [MusicService] for the music.mpd plugin.
func NewMusicService(backend Backend) *MusicService {
	return &MusicService{backend: backend, plugin: defaultMusicPlugin}
}

// Plugin returns the action prefix, e.g. "music.mpd".
func (m *MusicService) Plugin() string {
	return m.plugin
}

func (m *MusicService) action(name string) string {
	return m.plugin + "." + name
}

func (m *MusicService) call(ctx context.Context, name string, args map[string]any, out any) error {
	resp, err := m.backend.Execute(ctx, m.action(name), args)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := resp.Decode(out); err != nil {
		return fmt.Errorf("%w: %s output: %v", shared.ErrDecode, m.action(name), err)
	}
	return nil
}

// Status returns the player status.
func (m *MusicService) Status(ctx context.Context) (*models.MusicStatus, error) {
	var status models.MusicStatus
	if err := m.call(ctx, "status", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// CurrentSong returns the track being played. Its File is empty when nothing is queued.
func (m *MusicService) CurrentSong(ctx context.Context) (*models.Track, error) {
	var track models.Track
	if err := m.call(ctx, "currentsong", nil, &track); err != nil {
		return nil, err
	}
	return &track, nil
}

// PlaylistInfo returns the play queue in order.
func (m *MusicService) PlaylistInfo(ctx context.Context) ([]models.Track, error) {
	var tracks []models.Track
	if err := m.call(ctx, "playlistinfo", nil, &tracks); err != nil {
		return nil, err
	}
	return tracks, nil
}

// ListPlaylistInfo returns the tracks of the stored playlist name.
func (m *MusicService) ListPlaylistInfo(ctx context.Context, name string) ([]models.Track, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: playlist name", shared.ErrMissingArgument)
	}

	var tracks []models.Track
	if err := m.call(ctx, "listplaylistinfo", map[string]any{"name": name}, &tracks); err != nil {
		return nil, err
	}
	return tracks, nil
}

// LsInfo lists the library entries under uri; an empty uri lists the root.
func (m *MusicService) LsInfo(ctx context.Context, uri string) ([]models.BrowserItem, error) {
	var args map[string]any
	if uri != "" {
		args = map[string]any{"uri": uri}
	}

	var items []models.BrowserItem
	if err := m.call(ctx, "lsinfo", args, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Listing groups library entries by kind, each group sorted by name.
type Listing struct {
	Directories []string
	Playlists   []string
	Files       []models.BrowserItem
}

// Browse lists uri and groups the result into a [Listing].
func (m *MusicService) Browse(ctx context.Context, uri string) (*Listing, error) {
	items, err := m.LsInfo(ctx, uri)
	if err != nil {
		return nil, err
	}
	return GroupListing(items), nil
}

// GroupListing splits items by kind. Entries of unknown kind are dropped.
func GroupListing(items []models.BrowserItem) *Listing {
	l := &Listing{}
	for _, item := range items {
		switch item.Kind() {
		case models.DirectoryItem:
			l.Directories = append(l.Directories, item.Directory)
		case models.PlaylistItem:
			l.Playlists = append(l.Playlists, item.Playlist)
		case models.FileItem:
			l.Files = append(l.Files, item)
		}
	}
	sort.Strings(l.Directories)
	sort.Strings(l.Playlists)
	sort.SliceStable(l.Files, func(i, j int) bool { return l.Files[i].File < l.Files[j].File })
	return l
}

// Transport runs one of [TransportActions] and returns the resulting status.
func (m *MusicService) Transport(ctx context.Context, action string) (*models.MusicStatus, error) {
	if !slices.Contains(TransportActions, action) {
		return nil, fmt.Errorf("%w: unknown transport action %q", shared.ErrInvalidArgument, action)
	}

	var status models.MusicStatus
	if err := m.call(ctx, action, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// SetVolume sets the volume, 0 through 100.
func (m *MusicService) SetVolume(ctx context.Context, vol int) error {
	if vol < 0 || vol > 100 {
		return fmt.Errorf("%w: volume %d out of range 0-100", shared.ErrInvalidArgument, vol)
	}
	return m.call(ctx, "setvol", map[string]any{"vol": vol}, nil)
}

// SeekCur moves the current track to value seconds and returns the resulting status.
func (m *MusicService) SeekCur(ctx context.Context, value int) (*models.MusicStatus, error) {
	if value < 0 {
		return nil, fmt.Errorf("%w: seek position %d", shared.ErrInvalidArgument, value)
	}

	var status models.MusicStatus
	if err := m.call(ctx, "seekcur", map[string]any{"value": value}, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// PlayFile starts playback of resource, a library path or URL.
func (m *MusicService) PlayFile(ctx context.Context, resource string) (*models.MusicStatus, error) {
	if resource == "" {
		return nil, fmt.Errorf("%w: resource", shared.ErrMissingArgument)
	}

	var status models.MusicStatus
	if err := m.call(ctx, "play", map[string]any{"resource": resource}, &status); err != nil {
		return nil, err
	}
	return &status, nil
}
