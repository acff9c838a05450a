package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/desertthunder/homepanel/internal/shared"
)

// FlexInt is an integer that decodes from a JSON number or a numeric string.
//
// Fractional values are truncated; null and "" decode to zero.
type FlexInt int

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = 0
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		n, err := ParseSeconds(s)
		if err != nil {
			return err
		}
		*f = FlexInt(n)
		return nil
	}

	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("flexint: %w", err)
	}
	v, err := wholeSeconds(n)
	if err != nil {
		return err
	}
	*f = FlexInt(v)
	return nil
}

// ParseSeconds parses a decimal string such as "42" or "42.731" into whole seconds.
// NaN, infinities, and values outside the int range fail with [shared.ErrDecode].
func ParseSeconds(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: not a number: %q", shared.ErrDecode, s)
	}
	return wholeSeconds(n)
}

func wholeSeconds(n float64) (int, error) {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, fmt.Errorf("%w: not a finite number: %v", shared.ErrDecode, n)
	}
	t := math.Trunc(n)
	if t >= float64(math.MaxInt) || t < float64(math.MinInt) {
		return 0, fmt.Errorf("%w: %v out of range", shared.ErrDecode, n)
	}
	return int(t), nil
}

// PlayerState is the playback state reported by the music server.
type PlayerState string

const (
	StatePlay  PlayerState = "play"
	StatePause PlayerState = "pause"
	StateStop  PlayerState = "stop"
)

// MusicStatus mirrors the fields of the player status used by the panel.
type MusicStatus struct {
	State          string  `json:"state"`
	Volume         FlexInt `json:"volume"`
	Repeat         FlexInt `json:"repeat"`
	Random         FlexInt `json:"random"`
	Single         FlexInt `json:"single,omitempty"`
	Consume        FlexInt `json:"consume,omitempty"`
	Song           FlexInt `json:"song,omitempty"`
	SongID         FlexInt `json:"songid,omitempty"`
	PlaylistLength FlexInt `json:"playlistlength,omitempty"`
	// Time is the legacy "elapsed:length" field, both in whole seconds.
	Time string `json:"time,omitempty"`
}

// PlayerState normalizes State; unknown values are reported as [StateStop].
func (s *MusicStatus) PlayerState() PlayerState {
	switch PlayerState(strings.ToLower(strings.TrimSpace(s.State))) {
	case StatePlay:
		return StatePlay
	case StatePause:
		return StatePause
	default:
		return StateStop
	}
}

// Position parses Time into elapsed and length seconds. ok is false when Time is absent or malformed;
// hasLength is false when Time carries no length part.
func (s *MusicStatus) Position() (elapsed, length int, hasLength, ok bool) {
	if strings.TrimSpace(s.Time) == "" {
		return 0, 0, false, false
	}

	parts := strings.Split(s.Time, ":")
	e, err := ParseSeconds(parts[0])
	if err != nil || e < 0 {
		return 0, 0, false, false
	}
	if len(parts) < 2 || strings.TrimSpace(parts[1]) == "" {
		return e, 0, false, true
	}

	l, err := ParseSeconds(parts[1])
	if err != nil || l < 0 {
		return e, 0, false, true
	}
	return e, l, true, true
}

// Track is a song as reported by currentsong, playlistinfo, and music events.
type Track struct {
	File   string  `json:"file"`
	Artist string  `json:"artist,omitempty"`
	Title  string  `json:"title,omitempty"`
	Album  string  `json:"album,omitempty"`
	Time   FlexInt `json:"time,omitempty"`
	Pos    FlexInt `json:"pos,omitempty"`
	ID     FlexInt `json:"id,omitempty"`
}

// DisplayTitle returns the title, falling back to the file name.
func (t Track) DisplayTitle() string {
	if t.Title != "" {
		return t.Title
	}
	if i := strings.LastIndex(t.File, "/"); i >= 0 {
		return t.File[i+1:]
	}
	return t.File
}

// BrowserItemKind is the kind of a library browser entry.
type BrowserItemKind int

const (
	UnknownItem BrowserItemKind = iota
	DirectoryItem
	PlaylistItem
	FileItem
)

func (k BrowserItemKind) String() string {
	switch k {
	case DirectoryItem:
		return "directory"
	case PlaylistItem:
		return "playlist"
	case FileItem:
		return "file"
	default:
		return "unknown"
	}
}

// BrowserItem is one entry of an lsinfo listing. Exactly one of Directory, Playlist, File is set.
type BrowserItem struct {
	Directory string `json:"directory,omitempty"`
	Playlist  string `json:"playlist,omitempty"`
	File      string `json:"file,omitempty"`
	Artist    string `json:"artist,omitempty"`
	Title     string `json:"title,omitempty"`
}

func (b BrowserItem) Kind() BrowserItemKind {
	switch {
	case b.Directory != "":
		return DirectoryItem
	case b.Playlist != "":
		return PlaylistItem
	case b.File != "":
		return FileItem
	default:
		return UnknownItem
	}
}

// Name returns the entry's path for its kind.
func (b BrowserItem) Name() string {
	switch b.Kind() {
	case DirectoryItem:
		return b.Directory
	case PlaylistItem:
		return b.Playlist
	default:
		return b.File
	}
}
