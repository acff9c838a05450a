package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/homepanel/internal/models"
	"github.com/desertthunder/homepanel/internal/shared"
)

type mockMusic struct {
	mu          sync.Mutex
	status      *models.MusicStatus
	track       *models.Track
	queue       []models.Track
	items       []models.BrowserItem
	playlists   map[string][]models.Track
	statusErr   error
	songErr     error
	queueErr    error
	lsinfoErr   error
	playlistErr map[string]error
	fetched     []string
}

func (m *mockMusic) Status(ctx context.Context) (*models.MusicStatus, error) {
	return m.status, m.statusErr
}

func (m *mockMusic) CurrentSong(ctx context.Context) (*models.Track, error) {
	return m.track, m.songErr
}

func (m *mockMusic) PlaylistInfo(ctx context.Context) ([]models.Track, error) {
	return m.queue, m.queueErr
}

func (m *mockMusic) LsInfo(ctx context.Context, uri string) ([]models.BrowserItem, error) {
	return m.items, m.lsinfoErr
}

func (m *mockMusic) ListPlaylistInfo(ctx context.Context, name string) ([]models.Track, error) {
	m.mu.Lock()
	m.fetched = append(m.fetched, name)
	m.mu.Unlock()

	if err := m.playlistErr[name]; err != nil {
		return nil, err
	}
	tracks, ok := m.playlists[name]
	if !ok {
		return nil, fmt.Errorf("%w: no such playlist %s", shared.ErrBackendResponse, name)
	}
	return tracks, nil
}

func newMockMusic() *mockMusic {
	return &mockMusic{
		status: &models.MusicStatus{State: "play", Volume: 50, Time: "12:200"},
		track:  &models.Track{File: "jazz/so_what.flac", Title: "So What", Artist: "Miles Davis", Time: 200},
		queue: []models.Track{
			{File: "jazz/so_what.flac", Title: "So What", Pos: 0},
			{File: "jazz/blue_in_green.flac", Title: "Blue in Green", Pos: 1},
		},
		items: []models.BrowserItem{
			{Directory: "rock"},
			{Playlist: "Party"},
			{Directory: "jazz"},
			{File: "loose.mp3"},
		},
	}
}

func drain(ch chan ProgressUpdate) []ProgressUpdate {
	var updates []ProgressUpdate
	for {
		select {
		case u := <-ch:
			updates = append(updates, u)
		default:
			return updates
		}
	}
}

func TestPanelEngine(t *testing.T) {
	t.Run("Load", func(t *testing.T) {
		t.Run("populates every field", func(t *testing.T) {
			engine := NewPanelEngine(newMockMusic())
			progress := make(chan ProgressUpdate, 16)

			data, err := engine.Load(context.Background(), progress)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !data.OK() {
				t.Fatalf("expected no endpoint errors, got %v", data.Errors)
			}
			if data.Status.PlayerState() != models.StatePlay {
				t.Errorf("expected play state, got %s", data.Status.State)
			}
			if data.Track.Title != "So What" {
				t.Errorf("expected current song So What, got %s", data.Track.Title)
			}
			if len(data.Queue) != 2 {
				t.Errorf("expected 2 queued tracks, got %d", len(data.Queue))
			}
			if len(data.Listing.Directories) != 2 || data.Listing.Directories[0] != "jazz" {
				t.Errorf("expected sorted directories, got %v", data.Listing.Directories)
			}

			updates := drain(progress)
			if len(updates) != 4 {
				t.Fatalf("expected 4 progress updates, got %d", len(updates))
			}
			phases := []Phase{FetchStatus, FetchCurrentSong, FetchQueue, FetchLibrary}
			for i, u := range updates {
				if u.Phase != phases[i] {
					t.Errorf("update %d: expected phase %s, got %s", i, phases[i], u.Phase)
				}
				if u.Step != i+1 || u.Total != 4 {
					t.Errorf("update %d: expected step %d/4, got %d/%d", i, i+1, u.Step, u.Total)
				}
			}
		})

		t.Run("records failures and keeps going", func(t *testing.T) {
			m := newMockMusic()
			m.songErr = shared.ErrBackendResponse
			m.lsinfoErr = shared.ErrAPIRequest
			engine := NewPanelEngine(m)
			progress := make(chan ProgressUpdate, 16)

			data, err := engine.Load(context.Background(), progress)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if data.OK() {
				t.Fatal("expected endpoint errors")
			}
			if len(data.Errors) != 2 {
				t.Fatalf("expected 2 endpoint errors, got %d", len(data.Errors))
			}
			if data.Errors[0].Endpoint != "currentsong" || !errors.Is(data.Errors[0].Error, shared.ErrBackendResponse) {
				t.Errorf("unexpected first error %+v", data.Errors[0])
			}
			if data.Errors[1].Endpoint != "lsinfo" {
				t.Errorf("expected lsinfo failure, got %s", data.Errors[1].Endpoint)
			}
			if data.Status == nil || data.Queue == nil {
				t.Error("expected successful calls to populate their fields")
			}
			if data.Listing != nil {
				t.Error("expected listing to stay nil after a failure")
			}

			failed := 0
			for _, u := range drain(progress) {
				if strings.HasPrefix(u.Message, "✗") {
					failed++
				}
			}
			if failed != 2 {
				t.Errorf("expected 2 failure updates, got %d", failed)
			}
		})

		t.Run("cancelled context", func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			_, err := NewPanelEngine(newMockMusic()).Load(ctx, nil)
			if !errors.Is(err, context.Canceled) {
				t.Errorf("expected context.Canceled, got %v", err)
			}
		})

		t.Run("nil music service", func(t *testing.T) {
			_, err := NewPanelEngine(nil).Load(context.Background(), nil)
			if !errors.Is(err, shared.ErrServiceUnavailable) {
				t.Errorf("expected ErrServiceUnavailable, got %v", err)
			}
		})

		t.Run("full progress channel does not block", func(t *testing.T) {
			progress := make(chan ProgressUpdate)
			if _, err := NewPanelEngine(newMockMusic()).Load(context.Background(), progress); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})
	})
}

func TestProgressUpdate(t *testing.T) {
	t.Run("Percent", func(t *testing.T) {
		tests := []struct {
			update   ProgressUpdate
			expected float64
		}{
			{ProgressUpdate{Step: 1, Total: 4}, 0.25},
			{ProgressUpdate{Step: 4, Total: 4}, 1},
			{ProgressUpdate{Step: 3, Total: 0}, 0},
		}

		for _, tt := range tests {
			if got := tt.update.Percent(); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		}
	})

	t.Run("Phase String", func(t *testing.T) {
		tests := map[Phase]string{
			FetchStatus:      "fetch_status",
			FetchCurrentSong: "fetch_current_song",
			FetchQueue:       "fetch_queue",
			FetchLibrary:     "fetch_library",
			ExportPlaylist:   "export_playlist",
			WriteManifest:    "write_manifest",
			Phase(99):        "",
		}

		for phase, expected := range tests {
			if got := phase.String(); got != expected {
				t.Errorf("expected %q, got %q", expected, got)
			}
		}
	})
}
