package tasks

import (
	"context"
	"fmt"

	"github.com/desertthunder/homepanel/internal/models"
	"github.com/desertthunder/homepanel/internal/services"
	"github.com/desertthunder/homepanel/internal/shared"
)

// Music defines the music service calls used by the engine.
// This abstraction allows for easier testing and decoupling from concrete implementation.
type Music interface {
	Status(ctx context.Context) (*models.MusicStatus, error)
	CurrentSong(ctx context.Context) (*models.Track, error)
	PlaylistInfo(ctx context.Context) ([]models.Track, error)
	LsInfo(ctx context.Context, uri string) ([]models.BrowserItem, error)
	ListPlaylistInfo(ctx context.Context, name string) ([]models.Track, error)
}

// EndpointResult represents a failed call made while loading the panel.
type EndpointResult struct {
	Endpoint string
	Error    error
}

// PanelData is everything the player, playlist, and browser tabs show.
type PanelData struct {
	Status  *models.MusicStatus
	Track   *models.Track
	Queue   []models.Track
	Listing *services.Listing
	Errors  []EndpointResult // Failed calls; the matching fields stay nil
}

// OK reports whether every call succeeded.
func (d *PanelData) OK() bool {
	return len(d.Errors) == 0
}

type loadOperation struct {
	name    string
	phase   Phase
	message string
	run     func(ctx context.Context, d *PanelData) error
}

// PanelEngine implements the panel operations on top of a [Music] service.
type PanelEngine struct {
	music Music
}

// NewPanelEngine creates a new PanelEngine with the provided service.
func NewPanelEngine(music Music) *PanelEngine {
	return &PanelEngine{music: music}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *PanelEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Load fetches the status, current song, queue, and root library listing.
//
// A failing call is recorded in [PanelData.Errors] and the remaining calls still run; only a
// cancelled context aborts the load.
func (e *PanelEngine) Load(ctx context.Context, progress chan<- ProgressUpdate) (*PanelData, error) {
	if e.music == nil {
		return nil, fmt.Errorf("%w: music service not initialized", shared.ErrServiceUnavailable)
	}

	data := &PanelData{}
	ops := []loadOperation{
		{name: "status", phase: FetchStatus, message: "Fetching player status...", run: e.loadStatus},
		{name: "currentsong", phase: FetchCurrentSong, message: "Fetching current song...", run: e.loadCurrentSong},
		{name: "playlistinfo", phase: FetchQueue, message: "Fetching play queue...", run: e.loadQueue},
		{name: "lsinfo", phase: FetchLibrary, message: "Fetching library...", run: e.loadLibrary},
	}

	total := len(ops)
	for i, op := range ops {
		if err := ctx.Err(); err != nil {
			return data, err
		}

		e.sendProgress(progress, operationUpdate(op, i+1, total))
		if err := op.run(ctx, data); err != nil {
			data.Errors = append(data.Errors, EndpointResult{Endpoint: op.name, Error: err})
			e.sendProgress(progress, operationFailedUpdate(op, i+1, total, err))
		}
	}

	return data, nil
}

func (e *PanelEngine) loadStatus(ctx context.Context, d *PanelData) (err error) {
	d.Status, err = e.music.Status(ctx)
	return err
}

func (e *PanelEngine) loadCurrentSong(ctx context.Context, d *PanelData) (err error) {
	d.Track, err = e.music.CurrentSong(ctx)
	return err
}

func (e *PanelEngine) loadQueue(ctx context.Context, d *PanelData) (err error) {
	d.Queue, err = e.music.PlaylistInfo(ctx)
	return err
}

func (e *PanelEngine) loadLibrary(ctx context.Context, d *PanelData) error {
	items, err := e.music.LsInfo(ctx, "")
	if err != nil {
		return err
	}
	d.Listing = services.GroupListing(items)
	return nil
}
