package player

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/homepanel/internal/clock"
	"github.com/desertthunder/homepanel/internal/events"
	"github.com/desertthunder/homepanel/internal/formatter"
	"github.com/desertthunder/homepanel/internal/models"
	"github.com/desertthunder/homepanel/internal/position"
	"github.com/desertthunder/homepanel/internal/shared"
)

// Music is the subset of the music service the controller calls.
type Music interface {
	Status(ctx context.Context) (*models.MusicStatus, error)
	CurrentSong(ctx context.Context) (*models.Track, error)
	Transport(ctx context.Context, action string) (*models.MusicStatus, error)
	SetVolume(ctx context.Context, vol int) error
	SeekCur(ctx context.Context, value int) (*models.MusicStatus, error)
}

// View is everything the player panel renders.
type View struct {
	State       models.PlayerState
	Track       models.Track
	ShowTrack   bool
	Volume      int
	Repeat      bool
	Random      bool
	Elapsed     int
	Length      int
	HasPosition bool
	HasLength   bool
	SeekEnabled bool
}

// ElapsedText renders the elapsed time, or "-:--" when unknown.
func (v View) ElapsedText() string {
	return formatter.Elapsed(v.Elapsed, v.HasPosition)
}

// LengthText renders the track length, or "-:--" when unknown.
func (v View) LengthText() string {
	return formatter.Elapsed(v.Length, v.HasPosition && v.HasLength)
}

// Options configures a [Controller].
type Options struct {
	Clock  clock.Clock
	Logger *log.Logger
	// OnChange receives the view after every change. It is called without the controller's lock held
	// and must not block or call back into Apply.
	OnChange func(View)
}

// Controller mirrors player status into a [View] and drives the position estimator.
type Controller struct {
	music     Music
	clock     clock.Clock
	logger    *log.Logger
	onChange  func(View)
	estimator *position.Estimator

	// applyMu serializes Apply so the estimator always runs the snapshot the view shows.
	applyMu sync.Mutex

	mu   sync.Mutex
	view View
}

// New creates a [Controller] with its own estimator. The initial view is stopped with no track.
func New(music Music, opts Options) *Controller {
	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	c := &Controller{
		music:    music,
		clock:    opts.Clock,
		logger:   shared.WithLogger(opts.Logger, "component", "player"),
		onChange: opts.OnChange,
		view:     View{State: models.StateStop},
	}
	c.estimator = position.New(position.Options{
		Clock:  opts.Clock,
		Logger: opts.Logger,
		OnTick: c.onTick,
	})
	return c
}

// Estimator exposes the controller's position estimator.
func (c *Controller) Estimator() *position.Estimator {
	return c.estimator
}

// View returns a copy of the current view.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// Init loads the status and the current song. Both calls are attempted; failures are joined.
func (c *Controller) Init(ctx context.Context) error {
	var errs []error

	status, err := c.music.Status(ctx)
	if err != nil {
		errs = append(errs, fmt.Errorf("status: %w", err))
	} else {
		c.Apply(status, nil)
	}

	track, err := c.music.CurrentSong(ctx)
	if err != nil {
		errs = append(errs, fmt.Errorf("current song: %w", err))
	} else {
		c.Apply(nil, track)
	}

	return errors.Join(errs...)
}

// HandleEvent applies music events. It can be registered with an events.Dispatcher for
// [events.MusicClasses]; other classes are ignored.
func (c *Controller) HandleEvent(ev *models.Event) {
	if ev == nil || !events.IsMusic(ev.Args.Type) {
		return
	}
	c.logger.Debug("music event", "class", ev.Class())
	c.Apply(ev.Args.Status, ev.Args.Track)
}

// Apply updates the view from a status, a track, or both. A nil status leaves playback state,
// volume, flags, and the estimator alone. Concurrent calls take effect one at a time.
func (c *Controller) Apply(status *models.MusicStatus, track *models.Track) {
	c.applyMu.Lock()
	defer c.applyMu.Unlock()

	var (
		snap  position.Snapshot
		start bool
	)

	if status != nil {
		c.estimator.Stop()
	}

	c.mu.Lock()
	if status != nil {
		elapsed, length, hasLength, ok := status.Position()
		if ok {
			snap = position.Snapshot{
				Elapsed:    elapsed,
				ObservedAt: c.clock.Now(),
				Length:     length,
				HasLength:  hasLength,
			}
		}

		state := status.PlayerState()
		c.view.State = state
		c.view.Volume = int(status.Volume)
		c.view.Repeat = status.Repeat != 0
		c.view.Random = status.Random != 0

		switch state {
		case models.StateStop:
			c.view.ShowTrack = false
			c.view.SeekEnabled = false
			c.view.HasPosition = false
		case models.StatePause, models.StatePlay:
			c.view.ShowTrack = true
			c.view.SeekEnabled = true
			c.view.HasPosition = ok
			if ok {
				c.view.Elapsed = snap.Elapsed
				c.view.Length = snap.Length
				c.view.HasLength = snap.HasLength
			}
			start = ok && state == models.StatePlay
		}
	}
	if track != nil {
		c.view.Track = *track
	}
	c.mu.Unlock()

	if start {
		c.estimator.Start(snap)
	}
	c.emit()
}

// Transport runs a transport action and applies the returned status.
func (c *Controller) Transport(ctx context.Context, action string) error {
	status, err := c.music.Transport(ctx, action)
	if err != nil {
		c.logger.Error("transport action failed", "action", action, "error", err)
		return err
	}
	c.Apply(status, nil)
	return nil
}

// SetVolume shows vol immediately and reverts to the previous volume if the call fails.
func (c *Controller) SetVolume(ctx context.Context, vol int) error {
	c.mu.Lock()
	prev := c.view.Volume
	c.view.Volume = vol
	c.mu.Unlock()
	c.emit()

	if err := c.music.SetVolume(ctx, vol); err != nil {
		c.mu.Lock()
		if c.view.Volume == vol {
			c.view.Volume = prev
		}
		c.mu.Unlock()
		c.emit()

		c.logger.Error("failed to set volume", "volume", vol, "error", err)
		return err
	}
	return nil
}

// AdjustVolume changes the volume by delta, clamped to 0 through 100.
func (c *Controller) AdjustVolume(ctx context.Context, delta int) error {
	vol := c.View().Volume + delta
	vol = max(0, min(100, vol))
	return c.SetVolume(ctx, vol)
}

// Seek moves playback to value seconds and restarts the estimator from the reply.
func (c *Controller) Seek(ctx context.Context, value int) error {
	c.mu.Lock()
	enabled := c.view.SeekEnabled
	c.mu.Unlock()
	if !enabled {
		return fmt.Errorf("%w: nothing to seek", shared.ErrInvalidInput)
	}

	status, err := c.music.SeekCur(ctx, value)
	if err != nil {
		c.logger.Error("seek failed", "value", value, "error", err)
		return err
	}
	c.Apply(status, nil)
	return nil
}

// SeekBy moves playback by delta seconds relative to the displayed position.
func (c *Controller) SeekBy(ctx context.Context, delta int) error {
	v := c.View()
	target := max(0, v.Elapsed+delta)
	if v.HasLength && target > v.Length {
		target = v.Length
	}
	return c.Seek(ctx, target)
}

// Close stops the estimator.
func (c *Controller) Close() {
	c.estimator.Stop()
}

func (c *Controller) onTick(p position.Position) {
	c.mu.Lock()
	if c.view.State != models.StatePlay || c.view.Elapsed == p.Elapsed {
		c.mu.Unlock()
		return
	}
	c.view.Elapsed = p.Elapsed
	c.mu.Unlock()

	c.emit()
}

func (c *Controller) emit() {
	if c.onChange != nil {
		c.onChange(c.View())
	}
}
