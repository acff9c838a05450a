package position

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/homepanel/internal/clock"
	"github.com/desertthunder/homepanel/internal/shared"
)

// Period is the tick interval of a running [Estimator].
const Period = time.Second

// Snapshot is an authoritative playback position reading.
type Snapshot struct {
	Elapsed    int       // whole seconds, negative values are treated as zero
	ObservedAt time.Time // when Elapsed was read
	Length     int       // track length in seconds, meaningful only when HasLength is set
	HasLength  bool
}

// Position is what a renderer needs to draw the seek indicator.
type Position struct {
	Elapsed   int
	Length    int
	HasLength bool
	Running   bool
}

// Options configures an [Estimator].
type Options struct {
	Clock  clock.Clock
	Logger *log.Logger
	// OnTick receives the position every time the displayed value or running state changes.
	// It is called without the estimator's lock held.
	OnTick func(Position)
}

// Estimator turns snapshots into a displayed elapsed value that advances once per [Period].
type Estimator struct {
	clock  clock.Clock
	logger *log.Logger
	onTick func(Position)

	mu        sync.Mutex
	snap      Snapshot
	displayed int
	running   bool
	tick      clock.Timer
	gen       uint64
}

func New(opts Options) *Estimator {
	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	return &Estimator{
		clock:  opts.Clock,
		logger: shared.WithLogger(opts.Logger, "component", "estimator"),
		onTick: opts.OnTick,
	}
}

// Start replaces the current snapshot with s and begins ticking.
//
// If s already sits at or past its length the displayed value freezes just below the length, as a
// natural completion does, and the estimator stays idle.
func (e *Estimator) Start(s Snapshot) {
	if s.Elapsed < 0 {
		s.Elapsed = 0
	}
	if s.Length < 0 {
		s.Length = 0
	}

	e.mu.Lock()
	e.cancel()
	e.snap = s
	e.displayed = s.Elapsed

	if v := e.extrapolate(e.clock.Now()); v > e.displayed {
		e.displayed = v
	}
	if s.HasLength && e.displayed >= s.Length {
		e.displayed = frozenAt(s.Length)
		e.running = false
	} else {
		e.running = true
		e.schedule()
	}
	p := e.position()
	e.mu.Unlock()

	e.logger.Debug("estimator started", "elapsed", s.Elapsed, "length", s.Length, "running", p.Running)
	e.emit(p)
}

// Stop cancels the tick and keeps the displayed value. Stopping an idle estimator does nothing.
func (e *Estimator) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.cancel()
	e.running = false
	p := e.position()
	e.mu.Unlock()

	e.emit(p)
}

// Displayed returns the current extrapolated elapsed seconds.
func (e *Estimator) Displayed() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.displayed
}

// Running reports whether a tick is scheduled.
func (e *Estimator) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// Position returns the displayed value together with the snapshot's length.
func (e *Estimator) Position() Position {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.position()
}

func (e *Estimator) position() Position {
	return Position{
		Elapsed:   e.displayed,
		Length:    e.snap.Length,
		HasLength: e.snap.HasLength,
		Running:   e.running,
	}
}

func (e *Estimator) extrapolate(now time.Time) int {
	d := now.Sub(e.snap.ObservedAt)
	if d < 0 {
		d = 0
	}
	return e.snap.Elapsed + int(d/Period)
}

// frozenAt is the last value below length shown once playback reaches the end of the track.
func frozenAt(length int) int {
	return max(length-1, 0)
}

// schedule arms the next tick on the next whole second after ObservedAt. Callers hold e.mu.
func (e *Estimator) schedule() {
	wait := Period
	if d := e.clock.Now().Sub(e.snap.ObservedAt); d > 0 {
		wait = Period - d%Period
	}
	gen := e.gen
	e.tick = e.clock.AfterFunc(wait, func() { e.onTimer(gen) })
}

// cancel stops the pending tick and invalidates any tick already in flight. Callers hold e.mu.
func (e *Estimator) cancel() {
	e.gen++
	if e.tick != nil {
		e.tick.Stop()
		e.tick = nil
	}
}

func (e *Estimator) onTimer(gen uint64) {
	e.mu.Lock()
	if gen != e.gen || !e.running {
		e.mu.Unlock()
		return
	}
	e.tick = nil

	v := e.extrapolate(e.clock.Now())
	changed := false
	if e.snap.HasLength && v >= e.snap.Length {
		e.running = false
		e.gen++
		e.displayed = frozenAt(e.snap.Length)
		changed = true
	} else {
		changed = v != e.displayed
		e.displayed = v
		e.schedule()
	}
	p := e.position()
	e.mu.Unlock()

	if !p.Running {
		e.logger.Debug("estimator reached track length", "elapsed", p.Elapsed, "length", p.Length)
	}
	if changed {
		e.emit(p)
	}
}

func (e *Estimator) emit(p Position) {
	if e.onTick != nil {
		e.onTick(p)
	}
}
