package repositories

import (
	"github.com/charmbracelet/log"
	"github.com/desertthunder/homepanel/internal/clock"
	"github.com/desertthunder/homepanel/internal/models"
	"github.com/desertthunder/homepanel/internal/shared"
)

// Journal records parsed events through an [EventRepository].
//
// Its [Journal.Record] method has the events.Handler signature. Storage failures are logged and
// never propagate, so a broken journal cannot disturb the other handlers.
type Journal struct {
	repo   *EventRepository
	clock  clock.Clock
	logger *log.Logger
}

// NewJournal creates a Journal. A nil clock uses wall time; a nil logger discards output.
func NewJournal(repo *EventRepository, c clock.Clock, logger *log.Logger) *Journal {
	if c == nil {
		c = clock.Real{}
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Journal{repo: repo, clock: c, logger: shared.WithLogger(logger, "component", "journal")}
}

// Record stores ev with the current time.
func (j *Journal) Record(ev *models.Event) {
	if ev == nil {
		return
	}

	payload, err := shared.MarshalJSON(eventPayload(ev), false)
	if err != nil {
		j.logger.Warn("failed to encode event", "class", ev.Args.Type, "error", err)
		return
	}

	rec := models.NewEventRecord(ev.Args.Type, ev.Origin, string(payload), j.clock.Now())
	if err := j.repo.Create(rec); err != nil {
		j.logger.Error("failed to journal event", "class", ev.Args.Type, "error", err)
		return
	}
	j.logger.Debug("journaled event", "class", ev.Class(), "sequence", rec.Sequence)
}

// eventPayload rebuilds the wire shape of ev, keeping every argument the sender attached.
func eventPayload(ev *models.Event) map[string]any {
	args := make(map[string]any, len(ev.Args.Fields)+1)
	for k, v := range ev.Args.Fields {
		args[k] = v
	}
	if len(args) == 0 {
		if ev.Args.Status != nil {
			args["status"] = ev.Args.Status
		}
		if ev.Args.Track != nil {
			args["track"] = ev.Args.Track
		}
	}
	args["type"] = ev.Args.Type

	out := map[string]any{"type": ev.Type, "args": args}
	if ev.ID != "" {
		out["id"] = ev.ID
	}
	if ev.Target != "" {
		out["target"] = ev.Target
	}
	if ev.Origin != "" {
		out["origin"] = ev.Origin
	}
	return out
}
