package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/desertthunder/homepanel/internal/channel"
	"github.com/desertthunder/homepanel/internal/events"
	"github.com/desertthunder/homepanel/internal/models"
	"github.com/desertthunder/homepanel/internal/repositories"
	"github.com/desertthunder/homepanel/internal/shared"
	"github.com/urfave/cli/v3"
)

// eventRow is the printable form of a journaled event.
type eventRow struct {
	ID         string          `json:"id"`
	Sequence   int             `json:"sequence"`
	Class      string          `json:"class"`
	Origin     string          `json:"origin,omitempty"`
	ReceivedAt time.Time       `json:"received_at"`
	Payload    json.RawMessage `json:"payload"`
}

func toEventRow(rec *models.EventRecord) eventRow {
	payload := json.RawMessage(rec.Payload)
	if !json.Valid(payload) {
		payload, _ = json.Marshal(rec.Payload)
	}
	return eventRow{
		ID:         rec.ID(),
		Sequence:   rec.Sequence,
		Class:      rec.Class,
		Origin:     rec.Origin,
		ReceivedAt: rec.ReceivedAt,
		Payload:    payload,
	}
}

// channelPolicy builds the reconnect policy from the [channel] config section.
func (r *Runner) channelPolicy() channel.ReconnectPolicy {
	return channel.ReconnectPolicy{
		Normal: r.config.Channel.NormalDelay(),
		Error:  r.config.Channel.ErrorDelay(),
	}
}

func (r *Runner) openJournal() (*sql.DB, *repositories.EventRepository, error) {
	db, err := shared.OpenJournal(r.config.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open event journal: %w", err)
	}
	return db, repositories.NewEventRepository(db), nil
}

// EventsListen prints every event pushed on the event stream until interrupted.
func (r *Runner) EventsListen(ctx context.Context, cmd *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	filter := map[string]bool{}
	for _, class := range cmd.StringSlice("class") {
		filter[class] = true
	}
	format := cmd.String("format")

	dispatcher := events.NewDispatcher(r.logger)
	dispatcher.HandleAll(func(ev *models.Event) {
		if len(filter) > 0 && !filter[ev.Class()] {
			return
		}
		r.printEvent(format, ev)
	})

	if cmd.Bool("journal") {
		db, repo, err := r.openJournal()
		if err != nil {
			return err
		}
		defer db.Close()
		dispatcher.HandleAll(repositories.NewJournal(repo, r.clock, r.logger).Record)
	}

	url := r.config.Server.WebsocketURL()
	ch := channel.New(url, channel.Options{
		Clock:  r.clock,
		Logger: r.logger,
		Policy: r.channelPolicy(),
		OnState: func(s channel.State) {
			r.logger.Info("event channel", "state", s, "url", url)
		},
	})
	ch.RegisterObserver(dispatcher.Observe)
	ch.Connect()
	defer ch.Dispose()

	<-ctx.Done()
	return nil
}

func (r *Runner) printEvent(format string, ev *models.Event) {
	if format == "json" {
		if err := r.writeJSON(ev, false); err != nil {
			r.logger.Error("failed to print event", "error", err)
		}
		return
	}

	line := fmt.Sprintf("%s %s", r.clock.Now().Format(time.TimeOnly), ev.Class())
	if ev.Origin != "" {
		line += " from " + ev.Origin
	}
	if t := ev.Args.Track; t != nil && t.File != "" {
		line += ": " + trackLine(*t)
	} else if s := ev.Args.Status; s != nil {
		line += ": " + string(s.PlayerState())
	}
	r.writePlain("%s\n", line)
}

// EventsHistory lists journaled events, newest first.
func (r *Runner) EventsHistory(ctx context.Context, cmd *cli.Command) error {
	db, repo, err := r.openJournal()
	if err != nil {
		return err
	}
	defer db.Close()

	records, err := repo.List(int(cmd.Int("limit")), cmd.String("class"))
	if err != nil {
		return err
	}

	rows := make([]eventRow, len(records))
	for i, rec := range records {
		rows[i] = toEventRow(rec)
	}

	return r.write(cmd.String("format"), rows, func() error {
		if len(rows) == 0 {
			return r.writePlain("No events recorded\n")
		}
		for _, row := range rows {
			r.writePlain("%5d  %s  %-24s %s\n", row.Sequence, row.ReceivedAt.Local().Format(time.DateTime), row.Class, row.Origin)
		}
		return nil
	})
}

// EventsPrune removes journaled events older than --older-than.
func (r *Runner) EventsPrune(ctx context.Context, cmd *cli.Command) error {
	age := cmd.Duration("older-than")
	if age <= 0 {
		return fmt.Errorf("%w: --older-than must be positive", shared.ErrInvalidArgument)
	}

	db, repo, err := r.openJournal()
	if err != nil {
		return err
	}
	defer db.Close()

	removed, err := repo.Prune(r.clock.Now().Add(-age))
	if err != nil {
		return err
	}

	r.logger.Info("pruned event journal", "removed", removed, "older_than", age)
	return r.writePlain("✓ Removed %d events\n", removed)
}
