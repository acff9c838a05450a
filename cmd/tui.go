package main

import (
	"context"
	"fmt"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/homepanel/internal/channel"
	"github.com/desertthunder/homepanel/internal/events"
	"github.com/desertthunder/homepanel/internal/models"
	"github.com/desertthunder/homepanel/internal/player"
	"github.com/desertthunder/homepanel/internal/shared"
	"github.com/desertthunder/homepanel/internal/ui"
	"github.com/urfave/cli/v3"
)

const defaultTUILog = "./tmp/homepanel-tui.log"

// TUI launches the interactive panel. Events from the event stream update the player tab while it runs.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if r.music == nil || r.engine == nil {
		return fmt.Errorf("%w: music service not initialized", shared.ErrServiceUnavailable)
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	path := r.config.Log.File
	if path == "" {
		path = defaultTUILog
	}
	fileLogger, err := shared.NewFileLogger(path)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	if r.config.Log.Level != "" {
		if lvl, err := shared.ParseLogLevel(r.config.Log.Level); err == nil {
			shared.SetLogLevel(fileLogger, lvl)
		}
	}
	r.SetLogger(fileLogger)

	// Senders fire from channel and estimator goroutines, possibly before the program exists.
	var program atomic.Pointer[tea.Program]
	send := func(msg tea.Msg) {
		if p := program.Load(); p != nil {
			p.Send(msg)
		}
	}

	views := newViewForwarder(send)
	go views.run(ctx)
	defer views.stop()

	controller := player.New(r.music, player.Options{
		Clock:    r.clock,
		Logger:   r.logger,
		OnChange: views.push,
	})
	defer controller.Close()

	dispatcher := events.NewDispatcher(r.logger)
	dispatcher.Handle(controller.HandleEvent, events.MusicClasses...)
	dispatcher.HandleAll(func(ev *models.Event) {
		send(ui.EventMsg(ev, r.clock.Now()))
	})

	ch := channel.New(r.config.Server.WebsocketURL(), channel.Options{
		Clock:   r.clock,
		Logger:  r.logger,
		Policy:  r.channelPolicy(),
		OnState: func(s channel.State) { send(ui.ConnectionMsg(s)) },
	})
	ch.RegisterObserver(dispatcher.Observe)
	defer ch.Dispose()

	model := ui.NewModel(ctx, ui.Deps{
		Player:  controller,
		Library: r.music,
		Loader:  r.engine,
		Clock:   r.clock,
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	program.Store(p)

	ch.Connect()
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

// viewForwarder hands player views to the program without blocking the caller. The program's own
// Update applies loaded status, so a blocking Send there would deadlock. Only the latest view is kept.
type viewForwarder struct {
	send   func(tea.Msg)
	latest atomic.Pointer[player.View]
	notify chan struct{}
	done   chan struct{}
}

func newViewForwarder(send func(tea.Msg)) *viewForwarder {
	return &viewForwarder{
		send:   send,
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

func (f *viewForwarder) push(v player.View) {
	f.latest.Store(&v)
	select {
	case f.notify <- struct{}{}:
	default:
	}
}

func (f *viewForwarder) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-f.done:
			return
		case <-f.notify:
			if v := f.latest.Load(); v != nil {
				f.send(ui.PlayerChangedMsg(*v))
			}
		}
	}
}

func (f *viewForwarder) stop() {
	close(f.done)
}
