package events

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/homepanel/internal/models"
	"github.com/desertthunder/homepanel/internal/shared"
)

// Parse interprets a decoded payload as an event envelope.
//
// payload may be a value produced by the channel's decoder (map[string]any, []byte holding JSON),
// a JSON string, or an already parsed event. Payloads whose "type" is not "event" or that carry no
// event class fail with [shared.ErrNotAnEvent].
func Parse(payload any) (*models.Event, error) {
	var ev models.Event

	switch p := payload.(type) {
	case *models.Event:
		if p == nil {
			return nil, fmt.Errorf("%w: nil event", shared.ErrNotAnEvent)
		}
		ev = *p
	case models.Event:
		ev = p
	case []byte:
		if err := json.Unmarshal(p, &ev); err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrDecode, err)
		}
	case string:
		if err := json.Unmarshal([]byte(p), &ev); err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrDecode, err)
		}
	case map[string]any:
		data, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrDecode, err)
		}
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrDecode, err)
		}
	default:
		return nil, fmt.Errorf("%w: unexpected payload %T", shared.ErrNotAnEvent, payload)
	}

	if ev.Type != "event" {
		return nil, fmt.Errorf("%w: type %q", shared.ErrNotAnEvent, ev.Type)
	}
	if ev.Args.Type == "" {
		return nil, fmt.Errorf("%w: missing event class", shared.ErrNotAnEvent)
	}
	return &ev, nil
}

// Handler receives parsed events.
type Handler func(ev *models.Event)

// Dispatcher routes events to handlers by class. Its [Dispatcher.Observe] method is a channel observer.
type Dispatcher struct {
	logger *log.Logger

	mu      sync.RWMutex
	byClass map[string][]Handler
	all     []Handler
}

func NewDispatcher(logger *log.Logger) *Dispatcher {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Dispatcher{
		logger:  shared.WithLogger(logger, "component", "dispatcher"),
		byClass: map[string][]Handler{},
	}
}

// Handle registers h for each of the given fully qualified classes.
func (d *Dispatcher) Handle(h Handler, classes ...string) {
	if h == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, c := range classes {
		d.byClass[c] = append(d.byClass[c], h)
	}
}

// HandleAll registers h for every event regardless of class.
func (d *Dispatcher) HandleAll(h Handler) {
	if h == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.all = append(d.all, h)
}

// Observe parses payload and calls the matching handlers: class handlers first, then catch-all
// handlers, each group in registration order. Payloads that are not events are ignored. A panicking
// handler is logged and the remaining handlers still run.
func (d *Dispatcher) Observe(payload any) {
	ev, err := Parse(payload)
	if err != nil {
		d.logger.Debug("ignoring payload", "error", err)
		return
	}

	d.mu.RLock()
	handlers := make([]Handler, 0, len(d.byClass[ev.Args.Type])+len(d.all))
	handlers = append(handlers, d.byClass[ev.Args.Type]...)
	handlers = append(handlers, d.all...)
	d.mu.RUnlock()

	d.logger.Debug("dispatching event", "class", ev.Class(), "handlers", len(handlers))
	for i, h := range handlers {
		d.call(i, h, ev)
	}
}

func (d *Dispatcher) call(i int, h Handler, ev *models.Event) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("event handler panicked", "handler", i, "class", ev.Class(), "panic", r)
		}
	}()
	h(ev)
}
