package media

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/desertthunder/homepanel/internal/shared"
)

// Item is the media resource a dropdown action runs against.
type Item struct {
	Resource string `json:"resource"`
	Title    string `json:"title,omitempty"`
}

// Action runs a dropdown entry against an item.
type Action func(ctx context.Context, item Item) error

// DropdownItem is one entry of a handler's context menu.
type DropdownItem struct {
	Text   string
	Icon   string
	Action Action
}

// Handler describes how the panel presents and acts on one kind of media resource.
type Handler struct {
	Name      string
	IconClass string
	Items     []DropdownItem
	// Match reports whether the handler can act on resource. A nil Match accepts nothing.
	Match func(resource string) bool
}

// Item returns the dropdown entry with the given text.
func (h *Handler) Item(text string) (DropdownItem, bool) {
	for _, it := range h.Items {
		if it.Text == text {
			return it, true
		}
	}
	return DropdownItem{}, false
}

// Run executes the dropdown entry named text.
func (h *Handler) Run(ctx context.Context, text string, item Item) error {
	it, ok := h.Item(text)
	if !ok {
		return fmt.Errorf("%w: %s has no action %q", shared.ErrInvalidArgument, h.Name, text)
	}
	if it.Action == nil {
		return fmt.Errorf("%w: %s %s", shared.ErrNotImplemented, h.Name, text)
	}
	return it.Action(ctx, item)
}

// Accepts reports whether h can act on resource.
func (h *Handler) Accepts(resource string) bool {
	return h.Match != nil && h.Match(resource)
}

// Registry holds handlers by name.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]*Handler
}

func NewRegistry(handlers ...*Handler) (*Registry, error) {
	r := &Registry{handlers: map[string]*Handler{}}
	for _, h := range handlers {
		if err := r.Register(h); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds h. Names must be unique and non-empty.
func (r *Registry) Register(h *Handler) error {
	if h == nil || h.Name == "" {
		return fmt.Errorf("%w: handler name", shared.ErrMissingArgument)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.handlers[h.Name]; ok {
		return fmt.Errorf("%w: handler %q already registered", shared.ErrInvalidArgument, h.Name)
	}
	r.handlers[h.Name] = h
	return nil
}

// Get returns the handler registered as name.
func (r *Registry) Get(name string) (*Handler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrHandlerNotFound, name)
	}
	return h, nil
}

// Resolve returns the first handler, by name, that accepts resource.
func (r *Registry) Resolve(resource string) (*Handler, error) {
	for _, name := range r.Names() {
		h, err := r.Get(name)
		if err == nil && h.Accepts(resource) {
			return h, nil
		}
	}
	return nil, fmt.Errorf("%w: no handler for %s", shared.ErrHandlerNotFound, resource)
}

// Names returns the registered handler names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
