package media

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/desertthunder/homepanel/internal/services"
	"github.com/desertthunder/homepanel/internal/shared"
)

const (
	YouTubeName      = "youtube"
	YouTubeIconClass = "fab fa-youtube"

	ItemPlay     = "Play"
	ItemDownload = "Download"
	ItemInfo     = "View info"
)

const (
	playAction    = "media.play"
	youtubeScheme = "youtube:"
)

var youtubeHosts = []string{"youtube.com", "www.youtube.com", "m.youtube.com", "music.youtube.com", "youtu.be"}

// YouTubeOption configures the YouTube handler.
type YouTubeOption func(*Handler)

// WithIconClass overrides the handler's icon class.
func WithIconClass(class string) YouTubeOption {
	return func(h *Handler) {
		if class != "" {
			h.IconClass = class
		}
	}
}

// NewYouTubeHandler creates the YouTube handler. Play sends media.play through backend; Download and
// View info are listed but not implemented.
func NewYouTubeHandler(backend services.Backend, opts ...YouTubeOption) *Handler {
	h := &Handler{
		Name:      YouTubeName,
		IconClass: YouTubeIconClass,
		Match:     IsYouTube,
		Items: []DropdownItem{
			{Text: ItemPlay, Icon: "play", Action: youtubePlay(backend)},
			{Text: ItemDownload, Icon: "download", Action: notImplemented("download")},
			{Text: ItemInfo, Icon: "info", Action: notImplemented("info")},
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func youtubePlay(backend services.Backend) Action {
	return func(ctx context.Context, item Item) error {
		if item.Resource == "" {
			return fmt.Errorf("%w: resource", shared.ErrMissingArgument)
		}
		if backend == nil {
			return fmt.Errorf("%w: no backend", shared.ErrServiceUnavailable)
		}
		_, err := backend.Execute(ctx, playAction, map[string]any{"resource": item.Resource})
		return err
	}
}

func notImplemented(what string) Action {
	return func(ctx context.Context, item Item) error {
		return fmt.Errorf("%w: youtube %s", shared.ErrNotImplemented, what)
	}
}

// IsYouTube reports whether resource is a YouTube URL or a youtube: URI.
func IsYouTube(resource string) bool {
	resource = strings.TrimSpace(resource)
	if strings.HasPrefix(resource, youtubeScheme) {
		return true
	}

	u, err := url.Parse(resource)
	if err != nil || u.Host == "" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, h := range youtubeHosts {
		if host == h {
			return true
		}
	}
	return false
}
