package media

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/desertthunder/homepanel/internal/models"
	"github.com/desertthunder/homepanel/internal/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingBackend struct {
	action string
	args   map[string]any
	err    error
}

func (b *recordingBackend) Execute(ctx context.Context, action string, args map[string]any) (*models.Response, error) {
	b.action, b.args = action, args
	if b.err != nil {
		return nil, b.err
	}
	return &models.Response{Type: "response", Response: models.ResponseBody{Output: json.RawMessage("null")}}, nil
}

func TestYouTubeHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("Descriptor", func(t *testing.T) {
		h := NewYouTubeHandler(nil)

		assert.Equal(t, "youtube", h.Name)
		assert.Equal(t, "fab fa-youtube", h.IconClass)
		require.Len(t, h.Items, 3)

		texts := []string{h.Items[0].Text, h.Items[1].Text, h.Items[2].Text}
		icons := []string{h.Items[0].Icon, h.Items[1].Icon, h.Items[2].Icon}
		assert.Equal(t, []string{"Play", "Download", "View info"}, texts)
		assert.Equal(t, []string{"play", "download", "info"}, icons)
	})

	t.Run("Icon Override", func(t *testing.T) {
		assert.Equal(t, "fa fa-film", NewYouTubeHandler(nil, WithIconClass("fa fa-film")).IconClass)
		assert.Equal(t, YouTubeIconClass, NewYouTubeHandler(nil, WithIconClass("")).IconClass)
	})

	t.Run("Play", func(t *testing.T) {
		b := &recordingBackend{}
		h := NewYouTubeHandler(b)

		err := h.Run(ctx, ItemPlay, Item{Resource: "https://www.youtube.com/watch?v=dQw4w9WgXcQ"})
		require.NoError(t, err)
		assert.Equal(t, "media.play", b.action)
		assert.Equal(t, "https://www.youtube.com/watch?v=dQw4w9WgXcQ", b.args["resource"])
	})

	t.Run("Play Errors", func(t *testing.T) {
		b := &recordingBackend{err: shared.ErrAPIRequest}
		h := NewYouTubeHandler(b)

		assert.ErrorIs(t, h.Run(ctx, ItemPlay, Item{}), shared.ErrMissingArgument)
		assert.ErrorIs(t, h.Run(ctx, ItemPlay, Item{Resource: "youtube:video:1"}), shared.ErrAPIRequest)
		assert.ErrorIs(t, NewYouTubeHandler(nil).Run(ctx, ItemPlay, Item{Resource: "youtube:video:1"}), shared.ErrServiceUnavailable)
	})

	t.Run("Unimplemented Items", func(t *testing.T) {
		b := &recordingBackend{}
		h := NewYouTubeHandler(b)

		for _, text := range []string{ItemDownload, ItemInfo} {
			assert.ErrorIs(t, h.Run(ctx, text, Item{Resource: "youtube:video:1"}), shared.ErrNotImplemented)
		}
		assert.Empty(t, b.action, "expected unimplemented items not to reach the backend")
	})

	t.Run("Unknown Item", func(t *testing.T) {
		assert.ErrorIs(t, NewYouTubeHandler(nil).Run(ctx, "Delete", Item{}), shared.ErrInvalidArgument)
	})
}

func TestIsYouTube(t *testing.T) {
	tests := []struct {
		resource string
		expected bool
	}{
		{"https://www.youtube.com/watch?v=abc", true},
		{"https://youtu.be/abc", true},
		{"https://music.youtube.com/playlist?list=x", true},
		{"youtube:video:abc", true},
		{"https://vimeo.com/123", false},
		{"jazz/so_what.flac", false},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, IsYouTube(tt.resource), tt.resource)
	}
}

func TestRegistry(t *testing.T) {
	t.Run("Register And Get", func(t *testing.T) {
		r, err := NewRegistry(NewYouTubeHandler(nil))
		require.NoError(t, err)

		h, err := r.Get("youtube")
		require.NoError(t, err)
		assert.Equal(t, "youtube", h.Name)

		_, err = r.Get("vimeo")
		assert.ErrorIs(t, err, shared.ErrHandlerNotFound)
	})

	t.Run("Duplicate And Unnamed", func(t *testing.T) {
		r, err := NewRegistry()
		require.NoError(t, err)

		require.NoError(t, r.Register(NewYouTubeHandler(nil)))
		assert.ErrorIs(t, r.Register(NewYouTubeHandler(nil)), shared.ErrInvalidArgument)
		assert.ErrorIs(t, r.Register(&Handler{}), shared.ErrMissingArgument)
		assert.ErrorIs(t, r.Register(nil), shared.ErrMissingArgument)

		_, err = NewRegistry(NewYouTubeHandler(nil), NewYouTubeHandler(nil))
		assert.ErrorIs(t, err, shared.ErrInvalidArgument)
	})

	t.Run("Resolve", func(t *testing.T) {
		local := &Handler{Name: "file", Match: func(r string) bool { return r != "" && r[0] == '/' }}
		r, err := NewRegistry(local, NewYouTubeHandler(nil), &Handler{Name: "inert"})
		require.NoError(t, err)

		h, err := r.Resolve("https://youtu.be/abc")
		require.NoError(t, err)
		assert.Equal(t, "youtube", h.Name)

		h, err = r.Resolve("/music/a.flac")
		require.NoError(t, err)
		assert.Equal(t, "file", h.Name)

		_, err = r.Resolve("ftp://example.com/a")
		assert.ErrorIs(t, err, shared.ErrHandlerNotFound)
	})

	t.Run("Names", func(t *testing.T) {
		r, err := NewRegistry(&Handler{Name: "zeta"}, NewYouTubeHandler(nil), &Handler{Name: "alpha"})
		require.NoError(t, err)
		assert.Equal(t, []string{"alpha", "youtube", "zeta"}, r.Names())
	})

	t.Run("Nil Action", func(t *testing.T) {
		h := &Handler{Name: "bare", Items: []DropdownItem{{Text: "Play"}}}
		assert.ErrorIs(t, h.Run(context.Background(), "Play", Item{}), shared.ErrNotImplemented)
	})
}
