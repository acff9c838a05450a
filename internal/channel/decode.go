package channel

import (
	"encoding/json"
	"fmt"

	"github.com/desertthunder/homepanel/internal/shared"
	"github.com/gorilla/websocket"
)

// Frame is one message read from the connection.
type Frame struct {
	Kind int // websocket.TextMessage or websocket.BinaryMessage
	Data []byte
}

// Decode turns a frame into the value handed to observers.
//
// Text frames must hold valid JSON and decode to map[string]any, []any, string, float64, bool, or nil.
// Binary frames are returned as the raw []byte.
func Decode(f Frame) (any, error) {
	switch f.Kind {
	case websocket.TextMessage:
		var v any
		if err := json.Unmarshal(f.Data, &v); err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrDecode, err)
		}
		return v, nil
	case websocket.BinaryMessage:
		return f.Data, nil
	default:
		return nil, fmt.Errorf("%w: unsupported frame kind %d", shared.ErrDecode, f.Kind)
	}
}
