package channel

import (
	"time"

	"github.com/gorilla/websocket"
)

const (
	DefaultNormalDelay = 10 * time.Millisecond
	DefaultErrorDelay  = 5 * time.Second
)

// ReconnectPolicy maps a close code to a reconnect delay.
type ReconnectPolicy struct {
	Normal time.Duration // delay after websocket.CloseNormalClosure
	Error  time.Duration // delay after any other code
}

// DefaultPolicy returns the 10 ms / 5 s policy.
func DefaultPolicy() ReconnectPolicy {
	return ReconnectPolicy{Normal: DefaultNormalDelay, Error: DefaultErrorDelay}
}

// Delay returns the reconnect delay for code.
func (p ReconnectPolicy) Delay(code int) time.Duration {
	if code == websocket.CloseNormalClosure {
		return p.Normal
	}
	return p.Error
}
