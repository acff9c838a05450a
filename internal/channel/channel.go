package channel

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/homepanel/internal/clock"
	"github.com/desertthunder/homepanel/internal/shared"
	"github.com/gorilla/websocket"
)

// State is the connection state of a [Channel].
type State int

const (
	StateClosed State = iota
	StateConnecting
	StateOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Observer receives each decoded frame. See [Decode] for the payload types.
type Observer func(payload any)

// Options configures a [Channel]. Zero values are replaced by defaults.
type Options struct {
	Dialer  Dialer          // defaults to a [WebsocketDialer]
	Clock   clock.Clock     // defaults to [clock.Real]
	Logger  *log.Logger     // defaults to [shared.NewLogger]
	Policy  ReconnectPolicy // defaults to [DefaultPolicy]
	OnState func(State)     // called after every state transition, outside the channel's lock
}

// Channel owns one persistent connection to the event stream at a time.
type Channel struct {
	url     string
	dialer  Dialer
	clock   clock.Clock
	logger  *log.Logger
	policy  ReconnectPolicy
	onState func(State)

	ctx    context.Context
	cancel context.CancelFunc

	mu           sync.Mutex
	state        State
	conn         Conn
	observers    []Observer
	reconnect    clock.Timer
	reconnectGen uint64
	disposed     bool
}

// New creates a [Channel] for the websocket at url. Nothing is dialed until [Channel.Connect].
func New(url string, opts Options) *Channel {
	if opts.Dialer == nil {
		opts.Dialer = NewWebsocketDialer(0)
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Policy == (ReconnectPolicy{}) {
		opts.Policy = DefaultPolicy()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Channel{
		url:     url,
		dialer:  opts.Dialer,
		clock:   opts.Clock,
		logger:  shared.WithLogger(opts.Logger, "component", "channel"),
		policy:  opts.Policy,
		onState: opts.OnState,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Connect starts a connection attempt unless one is already connecting or open, or the channel is disposed.
// The dial runs in the background; its outcome shows up as a state transition.
func (c *Channel) Connect() {
	c.mu.Lock()
	if c.disposed || c.state != StateClosed {
		c.mu.Unlock()
		return
	}
	c.state = StateConnecting
	c.mu.Unlock()

	c.emitState(StateConnecting)
	go c.dial()
}

// RegisterObserver appends o to the observer registry. Registering the same observer twice delivers twice.
func (c *Channel) RegisterObserver(o Observer) {
	if o == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, o)
}

// State returns the current connection state.
func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Pending reports whether a reconnect is scheduled.
func (c *Channel) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reconnect != nil
}

// Dispose closes the connection, cancels any pending reconnect, and stops the channel for good.
func (c *Channel) Dispose() {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	c.disposed = true
	c.cancelReconnect()
	conn := c.conn
	c.conn = nil
	prev := c.state
	c.state = StateClosed
	c.mu.Unlock()

	c.cancel()
	if conn != nil {
		conn.Close()
	}
	if prev != StateClosed {
		c.emitState(StateClosed)
	}
	c.logger.Debug("channel disposed")
}

func (c *Channel) dial() {
	c.logger.Debug("connecting", "url", c.url)

	conn, err := c.dialer.Dial(c.ctx, c.url)
	if err != nil {
		c.logger.Error("websocket connection failed", "url", c.url, "error", err)
		c.onClose(websocket.CloseAbnormalClosure)
		return
	}

	if !c.onOpen(conn) {
		conn.Close()
		return
	}
	c.readLoop(conn)
}

// readLoop delivers frames until the connection fails; frames from one connection are handled in wire order.
func (c *Channel) readLoop(conn Conn) {
	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			conn.Close()
			c.onClose(closeCode(err))
			return
		}
		c.onMessage(Frame{Kind: kind, Data: data})
	}
}

func (c *Channel) onOpen(conn Conn) bool {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return false
	}
	c.cancelReconnect()
	c.conn = conn
	c.state = StateOpen
	c.mu.Unlock()

	c.logger.Info("websocket connection successful", "url", c.url)
	c.emitState(StateOpen)
	return true
}

func (c *Channel) onMessage(f Frame) {
	payload, err := Decode(f)
	if err != nil {
		c.logger.Warn("dropping malformed frame", "error", err, "bytes", len(f.Data))
		return
	}

	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	observers := make([]Observer, len(c.observers))
	copy(observers, c.observers)
	c.mu.Unlock()

	for i, o := range observers {
		c.notify(i, o, payload)
	}
}

func (c *Channel) notify(i int, o Observer, payload any) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("observer panicked", "observer", i, "panic", r)
		}
	}()
	o(payload)
}

func (c *Channel) onClose(code int) {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	c.conn = nil
	c.state = StateClosed
	delay := c.policy.Delay(code)
	c.scheduleReconnect(delay)
	c.mu.Unlock()

	c.logger.Info("websocket closed", "code", code, "reconnect_in", delay)
	c.emitState(StateClosed)
}

// scheduleReconnect replaces any pending reconnect with one firing after d. Callers hold c.mu.
func (c *Channel) scheduleReconnect(d time.Duration) {
	c.cancelReconnect()
	gen := c.reconnectGen
	c.reconnect = c.clock.AfterFunc(d, func() { c.fireReconnect(gen) })
}

// cancelReconnect stops the pending reconnect, if any. Callers hold c.mu.
func (c *Channel) cancelReconnect() {
	c.reconnectGen++
	if c.reconnect != nil {
		c.reconnect.Stop()
		c.reconnect = nil
	}
}

func (c *Channel) fireReconnect(gen uint64) {
	c.mu.Lock()
	if c.disposed || gen != c.reconnectGen {
		c.mu.Unlock()
		return
	}
	c.reconnect = nil
	c.mu.Unlock()

	c.Connect()
}

func (c *Channel) emitState(s State) {
	if c.onState != nil {
		c.onState(s)
	}
}
