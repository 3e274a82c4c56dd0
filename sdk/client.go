// Package sdk is the client facade used by front-ends.
//
// A Client owns one connection.Manager and everything layered on it: the
// inbound router, the session store, the join notification queue, the typing
// debouncer and the outbound emitter. Front-ends call the methods below and
// render View snapshots delivered through Subscribe.
package sdk

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Prannn182/CodeCollab-Frontend/internal/actor"
	"github.com/Prannn182/CodeCollab-Frontend/internal/config"
	"github.com/Prannn182/CodeCollab-Frontend/internal/connection"
	"github.com/Prannn182/CodeCollab-Frontend/internal/notify"
	"github.com/Prannn182/CodeCollab-Frontend/internal/outbound"
	"github.com/Prannn182/CodeCollab-Frontend/internal/router"
	"github.com/Prannn182/CodeCollab-Frontend/internal/session"
	"github.com/Prannn182/CodeCollab-Frontend/internal/typing"
	"github.com/Prannn182/CodeCollab-Frontend/internal/websocket"
	"github.com/Prannn182/CodeCollab-Frontend/pkg/logger"
	"github.com/Prannn182/CodeCollab-Frontend/protocol/wire"
)

var (
	// ErrNotInRoom is returned by room commands before a successful join.
	ErrNotInRoom = errors.New("not in a room")
	// ErrJoinTimeout is returned when no room snapshot arrives in time.
	ErrJoinTimeout = errors.New("timed out waiting for room snapshot")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("client closed")
)

// View is everything a front-end renders.
type View struct {
	Connection    connection.Snapshot
	Session       session.State
	Notifications []notify.Notification
}

// Option customizes a Client.
type Option func(*options)

type options struct {
	dialer connection.Dialer
	clock  actor.Clock
}

// WithDialer replaces the transport selected by the config.
func WithDialer(d connection.Dialer) Option {
	return func(o *options) { o.dialer = d }
}

// WithClock replaces the clock used for retries, notifications and typing.
func WithClock(c actor.Clock) Option {
	return func(o *options) { o.clock = c }
}

// Client is safe for concurrent use.
type Client struct {
	cfg *config.Config

	conn   *connection.Manager
	router *router.Router
	store  *session.Store
	notes  *notify.Queue
	out    *outbound.Emitter
	typing *typing.Debouncer

	callbacks *dispatcher
	unsubs    []func()

	mu       sync.Mutex
	closed   bool
	unbind   func()
	room     *outbound.JoinRequest
	joinedOn string
	subs     map[uint64]func(View)
	nextSub  uint64
}

// New builds a Client from cfg. The connection is not opened until Connect
// or JoinRoom.
func New(cfg *config.Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := options{clock: actor.RealClock{}}
	for _, opt := range opts {
		opt(&o)
	}
	if o.dialer == nil {
		d, err := dialerFor(cfg)
		if err != nil {
			return nil, err
		}
		o.dialer = d
	}

	c := &Client{
		cfg:       cfg,
		router:    router.New(),
		notes:     notify.NewQueue(notify.WithClock(o.clock)),
		callbacks: newDispatcher(0),
		subs:      make(map[uint64]func(View)),
	}
	c.conn = connection.NewManager(o.dialer,
		connection.WithClock(o.clock),
		connection.WithRetryPolicy(connection.NewRetryPolicy(cfg.ReconnectAttempts, cfg.ReconnectDelay)),
	)
	c.conn.SetInbound(c.router.Dispatch)
	c.store = session.NewStore(session.WithJoinNotifier(func(u session.User) {
		c.notes.Push(u.Username+" joined the room", u)
	}))
	c.out = outbound.New(c.conn, cfg.JoinTimeout)
	c.typing = typing.New(c.out, typing.WithClock(o.clock))

	c.unsubs = append(c.unsubs,
		c.conn.Subscribe(c.onStatus),
		c.store.Subscribe(func(session.State) { c.publish() }),
		c.notes.Subscribe(func([]notify.Notification) { c.publish() }),
	)
	return c, nil
}

func dialerFor(cfg *config.Config) (connection.Dialer, error) {
	if cfg.Discover() {
		return nil, fmt.Errorf("server url %q must be resolved before dialing", cfg.ServerURL)
	}
	switch cfg.Transport {
	case config.TransportWebSocket:
		return websocket.NewRawDialer(websocket.RawOptions{
			ServerURL:      cfg.ServerURL,
			ConnectTimeout: cfg.ConnectTimeout,
		}), nil
	default:
		return websocket.NewDialer(websocket.Options{
			ServerURL:      cfg.ServerURL,
			ConnectTimeout: cfg.ConnectTimeout,
		}), nil
	}
}

// Connect starts connecting. It is a no-op while connected or connecting.
func (c *Client) Connect() {
	c.conn.Connect()
}

// ForceReconnect drops the current transport and dials a new one.
func (c *Client) ForceReconnect() {
	c.conn.ForceReconnect()
}

// Status returns the connection snapshot.
func (c *Client) Status() connection.Snapshot {
	return c.conn.Status()
}

// View returns the current state of every component.
func (c *Client) View() View {
	return View{
		Connection:    c.conn.Status(),
		Session:       c.store.State(),
		Notifications: c.notes.List(),
	}
}

// Subscribe registers fn for View updates. Callbacks run on a single
// goroutine, in order, and may be coalesced under load.
func (c *Client) Subscribe(fn func(View)) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs, id)
	}
}

func (c *Client) publish() {
	c.callbacks.tryDo(func() {
		c.mu.Lock()
		fns := make([]func(View), 0, len(c.subs))
		for _, fn := range c.subs {
			fns = append(fns, fn)
		}
		c.mu.Unlock()
		if len(fns) == 0 {
			return
		}
		v := c.View()
		for _, fn := range fns {
			fn(v)
		}
	})
}

// onStatus runs on the connection loop for every status change.
func (c *Client) onStatus(snap connection.Snapshot) {
	logger.Debugf("sdk: connection %s (attempts=%d)", snap.Status, snap.ReconnectAttempts)
	if snap.Connected() {
		c.mu.Lock()
		var req outbound.JoinRequest
		rejoin := c.room != nil && !c.closed && snap.TransportID != c.joinedOn
		if rejoin {
			req = *c.room
			c.joinedOn = snap.TransportID
		}
		c.mu.Unlock()
		if rejoin {
			go c.rejoin(req)
		}
	} else if c.store.State().RunOutput.Pending {
		// No code-output arrives over a dead transport.
		go c.apply(session.RunCanceled{})
	}
	c.publish()
}

// rejoin asks the server for a fresh snapshot after a reconnect.
func (c *Client) rejoin(req outbound.JoinRequest) {
	logger.Infof("sdk: rejoining room %s after reconnect", req.RoomID)
	if _, err := c.out.JoinRoom(context.Background(), req); err != nil {
		logger.Warnf("sdk: rejoin %s: %v", req.RoomID, err)
	}
}

// LeaveRoom drops room state and reconnects with a fresh transport so the
// server forgets the membership.
func (c *Client) LeaveRoom() {
	c.typing.Cancel()
	c.mu.Lock()
	if c.unbind != nil {
		c.unbind()
		c.unbind = nil
	}
	c.room = nil
	c.joinedOn = ""
	closed := c.closed
	c.mu.Unlock()

	c.store.Reset()
	c.conn.Disconnect()
	if !closed {
		c.conn.Connect()
	}
}

// EditCode records a local edit, sends it and marks the user as typing.
func (c *Client) EditCode(code string) error {
	if err := c.requireRoom(); err != nil {
		return err
	}
	if err := c.store.Apply(context.Background(), session.LocalEdit{Code: code}); err != nil {
		return err
	}
	c.out.CodeChange(code)
	c.typing.Keystroke()
	return nil
}

// MoveCursor sends the local caret position.
func (c *Client) MoveCursor(cur session.Cursor) error {
	if err := c.requireRoom(); err != nil {
		return err
	}
	c.out.CursorUpdate(cur)
	return nil
}

// Keystroke feeds the typing indicator without changing the document.
func (c *Client) Keystroke() {
	c.typing.Keystroke()
}

// SendChat ends the typing indicator and sends a chat message.
func (c *Client) SendChat(text string) error {
	if err := c.requireRoom(); err != nil {
		return err
	}
	c.typing.Flush()
	return c.out.ChatMessage(text)
}

// ChangeLanguage asks the server to switch the room language.
func (c *Client) ChangeLanguage(language string) error {
	if err := c.requireRoom(); err != nil {
		return err
	}
	return c.out.LanguageChange(language)
}

// RunCode runs the current document in the current language.
func (c *Client) RunCode() error {
	if err := c.requireRoom(); err != nil {
		return err
	}
	doc := c.store.State().Document
	if err := wire.ValidateLanguage(doc.Language); err != nil {
		return err
	}
	if !c.conn.Status().Connected() {
		return connection.ErrNotConnected
	}
	if err := c.store.Apply(context.Background(), session.RunRequested{}); err != nil {
		return err
	}
	if err := c.out.RunCode(doc.Code, doc.Language); err != nil {
		c.apply(session.RunCanceled{})
		return err
	}
	// A drop between the check and the send loses the result.
	if !c.conn.Status().Connected() {
		c.apply(session.RunCanceled{})
		return connection.ErrNotConnected
	}
	return nil
}

// RequestRoomInfo asks the server for room details.
func (c *Client) RequestRoomInfo() {
	c.out.GetRoomInfo()
}

func (c *Client) requireRoom() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if c.room == nil {
		return ErrNotInRoom
	}
	return nil
}

// Close stops every component. Subscribers receive no further updates.
func (c *Client) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	if c.unbind != nil {
		c.unbind()
		c.unbind = nil
	}
	c.room = nil
	c.mu.Unlock()

	c.typing.Cancel()
	for _, unsub := range c.unsubs {
		unsub()
	}
	c.notes.Close()
	c.conn.Close()
	c.store.Close()
	c.callbacks.close()
}
