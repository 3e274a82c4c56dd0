package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/Prannn182/CodeCollab-Frontend/internal/connection"
	"github.com/Prannn182/CodeCollab-Frontend/pkg/logger"
	"github.com/google/uuid"
	gws "github.com/gorilla/websocket"
)

// Envelope is the frame format of the plain WebSocket transport. Every text
// frame carries exactly one event in either direction.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// RawOptions configure a RawClient.
type RawOptions struct {
	// ServerURL is the http(s) or ws(s) URL of the server.
	ServerURL string
	// Path is appended to the server URL. Defaults to "/ws".
	Path string
	// ConnectTimeout bounds the handshake.
	ConnectTimeout time.Duration
}

// RawClient is a single-use transport over a bare WebSocket. The client picks
// its own connection id and sends it as the clientId query parameter.
type RawClient struct {
	opts     RawOptions
	listener connection.Listener
	id       string

	mu     sync.Mutex
	conn   *gws.Conn
	closed bool
	cancel context.CancelFunc

	writeMu sync.Mutex
}

var _ connection.Transport = (*RawClient)(nil)

// NewRawDialer returns a connection.Dialer producing RawClients.
func NewRawDialer(opts RawOptions) connection.Dialer {
	return func(l connection.Listener) (connection.Transport, error) {
		if opts.ServerURL == "" {
			return nil, errors.New("websocket: missing server url")
		}
		return &RawClient{opts: opts, listener: l, id: uuid.NewString()}, nil
	}
}

// endpoint maps the configured server URL onto a ws(s) URL.
func (c *RawClient) endpoint() (string, error) {
	u, err := url.Parse(c.opts.ServerURL)
	if err != nil {
		return "", fmt.Errorf("parse server url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	path := c.opts.Path
	if path == "" {
		path = "/ws"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + path
	q := u.Query()
	q.Set("clientId", c.id)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Open implements connection.Transport. It blocks for the handshake and
// reports the outcome through the listener.
func (c *RawClient) Open() error {
	endpoint, err := c.endpoint()
	if err != nil {
		return err
	}

	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if c.opts.ConnectTimeout > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), c.opts.ConnectTimeout)
	} else {
		ctx, cancel = context.WithCancel(context.Background())
	}
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		cancel()
		return errors.New("websocket: client closed")
	}
	c.cancel = cancel
	c.mu.Unlock()

	logger.Debugf("websocket: dialing %s", endpoint)
	conn, _, err := gws.DefaultDialer.DialContext(ctx, endpoint, nil)
	cancel()
	if err != nil {
		if c.listener.OnConnectError != nil {
			c.listener.OnConnectError(err)
		}
		return nil
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		_ = conn.Close()
		return nil
	}
	c.conn = conn
	c.mu.Unlock()

	if c.listener.OnConnect != nil {
		c.listener.OnConnect(c.id)
	}
	go c.readPump(conn)
	return nil
}

func (c *RawClient) readPump(conn *gws.Conn) {
	reason := "transport close"
	defer func() {
		_ = conn.Close()
		c.mu.Lock()
		if c.closed {
			reason = "io client disconnect"
		}
		c.mu.Unlock()
		if c.listener.OnDisconnect != nil {
			c.listener.OnDisconnect(reason)
		}
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if gws.IsCloseError(err, gws.CloseNormalClosure, gws.CloseGoingAway) {
				reason = "io server disconnect"
			}
			return
		}
		var env Envelope
		if err := json.Unmarshal(msg, &env); err != nil || env.Event == "" {
			logger.Warnf("websocket: dropping malformed frame: %v", err)
			continue
		}
		data := env.Data
		if len(data) == 0 {
			data = json.RawMessage("null")
		}
		logger.Tracef("websocket: received %s", env.Event)
		if c.listener.OnEvent != nil {
			c.listener.OnEvent(env.Event, data)
		}
	}
}

// Emit implements connection.Transport.
func (c *RawClient) Emit(event string, payload any) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return connection.ErrNotConnected
	}

	env := Envelope{Event: event}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", event, err)
		}
		env.Data = data
	}
	frame, err := json.Marshal(env)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return conn.WriteMessage(gws.TextMessage, frame)
}

// ID implements connection.Transport.
func (c *RawClient) ID() string { return c.id }

// Close implements connection.Transport.
func (c *RawClient) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	conn := c.conn
	cancel := c.cancel
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if conn == nil {
		return
	}
	c.writeMu.Lock()
	_ = conn.WriteControl(gws.CloseMessage,
		gws.FormatCloseMessage(gws.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	c.writeMu.Unlock()
	_ = conn.Close()
}
