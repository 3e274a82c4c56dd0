// Package websocket provides the transports the connection manager dials:
// a Socket.IO client for the room server and a plain WebSocket client
// speaking a JSON event envelope.
package websocket

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Prannn182/CodeCollab-Frontend/internal/connection"
	"github.com/Prannn182/CodeCollab-Frontend/pkg/logger"
	"github.com/Prannn182/CodeCollab-Frontend/protocol/wire"
	socket "github.com/zishang520/socket.io/clients/socket/v3"
	"github.com/zishang520/socket.io/v3/pkg/types"
)

// Options configure a Socket.IO transport.
type Options struct {
	// ServerURL is the base URL of the room server.
	ServerURL string
	// Path is the Socket.IO endpoint path. Defaults to "/socket.io/".
	Path string
	// ConnectTimeout bounds the handshake.
	ConnectTimeout time.Duration
	// Auth is sent with the connect packet.
	Auth map[string]any
}

// Client is a single-use Socket.IO transport. Automatic reconnection in the
// Socket.IO manager is disabled: a failed Client is discarded and the
// connection manager dials a new one.
type Client struct {
	opts     Options
	listener connection.Listener

	mu        sync.RWMutex
	socket    *socket.Socket
	closed    bool
	closeOnce sync.Once
}

var _ connection.Transport = (*Client)(nil)

// NewDialer returns a connection.Dialer producing Socket.IO clients.
func NewDialer(opts Options) connection.Dialer {
	return func(l connection.Listener) (connection.Transport, error) {
		if opts.ServerURL == "" {
			return nil, errors.New("websocket: missing server url")
		}
		return &Client{opts: opts, listener: l}, nil
	}
}

// Open implements connection.Transport.
func (c *Client) Open() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return errors.New("websocket: client closed")
	}
	c.mu.Unlock()

	path := c.opts.Path
	if path == "" {
		path = "/socket.io/"
	}
	logger.Debugf("socket.io: connecting to %s (path: %s)", c.opts.ServerURL, path)

	opts := socket.DefaultOptions()
	opts.SetPath(path)
	opts.SetTransports(types.NewSet(socket.Polling, socket.WebSocket))
	opts.SetForceNew(true)
	opts.SetReconnection(false)
	if c.opts.ConnectTimeout > 0 {
		opts.SetTimeout(c.opts.ConnectTimeout)
	}
	if len(c.opts.Auth) > 0 {
		opts.SetAuth(c.opts.Auth)
	}

	sock, err := socket.Connect(c.opts.ServerURL, opts)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		sock.Disconnect()
		return errors.New("websocket: client closed")
	}
	c.socket = sock
	c.mu.Unlock()

	sock.On(types.EventName("connect"), func(args ...any) {
		logger.Debugf("socket.io: connected id=%s", sock.Id())
		if c.listener.OnConnect != nil {
			c.listener.OnConnect(string(sock.Id()))
		}
	})

	sock.On(types.EventName("disconnect"), func(args ...any) {
		reason := ""
		if len(args) > 0 {
			if r, ok := args[0].(string); ok {
				reason = r
			} else {
				reason = fmt.Sprint(args[0])
			}
		}
		logger.Debugf("socket.io: disconnected: %s", reason)
		if c.listener.OnDisconnect != nil {
			c.listener.OnDisconnect(reason)
		}
	})

	sock.On(types.EventName("connect_error"), func(args ...any) {
		err := errors.New("connect error")
		if len(args) > 0 {
			if e, ok := args[0].(error); ok {
				err = e
			} else {
				err = fmt.Errorf("%v", args[0])
			}
		}
		logger.Debugf("socket.io: connection error: %v", err)
		if c.listener.OnConnectError != nil {
			c.listener.OnConnectError(err)
		}
	})

	for _, name := range wire.InboundEvents {
		event := name
		sock.On(types.EventName(event), func(args ...any) {
			var arg any
			if len(args) > 0 {
				arg = args[0]
			}
			data, err := wire.Normalize(arg)
			if err != nil {
				logger.Warnf("socket.io: dropping %s: %v", event, err)
				return
			}
			logger.Tracef("socket.io: received %s", event)
			// Delivered inline so events reach the router in wire order.
			if c.listener.OnEvent != nil {
				c.listener.OnEvent(event, data)
			}
		})
	}
	return nil
}

// Emit implements connection.Transport.
func (c *Client) Emit(event string, payload any) error {
	c.mu.RLock()
	sock := c.socket
	c.mu.RUnlock()

	if sock == nil || !sock.Connected() {
		return connection.ErrNotConnected
	}
	logger.Tracef("socket.io: sending %s", event)
	if payload == nil {
		sock.Emit(event)
		return nil
	}
	sock.Emit(event, payload)
	return nil
}

// ID implements connection.Transport.
func (c *Client) ID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.socket == nil {
		return ""
	}
	return string(c.socket.Id())
}

// Close implements connection.Transport.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		sock := c.socket
		c.socket = nil
		c.mu.Unlock()
		if sock != nil {
			sock.Disconnect()
		}
	})
}
