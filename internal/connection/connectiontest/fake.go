// Package connectiontest provides an in-memory Transport for tests of code
// built on a connection.Manager.
package connectiontest

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Prannn182/CodeCollab-Frontend/internal/connection"
)

// Sent is one event emitted through a fake transport.
type Sent struct {
	Event   string
	Payload json.RawMessage
}

// Transport is a scripted connection.Transport. Tests drive its lifecycle
// with Up, Fail and Drop and inject server events with Deliver.
type Transport struct {
	listener connection.Listener
	onEmit   func(*Transport, Sent)

	mu     sync.Mutex
	id     string
	closed bool
	sent   []Sent
}

// Dialer hands out fake transports and records every one it opens.
type Dialer struct {
	// AutoConnectID, when set, makes each transport connect on Open with
	// this id.
	AutoConnectID string
	// OnEmit, when set, sees every event a transport sends. It runs on the
	// sender's goroutine and may call Deliver to script server replies.
	OnEmit func(t *Transport, s Sent)

	opened chan *Transport
	mu     sync.Mutex
	all    []*Transport
}

// NewDialer returns an empty Dialer.
func NewDialer() *Dialer {
	return &Dialer{opened: make(chan *Transport, 64)}
}

// Dial implements connection.Dialer.
func (d *Dialer) Dial(l connection.Listener) (connection.Transport, error) {
	t := &Transport{listener: l, onEmit: d.OnEmit}
	d.mu.Lock()
	d.all = append(d.all, t)
	d.mu.Unlock()
	return &dialed{Transport: t, dialer: d}, nil
}

// Count returns how many transports were dialed.
func (d *Dialer) Count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.all)
}

// NextOpened waits for the next transport to be opened.
func (d *Dialer) NextOpened(t testing.TB) *Transport {
	t.Helper()
	select {
	case tr := <-d.opened:
		return tr
	case <-time.After(2 * time.Second):
		t.Fatalf("timeout waiting for transport to open")
		return nil
	}
}

// dialed is the connection.Transport handed to the manager. Open reports the
// transport to the Dialer.
type dialed struct {
	*Transport
	dialer *Dialer
}

func (d *dialed) Open() error {
	d.dialer.opened <- d.Transport
	if id := d.dialer.AutoConnectID; id != "" {
		d.Up(id)
	}
	return nil
}

// Up reports a successful handshake with the given id.
func (t *Transport) Up(id string) {
	t.mu.Lock()
	t.id = id
	t.mu.Unlock()
	if t.listener.OnConnect != nil {
		t.listener.OnConnect(id)
	}
}

// Fail reports a failed connection attempt.
func (t *Transport) Fail(err error) {
	if err == nil {
		err = errors.New("connect failed")
	}
	if t.listener.OnConnectError != nil {
		t.listener.OnConnectError(err)
	}
}

// Drop reports that a live link went away.
func (t *Transport) Drop(reason string) {
	if t.listener.OnDisconnect != nil {
		t.listener.OnDisconnect(reason)
	}
}

// Deliver injects a server event. payload is marshalled to JSON.
func (t *Transport) Deliver(event string, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		panic(err)
	}
	if t.listener.OnEvent != nil {
		t.listener.OnEvent(event, raw)
	}
}

// Close implements connection.Transport.
func (t *Transport) Close() {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()
}

// Closed reports whether Close was called.
func (t *Transport) Closed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

// Emit implements connection.Transport.
func (t *Transport) Emit(event string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return errors.New("transport closed")
	}
	sent := Sent{Event: event, Payload: raw}
	t.sent = append(t.sent, sent)
	t.mu.Unlock()

	if t.onEmit != nil {
		t.onEmit(t, sent)
	}
	return nil
}

// ID implements connection.Transport.
func (t *Transport) ID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.id
}

// Sent returns a copy of everything emitted so far.
func (t *Transport) Sent() []Sent {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Sent, len(t.sent))
	copy(out, t.sent)
	return out
}
