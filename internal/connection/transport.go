package connection

import "encoding/json"

// Transport is one connection attempt to the room server. A Transport is
// single-use: once it fails or is closed, the manager dials a new one.
type Transport interface {
	// Open starts connecting. Outcomes are reported through the Listener
	// the transport was created with. Open may block while dialing.
	Open() error
	// Close tears the transport down. It must be safe to call more than once
	// and from any goroutine.
	Close()
	// Emit sends a named event with a JSON-encodable payload.
	Emit(event string, payload any) error
	// ID returns the server-assigned connection id once connected.
	ID() string
}

// Listener receives transport lifecycle callbacks and inbound events.
// Implementations invoke callbacks in delivery order.
type Listener struct {
	OnConnect      func(id string)
	OnDisconnect   func(reason string)
	OnConnectError func(err error)
	OnEvent        func(event string, data json.RawMessage)
}

// Dialer constructs a Transport bound to a Listener. It must not start
// connecting; the manager calls Open once the transport is registered.
type Dialer func(l Listener) (Transport, error)
