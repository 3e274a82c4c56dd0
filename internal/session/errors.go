package session

import (
	"errors"
	"fmt"
)

// ErrInvalidSnapshot is wrapped by the ProtocolError returned for a
// room-joined payload without a room id or user list.
var ErrInvalidSnapshot = errors.New("invalid room snapshot")

// ProtocolError reports an inbound payload that could not be applied. It is
// logged and dropped; it never tears down the connection.
type ProtocolError struct {
	Event  string
	Reason string
	Err    error
}

func (e *ProtocolError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("protocol error on %s: %v", e.Event, e.Err)
	}
	return fmt.Sprintf("protocol error on %s: %s", e.Event, e.Reason)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// ApplicationError is a rejection reported by the server, such as a refused
// join.
type ApplicationError struct {
	Message string
}

func (e *ApplicationError) Error() string {
	return "server error: " + e.Message
}
