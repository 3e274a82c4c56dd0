package connection

import "errors"

var (
	// ErrConnectionTimeout is returned by WaitForConnection when the
	// transport does not reach Connected within the requested bound.
	ErrConnectionTimeout = errors.New("connection timeout")
	// ErrMaxAttemptsExceeded is recorded as Snapshot.LastError when the
	// automatic retry ceiling is hit and the manager moves to Failed.
	ErrMaxAttemptsExceeded = errors.New("max reconnect attempts exceeded")
	// ErrNotConnected is returned by Emit while the status is not Connected.
	ErrNotConnected = errors.New("not connected")
	// ErrClosed is returned by operations on a closed Manager.
	ErrClosed = errors.New("connection manager closed")
)

// DropError records why a live transport went away.
type DropError struct {
	Reason string
}

func (e *DropError) Error() string {
	return "transport dropped: " + e.Reason
}
