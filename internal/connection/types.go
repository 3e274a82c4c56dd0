package connection

import "github.com/Prannn182/CodeCollab-Frontend/internal/actor"

// State is the loop-owned state of the connection actor.
type State struct {
	Status Status

	// Gen identifies the most recent transport instance. Every dial bumps it;
	// lifecycle events and retry timers carry the gen they belong to so stale
	// ones are ignored.
	Gen int64

	// Live reports whether the transport for Gen is still open. It drops to
	// false as soon as that transport fails, drops or is closed.
	Live bool

	// Initializing is true while a dial is in flight.
	Initializing bool

	TransportID       string
	ReconnectAttempts int
	LastError         error

	// Waiters are pending WaitForConnection calls keyed by request id. They
	// receive the transport id on the next Connected transition.
	Waiters map[uint64]chan string
}

// Snapshot returns the public view of s.
func (s State) Snapshot() Snapshot {
	return Snapshot{
		Status:            s.Status,
		ReconnectAttempts: s.ReconnectAttempts,
		TransportID:       s.TransportID,
		IsInitializing:    s.Initializing,
		LastError:         s.LastError,
	}
}

func initialState() State {
	return State{Status: StatusDisconnected}
}

// Commands

type cmdConnect struct {
	actor.InputBase
}

type cmdDisconnect struct {
	actor.InputBase
}

type cmdForceReconnect struct {
	actor.InputBase
}

type cmdAwait struct {
	actor.InputBase
	ID    uint64
	Reply chan string
}

type cmdCancelAwait struct {
	actor.InputBase
	ID uint64
}

// Events emitted by the runtime.

type evTransportUp struct {
	actor.InputBase
	Gen int64
	ID  string
}

type evTransportDown struct {
	actor.InputBase
	Gen    int64
	Reason string
}

type evTransportFailed struct {
	actor.InputBase
	Gen int64
	Err error
}

type evRetryDue struct {
	actor.InputBase
	Gen int64
}

type evRetriesExhausted struct {
	actor.InputBase
	Gen int64
}

// Effects

type effDial struct {
	actor.EffectBase
	Gen int64
}

type effClose struct {
	actor.EffectBase
	Gen int64
}

type effScheduleRetry struct {
	actor.EffectBase
	Gen int64
}

type effResetRetry struct {
	actor.EffectBase
}

type effCancelRetry struct {
	actor.EffectBase
}
