package connection

import (
	"errors"
	"testing"

	"github.com/Prannn182/CodeCollab-Frontend/internal/actor"
	"github.com/stretchr/testify/require"
)

func TestReduceConnectIsIdempotent(t *testing.T) {
	t.Parallel()

	s, effects := Reduce(initialState(), cmdConnect{})
	require.Equal(t, StatusConnecting, s.Status)
	require.True(t, s.Initializing)
	require.Equal(t, []actor.Effect{effResetRetry{}, effDial{Gen: 1}}, effects)

	again, effects := Reduce(s, cmdConnect{})
	require.Empty(t, effects)
	require.Equal(t, s.Gen, again.Gen)

	up, _ := Reduce(s, evTransportUp{Gen: 1, ID: "sock-1"})
	_, effects = Reduce(up, cmdConnect{})
	require.Empty(t, effects)
}

func TestReduceIgnoresStaleGeneration(t *testing.T) {
	t.Parallel()

	s, _ := actor.Replay(initialState(), Reduce,
		cmdConnect{},
		cmdForceReconnect{},
	)
	require.Equal(t, int64(2), s.Gen)

	next, effects := Reduce(s, evTransportUp{Gen: 1, ID: "old"})
	require.Empty(t, effects)
	require.Equal(t, StatusConnecting, next.Status)

	next, effects = Reduce(s, evTransportFailed{Gen: 1, Err: errors.New("boom")})
	require.Empty(t, effects)
	require.Zero(t, next.ReconnectAttempts)
}

func TestReduceFailureSchedulesRetry(t *testing.T) {
	t.Parallel()

	boom := errors.New("refused")
	s, effects := actor.Replay(initialState(), Reduce,
		cmdConnect{},
		evTransportFailed{Gen: 1, Err: boom},
	)
	require.Equal(t, StatusReconnecting, s.Status)
	require.False(t, s.Initializing)
	require.Equal(t, 1, s.ReconnectAttempts)
	require.ErrorIs(t, s.LastError, boom)
	require.Equal(t, []actor.Effect{
		effResetRetry{}, effDial{Gen: 1},
		effClose{Gen: 1}, effScheduleRetry{Gen: 1},
	}, effects)

	// The close of the failed transport reports a disconnect; it is stale.
	same, effects := Reduce(s, evTransportDown{Gen: 1, Reason: "io client disconnect"})
	require.Empty(t, effects)
	require.Equal(t, 1, same.ReconnectAttempts)

	// Connect is a no-op while the retry policy owns the cycle.
	_, effects = Reduce(s, cmdConnect{})
	require.Empty(t, effects)

	s, effects = Reduce(s, evRetryDue{Gen: 1})
	require.Equal(t, []actor.Effect{effDial{Gen: 2}}, effects)
	require.Equal(t, StatusReconnecting, s.Status)
	require.True(t, s.Initializing)

	s, _ = Reduce(s, evTransportUp{Gen: 2, ID: "sock-2"})
	require.Equal(t, StatusConnected, s.Status)
	require.Zero(t, s.ReconnectAttempts)
	require.NoError(t, s.LastError)
}

func TestReduceRetriesExhaustedFails(t *testing.T) {
	t.Parallel()

	s, _ := actor.Replay(initialState(), Reduce,
		cmdConnect{},
		evTransportFailed{Gen: 1, Err: errors.New("x")},
		evRetryDue{Gen: 1},
		evTransportFailed{Gen: 2, Err: errors.New("y")},
		evRetriesExhausted{Gen: 2},
	)
	require.Equal(t, StatusFailed, s.Status)
	require.Equal(t, 2, s.ReconnectAttempts)
	require.ErrorIs(t, s.LastError, ErrMaxAttemptsExceeded)

	// Connect restarts the cycle but keeps the counter until success.
	s, effects := Reduce(s, cmdConnect{})
	require.Equal(t, StatusConnecting, s.Status)
	require.Equal(t, 2, s.ReconnectAttempts)
	require.Equal(t, []actor.Effect{effResetRetry{}, effDial{Gen: 3}}, effects)
}

func TestReduceDropWhileConnected(t *testing.T) {
	t.Parallel()

	s, _ := actor.Replay(initialState(), Reduce,
		cmdConnect{},
		evTransportUp{Gen: 1, ID: "a"},
	)
	s, effects := Reduce(s, evTransportDown{Gen: 1, Reason: "transport close"})
	require.Equal(t, StatusReconnecting, s.Status)
	require.Empty(t, s.TransportID)
	require.Zero(t, s.ReconnectAttempts)
	var drop *DropError
	require.ErrorAs(t, s.LastError, &drop)
	require.Equal(t, "transport close", drop.Reason)
	require.Equal(t, []actor.Effect{
		effClose{Gen: 1}, effResetRetry{}, effScheduleRetry{Gen: 1},
	}, effects)
}

func TestReduceDisconnectResets(t *testing.T) {
	t.Parallel()

	s, _ := actor.Replay(initialState(), Reduce,
		cmdConnect{},
		evTransportFailed{Gen: 1, Err: errors.New("x")},
		evRetryDue{Gen: 1},
		evTransportUp{Gen: 2, ID: "b"},
	)
	s, effects := Reduce(s, cmdDisconnect{})
	require.Equal(t, StatusDisconnected, s.Status)
	require.False(t, s.Live)
	require.Empty(t, s.TransportID)
	require.Equal(t, []actor.Effect{effCancelRetry{}, effClose{Gen: 2}}, effects)

	// A late handshake from the closed transport is ignored.
	s, _ = Reduce(s, evTransportUp{Gen: 2, ID: "b"})
	require.Equal(t, StatusDisconnected, s.Status)
}

func TestReduceAwait(t *testing.T) {
	t.Parallel()

	reply := make(chan string, 1)
	s, effects := Reduce(initialState(), cmdAwait{ID: 7, Reply: reply})
	require.Len(t, s.Waiters, 1)
	require.Equal(t, []actor.Effect{effResetRetry{}, effDial{Gen: 1}}, effects)

	other := make(chan string, 1)
	s, effects = Reduce(s, cmdAwait{ID: 8, Reply: other})
	require.Empty(t, effects, "second waiter must not dial again")

	s, _ = Reduce(s, cmdCancelAwait{ID: 8})
	require.Len(t, s.Waiters, 1)

	s, _ = Reduce(s, evTransportUp{Gen: 1, ID: "sock"})
	require.Empty(t, s.Waiters)
	require.Equal(t, "sock", <-reply)
	require.Empty(t, other)

	// Already connected: resolve immediately.
	late := make(chan string, 1)
	_, effects = Reduce(s, cmdAwait{ID: 9, Reply: late})
	require.Empty(t, effects)
	require.Equal(t, "sock", <-late)
}
