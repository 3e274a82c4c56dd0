package connection

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// silentDialer returns transports that never finish the handshake.
func silentDialer(Listener) (Transport, error) {
	return silentTransport{}, nil
}

type silentTransport struct{}

func (silentTransport) Open() error            { return nil }
func (silentTransport) Close()                 {}
func (silentTransport) Emit(string, any) error { return ErrNotConnected }
func (silentTransport) ID() string             { return "" }

func TestWaitForConnectionTimeoutDeregistersWaiter(t *testing.T) {
	t.Parallel()

	m := NewManager(silentDialer)
	t.Cleanup(m.Close)

	start := time.Now()
	_, err := m.WaitForConnection(context.Background(), 50*time.Millisecond)
	require.ErrorIs(t, err, ErrConnectionTimeout)
	require.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)

	require.Eventually(t, func() bool {
		return len(m.actor.State().Waiters) == 0
	}, 2*time.Second, 5*time.Millisecond)
}

func TestWaitForConnectionCancelDeregistersWaiter(t *testing.T) {
	t.Parallel()

	m := NewManager(silentDialer)
	t.Cleanup(m.Close)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := m.WaitForConnection(ctx, time.Minute)
		done <- err
	}()

	require.Eventually(t, func() bool {
		return len(m.actor.State().Waiters) == 1
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
	require.Eventually(t, func() bool {
		return len(m.actor.State().Waiters) == 0
	}, 2*time.Second, 5*time.Millisecond)
}
