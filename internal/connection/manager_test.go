package connection_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Prannn182/CodeCollab-Frontend/internal/actor/actortest"
	"github.com/Prannn182/CodeCollab-Frontend/internal/connection"
	"github.com/Prannn182/CodeCollab-Frontend/internal/connection/connectiontest"
	"github.com/stretchr/testify/require"
)

// statusLog records distinct status transitions seen by a subscriber.
type statusLog struct {
	mu       sync.Mutex
	statuses []connection.Status
}

func (l *statusLog) record(s connection.Snapshot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if n := len(l.statuses); n > 0 && l.statuses[n-1] == s.Status {
		return
	}
	l.statuses = append(l.statuses, s.Status)
}

func (l *statusLog) get() []connection.Status {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]connection.Status(nil), l.statuses...)
}

func waitStatus(t *testing.T, m *connection.Manager, want connection.Status) connection.Snapshot {
	t.Helper()
	var snap connection.Snapshot
	require.Eventually(t, func() bool {
		snap = m.Status()
		return snap.Status == want
	}, 2*time.Second, 5*time.Millisecond, "want status %s", want)
	return snap
}

func TestManagerReconnectCycle(t *testing.T) {
	t.Parallel()

	d := connectiontest.NewDialer()
	m := connection.NewManager(d.Dial)
	t.Cleanup(m.Close)

	log := &statusLog{}
	unsubscribe := m.Subscribe(log.record)
	defer unsubscribe()

	m.Connect()
	d.NextOpened(t).Up("sock-1")
	snap := waitStatus(t, m, connection.StatusConnected)
	require.Equal(t, "sock-1", snap.TransportID)
	require.Zero(t, snap.ReconnectAttempts)

	m.Disconnect()
	waitStatus(t, m, connection.StatusDisconnected)

	m.ForceReconnect()
	d.NextOpened(t).Up("sock-2")
	snap = waitStatus(t, m, connection.StatusConnected)
	require.Equal(t, "sock-2", snap.TransportID)
	require.Zero(t, snap.ReconnectAttempts)

	require.Eventually(t, func() bool {
		return len(log.get()) == 5
	}, time.Second, 5*time.Millisecond)
	require.Equal(t, []connection.Status{
		connection.StatusConnecting,
		connection.StatusConnected,
		connection.StatusDisconnected,
		connection.StatusConnecting,
		connection.StatusConnected,
	}, log.get())
}

func TestManagerConnectWhileConnectedKeepsTransport(t *testing.T) {
	t.Parallel()

	d := connectiontest.NewDialer()
	d.AutoConnectID = "only"
	m := connection.NewManager(d.Dial)
	t.Cleanup(m.Close)

	m.Connect()
	waitStatus(t, m, connection.StatusConnected)
	m.Connect()
	m.Connect()

	id, err := m.WaitForConnection(context.Background(), time.Second)
	require.NoError(t, err)
	require.Equal(t, "only", id)
	require.Equal(t, 1, d.Count())
}

func TestWaitForConnectionTimesOut(t *testing.T) {
	t.Parallel()

	d := connectiontest.NewDialer()
	m := connection.NewManager(d.Dial)
	t.Cleanup(m.Close)

	start := time.Now()
	_, err := m.WaitForConnection(context.Background(), 50*time.Millisecond)
	require.ErrorIs(t, err, connection.ErrConnectionTimeout)
	require.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)

	// The wait triggered a dial that never completes.
	tr := d.NextOpened(t)
	require.Equal(t, connection.StatusConnecting, m.Status().Status)

	// A late handshake still connects the manager; nobody is left waiting.
	tr.Up("late")
	waitStatus(t, m, connection.StatusConnected)
}

func TestWaitForConnectionResolves(t *testing.T) {
	t.Parallel()

	d := connectiontest.NewDialer()
	m := connection.NewManager(d.Dial)
	t.Cleanup(m.Close)

	done := make(chan string, 1)
	go func() {
		id, err := m.WaitForConnection(context.Background(), 2*time.Second)
		if err == nil {
			done <- id
		}
	}()

	d.NextOpened(t).Up("abc")
	select {
	case id := <-done:
		require.Equal(t, "abc", id)
	case <-time.After(2 * time.Second):
		t.Fatal("waiter not resolved")
	}
}

func TestWaitForConnectionHonorsContext(t *testing.T) {
	t.Parallel()

	m := connection.NewManager(connectiontest.NewDialer().Dial)
	t.Cleanup(m.Close)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := m.WaitForConnection(ctx, time.Minute)
	require.ErrorIs(t, err, context.Canceled)
}

func TestManagerFailsAfterRetryCeiling(t *testing.T) {
	t.Parallel()

	clock := actortest.NewFakeClock(time.Unix(0, 0))
	d := connectiontest.NewDialer()
	m := connection.NewManager(d.Dial,
		connection.WithClock(clock),
		connection.WithRetryPolicy(connection.NewRetryPolicy(2, time.Second)),
	)
	t.Cleanup(m.Close)

	m.Connect()
	for i := 0; i < 3; i++ {
		d.NextOpened(t).Fail(errors.New("refused"))
		if i == 2 {
			break
		}
		require.Eventually(t, func() bool { return clock.Pending() == 1 },
			time.Second, time.Millisecond)
		require.Equal(t, connection.StatusReconnecting, m.Status().Status)
		clock.Advance(time.Second)
	}

	snap := waitStatus(t, m, connection.StatusFailed)
	require.Equal(t, 3, snap.ReconnectAttempts)
	require.ErrorIs(t, snap.LastError, connection.ErrMaxAttemptsExceeded)
	require.Equal(t, 3, d.Count())

	// Connect starts a new cycle from Failed.
	m.Connect()
	d.NextOpened(t).Up("back")
	snap = waitStatus(t, m, connection.StatusConnected)
	require.Zero(t, snap.ReconnectAttempts)
}

func TestManagerRetriesAfterDrop(t *testing.T) {
	t.Parallel()

	clock := actortest.NewFakeClock(time.Unix(0, 0))
	d := connectiontest.NewDialer()
	m := connection.NewManager(d.Dial, connection.WithClock(clock))
	t.Cleanup(m.Close)

	m.Connect()
	first := d.NextOpened(t)
	first.Up("one")
	waitStatus(t, m, connection.StatusConnected)

	first.Drop("transport close")
	waitStatus(t, m, connection.StatusReconnecting)
	require.Eventually(t, first.Closed, time.Second, time.Millisecond)
	require.Eventually(t, func() bool { return clock.Pending() == 1 },
		time.Second, time.Millisecond)

	clock.Advance(connection.DefaultReconnectDelay)
	d.NextOpened(t).Up("two")
	snap := waitStatus(t, m, connection.StatusConnected)
	require.Equal(t, "two", snap.TransportID)
}

func TestManagerEmitAndInbound(t *testing.T) {
	t.Parallel()

	d := connectiontest.NewDialer()
	m := connection.NewManager(d.Dial)
	t.Cleanup(m.Close)

	require.ErrorIs(t, m.Emit("code-change", map[string]string{"code": "x"}), connection.ErrNotConnected)

	got := make(chan string, 4)
	m.SetInbound(func(event string, data json.RawMessage) {
		got <- event + " " + string(data)
	})

	m.Connect()
	tr := d.NextOpened(t)
	tr.Up("id")
	waitStatus(t, m, connection.StatusConnected)

	require.NoError(t, m.Emit("code-change", map[string]string{"code": "x"}))
	sent := tr.Sent()
	require.Len(t, sent, 1)
	require.Equal(t, "code-change", sent[0].Event)
	require.JSONEq(t, `{"code":"x"}`, string(sent[0].Payload))

	tr.Deliver("user-left", map[string]string{"userId": "u1"})
	require.Equal(t, `user-left {"userId":"u1"}`, <-got)

	// Events from a replaced transport are dropped.
	m.ForceReconnect()
	next := d.NextOpened(t)
	tr.Deliver("user-left", map[string]string{"userId": "stale"})
	next.Deliver("user-left", map[string]string{"userId": "fresh"})
	require.Equal(t, `user-left {"userId":"fresh"}`, <-got)
}
