package notify

import (
	"testing"
	"time"

	"github.com/Prannn182/CodeCollab-Frontend/internal/actor/actortest"
	"github.com/Prannn182/CodeCollab-Frontend/internal/session"
	"github.com/stretchr/testify/require"
)

func newTestQueue(t *testing.T) (*Queue, *actortest.FakeClock) {
	t.Helper()
	clock := actortest.NewFakeClock(time.Unix(1_700_000_000, 0))
	q := NewQueue(WithClock(clock))
	t.Cleanup(q.Close)
	return q, clock
}

func TestNotificationTTL(t *testing.T) {
	t.Parallel()

	q, clock := newTestQueue(t)
	bob := session.User{ID: "b1", Username: "bob"}
	n := q.Push("bob joined the room", bob)
	require.NotEmpty(t, n.ID)
	require.Equal(t, clock.Now(), n.CreatedAt)

	clock.Advance(2999 * time.Millisecond)
	require.Equal(t, []Notification{n}, q.List())

	clock.Advance(2 * time.Millisecond)
	require.Zero(t, q.Len())
	require.Zero(t, clock.Pending())
}

func TestSameTickNotificationsEvictIndependently(t *testing.T) {
	t.Parallel()

	q, clock := newTestQueue(t)
	a := q.Push("a joined the room", session.User{ID: "a"})
	b := q.Push("b joined the room", session.User{ID: "b"})
	require.NotEqual(t, a.ID, b.ID)
	require.Equal(t, a.CreatedAt, b.CreatedAt)

	clock.Advance(1500 * time.Millisecond)
	c := q.Push("c joined the room", session.User{ID: "c"})
	require.Equal(t, 3, q.Len())

	clock.Advance(1501 * time.Millisecond)
	require.Equal(t, []Notification{c}, q.List())

	clock.Advance(1500 * time.Millisecond)
	require.Zero(t, q.Len())
}

func TestSubscribeSeesPushAndEviction(t *testing.T) {
	t.Parallel()

	q, clock := newTestQueue(t)
	var sizes []int
	unsubscribe := q.Subscribe(func(items []Notification) {
		sizes = append(sizes, len(items))
	})

	q.Push("x", session.User{})
	q.Push("y", session.User{})
	clock.Advance(DefaultTTL)
	require.Equal(t, []int{1, 2, 1, 0}, sizes)

	unsubscribe()
	q.Push("z", session.User{})
	require.Len(t, sizes, 4)
}

func TestCloseStopsTimers(t *testing.T) {
	t.Parallel()

	clock := actortest.NewFakeClock(time.Unix(0, 0))
	q := NewQueue(WithClock(clock), WithTTL(time.Second))
	q.Push("x", session.User{})
	require.Equal(t, 1, clock.Pending())

	q.Close()
	require.Zero(t, clock.Pending())
	require.Zero(t, q.Len())

	q.Push("after close", session.User{})
	require.Zero(t, q.Len())
}
