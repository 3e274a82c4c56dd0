package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type joinRecorder struct {
	mu    sync.Mutex
	users []string
}

func (r *joinRecorder) record(u User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = append(r.users, u.Username)
}

func (r *joinRecorder) get() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.users...)
}

func newTestStore(t *testing.T, opts ...StoreOption) *Store {
	t.Helper()
	s := NewStore(opts...)
	t.Cleanup(s.Close)
	return s
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, cond, 2*time.Second, 5*time.Millisecond)
}

func TestStoreJoinFlowAndNotifications(t *testing.T) {
	t.Parallel()

	rec := &joinRecorder{}
	s := newTestStore(t, WithJoinNotifier(rec.record))
	ctx := context.Background()

	reply := make(chan error, 1)
	require.NoError(t, s.ExpectJoin(ctx, reply))

	alice := User{ID: "a1", Username: "alice"}
	require.NoError(t, s.Apply(ctx, UserJoined{User: alice, UserCount: 1}))
	require.NoError(t, s.Apply(ctx, RoomSnapshot{RoomID: "room1", Users: []User{alice}, Language: "python", SelfID: "a1"}))
	require.NoError(t, <-reply)

	// The local user's own join announcement never notifies.
	require.NoError(t, s.Apply(ctx, UserJoined{User: alice, UserCount: 1}))
	require.NoError(t, s.Apply(ctx, UserJoined{User: User{ID: "b1", Username: "bob"}, UserCount: 2}))
	require.NoError(t, s.Apply(ctx, UserJoined{User: User{ID: "b1", Username: "bob"}, UserCount: 2}))

	require.NoError(t, s.Apply(ctx, CodeUpdated{Code: "sync"}))

	waitFor(t, func() bool { return s.State().Document.Code == "sync" })
	require.Len(t, s.State().Roster, 2)
	require.Equal(t, []string{"bob"}, rec.get())
	require.Equal(t, "a1", s.State().LocalUserID)
}

func TestStoreServerErrorFailsJoin(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	reply := make(chan error, 1)
	require.NoError(t, s.ExpectJoin(ctx, reply))
	require.NoError(t, s.Apply(ctx, ServerError{Message: "Room is full"}))

	err := <-reply
	var appErr *ApplicationError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "Room is full", appErr.Message)
}

func TestStoreInvalidSnapshotIsDropped(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	reply := make(chan error, 1)
	require.NoError(t, s.ExpectJoin(ctx, reply))
	require.NoError(t, s.Apply(ctx, RoomSnapshot{Users: []User{}}))

	require.ErrorIs(t, <-reply, ErrInvalidSnapshot)
	waitFor(t, func() bool { return s.Dropped() == 1 })
	require.False(t, s.State().Joined())
}

func TestStoreSupersededAndResetJoins(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	first := make(chan error, 1)
	second := make(chan error, 1)
	require.NoError(t, s.ExpectJoin(ctx, first))
	require.NoError(t, s.ExpectJoin(ctx, second))
	require.ErrorIs(t, <-first, ErrJoinCanceled)

	s.Reset()
	require.ErrorIs(t, <-second, ErrJoinCanceled)

	// A cancelled reply is not completed by a later snapshot.
	third := make(chan error, 1)
	require.NoError(t, s.ExpectJoin(ctx, third))
	s.CancelJoin(third)
	require.NoError(t, s.Apply(ctx, RoomSnapshot{RoomID: "r", Users: []User{}}))
	waitFor(t, func() bool { return s.State().Joined() })
	require.Empty(t, third)
}

func TestStorePublishesInOrder(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	var mu sync.Mutex
	var codes []string
	unsubscribe := s.Subscribe(func(st State) {
		mu.Lock()
		codes = append(codes, st.Document.Code)
		mu.Unlock()
	})
	defer unsubscribe()

	require.NoError(t, s.Apply(ctx, RoomSnapshot{RoomID: "r", Users: []User{}}))
	for _, c := range []string{"a", "b", "c"} {
		require.NoError(t, s.Apply(ctx, CodeUpdated{Code: c}))
	}
	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(codes) == 4
	})
	mu.Lock()
	require.Equal(t, []string{"", "a", "b", "c"}, codes)
	mu.Unlock()

	s.Reset()
	waitFor(t, func() bool { return !s.State().Joined() })
}
