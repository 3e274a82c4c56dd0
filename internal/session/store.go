package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/Prannn182/CodeCollab-Frontend/internal/actor"
	"github.com/Prannn182/CodeCollab-Frontend/pkg/logger"
)

// ErrJoinCanceled completes a pending join that was superseded by a newer
// join or discarded by Reset.
var ErrJoinCanceled = errors.New("join canceled")

// storeState is owned by the store loop.
type storeState struct {
	Session State
	// PendingJoin is completed by the next snapshot or server error.
	PendingJoin chan error
}

type cmdApply struct {
	actor.InputBase
	Event Event
}

type cmdReset struct {
	actor.InputBase
}

type cmdExpectJoin struct {
	actor.InputBase
	Reply chan error
}

type cmdCancelJoin struct {
	actor.InputBase
	Reply chan error
}

type effNotifyJoined struct {
	actor.EffectBase
	User User
}

type effProtocolError struct {
	actor.EffectBase
	Err error
}

type effRosterDrift struct {
	actor.EffectBase
	Have int
	Want int
}

func reduceStore(s storeState, input actor.Input) (storeState, []actor.Effect) {
	switch in := input.(type) {
	case cmdApply:
		return reduceApply(s, in.Event)
	case cmdReset:
		completeJoin(s.PendingJoin, ErrJoinCanceled)
		return storeState{}, nil
	case cmdExpectJoin:
		if s.PendingJoin != nil && s.PendingJoin != in.Reply {
			completeJoin(s.PendingJoin, ErrJoinCanceled)
		}
		s.PendingJoin = in.Reply
		return s, nil
	case cmdCancelJoin:
		if s.PendingJoin == in.Reply {
			s.PendingJoin = nil
		}
		return s, nil
	default:
		return s, nil
	}
}

func reduceApply(s storeState, ev Event) (storeState, []actor.Effect) {
	prev := s.Session
	next, err := Reduce(prev, ev)
	if err != nil {
		if _, ok := ev.(RoomSnapshot); ok && s.PendingJoin != nil {
			completeJoin(s.PendingJoin, err)
			s.PendingJoin = nil
		}
		return s, []actor.Effect{effProtocolError{Err: err}}
	}
	s.Session = next

	var effects []actor.Effect
	switch e := ev.(type) {
	case RoomSnapshot:
		if s.PendingJoin != nil {
			completeJoin(s.PendingJoin, nil)
			s.PendingJoin = nil
		}
	case ServerError:
		if s.PendingJoin != nil {
			completeJoin(s.PendingJoin, &ApplicationError{Message: e.Message})
			s.PendingJoin = nil
		}
	case UserJoined:
		id := e.User.ID
		if prev.Joined() && prev.indexOf(id) < 0 && next.indexOf(id) >= 0 && id != next.LocalUserID {
			effects = append(effects, effNotifyJoined{User: e.User})
		}
	}

	switch ev.(type) {
	case RoomSnapshot, UserJoined, UserLeft:
		if next.Joined() && len(next.Roster) != next.UserCount {
			effects = append(effects, effRosterDrift{Have: len(next.Roster), Want: next.UserCount})
		}
	}
	return s, effects
}

func completeJoin(reply chan error, err error) {
	if reply == nil {
		return
	}
	select {
	case reply <- err:
	default:
	}
}

// storeRuntime executes store effects inline; none of them block.
type storeRuntime struct {
	onJoin  func(User)
	dropped *atomic.Int64
}

func (r *storeRuntime) HandleEffects(_ context.Context, effects []actor.Effect, _ func(actor.Input)) {
	for _, eff := range effects {
		switch e := eff.(type) {
		case effNotifyJoined:
			if r.onJoin != nil {
				r.onJoin(e.User)
			}
		case effProtocolError:
			r.dropped.Add(1)
			logger.Warnf("session: dropped event: %v", e.Err)
		case effRosterDrift:
			logger.Debugf("session: roster has %d users, server reports %d", e.Have, e.Want)
		}
	}
}

func (r *storeRuntime) Stop() {}

// StoreOption configures a Store.
type StoreOption func(*storeConfig)

type storeConfig struct {
	onJoin  func(User)
	mailbox int
}

// WithJoinNotifier sets the callback run for every non-local user that joins
// after the snapshot. It runs on the store loop.
func WithJoinNotifier(fn func(User)) StoreOption {
	return func(c *storeConfig) { c.onJoin = fn }
}

// WithMailboxSize sets the store mailbox capacity.
func WithMailboxSize(n int) StoreOption {
	return func(c *storeConfig) { c.mailbox = n }
}

// Store serializes events through Reduce on its own loop and publishes each
// resulting state.
type Store struct {
	actor   *actor.Actor[storeState]
	dropped atomic.Int64

	subMu  sync.Mutex
	subSeq int
	subs   map[int]func(State)
}

// NewStore builds and starts a Store with an empty state.
func NewStore(opts ...StoreOption) *Store {
	cfg := storeConfig{mailbox: 1024}
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &Store{subs: make(map[int]func(State))}
	rt := &storeRuntime{onJoin: cfg.onJoin, dropped: &s.dropped}
	s.actor = actor.New(storeState{}, reduceStore, rt,
		actor.WithMailboxSize[storeState](cfg.mailbox),
		actor.WithHooks(actor.Hooks[storeState]{
			OnTransition: func(_, next storeState, in actor.Input) {
				switch in.(type) {
				case cmdApply, cmdReset:
					s.publish(next.Session)
				}
			},
			OnPanic: func(r any) {
				logger.Errorf("session: loop panic: %v", r)
			},
		}),
	)
	s.actor.Start()
	return s
}

// Apply enqueues ev. It waits for mailbox space so that events keep their
// delivery order.
func (s *Store) Apply(ctx context.Context, ev Event) error {
	return s.actor.Send(ctx, cmdApply{Event: ev})
}

// Reset discards the room state and cancels any pending join.
func (s *Store) Reset() {
	_ = s.actor.Send(context.Background(), cmdReset{})
}

// ExpectJoin registers reply to be completed by the next room snapshot (nil),
// server error (*ApplicationError) or invalid snapshot (*ProtocolError).
// reply must be buffered.
func (s *Store) ExpectJoin(ctx context.Context, reply chan error) error {
	return s.actor.Send(ctx, cmdExpectJoin{Reply: reply})
}

// CancelJoin withdraws reply if it is still pending.
func (s *Store) CancelJoin(reply chan error) {
	_ = s.actor.Enqueue(cmdCancelJoin{Reply: reply})
}

// State returns the current session state.
func (s *Store) State() State {
	return s.actor.State().Session
}

// Dropped returns how many events were rejected as protocol errors.
func (s *Store) Dropped() int64 {
	return s.dropped.Load()
}

// Subscribe registers fn for every applied event. fn runs on the store loop.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.subMu.Lock()
	s.subSeq++
	key := s.subSeq
	s.subs[key] = fn
	s.subMu.Unlock()
	return func() {
		s.subMu.Lock()
		delete(s.subs, key)
		s.subMu.Unlock()
	}
}

// Close stops the loop.
func (s *Store) Close() {
	s.actor.Stop()
	<-s.actor.Done()
}

func (s *Store) publish(state State) {
	s.subMu.Lock()
	fns := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()
	for _, fn := range fns {
		fn(state)
	}
}
