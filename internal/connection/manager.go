// Package connection owns the lifecycle of the single client connection to
// the room server.
//
// A Manager is an actor: connect, disconnect and reconnect requests, transport
// callbacks and retry timers are all serialized through one loop, so status
// transitions are totally ordered and observers see each exactly once.
package connection

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Prannn182/CodeCollab-Frontend/internal/actor"
	"github.com/Prannn182/CodeCollab-Frontend/pkg/logger"
	"github.com/cenkalti/backoff"
)

// Option configures a Manager.
type Option func(*options)

type options struct {
	clock  actor.Clock
	policy backoff.BackOff
}

// WithClock sets the clock used for retry timers and wait deadlines.
func WithClock(c actor.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithRetryPolicy overrides the default retry policy.
func WithRetryPolicy(p backoff.BackOff) Option {
	return func(o *options) { o.policy = p }
}

// Manager is the public handle for the connection actor.
type Manager struct {
	actor   *actor.Actor[State]
	runtime *Runtime
	clock   actor.Clock

	waiterSeq atomic.Uint64

	subMu  sync.Mutex
	subSeq int
	subs   map[int]func(Snapshot)
}

// NewManager builds and starts a Manager that dials through d. No connection
// is attempted until Connect, WaitForConnection or ForceReconnect.
func NewManager(d Dialer, opts ...Option) *Manager {
	o := options{clock: actor.RealClock{}}
	for _, opt := range opts {
		opt(&o)
	}
	if o.policy == nil {
		o.policy = NewRetryPolicy(DefaultMaxReconnectAttempts, DefaultReconnectDelay)
	}

	m := &Manager{
		runtime: NewRuntime(d, o.policy, o.clock),
		clock:   o.clock,
		subs:    make(map[int]func(Snapshot)),
	}
	m.actor = actor.New(initialState(), Reduce, m.runtime,
		actor.WithHooks(actor.Hooks[State]{
			OnTransition: m.onTransition,
			OnPanic: func(r any) {
				logger.Errorf("connection: loop panic: %v", r)
			},
		}),
	)
	m.actor.Start()
	return m
}

// Connect starts a connection cycle. It is a no-op while connected or while
// a cycle is already running.
func (m *Manager) Connect() {
	m.enqueue(cmdConnect{})
}

// Disconnect tears down the transport and resets the attempt counter. A later
// Connect starts a fresh cycle.
func (m *Manager) Disconnect() {
	m.enqueue(cmdDisconnect{})
}

// ForceReconnect discards any transport and pending retry, then starts a
// fresh cycle with the attempt counter reset.
func (m *Manager) ForceReconnect() {
	m.enqueue(cmdForceReconnect{})
}

// WaitForConnection resolves with the transport id once the status is
// Connected, starting a cycle if none is running. It fails with
// ErrConnectionTimeout after timeout, or with ctx.Err() if ctx ends first.
func (m *Manager) WaitForConnection(ctx context.Context, timeout time.Duration) (string, error) {
	if snap := m.Status(); snap.Connected() {
		return snap.TransportID, nil
	}

	id := m.waiterSeq.Add(1)
	reply := make(chan string, 1)
	if err := m.actor.Send(ctx, cmdAwait{ID: id, Reply: reply}); err != nil {
		if errors.Is(err, actor.ErrStopped) {
			return "", ErrClosed
		}
		return "", err
	}

	expired := make(chan struct{})
	timer := m.clock.AfterFunc(timeout, func() { close(expired) })
	defer timer.Stop()

	select {
	case transportID := <-reply:
		return transportID, nil
	case <-expired:
		m.enqueue(cmdCancelAwait{ID: id})
		return "", ErrConnectionTimeout
	case <-ctx.Done():
		m.enqueue(cmdCancelAwait{ID: id})
		return "", ctx.Err()
	case <-m.actor.Done():
		return "", ErrClosed
	}
}

// Status returns the current snapshot without side effects.
func (m *Manager) Status() Snapshot {
	return m.actor.State().Snapshot()
}

// Subscribe registers fn for every snapshot change. fn runs on the manager
// loop and must not block. The returned func removes the subscription.
func (m *Manager) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	m.subMu.Lock()
	m.subSeq++
	key := m.subSeq
	m.subs[key] = fn
	m.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.subMu.Lock()
			delete(m.subs, key)
			m.subMu.Unlock()
		})
	}
}

// Emit sends event on the live transport. It returns ErrNotConnected unless
// the status is Connected.
func (m *Manager) Emit(event string, payload any) error {
	st := m.actor.State()
	if st.Status != StatusConnected {
		return ErrNotConnected
	}
	return m.runtime.send(st.Gen, event, payload)
}

// SetInbound installs the sink that receives every server event from the
// current transport, in delivery order.
func (m *Manager) SetInbound(fn func(event string, data json.RawMessage)) {
	m.runtime.setInbound(fn)
}

// Close disconnects and stops the loop.
func (m *Manager) Close() {
	m.actor.Stop()
	<-m.actor.Done()
}

func (m *Manager) enqueue(in actor.Input) {
	if !m.actor.Enqueue(in) {
		logger.Warnf("connection: dropped %T (mailbox full or closed)", in)
	}
}

func (m *Manager) onTransition(prev, next State, _ actor.Input) {
	before, after := prev.Snapshot(), next.Snapshot()
	if sameSnapshot(before, after) {
		return
	}
	if before.Status != after.Status {
		logger.Infof("connection: %s -> %s (attempts=%d)", before.Status, after.Status, after.ReconnectAttempts)
	}

	m.subMu.Lock()
	fns := make([]func(Snapshot), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.subMu.Unlock()
	for _, fn := range fns {
		fn(after)
	}
}

func sameSnapshot(a, b Snapshot) bool {
	return a.Status == b.Status &&
		a.ReconnectAttempts == b.ReconnectAttempts &&
		a.TransportID == b.TransportID &&
		a.IsInitializing == b.IsInitializing &&
		errors.Is(a.LastError, b.LastError) && errors.Is(b.LastError, a.LastError)
}
