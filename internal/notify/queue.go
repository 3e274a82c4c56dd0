// Package notify keeps short-lived UI notifications, such as "bob joined the
// room", each evicted by its own timer.
package notify

import (
	"slices"
	"sync"
	"time"

	"github.com/Prannn182/CodeCollab-Frontend/internal/actor"
	"github.com/Prannn182/CodeCollab-Frontend/internal/session"
	"github.com/google/uuid"
)

// DefaultTTL is how long a notification stays listed.
const DefaultTTL = 3000 * time.Millisecond

// Notification is one transient record.
type Notification struct {
	ID        string
	Message   string
	User      session.User
	CreatedAt time.Time
}

// Option configures a Queue.
type Option func(*Queue)

// WithClock sets the time source for timestamps and eviction timers.
func WithClock(c actor.Clock) Option {
	return func(q *Queue) { q.clock = c }
}

// WithTTL overrides DefaultTTL.
func WithTTL(d time.Duration) Option {
	return func(q *Queue) {
		if d > 0 {
			q.ttl = d
		}
	}
}

// Queue holds live notifications in creation order. It has no capacity limit.
type Queue struct {
	clock actor.Clock
	ttl   time.Duration

	mu     sync.Mutex
	items  []Notification
	timers map[string]actor.Timer
	subs   map[int]func([]Notification)
	subSeq int
	closed bool
}

// NewQueue returns an empty Queue.
func NewQueue(opts ...Option) *Queue {
	q := &Queue{
		clock:  actor.RealClock{},
		ttl:    DefaultTTL,
		timers: make(map[string]actor.Timer),
		subs:   make(map[int]func([]Notification)),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Push records a notification and arms its eviction timer. Pushing to a
// closed queue returns the record without storing it.
func (q *Queue) Push(message string, user session.User) Notification {
	n := Notification{
		ID:        uuid.NewString(),
		Message:   message,
		User:      user,
		CreatedAt: q.clock.Now(),
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return n
	}
	q.items = append(slices.Clip(q.items), n)
	q.timers[n.ID] = q.clock.AfterFunc(q.ttl, func() { q.evict(n.ID) })
	snapshot, subs := q.snapshotLocked()
	q.mu.Unlock()

	notifyAll(subs, snapshot)
	return n
}

// List returns the live notifications, oldest first.
func (q *Queue) List() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	return slices.Clone(q.items)
}

// Len returns the number of live notifications.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Subscribe registers fn for every change of the list. fn receives a copy.
func (q *Queue) Subscribe(fn func([]Notification)) (unsubscribe func()) {
	q.mu.Lock()
	q.subSeq++
	key := q.subSeq
	q.subs[key] = fn
	q.mu.Unlock()
	return func() {
		q.mu.Lock()
		delete(q.subs, key)
		q.mu.Unlock()
	}
}

// Close stops every pending timer and clears the queue.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for id, t := range q.timers {
		t.Stop()
		delete(q.timers, id)
	}
	q.items = nil
	q.closed = true
}

// evict removes exactly the record with id.
func (q *Queue) evict(id string) {
	q.mu.Lock()
	delete(q.timers, id)
	i := slices.IndexFunc(q.items, func(n Notification) bool { return n.ID == id })
	if i < 0 {
		q.mu.Unlock()
		return
	}
	q.items = slices.Delete(slices.Clone(q.items), i, i+1)
	snapshot, subs := q.snapshotLocked()
	q.mu.Unlock()

	notifyAll(subs, snapshot)
}

func (q *Queue) snapshotLocked() ([]Notification, []func([]Notification)) {
	subs := make([]func([]Notification), 0, len(q.subs))
	for _, fn := range q.subs {
		subs = append(subs, fn)
	}
	return slices.Clone(q.items), subs
}

func notifyAll(subs []func([]Notification), items []Notification) {
	for _, fn := range subs {
		fn(items)
	}
}
