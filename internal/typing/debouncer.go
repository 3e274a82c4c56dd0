// Package typing turns a stream of local keystrokes into typing-start and
// typing-stop signals.
package typing

import (
	"sync"
	"time"

	"github.com/Prannn182/CodeCollab-Frontend/internal/actor"
)

// DefaultIdle is the quiet period after which typing-stop is sent.
const DefaultIdle = 1000 * time.Millisecond

// Sender emits the typing signals.
type Sender interface {
	TypingStart()
	TypingStop()
}

// Option configures a Debouncer.
type Option func(*Debouncer)

// WithClock sets the time source for the idle timer.
func WithClock(c actor.Clock) Option {
	return func(d *Debouncer) { d.clock = c }
}

// WithIdle overrides DefaultIdle.
func WithIdle(idle time.Duration) Option {
	return func(d *Debouncer) {
		if idle > 0 {
			d.idle = idle
		}
	}
}

// Debouncer tracks one local editing session. It holds a single timer slot:
// every keystroke cancels the pending stop and arms a new one.
type Debouncer struct {
	send  Sender
	clock actor.Clock
	idle  time.Duration

	mu     sync.Mutex
	active bool
	timer  actor.Timer
	// seq invalidates a timer whose callback raced with Stop.
	seq uint64
}

// New returns an idle Debouncer reporting to send.
func New(send Sender, opts ...Option) *Debouncer {
	d := &Debouncer{send: send, clock: actor.RealClock{}, idle: DefaultIdle}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Keystroke records local input. The first keystroke of a burst sends
// typing-start.
func (d *Debouncer) Keystroke() {
	d.mu.Lock()
	start := !d.active
	d.active = true
	d.rearmLocked()
	d.mu.Unlock()

	if start {
		d.send.TypingStart()
	}
}

// Flush ends the burst now, sending typing-stop if one was in progress.
func (d *Debouncer) Flush() {
	if d.reset() {
		d.send.TypingStop()
	}
}

// Cancel ends the burst without sending anything.
func (d *Debouncer) Cancel() {
	d.reset()
}

// Active reports whether a burst is in progress.
func (d *Debouncer) Active() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.active
}

func (d *Debouncer) rearmLocked() {
	if d.timer != nil {
		d.timer.Stop()
	}
	d.seq++
	seq := d.seq
	d.timer = d.clock.AfterFunc(d.idle, func() { d.expire(seq) })
}

func (d *Debouncer) expire(seq uint64) {
	d.mu.Lock()
	if seq != d.seq || !d.active {
		d.mu.Unlock()
		return
	}
	d.active = false
	d.timer = nil
	d.mu.Unlock()

	d.send.TypingStop()
}

// reset clears the burst and reports whether one was active.
func (d *Debouncer) reset() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.seq++
	was := d.active
	d.active = false
	return was
}
