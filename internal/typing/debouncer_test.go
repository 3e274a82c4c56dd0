package typing

import (
	"sync"
	"testing"
	"time"

	"github.com/Prannn182/CodeCollab-Frontend/internal/actor/actortest"
	"github.com/stretchr/testify/require"
)

type signalLog struct {
	mu      sync.Mutex
	signals []string
}

func (l *signalLog) TypingStart() { l.add("start") }
func (l *signalLog) TypingStop()  { l.add("stop") }

func (l *signalLog) add(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.signals = append(l.signals, s)
}

func (l *signalLog) get() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.signals...)
}

func newTestDebouncer() (*Debouncer, *signalLog, *actortest.FakeClock) {
	clock := actortest.NewFakeClock(time.Unix(0, 0))
	log := &signalLog{}
	return New(log, WithClock(clock)), log, clock
}

func TestBurstHoldsOneTimer(t *testing.T) {
	t.Parallel()

	d, log, clock := newTestDebouncer()
	for i := 0; i < 50; i++ {
		d.Keystroke()
		require.Equal(t, 1, clock.Pending())
		clock.Advance(10 * time.Millisecond)
	}
	require.Equal(t, []string{"start"}, log.get())

	clock.Advance(DefaultIdle - 11*time.Millisecond)
	require.True(t, d.Active())
	clock.Advance(time.Millisecond)
	require.False(t, d.Active())
	require.Equal(t, []string{"start", "stop"}, log.get())
	require.Zero(t, clock.Pending())
}

func TestFlushStopsImmediately(t *testing.T) {
	t.Parallel()

	d, log, clock := newTestDebouncer()
	d.Flush()
	require.Empty(t, log.get(), "flush outside a burst sends nothing")

	d.Keystroke()
	d.Flush()
	require.Equal(t, []string{"start", "stop"}, log.get())
	require.Zero(t, clock.Pending())

	clock.Advance(2 * DefaultIdle)
	require.Equal(t, []string{"start", "stop"}, log.get())

	d.Keystroke()
	require.Equal(t, []string{"start", "stop", "start"}, log.get())
}

func TestCancelIsSilent(t *testing.T) {
	t.Parallel()

	d, log, clock := newTestDebouncer()
	d.Keystroke()
	d.Cancel()
	clock.Advance(2 * DefaultIdle)
	require.Equal(t, []string{"start"}, log.get())
}
