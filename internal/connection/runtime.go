package connection

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/Prannn182/CodeCollab-Frontend/internal/actor"
	"github.com/Prannn182/CodeCollab-Frontend/pkg/logger"
	"github.com/cenkalti/backoff"
)

// Runtime interprets connection effects: it owns the transport instance, the
// retry policy and the retry timer.
//
// Runtime never mutates actor state. Transport callbacks are translated into
// inputs tagged with the generation of the transport that produced them.
type Runtime struct {
	dial  Dialer
	clock actor.Clock

	mu      sync.Mutex
	policy  backoff.BackOff
	wantGen int64
	cur     Transport
	curGen  int64
	retry   actor.Timer
	inbound func(event string, data json.RawMessage)
}

// NewRuntime returns a Runtime that dials through d and schedules retries
// according to policy.
func NewRuntime(d Dialer, policy backoff.BackOff, clock actor.Clock) *Runtime {
	if clock == nil {
		clock = actor.RealClock{}
	}
	return &Runtime{dial: d, policy: policy, clock: clock}
}

// HandleEffects implements actor.Runtime.
func (r *Runtime) HandleEffects(ctx context.Context, effects []actor.Effect, emit func(actor.Input)) {
	for _, eff := range effects {
		select {
		case <-ctx.Done():
			return
		default:
		}

		switch e := eff.(type) {
		case effDial:
			r.startDial(ctx, e, emit)
		case effClose:
			r.closeGen(e.Gen)
		case effScheduleRetry:
			r.scheduleRetry(ctx, e, emit)
		case effResetRetry:
			r.mu.Lock()
			r.policy.Reset()
			r.mu.Unlock()
		case effCancelRetry:
			r.cancelRetry()
		}
	}
}

// Stop implements actor.Runtime.
func (r *Runtime) Stop() {
	r.cancelRetry()
	r.mu.Lock()
	t := r.cur
	r.cur, r.curGen, r.wantGen = nil, 0, 0
	r.mu.Unlock()
	if t != nil {
		t.Close()
	}
}

// setInbound installs the sink for server events. Only events from the
// current transport reach it.
func (r *Runtime) setInbound(fn func(event string, data json.RawMessage)) {
	r.mu.Lock()
	r.inbound = fn
	r.mu.Unlock()
}

// send emits on the transport belonging to gen.
func (r *Runtime) send(gen int64, event string, payload any) error {
	r.mu.Lock()
	t := r.cur
	ok := t != nil && r.curGen == gen
	r.mu.Unlock()
	if !ok {
		return ErrNotConnected
	}
	return t.Emit(event, payload)
}

func (r *Runtime) startDial(ctx context.Context, eff effDial, emit func(actor.Input)) {
	r.mu.Lock()
	r.wantGen = eff.Gen
	r.mu.Unlock()

	logger.Debugf("connection: dialing gen=%d", eff.Gen)
	go func() {
		t, err := r.dial(r.listenerFor(eff.Gen, emit))
		if err != nil {
			emit(evTransportFailed{Gen: eff.Gen, Err: err})
			return
		}

		r.mu.Lock()
		if r.wantGen != eff.Gen || ctx.Err() != nil {
			r.mu.Unlock()
			t.Close()
			return
		}
		prev := r.cur
		r.cur = t
		r.curGen = eff.Gen
		r.mu.Unlock()

		if prev != nil {
			prev.Close()
		}
		if err := t.Open(); err != nil {
			emit(evTransportFailed{Gen: eff.Gen, Err: err})
		}
	}()
}

// listenerFor binds transport callbacks to actor inputs for one generation.
func (r *Runtime) listenerFor(gen int64, emit func(actor.Input)) Listener {
	return Listener{
		OnConnect: func(id string) {
			emit(evTransportUp{Gen: gen, ID: id})
		},
		OnDisconnect: func(reason string) {
			emit(evTransportDown{Gen: gen, Reason: reason})
		},
		OnConnectError: func(err error) {
			emit(evTransportFailed{Gen: gen, Err: err})
		},
		OnEvent: func(event string, data json.RawMessage) {
			r.mu.Lock()
			sink := r.inbound
			current := r.curGen == gen
			r.mu.Unlock()
			if !current {
				logger.Tracef("connection: dropping %s from stale gen=%d", event, gen)
				return
			}
			if sink != nil {
				sink(event, data)
			}
		},
	}
}

func (r *Runtime) closeGen(gen int64) {
	r.mu.Lock()
	if r.wantGen == gen {
		r.wantGen = 0
	}
	var t Transport
	if r.curGen == gen {
		t = r.cur
		r.cur, r.curGen = nil, 0
	}
	r.mu.Unlock()
	if t != nil {
		t.Close()
	}
}

func (r *Runtime) scheduleRetry(ctx context.Context, eff effScheduleRetry, emit func(actor.Input)) {
	r.mu.Lock()
	delay := r.policy.NextBackOff()
	if r.retry != nil {
		r.retry.Stop()
		r.retry = nil
	}
	if delay == backoff.Stop {
		r.mu.Unlock()
		logger.Warnf("connection: retry policy exhausted")
		emit(evRetriesExhausted{Gen: eff.Gen})
		return
	}
	r.retry = r.clock.AfterFunc(delay, func() {
		if ctx.Err() != nil {
			return
		}
		emit(evRetryDue{Gen: eff.Gen})
	})
	r.mu.Unlock()
	logger.Debugf("connection: retry in %s", delay.Round(time.Millisecond))
}

func (r *Runtime) cancelRetry() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.retry != nil {
		r.retry.Stop()
		r.retry = nil
	}
}
