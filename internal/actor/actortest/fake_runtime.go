// Package actortest provides test helpers for the actor framework.
package actortest

import (
	"context"
	"sync"

	"github.com/Prannn182/CodeCollab-Frontend/internal/actor"
)

// FakeRuntime records effects instead of executing them.
//
// EmitFn, when set, is called for each effect so tests can synthesize the
// follow-up inputs a real runtime would produce.
type FakeRuntime struct {
	mu      sync.Mutex
	effects []actor.Effect

	EmitFn func(ctx context.Context, eff actor.Effect, emit func(actor.Input))
}

// HandleEffects implements actor.Runtime.
func (r *FakeRuntime) HandleEffects(ctx context.Context, effects []actor.Effect, emit func(actor.Input)) {
	r.mu.Lock()
	r.effects = append(r.effects, effects...)
	emitFn := r.EmitFn
	r.mu.Unlock()

	if emitFn == nil {
		return
	}
	for _, eff := range effects {
		emitFn(ctx, eff, emit)
	}
}

// Stop implements actor.Runtime.
func (r *FakeRuntime) Stop() {}

// Effects returns a copy of the recorded effects.
func (r *FakeRuntime) Effects() []actor.Effect {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]actor.Effect, len(r.effects))
	copy(out, r.effects)
	return out
}
