// Package router decodes inbound server events and dispatches them to the
// handler set bound for the current room membership.
package router

import (
	"encoding/json"
	"sync"
	"sync/atomic"

	"github.com/Prannn182/CodeCollab-Frontend/internal/session"
	"github.com/Prannn182/CodeCollab-Frontend/pkg/logger"
	"github.com/Prannn182/CodeCollab-Frontend/protocol/wire"
)

// Handlers holds at most one callback per inbound event. Nil fields are
// skipped.
type Handlers struct {
	RoomJoined      func(wire.RoomJoinedPayload)
	UserJoined      func(wire.UserJoinedPayload)
	UserLeft        func(wire.UserLeftPayload)
	CodeUpdated     func(wire.CodeUpdatedPayload)
	LanguageUpdated func(wire.LanguageUpdatedPayload)
	CursorUpdated   func(wire.CursorUpdatedPayload)
	UserTyping      func(wire.UserTypingPayload)
	ChatMessage     func(wire.Message)
	Error           func(wire.ErrorPayload)
	CodeOutput      func(wire.CodeOutputPayload)
}

// Router owns the single active handler set.
type Router struct {
	mu       sync.RWMutex
	gen      uint64
	handlers *Handlers

	dropped atomic.Int64
}

// New returns a Router with nothing bound.
func New() *Router {
	return &Router{}
}

// Bind replaces the active handler set with h. The returned unbind detaches
// h only if it is still the active set, so a stale unbind from an earlier
// membership cannot remove a newer binding.
func (r *Router) Bind(h Handlers) (unbind func()) {
	r.mu.Lock()
	r.gen++
	gen := r.gen
	if r.handlers != nil {
		logger.Debugf("router: replacing bound handlers")
	}
	r.handlers = &h
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.gen == gen {
			r.handlers = nil
		}
	}
}

// Bound reports whether a handler set is active.
func (r *Router) Bound() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.handlers != nil
}

// Dropped returns how many events failed to decode.
func (r *Router) Dropped() int64 {
	return r.dropped.Load()
}

// Dispatch decodes data for event and calls the bound handler synchronously.
// It is installed as the connection manager's inbound sink.
func (r *Router) Dispatch(event string, data json.RawMessage) {
	r.mu.RLock()
	h := r.handlers
	r.mu.RUnlock()
	if h == nil {
		logger.Tracef("router: no handlers bound, ignoring %s", event)
		return
	}

	switch event {
	case wire.EventRoomJoined:
		deliver(r, event, data, h.RoomJoined)
	case wire.EventUserJoined:
		deliver(r, event, data, h.UserJoined)
	case wire.EventUserLeft:
		deliver(r, event, data, h.UserLeft)
	case wire.EventCodeUpdated:
		deliver(r, event, data, h.CodeUpdated)
	case wire.EventLanguageUpdated:
		deliver(r, event, data, h.LanguageUpdated)
	case wire.EventCursorUpdated:
		deliver(r, event, data, h.CursorUpdated)
	case wire.EventUserTyping:
		deliver(r, event, data, h.UserTyping)
	case wire.EventChatMessage:
		deliver(r, event, data, h.ChatMessage)
	case wire.EventError:
		deliver(r, event, data, h.Error)
	case wire.EventCodeOutput:
		deliver(r, event, data, h.CodeOutput)
	default:
		logger.Tracef("router: ignoring unknown event %s", event)
	}
}

func deliver[T any](r *Router, event string, data json.RawMessage, fn func(T)) {
	if fn == nil {
		return
	}
	payload, err := wire.Decode[T](data)
	if err != nil {
		r.dropped.Add(1)
		perr := &session.ProtocolError{Event: event, Err: err}
		logger.Warnf("router: %v", perr)
		return
	}
	logger.Tracef("router: dispatch %s", event)
	fn(payload)
}
