package connection

import (
	"maps"

	"github.com/Prannn182/CodeCollab-Frontend/internal/actor"
)

// Reduce is the pure transition function of the connection actor.
func Reduce(state State, input actor.Input) (State, []actor.Effect) {
	switch in := input.(type) {
	case cmdConnect:
		return reduceConnect(state)
	case cmdDisconnect:
		return reduceDisconnect(state)
	case cmdForceReconnect:
		return reduceForceReconnect(state)
	case cmdAwait:
		return reduceAwait(state, in)
	case cmdCancelAwait:
		if _, ok := state.Waiters[in.ID]; !ok {
			return state, nil
		}
		state.Waiters = maps.Clone(state.Waiters)
		delete(state.Waiters, in.ID)
		return state, nil
	case evTransportUp:
		return reduceTransportUp(state, in)
	case evTransportFailed:
		return reduceTransportFailed(state, in)
	case evTransportDown:
		return reduceTransportDown(state, in)
	case evRetryDue:
		return reduceRetryDue(state, in)
	case evRetriesExhausted:
		if in.Gen != state.Gen || state.Status != StatusReconnecting || state.Initializing {
			return state, nil
		}
		state.Status = StatusFailed
		state.LastError = ErrMaxAttemptsExceeded
		return state, nil
	default:
		return state, nil
	}
}

// reduceConnect starts a fresh cycle unless a transport is live or a cycle is
// already running.
func reduceConnect(state State) (State, []actor.Effect) {
	switch {
	case state.Status == StatusConnected,
		state.Status == StatusReconnecting,
		state.Initializing:
		return state, nil
	}
	state, dial := nextDial(state)
	state.Status = StatusConnecting
	state.LastError = nil
	return state, []actor.Effect{effResetRetry{}, dial}
}

func reduceDisconnect(state State) (State, []actor.Effect) {
	effects := []actor.Effect{effCancelRetry{}}
	if state.Live {
		effects = append(effects, effClose{Gen: state.Gen})
	}
	state.Status = StatusDisconnected
	state.Live = false
	state.Initializing = false
	state.TransportID = ""
	state.ReconnectAttempts = 0
	return state, effects
}

func reduceForceReconnect(state State) (State, []actor.Effect) {
	effects := []actor.Effect{effCancelRetry{}}
	if state.Live {
		effects = append(effects, effClose{Gen: state.Gen})
	}
	state, dial := nextDial(state)
	state.Status = StatusConnecting
	state.TransportID = ""
	state.ReconnectAttempts = 0
	state.LastError = nil
	return state, append(effects, effResetRetry{}, dial)
}

func reduceAwait(state State, in cmdAwait) (State, []actor.Effect) {
	if state.Status == StatusConnected {
		resolve(in.Reply, state.TransportID)
		return state, nil
	}
	waiters := make(map[uint64]chan string, len(state.Waiters)+1)
	maps.Copy(waiters, state.Waiters)
	waiters[in.ID] = in.Reply
	state.Waiters = waiters
	return reduceConnect(state)
}

func reduceTransportUp(state State, in evTransportUp) (State, []actor.Effect) {
	if in.Gen != state.Gen || !state.Live {
		return state, nil
	}
	state.Status = StatusConnected
	state.Initializing = false
	state.TransportID = in.ID
	state.ReconnectAttempts = 0
	state.LastError = nil
	for _, reply := range state.Waiters {
		resolve(reply, in.ID)
	}
	state.Waiters = nil
	return state, []actor.Effect{effResetRetry{}}
}

func reduceTransportFailed(state State, in evTransportFailed) (State, []actor.Effect) {
	if in.Gen != state.Gen || !state.Live {
		return state, nil
	}
	state.Status = StatusReconnecting
	state.Live = false
	state.Initializing = false
	state.TransportID = ""
	state.ReconnectAttempts++
	state.LastError = in.Err
	return state, []actor.Effect{
		effClose{Gen: in.Gen},
		effScheduleRetry{Gen: in.Gen},
	}
}

func reduceTransportDown(state State, in evTransportDown) (State, []actor.Effect) {
	if in.Gen != state.Gen || !state.Live {
		return state, nil
	}
	if state.Status != StatusConnected {
		// Dropped before the handshake finished: count it as a failed attempt.
		return reduceTransportFailed(state, evTransportFailed{Gen: in.Gen, Err: &DropError{Reason: in.Reason}})
	}
	state.Status = StatusReconnecting
	state.Live = false
	state.TransportID = ""
	state.LastError = &DropError{Reason: in.Reason}
	return state, []actor.Effect{
		effClose{Gen: in.Gen},
		effResetRetry{},
		effScheduleRetry{Gen: in.Gen},
	}
}

func reduceRetryDue(state State, in evRetryDue) (State, []actor.Effect) {
	if in.Gen != state.Gen || state.Live || state.Status != StatusReconnecting {
		return state, nil
	}
	state, dial := nextDial(state)
	return state, []actor.Effect{dial}
}

func nextDial(state State) (State, effDial) {
	state.Gen++
	state.Live = true
	state.Initializing = true
	return state, effDial{Gen: state.Gen}
}

// resolve hands the id to a waiter without blocking; reply channels are
// buffered by their creator.
func resolve(reply chan string, id string) {
	if reply == nil {
		return
	}
	select {
	case reply <- id:
	default:
	}
}
