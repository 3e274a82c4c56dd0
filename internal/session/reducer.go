package session

import "slices"

// Reduce folds one event into the state. It is pure and deterministic.
//
// Only a RoomSnapshot can fail; on error the input state is returned as is.
// Deltas that name unknown users are no-ops. Anything but a RoomSnapshot is
// ignored while no room is joined.
func Reduce(state State, ev Event) (State, error) {
	if snap, ok := ev.(RoomSnapshot); ok {
		return applySnapshot(state, snap)
	}
	if !state.Joined() {
		return state, nil
	}

	switch e := ev.(type) {
	case UserJoined:
		return applyUserJoined(state, e), nil
	case UserLeft:
		return applyUserLeft(state, e), nil
	case CodeUpdated:
		state.Document.Code = e.Code
		return state, nil
	case LanguageUpdated:
		state.Document = Document{Language: e.Language, Code: e.Code}
		return state, nil
	case ChatReceived:
		return applyChat(state, e.Message), nil
	case CursorUpdated:
		c := e.Cursor
		return updateUser(state, e.UserID, func(u *User) { u.Cursor = &c }), nil
	case TypingChanged:
		return updateUser(state, e.UserID, func(u *User) { u.IsTyping = e.IsTyping }), nil
	case LocalEdit:
		state.Document.Code = e.Code
		return state, nil
	case RunRequested:
		state.RunOutput = RunOutput{Pending: true}
		return state, nil
	case RunCanceled:
		state.RunOutput.Pending = false
		return state, nil
	case CodeOutput:
		state.RunOutput = RunOutput{Output: e.Output, Error: e.Error}
		return state, nil
	case ServerError:
		state.LastError = e.Message
		return state, nil
	default:
		return state, nil
	}
}

func applySnapshot(state State, snap RoomSnapshot) (State, error) {
	if snap.RoomID == "" {
		return state, &ProtocolError{Event: "room-joined", Reason: "missing room id", Err: ErrInvalidSnapshot}
	}
	if snap.Users == nil {
		return state, &ProtocolError{Event: "room-joined", Reason: "missing user list", Err: ErrInvalidSnapshot}
	}

	roster := make([]User, 0, len(snap.Users))
	for _, u := range snap.Users {
		if u.ID == "" || slices.ContainsFunc(roster, func(have User) bool { return have.ID == u.ID }) {
			continue
		}
		roster = append(roster, cloneUser(u))
	}

	next := State{
		RoomID:    snap.RoomID,
		Roster:    roster,
		UserCount: len(roster),
		Document:  Document{Language: snap.Language, Code: snap.Code},
		ChatLog:   make([]Message, 0, len(snap.Messages)),
	}
	for _, m := range snap.Messages {
		next = applyChat(next, m)
	}
	if snap.SelfID != "" && next.indexOf(snap.SelfID) >= 0 {
		next.LocalUserID = snap.SelfID
	}
	return next, nil
}

func applyUserJoined(state State, e UserJoined) State {
	if e.UserCount > 0 {
		state.UserCount = e.UserCount
	}
	if e.User.ID == "" || state.indexOf(e.User.ID) >= 0 {
		return state
	}
	roster := make([]User, len(state.Roster), len(state.Roster)+1)
	copy(roster, state.Roster)
	state.Roster = append(roster, cloneUser(e.User))
	if e.UserCount <= 0 {
		state.UserCount = len(state.Roster)
	}
	return state
}

func applyUserLeft(state State, e UserLeft) State {
	i := state.indexOf(e.UserID)
	if i < 0 {
		return state
	}
	state.Roster = slices.Delete(slices.Clone(state.Roster), i, i+1)
	if state.UserCount > 0 {
		state.UserCount--
	}
	if state.LocalUserID == e.UserID {
		state.LocalUserID = ""
	}
	return state
}

func applyChat(state State, m Message) State {
	if m.ID != "" && slices.ContainsFunc(state.ChatLog, func(have Message) bool { return have.ID == m.ID }) {
		return state
	}
	log := make([]Message, len(state.ChatLog), len(state.ChatLog)+1)
	copy(log, state.ChatLog)
	state.ChatLog = append(log, m)
	return state
}

// updateUser rewrites one roster entry through fn on a fresh slice.
func updateUser(state State, id string, fn func(*User)) State {
	i := state.indexOf(id)
	if i < 0 {
		return state
	}
	roster := slices.Clone(state.Roster)
	u := cloneUser(roster[i])
	fn(&u)
	roster[i] = u
	state.Roster = roster
	return state
}

func cloneUser(u User) User {
	if u.Cursor != nil {
		c := *u.Cursor
		u.Cursor = &c
	}
	return u
}
