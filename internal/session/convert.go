package session

import "github.com/Prannn182/CodeCollab-Frontend/protocol/wire"

// FromRoomJoined converts a room-joined payload. selfID is the connection id
// the payload should be matched against.
func FromRoomJoined(p wire.RoomJoinedPayload, selfID string) RoomSnapshot {
	snap := RoomSnapshot{
		RoomID:   p.RoomID,
		Code:     p.Code,
		Language: p.Language,
		SelfID:   selfID,
	}
	if p.Users != nil {
		snap.Users = make([]User, 0, len(p.Users))
		for _, u := range p.Users {
			snap.Users = append(snap.Users, userFromWire(u))
		}
	}
	for _, m := range p.Messages {
		snap.Messages = append(snap.Messages, messageFromWire(m))
	}
	return snap
}

// FromUserJoined converts a user-joined payload.
func FromUserJoined(p wire.UserJoinedPayload) UserJoined {
	return UserJoined{User: userFromWire(p.User), UserCount: p.UserCount}
}

// FromChatMessage converts an inbound chat-message payload.
func FromChatMessage(p wire.Message) ChatReceived {
	return ChatReceived{Message: messageFromWire(p)}
}

// FromCursorUpdated converts a cursor-updated payload.
func FromCursorUpdated(p wire.CursorUpdatedPayload) CursorUpdated {
	return CursorUpdated{UserID: p.UserID, Cursor: Cursor{Line: p.Cursor.Line, Column: p.Cursor.Ch}}
}

// WireCursor converts a local cursor to its wire shape.
func WireCursor(c Cursor) wire.Cursor {
	return wire.Cursor{Line: c.Line, Ch: c.Column}
}

func userFromWire(u wire.User) User {
	out := User{ID: u.ID, Username: u.Username, IsTyping: u.IsTyping}
	if u.Cursor != nil {
		out.Cursor = &Cursor{Line: u.Cursor.Line, Column: u.Cursor.Ch}
	}
	return out
}

func messageFromWire(m wire.Message) Message {
	return Message{
		ID:        m.ID.String(),
		UserID:    m.UserID,
		Username:  m.Username,
		Body:      m.Message,
		Timestamp: m.Timestamp.String(),
	}
}
