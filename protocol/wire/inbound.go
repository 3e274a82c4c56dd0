package wire

// Cursor is a caret position. The server echoes the {line, ch} shape the
// client sends.
type Cursor struct {
	Line int `json:"line"`
	Ch   int `json:"ch"`
}

// User is a roster entry as sent by the server.
type User struct {
	ID       string  `json:"id"`
	Username string  `json:"username"`
	Cursor   *Cursor `json:"cursor,omitempty"`
	IsTyping bool    `json:"isTyping,omitempty"`
}

// Message is a chat message. It is also the full payload of an inbound
// "chat-message" event.
type Message struct {
	ID        FlexString `json:"id"`
	UserID    string     `json:"userId"`
	Username  string     `json:"username"`
	Message   string     `json:"message"`
	Timestamp FlexString `json:"timestamp"`
}

// RoomJoinedPayload is the full room snapshot sent on (re)join.
//
// Users is a pointer-free slice; a missing "users" key decodes to nil, which
// callers treat as an invalid snapshot.
type RoomJoinedPayload struct {
	RoomID   string    `json:"roomId"`
	Users    []User    `json:"users"`
	Code     string    `json:"code"`
	Language string    `json:"language"`
	Messages []Message `json:"messages"`
}

// UserJoinedPayload announces a new roster member.
type UserJoinedPayload struct {
	User      User `json:"user"`
	UserCount int  `json:"userCount"`
}

// UserLeftPayload announces a roster removal.
type UserLeftPayload struct {
	UserID string `json:"userId"`
}

// CodeUpdatedPayload carries a full document snapshot.
type CodeUpdatedPayload struct {
	Code string `json:"code"`
}

// LanguageUpdatedPayload carries a language switch together with the
// (possibly templated) document for that language.
type LanguageUpdatedPayload struct {
	Language string `json:"language"`
	Code     string `json:"code"`
}

// CursorUpdatedPayload carries another user's caret.
type CursorUpdatedPayload struct {
	UserID string `json:"userId"`
	Cursor Cursor `json:"cursor"`
}

// UserTypingPayload carries another user's typing flag.
type UserTypingPayload struct {
	UserID   string `json:"userId"`
	IsTyping bool   `json:"isTyping"`
}

// ErrorPayload is a server-reported failure, typically a rejected join.
type ErrorPayload struct {
	Message string `json:"message"`
}

// CodeOutputPayload is the result of a run-code request.
type CodeOutputPayload struct {
	Output string `json:"output"`
	Error  string `json:"error"`
}
