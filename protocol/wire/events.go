// Package wire defines the Socket.IO event names and JSON payloads exchanged
// with the room server.
package wire

// Outbound (client -> server) event names.
const (
	EventJoinRoom       = "join-room"
	EventCodeChange     = "code-change"
	EventCursorUpdate   = "cursor-update"
	EventTypingStart    = "typing-start"
	EventTypingStop     = "typing-stop"
	EventChatMessage    = "chat-message"
	EventLanguageChange = "language-change"
	EventRunCode        = "run-code"
	EventGetRoomInfo    = "get-room-info"
)

// Inbound (server -> client) event names. "chat-message" is used in both
// directions.
const (
	EventRoomJoined      = "room-joined"
	EventUserJoined      = "user-joined"
	EventUserLeft        = "user-left"
	EventCodeUpdated     = "code-updated"
	EventLanguageUpdated = "language-updated"
	EventCursorUpdated   = "cursor-updated"
	EventUserTyping      = "user-typing"
	EventError           = "error"
	EventCodeOutput      = "code-output"
)

// InboundEvents lists every server event the client subscribes to.
var InboundEvents = []string{
	EventRoomJoined,
	EventUserJoined,
	EventUserLeft,
	EventCodeUpdated,
	EventLanguageUpdated,
	EventCursorUpdated,
	EventUserTyping,
	EventChatMessage,
	EventError,
	EventCodeOutput,
}
