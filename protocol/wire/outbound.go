package wire

// JoinRoomPayload is the client -> server payload for "join-room".
type JoinRoomPayload struct {
	RoomID   string `json:"roomId"`
	Username string `json:"username"`
	Language string `json:"language"`
}

// CodeChangePayload is the client -> server payload for "code-change".
type CodeChangePayload struct {
	Code string `json:"code"`
}

// CursorUpdatePayload is the client -> server payload for "cursor-update".
type CursorUpdatePayload struct {
	Cursor Cursor `json:"cursor"`
}

// ChatMessagePayload is the client -> server payload for "chat-message".
type ChatMessagePayload struct {
	Message string `json:"message"`
}

// LanguageChangePayload is the client -> server payload for
// "language-change".
type LanguageChangePayload struct {
	Language string `json:"language"`
}

// RunCodePayload is the client -> server payload for "run-code".
type RunCodePayload struct {
	Code     string `json:"code"`
	Language string `json:"language"`
}

// Empty is the payload of argument-less events (typing-start, typing-stop,
// get-room-info).
type Empty struct{}
