package session

// Event is an input to Reduce. The set is closed: only the types in this file
// implement it.
type Event interface {
	isSessionEvent()
}

// RoomSnapshot replaces the whole state. SelfID is the local connection id,
// used to find the local user in Users. A nil Users means the key was
// missing from the payload.
type RoomSnapshot struct {
	RoomID   string
	Users    []User
	Code     string
	Language string
	Messages []Message
	SelfID   string
}

// UserJoined adds a participant. UserCount is the server's roster size.
type UserJoined struct {
	User      User
	UserCount int
}

// UserLeft removes a participant.
type UserLeft struct {
	UserID string
}

// CodeUpdated replaces the document text.
type CodeUpdated struct {
	Code string
}

// LanguageUpdated replaces the language and the text together.
type LanguageUpdated struct {
	Language string
	Code     string
}

// ChatReceived appends a chat message.
type ChatReceived struct {
	Message Message
}

// CursorUpdated moves one participant's caret.
type CursorUpdated struct {
	UserID string
	Cursor Cursor
}

// TypingChanged sets one participant's typing flag.
type TypingChanged struct {
	UserID   string
	IsTyping bool
}

// LocalEdit records an edit made by the local user.
type LocalEdit struct {
	Code string
}

// RunRequested marks a run as in flight and clears the previous output.
type RunRequested struct{}

// RunCanceled clears the in-flight flag of a run whose result will not
// arrive. Any previous output stays cleared.
type RunCanceled struct{}

// CodeOutput stores the result of a run.
type CodeOutput struct {
	Output string
	Error  string
}

// ServerError records a server-reported error.
type ServerError struct {
	Message string
}

func (RoomSnapshot) isSessionEvent()    {}
func (UserJoined) isSessionEvent()      {}
func (UserLeft) isSessionEvent()        {}
func (CodeUpdated) isSessionEvent()     {}
func (LanguageUpdated) isSessionEvent() {}
func (ChatReceived) isSessionEvent()    {}
func (CursorUpdated) isSessionEvent()   {}
func (TypingChanged) isSessionEvent()   {}
func (LocalEdit) isSessionEvent()       {}
func (RunRequested) isSessionEvent()    {}
func (RunCanceled) isSessionEvent()     {}
func (CodeOutput) isSessionEvent()      {}
func (ServerError) isSessionEvent()     {}
