package session

// Cursor is a caret position in the shared document.
type Cursor struct {
	Line   int
	Column int
}

// User is one roster entry. ID equality is the only join key.
type User struct {
	ID       string
	Username string
	Cursor   *Cursor
	IsTyping bool
}

// Document is the shared buffer. Updates always replace it whole.
type Document struct {
	Language string
	Code     string
}

// Message is one chat line. Timestamp is kept as the server sent it.
type Message struct {
	ID        string
	UserID    string
	Username  string
	Body      string
	Timestamp string
}

// RunOutput is the result of the last run request.
type RunOutput struct {
	Output  string
	Error   string
	Pending bool
}

// State is the local mirror of one room membership. The zero value means no
// room is joined.
//
// Roster and ChatLog are never mutated in place; every transition that
// changes them allocates a new slice, so a State handed to a subscriber stays
// valid after later events.
type State struct {
	RoomID      string
	LocalUserID string
	Roster      []User
	// UserCount is the count last reported by the server.
	UserCount int
	Document  Document
	ChatLog   []Message
	RunOutput RunOutput
	LastError string
}

// Joined reports whether a snapshot has been applied.
func (s State) Joined() bool { return s.RoomID != "" }

// User returns the roster entry with the given id.
func (s State) User(id string) (User, bool) {
	if i := s.indexOf(id); i >= 0 {
		return s.Roster[i], true
	}
	return User{}, false
}

// LocalUser returns the roster entry of the local participant.
func (s State) LocalUser() (User, bool) {
	if s.LocalUserID == "" {
		return User{}, false
	}
	return s.User(s.LocalUserID)
}

// TypingUsers returns the other participants currently typing, in roster
// order.
func (s State) TypingUsers() []User {
	var out []User
	for _, u := range s.Roster {
		if u.IsTyping && u.ID != s.LocalUserID {
			out = append(out, u)
		}
	}
	return out
}

func (s State) indexOf(id string) int {
	for i, u := range s.Roster {
		if u.ID == id {
			return i
		}
	}
	return -1
}
