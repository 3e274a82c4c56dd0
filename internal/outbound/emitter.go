// Package outbound encodes local intents into server events.
//
// Joining a room waits for the connection. Every other command is
// fire-and-forget: it is dropped when the connection is not up, since the
// server re-sends a full snapshot after reconnecting.
package outbound

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Prannn182/CodeCollab-Frontend/internal/connection"
	"github.com/Prannn182/CodeCollab-Frontend/internal/session"
	"github.com/Prannn182/CodeCollab-Frontend/pkg/logger"
	"github.com/Prannn182/CodeCollab-Frontend/protocol/wire"
)

// DefaultJoinTimeout bounds the wait for a connection before join-room.
const DefaultJoinTimeout = 10 * time.Second

var (
	// ErrRoomRequired is returned for a blank room id.
	ErrRoomRequired = errors.New("room id is required")
	// ErrUsernameRequired is returned for a blank username.
	ErrUsernameRequired = errors.New("username is required")
	// ErrEmptyMessage is returned for a blank chat message.
	ErrEmptyMessage = errors.New("message is empty")
)

// Conn is the part of connection.Manager the emitter needs.
type Conn interface {
	WaitForConnection(ctx context.Context, timeout time.Duration) (string, error)
	Emit(event string, payload any) error
}

// JoinRequest is a validated join-room command.
type JoinRequest struct {
	RoomID   string
	Username string
	Language string
}

// NewJoinRequest trims and validates the join form fields. An empty
// language selects wire.DefaultLanguage.
func NewJoinRequest(roomID, username, language string) (JoinRequest, error) {
	req := JoinRequest{
		RoomID:   strings.TrimSpace(roomID),
		Username: strings.TrimSpace(username),
		Language: strings.TrimSpace(language),
	}
	if req.RoomID == "" {
		return req, ErrRoomRequired
	}
	if req.Username == "" {
		return req, ErrUsernameRequired
	}
	if req.Language == "" {
		req.Language = wire.DefaultLanguage
	}
	if err := wire.ValidateLanguage(req.Language); err != nil {
		return req, err
	}
	return req, nil
}

// Emitter sends commands through a Conn.
type Emitter struct {
	conn        Conn
	joinTimeout time.Duration
}

// New returns an Emitter. A non-positive joinTimeout selects
// DefaultJoinTimeout.
func New(conn Conn, joinTimeout time.Duration) *Emitter {
	if joinTimeout <= 0 {
		joinTimeout = DefaultJoinTimeout
	}
	return &Emitter{conn: conn, joinTimeout: joinTimeout}
}

// JoinRoom waits for the connection and sends join-room. It returns the
// transport id the request went out on. A connection timeout is returned
// wrapped, matching connection.ErrConnectionTimeout.
func (e *Emitter) JoinRoom(ctx context.Context, req JoinRequest) (string, error) {
	id, err := e.conn.WaitForConnection(ctx, e.joinTimeout)
	if err != nil {
		return "", fmt.Errorf("join room %s: %w", req.RoomID, err)
	}
	payload := wire.JoinRoomPayload{RoomID: req.RoomID, Username: req.Username, Language: req.Language}
	if err := e.conn.Emit(wire.EventJoinRoom, payload); err != nil {
		return "", fmt.Errorf("join room %s: %w", req.RoomID, err)
	}
	logger.Debugf("outbound: join-room %s as %s (%s)", req.RoomID, req.Username, req.Language)
	return id, nil
}

// CodeChange sends the full document text.
func (e *Emitter) CodeChange(code string) {
	e.send(wire.EventCodeChange, wire.CodeChangePayload{Code: code})
}

// CursorUpdate sends the local caret.
func (e *Emitter) CursorUpdate(c session.Cursor) {
	e.send(wire.EventCursorUpdate, wire.CursorUpdatePayload{Cursor: session.WireCursor(c)})
}

// TypingStart sends typing-start.
func (e *Emitter) TypingStart() {
	e.send(wire.EventTypingStart, wire.Empty{})
}

// TypingStop sends typing-stop.
func (e *Emitter) TypingStop() {
	e.send(wire.EventTypingStop, wire.Empty{})
}

// ChatMessage sends a trimmed chat line. Blank lines are rejected.
func (e *Emitter) ChatMessage(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyMessage
	}
	e.send(wire.EventChatMessage, wire.ChatMessagePayload{Message: text})
	return nil
}

// LanguageChange asks the server to switch the room language.
func (e *Emitter) LanguageChange(language string) error {
	if err := wire.ValidateLanguage(language); err != nil {
		return err
	}
	e.send(wire.EventLanguageChange, wire.LanguageChangePayload{Language: language})
	return nil
}

// RunCode asks the server to execute code.
func (e *Emitter) RunCode(code, language string) error {
	if err := wire.ValidateLanguage(language); err != nil {
		return err
	}
	e.send(wire.EventRunCode, wire.RunCodePayload{Code: code, Language: language})
	return nil
}

// GetRoomInfo asks the server to re-send the room snapshot.
func (e *Emitter) GetRoomInfo() {
	e.send(wire.EventGetRoomInfo, wire.Empty{})
}

func (e *Emitter) send(event string, payload any) {
	err := e.conn.Emit(event, payload)
	switch {
	case err == nil:
		logger.Tracef("outbound: sent %s", event)
	case errors.Is(err, connection.ErrNotConnected):
		logger.Tracef("outbound: not connected, dropped %s", event)
	default:
		logger.Warnf("outbound: send %s: %v", event, err)
	}
}
