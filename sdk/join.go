package sdk

import (
	"context"
	"fmt"
	"time"

	"github.com/Prannn182/CodeCollab-Frontend/internal/outbound"
	"github.com/Prannn182/CodeCollab-Frontend/internal/router"
	"github.com/Prannn182/CodeCollab-Frontend/internal/session"
	"github.com/Prannn182/CodeCollab-Frontend/pkg/logger"
	"github.com/Prannn182/CodeCollab-Frontend/protocol/wire"
)

// JoinRoom connects if needed, joins roomID as username and waits for the
// room snapshot. A server rejection is returned as *session.ApplicationError
// and leaves the connection up. The whole call is bounded by the configured
// join timeout.
func (c *Client) JoinRoom(ctx context.Context, roomID, username, language string) error {
	req, err := outbound.NewJoinRequest(roomID, username, language)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.unbind != nil {
		c.unbind()
	}
	c.room = nil
	c.joinedOn = ""
	c.unbind = c.router.Bind(c.handlers())
	c.mu.Unlock()

	c.typing.Cancel()
	c.store.Reset()

	ctx, cancel := context.WithTimeout(ctx, c.cfg.JoinTimeout)
	defer cancel()

	reply := make(chan error, 1)
	if err := c.store.ExpectJoin(ctx, reply); err != nil {
		return fmt.Errorf("join room %s: %w", req.RoomID, err)
	}
	id, err := c.out.JoinRoom(ctx, req)
	if err != nil {
		c.store.CancelJoin(reply)
		return err
	}

	select {
	case err := <-reply:
		if err != nil {
			return fmt.Errorf("join room %s: %w", req.RoomID, err)
		}
	case <-ctx.Done():
		c.store.CancelJoin(reply)
		if ctx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("join room %s: %w", req.RoomID, ErrJoinTimeout)
		}
		return fmt.Errorf("join room %s: %w", req.RoomID, ctx.Err())
	}

	c.mu.Lock()
	c.room = &req
	c.joinedOn = id
	c.mu.Unlock()
	logger.Infof("sdk: joined room %s as %s", req.RoomID, req.Username)
	return nil
}

// handlers maps wire payloads onto session events. Handlers run on the
// transport's delivery goroutine and block until the store accepts the event,
// which keeps store order equal to delivery order.
func (c *Client) handlers() router.Handlers {
	return router.Handlers{
		RoomJoined: func(p wire.RoomJoinedPayload) {
			c.apply(session.FromRoomJoined(p, c.conn.Status().TransportID))
		},
		UserJoined: func(p wire.UserJoinedPayload) {
			c.apply(session.FromUserJoined(p))
		},
		UserLeft: func(p wire.UserLeftPayload) {
			c.apply(session.UserLeft{UserID: p.UserID})
		},
		CodeUpdated: func(p wire.CodeUpdatedPayload) {
			c.apply(session.CodeUpdated{Code: p.Code})
		},
		LanguageUpdated: func(p wire.LanguageUpdatedPayload) {
			c.apply(session.LanguageUpdated{Language: p.Language, Code: p.Code})
		},
		CursorUpdated: func(p wire.CursorUpdatedPayload) {
			c.apply(session.FromCursorUpdated(p))
		},
		UserTyping: func(p wire.UserTypingPayload) {
			c.apply(session.TypingChanged{UserID: p.UserID, IsTyping: p.IsTyping})
		},
		ChatMessage: func(p wire.Message) {
			c.apply(session.FromChatMessage(p))
		},
		Error: func(p wire.ErrorPayload) {
			logger.Warnf("sdk: server error: %s", p.Message)
			c.apply(session.ServerError{Message: p.Message})
		},
		CodeOutput: func(p wire.CodeOutputPayload) {
			c.apply(session.CodeOutput{Output: p.Output, Error: p.Error})
		},
	}
}

const applyTimeout = 5 * time.Second

func (c *Client) apply(ev session.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), applyTimeout)
	defer cancel()
	if err := c.store.Apply(ctx, ev); err != nil {
		logger.Debugf("sdk: drop %T: %v", ev, err)
	}
}
