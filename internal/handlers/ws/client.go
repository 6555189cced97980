package ws

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/guesswho-game/guesswho/internal/broadcast"
	roomSvc "github.com/guesswho-game/guesswho/internal/services/room"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 64
)

// client is one authenticated websocket connection
type client struct {
	h    *Handler
	conn *websocket.Conn
	send chan []byte

	userID string

	mu        sync.Mutex
	roomID    string
	loggedOut bool
}

func newClient(h *Handler, conn *websocket.Conn, userID string) *client {
	return &client{
		h:      h,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		userID: userID,
	}
}

// Send queues a frame for delivery. Never blocks; a full buffer drops
// the frame and reports false.
func (c *client) Send(frame []byte) bool {
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

// currentRoom returns the room this connection has joined, if any
func (c *client) currentRoom() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.roomID
}

func (c *client) setRoom(roomID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roomID = roomID
}

func (c *client) markLoggedOut() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loggedOut = true
}

func (c *client) isLoggedOut() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loggedOut
}

// readPump reads commands until the connection drops, dispatching each
// and sending exactly one acknowledgment per command
func (c *client) readPump() {
	defer c.disconnect()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.h.logger.Warn("websocket read failed", "user_id", c.userID, "error", err)
			}
			return
		}

		var env envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			c.ack(&ack{Error: &ackError{Kind: KindValidation, Message: ErrBadPayload.Error()}})
			continue
		}

		result, err := c.dispatch(context.Background(), &env)
		response := &ack{Seq: env.Seq}
		if err != nil {
			response.Error = &ackError{Kind: classify(err), Message: err.Error()}
		} else {
			response.Data = result
		}
		c.ack(response)
	}
}

// writePump drains the send queue onto the wire and keeps the
// connection alive with pings
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *client) ack(a *ack) {
	frame, err := json.Marshal(a)
	if err != nil {
		c.h.logger.Error("failed to marshal acknowledgment", "user_id", c.userID, "error", err)
		return
	}
	if !c.Send(frame) {
		c.h.logger.Warn("dropped acknowledgment", "user_id", c.userID, "seq", a.Seq)
	}
}

// disconnect tears the connection down: the member is deactivated in
// their room unless a newer connection already took the membership over
func (c *client) disconnect() {
	if err := c.leaveCurrentRoom(context.Background()); err != nil {
		c.h.logger.Warn("leave on disconnect failed", "user_id", c.userID, "error", err)
	}
	c.h.hub.Drop(c)
	close(c.send)
	c.h.logger.Info("user disconnected", "user_id", c.userID)
}

// leaveCurrentRoom applies the departure and emits the userLeft event,
// role reassignment included
func (c *client) leaveCurrentRoom(ctx context.Context) error {
	roomID := c.currentRoom()
	if roomID == "" {
		return nil
	}

	out, err := c.h.rooms.LeaveRoom(ctx, &roomSvc.LeaveRoomInput{
		RoomID:    roomID,
		UserID:    c.userID,
		LoggedOut: c.isLoggedOut(),
	})
	stalled := errors.Is(err, roomSvc.ErrNoEligibleReplacement)
	if err != nil && !stalled {
		c.leaveGroups(roomID)
		return err
	}

	c.leaveGroups(roomID)

	if out.Left {
		payload := map[string]interface{}{"id": c.userID}
		if out.Message != nil {
			payload["message"] = out.Message
		}
		if out.Replacement != nil {
			payload["additionalUpdate"] = map[string]interface{}{
				"id":    out.Replacement.UserID,
				"state": out.Replacement.State,
			}
		}
		c.broadcast(ctx, broadcast.Room(roomID), "userLeft", payload)

		if out.Replacement != nil && len(out.Questions) > 0 {
			c.broadcast(ctx, broadcast.RoomParticipant(roomID, out.Replacement.UserID),
				"newQuestionsList", map[string]interface{}{"questions": out.Questions})
		}
	}

	if stalled {
		return err
	}
	return nil
}

func (c *client) leaveGroups(roomID string) {
	c.h.hub.Leave(broadcast.Room(roomID).Channel(), c)
	c.h.hub.Leave(broadcast.RoomParticipant(roomID, c.userID).Channel(), c)
	c.setRoom("")
}

func (c *client) joinGroups(roomID string) {
	c.h.hub.Join(broadcast.Room(roomID).Channel(), c)
	c.h.hub.Join(broadcast.RoomParticipant(roomID, c.userID).Channel(), c)
	c.setRoom(roomID)
}

// broadcast emits an event; a delivery failure is logged and never
// rolls back the state change that produced it
func (c *client) broadcast(ctx context.Context, group broadcast.Group, event string, payload interface{}) {
	if err := c.h.bus.Broadcast(ctx, group, event, payload); err != nil {
		c.h.logger.Warn("broadcast failed", "event", event, "error", err)
	}
}
