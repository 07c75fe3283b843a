package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/nevroth/nevroth/internal/models"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

// Client is one live websocket connection of an admitted user. chatID is
// zero for chat-list connections.
type Client struct {
	id     string
	hub    *Hub
	conn   *websocket.Conn
	user   models.Sender
	chatID int64

	send chan []byte

	// groups is guarded by hub.mu.
	groups map[string]struct{}

	done      chan struct{}
	closeOnce sync.Once
	closeCode int
}

func newClient(hub *Hub, conn *websocket.Conn, user models.Sender, chatID int64, buffer int) *Client {
	return &Client{
		id:     uuid.NewString(),
		hub:    hub,
		conn:   conn,
		user:   user,
		chatID: chatID,
		send:   make(chan []byte, buffer),
		groups: make(map[string]struct{}),
		done:   make(chan struct{}),
	}
}

// enqueue hands a frame to the write loop without blocking. It reports
// false when the connection is closing or its queue is full.
func (c *Client) enqueue(frame []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

// closeWith asks the write loop to send a close frame with code and shut
// the connection. Only the first call has an effect.
func (c *Client) closeWith(code int) {
	c.closeOnce.Do(func() {
		c.closeCode = code
		close(c.done)
	})
}

// readPump consumes client events until the connection fails. It always
// removes the client from the hub on the way out.
func (c *Client) readPump() {
	defer func() {
		c.hub.LeaveAll(c)
		c.closeWith(websocket.CloseNormalClosure)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				c.hub.logger.Warn(context.Background(), "websocket read error", "conn_id", c.id, "error", err)
			}
			return
		}

		var event ClientEvent
		if err := json.Unmarshal(data, &event); err != nil {
			c.hub.logger.Debug(context.Background(), "invalid client frame", "conn_id", c.id, "error", err)
			continue
		}
		c.handleEvent(event)
	}
}

func (c *Client) handleEvent(event ClientEvent) {
	switch event.Type {
	case EventTyping:
		c.publishTyping(false)
	case EventStopTyping:
		c.publishTyping(true)
	default:
		c.hub.logger.Debug(context.Background(), "ignoring client event", "conn_id", c.id, "type", event.Type)
	}
}

func (c *Client) publishTyping(stopped bool) {
	if c.chatID == 0 {
		return
	}
	c.hub.PublishExcept(RoomGroup(c.chatID), TypingEvent{User: c.user, Stopped: stopped}, c.user.ID)
}

// writePump is the only writer on the connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.closeWith(websocket.CloseAbnormalClosure)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.closeWith(websocket.CloseAbnormalClosure)
				return
			}

		case <-c.done:
			msg := websocket.FormatCloseMessage(c.closeCode, "")
			c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
			return
		}
	}
}
