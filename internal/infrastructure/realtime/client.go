package realtime

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"pulsechat/pkg/logger"
)

// Client-initiated message types. Everything else flows server → client.
const (
	MessageTypePing      = "ping"
	MessageTypePong      = "pong"
	MessageTypeJoinChat  = "join_chat"
	MessageTypeLeaveChat = "leave_chat"
)

type clientMessage struct {
	Type   string `json:"type"`
	ChatID string `json:"chat_id,omitempty"`
}

type Client struct {
	UserID string
	Conn   *websocket.Conn
	Send   chan []byte
}

// ReadPump consumes client frames: topic joins/leaves and pings. Exits and
// unregisters on any read error.
func (c *Client) ReadPump(h *Hub) {
	defer func() {
		h.Unregister <- c
		c.Conn.Close()
	}()

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Error("websocket read error for %s: %v", c.UserID, err)
			}
			break
		}

		var msg clientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			logger.Debug("Ignoring malformed frame from %s", c.UserID)
			continue
		}

		switch msg.Type {
		case MessageTypeJoinChat:
			if msg.ChatID != "" {
				h.JoinChat(c.UserID, msg.ChatID)
			}
		case MessageTypeLeaveChat:
			if msg.ChatID != "" {
				h.LeaveChat(c.UserID, msg.ChatID)
			}
		case MessageTypePing:
			pong, _ := json.Marshal(map[string]string{
				"type":      MessageTypePong,
				"timestamp": time.Now().UTC().Format(time.RFC3339),
			})
			select {
			case c.Send <- pong:
			default:
			}
		default:
			logger.Debug("Ignoring unknown frame type %q from %s", msg.Type, c.UserID)
		}
	}
}

// WritePump drains the send channel onto the connection.
func (c *Client) WritePump() {
	defer c.Conn.Close()

	for {
		message, ok := <-c.Send
		if !ok {
			c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}

		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			logger.Error("websocket write error for %s: %v", c.UserID, err)
			return
		}
	}
}
