package notifications

import (
	"log"
	"time"

	"wayfarer/internal/observability"

	"github.com/gofiber/websocket/v2"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096
)

// Client is the middleman between one websocket connection and the hub.
type Client struct {
	Hub *Hub

	// The websocket connection.
	Conn *websocket.Conn

	// Buffered channel of outbound messages.
	Send chan []byte

	// UserID for this client
	UserID uint

	// OnActivity is invoked whenever the peer shows signs of life.
	OnActivity func(userID uint)
}

// NewClient creates a new Client instance
func NewClient(hub *Hub, conn *websocket.Conn, userID uint) *Client {
	return &Client{
		Hub:    hub,
		Conn:   conn,
		UserID: userID,
		Send:   make(chan []byte, 64),
	}
}

// ReadPump drains the websocket connection. The notification feed is
// one-way, so incoming frames only refresh the read deadline and presence.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.UnregisterClient(c)
		_ = c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		if c.OnActivity != nil {
			c.OnActivity(c.UserID)
		}
		return nil
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("ReadPump Error (User %d): %v", c.UserID, err)
			}
			break
		}
		if c.OnActivity != nil {
			c.OnActivity(c.UserID)
		}
	}
}

// WritePump pumps messages from the hub to the websocket connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
			observability.WebSocketEventsTotal.WithLabelValues("notification_sent").Inc()

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// TrySend attempts to send a message to the client, dropping it when the
// buffer is full. Notifications are re-fetchable, so a dropped frame only
// costs the client a refresh.
func (c *Client) TrySend(message []byte) {
	defer func() {
		if r := recover(); r != nil {
			observability.WebSocketEventsTotal.WithLabelValues("drop_closed").Inc()
		}
	}()

	select {
	case c.Send <- message:
	default:
		observability.WebSocketEventsTotal.WithLabelValues("drop_full").Inc()
		log.Printf("Client %d: buffer full, dropped notification", c.UserID)
	}
}
