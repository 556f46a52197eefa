package notifications

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"

	"wayfarer/internal/observability"

	"github.com/gofiber/websocket/v2"
	"github.com/redis/go-redis/v9"
)

const (
	maxConnsPerUser = 8
	maxTotalConns   = 10000
)

// Hub maps userID -> connected websocket clients and fans incoming
// notification payloads out to them.
type Hub struct {
	mu         sync.RWMutex
	conns      map[uint]map[*Client]struct{}
	totalConns int
	presence   *Presence
}

// NewHub creates a new Hub. A Redis client enables cross-instance
// presence; nil keeps presence local.
func NewHub(redisClients ...*redis.Client) *Hub {
	var rdb *redis.Client
	if len(redisClients) > 0 {
		rdb = redisClients[0]
	}
	return &Hub{
		conns:    make(map[uint]map[*Client]struct{}),
		presence: NewPresence(rdb),
	}
}

// Register adds a connection for a user, enforcing per-user and global
// connection limits.
func (h *Hub) Register(userID uint, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()

	if h.totalConns >= maxTotalConns {
		h.mu.Unlock()
		return nil, errors.New("server connection limit reached")
	}

	m, ok := h.conns[userID]
	if !ok {
		m = make(map[*Client]struct{})
		h.conns[userID] = m
	}
	if len(m) >= maxConnsPerUser {
		h.mu.Unlock()
		return nil, errors.New("user connection limit reached")
	}

	client := NewClient(h, conn, userID)
	client.OnActivity = func(uid uint) {
		h.presence.Touch(context.Background(), uid)
	}

	m[client] = struct{}{}
	h.totalConns++
	h.mu.Unlock()

	h.presence.Register(context.Background(), userID)
	observability.WebSocketConnectionsTotal.Inc()

	return client, nil
}

// UnregisterClient removes a client from the hub.
func (h *Hub) UnregisterClient(client *Client) {
	h.mu.Lock()
	removed := false
	if m, ok := h.conns[client.UserID]; ok {
		if _, exists := m[client]; exists {
			delete(m, client)
			h.totalConns--
			removed = true
		}
		if len(m) == 0 {
			delete(h.conns, client.UserID)
		}
	}
	h.mu.Unlock()

	if removed {
		h.presence.Unregister(context.Background(), client.UserID)
		observability.WebSocketConnectionsTotal.Dec()
	}
}

// Broadcast sends message to every connection the user has on this instance.
func (h *Hub) Broadcast(userID uint, message string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if clients, ok := h.conns[userID]; ok {
		data := []byte(message)
		for c := range clients {
			c.TrySend(data)
		}
	}
}

// BroadcastAll sends message to every connected websocket client.
func (h *Hub) BroadcastAll(message string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	data := []byte(message)
	for _, clients := range h.conns {
		for c := range clients {
			c.TrySend(data)
		}
	}
}

// IsOnline reports whether a user has at least one live connection.
func (h *Hub) IsOnline(userID uint) bool {
	return h.presence.IsOnline(context.Background(), userID)
}

// OnlineCount returns the number of distinct online users.
func (h *Hub) OnlineCount() int {
	return h.presence.OnlineCount(context.Background())
}

// StartWiring subscribes the hub to the notifier's Redis channels and
// forwards payloads to the matching connections.
func (h *Hub) StartWiring(ctx context.Context, n *Notifier) error {
	return n.StartPatternSubscriber(ctx, func(channel, payload string) {
		if channel == "notifications:broadcast" {
			h.BroadcastAll(payload)
			return
		}
		if !strings.HasPrefix(channel, "notifications:user:") {
			log.Printf("invalid notification channel: %s", channel)
			return
		}
		userID, err := ParseUserChannel(channel)
		if err != nil {
			log.Printf("invalid notification channel: %s", channel)
			return
		}
		h.Broadcast(userID, payload)
	})
}

// Shutdown gracefully closes all websocket connections.
func (h *Hub) Shutdown(_ context.Context) error {
	h.presence.Stop()

	h.mu.Lock()
	for userID, userConns := range h.conns {
		for client := range userConns {
			if client.Conn == nil {
				continue
			}
			if err := client.Conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "Server shutting down")); err != nil {
				log.Printf("failed to write close message for user %d: %v", userID, err)
			}
			if err := client.Conn.Close(); err != nil {
				log.Printf("failed to close websocket for user %d: %v", userID, err)
			}
		}
	}
	h.conns = make(map[uint]map[*Client]struct{})
	h.totalConns = 0
	h.mu.Unlock()

	return nil
}
