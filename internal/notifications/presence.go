package notifications

import (
	"context"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	presenceOnlineSetKey  = "ws:online_users"
	presenceLastSeenKeyNS = "ws:last_seen:"
	presenceLastSeenTTL   = 90 * time.Second
	presenceReaperTick    = 60 * time.Second
)

// Presence mirrors active websocket users in Redis so online status
// survives across API instances. Without Redis it degrades to local
// connection counting.
type Presence struct {
	rdb *redis.Client

	mu         sync.RWMutex
	connCounts map[uint]int

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewPresence creates a presence tracker and starts the Redis reaper when
// Redis is available.
func NewPresence(rdb *redis.Client) *Presence {
	p := &Presence{
		rdb:        rdb,
		connCounts: make(map[uint]int),
		stopCh:     make(chan struct{}),
	}
	if rdb != nil {
		go p.reaperLoop()
	}
	return p
}

// Register records a new connection for the user.
func (p *Presence) Register(ctx context.Context, userID uint) {
	p.mu.Lock()
	p.connCounts[userID]++
	p.mu.Unlock()
	p.Touch(ctx, userID)
}

// Unregister drops one connection for the user and clears Redis presence
// when it was the last one.
func (p *Presence) Unregister(ctx context.Context, userID uint) {
	p.mu.Lock()
	n := p.connCounts[userID] - 1
	if n > 0 {
		p.connCounts[userID] = n
		p.mu.Unlock()
		return
	}
	delete(p.connCounts, userID)
	p.mu.Unlock()

	if p.rdb != nil {
		_ = p.rdb.SRem(ctx, presenceOnlineSetKey, formatUserID(userID)).Err()
	}
}

// Touch refreshes the user's presence record.
func (p *Presence) Touch(ctx context.Context, userID uint) {
	if p.rdb == nil {
		return
	}
	uid := formatUserID(userID)
	if err := p.rdb.SAdd(ctx, presenceOnlineSetKey, uid).Err(); err != nil {
		log.Printf("presence SADD failed for user %d: %v", userID, err)
	}
	if err := p.rdb.SetEx(ctx, presenceLastSeenKeyNS+uid, strconv.FormatInt(time.Now().Unix(), 10), presenceLastSeenTTL).Err(); err != nil {
		log.Printf("presence SETEX failed for user %d: %v", userID, err)
	}
}

// IsOnline reports whether the user has a live connection on any instance.
func (p *Presence) IsOnline(ctx context.Context, userID uint) bool {
	p.mu.RLock()
	local := p.connCounts[userID] > 0
	p.mu.RUnlock()
	if local {
		return true
	}
	if p.rdb == nil {
		return false
	}
	exists, err := p.rdb.Exists(ctx, presenceLastSeenKeyNS+formatUserID(userID)).Result()
	return err == nil && exists > 0
}

// OnlineCount returns the number of distinct online users.
func (p *Presence) OnlineCount(ctx context.Context) int {
	if p.rdb != nil {
		if members, err := p.rdb.SMembers(ctx, presenceOnlineSetKey).Result(); err == nil {
			return len(members)
		}
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.connCounts)
}

// Stop terminates the reaper loop.
func (p *Presence) Stop() {
	p.stopOnce.Do(func() {
		close(p.stopCh)
	})
}

// reapOnce removes online-set members whose last-seen key has expired.
func (p *Presence) reapOnce(ctx context.Context) {
	members, err := p.rdb.SMembers(ctx, presenceOnlineSetKey).Result()
	if err != nil {
		return
	}
	for _, raw := range members {
		exists, err := p.rdb.Exists(ctx, presenceLastSeenKeyNS+raw).Result()
		if err != nil || exists > 0 {
			continue
		}
		_ = p.rdb.SRem(ctx, presenceOnlineSetKey, raw).Err()
	}
}

func (p *Presence) reaperLoop() {
	ticker := time.NewTicker(presenceReaperTick)
	defer ticker.Stop()
	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.reapOnce(context.Background())
		}
	}
}

func formatUserID(userID uint) string {
	return strconv.FormatUint(uint64(userID), 10)
}
