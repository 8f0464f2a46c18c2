package session

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const liveAddressPrefix = "presence:live:"

// PresenceStore mirrors the live-address marker into Redis with a TTL so
// other services can answer "is this user reachable" without a round trip
// into this process. The in-memory registry stays authoritative.
type PresenceStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewPresenceStore(rdb *redis.Client, ttl time.Duration) *PresenceStore {
	return &PresenceStore{rdb: rdb, ttl: ttl}
}

func (p *PresenceStore) SetLive(ctx context.Context, userID, connID string) error {
	return p.rdb.Set(ctx, liveAddressPrefix+userID, connID, p.ttl).Err()
}

func (p *PresenceStore) Refresh(ctx context.Context, userID string) error {
	return p.rdb.Expire(ctx, liveAddressPrefix+userID, p.ttl).Err()
}

func (p *PresenceStore) ClearLive(ctx context.Context, userID string) error {
	return p.rdb.Del(ctx, liveAddressPrefix+userID).Err()
}
