package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fetan/fetan_admin/internal/session"
)

// SessionCache persists admin session records in Redis.
// Key: fetan_admin_token:{sid}
// TTL: SESSION_TTL, shortened to the token's exp claim
type SessionCache struct {
	redis *RedisClient
}

// NewSessionCache creates a new SessionCache.
func NewSessionCache(redis *RedisClient) *SessionCache {
	return &SessionCache{
		redis: redis,
	}
}

// Load retrieves the session record for sid.
func (c *SessionCache) Load(ctx context.Context, sid string) (*session.Record, error) {
	jsonData, err := c.redis.Get(ctx, session.Key(sid))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, session.ErrNoRecord
		}
		return nil, err
	}

	var rec session.Record
	if err := json.Unmarshal([]byte(jsonData), &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session record: %w", err)
	}
	return &rec, nil
}

// Save stores the session record for sid.
func (c *SessionCache) Save(ctx context.Context, sid string, rec *session.Record, ttl time.Duration) error {
	jsonData, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal session record: %w", err)
	}
	if err := c.redis.Set(ctx, session.Key(sid), string(jsonData), ttl); err != nil {
		return fmt.Errorf("failed to set session key: %w", err)
	}
	return nil
}

// Clear removes the session record for sid.
func (c *SessionCache) Clear(ctx context.Context, sid string) error {
	return c.redis.Delete(ctx, session.Key(sid))
}
