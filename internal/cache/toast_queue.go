package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fetan/fetan_admin/internal/flash"
)

// toastTTL bounds how long an unread toast survives.
const toastTTL = 10 * time.Minute

// ToastQueue keeps toasts in a Redis list per browser session.
// Key: fetan_admin_flash:{sid}
type ToastQueue struct {
	redis *RedisClient
}

// NewToastQueue creates a new ToastQueue.
func NewToastQueue(redis *RedisClient) *ToastQueue {
	return &ToastQueue{redis: redis}
}

// Push appends a toast to sid's queue.
func (q *ToastQueue) Push(ctx context.Context, sid string, msg flash.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal toast: %w", err)
	}
	return q.redis.Push(ctx, flash.Key(sid), toastTTL, string(data))
}

// Drain returns and removes every toast queued for sid. Entries that fail to
// decode are skipped.
func (q *ToastQueue) Drain(ctx context.Context, sid string) ([]flash.Message, error) {
	raw, err := q.redis.Drain(ctx, flash.Key(sid))
	if err != nil {
		return nil, err
	}
	msgs := make([]flash.Message, 0, len(raw))
	for _, r := range raw {
		var m flash.Message
		if err := json.Unmarshal([]byte(r), &m); err != nil {
			log.Warn().Err(err).Msg("Dropping undecodable toast")
			continue
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}
