// Package flash is the toast channel: messages queued for a browser session
// and shown on its next rendered page.
package flash

import (
	"context"
	"sync"
)

// Level of a toast.
type Level string

const (
	Success Level = "success"
	Error   Level = "error"
	Info    Level = "info"
)

// Message is one toast.
type Message struct {
	Level Level  `json:"level"`
	Text  string `json:"text"`
}

// Queue stores toasts per browser session id. Drain returns them in push
// order and empties the queue.
type Queue interface {
	Push(ctx context.Context, sid string, msg Message) error
	Drain(ctx context.Context, sid string) ([]Message, error)
}

// Key returns the storage key of a session's toast queue.
func Key(sid string) string {
	return "fetan_admin_flash:" + sid
}

// MemoryQueue is an in-process Queue.
type MemoryQueue struct {
	mu     sync.Mutex
	queues map[string][]Message
}

// NewMemoryQueue constructs an empty MemoryQueue.
func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{queues: make(map[string][]Message)}
}

// Push appends msg to sid's queue.
func (q *MemoryQueue) Push(_ context.Context, sid string, msg Message) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.queues[sid] = append(q.queues[sid], msg)
	return nil
}

// Drain returns and clears sid's queue.
func (q *MemoryQueue) Drain(_ context.Context, sid string) ([]Message, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	msgs := q.queues[sid]
	delete(q.queues, sid)
	return msgs, nil
}
