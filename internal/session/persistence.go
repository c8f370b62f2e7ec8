package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/fetan/fetan_admin/pkg/fetanapi"
)

// StorageKey is the fixed name the persisted token lives under; each browser
// session suffixes it with its sid.
const StorageKey = "fetan_admin_token"

// ErrNoRecord is returned by Persistence.Load when nothing is persisted.
var ErrNoRecord = errors.New("session: no persisted token")

// Record is what survives between requests for one browser session.
type Record struct {
	Token   string         `json:"token"`
	Admin   fetanapi.Admin `json:"admin"`
	SavedAt time.Time      `json:"savedAt"`
}

// Persistence durably stores the session record of a browser session.
type Persistence interface {
	Load(ctx context.Context, sid string) (*Record, error)
	Save(ctx context.Context, sid string, rec *Record, ttl time.Duration) error
	Clear(ctx context.Context, sid string) error
}

// Key returns the storage key for sid.
func Key(sid string) string {
	return StorageKey + ":" + sid
}

// MemoryPersistence keeps records in process memory. Used for development
// (SESSION_BACKEND=memory) and tests; records vanish on restart.
type MemoryPersistence struct {
	mu      sync.Mutex
	records map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	rec       Record
	expiresAt time.Time
}

// NewMemoryPersistence constructs an empty MemoryPersistence.
func NewMemoryPersistence() *MemoryPersistence {
	return &MemoryPersistence{
		records: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Load returns the record for sid or ErrNoRecord.
func (m *MemoryPersistence) Load(_ context.Context, sid string) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.records[Key(sid)]
	if !ok {
		return nil, ErrNoRecord
	}
	if !e.expiresAt.IsZero() && !m.now().Before(e.expiresAt) {
		delete(m.records, Key(sid))
		return nil, ErrNoRecord
	}
	rec := e.rec
	return &rec, nil
}

// Save stores rec for sid. A non-positive ttl never expires.
func (m *MemoryPersistence) Save(_ context.Context, sid string, rec *Record, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := memoryEntry{rec: *rec}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}
	m.records[Key(sid)] = e
	return nil
}

// Clear removes the record for sid.
func (m *MemoryPersistence) Clear(_ context.Context, sid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.records, Key(sid))
	return nil
}
