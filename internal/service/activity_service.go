package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fetan/fetan_admin/internal/models"
	"github.com/fetan/fetan_admin/internal/resource"
	"github.com/fetan/fetan_admin/pkg/fetanapi"
)

// RecentActivityLimit is how many entries the activity page shows.
const RecentActivityLimit = 50

// ActivityStore persists activity entries.
type ActivityStore interface {
	Create(ctx context.Context, a *models.Activity) error
	ListRecent(ctx context.Context, limit int) ([]models.Activity, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// ActivityService records console mutations. A service without a store is
// disabled: recording is a no-op and listings are empty.
type ActivityService struct {
	store ActivityStore
	now   func() time.Time
}

// NewActivityService creates a new ActivityService. store may be nil.
func NewActivityService(store ActivityStore) *ActivityService {
	return &ActivityService{store: store, now: time.Now}
}

// Enabled reports whether entries are persisted.
func (s *ActivityService) Enabled() bool {
	return s.store != nil
}

// For returns a recorder attributing mutations to admin.
func (s *ActivityService) For(admin fetanapi.Admin) resource.Recorder {
	return &adminRecorder{svc: s, admin: admin}
}

// Recent returns the newest entries.
func (s *ActivityService) Recent(ctx context.Context) ([]models.Activity, error) {
	if s.store == nil {
		return []models.Activity{}, nil
	}
	return s.store.ListRecent(ctx, RecentActivityLimit)
}

// Prune deletes entries older than retention.
func (s *ActivityService) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	if s.store == nil {
		return 0, nil
	}
	return s.store.DeleteOlderThan(ctx, s.now().Add(-retention))
}

type adminRecorder struct {
	svc   *ActivityService
	admin fetanapi.Admin
}

// Record stores m. Failures are logged and never surface to the screen.
func (r *adminRecorder) Record(ctx context.Context, m resource.Mutation) {
	if r.svc.store == nil {
		return
	}

	entry := &models.Activity{
		AdminID:    r.admin.ID,
		AdminEmail: r.admin.Email,
		Resource:   m.Resource,
		Action:     m.Action,
	}
	if m.RecordID != "" {
		id := m.RecordID
		entry.RecordID = &id
	}
	if len(m.Fields) > 0 {
		detail, err := json.Marshal(m.Fields)
		if err != nil {
			log.Warn().Err(err).Str("resource", m.Resource).Msg("Failed to encode activity detail")
		} else {
			entry.Detail = detail
		}
	}

	if err := r.svc.store.Create(ctx, entry); err != nil {
		log.Error().Err(err).
			Str("resource", m.Resource).
			Str("action", m.Action).
			Msg("Failed to record activity")
	}
}
