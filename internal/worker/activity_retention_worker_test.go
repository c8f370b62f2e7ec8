package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/fetan/fetan_admin/internal/models"
	"github.com/fetan/fetan_admin/internal/service"
)

type countingStore struct {
	prunes chan time.Time
}

func (s *countingStore) Create(context.Context, *models.Activity) error { return nil }

func (s *countingStore) ListRecent(context.Context, int) ([]models.Activity, error) {
	return nil, nil
}

func (s *countingStore) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	s.prunes <- cutoff
	return 1, nil
}

func TestActivityRetentionWorker_PrunesUntilCancelled(t *testing.T) {
	store := &countingStore{prunes: make(chan time.Time, 16)}
	w := NewActivityRetentionWorker(service.NewActivityService(store), time.Hour, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	for i := 0; i < 2; i++ {
		select {
		case cutoff := <-store.prunes:
			assert.WithinDuration(t, time.Now().Add(-time.Hour), cutoff, time.Minute)
		case <-time.After(2 * time.Second):
			t.Fatal("worker did not prune")
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
}
