package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fetan/fetan_admin/internal/service"
)

// ActivityRetentionWorker periodically prunes old activity entries.
type ActivityRetentionWorker struct {
	activity  *service.ActivityService
	retention time.Duration
	interval  time.Duration
}

// NewActivityRetentionWorker constructs an ActivityRetentionWorker.
func NewActivityRetentionWorker(activity *service.ActivityService, retention, interval time.Duration) *ActivityRetentionWorker {
	return &ActivityRetentionWorker{
		activity:  activity,
		retention: retention,
		interval:  interval,
	}
}

// Start runs the prune loop until ctx is cancelled.
func (w *ActivityRetentionWorker) Start(ctx context.Context) {
	log.Info().
		Dur("interval", w.interval).
		Dur("retention", w.retention).
		Msg("Starting activity retention worker")

	// Run immediately on start
	w.run(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.run(ctx)
		case <-ctx.Done():
			log.Info().Msg("Activity retention worker stopped")
			return
		}
	}
}

func (w *ActivityRetentionWorker) run(ctx context.Context) {
	removed, err := w.activity.Prune(ctx, w.retention)
	if err != nil {
		log.Error().Err(err).Msg("Failed to prune activity log")
		return
	}
	if removed > 0 {
		log.Info().Int64("removed", removed).Msg("Pruned activity log")
	}
}
