package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/fetan/fetan_admin/internal/models"
)

// ActivityRepository provides access to the admin_activity table.
type ActivityRepository struct {
	db *sqlx.DB
}

// NewActivityRepository creates a new ActivityRepository.
func NewActivityRepository(db *sqlx.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Create inserts an activity row and fills its id and creation time.
func (r *ActivityRepository) Create(ctx context.Context, a *models.Activity) error {
	const q = `
		INSERT INTO admin_activity (
			admin_id, admin_email, resource, action, record_id, detail, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, NOW()
		)
		RETURNING id, created_at`
	detail := a.Detail
	if len(detail) == 0 {
		detail = []byte("{}")
	}
	return r.db.QueryRowxContext(ctx, q,
		a.AdminID,
		a.AdminEmail,
		a.Resource,
		a.Action,
		a.RecordID,
		detail,
	).Scan(&a.ID, &a.CreatedAt)
}

// ListRecent returns the newest entries first.
func (r *ActivityRepository) ListRecent(ctx context.Context, limit int) ([]models.Activity, error) {
	const q = `
		SELECT id, admin_id, admin_email, resource, action, record_id, detail, created_at
		FROM admin_activity
		ORDER BY created_at DESC, id DESC
		LIMIT $1`
	var out []models.Activity
	if err := r.db.SelectContext(ctx, &out, q, limit); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteOlderThan removes entries created before cutoff and returns how
// many were removed.
func (r *ActivityRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	const q = `DELETE FROM admin_activity WHERE created_at < $1`
	res, err := r.db.ExecContext(ctx, q, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
