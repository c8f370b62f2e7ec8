package models

import (
	"encoding/json"
	"time"
)

// Activity is one successful mutation made through the console.
type Activity struct {
	ID         int64           `db:"id"`
	AdminID    string          `db:"admin_id"`
	AdminEmail string          `db:"admin_email"`
	Resource   string          `db:"resource"`
	Action     string          `db:"action"`
	RecordID   *string         `db:"record_id"`
	Detail     json.RawMessage `db:"detail"`
	CreatedAt  time.Time       `db:"created_at"`
}
