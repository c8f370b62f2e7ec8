package fetanapi

import (
	"encoding/json"
	"fmt"
)

// Admin is the authenticated administrator identity.
type Admin struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// UnmarshalJSON accepts both "id" and the platform's "_id".
func (a *Admin) UnmarshalJSON(data []byte) error {
	type alias Admin
	var raw struct {
		alias
		MongoID string `json:"_id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*a = Admin(raw.alias)
	if a.ID == "" {
		a.ID = raw.MongoID
	}
	return nil
}

// LoginRequest is the body of POST /auth/admin/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned by POST /auth/admin/login.
type LoginResponse struct {
	Token string `json:"token"`
	Admin Admin  `json:"admin"`
}

// MeResponse is returned by GET /auth/me.
type MeResponse struct {
	Admin Admin `json:"admin"`
}

// ChangePasswordRequest is the body of POST /auth/change-password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// Record is a server-defined resource entity, kept as an opaque field map.
type Record map[string]any

// ID returns the server-assigned identifier.
func (r Record) ID() string {
	switch v := r["_id"].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case nil:
		if id, ok := r["id"].(string); ok {
			return id
		}
		return ""
	default:
		return fmt.Sprint(v)
	}
}
