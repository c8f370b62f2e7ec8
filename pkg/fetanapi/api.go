package fetanapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

// ErrMissingToken is returned when the login response carries no token.
var ErrMissingToken = errors.New("login response did not include a token")

// Login authenticates an administrator. It is sent without a bearer token
// regardless of the client's token.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	var resp LoginResponse
	if err := c.WithToken("").Do(ctx, http.MethodPost, "/auth/admin/login", LoginRequest{
		Email:    email,
		Password: password,
	}, &resp); err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, ErrMissingToken
	}
	return &resp, nil
}

// Me returns the identity the client's token belongs to.
func (c *Client) Me(ctx context.Context) (*Admin, error) {
	var resp MeResponse
	if err := c.Do(ctx, http.MethodGet, "/auth/me", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Admin, nil
}

// ChangePassword changes the authenticated administrator's password.
func (c *Client) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	return c.Do(ctx, http.MethodPost, "/auth/change-password", ChangePasswordRequest{
		CurrentPassword: currentPassword,
		NewPassword:     newPassword,
	}, nil)
}

// List fetches a collection at path and returns the array held under field.
// A response that omits field (or holds null) yields an empty collection.
func (c *Client) List(ctx context.Context, path, field string) ([]Record, error) {
	var envelope map[string]json.RawMessage
	if err := c.Do(ctx, http.MethodGet, path, nil, &envelope); err != nil {
		return nil, err
	}

	raw, ok := envelope[field]
	if !ok || len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return []Record{}, nil
	}

	var records []Record
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode %q collection: %w", field, err)
	}
	if records == nil {
		records = []Record{}
	}
	return records, nil
}

// Create posts a new record to a collection path.
func (c *Client) Create(ctx context.Context, path string, fields map[string]any) error {
	return c.Do(ctx, http.MethodPost, path, fields, nil)
}

// Update replaces the given fields of record id under path.
func (c *Client) Update(ctx context.Context, path, id string, fields map[string]any) error {
	return c.Do(ctx, http.MethodPut, RecordPath(path, id), fields, nil)
}

// Put sends fields to an arbitrary path (sub-resources such as
// /orders/{id}/payment-status).
func (c *Client) Put(ctx context.Context, path string, fields map[string]any) error {
	return c.Do(ctx, http.MethodPut, path, fields, nil)
}

// Delete removes record id under path.
func (c *Client) Delete(ctx context.Context, path, id string) error {
	return c.Do(ctx, http.MethodDelete, RecordPath(path, id), nil, nil)
}

// RecordPath joins a collection path and an escaped record id.
func RecordPath(path, id string) string {
	return path + "/" + url.PathEscape(id)
}
