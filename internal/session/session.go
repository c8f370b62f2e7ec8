// Package session holds the authenticated administrator of one browser
// session. A Store is the only writer of its Session; everything else reads
// Snapshots.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fetan/fetan_admin/pkg/fetanapi"
)

// Login and password-change messages shown to the administrator.
const (
	MsgCredentialsRequired = "Email and password are required"
	MsgLoginFailed         = "Login failed"
	MsgSessionUnavailable  = "Could not start a session, please try again"
	MsgPasswordsRequired   = "Current and new password are required"
	MsgPasswordFailed      = "Failed to change password"
	MsgNotAuthenticated    = "You are not signed in"
)

// ErrNotAuthenticated is returned by operations that need a signed-in admin.
var ErrNotAuthenticated = errors.New("session: not authenticated")

// Session is the state of one browser session.
type Session struct {
	Admin           fetanapi.Admin
	Token           string
	IsAuthenticated bool
	// Loading is true only while Restore runs.
	Loading bool
}

// Store owns the Session of the browser session identified by sid.
type Store struct {
	mu      sync.RWMutex
	state   Session
	sid     string
	api     *fetanapi.Client
	persist Persistence
	ttl     time.Duration
	now     func() time.Time
}

// NewStore binds a store to a browser session.
func NewStore(sid string, api *fetanapi.Client, persist Persistence, ttl time.Duration) *Store {
	return &Store{
		sid:     sid,
		api:     api,
		persist: persist,
		ttl:     ttl,
		now:     time.Now,
	}
}

// SID returns the browser session id the store is bound to.
func (s *Store) SID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sid
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Client returns the API client authenticated as the current admin, or an
// unauthenticated client when nobody is signed in.
func (s *Store) Client() *fetanapi.Client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.api.WithToken(s.state.Token)
}

// Restore rebuilds the session from the persisted token. A token the
// platform rejects (401 or 403) is cleared; any other failure leaves this
// request unauthenticated and keeps the token. Loading is set for the
// duration of the call.
func (s *Store) Restore(ctx context.Context) {
	s.mu.Lock()
	s.state.Loading = true
	s.mu.Unlock()

	next := Session{}
	defer func() {
		s.mu.Lock()
		s.state = next
		s.mu.Unlock()
	}()

	rec, err := s.persist.Load(ctx, s.SID())
	if err != nil {
		if !errors.Is(err, ErrNoRecord) {
			log.Error().Err(err).Msg("Failed to load persisted session")
		}
		return
	}
	if rec.Token == "" {
		s.clear(ctx)
		return
	}

	admin, err := s.api.WithToken(rec.Token).Me(ctx)
	switch {
	case fetanapi.IsUnauthorized(err) || fetanapi.IsForbidden(err):
		log.Warn().Err(err).Str("admin_email", rec.Admin.Email).Msg("Session restore rejected, clearing token")
		s.clear(ctx)
		return
	case err != nil:
		// The token is kept; the next request tries again.
		log.Error().Err(err).Str("admin_email", rec.Admin.Email).Msg("Session restore failed")
		return
	}

	next = Session{
		Admin:           *admin,
		Token:           rec.Token,
		IsAuthenticated: true,
	}
}

// Login authenticates against the platform. It returns an empty string on
// success and a message for the administrator otherwise; the session stays
// unauthenticated on failure.
func (s *Store) Login(ctx context.Context, email, password string) string {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return MsgCredentialsRequired
	}

	resp, err := s.api.Login(ctx, email, password)
	if err != nil {
		log.Warn().Err(err).Str("email", email).Msg("Login failed")
		s.reset()
		return fetanapi.Message(err, MsgLoginFailed)
	}

	rec := &Record{
		Token:   resp.Token,
		Admin:   resp.Admin,
		SavedAt: s.now(),
	}
	if err := s.persist.Save(ctx, s.SID(), rec, TokenTTL(resp.Token, s.ttl, s.now())); err != nil {
		log.Error().Err(err).Str("email", email).Msg("Failed to persist session")
		s.reset()
		return MsgSessionUnavailable
	}

	s.mu.Lock()
	s.state = Session{
		Admin:           resp.Admin,
		Token:           resp.Token,
		IsAuthenticated: true,
	}
	s.mu.Unlock()

	log.Info().Str("email", email).Str("admin_id", resp.Admin.ID).Msg("Login successful")
	return ""
}

// Logout forgets the persisted token and identity. The platform is not
// called.
func (s *Store) Logout(ctx context.Context) {
	s.clear(ctx)
	s.reset()
}

// ChangePassword changes the signed-in admin's password. It returns an empty
// string on success and a message otherwise. err is the platform's error, so
// callers can tell a rejected token from a wrong password; it is nil when
// the request was refused locally.
func (s *Store) ChangePassword(ctx context.Context, currentPassword, newPassword string) (msg string, err error) {
	if currentPassword == "" || newPassword == "" {
		return MsgPasswordsRequired, nil
	}
	snap := s.Snapshot()
	if !snap.IsAuthenticated {
		return MsgNotAuthenticated, nil
	}

	if err := s.Client().ChangePassword(ctx, currentPassword, newPassword); err != nil {
		log.Warn().Err(err).Str("admin_id", snap.Admin.ID).Msg("Password change failed")
		return fetanapi.Message(err, MsgPasswordFailed), err
	}
	log.Info().Str("admin_id", snap.Admin.ID).Msg("Password changed")
	return "", nil
}

// Rotate moves the signed-in session to a new browser session id and
// forgets the record kept under the old one.
func (s *Store) Rotate(ctx context.Context, sid string) error {
	snap := s.Snapshot()
	if !snap.IsAuthenticated {
		return ErrNotAuthenticated
	}

	now := s.now()
	rec := &Record{Token: snap.Token, Admin: snap.Admin, SavedAt: now}
	if err := s.persist.Save(ctx, sid, rec, TokenTTL(snap.Token, s.ttl, now)); err != nil {
		return fmt.Errorf("failed to persist rotated session: %w", err)
	}
	s.clear(ctx)

	s.mu.Lock()
	s.sid = sid
	s.mu.Unlock()
	return nil
}

func (s *Store) clear(ctx context.Context) {
	if err := s.persist.Clear(ctx, s.SID()); err != nil {
		log.Error().Err(err).Msg("Failed to clear persisted session")
	}
}

func (s *Store) reset() {
	s.mu.Lock()
	s.state = Session{}
	s.mu.Unlock()
}
