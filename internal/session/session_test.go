package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fetan/fetan_admin/pkg/fetanapi"
)

// fakePlatform is a minimal stand-in for the platform auth endpoints.
type fakePlatform struct {
	validToken string
	meCalls    atomic.Int32
	meGate     chan struct{}
	// meOutages is how many /auth/me calls answer 503 before recovering.
	meOutages atomic.Int32
	revoked   atomic.Bool
}

func (f *fakePlatform) handler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/auth/admin/login":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		var body fetanapi.LoginRequest
		_ = decodeJSON(r, &body)
		if body.Email == "admin@x.com" && body.Password == "secret" {
			_, _ = w.Write([]byte(`{"token":"` + f.validToken + `","admin":{"id":"a1","fullName":"Hana T","email":"admin@x.com","role":"admin"}}`))
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Invalid email or password"}`))
	case "/auth/me":
		f.meCalls.Add(1)
		if f.meGate != nil {
			<-f.meGate
		}
		if f.meOutages.Add(-1) >= 0 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"message":"Service unavailable"}`))
			return
		}
		if r.Header.Get("Authorization") != "Bearer "+f.validToken {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Token expired"}`))
			return
		}
		_, _ = w.Write([]byte(`{"admin":{"id":"a1","fullName":"Hana T","email":"admin@x.com","role":"admin"}}`))
	case "/auth/change-password":
		if f.revoked.Load() || r.Header.Get("Authorization") != "Bearer "+f.validToken {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var body fetanapi.ChangePasswordRequest
		_ = decodeJSON(r, &body)
		if body.CurrentPassword != "secret" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"message":"Current password is incorrect"}`))
			return
		}
		_, _ = w.Write([]byte(`{"message":"Password changed"}`))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func newTestStore(t *testing.T, f *fakePlatform, persist Persistence) *Store {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(f.handler))
	t.Cleanup(srv.Close)
	api := fetanapi.NewClient(fetanapi.Config{BaseURL: srv.URL})
	return NewStore("sid-1", api, persist, time.Hour)
}

func TestLogin_ValidCredentials(t *testing.T) {
	persist := NewMemoryPersistence()
	s := newTestStore(t, &fakePlatform{validToken: "tok"}, persist)

	msg := s.Login(context.Background(), " admin@x.com ", "secret")
	assert.Empty(t, msg)

	snap := s.Snapshot()
	assert.True(t, snap.IsAuthenticated)
	assert.False(t, snap.Loading)
	assert.Equal(t, "tok", snap.Token)
	assert.Equal(t, "Hana T", snap.Admin.FullName)

	rec, err := persist.Load(context.Background(), "sid-1")
	require.NoError(t, err)
	assert.Equal(t, "tok", rec.Token)
	assert.Equal(t, "a1", rec.Admin.ID)
	assert.Equal(t, "tok", s.Client().Token())
}

func TestLogin_InvalidCredentials(t *testing.T) {
	persist := NewMemoryPersistence()
	s := newTestStore(t, &fakePlatform{validToken: "tok"}, persist)

	msg := s.Login(context.Background(), "admin@x.com", "wrong")
	assert.Equal(t, "Invalid email or password", msg)
	assert.False(t, s.Snapshot().IsAuthenticated)

	_, err := persist.Load(context.Background(), "sid-1")
	assert.ErrorIs(t, err, ErrNoRecord)
}

func TestLogin_RequiredFields(t *testing.T) {
	f := &fakePlatform{validToken: "tok"}
	s := newTestStore(t, f, NewMemoryPersistence())

	assert.Equal(t, MsgCredentialsRequired, s.Login(context.Background(), "  ", "secret"))
	assert.Equal(t, MsgCredentialsRequired, s.Login(context.Background(), "admin@x.com", ""))
	assert.False(t, s.Snapshot().IsAuthenticated)
}

func TestLogin_UnreachablePlatform(t *testing.T) {
	api := fetanapi.NewClient(fetanapi.Config{BaseURL: "http://127.0.0.1:1", Timeout: time.Second})
	s := NewStore("sid-1", api, NewMemoryPersistence(), time.Hour)

	assert.Equal(t, MsgLoginFailed, s.Login(context.Background(), "admin@x.com", "secret"))
	assert.False(t, s.Snapshot().IsAuthenticated)
}

func TestLogout_ClearsTokenWithoutCallingPlatform(t *testing.T) {
	f := &fakePlatform{validToken: "tok"}
	persist := NewMemoryPersistence()
	s := newTestStore(t, f, persist)
	require.Empty(t, s.Login(context.Background(), "admin@x.com", "secret"))

	s.Logout(context.Background())

	assert.False(t, s.Snapshot().IsAuthenticated)
	assert.Empty(t, s.Snapshot().Token)
	_, err := persist.Load(context.Background(), "sid-1")
	assert.ErrorIs(t, err, ErrNoRecord)
	assert.Equal(t, int32(0), f.meCalls.Load())
}

func TestRestore_NoPersistedToken(t *testing.T) {
	f := &fakePlatform{validToken: "tok"}
	s := newTestStore(t, f, NewMemoryPersistence())

	s.Restore(context.Background())

	snap := s.Snapshot()
	assert.False(t, snap.IsAuthenticated)
	assert.False(t, snap.Loading)
	assert.Equal(t, int32(0), f.meCalls.Load())
}

func TestRestore_ValidToken(t *testing.T) {
	persist := NewMemoryPersistence()
	require.NoError(t, persist.Save(context.Background(), "sid-1", &Record{Token: "tok"}, time.Hour))
	s := newTestStore(t, &fakePlatform{validToken: "tok"}, persist)

	s.Restore(context.Background())

	snap := s.Snapshot()
	assert.True(t, snap.IsAuthenticated)
	assert.False(t, snap.Loading)
	assert.Equal(t, "admin@x.com", snap.Admin.Email)
}

func TestRestore_RejectedTokenIsCleared(t *testing.T) {
	persist := NewMemoryPersistence()
	require.NoError(t, persist.Save(context.Background(), "sid-1", &Record{Token: "expired"}, time.Hour))
	s := newTestStore(t, &fakePlatform{validToken: "tok"}, persist)

	s.Restore(context.Background())

	assert.False(t, s.Snapshot().IsAuthenticated)
	assert.False(t, s.Snapshot().Loading)
	_, err := persist.Load(context.Background(), "sid-1")
	assert.ErrorIs(t, err, ErrNoRecord)
}

func TestRestore_TransientFailureKeepsToken(t *testing.T) {
	persist := NewMemoryPersistence()
	require.NoError(t, persist.Save(context.Background(), "sid-1", &Record{Token: "tok"}, time.Hour))
	f := &fakePlatform{validToken: "tok"}
	f.meOutages.Store(1)
	s := newTestStore(t, f, persist)

	s.Restore(context.Background())

	assert.False(t, s.Snapshot().IsAuthenticated)
	assert.False(t, s.Snapshot().Loading)
	rec, err := persist.Load(context.Background(), "sid-1")
	require.NoError(t, err)
	assert.Equal(t, "tok", rec.Token)

	// The platform is back: the same browser session is signed in again.
	s.Restore(context.Background())
	assert.True(t, s.Snapshot().IsAuthenticated)
	assert.Equal(t, int32(2), f.meCalls.Load())
}

func TestRestore_UnreachablePlatformKeepsToken(t *testing.T) {
	persist := NewMemoryPersistence()
	require.NoError(t, persist.Save(context.Background(), "sid-1", &Record{Token: "tok"}, time.Hour))
	api := fetanapi.NewClient(fetanapi.Config{BaseURL: "http://127.0.0.1:1", Timeout: time.Second})
	s := NewStore("sid-1", api, persist, time.Hour)

	s.Restore(context.Background())

	assert.False(t, s.Snapshot().IsAuthenticated)
	_, err := persist.Load(context.Background(), "sid-1")
	assert.NoError(t, err)
}

func TestRestore_LoadingWhileInFlight(t *testing.T) {
	persist := NewMemoryPersistence()
	require.NoError(t, persist.Save(context.Background(), "sid-1", &Record{Token: "tok"}, time.Hour))
	f := &fakePlatform{validToken: "tok", meGate: make(chan struct{})}
	s := newTestStore(t, f, persist)

	done := make(chan struct{})
	go func() {
		s.Restore(context.Background())
		close(done)
	}()

	require.Eventually(t, func() bool { return s.Snapshot().Loading }, 2*time.Second, 5*time.Millisecond)
	close(f.meGate)
	<-done

	assert.False(t, s.Snapshot().Loading)
	assert.True(t, s.Snapshot().IsAuthenticated)
}

func TestChangePassword(t *testing.T) {
	s := newTestStore(t, &fakePlatform{validToken: "tok"}, NewMemoryPersistence())
	ctx := context.Background()

	msg, err := s.ChangePassword(ctx, "secret", "new-secret")
	assert.Equal(t, MsgNotAuthenticated, msg)
	assert.NoError(t, err)
	require.Empty(t, s.Login(ctx, "admin@x.com", "secret"))

	msg, err = s.ChangePassword(ctx, "", "new-secret")
	assert.Equal(t, MsgPasswordsRequired, msg)
	assert.NoError(t, err)

	msg, err = s.ChangePassword(ctx, "nope", "new-secret")
	assert.Equal(t, "Current password is incorrect", msg)
	assert.Error(t, err)
	assert.False(t, fetanapi.IsUnauthorized(err))

	msg, err = s.ChangePassword(ctx, "secret", "new-secret")
	assert.Empty(t, msg)
	assert.NoError(t, err)
}

func TestChangePassword_RejectedTokenIsReported(t *testing.T) {
	f := &fakePlatform{validToken: "tok"}
	s := newTestStore(t, f, NewMemoryPersistence())
	ctx := context.Background()
	require.Empty(t, s.Login(ctx, "admin@x.com", "secret"))

	f.revoked.Store(true)
	_, err := s.ChangePassword(ctx, "secret", "new-secret")
	assert.True(t, fetanapi.IsUnauthorized(err))
}

func TestRotate_MovesRecordToNewSID(t *testing.T) {
	persist := NewMemoryPersistence()
	s := newTestStore(t, &fakePlatform{validToken: "tok"}, persist)
	ctx := context.Background()

	assert.ErrorIs(t, s.Rotate(ctx, "sid-2"), ErrNotAuthenticated)
	require.Empty(t, s.Login(ctx, "admin@x.com", "secret"))

	require.NoError(t, s.Rotate(ctx, "sid-2"))
	assert.Equal(t, "sid-2", s.SID())
	assert.True(t, s.Snapshot().IsAuthenticated)

	_, err := persist.Load(ctx, "sid-1")
	assert.ErrorIs(t, err, ErrNoRecord)
	rec, err := persist.Load(ctx, "sid-2")
	require.NoError(t, err)
	assert.Equal(t, "tok", rec.Token)
	assert.Equal(t, "a1", rec.Admin.ID)
}

func TestMemoryPersistence_Expiry(t *testing.T) {
	m := NewMemoryPersistence()
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	m.now = func() time.Time { return now }

	require.NoError(t, m.Save(context.Background(), "s", &Record{Token: "t"}, time.Minute))
	_, err := m.Load(context.Background(), "s")
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = m.Load(context.Background(), "s")
	assert.ErrorIs(t, err, ErrNoRecord)
}
