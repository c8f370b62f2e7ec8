package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fetan/fetan_admin/internal/session"
	"github.com/fetan/fetan_admin/pkg/fetanapi"
)

const (
	// SessionCookieName carries the browser session id.
	SessionCookieName = "fetan_admin_sid"

	sessionStoreKey      = "session_store"
	sessionMiddlewareKey = "session_middleware"
	// AdminIDKey holds the signed-in admin's id for request logging.
	AdminIDKey = "admin_id"
)

// SessionMiddleware binds a session.Store to every request and restores it
// from the persisted token.
type SessionMiddleware struct {
	api          *fetanapi.Client
	persist      session.Persistence
	ttl          time.Duration
	secureCookie bool
}

// NewSessionMiddleware creates a new SessionMiddleware.
func NewSessionMiddleware(api *fetanapi.Client, persist session.Persistence, ttl time.Duration, secureCookie bool) *SessionMiddleware {
	return &SessionMiddleware{
		api:          api,
		persist:      persist,
		ttl:          ttl,
		secureCookie: secureCookie,
	}
}

// Handle binds and restores the session of the request's browser.
func (m *SessionMiddleware) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		sid := m.ensureSID(c)

		store := session.NewStore(sid, m.api, m.persist, m.ttl)
		store.Restore(c.Request.Context())

		if snap := store.Snapshot(); snap.IsAuthenticated {
			c.Set(AdminIDKey, snap.Admin.ID)
		}
		c.Set(sessionStoreKey, store)
		c.Set(sessionMiddlewareKey, m)
		c.Next()
	}
}

// ensureSID returns the browser's session id, issuing a fresh one when the
// cookie is missing or malformed.
func (m *SessionMiddleware) ensureSID(c *gin.Context) string {
	if cookie, err := c.Cookie(SessionCookieName); err == nil {
		if _, err := uuid.Parse(cookie); err == nil {
			return cookie
		}
	}

	sid := uuid.NewString()
	m.setCookie(c, sid)
	return sid
}

func (m *SessionMiddleware) setCookie(c *gin.Context, sid string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     SessionCookieName,
		Value:    sid,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

// RotateSession moves a freshly signed-in session to a new session id and
// sends the browser the new cookie. The id the browser arrived with stops
// working.
func RotateSession(c *gin.Context) error {
	m, _ := c.MustGet(sessionMiddlewareKey).(*SessionMiddleware)
	store := SessionFrom(c)

	sid := uuid.NewString()
	if err := store.Rotate(c.Request.Context(), sid); err != nil {
		return err
	}
	m.setCookie(c, sid)
	c.Set(AdminIDKey, store.Snapshot().Admin.ID)
	return nil
}

// SessionFrom returns the store bound by SessionMiddleware.
func SessionFrom(c *gin.Context) *session.Store {
	store, _ := c.MustGet(sessionStoreKey).(*session.Store)
	return store
}
