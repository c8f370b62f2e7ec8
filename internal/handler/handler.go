package handler

import (
	"context"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/fetan/fetan_admin/internal/flash"
	"github.com/fetan/fetan_admin/internal/guard"
	"github.com/fetan/fetan_admin/internal/middleware"
	"github.com/fetan/fetan_admin/internal/resource"
	"github.com/fetan/fetan_admin/internal/service"
	"github.com/fetan/fetan_admin/internal/session"
	"github.com/fetan/fetan_admin/pkg/fetanapi"
)

// MsgSessionExpired is shown after the platform rejects the session token.
const MsgSessionExpired = "Session expired, please sign in again"

// maxFormMemory bounds the part of a multipart form kept in memory.
const maxFormMemory = 8 << 20

// MaxBodySize caps a posted form: one gallery image plus the other fields.
const MaxBodySize = service.MaxUploadSize + 1<<20

// NavItem is one sidebar link.
type NavItem struct {
	Key   string
	Label string
	Path  string
}

// Page is what every template receives: the shell plus the screen's data.
type Page struct {
	Title     string
	Active    string
	Admin     fetanapi.Admin
	AdminName string
	AdminRole string
	Nav       []NavItem
	Toasts    []flash.Message
	CSRF      string
	Data      any
}

// Navigation is the sidebar in display order.
func Navigation() []NavItem {
	nav := []NavItem{{Key: "dashboard", Label: "Dashboard", Path: guard.DefaultPath}}
	for _, d := range resource.Catalog {
		nav = append(nav, NavItem{Key: d.Slug, Label: d.Title, Path: "/" + d.Slug})
	}
	return append(nav,
		NavItem{Key: "activity", Label: "Activity", Path: "/activity"},
		NavItem{Key: "password", Label: "Password", Path: "/account/password"},
	)
}

// Shell renders pages inside the navigation frame. It is not resource-aware.
type Shell struct {
	toasts flash.Queue
	nav    []NavItem
}

// NewShell creates a new Shell.
func NewShell(toasts flash.Queue) *Shell {
	return &Shell{toasts: toasts, nav: Navigation()}
}

// Render drains the session's toasts and renders name.
func (s *Shell) Render(c *gin.Context, status int, name, title, active string, data any) {
	store := middleware.SessionFrom(c)
	snap := store.Snapshot()

	toasts, err := s.toasts.Drain(c.Request.Context(), store.SID())
	if err != nil {
		log.Error().Err(err).Msg("Failed to drain toasts")
	}

	page := Page{
		Title:     title,
		Active:    active,
		Admin:     snap.Admin,
		AdminName: orDefault(snap.Admin.FullName, "Admin"),
		AdminRole: orDefault(snap.Admin.Role, "Administrator"),
		Nav:       s.nav,
		Toasts:    toasts,
		CSRF:      middleware.CSRFToken(c),
		Data:      data,
	}
	c.HTML(status, name, page)
}

// RenderError renders a plain message page.
func (s *Shell) RenderError(c *gin.Context, status int, msg string) {
	s.Render(c, status, "error.html", http.StatusText(status), "", msg)
}

// Loading renders the neutral indicator used by the route guard.
func (s *Shell) Loading(c *gin.Context) {
	s.Render(c, http.StatusOK, "loading.html", "Loading", "", nil)
}

// Notify queues a toast for the current browser session.
func (s *Shell) Notify(c *gin.Context, level flash.Level, text string) {
	s.notifier(c).push(c.Request.Context(), level, text)
}

// notifier adapts the toast queue to resource.Notifier for one session.
func (s *Shell) notifier(c *gin.Context) *toaster {
	return &toaster{queue: s.toasts, sid: middleware.SessionFrom(c).SID()}
}

// Expire ends a session the platform rejected and sends the browser to the
// login page.
func (s *Shell) Expire(c *gin.Context) {
	store := middleware.SessionFrom(c)
	store.Logout(c.Request.Context())
	s.Notify(c, flash.Info, MsgSessionExpired)
	c.Redirect(http.StatusSeeOther, guard.LoginPath)
}

type toaster struct {
	queue flash.Queue
	sid   string
}

func (t *toaster) Success(ctx context.Context, text string) { t.push(ctx, flash.Success, text) }
func (t *toaster) Error(ctx context.Context, text string)   { t.push(ctx, flash.Error, text) }

func (t *toaster) push(ctx context.Context, level flash.Level, text string) {
	if err := t.queue.Push(ctx, t.sid, flash.Message{Level: level, Text: text}); err != nil {
		log.Error().Err(err).Msg("Failed to queue toast")
	}
}

// postedValues returns the submitted form, urlencoded or multipart. The body
// was already size-checked by BodyLimitMiddleware.
func postedValues(c *gin.Context) url.Values {
	_ = c.Request.ParseMultipartForm(maxFormMemory)
	return c.Request.PostForm
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

// sessionOf is a shorthand used by the handlers.
func sessionOf(c *gin.Context) *session.Store {
	return middleware.SessionFrom(c)
}
