package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/fetan/fetan_admin/internal/flash"
	"github.com/fetan/fetan_admin/internal/guard"
	"github.com/fetan/fetan_admin/internal/middleware"
	"github.com/fetan/fetan_admin/internal/session"
	"github.com/fetan/fetan_admin/pkg/fetanapi"
)

// MsgTooManyAttempts is shown while an IP is rate limited.
const MsgTooManyAttempts = "Too many failed attempts, please wait a minute"

// LoginView is the login page's data.
type LoginView struct {
	Email string
	Error string
}

// PasswordView is the change password page's data.
type PasswordView struct {
	Error string
}

// AuthHandler serves sign in, sign out and password changes.
type AuthHandler struct {
	shell   *Shell
	limiter *middleware.LoginRateLimiter
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(shell *Shell, limiter *middleware.LoginRateLimiter) *AuthHandler {
	return &AuthHandler{shell: shell, limiter: limiter}
}

// ShowLogin renders the login form.
func (h *AuthHandler) ShowLogin(c *gin.Context) {
	h.shell.Render(c, http.StatusOK, "login.html", "Sign in", "", LoginView{})
}

// Login signs the admin in and navigates to the dashboard. Failures render
// the form again with the message inline.
func (h *AuthHandler) Login(c *gin.Context) {
	email := c.PostForm("email")
	ip := c.ClientIP()

	if h.limiter != nil && h.limiter.Blocked(ip) {
		log.Warn().Str("ip", ip).Msg("Login rate limited")
		h.shell.Render(c, http.StatusTooManyRequests, "login.html", "Sign in", "",
			LoginView{Email: email, Error: MsgTooManyAttempts})
		return
	}

	if msg := sessionOf(c).Login(c.Request.Context(), email, c.PostForm("password")); msg != "" {
		if h.limiter != nil {
			h.limiter.Fail(ip)
		}
		h.shell.Render(c, http.StatusUnauthorized, "login.html", "Sign in", "",
			LoginView{Email: email, Error: msg})
		return
	}

	if h.limiter != nil {
		h.limiter.Reset(ip)
	}
	// A signed-in session never keeps the id it had before login.
	if err := middleware.RotateSession(c); err != nil {
		log.Error().Err(err).Str("email", email).Msg("Failed to rotate session")
		sessionOf(c).Logout(c.Request.Context())
		h.shell.Render(c, http.StatusServiceUnavailable, "login.html", "Sign in", "",
			LoginView{Email: email, Error: session.MsgSessionUnavailable})
		return
	}
	c.Redirect(http.StatusSeeOther, guard.DefaultPath)
}

// Logout forgets the session and returns to the login page.
func (h *AuthHandler) Logout(c *gin.Context) {
	sessionOf(c).Logout(c.Request.Context())
	c.Redirect(http.StatusSeeOther, guard.LoginPath)
}

// ShowPassword renders the change password form.
func (h *AuthHandler) ShowPassword(c *gin.Context) {
	h.shell.Render(c, http.StatusOK, "password.html", "Change Password", "password", PasswordView{})
}

// ChangePassword changes the signed-in admin's password.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	store := sessionOf(c)
	msg, err := store.ChangePassword(c.Request.Context(), c.PostForm("currentPassword"), c.PostForm("newPassword"))
	if fetanapi.IsUnauthorized(err) {
		h.shell.Expire(c)
		return
	}
	if msg != "" {
		h.shell.Render(c, http.StatusUnprocessableEntity, "password.html", "Change Password", "password",
			PasswordView{Error: msg})
		return
	}

	h.shell.Notify(c, flash.Success, "Password changed successfully")
	h.shell.Render(c, http.StatusOK, "password.html", "Change Password", "password", PasswordView{})
}
