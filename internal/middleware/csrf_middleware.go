package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	// CSRFCookieName holds the double-submit token.
	CSRFCookieName = "fetan_admin_csrf"
	// CSRFFormField is the hidden form field every form posts back.
	CSRFFormField = "csrf_token"
	// CSRFHeader is accepted in place of the form field.
	CSRFHeader = "X-CSRF-Token"

	csrfContextKey = "csrf_token"
)

// CSRFMiddleware issues a token cookie and rejects state-changing requests
// whose form field or header does not match it.
func CSRFMiddleware(secureCookie bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(CSRFCookieName)
		if err != nil || token == "" {
			token, err = generateSecureToken(32)
			if err != nil {
				log.Error().Err(err).Msg("Failed to generate CSRF token")
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
			http.SetCookie(c.Writer, &http.Cookie{
				Name:     CSRFCookieName,
				Value:    token,
				Path:     "/",
				HttpOnly: true,
				Secure:   secureCookie,
				SameSite: http.SameSiteStrictMode,
			})
			// A fresh cookie means the browser had none, so nothing it
			// posts can match.
			if !safeMethod(c.Request.Method) {
				c.String(http.StatusForbidden, "Invalid CSRF token")
				c.Abort()
				return
			}
		}
		c.Set(csrfContextKey, token)

		if !safeMethod(c.Request.Method) && !validCSRF(c, token) {
			log.Warn().Str("path", c.Request.URL.Path).Str("ip", c.ClientIP()).Msg("CSRF validation failed")
			c.String(http.StatusForbidden, "Invalid CSRF token")
			c.Abort()
			return
		}
		c.Next()
	}
}

// CSRFToken returns the token to embed in forms.
func CSRFToken(c *gin.Context) string {
	return c.GetString(csrfContextKey)
}

func validCSRF(c *gin.Context, token string) bool {
	submitted := c.PostForm(CSRFFormField)
	if submitted == "" {
		submitted = c.GetHeader(CSRFHeader)
	}
	return submitted != "" && subtle.ConstantTimeCompare([]byte(submitted), []byte(token)) == 1
}

func safeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	default:
		return false
	}
}

func generateSecureToken(bytes int) (string, error) {
	b := make([]byte, bytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
