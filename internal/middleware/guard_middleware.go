package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fetan/fetan_admin/internal/guard"
)

// GuardMiddleware applies the route guard to a view. onLoading renders the
// neutral indicator shown while the session is still being restored.
func GuardMiddleware(view guard.View, onLoading gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		d := guard.Decide(SessionFrom(c).Snapshot(), view)
		switch d.Action {
		case guard.Redirect:
			c.Redirect(http.StatusSeeOther, d.Location)
			c.Abort()
		case guard.Loading:
			onLoading(c)
			c.Abort()
		default:
			c.Next()
		}
	}
}
