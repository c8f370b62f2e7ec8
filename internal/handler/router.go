package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/fetan/fetan_admin/internal/guard"
	"github.com/fetan/fetan_admin/internal/middleware"
	"github.com/fetan/fetan_admin/internal/resource"
	"github.com/fetan/fetan_admin/internal/service"
)

// Handlers groups every handler the router mounts.
type Handlers struct {
	Shell     *Shell
	Health    *HealthHandler
	Auth      *AuthHandler
	Dashboard *DashboardHandler
	Activity  *ActivityHandler
	Resources []*ResourceHandler
}

// RegisterRoutes mounts the console. The body limit, session and csrf run on
// every page; /health is outside them.
func RegisterRoutes(r *gin.Engine, h *Handlers, session *middleware.SessionMiddleware, secureCookie bool) {
	r.GET("/health", h.Health.GetHealth)

	pages := r.Group("/")
	pages.Use(middleware.BodyLimitMiddleware(MaxBodySize), session.Handle(), middleware.CSRFMiddleware(secureCookie))

	login := pages.Group("/")
	login.Use(middleware.GuardMiddleware(guard.Login, h.Shell.Loading))
	{
		login.GET("/login", h.Auth.ShowLogin)
		login.POST("/login", h.Auth.Login)
	}

	// Logout needs no guard: signing out twice is harmless.
	pages.POST("/logout", h.Auth.Logout)

	admin := pages.Group("/")
	admin.Use(middleware.GuardMiddleware(guard.Protected, h.Shell.Loading))
	{
		admin.GET("/", h.Dashboard.Show)
		admin.GET("/activity", h.Activity.List)
		admin.GET("/account/password", h.Auth.ShowPassword)
		admin.POST("/account/password", h.Auth.ChangePassword)

		for _, rh := range h.Resources {
			g := admin.Group("/" + rh.def.Slug)
			g.GET("", rh.List)
			g.GET("/:id", rh.Show)
			g.GET("/:id/edit", rh.Edit)
			g.POST("/:id/toggle", rh.Toggle)
			g.POST("/:id/delete", rh.Delete)
			g.POST("/:id/actions/:action", rh.Act)
			if rh.def.CanCreate {
				g.GET("/new", rh.New)
				g.POST("", rh.Create)
			}
			if rh.def.CanUpdate {
				g.POST("/:id", rh.Update)
			}
		}
	}
}

// NewResourceHandlers builds one handler per catalog entry.
func NewResourceHandlers(shell *Shell, activity *service.ActivityService, media *service.MediaService) []*ResourceHandler {
	out := make([]*ResourceHandler, 0, len(resource.Catalog))
	for _, def := range resource.Catalog {
		out = append(out, NewResourceHandler(def, shell, activity, media))
	}
	return out
}
