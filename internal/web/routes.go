package web

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"zuvomo/internal/apiclient"
	"zuvomo/internal/guard"
	"zuvomo/internal/model"
	"zuvomo/internal/session"
)

// Deps are the collaborators the gateway routes need.
type Deps struct {
	Sessions *session.Store
	Auth     apiclient.AuthService
	Projects apiclient.ProjectService
	Cookie   CookieConfig
}

// Register wires gateway routes and middleware.
func Register(e *echo.Echo, d Deps) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	h := NewHandler(d.Cookie)
	ph := NewProjectHandler(d.Projects)

	g := e.Group("", Sessions(d.Sessions, d.Auth, d.Cookie))

	g.GET("/", h.Home)
	g.GET("/login", h.LoginPage)
	g.GET("/signup", h.SignupPage)

	g.GET("/session", h.Session)
	g.POST("/session/login", h.Login)
	g.POST("/session/signup", h.Signup)
	g.POST("/session/logout", h.Logout)

	g.GET("/auth/callback", h.Callback)
	g.GET("/auth/callback/:provider", h.Callback)

	// Admins are never held back by approval.
	g.GET("/admin", h.Dashboard("admin"), guard.Protect(guard.Options{
		AllowedRoles: []model.Role{model.RoleAdmin},
	}))

	g.GET("/investor", h.Dashboard("investor"), guard.Protect(guard.Options{
		AllowedRoles:    []model.Role{model.RoleInvestor},
		RequireApproval: true,
	}))

	owner := g.Group("/project-owner", guard.Protect(guard.Options{
		AllowedRoles:    []model.Role{model.RoleProjectOwner},
		RequireApproval: true,
	}))
	owner.GET("", h.Dashboard("project_owner"))
	owner.GET("/projects", ph.List)
	owner.POST("/projects", ph.Create)
	owner.PUT("/projects/:id", ph.Update)
	owner.PUT("/projects/:id/submit", ph.Submit)
}
