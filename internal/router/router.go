package router

import (
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"zuvomo/internal/auth"
	"zuvomo/internal/errors"
	"zuvomo/internal/handler"
	"zuvomo/internal/model"
	"zuvomo/internal/service"
)

// Deps are the collaborators the API routes need.
type Deps struct {
	JWT            *auth.JWTService
	Tokens         auth.TokenStoreInterface
	Users          service.UserService
	AuthHandler    *handler.AuthHandler
	UserHandler    *handler.UserHandler
	ProjectHandler *handler.ProjectHandler
}

// Register wires routes and middleware.
func Register(e *echo.Echo, d Deps) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.Validator = NewValidator()

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/signup", d.AuthHandler.Signup)
	api.POST("/auth/login", d.AuthHandler.Login)
	api.POST("/auth/refresh", d.AuthHandler.Refresh)
	api.POST("/auth/logout", d.AuthHandler.Logout)

	// Secured routes (require a valid, unrevoked access token)
	secured := api.Group("",
		echojwt.WithConfig(echojwt.Config{
			SigningKey:  d.JWT.AccessSecret(),
			TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
			NewClaimsFunc: func(c echo.Context) jwt.Claims {
				return new(auth.Claims)
			},
			ErrorHandler: func(c echo.Context, err error) error {
				return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
					Error: "invalid or expired token",
					Code:  "UNAUTHORIZED",
				})
			},
		}),
		handler.CurrentUser(d.Users, d.Tokens),
	)

	secured.GET("/auth/me", d.AuthHandler.Me)
	secured.PUT("/users/me/resubmit", d.UserHandler.Resubmit)

	// Project routes
	secured.GET("/projects", d.ProjectHandler.ListLive, handler.RequireApproved())
	secured.GET("/projects/:id", d.ProjectHandler.Get, handler.RequireApproved())

	owners := secured.Group("/projects", handler.RequireRoles(model.RoleProjectOwner))
	owners.GET("/mine", d.ProjectHandler.ListMine)
	owners.POST("", d.ProjectHandler.Create)
	owners.PUT("/:id", d.ProjectHandler.Update)
	owners.PUT("/:id/submit", d.ProjectHandler.Submit)

	// Admin routes
	admin := secured.Group("/admin", handler.RequireRoles(model.RoleAdmin))
	admin.GET("/users", d.UserHandler.ListUsers)
	admin.GET("/users/:id", d.UserHandler.GetUser)
	admin.PUT("/users/:id/approve", d.UserHandler.ApproveUser)
	admin.PUT("/users/:id/reject", d.UserHandler.RejectUser)
	admin.GET("/projects", d.ProjectHandler.ListForReview)
	admin.PUT("/projects/:id/approve", d.ProjectHandler.Approve)
	admin.PUT("/projects/:id/reject", d.ProjectHandler.Reject)
	admin.PUT("/projects/:id/fund", d.ProjectHandler.MarkFunded)
	admin.PUT("/projects/:id/complete", d.ProjectHandler.MarkCompleted)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator reports field errors under their JSON names.
func NewValidator() *CustomValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return &CustomValidator{validator: v}
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
