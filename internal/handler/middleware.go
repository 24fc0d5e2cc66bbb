package handler

import (
	stderrors "errors"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"zuvomo/internal/auth"
	"zuvomo/internal/errors"
	"zuvomo/internal/model"
	"zuvomo/internal/service"
)

const currentUserKey = "current_user"

// CurrentUser runs after echo-jwt. It rejects refresh tokens and revoked
// access tokens, then loads the caller into the request context.
func CurrentUser(users service.UserService, tokens auth.TokenStoreInterface) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return unauthorized("invalid token")
			}
			claims, ok := token.Claims.(*auth.Claims)
			if !ok || claims.Type != auth.TokenTypeAccess {
				return unauthorized("invalid token")
			}

			ctx := c.Request().Context()
			revoked, err := tokens.IsAccessTokenBlacklisted(ctx, claims.ID)
			if err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, errors.ErrorResponse{
					Error: "failed to verify token",
					Code:  "TOKEN_CHECK_FAILED",
				})
			}
			if revoked {
				return unauthorized("token has been revoked")
			}

			user, err := users.GetUser(ctx, claims.UserID)
			if err != nil {
				return unauthorized("user no longer exists")
			}
			c.Set(currentUserKey, user)
			return next(c)
		}
	}
}

// RequireRoles allows the request through only for the listed roles.
func RequireRoles(roles ...model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := currentUser(c)
			if user == nil || !user.HasRole(roles...) {
				return domainError(errors.ErrForbidden)
			}
			return next(c)
		}
	}
}

// RequireApproved rejects callers whose account has not been approved.
// Admins always pass.
func RequireApproved() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !currentUser(c).IsApproved() {
				return domainError(errors.ErrAccountNotApproved)
			}
			return next(c)
		}
	}
}

func currentUser(c echo.Context) *model.User {
	user, _ := c.Get(currentUserKey).(*model.User)
	return user
}

func unauthorized(msg string) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
		Error: msg,
		Code:  "UNAUTHORIZED",
	})
}

// domainError maps a service error onto the JSON error body.
func domainError(err error) *echo.HTTPError {
	var fields service.FieldErrors
	if stderrors.As(err, &fields) {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error:  "validation failed",
			Code:   "VALIDATION_ERROR",
			Fields: fields,
		})
	}
	httpErr := errors.MapErrorToHTTP(err)
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}
