// Package web is the browser-facing gateway. It owns the session cookie,
// builds an auth provider for each request and serves the pages that the
// route guard protects.
package web

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"zuvomo/internal/apiclient"
	"zuvomo/internal/authctx"
	"zuvomo/internal/session"
)

const sessionKey = "session"

// CookieConfig controls the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
	MaxAge time.Duration
}

// Sessions binds every request to a session, creating the cookie on
// first visit, and puts an initialized authctx.Provider in the request
// context.
func Sessions(store *session.Store, auth apiclient.AuthService, cookie CookieConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sid := ""
			if ck, err := c.Cookie(cookie.Name); err == nil {
				if _, err := uuid.Parse(ck.Value); err == nil {
					sid = ck.Value
				}
			}
			if sid == "" {
				sid = uuid.NewString()
				c.SetCookie(sessionCookie(cookie, sid))
			}

			h := store.Bind(sid)
			req := c.Request()
			p := authctx.New(auth, h)
			p.Init(req.Context())

			c.SetRequest(req.WithContext(authctx.WithProvider(req.Context(), p)))
			c.Set(sessionKey, h)
			return next(c)
		}
	}
}

func sessionCookie(cfg CookieConfig, sid string) *http.Cookie {
	return &http.Cookie{
		Name:     cfg.Name,
		Value:    sid,
		Path:     "/",
		MaxAge:   int(cfg.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func expiredCookie(cfg CookieConfig) *http.Cookie {
	return &http.Cookie{
		Name:     cfg.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func provider(c echo.Context) *authctx.Provider {
	return authctx.FromContext(c.Request().Context())
}

func handle(c echo.Context) *session.Handle {
	h, _ := c.Get(sessionKey).(*session.Handle)
	return h
}
