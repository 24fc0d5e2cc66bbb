package web

import (
	stderrors "errors"
	"log"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"zuvomo/internal/apiclient"
	"zuvomo/internal/authctx"
	"zuvomo/internal/model"
	"zuvomo/internal/oauth"
)

// ErrorResponse is the body of every failed gateway call.
type ErrorResponse struct {
	Error    string            `json:"error"`
	Code     string            `json:"code"`
	Fields   map[string]string `json:"fields,omitempty"`
	Redirect string            `json:"redirect,omitempty"`
}

// SessionResponse describes the current browser session.
type SessionResponse struct {
	State           string      `json:"state"`
	IsAuthenticated bool        `json:"is_authenticated"`
	IsApproved      bool        `json:"is_approved"`
	User            *model.User `json:"user,omitempty"`
	Error           string      `json:"error,omitempty"`
}

// LoginRequest is the login form.
type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// SignedInResponse is returned after a successful login or signup.
type SignedInResponse struct {
	User     *model.User `json:"user"`
	Redirect string      `json:"redirect"`
}

// PageResponse is the payload of a rendered page.
type PageResponse struct {
	Page  string            `json:"page"`
	User  *model.User       `json:"user,omitempty"`
	Query map[string]string `json:"query,omitempty"`
	OAuth map[string]any    `json:"oauth,omitempty"`
}

// Handler serves session, page and OAuth callback routes.
type Handler struct {
	cookie CookieConfig
}

// NewHandler creates a new Handler.
func NewHandler(cookie CookieConfig) *Handler {
	return &Handler{cookie: cookie}
}

// Session reports who is signed in.
func (h *Handler) Session(c echo.Context) error {
	p := provider(c)
	resp := SessionResponse{
		State:           p.State().String(),
		IsAuthenticated: p.IsAuthenticated(),
		IsApproved:      p.IsApproved(),
		User:            p.User(),
	}
	if err := p.Err(); err != nil {
		resp.Error = err.Error()
	}
	return c.JSON(http.StatusOK, resp)
}

// Login signs the session in.
func (h *Handler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Code: "INVALID_REQUEST"})
	}
	fields := map[string]string{}
	if req.Email == "" {
		fields["email"] = "is required"
	}
	if req.Password == "" {
		fields["password"] = "is required"
	}
	if len(fields) > 0 {
		return respondError(c, &apiclient.ValidationError{Fields: fields})
	}

	p := provider(c)
	if err := p.Login(c.Request().Context(), req.Email, req.Password); err != nil {
		return respondError(c, err)
	}
	u := p.User()
	return c.JSON(http.StatusOK, SignedInResponse{User: u, Redirect: u.Role.Dashboard()})
}

// Signup registers a founder or investor and signs the session in.
func (h *Handler) Signup(c echo.Context) error {
	var req apiclient.SignupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Code: "INVALID_REQUEST"})
	}

	p := provider(c)
	if err := p.Signup(c.Request().Context(), req); err != nil {
		return respondError(c, err)
	}
	u := p.User()
	return c.JSON(http.StatusCreated, SignedInResponse{User: u, Redirect: u.Role.Dashboard()})
}

// Logout ends the session and resets all browser state.
func (h *Handler) Logout(c echo.Context) error {
	reset := provider(c).Logout(c.Request().Context())

	c.Response().Header().Set("Clear-Site-Data", `"storage", "cookies"`)
	c.SetCookie(expiredCookie(h.cookie))
	return c.Redirect(http.StatusSeeOther, reset.Location)
}

// Callback finishes an OAuth sign-in. The navigation is delayed so the
// status message can be read.
func (h *Handler) Callback(c echo.Context) error {
	nav, err := oauth.Handle(c.Request().Context(), handle(c), c.Param("provider"), c.QueryParams())
	if err != nil {
		log.Printf("oauth callback: %v", err)
	}

	secs := strconv.FormatFloat(nav.Delay.Seconds(), 'f', -1, 64)
	c.Response().Header().Set("Refresh", secs+"; url="+nav.To)
	return c.JSON(http.StatusOK, nav)
}

// LoginPage renders the login page. Signed-in users go to their dashboard.
func (h *Handler) LoginPage(c echo.Context) error {
	return h.authPage(c, "login", "status", "email", "oauth", "next", "session")
}

// SignupPage renders the signup page, including the complete-profile step.
func (h *Handler) SignupPage(c echo.Context) error {
	return h.authPage(c, "signup", "step")
}

func (h *Handler) authPage(c echo.Context, page string, keys ...string) error {
	p := provider(c)
	if u := p.User(); u != nil && p.IsAuthenticated() {
		return c.Redirect(http.StatusFound, u.Role.Dashboard())
	}

	resp := PageResponse{Page: page, OAuth: handle(c).TakeOAuth(c.Request().Context())}
	for _, k := range keys {
		if v := c.QueryParam(k); v != "" {
			if resp.Query == nil {
				resp.Query = map[string]string{}
			}
			resp.Query[k] = v
		}
	}
	return c.JSON(http.StatusOK, resp)
}

// Home renders the landing page.
func (h *Handler) Home(c echo.Context) error {
	return c.JSON(http.StatusOK, PageResponse{Page: "home", User: provider(c).User()})
}

// Dashboard renders a role dashboard.
func (h *Handler) Dashboard(page string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, PageResponse{Page: page, User: provider(c).User()})
	}
}

func respondError(c echo.Context, err error) error {
	var verr *apiclient.ValidationError
	var apiErr *apiclient.APIError

	switch {
	case stderrors.As(err, &verr):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Code: "VALIDATION_ERROR", Fields: verr.Fields})
	case stderrors.Is(err, apiclient.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: err.Error(), Code: "INVALID_CREDENTIALS"})
	case stderrors.Is(err, apiclient.ErrDuplicateEmail):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error(), Code: "USER_ALREADY_EXISTS"})
	case stderrors.Is(err, authctx.ErrSessionExpired):
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: err.Error(), Code: "SESSION_EXPIRED", Redirect: "/login?session=expired"})
	case stderrors.Is(err, apiclient.ErrNetwork):
		return c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: err.Error(), Code: "NETWORK_ERROR"})
	case stderrors.As(err, &apiErr):
		return c.JSON(apiErr.Status, ErrorResponse{Error: apiErr.Error(), Code: apiErr.Code, Fields: apiErr.Fields})
	default:
		log.Printf("web: unexpected error: %v", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "something went wrong", Code: "INTERNAL_ERROR"})
	}
}
