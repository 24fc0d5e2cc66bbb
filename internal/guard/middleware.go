package guard

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"zuvomo/internal/authctx"
)

// Action is a button on an interstitial screen.
type Action struct {
	Label  string `json:"label"`
	Href   string `json:"href"`
	Method string `json:"method"`
}

// Screen is the JSON body for every outcome other than Render.
type Screen struct {
	Screen         string   `json:"screen"`
	Title          string   `json:"title,omitempty"`
	Message        string   `json:"message,omitempty"`
	ApprovalStatus string   `json:"approval_status,omitempty"`
	Actions        []Action `json:"actions,omitempty"`
}

// Protect gates the wrapped handler with Decide. The request context must
// carry an authctx.Provider.
func Protect(opts Options) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p := authctx.FromContext(c.Request().Context())
			if p == nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "auth provider missing")
			}

			d := Decide(p, opts, c.Path())
			switch d.Outcome {
			case Render:
				return next(c)
			case Loading:
				c.Response().Header().Set("Retry-After", "1")
				return c.JSON(http.StatusAccepted, Screen{Screen: "loading"})
			case Redirect:
				to := d.To
				if to == LoginPath {
					to += "?next=" + url.QueryEscape(c.Request().URL.RequestURI())
				}
				return c.Redirect(http.StatusFound, to)
			case UnderReview:
				return c.JSON(http.StatusForbidden, UnderReviewScreen(string(d.Status)))
			default:
				return c.JSON(http.StatusForbidden, Screen{
					Screen:  "unauthorized",
					Title:   "Access denied",
					Message: "You do not have permission to view this page.",
					Actions: []Action{{Label: "Return to Homepage", Href: "/", Method: http.MethodGet}},
				})
			}
		}
	}
}

// UnderReviewScreen is shown to users whose account is not approved yet.
func UnderReviewScreen(status string) Screen {
	msg := "Your account is being reviewed by our team. You will get an email once it has been approved."
	if status == "rejected" {
		msg = "Your account application was not approved. Update your profile and resubmit it for review."
	}
	return Screen{
		Screen:         "under_review",
		Title:          "Account Under Review",
		Message:        msg,
		ApprovalStatus: status,
		Actions: []Action{
			{Label: "Return to Homepage", Href: "/", Method: http.MethodGet},
			{Label: "Logout", Href: "/session/logout", Method: http.MethodPost},
		},
	}
}
