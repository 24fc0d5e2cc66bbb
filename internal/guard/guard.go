// Package guard decides whether a protected page may render for the
// current user.
package guard

import (
	"zuvomo/internal/model"
)

// View is the part of the auth provider a decision depends on.
type View interface {
	IsLoading() bool
	IsAuthenticated() bool
	User() *model.User
	HasRole(roles ...model.Role) bool
	IsApproved() bool
}

// Options configure one protected page.
type Options struct {
	// AllowedRoles restricts the page; empty means any role.
	AllowedRoles []model.Role
	// RequireApproval shows the under-review screen to non-admins who are
	// not approved.
	RequireApproval bool
}

// DefaultOptions requires approval and allows every role.
func DefaultOptions() Options {
	return Options{RequireApproval: true}
}

// Outcome is what the guard tells the page to do.
type Outcome int

const (
	Render Outcome = iota
	Loading
	Redirect
	UnderReview
	Unauthorized
)

func (o Outcome) String() string {
	switch o {
	case Render:
		return "render"
	case Loading:
		return "loading"
	case Redirect:
		return "redirect"
	case UnderReview:
		return "under_review"
	case Unauthorized:
		return "unauthorized"
	default:
		return "unknown"
	}
}

// Decision is the guard's verdict. To is set for Redirect and Status for
// UnderReview.
type Decision struct {
	Outcome Outcome
	To      string
	Status  model.ApprovalStatus
}

// LoginPath is where unauthenticated visitors are sent.
const LoginPath = "/login"

// Decide applies the checks in order: loading, authentication, role,
// approval. It has no side effects.
func Decide(v View, opts Options, path string) Decision {
	if v.IsLoading() {
		return Decision{Outcome: Loading}
	}

	if !v.IsAuthenticated() {
		if path == LoginPath {
			return Decision{Outcome: Unauthorized}
		}
		return Decision{Outcome: Redirect, To: LoginPath}
	}

	user := v.User()
	if len(opts.AllowedRoles) > 0 && !v.HasRole(opts.AllowedRoles...) {
		target := user.Role.Dashboard()
		if target == path {
			return Decision{Outcome: Unauthorized}
		}
		return Decision{Outcome: Redirect, To: target}
	}

	if opts.RequireApproval && !user.IsAdmin() && !v.IsApproved() {
		return Decision{Outcome: UnderReview, Status: user.ApprovalStatus}
	}

	return Decision{Outcome: Render}
}
