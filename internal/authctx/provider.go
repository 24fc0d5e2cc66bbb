// Package authctx holds the current user for one browser request. A
// Provider is built per request and carried in the request context.
package authctx

import (
	"context"
	"errors"
	"log"
	"sync"

	"zuvomo/internal/apiclient"
	"zuvomo/internal/model"
	"zuvomo/internal/session"
)

// State is the initialization state of a Provider.
type State int

const (
	Uninitialized State = iota
	Checking
	Authenticated
	Unauthenticated
)

func (s State) String() string {
	switch s {
	case Checking:
		return "checking"
	case Authenticated:
		return "authenticated"
	case Unauthenticated:
		return "unauthenticated"
	default:
		return "uninitialized"
	}
}

// ErrSessionExpired is returned by Authorized when the access token was
// rejected and could not be refreshed. The session has been cleared.
var ErrSessionExpired = errors.New("your session has expired, please log in again")

// Reset tells the transport to discard all client state and navigate to
// Location with a full page load.
type Reset struct {
	Location string
}

// Provider answers "who is the current user" for one session.
type Provider struct {
	auth    apiclient.AuthService
	session *session.Handle

	once    sync.Once
	mu      sync.RWMutex
	state   State
	user    *model.User
	initErr error
}

// New creates a Provider in the Uninitialized state.
func New(auth apiclient.AuthService, h *session.Handle) *Provider {
	return &Provider{auth: auth, session: h}
}

// Init resolves the user from the session. It runs at most once; later
// calls return immediately.
func (p *Provider) Init(ctx context.Context) {
	p.once.Do(func() {
		p.setState(Checking, nil)

		if !p.session.Read(ctx).Authenticated() {
			// A cached user without an access token is never surfaced.
			p.setState(Unauthenticated, nil)
			return
		}

		user, err := p.auth.GetCurrentUser(ctx, p.session)
		if errors.Is(err, apiclient.ErrUnauthorized) {
			if !p.auth.RefreshToken(ctx, p.session) {
				p.expire(ctx)
				return
			}
			user, err = p.auth.GetCurrentUser(ctx, p.session)
			if err != nil {
				p.expire(ctx)
				return
			}
		}
		if err != nil {
			// Transport trouble. Keep the tokens for the next page load.
			log.Printf("session %s: resolve user: %v", p.session.ID(), err)
			p.mu.Lock()
			p.initErr = err
			p.mu.Unlock()
			p.setState(Unauthenticated, nil)
			return
		}
		p.setState(Authenticated, user)
	})
}

// Err is the transport error that left Init unauthenticated, if any.
func (p *Provider) Err() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.initErr
}

// Login signs in. The returned error is meant to be shown on the form.
func (p *Provider) Login(ctx context.Context, email, password string) error {
	user, err := p.auth.Login(ctx, p.session, email, password)
	if err != nil {
		return err
	}
	p.setState(Authenticated, user)
	return nil
}

// Signup registers and signs in. On failure the provider stays as it was.
func (p *Provider) Signup(ctx context.Context, req apiclient.SignupRequest) error {
	user, err := p.auth.Signup(ctx, p.session, req)
	if err != nil {
		return err
	}
	p.setState(Authenticated, user)
	return nil
}

// Logout ends the session and returns the reset the caller must perform.
func (p *Provider) Logout(ctx context.Context) Reset {
	p.auth.Logout(ctx, p.session)
	p.setState(Unauthenticated, nil)
	return Reset{Location: "/"}
}

// Authorized runs fn with the current access token. On ErrUnauthorized it
// refreshes once and retries; if that fails the session is cleared and
// ErrSessionExpired is returned.
func (p *Provider) Authorized(ctx context.Context, fn func(ctx context.Context, token string) error) error {
	err := fn(ctx, p.session.Read(ctx).AccessToken)
	if !errors.Is(err, apiclient.ErrUnauthorized) {
		return err
	}

	if !p.auth.RefreshToken(ctx, p.session) {
		p.expire(ctx)
		return ErrSessionExpired
	}
	err = fn(ctx, p.session.Read(ctx).AccessToken)
	if errors.Is(err, apiclient.ErrUnauthorized) {
		p.expire(ctx)
		return ErrSessionExpired
	}
	return err
}

// State returns the current initialization state.
func (p *Provider) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// User returns the current user, or nil when unauthenticated.
func (p *Provider) User() *model.User {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.user
}

func (p *Provider) IsLoading() bool {
	s := p.State()
	return s == Uninitialized || s == Checking
}

func (p *Provider) IsAuthenticated() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state == Authenticated && p.user != nil
}

// HasRole reports whether the current user holds one of roles.
func (p *Provider) HasRole(roles ...model.Role) bool {
	if !p.IsAuthenticated() {
		return false
	}
	return p.User().HasRole(roles...)
}

// IsApproved is the literal approval status. Admin bypass is the guard's
// concern, not this predicate's.
func (p *Provider) IsApproved() bool {
	if !p.IsAuthenticated() {
		return false
	}
	return p.User().ApprovalStatus == model.ApprovalApproved
}

func (p *Provider) expire(ctx context.Context) {
	if err := p.session.Clear(ctx); err != nil {
		log.Printf("session %s: clear: %v", p.session.ID(), err)
	}
	p.setState(Unauthenticated, nil)
}

func (p *Provider) setState(s State, user *model.User) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = s
	p.user = user
}

type contextKey struct{}

// WithProvider attaches p to ctx.
func WithProvider(ctx context.Context, p *Provider) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

// FromContext returns the Provider on ctx, or nil.
func FromContext(ctx context.Context) *Provider {
	p, _ := ctx.Value(contextKey{}).(*Provider)
	return p
}
