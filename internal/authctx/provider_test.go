package authctx

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zuvomo/internal/apiclient"
	"zuvomo/internal/cache"
	"zuvomo/internal/model"
	"zuvomo/internal/session"
)

// fakeAuth accepts exactly one access token and one refresh token.
type fakeAuth struct {
	user         *model.User
	validAccess  string
	validRefresh string
	newAccess    string

	meCalls      int
	refreshCalls int
	logoutCalls  int
}

func (f *fakeAuth) Login(ctx context.Context, h *session.Handle, email, password string) (*model.User, error) {
	if email != f.user.Email || password != "admin123" {
		return nil, apiclient.ErrInvalidCredentials
	}
	h.Save(ctx, session.Tokens{AccessToken: f.validAccess, RefreshToken: f.validRefresh}, f.user)
	return f.user, nil
}

func (f *fakeAuth) Signup(ctx context.Context, h *session.Handle, req apiclient.SignupRequest) (*model.User, error) {
	if req.FirstName == "" {
		return nil, &apiclient.ValidationError{Fields: map[string]string{"first_name": "is required"}}
	}
	return nil, apiclient.ErrDuplicateEmail
}

func (f *fakeAuth) GetCurrentUser(ctx context.Context, h *session.Handle) (*model.User, error) {
	f.meCalls++
	if h.Read(ctx).AccessToken != f.validAccess {
		return nil, apiclient.ErrUnauthorized
	}
	return f.user, nil
}

func (f *fakeAuth) RefreshToken(ctx context.Context, h *session.Handle) bool {
	f.refreshCalls++
	if f.newAccess == "" || h.Read(ctx).RefreshToken != f.validRefresh {
		return false
	}
	f.validAccess = f.newAccess
	h.SetAccessToken(ctx, f.newAccess)
	return true
}

func (f *fakeAuth) Logout(ctx context.Context, h *session.Handle) {
	f.logoutCalls++
	_ = h.Clear(ctx)
}

func setup(user *model.User) (*fakeAuth, *session.Handle, *cache.Memory) {
	mem := cache.NewMemory()
	h := session.NewStore(mem, 0).Bind("sid")
	return &fakeAuth{user: user, validAccess: "at", validRefresh: "rt"}, h, mem
}

func investor() *model.User {
	return &model.User{ID: uuid.New(), Email: "inv@example.com", Role: model.RoleInvestor, ApprovalStatus: model.ApprovalApproved}
}

func TestInit(t *testing.T) {
	ctx := context.Background()

	t.Run("no access token ignores cached user", func(t *testing.T) {
		auth, h, _ := setup(investor())
		h.SetUser(ctx, auth.user)

		p := New(auth, h)
		assert.True(t, p.IsLoading())
		p.Init(ctx)

		assert.False(t, p.IsLoading())
		assert.Equal(t, Unauthenticated, p.State())
		assert.False(t, p.IsAuthenticated())
		assert.Nil(t, p.User())
		assert.Zero(t, auth.meCalls)
	})

	t.Run("valid access token", func(t *testing.T) {
		auth, h, _ := setup(investor())
		h.Save(ctx, session.Tokens{AccessToken: "at", RefreshToken: "rt"}, auth.user)

		p := New(auth, h)
		p.Init(ctx)
		assert.True(t, p.IsAuthenticated())
		assert.True(t, p.HasRole(model.RoleInvestor))
		assert.True(t, p.IsApproved())
	})

	t.Run("expired token refreshes once", func(t *testing.T) {
		auth, h, _ := setup(investor())
		auth.newAccess = "at-2"
		h.Save(ctx, session.Tokens{AccessToken: "old", RefreshToken: "rt"}, nil)
		auth.validAccess = "unused"

		p := New(auth, h)
		p.Init(ctx)
		assert.True(t, p.IsAuthenticated())
		assert.Equal(t, 1, auth.refreshCalls)
		assert.Equal(t, 2, auth.meCalls)
		assert.Equal(t, "at-2", h.Read(ctx).AccessToken)
	})

	t.Run("failed refresh clears the session", func(t *testing.T) {
		auth, h, mem := setup(investor())
		h.Save(ctx, session.Tokens{AccessToken: "old", RefreshToken: "revoked"}, auth.user)

		p := New(auth, h)
		p.Init(ctx)
		assert.Equal(t, Unauthenticated, p.State())
		assert.False(t, p.IsAuthenticated())
		assert.Nil(t, p.User())
		assert.Zero(t, mem.Len())
	})

	t.Run("runs once", func(t *testing.T) {
		auth, h, _ := setup(investor())
		h.Save(ctx, session.Tokens{AccessToken: "at", RefreshToken: "rt"}, nil)

		p := New(auth, h)
		p.Init(ctx)
		p.Init(ctx)
		assert.Equal(t, 1, auth.meCalls)
	})
}

func TestLoginAsAdmin(t *testing.T) {
	ctx := context.Background()
	admin := &model.User{ID: uuid.New(), Email: "admin@zuvomo.com", Role: model.RoleAdmin, ApprovalStatus: model.ApprovalPending}
	auth, h, _ := setup(admin)

	p := New(auth, h)
	p.Init(ctx)
	require.NoError(t, p.Login(ctx, "admin@zuvomo.com", "admin123"))

	assert.True(t, p.IsAuthenticated())
	assert.Equal(t, model.RoleAdmin, p.User().Role)
	assert.True(t, p.HasRole(model.RoleAdmin))
	assert.False(t, p.IsApproved(), "the predicate reports the literal status")

	assert.ErrorIs(t, New(auth, h).Login(ctx, "admin@zuvomo.com", "nope"), apiclient.ErrInvalidCredentials)
}

func TestSignupFailureStaysUnauthenticated(t *testing.T) {
	ctx := context.Background()
	auth, h, mem := setup(investor())

	p := New(auth, h)
	p.Init(ctx)
	err := p.Signup(ctx, apiclient.SignupRequest{Email: "x@example.com", Password: "secret1", UserType: model.RoleInvestor})

	var verr *apiclient.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.False(t, p.IsAuthenticated())
	assert.Zero(t, mem.Len())
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	auth, h, mem := setup(investor())
	h.Save(ctx, session.Tokens{AccessToken: "at", RefreshToken: "rt"}, auth.user)

	p := New(auth, h)
	p.Init(ctx)
	require.True(t, p.IsAuthenticated())

	reset := p.Logout(ctx)
	assert.Equal(t, "/", reset.Location)
	assert.False(t, p.IsAuthenticated())
	assert.Zero(t, mem.Len())
	assert.Equal(t, 1, auth.logoutCalls)
}

func TestAuthorized(t *testing.T) {
	ctx := context.Background()

	t.Run("retries once after refresh", func(t *testing.T) {
		auth, h, _ := setup(investor())
		auth.newAccess = "at-2"
		h.Save(ctx, session.Tokens{AccessToken: "at", RefreshToken: "rt"}, nil)

		var seen []string
		err := New(auth, h).Authorized(ctx, func(_ context.Context, token string) error {
			seen = append(seen, token)
			if token != "at-2" {
				return apiclient.ErrUnauthorized
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"at", "at-2"}, seen)
	})

	t.Run("expires when refresh fails", func(t *testing.T) {
		auth, h, mem := setup(investor())
		h.Save(ctx, session.Tokens{AccessToken: "at", RefreshToken: "rt"}, auth.user)

		p := New(auth, h)
		p.Init(ctx)
		err := p.Authorized(ctx, func(context.Context, string) error {
			return apiclient.ErrUnauthorized
		})
		assert.ErrorIs(t, err, ErrSessionExpired)
		assert.False(t, p.IsAuthenticated())
		assert.Zero(t, mem.Len())
	})

	t.Run("other errors pass through", func(t *testing.T) {
		auth, h, _ := setup(investor())
		err := New(auth, h).Authorized(ctx, func(context.Context, string) error {
			return apiclient.ErrNetwork
		})
		assert.ErrorIs(t, err, apiclient.ErrNetwork)
		assert.Zero(t, auth.refreshCalls)
	})
}

func TestContextRoundTrip(t *testing.T) {
	auth, h, _ := setup(investor())
	p := New(auth, h)

	assert.Nil(t, FromContext(context.Background()))
	assert.Same(t, p, FromContext(WithProvider(context.Background(), p)))
}
