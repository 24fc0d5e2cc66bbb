package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zuvomo/internal/apiclient"
	"zuvomo/internal/cache"
	"zuvomo/internal/model"
	"zuvomo/internal/session"
)

const cookieName = "zuvomo_sid"

var (
	admin   = &model.User{ID: uuid.New(), Email: "admin@zuvomo.com", Role: model.RoleAdmin, ApprovalStatus: model.ApprovalApproved}
	owner   = &model.User{ID: uuid.New(), Email: "founder@zuvomo.com", Role: model.RoleProjectOwner, ApprovalStatus: model.ApprovalApproved}
	pending = &model.User{ID: uuid.New(), Email: "pending@zuvomo.com", Role: model.RoleProjectOwner, ApprovalStatus: model.ApprovalPending}
	backer  = &model.User{ID: uuid.New(), Email: "investor@zuvomo.com", Role: model.RoleInvestor, ApprovalStatus: model.ApprovalApproved}
)

// fakeAPI serves the endpoints the gateway calls. Tokens map to users;
// "at-old" and "at-flaky" pass /auth/me but are refused elsewhere.
func fakeAPI(t *testing.T) *httptest.Server {
	me := map[string]*model.User{
		"at-admin":   admin,
		"at-owner":   owner,
		"at-pending": pending,
		"oauth-at":   backer,
		"at-old":     owner,
		"at-flaky":   owner,
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)

		switch r.URL.Path {
		case "/api/auth/login":
			if body["email"] == admin.Email && body["password"] == "admin123" {
				writeJSON(w, http.StatusOK, map[string]any{"user": admin, "access_token": "at-admin", "refresh_token": "rt-admin"})
				return
			}
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials", "code": "INVALID_CREDENTIALS"})
		case "/api/auth/me":
			if u, ok := me[token]; ok {
				writeJSON(w, http.StatusOK, map[string]any{"user": u})
				return
			}
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid token", "code": "UNAUTHORIZED"})
		case "/api/auth/refresh":
			if body["refresh_token"] == "rt-owner" {
				writeJSON(w, http.StatusOK, map[string]any{"access_token": "at-owner"})
				return
			}
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid refresh token", "code": "UNAUTHORIZED"})
		case "/api/auth/logout":
			w.WriteHeader(http.StatusNoContent)
		case "/api/projects/mine":
			if token != "at-owner" {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid token", "code": "UNAUTHORIZED"})
				return
			}
			writeJSON(w, http.StatusOK, []model.Project{{ID: uuid.New(), OwnerID: owner.ID, Title: "Solar", Status: model.ProjectStatusDraft}})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type gateway struct {
	e     *echo.Echo
	store *session.Store
}

func newGateway(t *testing.T) gateway {
	t.Helper()
	srv := fakeAPI(t)
	client := apiclient.New(srv.URL+"/api", time.Second)
	store := session.NewStore(cache.NewMemory(), time.Hour)

	e := echo.New()
	Register(e, Deps{
		Sessions: store,
		Auth:     apiclient.NewAuthService(client),
		Projects: apiclient.NewProjectService(client),
		Cookie:   CookieConfig{Name: cookieName, MaxAge: time.Hour},
	})
	return gateway{e: e, store: store}
}

// seed stores a session and returns its id.
func (g gateway) seed(access, refresh string, u *model.User) string {
	sid := uuid.NewString()
	g.store.Bind(sid).Save(context.Background(), session.Tokens{AccessToken: access, RefreshToken: refresh}, u)
	return sid
}

func (g gateway) do(method, target, sid string, body any) *httptest.ResponseRecorder {
	var rdr *strings.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rdr = strings.NewReader(string(b))
	} else {
		rdr = strings.NewReader("")
	}
	req := httptest.NewRequest(method, target, rdr)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if sid != "" {
		req.AddCookie(&http.Cookie{Name: cookieName, Value: sid})
	}
	rec := httptest.NewRecorder()
	g.e.ServeHTTP(rec, req)
	return rec
}

func sessionCookieFrom(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == cookieName {
			return ck
		}
	}
	return nil
}

func TestSession_FirstVisitIssuesCookie(t *testing.T) {
	g := newGateway(t)
	rec := g.do(http.MethodGet, "/session", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	ck := sessionCookieFrom(rec)
	require.NotNil(t, ck)
	_, err := uuid.Parse(ck.Value)
	assert.NoError(t, err)
	assert.True(t, ck.HttpOnly)

	var resp SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "unauthenticated", resp.State)
	assert.False(t, resp.IsAuthenticated)
}

func TestSession_CachedUserWithoutTokenIsIgnored(t *testing.T) {
	g := newGateway(t)
	sid := g.seed("", "", admin)

	var resp SessionResponse
	rec := g.do(http.MethodGet, "/session", sid, nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.IsAuthenticated)
	assert.Nil(t, resp.User)
}

func TestLoginThenAdminDashboard(t *testing.T) {
	g := newGateway(t)
	sid := uuid.NewString()

	rec := g.do(http.MethodPost, "/session/login", sid, LoginRequest{Email: admin.Email, Password: "admin123"})
	require.Equal(t, http.StatusOK, rec.Code)

	var signedIn SignedInResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &signedIn))
	assert.Equal(t, "/admin", signedIn.Redirect)

	s := g.store.Bind(sid).Read(context.Background())
	assert.Equal(t, "at-admin", s.AccessToken)
	assert.Equal(t, "rt-admin", s.RefreshToken)

	rec = g.do(http.MethodGet, "/admin", sid, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLoginErrors(t *testing.T) {
	g := newGateway(t)

	tests := []struct {
		name     string
		req      LoginRequest
		wantCode int
		wantErr  string
	}{
		{"bad password", LoginRequest{Email: admin.Email, Password: "nope"}, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{"missing fields", LoginRequest{}, http.StatusBadRequest, "VALIDATION_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sid := uuid.NewString()
			rec := g.do(http.MethodPost, "/session/login", sid, tt.req)
			assert.Equal(t, tt.wantCode, rec.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantErr, resp.Code)
			assert.False(t, g.store.Bind(sid).Read(context.Background()).Authenticated())
		})
	}
}

func TestLogoutResetsEverything(t *testing.T) {
	g := newGateway(t)
	sid := g.seed("at-admin", "rt-admin", admin)

	rec := g.do(http.MethodPost, "/session/logout", sid, nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	assert.Equal(t, `"storage", "cookies"`, rec.Header().Get("Clear-Site-Data"))

	ck := sessionCookieFrom(rec)
	require.NotNil(t, ck)
	assert.Less(t, ck.MaxAge, 0)

	s := g.store.Bind(sid).Read(context.Background())
	assert.Empty(t, s.AccessToken)
	assert.Empty(t, s.RefreshToken)
	assert.Nil(t, s.User)
}

func TestGuardedPages(t *testing.T) {
	g := newGateway(t)

	tests := []struct {
		name         string
		access       string
		user         *model.User
		target       string
		wantCode     int
		wantLocation string
	}{
		{"anonymous to login", "", nil, "/investor", http.StatusFound, "/login?next=%2Finvestor"},
		{"owner on investor page", "at-owner", owner, "/investor", http.StatusFound, "/project-owner"},
		{"owner dashboard", "at-owner", owner, "/project-owner", http.StatusOK, ""},
		{"pending owner held", "at-pending", pending, "/project-owner", http.StatusForbidden, ""},
		{"admin on admin page", "at-admin", admin, "/admin", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sid := ""
			if tt.user != nil {
				sid = g.seed(tt.access, "", tt.user)
			}
			rec := g.do(http.MethodGet, tt.target, sid, nil)
			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantLocation != "" {
				assert.Equal(t, tt.wantLocation, rec.Header().Get("Location"))
			}
		})
	}
}

func TestOAuthCallback_SuccessSignsIn(t *testing.T) {
	g := newGateway(t)
	sid := uuid.NewString()

	userJSON, _ := json.Marshal(backer)
	q := url.Values{}
	q.Set("status", "success")
	q.Set("accessToken", "oauth-at")
	q.Set("refreshToken", "oauth-rt")
	q.Set("userData", string(userJSON))

	rec := g.do(http.MethodGet, "/auth/callback/google?"+q.Encode(), sid, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1.5; url=/investor", rec.Header().Get("Refresh"))

	var nav map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &nav))
	assert.Equal(t, "success", nav["status"])
	assert.Equal(t, "/investor", nav["redirect"])
	assert.EqualValues(t, 1500, nav["delay_ms"])

	rec = g.do(http.MethodGet, "/investor", sid, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestOAuthCallback_PendingHandsOffToLogin(t *testing.T) {
	g := newGateway(t)
	sid := uuid.NewString()

	q := url.Values{}
	q.Set("status", "pending")
	q.Set("userData", `{"email":"new@x.com","first_name":"Nia"}`)

	rec := g.do(http.MethodGet, "/auth/callback/linkedin?"+q.Encode(), sid, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2; url=/login?email=new%40x.com&oauth=true&status=pending", rec.Header().Get("Refresh"))

	rec = g.do(http.MethodGet, "/login?status=pending&email=new%40x.com&oauth=true", sid, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var page PageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, "login", page.Page)
	assert.Equal(t, "pending", page.Query["status"])
	assert.Equal(t, true, page.OAuth["isOAuthUser"])
	assert.Equal(t, "linkedin", page.OAuth["oauthProvider"])
	assert.Equal(t, "new@x.com", page.OAuth["email"])

	rec = g.do(http.MethodGet, "/login", sid, nil)
	page = PageResponse{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Nil(t, page.OAuth, "hand-off is consumed on first read")
}

func TestOAuthCallback_ErrorGoesToSignup(t *testing.T) {
	g := newGateway(t)
	rec := g.do(http.MethodGet, "/auth/callback?error=oauth_cancelled", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "3; url=/signup", rec.Header().Get("Refresh"))
}

func TestProjects(t *testing.T) {
	g := newGateway(t)

	t.Run("listed with current token", func(t *testing.T) {
		sid := g.seed("at-owner", "rt-owner", owner)
		rec := g.do(http.MethodGet, "/project-owner/projects", sid, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Solar")
	})

	t.Run("stale token refreshed once", func(t *testing.T) {
		sid := g.seed("at-old", "rt-owner", owner)
		rec := g.do(http.MethodGet, "/project-owner/projects", sid, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "at-owner", g.store.Bind(sid).Read(context.Background()).AccessToken)
	})

	t.Run("failed refresh expires the session", func(t *testing.T) {
		sid := g.seed("at-flaky", "rt-bad", owner)
		rec := g.do(http.MethodGet, "/project-owner/projects", sid, nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)

		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "SESSION_EXPIRED", resp.Code)
		assert.Equal(t, "/login?session=expired", resp.Redirect)
		assert.False(t, g.store.Bind(sid).Read(context.Background()).Authenticated())
	})
}
