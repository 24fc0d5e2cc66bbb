// Package session persists a browser's tokens and cached user in the
// shared cache, keyed by an opaque session id held in a cookie.
package session

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"zuvomo/internal/cache"
	"zuvomo/internal/model"
)

const (
	keyAccessToken  = "access_token"
	keyRefreshToken = "refresh_token"
	keyUser         = "user"
	keyOAuthStash   = "oauth_user_data"

	// OAuthStashTTL bounds the OAuth hand-off window.
	OAuthStashTTL = 10 * time.Minute
)

// Tokens is an access/refresh pair issued by the API.
type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Session is whatever subset of keys is currently stored.
type Session struct {
	AccessToken  string
	RefreshToken string
	User         *model.User
}

// Authenticated is false whenever there is no access token, regardless of
// any cached user.
func (s Session) Authenticated() bool {
	return s.AccessToken != ""
}

// Store hands out per-session handles over a cache.
type Store struct {
	cache cache.Store
	ttl   time.Duration
}

// NewStore creates a Store. A ttl of 0 keeps keys until they are cleared.
func NewStore(c cache.Store, ttl time.Duration) *Store {
	return &Store{cache: c, ttl: ttl}
}

// Bind returns the handle for one session id.
func (s *Store) Bind(sid string) *Handle {
	return &Handle{store: s, sid: sid}
}

// Handle reads and writes the keys of a single session.
type Handle struct {
	store *Store
	sid   string
}

// ID returns the session id.
func (h *Handle) ID() string {
	return h.sid
}

func (h *Handle) key(name string) string {
	return "session:" + h.sid + ":" + name
}

// Save writes all three keys. Writes are best-effort: a failed key is
// logged and the rest are still attempted.
func (h *Handle) Save(ctx context.Context, tokens Tokens, user *model.User) {
	h.set(ctx, keyAccessToken, []byte(tokens.AccessToken))
	h.set(ctx, keyRefreshToken, []byte(tokens.RefreshToken))
	h.SetUser(ctx, user)
}

// SetAccessToken replaces the access token after a refresh.
func (h *Handle) SetAccessToken(ctx context.Context, token string) {
	h.set(ctx, keyAccessToken, []byte(token))
}

// SetUser replaces the cached user.
func (h *Handle) SetUser(ctx context.Context, user *model.User) {
	if user == nil {
		return
	}
	payload, err := json.Marshal(user)
	if err != nil {
		log.Printf("session %s: encode user: %v", h.sid, err)
		return
	}
	h.set(ctx, keyUser, payload)
}

// Read returns the stored keys. Missing or undecodable keys are left zero.
func (h *Handle) Read(ctx context.Context) Session {
	var s Session
	if v, _ := h.store.cache.Get(ctx, h.key(keyAccessToken)); v != nil {
		s.AccessToken = string(v)
	}
	if v, _ := h.store.cache.Get(ctx, h.key(keyRefreshToken)); v != nil {
		s.RefreshToken = string(v)
	}
	if v, _ := h.store.cache.Get(ctx, h.key(keyUser)); v != nil {
		var u model.User
		if err := json.Unmarshal(v, &u); err == nil {
			s.User = &u
		}
	}
	return s
}

// Clear removes the three session keys.
func (h *Handle) Clear(ctx context.Context) error {
	return h.store.cache.Delete(ctx, h.key(keyAccessToken), h.key(keyRefreshToken), h.key(keyUser))
}

// StashOAuth keeps OAuth hand-off data for the next login or signup page.
func (h *Handle) StashOAuth(ctx context.Context, data map[string]any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return h.store.cache.Set(ctx, h.key(keyOAuthStash), payload, OAuthStashTTL)
}

// TakeOAuth returns and removes the hand-off data, or nil if there is none.
func (h *Handle) TakeOAuth(ctx context.Context) map[string]any {
	v, _ := h.store.cache.Get(ctx, h.key(keyOAuthStash))
	if v == nil {
		return nil
	}
	_ = h.store.cache.Delete(ctx, h.key(keyOAuthStash))

	var data map[string]any
	if err := json.Unmarshal(v, &data); err != nil {
		return nil
	}
	return data
}

func (h *Handle) set(ctx context.Context, name string, value []byte) {
	if err := h.store.cache.Set(ctx, h.key(name), value, h.store.ttl); err != nil {
		log.Printf("session %s: write %s: %v", h.sid, name, err)
	}
}
