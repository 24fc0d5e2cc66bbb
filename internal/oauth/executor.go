package oauth

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"zuvomo/internal/session"
)

// Navigation is the outcome shown to the browser.
type Navigation struct {
	Status  string        `json:"status"`
	Message string        `json:"message"`
	To      string        `json:"redirect"`
	Delay   time.Duration `json:"-"`
	DelayMS int64         `json:"delay_ms"`
}

// Executor applies the effects of a terminal State to a session.
type Executor struct{}

// Run performs SaveSession and StashHandoff effects and returns the
// navigation. A failed stash is reported but the navigation is still
// returned.
func (Executor) Run(ctx context.Context, h *session.Handle, s State) (Navigation, error) {
	nav := Navigation{Status: s.Phase.String(), Message: s.Message}

	var runErr error
	for _, eff := range s.Effects {
		switch e := eff.(type) {
		case SaveSession:
			h.Save(ctx, e.Tokens, e.User)
		case StashHandoff:
			if err := h.StashOAuth(ctx, e.Data); err != nil {
				runErr = fmt.Errorf("stash oauth hand-off: %w", err)
			}
		case Navigate:
			nav.To = e.To
			nav.Delay = e.Delay
			nav.DelayMS = e.Delay.Milliseconds()
		}
	}
	return nav, runErr
}

// Handle decodes a callback, reduces it from Start and runs it.
func Handle(ctx context.Context, h *session.Handle, provider string, q url.Values) (Navigation, error) {
	return Executor{}.Run(ctx, h, Reduce(Start(), Decode(provider, q)))
}
