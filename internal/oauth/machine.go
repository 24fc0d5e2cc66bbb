package oauth

import (
	"fmt"
	"net/url"
	"time"

	"zuvomo/internal/model"
	"zuvomo/internal/session"
)

// Navigation delays, long enough to read the status message.
const (
	SuccessDelay = 1500 * time.Millisecond
	HandoffDelay = 2 * time.Second
	ErrorDelay   = 3 * time.Second
)

var errorMessages = map[string]string{
	"oauth_cancelled": "Sign-in was cancelled. Please try again.",
	"oauth_failed":    "Authentication with the provider failed. Please try again.",
	"invalid_state":   "Invalid authentication state. Please try again.",
	"callback_failed": "We could not complete sign-in. Please try again.",
}

const (
	genericErrorMessage  = "An error occurred during authentication. Please try again."
	missingParamsMessage = "Missing required parameters."
)

// ErrorMessage maps a provider error code to the text shown to the user.
func ErrorMessage(code string) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}
	return genericErrorMessage
}

// Phase is where the callback is in its one-shot lifecycle.
type Phase int

const (
	Processing Phase = iota
	Succeeded
	Failed
)

func (p Phase) String() string {
	switch p {
	case Succeeded:
		return "success"
	case Failed:
		return "error"
	default:
		return "processing"
	}
}

// Effect is a side effect the executor must apply.
type Effect interface {
	isEffect()
}

// SaveSession stores a completed sign-in.
type SaveSession struct {
	Tokens session.Tokens
	User   *model.User
}

// StashHandoff keeps provider data for the login or signup page.
type StashHandoff struct {
	Data map[string]any
}

// Navigate sends the browser to To after Delay.
type Navigate struct {
	To    string
	Delay time.Duration
}

func (SaveSession) isEffect()  {}
func (StashHandoff) isEffect() {}
func (Navigate) isEffect()     {}

// State is the callback state. Succeeded and Failed are terminal.
type State struct {
	Phase   Phase
	Message string
	Effects []Effect
}

// Start is the initial state.
func Start() State {
	return State{Phase: Processing, Message: "Completing sign-in..."}
}

// Reduce applies e to s. Terminal states ignore further events.
func Reduce(s State, e Event) State {
	if s.Phase != Processing {
		return s
	}

	switch ev := e.(type) {
	case ErrorEvent:
		return State{
			Phase:   Failed,
			Message: ErrorMessage(ev.Code),
			Effects: []Effect{Navigate{To: "/signup", Delay: ErrorDelay}},
		}

	case SuccessEvent:
		return State{
			Phase:   Succeeded,
			Message: "Authentication successful! Redirecting...",
			Effects: []Effect{
				SaveSession{
					Tokens: session.Tokens{AccessToken: ev.AccessToken, RefreshToken: ev.RefreshToken},
					User:   ev.User,
				},
				Navigate{To: ev.User.Role.Dashboard(), Delay: SuccessDelay},
			},
		}

	case HandoffEvent:
		return State{
			Phase:   Succeeded,
			Message: handoffMessage(ev.Status),
			Effects: []Effect{
				StashHandoff{Data: handoffData(ev)},
				Navigate{To: handoffTarget(ev), Delay: HandoffDelay},
			},
		}

	case MalformedEvent:
		msg := genericErrorMessage
		if ev.MissingParams {
			msg = missingParamsMessage
		}
		return State{
			Phase:   Failed,
			Message: msg,
			Effects: []Effect{Navigate{To: "/login", Delay: ErrorDelay}},
		}

	default:
		return Reduce(s, MalformedEvent{Reason: fmt.Sprintf("unknown event %T", e)})
	}
}

func handoffMessage(status string) string {
	switch status {
	case StatusPending:
		return "Your account is pending approval."
	case StatusRejected:
		return "Your account application was not approved."
	default:
		return "Almost there! Please complete your profile."
	}
}

// handoffData is the stash payload. Keys from the provider's user data
// win over the flags.
func handoffData(ev HandoffEvent) map[string]any {
	data := map[string]any{
		"isOAuthUser":   true,
		"oauthProvider": ev.Provider,
		"isNewSignup":   ev.Status == StatusProfileIncomplete,
	}
	for k, v := range ev.Data {
		data[k] = v
	}
	return data
}

func handoffTarget(ev HandoffEvent) string {
	if ev.Status == StatusProfileIncomplete {
		return "/signup?step=complete-profile"
	}
	q := url.Values{}
	q.Set("status", ev.Status)
	q.Set("email", ev.Email)
	q.Set("oauth", "true")
	return "/login?" + q.Encode()
}
