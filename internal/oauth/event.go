// Package oauth interprets the query string an identity provider sends
// back to /auth/callback and turns it into session writes and a delayed
// navigation.
package oauth

import (
	"encoding/json"
	"errors"
	"net/url"
	"strings"

	"zuvomo/internal/model"
)

// ErrMalformedCallback matches every MalformedEvent.
var ErrMalformedCallback = errors.New("malformed oauth callback")

// Callback statuses sent by the API's OAuth endpoints.
const (
	StatusSuccess           = "success"
	StatusPending           = "pending"
	StatusRejected          = "rejected"
	StatusProfileIncomplete = "profile_incomplete"
)

// Event is one decoded callback. It is exactly one of ErrorEvent,
// SuccessEvent, HandoffEvent or MalformedEvent.
type Event interface {
	isEvent()
}

// ErrorEvent is a callback carrying an error code.
type ErrorEvent struct {
	Provider string
	Code     string
}

// SuccessEvent is a completed sign-in.
type SuccessEvent struct {
	Provider     string
	AccessToken  string
	RefreshToken string
	User         *model.User
}

// HandoffEvent is a sign-in that must continue on the login or signup
// page: pending, rejected or profile_incomplete.
type HandoffEvent struct {
	Provider string
	Status   string
	Email    string
	Data     map[string]any
}

// MalformedEvent is anything that does not match a known shape.
type MalformedEvent struct {
	Reason string
	// MissingParams is true when required parameters were absent, as
	// opposed to present but unreadable.
	MissingParams bool
}

func (e MalformedEvent) Error() string { return ErrMalformedCallback.Error() + ": " + e.Reason }
func (e MalformedEvent) Unwrap() error { return ErrMalformedCallback }

func (ErrorEvent) isEvent()     {}
func (SuccessEvent) isEvent()   {}
func (HandoffEvent) isEvent()   {}
func (MalformedEvent) isEvent() {}

// Decode validates the callback query. provider comes from the route when
// present and otherwise from the provider parameter. Decode never panics;
// every unexpected input becomes a MalformedEvent.
func Decode(provider string, q url.Values) Event {
	if provider == "" {
		provider = q.Get("provider")
	}

	if code := q.Get("error"); code != "" {
		return ErrorEvent{Provider: provider, Code: code}
	}

	raw := q.Get("userData")
	if raw == "" {
		raw = q.Get("user")
	}
	status := q.Get("status")

	switch status {
	case StatusSuccess:
		token := q.Get("accessToken")
		if token == "" || raw == "" {
			return missing()
		}
		data, err := parseUserData(raw)
		if err != nil {
			return MalformedEvent{Reason: "user data is not valid JSON"}
		}
		var user model.User
		if err := remarshal(data, &user); err != nil {
			return MalformedEvent{Reason: "user data has the wrong shape"}
		}
		if !user.Role.Valid() || user.Email == "" {
			return MalformedEvent{Reason: "user data is missing email or role"}
		}
		return SuccessEvent{
			Provider:     provider,
			AccessToken:  token,
			RefreshToken: q.Get("refreshToken"),
			User:         &user,
		}

	case StatusPending, StatusRejected, StatusProfileIncomplete:
		if raw == "" {
			return missing()
		}
		data, err := parseUserData(raw)
		if err != nil {
			return MalformedEvent{Reason: "user data is not valid JSON"}
		}
		email, _ := data["email"].(string)
		if email == "" && status != StatusProfileIncomplete {
			return MalformedEvent{Reason: "user data is missing email"}
		}
		return HandoffEvent{Provider: provider, Status: status, Email: email, Data: data}

	default:
		return missing()
	}
}

func missing() MalformedEvent {
	return MalformedEvent{Reason: "missing required parameters", MissingParams: true}
}

// parseUserData URL-decodes raw (tolerating values that were already
// decoded) and parses it as a JSON object.
func parseUserData(raw string) (map[string]any, error) {
	if decoded, err := url.PathUnescape(raw); err == nil {
		raw = decoded
	}
	var data map[string]any
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&data); err != nil {
		return nil, err
	}
	if data == nil {
		return nil, &json.UnmarshalTypeError{Value: "null"}
	}
	return data, nil
}

func remarshal(in map[string]any, out any) error {
	b, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}
